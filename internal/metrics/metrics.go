package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// requestsTotal counts handled requests.
	// Labels: method, route (the registered path pattern), status
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "carpet_shop",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests by route and status",
	}, []string{"method", "route", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "carpet_shop",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "route"})

	// EventsPublished counts events handed to the websocket hub.
	// Labels: type, outcome (queued, dropped)
	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "carpet_shop",
		Subsystem: "ws",
		Name:      "events_total",
		Help:      "Events published to websocket clients",
	}, []string{"type", "outcome"})

	WSClients = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "carpet_shop",
		Subsystem: "ws",
		Name:      "clients",
		Help:      "Connected websocket clients",
	})
)

// Middleware records the count and latency of every request under its route
// pattern, so path parameters do not explode the label space.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			}
		}
		route := c.Route().Path
		requestsTotal.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		requestDuration.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())
		return err
	}
}

// Handler exposes the default registry.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
