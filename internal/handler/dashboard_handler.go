package handler

import (
	"go-carpet-shop/internal/apperror"
	"go-carpet-shop/internal/model"
	"go-carpet-shop/internal/service"

	"github.com/gofiber/fiber/v2"
)

type DashboardHandler struct {
	service service.DashboardService
}

func NewDashboardHandler(s service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: s}
}

func (h *DashboardHandler) Register(r *Router) {
	r.Guarded(fiber.MethodGet, "/dashboard/stock", model.PermissionCode(model.ActionView, "InventoryItem"), h.GetStockStats)
	r.Guarded(fiber.MethodGet, "/dashboard/sales", model.PermissionCode(model.ActionView, "Sale"), h.GetSalesMovement)
}

// GetSalesMovement returns sales per day for charts
// Query params: days (default 7)
func (h *DashboardHandler) GetSalesMovement(c *fiber.Ctx) error {
	days := c.QueryInt("days", 7)
	if days <= 0 {
		days = 7
	}

	data, err := h.service.GetSalesMovement(days)
	if err != nil {
		return apperror.Respond(c, err)
	}

	return c.JSON(fiber.Map{
		"period": days,
		"data":   data,
	})
}

// GetStockStats returns item counts per tag and status
func (h *DashboardHandler) GetStockStats(c *fiber.Ctx) error {
	stats, err := h.service.GetStockStats()
	if err != nil {
		return apperror.Respond(c, err)
	}
	return c.JSON(stats)
}
