package repository

import (
	"time"

	"go-carpet-shop/internal/model"
	"go-carpet-shop/internal/valuation"

	"gorm.io/gorm"
)

type DashboardRepository interface {
	GetStockStats() (*StockStats, error)
	GetSalesMovement(startDate, endDate time.Time) ([]SalesMovementData, error)
}

// TagStats counts the items of one tag in each derived status.
type TagStats struct {
	Tag        valuation.Tag `json:"tag"`
	Available  int64         `json:"available"`
	LowStock   int64         `json:"low_stock"`
	OutOfStock int64         `json:"out_of_stock"`
}

type StockStats struct {
	TotalItems    int64      `json:"total_items"`
	TotalCarpets  int64      `json:"total_carpets"`
	PendingOrders int64      `json:"pending_orders"`
	Tags          []TagStats `json:"tags"`
}

// SalesMovementData is one day of the sales chart.
type SalesMovementData struct {
	Date  string `json:"date"`
	Sales int    `json:"sales"`
}

type dashboardRepo struct {
	db *gorm.DB
}

func NewDashboardRepo(db *gorm.DB) DashboardRepository {
	return &dashboardRepo{db}
}

func (r *dashboardRepo) GetStockStats() (*StockStats, error) {
	var stats StockStats

	if err := r.db.Model(&model.InventoryItem{}).Count(&stats.TotalItems).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&model.Carpet{}).Count(&stats.TotalCarpets).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&model.MaterialOrder{}).Where("status = ?", model.OrderPending).Count(&stats.PendingOrders).Error; err != nil {
		return nil, err
	}

	for _, tag := range valuation.Tags {
		ts := TagStats{Tag: tag}
		counts := map[valuation.Status]*int64{
			valuation.StatusAvailable:  &ts.Available,
			valuation.StatusLowStock:   &ts.LowStock,
			valuation.StatusOutOfStock: &ts.OutOfStock,
		}
		for status, dst := range counts {
			cond, args := valuation.StatusCondition(status, "type", "stock")
			err := r.db.Model(&model.InventoryItem{}).
				Where("type = ?", tag).
				Where(cond, args...).
				Count(dst).Error
			if err != nil {
				return nil, err
			}
		}
		stats.Tags = append(stats.Tags, ts)
	}
	return &stats, nil
}

func (r *dashboardRepo) GetSalesMovement(startDate, endDate time.Time) ([]SalesMovementData, error) {
	results := []SalesMovementData{}

	// Sales per day
	rows, err := r.db.Model(&model.Sale{}).
		Select("DATE(date) as day, COUNT(*) as sales").
		Where("date BETWEEN ? AND ?", startDate, endDate).
		Group("DATE(date)").
		Order("day ASC").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var data SalesMovementData
		if err := rows.Scan(&data.Date, &data.Sales); err != nil {
			return nil, err
		}
		// postgres hands DATE back as a timestamp
		if len(data.Date) > 10 {
			data.Date = data.Date[:10]
		}
		results = append(results, data)
	}
	return results, rows.Err()
}
