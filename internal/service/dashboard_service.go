package service

import (
	"time"

	"go-carpet-shop/internal/apperror"
	"go-carpet-shop/internal/repository"
)

type DashboardService interface {
	GetSalesMovement(days int) ([]repository.SalesMovementData, error)
	GetStockStats() (*repository.StockStats, error)
}

type dashboardService struct {
	repo repository.DashboardRepository
}

func NewDashboardService(repo repository.DashboardRepository) DashboardService {
	return &dashboardService{repo: repo}
}

func (s *dashboardService) GetSalesMovement(days int) ([]repository.SalesMovementData, error) {
	endDate := time.Now()
	startDate := endDate.AddDate(0, 0, -days)

	data, err := s.repo.GetSalesMovement(startDate, endDate)
	if err != nil {
		return nil, apperror.FromDB(err, "Sale")
	}
	return data, nil
}

func (s *dashboardService) GetStockStats() (*repository.StockStats, error) {
	stats, err := s.repo.GetStockStats()
	if err != nil {
		return nil, apperror.FromDB(err, "InventoryItem")
	}
	return stats, nil
}
