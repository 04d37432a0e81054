package service

import (
	"go-marketplace-api/internal/repository"
)

type DashboardService interface {
	GetSales(days int) ([]repository.SalesData, error)
	GetDashboardStats() (*repository.DashboardStats, error)
}

type dashboardService struct {
	reportRepo repository.ReportRepository
}

func NewDashboardService(reportRepo repository.ReportRepository) DashboardService {
	return &dashboardService{reportRepo: reportRepo}
}

// GetSales returns one row per day with paid orders over the last days days.
func (s *dashboardService) GetSales(days int) ([]repository.SalesData, error) {
	if days <= 0 || days > 366 {
		days = 7
	}
	endDate := now()
	startDate := endDate.AddDate(0, 0, -days)

	return s.reportRepo.GetSales(startDate, endDate)
}

func (s *dashboardService) GetDashboardStats() (*repository.DashboardStats, error) {
	return s.reportRepo.GetDashboardStats()
}
