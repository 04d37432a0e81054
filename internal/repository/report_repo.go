package repository

import (
	"time"

	"go-marketplace-api/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SalesData is one day of the sales chart.
type SalesData struct {
	Date    string          `json:"date"`
	Orders  int64           `json:"orders"`
	Revenue decimal.Decimal `json:"revenue"`
}

// DashboardStats is the overview block of the admin dashboard.
type DashboardStats struct {
	TotalProducts      int64           `json:"total_products"`
	TotalOrders        int64           `json:"total_orders"`
	PaidRevenue        decimal.Decimal `json:"paid_revenue"`
	PendingWithdrawals int64           `json:"pending_withdrawals"`
}

type ReportRepository interface {
	GetSales(startDate, endDate time.Time) ([]SalesData, error)
	GetDashboardStats() (*DashboardStats, error)
}

type reportRepo struct {
	db *gorm.DB
}

func NewReportRepo(db *gorm.DB) ReportRepository {
	return &reportRepo{db}
}

func (r *reportRepo) GetSales(startDate, endDate time.Time) ([]SalesData, error) {
	results := []SalesData{}

	rows, err := r.db.Model(&model.Order{}).
		Select(`
			DATE(created_at) as date,
			COUNT(*) as orders,
			COALESCE(SUM(total), 0) as revenue
		`).
		Where("payment_status = ?", model.PaymentPaid).
		Where("created_at BETWEEN ? AND ?", startDate, endDate).
		Group("DATE(created_at)").
		Order("date ASC").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var data SalesData
		if err := rows.Scan(&data.Date, &data.Orders, &data.Revenue); err != nil {
			return nil, err
		}
		if len(data.Date) > 10 {
			data.Date = data.Date[:10]
		}
		results = append(results, data)
	}
	return results, rows.Err()
}

func (r *reportRepo) GetDashboardStats() (*DashboardStats, error) {
	var stats DashboardStats

	if err := r.db.Model(&model.Product{}).Count(&stats.TotalProducts).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&model.Order{}).Count(&stats.TotalOrders).Error; err != nil {
		return nil, err
	}

	var revenue decimal.NullDecimal
	if err := r.db.Model(&model.Order{}).
		Where("payment_status = ?", model.PaymentPaid).
		Select("SUM(total)").
		Row().Scan(&revenue); err != nil {
		return nil, err
	}
	stats.PaidRevenue = decimal.Zero
	if revenue.Valid {
		stats.PaidRevenue = revenue.Decimal
	}

	if err := r.db.Model(&model.Withdrawal{}).
		Where("status = ?", model.WithdrawalPending).
		Count(&stats.PendingWithdrawals).Error; err != nil {
		return nil, err
	}
	return &stats, nil
}
