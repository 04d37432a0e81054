package handler

import (
	"fmt"

	"go-marketplace-api/internal/service"
	"go-marketplace-api/pkg/apperror"

	"github.com/gofiber/fiber/v2"
)

const (
	defaultSalesDays = 7
	maxSalesDays     = 366
)

type DashboardHandler struct {
	dashboard service.DashboardService
}

func NewDashboardHandler(dashboard service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// GetSales reports paid orders and revenue per day, oldest first.
// GET /api/v1/dashboard/sales?days=30
func (h *DashboardHandler) GetSales(c *fiber.Ctx) error {
	days := c.QueryInt("days", defaultSalesDays)
	if days < 1 || days > maxSalesDays {
		return fail(c, apperror.BadRequest(fmt.Sprintf("days must be between 1 and %d", maxSalesDays)))
	}

	sales, err := h.dashboard.GetSales(days)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"days": days, "data": sales})
}

// GET /api/v1/dashboard/stats
func (h *DashboardHandler) GetDashboardStats(c *fiber.Ctx) error {
	stats, err := h.dashboard.GetDashboardStats()
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "Dashboard stats", stats)
}
