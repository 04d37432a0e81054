package handler

import (
	"go-marketplace-api/internal/service"
	"go-marketplace-api/pkg/pagination"

	"github.com/gofiber/fiber/v2"
)

type SettlementHandler struct {
	settlementService service.SettlementService
}

func NewSettlementHandler(settlementService service.SettlementService) *SettlementHandler {
	return &SettlementHandler{settlementService: settlementService}
}

// SettleStore pays out the store's delivered orders
// POST /api/v1/stores/:id/settlements
func (h *SettlementHandler) SettleStore(c *fiber.Ctx) error {
	storeID, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	settlement, err := h.settlementService.SettleStore(currentActor(c), storeID)
	if err != nil {
		return fail(c, err)
	}
	return created(c, "Store settled successfully", settlement)
}

// GET /api/v1/stores/:id/settlements
func (h *SettlementHandler) GetStoreSettlements(c *fiber.Ctx) error {
	storeID, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	p := pagination.FromQuery(c)
	settlements, err := h.settlementService.ListByStore(currentActor(c), storeID, p)
	if err != nil {
		return fail(c, err)
	}
	return page(c, settlements, p)
}

// GET /api/v1/settlements
func (h *SettlementHandler) GetSettlements(c *fiber.Ctx) error {
	p := pagination.FromQuery(c)
	settlements, err := h.settlementService.List(p)
	if err != nil {
		return fail(c, err)
	}
	return page(c, settlements, p)
}
