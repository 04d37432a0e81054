package handler

import (
	"go-marketplace-api/internal/service"
	"go-marketplace-api/pkg/pagination"

	"github.com/gofiber/fiber/v2"
)

type FlashSaleHandler struct {
	flashSaleService service.FlashSaleService
}

func NewFlashSaleHandler(flashSaleService service.FlashSaleService) *FlashSaleHandler {
	return &FlashSaleHandler{flashSaleService: flashSaleService}
}

// GET /api/v1/flash-sales
func (h *FlashSaleHandler) GetFlashSales(c *fiber.Ctx) error {
	p := pagination.FromQuery(c)
	sales, err := h.flashSaleService.List(p)
	if err != nil {
		return fail(c, err)
	}
	return page(c, sales, p)
}

// GetActive returns the flash sales running right now
// GET /api/v1/flash-sales/active
func (h *FlashSaleHandler) GetActive(c *fiber.Ctx) error {
	sales, err := h.flashSaleService.Active()
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"data": sales})
}

// GET /api/v1/flash-sales/:id
func (h *FlashSaleHandler) GetFlashSale(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	sale, err := h.flashSaleService.Get(id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"data": sale})
}

// POST /api/v1/flash-sales
func (h *FlashSaleHandler) CreateFlashSale(c *fiber.Ctx) error {
	var req service.FlashSaleRequest
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}
	sale, err := h.flashSaleService.Create(currentActor(c), &req)
	if err != nil {
		return fail(c, err)
	}
	return created(c, "Flash sale created successfully", sale)
}

// PUT /api/v1/flash-sales/:id
func (h *FlashSaleHandler) UpdateFlashSale(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req service.FlashSaleRequest
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}
	sale, err := h.flashSaleService.Update(currentActor(c), id, &req)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "Flash sale updated successfully", sale)
}

// DELETE /api/v1/flash-sales/:id
func (h *FlashSaleHandler) DeleteFlashSale(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	if err := h.flashSaleService.Delete(currentActor(c), id); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Flash sale deleted successfully"})
}

// ReplaceItems sets the discounted variations of a sale
// PUT /api/v1/flash-sales/:id/items
func (h *FlashSaleHandler) ReplaceItems(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req service.FlashSaleItemsRequest
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}
	sale, err := h.flashSaleService.ReplaceItems(currentActor(c), id, &req)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "Flash sale items updated successfully", sale)
}
