package handler

import (
	"go-marketplace-api/internal/service"

	"github.com/gofiber/fiber/v2"
)

type AddressHandler struct {
	addressService service.AddressService
}

func NewAddressHandler(addressService service.AddressService) *AddressHandler {
	return &AddressHandler{addressService: addressService}
}

// GET /api/v1/user-addresses
func (h *AddressHandler) GetAddresses(c *fiber.Ctx) error {
	addresses, err := h.addressService.List(currentActor(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"data": addresses})
}

// GET /api/v1/user-addresses/:id
func (h *AddressHandler) GetAddress(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	address, err := h.addressService.Get(currentActor(c), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"data": address})
}

// POST /api/v1/user-addresses
func (h *AddressHandler) CreateAddress(c *fiber.Ctx) error {
	var req service.AddressRequest
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}
	address, err := h.addressService.Create(currentActor(c), &req)
	if err != nil {
		return fail(c, err)
	}
	return created(c, "Address created successfully", address)
}

// PUT /api/v1/user-addresses/:id
func (h *AddressHandler) UpdateAddress(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req service.AddressRequest
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}
	address, err := h.addressService.Update(currentActor(c), id, &req)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "Address updated successfully", address)
}

// DELETE /api/v1/user-addresses/:id
func (h *AddressHandler) DeleteAddress(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	if err := h.addressService.Delete(currentActor(c), id); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Address deleted successfully"})
}
