package handler

import (
	"go-marketplace-api/internal/model"
	"go-marketplace-api/internal/repository"
	"go-marketplace-api/internal/service"
	"go-marketplace-api/pkg/pagination"

	"github.com/gofiber/fiber/v2"
)

type StoreHandler struct {
	storeService service.StoreService
}

func NewStoreHandler(storeService service.StoreService) *StoreHandler {
	return &StoreHandler{storeService: storeService}
}

// CreateStore opens a store owned by the current user
// POST /api/v1/stores
func (h *StoreHandler) CreateStore(c *fiber.Ctx) error {
	var req service.CreateStoreRequest
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}
	store, err := h.storeService.Create(currentActor(c), &req)
	if err != nil {
		return fail(c, err)
	}
	return created(c, "Store created successfully", store)
}

// GetStores lists stores. Inactive stores are listed for store admins
// asking with include_inactive=true.
// GET /api/v1/stores?search=&owner_id=&include_inactive=
func (h *StoreHandler) GetStores(c *fiber.Ctx) error {
	ownerID, err := queryID(c, "owner_id")
	if err != nil {
		return fail(c, err)
	}
	filter := repository.StoreFilter{OwnerID: ownerID, Search: c.Query("search")}
	if viewer, ok := optionalActor(c); ok && viewer.HasPrivilege(model.PrivStoreManageAll) {
		filter.IncludeInactive = c.QueryBool("include_inactive")
	}

	p := pagination.FromQuery(c)
	stores, err := h.storeService.List(filter, p)
	if err != nil {
		return fail(c, err)
	}
	return page(c, stores, p)
}

// GetStore returns a single store
// GET /api/v1/stores/:id
func (h *StoreHandler) GetStore(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	viewer, _ := optionalActor(c)
	store, err := h.storeService.Get(id, viewer)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"data": store})
}

// UpdateStore handles store update
// PATCH /api/v1/stores/:id
func (h *StoreHandler) UpdateStore(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req service.UpdateStoreRequest
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}
	store, err := h.storeService.Update(currentActor(c), id, &req)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "Store updated successfully", store)
}

// DeleteStore handles store deletion
// DELETE /api/v1/stores/:id
func (h *StoreHandler) DeleteStore(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	if err := h.storeService.Delete(currentActor(c), id); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Store deleted successfully"})
}
