package handler

import (
	"go-marketplace-api/internal/service"
	"go-marketplace-api/pkg/pagination"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type CatalogHandler struct {
	catalogService service.CatalogService
}

func NewCatalogHandler(catalogService service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

type productIDsRequest struct {
	ProductIDs []uuid.UUID `json:"product_ids"`
}

// ---- categories

// GET /api/v1/categories?parent_id=&roots=true
func (h *CatalogHandler) GetCategories(c *fiber.Ctx) error {
	parentID, err := queryID(c, "parent_id")
	if err != nil {
		return fail(c, err)
	}
	categories, err := h.catalogService.ListCategories(parentID, c.QueryBool("roots"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"data": categories})
}

// GET /api/v1/categories/:id
func (h *CatalogHandler) GetCategory(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	category, err := h.catalogService.GetCategory(id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"data": category})
}

// GetCategoryTree returns the category and all its descendants
// GET /api/v1/categories/:id/tree
func (h *CatalogHandler) GetCategoryTree(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	nodes, err := h.catalogService.CategoryTree(id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"data": nodes})
}

// POST /api/v1/categories
func (h *CatalogHandler) CreateCategory(c *fiber.Ctx) error {
	var req service.CategoryRequest
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}
	category, err := h.catalogService.CreateCategory(currentActor(c), &req)
	if err != nil {
		return fail(c, err)
	}
	return created(c, "Category created successfully", category)
}

// PUT /api/v1/categories/:id
func (h *CatalogHandler) UpdateCategory(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req service.CategoryRequest
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}
	category, err := h.catalogService.UpdateCategory(currentActor(c), id, &req)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "Category updated successfully", category)
}

// DELETE /api/v1/categories/:id
func (h *CatalogHandler) DeleteCategory(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	if err := h.catalogService.DeleteCategory(currentActor(c), id); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Category deleted successfully"})
}

// ---- collections

// GET /api/v1/collections?active=true
func (h *CatalogHandler) GetCollections(c *fiber.Ctx) error {
	p := pagination.FromQuery(c)
	collections, err := h.catalogService.ListCollections(c.QueryBool("active"), p)
	if err != nil {
		return fail(c, err)
	}
	return page(c, collections, p)
}

// GET /api/v1/collections/:id
func (h *CatalogHandler) GetCollection(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	collection, err := h.catalogService.GetCollection(id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"data": collection})
}

// POST /api/v1/collections
func (h *CatalogHandler) CreateCollection(c *fiber.Ctx) error {
	var req service.CollectionRequest
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}
	collection, err := h.catalogService.CreateCollection(currentActor(c), &req)
	if err != nil {
		return fail(c, err)
	}
	return created(c, "Collection created successfully", collection)
}

// PUT /api/v1/collections/:id
func (h *CatalogHandler) UpdateCollection(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req service.CollectionRequest
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}
	collection, err := h.catalogService.UpdateCollection(currentActor(c), id, &req)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "Collection updated successfully", collection)
}

// DELETE /api/v1/collections/:id
func (h *CatalogHandler) DeleteCollection(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	if err := h.catalogService.DeleteCollection(currentActor(c), id); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Collection deleted successfully"})
}

// POST /api/v1/collections/:id/products
func (h *CatalogHandler) AddCollectionProducts(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req productIDsRequest
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}
	collection, err := h.catalogService.AddCollectionProducts(id, req.ProductIDs)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "Products added to collection", collection)
}

// DELETE /api/v1/collections/:id/products/:productId
func (h *CatalogHandler) RemoveCollectionProduct(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	productID, err := paramID(c, "productId")
	if err != nil {
		return fail(c, err)
	}
	if err := h.catalogService.RemoveCollectionProduct(id, productID); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Product removed from collection"})
}

// ---- tags

// GET /api/v1/tags
func (h *CatalogHandler) GetTags(c *fiber.Ctx) error {
	tags, err := h.catalogService.ListTags()
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"data": tags})
}

// POST /api/v1/tags
func (h *CatalogHandler) CreateTag(c *fiber.Ctx) error {
	var req service.TagRequest
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}
	tag, err := h.catalogService.CreateTag(currentActor(c), &req)
	if err != nil {
		return fail(c, err)
	}
	return created(c, "Tag created successfully", tag)
}

// PUT /api/v1/tags/:id
func (h *CatalogHandler) UpdateTag(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req service.TagRequest
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}
	tag, err := h.catalogService.UpdateTag(currentActor(c), id, &req)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "Tag updated successfully", tag)
}

// DELETE /api/v1/tags/:id
func (h *CatalogHandler) DeleteTag(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	if err := h.catalogService.DeleteTag(currentActor(c), id); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Tag deleted successfully"})
}
