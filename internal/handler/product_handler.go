package handler

import (
	"go-marketplace-api/internal/repository"
	"go-marketplace-api/internal/service"
	"go-marketplace-api/pkg/apperror"
	"go-marketplace-api/pkg/pagination"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ProductHandler struct {
	productService service.ProductService
}

func NewProductHandler(productService service.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// CreateProduct handles product creation together with its variations
// POST /api/v1/products
func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	var req service.CreateProductRequest
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}
	product, err := h.productService.Create(currentActor(c), &req)
	if err != nil {
		return fail(c, err)
	}
	return created(c, "Product created successfully", product)
}

// GetProducts returns a filtered page of products
// GET /api/v1/products?q=&store_id=&category_id=&collection_id=&tag=&min_price=&max_price=&sort=
func (h *ProductHandler) GetProducts(c *fiber.Ctx) error {
	filter, err := productFilter(c)
	if err != nil {
		return fail(c, err)
	}
	viewer, _ := optionalActor(c)

	p := pagination.FromQuery(c)
	products, err := h.productService.List(filter, p, viewer)
	if err != nil {
		return fail(c, err)
	}
	return page(c, products, p)
}

// GetProduct returns a product by id or slug
// GET /api/v1/products/:id
func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	viewer, _ := optionalActor(c)
	product, err := h.productService.Get(c.Params("id"), viewer)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"data": product})
}

// PATCH /api/v1/products/:id
func (h *ProductHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req service.UpdateProductRequest
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}
	product, err := h.productService.Update(currentActor(c), id, &req)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "Product updated successfully", product)
}

// DELETE /api/v1/products/:id
func (h *ProductHandler) DeleteProduct(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	if err := h.productService.Delete(currentActor(c), id); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Product deleted successfully"})
}

// ReplaceTags sets the product's tags
// PUT /api/v1/products/:id/tags
func (h *ProductHandler) ReplaceTags(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req struct {
		TagIDs []uuid.UUID `json:"tag_ids"`
	}
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}
	product, err := h.productService.ReplaceTags(currentActor(c), id, req.TagIDs)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "Tags updated successfully", product)
}

// ---- variations

// GET /api/v1/products/:id/variations
func (h *ProductHandler) GetVariations(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	variations, err := h.productService.ListVariations(id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"data": variations})
}

// POST /api/v1/products/:id/variations
func (h *ProductHandler) CreateVariation(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req service.VariationRequest
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}
	variation, err := h.productService.AddVariation(currentActor(c), id, &req)
	if err != nil {
		return fail(c, err)
	}
	return created(c, "Variation created successfully", variation)
}

// PATCH /api/v1/product-variations/:id
func (h *ProductHandler) UpdateVariation(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req service.VariationRequest
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}
	variation, err := h.productService.UpdateVariation(currentActor(c), id, &req)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "Variation updated successfully", variation)
}

// DELETE /api/v1/product-variations/:id
func (h *ProductHandler) DeleteVariation(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	if err := h.productService.DeleteVariation(currentActor(c), id); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Variation deleted successfully"})
}

// ---- related products

// GET /api/v1/products/:id/related
func (h *ProductHandler) GetRelated(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	products, err := h.productService.ListRelated(id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"data": products})
}

// POST /api/v1/products/:id/related
func (h *ProductHandler) AddRelated(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req productIDsRequest
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}
	products, err := h.productService.AddRelated(currentActor(c), id, req.ProductIDs)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "Related products added", products)
}

// DELETE /api/v1/products/:id/related/:relatedId
func (h *ProductHandler) RemoveRelated(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	relatedID, err := paramID(c, "relatedId")
	if err != nil {
		return fail(c, err)
	}
	if err := h.productService.RemoveRelated(currentActor(c), id, relatedID); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Related product removed"})
}

func productFilter(c *fiber.Ctx) (repository.ProductFilter, error) {
	filter := repository.ProductFilter{
		Query: c.Query("q"),
		Tag:   c.Query("tag"),
		Sort:  repository.ProductSort(c.Query("sort", string(repository.SortNewest))),
	}
	var err error
	if filter.StoreID, err = queryID(c, "store_id"); err != nil {
		return filter, err
	}
	if filter.CategoryID, err = queryID(c, "category_id"); err != nil {
		return filter, err
	}
	if filter.CollectionID, err = queryID(c, "collection_id"); err != nil {
		return filter, err
	}
	if filter.MinPrice, err = queryDecimal(c, "min_price"); err != nil {
		return filter, err
	}
	if filter.MaxPrice, err = queryDecimal(c, "max_price"); err != nil {
		return filter, err
	}
	return filter, nil
}

func queryDecimal(c *fiber.Ctx, name string) (*decimal.Decimal, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, apperror.BadRequest("Invalid " + name)
	}
	return &value, nil
}
