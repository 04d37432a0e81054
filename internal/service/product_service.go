package service

import (
	"time"

	"go-marketplace-api/internal/model"
	"go-marketplace-api/internal/repository"
	"go-marketplace-api/pkg/apperror"
	"go-marketplace-api/pkg/pagination"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrProductNotFound   = apperror.NotFound("product not found")
	ErrVariationNotFound = apperror.NotFound("product variation not found")
	ErrSKUExists         = apperror.Conflict("sku already exists")
	ErrDiscountNotLower  = apperror.BadRequest("discount_price must be lower than price")
	ErrDiscountWindow    = apperror.BadRequest("discount_start must be before discount_end")
	ErrSelfRelated       = apperror.BadRequest("a product cannot be related to itself")
	ErrUnknownCategory   = apperror.BadRequest("category not found")
)

type VariationRequest struct {
	SKU           string           `json:"sku" validate:"required,max=80"`
	Name          string           `json:"name" validate:"required,max=150"`
	Price         decimal.Decimal  `json:"price" validate:"gte=0"`
	DiscountPrice *decimal.Decimal `json:"discount_price" validate:"omitempty,gte=0"`
	DiscountStart *time.Time       `json:"discount_start"`
	DiscountEnd   *time.Time       `json:"discount_end"`
	Stock         int              `json:"stock" validate:"gte=0"`
}

type CreateProductRequest struct {
	StoreID     uuid.UUID          `json:"store_id" validate:"uuid_required"`
	CategoryID  *uuid.UUID         `json:"category_id"`
	Name        string             `json:"name" validate:"required,max=255"`
	Description string             `json:"description"`
	Images      []string           `json:"images" validate:"dive,url"`
	IsPublished *bool              `json:"is_published"`
	TagIDs      []uuid.UUID        `json:"tag_ids"`
	Variations  []VariationRequest `json:"variations" validate:"dive"`
}

type UpdateProductRequest struct {
	CategoryID  *uuid.UUID `json:"category_id"`
	Name        *string    `json:"name" validate:"omitempty,max=255"`
	Description *string    `json:"description"`
	Images      []string   `json:"images" validate:"omitempty,dive,url"`
	IsPublished *bool      `json:"is_published"`
}

type ProductService interface {
	Create(actor Actor, req *CreateProductRequest) (*model.Product, error)
	Update(actor Actor, id uuid.UUID, req *UpdateProductRequest) (*model.Product, error)
	Delete(actor Actor, id uuid.UUID) error
	// Get accepts an id or a slug.
	Get(idOrSlug string, viewer *Actor) (*model.Product, error)
	List(filter repository.ProductFilter, p pagination.Params, viewer *Actor) (*List[model.Product], error)
	ReplaceTags(actor Actor, id uuid.UUID, tagIDs []uuid.UUID) (*model.Product, error)

	AddVariation(actor Actor, productID uuid.UUID, req *VariationRequest) (*model.ProductVariation, error)
	UpdateVariation(actor Actor, id uuid.UUID, req *VariationRequest) (*model.ProductVariation, error)
	DeleteVariation(actor Actor, id uuid.UUID) error
	ListVariations(productID uuid.UUID) ([]model.ProductVariation, error)

	AddRelated(actor Actor, id uuid.UUID, relatedIDs []uuid.UUID) ([]model.Product, error)
	RemoveRelated(actor Actor, id, relatedID uuid.UUID) error
	ListRelated(id uuid.UUID) ([]model.Product, error)
}

type productService struct {
	productRepo   repository.ProductRepository
	variationRepo repository.VariationRepository
	categoryRepo  repository.CategoryRepository
	tagRepo       repository.TagRepository
	stores        StoreService
	pricer        *Pricer
}

func NewProductService(productRepo repository.ProductRepository, variationRepo repository.VariationRepository, categoryRepo repository.CategoryRepository, tagRepo repository.TagRepository, stores StoreService, pricer *Pricer) ProductService {
	return &productService{
		productRepo:   productRepo,
		variationRepo: variationRepo,
		categoryRepo:  categoryRepo,
		tagRepo:       tagRepo,
		stores:        stores,
		pricer:        pricer,
	}
}

func (s *productService) Create(actor Actor, req *CreateProductRequest) (*model.Product, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	store, err := s.stores.Manageable(actor, req.StoreID)
	if err != nil {
		return nil, err
	}
	if !store.IsActive {
		return nil, ErrStoreInactive
	}
	if err := s.checkCategory(req.CategoryID); err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	for i := range req.Variations {
		v := &req.Variations[i]
		if seen[v.SKU] {
			return nil, ErrSKUExists
		}
		seen[v.SKU] = true
		if err := s.checkVariation(v, nil); err != nil {
			return nil, err
		}
	}

	tags, err := s.findTags(req.TagIDs)
	if err != nil {
		return nil, err
	}

	productSlug, err := uniqueSlug(req.Name, s.productRepo.SlugExists)
	if err != nil {
		return nil, err
	}

	product := &model.Product{
		StoreID:     store.ID,
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Slug:        productSlug,
		Description: req.Description,
		Images:      model.StringList(req.Images),
		IsPublished: req.IsPublished == nil || *req.IsPublished,
		Tags:        tags,
	}
	for i := range req.Variations {
		variation := model.ProductVariation{}
		applyVariation(&variation, &req.Variations[i])
		variation.Audit(actor.Audit())
		product.Variations = append(product.Variations, variation)
	}
	product.Audit(actor.Audit())

	if err := s.productRepo.Create(product); err != nil {
		return nil, err
	}
	return s.load(product.ID)
}

func (s *productService) Update(actor Actor, id uuid.UUID, req *UpdateProductRequest) (*model.Product, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	product, err := s.manageable(actor, id)
	if err != nil {
		return nil, err
	}

	if req.CategoryID != nil {
		if err := s.checkCategory(req.CategoryID); err != nil {
			return nil, err
		}
		product.CategoryID = req.CategoryID
	}
	if req.Name != nil && *req.Name != product.Name {
		product.Name = *req.Name
		if product.Slug, err = uniqueSlug(product.Name, s.productRepo.SlugExists); err != nil {
			return nil, err
		}
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Images != nil {
		product.Images = model.StringList(req.Images)
	}
	if req.IsPublished != nil {
		product.IsPublished = *req.IsPublished
	}
	product.Audit(actor.Audit())

	if err := s.productRepo.Update(product); err != nil {
		return nil, err
	}
	return s.load(id)
}

func (s *productService) Delete(actor Actor, id uuid.UUID) error {
	if _, err := s.manageable(actor, id); err != nil {
		return err
	}
	return notFound(s.productRepo.Delete(id, actor.Audit()), ErrProductNotFound)
}

func (s *productService) Get(idOrSlug string, viewer *Actor) (*model.Product, error) {
	var product *model.Product
	var err error
	if id, parseErr := uuid.Parse(idOrSlug); parseErr == nil {
		product, err = s.productRepo.FindByID(id)
	} else {
		product, err = s.productRepo.FindBySlug(idOrSlug)
	}
	if err != nil {
		return nil, notFound(err, ErrProductNotFound)
	}

	if !product.IsPublished && !s.canManage(viewer, product) {
		return nil, ErrProductNotFound
	}
	if err := s.pricer.Annotate(product.Variations, now()); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *productService) List(filter repository.ProductFilter, p pagination.Params, viewer *Actor) (*List[model.Product], error) {
	// Drafts are listed only for a store the viewer manages.
	filter.IncludeUnpublish = false
	if filter.StoreID != nil && viewer != nil {
		if _, err := s.stores.Manageable(*viewer, *filter.StoreID); err == nil {
			filter.IncludeUnpublish = true
		}
	}

	products, total, err := s.productRepo.FindAll(filter, p)
	if err != nil {
		return nil, err
	}
	if err := s.pricer.AnnotateProducts(products, now()); err != nil {
		return nil, err
	}
	return &List[model.Product]{Items: products, Total: total}, nil
}

func (s *productService) ReplaceTags(actor Actor, id uuid.UUID, tagIDs []uuid.UUID) (*model.Product, error) {
	product, err := s.manageable(actor, id)
	if err != nil {
		return nil, err
	}
	tags, err := s.findTags(tagIDs)
	if err != nil {
		return nil, err
	}
	if err := s.productRepo.ReplaceTags(product, tags); err != nil {
		return nil, err
	}
	return s.load(id)
}

// ---- variations

func (s *productService) AddVariation(actor Actor, productID uuid.UUID, req *VariationRequest) (*model.ProductVariation, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	if _, err := s.manageable(actor, productID); err != nil {
		return nil, err
	}
	if err := s.checkVariation(req, nil); err != nil {
		return nil, err
	}

	variation := &model.ProductVariation{ProductID: productID}
	applyVariation(variation, req)
	variation.Audit(actor.Audit())
	if err := s.variationRepo.Create(variation); err != nil {
		return nil, err
	}
	return variation, nil
}

func (s *productService) UpdateVariation(actor Actor, id uuid.UUID, req *VariationRequest) (*model.ProductVariation, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	variation, err := s.variationRepo.FindByID(id)
	if err != nil {
		return nil, notFound(err, ErrVariationNotFound)
	}
	if _, err := s.manageable(actor, variation.ProductID); err != nil {
		return nil, err
	}
	if err := s.checkVariation(req, &id); err != nil {
		return nil, err
	}

	applyVariation(variation, req)
	variation.Audit(actor.Audit())
	if err := s.variationRepo.Update(variation); err != nil {
		return nil, err
	}
	return variation, nil
}

func (s *productService) DeleteVariation(actor Actor, id uuid.UUID) error {
	variation, err := s.variationRepo.FindByID(id)
	if err != nil {
		return notFound(err, ErrVariationNotFound)
	}
	if _, err := s.manageable(actor, variation.ProductID); err != nil {
		return err
	}
	return notFound(s.variationRepo.Delete(id, actor.Audit()), ErrVariationNotFound)
}

func (s *productService) ListVariations(productID uuid.UUID) ([]model.ProductVariation, error) {
	if _, err := s.productRepo.FindByID(productID); err != nil {
		return nil, notFound(err, ErrProductNotFound)
	}
	variations, err := s.variationRepo.FindByProduct(productID)
	if err != nil {
		return nil, err
	}
	if err := s.pricer.Annotate(variations, now()); err != nil {
		return nil, err
	}
	return variations, nil
}

// ---- related products

func (s *productService) AddRelated(actor Actor, id uuid.UUID, relatedIDs []uuid.UUID) ([]model.Product, error) {
	if _, err := s.manageable(actor, id); err != nil {
		return nil, err
	}
	relatedIDs = uniqueIDs(relatedIDs)
	for _, relatedID := range relatedIDs {
		if relatedID == id {
			return nil, ErrSelfRelated
		}
	}
	related, err := s.productRepo.FindByIDs(relatedIDs)
	if err != nil {
		return nil, err
	}
	if len(related) != len(relatedIDs) {
		return nil, ErrProductNotFound
	}

	if err := s.productRepo.AddRelated(id, relatedIDs); err != nil {
		return nil, err
	}
	return s.ListRelated(id)
}

func (s *productService) RemoveRelated(actor Actor, id, relatedID uuid.UUID) error {
	if _, err := s.manageable(actor, id); err != nil {
		return err
	}
	return s.productRepo.RemoveRelated(id, relatedID)
}

func (s *productService) ListRelated(id uuid.UUID) ([]model.Product, error) {
	products, err := s.productRepo.FindRelated(id)
	if err != nil {
		return nil, err
	}
	if err := s.pricer.AnnotateProducts(products, now()); err != nil {
		return nil, err
	}
	return products, nil
}

// ---- helpers

func (s *productService) load(id uuid.UUID) (*model.Product, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		return nil, notFound(err, ErrProductNotFound)
	}
	if err := s.pricer.Annotate(product.Variations, now()); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *productService) manageable(actor Actor, id uuid.UUID) (*model.Product, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		return nil, notFound(err, ErrProductNotFound)
	}
	if _, err := s.stores.Manageable(actor, product.StoreID); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *productService) canManage(viewer *Actor, product *model.Product) bool {
	if viewer == nil {
		return false
	}
	_, err := s.stores.Manageable(*viewer, product.StoreID)
	return err == nil
}

func (s *productService) checkCategory(id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	_, err := s.categoryRepo.FindByID(*id)
	return notFound(err, ErrUnknownCategory)
}

func (s *productService) checkVariation(req *VariationRequest, excludeID *uuid.UUID) error {
	if req.DiscountPrice != nil && !req.DiscountPrice.LessThan(req.Price) {
		return ErrDiscountNotLower
	}
	if req.DiscountStart != nil && req.DiscountEnd != nil && !req.DiscountStart.Before(*req.DiscountEnd) {
		return ErrDiscountWindow
	}
	taken, err := s.variationRepo.SKUExists(req.SKU, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return ErrSKUExists
	}
	return nil
}

func (s *productService) findTags(ids []uuid.UUID) ([]model.Tag, error) {
	ids = uniqueIDs(ids)
	tags, err := s.tagRepo.FindByIDs(ids)
	if err != nil {
		return nil, err
	}
	if len(tags) != len(ids) {
		return nil, ErrTagNotFound
	}
	return tags, nil
}

func applyVariation(v *model.ProductVariation, req *VariationRequest) {
	v.SKU = req.SKU
	v.Name = req.Name
	v.Price = req.Price.Round(2)
	v.DiscountPrice = decimal.NullDecimal{}
	if req.DiscountPrice != nil {
		v.DiscountPrice = decimal.NewNullDecimal(req.DiscountPrice.Round(2))
	}
	v.DiscountStart = utcPtr(req.DiscountStart)
	v.DiscountEnd = utcPtr(req.DiscountEnd)
	v.Stock = req.Stock
}
