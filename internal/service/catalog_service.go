package service

import (
	"strings"

	"go-marketplace-api/internal/model"
	"go-marketplace-api/internal/repository"
	"go-marketplace-api/pkg/apperror"
	"go-marketplace-api/pkg/pagination"

	"github.com/google/uuid"
)

var (
	ErrCategoryNotFound   = apperror.NotFound("category not found")
	ErrCategoryCycle      = apperror.BadRequest("a category cannot be moved under itself or its descendants")
	ErrCollectionNotFound = apperror.NotFound("collection not found")
	ErrTagNotFound        = apperror.NotFound("tag not found")
	ErrTagExists          = apperror.Conflict("tag already exists")
)

type CategoryRequest struct {
	Name        string     `json:"name" validate:"required,max=150"`
	Description string     `json:"description"`
	ParentID    *uuid.UUID `json:"parent_id"`
}

type CollectionRequest struct {
	Name        string `json:"name" validate:"required,max=150"`
	Description string `json:"description"`
	IsActive    *bool  `json:"is_active"`
}

type TagRequest struct {
	Name string `json:"name" validate:"required,max=80"`
}

type CatalogService interface {
	CreateCategory(actor Actor, req *CategoryRequest) (*model.Category, error)
	UpdateCategory(actor Actor, id uuid.UUID, req *CategoryRequest) (*model.Category, error)
	DeleteCategory(actor Actor, id uuid.UUID) error
	GetCategory(id uuid.UUID) (*model.Category, error)
	ListCategories(parentID *uuid.UUID, rootsOnly bool) ([]model.Category, error)
	CategoryTree(id uuid.UUID) ([]model.CategoryNode, error)

	CreateCollection(actor Actor, req *CollectionRequest) (*model.Collection, error)
	UpdateCollection(actor Actor, id uuid.UUID, req *CollectionRequest) (*model.Collection, error)
	DeleteCollection(actor Actor, id uuid.UUID) error
	GetCollection(id uuid.UUID) (*model.Collection, error)
	ListCollections(activeOnly bool, p pagination.Params) (*List[model.Collection], error)
	AddCollectionProducts(id uuid.UUID, productIDs []uuid.UUID) (*model.Collection, error)
	RemoveCollectionProduct(id, productID uuid.UUID) error

	CreateTag(actor Actor, req *TagRequest) (*model.Tag, error)
	UpdateTag(actor Actor, id uuid.UUID, req *TagRequest) (*model.Tag, error)
	DeleteTag(actor Actor, id uuid.UUID) error
	ListTags() ([]model.Tag, error)
}

type catalogService struct {
	categoryRepo   repository.CategoryRepository
	collectionRepo repository.CollectionRepository
	tagRepo        repository.TagRepository
	productRepo    repository.ProductRepository
}

func NewCatalogService(categoryRepo repository.CategoryRepository, collectionRepo repository.CollectionRepository, tagRepo repository.TagRepository, productRepo repository.ProductRepository) CatalogService {
	return &catalogService{
		categoryRepo:   categoryRepo,
		collectionRepo: collectionRepo,
		tagRepo:        tagRepo,
		productRepo:    productRepo,
	}
}

// ---- categories

func (s *catalogService) CreateCategory(actor Actor, req *CategoryRequest) (*model.Category, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	if req.ParentID != nil {
		if _, err := s.categoryRepo.FindByID(*req.ParentID); err != nil {
			return nil, notFound(err, apperror.BadRequest("parent category not found"))
		}
	}

	categorySlug, err := uniqueSlug(req.Name, s.categoryRepo.SlugExists)
	if err != nil {
		return nil, err
	}

	category := &model.Category{
		Name:        req.Name,
		Slug:        categorySlug,
		Description: req.Description,
		ParentID:    req.ParentID,
	}
	category.Audit(actor.Audit())
	if err := s.categoryRepo.Create(category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *catalogService) UpdateCategory(actor Actor, id uuid.UUID, req *CategoryRequest) (*model.Category, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	category, err := s.categoryRepo.FindByID(id)
	if err != nil {
		return nil, notFound(err, ErrCategoryNotFound)
	}

	if req.ParentID != nil {
		if _, err := s.categoryRepo.FindByID(*req.ParentID); err != nil {
			return nil, notFound(err, apperror.BadRequest("parent category not found"))
		}
		subtree, err := s.categoryRepo.Descendants(id)
		if err != nil {
			return nil, err
		}
		for _, node := range subtree {
			if node.ID == *req.ParentID {
				return nil, ErrCategoryCycle
			}
		}
	}

	if req.Name != category.Name {
		category.Name = req.Name
		if category.Slug, err = uniqueSlug(req.Name, s.categoryRepo.SlugExists); err != nil {
			return nil, err
		}
	}
	category.Description = req.Description
	category.ParentID = req.ParentID
	category.Audit(actor.Audit())

	if err := s.categoryRepo.Update(category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *catalogService) DeleteCategory(actor Actor, id uuid.UUID) error {
	return notFound(s.categoryRepo.Delete(id, actor.Audit()), ErrCategoryNotFound)
}

func (s *catalogService) GetCategory(id uuid.UUID) (*model.Category, error) {
	category, err := s.categoryRepo.FindByID(id)
	if err != nil {
		return nil, notFound(err, ErrCategoryNotFound)
	}
	return category, nil
}

func (s *catalogService) ListCategories(parentID *uuid.UUID, rootsOnly bool) ([]model.Category, error) {
	return s.categoryRepo.FindAll(parentID, rootsOnly)
}

func (s *catalogService) CategoryTree(id uuid.UUID) ([]model.CategoryNode, error) {
	nodes, err := s.categoryRepo.Descendants(id)
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, ErrCategoryNotFound
	}
	return nodes, nil
}

// ---- collections

func (s *catalogService) CreateCollection(actor Actor, req *CollectionRequest) (*model.Collection, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	collectionSlug, err := uniqueSlug(req.Name, s.collectionRepo.SlugExists)
	if err != nil {
		return nil, err
	}

	collection := &model.Collection{
		Name:        req.Name,
		Slug:        collectionSlug,
		Description: req.Description,
		IsActive:    req.IsActive == nil || *req.IsActive,
	}
	collection.Audit(actor.Audit())
	if err := s.collectionRepo.Create(collection); err != nil {
		return nil, err
	}
	return collection, nil
}

func (s *catalogService) UpdateCollection(actor Actor, id uuid.UUID, req *CollectionRequest) (*model.Collection, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	collection, err := s.collectionRepo.FindByID(id, false)
	if err != nil {
		return nil, notFound(err, ErrCollectionNotFound)
	}

	if req.Name != collection.Name {
		collection.Name = req.Name
		if collection.Slug, err = uniqueSlug(req.Name, s.collectionRepo.SlugExists); err != nil {
			return nil, err
		}
	}
	collection.Description = req.Description
	if req.IsActive != nil {
		collection.IsActive = *req.IsActive
	}
	collection.Audit(actor.Audit())

	if err := s.collectionRepo.Update(collection); err != nil {
		return nil, err
	}
	return collection, nil
}

func (s *catalogService) DeleteCollection(actor Actor, id uuid.UUID) error {
	return notFound(s.collectionRepo.Delete(id, actor.Audit()), ErrCollectionNotFound)
}

func (s *catalogService) GetCollection(id uuid.UUID) (*model.Collection, error) {
	collection, err := s.collectionRepo.FindByID(id, true)
	if err != nil {
		return nil, notFound(err, ErrCollectionNotFound)
	}
	return collection, nil
}

func (s *catalogService) ListCollections(activeOnly bool, p pagination.Params) (*List[model.Collection], error) {
	collections, total, err := s.collectionRepo.FindAll(activeOnly, p)
	if err != nil {
		return nil, err
	}
	return &List[model.Collection]{Items: collections, Total: total}, nil
}

func (s *catalogService) AddCollectionProducts(id uuid.UUID, productIDs []uuid.UUID) (*model.Collection, error) {
	collection, err := s.collectionRepo.FindByID(id, false)
	if err != nil {
		return nil, notFound(err, ErrCollectionNotFound)
	}

	products, err := s.productRepo.FindByIDs(productIDs)
	if err != nil {
		return nil, err
	}
	if len(products) != len(uniqueIDs(productIDs)) {
		return nil, ErrProductNotFound
	}

	if err := s.collectionRepo.AddProducts(collection, products); err != nil {
		return nil, err
	}
	return s.collectionRepo.FindByID(id, true)
}

func (s *catalogService) RemoveCollectionProduct(id, productID uuid.UUID) error {
	collection, err := s.collectionRepo.FindByID(id, false)
	if err != nil {
		return notFound(err, ErrCollectionNotFound)
	}
	return s.collectionRepo.RemoveProduct(collection, productID)
}

// ---- tags

func (s *catalogService) CreateTag(actor Actor, req *TagRequest) (*model.Tag, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	taken, err := s.tagRepo.NameExists(name, nil)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrTagExists
	}

	tagSlug, err := uniqueSlug(name, s.tagRepo.SlugExists)
	if err != nil {
		return nil, err
	}
	tag := &model.Tag{Name: name, Slug: tagSlug}
	tag.Audit(actor.Audit())
	if err := s.tagRepo.Create(tag); err != nil {
		return nil, err
	}
	return tag, nil
}

func (s *catalogService) UpdateTag(actor Actor, id uuid.UUID, req *TagRequest) (*model.Tag, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	tag, err := s.tagRepo.FindByID(id)
	if err != nil {
		return nil, notFound(err, ErrTagNotFound)
	}

	name := strings.TrimSpace(req.Name)
	if name != tag.Name {
		taken, err := s.tagRepo.NameExists(name, &id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrTagExists
		}
		tag.Name = name
		if tag.Slug, err = uniqueSlug(name, s.tagRepo.SlugExists); err != nil {
			return nil, err
		}
	}
	tag.Audit(actor.Audit())
	if err := s.tagRepo.Update(tag); err != nil {
		return nil, err
	}
	return tag, nil
}

func (s *catalogService) DeleteTag(actor Actor, id uuid.UUID) error {
	return notFound(s.tagRepo.Delete(id, actor.Audit()), ErrTagNotFound)
}

func (s *catalogService) ListTags() ([]model.Tag, error) {
	return s.tagRepo.FindAll()
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
