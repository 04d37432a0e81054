package repository

import (
	"go-marketplace-api/internal/model"
	"go-marketplace-api/pkg/pagination"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CategoryRepository interface {
	Create(category *model.Category) error
	Update(category *model.Category) error
	Delete(id uuid.UUID, deletedBy string) error
	FindByID(id uuid.UUID) (*model.Category, error)
	FindAll(parentID *uuid.UUID, rootsOnly bool) ([]model.Category, error)
	Descendants(id uuid.UUID) ([]model.CategoryNode, error)
	SlugExists(slug string) (bool, error)
}

type categoryRepo struct {
	db *gorm.DB
}

func NewCategoryRepo(db *gorm.DB) CategoryRepository {
	return &categoryRepo{db}
}

func (r *categoryRepo) Create(category *model.Category) error {
	return r.db.Create(category).Error
}

func (r *categoryRepo) Update(category *model.Category) error {
	return r.db.Omit("Parent", "Children").Save(category).Error
}

func (r *categoryRepo) Delete(id uuid.UUID, deletedBy string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		// Children move up to the deleted category's parent.
		var category model.Category
		if err := tx.First(&category, "id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.Category{}).Where("parent_id = ?", id).
			Update("parent_id", category.ParentID).Error; err != nil {
			return err
		}
		return softDelete(tx, &model.Category{}, id, deletedBy)
	})
}

func (r *categoryRepo) FindByID(id uuid.UUID) (*model.Category, error) {
	var category model.Category
	if err := r.db.Preload("Children").First(&category, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepo) FindAll(parentID *uuid.UUID, rootsOnly bool) ([]model.Category, error) {
	var categories []model.Category
	query := r.db.Model(&model.Category{})
	if parentID != nil {
		query = query.Where("parent_id = ?", *parentID)
	} else if rootsOnly {
		query = query.Where("parent_id IS NULL")
	}
	err := query.Order("name ASC").Find(&categories).Error
	return categories, err
}

// Descendants returns the category and its whole subtree, ordered by depth.
func (r *categoryRepo) Descendants(id uuid.UUID) ([]model.CategoryNode, error) {
	var nodes []model.CategoryNode
	err := r.db.Raw(`
		WITH RECURSIVE tree AS (
			SELECT id, name, slug, parent_id, 0 AS depth
			FROM categories
			WHERE id = ? AND deleted_at IS NULL
			UNION ALL
			SELECT c.id, c.name, c.slug, c.parent_id, t.depth + 1
			FROM categories c
			JOIN tree t ON c.parent_id = t.id
			WHERE c.deleted_at IS NULL
		)
		SELECT id, name, slug, parent_id, depth FROM tree ORDER BY depth ASC, name ASC`, id).
		Scan(&nodes).Error
	return nodes, err
}

func (r *categoryRepo) SlugExists(slug string) (bool, error) {
	return exists(r.db.Unscoped().Model(&model.Category{}).Where("slug = ?", slug))
}

type CollectionRepository interface {
	Create(collection *model.Collection) error
	Update(collection *model.Collection) error
	Delete(id uuid.UUID, deletedBy string) error
	FindByID(id uuid.UUID, withProducts bool) (*model.Collection, error)
	FindAll(activeOnly bool, p pagination.Params) ([]model.Collection, int64, error)
	AddProducts(collection *model.Collection, products []model.Product) error
	RemoveProduct(collection *model.Collection, productID uuid.UUID) error
	SlugExists(slug string) (bool, error)
}

type collectionRepo struct {
	db *gorm.DB
}

func NewCollectionRepo(db *gorm.DB) CollectionRepository {
	return &collectionRepo{db}
}

func (r *collectionRepo) Create(collection *model.Collection) error {
	return r.db.Omit("Products").Create(collection).Error
}

func (r *collectionRepo) Update(collection *model.Collection) error {
	return r.db.Omit("Products").Save(collection).Error
}

func (r *collectionRepo) Delete(id uuid.UUID, deletedBy string) error {
	return softDelete(r.db, &model.Collection{}, id, deletedBy)
}

func (r *collectionRepo) FindByID(id uuid.UUID, withProducts bool) (*model.Collection, error) {
	var collection model.Collection
	query := r.db
	if withProducts {
		query = query.Preload("Products", "is_published = ?", true).Preload("Products.Variations")
	}
	if err := query.First(&collection, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &collection, nil
}

func (r *collectionRepo) FindAll(activeOnly bool, p pagination.Params) ([]model.Collection, int64, error) {
	var collections []model.Collection
	var total int64
	query := r.db.Model(&model.Collection{})
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("name ASC").Scopes(p.Scope).Find(&collections).Error
	return collections, total, err
}

func (r *collectionRepo) AddProducts(collection *model.Collection, products []model.Product) error {
	return r.db.Model(collection).Association("Products").Append(products)
}

func (r *collectionRepo) RemoveProduct(collection *model.Collection, productID uuid.UUID) error {
	return r.db.Model(collection).Association("Products").Delete(&model.Product{BaseModel: model.BaseModel{ID: productID}})
}

func (r *collectionRepo) SlugExists(slug string) (bool, error) {
	return exists(r.db.Unscoped().Model(&model.Collection{}).Where("slug = ?", slug))
}

type TagRepository interface {
	Create(tag *model.Tag) error
	Update(tag *model.Tag) error
	Delete(id uuid.UUID, deletedBy string) error
	FindByID(id uuid.UUID) (*model.Tag, error)
	FindByIDs(ids []uuid.UUID) ([]model.Tag, error)
	FindAll() ([]model.Tag, error)
	NameExists(name string, excludeID *uuid.UUID) (bool, error)
	SlugExists(slug string) (bool, error)
}

type tagRepo struct {
	db *gorm.DB
}

func NewTagRepo(db *gorm.DB) TagRepository {
	return &tagRepo{db}
}

func (r *tagRepo) Create(tag *model.Tag) error {
	return r.db.Create(tag).Error
}

func (r *tagRepo) Update(tag *model.Tag) error {
	return r.db.Save(tag).Error
}

func (r *tagRepo) Delete(id uuid.UUID, deletedBy string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM product_tags WHERE tag_id = ?", id).Error; err != nil {
			return err
		}
		return softDelete(tx, &model.Tag{}, id, deletedBy)
	})
}

func (r *tagRepo) FindByID(id uuid.UUID) (*model.Tag, error) {
	var tag model.Tag
	if err := r.db.First(&tag, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

func (r *tagRepo) FindByIDs(ids []uuid.UUID) ([]model.Tag, error) {
	var tags []model.Tag
	if len(ids) == 0 {
		return tags, nil
	}
	err := r.db.Where("id IN ?", ids).Find(&tags).Error
	return tags, err
}

func (r *tagRepo) FindAll() ([]model.Tag, error) {
	var tags []model.Tag
	err := r.db.Order("name ASC").Find(&tags).Error
	return tags, err
}

func (r *tagRepo) NameExists(name string, excludeID *uuid.UUID) (bool, error) {
	query := r.db.Unscoped().Model(&model.Tag{}).Where("LOWER(name) = LOWER(?)", name)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	return exists(query)
}

func (r *tagRepo) SlugExists(slug string) (bool, error) {
	return exists(r.db.Unscoped().Model(&model.Tag{}).Where("slug = ?", slug))
}
