package repository

import (
	"strings"

	"go-marketplace-api/internal/model"
	"go-marketplace-api/pkg/pagination"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductSort string

const (
	SortNewest    ProductSort = "newest"
	SortPriceAsc  ProductSort = "price_asc"
	SortPriceDesc ProductSort = "price_desc"
)

type ProductFilter struct {
	Query            string
	StoreID          *uuid.UUID
	CategoryID       *uuid.UUID
	CollectionID     *uuid.UUID
	Tag              string
	MinPrice         *decimal.Decimal
	MaxPrice         *decimal.Decimal
	IncludeUnpublish bool
	Sort             ProductSort
}

type ProductRepository interface {
	Create(product *model.Product) error
	Update(product *model.Product) error
	Delete(id uuid.UUID, deletedBy string) error
	FindByID(id uuid.UUID) (*model.Product, error)
	FindBySlug(slug string) (*model.Product, error)
	FindByIDs(ids []uuid.UUID) ([]model.Product, error)
	FindAll(f ProductFilter, p pagination.Params) ([]model.Product, int64, error)
	SlugExists(slug string) (bool, error)
	ReplaceTags(product *model.Product, tags []model.Tag) error
	AddRelated(productID uuid.UUID, relatedIDs []uuid.UUID) error
	RemoveRelated(productID, relatedID uuid.UUID) error
	FindRelated(productID uuid.UUID) ([]model.Product, error)
	Count() (int64, error)
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

func (r *productRepo) Create(product *model.Product) error {
	return r.db.Omit("Store", "Category", "Tags.*", "RelatedProducts").Create(product).Error
}

func (r *productRepo) Update(product *model.Product) error {
	return r.db.Omit(clause.Associations).Save(product).Error
}

func (r *productRepo) Delete(id uuid.UUID, deletedBy string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&model.ProductVariation{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM related_products WHERE product_id = ? OR related_product_id = ?", id, id).Error; err != nil {
			return err
		}
		return softDelete(tx, &model.Product{}, id, deletedBy)
	})
}

func (r *productRepo) detailed() *gorm.DB {
	return r.db.Preload("Variations", func(db *gorm.DB) *gorm.DB {
		return db.Order("price ASC")
	}).Preload("Tags").Preload("Store").Preload("Category")
}

func (r *productRepo) FindByID(id uuid.UUID) (*model.Product, error) {
	var product model.Product
	if err := r.detailed().First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) FindBySlug(slug string) (*model.Product, error) {
	var product model.Product
	if err := r.detailed().First(&product, "slug = ?", slug).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) FindByIDs(ids []uuid.UUID) ([]model.Product, error) {
	var products []model.Product
	if len(ids) == 0 {
		return products, nil
	}
	err := r.db.Where("id IN ?", ids).Find(&products).Error
	return products, err
}

func (r *productRepo) FindAll(f ProductFilter, p pagination.Params) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64

	query := r.db.Model(&model.Product{})
	if !f.IncludeUnpublish {
		query = query.Where("products.is_published = ?", true)
	}
	if f.Query != "" {
		query = query.Where("LOWER(products.name) LIKE ?", "%"+strings.ToLower(f.Query)+"%")
	}
	if f.StoreID != nil {
		query = query.Where("products.store_id = ?", *f.StoreID)
	}
	if f.CategoryID != nil {
		query = query.Where("products.category_id = ?", *f.CategoryID)
	}
	if f.Tag != "" {
		query = query.Where("products.id IN (?)", r.db.Table("product_tags").
			Select("product_tags.product_id").
			Joins("JOIN tags ON tags.id = product_tags.tag_id").
			Where("tags.slug = ? AND tags.deleted_at IS NULL", f.Tag))
	}
	if f.CollectionID != nil {
		query = query.Where("products.id IN (?)", r.db.Table("collection_products").
			Select("product_id").
			Where("collection_id = ?", *f.CollectionID))
	}
	if f.MinPrice != nil || f.MaxPrice != nil {
		variations := r.db.Model(&model.ProductVariation{}).Select("product_id")
		if f.MinPrice != nil {
			variations = variations.Where("price >= ?", *f.MinPrice)
		}
		if f.MaxPrice != nil {
			variations = variations.Where("price <= ?", *f.MaxPrice)
		}
		query = query.Where("products.id IN (?)", variations)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	const minPrice = "(SELECT MIN(pv.price) FROM product_variations pv WHERE pv.product_id = products.id AND pv.deleted_at IS NULL)"
	switch f.Sort {
	case SortPriceAsc:
		query = query.Order(minPrice + " ASC")
	case SortPriceDesc:
		query = query.Order(minPrice + " DESC")
	default:
		query = query.Order("products.created_at DESC")
	}

	err := query.Preload("Variations").Preload("Tags").
		Scopes(p.Scope).
		Find(&products).Error
	return products, total, err
}

func (r *productRepo) SlugExists(slug string) (bool, error) {
	return exists(r.db.Unscoped().Model(&model.Product{}).Where("slug = ?", slug))
}

func (r *productRepo) ReplaceTags(product *model.Product, tags []model.Tag) error {
	return r.db.Model(product).Association("Tags").Replace(tags)
}

// AddRelated links products in both directions; existing links are kept.
func (r *productRepo) AddRelated(productID uuid.UUID, relatedIDs []uuid.UUID) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		for _, relatedID := range relatedIDs {
			for _, pair := range [][2]uuid.UUID{{productID, relatedID}, {relatedID, productID}} {
				var count int64
				if err := tx.Table("related_products").
					Where("product_id = ? AND related_product_id = ?", pair[0], pair[1]).
					Count(&count).Error; err != nil {
					return err
				}
				if count > 0 {
					continue
				}
				if err := tx.Exec("INSERT INTO related_products (product_id, related_product_id) VALUES (?, ?)", pair[0], pair[1]).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func (r *productRepo) RemoveRelated(productID, relatedID uuid.UUID) error {
	return r.db.Exec(`DELETE FROM related_products
		WHERE (product_id = ? AND related_product_id = ?) OR (product_id = ? AND related_product_id = ?)`,
		productID, relatedID, relatedID, productID).Error
}

func (r *productRepo) FindRelated(productID uuid.UUID) ([]model.Product, error) {
	var products []model.Product
	err := r.db.Where("id IN (?)", r.db.Table("related_products").
		Select("related_product_id").
		Where("product_id = ?", productID)).
		Where("is_published = ?", true).
		Preload("Variations").
		Order("name ASC").
		Find(&products).Error
	return products, err
}

func (r *productRepo) Count() (int64, error) {
	var count int64
	err := r.db.Model(&model.Product{}).Count(&count).Error
	return count, err
}

type VariationRepository interface {
	WithTx(tx *gorm.DB) VariationRepository
	Create(variation *model.ProductVariation) error
	Update(variation *model.ProductVariation) error
	Delete(id uuid.UUID, deletedBy string) error
	FindByID(id uuid.UUID) (*model.ProductVariation, error)
	FindByIDs(ids []uuid.UUID) ([]model.ProductVariation, error)
	FindByProduct(productID uuid.UUID) ([]model.ProductVariation, error)
	LockByIDs(ids []uuid.UUID) ([]model.ProductVariation, error)
	AdjustStock(id uuid.UUID, delta int) error
	SKUExists(sku string, excludeID *uuid.UUID) (bool, error)
}

type variationRepo struct {
	db *gorm.DB
}

func NewVariationRepo(db *gorm.DB) VariationRepository {
	return &variationRepo{db}
}

func (r *variationRepo) WithTx(tx *gorm.DB) VariationRepository {
	return &variationRepo{tx}
}

func (r *variationRepo) Create(variation *model.ProductVariation) error {
	return r.db.Omit("Product").Create(variation).Error
}

func (r *variationRepo) Update(variation *model.ProductVariation) error {
	return r.db.Omit("Product").Save(variation).Error
}

func (r *variationRepo) Delete(id uuid.UUID, deletedBy string) error {
	return softDelete(r.db, &model.ProductVariation{}, id, deletedBy)
}

func (r *variationRepo) FindByID(id uuid.UUID) (*model.ProductVariation, error) {
	var variation model.ProductVariation
	if err := r.db.Preload("Product").First(&variation, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &variation, nil
}

func (r *variationRepo) FindByIDs(ids []uuid.UUID) ([]model.ProductVariation, error) {
	var variations []model.ProductVariation
	if len(ids) == 0 {
		return variations, nil
	}
	err := r.db.Preload("Product").Where("id IN ?", ids).Find(&variations).Error
	return variations, err
}

func (r *variationRepo) FindByProduct(productID uuid.UUID) ([]model.ProductVariation, error) {
	var variations []model.ProductVariation
	err := r.db.Where("product_id = ?", productID).Order("price ASC").Find(&variations).Error
	return variations, err
}

// LockByIDs reads variations FOR UPDATE; call it inside a transaction.
func (r *variationRepo) LockByIDs(ids []uuid.UUID) ([]model.ProductVariation, error) {
	var variations []model.ProductVariation
	if len(ids) == 0 {
		return variations, nil
	}
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&variations).Error
	if err != nil {
		return nil, err
	}
	return variations, r.attachProducts(variations)
}

func (r *variationRepo) attachProducts(variations []model.ProductVariation) error {
	ids := make([]uuid.UUID, 0, len(variations))
	for _, v := range variations {
		ids = append(ids, v.ProductID)
	}
	var products []model.Product
	if err := r.db.Where("id IN ?", ids).Find(&products).Error; err != nil {
		return err
	}
	byID := make(map[uuid.UUID]*model.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}
	for i := range variations {
		variations[i].Product = byID[variations[i].ProductID]
	}
	return nil
}

func (r *variationRepo) AdjustStock(id uuid.UUID, delta int) error {
	return r.db.Model(&model.ProductVariation{}).
		Where("id = ?", id).
		UpdateColumn("stock", gorm.Expr("stock + ?", delta)).Error
}

func (r *variationRepo) SKUExists(sku string, excludeID *uuid.UUID) (bool, error) {
	query := r.db.Unscoped().Model(&model.ProductVariation{}).Where("sku = ?", sku)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	return exists(query)
}
