package repository

import (
	"time"

	"go-marketplace-api/internal/model"
	"go-marketplace-api/pkg/pagination"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type FlashSaleRepository interface {
	WithTx(tx *gorm.DB) FlashSaleRepository
	Create(sale *model.FlashSale) error
	Update(sale *model.FlashSale) error
	Delete(id uuid.UUID, deletedBy string) error
	FindByID(id uuid.UUID) (*model.FlashSale, error)
	FindAll(p pagination.Params) ([]model.FlashSale, int64, error)
	FindActive(now time.Time) ([]model.FlashSale, error)
	ReplaceItems(saleID uuid.UUID, items []model.FlashSaleItem) error
	// ActivePrices returns the lowest running flash price per variation.
	ActivePrices(variationIDs []uuid.UUID, now time.Time) (map[uuid.UUID]decimal.Decimal, error)
}

type flashSaleRepo struct {
	db *gorm.DB
}

func NewFlashSaleRepo(db *gorm.DB) FlashSaleRepository {
	return &flashSaleRepo{db}
}

func (r *flashSaleRepo) WithTx(tx *gorm.DB) FlashSaleRepository {
	return &flashSaleRepo{tx}
}

func (r *flashSaleRepo) Create(sale *model.FlashSale) error {
	return r.db.Omit("Items").Create(sale).Error
}

func (r *flashSaleRepo) Update(sale *model.FlashSale) error {
	return r.db.Omit("Items").Save(sale).Error
}

func (r *flashSaleRepo) Delete(id uuid.UUID, deletedBy string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("flash_sale_id = ?", id).Delete(&model.FlashSaleItem{}).Error; err != nil {
			return err
		}
		return softDelete(tx, &model.FlashSale{}, id, deletedBy)
	})
}

func (r *flashSaleRepo) FindByID(id uuid.UUID) (*model.FlashSale, error) {
	var sale model.FlashSale
	err := r.db.Preload("Items.Variation").First(&sale, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *flashSaleRepo) FindAll(p pagination.Params) ([]model.FlashSale, int64, error) {
	var sales []model.FlashSale
	var total int64
	query := r.db.Model(&model.FlashSale{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("start_at DESC").Scopes(p.Scope).Find(&sales).Error
	return sales, total, err
}

func (r *flashSaleRepo) FindActive(now time.Time) ([]model.FlashSale, error) {
	var sales []model.FlashSale
	err := r.db.Preload("Items.Variation").
		Where("is_active = ? AND start_at <= ? AND end_at > ?", true, now, now).
		Order("end_at ASC").
		Find(&sales).Error
	return sales, err
}

func (r *flashSaleRepo) ReplaceItems(saleID uuid.UUID, items []model.FlashSaleItem) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("flash_sale_id = ?", saleID).Delete(&model.FlashSaleItem{}).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		for i := range items {
			items[i].FlashSaleID = saleID
		}
		return tx.Omit("Variation").Create(&items).Error
	})
}

func (r *flashSaleRepo) ActivePrices(variationIDs []uuid.UUID, now time.Time) (map[uuid.UUID]decimal.Decimal, error) {
	prices := make(map[uuid.UUID]decimal.Decimal)
	if len(variationIDs) == 0 {
		return prices, nil
	}

	var items []model.FlashSaleItem
	err := r.db.Model(&model.FlashSaleItem{}).
		Joins("JOIN flash_sales ON flash_sales.id = flash_sale_items.flash_sale_id").
		Where("flash_sale_items.variation_id IN ?", variationIDs).
		Where("flash_sales.is_active = ? AND flash_sales.deleted_at IS NULL", true).
		Where("flash_sales.start_at <= ? AND flash_sales.end_at > ?", now, now).
		Find(&items).Error
	if err != nil {
		return nil, err
	}

	for _, item := range items {
		if current, ok := prices[item.VariationID]; !ok || item.Price.LessThan(current) {
			prices[item.VariationID] = item.Price
		}
	}
	return prices, nil
}
