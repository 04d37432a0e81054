package repository

import (
	"go-marketplace-api/internal/model"
	"go-marketplace-api/pkg/pagination"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SettlementRepository interface {
	WithTx(tx *gorm.DB) SettlementRepository
	Create(settlement *model.VendorSettlement) error
	FindAll(storeID *uuid.UUID, p pagination.Params) ([]model.VendorSettlement, int64, error)
}

type settlementRepo struct {
	db *gorm.DB
}

func NewSettlementRepo(db *gorm.DB) SettlementRepository {
	return &settlementRepo{db}
}

func (r *settlementRepo) WithTx(tx *gorm.DB) SettlementRepository {
	return &settlementRepo{tx}
}

func (r *settlementRepo) Create(settlement *model.VendorSettlement) error {
	return r.db.Omit("Store").Create(settlement).Error
}

func (r *settlementRepo) FindAll(storeID *uuid.UUID, p pagination.Params) ([]model.VendorSettlement, int64, error) {
	var settlements []model.VendorSettlement
	var total int64

	query := r.db.Model(&model.VendorSettlement{})
	if storeID != nil {
		query = query.Where("store_id = ?", *storeID)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Preload("Store").
		Order("created_at DESC").
		Scopes(p.Scope).
		Find(&settlements).Error
	return settlements, total, err
}
