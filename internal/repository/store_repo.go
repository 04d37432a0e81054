package repository

import (
	"go-marketplace-api/internal/model"
	"go-marketplace-api/pkg/pagination"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StoreFilter struct {
	OwnerID         *uuid.UUID
	Search          string
	IncludeInactive bool
}

type StoreRepository interface {
	Create(store *model.Store) error
	Update(store *model.Store) error
	Delete(id uuid.UUID, deletedBy string) error
	FindByID(id uuid.UUID) (*model.Store, error)
	FindByIDs(ids []uuid.UUID) ([]model.Store, error)
	FindAll(f StoreFilter, p pagination.Params) ([]model.Store, int64, error)
	SlugExists(slug string) (bool, error)
}

type storeRepo struct {
	db *gorm.DB
}

func NewStoreRepo(db *gorm.DB) StoreRepository {
	return &storeRepo{db}
}

func (r *storeRepo) Create(store *model.Store) error {
	return r.db.Create(store).Error
}

func (r *storeRepo) Update(store *model.Store) error {
	return r.db.Omit("Owner").Save(store).Error
}

func (r *storeRepo) Delete(id uuid.UUID, deletedBy string) error {
	return softDelete(r.db, &model.Store{}, id, deletedBy)
}

func (r *storeRepo) FindByID(id uuid.UUID) (*model.Store, error) {
	var store model.Store
	if err := r.db.First(&store, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

func (r *storeRepo) FindByIDs(ids []uuid.UUID) ([]model.Store, error) {
	var stores []model.Store
	if len(ids) == 0 {
		return stores, nil
	}
	err := r.db.Where("id IN ?", ids).Find(&stores).Error
	return stores, err
}

func (r *storeRepo) FindAll(f StoreFilter, p pagination.Params) ([]model.Store, int64, error) {
	var stores []model.Store
	var total int64

	query := r.db.Model(&model.Store{})
	if f.OwnerID != nil {
		query = query.Where("owner_id = ?", *f.OwnerID)
	}
	if !f.IncludeInactive {
		query = query.Where("is_active = ?", true)
	}
	if f.Search != "" {
		query = query.Where("LOWER(name) LIKE LOWER(?)", "%"+f.Search+"%")
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("name ASC").Scopes(p.Scope).Find(&stores).Error
	return stores, total, err
}

func (r *storeRepo) SlugExists(slug string) (bool, error) {
	return exists(r.db.Unscoped().Model(&model.Store{}).Where("slug = ?", slug))
}
