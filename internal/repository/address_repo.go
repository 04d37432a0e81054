package repository

import (
	"go-marketplace-api/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AddressRepository interface {
	Create(address *model.UserAddress) error
	Update(address *model.UserAddress) error
	Delete(id uuid.UUID, deletedBy string) error
	FindByID(id uuid.UUID) (*model.UserAddress, error)
	FindByUser(userID uuid.UUID) ([]model.UserAddress, error)
	CountByUser(userID uuid.UUID) (int64, error)
	ClearDefault(userID uuid.UUID, exceptID uuid.UUID) error
}

type addressRepo struct {
	db *gorm.DB
}

func NewAddressRepo(db *gorm.DB) AddressRepository {
	return &addressRepo{db}
}

func (r *addressRepo) Create(address *model.UserAddress) error {
	return r.db.Create(address).Error
}

func (r *addressRepo) Update(address *model.UserAddress) error {
	return r.db.Save(address).Error
}

func (r *addressRepo) Delete(id uuid.UUID, deletedBy string) error {
	return softDelete(r.db, &model.UserAddress{}, id, deletedBy)
}

func (r *addressRepo) FindByID(id uuid.UUID) (*model.UserAddress, error) {
	var address model.UserAddress
	if err := r.db.First(&address, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &address, nil
}

func (r *addressRepo) FindByUser(userID uuid.UUID) ([]model.UserAddress, error) {
	var addresses []model.UserAddress
	err := r.db.Where("user_id = ?", userID).
		Order("is_default DESC, created_at ASC").
		Find(&addresses).Error
	return addresses, err
}

func (r *addressRepo) CountByUser(userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&model.UserAddress{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

func (r *addressRepo) ClearDefault(userID uuid.UUID, exceptID uuid.UUID) error {
	return r.db.Model(&model.UserAddress{}).
		Where("user_id = ? AND id <> ? AND is_default = ?", userID, exceptID, true).
		Update("is_default", false).Error
}
