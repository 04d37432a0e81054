package repository

import (
	"go-marketplace-api/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CartRepository interface {
	WithTx(tx *gorm.DB) CartRepository
	FindByUser(userID uuid.UUID) ([]model.Cart, error)
	FindByID(id uuid.UUID) (*model.Cart, error)
	FindByUserAndVariation(userID, variationID uuid.UUID) (*model.Cart, error)
	Create(line *model.Cart) error
	UpdateQuantity(id uuid.UUID, quantity int) error
	Delete(id uuid.UUID) error
	ClearUser(userID uuid.UUID) error
}

type cartRepo struct {
	db *gorm.DB
}

func NewCartRepo(db *gorm.DB) CartRepository {
	return &cartRepo{db}
}

func (r *cartRepo) WithTx(tx *gorm.DB) CartRepository {
	return &cartRepo{tx}
}

func (r *cartRepo) FindByUser(userID uuid.UUID) ([]model.Cart, error) {
	var lines []model.Cart
	err := r.db.Preload("Variation.Product.Store").
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&lines).Error
	return lines, err
}

func (r *cartRepo) FindByID(id uuid.UUID) (*model.Cart, error) {
	var line model.Cart
	if err := r.db.Preload("Variation").First(&line, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *cartRepo) FindByUserAndVariation(userID, variationID uuid.UUID) (*model.Cart, error) {
	var line model.Cart
	err := r.db.Where("user_id = ? AND variation_id = ?", userID, variationID).First(&line).Error
	if err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *cartRepo) Create(line *model.Cart) error {
	return r.db.Omit("Variation").Create(line).Error
}

func (r *cartRepo) UpdateQuantity(id uuid.UUID, quantity int) error {
	return r.db.Model(&model.Cart{}).Where("id = ?", id).Update("quantity", quantity).Error
}

// Cart lines are removed for good so the (user, variation) index stays reusable.
func (r *cartRepo) Delete(id uuid.UUID) error {
	res := r.db.Unscoped().Delete(&model.Cart{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *cartRepo) ClearUser(userID uuid.UUID) error {
	return r.db.Unscoped().Where("user_id = ?", userID).Delete(&model.Cart{}).Error
}

type WishlistRepository interface {
	FindByUser(userID uuid.UUID) ([]model.Wishlist, error)
	FindByUserAndProduct(userID, productID uuid.UUID) (*model.Wishlist, error)
	Create(item *model.Wishlist) error
	Delete(userID, productID uuid.UUID) error
}

type wishlistRepo struct {
	db *gorm.DB
}

func NewWishlistRepo(db *gorm.DB) WishlistRepository {
	return &wishlistRepo{db}
}

func (r *wishlistRepo) FindByUser(userID uuid.UUID) ([]model.Wishlist, error) {
	var items []model.Wishlist
	err := r.db.Preload("Product.Variations").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&items).Error
	return items, err
}

func (r *wishlistRepo) FindByUserAndProduct(userID, productID uuid.UUID) (*model.Wishlist, error) {
	var item model.Wishlist
	err := r.db.Where("user_id = ? AND product_id = ?", userID, productID).First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *wishlistRepo) Create(item *model.Wishlist) error {
	return r.db.Omit("Product").Create(item).Error
}

func (r *wishlistRepo) Delete(userID, productID uuid.UUID) error {
	res := r.db.Unscoped().Where("user_id = ? AND product_id = ?", userID, productID).Delete(&model.Wishlist{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
