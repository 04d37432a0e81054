package repository

import (
	"strings"

	"go-marketplace-api/internal/model"
	"go-marketplace-api/pkg/pagination"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CouponRepository interface {
	WithTx(tx *gorm.DB) CouponRepository
	Create(coupon *model.Coupon) error
	Update(coupon *model.Coupon) error
	Delete(id uuid.UUID, deletedBy string) error
	FindByID(id uuid.UUID) (*model.Coupon, error)
	FindByCode(code string) (*model.Coupon, error)
	FindAll(search string, p pagination.Params) ([]model.Coupon, int64, error)
	CodeExists(code string) (bool, error)
	ReplaceScope(coupon *model.Coupon, stores []model.Store, users []model.User, products []model.Product) error
	// LockByCode reads the coupon FOR UPDATE; call it inside a transaction.
	LockByCode(code string) (*model.Coupon, error)
	IncrementUsage(id uuid.UUID) error
}

type couponRepo struct {
	db *gorm.DB
}

func NewCouponRepo(db *gorm.DB) CouponRepository {
	return &couponRepo{db}
}

func (r *couponRepo) WithTx(tx *gorm.DB) CouponRepository {
	return &couponRepo{tx}
}

func (r *couponRepo) Create(coupon *model.Coupon) error {
	return r.db.Omit(clause.Associations).Create(coupon).Error
}

func (r *couponRepo) Update(coupon *model.Coupon) error {
	return r.db.Omit(clause.Associations).Save(coupon).Error
}

func (r *couponRepo) Delete(id uuid.UUID, deletedBy string) error {
	return softDelete(r.db, &model.Coupon{}, id, deletedBy)
}

func (r *couponRepo) withScope(db *gorm.DB) *gorm.DB {
	return db.Preload("Stores").Preload("Users").Preload("Products")
}

func (r *couponRepo) FindByID(id uuid.UUID) (*model.Coupon, error) {
	var coupon model.Coupon
	if err := r.withScope(r.db).First(&coupon, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &coupon, nil
}

func (r *couponRepo) FindByCode(code string) (*model.Coupon, error) {
	var coupon model.Coupon
	err := r.withScope(r.db).First(&coupon, "code = ?", strings.ToUpper(code)).Error
	if err != nil {
		return nil, err
	}
	return &coupon, nil
}

func (r *couponRepo) FindAll(search string, p pagination.Params) ([]model.Coupon, int64, error) {
	var coupons []model.Coupon
	var total int64
	query := r.db.Model(&model.Coupon{})
	if search != "" {
		query = query.Where("code LIKE ?", "%"+strings.ToUpper(search)+"%")
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("created_at DESC").Scopes(p.Scope).Find(&coupons).Error
	return coupons, total, err
}

func (r *couponRepo) CodeExists(code string) (bool, error) {
	return exists(r.db.Unscoped().Model(&model.Coupon{}).Where("code = ?", strings.ToUpper(code)))
}

func (r *couponRepo) ReplaceScope(coupon *model.Coupon, stores []model.Store, users []model.User, products []model.Product) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(coupon).Association("Stores").Replace(stores); err != nil {
			return err
		}
		if err := tx.Model(coupon).Association("Users").Replace(users); err != nil {
			return err
		}
		return tx.Model(coupon).Association("Products").Replace(products)
	})
}

func (r *couponRepo) LockByCode(code string) (*model.Coupon, error) {
	var coupon model.Coupon
	err := r.withScope(r.db.Clauses(clause.Locking{Strength: "UPDATE"})).
		First(&coupon, "code = ?", strings.ToUpper(code)).Error
	if err != nil {
		return nil, err
	}
	return &coupon, nil
}

func (r *couponRepo) IncrementUsage(id uuid.UUID) error {
	return r.db.Model(&model.Coupon{}).Where("id = ?", id).
		UpdateColumn("used_count", gorm.Expr("used_count + 1")).Error
}

type CreditCodeRepository interface {
	WithTx(tx *gorm.DB) CreditCodeRepository
	Create(code *model.CreditCode) error
	Update(code *model.CreditCode) error
	Delete(id uuid.UUID, deletedBy string) error
	FindByID(id uuid.UUID) (*model.CreditCode, error)
	FindByCode(code string) (*model.CreditCode, error)
	FindAll(search string, p pagination.Params) ([]model.CreditCode, int64, error)
	CodeExists(code string) (bool, error)
	LockByCode(code string) (*model.CreditCode, error)
	IncrementUsage(id uuid.UUID) error
	HasUsage(codeID, userID uuid.UUID) (bool, error)
	CreateUsage(usage *model.CreditCodeUsage) error
}

type creditCodeRepo struct {
	db *gorm.DB
}

func NewCreditCodeRepo(db *gorm.DB) CreditCodeRepository {
	return &creditCodeRepo{db}
}

func (r *creditCodeRepo) WithTx(tx *gorm.DB) CreditCodeRepository {
	return &creditCodeRepo{tx}
}

func (r *creditCodeRepo) Create(code *model.CreditCode) error {
	return r.db.Create(code).Error
}

func (r *creditCodeRepo) Update(code *model.CreditCode) error {
	return r.db.Save(code).Error
}

func (r *creditCodeRepo) Delete(id uuid.UUID, deletedBy string) error {
	return softDelete(r.db, &model.CreditCode{}, id, deletedBy)
}

func (r *creditCodeRepo) FindByID(id uuid.UUID) (*model.CreditCode, error) {
	var code model.CreditCode
	if err := r.db.First(&code, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &code, nil
}

func (r *creditCodeRepo) FindByCode(code string) (*model.CreditCode, error) {
	var credit model.CreditCode
	if err := r.db.First(&credit, "code = ?", strings.ToUpper(code)).Error; err != nil {
		return nil, err
	}
	return &credit, nil
}

func (r *creditCodeRepo) FindAll(search string, p pagination.Params) ([]model.CreditCode, int64, error) {
	var codes []model.CreditCode
	var total int64
	query := r.db.Model(&model.CreditCode{})
	if search != "" {
		query = query.Where("code LIKE ?", "%"+strings.ToUpper(search)+"%")
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("created_at DESC").Scopes(p.Scope).Find(&codes).Error
	return codes, total, err
}

func (r *creditCodeRepo) CodeExists(code string) (bool, error) {
	return exists(r.db.Unscoped().Model(&model.CreditCode{}).Where("code = ?", strings.ToUpper(code)))
}

func (r *creditCodeRepo) LockByCode(code string) (*model.CreditCode, error) {
	var credit model.CreditCode
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&credit, "code = ?", strings.ToUpper(code)).Error
	if err != nil {
		return nil, err
	}
	return &credit, nil
}

func (r *creditCodeRepo) IncrementUsage(id uuid.UUID) error {
	return r.db.Model(&model.CreditCode{}).Where("id = ?", id).
		UpdateColumn("used_count", gorm.Expr("used_count + 1")).Error
}

func (r *creditCodeRepo) HasUsage(codeID, userID uuid.UUID) (bool, error) {
	return exists(r.db.Model(&model.CreditCodeUsage{}).
		Where("credit_code_id = ? AND user_id = ?", codeID, userID))
}

func (r *creditCodeRepo) CreateUsage(usage *model.CreditCodeUsage) error {
	return r.db.Create(usage).Error
}
