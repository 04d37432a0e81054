package repository

import (
	"errors"

	"go-marketplace-api/internal/model"
	"go-marketplace-api/pkg/pagination"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TransactionFilter struct {
	UserID  *uuid.UUID
	Type    model.TransactionType
	Purpose model.TransactionPurpose
}

type WalletRepository interface {
	WithTx(tx *gorm.DB) WalletRepository
	FindByUser(userID uuid.UUID) (*model.UserWallet, error)
	Create(wallet *model.UserWallet) error
	// LockByUser reads the wallet FOR UPDATE, creating an empty one first
	// when the user has none. Call it inside a transaction.
	LockByUser(userID uuid.UUID) (*model.UserWallet, error)
	UpdateBalance(walletID uuid.UUID, balance decimal.Decimal) error

	CreateTransaction(entry *model.Transaction) error
	FindTransactionByID(id uuid.UUID) (*model.Transaction, error)
	FindTransactions(f TransactionFilter, p pagination.Params) ([]model.Transaction, int64, error)

	CreateTopup(topup *model.Topup) error
	// PaymentReferenceUsed reports whether a top-up or a gateway order
	// already consumed the reference.
	PaymentReferenceUsed(reference string) (bool, error)
	FindTopups(userID uuid.UUID, p pagination.Params) ([]model.Topup, int64, error)
}

type walletRepo struct {
	db *gorm.DB
}

func NewWalletRepo(db *gorm.DB) WalletRepository {
	return &walletRepo{db}
}

func (r *walletRepo) WithTx(tx *gorm.DB) WalletRepository {
	return &walletRepo{tx}
}

func (r *walletRepo) FindByUser(userID uuid.UUID) (*model.UserWallet, error) {
	var wallet model.UserWallet
	if err := r.db.First(&wallet, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &wallet, nil
}

func (r *walletRepo) Create(wallet *model.UserWallet) error {
	return r.db.Create(wallet).Error
}

func (r *walletRepo) LockByUser(userID uuid.UUID) (*model.UserWallet, error) {
	var wallet model.UserWallet
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&wallet, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		wallet = model.UserWallet{UserID: userID, Balance: decimal.Zero}
		if err := r.db.Create(&wallet).Error; err != nil {
			return nil, err
		}
		return &wallet, nil
	}
	if err != nil {
		return nil, err
	}
	return &wallet, nil
}

func (r *walletRepo) UpdateBalance(walletID uuid.UUID, balance decimal.Decimal) error {
	return r.db.Model(&model.UserWallet{}).Where("id = ?", walletID).Update("balance", balance).Error
}

func (r *walletRepo) CreateTransaction(entry *model.Transaction) error {
	return r.db.Create(entry).Error
}

func (r *walletRepo) FindTransactionByID(id uuid.UUID) (*model.Transaction, error) {
	var entry model.Transaction
	if err := r.db.First(&entry, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *walletRepo) FindTransactions(f TransactionFilter, p pagination.Params) ([]model.Transaction, int64, error) {
	var entries []model.Transaction
	var total int64

	query := r.db.Model(&model.Transaction{})
	if f.UserID != nil {
		query = query.Where("user_id = ?", *f.UserID)
	}
	if f.Type != "" {
		query = query.Where("type = ?", f.Type)
	}
	if f.Purpose != "" {
		query = query.Where("purpose = ?", f.Purpose)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("created_at DESC").Scopes(p.Scope).Find(&entries).Error
	return entries, total, err
}

func (r *walletRepo) CreateTopup(topup *model.Topup) error {
	return r.db.Create(topup).Error
}

func (r *walletRepo) PaymentReferenceUsed(reference string) (bool, error) {
	used, err := exists(r.db.Unscoped().Model(&model.Topup{}).Where("reference = ?", reference))
	if err != nil || used {
		return used, err
	}
	return exists(r.db.Unscoped().Model(&model.Order{}).
		Where("payment_method = ? AND payment_reference = ?", model.PaymentGateway, reference))
}

func (r *walletRepo) FindTopups(userID uuid.UUID, p pagination.Params) ([]model.Topup, int64, error) {
	var topups []model.Topup
	var total int64
	query := r.db.Model(&model.Topup{}).Where("user_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("created_at DESC").Scopes(p.Scope).Find(&topups).Error
	return topups, total, err
}

type WithdrawalRepository interface {
	WithTx(tx *gorm.DB) WithdrawalRepository
	Create(withdrawal *model.Withdrawal) error
	Update(withdrawal *model.Withdrawal) error
	FindByID(id uuid.UUID) (*model.Withdrawal, error)
	LockByID(id uuid.UUID) (*model.Withdrawal, error)
	FindAll(userID *uuid.UUID, status model.WithdrawalStatus, p pagination.Params) ([]model.Withdrawal, int64, error)
}

type withdrawalRepo struct {
	db *gorm.DB
}

func NewWithdrawalRepo(db *gorm.DB) WithdrawalRepository {
	return &withdrawalRepo{db}
}

func (r *withdrawalRepo) WithTx(tx *gorm.DB) WithdrawalRepository {
	return &withdrawalRepo{tx}
}

func (r *withdrawalRepo) Create(withdrawal *model.Withdrawal) error {
	return r.db.Omit("User").Create(withdrawal).Error
}

func (r *withdrawalRepo) Update(withdrawal *model.Withdrawal) error {
	return r.db.Omit("User").Save(withdrawal).Error
}

func (r *withdrawalRepo) FindByID(id uuid.UUID) (*model.Withdrawal, error) {
	var withdrawal model.Withdrawal
	if err := r.db.First(&withdrawal, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &withdrawal, nil
}

func (r *withdrawalRepo) LockByID(id uuid.UUID) (*model.Withdrawal, error) {
	var withdrawal model.Withdrawal
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&withdrawal, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &withdrawal, nil
}

func (r *withdrawalRepo) FindAll(userID *uuid.UUID, status model.WithdrawalStatus, p pagination.Params) ([]model.Withdrawal, int64, error) {
	var withdrawals []model.Withdrawal
	var total int64

	query := r.db.Model(&model.Withdrawal{})
	if userID != nil {
		query = query.Where("user_id = ?", *userID)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("created_at DESC").Scopes(p.Scope).Find(&withdrawals).Error
	return withdrawals, total, err
}
