package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type UserWallet struct {
	BaseModel
	UserID  uuid.UUID       `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	Balance decimal.Decimal `gorm:"type:decimal(16,2);not null;default:0" json:"balance"`
}

type TransactionType string

const (
	TxCredit TransactionType = "credit"
	TxDebit  TransactionType = "debit"
)

type TransactionPurpose string

const (
	PurposeTopup      TransactionPurpose = "topup"
	PurposeOrder      TransactionPurpose = "order"
	PurposeRefund     TransactionPurpose = "refund"
	PurposeSettlement TransactionPurpose = "settlement"
	PurposeWithdrawal TransactionPurpose = "withdrawal"
)

// Transaction is one wallet ledger entry.
type Transaction struct {
	BaseModel
	UserID       uuid.UUID          `gorm:"type:uuid;not null;index" json:"user_id"`
	WalletID     uuid.UUID          `gorm:"type:uuid;not null;index" json:"wallet_id"`
	Type         TransactionType    `gorm:"type:varchar(10);not null" json:"type"`
	Purpose      TransactionPurpose `gorm:"type:varchar(20);not null;index" json:"purpose"`
	Amount       decimal.Decimal    `gorm:"type:decimal(16,2);not null" json:"amount"`
	BalanceAfter decimal.Decimal    `gorm:"type:decimal(16,2);not null" json:"balance_after"`
	Reference    string             `gorm:"type:varchar(120);index" json:"reference"`
	Description  string             `gorm:"type:varchar(255)" json:"description"`
}

type Topup struct {
	BaseModel
	UserID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	Amount    decimal.Decimal `gorm:"type:decimal(16,2);not null" json:"amount"`
	Reference string          `gorm:"type:varchar(120);uniqueIndex;not null" json:"reference"`
	Gateway   string          `gorm:"type:varchar(40)" json:"gateway"`
	Status    string          `gorm:"type:varchar(20);not null" json:"status"`
}

type WithdrawalStatus string

const (
	WithdrawalPending   WithdrawalStatus = "pending"
	WithdrawalProcessed WithdrawalStatus = "processed"
	WithdrawalRejected  WithdrawalStatus = "rejected"
)

type Withdrawal struct {
	BaseModel
	UserID        uuid.UUID        `gorm:"type:uuid;not null;index" json:"user_id"`
	User          *User            `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Amount        decimal.Decimal  `gorm:"type:decimal(16,2);not null" json:"amount"`
	BankName      string           `gorm:"type:varchar(120);not null" json:"bank_name"`
	AccountNumber string           `gorm:"type:varchar(40);not null" json:"account_number"`
	AccountName   string           `gorm:"type:varchar(150);not null" json:"account_name"`
	Status        WithdrawalStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	ProcessedAt   *time.Time       `json:"processed_at"`
	Note          string           `gorm:"type:text" json:"note"`
}

// VendorSettlement pays out a batch of delivered store orders to the store owner.
type VendorSettlement struct {
	BaseModel
	StoreID          uuid.UUID       `gorm:"type:uuid;not null;index" json:"store_id"`
	Store            *Store          `gorm:"foreignKey:StoreID" json:"store,omitempty"`
	GrossAmount      decimal.Decimal `gorm:"type:decimal(16,2);not null" json:"gross_amount"`
	CommissionRate   decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"commission_rate"`
	CommissionAmount decimal.Decimal `gorm:"type:decimal(16,2);not null" json:"commission_amount"`
	NetAmount        decimal.Decimal `gorm:"type:decimal(16,2);not null" json:"net_amount"`
	OrderCount       int             `gorm:"not null" json:"order_count"`
	PeriodStart      time.Time       `json:"period_start"`
	PeriodEnd        time.Time       `json:"period_end"`
}
