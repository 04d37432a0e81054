package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentWallet  PaymentMethod = "wallet"
	PaymentGateway PaymentMethod = "gateway"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

// orderTransitions lists the statuses a store order may move to.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:    {OrderProcessing, OrderCancelled},
	OrderProcessing: {OrderShipped, OrderCancelled},
	OrderShipped:    {OrderDelivered},
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Order struct {
	BaseModel
	UserID      uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User        *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	OrderNumber string    `gorm:"type:varchar(40);uniqueIndex;not null" json:"order_number"`

	// Address snapshot
	ShippingRecipient string `gorm:"type:varchar(150)" json:"shipping_recipient"`
	ShippingPhone     string `gorm:"type:varchar(30)" json:"shipping_phone"`
	ShippingAddress   string `gorm:"type:text" json:"shipping_address"`

	Subtotal       decimal.Decimal `gorm:"type:decimal(16,2);not null" json:"subtotal"`
	CouponID       *uuid.UUID      `gorm:"type:uuid" json:"coupon_id"`
	CouponDiscount decimal.Decimal `gorm:"type:decimal(16,2);not null;default:0" json:"coupon_discount"`
	CreditCodeID   *uuid.UUID      `gorm:"type:uuid" json:"credit_code_id"`
	CreditDiscount decimal.Decimal `gorm:"type:decimal(16,2);not null;default:0" json:"credit_discount"`
	Total          decimal.Decimal `gorm:"type:decimal(16,2);not null" json:"total"`

	PaymentMethod    PaymentMethod `gorm:"type:varchar(20);not null" json:"payment_method"`
	PaymentStatus    PaymentStatus `gorm:"type:varchar(20);not null;index" json:"payment_status"`
	PaymentReference string        `gorm:"type:varchar(120);index" json:"payment_reference"`

	StoreOrders []StoreOrder `gorm:"foreignKey:OrderID" json:"store_orders,omitempty"`
}

// StoreOrder is the part of an order fulfilled by one store.
type StoreOrder struct {
	BaseModel
	OrderID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	Order         *Order          `gorm:"foreignKey:OrderID" json:"order,omitempty"`
	StoreID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"store_id"`
	Store         *Store          `gorm:"foreignKey:StoreID" json:"store,omitempty"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(16,2);not null" json:"subtotal"`
	Discount      decimal.Decimal `gorm:"type:decimal(16,2);not null;default:0" json:"discount"`
	Total         decimal.Decimal `gorm:"type:decimal(16,2);not null" json:"total"`
	Status        OrderStatus     `gorm:"type:varchar(20);not null;index" json:"status"`
	PaymentStatus PaymentStatus   `gorm:"type:varchar(20);not null" json:"payment_status"`
	SettlementID  *uuid.UUID      `gorm:"type:uuid;index" json:"settlement_id"`

	Items []StoreOrderProduct `gorm:"foreignKey:StoreOrderID" json:"items,omitempty"`
}

type StoreOrderProduct struct {
	BaseModel
	StoreOrderID uuid.UUID       `gorm:"type:uuid;not null;index" json:"store_order_id"`
	ProductID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	VariationID  uuid.UUID       `gorm:"type:uuid;not null" json:"variation_id"`
	ProductName  string          `gorm:"type:varchar(255)" json:"product_name"`
	VariantName  string          `gorm:"type:varchar(150)" json:"variant_name"`
	SKU          string          `gorm:"type:varchar(80)" json:"sku"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(16,2);not null" json:"unit_price"`
	Quantity     int             `gorm:"not null" json:"quantity"`
	LineTotal    decimal.Decimal `gorm:"type:decimal(16,2);not null" json:"line_total"`
	Discount     decimal.Decimal `gorm:"type:decimal(16,2);not null;default:0" json:"discount"`
}
