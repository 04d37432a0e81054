package repository

import (
	"go-marketplace-api/internal/model"
	"go-marketplace-api/pkg/pagination"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderFilter struct {
	UserID *uuid.UUID
	Status model.PaymentStatus
}

type OrderRepository interface {
	WithTx(tx *gorm.DB) OrderRepository
	// Create inserts the order with its store orders and their items.
	Create(order *model.Order) error
	UpdateOrder(order *model.Order) error
	FindByID(id uuid.UUID) (*model.Order, error)
	FindAll(f OrderFilter, p pagination.Params) ([]model.Order, int64, error)
	OrderNumberExists(number string) (bool, error)

	FindStoreOrderByID(id uuid.UUID) (*model.StoreOrder, error)
	LockStoreOrder(id uuid.UUID) (*model.StoreOrder, error)
	UpdateStoreOrder(storeOrder *model.StoreOrder) error
	FindStoreOrders(storeID uuid.UUID, status model.OrderStatus, p pagination.Params) ([]model.StoreOrder, int64, error)
	CountStoreOrdersNotIn(orderID uuid.UUID, status model.PaymentStatus) (int64, error)

	// Settlement support
	LockSettleable(storeID uuid.UUID) ([]model.StoreOrder, error)
	MarkSettled(ids []uuid.UUID, settlementID uuid.UUID) error
	SettleableStoreIDs() ([]uuid.UUID, error)
}

type orderRepo struct {
	db *gorm.DB
}

func NewOrderRepo(db *gorm.DB) OrderRepository {
	return &orderRepo{db}
}

func (r *orderRepo) WithTx(tx *gorm.DB) OrderRepository {
	return &orderRepo{tx}
}

func (r *orderRepo) Create(order *model.Order) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(order).Error; err != nil {
			return err
		}
		for i := range order.StoreOrders {
			so := &order.StoreOrders[i]
			so.OrderID = order.ID
			if err := tx.Omit(clause.Associations).Create(so).Error; err != nil {
				return err
			}
			if len(so.Items) == 0 {
				continue
			}
			for j := range so.Items {
				so.Items[j].StoreOrderID = so.ID
			}
			if err := tx.Create(&so.Items).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *orderRepo) UpdateOrder(order *model.Order) error {
	return r.db.Omit(clause.Associations).Save(order).Error
}

func (r *orderRepo) FindByID(id uuid.UUID) (*model.Order, error) {
	var order model.Order
	err := r.db.Preload("StoreOrders.Items").
		Preload("StoreOrders.Store").
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepo) FindAll(f OrderFilter, p pagination.Params) ([]model.Order, int64, error) {
	var orders []model.Order
	var total int64

	query := r.db.Model(&model.Order{})
	if f.UserID != nil {
		query = query.Where("user_id = ?", *f.UserID)
	}
	if f.Status != "" {
		query = query.Where("payment_status = ?", f.Status)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Preload("StoreOrders").
		Order("created_at DESC").
		Scopes(p.Scope).
		Find(&orders).Error
	return orders, total, err
}

func (r *orderRepo) OrderNumberExists(number string) (bool, error) {
	return exists(r.db.Unscoped().Model(&model.Order{}).Where("order_number = ?", number))
}

func (r *orderRepo) FindStoreOrderByID(id uuid.UUID) (*model.StoreOrder, error) {
	var storeOrder model.StoreOrder
	err := r.db.Preload("Items").Preload("Store").Preload("Order").
		First(&storeOrder, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &storeOrder, nil
}

func (r *orderRepo) LockStoreOrder(id uuid.UUID) (*model.StoreOrder, error) {
	var storeOrder model.StoreOrder
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&storeOrder, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	if err := r.db.Where("store_order_id = ?", id).Find(&storeOrder.Items).Error; err != nil {
		return nil, err
	}
	var order model.Order
	if err := r.db.First(&order, "id = ?", storeOrder.OrderID).Error; err != nil {
		return nil, err
	}
	storeOrder.Order = &order
	return &storeOrder, nil
}

func (r *orderRepo) UpdateStoreOrder(storeOrder *model.StoreOrder) error {
	return r.db.Omit(clause.Associations).Save(storeOrder).Error
}

func (r *orderRepo) FindStoreOrders(storeID uuid.UUID, status model.OrderStatus, p pagination.Params) ([]model.StoreOrder, int64, error) {
	var storeOrders []model.StoreOrder
	var total int64

	query := r.db.Model(&model.StoreOrder{}).Where("store_id = ?", storeID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Preload("Items").Preload("Order").
		Order("created_at DESC").
		Scopes(p.Scope).
		Find(&storeOrders).Error
	return storeOrders, total, err
}

func (r *orderRepo) CountStoreOrdersNotIn(orderID uuid.UUID, status model.PaymentStatus) (int64, error) {
	var count int64
	err := r.db.Model(&model.StoreOrder{}).
		Where("order_id = ? AND payment_status <> ?", orderID, status).
		Count(&count).Error
	return count, err
}

func (r *orderRepo) settleable() *gorm.DB {
	return r.db.Model(&model.StoreOrder{}).
		Where("status = ? AND payment_status = ? AND settlement_id IS NULL", model.OrderDelivered, model.PaymentPaid)
}

func (r *orderRepo) LockSettleable(storeID uuid.UUID) ([]model.StoreOrder, error) {
	var storeOrders []model.StoreOrder
	err := r.settleable().
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("store_id = ?", storeID).
		Order("created_at ASC").
		Find(&storeOrders).Error
	return storeOrders, err
}

func (r *orderRepo) MarkSettled(ids []uuid.UUID, settlementID uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.Model(&model.StoreOrder{}).
		Where("id IN ?", ids).
		Update("settlement_id", settlementID).Error
}

func (r *orderRepo) SettleableStoreIDs() ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.settleable().Distinct("store_id").Pluck("store_id", &ids).Error
	return ids, err
}
