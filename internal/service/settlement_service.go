package service

import (
	"log"

	"go-marketplace-api/internal/events"
	"go-marketplace-api/internal/model"
	"go-marketplace-api/internal/repository"
	"go-marketplace-api/pkg/apperror"
	"go-marketplace-api/pkg/pagination"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var ErrNothingToSettle = apperror.BadRequest("store has no delivered orders to settle")

type SettlementService interface {
	SettleStore(actor Actor, storeID uuid.UUID) (*model.VendorSettlement, error)
	SettleAll(actor Actor) ([]model.VendorSettlement, error)
	ListByStore(actor Actor, storeID uuid.UUID, p pagination.Params) (*List[model.VendorSettlement], error)
	List(p pagination.Params) (*List[model.VendorSettlement], error)
}

type settlementService struct {
	db             *gorm.DB
	settlementRepo repository.SettlementRepository
	orderRepo      repository.OrderRepository
	storeRepo      repository.StoreRepository
	walletRepo     repository.WalletRepository
	publisher      events.Publisher
}

func NewSettlementService(db *gorm.DB, settlementRepo repository.SettlementRepository, orderRepo repository.OrderRepository, storeRepo repository.StoreRepository, walletRepo repository.WalletRepository, publisher events.Publisher) SettlementService {
	return &settlementService{
		db:             db,
		settlementRepo: settlementRepo,
		orderRepo:      orderRepo,
		storeRepo:      storeRepo,
		walletRepo:     walletRepo,
		publisher:      publisher,
	}
}

// SettleStore pays the store owner for every delivered, paid and not yet
// settled store order, minus the store's commission.
func (s *settlementService) SettleStore(actor Actor, storeID uuid.UUID) (*model.VendorSettlement, error) {
	store, err := s.storeRepo.FindByID(storeID)
	if err != nil {
		return nil, notFound(err, ErrStoreNotFound)
	}

	var settlement *model.VendorSettlement
	err = s.db.Transaction(func(tx *gorm.DB) error {
		orders := s.orderRepo.WithTx(tx)
		storeOrders, err := orders.LockSettleable(storeID)
		if err != nil {
			return err
		}
		if len(storeOrders) == 0 {
			return ErrNothingToSettle
		}

		gross := decimal.Zero
		ids := make([]uuid.UUID, len(storeOrders))
		periodStart, periodEnd := storeOrders[0].CreatedAt, storeOrders[0].CreatedAt
		for i, so := range storeOrders {
			gross = gross.Add(so.Total)
			ids[i] = so.ID
			if so.CreatedAt.Before(periodStart) {
				periodStart = so.CreatedAt
			}
			if so.CreatedAt.After(periodEnd) {
				periodEnd = so.CreatedAt
			}
		}
		commission := Commission(gross, store.CommissionRate)

		settlement = &model.VendorSettlement{
			StoreID:          storeID,
			GrossAmount:      gross,
			CommissionRate:   store.CommissionRate,
			CommissionAmount: commission,
			NetAmount:        gross.Sub(commission),
			OrderCount:       len(storeOrders),
			PeriodStart:      periodStart.UTC(),
			PeriodEnd:        periodEnd.UTC(),
		}
		settlement.Audit(actor.Audit())
		if err := s.settlementRepo.WithTx(tx).Create(settlement); err != nil {
			return err
		}
		if err := orders.MarkSettled(ids, settlement.ID); err != nil {
			return err
		}

		if !settlement.NetAmount.IsPositive() {
			return nil
		}
		_, err = post(s.walletRepo.WithTx(tx), ledgerEntry{
			UserID:      store.OwnerID,
			Type:        model.TxCredit,
			Purpose:     model.PurposeSettlement,
			Amount:      settlement.NetAmount,
			Reference:   settlement.ID.String(),
			Description: "Settlement for " + store.Name,
		}, actor.Audit())
		return err
	})
	if err != nil {
		return nil, err
	}

	settlement.Store = store
	events.PublishAsync(s.publisher, events.SettlementCreated, settlement)
	return settlement, nil
}

// SettleAll settles every store with settleable orders. A failing store is
// logged and skipped.
func (s *settlementService) SettleAll(actor Actor) ([]model.VendorSettlement, error) {
	storeIDs, err := s.orderRepo.SettleableStoreIDs()
	if err != nil {
		return nil, err
	}

	settlements := []model.VendorSettlement{}
	for _, id := range storeIDs {
		settlement, err := s.SettleStore(actor, id)
		if err != nil {
			log.Printf("Warning: settlement of store %s failed: %v", id, err)
			continue
		}
		settlements = append(settlements, *settlement)
	}
	return settlements, nil
}

func (s *settlementService) ListByStore(actor Actor, storeID uuid.UUID, p pagination.Params) (*List[model.VendorSettlement], error) {
	store, err := s.storeRepo.FindByID(storeID)
	if err != nil {
		return nil, notFound(err, ErrStoreNotFound)
	}
	if !canManageStore(&actor, store) && !actor.HasPrivilege(model.PrivSettlementManage) {
		return nil, ErrForbidden
	}
	settlements, total, err := s.settlementRepo.FindAll(&storeID, p)
	if err != nil {
		return nil, err
	}
	return &List[model.VendorSettlement]{Items: settlements, Total: total}, nil
}

func (s *settlementService) List(p pagination.Params) (*List[model.VendorSettlement], error) {
	settlements, total, err := s.settlementRepo.FindAll(nil, p)
	if err != nil {
		return nil, err
	}
	return &List[model.VendorSettlement]{Items: settlements, Total: total}, nil
}

// Commission is gross × rate% rounded to cents.
func Commission(gross, rate decimal.Decimal) decimal.Decimal {
	return gross.Mul(rate).Div(decimal.NewFromInt(100)).Round(2)
}
