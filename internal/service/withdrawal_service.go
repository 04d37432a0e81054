package service

import (
	"go-marketplace-api/internal/events"
	"go-marketplace-api/internal/model"
	"go-marketplace-api/internal/repository"
	"go-marketplace-api/pkg/apperror"
	"go-marketplace-api/pkg/pagination"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrWithdrawalNotFound   = apperror.NotFound("withdrawal not found")
	ErrWithdrawalNotPending = apperror.BadRequest("withdrawal is no longer pending")
)

type WithdrawalRequest struct {
	Amount        decimal.Decimal `json:"amount" validate:"gt=0"`
	BankName      string          `json:"bank_name" validate:"required,max=120"`
	AccountNumber string          `json:"account_number" validate:"required,max=40"`
	AccountName   string          `json:"account_name" validate:"required,max=150"`
}

type RejectWithdrawalRequest struct {
	Note string `json:"note" validate:"required"`
}

type WithdrawalService interface {
	Request(actor Actor, req *WithdrawalRequest) (*model.Withdrawal, error)
	List(actor Actor, status model.WithdrawalStatus, p pagination.Params) (*List[model.Withdrawal], error)
	Get(actor Actor, id uuid.UUID) (*model.Withdrawal, error)
	Process(actor Actor, id uuid.UUID) (*model.Withdrawal, error)
	Reject(actor Actor, id uuid.UUID, req *RejectWithdrawalRequest) (*model.Withdrawal, error)
}

type withdrawalService struct {
	db             *gorm.DB
	withdrawalRepo repository.WithdrawalRepository
	walletRepo     repository.WalletRepository
	publisher      events.Publisher
}

func NewWithdrawalService(db *gorm.DB, withdrawalRepo repository.WithdrawalRepository, walletRepo repository.WalletRepository, publisher events.Publisher) WithdrawalService {
	return &withdrawalService{db: db, withdrawalRepo: withdrawalRepo, walletRepo: walletRepo, publisher: publisher}
}

// Request holds the amount by debiting the wallet right away.
func (s *withdrawalService) Request(actor Actor, req *WithdrawalRequest) (*model.Withdrawal, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	withdrawal := &model.Withdrawal{
		UserID:        actor.UserID,
		Amount:        req.Amount.Round(2),
		BankName:      req.BankName,
		AccountNumber: req.AccountNumber,
		AccountName:   req.AccountName,
		Status:        model.WithdrawalPending,
	}
	withdrawal.Audit(actor.Audit())

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.withdrawalRepo.WithTx(tx).Create(withdrawal); err != nil {
			return err
		}
		_, err := post(s.walletRepo.WithTx(tx), ledgerEntry{
			UserID:      actor.UserID,
			Type:        model.TxDebit,
			Purpose:     model.PurposeWithdrawal,
			Amount:      withdrawal.Amount,
			Reference:   withdrawal.ID.String(),
			Description: "Withdrawal to " + req.BankName,
		}, actor.Audit())
		return err
	})
	if err != nil {
		return nil, err
	}

	events.PublishAsync(s.publisher, events.WithdrawalRequested, withdrawal)
	return withdrawal, nil
}

func (s *withdrawalService) List(actor Actor, status model.WithdrawalStatus, p pagination.Params) (*List[model.Withdrawal], error) {
	var userID *uuid.UUID
	if !actor.HasPrivilege(model.PrivWithdrawalProcess) {
		userID = &actor.UserID
	}
	withdrawals, total, err := s.withdrawalRepo.FindAll(userID, status, p)
	if err != nil {
		return nil, err
	}
	return &List[model.Withdrawal]{Items: withdrawals, Total: total}, nil
}

func (s *withdrawalService) Get(actor Actor, id uuid.UUID) (*model.Withdrawal, error) {
	withdrawal, err := s.withdrawalRepo.FindByID(id)
	if err != nil {
		return nil, notFound(err, ErrWithdrawalNotFound)
	}
	if withdrawal.UserID != actor.UserID && !actor.HasPrivilege(model.PrivWithdrawalProcess) {
		return nil, ErrWithdrawalNotFound
	}
	return withdrawal, nil
}

func (s *withdrawalService) Process(actor Actor, id uuid.UUID) (*model.Withdrawal, error) {
	withdrawal, err := s.settle(actor, id, func(tx *gorm.DB, w *model.Withdrawal) error {
		w.Status = model.WithdrawalProcessed
		return nil
	})
	if err != nil {
		return nil, err
	}
	events.PublishAsync(s.publisher, events.WithdrawalProcessed, withdrawal)
	return withdrawal, nil
}

// Reject releases the hold back to the wallet.
func (s *withdrawalService) Reject(actor Actor, id uuid.UUID, req *RejectWithdrawalRequest) (*model.Withdrawal, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	withdrawal, err := s.settle(actor, id, func(tx *gorm.DB, w *model.Withdrawal) error {
		w.Status = model.WithdrawalRejected
		w.Note = req.Note
		_, err := post(s.walletRepo.WithTx(tx), ledgerEntry{
			UserID:      w.UserID,
			Type:        model.TxCredit,
			Purpose:     model.PurposeRefund,
			Amount:      w.Amount,
			Reference:   w.ID.String(),
			Description: "Rejected withdrawal: " + req.Note,
		}, actor.Audit())
		return err
	})
	if err != nil {
		return nil, err
	}
	events.PublishAsync(s.publisher, events.WithdrawalRejected, withdrawal)
	return withdrawal, nil
}

// settle closes a pending withdrawal with apply inside one transaction.
func (s *withdrawalService) settle(actor Actor, id uuid.UUID, apply func(tx *gorm.DB, w *model.Withdrawal) error) (*model.Withdrawal, error) {
	var withdrawal *model.Withdrawal
	err := s.db.Transaction(func(tx *gorm.DB) error {
		withdrawals := s.withdrawalRepo.WithTx(tx)
		w, err := withdrawals.LockByID(id)
		if err != nil {
			return notFound(err, ErrWithdrawalNotFound)
		}
		if w.Status != model.WithdrawalPending {
			return ErrWithdrawalNotPending
		}
		if err := apply(tx, w); err != nil {
			return err
		}
		processedAt := now()
		w.ProcessedAt = &processedAt
		w.Audit(actor.Audit())
		if err := withdrawals.Update(w); err != nil {
			return err
		}
		withdrawal = w
		return nil
	})
	return withdrawal, err
}
