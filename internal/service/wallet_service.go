package service

import (
	"errors"
	"fmt"
	"net/http"

	"go-marketplace-api/internal/events"
	"go-marketplace-api/internal/model"
	"go-marketplace-api/internal/repository"
	"go-marketplace-api/pkg/apperror"
	"go-marketplace-api/pkg/pagination"
	"go-marketplace-api/pkg/payment"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrInsufficientBalance = apperror.BadRequest("insufficient wallet balance")
	ErrTransactionNotFound = apperror.NotFound("transaction not found")
	ErrReferenceUsed       = apperror.Conflict("payment reference already used")
	ErrPaymentFailed       = apperror.BadRequest("payment verification failed")
	ErrPaymentRequired     = apperror.BadRequest("payment_reference is required for gateway payments")
)

type TopupRequest struct {
	Amount    decimal.Decimal `json:"amount" validate:"gt=0"`
	Reference string          `json:"reference" validate:"required,max=120"`
}

type TransactionQuery struct {
	UserID  *uuid.UUID
	Type    model.TransactionType
	Purpose model.TransactionPurpose
}

type WalletService interface {
	GetWallet(actor Actor) (*model.UserWallet, error)
	ListTransactions(actor Actor, q TransactionQuery, p pagination.Params) (*List[model.Transaction], error)
	GetTransaction(actor Actor, id uuid.UUID) (*model.Transaction, error)
	Topup(actor Actor, req *TopupRequest) (*model.Transaction, error)
	ListTopups(actor Actor, p pagination.Params) (*List[model.Topup], error)
}

type walletService struct {
	db         *gorm.DB
	walletRepo repository.WalletRepository
	verifier   payment.Verifier
	publisher  events.Publisher
}

func NewWalletService(db *gorm.DB, walletRepo repository.WalletRepository, verifier payment.Verifier, publisher events.Publisher) WalletService {
	return &walletService{db: db, walletRepo: walletRepo, verifier: verifier, publisher: publisher}
}

func (s *walletService) GetWallet(actor Actor) (*model.UserWallet, error) {
	wallet, err := s.walletRepo.FindByUser(actor.UserID)
	if err == nil {
		return wallet, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	wallet = &model.UserWallet{UserID: actor.UserID, Balance: decimal.Zero}
	wallet.Audit(actor.Audit())
	if err := s.walletRepo.Create(wallet); err != nil {
		return nil, err
	}
	return wallet, nil
}

func (s *walletService) ListTransactions(actor Actor, q TransactionQuery, p pagination.Params) (*List[model.Transaction], error) {
	filter := repository.TransactionFilter{UserID: &actor.UserID, Type: q.Type, Purpose: q.Purpose}
	if actor.HasPrivilege(model.PrivTransactionView) {
		filter.UserID = q.UserID
	}
	entries, total, err := s.walletRepo.FindTransactions(filter, p)
	if err != nil {
		return nil, err
	}
	return &List[model.Transaction]{Items: entries, Total: total}, nil
}

func (s *walletService) GetTransaction(actor Actor, id uuid.UUID) (*model.Transaction, error) {
	entry, err := s.walletRepo.FindTransactionByID(id)
	if err != nil {
		return nil, notFound(err, ErrTransactionNotFound)
	}
	if entry.UserID != actor.UserID && !actor.HasPrivilege(model.PrivTransactionView) {
		return nil, ErrTransactionNotFound
	}
	return entry, nil
}

func (s *walletService) Topup(actor Actor, req *TopupRequest) (*model.Transaction, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	amount := req.Amount.Round(2)

	used, err := s.walletRepo.PaymentReferenceUsed(req.Reference)
	if err != nil {
		return nil, err
	}
	if used {
		return nil, ErrReferenceUsed
	}

	verification, err := verifyPayment(s.verifier, req.Reference, amount)
	if err != nil {
		return nil, err
	}

	var entry *model.Transaction
	err = s.db.Transaction(func(tx *gorm.DB) error {
		wallets := s.walletRepo.WithTx(tx)
		// A gateway checkout may have taken the reference while it was verified.
		if used, err := wallets.PaymentReferenceUsed(req.Reference); err != nil {
			return err
		} else if used {
			return ErrReferenceUsed
		}

		topup := &model.Topup{
			UserID:    actor.UserID,
			Amount:    amount,
			Reference: req.Reference,
			Gateway:   verification.Gateway,
			Status:    "completed",
		}
		topup.Audit(actor.Audit())
		if err := wallets.CreateTopup(topup); err != nil {
			return err
		}

		entry, err = post(wallets, ledgerEntry{
			UserID:      actor.UserID,
			Type:        model.TxCredit,
			Purpose:     model.PurposeTopup,
			Amount:      amount,
			Reference:   req.Reference,
			Description: "Wallet top-up",
		}, actor.Audit())
		return err
	})
	if err != nil {
		return nil, err
	}

	events.PublishAsync(s.publisher, events.TopupCompleted, entry)
	return entry, nil
}

func (s *walletService) ListTopups(actor Actor, p pagination.Params) (*List[model.Topup], error) {
	topups, total, err := s.walletRepo.FindTopups(actor.UserID, p)
	if err != nil {
		return nil, err
	}
	return &List[model.Topup]{Items: topups, Total: total}, nil
}

type ledgerEntry struct {
	UserID      uuid.UUID
	Type        model.TransactionType
	Purpose     model.TransactionPurpose
	Amount      decimal.Decimal
	Reference   string
	Description string
}

// post moves the user's wallet balance by the entry and records it in the
// ledger. wallets must be bound to the surrounding transaction.
func post(wallets repository.WalletRepository, e ledgerEntry, auditBy string) (*model.Transaction, error) {
	wallet, err := wallets.LockByUser(e.UserID)
	if err != nil {
		return nil, err
	}

	balance := wallet.Balance
	if e.Type == model.TxDebit {
		if balance.LessThan(e.Amount) {
			return nil, ErrInsufficientBalance
		}
		balance = balance.Sub(e.Amount)
	} else {
		balance = balance.Add(e.Amount)
	}
	if err := wallets.UpdateBalance(wallet.ID, balance); err != nil {
		return nil, err
	}

	entry := &model.Transaction{
		UserID:       e.UserID,
		WalletID:     wallet.ID,
		Type:         e.Type,
		Purpose:      e.Purpose,
		Amount:       e.Amount,
		BalanceAfter: balance,
		Reference:    e.Reference,
		Description:  e.Description,
	}
	entry.Audit(auditBy)
	if err := wallets.CreateTransaction(entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func verifyPayment(verifier payment.Verifier, reference string, amount decimal.Decimal) (*payment.Verification, error) {
	if reference == "" {
		return nil, ErrPaymentRequired
	}
	verification, err := verifier.Verify(reference, amount)
	switch {
	case err == nil:
		return verification, nil
	case errors.Is(err, payment.ErrNotSuccessful), errors.Is(err, payment.ErrAmountMismatch):
		return nil, fmt.Errorf("%w: %s", ErrPaymentFailed, err.Error())
	default:
		return nil, apperror.New(http.StatusBadGateway, err.Error())
	}
}
