package service

import (
	"strings"
	"time"

	"go-marketplace-api/internal/model"
	"go-marketplace-api/internal/pricing"
	"go-marketplace-api/internal/repository"
	"go-marketplace-api/pkg/pagination"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreditCodeRequest struct {
	// Code is generated when empty.
	Code       string          `json:"code" validate:"omitempty,max=50"`
	Amount     decimal.Decimal `json:"amount" validate:"gt=0"`
	UserID     *uuid.UUID      `json:"user_id"`
	UsageLimit int             `json:"usage_limit" validate:"gte=0"`
	ExpiresAt  *time.Time      `json:"expires_at"`
}

type CreditQuote struct {
	Code     string          `json:"code"`
	Amount   decimal.Decimal `json:"amount"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Applied  decimal.Decimal `json:"applied"`
}

type CreditCodeService interface {
	Create(actor Actor, req *CreditCodeRequest) (*model.CreditCode, error)
	Update(actor Actor, id uuid.UUID, req *CreditCodeRequest) (*model.CreditCode, error)
	Delete(actor Actor, id uuid.UUID) error
	Get(id uuid.UUID) (*model.CreditCode, error)
	List(search string, p pagination.Params) (*List[model.CreditCode], error)
	Revoke(actor Actor, id uuid.UUID) (*model.CreditCode, error)
	Validate(actor Actor, req *ValidateCodeRequest) (*CreditQuote, error)
}

type creditCodeService struct {
	repo     repository.CreditCodeRepository
	userRepo repository.UserRepository
	cartRepo repository.CartRepository
	pricer   *Pricer
}

func NewCreditCodeService(repo repository.CreditCodeRepository, userRepo repository.UserRepository, cartRepo repository.CartRepository, pricer *Pricer) CreditCodeService {
	return &creditCodeService{repo: repo, userRepo: userRepo, cartRepo: cartRepo, pricer: pricer}
}

func (s *creditCodeService) Create(actor Actor, req *CreditCodeRequest) (*model.CreditCode, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}

	code := normalizeCode(req.Code)
	if code == "" {
		code = "CR-" + strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:10])
	}
	taken, err := s.repo.CodeExists(code)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrCreditCodeExists
	}

	credit := &model.CreditCode{Code: code}
	applyCreditCode(credit, req)
	credit.Audit(actor.Audit())
	if err := s.repo.Create(credit); err != nil {
		return nil, err
	}
	return credit, nil
}

func (s *creditCodeService) Update(actor Actor, id uuid.UUID, req *CreditCodeRequest) (*model.CreditCode, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}
	credit, err := s.repo.FindByID(id)
	if err != nil {
		return nil, notFound(err, ErrCreditCodeNotFound)
	}

	code := normalizeCode(req.Code)
	if code != "" && code != credit.Code {
		taken, err := s.repo.CodeExists(code)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrCreditCodeExists
		}
		credit.Code = code
	}
	applyCreditCode(credit, req)
	credit.Audit(actor.Audit())
	if err := s.repo.Update(credit); err != nil {
		return nil, err
	}
	return credit, nil
}

func (s *creditCodeService) Delete(actor Actor, id uuid.UUID) error {
	return notFound(s.repo.Delete(id, actor.Audit()), ErrCreditCodeNotFound)
}

func (s *creditCodeService) Get(id uuid.UUID) (*model.CreditCode, error) {
	credit, err := s.repo.FindByID(id)
	if err != nil {
		return nil, notFound(err, ErrCreditCodeNotFound)
	}
	return credit, nil
}

func (s *creditCodeService) List(search string, p pagination.Params) (*List[model.CreditCode], error) {
	codes, total, err := s.repo.FindAll(search, p)
	if err != nil {
		return nil, err
	}
	return &List[model.CreditCode]{Items: codes, Total: total}, nil
}

func (s *creditCodeService) Revoke(actor Actor, id uuid.UUID) (*model.CreditCode, error) {
	credit, err := s.repo.FindByID(id)
	if err != nil {
		return nil, notFound(err, ErrCreditCodeNotFound)
	}
	credit.IsRevoked = true
	credit.Audit(actor.Audit())
	if err := s.repo.Update(credit); err != nil {
		return nil, err
	}
	return credit, nil
}

func (s *creditCodeService) Validate(actor Actor, req *ValidateCodeRequest) (*CreditQuote, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	credit, err := s.repo.FindByCode(normalizeCode(req.Code))
	if err != nil {
		return nil, notFound(err, ErrCreditCodeNotFound)
	}
	used, err := s.repo.HasUsage(credit.ID, actor.UserID)
	if err != nil {
		return nil, err
	}
	if err := pricing.CheckCreditCode(credit, actor.UserID, now(), used); err != nil {
		return nil, err
	}

	cart, err := s.cartRepo.FindByUser(actor.UserID)
	if err != nil {
		return nil, err
	}
	if err := priceCartLines(s.pricer, cart); err != nil {
		return nil, err
	}
	subtotal := pricing.Subtotal(pricingLines(cart))

	return &CreditQuote{
		Code:     credit.Code,
		Amount:   credit.Amount,
		Subtotal: subtotal,
		Applied:  pricing.CreditAmount(credit, subtotal),
	}, nil
}

func (s *creditCodeService) check(req *CreditCodeRequest) error {
	if err := validate(req); err != nil {
		return err
	}
	if req.UserID != nil {
		if _, err := s.userRepo.FindByID(*req.UserID); err != nil {
			return notFound(err, ErrUserNotFound)
		}
	}
	return nil
}

func applyCreditCode(credit *model.CreditCode, req *CreditCodeRequest) {
	credit.Amount = req.Amount.Round(2)
	credit.UserID = req.UserID
	credit.UsageLimit = req.UsageLimit
	if credit.UsageLimit == 0 {
		credit.UsageLimit = 1
	}
	credit.ExpiresAt = utcPtr(req.ExpiresAt)
}
