package service

import (
	"strings"
	"time"

	"go-marketplace-api/internal/model"
	"go-marketplace-api/internal/pricing"
	"go-marketplace-api/internal/repository"
	"go-marketplace-api/pkg/apperror"
	"go-marketplace-api/pkg/pagination"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrCouponNotFound     = apperror.NotFound("coupon not found")
	ErrCouponExists       = apperror.Conflict("coupon code already exists")
	ErrCouponWindow       = apperror.BadRequest("start_at must be before end_at")
	ErrPercentageTooHigh  = apperror.BadRequest("percentage value cannot exceed 100")
	ErrCouponScope        = apperror.BadRequest("store_ids, user_ids or product_ids must list existing rows for a scoped coupon")
	ErrCreditCodeNotFound = apperror.NotFound("credit code not found")
	ErrCreditCodeExists   = apperror.Conflict("credit code already exists")
)

type CouponRequest struct {
	Code           string           `json:"code" validate:"required,max=50"`
	Description    string           `json:"description"`
	DiscountType   string           `json:"discount_type" validate:"required,oneof=percentage fixed"`
	Value          decimal.Decimal  `json:"value" validate:"gt=0"`
	MaxDiscount    *decimal.Decimal `json:"max_discount" validate:"omitempty,gt=0"`
	MinOrderAmount decimal.Decimal  `json:"min_order_amount" validate:"gte=0"`
	AppliesTo      string           `json:"applies_to" validate:"omitempty,oneof=all store user product"`
	StartAt        time.Time        `json:"start_at" validate:"required"`
	EndAt          time.Time        `json:"end_at" validate:"required"`
	UsageLimit     int              `json:"usage_limit" validate:"gte=0"`
	StoreIDs       []uuid.UUID      `json:"store_ids"`
	UserIDs        []uuid.UUID      `json:"user_ids"`
	ProductIDs     []uuid.UUID      `json:"product_ids"`
}

type ValidateCodeRequest struct {
	Code string `json:"code" validate:"required"`
}

// CouponQuote is what a coupon would take off the actor's current cart.
type CouponQuote struct {
	Code          string          `json:"code"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Discount      decimal.Decimal `json:"discount"`
	Total         decimal.Decimal `json:"total"`
	EligibleItems []uuid.UUID     `json:"eligible_items"`
}

type CouponService interface {
	Create(actor Actor, req *CouponRequest) (*model.Coupon, error)
	Update(actor Actor, id uuid.UUID, req *CouponRequest) (*model.Coupon, error)
	Delete(actor Actor, id uuid.UUID) error
	Get(id uuid.UUID) (*model.Coupon, error)
	List(search string, p pagination.Params) (*List[model.Coupon], error)
	Revoke(actor Actor, id uuid.UUID) (*model.Coupon, error)
	Validate(actor Actor, req *ValidateCodeRequest) (*CouponQuote, error)
}

type couponService struct {
	repo        repository.CouponRepository
	storeRepo   repository.StoreRepository
	userRepo    repository.UserRepository
	productRepo repository.ProductRepository
	cartRepo    repository.CartRepository
	pricer      *Pricer
}

func NewCouponService(repo repository.CouponRepository, storeRepo repository.StoreRepository, userRepo repository.UserRepository, productRepo repository.ProductRepository, cartRepo repository.CartRepository, pricer *Pricer) CouponService {
	return &couponService{
		repo:        repo,
		storeRepo:   storeRepo,
		userRepo:    userRepo,
		productRepo: productRepo,
		cartRepo:    cartRepo,
		pricer:      pricer,
	}
}

func (s *couponService) Create(actor Actor, req *CouponRequest) (*model.Coupon, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}
	code := normalizeCode(req.Code)
	taken, err := s.repo.CodeExists(code)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrCouponExists
	}

	coupon := &model.Coupon{Code: code}
	applyCoupon(coupon, req)
	scope, err := s.resolveScope(coupon.AppliesTo, req)
	if err != nil {
		return nil, err
	}
	coupon.Audit(actor.Audit())
	if err := s.repo.Create(coupon); err != nil {
		return nil, err
	}
	if err := s.repo.ReplaceScope(coupon, scope.stores, scope.users, scope.products); err != nil {
		return nil, err
	}
	return s.repo.FindByID(coupon.ID)
}

func (s *couponService) Update(actor Actor, id uuid.UUID, req *CouponRequest) (*model.Coupon, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}
	coupon, err := s.repo.FindByID(id)
	if err != nil {
		return nil, notFound(err, ErrCouponNotFound)
	}

	code := normalizeCode(req.Code)
	if code != coupon.Code {
		taken, err := s.repo.CodeExists(code)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrCouponExists
		}
		coupon.Code = code
	}
	applyCoupon(coupon, req)
	scope, err := s.resolveScope(coupon.AppliesTo, req)
	if err != nil {
		return nil, err
	}
	coupon.Audit(actor.Audit())

	if err := s.repo.Update(coupon); err != nil {
		return nil, err
	}
	if err := s.repo.ReplaceScope(coupon, scope.stores, scope.users, scope.products); err != nil {
		return nil, err
	}
	return s.repo.FindByID(id)
}

func (s *couponService) Delete(actor Actor, id uuid.UUID) error {
	return notFound(s.repo.Delete(id, actor.Audit()), ErrCouponNotFound)
}

func (s *couponService) Get(id uuid.UUID) (*model.Coupon, error) {
	coupon, err := s.repo.FindByID(id)
	if err != nil {
		return nil, notFound(err, ErrCouponNotFound)
	}
	return coupon, nil
}

func (s *couponService) List(search string, p pagination.Params) (*List[model.Coupon], error) {
	coupons, total, err := s.repo.FindAll(search, p)
	if err != nil {
		return nil, err
	}
	return &List[model.Coupon]{Items: coupons, Total: total}, nil
}

func (s *couponService) Revoke(actor Actor, id uuid.UUID) (*model.Coupon, error) {
	coupon, err := s.repo.FindByID(id)
	if err != nil {
		return nil, notFound(err, ErrCouponNotFound)
	}
	coupon.IsRevoked = true
	coupon.Audit(actor.Audit())
	if err := s.repo.Update(coupon); err != nil {
		return nil, err
	}
	return coupon, nil
}

func (s *couponService) Validate(actor Actor, req *ValidateCodeRequest) (*CouponQuote, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	coupon, err := s.repo.FindByCode(normalizeCode(req.Code))
	if err != nil {
		return nil, notFound(err, ErrCouponNotFound)
	}

	cart, err := s.cartRepo.FindByUser(actor.UserID)
	if err != nil {
		return nil, err
	}
	if len(cart) == 0 {
		return nil, ErrCartEmpty
	}
	if err := priceCartLines(s.pricer, cart); err != nil {
		return nil, err
	}
	lines := pricingLines(cart)

	result, err := pricing.ApplyCoupon(coupon, actor.UserID, lines, now())
	if err != nil {
		return nil, err
	}

	subtotal := pricing.Subtotal(lines)
	quote := &CouponQuote{
		Code:     coupon.Code,
		Subtotal: subtotal,
		Discount: result.Discount,
		Total:    subtotal.Sub(result.Discount),
	}
	for _, idx := range result.Eligible {
		quote.EligibleItems = append(quote.EligibleItems, cart[idx].ID)
	}
	return quote, nil
}

func (s *couponService) check(req *CouponRequest) error {
	if err := validate(req); err != nil {
		return err
	}
	if !req.StartAt.Before(req.EndAt) {
		return ErrCouponWindow
	}
	if req.DiscountType == string(model.DiscountPercentage) && req.Value.GreaterThan(decimal.NewFromInt(100)) {
		return ErrPercentageTooHigh
	}
	return nil
}

type couponScope struct {
	stores   []model.Store
	users    []model.User
	products []model.Product
}

// resolveScope loads the rows a scoped coupon targets. Every listed id must exist.
func (s *couponService) resolveScope(appliesTo model.CouponScope, req *CouponRequest) (*couponScope, error) {
	scope := &couponScope{}
	var err error

	switch appliesTo {
	case model.ScopeStore:
		ids := uniqueIDs(req.StoreIDs)
		if scope.stores, err = s.storeRepo.FindByIDs(ids); err != nil {
			return nil, err
		}
		if len(ids) == 0 || len(scope.stores) != len(ids) {
			return nil, ErrCouponScope
		}
	case model.ScopeUser:
		ids := uniqueIDs(req.UserIDs)
		if scope.users, err = s.userRepo.FindByIDs(ids); err != nil {
			return nil, err
		}
		if len(ids) == 0 || len(scope.users) != len(ids) {
			return nil, ErrCouponScope
		}
	case model.ScopeProduct:
		ids := uniqueIDs(req.ProductIDs)
		if scope.products, err = s.productRepo.FindByIDs(ids); err != nil {
			return nil, err
		}
		if len(ids) == 0 || len(scope.products) != len(ids) {
			return nil, ErrCouponScope
		}
	}
	return scope, nil
}

func applyCoupon(coupon *model.Coupon, req *CouponRequest) {
	coupon.Description = req.Description
	coupon.DiscountType = model.DiscountType(req.DiscountType)
	coupon.Value = req.Value.Round(2)
	coupon.MaxDiscount = decimal.NullDecimal{}
	if req.MaxDiscount != nil {
		coupon.MaxDiscount = decimal.NewNullDecimal(req.MaxDiscount.Round(2))
	}
	coupon.MinOrderAmount = req.MinOrderAmount.Round(2)
	coupon.AppliesTo = model.ScopeAll
	if req.AppliesTo != "" {
		coupon.AppliesTo = model.CouponScope(strings.ToLower(req.AppliesTo))
	}
	coupon.StartAt = req.StartAt.UTC()
	coupon.EndAt = req.EndAt.UTC()
	coupon.UsageLimit = req.UsageLimit
}

// pricingLines converts priced cart lines for the pricing package.
func pricingLines(cart []model.Cart) []pricing.Line {
	lines := make([]pricing.Line, len(cart))
	for i, c := range cart {
		lines[i] = pricing.Line{
			VariationID: c.VariationID,
			UnitPrice:   c.UnitPrice,
			Quantity:    c.Quantity,
		}
		if c.Variation != nil {
			lines[i].ProductID = c.Variation.ProductID
			if c.Variation.Product != nil {
				lines[i].StoreID = c.Variation.Product.StoreID
			}
		}
	}
	return lines
}
