package service

import (
	"fmt"
	"strings"

	"go-marketplace-api/internal/events"
	"go-marketplace-api/internal/model"
	"go-marketplace-api/internal/pricing"
	"go-marketplace-api/internal/repository"
	"go-marketplace-api/pkg/apperror"
	"go-marketplace-api/pkg/pagination"
	"go-marketplace-api/pkg/payment"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrOrderNotFound      = apperror.NotFound("order not found")
	ErrStoreOrderNotFound = apperror.NotFound("store order not found")
	ErrInvalidTransition  = apperror.BadRequest("invalid status transition")
	ErrOrderTotalChanged  = apperror.Conflict("order total changed, please verify the payment again")
)

type CheckoutRequest struct {
	AddressID        uuid.UUID `json:"address_id" validate:"uuid_required"`
	CouponCode       string    `json:"coupon_code" validate:"max=50"`
	CreditCode       string    `json:"credit_code" validate:"max=50"`
	PaymentMethod    string    `json:"payment_method" validate:"required,oneof=wallet gateway"`
	PaymentReference string    `json:"payment_reference" validate:"max=120"`
}

type StoreOrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=processing shipped delivered cancelled"`
}

type OrderService interface {
	Checkout(actor Actor, req *CheckoutRequest) (*model.Order, error)
	List(actor Actor, status model.PaymentStatus, p pagination.Params) (*List[model.Order], error)
	Get(actor Actor, id uuid.UUID) (*model.Order, error)
	ListStoreOrders(actor Actor, storeID uuid.UUID, status model.OrderStatus, p pagination.Params) (*List[model.StoreOrder], error)
	GetStoreOrder(actor Actor, id uuid.UUID) (*model.StoreOrder, error)
	UpdateStoreOrderStatus(actor Actor, id uuid.UUID, req *StoreOrderStatusRequest) (*model.StoreOrder, error)
}

type orderService struct {
	db            *gorm.DB
	orderRepo     repository.OrderRepository
	cartRepo      repository.CartRepository
	variationRepo repository.VariationRepository
	couponRepo    repository.CouponRepository
	creditRepo    repository.CreditCodeRepository
	walletRepo    repository.WalletRepository
	addressRepo   repository.AddressRepository
	storeRepo     repository.StoreRepository
	pricer        *Pricer
	verifier      payment.Verifier
	publisher     events.Publisher
}

func NewOrderService(
	db *gorm.DB,
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	variationRepo repository.VariationRepository,
	couponRepo repository.CouponRepository,
	creditRepo repository.CreditCodeRepository,
	walletRepo repository.WalletRepository,
	addressRepo repository.AddressRepository,
	storeRepo repository.StoreRepository,
	pricer *Pricer,
	verifier payment.Verifier,
	publisher events.Publisher,
) OrderService {
	return &orderService{
		db:            db,
		orderRepo:     orderRepo,
		cartRepo:      cartRepo,
		variationRepo: variationRepo,
		couponRepo:    couponRepo,
		creditRepo:    creditRepo,
		walletRepo:    walletRepo,
		addressRepo:   addressRepo,
		storeRepo:     storeRepo,
		pricer:        pricer,
		verifier:      verifier,
		publisher:     publisher,
	}
}

// checkoutQuote is the priced cart with coupon and credit applied.
type checkoutQuote struct {
	cart           []model.Cart
	lines          []pricing.Line
	lineDiscounts  []decimal.Decimal
	subtotal       decimal.Decimal
	coupon         *model.Coupon
	couponDiscount decimal.Decimal
	credit         *model.CreditCode
	creditDiscount decimal.Decimal
	total          decimal.Decimal
}

func (s *orderService) Checkout(actor Actor, req *CheckoutRequest) (*model.Order, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	req.CouponCode = normalizeCode(req.CouponCode)
	req.CreditCode = normalizeCode(req.CreditCode)
	method := model.PaymentMethod(req.PaymentMethod)

	address, err := s.addressRepo.FindByID(req.AddressID)
	if err != nil {
		return nil, notFound(err, ErrAddressNotFound)
	}
	if address.UserID != actor.UserID {
		return nil, ErrAddressNotFound
	}

	// The gateway is asked before any row is locked; the total is checked
	// again inside the transaction.
	var verified *payment.Verification
	if method == model.PaymentGateway {
		preview, err := s.quote(s.db, actor, req, false)
		if err != nil {
			return nil, err
		}
		if preview.total.IsPositive() {
			if err := s.checkReference(s.walletRepo, req.PaymentReference); err != nil {
				return nil, err
			}
			if verified, err = verifyPayment(s.verifier, req.PaymentReference, preview.total); err != nil {
				return nil, err
			}
		}
	}

	var order *model.Order
	err = s.db.Transaction(func(tx *gorm.DB) error {
		q, err := s.quote(tx, actor, req, true)
		if err != nil {
			return err
		}
		if method == model.PaymentGateway {
			paid := decimal.Zero
			if verified != nil {
				paid = verified.Amount
			}
			if !paid.Equal(q.total) {
				return ErrOrderTotalChanged
			}
			if verified != nil {
				if err := s.checkReference(s.walletRepo.WithTx(tx), verified.Reference); err != nil {
					return err
				}
			}
		}

		orders := s.orderRepo.WithTx(tx)
		number, err := newOrderNumber(orders)
		if err != nil {
			return err
		}

		order = &model.Order{
			UserID:            actor.UserID,
			OrderNumber:       number,
			ShippingRecipient: address.Recipient,
			ShippingPhone:     address.Phone,
			ShippingAddress:   formatAddress(address),
			Subtotal:          q.subtotal,
			CouponDiscount:    q.couponDiscount,
			CreditDiscount:    q.creditDiscount,
			Total:             q.total,
			PaymentMethod:     method,
			PaymentStatus:     model.PaymentPaid,
			StoreOrders:       q.storeOrders(actor.Audit()),
		}
		if q.coupon != nil {
			order.CouponID = &q.coupon.ID
		}
		if q.credit != nil {
			order.CreditCodeID = &q.credit.ID
		}
		if verified != nil {
			order.PaymentReference = verified.Reference
		}
		order.Audit(actor.Audit())
		if err := orders.Create(order); err != nil {
			return err
		}

		variations := s.variationRepo.WithTx(tx)
		for _, line := range q.cart {
			if err := variations.AdjustStock(line.VariationID, -line.Quantity); err != nil {
				return err
			}
		}

		if q.coupon != nil {
			if err := s.couponRepo.WithTx(tx).IncrementUsage(q.coupon.ID); err != nil {
				return err
			}
		}
		if q.credit != nil {
			credits := s.creditRepo.WithTx(tx)
			if err := credits.IncrementUsage(q.credit.ID); err != nil {
				return err
			}
			usage := &model.CreditCodeUsage{
				CreditCodeID: q.credit.ID,
				UserID:       actor.UserID,
				OrderID:      order.ID,
				Amount:       q.creditDiscount,
			}
			usage.Audit(actor.Audit())
			if err := credits.CreateUsage(usage); err != nil {
				return err
			}
		}

		if method == model.PaymentWallet && q.total.IsPositive() {
			entry, err := post(s.walletRepo.WithTx(tx), ledgerEntry{
				UserID:      actor.UserID,
				Type:        model.TxDebit,
				Purpose:     model.PurposeOrder,
				Amount:      q.total,
				Reference:   number,
				Description: "Payment for order " + number,
			}, actor.Audit())
			if err != nil {
				return err
			}
			order.PaymentReference = entry.ID.String()
			if err := orders.UpdateOrder(order); err != nil {
				return err
			}
		}

		return s.cartRepo.WithTx(tx).ClearUser(actor.UserID)
	})
	if err != nil {
		return nil, err
	}

	created, err := s.orderRepo.FindByID(order.ID)
	if err != nil {
		return nil, err
	}
	events.PublishAsync(s.publisher, events.OrderCreated, created)
	for i := range created.StoreOrders {
		events.PublishAsync(s.publisher, events.StoreOrderCreated, created.StoreOrders[i])
	}
	return created, nil
}

func (s *orderService) checkReference(wallets repository.WalletRepository, reference string) error {
	if reference == "" {
		return ErrPaymentRequired
	}
	used, err := wallets.PaymentReferenceUsed(reference)
	if err != nil {
		return err
	}
	if used {
		return ErrReferenceUsed
	}
	return nil
}

// quote prices the actor's cart. With lock set the variations, coupon and
// credit code are read FOR UPDATE through tx.
func (s *orderService) quote(db *gorm.DB, actor Actor, req *CheckoutRequest, lock bool) (*checkoutQuote, error) {
	cart, err := s.cartRepo.WithTx(db).FindByUser(actor.UserID)
	if err != nil {
		return nil, err
	}
	if len(cart) == 0 {
		return nil, ErrCartEmpty
	}

	if lock {
		ids := make([]uuid.UUID, len(cart))
		for i, line := range cart {
			ids[i] = line.VariationID
		}
		locked, err := s.variationRepo.WithTx(db).LockByIDs(ids)
		if err != nil {
			return nil, err
		}
		byID := make(map[uuid.UUID]*model.ProductVariation, len(locked))
		for i := range locked {
			byID[locked[i].ID] = &locked[i]
		}
		for i := range cart {
			cart[i].Variation = byID[cart[i].VariationID]
		}
	}

	for _, line := range cart {
		v := line.Variation
		if v == nil || v.Product == nil || !v.Product.IsPublished {
			return nil, ErrProductUnavailable
		}
		if line.Quantity > v.Stock {
			return nil, fmt.Errorf("%w: %s", ErrInsufficientStock, v.SKU)
		}
	}

	if err := priceCartLines(s.pricer.WithTx(db), cart); err != nil {
		return nil, err
	}

	q := &checkoutQuote{cart: cart, lines: pricingLines(cart)}
	q.subtotal = pricing.Subtotal(q.lines)
	q.couponDiscount = decimal.Zero
	q.creditDiscount = decimal.Zero
	q.lineDiscounts = make([]decimal.Decimal, len(q.lines))
	for i := range q.lineDiscounts {
		q.lineDiscounts[i] = decimal.Zero
	}

	if req.CouponCode != "" {
		coupons := s.couponRepo.WithTx(db)
		var coupon *model.Coupon
		if lock {
			coupon, err = coupons.LockByCode(req.CouponCode)
		} else {
			coupon, err = coupons.FindByCode(req.CouponCode)
		}
		if err != nil {
			return nil, notFound(err, ErrCouponNotFound)
		}
		result, err := pricing.ApplyCoupon(coupon, actor.UserID, q.lines, now())
		if err != nil {
			return nil, err
		}
		q.coupon = coupon
		q.couponDiscount = result.Discount
		q.lineDiscounts = result.LineDiscounts
	}

	remaining := q.subtotal.Sub(q.couponDiscount)
	if req.CreditCode != "" {
		credits := s.creditRepo.WithTx(db)
		var credit *model.CreditCode
		if lock {
			credit, err = credits.LockByCode(req.CreditCode)
		} else {
			credit, err = credits.FindByCode(req.CreditCode)
		}
		if err != nil {
			return nil, notFound(err, ErrCreditCodeNotFound)
		}
		used, err := credits.HasUsage(credit.ID, actor.UserID)
		if err != nil {
			return nil, err
		}
		if err := pricing.CheckCreditCode(credit, actor.UserID, now(), used); err != nil {
			return nil, err
		}
		q.credit = credit
		q.creditDiscount = pricing.CreditAmount(credit, remaining)
	}

	q.total = remaining.Sub(q.creditDiscount)
	return q, nil
}

// storeOrders splits the quote per store. Coupon discounts follow the
// lines; the credit is spread over the stores by their post-coupon totals.
func (q *checkoutQuote) storeOrders(auditBy string) []model.StoreOrder {
	var storeOrders []model.StoreOrder
	index := make(map[uuid.UUID]int)

	for i, line := range q.lines {
		idx, ok := index[line.StoreID]
		if !ok {
			storeOrders = append(storeOrders, model.StoreOrder{
				StoreID:       line.StoreID,
				Subtotal:      decimal.Zero,
				Discount:      decimal.Zero,
				Status:        model.OrderPending,
				PaymentStatus: model.PaymentPaid,
			})
			idx = len(storeOrders) - 1
			index[line.StoreID] = idx
		}

		v := q.cart[i].Variation
		item := model.StoreOrderProduct{
			ProductID:   line.ProductID,
			VariationID: line.VariationID,
			ProductName: v.Product.Name,
			VariantName: v.Name,
			SKU:         v.SKU,
			UnitPrice:   line.UnitPrice,
			Quantity:    line.Quantity,
			LineTotal:   line.Total(),
			Discount:    q.lineDiscounts[i],
		}
		item.Audit(auditBy)

		so := &storeOrders[idx]
		so.Items = append(so.Items, item)
		so.Subtotal = so.Subtotal.Add(item.LineTotal)
		so.Discount = so.Discount.Add(item.Discount)
	}

	weights := make([]decimal.Decimal, len(storeOrders))
	for i, so := range storeOrders {
		weights[i] = so.Subtotal.Sub(so.Discount)
	}
	for i, share := range pricing.Allocate(q.creditDiscount, weights) {
		so := &storeOrders[i]
		so.Discount = so.Discount.Add(share)
		so.Total = so.Subtotal.Sub(so.Discount)
		so.Audit(auditBy)
	}
	return storeOrders
}

func (s *orderService) List(actor Actor, status model.PaymentStatus, p pagination.Params) (*List[model.Order], error) {
	filter := repository.OrderFilter{Status: status}
	if !actor.HasPrivilege(model.PrivOrderViewAll) {
		filter.UserID = &actor.UserID
	}
	orders, total, err := s.orderRepo.FindAll(filter, p)
	if err != nil {
		return nil, err
	}
	return &List[model.Order]{Items: orders, Total: total}, nil
}

// Get returns the order to its buyer and to admins. A vendor involved in
// the order sees only the store orders of stores they own.
func (s *orderService) Get(actor Actor, id uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(id)
	if err != nil {
		return nil, notFound(err, ErrOrderNotFound)
	}
	if order.UserID == actor.UserID || actor.HasPrivilege(model.PrivOrderViewAll) {
		return order, nil
	}

	var own []model.StoreOrder
	for _, so := range order.StoreOrders {
		if so.Store != nil && so.Store.OwnerID == actor.UserID {
			own = append(own, so)
		}
	}
	if len(own) == 0 {
		return nil, ErrOrderNotFound
	}
	order.StoreOrders = own
	return order, nil
}

func (s *orderService) ListStoreOrders(actor Actor, storeID uuid.UUID, status model.OrderStatus, p pagination.Params) (*List[model.StoreOrder], error) {
	store, err := s.storeRepo.FindByID(storeID)
	if err != nil {
		return nil, notFound(err, ErrStoreNotFound)
	}
	if !canManageStore(&actor, store) && !actor.HasPrivilege(model.PrivOrderViewAll) {
		return nil, ErrForbidden
	}
	storeOrders, total, err := s.orderRepo.FindStoreOrders(storeID, status, p)
	if err != nil {
		return nil, err
	}
	return &List[model.StoreOrder]{Items: storeOrders, Total: total}, nil
}

func (s *orderService) GetStoreOrder(actor Actor, id uuid.UUID) (*model.StoreOrder, error) {
	storeOrder, err := s.orderRepo.FindStoreOrderByID(id)
	if err != nil {
		return nil, notFound(err, ErrStoreOrderNotFound)
	}
	if storeOrder.Order != nil && storeOrder.Order.UserID == actor.UserID {
		return storeOrder, nil
	}
	if actor.HasPrivilege(model.PrivOrderViewAll) || (storeOrder.Store != nil && canManageStore(&actor, storeOrder.Store)) {
		return storeOrder, nil
	}
	return nil, ErrStoreOrderNotFound
}

// UpdateStoreOrderStatus moves a store order along its lifecycle. A
// cancellation puts the stock back and refunds a paid store order to the
// buyer's wallet.
func (s *orderService) UpdateStoreOrderStatus(actor Actor, id uuid.UUID, req *StoreOrderStatusRequest) (*model.StoreOrder, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	next := model.OrderStatus(req.Status)

	current, err := s.orderRepo.FindStoreOrderByID(id)
	if err != nil {
		return nil, notFound(err, ErrStoreOrderNotFound)
	}
	if current.Store == nil || !canManageStore(&actor, current.Store) {
		return nil, ErrForbidden
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		orders := s.orderRepo.WithTx(tx)
		so, err := orders.LockStoreOrder(id)
		if err != nil {
			return notFound(err, ErrStoreOrderNotFound)
		}
		if !so.Status.CanTransitionTo(next) {
			return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, so.Status, next)
		}
		so.Status = next

		refunded := false
		if next == model.OrderCancelled {
			variations := s.variationRepo.WithTx(tx)
			for _, item := range so.Items {
				if err := variations.AdjustStock(item.VariationID, item.Quantity); err != nil {
					return err
				}
			}

			if so.PaymentStatus == model.PaymentPaid {
				if so.Total.IsPositive() {
					_, err := post(s.walletRepo.WithTx(tx), ledgerEntry{
						UserID:      so.Order.UserID,
						Type:        model.TxCredit,
						Purpose:     model.PurposeRefund,
						Amount:      so.Total,
						Reference:   so.Order.OrderNumber,
						Description: "Refund for cancelled order " + so.Order.OrderNumber,
					}, actor.Audit())
					if err != nil {
						return err
					}
				}
				so.PaymentStatus = model.PaymentRefunded
				refunded = true
			}
		}

		order := so.Order
		so.Audit(actor.Audit())
		if err := orders.UpdateStoreOrder(so); err != nil {
			return err
		}

		if refunded {
			left, err := orders.CountStoreOrdersNotIn(order.ID, model.PaymentRefunded)
			if err != nil {
				return err
			}
			if left == 0 {
				order.PaymentStatus = model.PaymentRefunded
				order.Audit(actor.Audit())
				return orders.UpdateOrder(order)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.orderRepo.FindStoreOrderByID(id)
	if err != nil {
		return nil, err
	}
	events.PublishAsync(s.publisher, events.StoreOrderStatusChanged, updated)
	return updated, nil
}

func newOrderNumber(orders repository.OrderRepository) (string, error) {
	for i := 0; i < 5; i++ {
		suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
		number := fmt.Sprintf("ORD-%s-%s", now().Format("20060102"), suffix)
		taken, err := orders.OrderNumberExists(number)
		if err != nil {
			return "", err
		}
		if !taken {
			return number, nil
		}
	}
	return "", fmt.Errorf("could not allocate a unique order number")
}

func formatAddress(a *model.UserAddress) string {
	parts := []string{a.Line1}
	for _, p := range []string{a.Line2, a.City, a.State, a.PostalCode, a.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
