package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"go-marketplace-api/internal/model"
	"go-marketplace-api/internal/repository"
	"go-marketplace-api/pkg/database"
	"go-marketplace-api/pkg/pagination"
	"go-marketplace-api/pkg/payment"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func defaultPage() pagination.Params {
	return pagination.Normalize(1, pagination.DefaultLimit)
}

type recordingPublisher struct {
	mu   sync.Mutex
	keys []string
}

func (p *recordingPublisher) Publish(_ context.Context, routingKey string, _ interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, routingKey)
	return nil
}

func (p *recordingPublisher) count(routingKey string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, k := range p.keys {
		if k == routingKey {
			n++
		}
	}
	return n
}

// fakeVerifier knows which references were paid and for how much.
type fakeVerifier struct {
	mu   sync.Mutex
	paid map[string]decimal.Decimal
}

func newFakeVerifier() *fakeVerifier {
	return &fakeVerifier{paid: map[string]decimal.Decimal{}}
}

func (v *fakeVerifier) pay(reference string, amount decimal.Decimal) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.paid[reference] = amount
}

func (v *fakeVerifier) Verify(reference string, amount decimal.Decimal) (*payment.Verification, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	paid, ok := v.paid[reference]
	if !ok {
		return nil, payment.ErrNotSuccessful
	}
	if !paid.Equal(amount) {
		return nil, payment.ErrAmountMismatch
	}
	return &payment.Verification{Reference: reference, Amount: paid, Gateway: "test"}, nil
}

type fixture struct {
	t         *testing.T
	db        *gorm.DB
	events    *recordingPublisher
	verifier  *fakeVerifier
	pricer    *Pricer
	orders    OrderService
	wallets   WalletService
	carts     CartService
	coupons   CouponService
	credits   CreditCodeService
	settle    SettlementService
	withdraws WithdrawalService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.OpenSQLite("file::memory:")
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.All()...))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	f := &fixture{t: t, db: db, events: &recordingPublisher{}, verifier: newFakeVerifier()}

	userRepo := repository.NewUserRepo(db)
	storeRepo := repository.NewStoreRepo(db)
	productRepo := repository.NewProductRepo(db)
	variationRepo := repository.NewVariationRepo(db)
	cartRepo := repository.NewCartRepo(db)
	couponRepo := repository.NewCouponRepo(db)
	creditRepo := repository.NewCreditCodeRepo(db)
	orderRepo := repository.NewOrderRepo(db)
	walletRepo := repository.NewWalletRepo(db)

	f.pricer = NewPricer(repository.NewFlashSaleRepo(db))
	f.orders = NewOrderService(db, orderRepo, cartRepo, variationRepo, couponRepo, creditRepo, walletRepo,
		repository.NewAddressRepo(db), storeRepo, f.pricer, f.verifier, f.events)
	f.wallets = NewWalletService(db, walletRepo, f.verifier, f.events)
	f.carts = NewCartService(cartRepo, variationRepo, f.pricer)
	f.coupons = NewCouponService(couponRepo, storeRepo, userRepo, productRepo, cartRepo, f.pricer)
	f.credits = NewCreditCodeService(creditRepo, userRepo, cartRepo, f.pricer)
	f.settle = NewSettlementService(db, repository.NewSettlementRepo(db), orderRepo, storeRepo, walletRepo, f.events)
	f.withdraws = NewWithdrawalService(db, repository.NewWithdrawalRepo(db), walletRepo, f.events)
	return f
}

func (f *fixture) user(name string) (*model.User, Actor) {
	f.t.Helper()
	u := &model.User{
		Email:    fmt.Sprintf("%s-%s@example.com", name, uuid.NewString()[:8]),
		FullName: name,
		IsActive: true,
	}
	require.NoError(f.t, u.SetPassword("secret123"))
	require.NoError(f.t, f.db.Create(u).Error)
	return u, Actor{UserID: u.ID, Name: name}
}

func (f *fixture) store(owner *model.User, rate string) *model.Store {
	f.t.Helper()
	s := &model.Store{
		OwnerID:        owner.ID,
		Name:           owner.FullName + " shop",
		Slug:           "shop-" + uuid.NewString()[:8],
		CommissionRate: dec(rate),
		IsActive:       true,
	}
	require.NoError(f.t, f.db.Create(s).Error)
	return s
}

// variation creates a published product with a single variation.
func (f *fixture) variation(store *model.Store, price string, stock int) *model.ProductVariation {
	f.t.Helper()
	p := &model.Product{
		StoreID:     store.ID,
		Name:        "Product " + uuid.NewString()[:6],
		Slug:        "product-" + uuid.NewString()[:8],
		IsPublished: true,
	}
	require.NoError(f.t, f.db.Create(p).Error)
	v := &model.ProductVariation{
		ProductID: p.ID,
		SKU:       "SKU-" + uuid.NewString()[:8],
		Name:      "Default",
		Price:     dec(price),
		Stock:     stock,
	}
	require.NoError(f.t, f.db.Omit("Product").Create(v).Error)
	v.Product = p
	return v
}

func (f *fixture) address(u *model.User) *model.UserAddress {
	f.t.Helper()
	a := &model.UserAddress{
		UserID:    u.ID,
		Recipient: u.FullName,
		Phone:     "0800000000",
		Line1:     "1 Market Street",
		City:      "Lagos",
		Country:   "NG",
		IsDefault: true,
	}
	require.NoError(f.t, f.db.Create(a).Error)
	return a
}

func (f *fixture) fund(u *model.User, amount string) {
	f.t.Helper()
	w := &model.UserWallet{UserID: u.ID, Balance: dec(amount)}
	require.NoError(f.t, f.db.Create(w).Error)
}

func (f *fixture) balance(u *model.User) decimal.Decimal {
	f.t.Helper()
	var w model.UserWallet
	require.NoError(f.t, f.db.First(&w, "user_id = ?", u.ID).Error)
	return w.Balance
}

func (f *fixture) stock(v *model.ProductVariation) int {
	f.t.Helper()
	var fresh model.ProductVariation
	require.NoError(f.t, f.db.First(&fresh, "id = ?", v.ID).Error)
	return fresh.Stock
}

func (f *fixture) addToCart(actor Actor, v *model.ProductVariation, qty int) {
	f.t.Helper()
	_, err := f.carts.Add(actor, &AddToCartRequest{VariationID: v.ID, Quantity: qty})
	require.NoError(f.t, err)
}

func (f *fixture) coupon(c *model.Coupon) *model.Coupon {
	f.t.Helper()
	if c.StartAt.IsZero() {
		c.StartAt = now().Add(-time.Hour)
	}
	if c.EndAt.IsZero() {
		c.EndAt = now().Add(24 * time.Hour)
	}
	if c.AppliesTo == "" {
		c.AppliesTo = model.ScopeAll
	}
	require.NoError(f.t, f.db.Omit("Stores", "Users", "Products").Create(c).Error)
	return c
}

func (f *fixture) storeOrderOf(order *model.Order, storeID uuid.UUID) model.StoreOrder {
	f.t.Helper()
	for _, so := range order.StoreOrders {
		if so.StoreID == storeID {
			return so
		}
	}
	f.t.Fatalf("order %s has no store order for store %s", order.ID, storeID)
	return model.StoreOrder{}
}
