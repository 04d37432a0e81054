package service

import (
	"testing"
	"time"

	"go-marketplace-api/internal/events"
	"go-marketplace-api/internal/model"
	"go-marketplace-api/internal/pricing"
	"go-marketplace-api/pkg/apperror"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertMoney(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "want %s, got %s", want, got)
}

// twoStoreCart fills the buyer's cart with 2 x 100 from store A and
// 1 x 50 from store B.
func twoStoreCart(f *fixture) (buyer *model.User, actor Actor, storeA, storeB *model.Store, va, vb *model.ProductVariation) {
	vendorA, _ := f.user("vendor-a")
	vendorB, _ := f.user("vendor-b")
	buyer, actor = f.user("buyer")
	storeA = f.store(vendorA, "10")
	storeB = f.store(vendorB, "5")
	va = f.variation(storeA, "100", 10)
	vb = f.variation(storeB, "50", 3)
	f.addToCart(actor, va, 2)
	f.addToCart(actor, vb, 1)
	return
}

func TestCheckoutWithWalletSplitsOrderPerStore(t *testing.T) {
	f := newFixture(t)
	buyer, actor, storeA, storeB, va, vb := twoStoreCart(f)
	addr := f.address(buyer)
	f.fund(buyer, "500")

	order, err := f.orders.Checkout(actor, &CheckoutRequest{AddressID: addr.ID, PaymentMethod: "wallet"})
	require.NoError(t, err)

	assertMoney(t, "250", order.Subtotal)
	assertMoney(t, "250", order.Total)
	assert.Equal(t, model.PaymentPaid, order.PaymentStatus)
	assert.NotEmpty(t, order.PaymentReference)
	assert.Contains(t, order.ShippingAddress, "1 Market Street")
	require.Len(t, order.StoreOrders, 2)

	soA := f.storeOrderOf(order, storeA.ID)
	soB := f.storeOrderOf(order, storeB.ID)
	assertMoney(t, "200", soA.Total)
	assertMoney(t, "50", soB.Total)
	assert.Equal(t, model.OrderPending, soA.Status)
	require.Len(t, soA.Items, 1)
	assert.Equal(t, 2, soA.Items[0].Quantity)
	assertMoney(t, "100", soA.Items[0].UnitPrice)

	assertMoney(t, "250", f.balance(buyer))
	assert.Equal(t, 8, f.stock(va))
	assert.Equal(t, 2, f.stock(vb))

	cart, err := f.carts.Get(actor)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	ledger, err := f.wallets.ListTransactions(actor, TransactionQuery{Purpose: model.PurposeOrder}, defaultPage())
	require.NoError(t, err)
	require.Len(t, ledger.Items, 1)
	assert.Equal(t, model.TxDebit, ledger.Items[0].Type)
	assertMoney(t, "250", ledger.Items[0].BalanceAfter)

	assert.Eventually(t, func() bool {
		return f.events.count(events.OrderCreated) == 1 && f.events.count(events.StoreOrderCreated) == 2
	}, time.Second, 10*time.Millisecond)
}

func TestCheckoutRollsBackOnInsufficientBalance(t *testing.T) {
	f := newFixture(t)
	buyer, actor, _, _, va, _ := twoStoreCart(f)
	addr := f.address(buyer)
	f.fund(buyer, "10")

	_, err := f.orders.Checkout(actor, &CheckoutRequest{AddressID: addr.ID, PaymentMethod: "wallet"})
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	assertMoney(t, "10", f.balance(buyer))
	assert.Equal(t, 10, f.stock(va))
	cart, err := f.carts.Get(actor)
	require.NoError(t, err)
	assert.Len(t, cart.Items, 2)
}

func TestCheckoutRejectsEmptyCartAndForeignAddress(t *testing.T) {
	f := newFixture(t)
	buyer, actor := f.user("buyer")
	other, _ := f.user("other")

	_, err := f.orders.Checkout(actor, &CheckoutRequest{AddressID: f.address(buyer).ID, PaymentMethod: "wallet"})
	assert.ErrorIs(t, err, ErrCartEmpty)

	_, err = f.orders.Checkout(actor, &CheckoutRequest{AddressID: f.address(other).ID, PaymentMethod: "wallet"})
	assert.ErrorIs(t, err, ErrAddressNotFound)
}

func TestCheckoutRejectsQuantityAboveStock(t *testing.T) {
	f := newFixture(t)
	vendor, _ := f.user("vendor")
	buyer, actor := f.user("buyer")
	v := f.variation(f.store(vendor, "10"), "20", 2)
	f.addToCart(actor, v, 2)
	f.fund(buyer, "100")

	// Someone else bought the last units after the line was added.
	require.NoError(t, f.db.Model(&model.ProductVariation{}).Where("id = ?", v.ID).Update("stock", 1).Error)

	_, err := f.orders.Checkout(actor, &CheckoutRequest{AddressID: f.address(buyer).ID, PaymentMethod: "wallet"})
	assert.ErrorIs(t, err, ErrInsufficientStock)
}

func TestCheckoutAppliesCouponThenCredit(t *testing.T) {
	f := newFixture(t)
	buyer, actor, storeA, storeB, _, _ := twoStoreCart(f)
	addr := f.address(buyer)
	f.fund(buyer, "500")

	coupon := f.coupon(&model.Coupon{Code: "TENOFF", DiscountType: model.DiscountPercentage, Value: dec("10")})
	credit := &model.CreditCode{Code: "CR-GIFT", Amount: dec("30"), UsageLimit: 1}
	require.NoError(t, f.db.Create(credit).Error)

	order, err := f.orders.Checkout(actor, &CheckoutRequest{
		AddressID:     addr.ID,
		CouponCode:    "tenoff",
		CreditCode:    "cr-gift",
		PaymentMethod: "wallet",
	})
	require.NoError(t, err)

	assertMoney(t, "250", order.Subtotal)
	assertMoney(t, "25", order.CouponDiscount)
	assertMoney(t, "30", order.CreditDiscount)
	assertMoney(t, "195", order.Total)

	soA := f.storeOrderOf(order, storeA.ID)
	soB := f.storeOrderOf(order, storeB.ID)
	assertMoney(t, "44", soA.Discount)
	assertMoney(t, "156", soA.Total)
	assertMoney(t, "11", soB.Discount)
	assertMoney(t, "39", soB.Total)
	assertMoney(t, "195", soA.Total.Add(soB.Total))

	assertMoney(t, "305", f.balance(buyer))

	var usedCoupon model.Coupon
	require.NoError(t, f.db.First(&usedCoupon, "id = ?", coupon.ID).Error)
	assert.Equal(t, 1, usedCoupon.UsedCount)

	var usage model.CreditCodeUsage
	require.NoError(t, f.db.First(&usage, "credit_code_id = ? AND user_id = ?", credit.ID, buyer.ID).Error)
	assert.Equal(t, order.ID, usage.OrderID)
	assertMoney(t, "30", usage.Amount)
}

func TestCheckoutNearFullDiscountKeepsTotalsNonNegative(t *testing.T) {
	f := newFixture(t)
	buyer, actor := f.user("buyer")
	addr := f.address(buyer)
	f.fund(buyer, "100")
	for _, name := range []string{"vendor-a", "vendor-b", "vendor-c"} {
		vendor, _ := f.user(name)
		f.addToCart(actor, f.variation(f.store(vendor, "10"), "10", 5), 1)
	}
	f.coupon(&model.Coupon{Code: "ALMOST", DiscountType: model.DiscountFixed, Value: dec("29.99")})

	order, err := f.orders.Checkout(actor, &CheckoutRequest{AddressID: addr.ID, CouponCode: "ALMOST", PaymentMethod: "wallet"})
	require.NoError(t, err)
	assertMoney(t, "29.99", order.CouponDiscount)
	assertMoney(t, "0.01", order.Total)
	require.Len(t, order.StoreOrders, 3)

	sum := dec("0")
	for _, so := range order.StoreOrders {
		assert.False(t, so.Total.IsNegative(), "store order total %s", so.Total)
		for _, item := range so.Items {
			assert.False(t, item.Discount.GreaterThan(item.LineTotal), "line discount %s above %s", item.Discount, item.LineTotal)
		}
		sum = sum.Add(so.Total)
	}
	assertMoney(t, "0.01", sum)
	assertMoney(t, "99.99", f.balance(buyer))
}

func TestCheckoutRejectsUsedCreditCode(t *testing.T) {
	f := newFixture(t)
	buyer, actor, _, _, va, _ := twoStoreCart(f)
	addr := f.address(buyer)
	f.fund(buyer, "1000")

	credit := &model.CreditCode{Code: "CR-TWICE", Amount: dec("5"), UsageLimit: 5}
	require.NoError(t, f.db.Create(credit).Error)

	_, err := f.orders.Checkout(actor, &CheckoutRequest{AddressID: addr.ID, CreditCode: "CR-TWICE", PaymentMethod: "wallet"})
	require.NoError(t, err)

	f.addToCart(actor, va, 1)
	_, err = f.orders.Checkout(actor, &CheckoutRequest{AddressID: addr.ID, CreditCode: "CR-TWICE", PaymentMethod: "wallet"})
	assert.ErrorIs(t, err, pricing.ErrCreditAlreadyUsed)
}

func TestCheckoutWithGateway(t *testing.T) {
	t.Run("verified reference pays the order", func(t *testing.T) {
		f := newFixture(t)
		buyer, actor, _, _, va, vb := twoStoreCart(f)
		f.verifier.pay("PSK-1", dec("250"))
		req := &CheckoutRequest{
			AddressID:        f.address(buyer).ID,
			PaymentMethod:    "gateway",
			PaymentReference: "PSK-1",
		}

		order, err := f.orders.Checkout(actor, req)
		require.NoError(t, err)
		assert.Equal(t, model.PaymentGateway, order.PaymentMethod)
		assert.Equal(t, "PSK-1", order.PaymentReference)
		assert.Equal(t, model.PaymentPaid, order.PaymentStatus)

		// The same payment cannot settle a second identical cart or a top-up.
		f.addToCart(actor, va, 2)
		f.addToCart(actor, vb, 1)
		_, err = f.orders.Checkout(actor, req)
		assert.ErrorIs(t, err, ErrReferenceUsed)
		_, err = f.wallets.Topup(actor, &TopupRequest{Amount: dec("250"), Reference: "PSK-1"})
		assert.ErrorIs(t, err, ErrReferenceUsed)
	})

	t.Run("reference is required", func(t *testing.T) {
		f := newFixture(t)
		buyer, actor, _, _, _, _ := twoStoreCart(f)

		_, err := f.orders.Checkout(actor, &CheckoutRequest{AddressID: f.address(buyer).ID, PaymentMethod: "gateway"})
		assert.ErrorIs(t, err, ErrPaymentRequired)
	})

	t.Run("amount mismatch fails", func(t *testing.T) {
		f := newFixture(t)
		buyer, actor, _, _, va, _ := twoStoreCart(f)
		f.verifier.pay("PSK-2", dec("200"))

		_, err := f.orders.Checkout(actor, &CheckoutRequest{
			AddressID:        f.address(buyer).ID,
			PaymentMethod:    "gateway",
			PaymentReference: "PSK-2",
		})
		assert.ErrorIs(t, err, ErrPaymentFailed)
		assert.Equal(t, 400, apperror.StatusOf(err))
		assert.Equal(t, 10, f.stock(va))
	})
}

func TestStoreOrderLifecycle(t *testing.T) {
	f := newFixture(t)
	buyer, actor, storeA, _, _, _ := twoStoreCart(f)
	f.fund(buyer, "500")
	order, err := f.orders.Checkout(actor, &CheckoutRequest{AddressID: f.address(buyer).ID, PaymentMethod: "wallet"})
	require.NoError(t, err)
	soA := f.storeOrderOf(order, storeA.ID)
	vendorA := Actor{UserID: storeA.OwnerID}

	_, err = f.orders.UpdateStoreOrderStatus(actor, soA.ID, &StoreOrderStatusRequest{Status: "processing"})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.orders.UpdateStoreOrderStatus(vendorA, soA.ID, &StoreOrderStatusRequest{Status: "shipped"})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	for _, status := range []string{"processing", "shipped", "delivered"} {
		updated, err := f.orders.UpdateStoreOrderStatus(vendorA, soA.ID, &StoreOrderStatusRequest{Status: status})
		require.NoError(t, err)
		assert.Equal(t, model.OrderStatus(status), updated.Status)
	}

	_, err = f.orders.UpdateStoreOrderStatus(vendorA, soA.ID, &StoreOrderStatusRequest{Status: "cancelled"})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	assert.Eventually(t, func() bool {
		return f.events.count(events.StoreOrderStatusChanged) == 3
	}, time.Second, 10*time.Millisecond)
}

func TestCancelRefundsPaidStoreOrders(t *testing.T) {
	f := newFixture(t)
	buyer, actor, storeA, storeB, va, vb := twoStoreCart(f)
	f.fund(buyer, "500")
	order, err := f.orders.Checkout(actor, &CheckoutRequest{AddressID: f.address(buyer).ID, PaymentMethod: "wallet"})
	require.NoError(t, err)
	assertMoney(t, "250", f.balance(buyer))

	soA := f.storeOrderOf(order, storeA.ID)
	cancelled, err := f.orders.UpdateStoreOrderStatus(Actor{UserID: storeA.OwnerID}, soA.ID, &StoreOrderStatusRequest{Status: "cancelled"})
	require.NoError(t, err)
	assert.Equal(t, model.OrderCancelled, cancelled.Status)
	assert.Equal(t, model.PaymentRefunded, cancelled.PaymentStatus)
	assertMoney(t, "450", f.balance(buyer))
	assert.Equal(t, 10, f.stock(va))

	partly, err := f.orders.Get(actor, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentPaid, partly.PaymentStatus)

	soB := f.storeOrderOf(order, storeB.ID)
	_, err = f.orders.UpdateStoreOrderStatus(Actor{UserID: storeB.OwnerID}, soB.ID, &StoreOrderStatusRequest{Status: "cancelled"})
	require.NoError(t, err)
	assertMoney(t, "500", f.balance(buyer))
	assert.Equal(t, 3, f.stock(vb))

	refunded, err := f.orders.Get(actor, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentRefunded, refunded.PaymentStatus)

	ledger, err := f.wallets.ListTransactions(actor, TransactionQuery{Purpose: model.PurposeRefund}, defaultPage())
	require.NoError(t, err)
	assert.Len(t, ledger.Items, 2)
}

func TestOrderVisibility(t *testing.T) {
	f := newFixture(t)
	buyer, actor, storeA, storeB, _, _ := twoStoreCart(f)
	f.fund(buyer, "500")
	order, err := f.orders.Checkout(actor, &CheckoutRequest{AddressID: f.address(buyer).ID, PaymentMethod: "wallet"})
	require.NoError(t, err)

	vendorView, err := f.orders.Get(Actor{UserID: storeA.OwnerID}, order.ID)
	require.NoError(t, err)
	require.Len(t, vendorView.StoreOrders, 1)
	assert.Equal(t, storeA.ID, vendorView.StoreOrders[0].StoreID)

	_, stranger := f.user("stranger")
	_, err = f.orders.Get(stranger, order.ID)
	assert.ErrorIs(t, err, ErrOrderNotFound)

	admin := Actor{UserID: stranger.UserID, Privileges: []string{model.PrivOrderViewAll}}
	all, err := f.orders.List(admin, "", defaultPage())
	require.NoError(t, err)
	assert.EqualValues(t, 1, all.Total)

	own, err := f.orders.List(stranger, "", defaultPage())
	require.NoError(t, err)
	assert.EqualValues(t, 0, own.Total)

	storeOrders, err := f.orders.ListStoreOrders(Actor{UserID: storeB.OwnerID}, storeB.ID, model.OrderPending, defaultPage())
	require.NoError(t, err)
	assert.EqualValues(t, 1, storeOrders.Total)

	_, err = f.orders.ListStoreOrders(Actor{UserID: storeB.OwnerID}, storeA.ID, "", defaultPage())
	assert.ErrorIs(t, err, ErrForbidden)
}
