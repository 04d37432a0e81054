package service

import (
	"testing"

	"go-marketplace-api/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func deliver(t *testing.T, f *fixture, store *model.Store, storeOrderID uuid.UUID) {
	t.Helper()
	owner := Actor{UserID: store.OwnerID}
	for _, status := range []string{"processing", "shipped", "delivered"} {
		_, err := f.orders.UpdateStoreOrderStatus(owner, storeOrderID, &StoreOrderStatusRequest{Status: status})
		require.NoError(t, err)
	}
}

func TestCommission(t *testing.T) {
	assertMoney(t, "20", Commission(dec("200"), dec("10")))
	assertMoney(t, "1.23", Commission(dec("12.34"), dec("10")))
	assertMoney(t, "0", Commission(dec("99.99"), dec("0")))
}

func TestSettleStore(t *testing.T) {
	f := newFixture(t)
	buyer, actor, storeA, storeB, _, _ := twoStoreCart(f)
	f.fund(buyer, "500")
	order, err := f.orders.Checkout(actor, &CheckoutRequest{AddressID: f.address(buyer).ID, PaymentMethod: "wallet"})
	require.NoError(t, err)
	system := Actor{Privileges: []string{model.PrivSettlementManage}}

	_, err = f.settle.SettleStore(system, storeA.ID)
	assert.ErrorIs(t, err, ErrNothingToSettle)

	deliver(t, f, storeA, f.storeOrderOf(order, storeA.ID).ID)

	settlement, err := f.settle.SettleStore(system, storeA.ID)
	require.NoError(t, err)
	assertMoney(t, "200", settlement.GrossAmount)
	assertMoney(t, "20", settlement.CommissionAmount)
	assertMoney(t, "180", settlement.NetAmount)
	assert.Equal(t, 1, settlement.OrderCount)
	assert.Equal(t, "system", settlement.CreatedBy)

	var vendor model.User
	require.NoError(t, f.db.First(&vendor, "id = ?", storeA.OwnerID).Error)
	assertMoney(t, "180", f.balance(&vendor))

	var settled model.StoreOrder
	require.NoError(t, f.db.First(&settled, "id = ?", f.storeOrderOf(order, storeA.ID).ID).Error)
	require.NotNil(t, settled.SettlementID)
	assert.Equal(t, settlement.ID, *settled.SettlementID)

	_, err = f.settle.SettleStore(system, storeA.ID)
	assert.ErrorIs(t, err, ErrNothingToSettle)

	// Store B still has an undelivered order.
	done, err := f.settle.SettleAll(system)
	require.NoError(t, err)
	assert.Empty(t, done)

	deliver(t, f, storeB, f.storeOrderOf(order, storeB.ID).ID)
	done, err = f.settle.SettleAll(system)
	require.NoError(t, err)
	require.Len(t, done, 1)
	assert.Equal(t, storeB.ID, done[0].StoreID)
	assertMoney(t, "2.50", done[0].CommissionAmount)
}

func TestSettlementVisibility(t *testing.T) {
	f := newFixture(t)
	buyer, actor, storeA, _, _, _ := twoStoreCart(f)
	f.fund(buyer, "500")
	order, err := f.orders.Checkout(actor, &CheckoutRequest{AddressID: f.address(buyer).ID, PaymentMethod: "wallet"})
	require.NoError(t, err)
	deliver(t, f, storeA, f.storeOrderOf(order, storeA.ID).ID)
	_, err = f.settle.SettleStore(Actor{}, storeA.ID)
	require.NoError(t, err)

	own, err := f.settle.ListByStore(Actor{UserID: storeA.OwnerID}, storeA.ID, defaultPage())
	require.NoError(t, err)
	assert.EqualValues(t, 1, own.Total)

	_, err = f.settle.ListByStore(actor, storeA.ID, defaultPage())
	assert.ErrorIs(t, err, ErrForbidden)

	all, err := f.settle.List(defaultPage())
	require.NoError(t, err)
	assert.EqualValues(t, 1, all.Total)
}
