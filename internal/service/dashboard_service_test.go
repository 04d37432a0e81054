package service

import (
	"testing"

	"go-marketplace-api/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardCountsPaidOrders(t *testing.T) {
	f := newFixture(t)
	dashboard := NewDashboardService(repository.NewReportRepo(f.db))

	stats, err := dashboard.GetDashboardStats()
	require.NoError(t, err)
	assert.EqualValues(t, 0, stats.TotalOrders)
	assertMoney(t, "0", stats.PaidRevenue)

	buyer, actor, _, _, _, _ := twoStoreCart(f)
	f.fund(buyer, "1000")
	order, err := f.orders.Checkout(actor, &CheckoutRequest{AddressID: f.address(buyer).ID, PaymentMethod: "wallet"})
	require.NoError(t, err)
	_, err = f.withdraws.Request(actor, &WithdrawalRequest{
		Amount: dec("10"), BankName: "First Bank", AccountNumber: "0123456789", AccountName: "Buyer",
	})
	require.NoError(t, err)

	stats, err = dashboard.GetDashboardStats()
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.TotalOrders)
	assert.EqualValues(t, 2, stats.TotalProducts)
	assert.EqualValues(t, 1, stats.PendingWithdrawals)
	assertMoney(t, order.Total.String(), stats.PaidRevenue)

	sales, err := dashboard.GetSales(0)
	require.NoError(t, err)
	require.Len(t, sales, 1)
	assert.EqualValues(t, 1, sales[0].Orders)
	assertMoney(t, order.Total.String(), sales[0].Revenue)
	assert.Equal(t, now().Format("2006-01-02"), sales[0].Date)
}
