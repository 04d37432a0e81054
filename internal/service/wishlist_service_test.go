package service

import (
	"testing"

	"go-marketplace-api/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWishlistAddIsIdempotent(t *testing.T) {
	f := newFixture(t)
	wishlist := NewWishlistService(repository.NewWishlistRepo(f.db), repository.NewProductRepo(f.db), f.pricer)
	seller, _ := f.user("seller")
	_, buyer := f.user("buyer")
	v := f.variation(f.store(seller, "10"), "25", 3)

	first, err := wishlist.Add(buyer, &WishlistRequest{ProductID: v.ProductID})
	require.NoError(t, err)
	second, err := wishlist.Add(buyer, &WishlistRequest{ProductID: v.ProductID})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	items, err := wishlist.List(buyer)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.NotNil(t, items[0].Product)
	require.NotNil(t, items[0].Product.Variations[0].EffectivePrice)
	assertMoney(t, "25", *items[0].Product.Variations[0].EffectivePrice)

	_, err = wishlist.Add(buyer, &WishlistRequest{ProductID: uuid.New()})
	assert.ErrorIs(t, err, ErrProductNotFound)

	require.NoError(t, wishlist.Remove(buyer, v.ProductID))
	assert.ErrorIs(t, wishlist.Remove(buyer, v.ProductID), ErrWishlistItemNotFound)
}

func TestAddressDefaultMovesBetweenAddresses(t *testing.T) {
	f := newFixture(t)
	addresses := NewAddressService(repository.NewAddressRepo(f.db))
	_, owner := f.user("owner")
	_, other := f.user("other")

	req := AddressRequest{Recipient: "Owner", Phone: "0801", Line1: "2 Broad Street", City: "Lagos", Country: "NG"}
	home, err := addresses.Create(owner, &req)
	require.NoError(t, err)
	assert.True(t, home.IsDefault)

	req.Label = "office"
	req.IsDefault = true
	office, err := addresses.Create(owner, &req)
	require.NoError(t, err)

	list, err := addresses.List(owner)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, office.ID, list[0].ID)
	assert.False(t, list[1].IsDefault)

	// Unsetting the flag on the default address keeps it the default.
	req.IsDefault = false
	updated, err := addresses.Update(owner, office.ID, &req)
	require.NoError(t, err)
	assert.True(t, updated.IsDefault)

	_, err = addresses.Get(other, home.ID)
	assert.ErrorIs(t, err, ErrAddressNotFound)
	assert.ErrorIs(t, addresses.Delete(other, home.ID), ErrAddressNotFound)
	require.NoError(t, addresses.Delete(owner, home.ID))

	_, err = addresses.Create(owner, &AddressRequest{Recipient: "Owner"})
	assert.Error(t, err)
}
