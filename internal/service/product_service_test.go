package service

import (
	"testing"

	"go-marketplace-api/internal/model"
	"go-marketplace-api/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type productFixture struct {
	*fixture
	stores   StoreService
	products ProductService
}

func newProductFixture(t *testing.T) *productFixture {
	f := newFixture(t)
	stores := NewStoreService(repository.NewStoreRepo(f.db), dec("10"))
	products := NewProductService(repository.NewProductRepo(f.db), repository.NewVariationRepo(f.db),
		repository.NewCategoryRepo(f.db), repository.NewTagRepo(f.db), stores, f.pricer)
	return &productFixture{fixture: f, stores: stores, products: products}
}

func (f *productFixture) vendorStore(name string) (Actor, *model.Store) {
	f.t.Helper()
	_, actor := f.user(name)
	store, err := f.stores.Create(actor, &CreateStoreRequest{Name: name + " Goods"})
	require.NoError(f.t, err)
	return actor, store
}

func variationReq(sku, price string, stock int) VariationRequest {
	return VariationRequest{SKU: sku, Name: sku, Price: dec(price), Stock: stock}
}

func TestStoreCreateAndAdminOnlyFields(t *testing.T) {
	f := newProductFixture(t)
	owner, store := f.vendorStore("Ada")
	_, stranger := f.user("stranger")
	admin := Actor{UserID: stranger.UserID, Privileges: []string{model.PrivStoreManageAll}}

	assert.Equal(t, "ada-goods", store.Slug)
	assert.True(t, store.IsActive)
	assertMoney(t, "10", store.CommissionRate)

	rate := dec("7.5")
	_, err := f.stores.Update(owner, store.ID, &UpdateStoreRequest{CommissionRate: &rate})
	assert.ErrorIs(t, err, ErrStoreAdminOnly)

	name := "Ada Outlet"
	_, err = f.stores.Update(stranger, store.ID, &UpdateStoreRequest{Name: &name})
	assert.ErrorIs(t, err, ErrForbidden)

	inactive := false
	updated, err := f.stores.Update(admin, store.ID, &UpdateStoreRequest{CommissionRate: &rate, IsActive: &inactive})
	require.NoError(t, err)
	assertMoney(t, "7.5", updated.CommissionRate)
	assert.False(t, updated.IsActive)

	_, err = f.stores.Get(store.ID, nil)
	assert.ErrorIs(t, err, ErrStoreNotFound)
	_, err = f.stores.Get(store.ID, &owner)
	require.NoError(t, err)

	_, err = f.products.Create(owner, &CreateProductRequest{StoreID: store.ID, Name: "Lamp"})
	assert.ErrorIs(t, err, ErrStoreInactive)
}

func TestProductCreateValidatesVariations(t *testing.T) {
	f := newProductFixture(t)
	owner, store := f.vendorStore("Bola")
	_, stranger := f.user("stranger")

	product, err := f.products.Create(owner, &CreateProductRequest{
		StoreID:    store.ID,
		Name:       "Running Shoe",
		Variations: []VariationRequest{variationReq("RS-42", "80", 5), variationReq("RS-43", "60", 5)},
	})
	require.NoError(t, err)
	assert.Equal(t, "running-shoe", product.Slug)
	assert.True(t, product.IsPublished)
	require.Len(t, product.Variations, 2)
	assert.Equal(t, "RS-43", product.Variations[0].SKU)

	again, err := f.products.Create(owner, &CreateProductRequest{StoreID: store.ID, Name: "Running Shoe"})
	require.NoError(t, err)
	assert.Equal(t, "running-shoe-2", again.Slug)

	_, err = f.products.Create(owner, &CreateProductRequest{
		StoreID:    store.ID,
		Name:       "Twins",
		Variations: []VariationRequest{variationReq("DUP", "5", 1), variationReq("DUP", "6", 1)},
	})
	assert.ErrorIs(t, err, ErrSKUExists)

	_, err = f.products.AddVariation(owner, product.ID, &VariationRequest{SKU: "RS-42", Name: "Copy", Price: dec("1")})
	assert.ErrorIs(t, err, ErrSKUExists)

	discount := dec("80")
	bad := variationReq("RS-44", "80", 1)
	bad.DiscountPrice = &discount
	_, err = f.products.AddVariation(owner, product.ID, &bad)
	assert.ErrorIs(t, err, ErrDiscountNotLower)

	_, err = f.products.AddVariation(stranger, product.ID, &VariationRequest{SKU: "X-1", Name: "X", Price: dec("1")})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.products.Create(stranger, &CreateProductRequest{StoreID: store.ID, Name: "Hijack"})
	assert.ErrorIs(t, err, ErrForbidden)

	missing := uuid.New()
	_, err = f.products.Create(owner, &CreateProductRequest{StoreID: store.ID, Name: "Lost", CategoryID: &missing})
	assert.ErrorIs(t, err, ErrUnknownCategory)
}

func TestDraftProductsAreHiddenFromShoppers(t *testing.T) {
	f := newProductFixture(t)
	owner, store := f.vendorStore("Chidi")
	_, shopper := f.user("shopper")
	draft := false

	hidden, err := f.products.Create(owner, &CreateProductRequest{
		StoreID: store.ID, Name: "Secret Kettle", IsPublished: &draft,
		Variations: []VariationRequest{variationReq("SK-1", "30", 2)},
	})
	require.NoError(t, err)
	assert.False(t, hidden.IsPublished)

	_, err = f.products.Create(owner, &CreateProductRequest{
		StoreID: store.ID, Name: "Steel Kettle",
		Variations: []VariationRequest{variationReq("SK-2", "45", 2)},
	})
	require.NoError(t, err)

	_, err = f.products.Get(hidden.Slug, nil)
	assert.ErrorIs(t, err, ErrProductNotFound)
	_, err = f.products.Get(hidden.ID.String(), &shopper)
	assert.ErrorIs(t, err, ErrProductNotFound)
	got, err := f.products.Get(hidden.Slug, &owner)
	require.NoError(t, err)
	assert.Equal(t, hidden.ID, got.ID)

	filter := repository.ProductFilter{StoreID: &store.ID, IncludeUnpublish: true}
	public, err := f.products.List(filter, defaultPage(), &shopper)
	require.NoError(t, err)
	assert.EqualValues(t, 1, public.Total)

	mine, err := f.products.List(filter, defaultPage(), &owner)
	require.NoError(t, err)
	assert.EqualValues(t, 2, mine.Total)

	search, err := f.products.List(repository.ProductFilter{Query: "KETTLE"}, defaultPage(), nil)
	require.NoError(t, err)
	require.Len(t, search.Items, 1)
	assert.Equal(t, "Steel Kettle", search.Items[0].Name)
}

func TestRelatedProductsAreSymmetric(t *testing.T) {
	f := newProductFixture(t)
	owner, store := f.vendorStore("Dayo")
	_, stranger := f.user("stranger")

	create := func(name string) *model.Product {
		p, err := f.products.Create(owner, &CreateProductRequest{StoreID: store.ID, Name: name})
		require.NoError(t, err)
		return p
	}
	phone, cover, charger := create("Phone"), create("Cover"), create("Charger")

	related, err := f.products.AddRelated(owner, phone.ID, []uuid.UUID{cover.ID, charger.ID, cover.ID})
	require.NoError(t, err)
	assert.Len(t, related, 2)

	back, err := f.products.ListRelated(cover.ID)
	require.NoError(t, err)
	require.Len(t, back, 1)
	assert.Equal(t, phone.ID, back[0].ID)

	_, err = f.products.AddRelated(owner, phone.ID, []uuid.UUID{phone.ID})
	assert.ErrorIs(t, err, ErrSelfRelated)
	_, err = f.products.AddRelated(owner, phone.ID, []uuid.UUID{uuid.New()})
	assert.ErrorIs(t, err, ErrProductNotFound)
	_, err = f.products.AddRelated(stranger, phone.ID, []uuid.UUID{cover.ID})
	assert.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, f.products.RemoveRelated(owner, phone.ID, cover.ID))
	back, err = f.products.ListRelated(cover.ID)
	require.NoError(t, err)
	assert.Empty(t, back)

	require.NoError(t, f.products.Delete(owner, charger.ID))
	left, err := f.products.ListRelated(phone.ID)
	require.NoError(t, err)
	assert.Empty(t, left)
}
