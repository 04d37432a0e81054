package service

import (
	"testing"

	"go-marketplace-api/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCatalog(f *fixture) CatalogService {
	return NewCatalogService(repository.NewCategoryRepo(f.db), repository.NewCollectionRepo(f.db),
		repository.NewTagRepo(f.db), repository.NewProductRepo(f.db))
}

func TestCategorySlugsAndTree(t *testing.T) {
	f := newFixture(t)
	catalog := newCatalog(f)
	_, admin := f.user("admin")

	home, err := catalog.CreateCategory(admin, &CategoryRequest{Name: "Home & Garden"})
	require.NoError(t, err)
	assert.Equal(t, "home-and-garden", home.Slug)

	again, err := catalog.CreateCategory(admin, &CategoryRequest{Name: "Home & Garden"})
	require.NoError(t, err)
	assert.Equal(t, "home-and-garden-2", again.Slug)

	kitchen, err := catalog.CreateCategory(admin, &CategoryRequest{Name: "Kitchen", ParentID: &home.ID})
	require.NoError(t, err)
	knives, err := catalog.CreateCategory(admin, &CategoryRequest{Name: "Knives", ParentID: &kitchen.ID})
	require.NoError(t, err)

	tree, err := catalog.CategoryTree(home.ID)
	require.NoError(t, err)
	require.Len(t, tree, 3)
	assert.Equal(t, home.ID, tree[0].ID)
	assert.Equal(t, knives.ID, tree[2].ID)
	assert.Equal(t, 2, tree[2].Depth)

	_, err = catalog.UpdateCategory(admin, home.ID, &CategoryRequest{Name: home.Name, ParentID: &knives.ID})
	assert.ErrorIs(t, err, ErrCategoryCycle)
	_, err = catalog.UpdateCategory(admin, home.ID, &CategoryRequest{Name: home.Name, ParentID: &home.ID})
	assert.ErrorIs(t, err, ErrCategoryCycle)

	missing := uuid.New()
	_, err = catalog.CreateCategory(admin, &CategoryRequest{Name: "Orphan", ParentID: &missing})
	assert.Error(t, err)

	_, err = catalog.CategoryTree(uuid.New())
	assert.ErrorIs(t, err, ErrCategoryNotFound)

	// Slugs of deleted rows stay reserved.
	require.NoError(t, catalog.DeleteCategory(admin, again.ID))
	third, err := catalog.CreateCategory(admin, &CategoryRequest{Name: "Home & Garden"})
	require.NoError(t, err)
	assert.Equal(t, "home-and-garden-3", third.Slug)
}

func TestTagsAreUniqueByName(t *testing.T) {
	f := newFixture(t)
	catalog := newCatalog(f)
	_, admin := f.user("admin")

	summer, err := catalog.CreateTag(admin, &TagRequest{Name: " Summer "})
	require.NoError(t, err)
	assert.Equal(t, "Summer", summer.Name)
	assert.Equal(t, "summer", summer.Slug)

	_, err = catalog.CreateTag(admin, &TagRequest{Name: "Summer"})
	assert.ErrorIs(t, err, ErrTagExists)

	winter, err := catalog.CreateTag(admin, &TagRequest{Name: "Winter"})
	require.NoError(t, err)
	_, err = catalog.UpdateTag(admin, winter.ID, &TagRequest{Name: "Summer"})
	assert.ErrorIs(t, err, ErrTagExists)

	tags, err := catalog.ListTags()
	require.NoError(t, err)
	assert.Len(t, tags, 2)
}

func TestCollectionProducts(t *testing.T) {
	f := newFixture(t)
	catalog := newCatalog(f)
	_, admin := f.user("admin")
	vendor, _ := f.user("vendor")
	shop := f.store(vendor, "10")
	a := f.variation(shop, "10", 1)
	b := f.variation(shop, "20", 1)

	inactive := false
	collection, err := catalog.CreateCollection(admin, &CollectionRequest{Name: "Staff picks", IsActive: &inactive})
	require.NoError(t, err)
	assert.False(t, collection.IsActive)

	_, err = catalog.AddCollectionProducts(collection.ID, []uuid.UUID{a.ProductID, uuid.New()})
	assert.ErrorIs(t, err, ErrProductNotFound)

	full, err := catalog.AddCollectionProducts(collection.ID, []uuid.UUID{a.ProductID, b.ProductID, a.ProductID})
	require.NoError(t, err)
	assert.Len(t, full.Products, 2)

	require.NoError(t, catalog.RemoveCollectionProduct(collection.ID, a.ProductID))
	got, err := catalog.GetCollection(collection.ID)
	require.NoError(t, err)
	require.Len(t, got.Products, 1)
	assert.Equal(t, b.ProductID, got.Products[0].ID)

	active, err := catalog.ListCollections(true, defaultPage())
	require.NoError(t, err)
	assert.EqualValues(t, 0, active.Total)
	all, err := catalog.ListCollections(false, defaultPage())
	require.NoError(t, err)
	assert.EqualValues(t, 1, all.Total)
}
