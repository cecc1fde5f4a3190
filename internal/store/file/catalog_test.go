package file

import (
	"context"
	"testing"

	"tienda/internal/domain/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCatalog(t *testing.T) *CatalogStore {
	t.Helper()
	s, err := NewCatalogStore(t.TempDir())
	require.NoError(t, err)
	return s
}

func seedProduct(t *testing.T, s *CatalogStore, title string, price int64, stock int) *catalog.Product {
	t.Helper()
	p := &catalog.Product{
		Title:      title,
		Code:       "code-" + title,
		PriceCents: price,
		Stock:      stock,
		Category:   "general",
		Status:     true,
	}
	require.NoError(t, s.Create(context.Background(), p))
	return p
}

func TestCatalogCreateAssignsSequentialIDs(t *testing.T) {
	s := newTestCatalog(t)

	a := seedProduct(t, s, "camiseta", 1000, 5)
	b := seedProduct(t, s, "gorra", 500, 3)

	assert.Equal(t, int64(1), a.ID)
	assert.Equal(t, int64(2), b.ID)
}

func TestCatalogDuplicateCode(t *testing.T) {
	s := newTestCatalog(t)
	seedProduct(t, s, "camiseta", 1000, 5)

	err := s.Create(context.Background(), &catalog.Product{
		Title: "otra", Code: "code-camiseta", PriceCents: 1, Stock: 1,
	})
	assert.ErrorIs(t, err, catalog.ErrDuplicateCode)
}

func TestDecrementStock(t *testing.T) {
	s := newTestCatalog(t)
	ctx := context.Background()
	p := seedProduct(t, s, "camiseta", 1000, 5)

	require.NoError(t, s.DecrementStock(ctx, p.ID, 3))

	got, err := s.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Stock)

	assert.ErrorIs(t, s.DecrementStock(ctx, p.ID, 3), catalog.ErrInsufficientStock)
	assert.ErrorIs(t, s.DecrementStock(ctx, 999, 1), catalog.ErrNotFound)
}

func TestCatalogListFilters(t *testing.T) {
	s := newTestCatalog(t)
	ctx := context.Background()

	seedProduct(t, s, "camiseta", 1000, 5)
	gone := seedProduct(t, s, "agotado", 700, 0)
	cheap := seedProduct(t, s, "sticker", 100, 50)

	all, err := s.List(ctx, catalog.Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	avail, err := s.List(ctx, catalog.Filter{AvailableOnly: true})
	require.NoError(t, err)
	require.Len(t, avail, 2)
	for _, p := range avail {
		assert.NotEqual(t, gone.ID, p.ID)
	}

	sorted, err := s.List(ctx, catalog.Filter{SortByPrice: "asc", Limit: 1})
	require.NoError(t, err)
	require.Len(t, sorted, 1)
	assert.Equal(t, cheap.ID, sorted[0].ID)
}

func TestCatalogUpdatePartial(t *testing.T) {
	s := newTestCatalog(t)
	ctx := context.Background()
	p := seedProduct(t, s, "camiseta", 1000, 5)

	newPrice := int64(1200)
	got, err := s.Update(ctx, p.ID, catalog.UpdateFields{PriceCents: &newPrice})
	require.NoError(t, err)

	assert.Equal(t, int64(1200), got.PriceCents)
	assert.Equal(t, p.Title, got.Title)
	assert.Equal(t, p.Stock, got.Stock)
}

func TestCatalogDelete(t *testing.T) {
	s := newTestCatalog(t)
	ctx := context.Background()
	p := seedProduct(t, s, "camiseta", 1000, 5)

	require.NoError(t, s.Delete(ctx, p.ID))

	_, err := s.GetByID(ctx, p.ID)
	assert.ErrorIs(t, err, catalog.ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, p.ID), catalog.ErrNotFound)
}
