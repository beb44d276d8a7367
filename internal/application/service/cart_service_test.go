package service

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/sangkips/pos-api/internal/testutil"
	"github.com/sangkips/pos-api/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartService_AddItemUsesCatalogPrice(t *testing.T) {
	catalog := testutil.NewCatalog()
	svc := NewCartService(testutil.NewCartStore(t), catalog)
	ctx := context.Background()
	business := uuid.New()
	product := catalog.Add("10.00")

	c, err := svc.AddItem(ctx, business, "till-1", product, 2)
	require.NoError(t, err)

	assert.True(t, dec("20").Equal(c.Totals().SubTotal))
	assert.True(t, dec("23.60").Equal(c.Totals().Total))

	// the stored cart matches what was returned
	stored, err := svc.GetCart(ctx, business, "till-1")
	require.NoError(t, err)
	assert.True(t, c.Totals().Total.Equal(stored.Totals().Total))
}

func TestCartService_PriceCapturedOnFirstAdd(t *testing.T) {
	catalog := testutil.NewCatalog()
	svc := NewCartService(testutil.NewCartStore(t), catalog)
	ctx := context.Background()
	business := uuid.New()
	product := catalog.Add("10")

	_, err := svc.AddItem(ctx, business, "s", product, 1)
	require.NoError(t, err)

	catalog.Set(product, "12")
	c, err := svc.AddItem(ctx, business, "s", product, 1)
	require.NoError(t, err)

	require.Len(t, c.Items(), 1)
	assert.Equal(t, 2, c.Items()[0].Quantity)
	assert.True(t, dec("10").Equal(c.Items()[0].UnitPrice))
}

func TestCartService_AddItemErrors(t *testing.T) {
	catalog := testutil.NewCatalog()
	svc := NewCartService(testutil.NewCartStore(t), catalog)
	ctx := context.Background()
	business := uuid.New()

	_, err := svc.AddItem(ctx, business, "s", uuid.New(), 1)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = svc.AddItem(ctx, business, "s", catalog.Add("1"), 0)
	assert.ErrorIs(t, err, apperror.ErrInvalidQuantity)
	assert.Equal(t, 1, catalog.Calls)

	c, err := svc.GetCart(ctx, business, "s")
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
}

func TestCartService_FailedEditIsNotStored(t *testing.T) {
	catalog := testutil.NewCatalog()
	svc := NewCartService(testutil.NewCartStore(t), catalog)
	ctx := context.Background()
	business := uuid.New()
	product := catalog.Add("5")

	_, err := svc.AddItem(ctx, business, "s", product, 1)
	require.NoError(t, err)
	_, err = svc.SetDiscount(ctx, business, "s", dec("2"))
	require.NoError(t, err)

	_, err = svc.SetDiscount(ctx, business, "s", dec("100"))
	assert.ErrorIs(t, err, apperror.ErrInvalidDiscount)

	_, err = svc.SetQuantity(ctx, business, "s", uuid.New(), 3)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	c, err := svc.GetCart(ctx, business, "s")
	require.NoError(t, err)
	assert.True(t, dec("2").Equal(c.Totals().Discount))
	assert.Equal(t, 1, c.Items()[0].Quantity)
}

func TestCartService_QuantityRemoveAndClear(t *testing.T) {
	catalog := testutil.NewCatalog()
	svc := NewCartService(testutil.NewCartStore(t), catalog)
	ctx := context.Background()
	business := uuid.New()
	a, b := catalog.Add("3"), catalog.Add("4")

	_, err := svc.AddItem(ctx, business, "s", a, 1)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, business, "s", b, 1)
	require.NoError(t, err)

	c, err := svc.SetQuantity(ctx, business, "s", a, 5)
	require.NoError(t, err)
	assert.True(t, dec("19").Equal(c.Totals().SubTotal))

	c, err = svc.SetQuantity(ctx, business, "s", a, 0)
	require.NoError(t, err)
	assert.Len(t, c.Items(), 1)

	c, err = svc.RemoveItem(ctx, business, "s", b)
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())

	_, err = svc.AddItem(ctx, business, "s", a, 1)
	require.NoError(t, err)
	require.NoError(t, svc.Clear(ctx, business, "s"))

	c, err = svc.GetCart(ctx, business, "s")
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
}

func TestCartService_SessionsAreIsolated(t *testing.T) {
	catalog := testutil.NewCatalog()
	svc := NewCartService(testutil.NewCartStore(t), catalog)
	ctx := context.Background()
	business := uuid.New()
	product := catalog.Add("1")

	_, err := svc.AddItem(ctx, business, "till-1", product, 1)
	require.NoError(t, err)

	other, err := svc.GetCart(ctx, business, "till-2")
	require.NoError(t, err)
	assert.True(t, other.IsEmpty())
}

func TestCartService_ConcurrentAddsAreSerialised(t *testing.T) {
	catalog := testutil.NewCatalog()
	svc := NewCartService(testutil.NewCartStore(t), catalog)
	ctx := context.Background()
	business := uuid.New()
	product := catalog.Add("1")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.AddItem(ctx, business, "s", product, 1)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	c, err := svc.GetCart(ctx, business, "s")
	require.NoError(t, err)
	assert.Equal(t, 20, c.TotalQuantity())
}
