package cart

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/sangkips/pos-api/pkg/apperror"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), append([]interface{}{fmt.Sprintf("want %s, got %s", want, got)}, msgAndArgs...)...)
}

func TestNew_IsEmpty(t *testing.T) {
	c := New()

	assert.True(t, c.IsEmpty())
	totals := c.Totals()
	assertDecimal(t, "0", totals.SubTotal)
	assertDecimal(t, "0", totals.Tax)
	assertDecimal(t, "0", totals.Discount)
	assertDecimal(t, "0", totals.Total)
}

func TestAddItem_ComputesTotals(t *testing.T) {
	c := New()

	totals, err := c.AddItem("A", 2, dec("10.00"))
	require.NoError(t, err)

	assertDecimal(t, "20", totals.SubTotal)
	assertDecimal(t, "3.6", totals.Tax)
	assertDecimal(t, "23.6", totals.Total)
	assert.Equal(t, 2, c.TotalQuantity())
}

func TestAddItem_SameProductMergesAndKeepsFirstPrice(t *testing.T) {
	c := New()

	_, err := c.AddItem("A", 2, dec("10"))
	require.NoError(t, err)
	totals, err := c.AddItem("A", 3, dec("99"))
	require.NoError(t, err)

	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
	assertDecimal(t, "10", items[0].UnitPrice)
	assertDecimal(t, "50", totals.SubTotal)
}

func TestAddItem_KeepsInsertionOrder(t *testing.T) {
	c := New()
	for _, id := range []string{"C", "A", "B"} {
		_, err := c.AddItem(id, 1, dec("1"))
		require.NoError(t, err)
	}

	items := c.Items()
	require.Len(t, items, 3)
	assert.Equal(t, "C", items[0].ProductID)
	assert.Equal(t, "A", items[1].ProductID)
	assert.Equal(t, "B", items[2].ProductID)
}

func TestAddItem_Validation(t *testing.T) {
	tests := []struct {
		name     string
		product  string
		quantity int
		price    string
		wantErr  error
	}{
		{"zero quantity", "A", 0, "1", apperror.ErrInvalidQuantity},
		{"negative quantity", "A", -2, "1", apperror.ErrInvalidQuantity},
		{"negative price", "A", 1, "-0.01", apperror.ErrInvalidAmount},
		{"fraction of a cent", "A", 1, "1.005", apperror.ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New()
			_, err := c.AddItem("X", 1, dec("5"))
			require.NoError(t, err)
			before := c.Totals()

			_, err = c.AddItem(tt.product, tt.quantity, dec(tt.price))

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Len(t, c.Items(), 1)
			assert.True(t, before.Total.Equal(c.Totals().Total))
		})
	}
}

func TestAddItem_EmptyProductID(t *testing.T) {
	c := New()

	_, err := c.AddItem("  ", 1, dec("1"))

	require.Error(t, err)
	assert.True(t, c.IsEmpty())
}

func TestAddItem_FreeItemAllowed(t *testing.T) {
	c := New()

	totals, err := c.AddItem("GIFT", 1, decimal.Zero)

	require.NoError(t, err)
	assert.False(t, c.IsEmpty())
	assertDecimal(t, "0", totals.Total)
}

func TestTax_RoundsHalfUp(t *testing.T) {
	c := New()

	// 0.25 × 0.18 = 0.045
	totals, err := c.AddItem("A", 1, dec("0.25"))
	require.NoError(t, err)

	assertDecimal(t, "0.05", totals.Tax)
	assertDecimal(t, "0.30", totals.Total)
}

func TestRemoveItem_IsIdempotent(t *testing.T) {
	c := New()
	_, err := c.AddItem("A", 1, dec("10"))
	require.NoError(t, err)
	_, err = c.AddItem("B", 1, dec("5"))
	require.NoError(t, err)

	c.RemoveItem("A")
	totals := c.RemoveItem("A")

	assert.Len(t, c.Items(), 1)
	assertDecimal(t, "5", totals.SubTotal)

	totals = c.RemoveItem("missing")
	assertDecimal(t, "5", totals.SubTotal)
}

func TestSetQuantity_ZeroEqualsRemove(t *testing.T) {
	build := func() *Cart {
		c := New()
		_, _ = c.AddItem("A", 2, dec("3.50"))
		_, _ = c.AddItem("B", 1, dec("7"))
		_, _ = c.SetDiscount(dec("1"))
		return c
	}

	removed := build()
	removed.RemoveItem("A")

	zeroed := build()
	_, err := zeroed.SetQuantity("A", 0)
	require.NoError(t, err)

	require.Len(t, zeroed.Items(), len(removed.Items()))
	for i, it := range removed.Items() {
		assert.Equal(t, it.ProductID, zeroed.Items()[i].ProductID)
		assert.Equal(t, it.Quantity, zeroed.Items()[i].Quantity)
	}
	assert.True(t, removed.Totals().Total.Equal(zeroed.Totals().Total))
	assert.True(t, removed.Totals().Discount.Equal(zeroed.Totals().Discount))
}

func TestSetQuantity_Errors(t *testing.T) {
	c := New()
	_, err := c.AddItem("A", 1, dec("10"))
	require.NoError(t, err)

	_, err = c.SetQuantity("A", -1)
	assert.ErrorIs(t, err, apperror.ErrInvalidQuantity)

	_, err = c.SetQuantity("missing", 3)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = c.SetQuantity("missing", 0)
	assert.NoError(t, err)

	assert.Equal(t, 1, c.Items()[0].Quantity)
}

func TestSetQuantity_Replaces(t *testing.T) {
	c := New()
	_, err := c.AddItem("A", 1, dec("10"))
	require.NoError(t, err)

	totals, err := c.SetQuantity("A", 4)
	require.NoError(t, err)

	assertDecimal(t, "40", totals.SubTotal)
	assertDecimal(t, "7.2", totals.Tax)
}

func TestSetDiscount(t *testing.T) {
	c := New()
	_, err := c.AddItem("A", 2, dec("10")) // payable 23.60
	require.NoError(t, err)

	_, err = c.SetDiscount(dec("-1"))
	assert.ErrorIs(t, err, apperror.ErrInvalidDiscount)

	_, err = c.SetDiscount(dec("23.61"))
	assert.ErrorIs(t, err, apperror.ErrInvalidDiscount)
	assertDecimal(t, "0", c.Totals().Discount)

	_, err = c.SetDiscount(dec("0.005"))
	assert.ErrorIs(t, err, apperror.ErrInvalidDiscount)
	assertDecimal(t, "23.6", c.Totals().Total)

	totals, err := c.SetDiscount(dec("3.60"))
	require.NoError(t, err)
	assertDecimal(t, "20", totals.Total)

	// trailing zeros are still whole cents
	totals, err = c.SetDiscount(dec("1.500"))
	require.NoError(t, err)
	assertDecimal(t, "22.1", totals.Total)

	totals, err = c.SetDiscount(dec("23.60"))
	require.NoError(t, err)
	assertDecimal(t, "0", totals.Total)
}

func TestDiscount_ClampedWhenCartShrinks(t *testing.T) {
	c := New()
	_, err := c.AddItem("A", 2, dec("10"))
	require.NoError(t, err)
	_, err = c.SetDiscount(dec("20"))
	require.NoError(t, err)

	totals, err := c.SetQuantity("A", 1)
	require.NoError(t, err)

	assertDecimal(t, "11.8", totals.Discount)
	assertDecimal(t, "0", totals.Total)

	totals = c.RemoveItem("A")
	assertDecimal(t, "0", totals.Discount)
}

func TestClear(t *testing.T) {
	c := New()
	_, _ = c.AddItem("A", 2, dec("10"))
	_, _ = c.SetDiscount(dec("5"))

	c.Clear()

	assert.True(t, c.IsEmpty())
	assertDecimal(t, "0", c.Totals().Discount)
	assertDecimal(t, "0", c.Totals().Total)
}

func TestItems_ReturnsCopy(t *testing.T) {
	c := New()
	_, _ = c.AddItem("A", 2, dec("10"))

	items := c.Items()
	items[0].Quantity = 100

	assert.Equal(t, 2, c.Items()[0].Quantity)
}

func TestRandomEdits_KeepInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	products := []string{"A", "B", "C", "D", "E"}
	prices := []string{"0.10", "1.99", "3.33", "12.50", "100"}
	c := New()

	for step := 0; step < 2000; step++ {
		i := rng.Intn(len(products))
		switch rng.Intn(5) {
		case 0, 1:
			_, err := c.AddItem(products[i], rng.Intn(5)+1, dec(prices[i]))
			require.NoError(t, err)
		case 2:
			c.RemoveItem(products[i])
		case 3:
			_, err := c.SetQuantity(products[i], rng.Intn(4))
			if err != nil {
				require.True(t, errors.Is(err, apperror.ErrNotFound))
			}
		case 4:
			payable := c.Totals().Payable()
			amount := payable.Mul(decimal.NewFromFloat(rng.Float64())).Round(2)
			if amount.GreaterThan(payable) {
				amount = payable
			}
			_, err := c.SetDiscount(amount)
			require.NoError(t, err)
		}

		expected := decimal.Zero
		for _, it := range c.Items() {
			require.Positive(t, it.Quantity)
			expected = expected.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
		}
		totals := c.Totals()
		require.True(t, expected.Equal(totals.SubTotal), "step %d subtotal", step)
		require.True(t, totals.SubTotal.Mul(TaxRate).Round(2).Equal(totals.Tax), "step %d tax", step)
		require.True(t, totals.SubTotal.Add(totals.Tax).Sub(totals.Discount).Equal(totals.Total), "step %d total", step)
		require.False(t, totals.Discount.GreaterThan(totals.Payable()), "step %d discount", step)
		require.False(t, totals.Discount.IsNegative(), "step %d discount sign", step)
	}
}
