package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedPrices(prices map[int64]int64) PriceResolver {
	return func(id int64) (int64, bool) {
		p, ok := prices[id]
		return p, ok
	}
}

func TestAddLineMergesInsteadOfDuplicating(t *testing.T) {
	c := New("c1")

	c.AddLine(7, 1)
	c.AddLine(7, 2)
	c.AddLine(9, 1)

	require.Len(t, c.Lines, 2)
	assert.Equal(t, 3, c.Quantity(7))
	assert.Equal(t, 1, c.Quantity(9))
}

func TestAddLineIgnoresNonPositiveQuantity(t *testing.T) {
	c := New("c1")

	c.AddLine(7, 0)
	c.AddLine(7, -3)

	assert.Empty(t, c.Lines)
}

func TestRemoveLineAbsentIsNoop(t *testing.T) {
	c := New("c1")
	c.AddLine(7, 2)

	c.RemoveLine(99)

	require.Len(t, c.Lines, 1)
	assert.Equal(t, 2, c.Quantity(7))
}

func TestSetQuantityZeroRemovesLine(t *testing.T) {
	c := New("c1")
	c.AddLine(7, 2)

	c.SetQuantity(7, 0)

	assert.Empty(t, c.Lines)
	assert.Equal(t, 0, c.Quantity(7))
}

func TestSetQuantityCreatesLineWhenAbsent(t *testing.T) {
	c := New("c1")

	c.SetQuantity(7, 4)

	assert.Equal(t, 4, c.Quantity(7))
}

func TestRecomputeTotal(t *testing.T) {
	c := New("c1")
	c.AddLine(7, 3)
	c.AddLine(9, 1)

	unresolved := c.RecomputeTotal(fixedPrices(map[int64]int64{7: 1000, 9: 250}))

	assert.Empty(t, unresolved)
	assert.Equal(t, int64(3*1000+250), c.TotalCents)
}

func TestRecomputeTotalIsIdempotent(t *testing.T) {
	c := New("c1")
	c.AddLine(7, 3)
	resolve := fixedPrices(map[int64]int64{7: 1000})

	c.RecomputeTotal(resolve)
	first := c.TotalCents
	c.RecomputeTotal(resolve)

	assert.Equal(t, first, c.TotalCents)
}

func TestRecomputeTotalKeepsUnresolvableLines(t *testing.T) {
	// Product 9 deleted while sitting in the cart with qty 2 at price 1000:
	// the line stays, its contribution drops to 0.
	c := New("c1")
	c.AddLine(7, 1)
	c.AddLine(9, 2)

	unresolved := c.RecomputeTotal(fixedPrices(map[int64]int64{7: 500}))

	assert.Equal(t, []int64{9}, unresolved)
	assert.Equal(t, int64(500), c.TotalCents)
	require.Len(t, c.Lines, 2)
	assert.Equal(t, 2, c.Quantity(9))
}

func TestClear(t *testing.T) {
	c := New("c1")
	c.AddLine(7, 3)
	c.RecomputeTotal(fixedPrices(map[int64]int64{7: 1000}))

	c.Clear()

	assert.Empty(t, c.Lines)
	assert.Zero(t, c.TotalCents)
}

func TestCloneDoesNotAlias(t *testing.T) {
	c := New("c1")
	c.AddLine(7, 1)

	cp := c.Clone()
	cp.AddLine(7, 5)

	assert.Equal(t, 1, c.Quantity(7))
	assert.Equal(t, 6, cp.Quantity(7))
}
