package checkout

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/printyshop/printy/internal/models"
)

func TestPriceQuote(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		basePrice  int64
		printPrice int64
		quantity   int
		wantTotal  int64
	}{
		{name: "catalog example", basePrice: 299, printPrice: 100, quantity: 2, wantTotal: 798},
		{name: "quantity one", basePrice: 299, printPrice: 100, quantity: 1, wantTotal: 399},
		{name: "large quantity", basePrice: 150, printPrice: 50, quantity: 1000, wantTotal: 200000},
		{name: "free print", basePrice: 500, printPrice: 0, quantity: 3, wantTotal: 1500},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := &models.Product{BasePrice: tt.basePrice, PrintPrice: tt.printPrice}
			q := PriceQuote(p, tt.quantity)
			assert.Equal(t, tt.wantTotal, q.Total)
			assert.Equal(t, tt.basePrice+tt.printPrice, q.UnitPrice)
			assert.Equal(t, tt.quantity, q.Quantity)
		})
	}
}

func TestPriceQuote_RecomputedNotCached(t *testing.T) {
	t.Parallel()

	p := &models.Product{BasePrice: 299, PrintPrice: 100}
	first := PriceQuote(p, 2)
	assert.Equal(t, int64(798), first.Total)

	// A price change must be reflected on the very next read.
	p.PrintPrice = 200
	second := PriceQuote(p, 2)
	assert.Equal(t, int64(998), second.Total)
}

func TestQuote_TotalMajor(t *testing.T) {
	t.Parallel()

	q := PriceQuote(&models.Product{BasePrice: 39800, PrintPrice: 100}, 2)
	assert.Equal(t, "798", q.TotalMajor.String())

	q = PriceQuote(&models.Product{BasePrice: 39805, PrintPrice: 100}, 1)
	assert.Equal(t, "399.05", q.TotalMajor.String())
}

func TestQuote_JSONCarriesMajorTotal(t *testing.T) {
	t.Parallel()

	q := PriceQuote(&models.Product{BasePrice: 299, PrintPrice: 100}, 2)
	data, err := json.Marshal(q)
	require.NoError(t, err)

	var got map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &got))
	assert.JSONEq(t, `798`, string(got["total"]))
	assert.JSONEq(t, `"7.98"`, string(got["total_major"]))
}
