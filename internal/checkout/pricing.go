package checkout

import (
	"github.com/shopspring/decimal"

	"github.com/printyshop/printy/internal/models"
)

// Quote is a derived view of the current selection, recomputed on every read.
// Amounts are minor currency units; TotalMajor is the display total in major
// units (rupees), so clients never divide paise themselves.
type Quote struct {
	UnitPrice  int64           `json:"unit_price"`
	Quantity   int             `json:"quantity"`
	Total      int64           `json:"total"`
	TotalMajor decimal.Decimal `json:"total_major"`
}

func PriceQuote(p *models.Product, quantity int) Quote {
	unit := p.BasePrice + p.PrintPrice
	total := unit * int64(quantity)
	return Quote{
		UnitPrice:  unit,
		Quantity:   quantity,
		Total:      total,
		TotalMajor: decimal.New(total, -2),
	}
}
