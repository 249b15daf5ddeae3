package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceQuote is an instantaneous simulated price reading. PercentChange
// is cosmetic and unrelated to any price history.
type PriceQuote struct {
	Symbol        string
	Price         decimal.Decimal
	PercentChange decimal.Decimal
	QuotedAt      time.Time
}
