package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradeSide tells buys from sells.
type TradeSide string

const (
	TradeSideBuy  TradeSide = "buy"
	TradeSideSell TradeSide = "sell"
)

// Trade is the receipt of an executed buy or sell.
type Trade struct {
	TradeID    string
	Username   string
	Side       TradeSide
	Symbol     string
	Quantity   int64
	Price      decimal.Decimal
	Total      decimal.Decimal // Price × Quantity
	ExecutedAt time.Time
}
