package domain

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Position is a held quantity of one symbol and its weighted-average
// acquisition cost. A stored position always has Quantity > 0.
type Position struct {
	Quantity    int64           `json:"quantity"`
	AverageCost decimal.Decimal `json:"averagePrice"`
}

// CostBasis returns Quantity × AverageCost.
func (p *Position) CostBasis() decimal.Decimal {
	return p.AverageCost.Mul(decimal.NewFromInt(p.Quantity))
}

// Account is a single user's record: credentials, cash and holdings.
type Account struct {
	Username string `json:"username"`
	// Password is kept as entered. The simulator makes no security claims.
	Password  string               `json:"password"`
	Balance   decimal.Decimal      `json:"balance"`
	Portfolio map[string]*Position `json:"portfolio"` // symbol → position
	CreatedAt time.Time            `json:"createdAt"`
	UpdatedAt time.Time            `json:"updatedAt"`
}

// HeldQuantity returns the quantity held for symbol, or 0 if there is no
// position.
func (a *Account) HeldQuantity(symbol string) int64 {
	p, ok := a.Portfolio[symbol]
	if !ok {
		return 0
	}
	return p.Quantity
}

// Symbols returns the held symbols in lexical order.
func (a *Account) Symbols() []string {
	symbols := make([]string, 0, len(a.Portfolio))
	for s := range a.Portfolio {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)
	return symbols
}

// Clone returns a deep copy. Ledger operations mutate a clone and only
// publish it once it has been persisted.
func (a *Account) Clone() *Account {
	c := *a
	c.Portfolio = make(map[string]*Position, len(a.Portfolio))
	for s, p := range a.Portfolio {
		pos := *p
		c.Portfolio[s] = &pos
	}
	return &c
}
