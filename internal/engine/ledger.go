package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/efreitasn/papertrade/internal/domain"
	"github.com/efreitasn/papertrade/internal/session"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountRepository loads and persists account records.
type AccountRepository interface {
	Load(username string) (*domain.Account, error)
	Save(a *domain.Account) error
}

// Quoter supplies current prices.
type Quoter interface {
	Quote(ctx context.Context, symbol string) (domain.PriceQuote, error)
}

// BuyRequest asks to buy Quantity shares of Symbol. When Price is nil the
// current quote is used.
type BuyRequest struct {
	Symbol   string
	Quantity int64
	Price    *decimal.Decimal
}

// SellRequest asks to sell Quantity held shares of Symbol at the current
// quote.
type SellRequest struct {
	Symbol   string
	Quantity int64
}

// Execution is the outcome of a successful buy or sell.
type Execution struct {
	Account *domain.Account // snapshot after the trade was persisted
	Trade   *domain.Trade
}

// Ledger applies buys and sells to accounts. Operations on the same
// account are serialised; each one validates before mutating and saves
// the new record before returning it, so a rejected or failed operation
// leaves the stored account untouched.
type Ledger struct {
	accounts AccountRepository
	quoter   Quoter
	now      func() time.Time

	mu    sync.Mutex
	locks map[string]*accountLock // username → lock, present only while held or awaited
}

// accountLock serialises operations on one account. refs counts holders
// and waiters so the entry can be dropped once nobody needs it.
type accountLock struct {
	mu   sync.Mutex
	refs int
}

// NewLedger creates a Ledger over the given account repository and quoter.
func NewLedger(accounts AccountRepository, quoter Quoter) *Ledger {
	return &Ledger{
		accounts: accounts,
		quoter:   quoter,
		now:      time.Now,
		locks:    make(map[string]*accountLock),
	}
}

// Buy debits price × quantity from the session's account and adds the
// shares to its position, blending the average cost:
//
//	newAvg = (oldQty×oldAvg + qty×price) / (oldQty + qty)
func (l *Ledger) Buy(ctx context.Context, sess *session.Session, req BuyRequest) (*Execution, error) {
	if sess == nil {
		return nil, domain.ErrSessionNotFound
	}
	symbol, err := domain.ValidateSymbol(req.Symbol)
	if err != nil {
		return nil, err
	}
	if req.Quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	if req.Price != nil {
		if !req.Price.IsPositive() {
			return nil, &domain.ValidationError{Message: "price must be > 0"}
		}
		if err := domain.ValidateAmount(*req.Price); err != nil {
			return nil, &domain.ValidationError{Message: "price: " + err.Error()}
		}
	}

	unlock := l.lock(sess.Username)
	defer unlock()

	account, err := l.accounts.Load(sess.Username)
	if err != nil {
		return nil, err
	}

	price, err := l.price(ctx, sess, symbol, req.Price)
	if err != nil {
		return nil, err
	}

	qty := decimal.NewFromInt(req.Quantity)
	totalCost := price.Mul(qty)
	if totalCost.GreaterThan(account.Balance) {
		return nil, domain.ErrInsufficientFunds
	}

	next := account.Clone()
	if pos, ok := next.Portfolio[symbol]; ok {
		newQty := pos.Quantity + req.Quantity
		pos.AverageCost = pos.CostBasis().Add(totalCost).Div(decimal.NewFromInt(newQty))
		pos.Quantity = newQty
	} else {
		next.Portfolio[symbol] = &domain.Position{
			Quantity:    req.Quantity,
			AverageCost: price,
		}
	}
	next.Balance = next.Balance.Sub(totalCost)

	return l.commit(next, domain.TradeSideBuy, symbol, req.Quantity, price, totalCost)
}

// Sell credits current price × quantity to the session's account and
// reduces the position. Selling the whole position removes it. A partial
// sell leaves the average cost of the remaining shares unchanged.
func (l *Ledger) Sell(ctx context.Context, sess *session.Session, req SellRequest) (*Execution, error) {
	if sess == nil {
		return nil, domain.ErrSessionNotFound
	}
	symbol, err := domain.ValidateSymbol(req.Symbol)
	if err != nil {
		return nil, err
	}
	if req.Quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}

	unlock := l.lock(sess.Username)
	defer unlock()

	account, err := l.accounts.Load(sess.Username)
	if err != nil {
		return nil, err
	}

	pos, ok := account.Portfolio[symbol]
	if !ok {
		return nil, domain.ErrNoPosition
	}
	if req.Quantity > pos.Quantity {
		return nil, domain.ErrOverSell
	}

	price, err := l.price(ctx, sess, symbol, nil)
	if err != nil {
		return nil, err
	}
	saleValue := price.Mul(decimal.NewFromInt(req.Quantity))

	next := account.Clone()
	if req.Quantity == pos.Quantity {
		delete(next.Portfolio, symbol)
	} else {
		next.Portfolio[symbol].Quantity -= req.Quantity
	}
	next.Balance = next.Balance.Add(saleValue)

	return l.commit(next, domain.TradeSideSell, symbol, req.Quantity, price, saleValue)
}

// price returns the override when given, otherwise a fresh quote, which
// is also remembered in the session.
func (l *Ledger) price(ctx context.Context, sess *session.Session, symbol string, override *decimal.Decimal) (decimal.Decimal, error) {
	if override != nil {
		return *override, nil
	}
	q, err := l.quoter.Quote(ctx, symbol)
	if err != nil {
		return decimal.Zero, fmt.Errorf("quote %s: %w", symbol, err)
	}
	sess.Remember(q)
	return q.Price, nil
}

// commit persists next and builds the trade receipt. Must be called with
// the account lock held.
func (l *Ledger) commit(next *domain.Account, side domain.TradeSide, symbol string, qty int64, price, total decimal.Decimal) (*Execution, error) {
	now := l.now()
	next.UpdatedAt = now

	if err := l.accounts.Save(next); err != nil {
		return nil, fmt.Errorf("save account: %w", err)
	}

	return &Execution{
		Account: next,
		Trade: &domain.Trade{
			TradeID:    uuid.NewString(),
			Username:   next.Username,
			Side:       side,
			Symbol:     symbol,
			Quantity:   qty,
			Price:      price,
			Total:      total,
			ExecutedAt: now,
		},
	}, nil
}

// lock acquires the per-account lock and returns its release. The last
// release removes the account's entry.
func (l *Ledger) lock(username string) func() {
	l.mu.Lock()
	al, ok := l.locks[username]
	if !ok {
		al = &accountLock{}
		l.locks[username] = al
	}
	al.refs++
	l.mu.Unlock()

	al.mu.Lock()
	return func() {
		al.mu.Unlock()

		l.mu.Lock()
		al.refs--
		if al.refs == 0 {
			delete(l.locks, username)
		}
		l.mu.Unlock()
	}
}
