package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/efreitasn/papertrade/internal/domain"
	"github.com/efreitasn/papertrade/internal/engine"
	"github.com/efreitasn/papertrade/internal/session"
	"github.com/efreitasn/papertrade/internal/store"
	"github.com/shopspring/decimal"
)

const maxTradesLimit = 100

// Estimate is the expected cost of a buy or value of a sale at the last
// seen price.
type Estimate struct {
	Symbol   string
	Side     domain.TradeSide
	Quantity int64
	Price    decimal.Decimal
	Total    decimal.Decimal
	QuotedAt time.Time
}

// PortfolioRow is one valued position.
type PortfolioRow struct {
	Symbol         string
	Quantity       int64
	AverageCost    decimal.Decimal
	Price          decimal.Decimal
	PercentChange  decimal.Decimal
	MarketValue    decimal.Decimal
	CostBasis      decimal.Decimal
	UnrealizedGain decimal.Decimal
}

// PortfolioView is the account's positions valued at fresh quotes.
type PortfolioView struct {
	Username    string
	Balance     decimal.Decimal
	Rows        []PortfolioRow // sorted by symbol
	MarketValue decimal.Decimal
	TotalValue  decimal.Decimal // balance + market value
	ValuedAt    time.Time
}

// TradingService runs buys and sells through the ledger, records the
// resulting trades, and values portfolios.
type TradingService struct {
	ledger   *engine.Ledger
	oracle   *engine.Oracle
	accounts AccountStore
	trades   *store.TradeStore
	logger   *slog.Logger
	now      func() time.Time
}

// NewTradingService creates a new TradingService with the given dependencies.
func NewTradingService(
	ledger *engine.Ledger,
	oracle *engine.Oracle,
	accounts AccountStore,
	trades *store.TradeStore,
	logger *slog.Logger,
) *TradingService {
	return &TradingService{
		ledger:   ledger,
		oracle:   oracle,
		accounts: accounts,
		trades:   trades,
		logger:   logger,
		now:      time.Now,
	}
}

// Buy executes a buy and records the trade.
func (s *TradingService) Buy(ctx context.Context, sess *session.Session, req engine.BuyRequest) (*engine.Execution, error) {
	exec, err := s.ledger.Buy(ctx, sess, req)
	if err != nil {
		err = accountErr(err)
		s.logRejection(sess, domain.TradeSideBuy, req.Symbol, req.Quantity, err)
		return nil, err
	}
	s.record(exec)
	return exec, nil
}

// Sell executes a sell and records the trade.
func (s *TradingService) Sell(ctx context.Context, sess *session.Session, req engine.SellRequest) (*engine.Execution, error) {
	exec, err := s.ledger.Sell(ctx, sess, req)
	if err != nil {
		err = accountErr(err)
		s.logRejection(sess, domain.TradeSideSell, req.Symbol, req.Quantity, err)
		return nil, err
	}
	s.record(exec)
	return exec, nil
}

func (s *TradingService) record(exec *engine.Execution) {
	s.trades.Append(exec.Trade)
	s.logger.Info("trade executed",
		"trade_id", exec.Trade.TradeID,
		"username", exec.Trade.Username,
		"side", exec.Trade.Side,
		"symbol", exec.Trade.Symbol,
		"quantity", exec.Trade.Quantity,
		"price", exec.Trade.Price.StringFixed(domain.CurrencyPlaces),
		"total", exec.Trade.Total.StringFixed(domain.CurrencyPlaces),
		"balance", exec.Account.Balance.StringFixed(domain.CurrencyPlaces),
	)
}

func (s *TradingService) logRejection(sess *session.Session, side domain.TradeSide, symbol string, qty int64, err error) {
	username := ""
	if sess != nil {
		username = sess.Username
	}
	level, msg := slog.LevelDebug, "trade rejected"
	if !isRejection(err) {
		level, msg = slog.LevelError, "trade failed"
	}
	s.logger.Log(context.Background(), level, msg,
		"username", username,
		"side", side,
		"symbol", symbol,
		"quantity", qty,
		"error", err,
	)
}

// accountErr reports a session whose account no longer exists as
// ErrSessionNotFound.
func accountErr(err error) error {
	if errors.Is(err, domain.ErrAccountNotFound) {
		return domain.ErrSessionNotFound
	}
	return err
}

// isRejection reports whether err is an expected business outcome rather
// than an infrastructure failure.
func isRejection(err error) bool {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve),
		errors.Is(err, domain.ErrInsufficientFunds),
		errors.Is(err, domain.ErrNoPosition),
		errors.Is(err, domain.ErrOverSell),
		errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrInvalidSymbol),
		errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return true
	}
	return false
}

// Estimate prices quantity shares of symbol at the session's last seen
// price, fetching and remembering a quote when none has been seen yet. A
// sell estimate also checks the position can cover the quantity.
func (s *TradingService) Estimate(ctx context.Context, sess *session.Session, side domain.TradeSide, symbol string, quantity int64) (*Estimate, error) {
	if side != domain.TradeSideBuy && side != domain.TradeSideSell {
		return nil, &domain.ValidationError{
			Message: fmt.Sprintf("Unknown side: %s. Must be one of: buy, sell", side),
		}
	}
	symbol, err := domain.ValidateSymbol(symbol)
	if err != nil {
		return nil, err
	}
	if quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}

	if side == domain.TradeSideSell {
		account, err := s.accounts.Load(sess.Username)
		if err != nil {
			return nil, accountErr(err)
		}
		held := account.HeldQuantity(symbol)
		if held == 0 {
			return nil, domain.ErrNoPosition
		}
		if quantity > held {
			return nil, domain.ErrOverSell
		}
	}

	q, ok := sess.LastPrice(symbol)
	if !ok {
		q, err = s.oracle.Quote(ctx, symbol)
		if err != nil {
			return nil, fmt.Errorf("quote %s: %w", symbol, err)
		}
		sess.Remember(q)
	}

	return &Estimate{
		Symbol:   symbol,
		Side:     side,
		Quantity: quantity,
		Price:    q.Price,
		Total:    q.Price.Mul(decimal.NewFromInt(quantity)),
		QuotedAt: q.QuotedAt,
	}, nil
}

// EstimateBuy is Estimate for a buy.
func (s *TradingService) EstimateBuy(ctx context.Context, sess *session.Session, symbol string, quantity int64) (*Estimate, error) {
	return s.Estimate(ctx, sess, domain.TradeSideBuy, symbol, quantity)
}

// EstimateSell is Estimate for a sell.
func (s *TradingService) EstimateSell(ctx context.Context, sess *session.Session, symbol string, quantity int64) (*Estimate, error) {
	return s.Estimate(ctx, sess, domain.TradeSideSell, symbol, quantity)
}

// Portfolio re-quotes every held symbol and values the account.
func (s *TradingService) Portfolio(ctx context.Context, sess *session.Session) (*PortfolioView, error) {
	account, err := s.accounts.Load(sess.Username)
	if err != nil {
		return nil, accountErr(err)
	}

	symbols := account.Symbols()
	quotes, err := s.oracle.QuoteMany(ctx, symbols)
	if err != nil {
		return nil, fmt.Errorf("quote portfolio: %w", err)
	}

	view := &PortfolioView{
		Username:    account.Username,
		Balance:     account.Balance,
		Rows:        make([]PortfolioRow, 0, len(symbols)),
		MarketValue: decimal.Zero,
		ValuedAt:    s.now(),
	}
	for i, symbol := range symbols {
		q := quotes[i]
		sess.Remember(q)

		pos := account.Portfolio[symbol]
		value := q.Price.Mul(decimal.NewFromInt(pos.Quantity))
		basis := pos.CostBasis()
		view.Rows = append(view.Rows, PortfolioRow{
			Symbol:         symbol,
			Quantity:       pos.Quantity,
			AverageCost:    pos.AverageCost,
			Price:          q.Price,
			PercentChange:  q.PercentChange,
			MarketValue:    value,
			CostBasis:      basis,
			UnrealizedGain: value.Sub(basis),
		})
		view.MarketValue = view.MarketValue.Add(value)
	}
	view.TotalValue = view.Balance.Add(view.MarketValue)
	return view, nil
}

// ListTrades returns the session account's trades, newest first, and the
// total count.
func (s *TradingService) ListTrades(sess *session.Session, page, limit int) ([]*domain.Trade, int, error) {
	if limit < 1 || limit > maxTradesLimit {
		return nil, 0, &domain.ValidationError{
			Message: fmt.Sprintf("limit must be between 1 and %d", maxTradesLimit),
		}
	}
	if page < 1 || page > math.MaxInt/limit {
		return nil, 0, &domain.ValidationError{
			Message: fmt.Sprintf("page must be between 1 and %d", math.MaxInt/limit),
		}
	}
	trades, total := s.trades.ListByAccount(sess.Username, page, limit)
	return trades, total, nil
}
