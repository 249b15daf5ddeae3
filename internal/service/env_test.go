package service

import (
	"io"
	"log/slog"
	"testing"

	"github.com/efreitasn/papertrade/internal/domain"
	"github.com/efreitasn/papertrade/internal/engine"
	"github.com/efreitasn/papertrade/internal/session"
	"github.com/efreitasn/papertrade/internal/store"
	"github.com/shopspring/decimal"
)

// testEnv bundles the services over in-memory stores and a seeded,
// zero-latency oracle.
type testEnv struct {
	accounts   *store.MemoryAccountStore
	sessions   *store.SessionStore
	trades     *store.TradeStore
	oracle     *engine.Oracle
	accountSvc *AccountService
	tradingSvc *TradingService
	marketSvc  *MarketService
}

func newTestEnvWithLogger(logger *slog.Logger) *testEnv {
	accounts := store.NewMemoryAccountStore(store.JSONCodec{})
	sessions := store.NewSessionStore()
	trades := store.NewTradeStore()
	oracle := engine.NewOracle(engine.NewSeededSource(42), 0)
	ledger := engine.NewLedger(accounts, oracle)
	return &testEnv{
		accounts:   accounts,
		sessions:   sessions,
		trades:     trades,
		oracle:     oracle,
		accountSvc: NewAccountService(accounts, sessions, decimal.NewFromInt(10000)),
		tradingSvc: NewTradingService(ledger, oracle, accounts, trades, logger),
		marketSvc:  NewMarketService(oracle),
	}
}

func newTestEnv() *testEnv {
	return newTestEnvWithLogger(slog.New(slog.NewJSONHandler(io.Discard, nil)))
}

// signUp creates an account with the given balance and returns its session.
func (env *testEnv) signUp(t *testing.T, username, balance string) *session.Session {
	t.Helper()
	b := decimal.RequireFromString(balance)
	_, sess, err := env.accountSvc.SignUp(SignUpRequest{
		Username:        username,
		Password:        "secret",
		ConfirmPassword: "secret",
		InitialBalance:  &b,
	})
	if err != nil {
		t.Fatalf("failed to sign up %s: %v", username, err)
	}
	return sess
}

func (env *testEnv) load(t *testing.T, username string) *domain.Account {
	t.Helper()
	a, err := env.accounts.Load(username)
	if err != nil {
		t.Fatalf("failed to load %s: %v", username, err)
	}
	return a
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}
