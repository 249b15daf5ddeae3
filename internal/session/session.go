// Package session holds the per-login context the UI layer owns: who is
// logged in and the last price seen for each symbol.
package session

import (
	"sync"
	"time"

	"github.com/efreitasn/papertrade/internal/domain"
	"github.com/google/btree"
	"github.com/google/uuid"
)

// Session is one login: the user and the last quote seen per symbol. It
// is safe for concurrent use.
type Session struct {
	ID        string
	Username  string
	CreatedAt time.Time

	mu       sync.Mutex
	lastSeen time.Time
	prices   *btree.BTreeG[domain.PriceQuote] // ordered by symbol
}

func quoteLess(a, b domain.PriceQuote) bool {
	return a.Symbol < b.Symbol
}

// New creates a session for username with a fresh random ID.
func New(username string, now time.Time) *Session {
	const degree = 8
	return &Session{
		ID:        uuid.NewString(),
		Username:  username,
		CreatedAt: now,
		lastSeen:  now,
		prices:    btree.NewG[domain.PriceQuote](degree, quoteLess),
	}
}

// Touch records activity at now.
func (s *Session) Touch(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if now.After(s.lastSeen) {
		s.lastSeen = now
	}
}

// LastSeen returns the time of the most recent activity.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Remember stores q as the last seen quote for its symbol.
func (s *Session) Remember(q domain.PriceQuote) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prices.ReplaceOrInsert(q)
}

// LastPrice returns the last seen quote for symbol. It is a display
// fallback only; trades always fetch a fresh quote.
func (s *Session) LastPrice(symbol string) (domain.PriceQuote, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prices.Get(domain.PriceQuote{Symbol: symbol})
}

// Prices returns every remembered quote ordered by symbol.
func (s *Session) Prices() []domain.PriceQuote {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.PriceQuote, 0, s.prices.Len())
	s.prices.Ascend(func(q domain.PriceQuote) bool {
		out = append(out, q)
		return true
	})
	return out
}
