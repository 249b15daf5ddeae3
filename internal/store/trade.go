package store

import (
	"sync"

	"github.com/efreitasn/papertrade/internal/domain"
)

// TradeStore is a thread-safe in-memory store for trade receipts,
// keyed by username. Trades are append-only and chronological.
type TradeStore struct {
	mu     sync.RWMutex
	trades map[string][]*domain.Trade // username → trades (chronological)
}

// NewTradeStore creates an empty TradeStore.
func NewTradeStore() *TradeStore {
	return &TradeStore{
		trades: make(map[string][]*domain.Trade),
	}
}

// Append adds a trade to its account's chronological list.
func (s *TradeStore) Append(t *domain.Trade) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.trades[t.Username] = append(s.trades[t.Username], t)
}

// ListByAccount returns trades for an account in reverse chronological
// order (newest first). Pagination is 1-based. Returns the trades for the
// requested page and the total count before pagination.
func (s *TradeStore) ListByAccount(username string, page, limit int) ([]*domain.Trade, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.trades[username]
	total := len(all)

	if page < 1 || limit < 1 {
		return []*domain.Trade{}, total
	}
	// Compare page counts rather than offsets so huge pages cannot overflow.
	pages := total / limit
	if total%limit != 0 {
		pages++
	}
	if page > pages {
		return []*domain.Trade{}, total
	}
	start := (page - 1) * limit
	end := start + min(limit, total-start)

	result := make([]*domain.Trade, 0, end-start)
	for i := total - 1 - start; i >= total-end; i-- {
		result = append(result, all[i])
	}
	return result, total
}
