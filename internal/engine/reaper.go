package engine

import (
	"context"
	"time"

	"github.com/efreitasn/papertrade/internal/store"
)

// SessionReaper periodically evicts sessions that have been idle longer
// than ttl.
type SessionReaper struct {
	interval time.Duration
	ttl      time.Duration
	sessions *store.SessionStore
}

// NewSessionReaper creates a SessionReaper with the given dependencies.
func NewSessionReaper(interval, ttl time.Duration, sessions *store.SessionStore) *SessionReaper {
	return &SessionReaper{
		interval: interval,
		ttl:      ttl,
		sessions: sessions,
	}
}

// Start launches a background goroutine that ticks at the configured
// interval and evicts idle sessions. It stops when ctx is cancelled.
func (r *SessionReaper) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case t := <-ticker.C:
				r.tick(t)
			}
		}
	}()
}

// tick deletes every session last seen before now - ttl and returns how
// many were evicted.
func (r *SessionReaper) tick(now time.Time) int {
	evicted := 0
	for _, sess := range r.sessions.IdleSince(now.Add(-r.ttl)) {
		// Activity may have raced the scan.
		if !sess.LastSeen().Before(now.Add(-r.ttl)) {
			continue
		}
		if err := r.sessions.Delete(sess.ID); err == nil {
			evicted++
		}
	}
	return evicted
}
