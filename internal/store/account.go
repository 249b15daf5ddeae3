package store

import (
	"sync"

	"github.com/efreitasn/papertrade/internal/domain"
)

// accountKey is the storage key of a user record.
func accountKey(username string) string {
	return "user_" + username
}

// MemoryAccountStore is a thread-safe in-memory account store. Records
// are held encoded, keyed by user_<username>, so every Load returns a
// fresh copy.
type MemoryAccountStore struct {
	mu      sync.RWMutex
	codec   Codec
	records map[string][]byte
}

// NewMemoryAccountStore creates an empty MemoryAccountStore.
func NewMemoryAccountStore(codec Codec) *MemoryAccountStore {
	return &MemoryAccountStore{
		codec:   codec,
		records: make(map[string][]byte),
	}
}

// Create adds an account. It returns domain.ErrAccountAlreadyExists if
// the username is taken.
func (s *MemoryAccountStore) Create(a *domain.Account) error {
	b, err := s.codec.Encode(a)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := accountKey(a.Username)
	if _, exists := s.records[key]; exists {
		return domain.ErrAccountAlreadyExists
	}
	s.records[key] = b
	return nil
}

// Load retrieves an account by username. It returns
// domain.ErrAccountNotFound if the account does not exist.
func (s *MemoryAccountStore) Load(username string) (*domain.Account, error) {
	s.mu.RLock()
	b, ok := s.records[accountKey(username)]
	s.mu.RUnlock()

	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return s.codec.Decode(b)
}

// Save overwrites an existing account. It returns
// domain.ErrAccountNotFound if the account was never created.
func (s *MemoryAccountStore) Save(a *domain.Account) error {
	b, err := s.codec.Encode(a)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := accountKey(a.Username)
	if _, exists := s.records[key]; !exists {
		return domain.ErrAccountNotFound
	}
	s.records[key] = b
	return nil
}

// Exists returns true if an account with the given username exists.
func (s *MemoryAccountStore) Exists(username string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.records[accountKey(username)]
	return ok
}
