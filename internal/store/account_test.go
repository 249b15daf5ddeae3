package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/efreitasn/papertrade/internal/domain"
	"github.com/shopspring/decimal"
)

// accountStore is the surface both backends share.
type accountStore interface {
	Create(a *domain.Account) error
	Load(username string) (*domain.Account, error)
	Save(a *domain.Account) error
	Exists(username string) bool
}

func newTestStores(t *testing.T) map[string]accountStore {
	t.Helper()
	fs, err := NewFileAccountStore(t.TempDir(), ObscuredCodec{})
	if err != nil {
		t.Fatalf("NewFileAccountStore: %v", err)
	}
	return map[string]accountStore{
		"memory": NewMemoryAccountStore(ObscuredCodec{}),
		"file":   fs,
	}
}

func TestAccountStore_Create(t *testing.T) {
	for name, s := range newTestStores(t) {
		t.Run(name, func(t *testing.T) {
			a := newTestAccount("alice")

			if err := s.Create(a); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			// Duplicate should fail.
			if err := s.Create(a); err != domain.ErrAccountAlreadyExists {
				t.Fatalf("expected ErrAccountAlreadyExists, got %v", err)
			}
		})
	}
}

func TestAccountStore_Load(t *testing.T) {
	for name, s := range newTestStores(t) {
		t.Run(name, func(t *testing.T) {
			_ = s.Create(newTestAccount("alice"))

			got, err := s.Load("alice")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got.Username != "alice" {
				t.Fatalf("expected alice, got %s", got.Username)
			}
			if !got.Balance.Equal(decimal.NewFromInt(10000)) {
				t.Fatalf("expected balance 10000, got %s", got.Balance)
			}

			// Non-existent account.
			_, err = s.Load("nobody")
			if err != domain.ErrAccountNotFound {
				t.Fatalf("expected ErrAccountNotFound, got %v", err)
			}
		})
	}
}

func TestAccountStore_LoadReturnsCopy(t *testing.T) {
	for name, s := range newTestStores(t) {
		t.Run(name, func(t *testing.T) {
			_ = s.Create(newTestAccount("alice"))

			a, _ := s.Load("alice")
			a.Balance = decimal.Zero
			delete(a.Portfolio, "AAPL")

			again, _ := s.Load("alice")
			if !again.Balance.Equal(decimal.NewFromInt(10000)) {
				t.Fatal("Load should return a copy; stored balance was mutated")
			}
			if _, ok := again.Portfolio["AAPL"]; !ok {
				t.Fatal("Load should return a copy; stored portfolio was mutated")
			}
		})
	}
}

func TestAccountStore_Save(t *testing.T) {
	for name, s := range newTestStores(t) {
		t.Run(name, func(t *testing.T) {
			a := newTestAccount("alice")
			_ = s.Create(a)

			a.Balance = decimal.RequireFromString("42.17")
			a.Portfolio["TSLA"] = &domain.Position{Quantity: 2, AverageCost: decimal.RequireFromString("250")}
			if err := s.Save(a); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			got, _ := s.Load("alice")
			if !got.Balance.Equal(decimal.RequireFromString("42.17")) {
				t.Fatalf("expected balance 42.17, got %s", got.Balance)
			}
			if got.HeldQuantity("TSLA") != 2 {
				t.Fatalf("expected 2 TSLA, got %d", got.HeldQuantity("TSLA"))
			}

			// Saving an account that was never created fails.
			if err := s.Save(newTestAccount("ghost")); err != domain.ErrAccountNotFound {
				t.Fatalf("expected ErrAccountNotFound, got %v", err)
			}
		})
	}
}

func TestAccountStore_Exists(t *testing.T) {
	for name, s := range newTestStores(t) {
		t.Run(name, func(t *testing.T) {
			_ = s.Create(newTestAccount("alice"))

			if !s.Exists("alice") {
				t.Fatal("expected alice to exist")
			}
			if s.Exists("bob") {
				t.Fatal("expected bob to not exist")
			}
		})
	}
}

func TestAccountStore_ConcurrentAccess(t *testing.T) {
	for name, s := range newTestStores(t) {
		t.Run(name, func(t *testing.T) {
			var wg sync.WaitGroup

			for i := 0; i < 50; i++ {
				wg.Add(1)
				go func(id string) {
					defer wg.Done()
					_ = s.Create(newTestAccount(id))
				}(fmt.Sprintf("user-%d", i))
			}
			wg.Wait()

			for i := 0; i < 50; i++ {
				wg.Add(2)
				go func(id string) {
					defer wg.Done()
					a, err := s.Load(id)
					if err == nil {
						_ = s.Save(a)
					}
				}(fmt.Sprintf("user-%d", i))
				go func(id string) {
					defer wg.Done()
					s.Exists(id)
				}(fmt.Sprintf("user-%d", i))
			}
			wg.Wait()

			for i := 0; i < 50; i++ {
				if !s.Exists(fmt.Sprintf("user-%d", i)) {
					t.Fatalf("user-%d should exist", i)
				}
			}
		})
	}
}

func TestFileAccountStore_Layout(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileAccountStore(dir, JSONCodec{})
	if err != nil {
		t.Fatalf("NewFileAccountStore: %v", err)
	}
	_ = s.Create(newTestAccount("alice"))

	if _, err := os.Stat(filepath.Join(dir, "user_alice")); err != nil {
		t.Fatalf("expected user_alice file: %v", err)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("expected exactly one file, got %d", len(entries))
	}
}

func TestFileAccountStore_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	s1, _ := NewFileAccountStore(dir, ObscuredCodec{})
	_ = s1.Create(newTestAccount("alice"))

	s2, _ := NewFileAccountStore(dir, ObscuredCodec{})
	got, err := s2.Load("alice")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got.HeldQuantity("AAPL") != 3 {
		t.Fatalf("expected 3 AAPL, got %d", got.HeldQuantity("AAPL"))
	}
}

func TestFileAccountStore_RejectsPathUsernames(t *testing.T) {
	s, _ := NewFileAccountStore(t.TempDir(), JSONCodec{})

	for _, u := range []string{"../escape", "a/b", `a\b`, ".."} {
		if err := s.Create(newTestAccount(u)); err == nil {
			t.Errorf("Create(%q) should fail", u)
		}
		if s.Exists(u) {
			t.Errorf("Exists(%q) should be false", u)
		}
	}
}
