package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/efreitasn/papertrade/internal/domain"
)

// FileAccountStore keeps one encoded file per account in a directory.
// Writes go to a temporary file that is renamed into place.
type FileAccountStore struct {
	mu    sync.Mutex
	dir   string
	codec Codec
}

// NewFileAccountStore creates the directory if needed and returns a store
// rooted at it.
func NewFileAccountStore(dir string, codec Codec) (*FileAccountStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileAccountStore{dir: dir, codec: codec}, nil
}

func (s *FileAccountStore) path(username string) (string, error) {
	if username == "" || strings.ContainsAny(username, `/\`) || username == "." || username == ".." {
		return "", &domain.ValidationError{Message: fmt.Sprintf("username %q cannot be stored", username)}
	}
	return filepath.Join(s.dir, accountKey(username)), nil
}

// Create writes a new account file. It returns
// domain.ErrAccountAlreadyExists if the file is already present.
func (s *FileAccountStore) Create(a *domain.Account) error {
	p, err := s.path(a.Username)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(p); err == nil {
		return domain.ErrAccountAlreadyExists
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat account: %w", err)
	}
	return s.write(p, a)
}

// Load reads an account file. It returns domain.ErrAccountNotFound if the
// file is absent.
func (s *FileAccountStore) Load(username string) (*domain.Account, error) {
	p, err := s.path(username)
	if err != nil {
		return nil, domain.ErrAccountNotFound
	}

	s.mu.Lock()
	b, err := os.ReadFile(p)
	s.mu.Unlock()

	if errors.Is(err, fs.ErrNotExist) {
		return nil, domain.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read account: %w", err)
	}
	return s.codec.Decode(b)
}

// Save overwrites an existing account file. It returns
// domain.ErrAccountNotFound if the account was never created.
func (s *FileAccountStore) Save(a *domain.Account) error {
	p, err := s.path(a.Username)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
		return domain.ErrAccountNotFound
	}
	return s.write(p, a)
}

// Exists returns true if an account file exists for username.
func (s *FileAccountStore) Exists(username string) bool {
	p, err := s.path(username)
	if err != nil {
		return false
	}
	_, err = os.Stat(p)
	return err == nil
}

// write must be called with s.mu held.
func (s *FileAccountStore) write(p string, a *domain.Account) error {
	b, err := s.codec.Encode(a)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("write account: %w", err)
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("write account: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write account: %w", err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return fmt.Errorf("write account: %w", err)
	}
	return nil
}
