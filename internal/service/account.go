package service

import (
	"crypto/subtle"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/efreitasn/papertrade/internal/domain"
	"github.com/efreitasn/papertrade/internal/session"
	"github.com/efreitasn/papertrade/internal/store"
	"github.com/shopspring/decimal"
)

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)

// AccountStore is the persistence the account service needs.
type AccountStore interface {
	Create(a *domain.Account) error
	Load(username string) (*domain.Account, error)
	Save(a *domain.Account) error
	Exists(username string) bool
}

// SignUpRequest represents the input for account creation.
type SignUpRequest struct {
	Username        string
	Password        string
	ConfirmPassword string
	InitialBalance  *decimal.Decimal // nil or zero uses the configured default
}

// AccountService handles sign up, log in, log out and session lookup.
type AccountService struct {
	accounts       AccountStore
	sessions       *store.SessionStore
	defaultBalance decimal.Decimal
	now            func() time.Time
}

// NewAccountService creates a new AccountService.
func NewAccountService(accounts AccountStore, sessions *store.SessionStore, defaultBalance decimal.Decimal) *AccountService {
	return &AccountService{
		accounts:       accounts,
		sessions:       sessions,
		defaultBalance: defaultBalance,
		now:            time.Now,
	}
}

// SignUp validates the request, creates the account and logs the new user
// in.
func (s *AccountService) SignUp(req SignUpRequest) (*domain.Account, *session.Session, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return nil, nil, &domain.ValidationError{
			Message: "username and password are required",
		}
	}
	if !usernameRegex.MatchString(username) {
		return nil, nil, &domain.ValidationError{
			Message: "username must match ^[a-zA-Z0-9_-]{1,64}$",
		}
	}
	if req.Password != req.ConfirmPassword {
		return nil, nil, &domain.ValidationError{
			Message: "passwords do not match",
		}
	}
	if s.accounts.Exists(username) {
		return nil, nil, domain.ErrAccountAlreadyExists
	}

	balance := s.defaultBalance
	if req.InitialBalance != nil && !req.InitialBalance.IsZero() {
		if err := domain.ValidateAmount(*req.InitialBalance); err != nil {
			return nil, nil, &domain.ValidationError{
				Message: "initial_balance: " + err.Error(),
			}
		}
		balance = *req.InitialBalance
	}

	now := s.now()
	account := &domain.Account{
		Username:  username,
		Password:  req.Password,
		Balance:   balance,
		Portfolio: make(map[string]*domain.Position),
		CreatedAt: now,
		UpdatedAt: now,
	}

	// Create re-checks the username under the store's lock.
	if err := s.accounts.Create(account); err != nil {
		return nil, nil, err
	}

	sess := session.New(username, now)
	s.sessions.Add(sess)
	return account, sess, nil
}

// LogIn checks credentials and opens a session.
func (s *AccountService) LogIn(username, password string) (*domain.Account, *session.Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, nil, &domain.ValidationError{
			Message: "username and password are required",
		}
	}

	account, err := s.accounts.Load(username)
	if errors.Is(err, domain.ErrAccountNotFound) {
		return nil, nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, nil, err
	}
	if subtle.ConstantTimeCompare([]byte(account.Password), []byte(password)) != 1 {
		return nil, nil, domain.ErrInvalidCredentials
	}

	sess := session.New(account.Username, s.now())
	s.sessions.Add(sess)
	return account, sess, nil
}

// LogOut ends a session.
func (s *AccountService) LogOut(sessionID string) error {
	return s.sessions.Delete(sessionID)
}

// Authenticate resolves a session ID and records activity on it.
func (s *AccountService) Authenticate(sessionID string) (*session.Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	sess.Touch(s.now())
	return sess, nil
}

// Current loads the session's account. If the account has vanished the
// session is ended.
func (s *AccountService) Current(sess *session.Session) (*domain.Account, error) {
	account, err := s.accounts.Load(sess.Username)
	if errors.Is(err, domain.ErrAccountNotFound) {
		_ = s.sessions.Delete(sess.ID)
		return nil, domain.ErrSessionNotFound
	}
	return account, err
}
