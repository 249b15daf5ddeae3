package domain

import "errors"

// Sentinel errors for domain-level error handling.
// The handler layer maps these to HTTP status codes.
var (
	ErrAccountAlreadyExists = errors.New("account_already_exists")
	ErrAccountNotFound      = errors.New("account_not_found")
	ErrInvalidCredentials   = errors.New("invalid_credentials")
	ErrSessionNotFound      = errors.New("session_not_found")
	ErrInsufficientFunds    = errors.New("insufficient_funds")
	ErrNoPosition           = errors.New("no_position")
	ErrOverSell             = errors.New("over_sell")
	ErrInvalidQuantity      = errors.New("invalid_quantity")
	ErrInvalidSymbol        = errors.New("invalid_symbol")
)

// ValidationError represents a request validation failure.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
