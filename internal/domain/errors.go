package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Callers classify with errors.Is; concrete errors below wrap one of these.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidState = errors.New("invalid state")
	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrStorage      = errors.New("storage failure")
)

var (
	ErrCartNotFound     = fmt.Errorf("%w: no cart", ErrNotFound)
	ErrCartEmpty        = fmt.Errorf("%w: cart is empty", ErrInvalidState)
	ErrCartItemNotFound = fmt.Errorf("%w: cart item not found", ErrNotFound)
	ErrProductNotFound  = fmt.Errorf("%w: product not found", ErrNotFound)
	ErrOrderNotFound    = fmt.Errorf("%w: order not found", ErrNotFound)
	ErrUserNotFound     = fmt.Errorf("%w: user not found", ErrNotFound)
	ErrEmailTaken       = fmt.Errorf("%w: user with email already exists", ErrConflict)
	ErrBadCredentials   = fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
	ErrInvalidQuantity  = fmt.Errorf("%w: quantity must be between 1 and %d", ErrInvalidInput, MaxItemQuantity)
	ErrNegativePrice    = fmt.Errorf("%w: price must not be negative", ErrInvalidInput)
	ErrPriceTooHigh     = fmt.Errorf("%w: price must not exceed %d cents", ErrInvalidInput, MaxPriceCents)
)

// StorageError wraps a datastore failure so it is classified as ErrStorage.
// Errors that already carry a kind are returned unchanged.
func StorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsClassified(err) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
}

// IsClassified reports whether err already wraps one of the error kinds.
func IsClassified(err error) bool {
	for _, kind := range []error{ErrNotFound, ErrInvalidState, ErrInvalidInput, ErrConflict, ErrUnauthorized, ErrForbidden, ErrStorage} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}
