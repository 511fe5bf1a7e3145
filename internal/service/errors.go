package service

import (
	"errors"
	"fmt"

	"github.com/phrazzld/bankcards-api/internal/store"
)

// Common service errors - sentinel errors used across service implementations.
// Callers check them with errors.Is; the API layer maps them to HTTP status codes.
var (
	// ErrOperationNotAllowed is the parent of every rule violation below.
	ErrOperationNotAllowed = errors.New("operation not allowed")

	// ErrNotCardOwner indicates the requester may not act on the card.
	// API layer should map this to HTTP 403 Forbidden.
	ErrNotCardOwner = fmt.Errorf("%w: card belongs to another user", ErrOperationNotAllowed)

	// Lifecycle violations. API layer should map these to HTTP 400 Bad Request.
	ErrCardExpired           = fmt.Errorf("%w: card is expired", ErrOperationNotAllowed)
	ErrCardAlreadyBlocked    = fmt.Errorf("%w: card is already blocked", ErrOperationNotAllowed)
	ErrCardNotActive         = fmt.Errorf("%w: card is not active", ErrOperationNotAllowed)
	ErrCardHasBalance        = fmt.Errorf("%w: card balance must be zero to delete", ErrOperationNotAllowed)
	ErrCannotActivateExpired = fmt.Errorf("%w: cannot activate an expired card", ErrOperationNotAllowed)
	ErrSelfTransfer          = fmt.Errorf("%w: cannot transfer to the same card", ErrOperationNotAllowed)

	// ErrInsufficientFunds indicates the source card balance is lower than the amount.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInvalidCredentials is returned for an unknown username and for a wrong password alike.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrAccountDisabled indicates the user has been blocked by an administrator.
	ErrAccountDisabled = errors.New("account is disabled")

	// ErrDuplicateUsername indicates the username is used by another user.
	ErrDuplicateUsername = fmt.Errorf("%w: username already exists", store.ErrDuplicate)

	// ErrDuplicateEmail indicates the email is used by another user.
	ErrDuplicateEmail = fmt.Errorf("%w: email already exists", store.ErrDuplicate)

	// ErrUserHasCards indicates a user cannot be deleted while owning cards.
	ErrUserHasCards = errors.New("user has cards and cannot be deleted")

	// ErrSourceCardNotFound and ErrDestinationCardNotFound identify the missing side of a transfer.
	ErrSourceCardNotFound      = fmt.Errorf("source %w", store.ErrCardNotFound)
	ErrDestinationCardNotFound = fmt.Errorf("destination %w", store.ErrCardNotFound)
)

// ServiceError wraps unexpected failures with the operation that produced them.
type ServiceError struct {
	Service   string
	Operation string
	Err       error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s service %s failed: %v", e.Service, e.Operation, e.Err)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError.
func NewServiceError(service, operation string, err error) *ServiceError {
	return &ServiceError{
		Service:   service,
		Operation: operation,
		Err:       err,
	}
}

// duplicateError converts store uniqueness errors into the service sentinels.
func duplicateError(err error) error {
	switch {
	case errors.Is(err, store.ErrEmailExists):
		return ErrDuplicateEmail
	case errors.Is(err, store.ErrUsernameExists):
		return ErrDuplicateUsername
	}
	return err
}
