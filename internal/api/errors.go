package api

import (
	"errors"
	"net/http"

	"github.com/phrazzld/bankcards-api/internal/api/shared"
	"github.com/phrazzld/bankcards-api/internal/domain"
	"github.com/phrazzld/bankcards-api/internal/service"
	"github.com/phrazzld/bankcards-api/internal/service/auth"
	"github.com/phrazzld/bankcards-api/internal/store"
)

const unexpectedErrorMessage = "An unexpected error occurred"

// ruleMessages holds the client-facing reason for each rule violation.
var ruleMessages = []struct {
	err     error
	message string
}{
	{service.ErrNotCardOwner, "Card belongs to another user"},
	{service.ErrCardExpired, "Card is expired"},
	{service.ErrCardAlreadyBlocked, "Card is already blocked"},
	{service.ErrCardNotActive, "Card is not active"},
	{service.ErrCardHasBalance, "Card balance must be zero to delete"},
	{service.ErrCannotActivateExpired, "Cannot activate an expired card"},
	{service.ErrSelfTransfer, "Cannot transfer to the same card"},
}

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. Unknown errors map to 500.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized

	// Authorization denial must be checked before the lifecycle parent below.
	case errors.Is(err, service.ErrNotCardOwner),
		errors.Is(err, service.ErrAccountDisabled):
		return http.StatusForbidden

	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, store.ErrDuplicate),
		errors.Is(err, service.ErrUserHasCards):
		return http.StatusConflict

	case errors.Is(err, service.ErrOperationNotAllowed),
		errors.Is(err, service.ErrInsufficientFunds),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. It never includes the error's own text.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return unexpectedErrorMessage
	}

	for _, rule := range ruleMessages {
		if errors.Is(err, rule.err) {
			return rule.message
		}
	}

	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrWrongTokenType):
		return "Invalid token"
	case errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, domain.ErrUnauthorized):
		return "Authentication required"

	case errors.Is(err, service.ErrInvalidCredentials):
		return "Invalid username or password"
	case errors.Is(err, service.ErrAccountDisabled):
		return "Account is disabled"

	// Transfer sides wrap ErrCardNotFound and must be matched first.
	case errors.Is(err, service.ErrSourceCardNotFound):
		return "Source card not found"
	case errors.Is(err, service.ErrDestinationCardNotFound):
		return "Destination card not found"
	case errors.Is(err, store.ErrCardNotFound):
		return "Card not found"
	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"
	case errors.Is(err, store.ErrNotFound):
		return "Resource not found"

	case errors.Is(err, service.ErrDuplicateUsername),
		errors.Is(err, store.ErrUsernameExists):
		return "Username already exists"
	case errors.Is(err, service.ErrDuplicateEmail),
		errors.Is(err, store.ErrEmailExists):
		return "Email already exists"
	case errors.Is(err, service.ErrUserHasCards):
		return "User has cards and cannot be deleted"
	case errors.Is(err, store.ErrDuplicate):
		return "Resource already exists"

	case errors.Is(err, service.ErrInsufficientFunds):
		return "Insufficient funds"
	case errors.Is(err, service.ErrOperationNotAllowed):
		return "Operation not allowed"
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return "Validation failed"

	default:
		return unexpectedErrorMessage
	}
}

// HandleAPIError writes the response for err. Validation failures carry a
// per-field details map; everything else gets a status and a safe message.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error) {
	if details := validationDetails(err); details != nil {
		shared.RespondWithValidationError(w, r, details, err)
		return
	}

	shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
}

func validationDetails(err error) map[string]string {
	if details := shared.ValidationDetails(err); details != nil {
		return details
	}

	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		field := verr.Field
		if field == "" {
			field = "request"
		}
		return map[string]string{field: verr.Message}
	}
	return nil
}
