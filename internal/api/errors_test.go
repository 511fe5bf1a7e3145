package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/bankcards-api/internal/api/shared"
	"github.com/phrazzld/bankcards-api/internal/domain"
	"github.com/phrazzld/bankcards-api/internal/service"
	"github.com/phrazzld/bankcards-api/internal/service/auth"
	"github.com/phrazzld/bankcards-api/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"card not found", store.ErrCardNotFound, http.StatusNotFound, "Card not found"},
		{"user not found", store.ErrUserNotFound, http.StatusNotFound, "User not found"},
		{"source card", service.ErrSourceCardNotFound, http.StatusNotFound, "Source card not found"},
		{"destination card", service.ErrDestinationCardNotFound, http.StatusNotFound, "Destination card not found"},
		{"duplicate username", service.ErrDuplicateUsername, http.StatusConflict, "Username already exists"},
		{"duplicate email", service.ErrDuplicateEmail, http.StatusConflict, "Email already exists"},
		{"user has cards", service.ErrUserHasCards, http.StatusConflict, "User has cards and cannot be deleted"},
		{"not owner", service.ErrNotCardOwner, http.StatusForbidden, "Card belongs to another user"},
		{"expired", service.ErrCardExpired, http.StatusBadRequest, "Card is expired"},
		{"already blocked", service.ErrCardAlreadyBlocked, http.StatusBadRequest, "Card is already blocked"},
		{"not active", service.ErrCardNotActive, http.StatusBadRequest, "Card is not active"},
		{"has balance", service.ErrCardHasBalance, http.StatusBadRequest, "Card balance must be zero to delete"},
		{"activate expired", service.ErrCannotActivateExpired, http.StatusBadRequest, "Cannot activate an expired card"},
		{"self transfer", service.ErrSelfTransfer, http.StatusBadRequest, "Cannot transfer to the same card"},
		{"insufficient funds", service.ErrInsufficientFunds, http.StatusBadRequest, "Insufficient funds"},
		{"credentials", service.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid username or password"},
		{"disabled", service.ErrAccountDisabled, http.StatusForbidden, "Account is disabled"},
		{"invalid token", auth.ErrInvalidToken, http.StatusUnauthorized, "Invalid token"},
		{"expired token", auth.ErrExpiredToken, http.StatusUnauthorized, "Token expired"},
		{"unauthorized", domain.ErrUnauthorized, http.StatusUnauthorized, "Authentication required"},
		{"invalid entity", store.ErrInvalidEntity, http.StatusBadRequest, "Validation failed"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "An unexpected error occurred"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			wrapped := fmt.Errorf("layer: %w", tc.err)
			assert.Equal(t, tc.status, MapErrorToStatusCode(wrapped))
			assert.Equal(t, tc.message, GetSafeErrorMessage(wrapped))
		})
	}
}

func TestGetSafeErrorMessage_Nil(t *testing.T) {
	assert.Equal(t, "An unexpected error occurred", GetSafeErrorMessage(nil))
}

func TestHandleAPIError_ServiceErrorDoesNotLeak(t *testing.T) {
	err := service.NewServiceError("card", "transfer",
		errors.New(`pq: relation "cards" at postgres://bank:secret@db:5432`))
	w := httptest.NewRecorder()

	HandleAPIError(w, httptest.NewRequest(http.MethodPost, "/", nil), err)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "secret")
	assert.NotContains(t, w.Body.String(), "cards")
}

func TestHandleAPIError_DomainValidation(t *testing.T) {
	w := httptest.NewRecorder()
	err := domain.NewValidationError("amount", "must be at least 0.01", domain.ErrNonPositiveAmount)

	HandleAPIError(w, httptest.NewRequest(http.MethodPost, "/", nil), fmt.Errorf("transfer: %w", err))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, "Validation failed", resp.Error)
	assert.Equal(t, map[string]string{"amount": "must be at least 0.01"}, resp.Details)
}

func TestHandleAPIError_ValidatorErrors(t *testing.T) {
	type payload struct {
		Username string `json:"username" validate:"required"`
	}
	verr := shared.ValidateRequest(payload{})
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, verr, &verrs)

	w := httptest.NewRecorder()
	HandleAPIError(w, httptest.NewRequest(http.MethodPost, "/", nil), verr)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, map[string]string{"username": "is required"}, decodeError(t, w).Details)
}
