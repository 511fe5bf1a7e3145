package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/bankcards-api/internal/api/shared"
	"github.com/phrazzld/bankcards-api/internal/domain"
)

// Pagination holds the page size limits applied to list endpoints.
type Pagination struct {
	UserDefaultSize  int
	AdminDefaultSize int
	MaxSize          int
}

// DefaultPagination matches the stock listing behaviour.
var DefaultPagination = Pagination{UserDefaultSize: 10, AdminDefaultSize: 20, MaxSize: 100}

// getPathUUID extracts a UUID from the URL path parameters.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return uuid.Nil, domain.NewValidationError(paramName, "is required", domain.ErrValidation)
	}

	id, err := uuid.Parse(pathParam)
	if err != nil {
		return uuid.Nil, domain.NewValidationError(paramName, "has invalid format", domain.ErrInvalidID)
	}

	return id, nil
}

// requesterFromRequest returns the identity set by the auth middleware.
func requesterFromRequest(r *http.Request) (domain.Requester, error) {
	requester, ok := shared.RequesterFromContext(r.Context())
	if !ok || requester.UserID == uuid.Nil {
		return domain.Requester{}, domain.ErrUnauthorized
	}
	return requester, nil
}

// parsePageRequest reads the zero-based page and size query parameters.
func parsePageRequest(r *http.Request, defaultSize, maxSize int) (domain.PageRequest, error) {
	page, err := queryInt(r, "page")
	if err != nil {
		return domain.PageRequest{}, err
	}
	size, err := queryInt(r, "size")
	if err != nil {
		return domain.PageRequest{}, err
	}
	if page < 0 {
		return domain.PageRequest{}, domain.NewValidationError("page", "must not be negative", domain.ErrValidation)
	}
	if size < 0 {
		return domain.PageRequest{}, domain.NewValidationError("size", "must not be negative", domain.ErrValidation)
	}

	req := domain.PageRequest{Page: page, Size: size}.Normalize(defaultSize, maxSize)
	if !req.InRange() {
		return domain.PageRequest{}, domain.NewValidationError("page", "is too large", domain.ErrValidation)
	}
	return req, nil
}

func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.NewValidationError(name, "must be an integer", domain.ErrInvalidFormat)
	}
	return n, nil
}
