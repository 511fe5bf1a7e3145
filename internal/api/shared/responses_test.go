package shared

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phrazzld/bankcards-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondWithJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()

	RespondWithJSON(w, req, http.StatusCreated, map[string]int{"value": 123})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"value":123}`, w.Body.String())
}

func TestRespondWithError_IncludesTraceID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req = req.WithContext(SetTraceID(req.Context()))
	w := httptest.NewRecorder()

	RespondWithError(w, req, http.StatusNotFound, "Card not found")

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Card not found", resp.Error)
	assert.Equal(t, GetTraceID(req.Context()), resp.TraceID)
	assert.Nil(t, resp.Details)
}

func TestRespondWithErrorAndLog_HidesInternalError(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()
	internal := errors.New("pq: connection to postgres://bank:hunter2@db:5432/bank refused")

	RespondWithErrorAndLog(w, req, http.StatusInternalServerError, "An unexpected error occurred", internal)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "hunter2")
	assert.NotContains(t, w.Body.String(), "postgres")
	assert.Contains(t, w.Body.String(), "An unexpected error occurred")
}

func TestRespondWithValidationError(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/test", nil)
	w := httptest.NewRecorder()

	RespondWithValidationError(w, req, map[string]string{"amount": "is required"}, errors.New("invalid"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Validation failed","details":{"amount":"is required"}}`, w.Body.String())
}

func TestNewPageResponse(t *testing.T) {
	page := &domain.Page[int]{Items: []int{1, 2, 3}, Page: 1, Size: 3, TotalItems: 7}

	resp := NewPageResponse(page, func(i int) string { return string(rune('a' + i)) })

	assert.Equal(t, []string{"b", "c", "d"}, resp.Content)
	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, 3, resp.Size)
	assert.Equal(t, int64(7), resp.TotalElements)
	assert.Equal(t, 3, resp.TotalPages)
}

func TestNewPageResponse_EmptyContentIsArray(t *testing.T) {
	resp := NewPageResponse(&domain.Page[int]{Size: 10}, func(i int) int { return i })

	data, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"content":[],"page":0,"size":10,"total_elements":0,"total_pages":0}`, string(data))
}
