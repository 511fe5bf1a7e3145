package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/bankcards-api/internal/api/shared"
	"github.com/phrazzld/bankcards-api/internal/domain"
	"github.com/phrazzld/bankcards-api/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var (
	testUser  = domain.Requester{UserID: uuid.MustParse("11111111-1111-1111-1111-111111111111"), Role: domain.RoleUser}
	testAdmin = domain.Requester{UserID: uuid.MustParse("22222222-2222-2222-2222-222222222222"), Role: domain.RoleAdmin}
)

// newRequest builds a request with an optional JSON body and an optional
// authenticated requester in its context.
func newRequest(method, target, body string, requester *domain.Requester) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	if requester != nil {
		req = req.WithContext(shared.WithRequester(req.Context(), *requester))
	}
	return req
}

// serve routes req through a chi router so URL parameters are populated.
func serve(pattern string, method string, handler http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Method(method, pattern, handler)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) shared.ErrorResponse {
	t.Helper()
	var resp shared.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

func testCardView(owner uuid.UUID, balance string) service.CardView {
	return service.CardView{
		Card: &domain.Card{
			ID:             uuid.New(),
			OwnerID:        owner,
			HolderName:     "IVAN PETROV",
			ExpirationDate: time.Date(2030, 1, 31, 0, 0, 0, 0, time.UTC),
			Balance:        decimal.RequireFromString(balance),
			Status:         domain.CardStatusActive,
		},
		MaskedNumber: "**** **** **** 1234",
	}
}
