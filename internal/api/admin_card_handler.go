package api

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/phrazzld/bankcards-api/internal/api/shared"
	"github.com/phrazzld/bankcards-api/internal/domain"
	"github.com/phrazzld/bankcards-api/internal/platform/logger"
	"github.com/phrazzld/bankcards-api/internal/service"
	"github.com/phrazzld/bankcards-api/internal/store"
)

// AdminCardHandler serves the card management endpoints for administrators.
type AdminCardHandler struct {
	cardService service.CardService
	pagination  Pagination
	logger      *slog.Logger
}

// NewAdminCardHandler creates a new AdminCardHandler.
func NewAdminCardHandler(cardService service.CardService, pagination Pagination, logger *slog.Logger) *AdminCardHandler {
	if cardService == nil {
		// ALLOW-PANIC: constructor wiring error
		panic("cardService cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AdminCardHandler{
		cardService: cardService,
		pagination:  pagination,
		logger:      logger.With(slog.String("component", "admin_card_handler")),
	}
}

// ListCards handles GET /api/admin/cards.
func (h *AdminCardHandler) ListCards(w http.ResponseWriter, r *http.Request) {
	page, err := parsePageRequest(r, h.pagination.AdminDefaultSize, h.pagination.MaxSize)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	filter := store.CardFilter{HolderSearch: strings.TrimSpace(r.URL.Query().Get("search"))}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, err := domain.ParseCardStatus(raw)
		if err != nil {
			HandleAPIError(w, r, domain.NewValidationError("status", "must be one of ACTIVE, BLOCKED, EXPIRED", err))
			return
		}
		filter.Status = &status
	}

	cards, err := h.cardService.ListAllCards(r.Context(), filter, page)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, shared.NewPageResponse(cards, newCardResponse))
}

// CreateCard handles POST /api/admin/cards.
func (h *AdminCardHandler) CreateCard(w http.ResponseWriter, r *http.Request) {
	var req CreateCardRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	expiration, err := time.Parse(time.DateOnly, req.ExpirationDate)
	if err != nil {
		HandleAPIError(w, r, domain.NewValidationError("expiration_date", "must be in YYYY-MM-DD format", err))
		return
	}

	card, err := h.cardService.CreateCard(r.Context(), service.CreateCardParams{
		OwnerID:        req.UserID,
		Number:         req.Number,
		HolderName:     req.HolderName,
		ExpirationDate: expiration,
		Balance:        *req.Balance,
	})
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Info("card issued",
		slog.String("card_id", card.Card.ID.String()),
		slog.String("owner_id", card.Card.OwnerID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, newCardResponse(*card))
}

// UpdateStatus handles POST /api/admin/cards/{id}/status?status=.
func (h *AdminCardHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	cardID, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	raw := r.URL.Query().Get("status")
	if raw == "" {
		HandleAPIError(w, r, domain.NewValidationError("status", "is required", domain.ErrValidation))
		return
	}
	status, err := domain.ParseCardStatus(raw)
	if err != nil {
		HandleAPIError(w, r, domain.NewValidationError("status", "must be one of ACTIVE, BLOCKED, EXPIRED", err))
		return
	}

	card, err := h.cardService.UpdateStatus(r.Context(), cardID, status)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, newCardResponse(*card))
}

// DeleteCard handles DELETE /api/admin/cards/{id}.
func (h *AdminCardHandler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	cardID, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	if err := h.cardService.DeleteCard(r.Context(), cardID); err != nil {
		HandleAPIError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
