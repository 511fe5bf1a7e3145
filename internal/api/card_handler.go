package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/phrazzld/bankcards-api/internal/api/shared"
	"github.com/phrazzld/bankcards-api/internal/platform/logger"
	"github.com/phrazzld/bankcards-api/internal/service"
)

// CardHandler serves the card endpoints available to every authenticated user.
type CardHandler struct {
	cardService service.CardService
	pagination  Pagination
	logger      *slog.Logger
}

// NewCardHandler creates a new CardHandler.
func NewCardHandler(cardService service.CardService, pagination Pagination, logger *slog.Logger) *CardHandler {
	if cardService == nil {
		// ALLOW-PANIC: constructor wiring error
		panic("cardService cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CardHandler{
		cardService: cardService,
		pagination:  pagination,
		logger:      logger.With(slog.String("component", "card_handler")),
	}
}

// ListMyCards handles GET /api/cards/my.
func (h *CardHandler) ListMyCards(w http.ResponseWriter, r *http.Request) {
	requester, err := requesterFromRequest(r)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	page, err := parsePageRequest(r, h.pagination.UserDefaultSize, h.pagination.MaxSize)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	search := strings.TrimSpace(r.URL.Query().Get("search"))
	cards, err := h.cardService.ListMyCards(r.Context(), requester, search, page)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, shared.NewPageResponse(cards, newCardResponse))
}

// GetCard handles GET /api/cards/{id}.
func (h *CardHandler) GetCard(w http.ResponseWriter, r *http.Request) {
	requester, err := requesterFromRequest(r)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	cardID, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	card, err := h.cardService.GetCard(r.Context(), cardID, requester)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, newCardResponse(*card))
}

// GetBalance handles GET /api/cards/{id}/balance.
func (h *CardHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	requester, err := requesterFromRequest(r)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	cardID, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	balance, err := h.cardService.GetBalance(r.Context(), cardID, requester)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, BalanceResponse{
		CardID:  cardID,
		Balance: moneyJSON(balance),
	})
}

// RequestBlock handles POST /api/cards/{id}/block-request.
func (h *CardHandler) RequestBlock(w http.ResponseWriter, r *http.Request) {
	requester, err := requesterFromRequest(r)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	cardID, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	card, err := h.cardService.RequestBlock(r.Context(), cardID, requester)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Info("card blocked by owner",
		slog.String("card_id", cardID.String()))
	shared.RespondWithJSON(w, r, http.StatusOK, newCardResponse(*card))
}

// Transfer handles POST /api/cards/transfer.
func (h *CardHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	requester, err := requesterFromRequest(r)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	var req TransferRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	err = h.cardService.Transfer(r.Context(), service.TransferParams{
		FromCardID:  req.FromCardID,
		ToCardID:    req.ToCardID,
		Amount:      req.Amount,
		Description: req.Description,
	}, requester)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}
