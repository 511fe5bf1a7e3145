package api

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/bankcards-api/internal/domain"
	"github.com/phrazzld/bankcards-api/internal/service"
	"github.com/shopspring/decimal"
)

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	Token     string      `json:"token"`
	TokenType string      `json:"token_type"`
	ExpiresAt string      `json:"expires_at"`
	UserID    uuid.UUID   `json:"user_id"`
	Username  string      `json:"username"`
	Role      domain.Role `json:"role"`
}

// CreateCardRequest defines the payload for issuing a card.
type CreateCardRequest struct {
	Number         string           `json:"card_number"     validate:"required,cardnumber"`
	HolderName     string           `json:"holder_name"     validate:"required,min=2,max=100,holdername"`
	ExpirationDate string           `json:"expiration_date" validate:"required,futuredate"`
	Balance        *decimal.Decimal `json:"balance"         validate:"required,money"`
	UserID         uuid.UUID        `json:"user_id"         validate:"required"`
}

// TransferRequest defines the payload for a transfer between own cards.
type TransferRequest struct {
	FromCardID  uuid.UUID       `json:"from_card_id" validate:"required"`
	ToCardID    uuid.UUID       `json:"to_card_id"   validate:"required"`
	Amount      decimal.Decimal `json:"amount"       validate:"money,positive"`
	Description string          `json:"description"  validate:"required,max=255"`
}

// UpdateUserRequest defines the payload for overwriting a user.
type UpdateUserRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email"    validate:"required,email"`
	Role     string `json:"role"     validate:"required,oneof=USER ADMIN"`
	Enabled  *bool  `json:"enabled"  validate:"required"`
}

// CardResponse is the owner's and the admin's view of a card.
type CardResponse struct {
	ID             uuid.UUID         `json:"id"`
	MaskedNumber   string            `json:"masked_number"`
	HolderName     string            `json:"holder_name"`
	ExpirationDate string            `json:"expiration_date"`
	Status         domain.CardStatus `json:"status"`
	Balance        json.Number       `json:"balance"`
}

// CardSummary is a card listed under its owner; it omits the balance.
type CardSummary struct {
	ID             uuid.UUID         `json:"id"`
	MaskedNumber   string            `json:"masked_number"`
	HolderName     string            `json:"holder_name"`
	ExpirationDate string            `json:"expiration_date"`
	Status         domain.CardStatus `json:"status"`
}

// BalanceResponse reports the balance of one card.
type BalanceResponse struct {
	CardID  uuid.UUID   `json:"card_id"`
	Balance json.Number `json:"balance"`
}

// UserResponse is the admin's view of a user and its cards.
type UserResponse struct {
	ID       uuid.UUID     `json:"id"`
	Username string        `json:"username"`
	Email    string        `json:"email"`
	Role     domain.Role   `json:"role"`
	Enabled  bool          `json:"enabled"`
	Cards    []CardSummary `json:"cards"`
}

// moneyJSON renders an amount as a JSON number with two decimals.
func moneyJSON(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(2))
}

func newCardResponse(v service.CardView) CardResponse {
	return CardResponse{
		ID:             v.Card.ID,
		MaskedNumber:   v.MaskedNumber,
		HolderName:     v.Card.HolderName,
		ExpirationDate: v.Card.ExpirationDate.Format(time.DateOnly),
		Status:         v.Card.Status,
		Balance:        moneyJSON(v.Card.Balance),
	}
}

func newCardSummary(v service.CardView) CardSummary {
	return CardSummary{
		ID:             v.Card.ID,
		MaskedNumber:   v.MaskedNumber,
		HolderName:     v.Card.HolderName,
		ExpirationDate: v.Card.ExpirationDate.Format(time.DateOnly),
		Status:         v.Card.Status,
	}
}

func newUserResponse(u service.UserWithCards) UserResponse {
	cards := make([]CardSummary, 0, len(u.Cards))
	for _, c := range u.Cards {
		cards = append(cards, newCardSummary(c))
	}
	return UserResponse{
		ID:       u.User.ID,
		Username: u.User.Username,
		Email:    u.User.Email,
		Role:     u.User.Role,
		Enabled:  u.User.Enabled,
		Cards:    cards,
	}
}

func newAuthResponse(res *service.AuthResult) AuthResponse {
	return AuthResponse{
		Token:     res.Token,
		TokenType: "Bearer",
		ExpiresAt: res.ExpiresAt.UTC().Format(time.RFC3339),
		UserID:    res.UserID,
		Username:  res.Username,
		Role:      res.Role,
	}
}
