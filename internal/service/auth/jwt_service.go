package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/bankcards-api/internal/domain"
)

// JWTService defines operations for managing JWT authentication tokens.
type JWTService interface {
	// GenerateToken creates a signed access token for the user and role.
	// Returns the token string together with its expiry time.
	GenerateToken(ctx context.Context, userID uuid.UUID, role domain.Role) (string, time.Time, error)

	// ValidateToken validates the provided access token string and extracts the claims.
	// Returns ErrExpiredToken, ErrTokenNotYetValid, ErrWrongTokenType or ErrInvalidToken on failure.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims represents the custom claims structure for the JWT tokens.
type Claims struct {
	// UserID is the unique identifier of the user the token was issued for.
	UserID uuid.UUID `json:"uid,omitempty"`

	// Role is the user's role at the time the token was issued.
	// Authorization re-reads the role from the user record; this copy is informational.
	Role domain.Role `json:"role,omitempty"`

	// TokenType is always "access" for tokens issued by this service.
	TokenType string `json:"type,omitempty"`

	Subject   string    `json:"sub,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}
