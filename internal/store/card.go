package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/bankcards-api/internal/domain"
)

// CardFilter narrows card listings. Zero values mean "no restriction".
type CardFilter struct {
	OwnerID *uuid.UUID
	// HolderSearch is a case-insensitive substring of the holder name.
	HolderSearch string
	Status       *domain.CardStatus
}

// CardStore defines the interface for card data persistence.
type CardStore interface {
	// Create saves a new card. Returns ErrInvalidEntity if the owner does not exist.
	Create(ctx context.Context, card *domain.Card) error

	// GetByID retrieves a card by its unique ID.
	// Returns ErrCardNotFound if the card does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error)

	// GetByIDForUpdate retrieves a card and locks its row until the surrounding
	// transaction ends. Only meaningful on a store obtained through WithTx.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Card, error)

	// List returns a page of cards matching filter, newest first.
	List(ctx context.Context, filter CardFilter, page domain.PageRequest) (domain.Page[*domain.Card], error)

	// ListByOwners returns every card of the given owners, grouped by owner ID.
	ListByOwners(ctx context.Context, ownerIDs []uuid.UUID) (map[uuid.UUID][]*domain.Card, error)

	// CountByOwner returns the number of cards owned by ownerID.
	CountByOwner(ctx context.Context, ownerID uuid.UUID) (int, error)

	// UpdateStatus overwrites the status of a card.
	// Returns ErrCardNotFound if the card does not exist.
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.CardStatus) error

	// UpdateBalance overwrites the balance of a card.
	// Returns ErrCardNotFound if the card does not exist.
	UpdateBalance(ctx context.Context, card *domain.Card) error

	// Delete removes a card.
	// Returns ErrCardNotFound if the card does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new CardStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) CardStore
}
