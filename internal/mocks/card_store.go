package mocks

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/bankcards-api/internal/domain"
	"github.com/phrazzld/bankcards-api/internal/store"
	"github.com/stretchr/testify/mock"
)

// MockCardStore is a testify mock of store.CardStore.
type MockCardStore struct {
	mock.Mock
}

var _ store.CardStore = (*MockCardStore)(nil)

func cardResult(args mock.Arguments) (*domain.Card, error) {
	if card, ok := args.Get(0).(*domain.Card); ok {
		return card, args.Error(1)
	}
	return nil, args.Error(1)
}

// Create is a mock implementation of store.CardStore.Create
func (m *MockCardStore) Create(ctx context.Context, card *domain.Card) error {
	return m.Called(ctx, card).Error(0)
}

// GetByID is a mock implementation of store.CardStore.GetByID
func (m *MockCardStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	return cardResult(m.Called(ctx, id))
}

// GetByIDForUpdate is a mock implementation of store.CardStore.GetByIDForUpdate
func (m *MockCardStore) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	return cardResult(m.Called(ctx, id))
}

// List is a mock implementation of store.CardStore.List
func (m *MockCardStore) List(
	ctx context.Context,
	filter store.CardFilter,
	page domain.PageRequest,
) (domain.Page[*domain.Card], error) {
	args := m.Called(ctx, filter, page)
	result, _ := args.Get(0).(domain.Page[*domain.Card])
	return result, args.Error(1)
}

// ListByOwners is a mock implementation of store.CardStore.ListByOwners
func (m *MockCardStore) ListByOwners(
	ctx context.Context,
	ownerIDs []uuid.UUID,
) (map[uuid.UUID][]*domain.Card, error) {
	args := m.Called(ctx, ownerIDs)
	result, _ := args.Get(0).(map[uuid.UUID][]*domain.Card)
	return result, args.Error(1)
}

// CountByOwner is a mock implementation of store.CardStore.CountByOwner
func (m *MockCardStore) CountByOwner(ctx context.Context, ownerID uuid.UUID) (int, error) {
	args := m.Called(ctx, ownerID)
	return args.Int(0), args.Error(1)
}

// UpdateStatus is a mock implementation of store.CardStore.UpdateStatus
func (m *MockCardStore) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.CardStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

// UpdateBalance is a mock implementation of store.CardStore.UpdateBalance
func (m *MockCardStore) UpdateBalance(ctx context.Context, card *domain.Card) error {
	return m.Called(ctx, card).Error(0)
}

// Delete is a mock implementation of store.CardStore.Delete
func (m *MockCardStore) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// WithTx returns m unless an explicit WithTx expectation was registered.
func (m *MockCardStore) WithTx(tx *sql.Tx) store.CardStore {
	if !hasExpectation(&m.Mock, "WithTx") {
		return m
	}
	if ret, ok := m.Called(tx).Get(0).(store.CardStore); ok {
		return ret
	}
	return m
}
