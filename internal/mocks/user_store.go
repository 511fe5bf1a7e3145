package mocks

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/bankcards-api/internal/domain"
	"github.com/phrazzld/bankcards-api/internal/store"
	"github.com/stretchr/testify/mock"
)

// MockUserStore is a testify mock of store.UserStore.
type MockUserStore struct {
	mock.Mock
}

var _ store.UserStore = (*MockUserStore)(nil)

func userResult(args mock.Arguments) (*domain.User, error) {
	if user, ok := args.Get(0).(*domain.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

// Create is a mock implementation of store.UserStore.Create
func (m *MockUserStore) Create(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

// GetByID is a mock implementation of store.UserStore.GetByID
func (m *MockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return userResult(m.Called(ctx, id))
}

// GetByUsername is a mock implementation of store.UserStore.GetByUsername
func (m *MockUserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return userResult(m.Called(ctx, username))
}

// ExistsByUsername is a mock implementation of store.UserStore.ExistsByUsername
func (m *MockUserStore) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

// ExistsByEmail is a mock implementation of store.UserStore.ExistsByEmail
func (m *MockUserStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

// Search is a mock implementation of store.UserStore.Search
func (m *MockUserStore) Search(
	ctx context.Context,
	term string,
	page domain.PageRequest,
) (domain.Page[*domain.User], error) {
	args := m.Called(ctx, term, page)
	result, _ := args.Get(0).(domain.Page[*domain.User])
	return result, args.Error(1)
}

// Update is a mock implementation of store.UserStore.Update
func (m *MockUserStore) Update(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

// SetEnabled is a mock implementation of store.UserStore.SetEnabled
func (m *MockUserStore) SetEnabled(ctx context.Context, id uuid.UUID, enabled bool) error {
	return m.Called(ctx, id, enabled).Error(0)
}

// Delete is a mock implementation of store.UserStore.Delete
func (m *MockUserStore) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// WithTx returns m unless an explicit WithTx expectation was registered.
func (m *MockUserStore) WithTx(tx *sql.Tx) store.UserStore {
	if !hasExpectation(&m.Mock, "WithTx") {
		return m
	}
	if ret, ok := m.Called(tx).Get(0).(store.UserStore); ok {
		return ret
	}
	return m
}

func hasExpectation(m *mock.Mock, method string) bool {
	for _, call := range m.ExpectedCalls {
		if call.Method == method {
			return true
		}
	}
	return false
}
