package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/bankcards-api/internal/domain"
	"github.com/phrazzld/bankcards-api/internal/service"
	"github.com/phrazzld/bankcards-api/internal/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockAuthService is a testify mock of service.AuthService.
type MockAuthService struct {
	mock.Mock
}

var _ service.AuthService = (*MockAuthService)(nil)

func authResult(args mock.Arguments) (*service.AuthResult, error) {
	if res, ok := args.Get(0).(*service.AuthResult); ok {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}

// Register is a mock implementation of service.AuthService.Register
func (m *MockAuthService) Register(
	ctx context.Context,
	username, email, password string,
) (*service.AuthResult, error) {
	return authResult(m.Called(ctx, username, email, password))
}

// Authenticate is a mock implementation of service.AuthService.Authenticate
func (m *MockAuthService) Authenticate(ctx context.Context, username, password string) (*service.AuthResult, error) {
	return authResult(m.Called(ctx, username, password))
}

// MockCardService is a testify mock of service.CardService.
type MockCardService struct {
	mock.Mock
}

var _ service.CardService = (*MockCardService)(nil)

func cardViewResult(args mock.Arguments) (*service.CardView, error) {
	if v, ok := args.Get(0).(*service.CardView); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

func cardPageResult(args mock.Arguments) (*domain.Page[service.CardView], error) {
	if p, ok := args.Get(0).(*domain.Page[service.CardView]); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

// CreateCard is a mock implementation of service.CardService.CreateCard
func (m *MockCardService) CreateCard(ctx context.Context, params service.CreateCardParams) (*service.CardView, error) {
	return cardViewResult(m.Called(ctx, params))
}

// ListAllCards is a mock implementation of service.CardService.ListAllCards
func (m *MockCardService) ListAllCards(
	ctx context.Context,
	filter store.CardFilter,
	page domain.PageRequest,
) (*domain.Page[service.CardView], error) {
	return cardPageResult(m.Called(ctx, filter, page))
}

// ListMyCards is a mock implementation of service.CardService.ListMyCards
func (m *MockCardService) ListMyCards(
	ctx context.Context,
	requester domain.Requester,
	search string,
	page domain.PageRequest,
) (*domain.Page[service.CardView], error) {
	return cardPageResult(m.Called(ctx, requester, search, page))
}

// GetCard is a mock implementation of service.CardService.GetCard
func (m *MockCardService) GetCard(
	ctx context.Context,
	id uuid.UUID,
	requester domain.Requester,
) (*service.CardView, error) {
	return cardViewResult(m.Called(ctx, id, requester))
}

// GetBalance is a mock implementation of service.CardService.GetBalance
func (m *MockCardService) GetBalance(
	ctx context.Context,
	id uuid.UUID,
	requester domain.Requester,
) (decimal.Decimal, error) {
	args := m.Called(ctx, id, requester)
	if d, ok := args.Get(0).(decimal.Decimal); ok {
		return d, args.Error(1)
	}
	return decimal.Zero, args.Error(1)
}

// RequestBlock is a mock implementation of service.CardService.RequestBlock
func (m *MockCardService) RequestBlock(
	ctx context.Context,
	id uuid.UUID,
	requester domain.Requester,
) (*service.CardView, error) {
	return cardViewResult(m.Called(ctx, id, requester))
}

// UpdateStatus is a mock implementation of service.CardService.UpdateStatus
func (m *MockCardService) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	status domain.CardStatus,
) (*service.CardView, error) {
	return cardViewResult(m.Called(ctx, id, status))
}

// DeleteCard is a mock implementation of service.CardService.DeleteCard
func (m *MockCardService) DeleteCard(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// Transfer is a mock implementation of service.CardService.Transfer
func (m *MockCardService) Transfer(
	ctx context.Context,
	params service.TransferParams,
	requester domain.Requester,
) error {
	return m.Called(ctx, params, requester).Error(0)
}

// MockUserService is a testify mock of service.UserService.
type MockUserService struct {
	mock.Mock
}

var _ service.UserService = (*MockUserService)(nil)

func userWithCardsResult(args mock.Arguments) (*service.UserWithCards, error) {
	if u, ok := args.Get(0).(*service.UserWithCards); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

// GetUser is a mock implementation of service.UserService.GetUser
func (m *MockUserService) GetUser(ctx context.Context, id uuid.UUID) (*service.UserWithCards, error) {
	return userWithCardsResult(m.Called(ctx, id))
}

// ListUsers is a mock implementation of service.UserService.ListUsers
func (m *MockUserService) ListUsers(
	ctx context.Context,
	search string,
	page domain.PageRequest,
) (*domain.Page[service.UserWithCards], error) {
	args := m.Called(ctx, search, page)
	if p, ok := args.Get(0).(*domain.Page[service.UserWithCards]); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

// UpdateUser is a mock implementation of service.UserService.UpdateUser
func (m *MockUserService) UpdateUser(
	ctx context.Context,
	id uuid.UUID,
	update service.UserUpdate,
) (*service.UserWithCards, error) {
	return userWithCardsResult(m.Called(ctx, id, update))
}

// BlockUser is a mock implementation of service.UserService.BlockUser
func (m *MockUserService) BlockUser(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// UnblockUser is a mock implementation of service.UserService.UnblockUser
func (m *MockUserService) UnblockUser(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// DeleteUser is a mock implementation of service.UserService.DeleteUser
func (m *MockUserService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}
