package service_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/bankcards-api/internal/domain"
	"github.com/phrazzld/bankcards-api/internal/service"
	"github.com/phrazzld/bankcards-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func transfer(from, to *domain.Card, amount string) service.TransferParams {
	return service.TransferParams{
		FromCardID:  from.ID,
		ToCardID:    to.ID,
		Amount:      dec(amount),
		Description: "rent",
	}
}

func TestCardService_Transfer(t *testing.T) {
	ownerID := uuid.New()
	owner := domain.Requester{UserID: ownerID, Role: domain.RoleUser}

	t.Run("moves funds and keeps the total", func(t *testing.T) {
		f := setupCardService(t)
		from := f.card(t, ownerID, "1000.00")
		to := f.card(t, ownerID, "500.00")
		total := from.Balance.Add(to.Balance)

		f.tx.commits()
		f.cards.On("UpdateBalance", mock.Anything, from).Return(nil).Once()
		f.cards.On("UpdateBalance", mock.Anything, to).Return(nil).Once()

		require.NoError(t, f.svc.Transfer(context.Background(), transfer(from, to, "100.00"), owner))

		assert.Equal(t, "900.00", from.Balance.StringFixed(2))
		assert.Equal(t, "600.00", to.Balance.StringFixed(2))
		assert.True(t, total.Equal(from.Balance.Add(to.Balance)))
	})

	t.Run("whole balance can be moved", func(t *testing.T) {
		f := setupCardService(t)
		from := f.card(t, ownerID, "0.01")
		to := f.card(t, ownerID, "0")

		f.tx.commits()
		f.cards.On("UpdateBalance", mock.Anything, mock.Anything).Return(nil).Twice()

		require.NoError(t, f.svc.Transfer(context.Background(), transfer(from, to, "0.01"), owner))
		assert.True(t, from.Balance.IsZero())
		assert.False(t, from.Balance.IsNegative())
	})

	t.Run("locks cards in ascending id order", func(t *testing.T) {
		f := setupCardService(t)
		a := f.card(t, ownerID, "10")
		b := f.card(t, ownerID, "10")
		from, to := a, b
		if a.ID.String() < b.ID.String() {
			from, to = b, a
		}

		var locked []uuid.UUID
		f.cards.ExpectedCalls = nil
		for _, c := range []*domain.Card{a, b} {
			c := c
			f.cards.On("GetByIDForUpdate", mock.Anything, c.ID).
				Run(func(mock.Arguments) { locked = append(locked, c.ID) }).
				Return(c, nil).Once()
		}
		f.tx.commits()
		f.cards.On("UpdateBalance", mock.Anything, mock.Anything).Return(nil).Twice()

		require.NoError(t, f.svc.Transfer(context.Background(), transfer(from, to, "1"), owner))
		require.Len(t, locked, 2)
		assert.Equal(t, to.ID, locked[0], "lower id must be locked first")
	})

	t.Run("insufficient funds changes nothing", func(t *testing.T) {
		f := setupCardService(t)
		from := f.card(t, ownerID, "50.00")
		to := f.card(t, ownerID, "10.00")
		f.tx.rollsBack()

		err := f.svc.Transfer(context.Background(), transfer(from, to, "50.01"), owner)
		assert.ErrorIs(t, err, service.ErrInsufficientFunds)
		assert.Equal(t, "50.00", from.Balance.StringFixed(2))
		assert.Equal(t, "10.00", to.Balance.StringFixed(2))
		f.cards.AssertNotCalled(t, "UpdateBalance", mock.Anything, mock.Anything)
	})

	t.Run("requester must own both cards", func(t *testing.T) {
		for name, requester := range map[string]domain.Requester{
			"other user": {UserID: uuid.New(), Role: domain.RoleUser},
			"admin":      {UserID: uuid.New(), Role: domain.RoleAdmin},
		} {
			t.Run(name, func(t *testing.T) {
				f := setupCardService(t)
				from := f.card(t, ownerID, "100")
				to := f.card(t, requester.UserID, "0")
				f.tx.rollsBack()

				err := f.svc.Transfer(context.Background(), transfer(from, to, "1"), requester)
				assert.ErrorIs(t, err, service.ErrNotCardOwner)
				assert.Equal(t, "100", from.Balance.String())
				assert.True(t, to.Balance.IsZero())
			})
		}

		t.Run("destination owned by someone else", func(t *testing.T) {
			f := setupCardService(t)
			from := f.card(t, ownerID, "100")
			to := f.card(t, uuid.New(), "0")
			f.tx.rollsBack()

			err := f.svc.Transfer(context.Background(), transfer(from, to, "1"), owner)
			assert.ErrorIs(t, err, service.ErrNotCardOwner)
		})
	})

	t.Run("inactive cards", func(t *testing.T) {
		cases := []struct {
			name    string
			fromOpt cardOpt
			toOpt   cardOpt
			wantErr error
		}{
			{"blocked source", withStatus(domain.CardStatusBlocked), withStatus(domain.CardStatusActive), service.ErrCardNotActive},
			{"blocked destination", withStatus(domain.CardStatusActive), withStatus(domain.CardStatusBlocked), service.ErrCardNotActive},
			{"expired source", withExpiration(testNow.AddDate(0, 0, -1)), withStatus(domain.CardStatusActive), service.ErrCardExpired},
			{"expired status on destination", withStatus(domain.CardStatusActive), withStatus(domain.CardStatusExpired), service.ErrCardNotActive},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				f := setupCardService(t)
				from := f.card(t, ownerID, "100", tc.fromOpt)
				to := f.card(t, ownerID, "0", tc.toOpt)
				f.tx.rollsBack()

				err := f.svc.Transfer(context.Background(), transfer(from, to, "1"), owner)
				assert.ErrorIs(t, err, tc.wantErr)
				assert.ErrorIs(t, err, service.ErrOperationNotAllowed)
				assert.Equal(t, "100", from.Balance.String())
			})
		}
	})

	t.Run("missing cards are reported by side", func(t *testing.T) {
		f := setupCardService(t)
		existing := f.card(t, ownerID, "100")
		missing := uuid.New()
		f.cards.On("GetByIDForUpdate", mock.Anything, missing).Return(nil, store.ErrCardNotFound)

		f.tx.rollsBack()
		err := f.svc.Transfer(context.Background(), service.TransferParams{
			FromCardID: missing, ToCardID: existing.ID, Amount: dec("1"), Description: "x",
		}, owner)
		assert.ErrorIs(t, err, service.ErrSourceCardNotFound)
		assert.ErrorIs(t, err, store.ErrCardNotFound)

		f.tx.rollsBack()
		err = f.svc.Transfer(context.Background(), service.TransferParams{
			FromCardID: existing.ID, ToCardID: missing, Amount: dec("1"), Description: "x",
		}, owner)
		assert.ErrorIs(t, err, service.ErrDestinationCardNotFound)
		assert.False(t, errors.Is(err, service.ErrSourceCardNotFound))
	})

	t.Run("both cards missing reports the source", func(t *testing.T) {
		f := setupCardService(t)
		low, high := uuid.New(), uuid.New()
		if bytes.Compare(high[:], low[:]) < 0 {
			low, high = high, low
		}
		f.cards.On("GetByIDForUpdate", mock.Anything, low).Return(nil, store.ErrCardNotFound)
		f.cards.On("GetByIDForUpdate", mock.Anything, high).Return(nil, store.ErrCardNotFound)

		f.tx.rollsBack()
		err := f.svc.Transfer(context.Background(), service.TransferParams{
			FromCardID: high, ToCardID: low, Amount: dec("1"), Description: "x",
		}, owner)
		assert.ErrorIs(t, err, service.ErrSourceCardNotFound)
		assert.False(t, errors.Is(err, service.ErrDestinationCardNotFound))
	})

	t.Run("failed second write rolls back", func(t *testing.T) {
		f := setupCardService(t)
		from := f.card(t, ownerID, "100")
		to := f.card(t, ownerID, "0")
		f.tx.rollsBack()
		f.cards.On("UpdateBalance", mock.Anything, from).Return(nil).Once()
		f.cards.On("UpdateBalance", mock.Anything, to).Return(errors.New("connection reset")).Once()

		err := f.svc.Transfer(context.Background(), transfer(from, to, "1"), owner)
		require.Error(t, err)
		var svcErr *service.ServiceError
		assert.ErrorAs(t, err, &svcErr)
	})

	t.Run("self transfer", func(t *testing.T) {
		f := setupCardService(t)
		c := newTestCard(t, f.cipher, ownerID, "100")

		err := f.svc.Transfer(context.Background(), transfer(c, c, "1"), owner)
		assert.ErrorIs(t, err, service.ErrSelfTransfer)
		assert.ErrorIs(t, err, service.ErrOperationNotAllowed)
	})

	t.Run("invalid parameters", func(t *testing.T) {
		f := setupCardService(t)
		a, b := uuid.New(), uuid.New()
		long := make([]byte, service.MaxTransferDescriptionLength+1)
		for i := range long {
			long[i] = 'x'
		}

		for name, params := range map[string]service.TransferParams{
			"zero amount":      {FromCardID: a, ToCardID: b, Amount: dec("0"), Description: "x"},
			"negative amount":  {FromCardID: a, ToCardID: b, Amount: dec("-5"), Description: "x"},
			"three decimals":   {FromCardID: a, ToCardID: b, Amount: dec("1.005"), Description: "x"},
			"no description":   {FromCardID: a, ToCardID: b, Amount: dec("1"), Description: "  "},
			"long description": {FromCardID: a, ToCardID: b, Amount: dec("1"), Description: string(long)},
		} {
			err := f.svc.Transfer(context.Background(), params, owner)
			assert.ErrorIs(t, err, domain.ErrValidation, name)
		}
	})
}
