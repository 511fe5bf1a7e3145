package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/phrazzld/bankcards-api/internal/cardcrypt"
	"github.com/phrazzld/bankcards-api/internal/domain"
	"github.com/phrazzld/bankcards-api/internal/platform/logger"
	"github.com/phrazzld/bankcards-api/internal/store"
	"github.com/shopspring/decimal"
)

// MaxTransferDescriptionLength bounds the free-text transfer description.
const MaxTransferDescriptionLength = 255

// transferTxOptions pins transfers to READ COMMITTED; the row locks taken by
// lockPair serialize concurrent transfers over the same cards.
var transferTxOptions = &sql.TxOptions{Isolation: sql.LevelReadCommitted}

// CreateCardParams describes a card issued by an administrator.
type CreateCardParams struct {
	OwnerID        uuid.UUID
	Number         string
	HolderName     string
	ExpirationDate time.Time
	Balance        decimal.Decimal
}

// TransferParams describes a transfer between two cards of the requester.
type TransferParams struct {
	FromCardID  uuid.UUID
	ToCardID    uuid.UUID
	Amount      decimal.Decimal
	Description string
}

// CardService provides card-related operations
type CardService interface {
	// CreateCard issues a card to an existing user. The number is stored encrypted.
	CreateCard(ctx context.Context, params CreateCardParams) (*CardView, error)

	// ListAllCards returns a page of every card matching filter (admin view).
	ListAllCards(ctx context.Context, filter store.CardFilter, page domain.PageRequest) (*domain.Page[CardView], error)

	// ListMyCards returns a page of the requester's own cards, optionally
	// narrowed by a holder-name substring.
	ListMyCards(
		ctx context.Context,
		requester domain.Requester,
		search string,
		page domain.PageRequest,
	) (*domain.Page[CardView], error)

	// GetCard returns a card the requester may access.
	GetCard(ctx context.Context, id uuid.UUID, requester domain.Requester) (*CardView, error)

	// GetBalance returns the balance of a card the requester may access.
	GetBalance(ctx context.Context, id uuid.UUID, requester domain.Requester) (decimal.Decimal, error)

	// RequestBlock blocks one of the requester's own active cards.
	RequestBlock(ctx context.Context, id uuid.UUID, requester domain.Requester) (*CardView, error)

	// UpdateStatus overwrites the status of any card (admin). An expired card cannot be activated.
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.CardStatus) (*CardView, error)

	// DeleteCard removes a card whose balance is zero (admin).
	DeleteCard(ctx context.Context, id uuid.UUID) error

	// Transfer moves funds between two active cards owned by the requester in one transaction.
	Transfer(ctx context.Context, params TransferParams, requester domain.Requester) error
}

// CardServiceOption customizes a card service.
type CardServiceOption func(*cardServiceImpl)

// WithClock replaces the time source used for expiry checks.
func WithClock(now func() time.Time) CardServiceOption {
	return func(s *cardServiceImpl) {
		s.now = now
	}
}

// cardServiceImpl implements the CardService interface
type cardServiceImpl struct {
	cardStore store.CardStore
	userStore store.UserStore
	cipher    cardcrypt.Cipher
	presenter cardPresenter
	db        *sql.DB
	now       func() time.Time
	logger    *slog.Logger
}

// NewCardService creates a new card service.
func NewCardService(
	cardStore store.CardStore,
	userStore store.UserStore,
	cipher cardcrypt.Cipher,
	db *sql.DB,
	logger *slog.Logger,
	opts ...CardServiceOption,
) CardService {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "card_service")

	s := &cardServiceImpl{
		cardStore: cardStore,
		userStore: userStore,
		cipher:    cipher,
		presenter: cardPresenter{cipher: cipher, logger: logger},
		db:        db,
		now:       time.Now,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateCard implements CardService.
func (s *cardServiceImpl) CreateCard(ctx context.Context, params CreateCardParams) (*CardView, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	number := strings.ReplaceAll(params.Number, " ", "")
	if !domain.IsValidCardNumber(number) {
		return nil, domain.NewValidationError("number", "must be 16 to 19 digits", domain.ErrInvalidFormat)
	}

	if _, err := s.userStore.GetByID(ctx, params.OwnerID); err != nil {
		return nil, s.wrap(ctx, "create card", err)
	}

	encrypted, err := s.cipher.Encrypt(number)
	if err != nil {
		return nil, s.wrap(ctx, "create card", err)
	}

	card, err := domain.NewCard(
		params.OwnerID,
		encrypted,
		params.HolderName,
		params.ExpirationDate,
		params.Balance,
		s.now(),
	)
	if err != nil {
		return nil, domain.NewValidationError("card", err.Error(), err)
	}

	if err := s.cardStore.Create(ctx, card); err != nil {
		return nil, s.wrap(ctx, "create card", err)
	}

	log.Info("card created",
		"card_id", card.ID,
		"owner_id", card.OwnerID,
		"status", card.Status)

	view := s.presenter.view(card)
	return &view, nil
}

// ListAllCards implements CardService.
func (s *cardServiceImpl) ListAllCards(
	ctx context.Context,
	filter store.CardFilter,
	page domain.PageRequest,
) (*domain.Page[CardView], error) {
	filter.HolderSearch = strings.TrimSpace(filter.HolderSearch)
	return s.list(ctx, filter, page)
}

// ListMyCards implements CardService.
func (s *cardServiceImpl) ListMyCards(
	ctx context.Context,
	requester domain.Requester,
	search string,
	page domain.PageRequest,
) (*domain.Page[CardView], error) {
	if requester.UserID == uuid.Nil {
		return nil, domain.ErrUnauthorized
	}
	owner := requester.UserID
	return s.list(ctx, store.CardFilter{OwnerID: &owner, HolderSearch: strings.TrimSpace(search)}, page)
}

func (s *cardServiceImpl) list(
	ctx context.Context,
	filter store.CardFilter,
	page domain.PageRequest,
) (*domain.Page[CardView], error) {
	cards, err := s.cardStore.List(ctx, filter, page)
	if err != nil {
		return nil, s.wrap(ctx, "list cards", err)
	}
	result := domain.MapPage(cards, s.presenter.view)
	return &result, nil
}

// GetCard implements CardService.
func (s *cardServiceImpl) GetCard(ctx context.Context, id uuid.UUID, requester domain.Requester) (*CardView, error) {
	card, err := s.accessible(ctx, id, requester)
	if err != nil {
		return nil, s.wrap(ctx, "get card", err)
	}
	view := s.presenter.view(card)
	return &view, nil
}

// GetBalance implements CardService.
func (s *cardServiceImpl) GetBalance(
	ctx context.Context,
	id uuid.UUID,
	requester domain.Requester,
) (decimal.Decimal, error) {
	card, err := s.accessible(ctx, id, requester)
	if err != nil {
		return decimal.Zero, s.wrap(ctx, "get balance", err)
	}
	return card.Balance, nil
}

func (s *cardServiceImpl) accessible(
	ctx context.Context,
	id uuid.UUID,
	requester domain.Requester,
) (*domain.Card, error) {
	card, err := s.cardStore.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !requester.CanAccessCard(card) {
		return nil, ErrNotCardOwner
	}
	return card, nil
}

// RequestBlock implements CardService.
// A card found expired is persisted as EXPIRED before the request is refused.
func (s *cardServiceImpl) RequestBlock(
	ctx context.Context,
	id uuid.UUID,
	requester domain.Requester,
) (*CardView, error) {
	var (
		card     *domain.Card
		rejected error
	)

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		cards := s.cardStore.WithTx(tx)

		var err error
		card, err = cards.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !requester.Owns(card) {
			return ErrNotCardOwner
		}

		if card.RefreshStatus(s.now()) {
			if err := cards.UpdateStatus(ctx, card.ID, card.Status); err != nil {
				return err
			}
		}

		switch card.Status {
		case domain.CardStatusExpired:
			rejected = ErrCardExpired
			return nil
		case domain.CardStatusBlocked:
			rejected = ErrCardAlreadyBlocked
			return nil
		}

		card.Status = domain.CardStatusBlocked
		return cards.UpdateStatus(ctx, card.ID, card.Status)
	})
	if err == nil {
		err = rejected
	}
	if err != nil {
		return nil, s.wrap(ctx, "request block", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("card blocked on owner request",
		"card_id", id,
		"user_id", requester.UserID)

	view := s.presenter.view(card)
	return &view, nil
}

// UpdateStatus implements CardService.
func (s *cardServiceImpl) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	status domain.CardStatus,
) (*CardView, error) {
	if !status.Valid() {
		return nil, domain.NewValidationError("status", "must be one of ACTIVE, BLOCKED, EXPIRED", domain.ErrInvalidCardStatus)
	}

	var (
		card     *domain.Card
		rejected error
	)

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		cards := s.cardStore.WithTx(tx)

		var err error
		card, err = cards.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}

		if status == domain.CardStatusActive && card.IsExpired(s.now()) {
			rejected = ErrCannotActivateExpired
			if card.RefreshStatus(s.now()) {
				return cards.UpdateStatus(ctx, card.ID, card.Status)
			}
			return nil
		}

		card.Status = status
		return cards.UpdateStatus(ctx, card.ID, card.Status)
	})
	if err == nil {
		err = rejected
	}
	if err != nil {
		return nil, s.wrap(ctx, "update status", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("card status updated",
		"card_id", id,
		"status", status)

	view := s.presenter.view(card)
	return &view, nil
}

// DeleteCard implements CardService.
func (s *cardServiceImpl) DeleteCard(ctx context.Context, id uuid.UUID) error {
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		cards := s.cardStore.WithTx(tx)

		card, err := cards.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !card.Balance.IsZero() {
			return ErrCardHasBalance
		}
		return cards.Delete(ctx, id)
	})
	if err != nil {
		return s.wrap(ctx, "delete card", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("card deleted", "card_id", id)
	return nil
}

// Transfer implements CardService.
func (s *cardServiceImpl) Transfer(ctx context.Context, params TransferParams, requester domain.Requester) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := validateTransfer(params); err != nil {
		return err
	}
	if params.FromCardID == params.ToCardID {
		return s.wrap(ctx, "transfer", ErrSelfTransfer)
	}

	err := store.RunInTransactionWithOptions(ctx, s.db, transferTxOptions, func(
		ctx context.Context,
		tx *sql.Tx,
	) error {
		from, to, err := s.lockPair(ctx, s.cardStore.WithTx(tx), params.FromCardID, params.ToCardID)
		if err != nil {
			return err
		}

		if !requester.Owns(from) || !requester.Owns(to) {
			return ErrNotCardOwner
		}

		now := s.now()
		if from.IsExpired(now) || to.IsExpired(now) {
			return ErrCardExpired
		}
		if !from.IsActive(now) || !to.IsActive(now) {
			return ErrCardNotActive
		}

		if from.Balance.LessThan(params.Amount) {
			return ErrInsufficientFunds
		}
		if err := from.Debit(params.Amount); err != nil {
			return err
		}
		if err := to.Credit(params.Amount); err != nil {
			return err
		}

		cards := s.cardStore.WithTx(tx)
		if err := cards.UpdateBalance(ctx, from); err != nil {
			return err
		}
		return cards.UpdateBalance(ctx, to)
	})
	if err != nil {
		return s.wrap(ctx, "transfer", err)
	}

	log.Info("transfer completed",
		"from_card_id", params.FromCardID,
		"to_card_id", params.ToCardID,
		"amount", params.Amount.StringFixed(2),
		"description", params.Description,
		"user_id", requester.UserID)
	return nil
}

// lockPair locks both cards in ascending id order so that concurrent
// transfers over the same pair cannot deadlock. A missing source card is
// reported ahead of a missing destination regardless of lock order.
func (s *cardServiceImpl) lockPair(
	ctx context.Context,
	cards store.CardStore,
	fromID, toID uuid.UUID,
) (*domain.Card, *domain.Card, error) {
	type side struct {
		id      uuid.UUID
		card    *domain.Card
		missing bool
	}
	first := &side{id: fromID}
	second := &side{id: toID}
	from, to := first, second
	if bytes.Compare(toID[:], fromID[:]) < 0 {
		first, second = second, first
	}

	for _, sd := range []*side{first, second} {
		card, err := cards.GetByIDForUpdate(ctx, sd.id)
		if err != nil {
			if !errors.Is(err, store.ErrCardNotFound) {
				return nil, nil, err
			}
			sd.missing = true
			continue
		}
		sd.card = card
	}

	switch {
	case from.missing:
		return nil, nil, ErrSourceCardNotFound
	case to.missing:
		return nil, nil, ErrDestinationCardNotFound
	}
	return from.card, to.card, nil
}

func validateTransfer(params TransferParams) error {
	if !params.Amount.IsPositive() {
		return domain.NewValidationError("amount", "must be at least 0.01", domain.ErrNonPositiveAmount)
	}
	if !domain.HasMoneyScale(params.Amount) {
		return domain.NewValidationError("amount", "must have at most 2 fractional digits", domain.ErrInvalidAmountScale)
	}
	description := strings.TrimSpace(params.Description)
	if description == "" {
		return domain.NewValidationError("description", "is required", nil)
	}
	if utf8.RuneCountInString(description) > MaxTransferDescriptionLength {
		return domain.NewValidationError("description",
			fmt.Sprintf("must be at most %d characters", MaxTransferDescriptionLength), nil)
	}
	return nil
}

// wrap passes expected outcomes through unchanged and logs everything else.
func (s *cardServiceImpl) wrap(ctx context.Context, operation string, err error) error {
	log := logger.FromContextOrDefault(ctx, s.logger)
	switch {
	case store.IsNotFoundError(err),
		errors.Is(err, ErrOperationNotAllowed),
		errors.Is(err, ErrInsufficientFunds),
		errors.Is(err, domain.ErrValidation):
		log.Debug("card operation rejected",
			"operation", operation,
			"reason", err)
		return fmt.Errorf("%s: %w", operation, err)
	}
	log.Error("card operation failed",
		"operation", operation,
		"error", err)
	return NewServiceError("card", operation, err)
}
