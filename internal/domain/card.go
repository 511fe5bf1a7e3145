package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Card-specific validation errors
var (
	// ErrCardIDEmpty is returned when a card ID is empty or nil.
	ErrCardIDEmpty = errors.New("card ID cannot be empty")

	// ErrCardOwnerIDEmpty is returned when a card has no owner.
	ErrCardOwnerIDEmpty = errors.New("card owner ID cannot be empty")

	// ErrCardNumberEmpty is returned when the encrypted card number is missing.
	ErrCardNumberEmpty = errors.New("card number cannot be empty")

	// ErrHolderNameEmpty is returned when the card holder name is blank.
	ErrHolderNameEmpty = errors.New("card holder name cannot be empty")

	// ErrExpirationDateEmpty is returned when the expiration date is not set.
	ErrExpirationDateEmpty = errors.New("card expiration date cannot be empty")

	// ErrNegativeBalance is returned when a balance would drop below zero.
	ErrNegativeBalance = errors.New("card balance cannot be negative")

	// ErrInvalidAmountScale is returned for amounts with more than two fractional digits.
	ErrInvalidAmountScale = errors.New("amount must have at most 2 fractional digits")

	// ErrNonPositiveAmount is returned when a transfer amount is zero or negative.
	ErrNonPositiveAmount = errors.New("amount must be greater than zero")

	// ErrInvalidCardStatus is returned for an unknown status value.
	ErrInvalidCardStatus = errors.New("invalid card status")
)

// CardStatus is the lifecycle state of a card.
type CardStatus string

const (
	CardStatusActive  CardStatus = "ACTIVE"
	CardStatusBlocked CardStatus = "BLOCKED"
	CardStatusExpired CardStatus = "EXPIRED"
)

// Valid reports whether s is a known status.
func (s CardStatus) Valid() bool {
	switch s {
	case CardStatusActive, CardStatusBlocked, CardStatusExpired:
		return true
	}
	return false
}

// ParseCardStatus parses a status name case-insensitively.
func ParseCardStatus(s string) (CardStatus, error) {
	status := CardStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !status.Valid() {
		return "", ErrInvalidCardStatus
	}
	return status, nil
}

// Card is a bank card owned by exactly one user.
// The card number is only ever held in encrypted form.
type Card struct {
	ID              uuid.UUID       `json:"id"`
	OwnerID         uuid.UUID       `json:"owner_id"`
	EncryptedNumber string          `json:"-"`
	HolderName      string          `json:"holder_name"`
	ExpirationDate  time.Time       `json:"expiration_date"`
	Balance         decimal.Decimal `json:"balance"`
	Status          CardStatus      `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// NewCard creates a card for ownerID. The initial status is EXPIRED when the
// expiration date is already past at now, otherwise ACTIVE.
func NewCard(
	ownerID uuid.UUID,
	encryptedNumber string,
	holderName string,
	expirationDate time.Time,
	balance decimal.Decimal,
	now time.Time,
) (*Card, error) {
	card := &Card{
		ID:              uuid.New(),
		OwnerID:         ownerID,
		EncryptedNumber: encryptedNumber,
		HolderName:      strings.TrimSpace(holderName),
		ExpirationDate:  DateOnly(expirationDate),
		Balance:         balance,
		Status:          CardStatusActive,
		CreatedAt:       now.UTC(),
		UpdatedAt:       now.UTC(),
	}
	card.RefreshStatus(now)

	if err := card.Validate(); err != nil {
		return nil, err
	}

	return card, nil
}

// Validate checks if the Card has valid data.
func (c *Card) Validate() error {
	if c.ID == uuid.Nil {
		return ErrCardIDEmpty
	}
	if c.OwnerID == uuid.Nil {
		return ErrCardOwnerIDEmpty
	}
	if c.EncryptedNumber == "" {
		return ErrCardNumberEmpty
	}
	if c.HolderName == "" {
		return ErrHolderNameEmpty
	}
	if c.ExpirationDate.IsZero() {
		return ErrExpirationDateEmpty
	}
	if c.Balance.IsNegative() {
		return ErrNegativeBalance
	}
	if !HasMoneyScale(c.Balance) {
		return ErrInvalidAmountScale
	}
	if !c.Status.Valid() {
		return ErrInvalidCardStatus
	}
	return nil
}

// IsExpired reports whether the expiration date lies strictly before the
// calendar day of now.
func (c *Card) IsExpired(now time.Time) bool {
	return c.ExpirationDate.Before(DateOnly(now))
}

// RefreshStatus moves the card to EXPIRED once its expiration date has passed.
// It reports whether the status changed.
func (c *Card) RefreshStatus(now time.Time) bool {
	if c.Status != CardStatusExpired && c.IsExpired(now) {
		c.Status = CardStatusExpired
		return true
	}
	return false
}

// IsActive reports whether the card can take part in transfers at now.
func (c *Card) IsActive(now time.Time) bool {
	return c.Status == CardStatusActive && !c.IsExpired(now)
}

// Debit subtracts amount from the balance.
func (c *Card) Debit(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrNonPositiveAmount
	}
	next := c.Balance.Sub(amount)
	if next.IsNegative() {
		return ErrNegativeBalance
	}
	c.Balance = next
	return nil
}

// Credit adds amount to the balance.
func (c *Card) Credit(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrNonPositiveAmount
	}
	c.Balance = c.Balance.Add(amount)
	return nil
}

// DateOnly truncates t to midnight UTC of its calendar day.
func DateOnly(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// HasMoneyScale reports whether d has at most two fractional digits.
func HasMoneyScale(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(2))
}
