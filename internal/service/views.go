package service

import (
	"log/slog"

	"github.com/phrazzld/bankcards-api/internal/cardcrypt"
	"github.com/phrazzld/bankcards-api/internal/domain"
)

// CardView is a card prepared for display: the number is only present masked.
type CardView struct {
	Card         *domain.Card
	MaskedNumber string
}

// UserWithCards is a user together with every card it owns.
type UserWithCards struct {
	User  *domain.User
	Cards []CardView
}

// cardPresenter decrypts and masks card numbers for views.
type cardPresenter struct {
	cipher cardcrypt.Cipher
	logger *slog.Logger
}

// view masks the decrypted number. A number that cannot be decrypted is fully masked.
func (p cardPresenter) view(card *domain.Card) CardView {
	number, err := p.cipher.Decrypt(card.EncryptedNumber)
	if err != nil {
		p.logger.Warn("failed to decrypt card number for masking",
			"card_id", card.ID,
			"error", err)
		number = ""
	}

	return CardView{
		Card:         card,
		MaskedNumber: domain.MaskCardNumber(number),
	}
}

func (p cardPresenter) views(cards []*domain.Card) []CardView {
	out := make([]CardView, 0, len(cards))
	for _, card := range cards {
		out = append(out, p.view(card))
	}
	return out
}
