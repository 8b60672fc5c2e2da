package services

import (
	"context"
	"errors"
	"strings"

	"github.com/masudbs-23/hisab-app/internal/storage"
)

var ErrEmptyCardName = errors.New("card name is required")

// CardService is the thin CRUD surface the card screens consume.
type CardService struct {
	repo *storage.Repository
}

func NewCardService(repo *storage.Repository) *CardService {
	return &CardService{repo: repo}
}

func (s *CardService) AddCard(ctx context.Context, userID int64, cardType, cardName, cardNumber string) (int64, error) {
	if strings.TrimSpace(cardName) == "" {
		return 0, ErrEmptyCardName
	}
	return s.repo.CreateCard(ctx, storage.Card{
		UserID:     userID,
		CardType:   cardType,
		CardName:   strings.TrimSpace(cardName),
		CardNumber: cardNumber,
	})
}

func (s *CardService) ListCards(ctx context.Context, userID int64) ([]storage.Card, error) {
	return s.repo.ListCards(ctx, userID)
}

func (s *CardService) DeleteCard(ctx context.Context, cardID int64) error {
	return s.repo.DeleteCard(ctx, cardID)
}
