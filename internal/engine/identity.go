package engine

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/JackJJClark/LifeMaxxing-2.0-sub000/internal/storage"
)

// identity returns the profile singleton, creating it on first use.
func (s *Service) identity(ctx context.Context, tx storage.Tx, now time.Time) (storage.Identity, error) {
	id, err := tx.GetIdentity(ctx)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return storage.Identity{}, err
	}
	id = storage.Identity{
		ID:               newID(),
		Level:            1,
		TotalEffortUnits: 0,
		CreatedAt:        now,
		LastActiveAt:     now,
	}
	if err := tx.PutIdentity(ctx, id); err != nil {
		return storage.Identity{}, err
	}
	return id, nil
}

// EnsureIdentity creates the profile if it does not exist yet.
func (s *Service) EnsureIdentity(ctx context.Context) (storage.Identity, error) {
	var out storage.Identity
	err := s.store.WithTx(ctx, func(tx storage.Tx) error {
		id, err := s.identity(ctx, tx, s.clock())
		out = id
		return err
	})
	return out, err
}

// CompleteOrientation marks the onboarding flow as done.
func (s *Service) CompleteOrientation(ctx context.Context) error {
	return s.store.WithTx(ctx, func(tx storage.Tx) error {
		id, err := s.identity(ctx, tx, s.clock())
		if err != nil {
			return err
		}
		id.OrientationCompleted = true
		return tx.PutIdentity(ctx, id)
	})
}

// EquipCard sets the identity's active card. The card must come from an
// unlocked reward; an empty id unequips.
func (s *Service) EquipCard(ctx context.Context, cardID string) error {
	id := strings.TrimSpace(cardID)
	return s.store.WithTx(ctx, func(tx storage.Tx) error {
		ident, err := s.identity(ctx, tx, s.clock())
		if err != nil {
			return err
		}
		if id == "" {
			ident.EquippedCardID = nil
			return tx.PutIdentity(ctx, ident)
		}
		if _, err := tx.GetCard(ctx, id); err != nil {
			return asNotFound("card", id, err)
		}
		rewards, err := tx.ListRewards(ctx)
		if err != nil {
			return err
		}
		owned := false
		for _, r := range rewards {
			if r.Type == storage.RewardTypeCard && r.RefID == id && !r.Locked {
				owned = true
				break
			}
		}
		if !owned {
			return ValidationError{Field: "cardId", Reason: "card is still locked"}
		}
		ident.EquippedCardID = &id
		return tx.PutIdentity(ctx, ident)
	})
}
