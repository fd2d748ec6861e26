package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/JackJJClark/LifeMaxxing-2.0-sub000/internal/random"
	"github.com/JackJJClark/LifeMaxxing-2.0-sub000/internal/storage"
)

const (
	OutcomeWin  = "win"
	OutcomeLose = "lose"
)

type CombatInput struct {
	// EncounterID is optional; a fresh id is generated when empty.
	EncounterID string
	ChestID     string
	Outcome     string
}

type CombatResult struct {
	EncounterID       string
	Outcome           string
	Unlocked          int
	Remaining         int
	UnlockedRewardIDs []string
}

// WinUnlockCount is ceil(0.6 * locked), at least one while anything is locked.
func WinUnlockCount(locked int) int {
	if locked <= 0 {
		return 0
	}
	n := (6*locked + 9) / 10
	if n < 1 {
		n = 1
	}
	return n
}

// ResolveCombatEncounter settles a fight over a chest. Winning unlocks a
// random subset of its locked rewards; losing changes nothing. Either way the
// encounter is recorded.
func (s *Service) ResolveCombatEncounter(ctx context.Context, in CombatInput) (CombatResult, error) {
	chestID := strings.TrimSpace(in.ChestID)
	if chestID == "" {
		return CombatResult{}, ValidationError{Field: "chestId", Reason: "is required"}
	}
	outcome := strings.ToLower(strings.TrimSpace(in.Outcome))
	if outcome != OutcomeWin && outcome != OutcomeLose {
		return CombatResult{}, ValidationError{Field: "outcome", Reason: fmt.Sprintf("must be %s or %s", OutcomeWin, OutcomeLose)}
	}
	encounterID := strings.TrimSpace(in.EncounterID)
	if encounterID == "" {
		encounterID = newID()
	}

	out := CombatResult{EncounterID: encounterID, Outcome: outcome}
	now := s.clock()
	err := s.store.WithTx(ctx, func(tx storage.Tx) error {
		if _, err := tx.GetCombatEncounter(ctx, encounterID); err == nil {
			return ValidationError{Field: "encounterId", Reason: "already resolved"}
		} else if !errors.Is(err, storage.ErrNotFound) {
			return err
		}
		chest, err := tx.GetChest(ctx, chestID)
		if err != nil {
			return asNotFound("chest", chestID, err)
		}
		rewards, err := tx.ListChestRewards(ctx, chest.ID)
		if err != nil {
			return err
		}
		var locked []string
		for _, r := range rewards {
			if r.Locked {
				locked = append(locked, r.ID)
			}
		}

		if outcome == OutcomeWin && len(locked) > 0 {
			random.Shuffle(s.rng, locked)
			n := WinUnlockCount(len(locked))
			out.UnlockedRewardIDs = append([]string(nil), locked[:n]...)
			if err := unlockRewards(ctx, tx, &chest, out.UnlockedRewardIDs); err != nil {
				return err
			}
		}
		out.Unlocked = len(out.UnlockedRewardIDs)
		out.Remaining = len(locked) - out.Unlocked

		return tx.InsertCombatEncounter(ctx, storage.CombatEncounter{
			ID:        encounterID,
			ChestID:   chest.ID,
			Outcome:   outcome,
			Unlocked:  out.Unlocked,
			CreatedAt: now,
		})
	})
	if err != nil {
		return CombatResult{}, err
	}
	s.log.Info("combat resolved", "encounter_id", out.EncounterID, "chest_id", chestID, "outcome", outcome, "unlocked", out.Unlocked)
	return out, nil
}
