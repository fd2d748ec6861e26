package engine

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/JackJJClark/LifeMaxxing-2.0-sub000/internal/catalog"
	"github.com/JackJJClark/LifeMaxxing-2.0-sub000/internal/storage"
)

// ConsistencyWindowDays is the rolling window, today included.
const ConsistencyWindowDays = 7

type LogEffortInput struct {
	HabitID string
	Note    string
}

type LogEffortResult struct {
	EffortID         string
	EffortValue      int
	ChestID          string
	Rarity           catalog.Rarity
	ChestTier        Tier
	Rewards          []storage.Reward
	ConsistencyScore int
	LevelBefore      int
	LevelAfter       int
	MercyUsed        bool
	MercyBypass      bool
	ArcUnlocks       []ArcUnlock
}

// inactivityDays counts calendar days since the latest effort, or since the
// profile was created when nothing has been logged.
func (s *Service) inactivityDays(ctx context.Context, tx storage.Tx, now time.Time) (int, error) {
	last, err := tx.LatestEffortLog(ctx)
	if err == nil {
		return daysBetween(last.Timestamp, now, s.loc), nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return 0, err
	}
	id, err := tx.GetIdentity(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return daysBetween(id.CreatedAt, now, s.loc), nil
}

// consistencyScore counts distinct local dates with at least one effort in
// the window ending today.
func (s *Service) consistencyScore(ctx context.Context, tx storage.Tx, now time.Time) (int, error) {
	since := startOfDay(now, s.loc, -(ConsistencyWindowDays - 1))
	logs, err := tx.ListEffortLogsSince(ctx, since)
	if err != nil {
		return 0, err
	}
	today := calendarDate(now, s.loc)
	days := make(map[time.Time]struct{}, ConsistencyWindowDays)
	for _, l := range logs {
		d := calendarDate(l.Timestamp, s.loc)
		if d.After(today) {
			continue
		}
		days[d] = struct{}{}
	}
	return len(days), nil
}

func (s *Service) GetInactivityDays(ctx context.Context) (int, error) {
	var out int
	err := s.store.WithTx(ctx, func(tx storage.Tx) error {
		n, err := s.inactivityDays(ctx, tx, s.clock())
		out = n
		return err
	})
	return out, err
}

func (s *Service) GetConsistencyScore(ctx context.Context) (int, error) {
	var out int
	err := s.store.WithTx(ctx, func(tx storage.Tx) error {
		n, err := s.consistencyScore(ctx, tx, s.clock())
		out = n
		return err
	})
	return out, err
}

// LogEffort records one effort for a habit and runs every consequence in a
// single transaction: identity progression, mercy, chest generation, and arc
// advancement. Any failure leaves no trace.
func (s *Service) LogEffort(ctx context.Context, in LogEffortInput) (LogEffortResult, error) {
	habitID := strings.TrimSpace(in.HabitID)
	if habitID == "" {
		return LogEffortResult{}, ValidationError{Field: "habitId", Reason: "is required"}
	}

	var (
		out       LogEffortResult
		habitName string
	)
	now := s.clock()
	err := s.store.WithTx(ctx, func(tx storage.Tx) error {
		habit, err := tx.GetHabit(ctx, habitID)
		if err != nil {
			return asNotFound("habit", habitID, err)
		}
		habitName = habit.Name

		res, err := s.efforts.resolve(ctx, tx, habit.Name, now)
		if err != nil {
			return err
		}
		ident, err := s.identity(ctx, tx, now)
		if err != nil {
			return err
		}
		// Measured before this log lands, otherwise it is always zero.
		inactivity, err := s.inactivityDays(ctx, tx, now)
		if err != nil {
			return err
		}

		entry := storage.EffortLog{
			ID:          newID(),
			HabitID:     habit.ID,
			EffortValue: res.Effort,
			Timestamp:   now,
			CreatedAt:   now,
		}
		if note := strings.TrimSpace(in.Note); note != "" {
			entry.Note = &note
		}
		if err := tx.InsertEffortLog(ctx, entry); err != nil {
			return err
		}

		levelBefore := ident.Level
		ident.TotalEffortUnits += res.Effort
		ident.Level = NextLevel(ident.Level, ident.TotalEffortUnits)
		ident.LastActiveAt = now
		if err := tx.PutIdentity(ctx, ident); err != nil {
			return err
		}

		consistency, err := s.consistencyScore(ctx, tx, now)
		if err != nil {
			return err
		}
		tier := TierFromConsistency(consistency)
		base := RarityFromConsistency(consistency)
		mercy, err := s.applyMercy(ctx, tx, base, inactivity, now)
		if err != nil {
			return err
		}

		chest := storage.Chest{
			ID:       newID(),
			Rarity:   string(mercy.Rarity),
			Tier:     string(tier),
			EarnedAt: now,
		}
		if err := tx.InsertChest(ctx, chest); err != nil {
			return err
		}
		// Mercy raises the chest's rarity, not the catalog ceiling.
		drafts := DraftRewards(s.rng, s.catalog, base, tier, consistency)
		rewards, err := materialize(ctx, tx, chest.ID, drafts, now)
		if err != nil {
			return err
		}
		if mercy.Bypass && len(rewards) > 0 {
			if err := unlockRewards(ctx, tx, &chest, []string{rewards[0].ID}); err != nil {
				return err
			}
			rewards[0].Locked = false
		}
		if err := tx.InsertChestMeta(ctx, storage.ChestMeta{
			ChestID:          chest.ID,
			HabitName:        habit.Name,
			EffortValue:      res.Effort,
			ConsistencyCount: consistency,
			Theme:            res.Category,
			MercyApplied:     mercy.Applied,
		}); err != nil {
			return err
		}

		unlocks, err := s.advanceArcs(ctx, tx, habit.ID, res.Effort, now)
		if err != nil {
			return err
		}

		out = LogEffortResult{
			EffortID:         entry.ID,
			EffortValue:      res.Effort,
			ChestID:          chest.ID,
			Rarity:           mercy.Rarity,
			ChestTier:        tier,
			Rewards:          rewards,
			ConsistencyScore: consistency,
			LevelBefore:      levelBefore,
			LevelAfter:       ident.Level,
			MercyUsed:        mercy.Applied,
			MercyBypass:      mercy.Bypass,
			ArcUnlocks:       unlocks,
		}
		return nil
	})
	if err != nil {
		return LogEffortResult{}, err
	}

	s.log.Info("effort logged",
		"habit_id", habitID,
		"habit", habitName,
		"effort", out.EffortValue,
		"level", out.LevelAfter,
		"consistency", out.ConsistencyScore,
	)
	if out.MercyUsed {
		s.log.Info("mercy applied", "chest_id", out.ChestID, "rarity", out.Rarity, "bypass", out.MercyBypass)
	}
	s.log.Debug("chest granted", "chest_id", out.ChestID, "rarity", out.Rarity, "tier", out.ChestTier, "rewards", len(out.Rewards))
	for _, u := range out.ArcUnlocks {
		s.log.Info("arc fragment unlocked", "arc_id", u.ArcID, "milestone", u.Milestone)
	}
	return out, nil
}
