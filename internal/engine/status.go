package engine

import (
	"context"
	"errors"

	"github.com/JackJJClark/LifeMaxxing-2.0-sub000/internal/storage"
)

type Counts struct {
	Habits        int
	Efforts       int
	Chests        int
	Rewards       int
	LockedRewards int
	Items         int
	Cards         int
	Arcs          int
	MercyEvents   int
	Encounters    int
}

type StatusSnapshot struct {
	// Identity is nil until the first effort or explicit EnsureIdentity.
	Identity         *storage.Identity
	NextLevelAt      int
	Counts           Counts
	ConsistencyScore int
	InactivityDays   int
	Mercy            MercyStatus
}

// GetStatusSnapshot summarizes the profile without writing anything.
func (s *Service) GetStatusSnapshot(ctx context.Context) (StatusSnapshot, error) {
	var snap StatusSnapshot
	err := s.store.WithTx(ctx, func(tx storage.Tx) error {
		now := s.clock()
		ident, err := tx.GetIdentity(ctx)
		switch {
		case err == nil:
			snap.Identity = &ident
			snap.NextLevelAt = EffortRequiredForLevel(ident.Level + 1)
		case !errors.Is(err, storage.ErrNotFound):
			return err
		}

		if snap.Counts, err = countRecords(ctx, tx); err != nil {
			return err
		}
		if snap.ConsistencyScore, err = s.consistencyScore(ctx, tx, now); err != nil {
			return err
		}
		if snap.InactivityDays, err = s.inactivityDays(ctx, tx, now); err != nil {
			return err
		}
		snap.Mercy, err = s.mercyStatus(ctx, tx, snap.InactivityDays, now)
		return err
	})
	return snap, err
}

func countRecords(ctx context.Context, tx storage.Tx) (Counts, error) {
	var c Counts
	habits, err := tx.ListHabits(ctx)
	if err != nil {
		return c, err
	}
	efforts, err := tx.ListEffortLogs(ctx)
	if err != nil {
		return c, err
	}
	chests, err := tx.ListChests(ctx)
	if err != nil {
		return c, err
	}
	rewards, err := tx.ListRewards(ctx)
	if err != nil {
		return c, err
	}
	items, err := tx.ListItems(ctx)
	if err != nil {
		return c, err
	}
	cards, err := tx.ListCards(ctx)
	if err != nil {
		return c, err
	}
	arcs, err := tx.ListArcProgress(ctx)
	if err != nil {
		return c, err
	}
	mercy, err := tx.ListMercyEvents(ctx)
	if err != nil {
		return c, err
	}
	encounters, err := tx.ListCombatEncounters(ctx)
	if err != nil {
		return c, err
	}

	c.Habits = len(habits)
	c.Efforts = len(efforts)
	c.Chests = len(chests)
	c.Rewards = len(rewards)
	for _, r := range rewards {
		if r.Locked {
			c.LockedRewards++
		}
	}
	c.Items = len(items)
	c.Cards = len(cards)
	c.Arcs = len(arcs)
	c.MercyEvents = len(mercy)
	c.Encounters = len(encounters)
	return c, nil
}

// RewardView is a reward joined with the collectible it points at.
type RewardView struct {
	storage.Reward
	Name   string
	Rarity string
	Effect string
}

type ChestView struct {
	storage.Chest
	Meta    *storage.ChestMeta
	Rewards []RewardView
}

func (v ChestView) LockedCount() int {
	n := 0
	for _, r := range v.Rewards {
		if r.Locked {
			n++
		}
	}
	return n
}

func rewardView(ctx context.Context, tx storage.Tx, r storage.Reward) (RewardView, error) {
	v := RewardView{Reward: r}
	switch r.Type {
	case storage.RewardTypeItem:
		it, err := tx.GetItem(ctx, r.RefID)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return v, err
		}
		v.Name, v.Rarity, v.Effect = it.Name, it.Rarity, it.Effect
	case storage.RewardTypeCard:
		c, err := tx.GetCard(ctx, r.RefID)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return v, err
		}
		v.Name, v.Rarity, v.Effect = c.Name, c.Rarity, c.Effect
	}
	return v, nil
}

func chestView(ctx context.Context, tx storage.Tx, c storage.Chest) (ChestView, error) {
	v := ChestView{Chest: c}
	meta, err := tx.GetChestMeta(ctx, c.ID)
	switch {
	case err == nil:
		v.Meta = &meta
	case !errors.Is(err, storage.ErrNotFound):
		return v, err
	}
	rewards, err := tx.ListChestRewards(ctx, c.ID)
	if err != nil {
		return v, err
	}
	for _, r := range rewards {
		rv, err := rewardView(ctx, tx, r)
		if err != nil {
			return v, err
		}
		v.Rewards = append(v.Rewards, rv)
	}
	return v, nil
}

// ListChests returns chests newest first. limit <= 0 means all.
func (s *Service) ListChests(ctx context.Context, limit int) ([]ChestView, error) {
	var out []ChestView
	err := s.store.WithTx(ctx, func(tx storage.Tx) error {
		chests, err := tx.ListChests(ctx)
		if err != nil {
			return err
		}
		if limit > 0 && len(chests) > limit {
			chests = chests[:limit]
		}
		for _, c := range chests {
			v, err := chestView(ctx, tx, c)
			if err != nil {
				return err
			}
			out = append(out, v)
		}
		return nil
	})
	return out, err
}

func (s *Service) GetChest(ctx context.Context, id string) (ChestView, error) {
	var out ChestView
	err := s.store.WithTx(ctx, func(tx storage.Tx) error {
		c, err := tx.GetChest(ctx, id)
		if err != nil {
			return asNotFound("chest", id, err)
		}
		out, err = chestView(ctx, tx, c)
		return err
	})
	return out, err
}

func (s *Service) ListItems(ctx context.Context) ([]storage.Item, error) {
	var out []storage.Item
	err := s.store.WithTx(ctx, func(tx storage.Tx) error {
		var err error
		out, err = tx.ListItems(ctx)
		return err
	})
	return out, err
}

func (s *Service) ListCards(ctx context.Context) ([]storage.Card, error) {
	var out []storage.Card
	err := s.store.WithTx(ctx, func(tx storage.Tx) error {
		var err error
		out, err = tx.ListCards(ctx)
		return err
	})
	return out, err
}

// ListRecentEfforts returns up to limit efforts, newest first.
func (s *Service) ListRecentEfforts(ctx context.Context, limit int) ([]storage.EffortLog, error) {
	var out []storage.EffortLog
	err := s.store.WithTx(ctx, func(tx storage.Tx) error {
		all, err := tx.ListEffortLogs(ctx)
		if err != nil {
			return err
		}
		for i := len(all) - 1; i >= 0; i-- {
			if limit > 0 && len(out) >= limit {
				break
			}
			out = append(out, all[i])
		}
		return nil
	})
	return out, err
}
