package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/JackJJClark/LifeMaxxing-2.0-sub000/internal/storage"
)

// HabitFilter narrows ListHabits.
type HabitFilter string

const (
	HabitFilterAll    HabitFilter = "all"
	HabitFilterActive HabitFilter = "active"
	HabitFilterPaused HabitFilter = "paused"
)

func ParseHabitFilter(input string) (HabitFilter, error) {
	s := strings.TrimSpace(strings.ToLower(input))
	if s == "" {
		return HabitFilterAll, nil
	}
	f := HabitFilter(s)
	switch f {
	case HabitFilterAll, HabitFilterActive, HabitFilterPaused:
		return f, nil
	default:
		return "", fmt.Errorf("invalid habit filter: %q", input)
	}
}

func (s *Service) CreateHabit(ctx context.Context, name string) (storage.Habit, error) {
	n, err := normalizeName(name)
	if err != nil {
		return storage.Habit{}, err
	}
	h := storage.Habit{
		ID:        newID(),
		Name:      n,
		IsActive:  true,
		CreatedAt: s.clock(),
	}
	err = s.store.WithTx(ctx, func(tx storage.Tx) error {
		return tx.InsertHabit(ctx, h)
	})
	if err != nil {
		return storage.Habit{}, err
	}
	return h, nil
}

func (s *Service) GetHabit(ctx context.Context, id string) (storage.Habit, error) {
	var out storage.Habit
	err := s.store.WithTx(ctx, func(tx storage.Tx) error {
		h, err := tx.GetHabit(ctx, id)
		if err != nil {
			return asNotFound("habit", id, err)
		}
		out = h
		return nil
	})
	return out, err
}

func (s *Service) ListHabits(ctx context.Context, filter HabitFilter) ([]storage.Habit, error) {
	var out []storage.Habit
	err := s.store.WithTx(ctx, func(tx storage.Tx) error {
		all, err := tx.ListHabits(ctx)
		if err != nil {
			return err
		}
		for _, h := range all {
			switch {
			case filter == HabitFilterActive && !h.IsActive:
				continue
			case filter == HabitFilterPaused && h.IsActive:
				continue
			}
			out = append(out, h)
		}
		return nil
	})
	return out, err
}

func (s *Service) setHabitActive(ctx context.Context, id string, active bool) (storage.Habit, error) {
	var out storage.Habit
	err := s.store.WithTx(ctx, func(tx storage.Tx) error {
		h, err := tx.GetHabit(ctx, id)
		if err != nil {
			return asNotFound("habit", id, err)
		}
		h.IsActive = active
		out = h
		return tx.UpdateHabit(ctx, h)
	})
	return out, err
}

// PauseHabit hides a habit from the active list. Efforts can still be logged.
func (s *Service) PauseHabit(ctx context.Context, id string) (storage.Habit, error) {
	return s.setHabitActive(ctx, id, false)
}

func (s *Service) ResumeHabit(ctx context.Context, id string) (storage.Habit, error) {
	return s.setHabitActive(ctx, id, true)
}

// DeleteHabit removes a habit with its effort logs and releases any arc bound
// to it. Chests and rewards already earned are kept.
func (s *Service) DeleteHabit(ctx context.Context, id string) error {
	return s.store.WithTx(ctx, func(tx storage.Tx) error {
		if _, err := tx.GetHabit(ctx, id); err != nil {
			return asNotFound("habit", id, err)
		}
		if err := unbindArcs(ctx, tx, id, s.clock()); err != nil {
			return err
		}
		return tx.DeleteHabit(ctx, id)
	})
}
