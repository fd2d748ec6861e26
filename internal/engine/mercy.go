package engine

import (
	"context"
	"errors"
	"time"

	"github.com/JackJJClark/LifeMaxxing-2.0-sub000/internal/catalog"
	"github.com/JackJJClark/LifeMaxxing-2.0-sub000/internal/storage"
)

const (
	MercyInactivityDays = 7
	MercyBypassDays     = 14
	MercyMinEffort      = 20
	MercyCooldownDays   = 30
)

// Reasons reported by CanUseMercy, in gate order.
const (
	MercyNotInactive        = "not_inactive"
	MercyInsufficientEffort = "insufficient_effort"
	MercyCooldown           = "cooldown"
	MercyEligible           = "eligible"
)

type MercyStatus struct {
	Eligible              bool
	Reason                string
	InactivityDays        int
	CooldownDaysRemaining int
}

// MercyDecision is the outcome of applying mercy to a chest's rarity.
type MercyDecision struct {
	Rarity  catalog.Rarity
	Applied bool
	// Bypass means one reward is unlocked without combat.
	Bypass bool
}

func evaluateMercy(inactivity, totalEffort int, last *storage.MercyEvent, now time.Time, loc *time.Location) MercyStatus {
	st := MercyStatus{InactivityDays: inactivity}
	switch {
	case inactivity < MercyInactivityDays:
		st.Reason = MercyNotInactive
	case totalEffort < MercyMinEffort:
		st.Reason = MercyInsufficientEffort
	case last != nil && daysBetween(last.CreatedAt, now, loc) < MercyCooldownDays:
		st.Reason = MercyCooldown
		st.CooldownDaysRemaining = MercyCooldownDays - daysBetween(last.CreatedAt, now, loc)
	default:
		st.Eligible = true
		st.Reason = MercyEligible
	}
	return st
}

func latestMercy(ctx context.Context, tx storage.Tx) (*storage.MercyEvent, error) {
	ev, err := tx.LatestMercyEvent(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ev, nil
}

func (s *Service) mercyStatus(ctx context.Context, tx storage.Tx, inactivity int, now time.Time) (MercyStatus, error) {
	total := 0
	id, err := tx.GetIdentity(ctx)
	switch {
	case err == nil:
		total = id.TotalEffortUnits
	case !errors.Is(err, storage.ErrNotFound):
		return MercyStatus{}, err
	}
	last, err := latestMercy(ctx, tx)
	if err != nil {
		return MercyStatus{}, err
	}
	return evaluateMercy(inactivity, total, last, now, s.loc), nil
}

// CanUseMercy reports whether mercy would apply right now. It writes nothing.
func (s *Service) CanUseMercy(ctx context.Context) (MercyStatus, error) {
	var out MercyStatus
	err := s.store.WithTx(ctx, func(tx storage.Tx) error {
		now := s.clock()
		inactivity, err := s.inactivityDays(ctx, tx, now)
		if err != nil {
			return err
		}
		out, err = s.mercyStatus(ctx, tx, inactivity, now)
		return err
	})
	return out, err
}

func (s *Service) applyMercy(ctx context.Context, tx storage.Tx, rarity catalog.Rarity, inactivity int, now time.Time) (MercyDecision, error) {
	st, err := s.mercyStatus(ctx, tx, inactivity, now)
	if err != nil {
		return MercyDecision{}, err
	}
	if !st.Eligible {
		return MercyDecision{Rarity: rarity}, nil
	}
	if err := tx.InsertMercyEvent(ctx, storage.MercyEvent{
		ID:        newID(),
		Reason:    storage.MercyReasonInactivityBoost,
		CreatedAt: now,
	}); err != nil {
		return MercyDecision{}, err
	}
	return MercyDecision{
		Rarity:  rarity.Bump(),
		Applied: true,
		Bypass:  inactivity >= MercyBypassDays,
	}, nil
}

// ApplyMercyIfEligible bumps rarity one step and records a mercy event when
// the gates pass. Otherwise rarity is returned unchanged.
func (s *Service) ApplyMercyIfEligible(ctx context.Context, rarity catalog.Rarity, inactivityDays int) (MercyDecision, error) {
	var out MercyDecision
	err := s.store.WithTx(ctx, func(tx storage.Tx) error {
		d, err := s.applyMercy(ctx, tx, rarity, inactivityDays, s.clock())
		out = d
		return err
	})
	if err != nil {
		return MercyDecision{}, err
	}
	if out.Applied {
		s.log.Info("mercy applied", "inactivity_days", inactivityDays, "rarity", out.Rarity, "bypass", out.Bypass)
	}
	return out, nil
}
