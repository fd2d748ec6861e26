package engine

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/JackJJClark/LifeMaxxing-2.0-sub000/internal/catalog"
	"github.com/JackJJClark/LifeMaxxing-2.0-sub000/internal/storage"
)

// ArcUnlock is emitted when an effort carries an arc past a milestone.
type ArcUnlock struct {
	ArcID         string
	Title         string
	Milestone     int
	Fragment      string
	UnlockedCount int
}

type ArcQuestView struct {
	Arc       catalog.Arc
	Progress  storage.ArcQuestProgress
	Fragments []string
	// NextMilestone is 0 once every fragment is unlocked.
	NextMilestone int
}

func (v ArcQuestView) Complete() bool {
	return v.Progress.UnlockedCount >= len(v.Arc.Milestones)
}

func loadArcProgress(ctx context.Context, tx storage.Tx, arcID string) (storage.ArcQuestProgress, error) {
	p, err := tx.GetArcProgress(ctx, arcID)
	if errors.Is(err, storage.ErrNotFound) {
		return storage.ArcQuestProgress{ArcID: arcID}, nil
	}
	return p, err
}

func (s *Service) catalogArc(arcID string) (catalog.Arc, error) {
	id := strings.TrimSpace(arcID)
	if id == "" {
		return catalog.Arc{}, ValidationError{Field: "arcId", Reason: "is required"}
	}
	arc, ok := s.catalog.Arc(id)
	if !ok {
		return catalog.Arc{}, NotFoundError{Kind: "arc", ID: id}
	}
	return arc, nil
}

// advanceArcs adds effort to every arc that is not ignored and is either
// unbound or bound to habitID.
func (s *Service) advanceArcs(ctx context.Context, tx storage.Tx, habitID string, effort int, now time.Time) ([]ArcUnlock, error) {
	var unlocks []ArcUnlock
	for _, arc := range s.catalog.Arcs {
		p, err := loadArcProgress(ctx, tx, arc.ID)
		if err != nil {
			return nil, err
		}
		if p.Ignored {
			continue
		}
		if p.HabitID != nil && *p.HabitID != habitID {
			continue
		}
		p.Progress += effort
		before := p.UnlockedCount
		p.UnlockedCount = arc.UnlockedCount(p.Progress)
		p.UpdatedAt = now
		if err := tx.PutArcProgress(ctx, p); err != nil {
			return nil, err
		}
		if p.UnlockedCount > before {
			idx := p.UnlockedCount - 1
			unlocks = append(unlocks, ArcUnlock{
				ArcID:         arc.ID,
				Title:         arc.Title,
				Milestone:     arc.Milestones[idx],
				Fragment:      arc.Fragments[idx],
				UnlockedCount: p.UnlockedCount,
			})
		}
	}
	return unlocks, nil
}

// ListArcQuests returns every catalog arc joined with its stored progress.
func (s *Service) ListArcQuests(ctx context.Context) ([]ArcQuestView, error) {
	var out []ArcQuestView
	err := s.store.WithTx(ctx, func(tx storage.Tx) error {
		for _, arc := range s.catalog.Arcs {
			p, err := loadArcProgress(ctx, tx, arc.ID)
			if err != nil {
				return err
			}
			n := p.UnlockedCount
			if n > len(arc.Fragments) {
				n = len(arc.Fragments)
			}
			out = append(out, ArcQuestView{
				Arc:           arc,
				Progress:      p,
				Fragments:     append([]string(nil), arc.Fragments[:n]...),
				NextMilestone: arc.NextMilestone(p.Progress),
			})
		}
		return nil
	})
	return out, err
}

func (s *Service) updateArc(ctx context.Context, arcID string, fn func(tx storage.Tx, p *storage.ArcQuestProgress) error) error {
	arc, err := s.catalogArc(arcID)
	if err != nil {
		return err
	}
	return s.store.WithTx(ctx, func(tx storage.Tx) error {
		p, err := loadArcProgress(ctx, tx, arc.ID)
		if err != nil {
			return err
		}
		if err := fn(tx, &p); err != nil {
			return err
		}
		p.UpdatedAt = s.clock()
		return tx.PutArcProgress(ctx, p)
	})
}

// AcceptArcQuest opts into an arc. Accepting an ignored arc resumes it.
func (s *Service) AcceptArcQuest(ctx context.Context, arcID string) error {
	return s.updateArc(ctx, arcID, func(_ storage.Tx, p *storage.ArcQuestProgress) error {
		p.Accepted = true
		p.Ignored = false
		return nil
	})
}

// IgnoreArcQuest freezes an arc. Progress is kept.
func (s *Service) IgnoreArcQuest(ctx context.Context, arcID string) error {
	return s.updateArc(ctx, arcID, func(_ storage.Tx, p *storage.ArcQuestProgress) error {
		p.Ignored = true
		p.Accepted = false
		return nil
	})
}

// BindArcQuestToHabit restricts an arc to efforts on one habit and accepts it.
func (s *Service) BindArcQuestToHabit(ctx context.Context, arcID, habitID string) error {
	hid := strings.TrimSpace(habitID)
	if hid == "" {
		return ValidationError{Field: "habitId", Reason: "is required"}
	}
	return s.updateArc(ctx, arcID, func(tx storage.Tx, p *storage.ArcQuestProgress) error {
		if _, err := tx.GetHabit(ctx, hid); err != nil {
			return asNotFound("habit", hid, err)
		}
		p.HabitID = &hid
		p.Accepted = true
		p.Ignored = false
		return nil
	})
}

// unbindArcs clears any binding to habitID.
func unbindArcs(ctx context.Context, tx storage.Tx, habitID string, now time.Time) error {
	all, err := tx.ListArcProgress(ctx)
	if err != nil {
		return err
	}
	for _, p := range all {
		if p.HabitID == nil || *p.HabitID != habitID {
			continue
		}
		p.HabitID = nil
		p.UpdatedAt = now
		if err := tx.PutArcProgress(ctx, p); err != nil {
			return err
		}
	}
	return nil
}
