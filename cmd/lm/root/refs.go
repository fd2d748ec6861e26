package root

import (
	"context"
	"fmt"
	"strings"

	"github.com/JackJJClark/LifeMaxxing-2.0-sub000/internal/engine"
	"github.com/JackJJClark/LifeMaxxing-2.0-sub000/internal/storage"
)

const shortIDLen = 8

func shortID(id string) string {
	if len(id) > shortIDLen {
		return id[:shortIDLen]
	}
	return id
}

// resolveHabit accepts a full id, a unique id prefix or a habit name.
func resolveHabit(ctx context.Context, svc *engine.Service, ref string) (storage.Habit, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return storage.Habit{}, engine.ValidationError{Field: "habit", Reason: "is required"}
	}
	habits, err := svc.ListHabits(ctx, engine.HabitFilterAll)
	if err != nil {
		return storage.Habit{}, err
	}
	var matches []storage.Habit
	for _, h := range habits {
		if h.ID == ref {
			return h, nil
		}
		if strings.EqualFold(h.Name, ref) || strings.HasPrefix(h.ID, ref) {
			matches = append(matches, h)
		}
	}
	switch len(matches) {
	case 0:
		return storage.Habit{}, engine.NotFoundError{Kind: "habit", ID: ref}
	case 1:
		return matches[0], nil
	default:
		return storage.Habit{}, fmt.Errorf("habit %q is ambiguous (%d matches)", ref, len(matches))
	}
}

// resolveChestID accepts a full id, a unique prefix, or "latest".
func resolveChestID(ctx context.Context, svc *engine.Service, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", engine.ValidationError{Field: "chest", Reason: "is required"}
	}
	chests, err := svc.ListChests(ctx, 0)
	if err != nil {
		return "", err
	}
	if ref == "latest" {
		if len(chests) == 0 {
			return "", engine.NotFoundError{Kind: "chest", ID: ref}
		}
		return chests[0].ID, nil
	}
	var matches []string
	for _, c := range chests {
		if c.ID == ref {
			return c.ID, nil
		}
		if strings.HasPrefix(c.ID, ref) {
			matches = append(matches, c.ID)
		}
	}
	switch len(matches) {
	case 0:
		return ref, nil
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("chest %q is ambiguous (%d matches)", ref, len(matches))
	}
}
