package catalog

import (
	"strings"
)

const (
	// DefaultPrevalence is assumed for habits no keyword recognises.
	DefaultPrevalence = 30.0
	DefaultSource     = "default_estimate"
	DefaultCategory   = "general"
)

// PrevalenceEntry ties habit-name keywords to how common the habit is.
type PrevalenceEntry struct {
	Label      string   `yaml:"label"`
	Category   string   `yaml:"category"`
	Prevalence float64  `yaml:"prevalence"`
	Keywords   []string `yaml:"keywords"`
}

// Resolution is the effort value derived for one normalized habit name.
type Resolution struct {
	Effort     int
	Prevalence float64
	Source     string
	Category   string
}

// NormalizeHabitName trims and lowercases a habit name for matching and caching.
func NormalizeHabitName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// EffortForPrevalence maps a prevalence percentage onto a 1-10 difficulty.
// Rarer habits are harder, so the scale descends as prevalence rises.
func EffortForPrevalence(prevalence float64) int {
	switch {
	case prevalence >= 80:
		return 1
	case prevalence >= 60:
		return 2
	case prevalence >= 45:
		return 3
	case prevalence >= 30:
		return 4
	case prevalence >= 20:
		return 5
	case prevalence >= 10:
		return 6
	case prevalence >= 5:
		return 7
	case prevalence >= 2:
		return 8
	case prevalence >= 1:
		return 9
	default:
		return 10
	}
}

// DefaultResolution is returned when nothing in the catalog matches.
func DefaultResolution() Resolution {
	return Resolution{
		Effort:     EffortForPrevalence(DefaultPrevalence),
		Prevalence: DefaultPrevalence,
		Source:     DefaultSource,
		Category:   DefaultCategory,
	}
}

// Resolve scans the prevalence entries in order and returns the first whose
// keyword occurs in the normalized name.
func (c *Catalog) Resolve(habitName string) Resolution {
	name := NormalizeHabitName(habitName)
	if name == "" {
		return DefaultResolution()
	}
	for _, e := range c.Prevalence {
		for _, kw := range e.Keywords {
			if kw != "" && strings.Contains(name, kw) {
				return Resolution{
					Effort:     EffortForPrevalence(e.Prevalence),
					Prevalence: e.Prevalence,
					Source:     "catalog:" + e.Label,
					Category:   e.Category,
				}
			}
		}
	}
	return DefaultResolution()
}
