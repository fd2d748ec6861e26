// Package catalog holds the static game data: habit prevalence statistics,
// collectible items and cards, and the arc quest storylines.
//
// The data ships embedded as YAML and is validated once on load.
package catalog

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/JackJJClark/LifeMaxxing-2.0-sub000/internal/random"
)

//go:embed data/*.yaml
var dataFS embed.FS

// Entry is one collectible definition. Items and cards share the shape.
type Entry struct {
	ID     string `yaml:"id"`
	Name   string `yaml:"name"`
	Rarity Rarity `yaml:"rarity"`
	Effect string `yaml:"effect"`
}

// Arc is a long-running storyline. Fragments[i] unlocks when progress
// reaches Milestones[i].
type Arc struct {
	ID         string   `yaml:"id"`
	Title      string   `yaml:"title"`
	Theme      string   `yaml:"theme"`
	Milestones []int    `yaml:"milestones"`
	Fragments  []string `yaml:"fragments"`
}

// UnlockedCount is the number of milestones at or below progress.
func (a Arc) UnlockedCount(progress int) int {
	n := 0
	for _, m := range a.Milestones {
		if m <= progress {
			n++
		}
	}
	return n
}

// NextMilestone returns the first threshold above progress, or 0 when the
// arc is complete.
func (a Arc) NextMilestone(progress int) int {
	for _, m := range a.Milestones {
		if m > progress {
			return m
		}
	}
	return 0
}

type Catalog struct {
	Prevalence []PrevalenceEntry
	Items      []Entry
	Cards      []Entry
	Arcs       []Arc
}

var (
	defaultOnce sync.Once
	defaultCat  *Catalog
	defaultErr  error
)

// Default returns the embedded catalog. It panics if the embedded data is
// malformed, which can only happen with a broken build.
func Default() *Catalog {
	defaultOnce.Do(func() {
		defaultCat, defaultErr = LoadFS(dataFS, "data")
	})
	if defaultErr != nil {
		panic(defaultErr)
	}
	return defaultCat
}

// LoadFS reads prevalence.yaml, items.yaml, cards.yaml and arcs.yaml from dir.
func LoadFS(fsys fs.FS, dir string) (*Catalog, error) {
	c := &Catalog{}
	files := []struct {
		name string
		into any
	}{
		{"prevalence.yaml", &c.Prevalence},
		{"items.yaml", &c.Items},
		{"cards.yaml", &c.Cards},
		{"arcs.yaml", &c.Arcs},
	}
	for _, f := range files {
		data, err := fs.ReadFile(fsys, path.Join(dir, f.name))
		if err != nil {
			return nil, fmt.Errorf("catalog read %s: %w", f.name, err)
		}
		if err := yaml.Unmarshal(data, f.into); err != nil {
			return nil, fmt.Errorf("catalog parse %s: %w", f.name, err)
		}
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks the structural rules the engine relies on.
func (c *Catalog) Validate() error {
	for i := range c.Prevalence {
		e := &c.Prevalence[i]
		if e.Prevalence < 0 || e.Prevalence > 100 {
			return fmt.Errorf("catalog prevalence %q: out of range %v", e.Label, e.Prevalence)
		}
		for j, kw := range e.Keywords {
			e.Keywords[j] = NormalizeHabitName(kw)
		}
	}
	if err := validateEntries("item", c.Items); err != nil {
		return err
	}
	if err := validateEntries("card", c.Cards); err != nil {
		return err
	}
	seen := map[string]bool{}
	for _, a := range c.Arcs {
		if strings.TrimSpace(a.ID) == "" {
			return fmt.Errorf("catalog arc: missing id")
		}
		if seen[a.ID] {
			return fmt.Errorf("catalog arc %s: duplicate id", a.ID)
		}
		seen[a.ID] = true
		if len(a.Milestones) == 0 {
			return fmt.Errorf("catalog arc %s: no milestones", a.ID)
		}
		if len(a.Milestones) != len(a.Fragments) {
			return fmt.Errorf("catalog arc %s: %d milestones but %d fragments", a.ID, len(a.Milestones), len(a.Fragments))
		}
		for i := 1; i < len(a.Milestones); i++ {
			if a.Milestones[i] <= a.Milestones[i-1] {
				return fmt.Errorf("catalog arc %s: milestones must ascend", a.ID)
			}
		}
	}
	return nil
}

func validateEntries(kind string, entries []Entry) error {
	if len(entries) == 0 {
		return fmt.Errorf("catalog %s: empty", kind)
	}
	seen := map[string]bool{}
	for _, e := range entries {
		if strings.TrimSpace(e.ID) == "" {
			return fmt.Errorf("catalog %s: missing id", kind)
		}
		if seen[e.ID] {
			return fmt.Errorf("catalog %s %s: duplicate id", kind, e.ID)
		}
		seen[e.ID] = true
		if !e.Rarity.IsValid() {
			return fmt.Errorf("catalog %s %s: invalid rarity %q", kind, e.ID, e.Rarity)
		}
	}
	return nil
}

func findEntry(entries []Entry, id string) (Entry, bool) {
	for _, e := range entries {
		if e.ID == id {
			return e, true
		}
	}
	return Entry{}, false
}

func (c *Catalog) Item(id string) (Entry, bool) { return findEntry(c.Items, id) }
func (c *Catalog) Card(id string) (Entry, bool) { return findEntry(c.Cards, id) }

func (c *Catalog) Arc(id string) (Arc, bool) {
	for _, a := range c.Arcs {
		if a.ID == id {
			return a, true
		}
	}
	return Arc{}, false
}

// Pick draws one entry uniformly among those at or below max rarity. When
// none qualify it falls back to the whole list. It consumes exactly one draw.
func Pick(src random.Source, entries []Entry, max Rarity) Entry {
	var eligible []Entry
	for _, e := range entries {
		if e.Rarity.AtMost(max) {
			eligible = append(eligible, e)
		}
	}
	if len(eligible) == 0 {
		eligible = entries
	}
	if len(eligible) == 0 {
		return Entry{}
	}
	return eligible[random.Intn(src, len(eligible))]
}
