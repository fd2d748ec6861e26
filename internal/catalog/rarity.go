package catalog

import (
	"fmt"
	"strings"
)

// Rarity is the ordinal quality tier shared by chests, items and cards.
type Rarity string

const (
	RarityCommon   Rarity = "common"
	RarityUncommon Rarity = "uncommon"
	RarityRare     Rarity = "rare"
	RarityEpic     Rarity = "epic"
	RarityRelic    Rarity = "relic"
)

// AllRarities returns all rarities in order from lowest to highest.
func AllRarities() []Rarity {
	return []Rarity{RarityCommon, RarityUncommon, RarityRare, RarityEpic, RarityRelic}
}

// Rank is the position of r on the ordered scale, or -1 when r is unknown.
func (r Rarity) Rank() int {
	for i, v := range AllRarities() {
		if v == r {
			return i
		}
	}
	return -1
}

func (r Rarity) IsValid() bool {
	return r.Rank() >= 0
}

// Bump returns the next rarity up, capped at relic.
func (r Rarity) Bump() Rarity {
	all := AllRarities()
	i := r.Rank()
	if i < 0 {
		return RarityCommon
	}
	if i+1 >= len(all) {
		return all[len(all)-1]
	}
	return all[i+1]
}

// AtMost reports whether r sits at or below max on the ordered scale.
func (r Rarity) AtMost(max Rarity) bool {
	return r.Rank() >= 0 && r.Rank() <= max.Rank()
}

func (r Rarity) DisplayName() string {
	if r == "" {
		return ""
	}
	s := string(r)
	return strings.ToUpper(s[:1]) + s[1:]
}

func ParseRarity(input string) (Rarity, error) {
	r := Rarity(strings.TrimSpace(strings.ToLower(input)))
	if !r.IsValid() {
		return "", fmt.Errorf("invalid rarity: %q", input)
	}
	return r, nil
}
