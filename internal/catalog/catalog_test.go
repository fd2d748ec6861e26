package catalog

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JackJJClark/LifeMaxxing-2.0-sub000/internal/random"
)

func TestDefaultCatalogLoads(t *testing.T) {
	c := Default()
	require.NotEmpty(t, c.Prevalence)
	require.NotEmpty(t, c.Items)
	require.NotEmpty(t, c.Cards)
	require.NotEmpty(t, c.Arcs)
	for _, a := range c.Arcs {
		assert.Len(t, a.Fragments, len(a.Milestones), a.ID)
	}
}

func TestResolveMatchesKeywordAndFallsBack(t *testing.T) {
	c := Default()

	run := c.Resolve("  Run ")
	assert.Equal(t, "catalog:running", run.Source)
	assert.Equal(t, EffortForPrevalence(run.Prevalence), run.Effort)

	unknown := c.Resolve("Origami folding")
	assert.Equal(t, DefaultSource, unknown.Source)
	assert.Equal(t, DefaultPrevalence, unknown.Prevalence)
	assert.Equal(t, 4, unknown.Effort)
}

func TestResolveFirstMatchWins(t *testing.T) {
	c := &Catalog{Prevalence: []PrevalenceEntry{
		{Label: "first", Prevalence: 90, Keywords: []string{"walk"}},
		{Label: "second", Prevalence: 1, Keywords: []string{"walk"}},
	}}
	got := c.Resolve("walk the dog")
	assert.Equal(t, "catalog:first", got.Source)
	assert.Equal(t, 1, got.Effort)
}

func TestEffortForPrevalenceIsDescending(t *testing.T) {
	assert.Equal(t, 1, EffortForPrevalence(95))
	assert.Equal(t, 10, EffortForPrevalence(0.2))
	prev := EffortForPrevalence(100)
	for p := 100.0; p >= 0; p -= 0.5 {
		e := EffortForPrevalence(p)
		require.GreaterOrEqual(t, e, prev, "prevalence %v", p)
		require.True(t, e >= 1 && e <= 10)
		prev = e
	}
}

func TestRarityOrderingAndBump(t *testing.T) {
	all := AllRarities()
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].Rank(), all[i].Rank())
		assert.Equal(t, all[i], all[i-1].Bump())
	}
	assert.Equal(t, RarityRelic, RarityRelic.Bump())
	assert.True(t, RarityCommon.AtMost(RarityRare))
	assert.False(t, RarityEpic.AtMost(RarityRare))

	_, err := ParseRarity("mythic")
	assert.Error(t, err)
	r, err := ParseRarity(" Epic ")
	require.NoError(t, err)
	assert.Equal(t, RarityEpic, r)
}

func TestPickRespectsRarityCeiling(t *testing.T) {
	entries := []Entry{
		{ID: "a", Rarity: RarityCommon},
		{ID: "b", Rarity: RarityRare},
		{ID: "c", Rarity: RarityRelic},
	}
	assert.Equal(t, "a", Pick(random.NewSequence(0.99), entries, RarityCommon).ID)
	assert.Equal(t, "b", Pick(random.NewSequence(0.99), entries, RarityRare).ID)
	assert.Equal(t, "c", Pick(random.NewSequence(0.99), entries, RarityRelic).ID)

	onlyHigh := []Entry{{ID: "x", Rarity: RarityEpic}, {ID: "y", Rarity: RarityRelic}}
	assert.Equal(t, "y", Pick(random.NewSequence(0.6), onlyHigh, RarityCommon).ID)
}

func TestArcUnlockedCount(t *testing.T) {
	a := Arc{Milestones: []int{10, 30, 60}}
	assert.Equal(t, 0, a.UnlockedCount(9))
	assert.Equal(t, 1, a.UnlockedCount(10))
	assert.Equal(t, 3, a.UnlockedCount(500))
	assert.Equal(t, 30, a.NextMilestone(10))
	assert.Equal(t, 0, a.NextMilestone(60))
}

func TestLoadFSRejectsMismatchedFragments(t *testing.T) {
	fsys := fstest.MapFS{
		"d/prevalence.yaml": {Data: []byte("[]")},
		"d/items.yaml":      {Data: []byte("- {id: i, name: I, rarity: common}")},
		"d/cards.yaml":      {Data: []byte("- {id: c, name: C, rarity: rare}")},
		"d/arcs.yaml":       {Data: []byte("- {id: a, milestones: [1, 2], fragments: [one]}")},
	}
	_, err := LoadFS(fsys, "d")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fragments")
}
