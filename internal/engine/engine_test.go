package engine

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/JackJJClark/LifeMaxxing-2.0-sub000/internal/catalog"
	"github.com/JackJJClark/LifeMaxxing-2.0-sub000/internal/random"
	"github.com/JackJJClark/LifeMaxxing-2.0-sub000/internal/storage"
)

type testClock struct{ now time.Time }

func (c *testClock) Now() time.Time          { return c.now }
func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }
func (c *testClock) AdvanceDays(n int)       { c.now = c.now.AddDate(0, 0, n) }

func newClock() *testClock {
	return &testClock{now: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}
}

func newTestService(t *testing.T, clock *testClock, opts ...Option) (*Service, func()) {
	t.Helper()
	ctx := context.Background()

	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")
	store, err := storage.Open(ctx, path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	base := []Option{
		WithClock(clock.Now),
		WithLocation(time.UTC),
		WithRandom(random.NewSequence(0.9)),
	}
	svc := NewService(store, append(base, opts...)...)
	cleanup := func() {
		_ = store.Close()
	}
	return svc, cleanup
}

func mustHabit(t *testing.T, svc *Service, name string) storage.Habit {
	t.Helper()
	h, err := svc.CreateHabit(context.Background(), name)
	if err != nil {
		t.Fatalf("CreateHabit(%q): %v", name, err)
	}
	return h
}

func mustLog(t *testing.T, svc *Service, habitID string) LogEffortResult {
	t.Helper()
	res, err := svc.LogEffort(context.Background(), LogEffortInput{HabitID: habitID})
	if err != nil {
		t.Fatalf("LogEffort: %v", err)
	}
	return res
}

func mustSnapshot(t *testing.T, svc *Service) StatusSnapshot {
	t.Helper()
	snap, err := svc.GetStatusSnapshot(context.Background())
	if err != nil {
		t.Fatalf("GetStatusSnapshot: %v", err)
	}
	return snap
}

func arcProgress(t *testing.T, svc *Service, arcID string) storage.ArcQuestProgress {
	t.Helper()
	arcs, err := svc.ListArcQuests(context.Background())
	if err != nil {
		t.Fatalf("ListArcQuests: %v", err)
	}
	for _, a := range arcs {
		if a.Arc.ID == arcID {
			return a.Progress
		}
	}
	t.Fatalf("arc %s not listed", arcID)
	return storage.ArcQuestProgress{}
}

func TestLevelBoundaries(t *testing.T) {
	if got := LevelForEffort(0); got != 1 {
		t.Fatalf("LevelForEffort(0)=%d, want 1", got)
	}
	if got := LevelForEffort(9); got != 1 {
		t.Fatalf("LevelForEffort(9)=%d, want 1", got)
	}
	if got := LevelForEffort(10); got != 2 {
		t.Fatalf("LevelForEffort(10)=%d, want 2", got)
	}
	if got := NextLevel(5, 12); got != 5 {
		t.Fatalf("NextLevel(5,12)=%d, want 5", got)
	}
	if got := EffortRequiredForLevel(LevelForEffort(37)); got != 30 {
		t.Fatalf("EffortRequiredForLevel=%d, want 30", got)
	}
}

func TestRarityAndTierAreMonotonic(t *testing.T) {
	prevRarity, prevTier := -1, -1
	for days := 0; days <= 7; days++ {
		r := RarityFromConsistency(days).Rank()
		tr := TierFromConsistency(days).Rank()
		if r < prevRarity || tr < prevTier {
			t.Fatalf("scale decreased at %d days: rarity %d tier %d", days, r, tr)
		}
		prevRarity, prevTier = r, tr
	}
	if RarityFromConsistency(7) != catalog.RarityRelic || TierFromConsistency(7) != TierAncient {
		t.Fatalf("full week should be relic/ancient")
	}
	if RarityFromConsistency(2) != catalog.RarityCommon || TierFromConsistency(2) != TierWeathered {
		t.Fatalf("two days should be common/weathered")
	}
}

func TestAncientRewardCountRange(t *testing.T) {
	cases := []struct {
		draws []float64
		want  int
	}{
		{[]float64{0.9, 0.9}, 3},
		{[]float64{0.1, 0.9}, 4},
		{[]float64{0.9, 0.1}, 4},
		{[]float64{0.1, 0.1}, 5},
	}
	for _, tc := range cases {
		if got := RewardCount(random.NewSequence(tc.draws...), TierAncient, 7); got != tc.want {
			t.Fatalf("RewardCount(%v)=%d, want %d", tc.draws, got, tc.want)
		}
	}
	if got := RewardCount(random.NewSequence(0.2), TierSealed, 3); got != 1 {
		t.Fatalf("sealed low roll=%d, want 1", got)
	}
	if got := RewardCount(random.NewSequence(0.7), TierSealed, 3); got != 2 {
		t.Fatalf("sealed high roll=%d, want 2", got)
	}
}

func TestCardChanceByTier(t *testing.T) {
	want := map[Tier]float64{
		TierAncient:   0.6,
		TierRuned:     0.5,
		TierEngraved:  0.4,
		TierSealed:    0.25,
		TierWeathered: 0.25,
	}
	for tier, p := range want {
		if got := CardChance(tier); got != p {
			t.Fatalf("CardChance(%s)=%v, want %v", tier, got, p)
		}
	}
}

func TestDraftRewardsSelectsExactEntries(t *testing.T) {
	cat := catalog.Default()

	// Ancient at full consistency: two missed bonus rolls, then per slot a
	// type draw and a catalog draw among the three common cards.
	src := random.NewSequence(0.9, 0.9, 0.55, 0.99, 0.55, 0.0, 0.1, 0.5)
	drafts := DraftRewards(src, cat, catalog.RarityCommon, TierAncient, 7)
	wantCards := []string{"card_the_early_bird", "card_the_novice", "card_the_stubborn_mule"}
	if len(drafts) != len(wantCards) {
		t.Fatalf("ancient drafts=%d, want %d", len(drafts), len(wantCards))
	}
	for i, d := range drafts {
		if d.Type != storage.RewardTypeCard || d.Entry.ID != wantCards[i] {
			t.Fatalf("slot %d = %s %s, want card %s", i, d.Type, d.Entry.ID, wantCards[i])
		}
	}
	if src.Drawn() != 8 {
		t.Fatalf("ancient draws=%d, want 8", src.Drawn())
	}

	// Weathered: one slot, 0.3 misses the 25% card chance.
	drafts = DraftRewards(random.NewSequence(0.3, 0.3), cat, catalog.RarityCommon, TierWeathered, 1)
	if len(drafts) != 1 || drafts[0].Type != storage.RewardTypeItem || drafts[0].Entry.ID != "item_trail_ration" {
		t.Fatalf("weathered drafts=%+v, want one item_trail_ration", drafts)
	}
	drafts = DraftRewards(random.NewSequence(0.2, 0.0), cat, catalog.RarityCommon, TierWeathered, 1)
	if len(drafts) != 1 || drafts[0].Type != storage.RewardTypeCard {
		t.Fatalf("weathered low roll=%+v, want a card", drafts)
	}
}

func TestDraftRewardsStayAtOrBelowChestRarity(t *testing.T) {
	cat := catalog.Default()
	src := random.NewSeeded(42)
	cards := 0
	for _, rarity := range catalog.AllRarities() {
		for days := 0; days <= 7; days++ {
			tier := TierFromConsistency(days)
			for round := 0; round < 25; round++ {
				for _, d := range DraftRewards(src, cat, rarity, tier, days) {
					if !d.Entry.Rarity.AtMost(rarity) {
						t.Fatalf("%s entry %s (%s) above chest rarity %s", d.Type, d.Entry.ID, d.Entry.Rarity, rarity)
					}
					if d.Type == storage.RewardTypeCard {
						cards++
					}
				}
			}
		}
	}
	if cards == 0 {
		t.Fatalf("no cards drawn across all tiers")
	}
}

func TestWinUnlockCount(t *testing.T) {
	want := map[int]int{0: 0, 1: 1, 2: 2, 3: 2, 4: 3, 5: 3, 10: 6}
	for locked, n := range want {
		if got := WinUnlockCount(locked); got != n {
			t.Fatalf("WinUnlockCount(%d)=%d, want %d", locked, got, n)
		}
	}
}

func TestLogEffortGrantsChestAndProgress(t *testing.T) {
	clock := newClock()
	svc, cleanup := newTestService(t, clock)
	defer cleanup()

	run := mustHabit(t, svc, "Run")
	first := mustLog(t, svc, run.ID)
	if first.EffortValue != 6 {
		t.Fatalf("effort=%d, want 6", first.EffortValue)
	}
	if first.Rarity != catalog.RarityCommon || first.ChestTier != TierWeathered {
		t.Fatalf("chest=%s/%s, want common/weathered", first.Rarity, first.ChestTier)
	}
	if len(first.Rewards) != 1 || !first.Rewards[0].Locked {
		t.Fatalf("rewards=%+v, want one locked", first.Rewards)
	}
	if first.LevelAfter != 1 || len(first.ArcUnlocks) != 0 {
		t.Fatalf("first log: level=%d unlocks=%d", first.LevelAfter, len(first.ArcUnlocks))
	}

	clock.Advance(time.Minute)
	second := mustLog(t, svc, run.ID)
	if second.LevelBefore != 1 || second.LevelAfter != 2 {
		t.Fatalf("level %d -> %d, want 1 -> 2", second.LevelBefore, second.LevelAfter)
	}
	if len(second.ArcUnlocks) != 1 || second.ArcUnlocks[0].ArcID != "arc_ember_road" {
		t.Fatalf("unlocks=%+v, want ember road", second.ArcUnlocks)
	}
	if second.ArcUnlocks[0].Milestone != 10 || second.ArcUnlocks[0].Fragment == "" {
		t.Fatalf("unlock=%+v", second.ArcUnlocks[0])
	}

	snap := mustSnapshot(t, svc)
	if snap.Identity == nil || snap.Identity.TotalEffortUnits != 12 {
		t.Fatalf("identity=%+v, want total 12", snap.Identity)
	}
	if snap.Counts.Efforts != 2 || snap.Counts.Chests != 2 || snap.Counts.LockedRewards != 2 {
		t.Fatalf("counts=%+v", snap.Counts)
	}
	if snap.ConsistencyScore != 1 {
		t.Fatalf("consistency=%d, want 1", snap.ConsistencyScore)
	}

	chests, err := svc.ListChests(context.Background(), 1)
	if err != nil {
		t.Fatalf("ListChests: %v", err)
	}
	if len(chests) != 1 || chests[0].ID != second.ChestID {
		t.Fatalf("newest chest=%+v, want %s", chests, second.ChestID)
	}
	if chests[0].Meta == nil || chests[0].Meta.HabitName != "Run" || chests[0].Meta.Theme != "body" {
		t.Fatalf("meta=%+v", chests[0].Meta)
	}
	if chests[0].Rewards[0].Name == "" {
		t.Fatalf("reward not joined with its collectible")
	}
}

func TestArcUnlockIsNotRepeated(t *testing.T) {
	clock := newClock()
	svc, cleanup := newTestService(t, clock)
	defer cleanup()

	run := mustHabit(t, svc, "Run")
	emitted := map[int]int{}
	for i := 0; i < 5; i++ {
		clock.Advance(time.Minute)
		for _, u := range mustLog(t, svc, run.ID).ArcUnlocks {
			if u.ArcID == "arc_ember_road" {
				emitted[u.Milestone]++
			}
		}
	}
	// 30 units: milestones 10 and 30 each exactly once.
	if emitted[10] != 1 || emitted[30] != 1 || len(emitted) != 2 {
		t.Fatalf("emitted=%v", emitted)
	}
	if p := arcProgress(t, svc, "arc_ember_road"); p.Progress != 30 || p.UnlockedCount != 2 {
		t.Fatalf("progress=%+v", p)
	}
}

func TestLevelNeverDecreases(t *testing.T) {
	clock := newClock()
	svc, cleanup := newTestService(t, clock)
	defer cleanup()
	ctx := context.Background()

	id, err := svc.EnsureIdentity(ctx)
	if err != nil {
		t.Fatalf("EnsureIdentity: %v", err)
	}
	id.Level = 5
	if err := svc.Store().WithTx(ctx, func(tx storage.Tx) error { return tx.PutIdentity(ctx, id) }); err != nil {
		t.Fatalf("PutIdentity: %v", err)
	}

	res := mustLog(t, svc, mustHabit(t, svc, "Run").ID)
	if res.LevelAfter != 5 {
		t.Fatalf("level=%d, want 5", res.LevelAfter)
	}
}

func TestLogEffortRejectsBadHabit(t *testing.T) {
	svc, cleanup := newTestService(t, newClock())
	defer cleanup()
	ctx := context.Background()

	_, err := svc.LogEffort(ctx, LogEffortInput{HabitID: "  "})
	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("empty id: err=%v, want ValidationError", err)
	}

	_, err = svc.LogEffort(ctx, LogEffortInput{HabitID: "missing"})
	var nf NotFoundError
	if !errors.As(err, &nf) || !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("unknown id: err=%v, want NotFoundError", err)
	}
	snap := mustSnapshot(t, svc)
	if snap.Identity != nil || snap.Counts.Efforts != 0 || snap.Counts.Chests != 0 {
		t.Fatalf("failed log left state behind: %+v", snap)
	}
}

func TestPersistedEffortWinsOverCatalog(t *testing.T) {
	svc, cleanup := newTestService(t, newClock())
	defer cleanup()
	ctx := context.Background()

	err := svc.Store().WithTx(ctx, func(tx storage.Tx) error {
		return tx.PutHabitEffort(ctx, storage.HabitEffortCache{Name: "run", Effort: 9, Source: "manual", Category: "body"})
	})
	if err != nil {
		t.Fatalf("PutHabitEffort: %v", err)
	}
	res, err := svc.ResolveEffort(ctx, "  RUN ")
	if err != nil {
		t.Fatalf("ResolveEffort: %v", err)
	}
	if res.Effort != 9 || res.Source != "manual" {
		t.Fatalf("resolution=%+v, want cached 9", res)
	}
	if got := mustLog(t, svc, mustHabit(t, svc, "Run").ID).EffortValue; got != 9 {
		t.Fatalf("logged effort=%d, want 9", got)
	}
}

func TestConsistencyCountsDistinctLocalDays(t *testing.T) {
	clock := newClock()
	svc, cleanup := newTestService(t, clock)
	defer cleanup()

	h := mustHabit(t, svc, "Read")
	mustLog(t, svc, h.ID)
	clock.AdvanceDays(1)
	mustLog(t, svc, h.ID)
	clock.Advance(time.Hour)
	mustLog(t, svc, h.ID)
	clock.AdvanceDays(2)
	res := mustLog(t, svc, h.ID)
	if res.ConsistencyScore != 3 {
		t.Fatalf("consistency=%d, want 3", res.ConsistencyScore)
	}
	if res.Rarity != catalog.RarityUncommon || res.ChestTier != TierSealed {
		t.Fatalf("chest=%s/%s, want uncommon/sealed", res.Rarity, res.ChestTier)
	}

	clock.AdvanceDays(10)
	snap := mustSnapshot(t, svc)
	if snap.ConsistencyScore != 0 || snap.InactivityDays != 10 {
		t.Fatalf("after gap: consistency=%d inactivity=%d", snap.ConsistencyScore, snap.InactivityDays)
	}
}

func TestMercyGatesAndCooldown(t *testing.T) {
	clock := newClock()
	svc, cleanup := newTestService(t, clock)
	defer cleanup()
	ctx := context.Background()

	run := mustHabit(t, svc, "Run")
	mustLog(t, svc, run.ID)
	st, err := svc.CanUseMercy(ctx)
	if err != nil {
		t.Fatalf("CanUseMercy: %v", err)
	}
	if st.Eligible || st.Reason != MercyNotInactive {
		t.Fatalf("fresh: %+v, want not_inactive", st)
	}

	clock.AdvanceDays(8)
	if st, _ = svc.CanUseMercy(ctx); st.Reason != MercyInsufficientEffort {
		t.Fatalf("low effort: %+v, want insufficient_effort", st)
	}

	clock.AdvanceDays(-8)
	for i := 0; i < 3; i++ {
		clock.Advance(time.Minute)
		mustLog(t, svc, run.ID)
	}
	clock.AdvanceDays(8)
	if st, _ = svc.CanUseMercy(ctx); !st.Eligible || st.InactivityDays != 8 {
		t.Fatalf("after gap: %+v, want eligible", st)
	}

	res := mustLog(t, svc, run.ID)
	if !res.MercyUsed || res.MercyBypass {
		t.Fatalf("mercy used=%v bypass=%v, want true/false", res.MercyUsed, res.MercyBypass)
	}
	if res.Rarity != catalog.RarityUncommon {
		t.Fatalf("rarity=%s, want uncommon after bump", res.Rarity)
	}
	view, err := svc.GetChest(ctx, res.ChestID)
	if err != nil {
		t.Fatalf("GetChest: %v", err)
	}
	if len(view.Rewards) == 0 {
		t.Fatalf("mercy chest has no rewards")
	}
	for _, r := range view.Rewards {
		if r.Rarity != string(catalog.RarityCommon) {
			t.Fatalf("reward %s rarity=%s, want common: draws stay at the base rarity", r.RefID, r.Rarity)
		}
	}

	clock.AdvanceDays(10)
	st, _ = svc.CanUseMercy(ctx)
	if st.Eligible || st.Reason != MercyCooldown || st.CooldownDaysRemaining != 20 {
		t.Fatalf("cooldown: %+v, want 20 days remaining", st)
	}
	res = mustLog(t, svc, run.ID)
	if res.MercyUsed {
		t.Fatalf("mercy applied during cooldown")
	}
	if n := mustSnapshot(t, svc).Counts.MercyEvents; n != 1 {
		t.Fatalf("mercy events=%d, want 1", n)
	}
}

func TestMercyBypassUnlocksOneReward(t *testing.T) {
	clock := newClock()
	svc, cleanup := newTestService(t, clock)
	defer cleanup()
	ctx := context.Background()

	run := mustHabit(t, svc, "Run")
	for i := 0; i < 4; i++ {
		clock.Advance(time.Minute)
		mustLog(t, svc, run.ID)
	}
	clock.AdvanceDays(15)
	res := mustLog(t, svc, run.ID)
	if !res.MercyUsed || !res.MercyBypass {
		t.Fatalf("mercy used=%v bypass=%v, want both", res.MercyUsed, res.MercyBypass)
	}
	chest, err := svc.GetChest(ctx, res.ChestID)
	if err != nil {
		t.Fatalf("GetChest: %v", err)
	}
	if chest.UnlockedRewardCount != 1 || chest.Rewards[0].Locked {
		t.Fatalf("chest=%+v, want first reward unlocked", chest)
	}
	if chest.Meta == nil || !chest.Meta.MercyApplied {
		t.Fatalf("meta should record mercy")
	}
}

func grantFive(t *testing.T, svc *Service) GrantResult {
	t.Helper()
	res, err := svc.GrantChest(context.Background(), ForcedChest{
		Rarity: catalog.RarityEpic,
		Tier:   TierRuned,
		Rewards: []ForcedReward{
			{Type: storage.RewardTypeItem, RefID: "item_chalk_stub"},
			{Type: storage.RewardTypeItem, RefID: "item_trail_ration"},
			{Type: storage.RewardTypeCard, RefID: "card_the_novice"},
			{Type: storage.RewardTypeCard, RefID: "card_the_unbroken", Rarity: catalog.RarityCommon},
			{Type: storage.RewardTypeItem, RefID: "homemade_trinket"},
		},
	})
	if err != nil {
		t.Fatalf("GrantChest: %v", err)
	}
	return res
}

func TestGrantChestUsesExactRewards(t *testing.T) {
	svc, cleanup := newTestService(t, newClock())
	defer cleanup()
	ctx := context.Background()

	res := grantFive(t, svc)
	chest, err := svc.GetChest(ctx, res.ChestID)
	if err != nil {
		t.Fatalf("GetChest: %v", err)
	}
	if chest.Rarity != "epic" || chest.Tier != "runed" || len(chest.Rewards) != 5 {
		t.Fatalf("chest=%+v", chest.Chest)
	}
	for _, r := range chest.Rewards {
		if !r.Locked {
			t.Fatalf("granted reward %s is unlocked", r.ID)
		}
	}
	if chest.Rewards[3].Rarity != "common" {
		t.Fatalf("rarity override ignored: %s", chest.Rewards[3].Rarity)
	}
	if chest.Rewards[4].Name != "homemade_trinket" {
		t.Fatalf("unknown ref should use id as name, got %q", chest.Rewards[4].Name)
	}

	snap := mustSnapshot(t, svc)
	if snap.Identity != nil || snap.Counts.Efforts != 0 || snap.Counts.Arcs != 0 {
		t.Fatalf("grant touched progression: %+v", snap)
	}

	_, err = svc.GrantChest(ctx, ForcedChest{Rewards: []ForcedReward{{Type: "gem", RefID: "x"}}})
	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("bad type: err=%v, want ValidationError", err)
	}
}

func TestCombatWinUnlocksSubsetAndLoseKeepsState(t *testing.T) {
	svc, cleanup := newTestService(t, newClock(), WithRandom(random.NewSequence(0.3, 0.7, 0.1, 0.5)))
	defer cleanup()
	ctx := context.Background()
	grant := grantFive(t, svc)

	lose, err := svc.ResolveCombatEncounter(ctx, CombatInput{ChestID: grant.ChestID, Outcome: OutcomeLose})
	if err != nil {
		t.Fatalf("lose: %v", err)
	}
	if lose.Unlocked != 0 || lose.Remaining != 5 {
		t.Fatalf("lose=%+v", lose)
	}

	win, err := svc.ResolveCombatEncounter(ctx, CombatInput{EncounterID: "enc-1", ChestID: grant.ChestID, Outcome: OutcomeWin})
	if err != nil {
		t.Fatalf("win: %v", err)
	}
	if win.EncounterID != "enc-1" || win.Unlocked != 3 || win.Remaining != 2 {
		t.Fatalf("win=%+v, want 3 unlocked", win)
	}
	chest, _ := svc.GetChest(ctx, grant.ChestID)
	if chest.UnlockedRewardCount != 3 || chest.LockedCount() != 2 {
		t.Fatalf("chest unlocked=%d locked=%d", chest.UnlockedRewardCount, chest.LockedCount())
	}

	_, err = svc.ResolveCombatEncounter(ctx, CombatInput{EncounterID: "enc-1", ChestID: grant.ChestID, Outcome: OutcomeWin})
	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("reused encounter: err=%v, want ValidationError", err)
	}

	again, err := svc.ResolveCombatEncounter(ctx, CombatInput{ChestID: grant.ChestID, Outcome: OutcomeWin})
	if err != nil {
		t.Fatalf("second win: %v", err)
	}
	if again.Unlocked != 2 || again.Remaining != 0 {
		t.Fatalf("second win=%+v", again)
	}
	if n := mustSnapshot(t, svc).Counts.Encounters; n != 3 {
		t.Fatalf("encounters=%d, want 3", n)
	}

	_, err = svc.ResolveCombatEncounter(ctx, CombatInput{ChestID: "nope", Outcome: OutcomeWin})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("unknown chest: err=%v", err)
	}
}

func TestEquipCardRequiresUnlock(t *testing.T) {
	svc, cleanup := newTestService(t, newClock())
	defer cleanup()
	ctx := context.Background()

	grant, err := svc.GrantChest(ctx, ForcedChest{Rewards: []ForcedReward{{Type: storage.RewardTypeCard, RefID: "card_the_novice"}}})
	if err != nil {
		t.Fatalf("GrantChest: %v", err)
	}
	cardID := grant.Rewards[0].RefID
	var verr ValidationError
	if err := svc.EquipCard(ctx, cardID); !errors.As(err, &verr) {
		t.Fatalf("locked card: err=%v, want ValidationError", err)
	}
	if _, err := svc.ResolveCombatEncounter(ctx, CombatInput{ChestID: grant.ChestID, Outcome: OutcomeWin}); err != nil {
		t.Fatalf("win: %v", err)
	}
	if err := svc.EquipCard(ctx, cardID); err != nil {
		t.Fatalf("EquipCard: %v", err)
	}
	snap := mustSnapshot(t, svc)
	if snap.Identity.EquippedCardID == nil || *snap.Identity.EquippedCardID != cardID {
		t.Fatalf("equipped=%v", snap.Identity.EquippedCardID)
	}
}

func TestArcIgnoreAndBinding(t *testing.T) {
	clock := newClock()
	svc, cleanup := newTestService(t, clock)
	defer cleanup()
	ctx := context.Background()

	run := mustHabit(t, svc, "Run")
	read := mustHabit(t, svc, "Read")

	if err := svc.IgnoreArcQuest(ctx, "arc_ember_road"); err != nil {
		t.Fatalf("IgnoreArcQuest: %v", err)
	}
	if err := svc.BindArcQuestToHabit(ctx, "arc_iron_garden", read.ID); err != nil {
		t.Fatalf("BindArcQuestToHabit: %v", err)
	}
	mustLog(t, svc, run.ID)

	if p := arcProgress(t, svc, "arc_ember_road"); p.Progress != 0 || !p.Ignored {
		t.Fatalf("ignored arc advanced: %+v", p)
	}
	if p := arcProgress(t, svc, "arc_iron_garden"); p.Progress != 0 || !p.Accepted {
		t.Fatalf("bound arc advanced by other habit: %+v", p)
	}
	if p := arcProgress(t, svc, "arc_quiet_library"); p.Progress != 6 {
		t.Fatalf("unbound arc progress=%d, want 6", p.Progress)
	}

	clock.Advance(time.Minute)
	readRes := mustLog(t, svc, read.ID)
	if p := arcProgress(t, svc, "arc_iron_garden"); p.Progress != readRes.EffortValue {
		t.Fatalf("bound arc progress=%d, want %d", p.Progress, readRes.EffortValue)
	}

	if err := svc.AcceptArcQuest(ctx, "arc_ember_road"); err != nil {
		t.Fatalf("AcceptArcQuest: %v", err)
	}
	clock.Advance(time.Minute)
	mustLog(t, svc, run.ID)
	if p := arcProgress(t, svc, "arc_ember_road"); p.Progress != 6 || p.Ignored {
		t.Fatalf("accepted arc: %+v", p)
	}

	if err := svc.AcceptArcQuest(ctx, "arc_nowhere"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("unknown arc: err=%v", err)
	}
	if err := svc.BindArcQuestToHabit(ctx, "arc_quiet_library", "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("unknown habit: err=%v", err)
	}
}

func TestDeleteHabitCascadesAndUnbinds(t *testing.T) {
	svc, cleanup := newTestService(t, newClock())
	defer cleanup()
	ctx := context.Background()

	read := mustHabit(t, svc, "Read")
	mustLog(t, svc, read.ID)
	if err := svc.BindArcQuestToHabit(ctx, "arc_quiet_library", read.ID); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if err := svc.DeleteHabit(ctx, read.ID); err != nil {
		t.Fatalf("DeleteHabit: %v", err)
	}
	snap := mustSnapshot(t, svc)
	if snap.Counts.Habits != 0 || snap.Counts.Efforts != 0 || snap.Counts.Chests != 1 {
		t.Fatalf("counts=%+v", snap.Counts)
	}
	if p := arcProgress(t, svc, "arc_quiet_library"); p.HabitID != nil {
		t.Fatalf("arc still bound to deleted habit")
	}
	if err := svc.DeleteHabit(ctx, read.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("second delete: err=%v", err)
	}
}

func TestPauseResumeFilters(t *testing.T) {
	svc, cleanup := newTestService(t, newClock())
	defer cleanup()
	ctx := context.Background()

	a := mustHabit(t, svc, "Stretch")
	mustHabit(t, svc, "Journal")
	if _, err := svc.PauseHabit(ctx, a.ID); err != nil {
		t.Fatalf("PauseHabit: %v", err)
	}
	active, _ := svc.ListHabits(ctx, HabitFilterActive)
	paused, _ := svc.ListHabits(ctx, HabitFilterPaused)
	if len(active) != 1 || len(paused) != 1 || paused[0].ID != a.ID {
		t.Fatalf("active=%d paused=%d", len(active), len(paused))
	}
	// Paused habits still accept efforts.
	mustLog(t, svc, a.ID)
	if _, err := svc.ResumeHabit(ctx, a.ID); err != nil {
		t.Fatalf("ResumeHabit: %v", err)
	}
	if all, _ := svc.ListHabits(ctx, HabitFilterActive); len(all) != 2 {
		t.Fatalf("active after resume=%d", len(all))
	}
	if _, err := svc.CreateHabit(ctx, "   "); err == nil {
		t.Fatalf("expected error for blank name")
	}
}

type failingTx struct{ storage.Tx }

func (failingTx) InsertChestMeta(context.Context, storage.ChestMeta) error {
	return errors.New("disk full")
}

// failingStore injects a failure late in the effort pipeline.
type failingStore struct {
	*storage.MemoryStore
	fail bool
}

func (s *failingStore) WithTx(ctx context.Context, fn func(tx storage.Tx) error) error {
	return s.MemoryStore.WithTx(ctx, func(tx storage.Tx) error {
		if s.fail {
			return fn(failingTx{tx})
		}
		return fn(tx)
	})
}

func TestLogEffortRollsBackOnFailure(t *testing.T) {
	clock := newClock()
	store := &failingStore{MemoryStore: storage.NewMemoryStore()}
	svc := NewService(store, WithClock(clock.Now), WithLocation(time.UTC), WithRandom(random.NewSequence(0.9)))
	ctx := context.Background()

	run := mustHabit(t, svc, "Run")
	store.fail = true
	if _, err := svc.LogEffort(ctx, LogEffortInput{HabitID: run.ID}); err == nil {
		t.Fatalf("expected failure")
	}
	store.fail = false

	snap := mustSnapshot(t, svc)
	if snap.Identity != nil {
		t.Fatalf("identity survived rollback")
	}
	c := snap.Counts
	if c.Habits != 1 || c.Efforts != 0 || c.Chests != 0 || c.Rewards != 0 || c.Items+c.Cards != 0 || c.Arcs != 0 {
		t.Fatalf("rollback left records: %+v", c)
	}
	if _, err := svc.LogEffort(ctx, LogEffortInput{HabitID: run.ID}); err != nil {
		t.Fatalf("retry after rollback: %v", err)
	}
}

func TestStandaloneQueries(t *testing.T) {
	clock := newClock()
	svc, cleanup := newTestService(t, clock)
	defer cleanup()
	ctx := context.Background()

	if n, err := svc.GetInactivityDays(ctx); err != nil || n != 0 {
		t.Fatalf("no profile: inactivity=%d err=%v", n, err)
	}
	run := mustHabit(t, svc, "Run")
	for i := 0; i < 4; i++ {
		clock.Advance(time.Minute)
		mustLog(t, svc, run.ID)
	}
	clock.AdvanceDays(3)
	if n, _ := svc.GetInactivityDays(ctx); n != 3 {
		t.Fatalf("inactivity=%d, want 3", n)
	}
	if n, _ := svc.GetConsistencyScore(ctx); n != 1 {
		t.Fatalf("consistency=%d, want 1", n)
	}

	d, err := svc.ApplyMercyIfEligible(ctx, catalog.RarityRare, 3)
	if err != nil || d.Applied || d.Rarity != catalog.RarityRare {
		t.Fatalf("below threshold: %+v err=%v", d, err)
	}
	d, err = svc.ApplyMercyIfEligible(ctx, catalog.RarityRelic, MercyBypassDays)
	if err != nil || !d.Applied || !d.Bypass || d.Rarity != catalog.RarityRelic {
		t.Fatalf("relic stays capped: %+v err=%v", d, err)
	}

	recent, err := svc.ListRecentEfforts(ctx, 2)
	if err != nil {
		t.Fatalf("ListRecentEfforts: %v", err)
	}
	if len(recent) != 2 || !recent[0].Timestamp.After(recent[1].Timestamp) {
		t.Fatalf("recent=%+v, want two newest first", recent)
	}
}
