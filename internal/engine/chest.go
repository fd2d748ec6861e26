package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/JackJJClark/LifeMaxxing-2.0-sub000/internal/catalog"
	"github.com/JackJJClark/LifeMaxxing-2.0-sub000/internal/random"
	"github.com/JackJJClark/LifeMaxxing-2.0-sub000/internal/storage"
)

// Tier is the chest's visual/quality grade, independent of rarity.
type Tier string

const (
	TierWeathered Tier = "weathered"
	TierSealed    Tier = "sealed"
	TierEngraved  Tier = "engraved"
	TierRuned     Tier = "runed"
	TierAncient   Tier = "ancient"
)

func AllTiers() []Tier {
	return []Tier{TierWeathered, TierSealed, TierEngraved, TierRuned, TierAncient}
}

func (t Tier) Rank() int {
	for i, v := range AllTiers() {
		if v == t {
			return i
		}
	}
	return -1
}

func (t Tier) IsValid() bool { return t.Rank() >= 0 }

func ParseTier(input string) (Tier, error) {
	t := Tier(strings.ToLower(strings.TrimSpace(input)))
	if !t.IsValid() {
		return "", fmt.Errorf("unknown tier %q", input)
	}
	return t, nil
}

// RarityFromConsistency maps active days in the last week to a rarity.
func RarityFromConsistency(days int) catalog.Rarity {
	switch {
	case days >= 7:
		return catalog.RarityRelic
	case days >= 6:
		return catalog.RarityEpic
	case days >= 5:
		return catalog.RarityRare
	case days >= 3:
		return catalog.RarityUncommon
	default:
		return catalog.RarityCommon
	}
}

func TierFromConsistency(days int) Tier {
	switch {
	case days >= 7:
		return TierAncient
	case days >= 6:
		return TierRuned
	case days >= 5:
		return TierEngraved
	case days >= 3:
		return TierSealed
	default:
		return TierWeathered
	}
}

// RewardCount is the number of reward slots for a chest. Draw order: the
// sealed coin flip, then the consistency >= 7 bonus, then the >= 5 bonus.
func RewardCount(src random.Source, tier Tier, consistency int) int {
	var n int
	switch tier {
	case TierAncient, TierRuned:
		n = 3
	case TierEngraved:
		n = 2
	case TierSealed:
		n = 1
		if !random.Chance(src, 0.5) {
			n = 2
		}
	default:
		n = 1
	}
	if consistency >= 7 && random.Chance(src, 0.5) {
		n++
	}
	if consistency >= 5 && random.Chance(src, 0.35) {
		n++
	}
	return n
}

// CardChance is the probability a slot yields a card rather than an item.
func CardChance(tier Tier) float64 {
	switch tier {
	case TierAncient:
		return 0.6
	case TierRuned:
		return 0.5
	case TierEngraved:
		return 0.4
	default:
		return 0.25
	}
}

// RewardDraft is a slot decided but not yet persisted.
type RewardDraft struct {
	Type  string
	Entry catalog.Entry
}

// DraftRewards rolls the slot count, then per slot a type draw followed by
// a catalog draw capped at rarity.
func DraftRewards(src random.Source, cat *catalog.Catalog, rarity catalog.Rarity, tier Tier, consistency int) []RewardDraft {
	n := RewardCount(src, tier, consistency)
	p := CardChance(tier)
	drafts := make([]RewardDraft, 0, n)
	for i := 0; i < n; i++ {
		if random.Chance(src, p) {
			drafts = append(drafts, RewardDraft{Type: storage.RewardTypeCard, Entry: catalog.Pick(src, cat.Cards, rarity)})
			continue
		}
		drafts = append(drafts, RewardDraft{Type: storage.RewardTypeItem, Entry: catalog.Pick(src, cat.Items, rarity)})
	}
	return drafts
}

// materialize writes one collectible instance and one locked reward per draft.
func materialize(ctx context.Context, tx storage.Tx, chestID string, drafts []RewardDraft, now time.Time) ([]storage.Reward, error) {
	rewards := make([]storage.Reward, 0, len(drafts))
	for i, d := range drafts {
		// Offset keeps slot order stable when listing by creation time.
		at := now.Add(time.Duration(i))
		refID := newID()
		switch d.Type {
		case storage.RewardTypeCard:
			if err := tx.InsertCard(ctx, storage.Card{
				ID: refID, CatalogID: d.Entry.ID, Name: d.Entry.Name,
				Rarity: string(d.Entry.Rarity), Effect: d.Entry.Effect, CreatedAt: at,
			}); err != nil {
				return nil, err
			}
		case storage.RewardTypeItem:
			if err := tx.InsertItem(ctx, storage.Item{
				ID: refID, CatalogID: d.Entry.ID, Name: d.Entry.Name,
				Rarity: string(d.Entry.Rarity), Effect: d.Entry.Effect, CreatedAt: at,
			}); err != nil {
				return nil, err
			}
		default:
			return nil, ValidationError{Field: "reward.type", Reason: fmt.Sprintf("unknown type %q", d.Type)}
		}
		r := storage.Reward{
			ID:        newID(),
			ChestID:   chestID,
			Type:      d.Type,
			RefID:     refID,
			Locked:    true,
			CreatedAt: at,
		}
		if err := tx.InsertReward(ctx, r); err != nil {
			return nil, err
		}
		rewards = append(rewards, r)
	}
	return rewards, nil
}

// unlockRewards clears the locked flag on ids and recomputes the chest's
// unlocked count from its rewards.
func unlockRewards(ctx context.Context, tx storage.Tx, chest *storage.Chest, ids []string) error {
	for _, id := range ids {
		if err := tx.UnlockReward(ctx, id); err != nil {
			return err
		}
	}
	rewards, err := tx.ListChestRewards(ctx, chest.ID)
	if err != nil {
		return err
	}
	unlocked := 0
	for _, r := range rewards {
		if !r.Locked {
			unlocked++
		}
	}
	chest.UnlockedRewardCount = unlocked
	return tx.UpdateChest(ctx, *chest)
}

// ForcedReward names a collectible for an admin-granted chest. Unknown
// RefIDs still materialize, using the id as the name.
type ForcedReward struct {
	Type   string
	RefID  string
	Rarity catalog.Rarity
}

type ForcedChest struct {
	Rarity    catalog.Rarity
	Tier      Tier
	HabitName string
	Rewards   []ForcedReward
}

type GrantResult struct {
	ChestID string
	Rewards []storage.Reward
}

func (s *Service) forcedDrafts(in ForcedChest) ([]RewardDraft, error) {
	if len(in.Rewards) == 0 {
		return nil, ValidationError{Field: "rewards", Reason: "at least one reward is required"}
	}
	drafts := make([]RewardDraft, 0, len(in.Rewards))
	for i, fr := range in.Rewards {
		ref := strings.TrimSpace(fr.RefID)
		if ref == "" {
			return nil, ValidationError{Field: fmt.Sprintf("rewards[%d].refId", i), Reason: "is required"}
		}
		var (
			entry catalog.Entry
			ok    bool
		)
		switch fr.Type {
		case storage.RewardTypeItem:
			entry, ok = s.catalog.Item(ref)
		case storage.RewardTypeCard:
			entry, ok = s.catalog.Card(ref)
		default:
			return nil, ValidationError{Field: fmt.Sprintf("rewards[%d].type", i), Reason: "must be item or card"}
		}
		if !ok {
			entry = catalog.Entry{ID: ref, Name: ref, Rarity: catalog.RarityCommon}
		}
		if fr.Rarity != "" {
			if !fr.Rarity.IsValid() {
				return nil, ValidationError{Field: fmt.Sprintf("rewards[%d].rarity", i), Reason: fmt.Sprintf("unknown rarity %q", fr.Rarity)}
			}
			entry.Rarity = fr.Rarity
		}
		drafts = append(drafts, RewardDraft{Type: fr.Type, Entry: entry})
	}
	return drafts, nil
}

// GrantChest creates a chest with exactly the given rewards, all locked.
// No effort, mercy, or arc progress is involved.
func (s *Service) GrantChest(ctx context.Context, in ForcedChest) (GrantResult, error) {
	if in.Rarity == "" {
		in.Rarity = catalog.RarityCommon
	}
	if !in.Rarity.IsValid() {
		return GrantResult{}, ValidationError{Field: "rarity", Reason: fmt.Sprintf("unknown rarity %q", in.Rarity)}
	}
	if in.Tier == "" {
		in.Tier = TierWeathered
	}
	if !in.Tier.IsValid() {
		return GrantResult{}, ValidationError{Field: "tier", Reason: fmt.Sprintf("unknown tier %q", in.Tier)}
	}
	drafts, err := s.forcedDrafts(in)
	if err != nil {
		return GrantResult{}, err
	}

	var out GrantResult
	now := s.clock()
	err = s.store.WithTx(ctx, func(tx storage.Tx) error {
		chest := storage.Chest{
			ID:       newID(),
			Rarity:   string(in.Rarity),
			Tier:     string(in.Tier),
			EarnedAt: now,
		}
		if err := tx.InsertChest(ctx, chest); err != nil {
			return err
		}
		rewards, err := materialize(ctx, tx, chest.ID, drafts, now)
		if err != nil {
			return err
		}
		if err := tx.InsertChestMeta(ctx, storage.ChestMeta{
			ChestID:   chest.ID,
			HabitName: strings.TrimSpace(in.HabitName),
			Theme:     catalog.DefaultCategory,
		}); err != nil {
			return err
		}
		out = GrantResult{ChestID: chest.ID, Rewards: rewards}
		return nil
	})
	if err != nil {
		return GrantResult{}, err
	}
	s.log.Info("chest granted", "chest_id", out.ChestID, "rarity", in.Rarity, "tier", in.Tier, "rewards", len(out.Rewards))
	return out, nil
}
