package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemoryStore keeps records in process. WithTx works on a copy of the state
// and swaps it in only when fn succeeds, so failed operations leave nothing
// behind.
type MemoryStore struct {
	mu    sync.Mutex
	state *memState
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: newMemState()}
}

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) WithTx(ctx context.Context, fn func(tx Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	staged := s.state.clone()
	if err := fn(staged); err != nil {
		return err
	}
	s.state = staged
	return nil
}

type memState struct {
	identity    *Identity
	habits      map[string]Habit
	efforts     []EffortLog
	chests      map[string]Chest
	chestMeta   map[string]ChestMeta
	rewards     []Reward
	items       map[string]Item
	cards       map[string]Card
	arcs        map[string]ArcQuestProgress
	mercy       []MercyEvent
	encounters  map[string]CombatEncounter
	effortCache map[string]HabitEffortCache
}

func newMemState() *memState {
	return &memState{
		habits:      map[string]Habit{},
		chests:      map[string]Chest{},
		chestMeta:   map[string]ChestMeta{},
		items:       map[string]Item{},
		cards:       map[string]Card{},
		arcs:        map[string]ArcQuestProgress{},
		encounters:  map[string]CombatEncounter{},
		effortCache: map[string]HabitEffortCache{},
	}
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (m *memState) clone() *memState {
	c := &memState{
		habits:      cloneMap(m.habits),
		efforts:     append([]EffortLog(nil), m.efforts...),
		chests:      cloneMap(m.chests),
		chestMeta:   cloneMap(m.chestMeta),
		rewards:     append([]Reward(nil), m.rewards...),
		items:       cloneMap(m.items),
		cards:       cloneMap(m.cards),
		arcs:        cloneMap(m.arcs),
		mercy:       append([]MercyEvent(nil), m.mercy...),
		encounters:  cloneMap(m.encounters),
		effortCache: cloneMap(m.effortCache),
	}
	if m.identity != nil {
		id := *m.identity
		c.identity = &id
	}
	return c
}

func (m *memState) Clear(ctx context.Context) error {
	*m = *newMemState()
	return nil
}

func (m *memState) GetIdentity(ctx context.Context) (Identity, error) {
	if m.identity == nil {
		return Identity{}, fmt.Errorf("identity get: %w", ErrNotFound)
	}
	return *m.identity, nil
}

func (m *memState) PutIdentity(ctx context.Context, id Identity) error {
	m.identity = &id
	return nil
}

func (m *memState) InsertHabit(ctx context.Context, h Habit) error {
	if _, ok := m.habits[h.ID]; ok {
		return fmt.Errorf("habit insert: duplicate id %s", h.ID)
	}
	m.habits[h.ID] = h
	return nil
}

func (m *memState) GetHabit(ctx context.Context, id string) (Habit, error) {
	h, ok := m.habits[id]
	if !ok {
		return Habit{}, fmt.Errorf("habit get: %w", ErrNotFound)
	}
	return h, nil
}

func (m *memState) UpdateHabit(ctx context.Context, h Habit) error {
	if _, ok := m.habits[h.ID]; !ok {
		return fmt.Errorf("habit update: %w", ErrNotFound)
	}
	m.habits[h.ID] = h
	return nil
}

func (m *memState) DeleteHabit(ctx context.Context, id string) error {
	if _, ok := m.habits[id]; !ok {
		return fmt.Errorf("habit delete: %w", ErrNotFound)
	}
	delete(m.habits, id)
	kept := m.efforts[:0]
	for _, e := range m.efforts {
		if e.HabitID != id {
			kept = append(kept, e)
		}
	}
	m.efforts = kept
	return nil
}

func (m *memState) ListHabits(ctx context.Context) ([]Habit, error) {
	out := make([]Habit, 0, len(m.habits))
	for _, h := range m.habits {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *memState) InsertEffortLog(ctx context.Context, e EffortLog) error {
	for _, existing := range m.efforts {
		if existing.ID == e.ID {
			return fmt.Errorf("effort insert: duplicate id %s", e.ID)
		}
	}
	m.efforts = append(m.efforts, e)
	sort.SliceStable(m.efforts, func(i, j int) bool {
		return m.efforts[i].Timestamp.Before(m.efforts[j].Timestamp)
	})
	return nil
}

func (m *memState) ListEffortLogs(ctx context.Context) ([]EffortLog, error) {
	return append([]EffortLog(nil), m.efforts...), nil
}

func (m *memState) ListEffortLogsSince(ctx context.Context, since time.Time) ([]EffortLog, error) {
	var out []EffortLog
	for _, e := range m.efforts {
		if !e.Timestamp.Before(since) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memState) LatestEffortLog(ctx context.Context) (EffortLog, error) {
	if len(m.efforts) == 0 {
		return EffortLog{}, fmt.Errorf("effort latest: %w", ErrNotFound)
	}
	return m.efforts[len(m.efforts)-1], nil
}

func (m *memState) InsertChest(ctx context.Context, c Chest) error {
	if _, ok := m.chests[c.ID]; ok {
		return fmt.Errorf("chest insert: duplicate id %s", c.ID)
	}
	m.chests[c.ID] = c
	return nil
}

func (m *memState) GetChest(ctx context.Context, id string) (Chest, error) {
	c, ok := m.chests[id]
	if !ok {
		return Chest{}, fmt.Errorf("chest get: %w", ErrNotFound)
	}
	return c, nil
}

func (m *memState) UpdateChest(ctx context.Context, c Chest) error {
	if _, ok := m.chests[c.ID]; !ok {
		return fmt.Errorf("chest update: %w", ErrNotFound)
	}
	m.chests[c.ID] = c
	return nil
}

func (m *memState) ListChests(ctx context.Context) ([]Chest, error) {
	out := make([]Chest, 0, len(m.chests))
	for _, c := range m.chests {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].EarnedAt.Equal(out[j].EarnedAt) {
			return out[i].EarnedAt.After(out[j].EarnedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (m *memState) InsertChestMeta(ctx context.Context, meta ChestMeta) error {
	if _, ok := m.chests[meta.ChestID]; !ok {
		return fmt.Errorf("chest meta insert: unknown chest %s", meta.ChestID)
	}
	if _, ok := m.chestMeta[meta.ChestID]; ok {
		return fmt.Errorf("chest meta insert: duplicate chest %s", meta.ChestID)
	}
	m.chestMeta[meta.ChestID] = meta
	return nil
}

func (m *memState) GetChestMeta(ctx context.Context, chestID string) (ChestMeta, error) {
	meta, ok := m.chestMeta[chestID]
	if !ok {
		return ChestMeta{}, fmt.Errorf("chest meta get: %w", ErrNotFound)
	}
	return meta, nil
}

func (m *memState) ListChestMeta(ctx context.Context) ([]ChestMeta, error) {
	out := make([]ChestMeta, 0, len(m.chestMeta))
	for _, meta := range m.chestMeta {
		out = append(out, meta)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ChestID < out[j].ChestID })
	return out, nil
}

func (m *memState) InsertReward(ctx context.Context, r Reward) error {
	if _, ok := m.chests[r.ChestID]; !ok {
		return fmt.Errorf("reward insert: unknown chest %s", r.ChestID)
	}
	for _, existing := range m.rewards {
		if existing.ID == r.ID {
			return fmt.Errorf("reward insert: duplicate id %s", r.ID)
		}
	}
	m.rewards = append(m.rewards, r)
	return nil
}

func (m *memState) ListRewards(ctx context.Context) ([]Reward, error) {
	return append([]Reward(nil), m.rewards...), nil
}

func (m *memState) ListChestRewards(ctx context.Context, chestID string) ([]Reward, error) {
	var out []Reward
	for _, r := range m.rewards {
		if r.ChestID == chestID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memState) UnlockReward(ctx context.Context, id string) error {
	for i := range m.rewards {
		if m.rewards[i].ID == id {
			m.rewards[i].Locked = false
			return nil
		}
	}
	return fmt.Errorf("reward unlock: %w", ErrNotFound)
}

func (m *memState) InsertItem(ctx context.Context, it Item) error {
	if _, ok := m.items[it.ID]; ok {
		return fmt.Errorf("item insert: duplicate id %s", it.ID)
	}
	m.items[it.ID] = it
	return nil
}

func (m *memState) GetItem(ctx context.Context, id string) (Item, error) {
	it, ok := m.items[id]
	if !ok {
		return Item{}, fmt.Errorf("item get: %w", ErrNotFound)
	}
	return it, nil
}

func (m *memState) ListItems(ctx context.Context) ([]Item, error) {
	out := make([]Item, 0, len(m.items))
	for _, it := range m.items {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *memState) InsertCard(ctx context.Context, c Card) error {
	if _, ok := m.cards[c.ID]; ok {
		return fmt.Errorf("card insert: duplicate id %s", c.ID)
	}
	m.cards[c.ID] = c
	return nil
}

func (m *memState) GetCard(ctx context.Context, id string) (Card, error) {
	c, ok := m.cards[id]
	if !ok {
		return Card{}, fmt.Errorf("card get: %w", ErrNotFound)
	}
	return c, nil
}

func (m *memState) ListCards(ctx context.Context) ([]Card, error) {
	out := make([]Card, 0, len(m.cards))
	for _, c := range m.cards {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *memState) GetArcProgress(ctx context.Context, arcID string) (ArcQuestProgress, error) {
	p, ok := m.arcs[arcID]
	if !ok {
		return ArcQuestProgress{}, fmt.Errorf("arc get: %w", ErrNotFound)
	}
	return p, nil
}

func (m *memState) PutArcProgress(ctx context.Context, p ArcQuestProgress) error {
	m.arcs[p.ArcID] = p
	return nil
}

func (m *memState) ListArcProgress(ctx context.Context) ([]ArcQuestProgress, error) {
	out := make([]ArcQuestProgress, 0, len(m.arcs))
	for _, p := range m.arcs {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ArcID < out[j].ArcID })
	return out, nil
}

func (m *memState) InsertMercyEvent(ctx context.Context, e MercyEvent) error {
	for _, existing := range m.mercy {
		if existing.ID == e.ID {
			return fmt.Errorf("mercy insert: duplicate id %s", e.ID)
		}
	}
	m.mercy = append(m.mercy, e)
	sort.SliceStable(m.mercy, func(i, j int) bool { return m.mercy[i].CreatedAt.Before(m.mercy[j].CreatedAt) })
	return nil
}

func (m *memState) LatestMercyEvent(ctx context.Context) (MercyEvent, error) {
	if len(m.mercy) == 0 {
		return MercyEvent{}, fmt.Errorf("mercy latest: %w", ErrNotFound)
	}
	return m.mercy[len(m.mercy)-1], nil
}

func (m *memState) ListMercyEvents(ctx context.Context) ([]MercyEvent, error) {
	return append([]MercyEvent(nil), m.mercy...), nil
}

func (m *memState) InsertCombatEncounter(ctx context.Context, e CombatEncounter) error {
	if _, ok := m.encounters[e.ID]; ok {
		return fmt.Errorf("combat insert: duplicate id %s", e.ID)
	}
	m.encounters[e.ID] = e
	return nil
}

func (m *memState) GetCombatEncounter(ctx context.Context, id string) (CombatEncounter, error) {
	e, ok := m.encounters[id]
	if !ok {
		return CombatEncounter{}, fmt.Errorf("combat get: %w", ErrNotFound)
	}
	return e, nil
}

func (m *memState) ListCombatEncounters(ctx context.Context) ([]CombatEncounter, error) {
	out := make([]CombatEncounter, 0, len(m.encounters))
	for _, e := range m.encounters {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *memState) GetHabitEffort(ctx context.Context, name string) (HabitEffortCache, error) {
	c, ok := m.effortCache[name]
	if !ok {
		return HabitEffortCache{}, fmt.Errorf("effort cache get: %w", ErrNotFound)
	}
	return c, nil
}

func (m *memState) PutHabitEffort(ctx context.Context, c HabitEffortCache) error {
	if _, ok := m.effortCache[c.Name]; ok {
		return nil
	}
	m.effortCache[c.Name] = c
	return nil
}

func (m *memState) ListHabitEffort(ctx context.Context) ([]HabitEffortCache, error) {
	out := make([]HabitEffortCache, 0, len(m.effortCache))
	for _, c := range m.effortCache {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
