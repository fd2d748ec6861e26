package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates a requested record is missing.
var ErrNotFound = errors.New("record not found")

// Store is the persistence collaborator. Every logical operation runs inside
// one WithTx call; a non-nil error from fn leaves the store untouched.
type Store interface {
	WithTx(ctx context.Context, fn func(tx Tx) error) error
	Close() error
}

type IdentityRepo interface {
	GetIdentity(ctx context.Context) (Identity, error)
	PutIdentity(ctx context.Context, id Identity) error
}

type HabitRepo interface {
	InsertHabit(ctx context.Context, h Habit) error
	GetHabit(ctx context.Context, id string) (Habit, error)
	UpdateHabit(ctx context.Context, h Habit) error
	// DeleteHabit also deletes the habit's effort logs.
	DeleteHabit(ctx context.Context, id string) error
	ListHabits(ctx context.Context) ([]Habit, error)
}

type EffortRepo interface {
	InsertEffortLog(ctx context.Context, e EffortLog) error
	// ListEffortLogs returns logs in ascending timestamp order.
	ListEffortLogs(ctx context.Context) ([]EffortLog, error)
	ListEffortLogsSince(ctx context.Context, since time.Time) ([]EffortLog, error)
	LatestEffortLog(ctx context.Context) (EffortLog, error)
}

type ChestRepo interface {
	InsertChest(ctx context.Context, c Chest) error
	GetChest(ctx context.Context, id string) (Chest, error)
	UpdateChest(ctx context.Context, c Chest) error
	// ListChests returns chests newest first.
	ListChests(ctx context.Context) ([]Chest, error)
	InsertChestMeta(ctx context.Context, m ChestMeta) error
	GetChestMeta(ctx context.Context, chestID string) (ChestMeta, error)
	ListChestMeta(ctx context.Context) ([]ChestMeta, error)
}

type RewardRepo interface {
	InsertReward(ctx context.Context, r Reward) error
	ListRewards(ctx context.Context) ([]Reward, error)
	ListChestRewards(ctx context.Context, chestID string) ([]Reward, error)
	// UnlockReward clears the locked flag. It never sets it back.
	UnlockReward(ctx context.Context, id string) error
	InsertItem(ctx context.Context, it Item) error
	GetItem(ctx context.Context, id string) (Item, error)
	ListItems(ctx context.Context) ([]Item, error)
	InsertCard(ctx context.Context, c Card) error
	GetCard(ctx context.Context, id string) (Card, error)
	ListCards(ctx context.Context) ([]Card, error)
}

type ArcRepo interface {
	GetArcProgress(ctx context.Context, arcID string) (ArcQuestProgress, error)
	PutArcProgress(ctx context.Context, p ArcQuestProgress) error
	ListArcProgress(ctx context.Context) ([]ArcQuestProgress, error)
}

type EventRepo interface {
	InsertMercyEvent(ctx context.Context, e MercyEvent) error
	LatestMercyEvent(ctx context.Context) (MercyEvent, error)
	ListMercyEvents(ctx context.Context) ([]MercyEvent, error)
	InsertCombatEncounter(ctx context.Context, e CombatEncounter) error
	GetCombatEncounter(ctx context.Context, id string) (CombatEncounter, error)
	ListCombatEncounters(ctx context.Context) ([]CombatEncounter, error)
}

type EffortCacheRepo interface {
	GetHabitEffort(ctx context.Context, name string) (HabitEffortCache, error)
	PutHabitEffort(ctx context.Context, c HabitEffortCache) error
	ListHabitEffort(ctx context.Context) ([]HabitEffortCache, error)
}

// Tx is the set of record operations available inside a transaction.
type Tx interface {
	IdentityRepo
	HabitRepo
	EffortRepo
	ChestRepo
	RewardRepo
	ArcRepo
	EventRepo
	EffortCacheRepo

	// Clear removes every record from every table.
	Clear(ctx context.Context) error
}

var (
	_ Store = (*SQLStore)(nil)
	_ Store = (*MemoryStore)(nil)
	_ Tx    = (*sqlTx)(nil)
	_ Tx    = (*memState)(nil)
)
