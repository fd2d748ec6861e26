package storage

import "time"

// Record types mirror the backup payload; JSON tags are the backup field names.

type Identity struct {
	ID                   string    `json:"id"`
	Level                int       `json:"level"`
	TotalEffortUnits     int       `json:"totalEffortUnits"`
	CreatedAt            time.Time `json:"createdAt"`
	LastActiveAt         time.Time `json:"lastActiveAt"`
	OrientationCompleted bool      `json:"orientationCompleted"`
	EquippedCardID       *string   `json:"equippedCardId"`
}

type Habit struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

type EffortLog struct {
	ID          string    `json:"id"`
	HabitID     string    `json:"habitId"`
	EffortValue int       `json:"effortValue"`
	Note        *string   `json:"note"`
	Timestamp   time.Time `json:"timestamp"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Chest struct {
	ID                  string    `json:"id"`
	Rarity              string    `json:"rarity"`
	Tier                string    `json:"tier"`
	EarnedAt            time.Time `json:"earnedAt"`
	UnlockedRewardCount int       `json:"unlockedRewardCount"`
}

// ChestMeta is informational only; nothing re-derives gameplay from it.
type ChestMeta struct {
	ChestID          string `json:"chestId"`
	HabitName        string `json:"habitName"`
	EffortValue      int    `json:"effortValue"`
	ConsistencyCount int    `json:"consistencyCount"`
	Theme            string `json:"theme"`
	MercyApplied     bool   `json:"mercyApplied"`
}

const (
	RewardTypeItem = "item"
	RewardTypeCard = "card"
)

type Reward struct {
	ID        string    `json:"id"`
	ChestID   string    `json:"chestId"`
	Type      string    `json:"type"`
	RefID     string    `json:"refId"`
	Locked    bool      `json:"locked"`
	CreatedAt time.Time `json:"createdAt"`
}

// Item and Card instances are immutable once created.
type Item struct {
	ID        string    `json:"id"`
	CatalogID string    `json:"catalogId"`
	Name      string    `json:"name"`
	Rarity    string    `json:"rarity"`
	Effect    string    `json:"effect"`
	CreatedAt time.Time `json:"createdAt"`
}

type Card struct {
	ID        string    `json:"id"`
	CatalogID string    `json:"catalogId"`
	Name      string    `json:"name"`
	Rarity    string    `json:"rarity"`
	Effect    string    `json:"effect"`
	CreatedAt time.Time `json:"createdAt"`
}

type ArcQuestProgress struct {
	ArcID         string    `json:"arcId"`
	Progress      int       `json:"progress"`
	UnlockedCount int       `json:"unlockedCount"`
	Accepted      bool      `json:"accepted"`
	Ignored       bool      `json:"ignored"`
	HabitID       *string   `json:"habitId"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

const MercyReasonInactivityBoost = "inactivity_boost"

type MercyEvent struct {
	ID        string    `json:"id"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"createdAt"`
}

type CombatEncounter struct {
	ID        string    `json:"id"`
	ChestID   string    `json:"chestId"`
	Outcome   string    `json:"outcome"`
	Unlocked  int       `json:"unlocked"`
	CreatedAt time.Time `json:"createdAt"`
}

// HabitEffortCache memoizes the effort resolved for a normalized habit name.
type HabitEffortCache struct {
	Name       string    `json:"name"`
	Effort     int       `json:"effort"`
	Prevalence float64   `json:"prevalence"`
	Source     string    `json:"source"`
	Category   string    `json:"category"`
	CreatedAt  time.Time `json:"createdAt"`
}
