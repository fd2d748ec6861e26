// Package backup converts the whole local store to and from the JSON
// snapshot used for device backups.
package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/JackJJClark/LifeMaxxing-2.0-sub000/internal/storage"
)

const SchemaVersion = 1

// Import outcomes.
const (
	ReasonOK        = "ok"
	ReasonEncrypted = "encrypted"
	ReasonEmpty     = "empty"
	ReasonInvalid   = "invalid"
)

type Meta struct {
	SchemaVersion int       `json:"schemaVersion"`
	CreatedAt     time.Time `json:"createdAt"`
	DeviceID      string    `json:"deviceId"`
	AppVersion    string    `json:"appVersion"`
}

// Payload is a full snapshot. Every slice is serialized as an array, never null.
type Payload struct {
	Meta             Meta                       `json:"meta"`
	Identity         *storage.Identity          `json:"identity"`
	Habits           []storage.Habit            `json:"habits"`
	EffortLogs       []storage.EffortLog        `json:"effortLogs"`
	Chests           []storage.Chest            `json:"chests"`
	Items            []storage.Item             `json:"items"`
	Cards            []storage.Card             `json:"cards"`
	ChestRewards     []storage.Reward           `json:"chestRewards"`
	ChestMeta        []storage.ChestMeta        `json:"chestMeta"`
	ArcQuestProgress []storage.ArcQuestProgress `json:"arcQuestProgress"`
	CombatEncounters []storage.CombatEncounter  `json:"combatEncounters"`
	MercyEvents      []storage.MercyEvent       `json:"mercyEvents"`
	HabitEffortCache []storage.HabitEffortCache `json:"habitEffortCache"`
}

// arrayKeys must all be present and be JSON arrays for a payload to be valid.
var arrayKeys = []string{
	"habits", "effortLogs", "chests", "items", "cards", "chestRewards",
	"chestMeta", "arcQuestProgress", "combatEncounters", "mercyEvents", "habitEffortCache",
}

// IsEmpty reports a payload with no identity and no records.
func (p Payload) IsEmpty() bool {
	return p.Identity == nil &&
		len(p.Habits) == 0 && len(p.EffortLogs) == 0 && len(p.Chests) == 0 &&
		len(p.Items) == 0 && len(p.Cards) == 0 && len(p.ChestRewards) == 0 &&
		len(p.ChestMeta) == 0 && len(p.ArcQuestProgress) == 0 &&
		len(p.CombatEncounters) == 0 && len(p.MercyEvents) == 0 && len(p.HabitEffortCache) == 0
}

type Info struct {
	DeviceID   string
	AppVersion string
	Now        time.Time
}

// Export reads every table in one transaction.
func Export(ctx context.Context, store storage.Store, info Info) (Payload, error) {
	if info.Now.IsZero() {
		info.Now = time.Now()
	}
	p := Payload{Meta: Meta{
		SchemaVersion: SchemaVersion,
		CreatedAt:     info.Now.UTC(),
		DeviceID:      info.DeviceID,
		AppVersion:    info.AppVersion,
	}}
	err := store.WithTx(ctx, func(tx storage.Tx) error {
		id, err := tx.GetIdentity(ctx)
		switch {
		case err == nil:
			p.Identity = &id
		case !errors.Is(err, storage.ErrNotFound):
			return err
		}
		if p.Habits, err = tx.ListHabits(ctx); err != nil {
			return err
		}
		if p.EffortLogs, err = tx.ListEffortLogs(ctx); err != nil {
			return err
		}
		if p.Chests, err = tx.ListChests(ctx); err != nil {
			return err
		}
		if p.Items, err = tx.ListItems(ctx); err != nil {
			return err
		}
		if p.Cards, err = tx.ListCards(ctx); err != nil {
			return err
		}
		if p.ChestRewards, err = tx.ListRewards(ctx); err != nil {
			return err
		}
		if p.ChestMeta, err = tx.ListChestMeta(ctx); err != nil {
			return err
		}
		if p.ArcQuestProgress, err = tx.ListArcProgress(ctx); err != nil {
			return err
		}
		if p.CombatEncounters, err = tx.ListCombatEncounters(ctx); err != nil {
			return err
		}
		if p.MercyEvents, err = tx.ListMercyEvents(ctx); err != nil {
			return err
		}
		p.HabitEffortCache, err = tx.ListHabitEffort(ctx)
		return err
	})
	if err != nil {
		return Payload{}, fmt.Errorf("export: %w", err)
	}
	p.fillEmpty()
	return p, nil
}

func (p *Payload) fillEmpty() {
	if p.Habits == nil {
		p.Habits = []storage.Habit{}
	}
	if p.EffortLogs == nil {
		p.EffortLogs = []storage.EffortLog{}
	}
	if p.Chests == nil {
		p.Chests = []storage.Chest{}
	}
	if p.Items == nil {
		p.Items = []storage.Item{}
	}
	if p.Cards == nil {
		p.Cards = []storage.Card{}
	}
	if p.ChestRewards == nil {
		p.ChestRewards = []storage.Reward{}
	}
	if p.ChestMeta == nil {
		p.ChestMeta = []storage.ChestMeta{}
	}
	if p.ArcQuestProgress == nil {
		p.ArcQuestProgress = []storage.ArcQuestProgress{}
	}
	if p.CombatEncounters == nil {
		p.CombatEncounters = []storage.CombatEncounter{}
	}
	if p.MercyEvents == nil {
		p.MercyEvents = []storage.MercyEvent{}
	}
	if p.HabitEffortCache == nil {
		p.HabitEffortCache = []storage.HabitEffortCache{}
	}
}

func Marshal(p Payload) ([]byte, error) {
	return json.MarshalIndent(p, "", "  ")
}

// Result is the outcome of an import attempt. Rejections are results, not
// errors; errors are reserved for storage failures.
type Result struct {
	OK     bool
	Reason string
	Detail string
}

func reject(reason, detail string) Result {
	return Result{Reason: reason, Detail: detail}
}

// Decode validates raw and returns the payload. The encrypted envelope is
// detected before anything else is inspected.
func Decode(raw []byte) (Payload, Result) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil || top == nil {
		return Payload{}, reject(ReasonInvalid, "not a JSON object")
	}
	if enc, ok := top["__encrypted"]; ok {
		var flag bool
		if json.Unmarshal(enc, &flag) == nil && flag {
			return Payload{}, reject(ReasonEncrypted, "payload is encrypted")
		}
	}
	for _, key := range arrayKeys {
		v, ok := top[key]
		if !ok {
			return Payload{}, reject(ReasonInvalid, fmt.Sprintf("missing %q", key))
		}
		if t := bytes.TrimSpace(v); len(t) == 0 || t[0] != '[' {
			return Payload{}, reject(ReasonInvalid, fmt.Sprintf("%q is not an array", key))
		}
	}

	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return Payload{}, reject(ReasonInvalid, err.Error())
	}
	if p.Meta.SchemaVersion > SchemaVersion {
		return Payload{}, reject(ReasonInvalid, fmt.Sprintf("unsupported schema version %d", p.Meta.SchemaVersion))
	}
	if p.Identity != nil && p.Identity.ID == "" {
		p.Identity = nil
	}
	if detail := checkIntegrity(p); detail != "" {
		return Payload{}, reject(ReasonInvalid, detail)
	}
	return p, Result{OK: true, Reason: ReasonOK}
}

// checkIntegrity enforces the keys the store enforces, so a broken payload
// is rejected before anything is cleared. It returns "" when p is sound.
func checkIntegrity(p Payload) string {
	keys := []struct {
		array string
		ids   []string
	}{
		{"habits", collect(p.Habits, func(h storage.Habit) string { return h.ID })},
		{"effortLogs", collect(p.EffortLogs, func(e storage.EffortLog) string { return e.ID })},
		{"chests", collect(p.Chests, func(c storage.Chest) string { return c.ID })},
		{"chestMeta", collect(p.ChestMeta, func(m storage.ChestMeta) string { return m.ChestID })},
		{"items", collect(p.Items, func(it storage.Item) string { return it.ID })},
		{"cards", collect(p.Cards, func(c storage.Card) string { return c.ID })},
		{"chestRewards", collect(p.ChestRewards, func(r storage.Reward) string { return r.ID })},
		{"arcQuestProgress", collect(p.ArcQuestProgress, func(a storage.ArcQuestProgress) string { return a.ArcID })},
		{"combatEncounters", collect(p.CombatEncounters, func(e storage.CombatEncounter) string { return e.ID })},
		{"mercyEvents", collect(p.MercyEvents, func(e storage.MercyEvent) string { return e.ID })},
		{"habitEffortCache", collect(p.HabitEffortCache, func(c storage.HabitEffortCache) string { return c.Name })},
	}
	for _, k := range keys {
		seen := make(map[string]bool, len(k.ids))
		for _, id := range k.ids {
			if id == "" {
				return fmt.Sprintf("%q has an entry without an id", k.array)
			}
			if seen[id] {
				return fmt.Sprintf("%q has duplicate id %q", k.array, id)
			}
			seen[id] = true
		}
	}

	chests := make(map[string]bool, len(p.Chests))
	for _, c := range p.Chests {
		chests[c.ID] = true
	}
	for _, r := range p.ChestRewards {
		if !chests[r.ChestID] {
			return fmt.Sprintf("reward %q references unknown chest %q", r.ID, r.ChestID)
		}
	}
	for _, m := range p.ChestMeta {
		if !chests[m.ChestID] {
			return fmt.Sprintf("chest meta references unknown chest %q", m.ChestID)
		}
	}
	return ""
}

func collect[T any](records []T, id func(T) string) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = id(r)
	}
	return out
}

type ImportOptions struct {
	// AllowEmpty lets an empty payload wipe local data.
	AllowEmpty bool
}

// Import replaces all local data with raw. Nothing is cleared unless the
// payload is valid and, by default, non-empty.
func Import(ctx context.Context, store storage.Store, raw []byte, opts ImportOptions) (Result, error) {
	p, res := Decode(raw)
	if !res.OK {
		return res, nil
	}
	if p.IsEmpty() && !opts.AllowEmpty {
		return reject(ReasonEmpty, "payload has no data"), nil
	}
	if err := Restore(ctx, store, p); err != nil {
		return Result{}, err
	}
	return res, nil
}

// Restore clears the store and inserts p in dependency order, atomically.
func Restore(ctx context.Context, store storage.Store, p Payload) error {
	err := store.WithTx(ctx, func(tx storage.Tx) error {
		if err := tx.Clear(ctx); err != nil {
			return err
		}
		if p.Identity != nil {
			if err := tx.PutIdentity(ctx, *p.Identity); err != nil {
				return err
			}
		}
		for _, h := range p.Habits {
			if err := tx.InsertHabit(ctx, h); err != nil {
				return err
			}
		}
		for _, e := range p.EffortLogs {
			if err := tx.InsertEffortLog(ctx, e); err != nil {
				return err
			}
		}
		for _, c := range p.Chests {
			if err := tx.InsertChest(ctx, c); err != nil {
				return err
			}
		}
		for _, m := range p.ChestMeta {
			if err := tx.InsertChestMeta(ctx, m); err != nil {
				return err
			}
		}
		for _, it := range p.Items {
			if err := tx.InsertItem(ctx, it); err != nil {
				return err
			}
		}
		for _, c := range p.Cards {
			if err := tx.InsertCard(ctx, c); err != nil {
				return err
			}
		}
		for _, r := range p.ChestRewards {
			if err := tx.InsertReward(ctx, r); err != nil {
				return err
			}
		}
		for _, a := range p.ArcQuestProgress {
			if err := tx.PutArcProgress(ctx, a); err != nil {
				return err
			}
		}
		for _, e := range p.CombatEncounters {
			if err := tx.InsertCombatEncounter(ctx, e); err != nil {
				return err
			}
		}
		for _, e := range p.MercyEvents {
			if err := tx.InsertMercyEvent(ctx, e); err != nil {
				return err
			}
		}
		for _, c := range p.HabitEffortCache {
			if err := tx.PutHabitEffort(ctx, c); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}
	return nil
}
