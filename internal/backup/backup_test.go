package backup

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JackJJClark/LifeMaxxing-2.0-sub000/internal/engine"
	"github.com/JackJJClark/LifeMaxxing-2.0-sub000/internal/random"
	"github.com/JackJJClark/LifeMaxxing-2.0-sub000/internal/storage"
)

var fixedNow = time.Date(2026, 5, 4, 8, 30, 0, 0, time.UTC)

func openSQLite(t *testing.T) storage.Store {
	t.Helper()
	store, err := storage.Open(context.Background(), filepath.Join(t.TempDir(), "backup.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func newService(store storage.Store) *engine.Service {
	return engine.NewService(store,
		engine.WithClock(func() time.Time { return fixedNow }),
		engine.WithLocation(time.UTC),
		engine.WithRandom(random.NewSequence(0.4)),
	)
}

func seed(t *testing.T, svc *engine.Service) {
	t.Helper()
	ctx := context.Background()
	h, err := svc.CreateHabit(ctx, "Run")
	require.NoError(t, err)
	_, err = svc.LogEffort(ctx, engine.LogEffortInput{HabitID: h.ID, Note: "5k"})
	require.NoError(t, err)
}

func counts(t *testing.T, svc *engine.Service) engine.Counts {
	t.Helper()
	snap, err := svc.GetStatusSnapshot(context.Background())
	require.NoError(t, err)
	return snap.Counts
}

func TestRoundTripRestoresCounts(t *testing.T) {
	for name, store := range map[string]storage.Store{
		"sqlite": openSQLite(t),
		"memory": storage.NewMemoryStore(),
	} {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			svc := newService(store)
			seed(t, svc)
			before := counts(t, svc)
			require.Equal(t, 1, before.Habits)
			require.Equal(t, 1, before.Efforts)
			require.Equal(t, 1, before.Chests)

			p, err := Export(ctx, store, Info{DeviceID: "device-1", AppVersion: "test", Now: fixedNow})
			require.NoError(t, err)
			raw, err := Marshal(p)
			require.NoError(t, err)

			require.NoError(t, store.WithTx(ctx, func(tx storage.Tx) error { return tx.Clear(ctx) }))
			assert.Zero(t, counts(t, svc).Habits)

			res, err := Import(ctx, store, raw, ImportOptions{})
			require.NoError(t, err)
			require.True(t, res.OK, res.Detail)
			assert.Equal(t, before, counts(t, svc))

			again, err := Export(ctx, store, Info{Now: fixedNow})
			require.NoError(t, err)
			require.NotNil(t, again.Identity)
			assert.Equal(t, p.Identity.ID, again.Identity.ID)
			assert.Equal(t, p.Identity.TotalEffortUnits, again.Identity.TotalEffortUnits)
			assert.True(t, p.Identity.CreatedAt.Equal(again.Identity.CreatedAt))
			require.Len(t, again.EffortLogs, 1)
			require.NotNil(t, again.EffortLogs[0].Note)
			assert.Equal(t, "5k", *again.EffortLogs[0].Note)
		})
	}
}

func TestImportIntoFreshStore(t *testing.T) {
	ctx := context.Background()
	src := storage.NewMemoryStore()
	seed(t, newService(src))
	p, err := Export(ctx, src, Info{Now: fixedNow})
	require.NoError(t, err)
	raw, err := Marshal(p)
	require.NoError(t, err)

	dst := openSQLite(t)
	res, err := Import(ctx, dst, raw, ImportOptions{})
	require.NoError(t, err)
	require.True(t, res.OK)
	assert.Equal(t, counts(t, newService(src)), counts(t, newService(dst)))
}

func TestExportWritesArraysNotNull(t *testing.T) {
	p, err := Export(context.Background(), storage.NewMemoryStore(), Info{Now: fixedNow})
	require.NoError(t, err)
	raw, err := Marshal(p)
	require.NoError(t, err)

	var top map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &top))
	for _, key := range arrayKeys {
		assert.Equal(t, "[]", string(top[key]), key)
	}
	assert.Equal(t, "null", string(top["identity"]))
	assert.True(t, p.IsEmpty())
	assert.Equal(t, SchemaVersion, p.Meta.SchemaVersion)
}

func TestEmptyPayloadDoesNotWipe(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	svc := newService(store)
	seed(t, svc)

	empty, err := Export(ctx, storage.NewMemoryStore(), Info{Now: fixedNow})
	require.NoError(t, err)
	raw, err := Marshal(empty)
	require.NoError(t, err)

	res, err := Import(ctx, store, raw, ImportOptions{})
	require.NoError(t, err)
	assert.False(t, res.OK)
	assert.Equal(t, ReasonEmpty, res.Reason)
	assert.Equal(t, 1, counts(t, svc).Habits)

	res, err = Import(ctx, store, raw, ImportOptions{AllowEmpty: true})
	require.NoError(t, err)
	assert.True(t, res.OK)
	assert.Zero(t, counts(t, svc).Habits)
}

func TestEncryptedEnvelopeIsRejected(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	svc := newService(store)
	seed(t, svc)

	res, err := Import(ctx, store, []byte(`{"__encrypted": true, "data": "x", "iv": "y", "salt": "z"}`), ImportOptions{})
	require.NoError(t, err)
	assert.False(t, res.OK)
	assert.Equal(t, ReasonEncrypted, res.Reason)
	assert.Equal(t, 1, counts(t, svc).Habits)
}

func TestInvalidPayloads(t *testing.T) {
	cases := map[string]string{
		"not json":       `hello`,
		"array":          `[]`,
		"missing key":    `{"habits": []}`,
		"object for key": `{"habits": {}, "effortLogs": [], "chests": [], "items": [], "cards": [], "chestRewards": [], "chestMeta": [], "arcQuestProgress": [], "combatEncounters": [], "mercyEvents": [], "habitEffortCache": []}`,
		"null for key":   `{"habits": null, "effortLogs": [], "chests": [], "items": [], "cards": [], "chestRewards": [], "chestMeta": [], "arcQuestProgress": [], "combatEncounters": [], "mercyEvents": [], "habitEffortCache": []}`,
		"future schema":  `{"meta": {"schemaVersion": 99}, "habits": [], "effortLogs": [], "chests": [], "items": [], "cards": [], "chestRewards": [], "chestMeta": [], "arcQuestProgress": [], "combatEncounters": [], "mercyEvents": [], "habitEffortCache": []}`,
		"duplicate item": `{"habits": [], "effortLogs": [], "chests": [], "items": [{"id": "x", "name": "A"}, {"id": "x", "name": "B"}], "cards": [], "chestRewards": [], "chestMeta": [], "arcQuestProgress": [], "combatEncounters": [], "mercyEvents": [], "habitEffortCache": []}`,
		"orphan reward":  `{"habits": [], "effortLogs": [], "chests": [], "items": [], "cards": [], "chestRewards": [{"id": "r1", "chestId": "gone", "type": "item", "refId": "x"}], "chestMeta": [], "arcQuestProgress": [], "combatEncounters": [], "mercyEvents": [], "habitEffortCache": []}`,
		"orphan meta":    `{"habits": [], "effortLogs": [], "chests": [], "items": [], "cards": [], "chestRewards": [], "chestMeta": [{"chestId": "gone", "habitName": "Run"}], "arcQuestProgress": [], "combatEncounters": [], "mercyEvents": [], "habitEffortCache": []}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, res := Decode([]byte(raw))
			assert.False(t, res.OK)
			assert.Equal(t, ReasonInvalid, res.Reason)
			assert.NotEmpty(t, res.Detail)
		})
	}
}

func TestDuplicateIDsRejectedOnEveryStore(t *testing.T) {
	raw := `{"habits": [], "effortLogs": [], "chests": [], "items": [{"id": "x", "catalogId": "item_chalk_stub", "name": "A", "rarity": "common"}, {"id": "x", "catalogId": "item_chalk_stub", "name": "B", "rarity": "common"}], "cards": [], "chestRewards": [], "chestMeta": [], "arcQuestProgress": [], "combatEncounters": [], "mercyEvents": [], "habitEffortCache": []}`
	for name, store := range map[string]storage.Store{
		"sqlite": openSQLite(t),
		"memory": storage.NewMemoryStore(),
	} {
		t.Run(name, func(t *testing.T) {
			svc := newService(store)
			seed(t, svc)
			before := counts(t, svc)

			res, err := Import(context.Background(), store, []byte(raw), ImportOptions{})
			require.NoError(t, err)
			assert.False(t, res.OK)
			assert.Equal(t, ReasonInvalid, res.Reason)
			assert.Contains(t, res.Detail, "duplicate")
			assert.Equal(t, before, counts(t, svc))
		})
	}
}

func TestIdentityMayBeAbsent(t *testing.T) {
	raw := `{"habits": [{"id": "h1", "name": "Read", "isActive": true, "createdAt": "2026-01-01T00:00:00Z"}], "effortLogs": [], "chests": [], "items": [], "cards": [], "chestRewards": [], "chestMeta": [], "arcQuestProgress": [], "combatEncounters": [], "mercyEvents": [], "habitEffortCache": []}`
	p, res := Decode([]byte(raw))
	require.True(t, res.OK)
	assert.Nil(t, p.Identity)
	assert.False(t, p.IsEmpty())
}
