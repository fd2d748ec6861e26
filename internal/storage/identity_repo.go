package storage

import (
	"context"
	"database/sql"
	"fmt"
)

func (t *sqlTx) GetIdentity(ctx context.Context) (Identity, error) {
	row := t.tx.QueryRowContext(ctx, `
		SELECT id, level, total_effort_units, created_at, last_active_at, orientation_completed, equipped_card_id
		FROM identity
		ORDER BY created_at ASC
		LIMIT 1
	`)
	var (
		id                    Identity
		createdAt, lastActive int64
		orientation           int
		equipped              sql.NullString
	)
	if err := row.Scan(&id.ID, &id.Level, &id.TotalEffortUnits, &createdAt, &lastActive, &orientation, &equipped); err != nil {
		return Identity{}, notFound("identity get", err)
	}
	id.CreatedAt = fromUnix(createdAt)
	id.LastActiveAt = fromUnix(lastActive)
	id.OrientationCompleted = orientation != 0
	id.EquippedCardID = stringPtr(equipped)
	return id, nil
}

func (t *sqlTx) PutIdentity(ctx context.Context, id Identity) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO identity (id, level, total_effort_units, created_at, last_active_at, orientation_completed, equipped_card_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			level = excluded.level,
			total_effort_units = excluded.total_effort_units,
			last_active_at = excluded.last_active_at,
			orientation_completed = excluded.orientation_completed,
			equipped_card_id = excluded.equipped_card_id
	`, id.ID, id.Level, id.TotalEffortUnits, toUnix(id.CreatedAt), toUnix(id.LastActiveAt), boolToInt(id.OrientationCompleted), nullString(id.EquippedCardID))
	if err != nil {
		return fmt.Errorf("identity upsert: %w", err)
	}
	return nil
}
