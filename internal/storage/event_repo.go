package storage

import (
	"context"
	"fmt"
)

func (t *sqlTx) InsertMercyEvent(ctx context.Context, e MercyEvent) error {
	_, err := t.tx.ExecContext(ctx, `INSERT INTO mercy_events (id, reason, created_at) VALUES (?, ?, ?)`, e.ID, e.Reason, toUnix(e.CreatedAt))
	if err != nil {
		return fmt.Errorf("mercy insert: %w", err)
	}
	return nil
}

func (t *sqlTx) LatestMercyEvent(ctx context.Context) (MercyEvent, error) {
	row := t.tx.QueryRowContext(ctx, `SELECT id, reason, created_at FROM mercy_events ORDER BY created_at DESC, id DESC LIMIT 1`)
	var (
		e         MercyEvent
		createdAt int64
	)
	if err := row.Scan(&e.ID, &e.Reason, &createdAt); err != nil {
		return MercyEvent{}, notFound("mercy latest", err)
	}
	e.CreatedAt = fromUnix(createdAt)
	return e, nil
}

func (t *sqlTx) ListMercyEvents(ctx context.Context) ([]MercyEvent, error) {
	rows, err := t.tx.QueryContext(ctx, `SELECT id, reason, created_at FROM mercy_events ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("mercy list: %w", err)
	}
	defer rows.Close()

	var out []MercyEvent
	for rows.Next() {
		var (
			e         MercyEvent
			createdAt int64
		)
		if err := rows.Scan(&e.ID, &e.Reason, &createdAt); err != nil {
			return nil, fmt.Errorf("mercy scan: %w", err)
		}
		e.CreatedAt = fromUnix(createdAt)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("mercy rows: %w", err)
	}
	return out, nil
}

func (t *sqlTx) InsertCombatEncounter(ctx context.Context, e CombatEncounter) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO combat_encounters (id, chest_id, outcome, unlocked, created_at) VALUES (?, ?, ?, ?, ?)
	`, e.ID, e.ChestID, e.Outcome, e.Unlocked, toUnix(e.CreatedAt))
	if err != nil {
		return fmt.Errorf("combat insert: %w", err)
	}
	return nil
}

func (t *sqlTx) GetCombatEncounter(ctx context.Context, id string) (CombatEncounter, error) {
	row := t.tx.QueryRowContext(ctx, `SELECT id, chest_id, outcome, unlocked, created_at FROM combat_encounters WHERE id = ?`, id)
	var (
		e         CombatEncounter
		createdAt int64
	)
	if err := row.Scan(&e.ID, &e.ChestID, &e.Outcome, &e.Unlocked, &createdAt); err != nil {
		return CombatEncounter{}, notFound("combat get", err)
	}
	e.CreatedAt = fromUnix(createdAt)
	return e, nil
}

func (t *sqlTx) ListCombatEncounters(ctx context.Context) ([]CombatEncounter, error) {
	rows, err := t.tx.QueryContext(ctx, `SELECT id, chest_id, outcome, unlocked, created_at FROM combat_encounters ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("combat list: %w", err)
	}
	defer rows.Close()

	var out []CombatEncounter
	for rows.Next() {
		var (
			e         CombatEncounter
			createdAt int64
		)
		if err := rows.Scan(&e.ID, &e.ChestID, &e.Outcome, &e.Unlocked, &createdAt); err != nil {
			return nil, fmt.Errorf("combat scan: %w", err)
		}
		e.CreatedAt = fromUnix(createdAt)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("combat rows: %w", err)
	}
	return out, nil
}
