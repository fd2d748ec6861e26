package storage

import (
	"context"
	"fmt"
)

func (t *sqlTx) InsertHabit(ctx context.Context, h Habit) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO habits (id, name, is_active, created_at) VALUES (?, ?, ?, ?)
	`, h.ID, h.Name, boolToInt(h.IsActive), toUnix(h.CreatedAt))
	if err != nil {
		return fmt.Errorf("habit insert: %w", err)
	}
	return nil
}

func (t *sqlTx) GetHabit(ctx context.Context, id string) (Habit, error) {
	row := t.tx.QueryRowContext(ctx, `SELECT id, name, is_active, created_at FROM habits WHERE id = ?`, id)
	var (
		h         Habit
		active    int
		createdAt int64
	)
	if err := row.Scan(&h.ID, &h.Name, &active, &createdAt); err != nil {
		return Habit{}, notFound("habit get", err)
	}
	h.IsActive = active != 0
	h.CreatedAt = fromUnix(createdAt)
	return h, nil
}

func (t *sqlTx) UpdateHabit(ctx context.Context, h Habit) error {
	res, err := t.tx.ExecContext(ctx, `UPDATE habits SET name = ?, is_active = ? WHERE id = ?`, h.Name, boolToInt(h.IsActive), h.ID)
	if err != nil {
		return fmt.Errorf("habit update: %w", err)
	}
	return mustAffect("habit update", res)
}

func (t *sqlTx) DeleteHabit(ctx context.Context, id string) error {
	if _, err := t.tx.ExecContext(ctx, `DELETE FROM effort_logs WHERE habit_id = ?`, id); err != nil {
		return fmt.Errorf("habit delete efforts: %w", err)
	}
	res, err := t.tx.ExecContext(ctx, `DELETE FROM habits WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("habit delete: %w", err)
	}
	return mustAffect("habit delete", res)
}

func (t *sqlTx) ListHabits(ctx context.Context) ([]Habit, error) {
	rows, err := t.tx.QueryContext(ctx, `SELECT id, name, is_active, created_at FROM habits ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("habit list: %w", err)
	}
	defer rows.Close()

	var out []Habit
	for rows.Next() {
		var (
			h         Habit
			active    int
			createdAt int64
		)
		if err := rows.Scan(&h.ID, &h.Name, &active, &createdAt); err != nil {
			return nil, fmt.Errorf("habit scan: %w", err)
		}
		h.IsActive = active != 0
		h.CreatedAt = fromUnix(createdAt)
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("habit rows: %w", err)
	}
	return out, nil
}
