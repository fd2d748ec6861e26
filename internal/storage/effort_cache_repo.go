package storage

import (
	"context"
	"fmt"
)

func (t *sqlTx) GetHabitEffort(ctx context.Context, name string) (HabitEffortCache, error) {
	row := t.tx.QueryRowContext(ctx, `SELECT name, effort, prevalence, source, category, created_at FROM habit_effort_cache WHERE name = ?`, name)
	var (
		c         HabitEffortCache
		createdAt int64
	)
	if err := row.Scan(&c.Name, &c.Effort, &c.Prevalence, &c.Source, &c.Category, &createdAt); err != nil {
		return HabitEffortCache{}, notFound("effort cache get", err)
	}
	c.CreatedAt = fromUnix(createdAt)
	return c, nil
}

// PutHabitEffort keeps the first value stored for a name.
func (t *sqlTx) PutHabitEffort(ctx context.Context, c HabitEffortCache) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO habit_effort_cache (name, effort, prevalence, source, category, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO NOTHING
	`, c.Name, c.Effort, c.Prevalence, c.Source, c.Category, toUnix(c.CreatedAt))
	if err != nil {
		return fmt.Errorf("effort cache put: %w", err)
	}
	return nil
}

func (t *sqlTx) ListHabitEffort(ctx context.Context) ([]HabitEffortCache, error) {
	rows, err := t.tx.QueryContext(ctx, `SELECT name, effort, prevalence, source, category, created_at FROM habit_effort_cache ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("effort cache list: %w", err)
	}
	defer rows.Close()

	var out []HabitEffortCache
	for rows.Next() {
		var (
			c         HabitEffortCache
			createdAt int64
		)
		if err := rows.Scan(&c.Name, &c.Effort, &c.Prevalence, &c.Source, &c.Category, &createdAt); err != nil {
			return nil, fmt.Errorf("effort cache scan: %w", err)
		}
		c.CreatedAt = fromUnix(createdAt)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("effort cache rows: %w", err)
	}
	return out, nil
}
