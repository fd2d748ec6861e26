package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const effortColumns = `id, habit_id, effort_value, note, timestamp, created_at`

func (t *sqlTx) InsertEffortLog(ctx context.Context, e EffortLog) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO effort_logs (`+effortColumns+`) VALUES (?, ?, ?, ?, ?, ?)
	`, e.ID, e.HabitID, e.EffortValue, nullString(e.Note), toUnix(e.Timestamp), toUnix(e.CreatedAt))
	if err != nil {
		return fmt.Errorf("effort insert: %w", err)
	}
	return nil
}

func (t *sqlTx) ListEffortLogs(ctx context.Context) ([]EffortLog, error) {
	return t.queryEfforts(ctx, `SELECT `+effortColumns+` FROM effort_logs ORDER BY timestamp ASC, id ASC`)
}

func (t *sqlTx) ListEffortLogsSince(ctx context.Context, since time.Time) ([]EffortLog, error) {
	return t.queryEfforts(ctx, `SELECT `+effortColumns+` FROM effort_logs WHERE timestamp >= ? ORDER BY timestamp ASC, id ASC`, toUnix(since))
}

func (t *sqlTx) LatestEffortLog(ctx context.Context) (EffortLog, error) {
	row := t.tx.QueryRowContext(ctx, `SELECT `+effortColumns+` FROM effort_logs ORDER BY timestamp DESC, id DESC LIMIT 1`)
	e, err := scanEffort(row)
	if err != nil {
		return EffortLog{}, notFound("effort latest", err)
	}
	return e, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEffort(row rowScanner) (EffortLog, error) {
	var (
		e             EffortLog
		note          sql.NullString
		ts, createdAt int64
	)
	if err := row.Scan(&e.ID, &e.HabitID, &e.EffortValue, &note, &ts, &createdAt); err != nil {
		return EffortLog{}, err
	}
	e.Note = stringPtr(note)
	e.Timestamp = fromUnix(ts)
	e.CreatedAt = fromUnix(createdAt)
	return e, nil
}

func (t *sqlTx) queryEfforts(ctx context.Context, query string, args ...any) ([]EffortLog, error) {
	rows, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("effort list: %w", err)
	}
	defer rows.Close()

	var out []EffortLog
	for rows.Next() {
		e, err := scanEffort(rows)
		if err != nil {
			return nil, fmt.Errorf("effort scan: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("effort rows: %w", err)
	}
	return out, nil
}
