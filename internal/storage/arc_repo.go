package storage

import (
	"context"
	"database/sql"
	"fmt"
)

const arcColumns = `arc_id, progress, unlocked_count, accepted, ignored, habit_id, updated_at`

func (t *sqlTx) GetArcProgress(ctx context.Context, arcID string) (ArcQuestProgress, error) {
	row := t.tx.QueryRowContext(ctx, `SELECT `+arcColumns+` FROM arc_quest_progress WHERE arc_id = ?`, arcID)
	p, err := scanArc(row)
	if err != nil {
		return ArcQuestProgress{}, notFound("arc get", err)
	}
	return p, nil
}

func (t *sqlTx) PutArcProgress(ctx context.Context, p ArcQuestProgress) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO arc_quest_progress (`+arcColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(arc_id) DO UPDATE SET
			progress = excluded.progress,
			unlocked_count = excluded.unlocked_count,
			accepted = excluded.accepted,
			ignored = excluded.ignored,
			habit_id = excluded.habit_id,
			updated_at = excluded.updated_at
	`, p.ArcID, p.Progress, p.UnlockedCount, boolToInt(p.Accepted), boolToInt(p.Ignored), nullString(p.HabitID), toUnix(p.UpdatedAt))
	if err != nil {
		return fmt.Errorf("arc upsert: %w", err)
	}
	return nil
}

func (t *sqlTx) ListArcProgress(ctx context.Context) ([]ArcQuestProgress, error) {
	rows, err := t.tx.QueryContext(ctx, `SELECT `+arcColumns+` FROM arc_quest_progress ORDER BY arc_id ASC`)
	if err != nil {
		return nil, fmt.Errorf("arc list: %w", err)
	}
	defer rows.Close()

	var out []ArcQuestProgress
	for rows.Next() {
		p, err := scanArc(rows)
		if err != nil {
			return nil, fmt.Errorf("arc scan: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("arc rows: %w", err)
	}
	return out, nil
}

func scanArc(row rowScanner) (ArcQuestProgress, error) {
	var (
		p                 ArcQuestProgress
		accepted, ignored int
		habitID           sql.NullString
		updatedAt         int64
	)
	if err := row.Scan(&p.ArcID, &p.Progress, &p.UnlockedCount, &accepted, &ignored, &habitID, &updatedAt); err != nil {
		return ArcQuestProgress{}, err
	}
	p.Accepted = accepted != 0
	p.Ignored = ignored != 0
	p.HabitID = stringPtr(habitID)
	p.UpdatedAt = fromUnix(updatedAt)
	return p, nil
}
