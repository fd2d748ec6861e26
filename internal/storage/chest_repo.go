package storage

import (
	"context"
	"fmt"
)

func (t *sqlTx) InsertChest(ctx context.Context, c Chest) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO chests (id, rarity, tier, earned_at, unlocked_reward_count) VALUES (?, ?, ?, ?, ?)
	`, c.ID, c.Rarity, c.Tier, toUnix(c.EarnedAt), c.UnlockedRewardCount)
	if err != nil {
		return fmt.Errorf("chest insert: %w", err)
	}
	return nil
}

func (t *sqlTx) GetChest(ctx context.Context, id string) (Chest, error) {
	row := t.tx.QueryRowContext(ctx, `SELECT id, rarity, tier, earned_at, unlocked_reward_count FROM chests WHERE id = ?`, id)
	c, err := scanChest(row)
	if err != nil {
		return Chest{}, notFound("chest get", err)
	}
	return c, nil
}

func (t *sqlTx) UpdateChest(ctx context.Context, c Chest) error {
	res, err := t.tx.ExecContext(ctx, `UPDATE chests SET rarity = ?, tier = ?, unlocked_reward_count = ? WHERE id = ?`, c.Rarity, c.Tier, c.UnlockedRewardCount, c.ID)
	if err != nil {
		return fmt.Errorf("chest update: %w", err)
	}
	return mustAffect("chest update", res)
}

func (t *sqlTx) ListChests(ctx context.Context) ([]Chest, error) {
	rows, err := t.tx.QueryContext(ctx, `SELECT id, rarity, tier, earned_at, unlocked_reward_count FROM chests ORDER BY earned_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("chest list: %w", err)
	}
	defer rows.Close()

	var out []Chest
	for rows.Next() {
		c, err := scanChest(rows)
		if err != nil {
			return nil, fmt.Errorf("chest scan: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("chest rows: %w", err)
	}
	return out, nil
}

func scanChest(row rowScanner) (Chest, error) {
	var (
		c        Chest
		earnedAt int64
	)
	if err := row.Scan(&c.ID, &c.Rarity, &c.Tier, &earnedAt, &c.UnlockedRewardCount); err != nil {
		return Chest{}, err
	}
	c.EarnedAt = fromUnix(earnedAt)
	return c, nil
}

func (t *sqlTx) InsertChestMeta(ctx context.Context, m ChestMeta) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO chest_meta (chest_id, habit_name, effort_value, consistency_count, theme, mercy_applied)
		VALUES (?, ?, ?, ?, ?, ?)
	`, m.ChestID, m.HabitName, m.EffortValue, m.ConsistencyCount, m.Theme, boolToInt(m.MercyApplied))
	if err != nil {
		return fmt.Errorf("chest meta insert: %w", err)
	}
	return nil
}

func (t *sqlTx) GetChestMeta(ctx context.Context, chestID string) (ChestMeta, error) {
	row := t.tx.QueryRowContext(ctx, `
		SELECT chest_id, habit_name, effort_value, consistency_count, theme, mercy_applied
		FROM chest_meta WHERE chest_id = ?
	`, chestID)
	m, err := scanChestMeta(row)
	if err != nil {
		return ChestMeta{}, notFound("chest meta get", err)
	}
	return m, nil
}

func (t *sqlTx) ListChestMeta(ctx context.Context) ([]ChestMeta, error) {
	rows, err := t.tx.QueryContext(ctx, `
		SELECT chest_id, habit_name, effort_value, consistency_count, theme, mercy_applied
		FROM chest_meta ORDER BY chest_id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("chest meta list: %w", err)
	}
	defer rows.Close()

	var out []ChestMeta
	for rows.Next() {
		m, err := scanChestMeta(rows)
		if err != nil {
			return nil, fmt.Errorf("chest meta scan: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("chest meta rows: %w", err)
	}
	return out, nil
}

func scanChestMeta(row rowScanner) (ChestMeta, error) {
	var (
		m     ChestMeta
		mercy int
	)
	if err := row.Scan(&m.ChestID, &m.HabitName, &m.EffortValue, &m.ConsistencyCount, &m.Theme, &mercy); err != nil {
		return ChestMeta{}, err
	}
	m.MercyApplied = mercy != 0
	return m, nil
}
