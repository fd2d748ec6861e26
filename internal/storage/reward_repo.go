package storage

import (
	"context"
	"fmt"
)

const rewardColumns = `id, chest_id, type, ref_id, locked, created_at`

func (t *sqlTx) InsertReward(ctx context.Context, r Reward) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO chest_rewards (`+rewardColumns+`) VALUES (?, ?, ?, ?, ?, ?)
	`, r.ID, r.ChestID, r.Type, r.RefID, boolToInt(r.Locked), toUnix(r.CreatedAt))
	if err != nil {
		return fmt.Errorf("reward insert: %w", err)
	}
	return nil
}

func (t *sqlTx) ListRewards(ctx context.Context) ([]Reward, error) {
	return t.queryRewards(ctx, `SELECT `+rewardColumns+` FROM chest_rewards ORDER BY created_at ASC, id ASC`)
}

func (t *sqlTx) ListChestRewards(ctx context.Context, chestID string) ([]Reward, error) {
	return t.queryRewards(ctx, `SELECT `+rewardColumns+` FROM chest_rewards WHERE chest_id = ? ORDER BY created_at ASC, id ASC`, chestID)
}

func (t *sqlTx) UnlockReward(ctx context.Context, id string) error {
	res, err := t.tx.ExecContext(ctx, `UPDATE chest_rewards SET locked = 0 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("reward unlock: %w", err)
	}
	return mustAffect("reward unlock", res)
}

func (t *sqlTx) queryRewards(ctx context.Context, query string, args ...any) ([]Reward, error) {
	rows, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("reward list: %w", err)
	}
	defer rows.Close()

	var out []Reward
	for rows.Next() {
		var (
			r         Reward
			locked    int
			createdAt int64
		)
		if err := rows.Scan(&r.ID, &r.ChestID, &r.Type, &r.RefID, &locked, &createdAt); err != nil {
			return nil, fmt.Errorf("reward scan: %w", err)
		}
		r.Locked = locked != 0
		r.CreatedAt = fromUnix(createdAt)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reward rows: %w", err)
	}
	return out, nil
}

// Items and cards share a table shape; only the table name differs.

func (t *sqlTx) insertCollectible(ctx context.Context, table, id, catalogID, name, rarity, effect string, createdAt int64) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO `+table+` (id, catalog_id, name, rarity, effect, created_at) VALUES (?, ?, ?, ?, ?, ?)
	`, id, catalogID, name, rarity, effect, createdAt)
	if err != nil {
		return fmt.Errorf("%s insert: %w", table, err)
	}
	return nil
}

func (t *sqlTx) queryCollectibles(ctx context.Context, table string, where string, args ...any) ([]Item, error) {
	rows, err := t.tx.QueryContext(ctx, `SELECT id, catalog_id, name, rarity, effect, created_at FROM `+table+where+` ORDER BY created_at ASC, id ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("%s list: %w", table, err)
	}
	defer rows.Close()

	var out []Item
	for rows.Next() {
		var (
			it        Item
			createdAt int64
		)
		if err := rows.Scan(&it.ID, &it.CatalogID, &it.Name, &it.Rarity, &it.Effect, &createdAt); err != nil {
			return nil, fmt.Errorf("%s scan: %w", table, err)
		}
		it.CreatedAt = fromUnix(createdAt)
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s rows: %w", table, err)
	}
	return out, nil
}

func (t *sqlTx) InsertItem(ctx context.Context, it Item) error {
	return t.insertCollectible(ctx, "items", it.ID, it.CatalogID, it.Name, it.Rarity, it.Effect, toUnix(it.CreatedAt))
}

func (t *sqlTx) GetItem(ctx context.Context, id string) (Item, error) {
	items, err := t.queryCollectibles(ctx, "items", " WHERE id = ?", id)
	if err != nil {
		return Item{}, err
	}
	if len(items) == 0 {
		return Item{}, fmt.Errorf("item get: %w", ErrNotFound)
	}
	return items[0], nil
}

func (t *sqlTx) ListItems(ctx context.Context) ([]Item, error) {
	return t.queryCollectibles(ctx, "items", "")
}

func (t *sqlTx) InsertCard(ctx context.Context, c Card) error {
	return t.insertCollectible(ctx, "cards", c.ID, c.CatalogID, c.Name, c.Rarity, c.Effect, toUnix(c.CreatedAt))
}

func (t *sqlTx) GetCard(ctx context.Context, id string) (Card, error) {
	cards, err := t.queryCollectibles(ctx, "cards", " WHERE id = ?", id)
	if err != nil {
		return Card{}, err
	}
	if len(cards) == 0 {
		return Card{}, fmt.Errorf("card get: %w", ErrNotFound)
	}
	return Card(cards[0]), nil
}

func (t *sqlTx) ListCards(ctx context.Context) ([]Card, error) {
	items, err := t.queryCollectibles(ctx, "cards", "")
	if err != nil {
		return nil, err
	}
	out := make([]Card, 0, len(items))
	for _, it := range items {
		out = append(out, Card(it))
	}
	return out, nil
}
