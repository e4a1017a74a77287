package postgres

import (
	"context"
	"fmt"
)

func (d *DB) GetUserSettings(ctx context.Context, userID int64) (map[string]string, error) {
	query := `SELECT key, value FROM user_setting WHERE user_id = ` + placeholder(1)
	rows, err := d.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user_setting: %w", err)
	}
	defer rows.Close()

	fields := map[string]string{}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan user_setting: %w", err)
		}
		fields[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate user_setting: %w", err)
	}
	return fields, nil
}

func (d *DB) GetManyUserSettings(ctx context.Context, userIDs []int64) ([]map[string]string, error) {
	records := make([]map[string]string, len(userIDs))
	for i := range records {
		records[i] = map[string]string{}
	}
	if len(userIDs) == 0 {
		return records, nil
	}

	args := make([]any, 0, len(userIDs))
	for _, userID := range userIDs {
		args = append(args, userID)
	}
	query := `SELECT user_id, key, value FROM user_setting WHERE user_id IN (` + placeholders(len(userIDs)) + `)`
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get user_setting batch: %w", err)
	}
	defer rows.Close()

	byUser := map[int64]map[string]string{}
	for rows.Next() {
		var userID int64
		var key, value string
		if err := rows.Scan(&userID, &key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan user_setting: %w", err)
		}
		if byUser[userID] == nil {
			byUser[userID] = map[string]string{}
		}
		byUser[userID][key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate user_setting: %w", err)
	}

	// Positional correspondence with the requested ids.
	for i, userID := range userIDs {
		if fields, ok := byUser[userID]; ok {
			records[i] = fields
		}
	}
	return records, nil
}

func (d *DB) ReplaceUserSettings(ctx context.Context, userID int64, fields map[string]string) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM user_setting WHERE user_id = `+placeholder(1), userID,
	); err != nil {
		return fmt.Errorf("failed to clear user_setting: %w", err)
	}

	stmt := `INSERT INTO user_setting (user_id, key, value) VALUES (` + placeholders(3) + `)`
	for key, value := range fields {
		if _, err := tx.ExecContext(ctx, stmt, userID, key, value); err != nil {
			return fmt.Errorf("failed to insert user_setting %q: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit user_setting: %w", err)
	}
	return nil
}

func (d *DB) UpsertUserSettingField(ctx context.Context, userID int64, key, value string) error {
	stmt := `INSERT INTO user_setting (user_id, key, value)
		VALUES (` + placeholders(3) + `)
		ON CONFLICT (user_id, key) DO UPDATE SET value = EXCLUDED.value`
	if _, err := d.db.ExecContext(ctx, stmt, userID, key, value); err != nil {
		return fmt.Errorf("failed to upsert user_setting field %q: %w", key, err)
	}
	return nil
}
