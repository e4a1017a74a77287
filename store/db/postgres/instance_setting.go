package postgres

import (
	"context"
	"fmt"

	"github.com/forumkit/forumkit/store"
)

func (d *DB) UpsertInstanceSetting(ctx context.Context, upsert *store.InstanceSetting) (*store.InstanceSetting, error) {
	stmt := `INSERT INTO instance_setting (name, value)
		VALUES (` + placeholders(2) + `)
		ON CONFLICT (name) DO UPDATE SET value = EXCLUDED.value`
	if _, err := d.db.ExecContext(ctx, stmt, upsert.Name, upsert.Value); err != nil {
		return nil, fmt.Errorf("failed to upsert instance_setting: %w", err)
	}
	return upsert, nil
}

func (d *DB) ListInstanceSettings(ctx context.Context, find *store.FindInstanceSetting) ([]*store.InstanceSetting, error) {
	where, args := []string{"1 = 1"}, []any{}
	if find.Name != nil {
		where, args = append(where, "name = "+placeholder(len(args)+1)), append(args, *find.Name)
	}

	query := `SELECT name, value FROM instance_setting WHERE ` + joinWhere(where)
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list instance_setting: %w", err)
	}
	defer rows.Close()

	list := []*store.InstanceSetting{}
	for rows.Next() {
		setting := &store.InstanceSetting{}
		if err := rows.Scan(&setting.Name, &setting.Value); err != nil {
			return nil, fmt.Errorf("failed to scan instance_setting: %w", err)
		}
		list = append(list, setting)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate instance_setting: %w", err)
	}
	return list, nil
}

func (d *DB) DeleteInstanceSetting(ctx context.Context, delete *store.DeleteInstanceSetting) error {
	if _, err := d.db.ExecContext(ctx,
		`DELETE FROM instance_setting WHERE name = `+placeholder(1), delete.Name,
	); err != nil {
		return fmt.Errorf("failed to delete instance_setting: %w", err)
	}
	return nil
}
