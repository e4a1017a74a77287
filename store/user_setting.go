package store

import (
	"context"
	"fmt"
)

// UserSettingsKey formats the cache key for a user's settings record.
func UserSettingsKey(userID int64) string {
	return fmt.Sprintf("user:%d:settings", userID)
}

// GetUserSettings returns the raw settings record for a user.
// An unknown user yields an empty map, not an error.
func (s *Store) GetUserSettings(ctx context.Context, userID int64) (map[string]string, error) {
	if cached, ok := s.userSettingCache.Get(ctx, UserSettingsKey(userID)); ok {
		if fields, ok := cached.(map[string]string); ok {
			return copyFields(fields), nil
		}
	}

	fields, err := s.driver.GetUserSettings(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.userSettingCache.Set(ctx, UserSettingsKey(userID), copyFields(fields))
	return fields, nil
}

// GetManyUserSettings returns one raw record per requested user, in input order.
func (s *Store) GetManyUserSettings(ctx context.Context, userIDs []int64) ([]map[string]string, error) {
	if len(userIDs) == 0 {
		return []map[string]string{}, nil
	}

	records, err := s.driver.GetManyUserSettings(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	for i, userID := range userIDs {
		s.userSettingCache.Set(ctx, UserSettingsKey(userID), copyFields(records[i]))
	}
	return records, nil
}

// ReplaceUserSettings overwrites the whole settings record for a user.
// Empty field values are dropped so the record keeps the distinction
// between an explicit value and an absent one.
func (s *Store) ReplaceUserSettings(ctx context.Context, userID int64, fields map[string]string) error {
	persisted := make(map[string]string, len(fields))
	for key, value := range fields {
		if value == "" {
			continue
		}
		persisted[key] = value
	}

	if err := s.driver.ReplaceUserSettings(ctx, userID, persisted); err != nil {
		return err
	}
	s.userSettingCache.Delete(ctx, UserSettingsKey(userID))
	return nil
}

// UpsertUserSettingField writes a single field of a user's record.
func (s *Store) UpsertUserSettingField(ctx context.Context, userID int64, key, value string) error {
	if err := s.driver.UpsertUserSettingField(ctx, userID, key, value); err != nil {
		return err
	}
	s.userSettingCache.Delete(ctx, UserSettingsKey(userID))
	return nil
}

func copyFields(fields map[string]string) map[string]string {
	out := make(map[string]string, len(fields))
	for key, value := range fields {
		out[key] = value
	}
	return out
}
