package store

import (
	"context"
	"strconv"
)

const instanceSettingListKey = "instance-settings"

// InstanceSetting is a global configuration entry, owned by the admin UI.
type InstanceSetting struct {
	Name  string
	Value string
}

// FindInstanceSetting specifies the conditions for finding instance settings.
type FindInstanceSetting struct {
	Name *string
}

// DeleteInstanceSetting specifies the instance setting to delete.
type DeleteInstanceSetting struct {
	Name string
}

// UpsertInstanceSetting creates or updates a global configuration entry.
func (s *Store) UpsertInstanceSetting(ctx context.Context, upsert *InstanceSetting) (*InstanceSetting, error) {
	setting, err := s.driver.UpsertInstanceSetting(ctx, upsert)
	if err != nil {
		return nil, err
	}
	s.instanceSettingCache.Delete(ctx, instanceSettingListKey)
	return setting, nil
}

// ListInstanceSettings returns instance settings matching find.
func (s *Store) ListInstanceSettings(ctx context.Context, find *FindInstanceSetting) ([]*InstanceSetting, error) {
	return s.driver.ListInstanceSettings(ctx, find)
}

// DeleteInstanceSetting removes a global configuration entry.
func (s *Store) DeleteInstanceSetting(ctx context.Context, delete *DeleteInstanceSetting) error {
	if err := s.driver.DeleteInstanceSetting(ctx, delete); err != nil {
		return err
	}
	s.instanceSettingCache.Delete(ctx, instanceSettingListKey)
	return nil
}

// GetInstanceSettingValue returns the value of a named instance setting,
// or "" when it is unset. The full setting list is cached.
func (s *Store) GetInstanceSettingValue(ctx context.Context, name string) (string, error) {
	if cached, ok := s.instanceSettingCache.Get(ctx, instanceSettingListKey); ok {
		if settings, ok := cached.(map[string]string); ok {
			return settings[name], nil
		}
	}

	list, err := s.driver.ListInstanceSettings(ctx, &FindInstanceSetting{})
	if err != nil {
		return "", err
	}
	settings := make(map[string]string, len(list))
	for _, setting := range list {
		settings[setting.Name] = setting.Value
	}
	s.instanceSettingCache.Set(ctx, instanceSettingListKey, settings)
	return settings[name], nil
}

// GetInstanceSettingInt returns a numeric instance setting, falling back
// to defaultValue when unset or unparsable.
func (s *Store) GetInstanceSettingInt(ctx context.Context, name string, defaultValue int) (int, error) {
	value, err := s.GetInstanceSettingValue(ctx, name)
	if err != nil {
		return 0, err
	}
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue, nil
	}
	return parsed, nil
}
