package store

import (
	"context"
	"database/sql"
)

// Driver is an interface for store driver.
// It contains all methods that store database driver should implement.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	IsInitialized(ctx context.Context) (bool, error)

	// UserSetting model related methods.
	//
	// A user's settings record is a flat field map. GetUserSettings returns
	// an empty map for an unknown user; absence is not an error.
	GetUserSettings(ctx context.Context, userID int64) (map[string]string, error)
	// GetManyUserSettings returns one field map per requested user, in the
	// same order as userIDs.
	GetManyUserSettings(ctx context.Context, userIDs []int64) ([]map[string]string, error)
	// ReplaceUserSettings overwrites the whole record for a user.
	ReplaceUserSettings(ctx context.Context, userID int64, fields map[string]string) error
	// UpsertUserSettingField writes a single field, leaving the rest untouched.
	UpsertUserSettingField(ctx context.Context, userID int64, key, value string) error

	// InstanceSetting model related methods.
	UpsertInstanceSetting(ctx context.Context, upsert *InstanceSetting) (*InstanceSetting, error)
	ListInstanceSettings(ctx context.Context, find *FindInstanceSetting) ([]*InstanceSetting, error)
	DeleteInstanceSetting(ctx context.Context, delete *DeleteInstanceSetting) error
}
