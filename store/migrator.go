package store

import (
	"context"
	"embed"
	"fmt"
	"log/slog"

	"github.com/pkg/errors"

	"github.com/forumkit/forumkit/internal/version"
)

// Migration System Overview:
//
// Schema version is stored in instance_setting under "schema_version".
//
// Migration Flow:
// 1. If the DB is not initialized, apply LATEST.sql and stamp the version.
// 2. Otherwise compare the stored schema version with the build's schema
//    version and re-stamp when the build is newer. A database stamped by
//    a newer build refuses to start.
//
// Migration Files:
// - Location: store/migration/{driver}/LATEST.sql
// - LATEST.sql: full schema for new installations.

//go:embed migration
var migrationFS embed.FS

const (
	// SchemaVersionSettingName is the instance setting holding the schema version.
	SchemaVersionSettingName = "schema_version"
)

// Migrate prepares the database schema for the current build.
func (s *Store) Migrate(ctx context.Context) error {
	initialized, err := s.driver.IsInitialized(ctx)
	if err != nil {
		return errors.Wrap(err, "check database initialization")
	}

	currentSchemaVersion := version.GetSchemaVersion(s.profile.Mode)
	if !initialized {
		if err := s.applyLatestSchema(ctx); err != nil {
			return errors.Wrap(err, "apply latest schema")
		}
		if _, err := s.UpsertInstanceSetting(ctx, &InstanceSetting{
			Name:  SchemaVersionSettingName,
			Value: currentSchemaVersion,
		}); err != nil {
			return errors.Wrap(err, "stamp schema version")
		}
		slog.Info("database initialized", slog.String("schema_version", currentSchemaVersion))
		return nil
	}

	storedSchemaVersion, err := s.GetInstanceSettingValue(ctx, SchemaVersionSettingName)
	if err != nil {
		return errors.Wrap(err, "read schema version")
	}
	if storedSchemaVersion == "" {
		storedSchemaVersion = "0.0.0"
	}

	if version.IsVersionGreaterThan(storedSchemaVersion, currentSchemaVersion) {
		return errors.Errorf("database schema %s is newer than this build (%s)", storedSchemaVersion, currentSchemaVersion)
	}
	if version.IsVersionGreaterThan(currentSchemaVersion, storedSchemaVersion) {
		if _, err := s.UpsertInstanceSetting(ctx, &InstanceSetting{
			Name:  SchemaVersionSettingName,
			Value: currentSchemaVersion,
		}); err != nil {
			return errors.Wrap(err, "update schema version")
		}
		slog.Info("schema version updated",
			slog.String("from", storedSchemaVersion),
			slog.String("to", currentSchemaVersion))
	}
	return nil
}

func (s *Store) applyLatestSchema(ctx context.Context) error {
	schemaPath := fmt.Sprintf("migration/%s/LATEST.sql", s.profile.Driver)
	buf, err := migrationFS.ReadFile(schemaPath)
	if err != nil {
		return errors.Wrapf(err, "read latest schema %q", schemaPath)
	}

	if _, err := s.driver.GetDB().ExecContext(ctx, string(buf)); err != nil {
		return errors.Wrap(err, "execute latest schema")
	}
	return nil
}
