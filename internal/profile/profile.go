package profile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Profile is the configuration to start the main server.
type Profile struct {
	// Mode can be "prod" or "dev" or "demo"
	Mode string
	// Addr is the binding address for server
	Addr string
	// Port is the binding port for server
	Port int
	// Data is the data directory
	Data string
	// DSN points to where forumkit stores its own data
	DSN string
	// Driver is the database driver (sqlite or postgres)
	Driver string
	// Version is the current version of server
	Version string
	// InstanceURL is the url of your forumkit instance.
	InstanceURL string

	// Digest Index Configuration
	RedisAddr     string // FORUMKIT_REDIS_ADDR; empty means the in-memory digest index
	RedisPassword string // FORUMKIT_REDIS_PASSWORD
	RedisDB       int    // FORUMKIT_REDIS_DB (default: 0)
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// IsRedisEnabled returns true when a Redis address is configured for the
// digest index.
func (p *Profile) IsRedisEnabled() bool {
	return p.RedisAddr != ""
}

// getEnvOrDefault returns the environment variable value or the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// FromEnv loads configuration from FORUMKIT_* environment variables.
// Values already set on the profile are only replaced when the
// corresponding variable is non-empty.
func (p *Profile) FromEnv() {
	getIntEnvOrDefault := func(key string, defaultValue int) int {
		if value := os.Getenv(key); value != "" {
			if parsed, err := strconv.Atoi(value); err == nil {
				return parsed
			}
		}
		return defaultValue
	}

	p.Mode = getEnvOrDefault("FORUMKIT_MODE", p.Mode)
	p.Addr = getEnvOrDefault("FORUMKIT_ADDR", p.Addr)
	p.Port = getIntEnvOrDefault("FORUMKIT_PORT", p.Port)
	p.Data = getEnvOrDefault("FORUMKIT_DATA", p.Data)
	p.DSN = getEnvOrDefault("FORUMKIT_DSN", p.DSN)
	p.Driver = getEnvOrDefault("FORUMKIT_DRIVER", p.Driver)
	p.InstanceURL = getEnvOrDefault("FORUMKIT_INSTANCE_URL", p.InstanceURL)

	p.RedisAddr = getEnvOrDefault("FORUMKIT_REDIS_ADDR", p.RedisAddr)
	p.RedisPassword = getEnvOrDefault("FORUMKIT_REDIS_PASSWORD", p.RedisPassword)
	p.RedisDB = getIntEnvOrDefault("FORUMKIT_REDIS_DB", p.RedisDB)
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}

	if p.Driver != "sqlite" && p.Driver != "postgres" {
		return errors.Errorf("unsupported db driver %q", p.Driver)
	}

	if p.Mode == "prod" && p.Data == "" {
		if runtime.GOOS == "windows" {
			p.Data = filepath.Join(os.Getenv("ProgramData"), "forumkit")
			if _, err := os.Stat(p.Data); os.IsNotExist(err) {
				if err := os.MkdirAll(p.Data, 0770); err != nil {
					slog.Error("failed to create data directory", slog.String("data", p.Data), slog.String("error", err.Error()))
					return err
				}
			}
		} else {
			p.Data = "/var/opt/forumkit"
		}
	}

	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		slog.Error("failed to check data dir", slog.String("data", dataDir), slog.String("error", err.Error()))
		return err
	}

	p.Data = dataDir
	if p.Driver == "sqlite" && p.DSN == "" {
		dbFile := fmt.Sprintf("forumkit_%s.db", p.Mode)
		p.DSN = filepath.Join(dataDir, dbFile)
	}
	if p.Driver == "postgres" && p.DSN == "" {
		return errors.New("dsn is required for the postgres driver")
	}

	return nil
}
