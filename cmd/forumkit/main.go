package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/forumkit/forumkit/internal/profile"
	"github.com/forumkit/forumkit/internal/version"
	"github.com/forumkit/forumkit/server"
	"github.com/forumkit/forumkit/internal/observability"
	"github.com/forumkit/forumkit/store"
	"github.com/forumkit/forumkit/store/db"
)

const greetingBanner = `forumkit settings service`

var rootCmd = &cobra.Command{
	Use:   "forumkit",
	Short: "User preference settings service.",
	Run: func(_ *cobra.Command, _ []string) {
		instanceProfile := &profile.Profile{
			Mode:          viper.GetString("mode"),
			Addr:          viper.GetString("addr"),
			Port:          viper.GetInt("port"),
			Data:          viper.GetString("data"),
			Driver:        viper.GetString("driver"),
			DSN:           viper.GetString("dsn"),
			InstanceURL:   viper.GetString("instance-url"),
			RedisAddr:     viper.GetString("redis-addr"),
			RedisPassword: viper.GetString("redis-password"),
			RedisDB:       viper.GetInt("redis-db"),
			Version:       version.GetCurrentVersion(viper.GetString("mode")),
		}
		if err := instanceProfile.Validate(); err != nil {
			slog.Error("invalid configuration", slog.Any("error", err))
			os.Exit(1)
		}

		logger := observability.NewLogger(instanceProfile.Mode)
		slog.SetDefault(logger)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		dbDriver, err := db.NewDBDriver(instanceProfile)
		if err != nil {
			slog.Error("failed to create db driver", slog.Any("error", err))
			os.Exit(1)
		}

		storeInstance := store.New(dbDriver, instanceProfile)
		if err := storeInstance.Migrate(ctx); err != nil {
			slog.Error("failed to migrate database", slog.Any("error", err))
			os.Exit(1)
		}

		digest, err := newDigestIndex(ctx, instanceProfile)
		if err != nil {
			slog.Error("failed to create digest index", slog.Any("error", err))
			os.Exit(1)
		}

		s, err := server.NewServer(ctx, instanceProfile, storeInstance, digest, logger)
		if err != nil {
			slog.Error("failed to create server", slog.Any("error", err))
			os.Exit(1)
		}

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		go func() {
			sig := <-sigChan
			slog.Info("received signal, shutting down", slog.String("signal", sig.String()))
			s.Shutdown(ctx)
			cancel()
		}()

		printGreetings(instanceProfile)

		if err := s.Start(ctx); err != nil {
			if err != http.ErrServerClosed {
				slog.Error("failed to start server", slog.Any("error", err))
				cancel()
			}
		}

		// Wait for shutdown to finish.
		<-ctx.Done()
	},
}

// newDigestIndex picks the Redis-backed index when an address is
// configured and falls back to the in-process one.
func newDigestIndex(ctx context.Context, instanceProfile *profile.Profile) (store.DigestIndex, error) {
	if instanceProfile.IsRedisEnabled() {
		return store.NewRedisDigestIndex(ctx, store.RedisDigestConfig{
			Addr:     instanceProfile.RedisAddr,
			Password: instanceProfile.RedisPassword,
			DB:       instanceProfile.RedisDB,
		})
	}
	return store.NewMemoryDigestIndex(), nil
}

func printGreetings(instanceProfile *profile.Profile) {
	fmt.Println(greetingBanner)
	fmt.Printf("version %s, mode %q, driver %q\n", instanceProfile.Version, instanceProfile.Mode, instanceProfile.Driver)
	fmt.Printf("listening on %s:%d\n", instanceProfile.Addr, instanceProfile.Port)
}

func init() {
	rootCmd.PersistentFlags().String("mode", "demo", `mode of the server, can be "prod", "dev" or "demo"`)
	rootCmd.PersistentFlags().String("addr", "", "binding address for the server")
	rootCmd.PersistentFlags().Int("port", 8081, "binding port for the server")
	rootCmd.PersistentFlags().String("data", "", "data directory")
	rootCmd.PersistentFlags().String("driver", "sqlite", `database driver, "sqlite" or "postgres"`)
	rootCmd.PersistentFlags().String("dsn", "", "database source name")
	rootCmd.PersistentFlags().String("instance-url", "", "public url of the instance")
	rootCmd.PersistentFlags().String("redis-addr", "", "redis address for the digest index; empty uses the in-memory index")
	rootCmd.PersistentFlags().String("redis-password", "", "redis password")
	rootCmd.PersistentFlags().Int("redis-db", 0, "redis database number")

	for _, flag := range []string{"mode", "addr", "port", "data", "driver", "dsn", "instance-url", "redis-addr", "redis-password", "redis-db"} {
		if err := viper.BindPFlag(flag, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
			panic(err)
		}
	}

	viper.SetEnvPrefix("forumkit")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		panic(err)
	}
}
