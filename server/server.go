// Package server wires the settings service and its HTTP surface.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/forumkit/forumkit/internal/profile"
	"github.com/forumkit/forumkit/plugin/hook"
	"github.com/forumkit/forumkit/server/i18n"
	"github.com/forumkit/forumkit/server/notification"
	apiv1 "github.com/forumkit/forumkit/server/router/api/v1"
	"github.com/forumkit/forumkit/server/service/usersetting"
	"github.com/forumkit/forumkit/store"
)

type Server struct {
	Profile *profile.Profile
	Store   *store.Store

	echoServer *echo.Echo
	digest     store.DigestIndex

	Hooks         *hook.Registry
	Notifications *notification.Registry
	Languages     *i18n.Catalog
	Settings      usersetting.Service
}

func NewServer(_ context.Context, profile *profile.Profile, store_ *store.Store, digest store.DigestIndex, logger *slog.Logger) (*Server, error) {
	if digest == nil {
		return nil, errors.New("digest index is required")
	}

	echoServer := echo.New()
	echoServer.Debug = profile.IsDev()
	echoServer.HideBanner = true
	echoServer.HidePort = false

	echoServer.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogURI:    true,
		LogStatus: true,
		LogValuesFunc: func(_ echo.Context, v echomw.RequestLoggerValues) error {
			logger.Debug("request", slog.String("uri", v.URI), slog.Int("status", v.Status))
			return nil
		},
	}))
	echoServer.Use(echomw.Recover())

	s := &Server{
		Profile:       profile,
		Store:         store_,
		echoServer:    echoServer,
		digest:        digest,
		Hooks:         hook.NewRegistry(),
		Notifications: notification.NewRegistry(),
		Languages:     i18n.NewCatalog(),
	}

	s.Settings = usersetting.NewService(usersetting.Dependencies{
		Records:       store_,
		Config:        store_,
		Notifications: s.Notifications,
		Languages:     s.Languages,
		Digest:        digest,
		Hooks:         s.Hooks,
		Logger:        logger,
	})

	apiV1Service := apiv1.NewAPIV1Service(profile, store_, s.Settings)
	apiV1Service.Register(echoServer)

	return s, nil
}

func (s *Server) Start(_ context.Context) error {
	address := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)
	return s.echoServer.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := s.echoServer.Shutdown(ctx); err != nil {
		slog.Error("failed to shutdown server", slog.Any("error", err))
	}
	if err := s.digest.Close(); err != nil {
		slog.Error("failed to close digest index", slog.Any("error", err))
	}
	if err := s.Store.Close(); err != nil {
		slog.Error("failed to close store", slog.Any("error", err))
	}
	slog.Info("server shutdown")
}
