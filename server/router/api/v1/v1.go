// Package v1 exposes the settings service over REST.
package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/forumkit/forumkit/internal/profile"
	"github.com/forumkit/forumkit/server/middleware"
	"github.com/forumkit/forumkit/server/service/usersetting"
	"github.com/forumkit/forumkit/store"
)

type APIV1Service struct {
	Profile  *profile.Profile
	Store    *store.Store
	Settings usersetting.Service

	limiter *middleware.RateLimiter
}

func NewAPIV1Service(profile *profile.Profile, store *store.Store, settings usersetting.Service) *APIV1Service {
	return &APIV1Service{
		Profile:  profile,
		Store:    store,
		Settings: settings,
		limiter:  middleware.NewRateLimiter(10, 20),
	}
}

// Register attaches the v1 routes to the given Echo instance.
func (s *APIV1Service) Register(echoServer *echo.Echo) {
	group := echoServer.Group("/api/v1")
	group.Use(echomw.CORS())
	group.Use(s.limiter.Middleware())

	group.GET("/users/:uid/settings", s.GetUserSettings)
	group.PUT("/users/:uid/settings", s.SaveUserSettings)
	group.PATCH("/users/:uid/settings/:key", s.SetUserSettingField)
	group.POST("/users/settings/batch-get", s.BatchGetUserSettings)

	group.GET("/ping", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
}
