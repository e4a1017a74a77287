package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	settingserrors "github.com/forumkit/forumkit/server/internal/errors"
	"github.com/forumkit/forumkit/server/service/usersetting"
	"github.com/forumkit/forumkit/store"
)

// stubSettings returns canned results so the handler mapping can be
// tested without a store.
type stubSettings struct {
	saveErr error
}

func (s *stubSettings) GetSettings(_ context.Context, userID int64) (*usersetting.Settings, error) {
	return &usersetting.Settings{UID: userID, UserLang: "en-GB", TopicsPerPage: 20, PostsPerPage: 20}, nil
}

func (s *stubSettings) GetMultipleSettings(_ context.Context, userIDs []int64) ([]*usersetting.Settings, error) {
	out := make([]*usersetting.Settings, 0, len(userIDs))
	for _, userID := range userIDs {
		out = append(out, &usersetting.Settings{UID: userID})
	}
	return out, nil
}

func (s *stubSettings) SaveSettings(ctx context.Context, userID int64, _ *usersetting.SaveRequest) (*usersetting.Settings, error) {
	if s.saveErr != nil {
		return nil, s.saveErr
	}
	return s.GetSettings(ctx, userID)
}

func (s *stubSettings) UpdateDigestSetting(context.Context, int64, store.DigestFrequency) error {
	return nil
}

func (s *stubSettings) SetSetting(context.Context, int64, string, string) error {
	return nil
}

func newTestServer(stub *stubSettings) *echo.Echo {
	e := echo.New()
	service := &APIV1Service{Settings: stub}
	e.GET("/api/v1/users/:uid/settings", service.GetUserSettings)
	e.PUT("/api/v1/users/:uid/settings", service.SaveUserSettings)
	e.PATCH("/api/v1/users/:uid/settings/:key", service.SetUserSettingField)
	e.POST("/api/v1/users/settings/batch-get", service.BatchGetUserSettings)
	return e
}

func TestGetUserSettingsHandler(t *testing.T) {
	e := newTestServer(&stubSettings{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/7/settings", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var settings usersetting.Settings
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &settings))
	require.Equal(t, int64(7), settings.UID)
	require.Equal(t, "en-GB", settings.UserLang)
}

func TestGetUserSettingsHandlerBadID(t *testing.T) {
	e := newTestServer(&stubSettings{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/abc/settings", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSaveUserSettingsHandlerValidationError(t *testing.T) {
	e := newTestServer(&stubSettings{saveErr: settingserrors.NewInvalidPagination("postsPerPage", 20)})

	body := `{"postsPerPage": 0, "topicsPerPage": 10}`
	req := httptest.NewRequest(http.MethodPut, "/api/v1/users/7/settings", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "INVALID_PAGINATION")
}

func TestSetUserSettingFieldHandler(t *testing.T) {
	e := newTestServer(&stubSettings{})

	body := `{"value": "de"}`
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/users/7/settings/userLang", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestBatchGetUserSettingsHandler(t *testing.T) {
	e := newTestServer(&stubSettings{})

	body := `{"uids": [3, 1, 2]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/settings/batch-get", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var response batchGetResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	require.Len(t, response.Settings, 3)
	require.Equal(t, int64(3), response.Settings[0].UID)
	require.Equal(t, int64(1), response.Settings[1].UID)
	require.Equal(t, int64(2), response.Settings[2].UID)
}
