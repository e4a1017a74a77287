package v1

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	settingserrors "github.com/forumkit/forumkit/server/internal/errors"
	"github.com/forumkit/forumkit/server/service/usersetting"
)

// errorResponse is the JSON body returned for request-level failures.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// GetUserSettings returns the fully resolved settings for a user.
//
//	GET /api/v1/users/:uid/settings
func (s *APIV1Service) GetUserSettings(c echo.Context) error {
	userID, err := parseUserID(c)
	if err != nil {
		return err
	}
	settings, err := s.Settings.GetSettings(c.Request().Context(), userID)
	if err != nil {
		return settingsHTTPError(err)
	}
	return c.JSON(http.StatusOK, settings)
}

// SaveUserSettings replaces a user's settings record.
//
//	PUT /api/v1/users/:uid/settings
func (s *APIV1Service) SaveUserSettings(c echo.Context) error {
	userID, err := parseUserID(c)
	if err != nil {
		return err
	}
	request := &usersetting.SaveRequest{}
	if err := c.Bind(request); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body").SetInternal(err)
	}
	settings, err := s.Settings.SaveSettings(c.Request().Context(), userID, request)
	if err != nil {
		return settingsHTTPError(err)
	}
	return c.JSON(http.StatusOK, settings)
}

type setFieldRequest struct {
	Value string `json:"value"`
}

// SetUserSettingField writes one raw settings field.
//
//	PATCH /api/v1/users/:uid/settings/:key
func (s *APIV1Service) SetUserSettingField(c echo.Context) error {
	userID, err := parseUserID(c)
	if err != nil {
		return err
	}
	key := c.Param("key")
	if key == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "setting key is required")
	}
	request := &setFieldRequest{}
	if err := c.Bind(request); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body").SetInternal(err)
	}
	if err := s.Settings.SetSetting(c.Request().Context(), userID, key, request.Value); err != nil {
		return settingsHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

type batchGetRequest struct {
	UserIDs []int64 `json:"uids"`
}

type batchGetResponse struct {
	Settings []*usersetting.Settings `json:"settings"`
}

// BatchGetUserSettings resolves settings for several users in input order.
//
//	POST /api/v1/users/settings/batch-get
func (s *APIV1Service) BatchGetUserSettings(c echo.Context) error {
	request := &batchGetRequest{}
	if err := c.Bind(request); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body").SetInternal(err)
	}
	settings, err := s.Settings.GetMultipleSettings(c.Request().Context(), request.UserIDs)
	if err != nil {
		return settingsHTTPError(err)
	}
	return c.JSON(http.StatusOK, &batchGetResponse{Settings: settings})
}

func parseUserID(c echo.Context) (int64, error) {
	userID, err := strconv.ParseInt(c.Param("uid"), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid user id").SetInternal(err)
	}
	return userID, nil
}

// settingsHTTPError maps service errors onto HTTP statuses. Validation
// failures carry their code so clients can react per field.
func settingsHTTPError(err error) error {
	switch settingserrors.CodeOf(err) {
	case settingserrors.ErrCodeInvalidPagination, settingserrors.ErrCodeInvalidLanguage, settingserrors.ErrCodeInvalidArgument:
		return echo.NewHTTPError(http.StatusBadRequest, errorResponse{
			Code:    string(settingserrors.CodeOf(err)),
			Message: err.Error(),
		}).SetInternal(err)
	}
	return echo.NewHTTPError(http.StatusInternalServerError, "internal server error").SetInternal(err)
}
