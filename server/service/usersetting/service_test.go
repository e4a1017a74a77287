package usersetting

import (
	"context"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/forumkit/forumkit/plugin/hook"
	"github.com/forumkit/forumkit/server/i18n"
	settingserrors "github.com/forumkit/forumkit/server/internal/errors"
	"github.com/forumkit/forumkit/server/notification"
	"github.com/forumkit/forumkit/store"
)

// fakeRecords is an in-memory RecordStore that counts accesses.
type fakeRecords struct {
	mu           sync.Mutex
	records      map[int64]map[string]string
	getCalls     int
	replaceCalls int
	replaceErr   error
}

func newFakeRecords() *fakeRecords {
	return &fakeRecords{records: make(map[int64]map[string]string)}
}

func (f *fakeRecords) GetUserSettings(_ context.Context, userID int64) (map[string]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	fields := make(map[string]string, len(f.records[userID]))
	for k, v := range f.records[userID] {
		fields[k] = v
	}
	return fields, nil
}

func (f *fakeRecords) GetManyUserSettings(ctx context.Context, userIDs []int64) ([]map[string]string, error) {
	out := make([]map[string]string, 0, len(userIDs))
	for _, userID := range userIDs {
		fields, err := f.GetUserSettings(ctx, userID)
		if err != nil {
			return nil, err
		}
		out = append(out, fields)
	}
	return out, nil
}

func (f *fakeRecords) ReplaceUserSettings(_ context.Context, userID int64, fields map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.replaceErr != nil {
		return f.replaceErr
	}
	f.replaceCalls++
	stored := make(map[string]string, len(fields))
	for k, v := range fields {
		if v == "" {
			continue
		}
		stored[k] = v
	}
	f.records[userID] = stored
	return nil
}

func (f *fakeRecords) UpsertUserSettingField(_ context.Context, userID int64, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.records[userID] == nil {
		f.records[userID] = make(map[string]string)
	}
	f.records[userID][key] = value
	return nil
}

type fakeConfig struct {
	values map[string]string
}

func (f *fakeConfig) GetInstanceSettingValue(_ context.Context, name string) (string, error) {
	return f.values[name], nil
}

type testEnv struct {
	service Service
	records *fakeRecords
	config  *fakeConfig
	digest  *store.MemoryDigestIndex
	hooks   *hook.Registry
}

func newTestEnv(configValues map[string]string) *testEnv {
	if configValues == nil {
		configValues = map[string]string{}
	}
	env := &testEnv{
		records: newFakeRecords(),
		config:  &fakeConfig{values: configValues},
		digest:  store.NewMemoryDigestIndex(),
		hooks:   hook.NewRegistry(),
	}
	env.service = NewService(Dependencies{
		Records:       env.records,
		Config:        env.config,
		Notifications: notification.NewRegistry(),
		Languages:     i18n.NewCatalog(),
		Digest:        env.digest,
		Hooks:         env.hooks,
	})
	return env
}

func intPtr(v int) *int { return &v }

func validSaveRequest() *SaveRequest {
	return &SaveRequest{
		ShowEmail:              true,
		DailyDigestFreq:        "week",
		TopicsPerPage:          intPtr(15),
		PostsPerPage:           intPtr(10),
		UserLang:               "de",
		TopicPostSort:          "newest_to_oldest",
		CategoryTopicSort:      "recently_replied",
		FollowTopicsOnCreate:   true,
		UpvoteNotifFreq:        "all",
		UpdateURLWithPostIndex: true,
		BootswatchSkin:         "darkly",
		HomePageRoute:          "recent",
		ScrollToMyPost:         true,
		CategoryWatchState:     "watching",
		Notifications: map[string]string{
			"notificationType_upvote": "notificationemail",
		},
	}
}

func TestGetSettingsGuest(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(nil)

	for _, userID := range []int64{0, -1} {
		settings, err := env.service.GetSettings(ctx, userID)
		require.NoError(t, err)
		require.Zero(t, settings.UID)
		require.Equal(t, 20, settings.TopicsPerPage)
		require.Equal(t, 20, settings.PostsPerPage)
		require.Equal(t, "en-GB", settings.UserLang)
		require.Equal(t, "en-GB", settings.AcpLang)
		require.Equal(t, store.DigestOff, settings.DailyDigestFreq)
		require.True(t, settings.FollowTopicsOnCreate)
		require.True(t, settings.ScrollToMyPost)
		require.True(t, settings.UpdateURLWithPostIndex)
		require.False(t, settings.ShowEmail)
		require.Equal(t, "watching", settings.CategoryWatchState)
		require.Equal(t, "oldest_to_newest", settings.TopicPostSort)
	}
	// Guests never touch the record store.
	require.Zero(t, env.records.getCalls)
}

func TestGetSettingsConfigCascade(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(map[string]string{
		"defaultLang":        "fr",
		"showemail":          "1",
		"categoryWatchState": "tracking",
	})

	settings, err := env.service.GetSettings(ctx, 7)
	require.NoError(t, err)
	require.Equal(t, "fr", settings.UserLang)
	require.Equal(t, "fr", settings.AcpLang)
	require.True(t, settings.ShowEmail)
	require.Equal(t, "tracking", settings.CategoryWatchState)

	// Stored values beat configuration, including explicit "0".
	env.records.records[7] = map[string]string{
		"userLang":  "de",
		"showemail": "0",
	}
	settings, err = env.service.GetSettings(ctx, 7)
	require.NoError(t, err)
	require.Equal(t, int64(7), settings.UID)
	require.Equal(t, "de", settings.UserLang)
	require.Equal(t, "de", settings.AcpLang)
	require.False(t, settings.ShowEmail)
}

func TestGetSettingsPageSizeClamp(t *testing.T) {
	ctx := context.Background()

	// Stored values above the ceiling clamp to it.
	env := newTestEnv(nil)
	env.records.records[3] = map[string]string{
		"topicsPerPage": "50",
		"postsPerPage":  "999",
	}
	settings, err := env.service.GetSettings(ctx, 3)
	require.NoError(t, err)
	require.Equal(t, 20, settings.TopicsPerPage)
	require.Equal(t, 20, settings.PostsPerPage)

	// A raised ceiling still caps at the configured global default.
	env = newTestEnv(map[string]string{
		"maxPostsPerPage": "30",
		"postsPerPage":    "25",
	})
	env.records.records[3] = map[string]string{"postsPerPage": "28"}
	settings, err = env.service.GetSettings(ctx, 3)
	require.NoError(t, err)
	require.Equal(t, 25, settings.PostsPerPage)

	// Values below every bound pass through.
	env.records.records[3] = map[string]string{"postsPerPage": "10"}
	settings, err = env.service.GetSettings(ctx, 3)
	require.NoError(t, err)
	require.Equal(t, 10, settings.PostsPerPage)
}

func TestGetSettingsSanitization(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(nil)
	env.records.records[4] = map[string]string{
		"bootswatchSkin": `dark"ly<x>`,
		"homePageRoute":  "category/5<script>",
	}

	settings, err := env.service.GetSettings(ctx, 4)
	require.NoError(t, err)
	require.Equal(t, "dark&quot;ly&lt;x&gt;", settings.BootswatchSkin)
	require.Equal(t, "category/5&lt;script&gt;", settings.HomePageRoute)
}

func TestGetSettingsNotificationTypes(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(map[string]string{
		"notificationType_chat": "notificationemail",
	})
	env.records.records[5] = map[string]string{
		"notificationType_upvote": "email",
	}

	settings, err := env.service.GetSettings(ctx, 5)
	require.NoError(t, err)
	require.Len(t, settings.Notifications, 10)
	require.Equal(t, "email", settings.Notifications["notificationType_upvote"])
	require.Equal(t, "notificationemail", settings.Notifications["notificationType_chat"])
	require.Equal(t, "notification", settings.Notifications["notificationType_follow"])
}

func TestGetSettingsFilterHook(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(nil)

	env.hooks.RegisterFilter(HookFilterGetSettings, 0, func(_ context.Context, payload any) (any, error) {
		p := payload.(*GetSettingsPayload)
		p.Settings["userLang"] = "ja"
		return p, nil
	})

	settings, err := env.service.GetSettings(ctx, 9)
	require.NoError(t, err)
	require.Equal(t, "ja", settings.UserLang)
}

func TestGetMultipleSettingsOrder(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(nil)
	env.records.records[1] = map[string]string{"userLang": "de"}
	env.records.records[2] = map[string]string{"userLang": "fr"}

	resolved, err := env.service.GetMultipleSettings(ctx, []int64{2, 1, 42})
	require.NoError(t, err)
	require.Len(t, resolved, 3)
	require.Equal(t, int64(2), resolved[0].UID)
	require.Equal(t, "fr", resolved[0].UserLang)
	require.Equal(t, int64(1), resolved[1].UID)
	require.Equal(t, "de", resolved[1].UserLang)
	// Unknown users resolve to pure defaults.
	require.Equal(t, int64(42), resolved[2].UID)
	require.Equal(t, "en-GB", resolved[2].UserLang)

	empty, err := env.service.GetMultipleSettings(ctx, nil)
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestSaveSettingsRoundTrip(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(nil)

	settings, err := env.service.SaveSettings(ctx, 11, validSaveRequest())
	require.NoError(t, err)
	require.Equal(t, int64(11), settings.UID)
	require.True(t, settings.ShowEmail)
	require.Equal(t, store.DigestWeek, settings.DailyDigestFreq)
	require.Equal(t, 15, settings.TopicsPerPage)
	require.Equal(t, 10, settings.PostsPerPage)
	require.Equal(t, "de", settings.UserLang)
	require.Equal(t, "newest_to_oldest", settings.TopicPostSort)
	require.Equal(t, "darkly", settings.BootswatchSkin)
	require.Equal(t, "recent", settings.HomePageRoute)
	require.Equal(t, "notificationemail", settings.Notifications["notificationType_upvote"])
	require.Equal(t, "notification", settings.Notifications["notificationType_chat"])

	// Booleans persist as "0"/"1", so an explicit false survives a reload.
	raw := env.records.records[11]
	require.Equal(t, "0", raw["showfullname"])
	require.Equal(t, "1", raw["showemail"])

	freq, ok, err := env.digest.Frequency(ctx, 11)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, store.DigestWeek, freq)
}

func TestSaveSettingsInvalidPagination(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(map[string]string{"maxPostsPerPage": "25"})

	tests := []struct {
		name   string
		mutate func(*SaveRequest)
		field  string
	}{
		{"posts missing", func(r *SaveRequest) { r.PostsPerPage = nil }, "postsPerPage"},
		{"posts too small", func(r *SaveRequest) { r.PostsPerPage = intPtr(1) }, "postsPerPage"},
		{"posts above ceiling", func(r *SaveRequest) { r.PostsPerPage = intPtr(26) }, "postsPerPage"},
		{"topics missing", func(r *SaveRequest) { r.TopicsPerPage = nil }, "topicsPerPage"},
		{"topics zero", func(r *SaveRequest) { r.TopicsPerPage = intPtr(0) }, "topicsPerPage"},
		{"topics above ceiling", func(r *SaveRequest) { r.TopicsPerPage = intPtr(21) }, "topicsPerPage"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := validSaveRequest()
			tt.mutate(request)
			_, err := env.service.SaveSettings(ctx, 12, request)
			require.Error(t, err)
			require.Equal(t, settingserrors.ErrCodeInvalidPagination, settingserrors.CodeOf(err))
		})
	}
	// Nothing was persisted.
	require.Zero(t, env.records.replaceCalls)
	_, ok, err := env.digest.Frequency(ctx, 12)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSaveSettingsInvalidLanguage(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(nil)

	request := validSaveRequest()
	request.UserLang = "xx-YY"
	_, err := env.service.SaveSettings(ctx, 13, request)
	require.Error(t, err)
	require.Equal(t, settingserrors.ErrCodeInvalidLanguage, settingserrors.CodeOf(err))

	request = validSaveRequest()
	request.AcpLang = "nope"
	_, err = env.service.SaveSettings(ctx, 13, request)
	require.Error(t, err)
	require.Equal(t, settingserrors.ErrCodeInvalidLanguage, settingserrors.CodeOf(err))

	require.Zero(t, env.records.replaceCalls)
}

func TestSaveSettingsLanguageFallback(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(map[string]string{"defaultLang": "sv"})

	request := validSaveRequest()
	request.UserLang = ""
	settings, err := env.service.SaveSettings(ctx, 14, request)
	require.NoError(t, err)
	require.Equal(t, "sv", settings.UserLang)
	require.Equal(t, "sv", env.records.records[14]["userLang"])
}

func TestSaveSettingsHomePageRoute(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(nil)

	request := validSaveRequest()
	request.HomePageRoute = "custom"
	request.HomePageCustom = "/my/landing"
	settings, err := env.service.SaveSettings(ctx, 15, request)
	require.NoError(t, err)
	require.Equal(t, "my/landing", settings.HomePageRoute)
	require.Equal(t, "my/landing", env.records.records[15]["homePageRoute"])
}

func TestSaveSettingsNotificationWhitelist(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(nil)

	request := validSaveRequest()
	request.Notifications = map[string]string{
		"notificationType_upvote": "email",
		"notificationType_chat":   "0",
		"made-up-type":            "email",
	}
	_, err := env.service.SaveSettings(ctx, 16, request)
	require.NoError(t, err)

	raw := env.records.records[16]
	require.Equal(t, "email", raw["notificationType_upvote"])
	require.NotContains(t, raw, "notificationType_chat")
	require.NotContains(t, raw, "made-up-type")
}

func TestSaveSettingsActionHookAborts(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(nil)

	env.hooks.RegisterAction(HookActionSaveSettings, 0, func(_ context.Context, _ any) error {
		return errors.New("plugin veto")
	})

	_, err := env.service.SaveSettings(ctx, 17, validSaveRequest())
	require.Error(t, err)
	require.Zero(t, env.records.replaceCalls)
}

func TestSaveSettingsFilterHookRewrites(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(nil)

	env.hooks.RegisterFilter(HookFilterSaveSettings, 0, func(_ context.Context, payload any) (any, error) {
		p := payload.(*SaveSettingsPayload)
		p.Settings["bootswatchSkin"] = "flatly"
		return p, nil
	})

	settings, err := env.service.SaveSettings(ctx, 18, validSaveRequest())
	require.NoError(t, err)
	require.Equal(t, "flatly", settings.BootswatchSkin)
}

func TestSaveSettingsDigestTransitions(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(nil)

	request := validSaveRequest()
	request.DailyDigestFreq = "day"
	_, err := env.service.SaveSettings(ctx, 19, request)
	require.NoError(t, err)

	members, err := env.digest.ListMembers(ctx, store.DigestDay)
	require.NoError(t, err)
	require.Equal(t, []int64{19}, members)

	request = validSaveRequest()
	request.DailyDigestFreq = "off"
	_, err = env.service.SaveSettings(ctx, 19, request)
	require.NoError(t, err)

	for _, freq := range store.DigestFrequencies {
		members, err := env.digest.ListMembers(ctx, freq)
		require.NoError(t, err)
		require.Empty(t, members)
	}
}

func TestUpdateDigestSetting(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(nil)

	require.NoError(t, env.service.UpdateDigestSetting(ctx, 20, store.DigestMonth))
	freq, ok, err := env.digest.Frequency(ctx, 20)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, store.DigestMonth, freq)

	// Unrecognized cadence clears membership.
	require.NoError(t, env.service.UpdateDigestSetting(ctx, 20, "hourly"))
	_, ok, err = env.digest.Frequency(ctx, 20)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSetSetting(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(nil)

	require.NoError(t, env.service.SetSetting(ctx, 0, "userLang", "de"))
	require.Empty(t, env.records.records)

	require.NoError(t, env.service.SetSetting(ctx, 21, "userLang", "de"))
	require.Equal(t, "de", env.records.records[21]["userLang"])

	// Other fields are untouched.
	require.NoError(t, env.service.SetSetting(ctx, 21, "showemail", "1"))
	require.Equal(t, "de", env.records.records[21]["userLang"])
	require.Equal(t, "1", env.records.records[21]["showemail"])
}

func TestSaveSettingsPersistFailure(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(nil)
	env.records.replaceErr = errors.New("disk full")

	_, err := env.service.SaveSettings(ctx, 22, validSaveRequest())
	require.Error(t, err)

	// The digest index was not updated for a failed save.
	_, ok, derr := env.digest.Frequency(ctx, 22)
	require.NoError(t, derr)
	require.False(t, ok)
}
