// Package usersetting resolves, validates, and persists per-user
// preference records.
//
// Load path: raw record -> filter hook -> default cascade -> bounds
// clamping -> sanitization -> per-notification-type resolution.
// Save path: validation -> action hook -> whitelist -> filter hook ->
// wholesale persist -> digest reindex -> fresh read.
//
// The default cascade rule: use the stored value if present and not
// "absent-like"; else the same-named instance setting; else a hardcoded
// default. "0" is an explicit value, the empty string is not.
package usersetting

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	settingserrors "github.com/forumkit/forumkit/server/internal/errors"
	"github.com/forumkit/forumkit/internal/observability"
	"github.com/forumkit/forumkit/store"
)

type service struct {
	records       RecordStore
	config        ConfigProvider
	notifications NotificationCatalog
	languages     LanguageCatalog
	digest        store.DigestIndex
	hooks         HookDispatcher
	logger        *slog.Logger
	metrics       *observability.Metrics

	now func() time.Time
}

// Dependencies bundles the collaborators a settings service needs.
type Dependencies struct {
	Records       RecordStore
	Config        ConfigProvider
	Notifications NotificationCatalog
	Languages     LanguageCatalog
	Digest        store.DigestIndex
	Hooks         HookDispatcher
	Logger        *slog.Logger
}

// NewService creates a settings service.
func NewService(deps Dependencies) Service {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &service{
		records:       deps.Records,
		config:        deps.Config,
		notifications: deps.Notifications,
		languages:     deps.Languages,
		digest:        deps.Digest,
		hooks:         deps.Hooks,
		logger:        logger,
		metrics:       observability.GlobalMetrics(),
		now:           time.Now,
	}
}

func (s *service) GetSettings(ctx context.Context, userID int64) (*Settings, error) {
	s.metrics.RecordRequest(opGetSettings)
	start := time.Now()
	defer func() { s.metrics.RecordDuration(opGetSettings, time.Since(start)) }()

	// Guests and anonymous contexts resolve an empty record through the
	// same pipeline, with no store access.
	if userID <= 0 {
		return s.applyDefaults(ctx, 0, map[string]string{})
	}

	raw, err := s.records.GetUserSettings(ctx, userID)
	if err != nil {
		s.metrics.RecordFailure(opGetSettings)
		return nil, errors.Wrapf(err, "load settings for user %d", userID)
	}
	raw[fieldUID] = strconv.FormatInt(userID, 10)
	return s.applyDefaults(ctx, userID, raw)
}

func (s *service) GetMultipleSettings(ctx context.Context, userIDs []int64) ([]*Settings, error) {
	s.metrics.RecordRequest(opGetMultipleSettings)

	if len(userIDs) == 0 {
		return []*Settings{}, nil
	}

	records, err := s.records.GetManyUserSettings(ctx, userIDs)
	if err != nil {
		s.metrics.RecordFailure(opGetMultipleSettings)
		return nil, errors.Wrap(err, "batch load settings")
	}

	// Resolve each record independently; the output slot fixes the order
	// regardless of completion order.
	resolved := make([]*Settings, len(userIDs))
	g, gctx := errgroup.WithContext(ctx)
	for i, userID := range userIDs {
		i, userID := i, userID
		g.Go(func() error {
			// Copy before stamping: duplicate ids in the input may share
			// one underlying record map.
			raw := make(map[string]string, len(records[i])+1)
			for key, value := range records[i] {
				raw[key] = value
			}
			raw[fieldUID] = strconv.FormatInt(userID, 10)
			settings, err := s.applyDefaults(gctx, userID, raw)
			if err != nil {
				return err
			}
			resolved[i] = settings
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.metrics.RecordFailure(opGetMultipleSettings)
		return nil, err
	}
	return resolved, nil
}

// applyDefaults resolves a raw record into typed settings: filter hook,
// default cascade, clamping, sanitization, then the dynamic
// per-notification-type fields.
func (s *service) applyDefaults(ctx context.Context, userID int64, raw map[string]string) (*Settings, error) {
	fired, err := s.hooks.FireFilter(ctx, HookFilterGetSettings, &GetSettingsPayload{UserID: userID, Settings: raw})
	if err != nil {
		return nil, err
	}
	if payload, ok := fired.(*GetSettingsPayload); ok && payload.Settings != nil {
		raw = payload.Settings
	}

	var cfgErr error
	cfg := func(name string) string {
		if cfgErr != nil {
			return ""
		}
		value, err := s.config.GetInstanceSettingValue(ctx, name)
		if err != nil {
			cfgErr = err
		}
		return value
	}

	settings := &Settings{UID: userID}
	settings.ShowEmail = pickBool(raw, fieldShowEmail, cfg(fieldShowEmail), false)
	settings.ShowFullname = pickBool(raw, fieldShowFullname, cfg(fieldShowFullname), false)
	settings.OpenOutgoingLinksInNewTab = pickBool(raw, fieldOpenOutgoingLinksInNewTab, cfg(fieldOpenOutgoingLinksInNewTab), false)
	settings.DailyDigestFreq = store.DigestFrequency(pickString(raw, fieldDailyDigestFreq, cfg(fieldDailyDigestFreq), defaultDigestFreq))
	settings.UsePagination = pickBool(raw, fieldUsePagination, cfg(fieldUsePagination), false)

	// Page sizes fill in a default and clamp against the admin ceiling,
	// even when a stale stored value exceeds it.
	topicsDefault := pickInt(nil, fieldTopicsPerPage, cfg(fieldTopicsPerPage), defaultPerPage)
	postsDefault := pickInt(nil, fieldPostsPerPage, cfg(fieldPostsPerPage), defaultPerPage)
	maxTopics := pickInt(nil, SettingMaxTopicsPerPage, cfg(SettingMaxTopicsPerPage), defaultMaxPerPage)
	maxPosts := pickInt(nil, SettingMaxPostsPerPage, cfg(SettingMaxPostsPerPage), defaultMaxPerPage)
	settings.TopicsPerPage = min3(maxTopics, pickInt(raw, fieldTopicsPerPage, cfg(fieldTopicsPerPage), defaultPerPage), topicsDefault)
	settings.PostsPerPage = min3(maxPosts, pickInt(raw, fieldPostsPerPage, cfg(fieldPostsPerPage), defaultPerPage), postsDefault)

	settings.UserLang = pickString(raw, fieldUserLang, cfg(SettingDefaultLang), defaultUserLang)
	settings.AcpLang = pickString(raw, fieldAcpLang, cfg(fieldAcpLang), settings.UserLang)
	settings.TopicPostSort = pickString(raw, fieldTopicPostSort, cfg(fieldTopicPostSort), defaultTopicPostSort)
	settings.CategoryTopicSort = pickString(raw, fieldCategoryTopicSort, cfg(fieldCategoryTopicSort), defaultCategoryTopicSort)
	settings.FollowTopicsOnCreate = pickBool(raw, fieldFollowTopicsOnCreate, cfg(fieldFollowTopicsOnCreate), true)
	settings.FollowTopicsOnReply = pickBool(raw, fieldFollowTopicsOnReply, cfg(fieldFollowTopicsOnReply), false)
	settings.UpvoteNotifFreq = pickString(raw, fieldUpvoteNotifFreq, cfg(fieldUpvoteNotifFreq), defaultUpvoteNotifFreq)
	settings.RestrictChat = pickBool(raw, fieldRestrictChat, cfg(fieldRestrictChat), false)
	settings.TopicSearchEnabled = pickBool(raw, fieldTopicSearchEnabled, cfg(fieldTopicSearchEnabled), false)
	settings.UpdateURLWithPostIndex = pickBool(raw, fieldUpdateURLWithPostIndex, cfg(fieldUpdateURLWithPostIndex), true)
	settings.BootswatchSkin = escapeHTML(pickString(raw, fieldBootswatchSkin, cfg(fieldBootswatchSkin), ""))
	settings.HomePageRoute = escapeRoute(pickString(raw, fieldHomePageRoute, cfg(fieldHomePageRoute), ""))
	settings.ScrollToMyPost = pickBool(raw, fieldScrollToMyPost, cfg(fieldScrollToMyPost), true)
	settings.CategoryWatchState = pickString(raw, fieldCategoryWatchState, cfg(fieldCategoryWatchState), defaultCategoryWatch)

	// The catalog is volatile; re-fetch it on every resolution.
	types, err := s.notifications.ListTypes(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list notification types")
	}
	settings.Notifications = make(map[string]string, len(types))
	for _, notificationType := range types {
		settings.Notifications[notificationType] = pickString(raw, notificationType, cfg(notificationType), defaultNotification)
	}

	if cfgErr != nil {
		return nil, errors.Wrap(cfgErr, "read instance configuration")
	}
	return settings, nil
}

func (s *service) SaveSettings(ctx context.Context, userID int64, request *SaveRequest) (*Settings, error) {
	s.metrics.RecordRequest(opSaveSettings)
	rc := observability.NewRequestContext(s.logger, opSaveSettings, userID)
	defer func() { s.metrics.RecordDuration(opSaveSettings, time.Since(rc.StartTime)) }()

	settings, err := s.saveSettings(ctx, userID, request)
	if err != nil {
		s.metrics.RecordFailure(opSaveSettings)
		rc.WithFields(
			slog.String(observability.LogFieldErrorCode, string(settingserrors.CodeOf(err))),
		).Warn("save settings failed", slog.Any("error", err))
		return nil, err
	}
	rc.WithFields(
		slog.Int64(observability.LogFieldDuration, rc.DurationMS()),
	).Info("settings saved", slog.String("digest_freq", request.DailyDigestFreq))
	return settings, nil
}

func (s *service) saveSettings(ctx context.Context, userID int64, request *SaveRequest) (*Settings, error) {
	maxPosts, err := s.configInt(ctx, SettingMaxPostsPerPage, defaultMaxPerPage)
	if err != nil {
		return nil, err
	}
	if request.PostsPerPage == nil || *request.PostsPerPage <= 1 || *request.PostsPerPage > maxPosts {
		return nil, settingserrors.NewInvalidPagination(fieldPostsPerPage, maxPosts)
	}

	maxTopics, err := s.configInt(ctx, SettingMaxTopicsPerPage, defaultMaxPerPage)
	if err != nil {
		return nil, err
	}
	if request.TopicsPerPage == nil || *request.TopicsPerPage <= 1 || *request.TopicsPerPage > maxTopics {
		return nil, settingserrors.NewInvalidPagination(fieldTopicsPerPage, maxTopics)
	}

	codes, err := s.languages.ListCodes(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list language codes")
	}
	if request.UserLang != "" && !containsString(codes, request.UserLang) {
		return nil, settingserrors.NewInvalidLanguage(request.UserLang)
	}
	if request.AcpLang != "" && !containsString(codes, request.AcpLang) {
		return nil, settingserrors.NewInvalidLanguage(request.AcpLang)
	}

	userLang := request.UserLang
	if userLang == "" {
		userLang, err = s.config.GetInstanceSettingValue(ctx, SettingDefaultLang)
		if err != nil {
			return nil, errors.Wrap(err, "read instance configuration")
		}
	}

	// Awaited, result unused: a failing hook aborts the save.
	if err := s.hooks.FireAction(ctx, HookActionSaveSettings, &SaveActionPayload{UserID: userID, Request: request}); err != nil {
		return nil, err
	}

	whitelist, err := s.buildWhitelist(ctx, request, userLang, maxTopics, maxPosts)
	if err != nil {
		return nil, err
	}

	fired, err := s.hooks.FireFilter(ctx, HookFilterSaveSettings, &SaveSettingsPayload{UserID: userID, Settings: whitelist})
	if err != nil {
		return nil, err
	}
	if payload, ok := fired.(*SaveSettingsPayload); ok && payload.Settings != nil {
		whitelist = payload.Settings
	}

	if err := s.records.ReplaceUserSettings(ctx, userID, whitelist); err != nil {
		return nil, errors.Wrapf(err, "persist settings for user %d", userID)
	}

	if err := s.UpdateDigestSetting(ctx, userID, store.DigestFrequency(request.DailyDigestFreq)); err != nil {
		return nil, err
	}

	// Return a freshly resolved read so load-time defaulting and
	// sanitization are reflected in the response.
	return s.GetSettings(ctx, userID)
}

// buildWhitelist copies only the recognized fields out of the request.
// Unknown keys never reach the store.
func (s *service) buildWhitelist(ctx context.Context, request *SaveRequest, userLang string, maxTopics, maxPosts int) (map[string]string, error) {
	homePageRoute := request.HomePageRoute
	if homePageRoute == homePageRouteCustom {
		homePageRoute = request.HomePageCustom
	}
	homePageRoute = strings.TrimPrefix(homePageRoute, "/")

	fields := map[string]string{
		fieldShowEmail:                 formatBool(request.ShowEmail),
		fieldShowFullname:              formatBool(request.ShowFullname),
		fieldOpenOutgoingLinksInNewTab: formatBool(request.OpenOutgoingLinksInNewTab),
		fieldDailyDigestFreq:           request.DailyDigestFreq,
		fieldUsePagination:             formatBool(request.UsePagination),
		fieldTopicsPerPage:             strconv.Itoa(minInt(*request.TopicsPerPage, maxTopics)),
		fieldPostsPerPage:              strconv.Itoa(minInt(*request.PostsPerPage, maxPosts)),
		fieldUserLang:                  userLang,
		fieldAcpLang:                   request.AcpLang,
		fieldTopicPostSort:             request.TopicPostSort,
		fieldCategoryTopicSort:         request.CategoryTopicSort,
		fieldFollowTopicsOnCreate:      formatBool(request.FollowTopicsOnCreate),
		fieldFollowTopicsOnReply:       formatBool(request.FollowTopicsOnReply),
		fieldUpvoteNotifFreq:           request.UpvoteNotifFreq,
		fieldRestrictChat:              formatBool(request.RestrictChat),
		fieldTopicSearchEnabled:        formatBool(request.TopicSearchEnabled),
		fieldUpdateURLWithPostIndex:    formatBool(request.UpdateURLWithPostIndex),
		fieldBootswatchSkin:            request.BootswatchSkin,
		fieldHomePageRoute:             homePageRoute,
		fieldScrollToMyPost:            formatBool(request.ScrollToMyPost),
		fieldCategoryWatchState:        request.CategoryWatchState,
	}

	// Catalog fields are opt-in by presence, unlike the fixed fields.
	types, err := s.notifications.ListTypes(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list notification types")
	}
	for _, notificationType := range types {
		if value, ok := request.Notifications[notificationType]; ok && truthy(value) {
			fields[notificationType] = value
		}
	}
	return fields, nil
}

func (s *service) UpdateDigestSetting(ctx context.Context, userID int64, freq store.DigestFrequency) error {
	s.metrics.RecordRequest(opUpdateDigest)
	if err := s.digest.Update(ctx, userID, freq, s.now()); err != nil {
		s.metrics.RecordFailure(opUpdateDigest)
		return errors.Wrapf(err, "update digest membership for user %d", userID)
	}
	return nil
}

func (s *service) SetSetting(ctx context.Context, userID int64, key, value string) error {
	s.metrics.RecordRequest(opSetSetting)
	if userID <= 0 {
		return nil
	}
	if err := s.records.UpsertUserSettingField(ctx, userID, key, value); err != nil {
		s.metrics.RecordFailure(opSetSetting)
		return errors.Wrapf(err, "set %q for user %d", key, userID)
	}
	return nil
}

func (s *service) configInt(ctx context.Context, name string, fallback int) (int, error) {
	value, err := s.config.GetInstanceSettingValue(ctx, name)
	if err != nil {
		return 0, errors.Wrap(err, "read instance configuration")
	}
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback, nil
	}
	return parsed, nil
}

func containsString(list []string, target string) bool {
	for _, item := range list {
		if item == target {
			return true
		}
	}
	return false
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
