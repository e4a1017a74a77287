package usersetting

import (
	"context"

	"github.com/forumkit/forumkit/store"
)

// Service defines the core business logic interface for user settings.
// The resolver is transport-agnostic: callers are the HTTP layer, the
// digest mailer, and plugins.
type Service interface {
	// GetSettings returns the fully resolved settings for a user.
	// userID <= 0 resolves an empty record through the same defaulting
	// pipeline without touching the record store (anonymous/guest).
	GetSettings(ctx context.Context, userID int64) (*Settings, error)

	// GetMultipleSettings resolves settings for several users at once.
	// The result order matches the input order; resolution runs
	// concurrently per user.
	GetMultipleSettings(ctx context.Context, userIDs []int64) ([]*Settings, error)

	// SaveSettings validates the request, persists the whitelisted
	// fields as the complete replacement record, re-derives the digest
	// membership, and returns a freshly resolved read.
	SaveSettings(ctx context.Context, userID int64, request *SaveRequest) (*Settings, error)

	// UpdateDigestSetting moves the user to the membership set for freq,
	// or out of all sets for off/unrecognized values.
	UpdateDigestSetting(ctx context.Context, userID int64, freq store.DigestFrequency) error

	// SetSetting writes exactly one raw field, bypassing the whitelist
	// and defaulting pipeline. No-op for userID <= 0. Callers are
	// trusted to supply a recognized key.
	SetSetting(ctx context.Context, userID int64, key, value string) error
}

// Settings is a user's fully resolved preference record.
type Settings struct {
	UID                       int64                 `json:"uid"`
	ShowEmail                 bool                  `json:"showemail"`
	ShowFullname              bool                  `json:"showfullname"`
	OpenOutgoingLinksInNewTab bool                  `json:"openOutgoingLinksInNewTab"`
	DailyDigestFreq           store.DigestFrequency `json:"dailyDigestFreq"`
	UsePagination             bool                  `json:"usePagination"`
	TopicsPerPage             int                   `json:"topicsPerPage"`
	PostsPerPage              int                   `json:"postsPerPage"`
	UserLang                  string                `json:"userLang"`
	AcpLang                   string                `json:"acpLang"`
	TopicPostSort             string                `json:"topicPostSort"`
	CategoryTopicSort         string                `json:"categoryTopicSort"`
	FollowTopicsOnCreate      bool                  `json:"followTopicsOnCreate"`
	FollowTopicsOnReply       bool                  `json:"followTopicsOnReply"`
	UpvoteNotifFreq           string                `json:"upvoteNotifFreq"`
	RestrictChat              bool                  `json:"restrictChat"`
	TopicSearchEnabled        bool                  `json:"topicSearchEnabled"`
	UpdateURLWithPostIndex    bool                  `json:"updateUrlWithPostIndex"`
	BootswatchSkin            string                `json:"bootswatchSkin"`
	HomePageRoute             string                `json:"homePageRoute"`
	ScrollToMyPost            bool                  `json:"scrollToMyPost"`
	CategoryWatchState        string                `json:"categoryWatchState"`

	// Notifications maps each catalog notification type to its resolved
	// delivery setting. The key set follows the live catalog, which is
	// why it is not part of the fixed fields above.
	Notifications map[string]string `json:"notifications"`
}

// SaveRequest carries a user-submitted settings update. Page sizes are
// pointers because their absence is a validation error, not a default.
type SaveRequest struct {
	ShowEmail                 bool   `json:"showemail"`
	ShowFullname              bool   `json:"showfullname"`
	OpenOutgoingLinksInNewTab bool   `json:"openOutgoingLinksInNewTab"`
	DailyDigestFreq           string `json:"dailyDigestFreq"`
	UsePagination             bool   `json:"usePagination"`
	TopicsPerPage             *int   `json:"topicsPerPage"`
	PostsPerPage              *int   `json:"postsPerPage"`
	UserLang                  string `json:"userLang"`
	AcpLang                   string `json:"acpLang"`
	TopicPostSort             string `json:"topicPostSort"`
	CategoryTopicSort         string `json:"categoryTopicSort"`
	FollowTopicsOnCreate      bool   `json:"followTopicsOnCreate"`
	FollowTopicsOnReply       bool   `json:"followTopicsOnReply"`
	UpvoteNotifFreq           string `json:"upvoteNotifFreq"`
	RestrictChat              bool   `json:"restrictChat"`
	TopicSearchEnabled        bool   `json:"topicSearchEnabled"`
	UpdateURLWithPostIndex    bool   `json:"updateUrlWithPostIndex"`
	BootswatchSkin            string `json:"bootswatchSkin"`
	HomePageRoute             string `json:"homePageRoute"`
	HomePageCustom            string `json:"homePageCustom"`
	ScrollToMyPost            bool   `json:"scrollToMyPost"`
	CategoryWatchState        string `json:"categoryWatchState"`

	// Notifications holds the submitted per-notification-type settings.
	// Unlike the fixed fields, these are opt-in by presence: only types
	// present here (and truthy) are persisted.
	Notifications map[string]string `json:"notifications"`
}

// RecordStore is the key-value record store collaborator. *store.Store
// satisfies it.
type RecordStore interface {
	GetUserSettings(ctx context.Context, userID int64) (map[string]string, error)
	GetManyUserSettings(ctx context.Context, userIDs []int64) ([]map[string]string, error)
	ReplaceUserSettings(ctx context.Context, userID int64, fields map[string]string) error
	UpsertUserSettingField(ctx context.Context, userID int64, key, value string) error
}

// ConfigProvider exposes global configuration values. *store.Store
// satisfies it; unset names yield "".
type ConfigProvider interface {
	GetInstanceSettingValue(ctx context.Context, name string) (string, error)
}

// NotificationCatalog lists the notification type identifiers currently
// known to the instance. Re-consulted on every load/save.
type NotificationCatalog interface {
	ListTypes(ctx context.Context) ([]string, error)
}

// LanguageCatalog lists the supported language codes.
type LanguageCatalog interface {
	ListCodes(ctx context.Context) ([]string, error)
}

// HookDispatcher fires the named extension points. *hook.Registry
// satisfies it.
type HookDispatcher interface {
	FireFilter(ctx context.Context, name string, payload any) (any, error)
	FireAction(ctx context.Context, name string, payload any) error
}

// GetSettingsPayload is the payload of HookFilterGetSettings. A filter
// may mutate Settings or return a replacement payload.
type GetSettingsPayload struct {
	UserID   int64
	Settings map[string]string
}

// SaveSettingsPayload is the payload of HookFilterSaveSettings: the
// whitelisted field map about to be persisted.
type SaveSettingsPayload struct {
	UserID   int64
	Settings map[string]string
}

// SaveActionPayload is the payload of HookActionSaveSettings, fired
// after validation and before the whitelist is built.
type SaveActionPayload struct {
	UserID  int64
	Request *SaveRequest
}
