package usersetting

// Hook extension point names.
const (
	// HookFilterGetSettings may replace the raw record before defaulting.
	HookFilterGetSettings = "filter:user.getSettings"
	// HookActionSaveSettings fires after validation, before the whitelist is built.
	HookActionSaveSettings = "action:user.saveSettings"
	// HookFilterSaveSettings may rewrite the whitelist before persistence.
	HookFilterSaveSettings = "filter:user.saveSettings"
)

// Instance setting names consulted by the resolver. Per-field global
// defaults share the name of the preference field itself.
const (
	SettingMaxTopicsPerPage = "maxTopicsPerPage"
	SettingMaxPostsPerPage  = "maxPostsPerPage"
	SettingDefaultLang      = "defaultLang"
)

// Hardcoded defaults, used when neither the stored record nor the
// instance configuration provides a value.
const (
	defaultPerPage           = 20
	defaultMaxPerPage        = 20
	defaultUserLang          = "en-GB"
	defaultDigestFreq        = "off"
	defaultTopicPostSort     = "oldest_to_newest"
	defaultCategoryTopicSort = "recently_replied"
	defaultUpvoteNotifFreq   = "all"
	defaultCategoryWatch     = "watching"
	defaultNotification      = "notification"
)

// homePageRouteCustom is the sentinel meaning "use the homePageCustom field".
const homePageRouteCustom = "custom"

// Raw record field keys. The reserved "uid" field is stamped on load.
const (
	fieldUID                       = "uid"
	fieldShowEmail                 = "showemail"
	fieldShowFullname              = "showfullname"
	fieldOpenOutgoingLinksInNewTab = "openOutgoingLinksInNewTab"
	fieldDailyDigestFreq           = "dailyDigestFreq"
	fieldUsePagination             = "usePagination"
	fieldTopicsPerPage             = "topicsPerPage"
	fieldPostsPerPage              = "postsPerPage"
	fieldUserLang                  = "userLang"
	fieldAcpLang                   = "acpLang"
	fieldTopicPostSort             = "topicPostSort"
	fieldCategoryTopicSort         = "categoryTopicSort"
	fieldFollowTopicsOnCreate      = "followTopicsOnCreate"
	fieldFollowTopicsOnReply       = "followTopicsOnReply"
	fieldUpvoteNotifFreq           = "upvoteNotifFreq"
	fieldRestrictChat              = "restrictChat"
	fieldTopicSearchEnabled        = "topicSearchEnabled"
	fieldUpdateURLWithPostIndex    = "updateUrlWithPostIndex"
	fieldBootswatchSkin            = "bootswatchSkin"
	fieldHomePageRoute             = "homePageRoute"
	fieldHomePageCustom            = "homePageCustom"
	fieldScrollToMyPost            = "scrollToMyPost"
	fieldCategoryWatchState        = "categoryWatchState"
)

// Operation names used for logging and metrics.
const (
	opGetSettings         = "get_settings"
	opGetMultipleSettings = "get_multiple_settings"
	opSaveSettings        = "save_settings"
	opSetSetting          = "set_setting"
	opUpdateDigest        = "update_digest_setting"
)
