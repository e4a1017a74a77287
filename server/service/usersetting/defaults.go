package usersetting

import (
	"strconv"
	"strings"
)

// The default cascade treats a value as absent when it is missing, the
// empty string, or the literal "false"; "0" is an explicit value that
// must be preserved. Raw records store everything as strings and encode
// boolean false as "0", so "false" only appears in hand-written or
// imported data and counts as unset.

// isAbsent reports whether a raw value counts as "not set" for the cascade.
func isAbsent(value string, ok bool) bool {
	return !ok || value == "" || value == "false"
}

// pickString resolves a field as: stored value if set, else the global
// configuration value if set, else fallback.
func pickString(raw map[string]string, key, configValue, fallback string) string {
	if value, ok := raw[key]; !isAbsent(value, ok) {
		return value
	}
	if !isAbsent(configValue, true) {
		return configValue
	}
	return fallback
}

// pickBool resolves a boolean field through the same cascade.
func pickBool(raw map[string]string, key, configValue string, fallback bool) bool {
	return parseBool(pickString(raw, key, configValue, formatBool(fallback)))
}

// pickInt resolves a numeric field through the same cascade. A stored or
// configured value that does not parse falls through to fallback.
func pickInt(raw map[string]string, key, configValue string, fallback int) int {
	value := pickString(raw, key, configValue, strconv.Itoa(fallback))
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func parseBool(value string) bool {
	switch value {
	case "1", "true":
		return true
	}
	return false
}

func formatBool(value bool) string {
	if value {
		return "1"
	}
	return "0"
}

// truthy reports whether a submitted raw value should be treated as set,
// for the opt-in notification-type fields.
func truthy(value string) bool {
	return value != "" && value != "0" && value != "false"
}

// htmlEscaper escapes text for safe embedding in markup. The slash is
// escaped too so skin and route values cannot close attributes early.
var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#x27;",
	"/", "&#x2F;",
)

func escapeHTML(value string) string {
	return htmlEscaper.Replace(value)
}

// escapeRoute escapes a route like escapeHTML but keeps literal slashes:
// the route must display "/" without being usable as raw markup.
func escapeRoute(value string) string {
	return strings.ReplaceAll(escapeHTML(value), "&#x2F;", "/")
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
