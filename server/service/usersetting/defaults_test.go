package usersetting

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPickString(t *testing.T) {
	tests := []struct {
		name        string
		raw         map[string]string
		configValue string
		fallback    string
		expected    string
	}{
		{
			name:     "stored value wins",
			raw:      map[string]string{"userLang": "de"},
			fallback: "en-GB",
			expected: "de",
		},
		{
			name:        "empty stored value falls through to config",
			raw:         map[string]string{"userLang": ""},
			configValue: "fr",
			fallback:    "en-GB",
			expected:    "fr",
		},
		{
			name:     "missing key falls through to fallback",
			raw:      map[string]string{},
			fallback: "en-GB",
			expected: "en-GB",
		},
		{
			name:        "config beats fallback",
			raw:         nil,
			configValue: "es",
			fallback:    "en-GB",
			expected:    "es",
		},
		{
			name:     "zero string is an explicit value",
			raw:      map[string]string{"userLang": "0"},
			fallback: "en-GB",
			expected: "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := pickString(tt.raw, "userLang", tt.configValue, tt.fallback)
			require.Equal(t, tt.expected, got)
		})
	}
}

func TestPickBool(t *testing.T) {
	require.True(t, pickBool(map[string]string{"showemail": "1"}, "showemail", "", false))
	require.True(t, pickBool(map[string]string{"showemail": "true"}, "showemail", "", false))
	// "0" is explicit false, even when the fallback is true.
	require.False(t, pickBool(map[string]string{"showemail": "0"}, "showemail", "", true))
	// The absent-like values all fall through: missing, "", "false".
	require.True(t, pickBool(map[string]string{}, "showemail", "1", false))
	require.True(t, pickBool(map[string]string{}, "showemail", "", true))
	require.False(t, pickBool(map[string]string{"showemail": ""}, "showemail", "", false))
	require.True(t, pickBool(map[string]string{"showemail": "false"}, "showemail", "", true))
}

func TestPickInt(t *testing.T) {
	require.Equal(t, 15, pickInt(map[string]string{"topicsPerPage": "15"}, "topicsPerPage", "", 20))
	require.Equal(t, 0, pickInt(map[string]string{"topicsPerPage": "0"}, "topicsPerPage", "", 20))
	require.Equal(t, 10, pickInt(map[string]string{}, "topicsPerPage", "10", 20))
	require.Equal(t, 20, pickInt(map[string]string{}, "topicsPerPage", "", 20))
	// Garbage falls back.
	require.Equal(t, 20, pickInt(map[string]string{"topicsPerPage": "lots"}, "topicsPerPage", "", 20))
}

func TestTruthy(t *testing.T) {
	require.True(t, truthy("notification"))
	require.True(t, truthy("1"))
	require.False(t, truthy(""))
	require.False(t, truthy("0"))
	require.False(t, truthy("false"))
}

func TestEscapeHTML(t *testing.T) {
	require.Equal(t, "darkly", escapeHTML("darkly"))
	require.Equal(t, "&lt;script&gt;", escapeHTML("<script>"))
	require.Equal(t, "a&#x2F;b", escapeHTML("a/b"))
	require.Equal(t, "&quot;x&quot; &amp; &#x27;y&#x27;", escapeHTML(`"x" & 'y'`))
}

func TestEscapeRoute(t *testing.T) {
	// Slashes survive, markup does not.
	require.Equal(t, "category/5", escapeRoute("category/5"))
	require.Equal(t, "a&lt;b&gt;/c", escapeRoute("a<b>/c"))
}

func TestMin3(t *testing.T) {
	require.Equal(t, 1, min3(1, 2, 3))
	require.Equal(t, 1, min3(3, 1, 2))
	require.Equal(t, 1, min3(2, 3, 1))
	require.Equal(t, 5, min3(5, 5, 5))
}
