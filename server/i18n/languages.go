// Package i18n holds the language catalog used to validate user language
// choices.
package i18n

import (
	"context"
	"sort"
	"sync"
)

// Codes bundled with the forum UI translations.
var defaultCodes = []string{
	"ar", "bg", "cs", "da", "de", "el",
	"en-GB", "en-US", "es", "fa-IR", "fi", "fr",
	"he", "hu", "id", "it", "ja", "ko",
	"nb", "nl", "pl", "pt-BR", "pt-PT", "ro",
	"ru", "sk", "sl", "sr", "sv", "th",
	"tr", "uk", "vi", "zh-CN", "zh-TW",
}

// Catalog is the set of supported language codes.
type Catalog struct {
	mu    sync.RWMutex
	codes map[string]struct{}
}

// NewCatalog creates a catalog seeded with the bundled languages.
func NewCatalog() *Catalog {
	c := &Catalog{codes: make(map[string]struct{}, len(defaultCodes))}
	for _, code := range defaultCodes {
		c.codes[code] = struct{}{}
	}
	return c
}

// Register adds a language code, for installs that ship extra translations.
func (c *Catalog) Register(code string) {
	if code == "" {
		return
	}
	c.mu.Lock()
	c.codes[code] = struct{}{}
	c.mu.Unlock()
}

// ListCodes returns the supported language codes, sorted.
func (c *Catalog) ListCodes(_ context.Context) ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	list := make([]string, 0, len(c.codes))
	for code := range c.codes {
		list = append(list, code)
	}
	sort.Strings(list)
	return list, nil
}
