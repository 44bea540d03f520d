// SPDX-License-Identifier: MIT

package cache

import (
	"strings"
	"time"
	"unicode"

	"github.com/occamtv/occam/internal/model"
)

// Canonical TTLs per key kind. Search is the only one operators tune, so the
// providers take it from config; the other two are wired here.
const (
	TTLAvailability = 7 * 24 * time.Hour
	TTLMapping      = 30 * 24 * time.Hour

	DefaultSearchTTL = time.Hour
)

// Key is a fully rendered cache key. Build one through the constructors so
// the namespace layout stays in one place.
type Key string

func (k Key) String() string { return string(k) }

// TitleSearch keys a search result list by its normalized query, so "Inception"
// and "inception" share an entry: "search:inception".
func TitleSearch(query string) Key {
	return Key("search:" + normalizeQuery(query))
}

// Availability keys a title's availability by the requested ID's display
// form: "avail:tt1375666", "avail:3173903".
func Availability(id model.TitleID) Key {
	return Key("avail:" + id.String())
}

// ImdbToNative keys the IMDB-to-native ID mapping: "imdb2native:tt1375666".
func ImdbToNative(imdb string) Key {
	return Key("imdb2native:" + imdb)
}

// normalizeQuery trims Unicode whitespace plus invisible edge characters and
// lowercases, so equal-meaning queries land on one key.
func normalizeQuery(q string) string {
	return strings.ToLower(strings.TrimFunc(q, func(r rune) bool {
		return unicode.IsSpace(r) ||
			r == '​' || // Zero Width Space
			r == '‌' || // Zero Width Non-Joiner
			r == '‍' || // Zero Width Joiner
			r == '\ufeff' // Zero Width Non-Breaking Space (BOM)
	}))
}
