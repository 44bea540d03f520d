// SPDX-License-Identifier: MIT

// Package model defines the domain types shared across occam: title
// identifiers, search results, availability data and the optimizer
// request/response surface.
package model

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
)

// IDKind discriminates the two title identifier namespaces.
type IDKind string

const (
	KindIMDB   IDKind = "imdb"
	KindNative IDKind = "native"
)

var imdbPattern = regexp.MustCompile(`^tt\d+$`)

// ValidIMDB reports whether s has the IMDB identifier shape ("tt" + digits).
func ValidIMDB(s string) bool { return imdbPattern.MatchString(s) }

// TitleID identifies a title in exactly one namespace: an IMDB identifier
// or the numeric ID of the aggregator behind the proxied provider. Only the
// field matching Kind is meaningful. TitleID is comparable and safe to use
// as a map key; the zero value is not a valid ID.
type TitleID struct {
	Kind   IDKind
	IMDB   string
	Native uint64
}

// Imdb builds an IMDB-kind title ID.
func Imdb(id string) TitleID { return TitleID{Kind: KindIMDB, IMDB: id} }

// Native builds a native-kind title ID.
func Native(id uint64) TitleID { return TitleID{Kind: KindNative, Native: id} }

// IsZero reports whether the ID carries no value.
func (t TitleID) IsZero() bool { return t.Kind == "" }

// String renders the bare inner value ("tt1375666", "3173903"). Cache keys,
// log fields and error messages all use this form.
func (t TitleID) String() string {
	switch t.Kind {
	case KindIMDB:
		return t.IMDB
	case KindNative:
		return strconv.FormatUint(t.Native, 10)
	}
	return ""
}

// MarshalJSON encodes the tagged form, e.g. {"kind":"imdb","value":"tt1375666"}
// or {"kind":"native","value":3173903}.
func (t TitleID) MarshalJSON() ([]byte, error) {
	switch t.Kind {
	case KindIMDB:
		return json.Marshal(struct {
			Kind  IDKind `json:"kind"`
			Value string `json:"value"`
		}{KindIMDB, t.IMDB})
	case KindNative:
		return json.Marshal(struct {
			Kind  IDKind `json:"kind"`
			Value uint64 `json:"value"`
		}{KindNative, t.Native})
	}
	return nil, fmt.Errorf("title id: cannot marshal zero value")
}

// UnmarshalJSON decodes the tagged form. The value type must match the kind:
// a string for "imdb", an unsigned integer for "native".
func (t *TitleID) UnmarshalJSON(data []byte) error {
	var wire struct {
		Kind  IDKind          `json:"kind"`
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return fmt.Errorf("title id: %w", err)
	}
	switch wire.Kind {
	case KindIMDB:
		var s string
		if err := json.Unmarshal(wire.Value, &s); err != nil {
			return fmt.Errorf("title id: imdb value must be a string: %w", err)
		}
		*t = Imdb(s)
	case KindNative:
		var n uint64
		if err := json.Unmarshal(wire.Value, &n); err != nil {
			return fmt.Errorf("title id: native value must be an unsigned integer: %w", err)
		}
		*t = Native(n)
	default:
		return fmt.Errorf("title id: unknown kind %q", wire.Kind)
	}
	return nil
}
