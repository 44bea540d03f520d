// SPDX-License-Identifier: MIT

package config

import (
	"testing"
	"time"
)

func TestParseString(t *testing.T) {
	tests := []struct {
		name     string
		value    *string
		fallback string
		want     string
	}{
		{"unset uses default", nil, "dflt", "dflt"},
		{"empty uses default", ptr(""), "dflt", "dflt"},
		{"set uses env", ptr("from-env"), "dflt", "from-env"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != nil {
				t.Setenv("OCCAM_TEST_STRING", *tt.value)
			}
			if got := ParseString("OCCAM_TEST_STRING", tt.fallback); got != tt.want {
				t.Errorf("ParseString = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseInt(t *testing.T) {
	t.Setenv("OCCAM_TEST_INT", "42")
	if got := ParseInt("OCCAM_TEST_INT", 7); got != 42 {
		t.Errorf("ParseInt = %d", got)
	}
	t.Setenv("OCCAM_TEST_INT", "not-a-number")
	if got := ParseInt("OCCAM_TEST_INT", 7); got != 7 {
		t.Errorf("ParseInt fallback = %d", got)
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		value string
		want  time.Duration
	}{
		{"90s", 90 * time.Second},
		{"1h", time.Hour},
		{"3600", time.Hour}, // bare integer means seconds
		{"junk", 5 * time.Second},
	}
	for _, tt := range tests {
		t.Setenv("OCCAM_TEST_DUR", tt.value)
		if got := ParseDuration("OCCAM_TEST_DUR", 5*time.Second); got != tt.want {
			t.Errorf("ParseDuration(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestParseBool(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"true", true}, {"1", true}, {"YES", true},
		{"false", false}, {"0", false}, {"No", false},
		{"maybe", true}, // fallback
	}
	for _, tt := range tests {
		t.Setenv("OCCAM_TEST_BOOL", tt.value)
		if got := ParseBool("OCCAM_TEST_BOOL", true); got != tt.want {
			t.Errorf("ParseBool(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestSensitiveKey(t *testing.T) {
	for _, key := range []string{"STREAMING_API_KEY", "DATABASE_URL", "REDIS_URL", "X_TOKEN"} {
		if !sensitiveKey(key) {
			t.Errorf("sensitiveKey(%q) = false", key)
		}
	}
	for _, key := range []string{"HOST", "PORT", "STREAMING_PROVIDER"} {
		if sensitiveKey(key) {
			t.Errorf("sensitiveKey(%q) = true", key)
		}
	}
}

func ptr(s string) *string { return &s }
