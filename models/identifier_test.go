package models

import (
	"errors"
	"testing"
)

func TestCanonicalID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"bamse_123", "123"},
		{"en-anden-slug_123", "123"},
		{"123", "123"},
		{"flere_under_streger_9001", "9001"},
		{"  bamse_123  ", "123"},
	}
	for _, tt := range tests {
		got, err := CanonicalID(tt.in)
		if err != nil {
			t.Errorf("CanonicalID(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("CanonicalID(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCanonicalIDInvalid(t *testing.T) {
	for _, in := range []string{"", "   ", "slug_", "trailing__"} {
		if _, err := CanonicalID(in); !errors.Is(err, ErrBadIdentifier) {
			t.Errorf("CanonicalID(%q) error = %v, want ErrBadIdentifier", in, err)
		}
	}
}

func TestLastSegment(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/serie/bamse_123", "bamse_123"},
		{"/serie/bamse_123/", "bamse_123"},
		{"bamse_123", "bamse_123"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := LastSegment(tt.in); got != tt.want {
			t.Errorf("LastSegment(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
