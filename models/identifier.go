package models

import (
	"errors"
	"strings"
)

// ErrBadIdentifier indicates a catalog identifier that yields no usable
// cache key (empty, or nothing after the final underscore).
var ErrBadIdentifier = errors.New("invalid catalog identifier")

// CanonicalID reduces a caller-supplied catalog identifier to its cache
// key. The catalog embeds human-readable slugs before the real ID, so
// the grammar is:
//
//	identifier := [prefix '_'] suffix
//
// The suffix after the last underscore is the canonical ID; an
// identifier with no underscore is already canonical.
func CanonicalID(identifier string) (string, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return "", ErrBadIdentifier
	}
	suffix := identifier
	if idx := strings.LastIndex(identifier, "_"); idx != -1 {
		suffix = identifier[idx+1:]
	}
	if suffix == "" {
		return "", ErrBadIdentifier
	}
	return suffix, nil
}
