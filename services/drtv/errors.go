package drtv

import "errors"

var (
	// ErrUpstreamStatus indicates a non-2xx response (or timeout) from
	// the catalog site. Surfaced to callers as not-found; never retried.
	ErrUpstreamStatus = errors.New("upstream returned an error status")

	// ErrMalformedPage indicates a page without the embedded JSON blob,
	// or one whose blob could not be recovered by the salvage re-parse.
	ErrMalformedPage = errors.New("page has no parseable embedded data")

	// ErrMalformedRecord indicates a catalog record missing a required
	// field (title or path) after normalization.
	ErrMalformedRecord = errors.New("catalog record is missing required fields")
)
