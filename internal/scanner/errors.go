package scanner

import "errors"

var (
	// ErrNoResponse is joined with the per-scheme transport errors of an
	// inactive host.
	ErrNoResponse = errors.New("no response from any scheme")

	// ErrInvalidTimeout is returned by NewClient for a non-positive timeout.
	ErrInvalidTimeout = errors.New("timeout must be positive")

	// ErrInvalidRedirects is returned by NewClient for a negative redirect cap.
	ErrInvalidRedirects = errors.New("max redirects must not be negative")
)
