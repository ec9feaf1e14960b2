package model

import (
	"errors"
	"fmt"
	"strings"
)

// Standard errors surfaced by the extraction pipeline.
var (
	// The collaborator failed to produce any text.
	ErrSourceUnavailable = errors.New("d2o: source unavailable")

	// A structured input failed validation.
	ErrMalformedJSON = errors.New("d2o: malformed json")

	// A stored cache entry could not be decoded.
	ErrCacheCorrupt = errors.New("d2o: cache entry corrupt")

	// The requested generator target does not exist.
	ErrUnsupportedFormat = errors.New("d2o: unsupported format")
)

// SourceError records which command path could not be extracted.
type SourceError struct {
	Path []string
	Err  error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s: %q: %v", ErrSourceUnavailable, strings.Join(e.Path, " "), e.Err)
}

func (e *SourceError) Unwrap() []error {
	return []error{ErrSourceUnavailable, e.Err}
}
