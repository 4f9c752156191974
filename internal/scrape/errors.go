package scrape

import (
	"context"
	"errors"
	"fmt"

	"github.com/aleister1102/fleetvoice/internal/models"
)

var (
	// ErrNotFound means the grid rendered but no row carries the match key.
	// It is an expected steady state, not a failure of the scraper.
	ErrNotFound = errors.New("entity not found in source")
	// ErrReadinessTimeout means the grid never reached the awaited state.
	ErrReadinessTimeout = errors.New("page not ready before timeout")
)

// NavigationError means a source view could not be reached.
type NavigationError struct {
	Source string
	URL    string
	Err    error
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("navigation to source '%s' (%s) failed: %v", e.Source, e.URL, e.Err)
}

func (e *NavigationError) Unwrap() error { return e.Err }

// ExtractionError means the page was ready but the expected row or cell shape
// was missing, which usually indicates the upstream UI changed.
type ExtractionError struct {
	Source string
	Reason string
}

func (e *ExtractionError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("extraction failed: %s", e.Reason)
	}
	return fmt.Sprintf("extraction from source '%s' failed: %s", e.Source, e.Reason)
}

// IsExtractionError reports whether err carries an *ExtractionError.
func IsExtractionError(err error) bool {
	var target *ExtractionError
	return errors.As(err, &target)
}

// Classify maps a lookup error to its outcome. Extraction errors count as
// NotFound for fallback purposes.
func Classify(err error) models.Outcome {
	var extractErr *ExtractionError
	switch {
	case err == nil:
		return models.OutcomeFound
	case errors.Is(err, ErrNotFound), errors.As(err, &extractErr):
		return models.OutcomeNotFound
	case errors.Is(err, ErrReadinessTimeout), errors.Is(err, context.DeadlineExceeded):
		return models.OutcomeTimeout
	default:
		return models.OutcomeError
	}
}
