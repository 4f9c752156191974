package browser

import (
	"context"
	"time"
)

// Session is one live browser tab. It is a single mutable cursor over one
// document, so callers must not drive it from two goroutines at once.
type Session interface {
	// Navigate loads url and waits for the load event.
	Navigate(ctx context.Context, url string) error
	// Reload reloads the current document and waits for the load event.
	Reload(ctx context.Context) error
	// Snapshot returns the current rendered DOM as HTML.
	Snapshot(ctx context.Context) (string, error)
	// Fill replaces the value of the input matched by selector.
	Fill(ctx context.Context, selector, value string) error
	// SubmitWithEnter presses Enter in the element matched by selector and
	// reports whether a navigation completed within timeout.
	SubmitWithEnter(ctx context.Context, selector string, timeout time.Duration) (bool, error)
	// ClickAndWait clicks the element matched by selector and reports whether
	// a navigation completed within timeout.
	ClickAndWait(ctx context.Context, selector string, timeout time.Duration) (bool, error)
	// Close releases the session. Safe to call more than once.
	Close() error
}

// Driver opens sessions. Each session owns exactly one browser process.
type Driver interface {
	Open(ctx context.Context) (Session, error)
}

// Credentials used to log into the dashboard.
type Credentials struct {
	Username string
	Password string
}
