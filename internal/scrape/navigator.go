package scrape

import (
	"context"
	"time"

	"github.com/aleister1102/fleetvoice/internal/browser"
	"github.com/aleister1102/fleetvoice/internal/common"
	"github.com/aleister1102/fleetvoice/internal/models"
	"github.com/rs/zerolog"
)

// Navigator brings a session to a source view and waits for it to render.
type Navigator struct {
	grid         GridQuery
	pollInterval time.Duration
	navTimeout   time.Duration
	logger       zerolog.Logger
}

func NewNavigator(grid GridQuery, pollInterval time.Duration, logger zerolog.Logger) *Navigator {
	if pollInterval <= 0 {
		pollInterval = common.DefaultPollInterval
	}
	return &Navigator{
		grid:         grid,
		pollInterval: pollInterval,
		logger:       logger.With().Str("component", "Navigator").Logger(),
	}
}

// WithNavigationTimeout bounds each Goto. Zero leaves it to the session.
func (n *Navigator) WithNavigationTimeout(d time.Duration) *Navigator {
	n.navTimeout = d
	return n
}

// Goto navigates sess to the source URL.
func (n *Navigator) Goto(ctx context.Context, sess browser.Session, source models.DataSource) error {
	if n.navTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.navTimeout)
		defer cancel()
	}
	if err := sess.Navigate(ctx, source.URL); err != nil {
		return &NavigationError{Source: source.Name, URL: source.URL, Err: err}
	}
	return nil
}

// Snapshot captures and parses the current page.
func (n *Navigator) Snapshot(ctx context.Context, sess browser.Session) (*GridSnapshot, error) {
	html, err := sess.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return n.grid.Parse(html)
}

// WaitReady polls snapshots until r is satisfied. A timeout is reported as
// (false, nil); only snapshot failures and cancellation are errors.
func (n *Navigator) WaitReady(ctx context.Context, sess browser.Session, r Readiness, timeout time.Duration) (bool, error) {
	if timeout <= 0 {
		timeout = common.DefaultReadyTimeout
	}
	start := time.Now()
	ok, err := common.RetryUntil(ctx, n.pollInterval, timeout, func(ctx context.Context) (bool, error) {
		snap, err := n.Snapshot(ctx, sess)
		if err != nil {
			return false, err
		}
		return r.Check(snap), nil
	})
	n.logger.Debug().
		Str("readiness", r.Name).
		Bool("ready", ok).
		Dur("elapsed", time.Since(start)).
		Msg("Readiness wait finished")
	return ok, err
}
