package scrape

import (
	"context"
	"fmt"
	"time"

	"github.com/aleister1102/fleetvoice/internal/browser"
	"github.com/aleister1102/fleetvoice/internal/models"
	"github.com/rs/zerolog"
)

// DashboardSource looks entities up in one rendered dashboard grid view.
type DashboardSource struct {
	source       models.DataSource
	navigator    *Navigator
	locator      *RowLocator
	readyTimeout time.Duration
	rowTimeout   time.Duration
	logger       zerolog.Logger
}

// DashboardOptions carries the waits applied to every lookup.
type DashboardOptions struct {
	ReadyTimeout time.Duration
	RowTimeout   time.Duration
}

func NewDashboardSource(source models.DataSource, navigator *Navigator, locator *RowLocator, opts DashboardOptions, logger zerolog.Logger) *DashboardSource {
	return &DashboardSource{
		source:       source,
		navigator:    navigator,
		locator:      locator,
		readyTimeout: opts.ReadyTimeout,
		rowTimeout:   opts.RowTimeout,
		logger:       logger.With().Str("component", "DashboardSource").Str("source", source.Name).Logger(),
	}
}

func (d *DashboardSource) Name() string { return d.source.Name }

func (d *DashboardSource) RequiresSession() bool { return true }

// Lookup navigates to the source view and extracts entity's address.
func (d *DashboardSource) Lookup(ctx context.Context, sess browser.Session, entity models.TrackedEntity) (string, error) {
	if err := d.navigator.Goto(ctx, sess, d.source); err != nil {
		return "", err
	}
	return d.Extract(ctx, sess, entity)
}

// Reload refreshes the current view in place.
func (d *DashboardSource) Reload(ctx context.Context, sess browser.Session) error {
	if err := sess.Reload(ctx); err != nil {
		return &NavigationError{Source: d.source.Name, URL: d.source.URL, Err: err}
	}
	return nil
}

// Extract waits for the grid and the entity's row on the current page, then
// reads the address from that row.
func (d *DashboardSource) Extract(ctx context.Context, sess browser.Session, entity models.TrackedEntity) (string, error) {
	ready, err := d.navigator.WaitReady(ctx, sess, ContainerHasRows(), d.readyTimeout)
	if err != nil {
		return "", err
	}
	if !ready {
		snap, err := d.navigator.Snapshot(ctx, sess)
		if err == nil && snap.ContainerPresent() {
			return "", fmt.Errorf("%w: grid rendered without rows", ErrNotFound)
		}
		return "", fmt.Errorf("%w: grid of source '%s' after %s", ErrReadinessTimeout, d.source.Name, d.readyTimeout)
	}

	// A miss here is not fatal: the grid may legitimately not list the entity.
	if _, err := d.navigator.WaitReady(ctx, sess, TargetRowPresent(entity.MatchKey), d.rowTimeout); err != nil {
		return "", err
	}

	snap, err := d.navigator.Snapshot(ctx, sess)
	if err != nil {
		return "", err
	}
	return d.locator.FindRow(snap, entity.MatchKey)
}
