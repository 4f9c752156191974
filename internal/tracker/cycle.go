package tracker

import (
	"context"
	"sync"
	"time"

	"github.com/aleister1102/fleetvoice/internal/browser"
	"github.com/aleister1102/fleetvoice/internal/models"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Cycle is one prepared refresh. Run must be called exactly once; it closes
// every session the cycle opened, including the warm one from Prepare.
type Cycle struct {
	id       string
	coord    *Coordinator
	entities []models.TrackedEntity
	started  time.Time
	logger   zerolog.Logger

	mu   sync.Mutex
	warm browser.Session
}

// ID returns the cycle's identifier.
func (cy *Cycle) ID() string { return cy.id }

// Run executes the cycle to completion and reports per-entity outcomes.
func (cy *Cycle) Run(ctx context.Context) models.RefreshReport {
	c := cy.coord
	cy.logger.Info().
		Str("mode", string(c.opts.Mode)).
		Int("entities", len(cy.entities)).
		Msg("Refresh cycle started")

	var (
		results []models.LookupResult
		fatal   string
	)
	if c.opts.Mode == models.ConcurrencyParallel {
		results, fatal = cy.runParallel(ctx)
	} else {
		results, fatal = cy.runShared(ctx)
	}

	// Nothing may stay open past the cycle, even if no entity used the warm session.
	if sess := cy.takeWarm(); sess != nil {
		cy.closeSession(sess)
	}

	report := models.RefreshReport{
		CycleID:    cy.id,
		Mode:       c.opts.Mode,
		StartedAt:  cy.started,
		FinishedAt: time.Now(),
		Results:    results,
		Fatal:      fatal,
	}
	cy.logger.Info().
		Int("found", report.FoundCount()).
		Int("entities", len(results)).
		Dur("duration", report.Duration()).
		Str("fatal", fatal).
		Msg("Refresh cycle finished")
	c.observer.CycleFinished(report)
	return report
}

func (cy *Cycle) runShared(ctx context.Context) ([]models.LookupResult, string) {
	c := cy.coord
	sess := cy.takeWarm()
	if sess != nil {
		defer cy.closeSession(sess)
		if err := c.auth.Authenticate(ctx, sess, c.opts.Credentials); err != nil {
			cy.logger.Error().Err(err).Msg("Authentication failed, aborting cycle")
			return cy.failAll(cy.entities, err), err.Error()
		}
	}

	results := make([]models.LookupResult, 0, len(cy.entities))
	for i, entity := range cy.entities {
		result, err := c.lookupEntity(ctx, sess, entity, cy.logger)
		results = append(results, result)
		if err != nil {
			cy.logger.Error().Err(err).Str("entity_id", entity.ID).Msg("Source login failed, aborting cycle")
			return append(results, cy.failAll(cy.entities[i+1:], err)...), err.Error()
		}
	}
	return results, ""
}

// abortState records the first launch or authentication failure so pending
// entities fail without another login.
type abortState struct {
	mu  sync.Mutex
	err error
}

func (a *abortState) get() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.err
}

func (a *abortState) set(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err == nil {
		a.err = err
	}
}

func (cy *Cycle) runParallel(ctx context.Context) ([]models.LookupResult, string) {
	c := cy.coord
	results := make([]models.LookupResult, len(cy.entities))
	abort := &abortState{}
	needsSession := c.needsSession()

	var g errgroup.Group
	g.SetLimit(c.opts.MaxParallel)
	for i, entity := range cy.entities {
		i, entity := i, entity
		g.Go(func() error {
			results[i] = cy.runParallelEntity(ctx, entity, needsSession, abort)
			return nil
		})
	}
	_ = g.Wait()

	if err := abort.get(); err != nil {
		return results, err.Error()
	}
	return results, ""
}

func (cy *Cycle) runParallelEntity(ctx context.Context, entity models.TrackedEntity, needsSession bool, abort *abortState) models.LookupResult {
	c := cy.coord
	if err := abort.get(); err != nil {
		return cy.failAll([]models.TrackedEntity{entity}, err)[0]
	}
	if !needsSession {
		return cy.lookupParallel(ctx, nil, entity, abort)
	}

	sess := cy.takeWarm()
	if sess == nil {
		opened, err := c.driver.Open(ctx)
		if err != nil {
			abort.set(err)
			return cy.failAll([]models.TrackedEntity{entity}, err)[0]
		}
		sess = opened
	}
	defer cy.closeSession(sess)

	if err := abort.get(); err != nil {
		return cy.failAll([]models.TrackedEntity{entity}, err)[0]
	}
	if err := c.auth.Authenticate(ctx, sess, c.opts.Credentials); err != nil {
		cy.logger.Error().Err(err).Str("entity_id", entity.ID).Msg("Authentication failed, failing pending entities")
		abort.set(err)
		return cy.failAll([]models.TrackedEntity{entity}, err)[0]
	}
	return cy.lookupParallel(ctx, sess, entity, abort)
}

func (cy *Cycle) lookupParallel(ctx context.Context, sess browser.Session, entity models.TrackedEntity, abort *abortState) models.LookupResult {
	result, err := cy.coord.lookupEntity(ctx, sess, entity, cy.logger)
	if err != nil {
		cy.logger.Error().Err(err).Str("entity_id", entity.ID).Msg("Source login failed, failing pending entities")
		abort.set(err)
	}
	return result
}

func (cy *Cycle) failAll(entities []models.TrackedEntity, err error) []models.LookupResult {
	results := make([]models.LookupResult, 0, len(entities))
	for _, e := range entities {
		r := models.Failed(e.ID, "", models.OutcomeError, err.Error())
		cy.coord.observer.LookupFinished(r)
		results = append(results, r)
	}
	return results
}

func (cy *Cycle) takeWarm() browser.Session {
	cy.mu.Lock()
	defer cy.mu.Unlock()
	sess := cy.warm
	cy.warm = nil
	return sess
}

func (cy *Cycle) closeSession(sess browser.Session) {
	if err := sess.Close(); err != nil {
		cy.logger.Warn().Err(err).Msg("Failed to close browser session")
	}
}

func (cy *Cycle) abortedReport(err error) models.RefreshReport {
	now := time.Now()
	return models.RefreshReport{
		CycleID:    cy.id,
		Mode:       cy.coord.opts.Mode,
		StartedAt:  cy.started,
		FinishedAt: now,
		Results:    cy.failAll(cy.entities, err),
		Fatal:      err.Error(),
	}
}
