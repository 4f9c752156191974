package tracker

import (
	"context"
	"errors"
	"time"

	"github.com/aleister1102/fleetvoice/internal/browser"
	"github.com/aleister1102/fleetvoice/internal/cache"
	"github.com/aleister1102/fleetvoice/internal/common"
	"github.com/aleister1102/fleetvoice/internal/models"
	"github.com/aleister1102/fleetvoice/internal/scrape"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Options tune how a Coordinator runs cycles.
type Options struct {
	Mode            models.ConcurrencyMode
	MaxParallel     int
	RecoveryEnabled bool
	RecoveryDelay   time.Duration
	Credentials     browser.Credentials
}

// Coordinator runs refresh cycles: authenticate, try each source in order
// per entity, recover once, and write Found results to the store.
type Coordinator struct {
	driver   browser.Driver
	auth     Authenticator
	sources  []Source
	entities []models.TrackedEntity
	store    *cache.Store
	observer Observer
	opts     Options
	logger   zerolog.Logger
}

func NewCoordinator(
	driver browser.Driver,
	auth Authenticator,
	sources []Source,
	entities []models.TrackedEntity,
	store *cache.Store,
	observer Observer,
	opts Options,
	logger zerolog.Logger,
) *Coordinator {
	if opts.MaxParallel <= 0 {
		opts.MaxParallel = 1
	}
	if opts.Mode == "" {
		opts.Mode = models.ConcurrencyShared
	}
	if observer == nil {
		observer = Observers(nil)
	}
	return &Coordinator{
		driver:   driver,
		auth:     auth,
		sources:  sources,
		entities: entities,
		store:    store,
		observer: observer,
		opts:     opts,
		logger:   logger.With().Str("component", "Coordinator").Logger(),
	}
}

// Entities returns the configured entities in order.
func (c *Coordinator) Entities() []models.TrackedEntity {
	return c.entities
}

func (c *Coordinator) needsSession() bool {
	for _, s := range c.sources {
		if s.RequiresSession() {
			return true
		}
	}
	return false
}

// Prepare starts a cycle for entities. When a browser is needed, the first
// session is opened here so a launch failure reaches the caller before the
// cycle runs. A failed Prepare returns the aborted report it also delivered
// to observers.
func (c *Coordinator) Prepare(ctx context.Context, entities []models.TrackedEntity) (*Cycle, models.RefreshReport, error) {
	cy := &Cycle{
		id:       uuid.NewString(),
		coord:    c,
		entities: entities,
		started:  time.Now(),
	}
	cy.logger = c.logger.With().Str("cycle_id", cy.id).Logger()

	for _, s := range c.sources {
		if ca, ok := s.(cycleAware); ok {
			ca.BeginCycle()
		}
	}

	if c.needsSession() && len(entities) > 0 {
		sess, err := c.driver.Open(ctx)
		if err != nil {
			cy.logger.Error().Err(err).Msg("Could not start browser session")
			report := cy.abortedReport(err)
			c.observer.CycleFinished(report)
			return nil, report, err
		}
		cy.warm = sess
	}
	return cy, models.RefreshReport{}, nil
}

// lookupEntity tries every source in order, then the optional recovery
// against the last source. Only a Found result is written to the store. A
// source whose login is rejected ends the lookup and the error is returned
// so the cycle can abort its pending entities.
func (c *Coordinator) lookupEntity(ctx context.Context, sess browser.Session, entity models.TrackedEntity, log zerolog.Logger) (models.LookupResult, error) {
	log = log.With().Str("entity_id", entity.ID).Logger()

	var (
		lastErr    error
		lastSource Source
	)
	for _, src := range c.sources {
		if src.RequiresSession() && sess == nil {
			continue
		}
		text, err := src.Lookup(ctx, sess, entity)
		if err == nil {
			return c.found(entity, src, text, log), nil
		}
		logAttempt(log, src, err)
		var authErr *browser.AuthenticationError
		if errors.As(err, &authErr) {
			return c.failed(entity, src.Name(), models.OutcomeError, err.Error(), log), err
		}
		lastErr, lastSource = err, src
		if ctx.Err() != nil {
			break
		}
	}

	if lastSource == nil {
		return c.failed(entity, "", models.OutcomeError, "no usable source configured", log), nil
	}

	if c.opts.RecoveryEnabled && ctx.Err() == nil {
		log.Info().Str("source", lastSource.Name()).Dur("delay", c.opts.RecoveryDelay).Msg("Sources exhausted, attempting recovery")
		text, err := c.recover(ctx, sess, lastSource, entity, lastErr)
		if err == nil {
			return c.found(entity, lastSource, text, log), nil
		}
		logAttempt(log, lastSource, err)
		lastErr = err
	}

	return c.failed(entity, lastSource.Name(), scrape.Classify(lastErr), lastErr.Error(), log), nil
}

// recover reloads the last source and reads it again after the recovery
// delay. If the last attempt never reached the view, it navigates again.
func (c *Coordinator) recover(ctx context.Context, sess browser.Session, src Source, entity models.TrackedEntity, lastErr error) (string, error) {
	var navErr *scrape.NavigationError
	if errors.As(lastErr, &navErr) {
		if err := common.Sleep(ctx, c.opts.RecoveryDelay); err != nil {
			return "", err
		}
		return src.Lookup(ctx, sess, entity)
	}

	if err := src.Reload(ctx, sess); err != nil {
		return "", err
	}
	if err := common.Sleep(ctx, c.opts.RecoveryDelay); err != nil {
		return "", err
	}
	return src.Extract(ctx, sess, entity)
}

func (c *Coordinator) found(entity models.TrackedEntity, src Source, text string, log zerolog.Logger) models.LookupResult {
	result := models.Found(entity.ID, src.Name(), text)
	c.store.Set(entity.ID, result)
	log.Info().Str("source", src.Name()).Str("address", text).Msg("Entity located")
	c.observer.LookupFinished(result)
	return result
}

func (c *Coordinator) failed(entity models.TrackedEntity, source string, outcome models.Outcome, reason string, log zerolog.Logger) models.LookupResult {
	result := models.Failed(entity.ID, source, outcome, reason)
	log.Warn().Str("outcome", outcome.String()).Str("reason", reason).Msg("Entity lookup exhausted, keeping previous cached value")
	c.observer.LookupFinished(result)
	return result
}

func logAttempt(log zerolog.Logger, src Source, err error) {
	event := log.Info()
	if scrape.IsExtractionError(err) {
		event = log.Warn().Bool("dom_drift", true)
	} else if scrape.Classify(err) == models.OutcomeError {
		event = log.Warn()
	}
	event.Str("source", src.Name()).
		Str("outcome", scrape.Classify(err).String()).
		Err(err).
		Msg("Source attempt failed")
}
