package tracker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/aleister1102/fleetvoice/internal/models"
	"github.com/rs/zerolog"
)

var (
	// ErrRefreshInProgress is returned when a cycle is already running.
	ErrRefreshInProgress = errors.New("refresh already in progress")
	// ErrUnknownEntity is returned for an entity id that is not configured.
	ErrUnknownEntity = errors.New("unknown entity")
)

// Refresher admits at most one cycle at a time and keeps the last report.
type Refresher struct {
	coord   *Coordinator
	baseCtx context.Context
	logger  zerolog.Logger

	running atomic.Bool
	wg      sync.WaitGroup

	mu   sync.RWMutex
	last *models.RefreshReport
}

// NewRefresher creates a Refresher. Asynchronous cycles run under baseCtx,
// not under the triggering request's context.
func NewRefresher(baseCtx context.Context, coord *Coordinator, logger zerolog.Logger) *Refresher {
	return &Refresher{
		coord:   coord,
		baseCtx: baseCtx,
		logger:  logger.With().Str("component", "Refresher").Logger(),
	}
}

// Trigger starts a cycle in the background for the given entity ids, or for
// all entities when none are given. Launch failures are returned before the
// cycle starts.
func (r *Refresher) Trigger(entityIDs ...string) error {
	entities, err := r.resolve(entityIDs)
	if err != nil {
		return err
	}
	if !r.running.CompareAndSwap(false, true) {
		return ErrRefreshInProgress
	}

	cycle, aborted, err := r.coord.Prepare(r.baseCtx, entities)
	if err != nil {
		r.setLast(aborted)
		r.running.Store(false)
		return err
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer r.running.Store(false)
		r.setLast(cycle.Run(r.baseCtx))
	}()
	return nil
}

// RunSync runs one cycle on the calling goroutine.
func (r *Refresher) RunSync(ctx context.Context, entityIDs ...string) (models.RefreshReport, error) {
	entities, err := r.resolve(entityIDs)
	if err != nil {
		return models.RefreshReport{}, err
	}
	if !r.running.CompareAndSwap(false, true) {
		return models.RefreshReport{}, ErrRefreshInProgress
	}
	defer r.running.Store(false)

	cycle, aborted, err := r.coord.Prepare(ctx, entities)
	if err != nil {
		r.setLast(aborted)
		return aborted, err
	}
	report := cycle.Run(ctx)
	r.setLast(report)
	return report, nil
}

// Wait blocks until any background cycle has finished.
func (r *Refresher) Wait() {
	r.wg.Wait()
}

// Running reports whether a cycle is in progress.
func (r *Refresher) Running() bool {
	return r.running.Load()
}

// LastReport returns the report of the most recently completed cycle.
func (r *Refresher) LastReport() (models.RefreshReport, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.last == nil {
		return models.RefreshReport{}, false
	}
	return *r.last, true
}

// HasEntity reports whether id is a configured entity.
func (r *Refresher) HasEntity(id string) bool {
	for _, e := range r.coord.Entities() {
		if e.ID == id {
			return true
		}
	}
	return false
}

func (r *Refresher) setLast(report models.RefreshReport) {
	r.mu.Lock()
	r.last = &report
	r.mu.Unlock()
}

func (r *Refresher) resolve(ids []string) ([]models.TrackedEntity, error) {
	all := r.coord.Entities()
	if len(ids) == 0 {
		return all, nil
	}
	byID := make(map[string]models.TrackedEntity, len(all))
	for _, e := range all {
		byID[e.ID] = e
	}
	out := make([]models.TrackedEntity, 0, len(ids))
	for _, id := range ids {
		e, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownEntity, id)
		}
		out = append(out, e)
	}
	return out, nil
}
