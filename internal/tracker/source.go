package tracker

import (
	"context"

	"github.com/aleister1102/fleetvoice/internal/browser"
	"github.com/aleister1102/fleetvoice/internal/models"
)

// Source is one place an entity's address can be looked up. Sources are
// tried in configured order.
type Source interface {
	Name() string
	// RequiresSession reports whether the source drives the browser session.
	RequiresSession() bool
	// Lookup brings up the source and extracts the entity's address.
	Lookup(ctx context.Context, sess browser.Session, entity models.TrackedEntity) (string, error)
	// Reload refreshes the source's current view in place.
	Reload(ctx context.Context, sess browser.Session) error
	// Extract reads the entity's address from the current view.
	Extract(ctx context.Context, sess browser.Session, entity models.TrackedEntity) (string, error)
}

// cycleAware sources drop per-cycle state (tokens, fetched feeds) at the
// start of each cycle.
type cycleAware interface {
	BeginCycle()
}

// Authenticator logs a session into the dashboard.
type Authenticator interface {
	Authenticate(ctx context.Context, sess browser.Session, creds browser.Credentials) error
}

// Observer receives lookup and cycle outcomes. Implementations must not block.
type Observer interface {
	LookupFinished(result models.LookupResult)
	CycleFinished(report models.RefreshReport)
}

// Observers fans out to several observers in order.
type Observers []Observer

func (o Observers) LookupFinished(result models.LookupResult) {
	for _, obs := range o {
		obs.LookupFinished(result)
	}
}

func (o Observers) CycleFinished(report models.RefreshReport) {
	for _, obs := range o {
		obs.CycleFinished(report)
	}
}
