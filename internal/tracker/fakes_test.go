package tracker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aleister1102/fleetvoice/internal/browser"
	"github.com/aleister1102/fleetvoice/internal/models"
)

type fakeSession struct {
	closed int32
}

func (s *fakeSession) Navigate(context.Context, string) error { return nil }
func (s *fakeSession) Reload(context.Context) error { return nil }
func (s *fakeSession) Snapshot(context.Context) (string, error) { return "", nil }
func (s *fakeSession) Fill(context.Context, string, string) error { return nil }
func (s *fakeSession) SubmitWithEnter(context.Context, string, time.Duration) (bool, error) {
	return true, nil
}
func (s *fakeSession) ClickAndWait(context.Context, string, time.Duration) (bool, error) {
	return true, nil
}
func (s *fakeSession) Close() error {
	atomic.AddInt32(&s.closed, 1)
	return nil
}

type fakeDriver struct {
	mu       sync.Mutex
	openErr  error
	failFrom int // fail every Open after this many successes; 0 disables
	sessions []*fakeSession
}

func (d *fakeDriver) Open(context.Context) (browser.Session, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.openErr != nil {
		return nil, &browser.LaunchError{Err: d.openErr}
	}
	if d.failFrom > 0 && len(d.sessions) >= d.failFrom {
		return nil, &browser.LaunchError{Err: context.DeadlineExceeded}
	}
	s := &fakeSession{}
	d.sessions = append(d.sessions, s)
	return s, nil
}

func (d *fakeDriver) opened() []*fakeSession {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*fakeSession(nil), d.sessions...)
}

// allClosedOnce reports whether every opened session was closed exactly once.
func (d *fakeDriver) allClosedOnce() bool {
	for _, s := range d.opened() {
		if atomic.LoadInt32(&s.closed) != 1 {
			return false
		}
	}
	return true
}

type fakeAuth struct {
	err   error
	calls int32
}

func (a *fakeAuth) Authenticate(context.Context, browser.Session, browser.Credentials) error {
	atomic.AddInt32(&a.calls, 1)
	if a.err != nil {
		return &browser.AuthenticationError{Reason: "rejected", Err: a.err}
	}
	return nil
}

type lookupFunc func(ctx context.Context, entity models.TrackedEntity) (string, error)

type fakeSource struct {
	name       string
	noSession  bool
	lookup     lookupFunc
	extract    lookupFunc
	reloadErr  error
	begunCycle int32

	mu    sync.Mutex
	calls []string
}

func (s *fakeSource) record(call string) {
	s.mu.Lock()
	s.calls = append(s.calls, call)
	s.mu.Unlock()
}

func (s *fakeSource) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func (s *fakeSource) Name() string { return s.name }
func (s *fakeSource) RequiresSession() bool { return !s.noSession }
func (s *fakeSource) BeginCycle() { atomic.AddInt32(&s.begunCycle, 1) }

func (s *fakeSource) Lookup(ctx context.Context, _ browser.Session, entity models.TrackedEntity) (string, error) {
	s.record("lookup:" + entity.ID)
	return s.lookup(ctx, entity)
}

func (s *fakeSource) Reload(context.Context, browser.Session) error {
	s.record("reload")
	return s.reloadErr
}

func (s *fakeSource) Extract(ctx context.Context, _ browser.Session, entity models.TrackedEntity) (string, error) {
	s.record("extract:" + entity.ID)
	if s.extract == nil {
		return s.lookup(ctx, entity)
	}
	return s.extract(ctx, entity)
}

func returns(text string, err error) lookupFunc {
	return func(context.Context, models.TrackedEntity) (string, error) { return text, err }
}

func byEntity(found map[string]string, missing error) lookupFunc {
	return func(_ context.Context, e models.TrackedEntity) (string, error) {
		if text, ok := found[e.ID]; ok {
			return text, nil
		}
		return "", missing
	}
}

type recordingObserver struct {
	mu      sync.Mutex
	lookups []models.LookupResult
	cycles  []models.RefreshReport
}

func (o *recordingObserver) LookupFinished(r models.LookupResult) {
	o.mu.Lock()
	o.lookups = append(o.lookups, r)
	o.mu.Unlock()
}

func (o *recordingObserver) CycleFinished(r models.RefreshReport) {
	o.mu.Lock()
	o.cycles = append(o.cycles, r)
	o.mu.Unlock()
}

func (o *recordingObserver) cycleCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.cycles)
}
