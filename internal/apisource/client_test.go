package apisource

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/aleister1102/fleetvoice/internal/browser"
	"github.com/aleister1102/fleetvoice/internal/config"
	"github.com/aleister1102/fleetvoice/internal/models"
	"github.com/aleister1102/fleetvoice/internal/scrape"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	positions   any
	authStatus  int
	authCalls   int32
	fetchCalls  int32
	lastAuthHdr atomic.Value
}

func (f *fakeAPI) server(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/sessions/auth/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&f.authCalls, 1)
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		var body authRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if f.authStatus != 0 {
			w.WriteHeader(f.authStatus)
			return
		}
		if body.Username != "user" || body.Password != "pass" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(authResponse{JWT: "token-123"})
	})
	mux.HandleFunc("/positions", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&f.fetchCalls, 1)
		f.lastAuthHdr.Store(r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(f.positions)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestSource(url string, singleEntity bool) *Source {
	cfg := config.NewDefaultAPISourceConfig()
	cfg.Username = "user"
	cfg.Password = "pass"
	return New(models.DataSource{Name: "api", Kind: models.SourceKindAPI, URL: url}, cfg, singleEntity, zerolog.Nop())
}

func TestSource_MatchesPlateExactly(t *testing.T) {
	api := &fakeAPI{positions: []map[string]any{
		{"plate": "SBA12", "position": "Calle Uno 1, Pando, Canelones"},
		{"plate": "SBA1", "position": "Av. Italia 2000, Montevideo, Uruguay"},
	}}
	src := newTestSource(api.server(t).URL, false)

	addr, err := src.Lookup(context.Background(), nil, models.TrackedEntity{ID: "bus-1", MatchKey: "SBA1"})
	require.NoError(t, err)
	assert.Equal(t, "Av. Italia 2000, Montevideo", addr)
	assert.Equal(t, "Bearer token-123", api.lastAuthHdr.Load())

	addr, err = src.Lookup(context.Background(), nil, models.TrackedEntity{ID: "bus-2", MatchKey: "SBA12"})
	require.NoError(t, err)
	assert.Equal(t, "Calle Uno 1, Pando", addr)

	assert.Equal(t, int32(1), atomic.LoadInt32(&api.authCalls), "token is fetched once per cycle")
	assert.Equal(t, int32(1), atomic.LoadInt32(&api.fetchCalls))
	assert.False(t, src.RequiresSession())
}

func TestSource_BeginCycleRefetches(t *testing.T) {
	api := &fakeAPI{positions: []map[string]any{{"plate": "A1", "position": "X 1, Y"}}}
	src := newTestSource(api.server(t).URL, false)
	entity := models.TrackedEntity{ID: "bus-1", MatchKey: "A1"}

	_, err := src.Lookup(context.Background(), nil, entity)
	require.NoError(t, err)
	src.BeginCycle()
	_, err = src.Lookup(context.Background(), nil, entity)
	require.NoError(t, err)

	assert.Equal(t, int32(2), atomic.LoadInt32(&api.authCalls))
	assert.Equal(t, int32(2), atomic.LoadInt32(&api.fetchCalls))
}

func TestSource_ReloadKeepsToken(t *testing.T) {
	api := &fakeAPI{positions: []map[string]any{{"plate": "A1", "position": "X 1, Y"}}}
	src := newTestSource(api.server(t).URL, false)

	require.NoError(t, src.Reload(context.Background(), nil))
	require.NoError(t, src.Reload(context.Background(), nil))

	assert.Equal(t, int32(1), atomic.LoadInt32(&api.authCalls))
	assert.Equal(t, int32(2), atomic.LoadInt32(&api.fetchCalls))
}

func TestSource_RejectedLoginIsNotRetriedWithinCycle(t *testing.T) {
	api := &fakeAPI{authStatus: http.StatusUnauthorized}
	src := newTestSource(api.server(t).URL, false)
	ctx := context.Background()

	for _, key := range []string{"A1", "B2", "C3"} {
		entity := models.TrackedEntity{ID: "bus-" + key, MatchKey: key}
		_, err := src.Lookup(ctx, nil, entity)
		var authErr *browser.AuthenticationError
		require.ErrorAs(t, err, &authErr)

		assert.ErrorAs(t, src.Reload(ctx, nil), &authErr)
		_, err = src.Extract(ctx, nil, entity)
		assert.ErrorAs(t, err, &authErr)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&api.authCalls))
	assert.Zero(t, atomic.LoadInt32(&api.fetchCalls))

	src.BeginCycle()
	_, err := src.Lookup(ctx, nil, models.TrackedEntity{ID: "bus-1", MatchKey: "A1"})
	require.Error(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&api.authCalls), "a new cycle logs in again")
}

func TestSource_SingleEntityUsesFirstPosition(t *testing.T) {
	api := &fakeAPI{positions: []map[string]any{
		{"position": "Ruta 8 km 30, Pando, Canelones"},
		{"position": "Somewhere else"},
	}}
	entity := models.TrackedEntity{ID: "bus-1", MatchKey: "ANY"}

	addr, err := newTestSource(api.server(t).URL, true).Lookup(context.Background(), nil, entity)
	require.NoError(t, err)
	assert.Equal(t, "Ruta 8 km 30, Pando", addr)

	_, err = newTestSource(api.server(t).URL, false).Lookup(context.Background(), nil, entity)
	assert.ErrorIs(t, err, scrape.ErrNotFound)
}

func TestSource_NestedFieldsAndNumbers(t *testing.T) {
	api := &fakeAPI{positions: []map[string]any{
		{"vehicle": map[string]any{"plate": 4521}, "location": map[string]any{"address": "Colonia 1, Centro"}},
	}}
	cfg := config.NewDefaultAPISourceConfig()
	cfg.Username, cfg.Password = "user", "pass"
	cfg.PlateField = "vehicle.plate"
	cfg.PositionField = "location.address"
	src := New(models.DataSource{Name: "api", URL: api.server(t).URL}, cfg, false, zerolog.Nop())

	addr, err := src.Lookup(context.Background(), nil, models.TrackedEntity{ID: "bus-1", MatchKey: "4521"})

	require.NoError(t, err)
	assert.Equal(t, "Colonia 1, Centro", addr)
}

func TestSource_Failures(t *testing.T) {
	tests := []struct {
		name     string
		api      *fakeAPI
		wantNav  bool
		wantOut  models.Outcome
		matchKey string
	}{
		{
			name:     "auth rejected",
			api:      &fakeAPI{authStatus: http.StatusUnauthorized},
			wantNav:  true,
			wantOut:  models.OutcomeError,
			matchKey: "A1",
		},
		{
			name:     "empty feed",
			api:      &fakeAPI{positions: []map[string]any{}},
			wantOut:  models.OutcomeNotFound,
			matchKey: "A1",
		},
		{
			name:     "plate absent",
			api:      &fakeAPI{positions: []map[string]any{{"plate": "B2", "position": "X"}}},
			wantOut:  models.OutcomeNotFound,
			matchKey: "A1",
		},
		{
			name:     "position missing",
			api:      &fakeAPI{positions: []map[string]any{{"plate": "A1"}}},
			wantOut:  models.OutcomeNotFound,
			matchKey: "A1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := newTestSource(tt.api.server(t).URL, false)

			_, err := src.Lookup(context.Background(), nil, models.TrackedEntity{ID: "bus-1", MatchKey: tt.matchKey})

			require.Error(t, err)
			var navErr *scrape.NavigationError
			assert.Equal(t, tt.wantNav, errors.As(err, &navErr))
			assert.Equal(t, tt.wantOut, scrape.Classify(err))
		})
	}
}
