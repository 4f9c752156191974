package apisource

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/aleister1102/fleetvoice/internal/browser"
	"github.com/aleister1102/fleetvoice/internal/config"
	"github.com/aleister1102/fleetvoice/internal/models"
	"github.com/aleister1102/fleetvoice/internal/scrape"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

type authRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResponse struct {
	JWT string `json:"jwt"`
}

// Source queries the tracking provider's JSON API instead of the dashboard.
// The token and the positions list are fetched at most once per cycle, and a
// rejected login is not retried until the next cycle.
type Source struct {
	source       models.DataSource
	cfg          config.APISourceConfig
	client       *resty.Client
	singleEntity bool
	logger       zerolog.Logger

	mu        sync.Mutex
	token     string
	authErr   error
	positions []map[string]any
}

// New creates an API source. singleEntity enables the fallback of using the
// first position when the feed carries no plate field at all.
func New(source models.DataSource, cfg config.APISourceConfig, singleEntity bool, logger zerolog.Logger) *Source {
	baseURL := cfg.BaseURL
	if source.URL != "" {
		baseURL = source.URL
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(cfg.Timeout()).
		SetHeader("Accept", "application/json")

	return &Source{
		source:       source,
		cfg:          cfg,
		client:       client,
		singleEntity: singleEntity,
		logger:       logger.With().Str("component", "APISource").Str("source", source.Name).Logger(),
	}
}

func (s *Source) Name() string { return s.source.Name }

func (s *Source) RequiresSession() bool { return false }

// BeginCycle drops the token, login failure and positions cached by the
// previous cycle.
func (s *Source) BeginCycle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.authErr = nil
	s.positions = nil
}

// Lookup resolves entity from the positions feed, fetching it if needed.
func (s *Source) Lookup(ctx context.Context, _ browser.Session, entity models.TrackedEntity) (string, error) {
	return s.Extract(ctx, nil, entity)
}

// Reload refetches the positions feed, reusing the cycle's token.
func (s *Source) Reload(ctx context.Context, _ browser.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.positions = nil
	return s.ensurePositionsLocked(ctx)
}

func (s *Source) Extract(ctx context.Context, _ browser.Session, entity models.TrackedEntity) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensurePositionsLocked(ctx); err != nil {
		return "", err
	}
	return s.match(entity)
}

func (s *Source) ensurePositionsLocked(ctx context.Context) error {
	if s.positions != nil {
		return nil
	}
	if s.authErr != nil {
		return s.authErr
	}
	if s.token == "" {
		token, err := s.authenticate(ctx)
		if err != nil {
			s.authErr = err
			s.logger.Error().Err(err).Msg("API login failed, source disabled for this cycle")
			return err
		}
		s.token = token
	}
	positions, err := s.fetchPositions(ctx)
	if err != nil {
		return err
	}
	s.positions = positions
	s.logger.Debug().Int("positions", len(positions)).Msg("Fetched positions")
	return nil
}

func (s *Source) authenticate(ctx context.Context) (string, error) {
	var out authResponse
	res, err := s.client.R().
		SetContext(ctx).
		SetBody(authRequest{Username: s.cfg.Username, Password: s.cfg.Password}).
		SetResult(&out).
		Post(s.cfg.AuthPath)
	if err != nil {
		return "", s.authError("api login request failed", err)
	}
	if res.IsError() {
		return "", s.authError("api login rejected", fmt.Errorf("auth returned status %d", res.StatusCode()))
	}
	if out.JWT == "" {
		return "", s.authError("api login rejected", fmt.Errorf("auth response carries no jwt"))
	}
	return out.JWT, nil
}

func (s *Source) authError(reason string, err error) error {
	return &browser.AuthenticationError{Reason: reason, Err: s.navError(s.cfg.AuthPath, err)}
}

func (s *Source) fetchPositions(ctx context.Context) ([]map[string]any, error) {
	var positions []map[string]any
	res, err := s.client.R().
		SetContext(ctx).
		SetAuthToken(s.token).
		SetResult(&positions).
		Get(s.cfg.PositionsPath)
	if err != nil {
		return nil, s.navError(s.cfg.PositionsPath, err)
	}
	if res.IsError() {
		return nil, s.navError(s.cfg.PositionsPath, fmt.Errorf("positions returned status %d", res.StatusCode()))
	}
	if positions == nil {
		positions = []map[string]any{}
	}
	return positions, nil
}

func (s *Source) navError(path string, err error) error {
	return &scrape.NavigationError{Source: s.source.Name, URL: s.client.BaseURL + path, Err: err}
}

func (s *Source) match(entity models.TrackedEntity) (string, error) {
	if len(s.positions) == 0 {
		return "", fmt.Errorf("%w: positions feed is empty", scrape.ErrNotFound)
	}

	key := strings.TrimSpace(entity.MatchKey)
	anyPlate := false
	for _, item := range s.positions {
		plate, ok := lookupField(item, s.cfg.PlateField)
		if !ok {
			continue
		}
		anyPlate = true
		if plate == key {
			return s.address(item)
		}
	}

	if !anyPlate && s.singleEntity {
		return s.address(s.positions[0])
	}
	return "", fmt.Errorf("%w: no position with %s %q", scrape.ErrNotFound, s.cfg.PlateField, key)
}

func (s *Source) address(item map[string]any) (string, error) {
	raw, ok := lookupField(item, s.cfg.PositionField)
	if !ok {
		return "", &scrape.ExtractionError{Source: s.source.Name, Reason: fmt.Sprintf("position field %q missing", s.cfg.PositionField)}
	}
	addr := scrape.NormalizeAddress(raw)
	if addr == "" {
		return "", &scrape.ExtractionError{Source: s.source.Name, Reason: "position is empty"}
	}
	return addr, nil
}

// lookupField reads a dotted path such as "vehicle.plate" as trimmed text.
func lookupField(item map[string]any, path string) (string, bool) {
	var cur any = item
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return "", false
		}
		cur, ok = m[part]
		if !ok {
			return "", false
		}
	}
	switch v := cur.(type) {
	case nil:
		return "", false
	case string:
		return strings.TrimSpace(v), true
	default:
		return strings.TrimSpace(fmt.Sprint(v)), true
	}
}
