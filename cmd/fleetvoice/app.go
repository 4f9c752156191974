package main

import (
	"context"
	"fmt"

	"github.com/aleister1102/fleetvoice/internal/apisource"
	"github.com/aleister1102/fleetvoice/internal/browser"
	"github.com/aleister1102/fleetvoice/internal/cache"
	"github.com/aleister1102/fleetvoice/internal/config"
	"github.com/aleister1102/fleetvoice/internal/logger"
	"github.com/aleister1102/fleetvoice/internal/metrics"
	"github.com/aleister1102/fleetvoice/internal/models"
	"github.com/aleister1102/fleetvoice/internal/notifier"
	"github.com/aleister1102/fleetvoice/internal/procwatch"
	"github.com/aleister1102/fleetvoice/internal/scrape"
	"github.com/aleister1102/fleetvoice/internal/tracker"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
)

// app holds the wired core shared by the serve and refresh commands.
type app struct {
	cfg       *config.GlobalConfig
	logger    zerolog.Logger
	registry  *prometheus.Registry
	store     *cache.Store
	watcher   *procwatch.Watcher
	notifier  *notifier.DiscordNotifier
	refresher *tracker.Refresher
}

// loadConfig reads .env, the config file and environment, validates the
// result and builds the root logger.
func loadConfig(path string) (*config.GlobalConfig, zerolog.Logger, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("load .env: %w", err)
	}
	cfg, err := config.LoadGlobalConfig(path)
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("load config: %w", err)
	}
	if err := config.ValidateConfig(cfg); err != nil {
		return nil, zerolog.Nop(), err
	}
	log, err := logger.New(cfg.LogConfig)
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("initialize logger: %w", err)
	}
	return cfg, log, nil
}

// newApp wires the core. Background refresh cycles run under ctx.
func newApp(ctx context.Context, cfg *config.GlobalConfig, log zerolog.Logger) *app {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	store := cache.NewStore()
	m := metrics.New(registry, store.Len)
	watcher := procwatch.New(m.SetBrowserProcesses, log)

	observers := tracker.Observers{m, watcher}
	discord := notifier.NewDiscordNotifier(cfg.Notification, log)
	if discord != nil {
		observers = append(observers, discord)
	}

	entities := cfg.TrackedEntities()
	coord := tracker.NewCoordinator(
		browser.NewRodDriver(cfg.Browser, log),
		browser.NewAuthenticator(cfg.Dashboard.Login, cfg.Lookup.AuthConfirmTimeout(), cfg.Lookup.AuthFallbackTimeout(), log),
		buildSources(cfg, log),
		entities,
		store,
		observers,
		tracker.Options{
			Mode:            cfg.Lookup.Mode(),
			MaxParallel:     cfg.Lookup.MaxParallel,
			RecoveryEnabled: cfg.Lookup.RecoveryEnabled,
			RecoveryDelay:   cfg.Lookup.RecoveryDelay(),
			Credentials: browser.Credentials{
				Username: cfg.Dashboard.Username,
				Password: cfg.Dashboard.Password,
			},
		},
		log,
	)

	log.Info().
		Int("entities", len(entities)).
		Int("sources", len(cfg.Sources)).
		Str("mode", string(cfg.Lookup.Mode())).
		Bool("alerts", discord != nil).
		Msg("Core initialized")

	return &app{
		cfg:       cfg,
		logger:    log,
		registry:  registry,
		store:     store,
		watcher:   watcher,
		notifier:  discord,
		refresher: tracker.NewRefresher(ctx, coord, log),
	}
}

// buildSources turns the configured source list into lookup sources, keeping
// the configured order.
func buildSources(cfg *config.GlobalConfig, log zerolog.Logger) []tracker.Source {
	navigator := scrape.NewNavigator(scrape.NewGridQuery(cfg.Dashboard.Grid), cfg.Lookup.PollInterval(), log).
		WithNavigationTimeout(cfg.Lookup.NavigationTimeout())
	dashOpts := scrape.DashboardOptions{
		ReadyTimeout: cfg.Lookup.ReadyTimeout(),
		RowTimeout:   cfg.Lookup.RowTimeout(),
	}
	singleEntity := len(cfg.Entities) == 1

	sources := make([]tracker.Source, 0, len(cfg.Sources))
	for _, ds := range cfg.DataSources() {
		switch ds.Kind {
		case models.SourceKindAPI:
			sources = append(sources, apisource.New(ds, cfg.APISource, singleEntity, log))
		default:
			locator := scrape.NewRowLocator(cfg.Dashboard.Grid, ds.Name)
			sources = append(sources, scrape.NewDashboardSource(ds, navigator, locator, dashOpts, log))
		}
	}
	return sources
}

// close waits for background work that outlives a cycle.
func (a *app) close() {
	a.refresher.Wait()
	if a.notifier != nil {
		a.notifier.Close()
	}
}
