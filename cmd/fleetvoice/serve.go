package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aleister1102/fleetvoice/internal/scheduler"
	"github.com/aleister1102/fleetvoice/internal/server"
	"github.com/aleister1102/fleetvoice/internal/voice"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 15 * time.Second

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve /update and /voice over HTTP, with optional scheduled refreshes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(*configPath)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a := newApp(ctx, cfg, log)
			defer a.close()

			deps := server.Dependencies{
				Refresher:     a.refresher,
				Cache:         a.store,
				Formatter:     voice.NewFormatter(cfg.Voice),
				Gatherer:      a.registry,
				Resources:     a.watcher,
				DefaultEntity: cfg.DefaultEntityID(),
				StaleAfter:    cfg.Voice.StaleAfter(),
			}

			var sched *scheduler.Scheduler
			if cfg.Schedule.Enabled() {
				sched, err = scheduler.NewScheduler(cfg.Schedule, a.refresher, log)
				if err != nil {
					return err
				}
				deps.Scheduler = sched
				sched.Start()
				defer func() {
					if err := sched.Stop(); err != nil {
						log.Warn().Err(err).Msg("Scheduler did not stop cleanly")
					}
				}()
			}

			srv := server.New(cfg.Server.Address(), deps, log)
			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.Start()
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			log.Info().Msg("Shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
				log.Warn().Err(err).Msg("HTTP server did not shut down cleanly")
			}
			return nil
		},
	}
}
