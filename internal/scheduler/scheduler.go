package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/aleister1102/fleetvoice/internal/config"
	"github.com/aleister1102/fleetvoice/internal/models"
	"github.com/aleister1102/fleetvoice/internal/tracker"
	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"
)

const jobName = "refresh"

// ErrDisabled is returned when the schedule config names neither a cron
// expression nor an interval.
var ErrDisabled = errors.New("schedule is not configured")

// Runner runs one blocking refresh cycle over the given entities (all when
// none are named).
type Runner interface {
	RunSync(ctx context.Context, entityIDs ...string) (models.RefreshReport, error)
}

// Scheduler triggers refresh cycles periodically. Runs never overlap: a tick
// that fires while a cycle is still running is rescheduled.
type Scheduler struct {
	mu        sync.Mutex
	scheduler gocron.Scheduler
	job       gocron.Job
	runner    Runner
	schedule  string
	ctx       context.Context
	cancel    context.CancelFunc
	isRunning bool
	logger    zerolog.Logger
}

// NewScheduler registers the refresh job. Interval schedules fire once
// immediately on Start; cron schedules wait for their first match.
func NewScheduler(cfg config.ScheduleConfig, runner Runner, logger zerolog.Logger) (*Scheduler, error) {
	if !cfg.Enabled() {
		return nil, ErrDisabled
	}

	definition, startNow, schedule := jobDefinition(cfg)

	gs, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create cron scheduler: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		scheduler: gs,
		runner:    runner,
		schedule:  schedule,
		ctx:       ctx,
		cancel:    cancel,
		logger:    logger.With().Str("component", "Scheduler").Logger(),
	}

	opts := []gocron.JobOption{
		gocron.WithName(jobName),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	}
	if startNow {
		opts = append(opts, gocron.WithStartAt(gocron.WithStartImmediately()))
	}

	job, err := gs.NewJob(definition, gocron.NewTask(s.runCycle), opts...)
	if err != nil {
		cancel()
		_ = gs.Shutdown()
		return nil, fmt.Errorf("create scheduled job %s: %w", jobName, err)
	}
	s.job = job
	return s, nil
}

func jobDefinition(cfg config.ScheduleConfig) (gocron.JobDefinition, bool, string) {
	if cfg.Cron != "" {
		withSeconds := len(strings.Fields(cfg.Cron)) == 6
		return gocron.CronJob(cfg.Cron, withSeconds), false, cfg.Cron
	}
	return gocron.DurationJob(cfg.Interval()), true, "every " + cfg.Interval().String()
}

// Start begins executing the refresh job.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return
	}
	s.scheduler.Start()
	s.isRunning = true
	s.logger.Info().Str("schedule", s.schedule).Msg("Scheduler started")
}

// Stop cancels an in-flight cycle and waits for the job to return.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancel()
	err := s.scheduler.Shutdown()
	if s.isRunning {
		s.logger.Info().Msg("Scheduler stopped")
	}
	s.isRunning = false
	return err
}

// NextRun reports when the refresh job fires next.
func (s *Scheduler) NextRun() (time.Time, error) {
	return s.job.NextRun()
}

func (s *Scheduler) runCycle() {
	report, err := s.runner.RunSync(s.ctx)
	if errors.Is(err, tracker.ErrRefreshInProgress) {
		s.logger.Debug().Msg("Skipping scheduled refresh, a cycle is already running")
		return
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("Scheduled refresh failed")
		return
	}
	s.logger.Info().
		Str("cycle_id", report.CycleID).
		Int("found", report.FoundCount()).
		Int("entities", len(report.Results)).
		Dur("duration", report.Duration()).
		Msg("Scheduled refresh finished")
}
