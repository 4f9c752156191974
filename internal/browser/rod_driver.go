package browser

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/aleister1102/fleetvoice/internal/config"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/rs/zerolog"
)

const defaultElementTimeout = 15 * time.Second

// RodDriver launches a dedicated Chrome process per session.
type RodDriver struct {
	config         config.BrowserConfig
	elementTimeout time.Duration
	logger         zerolog.Logger
}

// NewRodDriver creates a driver from the browser config section.
func NewRodDriver(cfg config.BrowserConfig, logger zerolog.Logger) *RodDriver {
	return &RodDriver{
		config:         cfg,
		elementTimeout: defaultElementTimeout,
		logger:         logger.With().Str("component", "RodDriver").Logger(),
	}
}

// Open launches the browser, connects and creates the session's page. Any
// failure is returned as a *LaunchError with nothing left running.
func (d *RodDriver) Open(ctx context.Context) (Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, &LaunchError{Err: err}
	}
	l := d.newLauncher()

	controlURL, err := l.Launch()
	if err != nil {
		l.Kill()
		return nil, &LaunchError{Err: err}
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, &LaunchError{Err: fmt.Errorf("connect: %w", err)}
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = browser.Close()
		l.Kill()
		return nil, &LaunchError{Err: fmt.Errorf("create page: %w", err)}
	}

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:  d.config.WindowWidth,
		Height: d.config.WindowHeight,
	}); err != nil {
		d.logger.Warn().Err(err).Msg("Failed to set viewport")
	}
	if d.config.UserAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: d.config.UserAgent}); err != nil {
			d.logger.Warn().Err(err).Msg("Failed to set user agent")
		}
	}

	d.logger.Debug().Int("pid", l.PID()).Msg("Browser session opened")

	return &rodSession{
		launcher:       l,
		browser:        browser,
		page:           page,
		navTimeout:     time.Duration(d.config.PageLoadTimeoutSecs) * time.Second,
		elementTimeout: d.elementTimeout,
		ownsDataDir:    d.config.UserDataDir == "",
		logger:         d.logger,
	}, nil
}

func (d *RodDriver) newLauncher() *launcher.Launcher {
	l := launcher.New().
		Headless(d.config.Headless).
		Leakless(true)

	if d.config.ChromePath != "" {
		l = l.Bin(d.config.ChromePath)
	}
	if d.config.UserDataDir != "" {
		l = l.UserDataDir(d.config.UserDataDir)
	}
	if d.config.NoSandbox {
		l = l.NoSandbox(true)
	}

	l = l.
		Set("disable-dev-shm-usage").
		Set("disable-gpu").
		Set("no-first-run").
		Set("disable-default-apps").
		Set("disable-sync")

	if d.config.DisableImages {
		l = l.Set("blink-settings", "imagesEnabled=false")
	}

	for _, arg := range d.config.BrowserArgs {
		name, value, hasValue := strings.Cut(strings.TrimLeft(arg, "-"), "=")
		if name == "" {
			continue
		}
		if hasValue {
			l = l.Set(flags.Flag(name), value)
		} else {
			l = l.Set(flags.Flag(name))
		}
	}
	return l
}

type rodSession struct {
	launcher       *launcher.Launcher
	browser        *rod.Browser
	page           *rod.Page
	navTimeout     time.Duration
	elementTimeout time.Duration
	ownsDataDir    bool
	logger         zerolog.Logger

	closeOnce sync.Once
	closeErr  error
}

func (s *rodSession) timed(ctx context.Context, d time.Duration) *rod.Page {
	p := s.page.Context(ctx)
	if d > 0 {
		p = p.Timeout(d)
	}
	return p
}

func (s *rodSession) Navigate(ctx context.Context, url string) error {
	p := s.timed(ctx, s.navTimeout)
	if err := p.Navigate(url); err != nil {
		return err
	}
	return p.WaitLoad()
}

func (s *rodSession) Reload(ctx context.Context) error {
	p := s.timed(ctx, s.navTimeout)
	if err := p.Reload(); err != nil {
		return err
	}
	return p.WaitLoad()
}

func (s *rodSession) Snapshot(ctx context.Context) (string, error) {
	return s.page.Context(ctx).HTML()
}

func (s *rodSession) Fill(ctx context.Context, selector, value string) error {
	el, err := s.timed(ctx, s.elementTimeout).Element(selector)
	if err != nil {
		return fmt.Errorf("element %q: %w", selector, err)
	}
	if err := el.SelectAllText(); err != nil {
		return err
	}
	return el.Input(value)
}

func (s *rodSession) SubmitWithEnter(ctx context.Context, selector string, timeout time.Duration) (bool, error) {
	return s.actAndWaitNavigation(ctx, selector, timeout, func(el *rod.Element) error {
		return el.Type(input.Enter)
	})
}

func (s *rodSession) ClickAndWait(ctx context.Context, selector string, timeout time.Duration) (bool, error) {
	return s.actAndWaitNavigation(ctx, selector, timeout, func(el *rod.Element) error {
		return el.Click(proto.InputMouseButtonLeft, 1)
	})
}

// actAndWaitNavigation arms the navigation listener before acting so a fast
// navigation is not missed.
func (s *rodSession) actAndWaitNavigation(ctx context.Context, selector string, timeout time.Duration, act func(*rod.Element) error) (bool, error) {
	el, err := s.timed(ctx, s.elementTimeout).Element(selector)
	if err != nil {
		return false, fmt.Errorf("element %q: %w", selector, err)
	}

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	wait := s.page.Context(waitCtx).WaitNavigation(proto.PageLifecycleEventNameLoad)

	if err := act(el); err != nil {
		return false, err
	}
	wait()

	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	return waitCtx.Err() == nil, nil
}

func (s *rodSession) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.browser.Close()
		s.launcher.Kill()
		if s.ownsDataDir {
			s.launcher.Cleanup()
		}
		s.logger.Debug().Msg("Browser session closed")
	})
	return s.closeErr
}
