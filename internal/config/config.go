package config

import (
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/aleister1102/fleetvoice/internal/models"
)

type ServerConfig struct {
	Host string `json:"host,omitempty" yaml:"host,omitempty"`
	Port int    `json:"port,omitempty" yaml:"port,omitempty" validate:"omitempty,min=1,max=65535"`
}

func NewDefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host: DefaultServerHost,
		Port: DefaultServerPort,
	}
}

// Address returns the host:port pair the HTTP shell listens on.
func (sc ServerConfig) Address() string {
	return net.JoinHostPort(sc.Host, strconv.Itoa(sc.Port))
}

type BrowserConfig struct {
	ChromePath          string   `json:"chrome_path,omitempty" yaml:"chrome_path,omitempty"`
	UserDataDir         string   `json:"user_data_dir,omitempty" yaml:"user_data_dir,omitempty"`
	Headless            bool     `json:"headless" yaml:"headless"`
	NoSandbox           bool     `json:"no_sandbox" yaml:"no_sandbox"`
	DisableImages       bool     `json:"disable_images" yaml:"disable_images"`
	UserAgent           string   `json:"user_agent,omitempty" yaml:"user_agent,omitempty"`
	WindowWidth         int      `json:"window_width,omitempty" yaml:"window_width,omitempty" validate:"omitempty,min=100"`
	WindowHeight        int      `json:"window_height,omitempty" yaml:"window_height,omitempty" validate:"omitempty,min=100"`
	PageLoadTimeoutSecs int      `json:"page_load_timeout_secs,omitempty" yaml:"page_load_timeout_secs,omitempty" validate:"omitempty,min=1"`
	BrowserArgs         []string `json:"browser_args,omitempty" yaml:"browser_args,omitempty"`
}

func NewDefaultBrowserConfig() BrowserConfig {
	return BrowserConfig{
		Headless:            true,
		NoSandbox:           true,
		DisableImages:       true,
		UserAgent:           DefaultBrowserUserAgent,
		WindowWidth:         DefaultBrowserWindowWidth,
		WindowHeight:        DefaultBrowserWindowHeight,
		PageLoadTimeoutSecs: DefaultBrowserPageLoadTimeoutSecs,
	}
}

// LoginFormConfig describes the dashboard's login page.
type LoginFormConfig struct {
	URL              string `json:"url,omitempty" yaml:"url,omitempty" validate:"omitempty,url"`
	UsernameSelector string `json:"username_selector,omitempty" yaml:"username_selector,omitempty"`
	PasswordSelector string `json:"password_selector,omitempty" yaml:"password_selector,omitempty"`
	SubmitSelector   string `json:"submit_selector,omitempty" yaml:"submit_selector,omitempty"`
	// SuccessSelector, when set, must be present after login navigation.
	SuccessSelector string `json:"success_selector,omitempty" yaml:"success_selector,omitempty"`
}

// GridConfig holds the selectors of the data grid. UI drift is fixed here,
// not in code.
type GridConfig struct {
	Container        string `json:"container,omitempty" yaml:"container,omitempty"`
	Row              string `json:"row,omitempty" yaml:"row,omitempty"`
	IdentifierColumn string `json:"identifier_column,omitempty" yaml:"identifier_column,omitempty"`
	AddressColumn    string `json:"address_column,omitempty" yaml:"address_column,omitempty"`
}

type DashboardConfig struct {
	Username string          `json:"username,omitempty" yaml:"username,omitempty"`
	Password string          `json:"password,omitempty" yaml:"password,omitempty"`
	Login    LoginFormConfig `json:"login,omitempty" yaml:"login,omitempty"`
	Grid     GridConfig      `json:"grid,omitempty" yaml:"grid,omitempty"`
}

func NewDefaultDashboardConfig() DashboardConfig {
	return DashboardConfig{
		Login: LoginFormConfig{
			UsernameSelector: DefaultLoginUsernameSelector,
			PasswordSelector: DefaultLoginPasswordSelector,
			SubmitSelector:   DefaultLoginSubmitSelector,
		},
		Grid: GridConfig{
			Container:        DefaultGridContainer,
			Row:              DefaultGridRow,
			IdentifierColumn: DefaultGridIdentifierColumn,
			AddressColumn:    DefaultGridAddressColumn,
		},
	}
}

type SourceConfig struct {
	Name string `json:"name" yaml:"name" validate:"required"`
	Kind string `json:"kind,omitempty" yaml:"kind,omitempty" validate:"omitempty,sourcekind"`
	URL  string `json:"url,omitempty" yaml:"url,omitempty" validate:"omitempty,url"`
}

// ToModel converts the config entry into the immutable DataSource model.
func (sc SourceConfig) ToModel() models.DataSource {
	kind := models.SourceKind(strings.ToLower(sc.Kind))
	if kind == "" {
		kind = models.SourceKindDashboard
	}
	return models.DataSource{Name: sc.Name, Kind: kind, URL: sc.URL}
}

type EntityConfig struct {
	ID       string `json:"id" yaml:"id" validate:"required"`
	MatchKey string `json:"match_key" yaml:"match_key" validate:"required"`
}

// ToModel converts the config entry into the immutable TrackedEntity model.
func (ec EntityConfig) ToModel() models.TrackedEntity {
	return models.TrackedEntity{ID: ec.ID, MatchKey: ec.MatchKey}
}

type LookupConfig struct {
	PollIntervalMs          int    `json:"poll_interval_ms,omitempty" yaml:"poll_interval_ms,omitempty" validate:"omitempty,min=50"`
	ReadyTimeoutSecs        int    `json:"ready_timeout_secs,omitempty" yaml:"ready_timeout_secs,omitempty" validate:"omitempty,min=1"`
	RowTimeoutSecs          int    `json:"row_timeout_secs,omitempty" yaml:"row_timeout_secs,omitempty" validate:"omitempty,min=1"`
	NavigationTimeoutSecs   int    `json:"navigation_timeout_secs,omitempty" yaml:"navigation_timeout_secs,omitempty" validate:"omitempty,min=1"`
	AuthConfirmTimeoutSecs  int    `json:"auth_confirm_timeout_secs,omitempty" yaml:"auth_confirm_timeout_secs,omitempty" validate:"omitempty,min=1"`
	AuthFallbackTimeoutSecs int    `json:"auth_fallback_timeout_secs,omitempty" yaml:"auth_fallback_timeout_secs,omitempty" validate:"omitempty,min=1"`
	RecoveryEnabled         bool   `json:"recovery_enabled" yaml:"recovery_enabled"`
	RecoveryDelaySecs       int    `json:"recovery_delay_secs,omitempty" yaml:"recovery_delay_secs,omitempty" validate:"omitempty,min=0"`
	Concurrency             string `json:"concurrency,omitempty" yaml:"concurrency,omitempty" validate:"omitempty,concurrency"`
	MaxParallel             int    `json:"max_parallel,omitempty" yaml:"max_parallel,omitempty" validate:"omitempty,min=1"`
}

func NewDefaultLookupConfig() LookupConfig {
	return LookupConfig{
		PollIntervalMs:          DefaultLookupPollIntervalMs,
		ReadyTimeoutSecs:        DefaultLookupReadyTimeoutSecs,
		RowTimeoutSecs:          DefaultLookupRowTimeoutSecs,
		NavigationTimeoutSecs:   DefaultLookupNavigationTimeoutSecs,
		AuthConfirmTimeoutSecs:  DefaultLookupAuthConfirmTimeoutSecs,
		AuthFallbackTimeoutSecs: DefaultLookupAuthFallbackTimeoutSecs,
		RecoveryEnabled:         true,
		RecoveryDelaySecs:       DefaultLookupRecoveryDelaySecs,
		Concurrency:             DefaultLookupConcurrency,
		MaxParallel:             DefaultLookupMaxParallel,
	}
}

func (lc LookupConfig) PollInterval() time.Duration {
	return time.Duration(lc.PollIntervalMs) * time.Millisecond
}

func (lc LookupConfig) ReadyTimeout() time.Duration {
	return time.Duration(lc.ReadyTimeoutSecs) * time.Second
}

func (lc LookupConfig) RowTimeout() time.Duration {
	return time.Duration(lc.RowTimeoutSecs) * time.Second
}

func (lc LookupConfig) NavigationTimeout() time.Duration {
	return time.Duration(lc.NavigationTimeoutSecs) * time.Second
}

func (lc LookupConfig) AuthConfirmTimeout() time.Duration {
	return time.Duration(lc.AuthConfirmTimeoutSecs) * time.Second
}

func (lc LookupConfig) AuthFallbackTimeout() time.Duration {
	return time.Duration(lc.AuthFallbackTimeoutSecs) * time.Second
}

func (lc LookupConfig) RecoveryDelay() time.Duration {
	return time.Duration(lc.RecoveryDelaySecs) * time.Second
}

// Mode returns the configured concurrency mode, defaulting to shared.
func (lc LookupConfig) Mode() models.ConcurrencyMode {
	if strings.EqualFold(lc.Concurrency, string(models.ConcurrencyParallel)) {
		return models.ConcurrencyParallel
	}
	return models.ConcurrencyShared
}

type VoiceConfig struct {
	Voice    string `json:"voice,omitempty" yaml:"voice,omitempty"`
	Language string `json:"language,omitempty" yaml:"language,omitempty"`
	// Template is the spoken sentence; {address} is replaced by the cached text.
	Template       string `json:"template,omitempty" yaml:"template,omitempty"`
	Apology        string `json:"apology,omitempty" yaml:"apology,omitempty"`
	StaleAfterSecs int    `json:"stale_after_secs,omitempty" yaml:"stale_after_secs,omitempty" validate:"omitempty,min=0"`
	// DefaultEntity answers GET /voice without an entity suffix. Empty means
	// the first configured entity.
	DefaultEntity string `json:"default_entity,omitempty" yaml:"default_entity,omitempty"`
}

func NewDefaultVoiceConfig() VoiceConfig {
	return VoiceConfig{
		Voice:    DefaultVoiceName,
		Language: DefaultVoiceLanguage,
		Template: DefaultVoiceTemplate,
		Apology:  DefaultVoiceApology,
	}
}

func (vc VoiceConfig) StaleAfter() time.Duration {
	return time.Duration(vc.StaleAfterSecs) * time.Second
}

type APISourceConfig struct {
	BaseURL       string `json:"base_url,omitempty" yaml:"base_url,omitempty" validate:"omitempty,url"`
	AuthPath      string `json:"auth_path,omitempty" yaml:"auth_path,omitempty"`
	PositionsPath string `json:"positions_path,omitempty" yaml:"positions_path,omitempty"`
	Username      string `json:"username,omitempty" yaml:"username,omitempty"`
	Password      string `json:"password,omitempty" yaml:"password,omitempty"`
	PlateField    string `json:"plate_field,omitempty" yaml:"plate_field,omitempty"`
	PositionField string `json:"position_field,omitempty" yaml:"position_field,omitempty"`
	TimeoutSecs   int    `json:"timeout_secs,omitempty" yaml:"timeout_secs,omitempty" validate:"omitempty,min=1"`
}

func NewDefaultAPISourceConfig() APISourceConfig {
	return APISourceConfig{
		AuthPath:      DefaultAPIAuthPath,
		PositionsPath: DefaultAPIPositionsPath,
		PlateField:    DefaultAPIPlateField,
		PositionField: DefaultAPIPositionField,
		TimeoutSecs:   DefaultAPITimeoutSecs,
	}
}

func (ac APISourceConfig) Timeout() time.Duration {
	return time.Duration(ac.TimeoutSecs) * time.Second
}

// ScheduleConfig enables periodic refresh cycles. Cron takes precedence over
// IntervalSecs; both empty disables the scheduler.
type ScheduleConfig struct {
	IntervalSecs int    `json:"interval_secs,omitempty" yaml:"interval_secs,omitempty" validate:"omitempty,min=10"`
	Cron         string `json:"cron,omitempty" yaml:"cron,omitempty"`
}

func (sc ScheduleConfig) Enabled() bool {
	return sc.Cron != "" || sc.IntervalSecs > 0
}

func (sc ScheduleConfig) Interval() time.Duration {
	return time.Duration(sc.IntervalSecs) * time.Second
}

type NotificationConfig struct {
	DiscordWebhookURL  string `json:"discord_webhook_url,omitempty" yaml:"discord_webhook_url,omitempty" validate:"omitempty,url"`
	NotifyOnExhaustion bool   `json:"notify_on_exhaustion" yaml:"notify_on_exhaustion"`
	TimeoutSecs        int    `json:"timeout_secs,omitempty" yaml:"timeout_secs,omitempty" validate:"omitempty,min=1"`
}

func NewDefaultNotificationConfig() NotificationConfig {
	return NotificationConfig{TimeoutSecs: DefaultNotificationTimeoutSecs}
}

func (nc NotificationConfig) Timeout() time.Duration {
	return time.Duration(nc.TimeoutSecs) * time.Second
}
