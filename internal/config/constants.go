package config

const (
	// Server Defaults
	DefaultServerHost = "0.0.0.0"
	DefaultServerPort = 8080

	// Browser Defaults
	DefaultBrowserUserAgent           = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	DefaultBrowserWindowWidth         = 1920
	DefaultBrowserWindowHeight        = 1080
	DefaultBrowserPageLoadTimeoutSecs = 30

	// Grid Defaults
	DefaultGridContainer        = ".ag-center-cols-container"
	DefaultGridRow              = "div[role='row']"
	DefaultGridIdentifierColumn = "div[col-id='plate']"
	DefaultGridAddressColumn    = "div[col-id='address']"

	// Login form Defaults
	DefaultLoginUsernameSelector = "input[name='username']"
	DefaultLoginPasswordSelector = "input[name='password']"
	DefaultLoginSubmitSelector   = "button[type='submit']"

	// Lookup Defaults
	DefaultLookupPollIntervalMs          = 500
	DefaultLookupReadyTimeoutSecs        = 10
	DefaultLookupRowTimeoutSecs          = 10
	DefaultLookupNavigationTimeoutSecs   = 30
	DefaultLookupAuthConfirmTimeoutSecs  = 5
	DefaultLookupAuthFallbackTimeoutSecs = 60
	DefaultLookupRecoveryDelaySecs       = 15
	DefaultLookupConcurrency             = "shared"
	DefaultLookupMaxParallel             = 2

	// Voice Defaults
	DefaultVoiceName     = "Polly.Andres-Neural"
	DefaultVoiceLanguage = "es-MX"
	DefaultVoiceTemplate = "El bus se encuentra en {address}"
	DefaultVoiceApology  = "Lo sentimos, no se pudo obtener la información en este momento. Por favor, intente nuevamente más tarde."

	// API source Defaults
	DefaultAPIAuthPath      = "/sessions/auth/"
	DefaultAPIPositionsPath = "/positions"
	DefaultAPIPlateField    = "plate"
	DefaultAPIPositionField = "position"
	DefaultAPITimeoutSecs   = 20

	// Notification Defaults
	DefaultNotificationTimeoutSecs = 20

	// Log Defaults
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "console"
	DefaultLogFile       = ""
	DefaultMaxLogSizeMB  = 100
	DefaultMaxLogBackups = 3
)

// Environment variables consulted after the config file is parsed.
const (
	EnvConfigPath        = "FLEETVOICE_CONFIG_PATH"
	EnvDashboardUsername = "FLEETVOICE_USERNAME"
	EnvDashboardPassword = "FLEETVOICE_PASSWORD"
	EnvAPIUsername       = "API_USERNAME"
	EnvAPIPassword       = "API_PASSWORD"
	EnvPort              = "PORT"
	EnvLogLevel          = "FLEETVOICE_LOG_LEVEL"
	EnvChromePath        = "FLEETVOICE_CHROME_PATH"
	EnvDiscordWebhookURL = "FLEETVOICE_DISCORD_WEBHOOK_URL"
)
