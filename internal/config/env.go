package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads a .env file into the process environment when one exists.
// Variables already set in the environment win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	existing := make([]string, 0, len(paths))
	for _, p := range paths {
		if fileExists(p) {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

// ApplyEnvOverrides copies credentials and deployment settings from the
// environment into cfg. Credentials are expected to arrive this way rather
// than through the config file.
func ApplyEnvOverrides(cfg *GlobalConfig) {
	overrideString(&cfg.Dashboard.Username, EnvDashboardUsername)
	overrideString(&cfg.Dashboard.Password, EnvDashboardPassword)
	overrideString(&cfg.APISource.Username, EnvAPIUsername)
	overrideString(&cfg.APISource.Password, EnvAPIPassword)
	overrideString(&cfg.LogConfig.LogLevel, EnvLogLevel)
	overrideString(&cfg.Browser.ChromePath, EnvChromePath)
	overrideString(&cfg.Notification.DiscordWebhookURL, EnvDiscordWebhookURL)

	if port := os.Getenv(EnvPort); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}
}

func overrideString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}
