package logger

import (
	"github.com/aleister1102/fleetvoice/internal/config"
)

// ConvertConfig converts the application log section to a LoggerConfig.
// An unparsable level falls back to info and is reported to the caller.
func ConvertConfig(cfg config.LogConfig) (LoggerConfig, error) {
	level, err := ParseLevel(cfg.LogLevel)

	return LoggerConfig{
		Level:         level,
		Format:        ParseFormat(cfg.LogFormat),
		EnableConsole: true,
		EnableFile:    cfg.LogFile != "",
		FilePath:      cfg.LogFile,
		MaxSizeMB:     orDefault(cfg.MaxLogSizeMB, config.DefaultMaxLogSizeMB),
		MaxBackups:    orDefault(cfg.MaxLogBackups, config.DefaultMaxLogBackups),
	}, err
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
