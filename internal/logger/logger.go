package logger

import (
	"github.com/aleister1102/fleetvoice/internal/config"
	"github.com/rs/zerolog"
)

// New creates the application logger from the log config section.
func New(cfg config.LogConfig) (zerolog.Logger, error) {
	return NewLoggerBuilder().WithConfig(cfg).Build()
}
