package logger

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// WriterFactory creates format-specific writers over a destination.
type WriterFactory struct {
	console io.Writer
}

// NewWriterFactory returns a factory writing console output to stderr.
func NewWriterFactory() *WriterFactory {
	return &WriterFactory{console: os.Stderr}
}

// CreateConsoleWriter wraps the console destination for the given format.
func (wf *WriterFactory) CreateConsoleWriter(format LogFormat) io.Writer {
	return wrap(wf.console, format, false)
}

// CreateFileWriter creates a rotating file writer. Console format is written
// without colour codes.
func (wf *WriterFactory) CreateFileWriter(cfg LoggerConfig) (io.Writer, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o755); err != nil {
		return nil, err
	}
	rotator := &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		LocalTime:  true,
	}
	return wrap(rotator, cfg.Format, true), nil
}

func wrap(out io.Writer, format LogFormat, noColor bool) io.Writer {
	switch format {
	case FormatJSON:
		return out
	case FormatText:
		return zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339, NoColor: true}
	default:
		return zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339, NoColor: noColor}
	}
}
