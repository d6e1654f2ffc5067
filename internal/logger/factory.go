package logger

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// WriterStrategy wraps a raw output in a format-specific writer
type WriterStrategy interface {
	CreateWriter(out io.Writer) io.Writer
}

// JSONWriterStrategy writes zerolog's native JSON lines
type JSONWriterStrategy struct{}

// CreateWriter returns out unchanged
func (s *JSONWriterStrategy) CreateWriter(out io.Writer) io.Writer {
	return out
}

// ConsoleWriterStrategy writes human-readable, optionally colored lines
type ConsoleWriterStrategy struct {
	NoColor bool
}

// CreateWriter wraps out in a zerolog.ConsoleWriter
func (s *ConsoleWriterStrategy) CreateWriter(out io.Writer) io.Writer {
	return zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339, NoColor: s.NoColor}
}

// TextWriterStrategy is the console layout without colors
type TextWriterStrategy struct{}

// CreateWriter wraps out in an uncolored zerolog.ConsoleWriter
func (s *TextWriterStrategy) CreateWriter(out io.Writer) io.Writer {
	return zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339, NoColor: true}
}

// WriterFactory creates writers based on format
type WriterFactory struct {
	strategies map[LogFormat]WriterStrategy
	console    io.Writer
}

// NewWriterFactory creates a new writer factory
func NewWriterFactory() *WriterFactory {
	return &WriterFactory{
		strategies: map[LogFormat]WriterStrategy{
			FormatJSON:    &JSONWriterStrategy{},
			FormatConsole: &ConsoleWriterStrategy{NoColor: false},
			FormatText:    &TextWriterStrategy{},
		},
		console: os.Stderr,
	}
}

// CreateConsoleWriter creates a console writer
func (wf *WriterFactory) CreateConsoleWriter(format LogFormat) io.Writer {
	strategy, exists := wf.strategies[format]
	if !exists {
		strategy = &ConsoleWriterStrategy{NoColor: false}
	}
	return strategy.CreateWriter(wf.console)
}

// CreateFileWriter creates a file writer with rotation and directory organization
func (wf *WriterFactory) CreateFileWriter(config LoggerConfig) io.Writer {
	finalPath := wf.buildLogPath(config)

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(finalPath), 0755); err != nil {
		// If directory creation fails, use original path
		finalPath = config.FilePath
	}

	lumberjackLogger := &lumberjack.Logger{
		Filename:   finalPath,
		MaxSize:    config.MaxSizeMB,
		LocalTime:  true,
		MaxBackups: config.MaxBackups,
	}

	// Files never get ANSI colors
	if config.Format == FormatConsole {
		return (&ConsoleWriterStrategy{NoColor: true}).CreateWriter(lumberjackLogger)
	}

	strategy, exists := wf.strategies[config.Format]
	if !exists {
		strategy = &JSONWriterStrategy{}
	}
	return strategy.CreateWriter(lumberjackLogger)
}

// buildLogPath constructs the final log file path, nesting it under runs/<id> when enabled
func (wf *WriterFactory) buildLogPath(config LoggerConfig) string {
	if !config.UseSubdirs || config.RunID == "" {
		return config.FilePath
	}

	baseDir := filepath.Dir(config.FilePath)
	fileName := filepath.Base(config.FilePath)
	return filepath.Join(baseDir, "runs", config.RunID, fileName)
}
