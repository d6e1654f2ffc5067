package logger

import (
	"strings"

	"github.com/aleister1102/canonguard/internal/common/errorwrapper"
	"github.com/aleister1102/canonguard/internal/config"
	"github.com/rs/zerolog"
)

const (
	defaultMaxSizeMB  = 100
	defaultMaxBackups = 3
)

// LoggerConfig holds configuration for logger setup
type LoggerConfig struct {
	Level         zerolog.Level
	Format        LogFormat
	EnableConsole bool
	EnableFile    bool
	FilePath      string
	MaxSizeMB     int
	MaxBackups    int
	// RunID places the log file under runs/<RunID>/ next to FilePath when UseSubdirs is set.
	RunID      string
	UseSubdirs bool
}

// LogFormat represents available log formats
type LogFormat int

const (
	FormatJSON LogFormat = iota
	FormatConsole
	FormatText
)

func (lf LogFormat) String() string {
	switch lf {
	case FormatJSON:
		return "json"
	case FormatText:
		return "text"
	default:
		return "console"
	}
}

// DefaultLoggerConfig returns the console-only configuration used before the config file is read.
func DefaultLoggerConfig() LoggerConfig {
	return LoggerConfig{
		Level:         zerolog.InfoLevel,
		Format:        FormatConsole,
		EnableConsole: true,
		MaxSizeMB:     defaultMaxSizeMB,
		MaxBackups:    defaultMaxBackups,
	}
}

// ParseLevel maps a config log level onto zerolog. Empty means info.
func ParseLevel(levelStr string) (zerolog.Level, error) {
	if strings.TrimSpace(levelStr) == "" {
		return zerolog.InfoLevel, nil
	}
	level, err := zerolog.ParseLevel(strings.ToLower(levelStr))
	if err != nil {
		return zerolog.InfoLevel, errorwrapper.WrapError(err, "invalid log level")
	}
	return level, nil
}

// ParseFormat maps a config log format name; unknown names fall back to console.
func ParseFormat(formatStr string) LogFormat {
	switch strings.ToLower(strings.TrimSpace(formatStr)) {
	case "json":
		return FormatJSON
	case "text":
		return FormatText
	default:
		return FormatConsole
	}
}

// fromLogConfig converts the log_config section. An invalid level degrades to info
// since ValidateConfig reports it separately.
func fromLogConfig(cfg config.LogConfig) LoggerConfig {
	level, _ := ParseLevel(cfg.LogLevel)

	lc := DefaultLoggerConfig()
	lc.Level = level
	lc.Format = ParseFormat(cfg.LogFormat)
	lc.EnableFile = cfg.LogFile != ""
	lc.FilePath = cfg.LogFile
	lc.UseSubdirs = true
	if cfg.MaxLogSizeMB > 0 {
		lc.MaxSizeMB = cfg.MaxLogSizeMB
	}
	if cfg.MaxLogBackups > 0 {
		lc.MaxBackups = cfg.MaxLogBackups
	}
	return lc
}
