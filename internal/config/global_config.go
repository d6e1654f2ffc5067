package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/aleister1102/canonguard/internal/common/errorwrapper"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// maxConfigFileSize caps how much of a config file is read.
const maxConfigFileSize = 10 * 1024 * 1024

// GlobalConfig contains all configuration sections for the application
type GlobalConfig struct {
	DiscoveryConfig     DiscoveryConfig     `json:"discovery_config,omitempty" yaml:"discovery_config,omitempty"`
	LogConfig           LogConfig           `json:"log_config,omitempty" yaml:"log_config,omitempty"`
	NormalizationConfig NormalizationConfig `json:"normalization_config,omitempty" yaml:"normalization_config,omitempty"`
	ProcessingConfig    ProcessingConfig    `json:"processing_config,omitempty" yaml:"processing_config,omitempty"`
	ProgressConfig      ProgressConfig      `json:"progress_config,omitempty" yaml:"progress_config,omitempty"`
	ReporterConfig      ReporterConfig      `json:"reporter_config,omitempty" yaml:"reporter_config,omitempty"`
	StorageConfig       StorageConfig       `json:"storage_config,omitempty" yaml:"storage_config,omitempty"`
}

// NewDefaultGlobalConfig creates a new GlobalConfig with default values
func NewDefaultGlobalConfig() *GlobalConfig {
	return &GlobalConfig{
		DiscoveryConfig:     NewDefaultDiscoveryConfig(),
		LogConfig:           NewDefaultLogConfig(),
		NormalizationConfig: NewDefaultNormalizationConfig(),
		ProcessingConfig:    NewDefaultProcessingConfig(),
		ProgressConfig:      NewDefaultProgressConfig(),
		ReporterConfig:      NewDefaultReporterConfig(),
		StorageConfig:       NewDefaultStorageConfig(),
	}
}

// LoadGlobalConfig loads the configuration from a file or default locations.
// It determines the config file path using GetConfigPath, supports both JSON and YAML formats.
// YAML is used if the file extension is .yaml or .yml. With no file found the defaults are returned.
func LoadGlobalConfig(providedPath string, logger zerolog.Logger) (*GlobalConfig, error) {
	cfg := NewDefaultGlobalConfig()

	if providedPath != "" && !fileExists(providedPath) {
		return nil, errorwrapper.NewValidationError("config_file", providedPath, "config file does not exist")
	}

	filePath := GetConfigPath(providedPath)
	if filePath == "" {
		logger.Debug().Msg("No config file found, using defaults")
		return cfg, nil
	}

	data, err := loadConfigFileContent(filePath)
	if err != nil {
		return nil, errorwrapper.WrapError(err, "failed to load config file content")
	}

	if err := parseConfigContent(data, filePath, cfg); err != nil {
		return nil, errorwrapper.WrapError(err, "failed to parse config content")
	}

	logger.Info().Str("path", filePath).Msg("Configuration loaded")
	return cfg, nil
}

// loadConfigFileContent reads the config file, refusing oversized files
func loadConfigFileContent(filePath string) ([]byte, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		return nil, err
	}
	if info.Size() > maxConfigFileSize {
		return nil, errorwrapper.NewValidationError("config_file", filePath, "config file exceeds 10MB")
	}
	return os.ReadFile(filePath)
}

// parseConfigContent parses the config content based on file extension
func parseConfigContent(data []byte, filePath string, cfg *GlobalConfig) error {
	ext := filepath.Ext(filePath)
	if isYAMLFile(ext) {
		return parseYAMLConfig(data, filePath, cfg)
	}
	return parseJSONConfig(data, filePath, cfg)
}

// isYAMLFile checks if the file extension indicates a YAML file
func isYAMLFile(ext string) bool {
	return ext == ".yaml" || ext == ".yml"
}

// parseYAMLConfig parses YAML configuration
func parseYAMLConfig(data []byte, filePath string, cfg *GlobalConfig) error {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return errorwrapper.NewError("failed to unmarshal YAML from '%s': %w", filePath, err)
	}
	return nil
}

// parseJSONConfig parses JSON configuration
func parseJSONConfig(data []byte, filePath string, cfg *GlobalConfig) error {
	if err := json.Unmarshal(data, cfg); err != nil {
		return errorwrapper.NewError("failed to unmarshal JSON from '%s': %w", filePath, err)
	}
	return nil
}
