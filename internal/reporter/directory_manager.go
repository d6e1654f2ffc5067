package reporter

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
)

// DirectoryManager creates report output directories
type DirectoryManager struct {
	logger zerolog.Logger
}

// NewDirectoryManager creates a new DirectoryManager
func NewDirectoryManager(logger zerolog.Logger) *DirectoryManager {
	return &DirectoryManager{
		logger: logger,
	}
}

// EnsureOutputDirectories ensures the output directory exists
func (dm *DirectoryManager) EnsureOutputDirectories(outputDir string) error {
	if err := os.MkdirAll(outputDir, DirPermissions); err != nil {
		dm.logger.Error().Err(err).Str("path", outputDir).Msg("Failed to create directory")
		return fmt.Errorf("failed to create output directory '%s': %w", outputDir, err)
	}

	dm.logger.Debug().Str("path", outputDir).Msg("Output directory ready")
	return nil
}
