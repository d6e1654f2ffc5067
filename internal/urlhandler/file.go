package urlhandler

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Custom errors for file operations
var (
	ErrFileNotFound   = errors.New("input file not found")
	ErrFilePermission = errors.New("permission denied reading input file")
	ErrFileEmpty      = errors.New("input file is empty")
	ErrReadingFile    = errors.New("error reading input file")
)

// ReadLinesFromFile returns the trimmed, non-empty lines of a URL list file.
// Lines are not validated here; see TargetManager.
func ReadLinesFromFile(filePath string, logger zerolog.Logger) ([]string, error) {
	fileLogger := logger.With().Str("file_path", filePath).Logger()

	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		fileLogger.Error().Err(err).Msg("Input file not found")
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, filePath)
	}
	if err != nil {
		fileLogger.Error().Err(err).Msg("Error checking file stat")
		return nil, fmt.Errorf("error checking file %s: %w", filePath, err)
	}
	if info.IsDir() {
		fileLogger.Error().Msg("Input path is a directory, not a file")
		return nil, fmt.Errorf("input path is a directory, not a file: %s", filePath)
	}
	if info.Size() == 0 {
		fileLogger.Warn().Msg("Input file is empty (0 bytes)")
		return nil, fmt.Errorf("%w: %s", ErrFileEmpty, filePath)
	}

	file, err := os.Open(filePath)
	if err != nil {
		if os.IsPermission(err) {
			fileLogger.Error().Err(err).Msg("Permission denied reading input file")
			return nil, fmt.Errorf("%w: %s", ErrFilePermission, filePath)
		}
		fileLogger.Error().Err(err).Msg("Error opening input file")
		return nil, fmt.Errorf("%w: %s (cause: %v)", ErrReadingFile, filePath, err)
	}
	defer file.Close()

	lines, err := ReadLines(file)
	if err != nil {
		fileLogger.Error().Err(err).Msg("Error during scanning of file")
		return nil, fmt.Errorf("%w: %s (scan error: %v)", ErrReadingFile, filePath, err)
	}

	fileLogger.Debug().Int("lines", len(lines)).Msg("Read URL list file")
	return lines, nil
}

// ReadLines splits r into trimmed lines, skipping blanks and # comments
func ReadLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	return lines, scanner.Err()
}
