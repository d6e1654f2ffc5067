package reporter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aleister1102/canonguard/internal/common/errorwrapper"
	"github.com/aleister1102/canonguard/internal/config"
	"github.com/aleister1102/canonguard/internal/models"
	"github.com/rs/zerolog"
)

// Report is the input of every export format
type Report struct {
	RunID       string
	GeneratedAt time.Time
	Records     []models.PageRecord
	// Sitemaps is listed in the text report header when discovery ran
	Sitemaps []models.SitemapCandidate
}

// formatWriter renders a report in one format
type formatWriter interface {
	Extension() string
	Write(w io.Writer, report *Report) error
}

func writerFor(format string) (formatWriter, error) {
	switch strings.ToLower(format) {
	case "csv":
		return csvWriter{}, nil
	case "xlsx":
		return xlsxWriter{}, nil
	case "json":
		return jsonWriter{}, nil
	case "txt":
		return textWriter{}, nil
	case "parquet":
		return parquetWriter{}, nil
	default:
		return nil, errorwrapper.NewValidationError("format", format, "unsupported report format")
	}
}

// Reporter writes a report in each configured format to the output directory
type Reporter struct {
	cfg        config.ReporterConfig
	logger     zerolog.Logger
	dirManager *DirectoryManager
}

// ReporterBuilder provides a fluent interface for creating Reporter
type ReporterBuilder struct {
	cfg    config.ReporterConfig
	logger zerolog.Logger
}

// NewReporterBuilder creates a new ReporterBuilder
func NewReporterBuilder(logger zerolog.Logger) *ReporterBuilder {
	return &ReporterBuilder{
		cfg:    config.NewDefaultReporterConfig(),
		logger: logger.With().Str("component", "Reporter").Logger(),
	}
}

// WithConfig sets the reporter configuration
func (b *ReporterBuilder) WithConfig(cfg config.ReporterConfig) *ReporterBuilder {
	b.cfg = cfg
	return b
}

// Build creates a new Reporter instance
func (b *ReporterBuilder) Build() (*Reporter, error) {
	if b.cfg.OutputDir == "" {
		return nil, errorwrapper.NewValidationError("output_dir", b.cfg.OutputDir, "output directory cannot be empty")
	}
	if len(b.cfg.Formats) == 0 {
		return nil, errorwrapper.NewValidationError("formats", b.cfg.Formats, "at least one report format is required")
	}
	for _, f := range b.cfg.Formats {
		if _, err := writerFor(f); err != nil {
			return nil, err
		}
	}
	if b.cfg.FilePrefix == "" {
		b.cfg.FilePrefix = config.DefaultReporterFilePrefix
	}

	return &Reporter{
		cfg:        b.cfg,
		logger:     b.logger,
		dirManager: NewDirectoryManager(b.logger),
	}, nil
}

// Export writes one file per configured format and returns the written paths.
// A failing format is logged and skipped. The error aggregates every failure.
func (r *Reporter) Export(report *Report) ([]string, error) {
	if report.GeneratedAt.IsZero() {
		report.GeneratedAt = time.Now()
	}
	if r.cfg.SortByURL {
		sorted := *report
		sorted.Records = SortByURL(report.Records)
		report = &sorted
	}

	if err := r.dirManager.EnsureOutputDirectories(r.cfg.OutputDir); err != nil {
		return nil, err
	}

	var paths []string
	var failures []string
	for _, format := range r.cfg.Formats {
		path, err := r.exportFormat(format, report)
		if err != nil {
			r.logger.Error().Err(err).Str("format", format).Msg("Failed to write report")
			failures = append(failures, fmt.Sprintf("%s: %v", format, err))
			continue
		}
		r.logger.Info().Str("format", format).Str("path", path).Int("records", len(report.Records)).Msg("Report written")
		paths = append(paths, path)
	}

	if len(failures) > 0 {
		return paths, fmt.Errorf("failed to write %d report(s): %s", len(failures), strings.Join(failures, "; "))
	}
	return paths, nil
}

func (r *Reporter) exportFormat(format string, report *Report) (string, error) {
	fw, err := writerFor(format)
	if err != nil {
		return "", err
	}

	path := filepath.Join(r.cfg.OutputDir, fmt.Sprintf("%s_%d.%s", r.cfg.FilePrefix, report.GeneratedAt.Unix(), fw.Extension()))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, FilePermissions)
	if err != nil {
		return "", errorwrapper.WrapError(err, "failed to create report file")
	}

	if err := fw.Write(file, report); err != nil {
		_ = file.Close()
		_ = os.Remove(path)
		return "", err
	}
	if err := file.Close(); err != nil {
		return "", errorwrapper.WrapError(err, "failed to close report file")
	}
	return path, nil
}
