package config

// ReporterConfig defines configuration for generating reports
type ReporterConfig struct {
	OutputDir  string   `json:"output_dir,omitempty" yaml:"output_dir,omitempty" validate:"required"`
	FilePrefix string   `json:"file_prefix,omitempty" yaml:"file_prefix,omitempty" validate:"required"`
	Formats    []string `json:"formats,omitempty" yaml:"formats,omitempty" validate:"min=1,dive,reportformat"`
	// SortByURL orders exported records by requested URL instead of completion order.
	SortByURL bool `json:"sort_by_url" yaml:"sort_by_url"`
}

// NewDefaultReporterConfig creates default reporter configuration
func NewDefaultReporterConfig() ReporterConfig {
	return ReporterConfig{
		OutputDir:  DefaultReporterOutputDir,
		FilePrefix: DefaultReporterFilePrefix,
		Formats:    []string{"csv"},
		SortByURL:  true,
	}
}
