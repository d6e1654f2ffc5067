package config

import "time"

// ProgressConfig controls the single-line audit progress display written to stdout.
type ProgressConfig struct {
	// DisplayInterval is the redraw period in seconds; stage changes always redraw immediately.
	DisplayInterval   int  `json:"display_interval,omitempty" yaml:"display_interval,omitempty" validate:"min=1,max=60"`
	EnableProgress    bool `json:"enable_progress,omitempty" yaml:"enable_progress,omitempty"`
	ShowETAEstimation bool `json:"show_eta_estimation,omitempty" yaml:"show_eta_estimation,omitempty"`
}

// NewDefaultProgressConfig creates a new ProgressConfig with default values
func NewDefaultProgressConfig() ProgressConfig {
	return ProgressConfig{
		DisplayInterval:   DefaultProgressIntervalSeconds,
		EnableProgress:    true,
		ShowETAEstimation: true,
	}
}

// GetDisplayIntervalDuration returns the display interval as time.Duration
func (pc *ProgressConfig) GetDisplayIntervalDuration() time.Duration {
	return time.Duration(pc.DisplayInterval) * time.Second
}
