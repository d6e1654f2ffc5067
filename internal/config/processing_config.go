package config

import "time"

// ProcessingConfig controls how pages are fetched. It is read-only once a run starts.
type ProcessingConfig struct {
	Concurrency        int    `json:"concurrency,omitempty" yaml:"concurrency,omitempty" validate:"min=1,max=20"`
	TimeoutSeconds     int    `json:"timeout_seconds,omitempty" yaml:"timeout_seconds,omitempty" validate:"min=5,max=60"`
	MaxRetries         int    `json:"max_retries,omitempty" yaml:"max_retries,omitempty" validate:"min=1,max=5"`
	RetryBackoffMillis int    `json:"retry_backoff_millis,omitempty" yaml:"retry_backoff_millis,omitempty" validate:"min=0,max=60000"`
	UserAgent          string `json:"user_agent,omitempty" yaml:"user_agent,omitempty" validate:"required"`
	InsecureSkipVerify bool   `json:"insecure_skip_verify" yaml:"insecure_skip_verify"`
	Proxy              string `json:"proxy,omitempty" yaml:"proxy,omitempty" validate:"omitempty,url"`
}

// NewDefaultProcessingConfig creates default processing configuration
func NewDefaultProcessingConfig() ProcessingConfig {
	return ProcessingConfig{
		Concurrency:        DefaultConcurrency,
		TimeoutSeconds:     DefaultTimeoutSeconds,
		MaxRetries:         DefaultMaxRetries,
		RetryBackoffMillis: DefaultRetryBackoffMillis,
		UserAgent:          DefaultUserAgent,
	}
}

// Timeout returns the per-attempt request timeout.
func (pc ProcessingConfig) Timeout() time.Duration {
	return time.Duration(pc.TimeoutSeconds) * time.Second
}

// RetryBackoff returns the fixed sleep between transport-level retries.
func (pc ProcessingConfig) RetryBackoff() time.Duration {
	return time.Duration(pc.RetryBackoffMillis) * time.Millisecond
}
