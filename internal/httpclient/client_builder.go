package httpclient

import (
	"time"

	"github.com/aleister1102/canonguard/internal/config"
	"github.com/rs/zerolog"
)

// HTTPClientBuilder builds HTTP clients with fluent interface
type HTTPClientBuilder struct {
	config HTTPClientConfig
	logger zerolog.Logger
}

// NewHTTPClientBuilder creates a new HTTPClientBuilder with default configuration
func NewHTTPClientBuilder(logger zerolog.Logger) *HTTPClientBuilder {
	return &HTTPClientBuilder{
		config: DefaultHTTPClientConfig(),
		logger: logger,
	}
}

// WithProcessingConfig applies timeout, user agent, TLS and proxy settings from the processing config.
// The connection pool is sized to the worker count.
func (b *HTTPClientBuilder) WithProcessingConfig(cfg config.ProcessingConfig) *HTTPClientBuilder {
	b.config.Timeout = cfg.Timeout()
	b.config.UserAgent = cfg.UserAgent
	b.config.InsecureSkipVerify = cfg.InsecureSkipVerify
	b.config.Proxy = cfg.Proxy
	if cfg.Concurrency > b.config.MaxIdleConnsPerHost {
		b.config.MaxIdleConnsPerHost = cfg.Concurrency
	}
	return b
}

// WithTimeout sets the per-attempt request timeout
func (b *HTTPClientBuilder) WithTimeout(timeout time.Duration) *HTTPClientBuilder {
	b.config.Timeout = timeout
	return b
}

// WithUserAgent sets the User-Agent header
func (b *HTTPClientBuilder) WithUserAgent(userAgent string) *HTTPClientBuilder {
	b.config.UserAgent = userAgent
	return b
}

// Build creates and returns a new HTTPClient
func (b *HTTPClientBuilder) Build() (*HTTPClient, error) {
	return NewHTTPClient(b.config, b.logger)
}
