package discovery

import (
	"time"

	"github.com/aleister1102/canonguard/internal/common/errorwrapper"
	"github.com/aleister1102/canonguard/internal/config"
	"github.com/aleister1102/canonguard/internal/httpclient"
	"github.com/rs/zerolog"
)

// DiscovererBuilder provides a fluent interface for creating Discoverer instances
type DiscovererBuilder struct {
	config  config.DiscoveryConfig
	fetcher Fetcher
	logger  zerolog.Logger
}

// NewDiscovererBuilder creates a new DiscovererBuilder instance
func NewDiscovererBuilder(logger zerolog.Logger) *DiscovererBuilder {
	return &DiscovererBuilder{
		config: config.NewDefaultDiscoveryConfig(),
		logger: logger.With().Str("component", "Discoverer").Logger(),
	}
}

// WithConfig sets the discovery configuration
func (b *DiscovererBuilder) WithConfig(cfg config.DiscoveryConfig) *DiscovererBuilder {
	b.config = cfg
	return b
}

// WithFetcher sets the HTTP fetcher. When unset, Build creates a client from the config.
func (b *DiscovererBuilder) WithFetcher(fetcher Fetcher) *DiscovererBuilder {
	b.fetcher = fetcher
	return b
}

// Build creates a new Discoverer instance with the configured settings
func (b *DiscovererBuilder) Build() (*Discoverer, error) {
	if len(b.config.WellKnownPaths) == 0 {
		b.config.WellKnownPaths = append([]string(nil), config.DefaultWellKnownPaths...)
	}
	if b.config.UserAgent == "" {
		b.config.UserAgent = config.DefaultUserAgent
	}
	if b.config.TimeoutSeconds <= 0 {
		b.config.TimeoutSeconds = config.DefaultTimeoutSeconds
	}

	fetcher := b.fetcher
	if fetcher == nil {
		client, err := httpclient.NewHTTPClientBuilder(b.logger).
			WithTimeout(time.Duration(b.config.TimeoutSeconds) * time.Second).
			WithUserAgent(b.config.UserAgent).
			Build()
		if err != nil {
			return nil, errorwrapper.WrapError(err, "failed to create discovery HTTP client")
		}
		fetcher = client
	}

	return &Discoverer{
		config:  b.config,
		fetcher: fetcher,
		logger:  b.logger,
	}, nil
}
