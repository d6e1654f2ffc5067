package analyzer

import (
	"github.com/aleister1102/canonguard/internal/common/errorwrapper"
	"github.com/aleister1102/canonguard/internal/config"
	"github.com/aleister1102/canonguard/internal/httpclient"
	"github.com/rs/zerolog"
)

// AnalyzerBuilder provides a fluent interface for creating Analyzer instances
type AnalyzerBuilder struct {
	transport     Transport
	processing    config.ProcessingConfig
	normalization config.NormalizationConfig
	sleep         httpclient.SleepFunc
	logger        zerolog.Logger
}

// NewAnalyzerBuilder creates a new AnalyzerBuilder instance
func NewAnalyzerBuilder(logger zerolog.Logger) *AnalyzerBuilder {
	return &AnalyzerBuilder{
		processing:    config.NewDefaultProcessingConfig(),
		normalization: config.NewDefaultNormalizationConfig(),
		logger:        logger.With().Str("component", "Analyzer").Logger(),
	}
}

// WithTransport sets the transport shared by all page fetches
func (b *AnalyzerBuilder) WithTransport(t Transport) *AnalyzerBuilder {
	b.transport = t
	return b
}

// WithProcessingConfig sets retry count and backoff
func (b *AnalyzerBuilder) WithProcessingConfig(cfg config.ProcessingConfig) *AnalyzerBuilder {
	b.processing = cfg
	return b
}

// WithNormalizationConfig sets the URL comparison rules
func (b *AnalyzerBuilder) WithNormalizationConfig(cfg config.NormalizationConfig) *AnalyzerBuilder {
	b.normalization = cfg
	return b
}

// WithSleep replaces the retry backoff sleep
func (b *AnalyzerBuilder) WithSleep(sleep httpclient.SleepFunc) *AnalyzerBuilder {
	b.sleep = sleep
	return b
}

// Build creates a new Analyzer. Without a transport, a client is built from the processing config.
func (b *AnalyzerBuilder) Build() (*Analyzer, error) {
	if b.processing.MaxRetries < 1 {
		return nil, errorwrapper.NewValidationError("max_retries", b.processing.MaxRetries, "must be at least 1")
	}

	transport := b.transport
	if transport == nil {
		client, err := httpclient.NewHTTPClientBuilder(b.logger).WithProcessingConfig(b.processing).Build()
		if err != nil {
			return nil, errorwrapper.WrapError(err, "failed to create analyzer HTTP client")
		}
		transport = client
	}

	retry := httpclient.NewRetryHandler(httpclient.RetryHandlerConfig{
		MaxAttempts: b.processing.MaxRetries,
		Backoff:     b.processing.RetryBackoff(),
	}, b.logger).WithSleep(b.sleep)

	return &Analyzer{
		transport:     transport,
		retry:         retry,
		normalization: b.normalization,
		logger:        b.logger,
	}, nil
}
