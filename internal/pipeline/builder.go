package pipeline

import (
	"time"

	"github.com/aleister1102/canonguard/internal/analyzer"
	"github.com/aleister1102/canonguard/internal/common/errorwrapper"
	"github.com/aleister1102/canonguard/internal/config"
	"github.com/aleister1102/canonguard/internal/datastore"
	"github.com/aleister1102/canonguard/internal/discovery"
	"github.com/aleister1102/canonguard/internal/httpclient"
	"github.com/aleister1102/canonguard/internal/processor"
	"github.com/aleister1102/canonguard/internal/progress"
	"github.com/aleister1102/canonguard/internal/reporter"
	"github.com/aleister1102/canonguard/internal/sitemap"
	"github.com/aleister1102/canonguard/internal/urlhandler"
	"github.com/rs/zerolog"
)

// PipelineBuilder provides a fluent interface for creating Pipeline instances
type PipelineBuilder struct {
	cfg     *config.GlobalConfig
	history *datastore.HistoryDB
	sleep   httpclient.SleepFunc
	logger  zerolog.Logger
}

// NewPipelineBuilder creates a new PipelineBuilder instance
func NewPipelineBuilder(logger zerolog.Logger) *PipelineBuilder {
	return &PipelineBuilder{
		logger: logger,
	}
}

// WithConfig sets the global configuration
func (b *PipelineBuilder) WithConfig(cfg *config.GlobalConfig) *PipelineBuilder {
	b.cfg = cfg
	return b
}

// WithHistory enables run history
func (b *PipelineBuilder) WithHistory(history *datastore.HistoryDB) *PipelineBuilder {
	b.history = history
	return b
}

// WithRetrySleep replaces the analyzer's retry backoff sleep
func (b *PipelineBuilder) WithRetrySleep(sleep httpclient.SleepFunc) *PipelineBuilder {
	b.sleep = sleep
	return b
}

// Build wires every stage. Discovery and sitemap fetches share one client;
// page fetches share another built from the processing config.
func (b *PipelineBuilder) Build() (*Pipeline, error) {
	if b.cfg == nil {
		return nil, errorwrapper.NewValidationError("config", nil, "global config cannot be nil")
	}
	cfg := b.cfg
	discoveryCfg := cfg.DiscoveryConfig
	if discoveryCfg.UserAgent == "" {
		discoveryCfg.UserAgent = cfg.ProcessingConfig.UserAgent
	}
	if discoveryCfg.TimeoutSeconds <= 0 {
		discoveryCfg.TimeoutSeconds = cfg.ProcessingConfig.TimeoutSeconds
	}

	sitemapClient, err := httpclient.NewHTTPClientBuilder(b.logger).
		WithProcessingConfig(cfg.ProcessingConfig).
		WithTimeout(time.Duration(discoveryCfg.TimeoutSeconds) * time.Second).
		WithUserAgent(discoveryCfg.UserAgent).
		Build()
	if err != nil {
		return nil, errorwrapper.WrapError(err, "failed to create sitemap HTTP client")
	}

	pageClient, err := httpclient.NewHTTPClientBuilder(b.logger).
		WithProcessingConfig(cfg.ProcessingConfig).
		Build()
	if err != nil {
		return nil, errorwrapper.WrapError(err, "failed to create page HTTP client")
	}

	discoverer, err := discovery.NewDiscovererBuilder(b.logger).
		WithConfig(discoveryCfg).
		WithFetcher(sitemapClient).
		Build()
	if err != nil {
		return nil, err
	}

	expander, err := sitemap.NewExpanderBuilder(b.logger).
		WithFetcher(sitemapClient).
		Build()
	if err != nil {
		return nil, err
	}

	pageAnalyzer, err := analyzer.NewAnalyzerBuilder(b.logger).
		WithTransport(pageClient).
		WithProcessingConfig(cfg.ProcessingConfig).
		WithNormalizationConfig(cfg.NormalizationConfig).
		WithSleep(b.sleep).
		Build()
	if err != nil {
		return nil, err
	}

	rep, err := reporter.NewReporterBuilder(b.logger).
		WithConfig(cfg.ReporterConfig).
		Build()
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		cfg:        cfg,
		discoverer: discoverer,
		expander:   expander,
		analyzer:   pageAnalyzer,
		processor:  processor.NewProcessor(pageAnalyzer, cfg.ProcessingConfig, b.logger),
		reporter:   rep,
		targets:    urlhandler.NewTargetManager(b.logger),
		history:    b.history,
		display:    progress.NewDisplayManager(b.logger, cfg.ProgressConfig),
		logger:     b.logger.With().Str("component", "Pipeline").Logger(),
	}, nil
}
