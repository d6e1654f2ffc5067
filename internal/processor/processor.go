package processor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aleister1102/canonguard/internal/config"
	"github.com/aleister1102/canonguard/internal/models"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// PageAnalyzer produces one record per URL. *analyzer.Analyzer satisfies it.
type PageAnalyzer interface {
	Analyze(ctx context.Context, pageURL string) models.PageRecord
}

// Processor runs page analysis over a URL set with bounded parallelism
type Processor struct {
	analyzer    PageAnalyzer
	concurrency int
	logger      zerolog.Logger
}

// NewProcessor creates a new Processor
func NewProcessor(analyzer PageAnalyzer, cfg config.ProcessingConfig, logger zerolog.Logger) *Processor {
	concurrency := cfg.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	return &Processor{
		analyzer:    analyzer,
		concurrency: concurrency,
		logger:      logger.With().Str("component", "Processor").Logger(),
	}
}

// ProcessAll analyzes every distinct URL and blocks until all tasks finish.
// The result holds exactly one record per distinct input URL, in completion order.
// Tasks that start after ctx is done still yield an Error record.
func (p *Processor) ProcessAll(ctx context.Context, urls []string, onProgress ProgressFunc) []models.PageRecord {
	unique := DeduplicateURLs(urls)
	aggregator := NewAggregator(len(unique), onProgress)

	p.logger.Info().
		Int("input", len(urls)).
		Int("unique", len(unique)).
		Int("concurrency", p.concurrency).
		Msg("Starting page processing")
	start := time.Now()

	var g errgroup.Group
	g.SetLimit(p.concurrency)

	for _, pageURL := range unique {
		g.Go(func() error {
			aggregator.Add(p.processOne(ctx, pageURL))
			return nil
		})
	}
	_ = g.Wait()

	records := aggregator.Records()
	p.logger.Info().
		Int("records", len(records)).
		Dur("duration", time.Since(start)).
		Msg("Page processing completed")

	return records
}

// processOne never panics and never returns without a record
func (p *Processor) processOne(ctx context.Context, pageURL string) (record models.PageRecord) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error().Str("url", pageURL).Interface("panic", r).Msg("Page analysis panicked")
			record = errorRecord(pageURL, fmt.Sprintf("Processing failed: %v", r))
		}
	}()

	if err := ctx.Err(); err != nil {
		return errorRecord(pageURL, fmt.Sprintf("Processing cancelled: %v", err))
	}
	return p.analyzer.Analyze(ctx, pageURL)
}

func errorRecord(pageURL, detail string) models.PageRecord {
	return models.PageRecord{
		URL:         pageURL,
		Status:      models.StatusError,
		ErrorDetail: models.StringPtr(detail),
	}
}

// DeduplicateURLs trims entries and drops blanks and repeats, keeping first occurrences in order
func DeduplicateURLs(urls []string) []string {
	seen := make(map[string]struct{}, len(urls))
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}
