package pipeline

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/aleister1102/canonguard/internal/analyzer"
	"github.com/aleister1102/canonguard/internal/common/errorwrapper"
	"github.com/aleister1102/canonguard/internal/config"
	"github.com/aleister1102/canonguard/internal/datastore"
	"github.com/aleister1102/canonguard/internal/discovery"
	"github.com/aleister1102/canonguard/internal/models"
	"github.com/aleister1102/canonguard/internal/processor"
	"github.com/aleister1102/canonguard/internal/progress"
	"github.com/aleister1102/canonguard/internal/reporter"
	"github.com/aleister1102/canonguard/internal/sitemap"
	"github.com/aleister1102/canonguard/internal/urlhandler"
	"github.com/rs/zerolog"
)

// sitemapPreviewSize is how many URLs discover-only shows per sitemap
const sitemapPreviewSize = 10

// Pipeline runs discovery, selection, extraction, processing and export
type Pipeline struct {
	cfg        *config.GlobalConfig
	discoverer *discovery.Discoverer
	expander   *sitemap.Expander
	analyzer   *analyzer.Analyzer
	processor  *processor.Processor
	reporter   *reporter.Reporter
	targets    *urlhandler.TargetManager
	history    *datastore.HistoryDB
	display    *progress.DisplayManager
	logger     zerolog.Logger
}

// Run executes every stage for opts. The returned state is non-nil whenever
// discovery succeeded, even if a later stage failed.
func (p *Pipeline) Run(ctx context.Context, runID string, opts Options) (*State, error) {
	state := newState(runID)
	logger := p.logger.With().Str("run_id", runID).Logger()

	p.display.Start()
	defer p.display.Stop()

	if opts.Domain != "" {
		if err := p.Discover(ctx, state, opts.Domain); err != nil {
			return state, err
		}
	}

	if opts.DiscoverOnly {
		p.FillSitemapInfo(ctx, state)
		return state, nil
	}

	p.Select(state, opts.Sitemaps)
	p.Extract(ctx, state)

	if err := p.AddManualURLs(state, opts); err != nil {
		return state, err
	}
	p.finalizeURLs(state)

	if len(state.URLs) == 0 {
		if opts.Domain != "" && len(state.Candidates) == 0 {
			return state, errorwrapper.ErrNoSitemaps
		}
		return state, errorwrapper.ErrNoURLs
	}

	p.recordRunStart(ctx, state)
	p.Process(ctx, state)
	exportErr := p.Export(state, opts.ExportStatuses)
	p.LogSummary(state)
	p.recordRunCompletion(state, exportErr)

	logger.Info().Dur("duration", time.Since(state.StartedAt)).Msg("Run finished")
	return state, exportErr
}

// Discover runs sitemap discovery. A robots.txt transport failure aborts the run.
func (p *Pipeline) Discover(ctx context.Context, state *State, domain string) error {
	p.display.BeginStage(progress.StageDiscovery, 0, domain)

	result, err := p.discoverer.DiscoverResult(ctx, domain)
	if err != nil {
		p.display.Finish(progress.StatusError, err.Error())
		return err
	}

	state.Discovery = result
	state.Candidates = result.Candidates
	for _, c := range result.Candidates {
		p.logger.Info().
			Str("url", c.URL).
			Str("format", c.Format.Label()).
			Str("status", c.Status()).
			Msg("Sitemap candidate")
	}
	p.display.Finish(progress.StatusComplete, fmt.Sprintf("%d sitemap(s) found", len(result.Candidates)))
	return nil
}

// FillSitemapInfo sets the URL count and a short URL preview of every candidate,
// for discover-only output
func (p *Pipeline) FillSitemapInfo(ctx context.Context, state *State) {
	for i := range state.Candidates {
		info := p.expander.Info(ctx, state.Candidates[i].URL)
		if info.Error != "" {
			p.logger.Warn().Str("url", info.URL).Str("error", info.Error).Msg("Could not read sitemap info")
			continue
		}
		count := info.URLCount
		state.Candidates[i].URLCount = &count
		state.SitemapURLCounts[info.URL] = count
		p.logger.Info().
			Str("url", info.URL).
			Int("url_count", count).
			Str("content_type", info.ContentType).
			Str("last_modified", info.LastModified).
			Msg("Sitemap info")

		if state.Candidates[i].Reachable && count > 0 {
			state.SitemapPreviews[info.URL] = p.expander.Preview(ctx, info.URL, sitemapPreviewSize)
		}
	}
}

// Inspect sends one HEAD request per page URL and reports what each server returned.
// Malformed URLs are reported in the result without a request.
func (p *Pipeline) Inspect(ctx context.Context, urls []string) []models.URLInfo {
	infos := make([]models.URLInfo, 0, len(urls))
	for _, u := range processor.DeduplicateURLs(urls) {
		if err := urlhandler.ValidateURLFormat(u); err != nil {
			infos = append(infos, models.URLInfo{URL: u, Error: err.Error()})
			continue
		}
		info := p.analyzer.Info(ctx, u)
		p.logger.Info().
			Str("url", u).
			Int("status_code", info.StatusCode).
			Str("final_url", info.FinalURL).
			Bool("redirected", info.Redirected).
			Msg("Page info")
		infos = append(infos, info)
	}
	return infos
}

// Select picks the sitemaps to expand. An empty selection takes every reachable candidate.
// Selected URLs outside the candidate list are expanded as given.
func (p *Pipeline) Select(state *State, selection []string) {
	if len(selection) == 0 {
		for _, c := range state.Candidates {
			if c.Reachable {
				state.Selected = append(state.Selected, c.URL)
			}
		}
		return
	}

	for _, s := range selection {
		if s == "" || slices.Contains(state.Selected, s) {
			continue
		}
		known := slices.ContainsFunc(state.Candidates, func(c models.SitemapCandidate) bool { return c.URL == s })
		if !known {
			p.logger.Info().Str("url", s).Msg("Selected sitemap was not discovered, expanding it as given")
		}
		state.Selected = append(state.Selected, s)
	}
}

// Extract expands each selected sitemap with a visited set shared across the run.
// Failures are recorded per sitemap and do not stop the others.
func (p *Pipeline) Extract(ctx context.Context, state *State) {
	if len(state.Selected) == 0 {
		return
	}

	visited := sitemap.NewVisitedSet()
	p.display.BeginStage(progress.StageExtraction, len(state.Selected), "")

	for i, sitemapURL := range state.Selected {
		urls, err := p.expander.Expand(ctx, sitemapURL, visited)
		if err != nil {
			state.SitemapErrors[sitemapURL] = err
			p.logger.Error().Err(err).Str("url", sitemapURL).Msg("Failed to expand sitemap")
		} else {
			state.SitemapURLCounts[sitemapURL] = len(urls)
			state.URLs = append(state.URLs, urls...)
			p.logger.Info().Str("url", sitemapURL).Int("urls", len(urls)).Msg("Sitemap expanded")
		}
		p.display.Observe(i+1, len(state.Selected), sitemapURL)
	}

	for i := range state.Candidates {
		if n, ok := state.SitemapURLCounts[state.Candidates[i].URL]; ok {
			count := n
			state.Candidates[i].URLCount = &count
		}
	}
	p.display.Finish(progress.StatusComplete, fmt.Sprintf("%d URL(s) from %d sitemap(s)", len(state.URLs), len(state.Selected)))
}

// AddManualURLs validates manual input and merges the valid URLs
func (p *Pipeline) AddManualURLs(state *State, opts Options) error {
	var sets []*urlhandler.TargetSet

	if opts.URLFile != "" {
		set, err := p.targets.LoadFromFile(opts.URLFile)
		if err != nil {
			return err
		}
		sets = append(sets, set)
	}
	if opts.ManualURLs != "" {
		sets = append(sets, p.targets.LoadFromText(opts.ManualURLs))
	}
	if len(sets) == 0 {
		return nil
	}

	merged := &urlhandler.TargetSet{Source: sets[0].Source}
	for _, set := range sets {
		merged.URLs = append(merged.URLs, set.URLs...)
		merged.Invalid = append(merged.Invalid, set.Invalid...)
	}
	for _, invalid := range merged.Invalid {
		p.logger.Warn().Err(invalid).Msg("Manual URL rejected")
	}

	state.Manual = merged
	state.URLs = append(state.URLs, merged.URLs...)
	return nil
}

func (p *Pipeline) finalizeURLs(state *State) {
	before := len(state.URLs)
	state.URLs = processor.DeduplicateURLs(state.URLs)
	p.logger.Info().
		Int("collected", before).
		Int("unique", len(state.URLs)).
		Int("sitemap_errors", len(state.SitemapErrors)).
		Msg("Page URL set ready")

	if state.Discovery != nil && state.Discovery.Robots != nil {
		disallowed := state.Discovery.Robots.CountDisallowed(state.URLs, p.discoverer.UserAgent())
		if disallowed > 0 {
			p.logger.Warn().Int("disallowed", disallowed).Msg("Sitemap URLs disallowed by robots.txt for this user agent")
		}
	}
}

// Process analyzes every URL of the state
func (p *Pipeline) Process(ctx context.Context, state *State) {
	p.display.BeginStage(progress.StageAnalysis, len(state.URLs), "")
	state.Records = p.processor.ProcessAll(ctx, state.URLs, p.display.Observe)

	if err := ctx.Err(); err != nil {
		state.Cancelled = true
		p.display.Finish(progress.StatusCancelled, err.Error())
		return
	}
	p.display.Finish(progress.StatusComplete, fmt.Sprintf("%d page(s) analyzed", len(state.Records)))
}

// Export writes the reports. Statuses, when given, filter the exported records.
func (p *Pipeline) Export(state *State, statuses []models.PageStatus) error {
	records := reporter.FilterByStatus(state.Records, statuses...)
	p.display.BeginStage(progress.StageExport, 0, "")

	paths, err := p.reporter.Export(&reporter.Report{
		RunID:    state.RunID,
		Records:  records,
		Sitemaps: state.Candidates,
	})
	state.ReportPaths = paths
	if err != nil {
		p.display.Finish(progress.StatusError, err.Error())
		return err
	}
	p.display.Finish(progress.StatusComplete, fmt.Sprintf("%d report(s) written", len(paths)))
	return nil
}

// LogSummary logs the final counts
func (p *Pipeline) LogSummary(state *State) {
	summary := state.Summary()
	p.logger.Info().
		Int("total", summary.TotalURLs).
		Int("matches", summary.Count(models.StatusMatch)).
		Int("mismatches", summary.Count(models.StatusMismatch)).
		Int("errors", summary.Count(models.StatusError)).
		Str("match_rate", fmt.Sprintf("%.1f%%", summary.MatchRate())).
		Msg("Audit summary")
}

func (p *Pipeline) recordRunStart(ctx context.Context, state *State) {
	if p.history == nil {
		return
	}
	if err := p.history.RecordRunStart(ctx, state.RunID, state.Source(), len(state.URLs), state.StartedAt); err != nil {
		p.logger.Error().Err(err).Msg("Failed to record run start, disabling history for this run")
		p.history = nil
	}
}

// recordRunCompletion uses a fresh context so a cancelled run is still stored
func (p *Pipeline) recordRunCompletion(state *State, exportErr error) {
	if p.history == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	status := datastore.RunStatusCompleted
	switch {
	case state.Cancelled:
		status = datastore.RunStatusCancelled
	case exportErr != nil:
		status = datastore.RunStatusFailed
	}

	summary := state.Summary()
	runSummary := datastore.RunSummary{
		Total:      summary.TotalURLs,
		Matches:    summary.Count(models.StatusMatch),
		Mismatches: summary.Count(models.StatusMismatch),
		Errors:     summary.Count(models.StatusError),
	}

	err := errors.Join(
		p.history.SavePageRecords(ctx, state.RunID, state.Records),
		p.history.CompleteRun(ctx, state.RunID, time.Now(), status, runSummary, state.ReportPaths),
	)
	if err != nil {
		p.logger.Error().Err(err).Msg("Failed to store run history")
		return
	}

	previous, err := p.history.PreviousCompletedRun(ctx, state.RunID)
	if err != nil {
		p.logger.Warn().Err(err).Msg("Failed to read previous run")
		return
	}
	if previous == nil {
		return
	}

	previousRecords, err := p.history.PageRecords(ctx, previous.RunID)
	if err != nil {
		p.logger.Warn().Err(err).Str("previous_run_id", previous.RunID).Msg("Failed to read previous page records")
	} else {
		state.StatusChanges = diffStatuses(previousRecords, state.Records)
		for _, change := range state.StatusChanges {
			p.logger.Debug().
				Str("url", change.URL).
				Str("previous", string(change.Previous)).
				Str("current", string(change.Current)).
				Msg("Page status changed")
		}
	}

	p.logger.Info().
		Str("previous_run_id", previous.RunID).
		Time("previous_start", previous.StartTime).
		Str("previous_match_rate", fmt.Sprintf("%.1f%%", previous.Summary.MatchRate())).
		Str("current_match_rate", fmt.Sprintf("%.1f%%", runSummary.MatchRate())).
		Int("status_changes", len(state.StatusChanges)).
		Msg("Compared with previous run")
}
