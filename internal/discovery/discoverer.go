package discovery

import (
	"context"
	"net/http"
	"strings"

	"github.com/aleister1102/canonguard/internal/common/errorwrapper"
	"github.com/aleister1102/canonguard/internal/config"
	"github.com/aleister1102/canonguard/internal/httpclient"
	"github.com/aleister1102/canonguard/internal/models"
	"github.com/aleister1102/canonguard/internal/urlhandler"
	"github.com/rs/zerolog"
)

// Fetcher is the subset of the HTTP client discovery needs
type Fetcher interface {
	Get(ctx context.Context, rawURL string, headers map[string]string) (*httpclient.HTTPResponse, error)
	Head(ctx context.Context, rawURL string) (*httpclient.HTTPResponse, error)
}

// Result is the outcome of one discovery call
type Result struct {
	BaseURL      string
	RobotsURL    string
	RobotsStatus int
	Robots       *RobotsRules
	UsedFallback bool
	Candidates   []models.SitemapCandidate
}

// Discoverer finds sitemap candidates through robots.txt and well-known paths
type Discoverer struct {
	config  config.DiscoveryConfig
	fetcher Fetcher
	logger  zerolog.Logger
}

// UserAgent returns the user agent discovery requests are sent with
func (d *Discoverer) UserAgent() string {
	return d.config.UserAgent
}

// Discover returns the validated sitemap candidates for domain
func (d *Discoverer) Discover(ctx context.Context, domain string) ([]models.SitemapCandidate, error) {
	result, err := d.DiscoverResult(ctx, domain)
	if err != nil {
		return nil, err
	}
	return result.Candidates, nil
}

// DiscoverResult runs discovery and keeps the robots.txt details alongside the candidates.
// Only a transport failure fetching robots.txt is returned as an error.
func (d *Discoverer) DiscoverResult(ctx context.Context, domain string) (*Result, error) {
	base, err := urlhandler.BaseURL(domain)
	if err != nil {
		return nil, errorwrapper.NewValidationError("domain", domain, err.Error())
	}

	result := &Result{
		BaseURL:   base.String(),
		RobotsURL: base.String() + "/robots.txt",
	}
	logger := d.logger.With().Str("base_url", result.BaseURL).Logger()

	if !d.config.CheckRobots {
		logger.Debug().Msg("robots.txt check disabled, probing well-known paths")
		result.UsedFallback = true
		result.Candidates = d.tryWellKnownPaths(ctx, result.BaseURL)
		return result, nil
	}

	resp, err := d.fetcher.Get(ctx, result.RobotsURL, nil)
	if err != nil {
		logger.Error().Err(err).Str("url", result.RobotsURL).Msg("Failed to fetch robots.txt")
		return nil, errorwrapper.NewFetchError(result.RobotsURL, "failed to fetch robots.txt", err)
	}
	result.RobotsStatus = resp.StatusCode

	if resp.StatusCode != http.StatusOK {
		logger.Info().Int("status_code", resp.StatusCode).Msg("robots.txt not available, probing well-known paths")
		result.UsedFallback = true
		result.Candidates = d.tryWellKnownPaths(ctx, result.BaseURL)
		return result, nil
	}

	result.Robots = parseRobots(resp.StatusCode, resp.Body)

	seen := make(map[string]struct{})
	for _, sitemapURL := range extractSitemapDirectives(string(resp.Body), base) {
		if _, dup := seen[sitemapURL]; dup {
			continue
		}
		seen[sitemapURL] = struct{}{}

		if candidate, ok := d.validateCandidate(ctx, sitemapURL); ok {
			result.Candidates = append(result.Candidates, candidate)
		}
	}

	if len(result.Candidates) == 0 {
		logger.Info().Msg("No valid Sitemap directives in robots.txt, probing well-known paths")
		result.UsedFallback = true
		result.Candidates = d.tryWellKnownPaths(ctx, result.BaseURL)
	}

	logger.Info().
		Int("candidates", len(result.Candidates)).
		Bool("used_fallback", result.UsedFallback).
		Msg("Sitemap discovery completed")

	return result, nil
}

func (d *Discoverer) tryWellKnownPaths(ctx context.Context, baseURL string) []models.SitemapCandidate {
	var candidates []models.SitemapCandidate
	for _, path := range d.config.WellKnownPaths {
		if ctx.Err() != nil {
			break
		}
		if candidate, ok := d.validateCandidate(ctx, baseURL+path); ok {
			candidates = append(candidates, candidate)
		}
	}
	return candidates
}

// validateCandidate issues a HEAD request; only a 200 yields a candidate. Errors are swallowed.
func (d *Discoverer) validateCandidate(ctx context.Context, sitemapURL string) (models.SitemapCandidate, bool) {
	resp, err := d.fetcher.Head(ctx, sitemapURL)
	if err != nil {
		d.logger.Debug().Err(err).Str("url", sitemapURL).Msg("Sitemap candidate unreachable")
		return models.SitemapCandidate{}, false
	}
	if resp.StatusCode != http.StatusOK {
		d.logger.Debug().Int("status_code", resp.StatusCode).Str("url", sitemapURL).Msg("Sitemap candidate rejected")
		return models.SitemapCandidate{}, false
	}

	contentType := strings.ToLower(resp.ContentType())
	return models.SitemapCandidate{
		URL:         sitemapURL,
		Format:      ClassifySitemap(sitemapURL, contentType),
		Reachable:   true,
		ContentType: contentType,
		SizeBytes:   resp.Size(),
	}, true
}
