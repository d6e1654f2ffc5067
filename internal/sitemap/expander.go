package sitemap

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aleister1102/canonguard/internal/common/errorwrapper"
	"github.com/aleister1102/canonguard/internal/config"
	"github.com/aleister1102/canonguard/internal/httpclient"
	"github.com/aleister1102/canonguard/internal/models"
	"github.com/rs/zerolog"
)

// Fetcher is the subset of the HTTP client the expander needs
type Fetcher interface {
	Get(ctx context.Context, rawURL string, headers map[string]string) (*httpclient.HTTPResponse, error)
	Head(ctx context.Context, rawURL string) (*httpclient.HTTPResponse, error)
}

// Expander turns a sitemap URL into the page URLs it declares, following sitemap indexes
type Expander struct {
	fetcher Fetcher
	logger  zerolog.Logger
}

// ExpanderBuilder provides a fluent interface for creating Expander instances
type ExpanderBuilder struct {
	fetcher   Fetcher
	userAgent string
	timeout   time.Duration
	logger    zerolog.Logger
}

// NewExpanderBuilder creates a new ExpanderBuilder instance
func NewExpanderBuilder(logger zerolog.Logger) *ExpanderBuilder {
	return &ExpanderBuilder{
		userAgent: config.DefaultUserAgent,
		timeout:   time.Duration(config.DefaultTimeoutSeconds) * time.Second,
		logger:    logger.With().Str("component", "SitemapExpander").Logger(),
	}
}

// WithFetcher sets the HTTP fetcher
func (b *ExpanderBuilder) WithFetcher(fetcher Fetcher) *ExpanderBuilder {
	b.fetcher = fetcher
	return b
}

// WithDiscoveryConfig applies timeout and user agent used when no fetcher is set
func (b *ExpanderBuilder) WithDiscoveryConfig(cfg config.DiscoveryConfig) *ExpanderBuilder {
	if cfg.UserAgent != "" {
		b.userAgent = cfg.UserAgent
	}
	if cfg.TimeoutSeconds > 0 {
		b.timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	return b
}

// Build creates a new Expander
func (b *ExpanderBuilder) Build() (*Expander, error) {
	fetcher := b.fetcher
	if fetcher == nil {
		client, err := httpclient.NewHTTPClientBuilder(b.logger).
			WithTimeout(b.timeout).
			WithUserAgent(b.userAgent).
			Build()
		if err != nil {
			return nil, errorwrapper.WrapError(err, "failed to create sitemap HTTP client")
		}
		fetcher = client
	}
	return &Expander{fetcher: fetcher, logger: b.logger}, nil
}

// Expand returns the page URLs reachable from sitemapURL, in document order.
// Sitemap indexes are walked depth-first with an explicit stack. A URL already
// in visited yields nothing. A failing child sitemap fails the whole call.
func (e *Expander) Expand(ctx context.Context, sitemapURL string, visited *VisitedSet) ([]string, error) {
	if visited == nil {
		visited = NewVisitedSet()
	}

	var urls []string
	stack := []string{sitemapURL}

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !visited.Add(current) {
			e.logger.Debug().Str("url", current).Msg("Sitemap already processed, skipping")
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, errorwrapper.WrapError(err, fmt.Sprintf("expansion of '%s' interrupted", sitemapURL))
		}

		doc, err := e.fetchDocument(ctx, current)
		if err != nil {
			if current != sitemapURL {
				err = errorwrapper.WrapError(err, fmt.Sprintf("failed to expand child sitemap of '%s'", sitemapURL))
			}
			return nil, err
		}

		if doc.IsIndex {
			e.logger.Debug().Str("url", current).Int("children", len(doc.Children)).Msg("Expanding sitemap index")
			// Reverse push keeps document order when popping
			for i := len(doc.Children) - 1; i >= 0; i-- {
				stack = append(stack, doc.Children[i])
			}
			continue
		}
		urls = append(urls, doc.URLs...)
	}

	e.logger.Debug().Str("url", sitemapURL).Int("urls", len(urls)).Msg("Sitemap expanded")
	return urls, nil
}

// fetchDocument fetches and parses a single sitemap resource without following children
func (e *Expander) fetchDocument(ctx context.Context, sitemapURL string) (*sitemapDocument, error) {
	resp, err := e.fetcher.Get(ctx, sitemapURL, nil)
	if err != nil {
		return nil, errorwrapper.NewFetchError(sitemapURL, "request failed", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errorwrapper.NewFetchError(sitemapURL, fmt.Sprintf("HTTP %d", resp.StatusCode),
			errorwrapper.NewHTTPErrorWithURL(resp.StatusCode, http.StatusText(resp.StatusCode), sitemapURL))
	}

	contentType := strings.ToLower(resp.ContentType())
	body := e.maybeDecompress(sitemapURL, contentType, resp.Body)

	switch kind := sniff(body, contentType); kind {
	case kindXML:
		doc, err := parseXML(body)
		if err != nil {
			return nil, errorwrapper.NewParseError(sitemapURL, kind.String(), err)
		}
		return doc, nil
	case kindText:
		return &sitemapDocument{URLs: parseText(body)}, nil
	case kindJSON:
		urls, err := parseJSON(body)
		if err != nil {
			return nil, errorwrapper.NewParseError(sitemapURL, kind.String(), err)
		}
		return &sitemapDocument{URLs: urls}, nil
	default:
		return autoDetect(body), nil
	}
}

// maybeDecompress gunzips .gz resources. Failures keep the raw bytes, which also
// covers bodies the transport already decoded.
func (e *Expander) maybeDecompress(sitemapURL, contentType string, body []byte) []byte {
	if !strings.HasSuffix(strings.ToLower(sitemapURL), ".gz") && !strings.Contains(contentType, "gzip") {
		return body
	}
	decoded, err := httpclient.Gunzip(body)
	if err != nil {
		e.logger.Debug().Err(err).Str("url", sitemapURL).Msg("Gzip decompression failed, using raw content")
		return body
	}
	return decoded
}

// autoDetect tries XML, then text, then JSON. Nothing matching yields an empty result.
func autoDetect(body []byte) *sitemapDocument {
	if strings.Contains(string(prefix(body, 100)), "<") {
		if doc, err := parseXML(body); err == nil {
			return doc
		}
	}
	if urls := parseText(body); len(urls) > 0 {
		return &sitemapDocument{URLs: urls}
	}
	if urls, err := parseJSON(body); err == nil {
		return &sitemapDocument{URLs: urls}
	}
	return &sitemapDocument{}
}

// Info reports HEAD metadata and the number of URLs a sitemap expands to.
// Failures are recorded in the result and never returned.
func (e *Expander) Info(ctx context.Context, sitemapURL string) models.SitemapInfo {
	info := models.SitemapInfo{URL: sitemapURL}

	resp, err := e.fetcher.Head(ctx, sitemapURL)
	if err != nil {
		info.Error = err.Error()
		return info
	}

	info.StatusCode = resp.StatusCode
	info.ContentType = resp.ContentType()
	info.SizeBytes = resp.Size()
	info.LastModified = resp.Header("Last-Modified")

	if resp.StatusCode != http.StatusOK {
		return info
	}

	urls, err := e.Expand(ctx, sitemapURL, NewVisitedSet())
	if err != nil {
		info.Error = err.Error()
		return info
	}
	info.URLCount = len(urls)
	return info
}

// Preview returns at most limit URLs of a sitemap. Errors yield an empty preview.
func (e *Expander) Preview(ctx context.Context, sitemapURL string, limit int) []string {
	urls, err := e.Expand(ctx, sitemapURL, NewVisitedSet())
	if err != nil {
		e.logger.Debug().Err(err).Str("url", sitemapURL).Msg("Sitemap preview failed")
		return nil
	}
	if limit >= 0 && len(urls) > limit {
		urls = urls[:limit]
	}
	return urls
}
