package analyzer

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/aleister1102/canonguard/internal/config"
	"github.com/aleister1102/canonguard/internal/httpclient"
	"github.com/aleister1102/canonguard/internal/models"
	"github.com/rs/zerolog"
)

// Transport performs single HTTP attempts. *httpclient.HTTPClient satisfies it.
type Transport interface {
	Get(ctx context.Context, rawURL string, headers map[string]string) (*httpclient.HTTPResponse, error)
	Head(ctx context.Context, rawURL string) (*httpclient.HTTPResponse, error)
}

// pageRequestHeaders are sent with every page fetch
var pageRequestHeaders = map[string]string{
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
	"Accept-Language": "en-US,en;q=0.5",
	"Accept-Encoding": "gzip, deflate",
	"DNT":             "1",
	"Connection":      "keep-alive",
}

// Analyzer fetches pages and classifies their canonical link.
// It is safe for concurrent use; config is read-only after Build.
type Analyzer struct {
	transport     Transport
	retry         *httpclient.RetryHandler
	normalization config.NormalizationConfig
	logger        zerolog.Logger
}

// Analyze produces exactly one record for pageURL. Failures become Error records.
func (a *Analyzer) Analyze(ctx context.Context, pageURL string) models.PageRecord {
	start := time.Now()

	result := a.retry.DoWithRetry(ctx, pageURL, func(ctx context.Context) (*httpclient.HTTPResponse, error) {
		return a.transport.Get(ctx, pageURL, pageRequestHeaders)
	})
	elapsed := models.Float64Ptr(time.Since(start).Seconds())

	record := models.PageRecord{URL: pageURL, ResponseTimeSeconds: elapsed}

	if result.State != httpclient.StateSuccess {
		record.Status = models.StatusError
		record.ErrorDetail = models.StringPtr(fmt.Sprintf("Request failed: %v", result.Err))
		a.logger.Warn().
			Str("url", pageURL).
			Int("attempts", result.Attempts).
			Err(result.Err).
			Msg("Page fetch failed")
		return record
	}

	resp := result.Response
	record.HTTPStatus = models.IntPtr(resp.StatusCode)
	record.FinalURL = models.StringPtr(finalURLOf(resp, pageURL))

	if resp.StatusCode != http.StatusOK {
		record.Status = models.StatusError
		record.ErrorDetail = models.StringPtr(fmt.Sprintf("HTTP %d", resp.StatusCode))
		return record
	}

	verdict, err := a.analyzeBody(*record.FinalURL, resp)
	if err != nil {
		record.Status = models.StatusError
		record.ErrorDetail = models.StringPtr(fmt.Sprintf("HTML parsing failed: %v", err))
		return record
	}

	record.Status = verdict.Status
	record.CanonicalURL = verdict.CanonicalURL
	record.ErrorDetail = verdict.Detail

	a.logger.Debug().
		Str("url", pageURL).
		Str("status", string(record.Status)).
		Int("attempts", result.Attempts).
		Msg("Page analyzed")

	return record
}

func (a *Analyzer) analyzeBody(finalURL string, resp *httpclient.HTTPResponse) (Classification, error) {
	hrefs, err := ExtractCanonicalHrefs(resp.Body, resp.ContentType())
	if err != nil {
		return Classification{}, err
	}
	return Classify(finalURL, hrefs, a.normalization)
}

// Info issues a single HEAD request and reports what the server returned.
// Errors are recorded in the result.
func (a *Analyzer) Info(ctx context.Context, pageURL string) models.URLInfo {
	start := time.Now()
	info := models.URLInfo{URL: pageURL}

	resp, err := a.transport.Head(ctx, pageURL)
	if err != nil {
		info.Error = err.Error()
		return info
	}

	info.ResponseTime = time.Since(start).Seconds()
	info.FinalURL = finalURLOf(resp, pageURL)
	info.StatusCode = resp.StatusCode
	info.ContentType = headerOrUnknown(resp.ContentType())
	info.ContentLength = headerOrUnknown(resp.Header("Content-Length"))
	info.LastModified = headerOrUnknown(resp.Header("Last-Modified"))
	info.Redirected = info.FinalURL != pageURL
	return info
}

func finalURLOf(resp *httpclient.HTTPResponse, requested string) string {
	if resp.FinalURL != "" {
		return resp.FinalURL
	}
	return requested
}

func headerOrUnknown(v string) string {
	if v == "" {
		return "Unknown"
	}
	return v
}
