package analyzer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/aleister1102/canonguard/internal/config"
	"github.com/aleister1102/canonguard/internal/httpclient"
	"github.com/aleister1102/canonguard/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTransport replays scripted attempts in order; the last one repeats.
type fakeTransport struct {
	mu       sync.Mutex
	attempts []fakeAttempt
	calls    int
	headers  map[string]string
}

type fakeAttempt struct {
	resp *httpclient.HTTPResponse
	err  error
}

func (f *fakeTransport) Get(_ context.Context, _ string, headers map[string]string) (*httpclient.HTTPResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.headers = headers
	i := f.calls
	if i >= len(f.attempts) {
		i = len(f.attempts) - 1
	}
	f.calls++
	return f.attempts[i].resp, f.attempts[i].err
}

func (f *fakeTransport) Head(ctx context.Context, rawURL string) (*httpclient.HTTPResponse, error) {
	return f.Get(ctx, rawURL, nil)
}

func htmlPage(finalURL string, head string) *httpclient.HTTPResponse {
	return &httpclient.HTTPResponse{
		StatusCode: http.StatusOK,
		Headers:    map[string]string{"Content-Type": "text/html; charset=utf-8"},
		Body:       []byte("<!doctype html><html><head>" + head + "</head><body>x</body></html>"),
		FinalURL:   finalURL,
	}
}

func newTestAnalyzer(t *testing.T, transport Transport, retries int, norm config.NormalizationConfig) (*Analyzer, *[]time.Duration) {
	t.Helper()
	var slept []time.Duration
	processing := config.NewDefaultProcessingConfig()
	processing.MaxRetries = retries

	a, err := NewAnalyzerBuilder(zerolog.Nop()).
		WithTransport(transport).
		WithProcessingConfig(processing).
		WithNormalizationConfig(norm).
		WithSleep(func(ctx context.Context, d time.Duration) error {
			slept = append(slept, d)
			return nil
		}).
		Build()
	require.NoError(t, err)
	return a, &slept
}

func defaultNorm() config.NormalizationConfig {
	return config.NormalizationConfig{ForceHTTPS: true, RemoveTrailingSlash: true}
}

func TestAnalyze_Classification(t *testing.T) {
	tests := []struct {
		name          string
		finalURL      string
		head          string
		norm          config.NormalizationConfig
		wantStatus    models.PageStatus
		wantCanonical *string
		wantDetail    *string
	}{
		{
			name:       "missing",
			finalURL:   "https://example.com/page",
			head:       `<title>t</title>`,
			norm:       defaultNorm(),
			wantStatus: models.StatusMissing,
			wantDetail: models.StringPtr("No canonical tag found"),
		},
		{
			name:          "multiple keeps raw hrefs joined",
			finalURL:      "https://example.com/page",
			head:          `<link rel="canonical" href="/a"><link rel="canonical" href="https://example.com/b"><link rel="canonical">`,
			norm:          defaultNorm(),
			wantStatus:    models.StatusMultiple,
			wantCanonical: models.StringPtr("/a, https://example.com/b, "),
			wantDetail:    models.StringPtr("Multiple canonical tags found: 3"),
		},
		{
			name:       "empty href",
			finalURL:   "https://example.com/page",
			head:       `<link rel="canonical" href="   ">`,
			norm:       defaultNorm(),
			wantStatus: models.StatusEmpty,
			wantDetail: models.StringPtr("Canonical tag is empty"),
		},
		{
			name:       "missing href attribute is empty",
			finalURL:   "https://example.com/page",
			head:       `<link rel="canonical">`,
			norm:       defaultNorm(),
			wantStatus: models.StatusEmpty,
			wantDetail: models.StringPtr("Canonical tag is empty"),
		},
		{
			name:          "match after normalization",
			finalURL:      "https://Example.com/Page/",
			head:          `<link rel="canonical" href="https://example.com/Page">`,
			norm:          defaultNorm(),
			wantStatus:    models.StatusMatch,
			wantCanonical: models.StringPtr("https://example.com/Page"),
		},
		{
			name:          "relative canonical resolves against final url",
			finalURL:      "https://example.com/blog/post/",
			head:          `<link rel="canonical" href="../post">`,
			norm:          defaultNorm(),
			wantStatus:    models.StatusMatch,
			wantCanonical: models.StringPtr("https://example.com/blog/post"),
		},
		{
			name:          "rel with several tokens",
			finalURL:      "https://example.com/x",
			head:          `<link rel="alternate canonical" href="https://example.com/x">`,
			norm:          defaultNorm(),
			wantStatus:    models.StatusMatch,
			wantCanonical: models.StringPtr("https://example.com/x"),
		},
		{
			name:          "query kept makes mismatch",
			finalURL:      "https://example.com/p?x=1",
			head:          `<link rel="canonical" href="https://example.com/p">`,
			norm:          defaultNorm(),
			wantStatus:    models.StatusMismatch,
			wantCanonical: models.StringPtr("https://example.com/p"),
			wantDetail:    models.StringPtr("Canonical URL does not match page URL"),
		},
		{
			name:          "query ignored makes match",
			finalURL:      "https://example.com/p?x=1",
			head:          `<link rel="canonical" href="https://example.com/p">`,
			norm:          config.NormalizationConfig{ForceHTTPS: true, RemoveTrailingSlash: true, IgnoreQueryParams: true},
			wantStatus:    models.StatusMatch,
			wantCanonical: models.StringPtr("https://example.com/p"),
		},
		{
			name:          "encoded slash differs from plain path",
			finalURL:      "https://example.com/files/a%2F",
			head:          `<link rel="canonical" href="https://example.com/files/a">`,
			norm:          defaultNorm(),
			wantStatus:    models.StatusMismatch,
			wantCanonical: models.StringPtr("https://example.com/files/a"),
			wantDetail:    models.StringPtr("Canonical URL does not match page URL"),
		},
		{
			name:          "bare question mark matches",
			finalURL:      "https://example.com/p?",
			head:          `<link rel="canonical" href="https://example.com/p">`,
			norm:          defaultNorm(),
			wantStatus:    models.StatusMatch,
			wantCanonical: models.StringPtr("https://example.com/p"),
		},
		{
			name:          "http canonical without force https",
			finalURL:      "https://example.com/p",
			head:          `<link rel="canonical" href="http://example.com/p">`,
			norm:          config.NormalizationConfig{},
			wantStatus:    models.StatusMismatch,
			wantCanonical: models.StringPtr("http://example.com/p"),
			wantDetail:    models.StringPtr("Canonical URL does not match page URL"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := &fakeTransport{attempts: []fakeAttempt{{resp: htmlPage(tt.finalURL, tt.head)}}}
			a, _ := newTestAnalyzer(t, transport, 3, tt.norm)

			record := a.Analyze(t.Context(), "http://example.com/requested")

			assert.Equal(t, "http://example.com/requested", record.URL)
			assert.Equal(t, tt.wantStatus, record.Status)
			assert.Equal(t, tt.wantCanonical, record.CanonicalURL)
			assert.Equal(t, tt.wantDetail, record.ErrorDetail)
			require.NotNil(t, record.HTTPStatus)
			assert.Equal(t, http.StatusOK, *record.HTTPStatus)
			assert.Equal(t, tt.finalURL, models.StringValue(record.FinalURL))
			assert.NotNil(t, record.ResponseTimeSeconds)
			assert.Equal(t, 1, transport.calls)
		})
	}
}

func TestAnalyze_SendsBrowserHeaders(t *testing.T) {
	transport := &fakeTransport{attempts: []fakeAttempt{{resp: htmlPage("https://example.com", "")}}}
	a, _ := newTestAnalyzer(t, transport, 1, defaultNorm())

	a.Analyze(t.Context(), "https://example.com")

	assert.Equal(t, "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8", transport.headers["Accept"])
	assert.Equal(t, "en-US,en;q=0.5", transport.headers["Accept-Language"])
	assert.Equal(t, "gzip, deflate", transport.headers["Accept-Encoding"])
	assert.Equal(t, "1", transport.headers["DNT"])
	assert.Equal(t, "keep-alive", transport.headers["Connection"])
}

func TestAnalyze_NonOKIsTerminal(t *testing.T) {
	transport := &fakeTransport{attempts: []fakeAttempt{{resp: &httpclient.HTTPResponse{
		StatusCode: http.StatusServiceUnavailable,
		FinalURL:   "https://example.com/final",
	}}}}
	a, slept := newTestAnalyzer(t, transport, 3, defaultNorm())

	record := a.Analyze(t.Context(), "https://example.com/page")

	assert.Equal(t, models.StatusError, record.Status)
	assert.Equal(t, "HTTP 503", models.StringValue(record.ErrorDetail))
	assert.Equal(t, http.StatusServiceUnavailable, *record.HTTPStatus)
	assert.Equal(t, "https://example.com/final", models.StringValue(record.FinalURL))
	assert.Nil(t, record.CanonicalURL)
	assert.Equal(t, 1, transport.calls)
	assert.Empty(t, *slept)
}

func TestAnalyze_RetryThenSuccess(t *testing.T) {
	transport := &fakeTransport{attempts: []fakeAttempt{
		{err: errors.New("context deadline exceeded (Client.Timeout exceeded while awaiting headers)")},
		{resp: htmlPage("https://example.com/page", `<link rel="canonical" href="https://example.com/page">`)},
	}}
	a, slept := newTestAnalyzer(t, transport, 3, defaultNorm())

	record := a.Analyze(t.Context(), "https://example.com/page")

	assert.Equal(t, models.StatusMatch, record.Status)
	assert.Nil(t, record.ErrorDetail)
	assert.Equal(t, 2, transport.calls)
	assert.Equal(t, []time.Duration{time.Second}, *slept)
}

func TestAnalyze_ExhaustedRetries(t *testing.T) {
	tests := []struct {
		retries   int
		wantSleep int
	}{
		{retries: 1, wantSleep: 0},
		{retries: 3, wantSleep: 2},
		{retries: 5, wantSleep: 4},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d attempts", tt.retries), func(t *testing.T) {
			transport := &fakeTransport{attempts: []fakeAttempt{{err: errors.New("dial tcp: connection refused")}}}
			a, slept := newTestAnalyzer(t, transport, tt.retries, defaultNorm())

			record := a.Analyze(t.Context(), "https://example.com/page")

			assert.Equal(t, models.StatusError, record.Status)
			assert.Equal(t, "Request failed: dial tcp: connection refused", models.StringValue(record.ErrorDetail))
			assert.Nil(t, record.HTTPStatus)
			assert.Nil(t, record.FinalURL)
			assert.NotNil(t, record.ResponseTimeSeconds)
			assert.Equal(t, tt.retries, transport.calls)
			assert.Len(t, *slept, tt.wantSleep)
		})
	}
}

func TestAnalyze_UnresolvableCanonical(t *testing.T) {
	transport := &fakeTransport{attempts: []fakeAttempt{{resp: htmlPage("https://example.com/page", `<link rel="canonical" href="http://[::1">`)}}}
	a, _ := newTestAnalyzer(t, transport, 1, defaultNorm())

	record := a.Analyze(t.Context(), "https://example.com/page")

	assert.Equal(t, models.StatusError, record.Status)
	assert.Contains(t, models.StringValue(record.ErrorDetail), "HTML parsing failed: ")
	assert.Equal(t, http.StatusOK, *record.HTTPStatus)
	assert.NotNil(t, record.ResponseTimeSeconds)
}

func TestAnalyze_EveryOutcomeIsClassified(t *testing.T) {
	outcomes := []fakeAttempt{
		{resp: htmlPage("https://e.com/", ``)},
		{resp: htmlPage("https://e.com/", `<link rel="canonical" href="https://e.com/">`)},
		{resp: htmlPage("https://e.com/", `<link rel="canonical" href="https://e.com/other">`)},
		{resp: htmlPage("https://e.com/", `<link rel="canonical" href="">`)},
		{resp: htmlPage("https://e.com/", `<link rel="canonical" href="a"><link rel="canonical" href="b">`)},
		{resp: &httpclient.HTTPResponse{StatusCode: http.StatusNotFound}},
		{err: errors.New("reset")},
	}

	seen := make(map[models.PageStatus]bool)
	for _, outcome := range outcomes {
		a, _ := newTestAnalyzer(t, &fakeTransport{attempts: []fakeAttempt{outcome}}, 1, defaultNorm())
		record := a.Analyze(t.Context(), "https://e.com/")
		assert.Contains(t, models.AllPageStatuses, record.Status)
		seen[record.Status] = true
	}
	assert.Len(t, seen, len(models.AllPageStatuses))
}

func TestAnalyze_AgainstServer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/old":
			http.Redirect(w, r, "/new/", http.StatusMovedPermanently)
		case "/new/":
			w.Header().Set("Content-Type", "text/html; charset=windows-1252")
			fmt.Fprintf(w, `<html><head><link rel="canonical" href="/new"></head></html>`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client, err := httpclient.NewHTTPClientBuilder(zerolog.Nop()).Build()
	require.NoError(t, err)
	a, _ := newTestAnalyzer(t, client, 2, config.NormalizationConfig{RemoveTrailingSlash: true})

	record := a.Analyze(t.Context(), server.URL+"/old")
	assert.Equal(t, models.StatusMatch, record.Status)
	assert.Equal(t, server.URL+"/new/", models.StringValue(record.FinalURL))
	assert.Equal(t, server.URL+"/new", models.StringValue(record.CanonicalURL))

	info := a.Info(t.Context(), server.URL+"/old")
	assert.Equal(t, http.StatusOK, info.StatusCode)
	assert.True(t, info.Redirected)
	assert.Equal(t, server.URL+"/new/", info.FinalURL)
	assert.Equal(t, "text/html; charset=windows-1252", info.ContentType)
	assert.Equal(t, "Unknown", info.LastModified)

	missing := a.Info(t.Context(), server.URL+"/missing")
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
	assert.False(t, missing.Redirected)
}

func TestBuild_RejectsZeroRetries(t *testing.T) {
	processing := config.NewDefaultProcessingConfig()
	processing.MaxRetries = 0

	_, err := NewAnalyzerBuilder(zerolog.Nop()).WithProcessingConfig(processing).Build()
	assert.Error(t, err)
}

func TestInfo(t *testing.T) {
	tests := []struct {
		name           string
		resp           *httpclient.HTTPResponse
		err            error
		wantFinal      string
		wantRedirected bool
		wantLength     string
		wantError      string
	}{
		{
			name: "redirected page",
			resp: &httpclient.HTTPResponse{
				StatusCode: http.StatusOK,
				Headers:    map[string]string{"Content-Type": "text/html", "Content-Length": "512"},
				FinalURL:   "https://example.com/new",
			},
			wantFinal:      "https://example.com/new",
			wantRedirected: true,
			wantLength:     "512",
		},
		{
			name: "direct page with missing headers",
			resp: &httpclient.HTTPResponse{
				StatusCode: http.StatusOK,
				FinalURL:   "https://example.com/old",
			},
			wantFinal:  "https://example.com/old",
			wantLength: "Unknown",
		},
		{
			name:      "transport failure",
			err:       errors.New("connection refused"),
			wantError: "connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := &fakeTransport{attempts: []fakeAttempt{{resp: tt.resp, err: tt.err}}}
			a, _ := newTestAnalyzer(t, transport, 1, defaultNorm())

			info := a.Info(t.Context(), "https://example.com/old")

			assert.Equal(t, "https://example.com/old", info.URL)
			assert.Equal(t, tt.wantError, info.Error)
			assert.Equal(t, tt.wantFinal, info.FinalURL)
			assert.Equal(t, tt.wantRedirected, info.Redirected)
			assert.Equal(t, tt.wantLength, info.ContentLength)
			if tt.err == nil {
				assert.Equal(t, http.StatusOK, info.StatusCode)
			}
		})
	}
}

func TestInfo_AgainstServer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/moved" {
			http.Redirect(w, r, "/target", http.StatusMovedPermanently)
			return
		}
		assert.Equal(t, http.MethodHead, r.Method)
		w.Header().Set("Last-Modified", "Wed, 01 May 2024 12:00:00 GMT")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client, err := httpclient.NewHTTPClientBuilder(zerolog.Nop()).Build()
	require.NoError(t, err)
	a, _ := newTestAnalyzer(t, client, 1, defaultNorm())

	info := a.Info(t.Context(), server.URL+"/moved")

	assert.Empty(t, info.Error)
	assert.Equal(t, server.URL+"/target", info.FinalURL)
	assert.True(t, info.Redirected)
	assert.Equal(t, "Wed, 01 May 2024 12:00:00 GMT", info.LastModified)
}
