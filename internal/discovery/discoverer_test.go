package discovery

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/aleister1102/canonguard/internal/common/errorwrapper"
	"github.com/aleister1102/canonguard/internal/config"
	"github.com/aleister1102/canonguard/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type siteServer struct {
	*httptest.Server
	mu    sync.Mutex
	heads []string
}

// newSiteServer serves robots.txt and answers HEAD with 200 for the given paths
func newSiteServer(t *testing.T, robotsStatus int, robots func(base string) string, available map[string]string) *siteServer {
	t.Helper()
	s := &siteServer{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			w.WriteHeader(robotsStatus)
			if robots != nil {
				fmt.Fprint(w, robots("http://"+r.Host))
			}
			return
		}
		if r.Method == http.MethodHead {
			s.mu.Lock()
			s.heads = append(s.heads, r.URL.Path)
			s.mu.Unlock()
		}
		contentType, ok := available[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if contentType != "" {
			w.Header().Set("Content-Type", contentType)
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *siteServer) headPaths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.heads...)
}

func newTestDiscoverer(t *testing.T) *Discoverer {
	t.Helper()
	d, err := NewDiscovererBuilder(zerolog.Nop()).WithConfig(config.NewDefaultDiscoveryConfig()).Build()
	require.NoError(t, err)
	return d
}

func candidateURLs(candidates []models.SitemapCandidate) []string {
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.URL)
	}
	return out
}

func TestDiscover_RobotsDirectives(t *testing.T) {
	server := newSiteServer(t, http.StatusOK, func(base string) string {
		return strings.Join([]string{
			"User-agent: *",
			"Disallow: /private/",
			"SITEMAP: " + base + "/sitemap_index.xml",
			"sitemap: /relative-sitemap.xml",
			"Sitemap: " + base + "/gone.xml",
			"Sitemap: " + base + "/sitemap_index.xml",
		}, "\r\n")
	}, map[string]string{
		"/sitemap_index.xml":    "application/xml",
		"/relative-sitemap.xml": "text/xml; charset=utf-8",
	})

	d := newTestDiscoverer(t)
	result, err := d.DiscoverResult(t.Context(), server.URL)
	require.NoError(t, err)

	require.Len(t, result.Candidates, 2)
	assert.Equal(t, server.URL+"/sitemap_index.xml", result.Candidates[0].URL)
	assert.Equal(t, models.FormatXMLIndex, result.Candidates[0].Format)
	assert.Equal(t, "Available", result.Candidates[0].Status())
	assert.Equal(t, server.URL+"/relative-sitemap.xml", result.Candidates[1].URL)
	assert.Equal(t, models.FormatXMLSitemap, result.Candidates[1].Format)
	assert.Equal(t, "text/xml; charset=utf-8", result.Candidates[1].ContentType)
	assert.False(t, result.UsedFallback)

	// The duplicate directive is validated once
	assert.Equal(t, []string{"/sitemap_index.xml", "/relative-sitemap.xml", "/gone.xml"}, server.headPaths())

	require.NotNil(t, result.Robots)
	disallowed := result.Robots.CountDisallowed([]string{
		server.URL + "/private/page",
		server.URL + "/public/page",
	}, d.UserAgent())
	assert.Equal(t, 1, disallowed)
}

func TestDiscover_FallbackWhenNoDirectives(t *testing.T) {
	server := newSiteServer(t, http.StatusOK, func(string) string {
		return "User-agent: *\nDisallow:\n"
	}, map[string]string{
		"/sitemap.xml": "application/xml",
		"/sitemap.txt": "text/plain",
		"/sitemap":     "application/json",
	})

	d := newTestDiscoverer(t)
	result, err := d.DiscoverResult(t.Context(), server.URL)
	require.NoError(t, err)

	assert.True(t, result.UsedFallback)
	assert.Equal(t, []string{
		server.URL + "/sitemap.xml",
		server.URL + "/sitemap.txt",
		server.URL + "/sitemap",
	}, candidateURLs(result.Candidates))
	assert.Equal(t, models.FormatText, result.Candidates[1].Format)
	assert.Equal(t, models.FormatJSON, result.Candidates[2].Format)
	assert.Equal(t, []string{"/sitemap.xml", "/sitemap_index.xml", "/sitemaps.xml", "/sitemap.txt", "/sitemap"}, server.headPaths())
}

func TestDiscover_FallbackWhenRobotsMissing(t *testing.T) {
	server := newSiteServer(t, http.StatusNotFound, nil, map[string]string{
		"/sitemap_index.xml": "",
	})

	d := newTestDiscoverer(t)
	candidates, err := d.Discover(t.Context(), server.URL)
	require.NoError(t, err)

	require.Len(t, candidates, 1)
	assert.Equal(t, models.FormatXMLIndex, candidates[0].Format)
}

func TestDiscover_NothingFound(t *testing.T) {
	server := newSiteServer(t, http.StatusNotFound, nil, nil)

	candidates, err := newTestDiscoverer(t).Discover(t.Context(), server.URL)
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestDiscover_RobotsTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	addr := server.URL
	server.Close()

	candidates, err := newTestDiscoverer(t).Discover(t.Context(), addr)
	require.Error(t, err)
	assert.Nil(t, candidates)
	assert.True(t, errorwrapper.IsFetchError(err))

	var fe *errorwrapper.FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, addr+"/robots.txt", fe.URL)
}

func TestDiscover_SkipRobots(t *testing.T) {
	server := newSiteServer(t, http.StatusOK, func(base string) string {
		return "Sitemap: " + base + "/from-robots.xml\n"
	}, map[string]string{
		"/from-robots.xml": "application/xml",
		"/sitemap.xml":     "application/xml",
	})

	cfg := config.NewDefaultDiscoveryConfig()
	cfg.CheckRobots = false
	d, err := NewDiscovererBuilder(zerolog.Nop()).WithConfig(cfg).Build()
	require.NoError(t, err)

	candidates, err := d.Discover(t.Context(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, []string{server.URL + "/sitemap.xml"}, candidateURLs(candidates))
}

func TestDiscover_InvalidDomain(t *testing.T) {
	_, err := newTestDiscoverer(t).Discover(t.Context(), "   ")
	require.Error(t, err)

	var ve *errorwrapper.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestClassifySitemap(t *testing.T) {
	tests := []struct {
		name        string
		url         string
		contentType string
		expected    models.SitemapFormat
	}{
		{name: "xml content type index", url: "https://e.com/sitemap_index", contentType: "application/xml", expected: models.FormatXMLIndex},
		{name: "xml suffix", url: "https://e.com/SITEMAP.XML", contentType: "", expected: models.FormatXMLSitemap},
		{name: "index in path with xml suffix", url: "https://e.com/Index/pages.xml", contentType: "", expected: models.FormatXMLIndex},
		{name: "text plain", url: "https://e.com/sitemap", contentType: "text/plain", expected: models.FormatText},
		{name: "text/xml is xml", url: "https://e.com/sitemap", contentType: "text/xml", expected: models.FormatXMLSitemap},
		{name: "txt suffix", url: "https://e.com/urls.txt", contentType: "", expected: models.FormatText},
		{name: "gzip suffix", url: "https://e.com/sitemap.xml.gz", contentType: "application/x-gzip", expected: models.FormatCompressed},
		{name: "gz served as text", url: "https://e.com/sitemap.gz", contentType: "text/html", expected: models.FormatText},
		{name: "json content type", url: "https://e.com/sitemap", contentType: "application/json", expected: models.FormatJSON},
		{name: "json suffix", url: "https://e.com/sitemap.json", contentType: "", expected: models.FormatJSON},
		{name: "unknown", url: "https://e.com/sitemap", contentType: "application/octet-stream", expected: models.FormatUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClassifySitemap(tt.url, tt.contentType))
		})
	}
}
