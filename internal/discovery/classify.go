package discovery

import (
	"strings"

	"github.com/aleister1102/canonguard/internal/models"
)

// ClassifySitemap decides a candidate's format from its URL and Content-Type.
// The checks run in a fixed order; the first match wins.
func ClassifySitemap(sitemapURL, contentType string) models.SitemapFormat {
	urlLower := strings.ToLower(sitemapURL)
	ct := strings.ToLower(contentType)

	switch {
	case strings.Contains(ct, "xml") || strings.HasSuffix(urlLower, ".xml"):
		if strings.Contains(urlLower, "index") {
			return models.FormatXMLIndex
		}
		return models.FormatXMLSitemap
	case strings.Contains(ct, "text") || strings.HasSuffix(urlLower, ".txt"):
		return models.FormatText
	case strings.HasSuffix(urlLower, ".gz"):
		return models.FormatCompressed
	case strings.Contains(ct, "json") || strings.HasSuffix(urlLower, ".json"):
		return models.FormatJSON
	default:
		return models.FormatUnknown
	}
}
