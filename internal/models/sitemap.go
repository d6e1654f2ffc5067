package models

// SitemapFormat is the format a sitemap candidate was classified as
type SitemapFormat int

const (
	FormatUnknown SitemapFormat = iota
	FormatXMLIndex
	FormatXMLSitemap
	FormatText
	FormatCompressed
	FormatJSON
)

// Label returns the display label for the format
func (f SitemapFormat) Label() string {
	switch f {
	case FormatXMLIndex:
		return "XML Index"
	case FormatXMLSitemap:
		return "XML Sitemap"
	case FormatText:
		return "Text Sitemap"
	case FormatCompressed:
		return "Compressed Sitemap"
	case FormatJSON:
		return "JSON Sitemap"
	default:
		return "Unknown Format"
	}
}

func (f SitemapFormat) String() string {
	return f.Label()
}

// MarshalText renders the label so JSON output stays readable
func (f SitemapFormat) MarshalText() ([]byte, error) {
	return []byte(f.Label()), nil
}

const (
	SitemapStatusAvailable   = "Available"
	SitemapStatusUnreachable = "Unreachable"
)

// SitemapCandidate is a sitemap location found during discovery. Candidates are unique by URL.
type SitemapCandidate struct {
	URL         string        `json:"url"`
	Format      SitemapFormat `json:"format"`
	Reachable   bool          `json:"reachable"`
	ContentType string        `json:"content_type,omitempty"`
	SizeBytes   *int64        `json:"size_bytes,omitempty"`
	URLCount    *int          `json:"url_count,omitempty"`
}

// Status returns "Available" or "Unreachable"
func (c SitemapCandidate) Status() string {
	if c.Reachable {
		return SitemapStatusAvailable
	}
	return SitemapStatusUnreachable
}

// SitemapInfo describes a sitemap resource without keeping its URLs
type SitemapInfo struct {
	URL          string `json:"url"`
	StatusCode   int    `json:"status_code,omitempty"`
	ContentType  string `json:"content_type,omitempty"`
	SizeBytes    *int64 `json:"size_bytes,omitempty"`
	LastModified string `json:"last_modified,omitempty"`
	URLCount     int    `json:"url_count"`
	Error        string `json:"error,omitempty"`
}
