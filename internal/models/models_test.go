package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSitemapFormat_Label(t *testing.T) {
	tests := []struct {
		format   SitemapFormat
		expected string
	}{
		{FormatXMLIndex, "XML Index"},
		{FormatXMLSitemap, "XML Sitemap"},
		{FormatText, "Text Sitemap"},
		{FormatCompressed, "Compressed Sitemap"},
		{FormatJSON, "JSON Sitemap"},
		{FormatUnknown, "Unknown Format"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.format.Label())
		})
	}
}

func TestSitemapCandidate_Status(t *testing.T) {
	assert.Equal(t, "Available", SitemapCandidate{Reachable: true}.Status())
	assert.Equal(t, "Unreachable", SitemapCandidate{}.Status())
}

func TestPageRecord_Row(t *testing.T) {
	record := PageRecord{
		URL:                 "https://example.com/a",
		FinalURL:            StringPtr("https://example.com/a/"),
		CanonicalURL:        StringPtr("https://example.com/a"),
		Status:              StatusMatch,
		ResponseTimeSeconds: Float64Ptr(0.1234),
		HTTPStatus:          IntPtr(200),
	}

	assert.Equal(t, []string{
		"https://example.com/a",
		"https://example.com/a/",
		"https://example.com/a",
		"Match",
		"",
		"0.123",
		"200",
	}, record.Row())
	assert.Len(t, record.Row(), len(PageRecordColumns))
}

func TestPageStatus_IsIssue(t *testing.T) {
	issues := map[PageStatus]bool{
		StatusMatch:    false,
		StatusMissing:  false,
		StatusMismatch: true,
		StatusError:    true,
		StatusMultiple: true,
		StatusEmpty:    true,
	}
	for status, want := range issues {
		assert.Equal(t, want, status.IsIssue(), string(status))
	}
}

func TestPageRecord_ToParquet(t *testing.T) {
	record := PageRecord{URL: "https://example.com", Status: StatusError, ErrorDetail: StringPtr("HTTP 500"), HTTPStatus: IntPtr(500)}

	row := record.ToParquet("run-1", 1700000000000)

	assert.Equal(t, "run-1", row.RunID)
	assert.Equal(t, "Error", row.Status)
	assert.Equal(t, int32(500), *row.HTTPStatus)
	assert.Nil(t, row.FinalURL)
	assert.Equal(t, int64(1700000000000), row.AuditTimestamp)
}
