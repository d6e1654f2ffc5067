package reporter

import (
	"encoding/json"
	"io"

	"github.com/aleister1102/canonguard/internal/common/errorwrapper"
	"github.com/aleister1102/canonguard/internal/models"
)

type jsonSummary struct {
	TotalURLs         int                `json:"total_urls"`
	StatusBreakdown   map[string]int     `json:"status_breakdown"`
	ResponseTimeStats *ResponseTimeStats `json:"response_time_stats,omitempty"`
}

type jsonMetadata struct {
	TotalURLs       int         `json:"total_urls"`
	ExportTimestamp string      `json:"export_timestamp"`
	RunID           string      `json:"run_id,omitempty"`
	Summary         jsonSummary `json:"summary"`
}

type jsonExport struct {
	Metadata jsonMetadata        `json:"metadata"`
	Results  []models.PageRecord `json:"results"`
}

type jsonWriter struct{}

func (jsonWriter) Extension() string { return "json" }

func (jsonWriter) Write(w io.Writer, report *Report) error {
	summary := Summarize(report.Records)
	results := report.Records
	if results == nil {
		results = []models.PageRecord{}
	}

	export := jsonExport{
		Metadata: jsonMetadata{
			TotalURLs:       len(report.Records),
			ExportTimestamp: report.GeneratedAt.Format(exportTimestampLayout),
			RunID:           report.RunID,
			Summary: jsonSummary{
				TotalURLs:         summary.TotalURLs,
				StatusBreakdown:   summary.StatusMap(),
				ResponseTimeStats: summary.ResponseTimes,
			},
		},
		Results: results,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(export); err != nil {
		return errorwrapper.WrapError(err, "failed to encode JSON report")
	}
	return nil
}
