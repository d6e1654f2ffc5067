package reporter

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/aleister1102/canonguard/internal/models"
)

// StatusCount is one row of a breakdown table
type StatusCount struct {
	Label      string
	Count      int
	Percentage float64
}

// ResponseTimeStats summarizes response times in seconds
type ResponseTimeStats struct {
	Average float64 `json:"average"`
	Median  float64 `json:"median"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
}

// Summary holds aggregate metrics over a record set
type Summary struct {
	TotalURLs int
	// StatusBreakdown is ordered by descending count
	StatusBreakdown []StatusCount
	// HTTPBreakdown is labeled "HTTP <code>" and ordered by descending count
	HTTPBreakdown []StatusCount
	// ResponseTimes is nil when no record has a response time
	ResponseTimes *ResponseTimeStats
}

// Summarize computes the summary of records
func Summarize(records []models.PageRecord) Summary {
	summary := Summary{TotalURLs: len(records)}
	if len(records) == 0 {
		return summary
	}

	statusCounts := make(map[models.PageStatus]int)
	httpCounts := make(map[int]int)
	var times []float64

	for _, r := range records {
		statusCounts[r.Status]++
		if r.HTTPStatus != nil {
			httpCounts[*r.HTTPStatus]++
		}
		if r.ResponseTimeSeconds != nil {
			times = append(times, *r.ResponseTimeSeconds)
		}
	}

	statusOrder := func(s models.PageStatus) int {
		if i := slices.Index(models.AllPageStatuses, s); i >= 0 {
			return i
		}
		return len(models.AllPageStatuses)
	}
	statuses := make([]models.PageStatus, 0, len(statusCounts))
	for s := range statusCounts {
		statuses = append(statuses, s)
	}
	slices.SortFunc(statuses, func(a, b models.PageStatus) int {
		if c := cmp.Compare(statusCounts[b], statusCounts[a]); c != 0 {
			return c
		}
		return cmp.Compare(statusOrder(a), statusOrder(b))
	})
	for _, s := range statuses {
		summary.StatusBreakdown = append(summary.StatusBreakdown, newStatusCount(string(s), statusCounts[s], len(records)))
	}

	codes := make([]int, 0, len(httpCounts))
	for code := range httpCounts {
		codes = append(codes, code)
	}
	slices.SortFunc(codes, func(a, b int) int {
		if c := cmp.Compare(httpCounts[b], httpCounts[a]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	for _, code := range codes {
		summary.HTTPBreakdown = append(summary.HTTPBreakdown, newStatusCount(fmt.Sprintf("HTTP %d", code), httpCounts[code], len(records)))
	}

	if len(times) > 0 {
		summary.ResponseTimes = computeResponseTimeStats(times)
	}
	return summary
}

// Count returns the number of records with status
func (s Summary) Count(status models.PageStatus) int {
	for _, sc := range s.StatusBreakdown {
		if sc.Label == string(status) {
			return sc.Count
		}
	}
	return 0
}

// StatusMap returns status label to count, as exported in JSON metadata
func (s Summary) StatusMap() map[string]int {
	out := make(map[string]int, len(s.StatusBreakdown))
	for _, sc := range s.StatusBreakdown {
		out[sc.Label] = sc.Count
	}
	return out
}

// MatchRate returns the percentage of Match records
func (s Summary) MatchRate() float64 {
	if s.TotalURLs == 0 {
		return 0
	}
	return float64(s.Count(models.StatusMatch)) * 100 / float64(s.TotalURLs)
}

func newStatusCount(label string, count, total int) StatusCount {
	return StatusCount{
		Label:      label,
		Count:      count,
		Percentage: float64(count) * 100 / float64(total),
	}
}

func computeResponseTimeStats(times []float64) *ResponseTimeStats {
	sorted := slices.Clone(times)
	slices.Sort(sorted)

	var sum float64
	for _, t := range sorted {
		sum += t
	}

	n := len(sorted)
	median := sorted[n/2]
	if n%2 == 0 {
		median = (sorted[n/2-1] + sorted[n/2]) / 2
	}

	return &ResponseTimeStats{
		Average: sum / float64(n),
		Median:  median,
		Min:     sorted[0],
		Max:     sorted[n-1],
	}
}

// FilterByStatus returns the records whose status is one of statuses, keeping order.
// With no statuses every record is returned.
func FilterByStatus(records []models.PageRecord, statuses ...models.PageStatus) []models.PageRecord {
	if len(statuses) == 0 {
		return slices.Clone(records)
	}
	out := make([]models.PageRecord, 0, len(records))
	for _, r := range records {
		if slices.Contains(statuses, r.Status) {
			out = append(out, r)
		}
	}
	return out
}

// Issues returns Mismatch, Error, Multiple and Empty records
func Issues(records []models.PageRecord) []models.PageRecord {
	out := make([]models.PageRecord, 0)
	for _, r := range records {
		if r.Status.IsIssue() {
			out = append(out, r)
		}
	}
	return out
}

// Matches returns Match records
func Matches(records []models.PageRecord) []models.PageRecord {
	return FilterByStatus(records, models.StatusMatch)
}

// SortByURL returns a copy of records ordered by requested URL
func SortByURL(records []models.PageRecord) []models.PageRecord {
	out := slices.Clone(records)
	slices.SortStableFunc(out, func(a, b models.PageRecord) int {
		return strings.Compare(a.URL, b.URL)
	})
	return out
}

// ParseStatuses converts comma-separated status names to statuses.
// "mismatches" selects Mismatch alone; "issues" selects every issue status.
func ParseStatuses(filter string) ([]models.PageStatus, error) {
	var out []models.PageStatus
	for _, part := range strings.Split(filter, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if strings.EqualFold(part, "mismatches") {
			part = string(models.StatusMismatch)
		}
		if strings.EqualFold(part, "issues") {
			for _, s := range models.AllPageStatuses {
				if s.IsIssue() && !slices.Contains(out, s) {
					out = append(out, s)
				}
			}
			continue
		}
		idx := slices.IndexFunc(models.AllPageStatuses, func(s models.PageStatus) bool {
			return strings.EqualFold(string(s), part)
		})
		if idx < 0 {
			return nil, fmt.Errorf("unknown status '%s'", part)
		}
		if s := models.AllPageStatuses[idx]; !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return out, nil
}
