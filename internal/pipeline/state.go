package pipeline

import (
	"time"

	"github.com/aleister1102/canonguard/internal/discovery"
	"github.com/aleister1102/canonguard/internal/models"
	"github.com/aleister1102/canonguard/internal/reporter"
	"github.com/aleister1102/canonguard/internal/urlhandler"
)

// Options are the per-run inputs, usually taken from command-line flags
type Options struct {
	// Domain runs discovery when set
	Domain string
	// Sitemaps restricts extraction to these sitemap URLs. Empty selects every reachable candidate.
	Sitemaps []string
	// URLFile is a file of manual page URLs, one per line
	URLFile string
	// ManualURLs is newline-separated manual page URLs
	ManualURLs string
	// DiscoverOnly stops after discovery and sitemap info
	DiscoverOnly bool
	// ExportStatuses limits exported records to these statuses. Empty exports all.
	ExportStatuses []models.PageStatus
}

// State is the explicit record of one run, filled stage by stage
type State struct {
	RunID     string
	StartedAt time.Time

	Discovery  *discovery.Result
	Candidates []models.SitemapCandidate
	Selected   []string

	// SitemapErrors holds per-sitemap expansion failures; they do not abort the run
	SitemapErrors    map[string]error
	SitemapURLCounts map[string]int
	// SitemapPreviews holds the first URLs of each reachable candidate (discover-only)
	SitemapPreviews map[string][]string

	Manual *urlhandler.TargetSet
	// URLs is the deduplicated page set, sitemap URLs first then manual ones
	URLs []string

	Records     []models.PageRecord
	ReportPaths []string
	Cancelled   bool

	// StatusChanges lists pages whose status differs from the previous completed run
	StatusChanges []StatusChange
}

// StatusChange is a page whose classification moved between two runs
type StatusChange struct {
	URL      string
	Previous models.PageStatus
	Current  models.PageStatus
}

func newState(runID string) *State {
	return &State{
		RunID:            runID,
		StartedAt:        time.Now(),
		SitemapErrors:    make(map[string]error),
		SitemapURLCounts: make(map[string]int),
		SitemapPreviews:  make(map[string][]string),
	}
}

// Summary computes aggregate metrics over the records
func (s *State) Summary() reporter.Summary {
	return reporter.Summarize(s.Records)
}

// Source describes where the URLs of the run came from
func (s *State) Source() string {
	switch {
	case s.Discovery != nil && s.Manual != nil:
		return s.Discovery.BaseURL + " + " + s.Manual.Source
	case s.Discovery != nil:
		return s.Discovery.BaseURL
	case s.Manual != nil:
		return s.Manual.Source
	case len(s.Selected) > 0:
		return "sitemaps"
	default:
		return "unknown"
	}
}

// diffStatuses reports pages present in both runs whose status changed, in current order
func diffStatuses(previous, current []models.PageRecord) []StatusChange {
	before := make(map[string]models.PageStatus, len(previous))
	for _, r := range previous {
		before[r.URL] = r.Status
	}

	var changes []StatusChange
	for _, r := range current {
		if prev, ok := before[r.URL]; ok && prev != r.Status {
			changes = append(changes, StatusChange{URL: r.URL, Previous: prev, Current: r.Status})
		}
	}
	return changes
}
