package processor

import (
	"sync"

	"github.com/aleister1102/canonguard/internal/models"
)

// ProgressFunc receives (completed, total, currentURL) after each record is collected
type ProgressFunc func(done, total int, currentURL string)

// Aggregator collects page records in completion order.
// Progress callbacks run under the aggregator lock, so done is strictly increasing.
type Aggregator struct {
	mu         sync.Mutex
	records    []models.PageRecord
	total      int
	onProgress ProgressFunc
}

// NewAggregator creates an Aggregator expecting total records
func NewAggregator(total int, onProgress ProgressFunc) *Aggregator {
	return &Aggregator{
		records:    make([]models.PageRecord, 0, total),
		total:      total,
		onProgress: onProgress,
	}
}

// Add appends a record and reports progress
func (a *Aggregator) Add(record models.PageRecord) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.records = append(a.records, record)
	if a.onProgress != nil {
		a.onProgress(len(a.records), a.total, record.URL)
	}
}

// Len returns the number of records collected so far
func (a *Aggregator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.records)
}

// Records returns a copy of the collected records
func (a *Aggregator) Records() []models.PageRecord {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]models.PageRecord, len(a.records))
	copy(out, a.records)
	return out
}
