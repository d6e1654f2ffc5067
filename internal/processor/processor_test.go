package processor

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aleister1102/canonguard/internal/config"
	"github.com/aleister1102/canonguard/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAnalyzer struct {
	inFlight    int32
	maxInFlight int32
	delay       time.Duration
	panicOn     string
}

func (s *stubAnalyzer) Analyze(ctx context.Context, pageURL string) models.PageRecord {
	n := atomic.AddInt32(&s.inFlight, 1)
	defer atomic.AddInt32(&s.inFlight, -1)
	for {
		old := atomic.LoadInt32(&s.maxInFlight)
		if n <= old || atomic.CompareAndSwapInt32(&s.maxInFlight, old, n) {
			break
		}
	}
	if pageURL == s.panicOn {
		panic("boom")
	}
	time.Sleep(s.delay)
	return models.PageRecord{URL: pageURL, Status: models.StatusMatch}
}

func processingConfig(concurrency int) config.ProcessingConfig {
	cfg := config.NewDefaultProcessingConfig()
	cfg.Concurrency = concurrency
	return cfg
}

func makeURLs(n int) []string {
	urls := make([]string, n)
	for i := range urls {
		urls[i] = fmt.Sprintf("https://example.com/page-%d", i)
	}
	return urls
}

func recordURLs(records []models.PageRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.URL
	}
	sort.Strings(out)
	return out
}

func TestProcessAll_Completeness(t *testing.T) {
	tests := []struct {
		name        string
		urls        []string
		concurrency int
		want        int
	}{
		{name: "empty", urls: nil, concurrency: 4, want: 0},
		{name: "single worker", urls: makeURLs(7), concurrency: 1, want: 7},
		{name: "more workers than urls", urls: makeURLs(3), concurrency: 20, want: 3},
		{name: "duplicates collapse", urls: append(makeURLs(5), makeURLs(5)...), concurrency: 3, want: 5},
		{name: "blank lines ignored", urls: []string{" https://example.com/a ", "", "https://example.com/a"}, concurrency: 2, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewProcessor(&stubAnalyzer{}, processingConfig(tt.concurrency), zerolog.Nop())

			records := p.ProcessAll(t.Context(), tt.urls, nil)

			assert.Len(t, records, tt.want)
			assert.Equal(t, recordURLs(records), func() []string {
				u := DeduplicateURLs(tt.urls)
				sort.Strings(u)
				return u
			}())
		})
	}
}

func TestProcessAll_BoundedParallelism(t *testing.T) {
	stub := &stubAnalyzer{delay: 5 * time.Millisecond}
	p := NewProcessor(stub, processingConfig(3), zerolog.Nop())

	records := p.ProcessAll(t.Context(), makeURLs(20), nil)

	assert.Len(t, records, 20)
	assert.LessOrEqual(t, atomic.LoadInt32(&stub.maxInFlight), int32(3))
}

func TestProcessAll_ProgressIsMonotonic(t *testing.T) {
	var mu sync.Mutex
	var dones []int
	var totals []int

	p := NewProcessor(&stubAnalyzer{delay: time.Millisecond}, processingConfig(8), zerolog.Nop())
	records := p.ProcessAll(t.Context(), makeURLs(25), func(done, total int, currentURL string) {
		mu.Lock()
		defer mu.Unlock()
		dones = append(dones, done)
		totals = append(totals, total)
		assert.NotEmpty(t, currentURL)
	})

	require.Len(t, records, 25)
	require.Len(t, dones, 25)
	for i, d := range dones {
		assert.Equal(t, i+1, d)
		assert.Equal(t, 25, totals[i])
	}
}

func TestProcessAll_PanicBecomesErrorRecord(t *testing.T) {
	urls := makeURLs(4)
	p := NewProcessor(&stubAnalyzer{panicOn: urls[2]}, processingConfig(2), zerolog.Nop())

	records := p.ProcessAll(t.Context(), urls, nil)

	require.Len(t, records, 4)
	for _, r := range records {
		if r.URL == urls[2] {
			assert.Equal(t, models.StatusError, r.Status)
			assert.Equal(t, "Processing failed: boom", models.StringValue(r.ErrorDetail))
		} else {
			assert.Equal(t, models.StatusMatch, r.Status)
		}
	}
}

func TestProcessAll_CancelledContextStillYieldsRecords(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewProcessor(&stubAnalyzer{}, processingConfig(2), zerolog.Nop())
	records := p.ProcessAll(ctx, makeURLs(6), nil)

	require.Len(t, records, 6)
	for _, r := range records {
		assert.Equal(t, models.StatusError, r.Status)
		assert.Equal(t, "Processing cancelled: context canceled", models.StringValue(r.ErrorDetail))
	}
}

func TestDeduplicateURLs(t *testing.T) {
	got := DeduplicateURLs([]string{"b", "a", " b ", "", "c", "a"})
	assert.Equal(t, []string{"b", "a", "c"}, got)
}

func TestAggregator_Records(t *testing.T) {
	agg := NewAggregator(2, nil)
	agg.Add(models.PageRecord{URL: "x"})

	records := agg.Records()
	records[0].URL = "mutated"

	assert.Equal(t, 1, agg.Len())
	assert.Equal(t, "x", agg.Records()[0].URL)
}
