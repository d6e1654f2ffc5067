package progress

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aleister1102/canonguard/internal/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracker_NewIsIdle(t *testing.T) {
	info := NewTracker().Info()
	assert.Equal(t, StatusIdle, info.Status)
	assert.Equal(t, "", FormatLine(info, true))
}

func TestTracker_BeginStageResets(t *testing.T) {
	tr := NewTracker()
	tr.BeginStage(StageExtraction, 3, "")
	tr.Update(3, 3, "https://example.com/sitemap.xml")
	time.Sleep(5 * time.Millisecond)
	before := tr.Info().StartTime

	tr.BeginStage(StageAnalysis, 10, "")

	info := tr.Info()
	assert.Equal(t, StageAnalysis, info.Stage)
	assert.Equal(t, StatusRunning, info.Status)
	assert.Equal(t, int64(0), info.Current)
	assert.Equal(t, int64(10), info.Total)
	assert.True(t, info.StartTime.After(before))
}

func TestTracker_SetStatusClearsETA(t *testing.T) {
	tr := NewTracker()
	tr.BeginStage(StageAnalysis, 100, "")
	time.Sleep(5 * time.Millisecond)
	tr.Update(10, 100, "u")
	require.Greater(t, tr.Info().EstimatedETA, time.Duration(0))

	tr.SetStatus(StatusComplete, "done")

	info := tr.Info()
	assert.Equal(t, StatusComplete, info.Status)
	assert.Zero(t, info.EstimatedETA)
	assert.Equal(t, "done", info.Message)
}

func TestInfo_Percentage(t *testing.T) {
	tests := []struct {
		name     string
		current  int64
		total    int64
		expected float64
	}{
		{"zero total", 5, 0, 0},
		{"half", 5, 10, 50},
		{"complete", 10, 10, 100},
		{"overflow clamps", 12, 10, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := Info{Current: tt.current, Total: tt.total}
			assert.InDelta(t, tt.expected, info.Percentage(), 0.001)
		})
	}
}

func TestFormatLine(t *testing.T) {
	tests := []struct {
		name     string
		info     Info
		expected string
	}{
		{
			name:     "running with url",
			info:     Info{Stage: StageAnalysis, Status: StatusRunning, Current: 3, Total: 10, CurrentURL: "https://example.com/a"},
			expected: "Analysis: ⏳ [██████░░░░░░░░░░░░░░] 30.0% (3/10) | https://example.com/a",
		},
		{
			name:     "complete with message",
			info:     Info{Stage: StageAnalysis, Status: StatusComplete, Current: 10, Total: 10, Message: "10 pages"},
			expected: "Analysis: ✅ [████████████████████] 100.0% (10/10) | 10 pages",
		},
		{
			name:     "no total",
			info:     Info{Stage: StageDiscovery, Status: StatusRunning, Message: "example.com"},
			expected: "Discovery: ⏳ | example.com",
		},
		{
			name:     "running with eta",
			info:     Info{Stage: StageAnalysis, Status: StatusRunning, Current: 1, Total: 2, EstimatedETA: 90 * time.Second},
			expected: "Analysis: ⏳ [██████████░░░░░░░░░░] 50.0% (1/2) | ETA: 2m",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatLine(tt.info, true))
		})
	}
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "45s", formatDuration(45*time.Second))
	assert.Equal(t, "5m", formatDuration(5*time.Minute))
	assert.Equal(t, "2.5h", formatDuration(150*time.Minute))
}

func TestDisplayManager_LogsFinalLine(t *testing.T) {
	var buf syncBuffer
	logger := zerolog.New(&buf)
	cfg := config.NewDefaultProgressConfig()
	cfg.DisplayInterval = 60

	dm := NewDisplayManager(logger, cfg)
	dm.Start()
	dm.BeginStage(StageAnalysis, 2, "")
	dm.Observe(1, 2, "https://example.com/a")
	dm.Observe(2, 2, "https://example.com/b")
	dm.Finish(StatusComplete, "2 pages analyzed")
	dm.Stop()

	out := buf.String()
	assert.Contains(t, out, "Analysis: ✅")
	assert.Contains(t, out, "2 pages analyzed")
	assert.Contains(t, out, `"component":"ProgressDisplay"`)
	assert.Equal(t, 1, strings.Count(out, "2 pages analyzed"))
}

func TestDisplayManager_Disabled(t *testing.T) {
	var buf syncBuffer
	cfg := config.NewDefaultProgressConfig()
	cfg.EnableProgress = false

	dm := NewDisplayManager(zerolog.New(&buf), cfg)
	dm.Start()
	dm.Observe(1, 1, "u")
	dm.Stop()

	assert.Empty(t, buf.String())
	assert.Equal(t, int64(1), dm.Tracker().Info().Current)
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
