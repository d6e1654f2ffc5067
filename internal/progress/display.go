package progress

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/aleister1102/canonguard/internal/config"
	"github.com/rs/zerolog"
)

const barWidth = 20

// DisplayManager periodically logs the tracker state as an info line.
// Updates also trigger an immediate render, deduplicated against the last line.
type DisplayManager struct {
	tracker       *Tracker
	cfg           config.ProgressConfig
	logger        zerolog.Logger
	mu            sync.Mutex
	running       bool
	cancel        context.CancelFunc
	done          chan struct{}
	trigger       chan struct{}
	lastDisplayed string
}

// NewDisplayManager creates a display manager
func NewDisplayManager(logger zerolog.Logger, cfg config.ProgressConfig) *DisplayManager {
	if cfg.DisplayInterval <= 0 {
		cfg.DisplayInterval = config.NewDefaultProgressConfig().DisplayInterval
	}
	return &DisplayManager{
		tracker: NewTracker(),
		cfg:     cfg,
		logger:  logger.With().Str("component", "ProgressDisplay").Logger(),
		trigger: make(chan struct{}, 1),
	}
}

// Tracker exposes the underlying tracker
func (dm *DisplayManager) Tracker() *Tracker {
	return dm.tracker
}

// Start launches the display loop. It is a no-op when progress is disabled.
func (dm *DisplayManager) Start() {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	if dm.running {
		return
	}
	if !dm.cfg.EnableProgress {
		dm.logger.Debug().Msg("Progress display disabled in configuration")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	dm.cancel = cancel
	dm.done = make(chan struct{})
	dm.running = true

	go dm.loop(ctx, time.NewTicker(dm.cfg.GetDisplayIntervalDuration()))
}

// Stop ends the display loop and renders a final line
func (dm *DisplayManager) Stop() {
	dm.mu.Lock()
	if !dm.running {
		dm.mu.Unlock()
		return
	}
	dm.running = false
	dm.cancel()
	done := dm.done
	dm.mu.Unlock()

	<-done
	dm.render()
}

// BeginStage starts tracking a new stage
func (dm *DisplayManager) BeginStage(stage Stage, total int, message string) {
	dm.tracker.BeginStage(stage, int64(total), message)
	dm.poke()
}

// Observe matches the processor progress callback signature
func (dm *DisplayManager) Observe(done, total int, currentURL string) {
	dm.tracker.Update(int64(done), int64(total), currentURL)
	dm.poke()
}

// Finish marks the current stage with a terminal status
func (dm *DisplayManager) Finish(status Status, message string) {
	dm.tracker.SetStatus(status, message)
	dm.poke()
}

func (dm *DisplayManager) poke() {
	select {
	case dm.trigger <- struct{}{}:
	default:
	}
}

func (dm *DisplayManager) loop(ctx context.Context, ticker *time.Ticker) {
	defer close(dm.done)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			dm.render()
		case <-dm.trigger:
			dm.render()
		}
	}
}

func (dm *DisplayManager) render() {
	line := FormatLine(dm.tracker.Info(), dm.cfg.ShowETAEstimation)

	dm.mu.Lock()
	defer dm.mu.Unlock()
	if line == "" || line == dm.lastDisplayed {
		return
	}
	dm.lastDisplayed = line
	dm.logger.Info().Msg(line)
}

// FormatLine renders a snapshot, e.g. "Analysis: ⏳ [██████░░░░] 30.0% (3/10) | ETA: 4s | https://example.com/a".
// Idle snapshots render as the empty string.
func FormatLine(info Info, showETA bool) string {
	if info.Status == StatusIdle || info.Stage == "" {
		return ""
	}

	var builder strings.Builder
	fmt.Fprintf(&builder, "%s: %s", info.Stage, statusIcon(info.Status))

	if info.Total > 0 {
		percentage := info.Percentage()
		fmt.Fprintf(&builder, " %s %.1f%% (%d/%d)", progressBar(percentage, barWidth), percentage, info.Current, info.Total)
	}

	if showETA && info.EstimatedETA > 0 && info.Status == StatusRunning {
		fmt.Fprintf(&builder, " | ETA: %s", formatDuration(info.EstimatedETA))
	}

	if info.Message != "" {
		fmt.Fprintf(&builder, " | %s", info.Message)
	} else if info.CurrentURL != "" && info.Status == StatusRunning {
		fmt.Fprintf(&builder, " | %s", info.CurrentURL)
	}

	return builder.String()
}

func statusIcon(status Status) string {
	switch status {
	case StatusRunning:
		return "⏳"
	case StatusComplete:
		return "✅"
	case StatusError:
		return "❌"
	case StatusCancelled:
		return "🚫"
	default:
		return "💤"
	}
}

func progressBar(percentage float64, width int) string {
	if width <= 0 {
		return ""
	}
	filled := int((percentage / 100.0) * float64(width))
	if filled > width {
		filled = width
	}
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + "]"
}

func formatDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%.0fs", d.Seconds())
	case d < time.Hour:
		return fmt.Sprintf("%.0fm", d.Minutes())
	default:
		return fmt.Sprintf("%.1fh", d.Hours())
	}
}
