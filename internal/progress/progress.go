package progress

import (
	"sync"
	"time"
)

// Tracker holds progress for one stage at a time.
type Tracker struct {
	mu   sync.RWMutex
	info Info
}

// NewTracker creates an idle Tracker.
func NewTracker() *Tracker {
	return &Tracker{info: Info{Status: StatusIdle}}
}

// Info returns a copy of the current snapshot.
func (t *Tracker) Info() Info {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.info
}

// BeginStage resets counters and timing for a new stage.
func (t *Tracker) BeginStage(stage Stage, total int64, message string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now()
	t.info = Info{
		Stage:          stage,
		Status:         StatusRunning,
		Total:          total,
		Message:        message,
		StartTime:      now,
		LastUpdateTime: now,
	}
}

// Update records completed work for the current stage.
func (t *Tracker) Update(current, total int64, currentURL string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now()
	if t.info.Status == StatusIdle {
		t.info.StartTime = now
		t.info.Status = StatusRunning
	}

	t.info.Current = current
	t.info.Total = total
	t.info.CurrentURL = currentURL
	t.info.LastUpdateTime = now
	t.info.UpdateETA()
}

// SetStatus sets the status of the current stage.
func (t *Tracker) SetStatus(status Status, message string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.info.Status = status
	t.info.Message = message
	t.info.LastUpdateTime = time.Now()
	if status != StatusRunning {
		t.info.EstimatedETA = 0
	}
}
