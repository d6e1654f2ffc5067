package progress

import "time"

// Stage names the pipeline step a progress line refers to
type Stage string

const (
	StageDiscovery  Stage = "Discovery"
	StageExtraction Stage = "Extraction"
	StageAnalysis   Stage = "Analysis"
	StageExport     Stage = "Export"
)

// Status is the lifecycle state of a tracked stage
type Status string

const (
	StatusIdle      Status = "IDLE"
	StatusRunning   Status = "RUNNING"
	StatusComplete  Status = "COMPLETE"
	StatusError     Status = "ERROR"
	StatusCancelled Status = "CANCELLED"
)

// Info is a snapshot of progress for the current stage
type Info struct {
	Stage          Stage         `json:"stage"`
	Status         Status        `json:"status"`
	Current        int64         `json:"current"`
	Total          int64         `json:"total"`
	CurrentURL     string        `json:"current_url,omitempty"`
	Message        string        `json:"message,omitempty"`
	StartTime      time.Time     `json:"start_time"`
	LastUpdateTime time.Time     `json:"last_update_time"`
	EstimatedETA   time.Duration `json:"estimated_eta"`
}

// UpdateETA estimates remaining time from the average rate since StartTime
func (pi *Info) UpdateETA() {
	if pi.Total <= 0 || pi.Current <= 0 || pi.Status != StatusRunning {
		pi.EstimatedETA = 0
		return
	}

	elapsed := time.Since(pi.StartTime)
	remaining := float64(pi.Total - pi.Current)
	if elapsed <= 0 || remaining <= 0 {
		pi.EstimatedETA = 0
		return
	}

	rate := float64(pi.Current) / elapsed.Seconds()
	pi.EstimatedETA = time.Duration(remaining / rate * float64(time.Second))
}

// Percentage returns completion in [0, 100]
func (pi *Info) Percentage() float64 {
	if pi.Total <= 0 {
		return 0.0
	}
	percentage := float64(pi.Current) * 100 / float64(pi.Total)
	if percentage > 100 {
		return 100.0
	}
	return percentage
}
