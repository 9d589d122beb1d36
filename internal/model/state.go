package model

import "time"

type JobStatus string

const (
	JobStatusPending  JobStatus = "Pending"
	JobStatusActive   JobStatus = "Active"
	JobStatusInactive JobStatus = "Inactive"
)

// JobState is the live progress snapshot of one job. The remaining
// counters are only meaningful while Status is Active.
type JobState struct {
	Name              string    `json:"name"`
	LastActionTime    time.Time `json:"lastActionTime"`
	Status            JobStatus `json:"status"`
	TotalFiles        int       `json:"totalFilesCount"`
	TotalBytes        int64     `json:"totalFilesSize"`
	FilesRemaining    int       `json:"filesRemaining"`
	BytesRemaining    int64     `json:"bytesRemaining"`
	CurrentSourceFile string    `json:"currentSourceFile"`
	CurrentTargetFile string    `json:"currentTargetFile"`
}

func NewPendingState(name string) *JobState {
	return &JobState{
		Name:           name,
		LastActionTime: time.Now(),
		Status:         JobStatusPending,
	}
}

// Progress returns the copied share of the job in [0, 1] while it is Active.
func (s JobState) Progress() float64 {
	if s.Status != JobStatusActive {
		return 0
	}
	if s.TotalBytes > 0 {
		return float64(s.TotalBytes-s.BytesRemaining) / float64(s.TotalBytes)
	}
	if s.TotalFiles > 0 {
		return float64(s.TotalFiles-s.FilesRemaining) / float64(s.TotalFiles)
	}
	return 0
}
