package model

import "time"

// Priority orders speculative load candidates.
type Priority int

const (
	PriorityLow Priority = iota + 1
	PriorityMedium
	PriorityHigh
)

func (p Priority) String() string {
	switch p {
	case PriorityHigh:
		return "high"
	case PriorityMedium:
		return "medium"
	case PriorityLow:
		return "low"
	default:
		return "unknown"
	}
}

// PreloadTrigger names the signal source that produced a task.
type PreloadTrigger string

const (
	TriggerPrediction PreloadTrigger = "prediction"
	TriggerViewport   PreloadTrigger = "viewport"
	TriggerPointer    PreloadTrigger = "pointer"
	TriggerFocus      PreloadTrigger = "focus"
)

// PreloadTask is one speculative load candidate. Consumed at most once by
// the dispatch pass, then discarded.
type PreloadTask struct {
	Path             string
	Priority         Priority
	Trigger          PreloadTrigger
	SessionID        string
	Timestamp        time.Time
	NetworkAtEnqueue ConnectionClass
}
