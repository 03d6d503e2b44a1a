// Package notify defines the stage-completion notification boundary.
//
// Notifiers publish pipeline progress to downstream systems (a webhook URL
// or a Redis channel). Publishing is fire-and-forget from the pipeline's
// perspective: no conversation state depends on delivery.
package notify

import "context"

// StageCompletedEventType is the event_type value for stage completions.
const StageCompletedEventType = "stage_completed"

// StageCompletedEvent is the payload published when a pipeline stage
// request finishes successfully.
type StageCompletedEvent struct {
	EventType  string `json:"event_type"` // always "stage_completed"
	Stage      string `json:"stage"`
	Target     string `json:"target"`
	SessionID  string `json:"session_id,omitempty"`
	RunID      string `json:"run_id,omitempty"`
	Outcome    string `json:"outcome"`
	Timestamp  string `json:"timestamp"` // ISO 8601
	DurationMs int64  `json:"duration_ms"`
}

// Notifier publishes stage completion events to a downstream system.
type Notifier interface {
	// Publish sends a stage completion event to the downstream system.
	// Must respect context cancellation and deadlines.
	Publish(ctx context.Context, event *StageCompletedEvent) error

	// Close releases notifier resources.
	Close() error
}
