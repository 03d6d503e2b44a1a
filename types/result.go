package types

// RunResult is the externally observable result of one streamed request.
type RunResult struct {
	// Text is the resolved answer text for the requested target.
	Text string
	// SessionID is the continuation token observed on the stream.
	// Empty if the backend never reported one.
	SessionID string
	// RunID is the backend's identifier for this run, when reported.
	RunID string
	// Members lists the distinct member identifiers observed on the stream,
	// in first-seen order. Diagnostic only.
	Members []string
}
