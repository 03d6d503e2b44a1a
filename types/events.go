package types

// EventKind is the logical type of a decoded stream event.
// Values mirror the backend's team-run event names; the bare (non-team)
// variants appear when a member agent streams directly.
type EventKind string

// Event kinds as they appear on the wire.
const (
	EventKindContent       EventKind = "TeamRunContent"
	EventKindCompleted     EventKind = "TeamRunCompleted"
	EventKindError         EventKind = "TeamRunError"
	EventKindAgentContent  EventKind = "RunContent"
	EventKindAgentComplete EventKind = "RunCompleted"
	EventKindAgentError    EventKind = "RunError"

	// EventKindDefault is assumed when a frame carries no event line.
	EventKindDefault EventKind = "message"
)

// IsContent returns true for incremental content-delta events.
func (k EventKind) IsContent() bool {
	return k == EventKindContent || k == EventKindAgentContent
}

// IsCompleted returns true for terminal completion events.
func (k EventKind) IsCompleted() bool {
	return k == EventKindCompleted || k == EventKindAgentComplete
}

// IsError returns true for run error events.
func (k EventKind) IsError() bool {
	return k == EventKindError || k == EventKindAgentError
}

// IsTerminal returns true if this event kind ends the run.
func (k EventKind) IsTerminal() bool {
	return k.IsCompleted() || k.IsError()
}

// Payload field names shared across event kinds.
const (
	FieldContent         = "content"
	FieldMemberResponses = "member_responses"
	FieldSessionID       = "session_id"
	FieldRunID           = "run_id"
)
