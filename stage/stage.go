// Package stage implements the stage-gate state machine that drives the
// product-ideation pipeline.
//
// Stages run in a fixed order; each gated stage pauses for an explicit
// approve or revise signal before the pipeline advances. All pipeline state
// that outlives a single request lives in State and is mutated exclusively
// by the Orchestrator.
package stage

// Stage is one checkpoint in the pipeline.
type Stage int

// Pipeline stages in order.
const (
	Intake Stage = iota
	Viability
	Visuals
	Spec
	Sourcing
	Final
)

var stageNames = [...]string{
	Intake:    "intake",
	Viability: "viability",
	Visuals:   "visuals",
	Spec:      "spec",
	Sourcing:  "sourcing",
	Final:     "final",
}

func (s Stage) String() string {
	if s < Intake || s > Final {
		return "unknown"
	}
	return stageNames[s]
}

// Next returns the following stage. ok is false for Final, which is
// terminal.
func (s Stage) Next() (Stage, bool) {
	if s >= Final {
		return Final, false
	}
	return s + 1, true
}

// Role is a backend agent identifier in normalized form.
type Role string

// Team roles per the backend's member roster.
const (
	RoleCoordinator Role = "coordinatorpm"
	RoleResearch    Role = "researchagent"
	RoleVisual      Role = "visualagent"
	RoleProduct     Role = "productagent"
	RoleSourcing    Role = "sourcingagent"
)

// roleFor maps a stage to the agent whose output is surfaced for it.
func roleFor(s Stage) Role {
	switch s {
	case Viability:
		return RoleResearch
	case Visuals:
		return RoleVisual
	case Spec:
		return RoleProduct
	case Sourcing:
		return RoleSourcing
	default:
		return RoleCoordinator
	}
}

// State is the conversation-scoped pipeline state.
//
// Invariant: at most one of AwaitingApproval, AwaitingRevision, and
// AwaitingSelection is true at a time. Advancing a stage clears all gate
// flags for the stage being left.
type State struct {
	// Stage is the current pipeline stage.
	Stage Stage
	// Brief is the idea text, accumulating revision annotations.
	Brief string
	// Outputs holds the last output (or inline failure text) per stage.
	Outputs map[Stage]string
	// SelectedVisual is the chosen visual option, once picked.
	SelectedVisual string
	// AwaitingApproval is true while the current stage waits for approval.
	AwaitingApproval bool
	// AwaitingRevision is true after a rejection, until revision text
	// arrives.
	AwaitingRevision bool
	// AwaitingSelection is true on visuals until an option is picked.
	AwaitingSelection bool
	// SessionID is the backend continuation token. First non-empty value
	// wins and is retained for the conversation lifetime.
	SessionID string
}

// Output returns the recorded output for a stage, or "".
func (s *State) Output(stage Stage) string {
	return s.Outputs[stage]
}

// clearGates resets every gate flag.
func (s *State) clearGates() {
	s.AwaitingApproval = false
	s.AwaitingRevision = false
	s.AwaitingSelection = false
}
