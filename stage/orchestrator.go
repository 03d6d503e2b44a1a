package stage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/pithecene-io/atelier/client"
	"github.com/pithecene-io/atelier/log"
	"github.com/pithecene-io/atelier/notify"
	"github.com/pithecene-io/atelier/types"
)

// Orchestrator misuse errors.
var (
	// ErrRequestInFlight is returned when an action arrives while a prior
	// request is still streaming. At most one request is in flight at a
	// time by contract.
	ErrRequestInFlight = errors.New("a request is already in flight")
	// ErrInvalidAction is returned when an action is not valid in the
	// current stage or gate state.
	ErrInvalidAction = errors.New("action not valid in current state")
)

// Runner issues one streaming request and returns its finished result.
// Satisfied by *client.Client; tests inject fakes.
type Runner interface {
	Send(ctx context.Context, req *client.Request) (*types.RunResult, error)
}

// Orchestrator owns the pipeline State and turns user actions into backend
// requests. Action methods block until the underlying stream finishes.
//
// A mutex serializes state access because the TUI invokes actions from a
// bubbletea command goroutine; the in-flight flag still guarantees at most
// one request at a time, and the generation counter discards results from a
// superseded request if a caller cancels and immediately retries.
type Orchestrator struct {
	mu         sync.Mutex
	runner     Runner
	logger     *log.SugaredLogger
	notifier   notify.Notifier
	state      State
	inFlight   bool
	generation int
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithNotifier attaches a stage-completion notifier. Publishing is
// best-effort; failures are logged, never surfaced to the user.
func WithNotifier(n notify.Notifier) Option {
	return func(o *Orchestrator) { o.notifier = n }
}

// WithSession seeds the continuation token, resuming a backend session.
func WithSession(sessionID string) Option {
	return func(o *Orchestrator) { o.state.SessionID = sessionID }
}

// NewOrchestrator creates an orchestrator at the intake stage with no gate
// active. logger may be nil.
func NewOrchestrator(runner Runner, logger *log.SugaredLogger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		runner: runner,
		logger: logger,
		state:  State{Stage: Intake, Outputs: make(map[Stage]string)},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// State returns a copy of the current pipeline state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	snapshot := o.state
	snapshot.Outputs = make(map[Stage]string, len(o.state.Outputs))
	for k, v := range o.state.Outputs {
		snapshot.Outputs[k] = v
	}
	return snapshot
}

// InFlight reports whether a request is currently streaming.
func (o *Orchestrator) InFlight() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.inFlight
}

// SubmitIdea starts the pipeline: issues the viability request for the
// given idea. Valid only at intake; the stage advances past intake exactly
// when a viability output exists, so a failed request stays retryable.
func (o *Orchestrator) SubmitIdea(ctx context.Context, idea string) error {
	o.mu.Lock()
	if o.state.Stage != Intake {
		o.mu.Unlock()
		return fmt.Errorf("%w: idea already submitted", ErrInvalidAction)
	}
	prompt := viabilityPrompt(idea)
	o.mu.Unlock()

	// The brief is committed inside apply so a rejected or failed request
	// leaves no trace in conversation state.
	return o.issue(ctx, Viability, prompt, func(s *State, text string) {
		s.Brief = idea
		s.Outputs[Viability] = text
		s.Stage = Viability
		s.clearGates()
		s.AwaitingApproval = true
	})
}

// Approve clears the current approval gate, advances to the next stage,
// and issues that stage's request. On failure the stage and gate are left
// untouched so the action can be retried.
func (o *Orchestrator) Approve(ctx context.Context) error {
	o.mu.Lock()
	if !o.state.AwaitingApproval {
		o.mu.Unlock()
		return fmt.Errorf("%w: nothing awaiting approval", ErrInvalidAction)
	}
	next, ok := o.state.Stage.Next()
	if !ok {
		o.mu.Unlock()
		return fmt.Errorf("%w: %s is terminal", ErrInvalidAction, o.state.Stage)
	}
	prompt := promptFor(next, &o.state)
	o.mu.Unlock()

	return o.issue(ctx, next, prompt, func(s *State, text string) {
		s.Outputs[next] = text
		s.Stage = next
		s.clearGates()
		switch next {
		case Visuals:
			// The gate opens only after an option is picked.
			s.AwaitingSelection = true
		case Final:
			// Terminal: no outgoing transition.
		default:
			s.AwaitingApproval = true
		}
	})
}

// Reject converts an open approval gate into a revision gate without
// changing the current stage. No request is issued.
func (o *Orchestrator) Reject() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.inFlight {
		return ErrRequestInFlight
	}
	if !o.state.AwaitingApproval {
		return fmt.Errorf("%w: nothing awaiting approval", ErrInvalidAction)
	}
	o.state.AwaitingApproval = false
	o.state.AwaitingRevision = true
	return nil
}

// SubmitRevision re-issues the current stage's request with the feedback
// folded into the prompt and into the retained brief, re-opening the
// approval gate on success.
func (o *Orchestrator) SubmitRevision(ctx context.Context, feedback string) error {
	o.mu.Lock()
	if !o.state.AwaitingRevision {
		o.mu.Unlock()
		return fmt.Errorf("%w: nothing awaiting revision", ErrInvalidAction)
	}
	current := o.state.Stage
	annotated := o.state.Brief + fmt.Sprintf("\nRevision (%s): %s", current, feedback)
	prompt := revisionPrompt(current, annotated, feedback)
	o.mu.Unlock()

	// The annotation is committed inside apply so a rejected or failed
	// request leaves no trace in the retained brief.
	return o.issue(ctx, current, prompt, func(s *State, text string) {
		s.Brief = annotated
		s.Outputs[current] = text
		s.clearGates()
		s.AwaitingApproval = true
	})
}

// SelectVisual records the chosen visual direction. During the selection
// sub-step this opens the approval gate without a request; after a
// rejection it restarts the visuals request with the rejected option's
// feedback attached.
func (o *Orchestrator) SelectVisual(ctx context.Context, option string) error {
	o.mu.Lock()
	if o.state.Stage != Visuals {
		o.mu.Unlock()
		return fmt.Errorf("%w: not at visuals", ErrInvalidAction)
	}

	if o.state.AwaitingSelection {
		defer o.mu.Unlock()
		if o.inFlight {
			return ErrRequestInFlight
		}
		o.state.SelectedVisual = option
		o.state.clearGates()
		o.state.AwaitingApproval = true
		return nil
	}

	if !o.state.AwaitingRevision {
		o.mu.Unlock()
		return fmt.Errorf("%w: no selection pending", ErrInvalidAction)
	}
	rejected := o.state.SelectedVisual
	prompt := reselectionPrompt(o.state.Brief, rejected, option)
	o.mu.Unlock()

	return o.issue(ctx, Visuals, prompt, func(s *State, text string) {
		s.SelectedVisual = option
		s.Outputs[Visuals] = text
		s.clearGates()
		s.AwaitingApproval = true
	})
}

// issue runs one request for reqStage and applies the state transition on
// success. On failure the failure text is recorded as reqStage's output and
// no other state changes; the caller may retry the same action.
func (o *Orchestrator) issue(ctx context.Context, reqStage Stage, prompt string, apply func(*State, string)) error {
	o.mu.Lock()
	if o.inFlight {
		o.mu.Unlock()
		return ErrRequestInFlight
	}
	o.inFlight = true
	o.generation++
	generation := o.generation
	req := &client.Request{
		Message:   prompt,
		SessionID: o.state.SessionID,
		Target:    string(roleFor(reqStage)),
	}
	o.mu.Unlock()

	started := time.Now()
	result, err := o.runner.Send(ctx, req)

	o.mu.Lock()
	defer o.mu.Unlock()
	o.inFlight = false

	// A result from a superseded request must not mutate state.
	if generation != o.generation {
		if o.logger != nil {
			o.logger.Debugf("discarding result of superseded request (stage %s)", reqStage)
		}
		return nil
	}

	if err != nil {
		o.state.Outputs[reqStage] = err.Error()
		if o.logger != nil {
			o.logger.Warnf("%s request failed: %v", reqStage, err)
		}
		return err
	}

	if o.state.SessionID == "" && result.SessionID != "" {
		o.state.SessionID = result.SessionID
	}
	apply(&o.state, result.Text)

	o.publish(ctx, reqStage, req.Target, result, time.Since(started))
	return nil
}

// publish sends a best-effort stage-completion notification.
func (o *Orchestrator) publish(ctx context.Context, s Stage, target string, result *types.RunResult, elapsed time.Duration) {
	if o.notifier == nil {
		return
	}
	event := &notify.StageCompletedEvent{
		EventType:  notify.StageCompletedEventType,
		Stage:      s.String(),
		Target:     target,
		SessionID:  result.SessionID,
		RunID:      result.RunID,
		Outcome:    "success",
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		DurationMs: elapsed.Milliseconds(),
	}
	if err := o.notifier.Publish(ctx, event); err != nil && o.logger != nil {
		o.logger.Warnf("stage notification failed: %v", err)
	}
}
