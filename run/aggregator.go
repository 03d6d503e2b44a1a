// Package run accumulates decoded stream events into one finished result
// per request.
//
// An Aggregator is allocated fresh for each request and discarded after
// Finish; nothing in this package outlives a single stream.
package run

import (
	"strings"

	"github.com/pithecene-io/atelier/content"
	"github.com/pithecene-io/atelier/log"
	"github.com/pithecene-io/atelier/sse"
	"github.com/pithecene-io/atelier/types"
)

// Aggregator consumes decoded events in arrival order and maintains
// incremental vs. final text per member. Not safe for concurrent use; the
// transport contract guarantees a single reader per stream.
type Aggregator struct {
	freeText  []string
	chunks    map[string][]string
	display   map[string]string
	order     []string
	sessionID string
	runID     string
	failure   error
	logger    *log.SugaredLogger
}

// NewAggregator creates an empty Aggregator. logger may be nil.
func NewAggregator(logger *log.SugaredLogger) *Aggregator {
	return &Aggregator{
		chunks:  make(map[string][]string),
		display: make(map[string]string),
		logger:  logger,
	}
}

// Consume applies one decoded event to the run state. Returns a non-nil
// *Error for run error events; that failure is terminal and must propagate.
func (a *Aggregator) Consume(event *sse.Event) error {
	if event == nil {
		return nil
	}

	payload := event.PayloadMap()
	if payload != nil {
		a.captureIdentity(payload)
	}

	switch {
	case event.Kind.IsError():
		message := genericRunError
		if payload != nil {
			if s := content.Normalize(payload[types.FieldContent]); s != "" {
				message = s
			}
		}
		a.failure = &Error{Message: message}
		return a.failure

	case event.Kind.IsContent():
		if payload == nil {
			return nil
		}
		if s := content.Normalize(payload[types.FieldContent]); s != "" {
			a.freeText = append(a.freeText, s)
		}
		a.mergeMembers(payload[types.FieldMemberResponses])

	case event.Kind.IsCompleted():
		if payload == nil {
			return nil
		}
		a.mergeMembers(payload[types.FieldMemberResponses])
		// The terminal snapshot is authoritative over accumulated deltas.
		if s := content.Normalize(payload[types.FieldContent]); s != "" {
			a.freeText = []string{s}
		}
	}
	return nil
}

// captureIdentity records session and run ids. First non-empty value wins.
func (a *Aggregator) captureIdentity(payload map[string]any) {
	if a.sessionID == "" {
		if s, ok := payload[types.FieldSessionID].(string); ok && s != "" {
			a.sessionID = s
		}
	}
	if a.runID == "" {
		if s, ok := payload[types.FieldRunID].(string); ok && s != "" {
			a.runID = s
		}
	}
}

func (a *Aggregator) mergeMembers(v any) {
	for _, member := range content.ResolveMembers(v) {
		id := member.NormalizedID
		if _, seen := a.chunks[id]; !seen {
			a.order = append(a.order, id)
			a.display[id] = member.Identifier
		}
		a.chunks[id] = append(a.chunks[id], member.Text)
	}
}

// Finish resolves the final result for the requested target identifier
// (normalized form). Resolution order:
//
//  1. the target's own accumulated outputs, joined by blank line
//  2. every other member's outputs
//  3. the sanitized accumulated free-text
//
// If a run error was consumed, Finish returns it instead of a result.
func (a *Aggregator) Finish(target string) (*types.RunResult, error) {
	if a.failure != nil {
		return nil, a.failure
	}

	result := &types.RunResult{
		SessionID: a.sessionID,
		RunID:     a.runID,
		Members:   a.memberIdentifiers(),
	}

	if outputs := a.chunks[target]; len(outputs) > 0 {
		result.Text = strings.Join(outputs, "\n\n")
		return result, nil
	}

	var others []string
	for _, id := range a.order {
		if id == target {
			continue
		}
		others = append(others, a.chunks[id]...)
	}
	if len(others) > 0 {
		if a.logger != nil {
			a.logger.Debugf("target %q produced no output, falling back to %d other member chunks", target, len(others))
		}
		result.Text = strings.Join(others, "\n\n")
		return result, nil
	}

	result.Text = content.Sanitize(strings.Join(a.freeText, "\n"))
	return result, nil
}

// SessionID returns the session id observed so far, or "".
func (a *Aggregator) SessionID() string {
	return a.sessionID
}

func (a *Aggregator) memberIdentifiers() []string {
	if len(a.order) == 0 {
		return nil
	}
	ids := make([]string, 0, len(a.order))
	for _, id := range a.order {
		ids = append(ids, a.display[id])
	}
	return ids
}
