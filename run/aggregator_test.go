package run

import (
	"reflect"
	"testing"

	"github.com/pithecene-io/atelier/sse"
	"github.com/pithecene-io/atelier/types"
)

func contentEvent(payload map[string]any) *sse.Event {
	return &sse.Event{Kind: types.EventKindContent, Payload: payload}
}

func completedEvent(payload map[string]any) *sse.Event {
	return &sse.Event{Kind: types.EventKindCompleted, Payload: payload}
}

func consume(t *testing.T, a *Aggregator, events ...*sse.Event) {
	t.Helper()
	for _, event := range events {
		if err := a.Consume(event); err != nil {
			t.Fatalf("Consume failed: %v", err)
		}
	}
}

func TestAggregator_TerminalSnapshotOverwritesDeltas(t *testing.T) {
	a := NewAggregator(nil)
	consume(t, a,
		contentEvent(map[string]any{"content": "A"}),
		completedEvent(map[string]any{"content": "B"}),
	)
	result, err := a.Finish("coordinatorpm")
	if err != nil {
		t.Fatalf("Finish failed: %v", err)
	}
	if result.Text != "B" {
		t.Errorf("Text = %q, want %q (terminal snapshot must replace deltas)", result.Text, "B")
	}
}

func TestAggregator_TargetOutputPreferred(t *testing.T) {
	a := NewAggregator(nil)
	consume(t, a, completedEvent(map[string]any{
		"content": "coordinator wrap-up",
		"member_responses": []any{
			map[string]any{"member_id": "ResearchAgent", "content": "viable market"},
			map[string]any{"member_id": "VisualAgent", "content": "three concepts"},
		},
	}))
	result, err := a.Finish("researchagent")
	if err != nil {
		t.Fatalf("Finish failed: %v", err)
	}
	if result.Text != "viable market" {
		t.Errorf("Text = %q, want target member output", result.Text)
	}
	wantMembers := []string{"ResearchAgent", "VisualAgent"}
	if !reflect.DeepEqual(result.Members, wantMembers) {
		t.Errorf("Members = %v, want %v", result.Members, wantMembers)
	}
}

func TestAggregator_TargetChunksJoined(t *testing.T) {
	a := NewAggregator(nil)
	consume(t, a,
		contentEvent(map[string]any{
			"member_responses": []any{map[string]any{"member_id": "researchagent", "content": "first"}},
		}),
		contentEvent(map[string]any{
			"member_responses": []any{map[string]any{"member_id": "researchagent", "content": "second"}},
		}),
	)
	result, err := a.Finish("researchagent")
	if err != nil {
		t.Fatalf("Finish failed: %v", err)
	}
	if result.Text != "first\n\nsecond" {
		t.Errorf("Text = %q, want chunks joined by blank line", result.Text)
	}
}

func TestAggregator_FallbackToOtherMembers(t *testing.T) {
	a := NewAggregator(nil)
	consume(t, a, completedEvent(map[string]any{
		"member_responses": []any{
			map[string]any{"member_id": "visualagent", "content": "concept sheet"},
		},
	}))
	result, err := a.Finish("researchagent")
	if err != nil {
		t.Fatalf("Finish failed: %v", err)
	}
	if result.Text != "concept sheet" {
		t.Errorf("Text = %q, want other members' output", result.Text)
	}
}

func TestAggregator_FallbackToSanitizedFreeText(t *testing.T) {
	a := NewAggregator(nil)
	consume(t, a,
		contentEvent(map[string]any{"content": "calling research\nThe market is strong."}),
		contentEvent(map[string]any{"content": "Proceeding to visuals."}),
	)
	result, err := a.Finish("researchagent")
	if err != nil {
		t.Fatalf("Finish failed: %v", err)
	}
	want := "The market is strong.\nProceeding to visuals."
	if result.Text != want {
		t.Errorf("Text = %q, want %q", result.Text, want)
	}
}

func TestAggregator_SessionAndRunIDFirstWins(t *testing.T) {
	a := NewAggregator(nil)
	consume(t, a,
		contentEvent(map[string]any{"content": "x", "session_id": "s-1", "run_id": "r-1"}),
		completedEvent(map[string]any{"content": "y", "session_id": "s-2", "run_id": "r-2"}),
	)
	result, err := a.Finish("coordinatorpm")
	if err != nil {
		t.Fatalf("Finish failed: %v", err)
	}
	if result.SessionID != "s-1" {
		t.Errorf("SessionID = %q, want %q", result.SessionID, "s-1")
	}
	if result.RunID != "r-1" {
		t.Errorf("RunID = %q, want %q", result.RunID, "r-1")
	}
	if a.SessionID() != "s-1" {
		t.Errorf("SessionID() = %q, want %q", a.SessionID(), "s-1")
	}
}

func TestAggregator_RunErrorPropagates(t *testing.T) {
	a := NewAggregator(nil)
	err := a.Consume(&sse.Event{
		Kind:    types.EventKindError,
		Payload: map[string]any{"content": "quota exceeded"},
	})
	if err == nil {
		t.Fatal("Consume must surface the run error")
	}
	if !IsRunError(err) {
		t.Errorf("error %v is not a run error", err)
	}
	if err.Error() != "quota exceeded" {
		t.Errorf("error = %q, want %q", err.Error(), "quota exceeded")
	}

	if _, err := a.Finish("coordinatorpm"); err == nil {
		t.Error("Finish must return the recorded failure")
	}
}

func TestAggregator_RunErrorWithoutContent(t *testing.T) {
	a := NewAggregator(nil)
	err := a.Consume(&sse.Event{Kind: types.EventKindError, Payload: map[string]any{}})
	if err == nil || err.Error() != genericRunError {
		t.Errorf("error = %v, want generic message", err)
	}
}

func TestAggregator_NilAndPayloadlessEvents(t *testing.T) {
	a := NewAggregator(nil)
	consume(t, a,
		nil,
		&sse.Event{Kind: types.EventKindContent},
		&sse.Event{Kind: types.EventKindCompleted},
		&sse.Event{Kind: types.EventKindContent, Payload: "bare string"},
	)
	result, err := a.Finish("coordinatorpm")
	if err != nil {
		t.Fatalf("Finish failed: %v", err)
	}
	if result.Text != "" {
		t.Errorf("Text = %q, want empty", result.Text)
	}
	if result.Members != nil {
		t.Errorf("Members = %v, want nil", result.Members)
	}
}

func TestAggregator_MemberOrderIsFirstSeen(t *testing.T) {
	a := NewAggregator(nil)
	consume(t, a,
		contentEvent(map[string]any{
			"member_responses": []any{map[string]any{"member_id": "visualagent", "content": "v1"}},
		}),
		contentEvent(map[string]any{
			"member_responses": []any{
				map[string]any{"member_id": "researchagent", "content": "r1"},
				map[string]any{"member_id": "visualagent", "content": "v2"},
			},
		}),
	)
	result, err := a.Finish("nobody")
	if err != nil {
		t.Fatalf("Finish failed: %v", err)
	}
	want := []string{"visualagent", "researchagent"}
	if !reflect.DeepEqual(result.Members, want) {
		t.Errorf("Members = %v, want %v", result.Members, want)
	}
}
