package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pithecene-io/atelier/metrics"
	"github.com/pithecene-io/atelier/run"
)

// sseHandler writes the given frames as an event stream, flushing after each.
func sseHandler(t *testing.T, frames ...string) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if accept := r.Header.Get("Accept"); accept != "text/event-stream" {
			t.Errorf("Accept = %q", accept)
		}
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		for _, frame := range frames {
			fmt.Fprintf(w, "%s\n\n", frame)
			flusher.Flush()
		}
	}
}

func newTestClient(t *testing.T, server *httptest.Server) *Client {
	t.Helper()
	c, err := New(Config{BaseURL: server.URL, Team: "product-studio"}, nil, metrics.NewCollector(server.URL, "product-studio", "conv-test"))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return c
}

func TestClient_New_Validation(t *testing.T) {
	if _, err := New(Config{Team: "t"}, nil, nil); err == nil {
		t.Error("missing base URL must fail")
	}
	if _, err := New(Config{BaseURL: "http://x"}, nil, nil); err == nil {
		t.Error("missing team must fail")
	}
}

func TestClient_Send_AggregatesStream(t *testing.T) {
	server := httptest.NewServer(sseHandler(t,
		"event: TeamRunContent\ndata: {\"content\":\"thinking\",\"session_id\":\"s-1\",\"run_id\":\"r-1\"}",
		"event: TeamRunCompleted\ndata: {\"content\":\"done\",\"member_responses\":[{\"member_id\":\"ResearchAgent\",\"content\":\"viable\"}]}",
	))
	defer server.Close()

	c := newTestClient(t, server)
	result, err := c.Send(t.Context(), &Request{Message: "idea", Target: "ResearchAgent"})
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if result.Text != "viable" {
		t.Errorf("Text = %q, want target member output", result.Text)
	}
	if result.SessionID != "s-1" || result.RunID != "r-1" {
		t.Errorf("ids = (%q, %q)", result.SessionID, result.RunID)
	}

	snap := c.collector.Snapshot()
	if snap.RequestsCompleted != 1 || snap.RequestsFailed != 0 {
		t.Errorf("completed=%d failed=%d", snap.RequestsCompleted, snap.RequestsFailed)
	}
	if snap.FramesDecoded != 2 {
		t.Errorf("FramesDecoded = %d, want 2", snap.FramesDecoded)
	}
	if snap.MembersResolved != 1 {
		t.Errorf("MembersResolved = %d, want 1", snap.MembersResolved)
	}
}

func TestClient_Send_RunErrorVerbatim(t *testing.T) {
	server := httptest.NewServer(sseHandler(t,
		"event: TeamRunContent\ndata: {\"content\":\"partial\"}",
		"event: TeamRunError\ndata: {\"content\":\"quota exceeded\"}",
	))
	defer server.Close()

	c := newTestClient(t, server)
	_, err := c.Send(t.Context(), &Request{Message: "idea", Target: "coordinatorpm"})
	if err == nil {
		t.Fatal("run error event must fail the request")
	}
	if !run.IsRunError(err) {
		t.Errorf("error %v is not a run error", err)
	}
	if err.Error() != "quota exceeded" {
		t.Errorf("error = %q, want the server message verbatim", err.Error())
	}
}

func TestClient_Send_NonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "team not found", http.StatusNotFound)
	}))
	defer server.Close()

	c := newTestClient(t, server)
	_, err := c.Send(t.Context(), &Request{Message: "idea", Target: "coordinatorpm"})
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("error = %v, want *StatusError", err)
	}
	if statusErr.Code != http.StatusNotFound {
		t.Errorf("Code = %d", statusErr.Code)
	}
	if !strings.Contains(statusErr.Body, "team not found") {
		t.Errorf("Body = %q", statusErr.Body)
	}
}

func TestClient_Send_MalformedFrameIsNonFatal(t *testing.T) {
	server := httptest.NewServer(sseHandler(t,
		"event: TeamRunContent\ndata: not json",
		"event: TeamRunCompleted\ndata: {\"content\":\"done\"}",
	))
	defer server.Close()

	c := newTestClient(t, server)
	result, err := c.Send(t.Context(), &Request{Message: "idea", Target: "coordinatorpm"})
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if result.Text != "done" {
		t.Errorf("Text = %q, want %q", result.Text, "done")
	}
	if snap := c.collector.Snapshot(); snap.DecodeErrors != 1 {
		t.Errorf("DecodeErrors = %d, want 1", snap.DecodeErrors)
	}
}

func TestClient_Send_TailWithoutSeparator(t *testing.T) {
	// The final frame arrives without a trailing blank line; EOF flush must
	// still deliver it.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "event: TeamRunCompleted\ndata: {\"content\":\"tail\"}")
	}))
	defer server.Close()

	c := newTestClient(t, server)
	result, err := c.Send(t.Context(), &Request{Message: "idea", Target: "coordinatorpm"})
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if result.Text != "tail" {
		t.Errorf("Text = %q, want %q", result.Text, "tail")
	}
}

func TestClient_Send_Cancellation(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "event: TeamRunContent\ndata: {\"content\":\"x\"}\n\n")
		w.(http.Flusher).Flush()
		<-release
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(t.Context())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	c := newTestClient(t, server)
	_, err := c.Send(ctx, &Request{Message: "idea", Target: "coordinatorpm"})
	if err == nil {
		t.Fatal("canceled stream must fail")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled in chain", err)
	}
}

func TestClient_Send_FormFields(t *testing.T) {
	var gotMessage, gotStream, gotSession, gotFile string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("ParseMultipartForm: %v", err)
		}
		gotMessage = r.FormValue("message")
		gotStream = r.FormValue("stream")
		gotSession = r.FormValue("session_id")
		if file, header, err := r.FormFile("files"); err == nil {
			gotFile = header.Filename
			file.Close()
		}
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "event: TeamRunCompleted\ndata: {\"content\":\"ok\"}\n\n")
	}))
	defer server.Close()

	c := newTestClient(t, server)
	_, err := c.Send(t.Context(), &Request{
		Message:   "hello",
		SessionID: "s-7",
		Target:    "coordinatorpm",
		Attachments: []Attachment{
			{Name: "sketch.png", ContentType: "image/png", Data: []byte{1, 2, 3}},
		},
	})
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if gotMessage != "hello" || gotStream != "true" || gotSession != "s-7" {
		t.Errorf("form = message:%q stream:%q session:%q", gotMessage, gotStream, gotSession)
	}
	if gotFile != "sketch.png" {
		t.Errorf("file name = %q", gotFile)
	}
}

func TestClient_Send_EndpointPath(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "event: TeamRunCompleted\ndata: {\"content\":\"ok\"}\n\n")
	}))
	defer server.Close()

	c := newTestClient(t, server)
	if _, err := c.Send(t.Context(), &Request{Message: "x", Target: "coordinatorpm"}); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if gotPath != "/teams/product-studio/runs" {
		t.Errorf("path = %q", gotPath)
	}
}
