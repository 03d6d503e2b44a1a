package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/pithecene-io/atelier/iox"
	"github.com/pithecene-io/atelier/notify"
)

func sampleEvent() *notify.StageCompletedEvent {
	return &notify.StageCompletedEvent{
		EventType:  notify.StageCompletedEventType,
		Stage:      "spec",
		Target:     "productagent",
		SessionID:  "s-1",
		Outcome:    "success",
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		DurationMs: 900,
	}
}

// asyncReceive subscribes to channel on the miniredis instance and returns a
// channel delivering published messages.
func asyncReceive(t *testing.T, mr *miniredis.Miniredis, channel string) <-chan string {
	t.Helper()
	messages := make(chan string, 1)
	sub := mr.NewSubscriber()
	sub.Subscribe(channel)
	t.Cleanup(func() { sub.Close() })
	go func() {
		for msg := range sub.Messages() {
			messages <- msg.Message
		}
	}()
	return messages
}

func waitMessage(t *testing.T, messages <-chan string) string {
	t.Helper()
	select {
	case msg := <-messages:
		return msg
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for published message")
		return ""
	}
}

func TestNew_RequiresURL(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Error("empty URL must fail")
	}
}

func TestNew_InvalidURL(t *testing.T) {
	if _, err := New(Config{URL: "http://not-redis"}); err == nil {
		t.Error("non-redis URL must fail")
	}
}

func TestNew_Defaults(t *testing.T) {
	n, err := New(Config{URL: "redis://localhost:6379"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer n.Close()
	if n.config.Channel != DefaultChannel {
		t.Errorf("Channel = %q, want %q", n.config.Channel, DefaultChannel)
	}
	if n.config.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", n.config.Timeout, DefaultTimeout)
	}
}

func TestPublish_DeliversToChannel(t *testing.T) {
	mr := miniredis.RunT(t)
	messages := asyncReceive(t, mr, DefaultChannel)

	n, err := New(Config{URL: "redis://" + mr.Addr()})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(iox.CloseFunc(n))

	if err := n.Publish(t.Context(), sampleEvent()); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	var received notify.StageCompletedEvent
	if err := json.Unmarshal([]byte(waitMessage(t, messages)), &received); err != nil {
		t.Fatalf("unmarshal published message: %v", err)
	}
	if received.Stage != "spec" || received.Target != "productagent" {
		t.Errorf("received = %+v", received)
	}
}

func TestPublish_CustomChannel(t *testing.T) {
	mr := miniredis.RunT(t)
	messages := asyncReceive(t, mr, "studio:events")

	n, err := New(Config{URL: "redis://" + mr.Addr(), Channel: "studio:events"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer n.Close()

	if err := n.Publish(t.Context(), sampleEvent()); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	waitMessage(t, messages)
}

func TestPublish_CanceledContext(t *testing.T) {
	mr := miniredis.RunT(t)

	n, err := New(Config{URL: "redis://" + mr.Addr()})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer n.Close()

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	if err := n.Publish(ctx, sampleEvent()); err == nil {
		t.Error("canceled context must fail Publish")
	}
}

func TestPublish_RetriesAfterFailure(t *testing.T) {
	mr := miniredis.RunT(t)

	n, err := New(Config{URL: "redis://" + mr.Addr(), Retries: 0, Timeout: time.Second})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer n.Close()

	mr.Close()
	if err := n.Publish(t.Context(), sampleEvent()); err == nil {
		t.Error("publish against a down server must fail")
	}
}
