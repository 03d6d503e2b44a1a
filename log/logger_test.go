package log

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNewMeta_GeneratesConversationID(t *testing.T) {
	a, b := NewMeta(), NewMeta()
	if a.ConversationID == "" {
		t.Fatal("ConversationID must be set")
	}
	if a.ConversationID == b.ConversationID {
		t.Error("conversation ids must be unique")
	}
}

func TestLogger_CarriesConversationContext(t *testing.T) {
	var buf bytes.Buffer
	logger := newLoggerWithWriter(&Meta{ConversationID: "conv-1"}, &buf)

	logger.Info("request started", map[string]any{"stage": "viability"})

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not JSON: %v (%q)", err, buf.String())
	}
	if entry["conversation_id"] != "conv-1" {
		t.Errorf("conversation_id = %v", entry["conversation_id"])
	}
	if entry["message"] != "request started" {
		t.Errorf("message = %v", entry["message"])
	}
	if entry["level"] != "info" {
		t.Errorf("level = %v", entry["level"])
	}
}

func TestLogger_SessionFromMeta(t *testing.T) {
	var buf bytes.Buffer
	logger := newLoggerWithWriter(&Meta{ConversationID: "conv-1", SessionID: "s-9"}, &buf)

	logger.Warn("slow stream", nil)

	if !strings.Contains(buf.String(), `"session_id":"s-9"`) {
		t.Errorf("entry missing session id: %q", buf.String())
	}
}

func TestLogger_WithSession(t *testing.T) {
	var buf bytes.Buffer
	logger := newLoggerWithWriter(&Meta{ConversationID: "conv-1"}, &buf).WithSession("s-2")

	logger.Debug("frame decoded", nil)

	if !strings.Contains(buf.String(), `"session_id":"s-2"`) {
		t.Errorf("entry missing session id: %q", buf.String())
	}
}

func TestSugaredLogger_Formats(t *testing.T) {
	var buf bytes.Buffer
	sugar := newLoggerWithWriter(&Meta{ConversationID: "conv-1"}, &buf).Sugar()

	sugar.Infof("stage %s took %dms", "spec", 42)

	if !strings.Contains(buf.String(), "stage spec took 42ms") {
		t.Errorf("formatted message missing: %q", buf.String())
	}
}
