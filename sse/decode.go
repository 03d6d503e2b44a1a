package sse

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/pithecene-io/atelier/types"
)

// Line prefixes per the text/event-stream surface framing.
const (
	eventPrefix = "event:"
	dataPrefix  = "data:"
)

// DecodeErrorKind classifies frame decoding errors.
type DecodeErrorKind int

const (
	// DecodeErrorPayload indicates data lines that did not parse as JSON.
	// Recoverable: the event still carries the raw string payload.
	DecodeErrorPayload DecodeErrorKind = iota
)

// DecodeError reports a recoverable problem while decoding one frame.
type DecodeError struct {
	Kind DecodeErrorKind
	Msg  string
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsDecodeError returns true if err is a frame decode error.
func IsDecodeError(err error) bool {
	var decodeErr *DecodeError
	return errors.As(err, &decodeErr)
}

// Event is one decoded stream event. Payload is nil when the frame carried
// no data lines, the parsed JSON value when the data parsed, or the raw
// joined string when it did not.
type Event struct {
	Kind    types.EventKind
	Payload any
}

// PayloadMap returns the payload as a keyed structure, or nil if the payload
// is absent or not structured.
func (e *Event) PayloadMap() map[string]any {
	m, _ := e.Payload.(map[string]any)
	return m
}

// DecodeFrame parses one raw frame into an Event.
//
// Lines beginning "event:" set the kind (last one wins); lines beginning
// "data:" are stripped of the prefix and joined by newline; all other lines
// (comments, retry hints) are ignored. A whitespace-only frame yields a nil
// event.
//
// A non-nil event may be returned together with a *DecodeError when the data
// did not parse as JSON; the error is diagnostic, not fatal.
func DecodeFrame(raw string) (*Event, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	kind := types.EventKindDefault
	var dataLines []string
	for _, line := range strings.Split(raw, "\n") {
		switch {
		case strings.HasPrefix(line, eventPrefix):
			kind = types.EventKind(strings.TrimSpace(line[len(eventPrefix):]))
		case strings.HasPrefix(line, dataPrefix):
			dataLines = append(dataLines, trimDataLine(line[len(dataPrefix):]))
		}
	}

	data := strings.Join(dataLines, "\n")
	if data == "" {
		return &Event{Kind: kind}, nil
	}

	var payload any
	if err := json.Unmarshal([]byte(data), &payload); err != nil {
		// Keep the raw string so no information is lost downstream.
		return &Event{Kind: kind, Payload: data}, &DecodeError{
			Kind: DecodeErrorPayload,
			Msg:  fmt.Sprintf("frame data is not valid JSON (kind %q)", kind),
			Err:  err,
		}
	}
	return &Event{Kind: kind, Payload: payload}, nil
}

// trimDataLine removes the single optional space after the data prefix.
func trimDataLine(s string) string {
	if strings.HasPrefix(s, " ") {
		return s[1:]
	}
	return s
}
