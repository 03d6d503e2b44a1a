// Package sse implements incremental parsing of the backend's
// text/event-stream responses.
//
// The transport delivers the stream at arbitrary granularity: a single event
// may span multiple chunks and a single chunk may contain multiple events or
// a partial one. Splitter reassembles raw chunks into frames; DecodeFrame
// turns one frame into a typed Event.
package sse

import "strings"

// frameSeparator delimits events on the wire: one blank line.
const frameSeparator = "\n\n"

// Splitter reassembles an arbitrarily chunked stream into discrete frames.
// It holds a single growing buffer of not-yet-delimited input. Total work is
// O(n) in stream length: the scan cursor never revisits bytes that were
// already checked for a separator.
type Splitter struct {
	buf  strings.Builder
	scan int
}

// NewSplitter creates an empty Splitter.
func NewSplitter() *Splitter {
	return &Splitter{}
}

// Push appends a chunk to the buffer and returns every complete frame now
// available, in stream order. Carriage returns are stripped so CRLF-framed
// streams split identically to LF-framed ones.
func (s *Splitter) Push(chunk string) []string {
	if strings.ContainsRune(chunk, '\r') {
		chunk = strings.ReplaceAll(chunk, "\r", "")
	}
	s.buf.WriteString(chunk)

	buf := s.buf.String()
	var frames []string
	for {
		idx := strings.Index(buf[s.scan:], frameSeparator)
		if idx < 0 {
			break
		}
		end := s.scan + idx
		frames = append(frames, buf[:end])
		buf = buf[end+len(frameSeparator):]
		s.scan = 0
	}

	// Everything up to the last byte has been checked; a separator split
	// across the next chunk can only start at the final newline.
	s.scan = len(buf)
	if s.scan > 0 && buf[s.scan-1] == '\n' {
		s.scan--
	}

	s.buf.Reset()
	s.buf.WriteString(buf)
	return frames
}

// Flush returns the remaining buffered tail after stream end, or "" if the
// buffer is empty. The tail is a best-effort final frame: callers decode it
// tolerantly and discard it if it yields no event.
func (s *Splitter) Flush() string {
	tail := s.buf.String()
	s.buf.Reset()
	s.scan = 0
	return tail
}
