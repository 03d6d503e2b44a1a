// Package metrics provides per-conversation metrics collection.
//
// The Collector accumulates counters across the requests of one
// conversation. It is a leaf package with no internal dependencies.
package metrics

import "sync"

// Snapshot is an immutable point-in-time view of all counters.
// Returned by Collector.Snapshot(). Safe to read concurrently after creation.
type Snapshot struct {
	// Request lifecycle
	RequestsStarted   int64
	RequestsCompleted int64
	RequestsFailed    int64

	// Stream processing
	FramesDecoded   int64
	DecodeErrors    int64
	EventsConsumed  int64
	MembersResolved int64

	// Dimensions (informational, set at construction)
	Backend        string
	Team           string
	ConversationID string
}

// Collector accumulates metrics during one conversation.
// Thread-safe via sync.Mutex. All increment methods are nil-receiver safe.
type Collector struct {
	mu sync.Mutex

	requestsStarted   int64
	requestsCompleted int64
	requestsFailed    int64

	framesDecoded   int64
	decodeErrors    int64
	eventsConsumed  int64
	membersResolved int64

	backend        string
	team           string
	conversationID string
}

// NewCollector creates a Collector with dimension labels.
func NewCollector(backend, team, conversationID string) *Collector {
	return &Collector{
		backend:        backend,
		team:           team,
		conversationID: conversationID,
	}
}

// IncRequestStarted records a request start.
func (c *Collector) IncRequestStarted() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.requestsStarted++
	c.mu.Unlock()
}

// IncRequestCompleted records a request that finished with a result.
func (c *Collector) IncRequestCompleted() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.requestsCompleted++
	c.mu.Unlock()
}

// IncRequestFailed records a transport failure or run error.
func (c *Collector) IncRequestFailed() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.requestsFailed++
	c.mu.Unlock()
}

// IncFramesDecoded records n frames extracted from the stream.
func (c *Collector) IncFramesDecoded(n int64) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.framesDecoded += n
	c.mu.Unlock()
}

// IncDecodeError records a recoverable frame decode error.
func (c *Collector) IncDecodeError() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.decodeErrors++
	c.mu.Unlock()
}

// IncEventsConsumed records an event applied to run state.
func (c *Collector) IncEventsConsumed() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.eventsConsumed++
	c.mu.Unlock()
}

// AddMembersResolved records n member outputs attributed on this stream.
func (c *Collector) AddMembersResolved(n int64) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.membersResolved += n
	c.mu.Unlock()
}

// Snapshot returns a point-in-time copy of all counters.
// Nil-receiver safe: returns a zero Snapshot.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		RequestsStarted:   c.requestsStarted,
		RequestsCompleted: c.requestsCompleted,
		RequestsFailed:    c.requestsFailed,
		FramesDecoded:     c.framesDecoded,
		DecodeErrors:      c.decodeErrors,
		EventsConsumed:    c.eventsConsumed,
		MembersResolved:   c.membersResolved,
		Backend:           c.backend,
		Team:              c.team,
		ConversationID:    c.conversationID,
	}
}
