// Package audit records every mutation of a collection as an append-only
// trail. Services hand events to a Trail without blocking the request path;
// a background Worker drains the trail into the record store.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	ActionCreate = "create"
	ActionUpdate = "update"
)

// Event is one mutation of a stored record.
type Event struct {
	Timestamp  time.Time `json:"timestamp"`
	Action     string    `json:"action"`
	Collection string    `json:"collection"`
	GUID       uuid.UUID `json:"guid"`
	Fields     []string  `json:"fields,omitempty"`
}

// Store persists audit events. Satisfied by *storage.LineStore[Event].
type Store interface {
	Append(ctx context.Context, event *Event) error
}

// Trail buffers events between the request path and the worker. A nil Trail
// discards everything, so services can run without auditing configured.
type Trail struct {
	inbox chan Event
}

func NewTrail(buffer int) *Trail {
	return &Trail{inbox: make(chan Event, buffer)}
}

// Record stamps and enqueues an event. When the buffer is full the event is
// dropped rather than stalling the write that produced it.
func (t *Trail) Record(event Event) {
	if t == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	select {
	case t.inbox <- event:
	default:
	}
}

func (t *Trail) Events() <-chan Event {
	return t.inbox
}
