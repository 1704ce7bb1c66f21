// Package events carries domain events out of the service layer: to Kafka
// for downstream consumers and to the in-process hub for connected clients.
package events

import (
	"context"
	"time"
)

// Event types.
const (
	UserRegistered = "user.registered"
	FriendRequest  = "friend:request"
	FriendAccepted = "friend:accepted"
	PostCreated    = "post.created"
	MessageNew     = "message:new"
)

// Event is a single domain event. Recipients lists the users that should be
// notified in real time; it is empty for events nobody is pushed.
type Event struct {
	Type       string    `json:"type"`
	Recipients []uint    `json:"recipients,omitempty"`
	Payload    any       `json:"payload"`
	OccurredAt time.Time `json:"occurred_at"`
}

// New stamps an event with the current time.
func New(typ string, payload any, recipients ...uint) Event {
	return Event{
		Type:       typ,
		Recipients: recipients,
		Payload:    payload,
		OccurredAt: time.Now().UTC(),
	}
}

// Publisher delivers events. Publish must not fail the caller's operation, so
// implementations log delivery problems instead of returning them.
type Publisher interface {
	Publish(ctx context.Context, ev Event)
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) {}

// Fanout publishes each event to all of its publishers in order.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, ev Event) {
	for _, p := range f {
		if p != nil {
			p.Publish(ctx, ev)
		}
	}
}

// Recorder keeps published events in memory. Tests use it to assert on what
// the service layer emitted.
type Recorder struct {
	Events []Event
}

func (r *Recorder) Publish(_ context.Context, ev Event) {
	r.Events = append(r.Events, ev)
}

// Types returns the type of every recorded event, in order.
func (r *Recorder) Types() []string {
	out := make([]string, len(r.Events))
	for i, ev := range r.Events {
		out[i] = ev.Type
	}
	return out
}
