// Package bus carries change events between the record store and the live
// synchronization bridge over NATS.
package bus

import (
	"encoding/json"
	"errors"
	"io"
	"sync"

	"github.com/nats-io/nats.go"
)

// Subjects, one per entity. The bridge holds a single subscription per
// subject and fans out from there.
const (
	SubjectAppointment = "schedule.appointment"
	SubjectAttendee    = "schedule.attendee"
)

// Event describes one committed write on a store entity.
type Event struct {
	Entity        string `json:"entity"` // "appointment" | "attendee"
	Op            string `json:"op"`     // "insert" | "update" | "delete"
	AppointmentID string `json:"appointment_id"`
	UserID        string `json:"user_id,omitempty"`   // attendee events
	RecordID      string `json:"record_id,omitempty"` // attendee events
}

// Bus wraps a NATS connection for publishing and consuming change events.
// Events are ephemeral: a consumer that was not listening re-reads the
// store, which stays the source of truth.
type Bus struct {
	conn *nats.Conn
}

// Connect dials the NATS endpoint.
func Connect(url string, opts ...nats.Option) (*Bus, error) {
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, err
	}
	return &Bus{conn: nc}, nil
}

// Close drains and shuts down the underlying connection.
func (b *Bus) Close() {
	if b == nil {
		return
	}
	if err := b.conn.Drain(); err != nil {
		b.conn.Close()
	}
}

// Publish encodes the event as JSON and publishes it to subj. A nil bus
// drops events silently so the store works without live sync configured.
func (b *Bus) Publish(subj string, ev Event) error {
	if b == nil {
		return nil
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return b.conn.Publish(subj, data)
}

type subscription struct {
	sub    *nats.Subscription
	mu     sync.Mutex
	closed bool
}

func (s *subscription) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.sub.Unsubscribe()
}

// Subscribe invokes fn for each event on subj until the returned closer is
// released. Malformed payloads are dropped.
func (b *Bus) Subscribe(subj string, fn func(Event)) (io.Closer, error) {
	if b == nil {
		return nil, errors.New("nil bus")
	}
	if fn == nil {
		return nil, errors.New("nil handler")
	}

	sub, err := b.conn.Subscribe(subj, func(msg *nats.Msg) {
		var ev Event
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			return
		}
		fn(ev)
	})
	if err != nil {
		return nil, err
	}
	return &subscription{sub: sub}, nil
}
