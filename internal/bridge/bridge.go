// Package bridge keeps client views consistent with the store: it holds
// one subscription per entity on the change-event bus and re-runs the
// aggregators for affected users, pushing the result over websocket. It
// recomputes in full rather than patching incrementally.
package bridge

import (
	"context"
	"io"
	"log"

	"team-scheduler/internal/bus"
	"team-scheduler/internal/model"
	"team-scheduler/internal/view"
)

// Subscriber is the slice of the bus the bridge consumes.
type Subscriber interface {
	Subscribe(subj string, fn func(bus.Event)) (io.Closer, error)
}

// Source provides the three input sets the aggregators project from.
type Source interface {
	Appointments(ctx context.Context) ([]model.Appointment, error)
	Attendees(ctx context.Context) ([]model.AttendeeRecord, error)
	Profiles(ctx context.Context) ([]model.Profile, error)
}

// Pusher delivers recomputed views to connected users.
type Pusher interface {
	Connected(userID string) bool
	Users() []string
	Push(userID string, msg Message)
}

// Views bundles the four projections pushed after every relevant change.
type Views struct {
	Invitations []view.Invitation   `json:"invitations"`
	Approvals   []view.Approval     `json:"approvals"`
	Sent        view.Sent           `json:"sent"`
	History     []view.HistoryEntry `json:"history"`
}

type Bridge struct {
	source Source
	push   Pusher
	subs   []io.Closer
}

// New subscribes once per entity. Callers must Close the bridge when the
// serving scope ends or the bus keeps dead listeners alive.
func New(sub Subscriber, source Source, push Pusher) (*Bridge, error) {
	b := &Bridge{source: source, push: push}

	for _, subj := range []string{bus.SubjectAppointment, bus.SubjectAttendee} {
		c, err := sub.Subscribe(subj, b.handle)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.subs = append(b.subs, c)
	}
	return b, nil
}

// Close releases every bus subscription.
func (b *Bridge) Close() error {
	var first error
	for _, c := range b.subs {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	b.subs = nil
	return first
}

func (b *Bridge) handle(ev bus.Event) {
	ctx := context.Background()

	apts, err := b.source.Appointments(ctx)
	if err != nil {
		log.Printf("bridge: appointments: %v", err)
		return
	}
	recs, err := b.source.Attendees(ctx)
	if err != nil {
		log.Printf("bridge: attendees: %v", err)
		return
	}
	profs, err := b.source.Profiles(ctx)
	if err != nil {
		log.Printf("bridge: profiles: %v", err)
		return
	}

	for _, userID := range b.affected(ev, apts, recs) {
		if !b.push.Connected(userID) {
			continue
		}
		b.push.Push(userID, Message{Type: "views", Data: Views{
			Invitations: view.InvitationsToMe(userID, recs, apts, profs),
			Approvals:   view.RequestsToApprove(userID, recs, apts, profs),
			Sent:        view.SentByMe(userID, recs, apts, profs),
			History:     view.History(userID, recs, apts, profs),
		}})
	}
}

// affected picks the users whose projections the event may have changed:
// the record's user and the appointment's organizer and attendees. Deletes
// may have erased the rows needed to scope that, so they refresh everyone
// connected.
func (b *Bridge) affected(ev bus.Event, apts []model.Appointment, recs []model.AttendeeRecord) []string {
	if ev.Op == "delete" {
		return b.push.Users()
	}

	seen := map[string]bool{}
	var out []string
	add := func(id string) {
		if id != "" && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}

	add(ev.UserID)
	for _, a := range apts {
		if a.ID == ev.AppointmentID {
			add(a.CreatedBy)
		}
	}
	for _, rec := range recs {
		if rec.AppointmentID == ev.AppointmentID {
			add(rec.UserID)
		}
	}
	return out
}
