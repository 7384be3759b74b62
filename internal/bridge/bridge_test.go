package bridge_test

import (
	"context"
	"io"
	"testing"
	"time"

	"team-scheduler/internal/bridge"
	"team-scheduler/internal/bus"
	"team-scheduler/internal/model"
)

type fakeCloser struct{ closed bool }

func (c *fakeCloser) Close() error {
	c.closed = true
	return nil
}

type fakeSubscriber struct {
	handlers map[string]func(bus.Event)
	closers  []*fakeCloser
}

func newFakeSubscriber() *fakeSubscriber {
	return &fakeSubscriber{handlers: make(map[string]func(bus.Event))}
}

func (s *fakeSubscriber) Subscribe(subj string, fn func(bus.Event)) (io.Closer, error) {
	s.handlers[subj] = fn
	c := &fakeCloser{}
	s.closers = append(s.closers, c)
	return c, nil
}

type fakeSource struct {
	apts  []model.Appointment
	recs  []model.AttendeeRecord
	profs []model.Profile
}

func (s *fakeSource) Appointments(context.Context) ([]model.Appointment, error) { return s.apts, nil }
func (s *fakeSource) Attendees(context.Context) ([]model.AttendeeRecord, error) { return s.recs, nil }
func (s *fakeSource) Profiles(context.Context) ([]model.Profile, error)         { return s.profs, nil }

type fakePusher struct {
	online map[string]bool
	pushed map[string][]bridge.Message
}

func newFakePusher(userIDs ...string) *fakePusher {
	p := &fakePusher{online: make(map[string]bool), pushed: make(map[string][]bridge.Message)}
	for _, id := range userIDs {
		p.online[id] = true
	}
	return p
}

func (p *fakePusher) Connected(userID string) bool { return p.online[userID] }

func (p *fakePusher) Users() []string {
	var out []string
	for id := range p.online {
		out = append(out, id)
	}
	return out
}

func (p *fakePusher) Push(userID string, msg bridge.Message) {
	p.pushed[userID] = append(p.pushed[userID], msg)
}

func day(s string) time.Time {
	d, _ := time.Parse("2006-01-02", s)
	return d
}

func setup(t *testing.T, push *fakePusher) (*bridge.Bridge, *fakeSubscriber) {
	t.Helper()
	sub := newFakeSubscriber()
	src := &fakeSource{
		apts: []model.Appointment{
			{ID: "a1", Title: "Planning", Date: day("2026-09-01"), CreatedBy: "org"},
		},
		recs: []model.AttendeeRecord{
			{ID: "r1", AppointmentID: "a1", UserID: "u1", Status: model.StatusPending},
		},
		profs: []model.Profile{{ID: "org"}, {ID: "u1"}},
	}
	br, err := bridge.New(sub, src, push)
	if err != nil {
		t.Fatalf("bridge: %v", err)
	}
	return br, sub
}

func TestSubscribesOncePerEntity(t *testing.T) {
	br, sub := setup(t, newFakePusher())
	defer br.Close()

	if len(sub.handlers) != 2 {
		t.Fatalf("subscriptions: got %d", len(sub.handlers))
	}
	for _, subj := range []string{bus.SubjectAppointment, bus.SubjectAttendee} {
		if sub.handlers[subj] == nil {
			t.Errorf("no subscription on %s", subj)
		}
	}
}

func TestEventPushesToAffectedUsers(t *testing.T) {
	push := newFakePusher("org", "u1", "stranger")
	br, sub := setup(t, push)
	defer br.Close()

	sub.handlers[bus.SubjectAttendee](bus.Event{
		Entity: "attendee", Op: "update",
		AppointmentID: "a1", UserID: "u1", RecordID: "r1",
	})

	if len(push.pushed["u1"]) != 1 {
		t.Errorf("record user got %d pushes", len(push.pushed["u1"]))
	}
	if len(push.pushed["org"]) != 1 {
		t.Errorf("organizer got %d pushes", len(push.pushed["org"]))
	}
	if len(push.pushed["stranger"]) != 0 {
		t.Errorf("unrelated user got %d pushes", len(push.pushed["stranger"]))
	}

	msg := push.pushed["u1"][0]
	if msg.Type != "views" {
		t.Errorf("message type: got %s", msg.Type)
	}
	views, ok := msg.Data.(bridge.Views)
	if !ok {
		t.Fatalf("payload type: %T", msg.Data)
	}
	if len(views.Invitations) != 1 {
		t.Errorf("recomputed invitations: got %d", len(views.Invitations))
	}
}

func TestDisconnectedUsersAreSkipped(t *testing.T) {
	push := newFakePusher("org") // u1 not connected
	br, sub := setup(t, push)
	defer br.Close()

	sub.handlers[bus.SubjectAttendee](bus.Event{
		Entity: "attendee", Op: "insert",
		AppointmentID: "a1", UserID: "u1", RecordID: "r1",
	})

	if len(push.pushed["u1"]) != 0 {
		t.Error("push delivered to a disconnected user")
	}
	if len(push.pushed["org"]) != 1 {
		t.Errorf("organizer got %d pushes", len(push.pushed["org"]))
	}
}

func TestDeleteRefreshesEveryoneConnected(t *testing.T) {
	push := newFakePusher("org", "u1", "stranger")
	br, sub := setup(t, push)
	defer br.Close()

	sub.handlers[bus.SubjectAppointment](bus.Event{
		Entity: "appointment", Op: "delete", AppointmentID: "a1",
	})

	for id := range push.online {
		if len(push.pushed[id]) != 1 {
			t.Errorf("user %s got %d pushes after delete", id, len(push.pushed[id]))
		}
	}
}

func TestCloseReleasesSubscriptions(t *testing.T) {
	br, sub := setup(t, newFakePusher())

	if err := br.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	for i, c := range sub.closers {
		if !c.closed {
			t.Errorf("subscription %d not released", i)
		}
	}
}
