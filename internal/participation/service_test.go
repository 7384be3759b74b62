package participation_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"team-scheduler/internal/model"
	"team-scheduler/internal/participation"
)

// fakeStore is an in-memory record store that counts writes, so tests can
// assert idempotence as "zero additional writes".
type fakeStore struct {
	apts  map[string]*model.Appointment
	recs  map[string]*model.AttendeeRecord
	profs map[string]*model.Profile

	inserts int
	updates int
	deletes int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		apts:  make(map[string]*model.Appointment),
		recs:  make(map[string]*model.AttendeeRecord),
		profs: make(map[string]*model.Profile),
	}
}

func (f *fakeStore) writes() int { return f.inserts + f.updates + f.deletes }

func (f *fakeStore) Appointment(_ context.Context, id string) (*model.Appointment, error) {
	a, ok := f.apts[id]
	if !ok {
		return nil, fmt.Errorf("appointment %s: no rows", id)
	}
	return a, nil
}

func (f *fakeStore) AttendeeByID(_ context.Context, id string) (*model.AttendeeRecord, error) {
	r, ok := f.recs[id]
	if !ok {
		return nil, fmt.Errorf("attendee %s: no rows", id)
	}
	return r, nil
}

func (f *fakeStore) AttendeeFor(_ context.Context, aptID, userID string) (*model.AttendeeRecord, error) {
	for _, r := range f.recs {
		if r.AppointmentID == aptID && r.UserID == userID {
			return r, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) AttendeesByAppointment(_ context.Context, aptID string) ([]model.AttendeeRecord, error) {
	var out []model.AttendeeRecord
	for _, r := range f.recs {
		if r.AppointmentID == aptID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeStore) InsertAttendee(_ context.Context, rec *model.AttendeeRecord) error {
	cp := *rec
	f.recs[rec.ID] = &cp
	f.inserts++
	return nil
}

func (f *fakeStore) UpdateAttendeeStatus(_ context.Context, id string, status model.Status) error {
	r, ok := f.recs[id]
	if !ok {
		return fmt.Errorf("attendee %s: no rows", id)
	}
	r.Status = status
	f.updates++
	return nil
}

func (f *fakeStore) DeleteAttendee(_ context.Context, id string) error {
	if _, ok := f.recs[id]; !ok {
		return fmt.Errorf("attendee %s: no rows", id)
	}
	delete(f.recs, id)
	f.deletes++
	return nil
}

func (f *fakeStore) ProfileByID(_ context.Context, id string) (*model.Profile, error) {
	p, ok := f.profs[id]
	if !ok {
		return nil, fmt.Errorf("profile %s: no rows", id)
	}
	return p, nil
}

func setup(t *testing.T) (*participation.Service, *fakeStore) {
	t.Helper()
	st := newFakeStore()
	st.apts["apt-1"] = &model.Appointment{ID: "apt-1", Title: "Standup", CreatedBy: "org"}
	st.apts["apt-closed"] = &model.Appointment{ID: "apt-closed", Title: "Board", CreatedBy: "org", OrganizerOnly: true}
	return participation.NewService(st), st
}

func TestInviteCreatesPending(t *testing.T) {
	svc, st := setup(t)

	rec, err := svc.Invite(context.Background(), "org", "apt-1", "u1")
	if err != nil {
		t.Fatalf("invite: %v", err)
	}
	if rec.Status != model.StatusPending {
		t.Errorf("status: got %s", rec.Status)
	}
	if got, _ := st.AttendeeFor(context.Background(), "apt-1", "u1"); got == nil {
		t.Fatal("record not stored")
	}
}

func TestInviteAuthorization(t *testing.T) {
	svc, st := setup(t)

	tests := []struct {
		name  string
		actor string
		user  string
	}{
		{"non-organizer may not invite", "u1", "u2"},
		{"organizer may not be invited", "org", "org"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := st.writes()
			_, err := svc.Invite(context.Background(), tt.actor, "apt-1", tt.user)
			var ue *participation.UnauthorizedTransitionError
			if !errors.As(err, &ue) {
				t.Fatalf("expected UnauthorizedTransitionError, got %v", err)
			}
			if st.writes() != before {
				t.Error("unauthorized invite mutated the store")
			}
		})
	}
}

func TestInviteByAdmin(t *testing.T) {
	svc, st := setup(t)
	st.profs["boss"] = &model.Profile{ID: "boss", Role: "admin"}
	st.profs["u9"] = &model.Profile{ID: "u9", Role: "member"}

	rec, err := svc.Invite(context.Background(), "boss", "apt-1", "u1")
	if err != nil {
		t.Fatalf("admin invite: %v", err)
	}
	if rec.Status != model.StatusPending {
		t.Errorf("status: got %s", rec.Status)
	}

	// a plain profile grants nothing
	_, err = svc.Invite(context.Background(), "u9", "apt-1", "u2")
	var ue *participation.UnauthorizedTransitionError
	if !errors.As(err, &ue) {
		t.Fatalf("expected UnauthorizedTransitionError, got %v", err)
	}
}

func TestInviteDuplicate(t *testing.T) {
	svc, _ := setup(t)

	if _, err := svc.Invite(context.Background(), "org", "apt-1", "u1"); err != nil {
		t.Fatalf("first invite: %v", err)
	}
	_, err := svc.Invite(context.Background(), "org", "apt-1", "u1")
	var de *participation.DuplicateParticipationError
	if !errors.As(err, &de) {
		t.Fatalf("expected DuplicateParticipationError, got %v", err)
	}
}

func TestReinviteDeclinedUpdatesInPlace(t *testing.T) {
	svc, st := setup(t)

	rec, err := svc.Invite(context.Background(), "org", "apt-1", "u1")
	if err != nil {
		t.Fatalf("invite: %v", err)
	}
	if _, err := svc.Decline(context.Background(), "u1", rec.ID); err != nil {
		t.Fatalf("decline: %v", err)
	}

	again, err := svc.Invite(context.Background(), "org", "apt-1", "u1")
	if err != nil {
		t.Fatalf("re-invite: %v", err)
	}
	if again.ID != rec.ID {
		t.Error("re-invite created a second record instead of updating in place")
	}
	if again.Status != model.StatusPending {
		t.Errorf("status: got %s", again.Status)
	}
	if len(st.recs) != 1 {
		t.Errorf("record count: got %d", len(st.recs))
	}
}

func TestRequestCreatesRequested(t *testing.T) {
	svc, _ := setup(t)

	rec, err := svc.Request(context.Background(), "u1", "apt-1")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if rec.Status != model.StatusRequested {
		t.Errorf("status: got %s", rec.Status)
	}
	if rec.UserID != "u1" {
		t.Errorf("user: got %s", rec.UserID)
	}
}

func TestRequestRejections(t *testing.T) {
	svc, _ := setup(t)

	t.Run("organizer", func(t *testing.T) {
		_, err := svc.Request(context.Background(), "org", "apt-1")
		var ue *participation.UnauthorizedTransitionError
		if !errors.As(err, &ue) {
			t.Fatalf("expected UnauthorizedTransitionError, got %v", err)
		}
	})

	t.Run("restricted appointment", func(t *testing.T) {
		_, err := svc.Request(context.Background(), "u1", "apt-closed")
		var ue *participation.UnauthorizedTransitionError
		if !errors.As(err, &ue) {
			t.Fatalf("expected UnauthorizedTransitionError, got %v", err)
		}
	})

	t.Run("existing record", func(t *testing.T) {
		if _, err := svc.Request(context.Background(), "u1", "apt-1"); err != nil {
			t.Fatalf("first request: %v", err)
		}
		_, err := svc.Request(context.Background(), "u1", "apt-1")
		var de *participation.DuplicateParticipationError
		if !errors.As(err, &de) {
			t.Fatalf("expected DuplicateParticipationError, got %v", err)
		}
	})
}

func TestAcceptDecline(t *testing.T) {
	svc, st := setup(t)

	rec, _ := svc.Invite(context.Background(), "org", "apt-1", "u1")

	if _, err := svc.Accept(context.Background(), "u2", rec.ID); err == nil {
		t.Fatal("wrong user accepted an invitation")
	}

	changed, err := svc.Accept(context.Background(), "u1", rec.ID)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if !changed {
		t.Error("first accept reported no change")
	}
	if st.recs[rec.ID].Status != model.StatusAccepted {
		t.Errorf("status: got %s", st.recs[rec.ID].Status)
	}

	// re-applying the stored resolution is a no-op, not an error
	before := st.writes()
	changed, err = svc.Accept(context.Background(), "u1", rec.ID)
	if err != nil {
		t.Fatalf("idempotent accept: %v", err)
	}
	if changed {
		t.Error("idempotent accept reported a change")
	}
	if st.writes() != before {
		t.Error("idempotent accept wrote to the store")
	}

	// flipping a resolved record is not allowed
	_, err = svc.Decline(context.Background(), "u1", rec.ID)
	var ue *participation.UnauthorizedTransitionError
	if !errors.As(err, &ue) {
		t.Fatalf("expected UnauthorizedTransitionError, got %v", err)
	}
}

func TestAcceptOnRequestedRecord(t *testing.T) {
	svc, _ := setup(t)

	rec, _ := svc.Request(context.Background(), "u1", "apt-1")
	_, err := svc.Accept(context.Background(), "u1", rec.ID)
	var ue *participation.UnauthorizedTransitionError
	if !errors.As(err, &ue) {
		t.Fatalf("expected UnauthorizedTransitionError, got %v", err)
	}
}

func TestApproveDeny(t *testing.T) {
	svc, st := setup(t)

	rec, _ := svc.Request(context.Background(), "u1", "apt-1")

	if _, err := svc.Approve(context.Background(), "u1", rec.ID); err == nil {
		t.Fatal("requester approved their own request")
	}

	changed, err := svc.Approve(context.Background(), "org", rec.ID)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if !changed {
		t.Error("first approve reported no change")
	}
	if st.recs[rec.ID].Status != model.StatusAccepted {
		t.Errorf("status: got %s", st.recs[rec.ID].Status)
	}

	// the no-change report is what keeps a repeat approval from mailing
	// the requester a second time
	before := st.writes()
	changed, err = svc.Approve(context.Background(), "org", rec.ID)
	if err != nil {
		t.Fatalf("idempotent approve: %v", err)
	}
	if changed {
		t.Error("idempotent approve reported a change")
	}
	if st.writes() != before {
		t.Error("idempotent approve wrote to the store")
	}
}

func TestCancel(t *testing.T) {
	svc, st := setup(t)

	inv, _ := svc.Invite(context.Background(), "org", "apt-1", "u1")
	req, _ := svc.Request(context.Background(), "u2", "apt-1")

	// only the creator may withdraw
	if err := svc.Cancel(context.Background(), "u1", inv.ID); err == nil {
		t.Fatal("target cancelled the organizer's invitation")
	}
	if err := svc.Cancel(context.Background(), "org", req.ID); err == nil {
		t.Fatal("organizer cancelled the user's request")
	}

	if err := svc.Cancel(context.Background(), "org", inv.ID); err != nil {
		t.Fatalf("cancel invitation: %v", err)
	}
	if err := svc.Cancel(context.Background(), "u2", req.ID); err != nil {
		t.Fatalf("cancel request: %v", err)
	}
	if len(st.recs) != 0 {
		t.Errorf("records left: %d", len(st.recs))
	}
}

func TestCancelResolvedRecord(t *testing.T) {
	svc, _ := setup(t)

	rec, _ := svc.Invite(context.Background(), "org", "apt-1", "u1")
	if _, err := svc.Accept(context.Background(), "u1", rec.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if err := svc.Cancel(context.Background(), "org", rec.ID); err == nil {
		t.Fatal("cancelled a resolved record")
	}
}

func TestReconcile(t *testing.T) {
	svc, st := setup(t)

	// initial selection
	if err := svc.Reconcile(context.Background(), "org", "apt-1", []string{"u1", "u2"}); err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if len(st.recs) != 2 {
		t.Fatalf("records: got %d", len(st.recs))
	}

	// u1 accepts, then organizer swaps u2 for u3
	rec, _ := st.AttendeeFor(context.Background(), "apt-1", "u1")
	if _, err := svc.Accept(context.Background(), "u1", rec.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if err := svc.Reconcile(context.Background(), "org", "apt-1", []string{"u1", "u3"}); err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	kept, _ := st.AttendeeFor(context.Background(), "apt-1", "u1")
	if kept.Status != model.StatusAccepted {
		t.Error("reconcile reset the status of a kept attendee")
	}
	if gone, _ := st.AttendeeFor(context.Background(), "apt-1", "u2"); gone != nil {
		t.Error("deselected attendee still present")
	}
	added, _ := st.AttendeeFor(context.Background(), "apt-1", "u3")
	if added == nil || added.Status != model.StatusPending {
		t.Error("newly selected attendee not pending")
	}
}

func TestReconcileIdempotent(t *testing.T) {
	svc, st := setup(t)

	sel := []string{"u1", "u2", "u3"}
	if err := svc.Reconcile(context.Background(), "org", "apt-1", sel); err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	before := st.writes()
	if err := svc.Reconcile(context.Background(), "org", "apt-1", sel); err != nil {
		t.Fatalf("second reconcile: %v", err)
	}
	if st.writes() != before {
		t.Errorf("second submission wrote %d times", st.writes()-before)
	}
}

func TestReconcileExcludesOrganizer(t *testing.T) {
	svc, st := setup(t)

	if err := svc.Reconcile(context.Background(), "org", "apt-1", []string{"org", "u1"}); err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if rec, _ := st.AttendeeFor(context.Background(), "apt-1", "org"); rec != nil {
		t.Error("organizer acquired an attendee record")
	}
}

func TestReconcileRequiresOrganizer(t *testing.T) {
	svc, _ := setup(t)

	err := svc.Reconcile(context.Background(), "u1", "apt-1", []string{"u2"})
	var ue *participation.UnauthorizedTransitionError
	if !errors.As(err, &ue) {
		t.Fatalf("expected UnauthorizedTransitionError, got %v", err)
	}
}

func TestStateOf(t *testing.T) {
	svc, _ := setup(t)

	rec, err := svc.Invite(context.Background(), "org", "apt-1", "u1")
	if err != nil {
		t.Fatalf("invite: %v", err)
	}

	tests := []struct {
		user string
		want participation.State
	}{
		{"org", participation.StateOrganizer},
		{"u1", participation.StateInvited},
		{"u9", participation.StateNone},
	}
	for _, tt := range tests {
		got, err := svc.StateOf(context.Background(), "apt-1", tt.user)
		if err != nil {
			t.Fatalf("state of %s: %v", tt.user, err)
		}
		if got != tt.want {
			t.Errorf("state of %s: got %s, want %s", tt.user, got, tt.want)
		}
	}

	if _, err := svc.Accept(context.Background(), "u1", rec.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if got, _ := svc.StateOf(context.Background(), "apt-1", "u1"); got != participation.StateMember {
		t.Errorf("state after accept: got %s", got)
	}
}
