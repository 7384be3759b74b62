package participation

import (
	"context"

	"github.com/google/uuid"

	"team-scheduler/internal/model"
)

// Store is the slice of the record store the state machine needs.
// AttendeeFor returns (nil, nil) when no record exists for the pair.
type Store interface {
	Appointment(ctx context.Context, id string) (*model.Appointment, error)
	AttendeeByID(ctx context.Context, id string) (*model.AttendeeRecord, error)
	AttendeeFor(ctx context.Context, appointmentID, userID string) (*model.AttendeeRecord, error)
	AttendeesByAppointment(ctx context.Context, appointmentID string) ([]model.AttendeeRecord, error)
	InsertAttendee(ctx context.Context, rec *model.AttendeeRecord) error
	UpdateAttendeeStatus(ctx context.Context, id string, status model.Status) error
	DeleteAttendee(ctx context.Context, id string) error
	ProfileByID(ctx context.Context, id string) (*model.Profile, error)
}

// Service executes participation transitions. All authorization is decided
// here before any write; an unauthorized call never mutates the store.
type Service struct {
	store Store
}

func NewService(st Store) *Service {
	return &Service{store: st}
}

func (s *Service) isAdmin(ctx context.Context, userID string) bool {
	p, err := s.store.ProfileByID(ctx, userID)
	return err == nil && p != nil && p.Role == "admin"
}

// Invite creates a pending record for userID, or flips a previously
// declined record back to pending in place. The organizer or an admin may
// invite, and the organizer can never be invited.
func (s *Service) Invite(ctx context.Context, actorID, appointmentID, userID string) (*model.AttendeeRecord, error) {
	apt, err := s.store.Appointment(ctx, appointmentID)
	if err != nil {
		return nil, storeErr("get appointment", err)
	}
	if !IsOrganizer(apt, actorID) && !s.isAdmin(ctx, actorID) {
		return nil, &UnauthorizedTransitionError{Action: "invite", UserID: actorID}
	}
	if IsOrganizer(apt, userID) {
		return nil, &UnauthorizedTransitionError{Action: "invite the organizer", UserID: actorID}
	}

	existing, err := s.store.AttendeeFor(ctx, appointmentID, userID)
	if err != nil {
		return nil, storeErr("get attendee", err)
	}
	if existing != nil {
		if existing.Status != model.StatusDeclined {
			return nil, &DuplicateParticipationError{AppointmentID: appointmentID, UserID: userID}
		}
		// re-invite after decline: update in place, never a second row
		if err := s.store.UpdateAttendeeStatus(ctx, existing.ID, model.StatusPending); err != nil {
			return nil, storeErr("update attendee", err)
		}
		existing.Status = model.StatusPending
		return existing, nil
	}

	rec := &model.AttendeeRecord{
		ID:            uuid.New().String(),
		AppointmentID: appointmentID,
		UserID:        userID,
		Status:        model.StatusPending,
	}
	if err := s.store.InsertAttendee(ctx, rec); err != nil {
		return nil, storeErr("insert attendee", err)
	}
	return rec, nil
}

// Request asks to join an appointment the actor was not invited to.
// Restricted appointments reject unsolicited requests outright.
func (s *Service) Request(ctx context.Context, actorID, appointmentID string) (*model.AttendeeRecord, error) {
	apt, err := s.store.Appointment(ctx, appointmentID)
	if err != nil {
		return nil, storeErr("get appointment", err)
	}
	if IsOrganizer(apt, actorID) {
		return nil, &UnauthorizedTransitionError{Action: "request own appointment", UserID: actorID}
	}
	if apt.OrganizerOnly {
		return nil, &UnauthorizedTransitionError{Action: "request restricted appointment", UserID: actorID}
	}

	existing, err := s.store.AttendeeFor(ctx, appointmentID, actorID)
	if err != nil {
		return nil, storeErr("get attendee", err)
	}
	if existing != nil {
		return nil, &DuplicateParticipationError{AppointmentID: appointmentID, UserID: actorID}
	}

	rec := &model.AttendeeRecord{
		ID:            uuid.New().String(),
		AppointmentID: appointmentID,
		UserID:        actorID,
		Status:        model.StatusRequested,
	}
	if err := s.store.InsertAttendee(ctx, rec); err != nil {
		return nil, storeErr("insert attendee", err)
	}
	return rec, nil
}

// Accept resolves a pending invitation; only the invited user may accept.
// The bool reports whether the record actually changed: re-applying a
// stored resolution is a no-op, and callers use that to suppress repeat
// side effects such as notification mail.
func (s *Service) Accept(ctx context.Context, actorID, recordID string) (bool, error) {
	return s.resolveAsTarget(ctx, actorID, recordID, "accept", model.StatusAccepted)
}

// Decline resolves a pending invitation; only the invited user may decline.
func (s *Service) Decline(ctx context.Context, actorID, recordID string) (bool, error) {
	return s.resolveAsTarget(ctx, actorID, recordID, "decline", model.StatusDeclined)
}

// Approve resolves a join request; only the organizer may approve.
func (s *Service) Approve(ctx context.Context, actorID, recordID string) (bool, error) {
	return s.resolveAsOrganizer(ctx, actorID, recordID, "approve", model.StatusAccepted)
}

// Deny resolves a join request; only the organizer may deny.
func (s *Service) Deny(ctx context.Context, actorID, recordID string) (bool, error) {
	return s.resolveAsOrganizer(ctx, actorID, recordID, "deny", model.StatusDeclined)
}

func (s *Service) resolveAsTarget(ctx context.Context, actorID, recordID, action string, to model.Status) (bool, error) {
	rec, err := s.store.AttendeeByID(ctx, recordID)
	if err != nil {
		return false, storeErr("get attendee", err)
	}
	if rec.UserID != actorID {
		return false, &UnauthorizedTransitionError{Action: action, UserID: actorID}
	}
	// concurrent resolutions race under last-write-wins; re-applying the
	// one already stored is a no-op
	if rec.Status == to {
		return false, nil
	}
	if rec.Status != model.StatusPending {
		return false, &UnauthorizedTransitionError{Action: action, UserID: actorID}
	}
	if err := s.store.UpdateAttendeeStatus(ctx, recordID, to); err != nil {
		return false, storeErr("update attendee", err)
	}
	return true, nil
}

func (s *Service) resolveAsOrganizer(ctx context.Context, actorID, recordID, action string, to model.Status) (bool, error) {
	rec, err := s.store.AttendeeByID(ctx, recordID)
	if err != nil {
		return false, storeErr("get attendee", err)
	}
	apt, err := s.store.Appointment(ctx, rec.AppointmentID)
	if err != nil {
		return false, storeErr("get appointment", err)
	}
	if !IsOrganizer(apt, actorID) {
		return false, &UnauthorizedTransitionError{Action: action, UserID: actorID}
	}
	if rec.Status == to {
		return false, nil
	}
	if rec.Status != model.StatusRequested {
		return false, &UnauthorizedTransitionError{Action: action, UserID: actorID}
	}
	if err := s.store.UpdateAttendeeStatus(ctx, recordID, to); err != nil {
		return false, storeErr("update attendee", err)
	}
	return true, nil
}

// Cancel withdraws an unresolved record. Invitations (pending) belong to
// the organizer, requests belong to the requesting user; only the creator
// may withdraw.
func (s *Service) Cancel(ctx context.Context, actorID, recordID string) error {
	rec, err := s.store.AttendeeByID(ctx, recordID)
	if err != nil {
		return storeErr("get attendee", err)
	}
	if rec.Status.Resolved() {
		return &UnauthorizedTransitionError{Action: "cancel resolved record", UserID: actorID}
	}

	switch rec.Status {
	case model.StatusPending:
		apt, err := s.store.Appointment(ctx, rec.AppointmentID)
		if err != nil {
			return storeErr("get appointment", err)
		}
		if !IsOrganizer(apt, actorID) {
			return &UnauthorizedTransitionError{Action: "cancel invitation", UserID: actorID}
		}
	case model.StatusRequested:
		if rec.UserID != actorID {
			return &UnauthorizedTransitionError{Action: "cancel request", UserID: actorID}
		}
	}

	return storeErr("delete attendee", s.store.DeleteAttendee(ctx, rec.ID))
}

// Reconcile applies an organizer's bulk edit of the attendee list as a set
// difference: newly selected users get pending invitations, deselected
// users lose their record, everyone else keeps their current status.
// Submitting the same selection twice performs zero writes the second time.
func (s *Service) Reconcile(ctx context.Context, actorID, appointmentID string, selected []string) error {
	apt, err := s.store.Appointment(ctx, appointmentID)
	if err != nil {
		return storeErr("get appointment", err)
	}
	if !IsOrganizer(apt, actorID) {
		return &UnauthorizedTransitionError{Action: "edit attendee list", UserID: actorID}
	}

	existing, err := s.store.AttendeesByAppointment(ctx, appointmentID)
	if err != nil {
		return storeErr("list attendees", err)
	}

	want := make(map[string]bool, len(selected))
	for _, id := range selected {
		if id == "" || IsOrganizer(apt, id) {
			continue
		}
		want[id] = true
	}

	have := make(map[string]string, len(existing)) // user id -> record id
	for _, rec := range existing {
		have[rec.UserID] = rec.ID
	}

	for userID := range want {
		if _, ok := have[userID]; ok {
			continue
		}
		rec := &model.AttendeeRecord{
			ID:            uuid.New().String(),
			AppointmentID: appointmentID,
			UserID:        userID,
			Status:        model.StatusPending,
		}
		if err := s.store.InsertAttendee(ctx, rec); err != nil {
			return storeErr("insert attendee", err)
		}
	}

	for userID, recID := range have {
		if want[userID] {
			continue
		}
		if err := s.store.DeleteAttendee(ctx, recID); err != nil {
			return storeErr("delete attendee", err)
		}
	}

	return nil
}

// StateOf derives the participation state of one (appointment, user) pair.
func (s *Service) StateOf(ctx context.Context, appointmentID, userID string) (State, error) {
	apt, err := s.store.Appointment(ctx, appointmentID)
	if err != nil {
		return StateNone, storeErr("get appointment", err)
	}
	rec, err := s.store.AttendeeFor(ctx, appointmentID, userID)
	if err != nil {
		return StateNone, storeErr("get attendee", err)
	}
	return StateFor(apt, rec, userID), nil
}
