package participation

import "team-scheduler/internal/model"

// State is the derived participation state of one (appointment, user) pair.
type State string

const (
	StateOrganizer State = "organizer"
	StateNone      State = "none"
	StateInvited   State = "invited"
	StateRequested State = "requested"
	StateMember    State = "member"
	StateDeclined  State = "declined"
)

// IsOrganizer is the one place organizer status is derived from. The
// organizer never has an attendee record; created_by is authoritative.
func IsOrganizer(a *model.Appointment, userID string) bool {
	return a != nil && a.CreatedBy == userID
}

// StateFor derives the participation state from the appointment's creator
// and the user's attendee record, if any.
func StateFor(a *model.Appointment, rec *model.AttendeeRecord, userID string) State {
	if IsOrganizer(a, userID) {
		return StateOrganizer
	}
	if rec == nil {
		return StateNone
	}
	switch rec.Status {
	case model.StatusPending:
		return StateInvited
	case model.StatusRequested:
		return StateRequested
	case model.StatusAccepted:
		return StateMember
	case model.StatusDeclined:
		return StateDeclined
	}
	return StateNone
}
