package participation

import "fmt"

// ValidationError reports malformed input, e.g. a missing required time.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// UnauthorizedTransitionError reports that the acting user is not permitted
// to perform the requested transition. The store is never touched when it
// is returned.
type UnauthorizedTransitionError struct {
	Action string
	UserID string
}

func (e *UnauthorizedTransitionError) Error() string {
	return fmt.Sprintf("user %s may not %s", e.UserID, e.Action)
}

// DuplicateParticipationError reports an attempt to create a second
// attendee record for the same (appointment, user) pair.
type DuplicateParticipationError struct {
	AppointmentID string
	UserID        string
}

func (e *DuplicateParticipationError) Error() string {
	return fmt.Sprintf("user %s already participates in appointment %s", e.UserID, e.AppointmentID)
}

// StoreError wraps a failed record-store call.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return fmt.Sprintf("store: %s: %v", e.Op, e.Err) }
func (e *StoreError) Unwrap() error { return e.Err }

func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}
