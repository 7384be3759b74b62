package schedule

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"team-scheduler/internal/model"
	"team-scheduler/internal/participation"
)

// ErrNotFound hides appointments the caller may not see as well as ones
// that do not exist.
var ErrNotFound = errors.New("appointment not found")

// readErr keeps a missing row distinct from a store outage: only the
// former becomes ErrNotFound.
func readErr(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return &participation.StoreError{Op: "get appointment", Err: err}
}

// Store is the slice of the record store the appointment lifecycle needs.
type Store interface {
	Appointment(ctx context.Context, id string) (*model.Appointment, error)
	Appointments(ctx context.Context) ([]model.Appointment, error)
	InsertAppointment(ctx context.Context, a *model.Appointment) error
	UpdateAppointment(ctx context.Context, a *model.Appointment) error
	DeleteAppointmentCascade(ctx context.Context, id string) error
	AttendeesByUser(ctx context.Context, userID string) ([]model.AttendeeRecord, error)
	ProfileByID(ctx context.Context, id string) (*model.Profile, error)
	Locations(ctx context.Context) ([]model.Location, error)
}

// Input carries the mutable appointment fields from the caller.
type Input struct {
	Title         string
	Date          time.Time
	StartTime     string
	EndTime       string
	Type          string
	Description   string
	LocationID    *string
	LocationText  string
	OrganizerOnly bool
	AttendeeIDs   []string
}

// Service owns the appointment lifecycle: creation, mutation by the
// organizer or an administrator, and deletion with the attendee cascade.
type Service struct {
	store Store
	parts *participation.Service
}

func NewService(st Store, parts *participation.Service) *Service {
	return &Service{store: st, parts: parts}
}

func (s *Service) validate(in *Input) error {
	if in.Title == "" {
		return &participation.ValidationError{Msg: "title required"}
	}
	if in.Date.IsZero() {
		return &participation.ValidationError{Msg: "date required"}
	}
	end, err := DeriveEndTime(in.StartTime, in.EndTime)
	if err != nil {
		return err
	}
	in.EndTime = end
	return nil
}

// isAdmin derives administrator rights from the profile role. A missing
// profile simply means no elevated rights.
func (s *Service) isAdmin(ctx context.Context, userID string) bool {
	p, err := s.store.ProfileByID(ctx, userID)
	return err == nil && p != nil && p.Role == "admin"
}

func (s *Service) Create(ctx context.Context, actorID string, in Input) (*model.Appointment, error) {
	if err := s.validate(&in); err != nil {
		return nil, err
	}

	apt := &model.Appointment{
		ID:            uuid.New().String(),
		Title:         in.Title,
		Date:          in.Date,
		StartTime:     in.StartTime,
		EndTime:       in.EndTime,
		Type:          in.Type,
		Description:   in.Description,
		CreatedBy:     actorID,
		LocationID:    in.LocationID,
		LocationText:  in.LocationText,
		OrganizerOnly: in.OrganizerOnly,
	}
	if err := s.store.InsertAppointment(ctx, apt); err != nil {
		return nil, &participation.StoreError{Op: "insert appointment", Err: err}
	}

	if len(in.AttendeeIDs) > 0 {
		if err := s.parts.Reconcile(ctx, actorID, apt.ID, in.AttendeeIDs); err != nil {
			return nil, err
		}
	}
	return apt, nil
}

func (s *Service) Update(ctx context.Context, actorID, id string, in Input) (*model.Appointment, error) {
	apt, err := s.store.Appointment(ctx, id)
	if err != nil {
		return nil, readErr(err)
	}
	if !participation.IsOrganizer(apt, actorID) && !s.isAdmin(ctx, actorID) {
		return nil, &participation.UnauthorizedTransitionError{Action: "edit appointment", UserID: actorID}
	}
	if err := s.validate(&in); err != nil {
		return nil, err
	}

	apt.Title = in.Title
	apt.Date = in.Date
	apt.StartTime = in.StartTime
	apt.EndTime = in.EndTime
	apt.Type = in.Type
	apt.Description = in.Description
	apt.LocationID = in.LocationID
	apt.LocationText = in.LocationText
	apt.OrganizerOnly = in.OrganizerOnly
	if err := s.store.UpdateAppointment(ctx, apt); err != nil {
		return nil, &participation.StoreError{Op: "update appointment", Err: err}
	}

	// attendee selection is reconciled, never replaced: surviving rows
	// keep their status
	if in.AttendeeIDs != nil {
		if err := s.parts.Reconcile(ctx, apt.CreatedBy, apt.ID, in.AttendeeIDs); err != nil {
			return nil, err
		}
	}
	return apt, nil
}

// Delete removes the appointment and every attendee record for it in one
// transaction; the store does not cascade on its own.
func (s *Service) Delete(ctx context.Context, actorID, id string) error {
	apt, err := s.store.Appointment(ctx, id)
	if err != nil {
		return readErr(err)
	}
	if !participation.IsOrganizer(apt, actorID) && !s.isAdmin(ctx, actorID) {
		return &participation.UnauthorizedTransitionError{Action: "delete appointment", UserID: actorID}
	}
	if err := s.store.DeleteAppointmentCascade(ctx, id); err != nil {
		return &participation.StoreError{Op: "delete appointment", Err: err}
	}
	return nil
}

// Get hides restricted appointments from outsiders rather than revealing
// their existence.
func (s *Service) Get(ctx context.Context, actorID, id string) (*model.Appointment, error) {
	apt, err := s.store.Appointment(ctx, id)
	if err != nil {
		return nil, readErr(err)
	}
	if !s.visible(ctx, apt, actorID) {
		return nil, ErrNotFound
	}
	return apt, nil
}

// List returns the appointments the actor may see: everything public, plus
// restricted appointments they organize or appear on.
func (s *Service) List(ctx context.Context, actorID string) ([]model.Appointment, error) {
	apts, err := s.store.Appointments(ctx)
	if err != nil {
		return nil, &participation.StoreError{Op: "list appointments", Err: err}
	}
	if s.isAdmin(ctx, actorID) {
		return apts, nil
	}

	mine, err := s.store.AttendeesByUser(ctx, actorID)
	if err != nil {
		return nil, &participation.StoreError{Op: "list attendees", Err: err}
	}
	member := make(map[string]bool, len(mine))
	for _, rec := range mine {
		member[rec.AppointmentID] = true
	}

	out := apts[:0:0]
	for _, a := range apts {
		if !a.OrganizerOnly || a.CreatedBy == actorID || member[a.ID] {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *Service) Locations(ctx context.Context) ([]model.Location, error) {
	locs, err := s.store.Locations(ctx)
	if err != nil {
		return nil, &participation.StoreError{Op: "list locations", Err: err}
	}
	return locs, nil
}

func (s *Service) visible(ctx context.Context, apt *model.Appointment, actorID string) bool {
	if !apt.OrganizerOnly || apt.CreatedBy == actorID {
		return true
	}
	if s.isAdmin(ctx, actorID) {
		return true
	}
	mine, err := s.store.AttendeesByUser(ctx, actorID)
	if err != nil {
		return false
	}
	for _, rec := range mine {
		if rec.AppointmentID == apt.ID {
			return true
		}
	}
	return false
}
