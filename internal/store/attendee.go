package store

import (
	"context"
	"errors"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"team-scheduler/internal/bus"
	"team-scheduler/internal/model"
)

const attendeeCols = `id, appointment_id, user_id, status, created_at, updated_at`

func (s *Store) InsertAttendee(ctx context.Context, rec *model.AttendeeRecord) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO attendees (id, appointment_id, user_id, status) VALUES ($1,$2,$3,$4)`,
		rec.ID, rec.AppointmentID, rec.UserID, rec.Status,
	)
	if err != nil {
		return err
	}
	s.publish(bus.SubjectAttendee, bus.Event{
		Entity: "attendee", Op: "insert",
		AppointmentID: rec.AppointmentID, UserID: rec.UserID, RecordID: rec.ID,
	})
	return nil
}

func (s *Store) UpdateAttendeeStatus(ctx context.Context, id string, status model.Status) error {
	var appointmentID, userID string
	err := s.pool.QueryRow(ctx,
		`UPDATE attendees SET status=$1, updated_at=NOW() WHERE id=$2
		 RETURNING appointment_id, user_id`,
		status, id,
	).Scan(&appointmentID, &userID)
	if err != nil {
		return err
	}
	s.publish(bus.SubjectAttendee, bus.Event{
		Entity: "attendee", Op: "update",
		AppointmentID: appointmentID, UserID: userID, RecordID: id,
	})
	return nil
}

func (s *Store) DeleteAttendee(ctx context.Context, id string) error {
	var appointmentID, userID string
	err := s.pool.QueryRow(ctx,
		`DELETE FROM attendees WHERE id=$1 RETURNING appointment_id, user_id`, id,
	).Scan(&appointmentID, &userID)
	if err != nil {
		return err
	}
	s.publish(bus.SubjectAttendee, bus.Event{
		Entity: "attendee", Op: "delete",
		AppointmentID: appointmentID, UserID: userID, RecordID: id,
	})
	return nil
}

func (s *Store) AttendeeByID(ctx context.Context, id string) (*model.AttendeeRecord, error) {
	rec := &model.AttendeeRecord{}
	err := pgxscan.Get(ctx, s.pool, rec,
		`SELECT `+attendeeCols+` FROM attendees WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// AttendeeFor returns (nil, nil) when the pair has no record.
func (s *Store) AttendeeFor(ctx context.Context, appointmentID, userID string) (*model.AttendeeRecord, error) {
	rec := &model.AttendeeRecord{}
	err := pgxscan.Get(ctx, s.pool, rec,
		`SELECT `+attendeeCols+` FROM attendees WHERE appointment_id = $1 AND user_id = $2`,
		appointmentID, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *Store) AttendeesByAppointment(ctx context.Context, appointmentID string) ([]model.AttendeeRecord, error) {
	var out []model.AttendeeRecord
	err := pgxscan.Select(ctx, s.pool, &out,
		`SELECT `+attendeeCols+` FROM attendees WHERE appointment_id = $1 ORDER BY id`,
		appointmentID)
	return out, err
}

func (s *Store) AttendeesByUser(ctx context.Context, userID string) ([]model.AttendeeRecord, error) {
	var out []model.AttendeeRecord
	err := pgxscan.Select(ctx, s.pool, &out,
		`SELECT `+attendeeCols+` FROM attendees WHERE user_id = $1 ORDER BY id`, userID)
	return out, err
}

func (s *Store) Attendees(ctx context.Context) ([]model.AttendeeRecord, error) {
	var out []model.AttendeeRecord
	err := pgxscan.Select(ctx, s.pool, &out,
		`SELECT `+attendeeCols+` FROM attendees ORDER BY id`)
	return out, err
}
