package store

import (
	"context"

	"github.com/georgysavva/scany/v2/pgxscan"

	"team-scheduler/internal/bus"
	"team-scheduler/internal/model"
)

const appointmentCols = `id, title, date, start_time, end_time, type, description,
	created_by, location_id, location_text, organizer_only, created_at, updated_at`

func (s *Store) InsertAppointment(ctx context.Context, a *model.Appointment) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO appointments (id, title, date, start_time, end_time, type, description,
		                           created_by, location_id, location_text, organizer_only)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		a.ID, a.Title, a.Date, a.StartTime, a.EndTime, a.Type, a.Description,
		a.CreatedBy, a.LocationID, a.LocationText, a.OrganizerOnly,
	)
	if err != nil {
		return err
	}
	s.publish(bus.SubjectAppointment, bus.Event{Entity: "appointment", Op: "insert", AppointmentID: a.ID})
	return nil
}

func (s *Store) UpdateAppointment(ctx context.Context, a *model.Appointment) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE appointments
		 SET title=$1, date=$2, start_time=$3, end_time=$4, type=$5, description=$6,
		     location_id=$7, location_text=$8, organizer_only=$9, updated_at=NOW()
		 WHERE id=$10`,
		a.Title, a.Date, a.StartTime, a.EndTime, a.Type, a.Description,
		a.LocationID, a.LocationText, a.OrganizerOnly, a.ID,
	)
	if err != nil {
		return err
	}
	s.publish(bus.SubjectAppointment, bus.Event{Entity: "appointment", Op: "update", AppointmentID: a.ID})
	return nil
}

// DeleteAppointmentCascade removes the attendee rows and the appointment
// in one transaction, attendees first. The schema does not cascade.
func (s *Store) DeleteAppointmentCascade(ctx context.Context, id string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM attendees WHERE appointment_id=$1`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM appointments WHERE id=$1`, id); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}

	s.publish(bus.SubjectAppointment, bus.Event{Entity: "appointment", Op: "delete", AppointmentID: id})
	return nil
}

func (s *Store) Appointment(ctx context.Context, id string) (*model.Appointment, error) {
	a := &model.Appointment{}
	err := pgxscan.Get(ctx, s.pool, a,
		`SELECT `+appointmentCols+` FROM appointments WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Store) Appointments(ctx context.Context) ([]model.Appointment, error) {
	var out []model.Appointment
	err := pgxscan.Select(ctx, s.pool, &out,
		`SELECT `+appointmentCols+` FROM appointments ORDER BY date, start_time, id`)
	return out, err
}

func (s *Store) Locations(ctx context.Context) ([]model.Location, error) {
	var out []model.Location
	err := pgxscan.Select(ctx, s.pool, &out, `SELECT id, name FROM locations ORDER BY name`)
	return out, err
}
