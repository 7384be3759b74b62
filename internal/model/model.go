package model

import "time"

// Status is the lifecycle state of an AttendeeRecord.
type Status string

const (
	StatusPending   Status = "pending"
	StatusAccepted  Status = "accepted"
	StatusDeclined  Status = "declined"
	StatusRequested Status = "requested"
)

// Resolved reports whether the record has reached a terminal status.
func (s Status) Resolved() bool {
	return s == StatusAccepted || s == StatusDeclined
}

type User struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Name         string    `db:"name" json:"name"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Profile carries the display fields joined into views. The scheduling
// core reads profiles but never mutates them.
type Profile struct {
	ID           string  `db:"id" json:"id"`
	FullName     string  `db:"full_name" json:"full_name"`
	Avatar       string  `db:"avatar" json:"avatar"`
	Role         string  `db:"role" json:"role"`
	SectorID     *string `db:"sector_id" json:"sector_id,omitempty"`
	Observations string  `db:"observations" json:"observations,omitempty"`
	Phone        string  `db:"phone" json:"phone,omitempty"`
}

type Location struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// Appointment times are wall-clock "HH:MM" strings; Date carries the day.
type Appointment struct {
	ID            string    `db:"id" json:"id"`
	Title         string    `db:"title" json:"title"`
	Date          time.Time `db:"date" json:"date"`
	StartTime     string    `db:"start_time" json:"start_time"`
	EndTime       string    `db:"end_time" json:"end_time"`
	Type          string    `db:"type" json:"type"`
	Description   string    `db:"description" json:"description"`
	CreatedBy     string    `db:"created_by" json:"created_by"`
	LocationID    *string   `db:"location_id" json:"location_id,omitempty"`
	LocationText  string    `db:"location_text" json:"location_text,omitempty"`
	OrganizerOnly bool      `db:"organizer_only" json:"organizer_only"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// AttendeeRecord links one user to one appointment. At most one record
// exists per (appointment_id, user_id) pair; the participation service
// enforces this before any insert.
type AttendeeRecord struct {
	ID            string    `db:"id" json:"id"`
	AppointmentID string    `db:"appointment_id" json:"appointment_id"`
	UserID        string    `db:"user_id" json:"user_id"`
	Status        Status    `db:"status" json:"status"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}
