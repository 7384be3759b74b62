package schedule_test

import (
	"errors"
	"testing"

	"team-scheduler/internal/participation"
	"team-scheduler/internal/schedule"
)

func TestDeriveEndTime(t *testing.T) {
	tests := []struct {
		name  string
		start string
		end   string
		want  string
	}{
		{"end given", "09:00", "10:30", "10:30"},
		{"derived", "09:00", "", "10:00"},
		{"derived keeps minutes", "14:45", "", "15:45"},
		{"wraps past midnight", "23:30", "", "00:30"},
		{"wraps on the hour", "23:00", "", "00:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := schedule.DeriveEndTime(tt.start, tt.end)
			if err != nil {
				t.Fatalf("derive: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestDeriveEndTimeErrors(t *testing.T) {
	tests := []struct {
		name  string
		start string
		end   string
	}{
		{"both missing", "", ""},
		{"bad start", "25:99", ""},
		{"bad end", "09:00", "not a time"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := schedule.DeriveEndTime(tt.start, tt.end)
			var ve *participation.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
		})
	}
}

func TestMissingStartMessage(t *testing.T) {
	_, err := schedule.DeriveEndTime("", "")
	var ve *participation.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if ve.Msg != "end time required" {
		t.Errorf("message: got %q", ve.Msg)
	}
}
