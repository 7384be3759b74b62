package schedule

import (
	"fmt"
	"time"

	"team-scheduler/internal/participation"
)

const clockLayout = "15:04"

// DeriveEndTime fills in a missing end time as start + 1h, wrapping across
// midnight. A missing start time cannot be repaired and is rejected.
func DeriveEndTime(start, end string) (string, error) {
	if end != "" {
		if _, err := time.Parse(clockLayout, end); err != nil {
			return "", &participation.ValidationError{Msg: fmt.Sprintf("bad end time %q", end)}
		}
		return end, nil
	}
	if start == "" {
		return "", &participation.ValidationError{Msg: "end time required"}
	}
	t, err := time.Parse(clockLayout, start)
	if err != nil {
		return "", &participation.ValidationError{Msg: fmt.Sprintf("bad start time %q", start)}
	}
	h := (t.Hour() + 1) % 24
	return fmt.Sprintf("%02d:%02d", h, t.Minute()), nil
}
