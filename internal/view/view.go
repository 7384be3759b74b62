// Package view builds the four user-facing projections. Every aggregator
// is a pure function of (user id, attendee set, appointment set, profile
// set): no side effects, and a fixed input always yields the same output
// in the same order.
package view

import (
	"sort"

	"team-scheduler/internal/model"
)

// Invitation is a pending record addressed to the viewing user.
type Invitation struct {
	Record      model.AttendeeRecord `json:"record"`
	Appointment model.Appointment    `json:"appointment"`
	Organizer   model.Profile        `json:"organizer"`
}

// Approval is a join request awaiting the viewing organizer's decision.
type Approval struct {
	Record      model.AttendeeRecord `json:"record"`
	Appointment model.Appointment    `json:"appointment"`
	Requester   model.Profile        `json:"requester"`
}

// SentItem is an unresolved record the viewing user created: an outgoing
// request of theirs, or an invitation on an appointment they organize.
type SentItem struct {
	Record      model.AttendeeRecord `json:"record"`
	Appointment model.Appointment    `json:"appointment"`
	Target      model.Profile        `json:"target"`
}

// Sent splits the viewing user's unresolved outgoing items.
type Sent struct {
	Requests    []SentItem `json:"requests"`
	Invitations []SentItem `json:"invitations"`
}

// HistoryEntry is a resolved record the viewing user took part in, on
// either side. IAmOrganizer selects the display phrasing.
type HistoryEntry struct {
	Record       model.AttendeeRecord `json:"record"`
	Appointment  model.Appointment    `json:"appointment"`
	Counterpart  model.Profile        `json:"counterpart"`
	IAmOrganizer bool                 `json:"i_am_organizer"`
}

func indexAppointments(apts []model.Appointment) map[string]model.Appointment {
	m := make(map[string]model.Appointment, len(apts))
	for _, a := range apts {
		m[a.ID] = a
	}
	return m
}

func indexProfiles(profs []model.Profile) map[string]model.Profile {
	m := make(map[string]model.Profile, len(profs))
	for _, p := range profs {
		m[p.ID] = p
	}
	return m
}

// sortStable orders by appointment date, then record id, so pagination and
// tests see a fixed order for a fixed input.
func before(a, b model.Appointment, ra, rb model.AttendeeRecord) bool {
	if !a.Date.Equal(b.Date) {
		return a.Date.Before(b.Date)
	}
	return ra.ID < rb.ID
}

// InvitationsToMe lists the viewing user's pending invitations.
func InvitationsToMe(me string, recs []model.AttendeeRecord, apts []model.Appointment, profs []model.Profile) []Invitation {
	byApt := indexAppointments(apts)
	byProf := indexProfiles(profs)

	var out []Invitation
	for _, rec := range recs {
		if rec.UserID != me || rec.Status != model.StatusPending {
			continue
		}
		apt, ok := byApt[rec.AppointmentID]
		if !ok {
			continue
		}
		out = append(out, Invitation{Record: rec, Appointment: apt, Organizer: byProf[apt.CreatedBy]})
	}
	sort.Slice(out, func(i, j int) bool {
		return before(out[i].Appointment, out[j].Appointment, out[i].Record, out[j].Record)
	})
	return out
}

// RequestsToApprove lists join requests on appointments the viewing user
// organizes.
func RequestsToApprove(me string, recs []model.AttendeeRecord, apts []model.Appointment, profs []model.Profile) []Approval {
	byApt := indexAppointments(apts)
	byProf := indexProfiles(profs)

	var out []Approval
	for _, rec := range recs {
		if rec.Status != model.StatusRequested {
			continue
		}
		apt, ok := byApt[rec.AppointmentID]
		if !ok || apt.CreatedBy != me {
			continue
		}
		out = append(out, Approval{Record: rec, Appointment: apt, Requester: byProf[rec.UserID]})
	}
	sort.Slice(out, func(i, j int) bool {
		return before(out[i].Appointment, out[j].Appointment, out[i].Record, out[j].Record)
	})
	return out
}

// SentByMe lists the viewing user's unresolved outgoing items: their own
// join requests, and the pending invitations on appointments they organize.
func SentByMe(me string, recs []model.AttendeeRecord, apts []model.Appointment, profs []model.Profile) Sent {
	byApt := indexAppointments(apts)
	byProf := indexProfiles(profs)

	var s Sent
	for _, rec := range recs {
		apt, ok := byApt[rec.AppointmentID]
		if !ok {
			continue
		}
		switch {
		case rec.Status == model.StatusRequested && rec.UserID == me:
			s.Requests = append(s.Requests, SentItem{Record: rec, Appointment: apt, Target: byProf[apt.CreatedBy]})
		case rec.Status == model.StatusPending && apt.CreatedBy == me:
			s.Invitations = append(s.Invitations, SentItem{Record: rec, Appointment: apt, Target: byProf[rec.UserID]})
		}
	}
	sort.Slice(s.Requests, func(i, j int) bool {
		return before(s.Requests[i].Appointment, s.Requests[j].Appointment, s.Requests[i].Record, s.Requests[j].Record)
	})
	sort.Slice(s.Invitations, func(i, j int) bool {
		return before(s.Invitations[i].Appointment, s.Invitations[j].Appointment, s.Invitations[i].Record, s.Invitations[j].Record)
	})
	return s
}

// History lists resolved records where the viewing user was either the
// participant or the organizer.
func History(me string, recs []model.AttendeeRecord, apts []model.Appointment, profs []model.Profile) []HistoryEntry {
	byApt := indexAppointments(apts)
	byProf := indexProfiles(profs)

	var out []HistoryEntry
	for _, rec := range recs {
		if !rec.Status.Resolved() {
			continue
		}
		apt, ok := byApt[rec.AppointmentID]
		if !ok {
			continue
		}
		switch {
		case apt.CreatedBy == me:
			out = append(out, HistoryEntry{Record: rec, Appointment: apt, Counterpart: byProf[rec.UserID], IAmOrganizer: true})
		case rec.UserID == me:
			out = append(out, HistoryEntry{Record: rec, Appointment: apt, Counterpart: byProf[apt.CreatedBy], IAmOrganizer: false})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return before(out[i].Appointment, out[j].Appointment, out[i].Record, out[j].Record)
	})
	return out
}
