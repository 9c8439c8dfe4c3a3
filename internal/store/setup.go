package store

import (
	"context"
	"time"

	"yaksok/backend/internal/domain"
)

// AppointmentDraft is everything written when an appointment is created: the
// appointment itself, its vote candidates and the creator's membership.
type AppointmentDraft struct {
	Appointment    domain.Appointment
	CandidateTimes []time.Time
	Places         []domain.PlaceVote
}

// SetupTx is the set of writes available inside the appointment creation
// transaction.
type SetupTx interface {
	CreateAppointment(ctx context.Context, appt domain.Appointment) (domain.Appointment, error)
	CreateTimeVotes(ctx context.Context, appointmentID int64, times []time.Time) error
	CreatePlaceVotes(ctx context.Context, appointmentID int64, places []domain.PlaceVote) error
	AddMember(ctx context.Context, userID string, appointmentID int64) error
}
