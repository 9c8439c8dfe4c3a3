package store

import (
	"context"
	"time"

	"yaksok/backend/internal/domain"
)

type UserRepository interface {
	FindByID(ctx context.Context, id string) (domain.User, error)
	Create(ctx context.Context, user domain.User) (domain.User, error)
}

type AppointmentRepository interface {
	FindByID(ctx context.Context, id int64) (domain.Appointment, error)
	FindByIDs(ctx context.Context, ids []int64) ([]domain.Appointment, error)
	Create(ctx context.Context, draft AppointmentDraft) (domain.Appointment, error)
	Confirm(ctx context.Context, id int64, confirmDate time.Time, confirmPlace *string) (domain.Appointment, error)
	DeleteByID(ctx context.Context, id int64) (bool, error)
}

type MemberRepository interface {
	IsUserInAppointment(ctx context.Context, userID string, appointmentID int64) (bool, error)
	AddMemberToAppointment(ctx context.Context, userID string, appointmentID int64) error
	FindByAppointmentID(ctx context.Context, appointmentID int64) ([]domain.Member, error)
	FindByUserID(ctx context.Context, userID string) ([]domain.Member, error)
}

type TimeVoteRepository interface {
	FindByAppointmentID(ctx context.Context, appointmentID int64) ([]domain.TimeVote, error)
	ReplaceSelections(ctx context.Context, appointmentID int64, userID string, timeVoteIDs []int64) error
}

type PlaceVoteRepository interface {
	FindByAppointmentID(ctx context.Context, appointmentID int64) ([]domain.PlaceVote, error)
	ReplaceSelections(ctx context.Context, appointmentID int64, userID string, placeVoteIDs []int64) error
}
