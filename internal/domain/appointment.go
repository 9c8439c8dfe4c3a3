package domain

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

type AppointmentStatus string

const (
	AppointmentStatusVoting    AppointmentStatus = "voting"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
)

// Appointment is a meeting proposal. Its ID doubles as the room code members
// type in to join.
type Appointment struct {
	bun.BaseModel `bun:"table:appointments"`

	ID           int64      `bun:"id,pk,autoincrement"`
	Title        string     `bun:"title,notnull"`
	CreatorID    string     `bun:"creator_id,notnull,type:uuid"`
	StartDate    *time.Time `bun:"start_date"`
	EndDate      *time.Time `bun:"end_date"`
	ConfirmDate  *time.Time `bun:"confirm_date"`
	ConfirmPlace *string    `bun:"confirm_place"`
	CreatedAt    time.Time  `bun:"created_at,notnull"`
	UpdatedAt    time.Time  `bun:"updated_at,notnull"`
}

// Status is derived from the confirmed date and never stored.
func (a Appointment) Status() AppointmentStatus {
	if a.ConfirmDate != nil {
		return AppointmentStatusConfirmed
	}
	return AppointmentStatusVoting
}

func (a Appointment) IsCreator(userID string) bool {
	return userID != "" && a.CreatorID == userID
}

func (a *Appointment) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if a.CreatedAt.IsZero() {
			a.CreatedAt = now
		}
		if a.UpdatedAt.IsZero() {
			a.UpdatedAt = now
		}
	case *bun.UpdateQuery:
		a.UpdatedAt = now
	}
	return nil
}
