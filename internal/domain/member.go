package domain

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

// Member enrolls one user in one appointment. (user_id, appointment_id) is
// unique.
type Member struct {
	bun.BaseModel `bun:"table:members"`

	ID            int64     `bun:"id,pk,autoincrement"`
	UserID        string    `bun:"user_id,notnull,type:uuid"`
	AppointmentID int64     `bun:"appointment_id,notnull"`
	CreatedAt     time.Time `bun:"created_at,notnull"`
}

func (m *Member) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	if _, ok := query.(*bun.InsertQuery); ok && m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	return nil
}
