package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User rows are created by the external auth provider on signup; the service
// only reads them, except for seeding and tests.
type User struct {
	bun.BaseModel `bun:"table:users"`

	ID           string    `bun:"id,pk,type:uuid"`
	Email        string    `bun:"email,notnull"`
	Nickname     string    `bun:"nickname"`
	ProfileImage string    `bun:"profile_image"`
	CreatedAt    time.Time `bun:"created_at,notnull"`
}

func (u *User) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	if _, ok := query.(*bun.InsertQuery); !ok {
		return nil
	}
	if u.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		u.ID = id.String()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	return nil
}
