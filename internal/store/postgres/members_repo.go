package postgres

import (
	"context"

	"github.com/uptrace/bun"

	"yaksok/backend/internal/domain"
	"yaksok/backend/internal/store"
)

type MemberRepo struct {
	db *bun.DB
}

func NewMemberRepo(db *bun.DB) *MemberRepo {
	return &MemberRepo{db: db}
}

func (r *MemberRepo) IsUserInAppointment(ctx context.Context, userID string, appointmentID int64) (bool, error) {
	var m domain.Member
	err := r.db.NewSelect().
		Model(&m).
		Column("id").
		Where("user_id = ?", userID).
		Where("appointment_id = ?", appointmentID).
		Limit(1).
		Scan(ctx)
	if isNoRows(err) {
		return false, nil
	}
	if err != nil {
		return false, storageError("check membership", err)
	}
	return true, nil
}

// AddMemberToAppointment is idempotent. The existence check skips the write
// in the common case; the unique index and ON CONFLICT cover concurrent joins.
func (r *MemberRepo) AddMemberToAppointment(ctx context.Context, userID string, appointmentID int64) error {
	ok, err := r.IsUserInAppointment(ctx, userID, appointmentID)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	return insertMember(ctx, r.db, userID, appointmentID)
}

func (r *MemberRepo) FindByAppointmentID(ctx context.Context, appointmentID int64) ([]domain.Member, error) {
	rows := []domain.Member{}
	err := r.db.NewSelect().
		Model(&rows).
		Where("appointment_id = ?", appointmentID).
		OrderExpr("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, storageError("find members by appointment", err)
	}
	return rows, nil
}

func (r *MemberRepo) FindByUserID(ctx context.Context, userID string) ([]domain.Member, error) {
	rows := []domain.Member{}
	err := r.db.NewSelect().
		Model(&rows).
		Where("user_id = ?", userID).
		OrderExpr("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, storageError("find members by user", err)
	}
	return rows, nil
}

func insertMember(ctx context.Context, db bun.IDB, userID string, appointmentID int64) error {
	m := domain.Member{UserID: userID, AppointmentID: appointmentID}
	_, err := db.NewInsert().
		Model(&m).
		On("CONFLICT (user_id, appointment_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		if isForeignKeyViolation(err) {
			return store.ErrNotFound
		}
		return storageError("add member", err)
	}
	return nil
}
