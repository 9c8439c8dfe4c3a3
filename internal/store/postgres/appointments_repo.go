package postgres

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"yaksok/backend/internal/domain"
	"yaksok/backend/internal/store"
)

type AppointmentRepo struct {
	db *bun.DB
}

func NewAppointmentRepo(db *bun.DB) *AppointmentRepo {
	return &AppointmentRepo{db: db}
}

type setupTx struct {
	tx bun.Tx
}

func (r *AppointmentRepo) FindByID(ctx context.Context, id int64) (domain.Appointment, error) {
	var appt domain.Appointment
	err := r.db.NewSelect().
		Model(&appt).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if isNoRows(err) {
		return domain.Appointment{}, store.ErrNotFound
	}
	if err != nil {
		return domain.Appointment{}, storageError("find appointment", err)
	}
	return appt, nil
}

func (r *AppointmentRepo) FindByIDs(ctx context.Context, ids []int64) ([]domain.Appointment, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []domain.Appointment
	err := r.db.NewSelect().
		Model(&rows).
		Where("id IN (?)", bun.In(ids)).
		Scan(ctx)
	if err != nil {
		return nil, storageError("find appointments", err)
	}
	return rows, nil
}

func (r *AppointmentRepo) Create(ctx context.Context, draft store.AppointmentDraft) (domain.Appointment, error) {
	var out domain.Appointment
	err := r.InTransaction(ctx, func(ctx context.Context, tx store.SetupTx) error {
		a, err := applyDraft(ctx, tx, draft)
		if err != nil {
			return err
		}
		out = a
		return nil
	})
	if err != nil {
		return domain.Appointment{}, err
	}
	return out, nil
}

func (r *AppointmentRepo) Confirm(ctx context.Context, id int64, confirmDate time.Time, confirmPlace *string) (domain.Appointment, error) {
	var appt domain.Appointment
	err := r.db.NewUpdate().
		Model(&appt).
		Set("confirm_date = ?", confirmDate.UTC()).
		Set("confirm_place = ?", confirmPlace).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id).
		Where("confirm_date IS NULL").
		Returning("*").
		Scan(ctx)
	if err == nil {
		return appt, nil
	}
	if !isNoRows(err) {
		return domain.Appointment{}, storageError("confirm appointment", err)
	}

	// Nothing updated: either the appointment is gone or it was confirmed already.
	if _, err := r.FindByID(ctx, id); err != nil {
		return domain.Appointment{}, err
	}
	return domain.Appointment{}, store.ErrConflict
}

// DeleteByID removes the appointment row only. Members, candidates and
// selections go with it through ON DELETE CASCADE.
func (r *AppointmentRepo) DeleteByID(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.NewDelete().
		Model((*domain.Appointment)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return false, storageError("delete appointment", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, storageError("delete appointment", err)
	}
	return affected > 0, nil
}

func (r *AppointmentRepo) InTransaction(ctx context.Context, fn func(ctx context.Context, tx store.SetupTx) error) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, setupTx{tx: tx})
	})
}

func applyDraft(ctx context.Context, tx store.SetupTx, draft store.AppointmentDraft) (domain.Appointment, error) {
	appt, err := tx.CreateAppointment(ctx, draft.Appointment)
	if err != nil {
		return domain.Appointment{}, err
	}
	if len(draft.CandidateTimes) > 0 {
		if err := tx.CreateTimeVotes(ctx, appt.ID, draft.CandidateTimes); err != nil {
			return domain.Appointment{}, err
		}
	}
	if len(draft.Places) > 0 {
		if err := tx.CreatePlaceVotes(ctx, appt.ID, draft.Places); err != nil {
			return domain.Appointment{}, err
		}
	}
	if err := tx.AddMember(ctx, appt.CreatorID, appt.ID); err != nil {
		return domain.Appointment{}, err
	}
	return appt, nil
}

func (t setupTx) CreateAppointment(ctx context.Context, appt domain.Appointment) (domain.Appointment, error) {
	m := domain.Appointment{
		Title:        appt.Title,
		CreatorID:    appt.CreatorID,
		StartDate:    appt.StartDate,
		EndDate:      appt.EndDate,
		ConfirmDate:  appt.ConfirmDate,
		ConfirmPlace: appt.ConfirmPlace,
	}

	_, err := t.tx.NewInsert().Model(&m).Returning("*").Exec(ctx)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.Appointment{}, store.ErrNotFound
		}
		return domain.Appointment{}, storageError("create appointment", err)
	}
	return m, nil
}

func (t setupTx) CreateTimeVotes(ctx context.Context, appointmentID int64, times []time.Time) error {
	rows := make([]domain.TimeVote, 0, len(times))
	for _, ts := range times {
		rows = append(rows, domain.TimeVote{AppointmentID: appointmentID, CandidateTime: ts.UTC()})
	}
	if _, err := t.tx.NewInsert().Model(&rows).Exec(ctx); err != nil {
		return storageError("create time votes", err)
	}
	return nil
}

func (t setupTx) CreatePlaceVotes(ctx context.Context, appointmentID int64, places []domain.PlaceVote) error {
	rows := make([]domain.PlaceVote, 0, len(places))
	for _, p := range places {
		rows = append(rows, domain.PlaceVote{AppointmentID: appointmentID, Place: p.Place, PlaceURL: p.PlaceURL})
	}
	if _, err := t.tx.NewInsert().Model(&rows).Exec(ctx); err != nil {
		return storageError("create place votes", err)
	}
	return nil
}

func (t setupTx) AddMember(ctx context.Context, userID string, appointmentID int64) error {
	return insertMember(ctx, t.tx, userID, appointmentID)
}
