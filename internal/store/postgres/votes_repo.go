package postgres

import (
	"context"

	"github.com/uptrace/bun"

	"yaksok/backend/internal/domain"
)

type TimeVoteRepo struct {
	db *bun.DB
}

func NewTimeVoteRepo(db *bun.DB) *TimeVoteRepo {
	return &TimeVoteRepo{db: db}
}

func (r *TimeVoteRepo) FindByAppointmentID(ctx context.Context, appointmentID int64) ([]domain.TimeVote, error) {
	rows := []domain.TimeVote{}
	err := r.db.NewSelect().
		Model(&rows).
		Relation("Selections", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("created_at ASC, user_id ASC")
		}).
		Where("tv.appointment_id = ?", appointmentID).
		OrderExpr("tv.candidate_time ASC, tv.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, storageError("find time votes", err)
	}
	return rows, nil
}

// ReplaceSelections swaps the user's ballot for the appointment in one
// transaction. An empty id list withdraws the ballot.
func (r *TimeVoteRepo) ReplaceSelections(ctx context.Context, appointmentID int64, userID string, timeVoteIDs []int64) error {
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		candidates := tx.NewSelect().
			Model((*domain.TimeVote)(nil)).
			Column("id").
			Where("appointment_id = ?", appointmentID)

		_, err := tx.NewDelete().
			Model((*domain.TimeVoteSelection)(nil)).
			Where("user_id = ?", userID).
			Where("time_vote_id IN (?)", candidates).
			Exec(ctx)
		if err != nil {
			return err
		}

		if len(timeVoteIDs) == 0 {
			return nil
		}
		rows := make([]domain.TimeVoteSelection, 0, len(timeVoteIDs))
		for _, id := range timeVoteIDs {
			rows = append(rows, domain.TimeVoteSelection{TimeVoteID: id, UserID: userID})
		}
		_, err = tx.NewInsert().Model(&rows).Exec(ctx)
		return err
	})
	return storageError("replace time vote selections", err)
}

type PlaceVoteRepo struct {
	db *bun.DB
}

func NewPlaceVoteRepo(db *bun.DB) *PlaceVoteRepo {
	return &PlaceVoteRepo{db: db}
}

func (r *PlaceVoteRepo) FindByAppointmentID(ctx context.Context, appointmentID int64) ([]domain.PlaceVote, error) {
	rows := []domain.PlaceVote{}
	err := r.db.NewSelect().
		Model(&rows).
		Relation("Selections", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("created_at ASC, user_id ASC")
		}).
		Where("pv.appointment_id = ?", appointmentID).
		OrderExpr("pv.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, storageError("find place votes", err)
	}
	return rows, nil
}

func (r *PlaceVoteRepo) ReplaceSelections(ctx context.Context, appointmentID int64, userID string, placeVoteIDs []int64) error {
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		candidates := tx.NewSelect().
			Model((*domain.PlaceVote)(nil)).
			Column("id").
			Where("appointment_id = ?", appointmentID)

		_, err := tx.NewDelete().
			Model((*domain.PlaceVoteSelection)(nil)).
			Where("user_id = ?", userID).
			Where("place_vote_id IN (?)", candidates).
			Exec(ctx)
		if err != nil {
			return err
		}

		if len(placeVoteIDs) == 0 {
			return nil
		}
		rows := make([]domain.PlaceVoteSelection, 0, len(placeVoteIDs))
		for _, id := range placeVoteIDs {
			rows = append(rows, domain.PlaceVoteSelection{PlaceVoteID: id, UserID: userID})
		}
		_, err = tx.NewInsert().Model(&rows).Exec(ctx)
		return err
	})
	return storageError("replace place vote selections", err)
}
