package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"yaksok/backend/internal/domain"
	"yaksok/backend/internal/store"
)

type fakeSetupTx struct {
	createAppointmentFn func(ctx context.Context, appt domain.Appointment) (domain.Appointment, error)
	createTimeVotesFn   func(ctx context.Context, appointmentID int64, times []time.Time) error
	createPlaceVotesFn  func(ctx context.Context, appointmentID int64, places []domain.PlaceVote) error
	addMemberFn         func(ctx context.Context, userID string, appointmentID int64) error
}

func (f *fakeSetupTx) CreateAppointment(ctx context.Context, appt domain.Appointment) (domain.Appointment, error) {
	if f.createAppointmentFn == nil {
		panic("CreateAppointment not configured")
	}
	return f.createAppointmentFn(ctx, appt)
}

func (f *fakeSetupTx) CreateTimeVotes(ctx context.Context, appointmentID int64, times []time.Time) error {
	if f.createTimeVotesFn == nil {
		panic("CreateTimeVotes not configured")
	}
	return f.createTimeVotesFn(ctx, appointmentID, times)
}

func (f *fakeSetupTx) CreatePlaceVotes(ctx context.Context, appointmentID int64, places []domain.PlaceVote) error {
	if f.createPlaceVotesFn == nil {
		panic("CreatePlaceVotes not configured")
	}
	return f.createPlaceVotesFn(ctx, appointmentID, places)
}

func (f *fakeSetupTx) AddMember(ctx context.Context, userID string, appointmentID int64) error {
	if f.addMemberFn == nil {
		panic("AddMember not configured")
	}
	return f.addMemberFn(ctx, userID, appointmentID)
}

func TestApplyDraft(t *testing.T) {
	start := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

	t.Run("writes candidates and creator membership under the new id", func(t *testing.T) {
		var (
			gotTimesFor  int64
			gotPlacesFor int64
			gotMember    string
			gotMemberFor int64
		)
		tx := &fakeSetupTx{
			createAppointmentFn: func(ctx context.Context, appt domain.Appointment) (domain.Appointment, error) {
				appt.ID = 42
				return appt, nil
			},
			createTimeVotesFn: func(ctx context.Context, appointmentID int64, times []time.Time) error {
				gotTimesFor = appointmentID
				if len(times) != 2 {
					return fmt.Errorf("len(times) = %d, want 2", len(times))
				}
				return nil
			},
			createPlaceVotesFn: func(ctx context.Context, appointmentID int64, places []domain.PlaceVote) error {
				gotPlacesFor = appointmentID
				return nil
			},
			addMemberFn: func(ctx context.Context, userID string, appointmentID int64) error {
				gotMember = userID
				gotMemberFor = appointmentID
				return nil
			},
		}

		appt, err := applyDraft(context.Background(), tx, store.AppointmentDraft{
			Appointment:    domain.Appointment{Title: "t", CreatorID: "u1"},
			CandidateTimes: []time.Time{start, start.Add(time.Hour)},
			Places:         []domain.PlaceVote{{Place: "Cafe"}},
		})
		if err != nil {
			t.Fatalf("applyDraft error: %v", err)
		}
		if appt.ID != 42 {
			t.Fatalf("appt.ID = %d, want 42", appt.ID)
		}
		if gotTimesFor != 42 || gotPlacesFor != 42 || gotMemberFor != 42 {
			t.Fatalf("writes used ids times=%d places=%d member=%d, want 42", gotTimesFor, gotPlacesFor, gotMemberFor)
		}
		if gotMember != "u1" {
			t.Fatalf("member = %q, want %q", gotMember, "u1")
		}
	})

	t.Run("skips empty candidate lists", func(t *testing.T) {
		tx := &fakeSetupTx{
			createAppointmentFn: func(ctx context.Context, appt domain.Appointment) (domain.Appointment, error) {
				appt.ID = 1
				return appt, nil
			},
			addMemberFn: func(ctx context.Context, userID string, appointmentID int64) error {
				return nil
			},
		}

		if _, err := applyDraft(context.Background(), tx, store.AppointmentDraft{
			Appointment: domain.Appointment{Title: "t", CreatorID: "u1"},
		}); err != nil {
			t.Fatalf("applyDraft error: %v", err)
		}
	})

	t.Run("stops at first failure", func(t *testing.T) {
		boom := errors.New("boom")
		tx := &fakeSetupTx{
			createAppointmentFn: func(ctx context.Context, appt domain.Appointment) (domain.Appointment, error) {
				appt.ID = 1
				return appt, nil
			},
			createTimeVotesFn: func(ctx context.Context, appointmentID int64, times []time.Time) error {
				return boom
			},
		}

		_, err := applyDraft(context.Background(), tx, store.AppointmentDraft{
			Appointment:    domain.Appointment{Title: "t", CreatorID: "u1"},
			CandidateTimes: []time.Time{start},
			Places:         []domain.PlaceVote{{Place: "Cafe"}},
		})
		if !errors.Is(err, boom) {
			t.Fatalf("err = %v, want %v", err, boom)
		}
	})
}

func TestStorageError(t *testing.T) {
	if storageError("op", nil) != nil {
		t.Fatalf("storageError(nil) != nil")
	}

	cause := errors.New("connection refused")
	err := storageError("find user", cause)

	var sErr *store.StorageError
	if !errors.As(err, &sErr) {
		t.Fatalf("error type = %T, want *store.StorageError", err)
	}
	if sErr.Op != "find user" {
		t.Fatalf("Op = %q, want %q", sErr.Op, "find user")
	}
	if !errors.Is(err, cause) {
		t.Fatalf("errors.Is(err, cause) = false")
	}
	if err.Error() != "store: find user: connection refused" {
		t.Fatalf("Error() = %q", err.Error())
	}
}

func TestPgErrorClassification(t *testing.T) {
	unique := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})
	fk := &pgconn.PgError{Code: "23503"}

	if !isUniqueViolation(unique) || isForeignKeyViolation(unique) {
		t.Fatalf("unique violation misclassified")
	}
	if !isForeignKeyViolation(fk) || isUniqueViolation(fk) {
		t.Fatalf("foreign key violation misclassified")
	}
	if isUniqueViolation(errors.New("plain")) {
		t.Fatalf("plain error classified as unique violation")
	}
	if !isNoRows(fmt.Errorf("scan: %w", sql.ErrNoRows)) {
		t.Fatalf("wrapped sql.ErrNoRows not detected")
	}
}
