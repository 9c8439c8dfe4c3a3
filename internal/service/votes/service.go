package votes

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"yaksok/backend/internal/domain"
	"yaksok/backend/internal/service"
	"yaksok/backend/internal/store"
)

type Service struct {
	appointments store.AppointmentRepository
	members      store.MemberRepository
	timeVotes    store.TimeVoteRepository
	placeVotes   store.PlaceVoteRepository
}

func NewService(
	appointments store.AppointmentRepository,
	members store.MemberRepository,
	timeVotes store.TimeVoteRepository,
	placeVotes store.PlaceVoteRepository,
) *Service {
	return &Service{
		appointments: appointments,
		members:      members,
		timeVotes:    timeVotes,
		placeVotes:   placeVotes,
	}
}

// TimeVote returns the per-slot tally, or nil when the appointment does not
// exist or has no time candidates.
func (s *Service) TimeVote(ctx context.Context, appointmentID int64) (*domain.TimeVoteResult, error) {
	if appointmentID <= 0 {
		return nil, service.NewValidationError("appointment_id must be positive")
	}
	appt, err := s.appointments.FindByID(ctx, appointmentID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	votes, err := s.timeVotes.FindByAppointmentID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	return domain.TallyTimeVotes(appt, votes), nil
}

// PlaceVote returns the per-place tally, or nil when there are no place
// candidates.
func (s *Service) PlaceVote(ctx context.Context, appointmentID int64) (*domain.PlaceVoteResult, error) {
	if appointmentID <= 0 {
		return nil, service.NewValidationError("appointment_id must be positive")
	}
	votes, err := s.placeVotes.FindByAppointmentID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	return domain.TallyPlaceVotes(appointmentID, votes), nil
}

// CastInput replaces the voter's ballot. An empty IDs list withdraws it.
type CastInput struct {
	AppointmentID int64
	UserID        string
	IDs           []int64
}

func (s *Service) CastTimeVote(ctx context.Context, in CastInput) error {
	ids, err := s.prepareBallot(ctx, in)
	if err != nil {
		return err
	}

	votes, err := s.timeVotes.FindByAppointmentID(ctx, in.AppointmentID)
	if err != nil {
		return err
	}
	known := make(map[int64]struct{}, len(votes))
	for _, v := range votes {
		known[v.ID] = struct{}{}
	}
	if err := checkCandidates(ids, known); err != nil {
		return err
	}

	return s.timeVotes.ReplaceSelections(ctx, in.AppointmentID, in.UserID, ids)
}

func (s *Service) CastPlaceVote(ctx context.Context, in CastInput) error {
	ids, err := s.prepareBallot(ctx, in)
	if err != nil {
		return err
	}

	votes, err := s.placeVotes.FindByAppointmentID(ctx, in.AppointmentID)
	if err != nil {
		return err
	}
	known := make(map[int64]struct{}, len(votes))
	for _, v := range votes {
		known[v.ID] = struct{}{}
	}
	if err := checkCandidates(ids, known); err != nil {
		return err
	}

	return s.placeVotes.ReplaceSelections(ctx, in.AppointmentID, in.UserID, ids)
}

// prepareBallot validates the voter and the appointment state and returns the
// deduplicated candidate ids.
func (s *Service) prepareBallot(ctx context.Context, in CastInput) ([]int64, error) {
	if in.AppointmentID <= 0 {
		return nil, service.NewValidationError("appointment_id must be positive")
	}
	if strings.TrimSpace(in.UserID) == "" {
		return nil, service.NewValidationError("user_id is required")
	}
	if _, err := uuid.Parse(in.UserID); err != nil {
		return nil, service.NewValidationError("user_id must be a UUID")
	}

	appt, err := s.appointments.FindByID(ctx, in.AppointmentID)
	if err != nil {
		return nil, err
	}
	member, err := s.members.IsUserInAppointment(ctx, in.UserID, appt.ID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, store.ErrForbidden
	}
	if appt.Status() == domain.AppointmentStatusConfirmed {
		return nil, store.ErrConflict
	}

	seen := make(map[int64]struct{}, len(in.IDs))
	ids := make([]int64, 0, len(in.IDs))
	for _, id := range in.IDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, nil
}

func checkCandidates(ids []int64, known map[int64]struct{}) error {
	for _, id := range ids {
		if _, ok := known[id]; !ok {
			return service.NewValidationError("candidate does not belong to the appointment")
		}
	}
	return nil
}
