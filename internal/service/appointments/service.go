package appointments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"yaksok/backend/internal/domain"
	"yaksok/backend/internal/service"
	"yaksok/backend/internal/store"
)

const maxTitleLength = 100

// ErrNotCreator is returned when someone other than the creator tries to
// delete or confirm an appointment.
var ErrNotCreator = fmt.Errorf("%w: only the creator may change this appointment", store.ErrForbidden)

type Service struct {
	users        store.UserRepository
	appointments store.AppointmentRepository
	members      store.MemberRepository
	timeVotes    store.TimeVoteRepository
	placeVotes   store.PlaceVoteRepository
}

type Repositories struct {
	Users        store.UserRepository
	Appointments store.AppointmentRepository
	Members      store.MemberRepository
	TimeVotes    store.TimeVoteRepository
	PlaceVotes   store.PlaceVoteRepository
}

func NewService(repos Repositories) *Service {
	return &Service{
		users:        repos.Users,
		appointments: repos.Appointments,
		members:      repos.Members,
		timeVotes:    repos.TimeVotes,
		placeVotes:   repos.PlaceVotes,
	}
}

type PlaceInput struct {
	Name string
	URL  string
}

type CreateInput struct {
	CreatorID      string
	Title          string
	StartDate      *time.Time
	EndDate        *time.Time
	CandidateTimes []time.Time
	Places         []PlaceInput
}

func (s *Service) Create(ctx context.Context, in CreateInput) (domain.Appointment, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return domain.Appointment{}, service.NewValidationError("title is required")
	}
	if len([]rune(title)) > maxTitleLength {
		return domain.Appointment{}, service.NewValidationError("title too long")
	}
	if err := validateUserID(in.CreatorID); err != nil {
		return domain.Appointment{}, err
	}

	if (in.StartDate == nil) != (in.EndDate == nil) {
		return domain.Appointment{}, service.NewValidationError("start_date and end_date must be given together")
	}
	var start, end *time.Time
	if in.StartDate != nil {
		sd, ed := in.StartDate.UTC(), in.EndDate.UTC()
		if ed.Before(sd) {
			return domain.Appointment{}, service.NewValidationError("end_date must not be before start_date")
		}
		start, end = &sd, &ed
	}

	times, err := normalizeCandidateTimes(in.CandidateTimes, start, end)
	if err != nil {
		return domain.Appointment{}, err
	}

	if len(in.Places) == 0 {
		return domain.Appointment{}, service.NewValidationError("at least one place is required")
	}
	if len(in.Places) > domain.MaxPlaceCandidates {
		return domain.Appointment{}, service.NewValidationError("at most 5 places are allowed")
	}
	places := make([]domain.PlaceVote, 0, len(in.Places))
	for _, p := range in.Places {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			return domain.Appointment{}, service.NewValidationError("place name is required")
		}
		places = append(places, domain.PlaceVote{Place: name, PlaceURL: strings.TrimSpace(p.URL)})
	}

	return s.appointments.Create(ctx, store.AppointmentDraft{
		Appointment: domain.Appointment{
			Title:     title,
			CreatorID: in.CreatorID,
			StartDate: start,
			EndDate:   end,
		},
		CandidateTimes: times,
		Places:         places,
	})
}

func normalizeCandidateTimes(in []time.Time, start, end *time.Time) ([]time.Time, error) {
	seen := make(map[int64]struct{}, len(in))
	out := make([]time.Time, 0, len(in))
	for _, t := range in {
		t = t.UTC()
		if start != nil && (t.Before(*start) || t.After(*end)) {
			return nil, service.NewValidationError("candidate time outside the date range")
		}
		key := t.UnixNano()
		if _, ok := seen[key]; ok {
			return nil, service.NewValidationError("duplicate candidate time")
		}
		seen[key] = struct{}{}
		out = append(out, t)
	}
	return out, nil
}

// Cards lists the user's appointments in membership order. Appointments
// deleted between the two lookups are skipped.
func (s *Service) Cards(ctx context.Context, userID string) ([]domain.AppointmentCard, error) {
	if err := validateUserID(userID); err != nil {
		return nil, err
	}
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, err
	}

	memberships, err := s.members.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(memberships) == 0 {
		return []domain.AppointmentCard{}, nil
	}

	ids := make([]int64, 0, len(memberships))
	for _, m := range memberships {
		ids = append(ids, m.AppointmentID)
	}
	appts, err := s.appointments.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]domain.Appointment, len(appts))
	for _, a := range appts {
		byID[a.ID] = a
	}

	cards := make([]domain.AppointmentCard, 0, len(ids))
	for _, id := range ids {
		a, ok := byID[id]
		if !ok {
			continue
		}
		cards = append(cards, domain.NewAppointmentCard(a, userID))
	}
	return cards, nil
}

// Delete reports whether a row was removed. Members and votes go with the
// appointment through foreign key cascades. A non-empty requesterID must be
// the creator; an empty one skips the check for deployments without auth.
func (s *Service) Delete(ctx context.Context, appointmentID int64, requesterID string) (bool, error) {
	if appointmentID <= 0 {
		return false, service.NewValidationError("appointment_id must be positive")
	}
	if requesterID != "" {
		appt, err := s.appointments.FindByID(ctx, appointmentID)
		if errors.Is(err, store.ErrNotFound) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		if !appt.IsCreator(requesterID) {
			return false, ErrNotCreator
		}
	}
	return s.appointments.DeleteByID(ctx, appointmentID)
}

// Join enrolls the user in the appointment behind roomCode. Joining twice is
// a no-op.
func (s *Service) Join(ctx context.Context, userID string, roomCode int64) (domain.Appointment, error) {
	if err := validateUserID(userID); err != nil {
		return domain.Appointment{}, err
	}
	if roomCode <= 0 {
		return domain.Appointment{}, service.NewValidationError("room code must be positive")
	}

	appt, err := s.appointments.FindByID(ctx, roomCode)
	if err != nil {
		return domain.Appointment{}, err
	}
	if err := s.members.AddMemberToAppointment(ctx, userID, appt.ID); err != nil {
		return domain.Appointment{}, err
	}
	return appt, nil
}

type ConfirmInput struct {
	AppointmentID int64
	// RequesterID must match the creator when set.
	RequesterID   string
	ConfirmDate   *time.Time
	ConfirmPlace  *string
}

// Confirm fixes the appointment's date and place. A missing date or place is
// taken from the current vote leader.
func (s *Service) Confirm(ctx context.Context, in ConfirmInput) (domain.Appointment, error) {
	if in.AppointmentID <= 0 {
		return domain.Appointment{}, service.NewValidationError("appointment_id must be positive")
	}

	appt, err := s.appointments.FindByID(ctx, in.AppointmentID)
	if err != nil {
		return domain.Appointment{}, err
	}
	if in.RequesterID != "" && !appt.IsCreator(in.RequesterID) {
		return domain.Appointment{}, ErrNotCreator
	}
	if appt.Status() == domain.AppointmentStatusConfirmed {
		return domain.Appointment{}, store.ErrConflict
	}

	var date time.Time
	if in.ConfirmDate != nil {
		date = in.ConfirmDate.UTC()
	} else {
		votes, err := s.timeVotes.FindByAppointmentID(ctx, appt.ID)
		if err != nil {
			return domain.Appointment{}, err
		}
		result := domain.TallyTimeVotes(appt, votes)
		if result == nil {
			return domain.Appointment{}, service.NewValidationError("confirm_date is required")
		}
		leader, ok := result.Leader()
		if !ok {
			return domain.Appointment{}, service.NewValidationError("confirm_date is required")
		}
		date = leader.CandidateTime
	}

	place := in.ConfirmPlace
	if place != nil {
		trimmed := strings.TrimSpace(*place)
		place = &trimmed
		if trimmed == "" {
			place = nil
		}
	}
	if place == nil {
		votes, err := s.placeVotes.FindByAppointmentID(ctx, appt.ID)
		if err != nil {
			return domain.Appointment{}, err
		}
		if result := domain.TallyPlaceVotes(appt.ID, votes); result != nil {
			if leader, ok := result.Leader(); ok {
				name := leader.Place
				place = &name
			}
		}
	}

	return s.appointments.Confirm(ctx, appt.ID, date, place)
}

func validateUserID(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return service.NewValidationError("user_id is required")
	}
	if _, err := uuid.Parse(userID); err != nil {
		return service.NewValidationError("user_id must be a UUID")
	}
	return nil
}
