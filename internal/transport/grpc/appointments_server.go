package grpc

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"yaksok/backend/internal/auth"
	"yaksok/backend/internal/domain"
	"yaksok/backend/internal/service"
	"yaksok/backend/internal/store"
)

type AppointmentsServer struct {
	appointments appointmentsService
	votes        votesService
	log          *slog.Logger
	now          func() time.Time
}

type appointmentsService interface {
	Cards(ctx context.Context, userID string) ([]domain.AppointmentCard, error)
	Delete(ctx context.Context, appointmentID int64, requesterID string) (bool, error)
}

type votesService interface {
	TimeVote(ctx context.Context, appointmentID int64) (*domain.TimeVoteResult, error)
}

func NewAppointmentsServer(appts appointmentsService, votes votesService, log *slog.Logger) *AppointmentsServer {
	if log == nil {
		log = slog.Default()
	}
	return &AppointmentsServer{
		appointments: appts,
		votes:        votes,
		log:          log.With(slog.String("component", "grpc.appointments")),
		now:          time.Now,
	}
}

func (s *AppointmentsServer) GetTimeVote(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error) {
	log := s.log.With(slog.String("rpc", "GetTimeVote"))

	if req == nil || req.GetValue() <= 0 {
		log.Warn("invalid request", slog.String("reason", "bad_appointment_id"))
		return nil, status.Error(codes.InvalidArgument, "appointment id must be positive")
	}

	result, err := s.votes.TimeVote(ctx, req.GetValue())
	if err != nil {
		return nil, s.statusError(log, err, slog.Int64("appointment_id", req.GetValue()))
	}
	if result == nil {
		log.Info("time vote not found", slog.Int64("appointment_id", req.GetValue()))
		return nil, status.Error(codes.NotFound, "appointment not found")
	}

	out, err := timeVoteStruct(result)
	if err != nil {
		log.Error("time vote encode failed", slog.Any("err", err))
		return nil, status.Error(codes.Internal, "internal error")
	}
	return out, nil
}

func (s *AppointmentsServer) ListAppointmentCards(ctx context.Context, req *wrapperspb.StringValue) (*structpb.ListValue, error) {
	log := s.log.With(slog.String("rpc", "ListAppointmentCards"))

	userID := req.GetValue()
	subject := auth.SubjectFromContext(ctx)
	if userID == "" {
		userID = subject
	}
	if userID == "" {
		log.Warn("invalid request", slog.String("reason", "missing_user_id"))
		return nil, status.Error(codes.InvalidArgument, "user id is required")
	}
	if subject != "" && userID != subject {
		log.Warn("user mismatch", slog.String("subject", subject))
		return nil, status.Error(codes.PermissionDenied, "user id does not match the authenticated user")
	}

	cards, err := s.appointments.Cards(ctx, userID)
	if err != nil {
		return nil, s.statusError(log, err, slog.String("user_id", userID))
	}
	if len(cards) == 0 {
		log.Info("no appointments", slog.String("user_id", userID))
		return nil, status.Error(codes.NotFound, "no appointments found")
	}

	now := s.now()
	values := make([]*structpb.Value, 0, len(cards))
	for _, c := range cards {
		st, err := structpb.NewStruct(cardFields(c, now))
		if err != nil {
			log.Error("card encode failed", slog.Any("err", err))
			return nil, status.Error(codes.Internal, "internal error")
		}
		values = append(values, structpb.NewStructValue(st))
	}

	log.Debug("appointment cards listed", slog.String("user_id", userID), slog.Int("count", len(values)))
	return &structpb.ListValue{Values: values}, nil
}

func (s *AppointmentsServer) DeleteAppointment(ctx context.Context, req *wrapperspb.Int64Value) (*wrapperspb.BoolValue, error) {
	log := s.log.With(slog.String("rpc", "DeleteAppointment"))

	if req == nil || req.GetValue() <= 0 {
		log.Warn("invalid request", slog.String("reason", "bad_appointment_id"))
		return nil, status.Error(codes.InvalidArgument, "appointment id must be positive")
	}

	deleted, err := s.appointments.Delete(ctx, req.GetValue(), auth.SubjectFromContext(ctx))
	if err != nil {
		return nil, s.statusError(log, err, slog.Int64("appointment_id", req.GetValue()))
	}

	log.Info("appointment delete", slog.Int64("appointment_id", req.GetValue()), slog.Bool("deleted", deleted))
	return wrapperspb.Bool(deleted), nil
}

func (s *AppointmentsServer) statusError(log *slog.Logger, err error, attr slog.Attr) error {
	var vErr *service.ValidationError
	switch {
	case errors.As(err, &vErr):
		log.Warn("invalid request", slog.Any("err", err), attr)
		return status.Error(codes.InvalidArgument, vErr.Error())
	case errors.Is(err, store.ErrNotFound):
		log.Info("not found", attr)
		return status.Error(codes.NotFound, "not found")
	case errors.Is(err, store.ErrForbidden):
		log.Info("forbidden", slog.Any("err", err), attr)
		return status.Error(codes.PermissionDenied, "permission denied")
	default:
		log.Error("request failed", slog.Any("err", err), attr)
		return status.Error(codes.Internal, "internal error")
	}
}

func timeVoteStruct(r *domain.TimeVoteResult) (*structpb.Struct, error) {
	slots := make([]any, 0, len(r.Slots))
	for _, sl := range r.Slots {
		slots = append(slots, map[string]any{
			"timeVoteId":    sl.TimeVoteID,
			"candidateTime": sl.CandidateTime.Format(time.RFC3339),
			"count":         sl.Count,
			"voterIds":      stringsToAny(sl.VoterIDs),
		})
	}
	return structpb.NewStruct(map[string]any{
		"appointmentId": r.AppointmentID,
		"startDate":     optionalTime(r.StartDate),
		"endDate":       optionalTime(r.EndDate),
		"voterCount":    r.VoterCount,
		"slots":         slots,
	})
}

func cardFields(c domain.AppointmentCard, now time.Time) map[string]any {
	var place any
	if c.ConfirmPlace != nil {
		place = *c.ConfirmPlace
	}
	return map[string]any{
		"appointmentId": c.AppointmentID,
		"title":         c.Title,
		"status":        string(c.Status),
		"isCreator":     c.IsCreator,
		"startDate":     optionalTime(c.StartDate),
		"endDate":       optionalTime(c.EndDate),
		"confirmDate":   optionalTime(c.ConfirmDate),
		"confirmPlace":  place,
		"countdown":     domain.Countdown(c.ConfirmDate, now),
	}
}

func optionalTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

func stringsToAny(in []string) []any {
	out := make([]any, 0, len(in))
	for _, s := range in {
		out = append(out, s)
	}
	return out
}
