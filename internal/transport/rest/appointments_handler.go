package rest

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"yaksok/backend/internal/domain"
	"yaksok/backend/internal/service"
	"yaksok/backend/internal/service/appointments"
	"yaksok/backend/internal/service/votes"
	"yaksok/backend/internal/store"
)

const (
	msgAppointmentNotFound = "Appointment not found"
	msgNoAppointments      = "No appointments found"
	msgUserNotFound        = "User not found"
	msgInternal            = "Internal server error"
)

type appointmentsService interface {
	Create(ctx context.Context, in appointments.CreateInput) (domain.Appointment, error)
	Cards(ctx context.Context, userID string) ([]domain.AppointmentCard, error)
	Delete(ctx context.Context, appointmentID int64, requesterID string) (bool, error)
	Join(ctx context.Context, userID string, roomCode int64) (domain.Appointment, error)
	Confirm(ctx context.Context, in appointments.ConfirmInput) (domain.Appointment, error)
}

type votesService interface {
	TimeVote(ctx context.Context, appointmentID int64) (*domain.TimeVoteResult, error)
	PlaceVote(ctx context.Context, appointmentID int64) (*domain.PlaceVoteResult, error)
	CastTimeVote(ctx context.Context, in votes.CastInput) error
	CastPlaceVote(ctx context.Context, in votes.CastInput) error
}

type AppointmentsHandler struct {
	appointments appointmentsService
	votes        votesService
	log          *slog.Logger
	now          func() time.Time
}

func NewAppointmentsHandler(appts appointmentsService, votes votesService, log *slog.Logger) *AppointmentsHandler {
	if log == nil {
		log = slog.Default()
	}
	return &AppointmentsHandler{
		appointments: appts,
		votes:        votes,
		log:          log.With(slog.String("component", "http.appointments")),
		now:          time.Now,
	}
}

// ListCards serves GET /appointments?userId=&filter=&q=&status=.
func (h *AppointmentsHandler) ListCards(c *gin.Context) {
	log := h.routeLog(c, "ListCards")

	userID, err := actingUser(c, c.Query("userId"))
	if err != nil {
		h.fail(c, log, err, msgUserNotFound)
		return
	}
	if userID == "" {
		log.Warn("invalid request", slog.String("reason", "missing_user_id"))
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId is required"})
		return
	}

	option, ok := domain.ParseFilterOption(c.Query("filter"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown filter"})
		return
	}
	var status domain.AppointmentStatus
	switch s := domain.AppointmentStatus(c.Query("status")); s {
	case "", domain.AppointmentStatusVoting, domain.AppointmentStatusConfirmed:
		status = s
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status"})
		return
	}

	cards, err := h.appointments.Cards(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, log, err, msgUserNotFound)
		return
	}
	if len(cards) == 0 {
		log.Info("no appointments", slog.String("user_id", userID))
		c.JSON(http.StatusNotFound, gin.H{"error": msgNoAppointments})
		return
	}

	now := h.now()
	cards = domain.FilterCards(domain.FilterByStatus(cards, status), option, c.Query("q"), now)

	log.Debug("appointments listed", slog.String("user_id", userID), slog.Int("count", len(cards)))
	c.JSON(http.StatusOK, toCardResponses(cards, now))
}

func (h *AppointmentsHandler) Create(c *gin.Context) {
	log := h.routeLog(c, "Create")

	var req createAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("invalid request", slog.String("reason", "bad_json"), slog.Any("err", err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	userID, err := actingUser(c, req.UserID)
	if err != nil {
		h.fail(c, log, err, msgUserNotFound)
		return
	}

	places := make([]appointments.PlaceInput, 0, len(req.Places))
	for _, p := range req.Places {
		places = append(places, appointments.PlaceInput{Name: p.Name, URL: p.URL})
	}

	appt, err := h.appointments.Create(c.Request.Context(), appointments.CreateInput{
		CreatorID:      userID,
		Title:          req.Title,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		CandidateTimes: req.CandidateTimes,
		Places:         places,
	})
	if err != nil {
		h.fail(c, log, err, msgUserNotFound)
		return
	}

	log.Info("appointment created", slog.Int64("appointment_id", appt.ID), slog.String("user_id", appt.CreatorID))
	c.JSON(http.StatusCreated, toAppointmentResponse(appt))
}

func (h *AppointmentsHandler) Delete(c *gin.Context) {
	log := h.routeLog(c, "Delete")

	id, ok := appointmentIDParam(c)
	if !ok {
		return
	}

	deleted, err := h.appointments.Delete(c.Request.Context(), id, c.GetString(ctxUserID))
	if err != nil {
		h.fail(c, log, err, msgAppointmentNotFound)
		return
	}
	if !deleted {
		log.Info("appointment not found", slog.Int64("appointment_id", id))
		c.JSON(http.StatusNotFound, gin.H{"error": msgAppointmentNotFound})
		return
	}

	log.Info("appointment deleted", slog.Int64("appointment_id", id))
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func (h *AppointmentsHandler) Join(c *gin.Context) {
	log := h.routeLog(c, "Join")

	var req joinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("invalid request", slog.String("reason", "bad_json"), slog.Any("err", err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	userID, err := actingUser(c, req.UserID)
	if err != nil {
		h.fail(c, log, err, msgAppointmentNotFound)
		return
	}

	appt, err := h.appointments.Join(c.Request.Context(), userID, req.RoomCode)
	if err != nil {
		h.fail(c, log, err, msgAppointmentNotFound)
		return
	}

	log.Info("member joined", slog.Int64("appointment_id", appt.ID), slog.String("user_id", userID))
	c.JSON(http.StatusOK, joinResponse{
		AppointmentID: appt.ID,
		Redirect:      "/appointments/" + strconv.FormatInt(appt.ID, 10),
	})
}

func (h *AppointmentsHandler) Confirm(c *gin.Context) {
	log := h.routeLog(c, "Confirm")

	id, ok := appointmentIDParam(c)
	if !ok {
		return
	}
	var req confirmRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			log.Warn("invalid request", slog.String("reason", "bad_json"), slog.Any("err", err))
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
	}

	appt, err := h.appointments.Confirm(c.Request.Context(), appointments.ConfirmInput{
		AppointmentID: id,
		RequesterID:   c.GetString(ctxUserID),
		ConfirmDate:   req.ConfirmDate,
		ConfirmPlace:  req.ConfirmPlace,
	})
	if err != nil {
		h.fail(c, log, err, msgAppointmentNotFound)
		return
	}

	log.Info("appointment confirmed", slog.Int64("appointment_id", appt.ID))
	c.JSON(http.StatusOK, toAppointmentResponse(appt))
}

func (h *AppointmentsHandler) TimeVote(c *gin.Context) {
	log := h.routeLog(c, "TimeVote")

	id, ok := appointmentIDParam(c)
	if !ok {
		return
	}

	result, err := h.votes.TimeVote(c.Request.Context(), id)
	if err != nil {
		h.fail(c, log, err, msgAppointmentNotFound)
		return
	}
	if result == nil {
		log.Info("time vote not found", slog.Int64("appointment_id", id))
		c.JSON(http.StatusNotFound, gin.H{"error": msgAppointmentNotFound})
		return
	}
	c.JSON(http.StatusOK, toTimeVoteResponse(result))
}

func (h *AppointmentsHandler) PlaceVote(c *gin.Context) {
	log := h.routeLog(c, "PlaceVote")

	id, ok := appointmentIDParam(c)
	if !ok {
		return
	}

	result, err := h.votes.PlaceVote(c.Request.Context(), id)
	if err != nil {
		h.fail(c, log, err, msgAppointmentNotFound)
		return
	}
	if result == nil {
		log.Info("place vote not found", slog.Int64("appointment_id", id))
		c.JSON(http.StatusNotFound, gin.H{"error": msgAppointmentNotFound})
		return
	}
	c.JSON(http.StatusOK, toPlaceVoteResponse(result))
}

func (h *AppointmentsHandler) CastTimeVote(c *gin.Context) {
	h.castVote(c, "CastTimeVote", h.votes.CastTimeVote)
}

func (h *AppointmentsHandler) CastPlaceVote(c *gin.Context) {
	h.castVote(c, "CastPlaceVote", h.votes.CastPlaceVote)
}

func (h *AppointmentsHandler) castVote(c *gin.Context, route string, cast func(context.Context, votes.CastInput) error) {
	log := h.routeLog(c, route)

	id, ok := appointmentIDParam(c)
	if !ok {
		return
	}
	var req castVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("invalid request", slog.String("reason", "bad_json"), slog.Any("err", err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	userID, err := actingUser(c, req.UserID)
	if err != nil {
		h.fail(c, log, err, msgAppointmentNotFound)
		return
	}

	if err := cast(c.Request.Context(), votes.CastInput{AppointmentID: id, UserID: userID, IDs: req.IDs}); err != nil {
		h.fail(c, log, err, msgAppointmentNotFound)
		return
	}

	log.Info("ballot stored", slog.Int64("appointment_id", id), slog.String("user_id", userID), slog.Int("choices", len(req.IDs)))
	c.Status(http.StatusNoContent)
}

func (h *AppointmentsHandler) routeLog(c *gin.Context, route string) *slog.Logger {
	return h.log.With(slog.String("route", route), slog.String("request_id", c.GetString(ctxRequestID)))
}

// fail maps service errors to responses. Storage failures are logged with
// their cause and answered with a generic body.
func (h *AppointmentsHandler) fail(c *gin.Context, log *slog.Logger, err error, notFoundMsg string) {
	var vErr *service.ValidationError
	switch {
	case errors.As(err, &vErr):
		log.Warn("invalid request", slog.Any("err", err))
		c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Error()})
	case errors.Is(err, errUserMismatch):
		log.Warn("user mismatch", slog.String("subject", c.GetString(ctxUserID)))
		c.JSON(http.StatusForbidden, gin.H{"error": errUserMismatch.Error()})
	case errors.Is(err, store.ErrNotFound):
		log.Info("not found", slog.Any("err", err))
		c.JSON(http.StatusNotFound, gin.H{"error": notFoundMsg})
	case errors.Is(err, appointments.ErrNotCreator):
		log.Info("not the creator", slog.String("subject", c.GetString(ctxUserID)))
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the creator can change this appointment"})
	case errors.Is(err, store.ErrForbidden):
		log.Info("forbidden", slog.Any("err", err))
		c.JSON(http.StatusForbidden, gin.H{"error": "Not a member of this appointment"})
	case errors.Is(err, store.ErrConflict):
		log.Info("conflict", slog.Any("err", err))
		c.JSON(http.StatusConflict, gin.H{"error": "Appointment is already confirmed"})
	default:
		log.Error("request failed", slog.Any("err", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgInternal})
	}
}

func appointmentIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be a positive integer"})
		return 0, false
	}
	return id, true
}
