package rest

import (
	"time"

	"yaksok/backend/internal/domain"
)

type appointmentResponse struct {
	ID           int64      `json:"id"`
	RoomCode     int64      `json:"roomCode"`
	Title        string     `json:"title"`
	CreatorID    string     `json:"creatorId"`
	Status       string     `json:"status"`
	StartDate    *time.Time `json:"startDate"`
	EndDate      *time.Time `json:"endDate"`
	ConfirmDate  *time.Time `json:"confirmDate"`
	ConfirmPlace *string    `json:"confirmPlace"`
	CreatedAt    time.Time  `json:"createdAt"`
}

func toAppointmentResponse(a domain.Appointment) appointmentResponse {
	return appointmentResponse{
		ID:           a.ID,
		RoomCode:     a.ID,
		Title:        a.Title,
		CreatorID:    a.CreatorID,
		Status:       string(a.Status()),
		StartDate:    a.StartDate,
		EndDate:      a.EndDate,
		ConfirmDate:  a.ConfirmDate,
		ConfirmPlace: a.ConfirmPlace,
		CreatedAt:    a.CreatedAt,
	}
}

type cardResponse struct {
	AppointmentID int64      `json:"appointmentId"`
	Title         string     `json:"title"`
	Status        string     `json:"status"`
	IsCreator     bool       `json:"isCreator"`
	StartDate     *time.Time `json:"startDate"`
	EndDate       *time.Time `json:"endDate"`
	ConfirmDate   *time.Time `json:"confirmDate"`
	ConfirmPlace  *string    `json:"confirmPlace"`
	Countdown     string     `json:"countdown,omitempty"`
}

func toCardResponses(cards []domain.AppointmentCard, now time.Time) []cardResponse {
	out := make([]cardResponse, 0, len(cards))
	for _, c := range cards {
		out = append(out, cardResponse{
			AppointmentID: c.AppointmentID,
			Title:         c.Title,
			Status:        string(c.Status),
			IsCreator:     c.IsCreator,
			StartDate:     c.StartDate,
			EndDate:       c.EndDate,
			ConfirmDate:   c.ConfirmDate,
			ConfirmPlace:  c.ConfirmPlace,
			Countdown:     domain.Countdown(c.ConfirmDate, now),
		})
	}
	return out
}

type timeSlotResponse struct {
	TimeVoteID    int64     `json:"timeVoteId"`
	CandidateTime time.Time `json:"candidateTime"`
	Count         int       `json:"count"`
	VoterIDs      []string  `json:"voterIds"`
}

type timeVoteResponse struct {
	AppointmentID int64              `json:"appointmentId"`
	StartDate     *time.Time         `json:"startDate"`
	EndDate       *time.Time         `json:"endDate"`
	VoterCount    int                `json:"voterCount"`
	Slots         []timeSlotResponse `json:"slots"`
}

func toTimeVoteResponse(r *domain.TimeVoteResult) timeVoteResponse {
	slots := make([]timeSlotResponse, 0, len(r.Slots))
	for _, s := range r.Slots {
		slots = append(slots, timeSlotResponse{
			TimeVoteID:    s.TimeVoteID,
			CandidateTime: s.CandidateTime,
			Count:         s.Count,
			VoterIDs:      s.VoterIDs,
		})
	}
	return timeVoteResponse{
		AppointmentID: r.AppointmentID,
		StartDate:     r.StartDate,
		EndDate:       r.EndDate,
		VoterCount:    r.VoterCount,
		Slots:         slots,
	}
}

type placeResponse struct {
	PlaceVoteID int64    `json:"placeVoteId"`
	Place       string   `json:"place"`
	PlaceURL    string   `json:"placeUrl,omitempty"`
	Count       int      `json:"count"`
	VoterIDs    []string `json:"voterIds"`
}

type placeVoteResponse struct {
	AppointmentID int64           `json:"appointmentId"`
	VoterCount    int             `json:"voterCount"`
	Places        []placeResponse `json:"places"`
}

func toPlaceVoteResponse(r *domain.PlaceVoteResult) placeVoteResponse {
	places := make([]placeResponse, 0, len(r.Places))
	for _, p := range r.Places {
		places = append(places, placeResponse{
			PlaceVoteID: p.PlaceVoteID,
			Place:       p.Place,
			PlaceURL:    p.PlaceURL,
			Count:       p.Count,
			VoterIDs:    p.VoterIDs,
		})
	}
	return placeVoteResponse{
		AppointmentID: r.AppointmentID,
		VoterCount:    r.VoterCount,
		Places:        places,
	}
}

type placeRequest struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type createAppointmentRequest struct {
	UserID         string         `json:"userId"`
	Title          string         `json:"title"`
	StartDate      *time.Time     `json:"startDate"`
	EndDate        *time.Time     `json:"endDate"`
	CandidateTimes []time.Time    `json:"candidateTimes"`
	Places         []placeRequest `json:"places"`
}

type joinRequest struct {
	UserID   string `json:"userId"`
	RoomCode int64  `json:"roomCode"`
}

type joinResponse struct {
	AppointmentID int64  `json:"appointmentId"`
	Redirect      string `json:"redirect"`
}

type confirmRequest struct {
	ConfirmDate  *time.Time `json:"confirmDate"`
	ConfirmPlace *string    `json:"confirmPlace"`
}

type castVoteRequest struct {
	UserID string  `json:"userId"`
	IDs    []int64 `json:"ids"`
}
