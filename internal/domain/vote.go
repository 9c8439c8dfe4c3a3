package domain

import (
	"time"

	"github.com/uptrace/bun"
)

// MaxPlaceCandidates bounds the place candidates proposed for one appointment.
const MaxPlaceCandidates = 5

type TimeVote struct {
	bun.BaseModel `bun:"table:time_votes,alias:tv"`

	ID            int64     `bun:"id,pk,autoincrement"`
	AppointmentID int64     `bun:"appointment_id,notnull"`
	CandidateTime time.Time `bun:"candidate_time,notnull"`

	Selections []TimeVoteSelection `bun:"rel:has-many,join:id=time_vote_id"`
}

type TimeVoteSelection struct {
	bun.BaseModel `bun:"table:time_vote_selections"`

	TimeVoteID int64     `bun:"time_vote_id,pk"`
	UserID     string    `bun:"user_id,pk,type:uuid"`
	CreatedAt  time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

type PlaceVote struct {
	bun.BaseModel `bun:"table:place_votes,alias:pv"`

	ID            int64  `bun:"id,pk,autoincrement"`
	AppointmentID int64  `bun:"appointment_id,notnull"`
	Place         string `bun:"place,notnull"`
	PlaceURL      string `bun:"place_url"`

	Selections []PlaceVoteSelection `bun:"rel:has-many,join:id=place_vote_id"`
}

type PlaceVoteSelection struct {
	bun.BaseModel `bun:"table:place_vote_selections"`

	PlaceVoteID int64     `bun:"place_vote_id,pk"`
	UserID      string    `bun:"user_id,pk,type:uuid"`
	CreatedAt   time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

type TimeSlotTally struct {
	TimeVoteID    int64
	CandidateTime time.Time
	Count         int
	VoterIDs      []string
}

type TimeVoteResult struct {
	AppointmentID int64
	StartDate     *time.Time
	EndDate       *time.Time
	Slots         []TimeSlotTally
	VoterCount    int
}

// Leader returns the slot with the most votes, earliest candidate first on a
// tie. ok is false when nobody has voted.
func (r TimeVoteResult) Leader() (TimeSlotTally, bool) {
	var (
		best  TimeSlotTally
		found bool
	)
	for _, s := range r.Slots {
		if s.Count == 0 {
			continue
		}
		if !found || s.Count > best.Count || (s.Count == best.Count && s.CandidateTime.Before(best.CandidateTime)) {
			best = s
			found = true
		}
	}
	return best, found
}

type PlaceTally struct {
	PlaceVoteID int64
	Place       string
	PlaceURL    string
	Count       int
	VoterIDs    []string
}

type PlaceVoteResult struct {
	AppointmentID int64
	Places        []PlaceTally
	VoterCount    int
}

// Leader returns the place with the most votes; on a tie the first proposed
// place wins.
func (r PlaceVoteResult) Leader() (PlaceTally, bool) {
	var (
		best  PlaceTally
		found bool
	)
	for _, p := range r.Places {
		if p.Count == 0 {
			continue
		}
		if !found || p.Count > best.Count {
			best = p
			found = true
		}
	}
	return best, found
}

// TallyTimeVotes keeps candidate order. It returns nil when there are no
// candidates.
func TallyTimeVotes(appt Appointment, votes []TimeVote) *TimeVoteResult {
	if len(votes) == 0 {
		return nil
	}

	voters := make(map[string]struct{})
	slots := make([]TimeSlotTally, 0, len(votes))
	for _, v := range votes {
		ids := make([]string, 0, len(v.Selections))
		for _, sel := range v.Selections {
			ids = append(ids, sel.UserID)
			voters[sel.UserID] = struct{}{}
		}
		slots = append(slots, TimeSlotTally{
			TimeVoteID:    v.ID,
			CandidateTime: v.CandidateTime.UTC(),
			Count:         len(ids),
			VoterIDs:      ids,
		})
	}

	return &TimeVoteResult{
		AppointmentID: appt.ID,
		StartDate:     appt.StartDate,
		EndDate:       appt.EndDate,
		Slots:         slots,
		VoterCount:    len(voters),
	}
}

func TallyPlaceVotes(appointmentID int64, votes []PlaceVote) *PlaceVoteResult {
	if len(votes) == 0 {
		return nil
	}

	voters := make(map[string]struct{})
	places := make([]PlaceTally, 0, len(votes))
	for _, v := range votes {
		ids := make([]string, 0, len(v.Selections))
		for _, sel := range v.Selections {
			ids = append(ids, sel.UserID)
			voters[sel.UserID] = struct{}{}
		}
		places = append(places, PlaceTally{
			PlaceVoteID: v.ID,
			Place:       v.Place,
			PlaceURL:    v.PlaceURL,
			Count:       len(ids),
			VoterIDs:    ids,
		})
	}

	return &PlaceVoteResult{
		AppointmentID: appointmentID,
		Places:        places,
		VoterCount:    len(voters),
	}
}
