package domain

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// AppointmentCard is the list view of an appointment from one user's point of
// view.
type AppointmentCard struct {
	AppointmentID int64
	Title         string
	Status        AppointmentStatus
	IsCreator     bool
	StartDate     *time.Time
	EndDate       *time.Time
	ConfirmDate   *time.Time
	ConfirmPlace  *string
}

func NewAppointmentCard(a Appointment, userID string) AppointmentCard {
	return AppointmentCard{
		AppointmentID: a.ID,
		Title:         a.Title,
		Status:        a.Status(),
		IsCreator:     a.IsCreator(userID),
		StartDate:     a.StartDate,
		EndDate:       a.EndDate,
		ConfirmDate:   a.ConfirmDate,
		ConfirmPlace:  a.ConfirmPlace,
	}
}

const (
	CountdownDay   = "D-Day"
	CountdownEnded = "ended"

	countdownMarker = "D-"
)

// Countdown renders the time left until a confirmed date: "D-3", "D-Day" on
// the day itself, "ended" once the instant has passed, and "" when nothing is
// confirmed yet. Days are counted in now's location.
func Countdown(confirm *time.Time, now time.Time) string {
	if confirm == nil {
		return ""
	}
	if confirm.Before(now) {
		return CountdownEnded
	}

	loc := now.Location()
	c := confirm.In(loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	day := time.Date(c.Year(), c.Month(), c.Day(), 0, 0, 0, 0, loc)

	days := int(math.Round(day.Sub(today).Hours() / 24))
	if days <= 0 {
		return CountdownDay
	}
	return countdownMarker + strconv.Itoa(days)
}

type FilterOption string

const (
	FilterAll         FilterOption = "all"
	FilterCreatorOnly FilterOption = "creator-only"
	FilterUpcoming    FilterOption = "upcoming"
	FilterEnded       FilterOption = "ended"
)

func ParseFilterOption(s string) (FilterOption, bool) {
	switch opt := FilterOption(strings.ToLower(strings.TrimSpace(s))); opt {
	case "":
		return FilterAll, true
	case FilterAll, FilterCreatorOnly, FilterUpcoming, FilterEnded:
		return opt, true
	default:
		return "", false
	}
}

// FilterCards returns the cards matching the option and containing query in
// their title, ignoring case. Input order is kept and the input slice is not
// modified.
func FilterCards(cards []AppointmentCard, option FilterOption, query string, now time.Time) []AppointmentCard {
	needle := strings.ToLower(query)
	out := make([]AppointmentCard, 0, len(cards))
	for _, c := range cards {
		if !matchesOption(c, option, now) {
			continue
		}
		if !strings.Contains(strings.ToLower(c.Title), needle) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func matchesOption(c AppointmentCard, option FilterOption, now time.Time) bool {
	switch option {
	case FilterCreatorOnly:
		return c.IsCreator
	case FilterUpcoming:
		return strings.Contains(Countdown(c.ConfirmDate, now), countdownMarker)
	case FilterEnded:
		return Countdown(c.ConfirmDate, now) == CountdownEnded
	default:
		return true
	}
}

// FilterByStatus splits the list the way the voting/confirmed tabs do. An
// empty status keeps everything.
func FilterByStatus(cards []AppointmentCard, status AppointmentStatus) []AppointmentCard {
	if status == "" {
		return cards
	}
	out := make([]AppointmentCard, 0, len(cards))
	for _, c := range cards {
		if c.Status == status {
			out = append(out, c)
		}
	}
	return out
}
