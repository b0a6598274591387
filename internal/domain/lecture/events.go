package lecture

import (
	"time"
)

// Event is a calendar event derived from one schedule slot, anchored to a
// concrete week. Events are never persisted - they are recomputed on read,
// so the same lecture projects onto different dates every week.
type Event struct {
	// LectureID - the source lecture.
	LectureID string `json:"lectureId"`

	// Title - the lecture title.
	Title string `json:"title"`

	// Start / End - absolute timestamps within the anchor week.
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`

	// Color - display color derived from the subject.
	Color string `json:"color"`
}

// Subject display palette.
const (
	colorKorean  = "#dc3545" // red
	colorEnglish = "#28a745" // green
	colorMath    = "#007bff" // blue
	colorScience = "#ffc107" // yellow
	colorDefault = "#6c757d" // gray
)

// ColorFor returns the display color for a subject.
func ColorFor(subject Subject) string {
	switch subject {
	case SubjectKorean:
		return colorKorean
	case SubjectEnglish:
		return colorEnglish
	case SubjectMath:
		return colorMath
	case SubjectScience:
		return colorScience
	default:
		return colorDefault
	}
}

// EventsForWeek projects the lecture's schedules onto the week starting at
// monday (which must be a Monday, normally timeutil.StartOfWeek of "now").
// Each slot lands on the next occurrence of its weekday on or after monday,
// combined with the slot's start and end clock times.
func (l *Lecture) EventsForWeek(monday time.Time) []Event {
	events := make([]Event, 0, len(l.Schedules))

	for _, sch := range l.Schedules {
		date := nextOrSameWeekday(monday, sch.DayOfWeek)

		events = append(events, Event{
			LectureID: l.ID,
			Title:     l.Title,
			Start:     sch.StartTime.On(date),
			End:       sch.EndTime.On(date),
			Color:     ColorFor(l.Subject),
		})
	}

	return events
}

// nextOrSameWeekday returns the first date on or after from that falls on
// the given weekday.
func nextOrSameWeekday(from time.Time, day time.Weekday) time.Time {
	diff := (int(day) - int(from.Weekday()) + 7) % 7
	return from.AddDate(0, 0, diff)
}
