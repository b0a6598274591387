package lecture

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aslan-academy/academy-management/pkg/timeutil"
)

func TestColorFor(t *testing.T) {
	assert.Equal(t, "#dc3545", ColorFor(SubjectKorean))
	assert.Equal(t, "#28a745", ColorFor(SubjectEnglish))
	assert.Equal(t, "#007bff", ColorFor(SubjectMath))
	assert.Equal(t, "#ffc107", ColorFor(SubjectScience))

	// Subjects without their own color fall back to gray.
	assert.Equal(t, "#6c757d", ColorFor(SubjectSocial))
	assert.Equal(t, "#6c757d", ColorFor(SubjectKoreanHistory))
}

func TestEventsForWeek(t *testing.T) {
	params := validLectureParams()
	params.Schedules = append(params.Schedules, Schedule{
		ID:        "6f0f0b5c-0003-4a1b-8a2a-333333333333",
		DayOfWeek: time.Thursday,
		StartTime: NewClockTime(10, 0),
		EndTime:   NewClockTime(11, 30),
	})

	l, err := NewLecture(params)
	require.NoError(t, err)

	// 2026-08-24 is a Monday.
	monday := timeutil.Date(2026, 8, 24)

	events := l.EventsForWeek(monday)
	require.Len(t, events, 2)

	mon := events[0]
	assert.Equal(t, l.ID, mon.LectureID)
	assert.Equal(t, "Math Basics", mon.Title)
	assert.Equal(t, timeutil.DateTime(2026, 8, 24, 14, 30, 0), mon.Start)
	assert.Equal(t, timeutil.DateTime(2026, 8, 24, 16, 0, 0), mon.End)
	assert.Equal(t, "#007bff", mon.Color)

	thu := events[1]
	assert.Equal(t, timeutil.DateTime(2026, 8, 27, 10, 0, 0), thu.Start)
	assert.Equal(t, timeutil.DateTime(2026, 8, 27, 11, 30, 0), thu.End)
}

func TestEventsForWeek_ShiftsWithTheAnchor(t *testing.T) {
	l, err := NewLecture(validLectureParams())
	require.NoError(t, err)

	thisWeek := l.EventsForWeek(timeutil.Date(2026, 8, 24))
	nextWeek := l.EventsForWeek(timeutil.Date(2026, 8, 31))

	require.Len(t, thisWeek, 1)
	require.Len(t, nextWeek, 1)
	assert.Equal(t, thisWeek[0].Start.AddDate(0, 0, 7), nextWeek[0].Start)
}

func TestEventsForWeek_SundaySlotLandsAtWeekEnd(t *testing.T) {
	params := validLectureParams()
	params.Schedules = []Schedule{{
		ID:        "6f0f0b5c-0004-4a1b-8a2a-444444444444",
		DayOfWeek: time.Sunday,
		StartTime: NewClockTime(9, 0),
		EndTime:   NewClockTime(10, 0),
	}}

	l, err := NewLecture(params)
	require.NoError(t, err)

	events := l.EventsForWeek(timeutil.Date(2026, 8, 24))
	require.Len(t, events, 1)

	// A Monday-anchored week runs through the following Sunday.
	assert.Equal(t, timeutil.DateTime(2026, 8, 30, 9, 0, 0), events[0].Start)
}
