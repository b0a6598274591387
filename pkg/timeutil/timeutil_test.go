package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestToSeoul(t *testing.T) {
	utc := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	local := ToSeoul(utc)

	assert.Equal(t, 9, local.Hour())
	assert.Equal(t, 24, local.Day())
	assert.True(t, local.Equal(utc))
}

func TestStartOfWeek(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{"monday stays", DateTime(2026, 8, 24, 15, 30, 0), Date(2026, 8, 24)},
		{"wednesday rewinds", DateTime(2026, 8, 26, 12, 0, 0), Date(2026, 8, 24)},
		{"sunday belongs to previous monday", DateTime(2026, 8, 30, 23, 59, 59), Date(2026, 8, 24)},
		{"next monday starts a new week", DateTime(2026, 8, 31, 0, 0, 0), Date(2026, 8, 31)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StartOfWeek(tt.in)
			assert.True(t, got.Equal(tt.want), "got %v, want %v", got, tt.want)
			assert.Equal(t, time.Monday, got.Weekday())
		})
	}
}

func TestEndOfWeek(t *testing.T) {
	end := EndOfWeek(DateTime(2026, 8, 26, 12, 0, 0))
	assert.Equal(t, time.Sunday, end.Weekday())
	assert.Equal(t, 30, end.Day())
	assert.Equal(t, 23, end.Hour())
}

func TestAfterClock(t *testing.T) {
	assert.False(t, AfterClock(DateTime(2026, 8, 24, 8, 59, 59), 9, 0))
	assert.False(t, AfterClock(DateTime(2026, 8, 24, 9, 0, 0), 9, 0))
	assert.True(t, AfterClock(DateTime(2026, 8, 24, 9, 0, 1), 9, 0))

	// A UTC instant is judged by its Seoul wall clock.
	utc := time.Date(2026, 8, 24, 1, 0, 1, 0, time.UTC) // 10:00:01 Seoul
	assert.True(t, AfterClock(utc, 9, 0))
}

func TestWeekKey(t *testing.T) {
	assert.Equal(t, "2026-08-24", WeekKey(DateTime(2026, 8, 26, 12, 0, 0)))
	assert.Equal(t, "2026-08-24", WeekKey(DateTime(2026, 8, 30, 23, 0, 0)))
	assert.Equal(t, "2026-08-31", WeekKey(DateTime(2026, 8, 31, 0, 0, 0)))
}

func TestStartOfDay(t *testing.T) {
	start := StartOfDay(DateTime(2026, 8, 24, 15, 30, 45))
	assert.True(t, start.Equal(Date(2026, 8, 24)))
}
