// Package lecture contains the lecture scheduling and enrollment domain
// model: lectures, their weekly schedules, and student enrollments.
package lecture

import (
	"fmt"
	"strings"
	"time"

	"github.com/aslan-academy/academy-management/internal/domain/shared"
)

// ──────────────────────────────────────────────────────────────────────────────
// VALUE OBJECTS
// ──────────────────────────────────────────────────────────────────────────────

// ClockTime is a time of day without a date, stored as minutes since
// midnight. Schedules carry only a weekday and two clock times; the
// concrete date is derived per week at read time.
type ClockTime int

// NewClockTime builds a ClockTime from hour and minute.
func NewClockTime(hour, minute int) ClockTime {
	return ClockTime(hour*60 + minute)
}

// ParseClockTime parses "HH:MM".
func ParseClockTime(s string) (ClockTime, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, shared.WrapError("lecture", "ParseTime", shared.ErrInvalidFormat, "time must be HH:MM", err)
	}
	return NewClockTime(t.Hour(), t.Minute()), nil
}

// Hour returns the hour component (0-23).
func (c ClockTime) Hour() int { return int(c) / 60 }

// Minute returns the minute component (0-59).
func (c ClockTime) Minute() int { return int(c) % 60 }

// Before reports whether c is earlier in the day than other.
func (c ClockTime) Before(other ClockTime) bool { return c < other }

// On anchors the clock time onto a concrete date in that date's location.
func (c ClockTime) On(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), c.Hour(), c.Minute(), 0, 0, date.Location())
}

// String returns the "HH:MM" representation.
func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

// ──────────────────────────────────────────────────────────────────────────────
// ENUMS
// ──────────────────────────────────────────────────────────────────────────────

// Type distinguishes the kinds of lectures the academy offers.
type Type string

const (
	// TypeAcademy - regular academy class.
	TypeAcademy Type = "ACADEMY"
	// TypeTutoring - one-to-one tutoring.
	TypeTutoring Type = "TUTORING"
	// TypeSpecial - one-off special lecture.
	TypeSpecial Type = "SPECIAL_LECTURE"
)

// IsValid reports whether the lecture type is known.
func (t Type) IsValid() bool {
	return t == TypeAcademy || t == TypeTutoring || t == TypeSpecial
}

// Subject is the taught subject.
type Subject string

const (
	SubjectKorean        Subject = "KOREAN"
	SubjectMath          Subject = "MATH"
	SubjectEnglish       Subject = "ENGLISH"
	SubjectScience       Subject = "SCIENCE"
	SubjectSocial        Subject = "SOCIAL"
	SubjectKoreanHistory Subject = "KOREAN_HISTORY"
)

// IsValid reports whether the subject is known.
func (s Subject) IsValid() bool {
	switch s {
	case SubjectKorean, SubjectMath, SubjectEnglish, SubjectScience, SubjectSocial, SubjectKoreanHistory:
		return true
	default:
		return false
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// ENTITIES
// ──────────────────────────────────────────────────────────────────────────────

// Schedule is one weekly slot of a lecture. It is owned exclusively by its
// lecture: deleting the lecture deletes its schedules.
type Schedule struct {
	// ID - internal unique identifier.
	ID string

	// LectureID - back-reference to the owning lecture.
	LectureID string

	// DayOfWeek - standard weekday the slot occurs on.
	DayOfWeek time.Weekday

	// StartTime / EndTime - time of day only, no date.
	StartTime ClockTime
	EndTime   ClockTime
}

// Valid reports whether the slot's time range is well-formed.
func (s Schedule) Valid() bool {
	return s.StartTime.Before(s.EndTime)
}

// Lecture is a class offered by one teacher, with a set of weekly schedules.
type Lecture struct {
	// ID - internal unique identifier.
	ID string

	// Title - display title.
	Title string

	// Type - academy / tutoring / special lecture.
	Type Type

	// Subject - the taught subject.
	Subject Subject

	// TeacherID - the owning member's ID. Many lectures share one teacher.
	TeacherID string

	// Schedules - weekly slots, exclusively owned by this lecture.
	Schedules []Schedule

	// CreatedAt - record creation time; never updated afterwards.
	CreatedAt time.Time

	// UpdatedAt - last modification time.
	UpdatedAt time.Time
}

// NewLectureParams contains the fields required to create a lecture.
type NewLectureParams struct {
	ID        string
	Title     string
	Type      Type
	Subject   Subject
	TeacherID string
	Schedules []Schedule
}

// NewLecture creates a lecture with its schedules validated and back-linked.
// A schedule whose start is not before its end is rejected.
func NewLecture(params NewLectureParams) (*Lecture, error) {
	if params.ID == "" {
		return nil, shared.NewDomainError("lecture", "Create", shared.ErrEmptyValue, "internal id is required")
	}

	title := strings.TrimSpace(params.Title)
	if title == "" {
		return nil, shared.NewDomainError("lecture", "Create", shared.ErrEmptyValue, "title is required")
	}

	if !params.Type.IsValid() {
		return nil, shared.NewDomainError("lecture", "Create", shared.ErrInvalidInput, "unknown lecture type")
	}

	if !params.Subject.IsValid() {
		return nil, shared.NewDomainError("lecture", "Create", shared.ErrInvalidInput, "unknown subject")
	}

	if params.TeacherID == "" {
		return nil, shared.NewDomainError("lecture", "Create", shared.ErrEmptyValue, "owning teacher is required")
	}

	now := time.Now().UTC()

	l := &Lecture{
		ID:        params.ID,
		Title:     title,
		Type:      params.Type,
		Subject:   params.Subject,
		TeacherID: params.TeacherID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	for _, sch := range params.Schedules {
		if err := l.AddSchedule(sch); err != nil {
			return nil, err
		}
	}

	return l, nil
}

// AddSchedule attaches a weekly slot and sets the back-reference.
func (l *Lecture) AddSchedule(s Schedule) error {
	if !s.Valid() {
		return shared.ErrInvalidSchedule
	}
	s.LectureID = l.ID
	l.Schedules = append(l.Schedules, s)
	return nil
}

// OwnedBy reports whether the given member owns this lecture.
func (l *Lecture) OwnedBy(teacherID string) bool {
	return l.TeacherID == teacherID
}

// String returns a short representation for logging.
func (l *Lecture) String() string {
	return fmt.Sprintf("Lecture{ID: %s, Title: %q, Subject: %s, Slots: %d}",
		l.ID, l.Title, l.Subject, len(l.Schedules))
}

// Enrollment is the join fact that a student is registered in a lecture.
// It is created on enroll and deleted on withdraw; the (lecture, student)
// pair is unique at the storage layer.
type Enrollment struct {
	// ID - internal unique identifier.
	ID string

	// LectureID / StudentID - the joined pair.
	LectureID string
	StudentID string

	// RegisteredAt - when the enrollment was created.
	RegisteredAt time.Time
}
