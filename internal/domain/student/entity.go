// Package student contains the student domain model of the academy.
// This is core business logic - there are no external dependencies here.
package student

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/aslan-academy/academy-management/internal/domain/shared"
)

// ──────────────────────────────────────────────────────────────────────────────
// VALUE OBJECTS
// ──────────────────────────────────────────────────────────────────────────────

// studentIDPattern matches the academy student number format:
// ES001-ES999 for elementary, MS001-MS999 for middle school.
var studentIDPattern = regexp.MustCompile(`^(ES|MS)\d{3}$`)

// StudentID is the business key assigned to a student by the academy.
type StudentID string

// IsValid reports whether the student number matches the academy format.
func (id StudentID) IsValid() bool {
	return studentIDPattern.MatchString(string(id))
}

// String returns the string representation of the student number.
func (id StudentID) String() string {
	return string(id)
}

// Phone is a contact number. Empty means not provided.
type Phone string

// IsSet reports whether a contact number was provided.
func (p Phone) IsSet() bool {
	return strings.TrimSpace(string(p)) != ""
}

// String returns the string representation of the phone number.
func (p Phone) String() string {
	return string(p)
}

// ──────────────────────────────────────────────────────────────────────────────
// ENUMS
// ──────────────────────────────────────────────────────────────────────────────

// Division is the top-level student cohort. It is fixed at registration
// and drives validation, notification and reporting variants.
type Division string

const (
	// DivisionElementary - elementary school division.
	DivisionElementary Division = "ELEMENTARY"
	// DivisionMiddle - middle school division.
	DivisionMiddle Division = "MIDDLE"
)

// IsValid reports whether the division is one of the known cohorts.
func (d Division) IsValid() bool {
	return d == DivisionElementary || d == DivisionMiddle
}

// String returns the string representation of the division.
func (d Division) String() string {
	return string(d)
}

// Grade is the school year of a student.
type Grade string

const (
	GradeFirst  Grade = "FIRST"
	GradeSecond Grade = "SECOND"
	GradeThird  Grade = "THIRD"
	GradeFourth Grade = "FOURTH"
	GradeFifth  Grade = "FIFTH"
	GradeSixth  Grade = "SIXTH"
)

// IsValid reports whether the grade is a known school year.
func (g Grade) IsValid() bool {
	switch g {
	case GradeFirst, GradeSecond, GradeThird, GradeFourth, GradeFifth, GradeSixth:
		return true
	default:
		return false
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// MAIN ENTITY: STUDENT
// ──────────────────────────────────────────────────────────────────────────────

// Student is a registered academy student.
type Student struct {
	// ID - internal unique identifier (UUID in string form).
	ID string

	// StudentID - academy-wide unique business key (ES### / MS###).
	StudentID StudentID

	// Name - student's name.
	Name string

	// BirthDate - date of birth (date only).
	BirthDate time.Time

	// Phone - the student's own contact number (optional).
	Phone Phone

	// ParentPhone - a parent's contact number (optional).
	ParentPhone Phone

	// Grade - school year.
	Grade Grade

	// Division - cohort; immutable after registration.
	Division Division

	// AttendanceCount - running number of check-ins, incremented per attendance.
	AttendanceCount int

	// AverageScore - running weighted mean of recorded scores, 2-decimal rounded.
	AverageScore float64

	// SpecialNotes - free-text notes kept by the academy.
	SpecialNotes string

	// CreatedAt - record creation time; never updated afterwards.
	CreatedAt time.Time

	// UpdatedAt - last modification time.
	UpdatedAt time.Time
}

// ──────────────────────────────────────────────────────────────────────────────
// FACTORY & VALIDATION
// ──────────────────────────────────────────────────────────────────────────────

// NewStudentParams contains the fields required to register a student.
type NewStudentParams struct {
	ID           string
	StudentID    StudentID
	Name         string
	BirthDate    time.Time
	Phone        Phone
	ParentPhone  Phone
	Grade        Grade
	Division     Division
	SpecialNotes string
}

// NewStudent creates a student with all fields validated. The division
// decides which contact number is mandatory: elementary students need a
// parent number, middle school students need their own.
func NewStudent(params NewStudentParams) (*Student, error) {
	if params.ID == "" {
		return nil, shared.NewDomainError("student", "Register", shared.ErrEmptyValue, "internal id is required")
	}

	if !params.StudentID.IsValid() {
		return nil, shared.ErrInvalidStudentID
	}

	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, shared.NewDomainError("student", "Register", shared.ErrEmptyValue, "name is required")
	}

	if params.BirthDate.IsZero() {
		return nil, shared.NewDomainError("student", "Register", shared.ErrEmptyValue, "birth date is required")
	}

	if !params.Grade.IsValid() {
		return nil, shared.NewDomainError("student", "Register", shared.ErrInvalidInput, "unknown grade")
	}

	if !params.Division.IsValid() {
		return nil, shared.NewDomainError("student", "Register", shared.ErrInvalidInput, "unknown division")
	}

	switch params.Division {
	case DivisionElementary:
		if !params.ParentPhone.IsSet() {
			return nil, shared.ErrParentPhoneRequired
		}
	case DivisionMiddle:
		if !params.Phone.IsSet() {
			return nil, shared.ErrStudentPhoneRequired
		}
	}

	now := time.Now().UTC()

	return &Student{
		ID:              params.ID,
		StudentID:       params.StudentID,
		Name:            name,
		BirthDate:       params.BirthDate,
		Phone:           params.Phone,
		ParentPhone:     params.ParentPhone,
		Grade:           params.Grade,
		Division:        params.Division,
		AttendanceCount: 0,
		AverageScore:    0.0,
		SpecialNotes:    params.SpecialNotes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// DOMAIN METHODS (Business Logic)
// ──────────────────────────────────────────────────────────────────────────────

// UpdateDetails applies a partial update of the mutable fields. Division and
// student number are business invariants and stay untouched.
type UpdateDetails struct {
	Name         string
	Phone        Phone
	ParentPhone  Phone
	Grade        Grade
	SpecialNotes string
}

// ApplyUpdate mutates the student's editable fields.
func (s *Student) ApplyUpdate(upd UpdateDetails) error {
	name := strings.TrimSpace(upd.Name)
	if name == "" {
		return shared.NewDomainError("student", "Update", shared.ErrEmptyValue, "name is required")
	}
	if !upd.Grade.IsValid() {
		return shared.NewDomainError("student", "Update", shared.ErrInvalidInput, "unknown grade")
	}

	s.Name = name
	s.Phone = upd.Phone
	s.ParentPhone = upd.ParentPhone
	s.Grade = upd.Grade
	s.SpecialNotes = upd.SpecialNotes
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// CheckIn records one attendance and returns the new total.
func (s *Student) CheckIn() int {
	s.AttendanceCount++
	s.UpdatedAt = time.Now().UTC()
	return s.AttendanceCount
}

// RecordScore folds a new score into the running average. The attendance
// count stands in for the number of samples, so the weight of the new
// score depends on how often the student has checked in.
func (s *Student) RecordScore(score float64) (float64, error) {
	if score < 0 || score > 100 {
		return 0, shared.ErrInvalidScore
	}

	count := s.AttendanceCount

	newAvg := ((s.AverageScore * float64(count)) + score) / float64(count+1)
	s.AverageScore = math.Round(newAvg*100) / 100
	s.UpdatedAt = time.Now().UTC()
	return s.AverageScore, nil
}

// LetterGrade converts an average score into the academy's letter scale.
func LetterGrade(average float64) string {
	switch {
	case average >= 90:
		return "A"
	case average >= 80:
		return "B"
	case average >= 70:
		return "C"
	case average >= 60:
		return "D"
	default:
		return "F"
	}
}

// String returns a short representation for logging.
func (s *Student) String() string {
	return fmt.Sprintf(
		"Student{ID: %s, No: %s, Division: %s, Attendance: %d, Avg: %.2f}",
		s.ID, s.StudentID, s.Division, s.AttendanceCount, s.AverageScore,
	)
}

// Clone creates a copy of the student.
func (s *Student) Clone() *Student {
	if s == nil {
		return nil
	}
	clone := *s
	return &clone
}
