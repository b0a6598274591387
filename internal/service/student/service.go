// Package student implements the division-variant student policy engine.
// Exactly one variant (elementary or middle school) is active per
// deployment; the choice is made once at startup from configuration, not
// per request.
package student

import (
	"context"
	"time"

	"github.com/aslan-academy/academy-management/internal/domain/notification"
	"github.com/aslan-academy/academy-management/internal/domain/shared"
	"github.com/aslan-academy/academy-management/internal/domain/student"
	"github.com/aslan-academy/academy-management/pkg/logger"
)

// Request carries the plain input values for registering or updating a
// student. The division is not part of it: registration pins the active
// variant's division and updates never touch it.
type Request struct {
	StudentID    student.StudentID
	Name         string
	BirthDate    time.Time
	Phone        student.Phone
	ParentPhone  student.Phone
	Grade        student.Grade
	SpecialNotes string
}

// TopStudentsCache is the read-side cache for the division top-student
// list. *redis.Cache satisfies it; a nil cache disables caching.
type TopStudentsCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// topStudentsCacheTTL bounds how stale a cached top-student list may get.
const topStudentsCacheTTL = 5 * time.Minute

// Management is the student policy engine contract. Both division
// variants implement it; decorators in internal/middleware wrap it.
type Management interface {
	// Register validates and stores a new student, then sends the
	// division-specific welcome notification.
	Register(ctx context.Context, req Request) (*student.Student, error)

	// Get returns a student by academy student number.
	Get(ctx context.Context, studentID student.StudentID) (*student.Student, error)

	// Update applies a partial update of the mutable fields. The division
	// and student number never change.
	Update(ctx context.Context, studentID student.StudentID, req Request) (*student.Student, error)

	// CheckAttendance records one check-in and sends the division-specific
	// attendance notifications.
	CheckAttendance(ctx context.Context, studentID student.StudentID) error

	// UpdateScore folds a score into the running average and sends the
	// division-specific score notifications.
	UpdateScore(ctx context.Context, studentID student.StudentID, score float64) error

	// TopStudents returns the division's outstanding students by the
	// division-specific criterion.
	TopStudents(ctx context.Context) ([]*student.Student, error)

	// DivisionType returns a fixed descriptive label for the active variant.
	DivisionType() string
}

// ForDivision selects the policy engine variant for the configured
// division. This is the only place the variant choice is made. cache may
// be nil.
func ForDivision(division student.Division, repo student.Repository, notifier notification.Notifier, cache TopStudentsCache, log *logger.Logger) (Management, error) {
	switch division {
	case student.DivisionElementary:
		return NewElementaryService(repo, notifier, cache, log), nil
	case student.DivisionMiddle:
		return NewMiddleService(repo, notifier, cache, log), nil
	default:
		return nil, shared.NewDomainError("student", "Configure", shared.ErrInvalidInput, "unknown division: "+division.String())
	}
}
