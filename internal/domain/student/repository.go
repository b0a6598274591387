package student

import (
	"context"
)

// Repository defines the persistence contract for students.
// Implementations live in infrastructure/persistence.
type Repository interface {
	// Create stores a new student.
	// Returns shared.ErrStudentAlreadyExists if the student number is taken.
	Create(ctx context.Context, student *Student) error

	// GetByID returns a student by internal ID.
	// Returns shared.ErrStudentNotFound if absent.
	GetByID(ctx context.Context, id string) (*Student, error)

	// GetByStudentID returns a student by business key (ES### / MS###).
	// Returns shared.ErrStudentNotFound if absent.
	GetByStudentID(ctx context.Context, studentID StudentID) (*Student, error)

	// Update persists the current state of a student.
	// Returns shared.ErrStudentNotFound if absent.
	Update(ctx context.Context, student *Student) error

	// GetByDivision returns all students of a division.
	GetByDivision(ctx context.Context, division Division) ([]*Student, error)

	// FindTopByAttendance returns students of a division with at least
	// minAttendance check-ins.
	FindTopByAttendance(ctx context.Context, division Division, minAttendance int) ([]*Student, error)

	// FindHighAchievers returns students of a division with an average
	// score of at least minScore. The filter is pushed into the query.
	FindHighAchievers(ctx context.Context, division Division, minScore float64) ([]*Student, error)

	// ExistsByStudentID checks existence by business key.
	ExistsByStudentID(ctx context.Context, studentID StudentID) (bool, error)
}
