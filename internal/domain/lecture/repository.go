package lecture

import (
	"context"
)

// Repository defines the persistence contract for lectures and their
// exclusively-owned schedules. Implementations live in
// infrastructure/persistence.
type Repository interface {
	// Create stores a lecture together with all of its schedules as one
	// atomic aggregate write.
	Create(ctx context.Context, lecture *Lecture) error

	// GetByID returns a lecture with its schedules loaded in one query.
	// Returns shared.ErrLectureNotFound if absent.
	GetByID(ctx context.Context, id string) (*Lecture, error)

	// GetAll returns every lecture, schedules included.
	GetAll(ctx context.Context) ([]*Lecture, error)

	// GetByTeacher returns the lectures owned by one teacher, schedules
	// included.
	GetByTeacher(ctx context.Context, teacherID string) ([]*Lecture, error)

	// Delete removes a lecture; its schedules go with it (cascade).
	// Returns shared.ErrLectureNotFound if absent.
	Delete(ctx context.Context, id string) error
}

// EnrollmentRepository defines the persistence contract for the
// lecture-student join rows. The (lecture, student) pair is unique,
// enforced by a composite unique constraint at the storage layer.
type EnrollmentRepository interface {
	// Create stores a new enrollment.
	// Returns shared.ErrAlreadyEnrolled on a duplicate pair.
	Create(ctx context.Context, e *Enrollment) error

	// Delete removes the enrollment of a student in a lecture.
	// Returns shared.ErrEnrollmentNotFound if no such row exists.
	Delete(ctx context.Context, lectureID, studentID string) error

	// Exists checks whether the pair is already enrolled.
	Exists(ctx context.Context, lectureID, studentID string) (bool, error)

	// StudentIDs returns the internal IDs of all students enrolled in a
	// lecture, in no guaranteed order.
	StudentIDs(ctx context.Context, lectureID string) ([]string, error)
}
