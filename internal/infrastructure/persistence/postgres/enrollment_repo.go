package postgres

import (
	"context"
	"fmt"

	"github.com/aslan-academy/academy-management/internal/domain/lecture"
	"github.com/aslan-academy/academy-management/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ENROLLMENT REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// EnrollmentRepository implements lecture.EnrollmentRepository for
// PostgreSQL. Duplicate enrollments are rejected by the composite unique
// constraint on (lecture_id, student_id).
type EnrollmentRepository struct {
	conn *Connection
}

// NewEnrollmentRepository creates a new EnrollmentRepository.
func NewEnrollmentRepository(conn *Connection) *EnrollmentRepository {
	return &EnrollmentRepository{conn: conn}
}

// Create stores a new enrollment.
func (r *EnrollmentRepository) Create(ctx context.Context, e *lecture.Enrollment) error {
	query := `
		INSERT INTO lecture_students (id, lecture_id, student_id, registered_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.conn.Exec(ctx, query, e.ID, e.LectureID, e.StudentID, e.RegisteredAt)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrAlreadyEnrolled
		}
		return fmt.Errorf("failed to create enrollment: %w", err)
	}

	return nil
}

// Delete removes the enrollment of a student in a lecture.
func (r *EnrollmentRepository) Delete(ctx context.Context, lectureID, studentID string) error {
	query := `
		DELETE FROM lecture_students
		WHERE lecture_id = $1 AND student_id = $2
	`

	result, err := r.conn.Exec(ctx, query, lectureID, studentID)
	if err != nil {
		return fmt.Errorf("failed to delete enrollment: %w", err)
	}

	if result.RowsAffected() == 0 {
		return shared.ErrEnrollmentNotFound
	}

	return nil
}

// Exists checks whether the pair is already enrolled.
func (r *EnrollmentRepository) Exists(ctx context.Context, lectureID, studentID string) (bool, error) {
	var exists bool
	err := r.conn.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM lecture_students WHERE lecture_id = $1 AND student_id = $2)",
		lectureID, studentID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check enrollment existence: %w", err)
	}
	return exists, nil
}

// StudentIDs returns the internal IDs of all students enrolled in a lecture.
func (r *EnrollmentRepository) StudentIDs(ctx context.Context, lectureID string) ([]string, error) {
	query := `
		SELECT student_id
		FROM lecture_students
		WHERE lecture_id = $1
	`

	rows, err := r.conn.Query(ctx, query, lectureID)
	if err != nil {
		return nil, fmt.Errorf("failed to query enrolled students: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan enrolled student id: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}
