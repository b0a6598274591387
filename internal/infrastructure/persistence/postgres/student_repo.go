package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/aslan-academy/academy-management/internal/domain/shared"
	"github.com/aslan-academy/academy-management/internal/domain/student"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// STUDENT REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// studentColumns is the canonical column list used by every SELECT.
const studentColumns = `
	id, student_no, name, birth_date, phone, parent_phone, grade, division,
	attendance_count, average_score, special_notes, created_at, updated_at
`

// StudentRepository implements student.Repository for PostgreSQL.
type StudentRepository struct {
	conn *Connection
}

// NewStudentRepository creates a new StudentRepository.
func NewStudentRepository(conn *Connection) *StudentRepository {
	return &StudentRepository{conn: conn}
}

// ─────────────────────────────────────────────────────────────────────────────
// CRUD Operations
// ─────────────────────────────────────────────────────────────────────────────

// Create stores a new student.
func (r *StudentRepository) Create(ctx context.Context, s *student.Student) error {
	query := `
		INSERT INTO students (
			id, student_no, name, birth_date, phone, parent_phone, grade, division,
			attendance_count, average_score, special_notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.conn.Exec(ctx, query,
		s.ID,
		string(s.StudentID),
		s.Name,
		s.BirthDate,
		string(s.Phone),
		string(s.ParentPhone),
		string(s.Grade),
		string(s.Division),
		s.AttendanceCount,
		s.AverageScore,
		s.SpecialNotes,
		s.CreatedAt,
		s.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrStudentAlreadyExists
		}
		return fmt.Errorf("failed to create student: %w", err)
	}

	return nil
}

// GetByID returns a student by internal ID.
func (r *StudentRepository) GetByID(ctx context.Context, id string) (*student.Student, error) {
	query := `SELECT` + studentColumns + `FROM students WHERE id = $1`

	row := r.conn.QueryRow(ctx, query, id)
	return r.scanStudent(row)
}

// GetByStudentID returns a student by academy student number.
func (r *StudentRepository) GetByStudentID(ctx context.Context, studentID student.StudentID) (*student.Student, error) {
	query := `SELECT` + studentColumns + `FROM students WHERE student_no = $1`

	row := r.conn.QueryRow(ctx, query, string(studentID))
	return r.scanStudent(row)
}

// Update persists the mutable state of a student.
func (r *StudentRepository) Update(ctx context.Context, s *student.Student) error {
	query := `
		UPDATE students SET
			name = $1,
			phone = $2,
			parent_phone = $3,
			grade = $4,
			attendance_count = $5,
			average_score = $6,
			special_notes = $7,
			updated_at = $8
		WHERE id = $9
	`

	result, err := r.conn.Exec(ctx, query,
		s.Name,
		string(s.Phone),
		string(s.ParentPhone),
		string(s.Grade),
		s.AttendanceCount,
		s.AverageScore,
		s.SpecialNotes,
		time.Now().UTC(),
		s.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update student: %w", err)
	}

	if result.RowsAffected() == 0 {
		return shared.ErrStudentNotFound
	}

	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Division Queries
// ─────────────────────────────────────────────────────────────────────────────

// GetByDivision returns all students of a division ordered by student number.
func (r *StudentRepository) GetByDivision(ctx context.Context, division student.Division) ([]*student.Student, error) {
	query := `SELECT` + studentColumns + `
		FROM students
		WHERE division = $1
		ORDER BY student_no ASC
	`

	rows, err := r.conn.Query(ctx, query, string(division))
	if err != nil {
		return nil, fmt.Errorf("failed to query students by division: %w", err)
	}
	defer rows.Close()

	return r.scanStudents(rows)
}

// FindTopByAttendance returns students of a division with at least
// minAttendance check-ins, most attended first.
func (r *StudentRepository) FindTopByAttendance(ctx context.Context, division student.Division, minAttendance int) ([]*student.Student, error) {
	query := `SELECT` + studentColumns + `
		FROM students
		WHERE division = $1 AND attendance_count >= $2
		ORDER BY attendance_count DESC, student_no ASC
	`

	rows, err := r.conn.Query(ctx, query, string(division), minAttendance)
	if err != nil {
		return nil, fmt.Errorf("failed to query top students by attendance: %w", err)
	}
	defer rows.Close()

	return r.scanStudents(rows)
}

// FindHighAchievers returns students of a division with an average score
// of at least minScore, best first.
func (r *StudentRepository) FindHighAchievers(ctx context.Context, division student.Division, minScore float64) ([]*student.Student, error) {
	query := `SELECT` + studentColumns + `
		FROM students
		WHERE division = $1 AND average_score >= $2
		ORDER BY average_score DESC, student_no ASC
	`

	rows, err := r.conn.Query(ctx, query, string(division), minScore)
	if err != nil {
		return nil, fmt.Errorf("failed to query high achievers: %w", err)
	}
	defer rows.Close()

	return r.scanStudents(rows)
}

// ─────────────────────────────────────────────────────────────────────────────
// Existence Checks
// ─────────────────────────────────────────────────────────────────────────────

// ExistsByStudentID checks if a student exists by academy student number.
func (r *StudentRepository) ExistsByStudentID(ctx context.Context, studentID student.StudentID) (bool, error) {
	var exists bool
	err := r.conn.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM students WHERE student_no = $1)",
		string(studentID),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check student existence: %w", err)
	}
	return exists, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Scanning Helpers
// ─────────────────────────────────────────────────────────────────────────────

// scanStudent scans a single student from a row.
func (r *StudentRepository) scanStudent(row pgx.Row) (*student.Student, error) {
	var s student.Student
	var studentNo, phone, parentPhone, grade, division string

	err := row.Scan(
		&s.ID,
		&studentNo,
		&s.Name,
		&s.BirthDate,
		&phone,
		&parentPhone,
		&grade,
		&division,
		&s.AttendanceCount,
		&s.AverageScore,
		&s.SpecialNotes,
		&s.CreatedAt,
		&s.UpdatedAt,
	)

	if IsNoRows(err) {
		return nil, shared.ErrStudentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan student: %w", err)
	}

	s.StudentID = student.StudentID(studentNo)
	s.Phone = student.Phone(phone)
	s.ParentPhone = student.Phone(parentPhone)
	s.Grade = student.Grade(grade)
	s.Division = student.Division(division)

	return &s, nil
}

// scanStudents scans multiple students from rows.
func (r *StudentRepository) scanStudents(rows pgx.Rows) ([]*student.Student, error) {
	var students []*student.Student

	for rows.Next() {
		var s student.Student
		var studentNo, phone, parentPhone, grade, division string

		err := rows.Scan(
			&s.ID,
			&studentNo,
			&s.Name,
			&s.BirthDate,
			&phone,
			&parentPhone,
			&grade,
			&division,
			&s.AttendanceCount,
			&s.AverageScore,
			&s.SpecialNotes,
			&s.CreatedAt,
			&s.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan student: %w", err)
		}

		s.StudentID = student.StudentID(studentNo)
		s.Phone = student.Phone(phone)
		s.ParentPhone = student.Phone(parentPhone)
		s.Grade = student.Grade(grade)
		s.Division = student.Division(division)

		students = append(students, &s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return students, nil
}
