package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/aslan-academy/academy-management/internal/domain/lecture"
	"github.com/aslan-academy/academy-management/internal/domain/shared"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// LECTURE REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// LectureRepository implements lecture.Repository for PostgreSQL.
// A lecture and its weekly schedules form one aggregate: writes go through
// a single transaction and reads always load the schedules alongside.
type LectureRepository struct {
	conn *Connection
}

// NewLectureRepository creates a new LectureRepository.
func NewLectureRepository(conn *Connection) *LectureRepository {
	return &LectureRepository{conn: conn}
}

// Create stores a lecture together with all of its schedules atomically.
func (r *LectureRepository) Create(ctx context.Context, l *lecture.Lecture) error {
	return r.conn.WithTx(ctx, DefaultTxOptions(), func(tx pgx.Tx) error {
		lectureQuery := `
			INSERT INTO lectures (id, title, lecture_type, subject, teacher_id, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`

		_, err := tx.Exec(ctx, lectureQuery,
			l.ID,
			l.Title,
			string(l.Type),
			string(l.Subject),
			l.TeacherID,
			l.CreatedAt,
			l.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create lecture: %w", err)
		}

		scheduleQuery := `
			INSERT INTO lecture_schedules (id, lecture_id, day_of_week, start_minutes, end_minutes)
			VALUES ($1, $2, $3, $4, $5)
		`

		for _, sch := range l.Schedules {
			_, err := tx.Exec(ctx, scheduleQuery,
				sch.ID,
				l.ID,
				int(sch.DayOfWeek),
				int(sch.StartTime),
				int(sch.EndTime),
			)
			if err != nil {
				return fmt.Errorf("failed to create lecture schedule: %w", err)
			}
		}

		return nil
	})
}

// GetByID returns a lecture with its schedules loaded.
func (r *LectureRepository) GetByID(ctx context.Context, id string) (*lecture.Lecture, error) {
	query := `
		SELECT id, title, lecture_type, subject, teacher_id, created_at, updated_at
		FROM lectures
		WHERE id = $1
	`

	row := r.conn.QueryRow(ctx, query, id)
	l, err := r.scanLecture(row)
	if err != nil {
		return nil, err
	}

	schedules, err := r.loadSchedules(ctx, []string{l.ID})
	if err != nil {
		return nil, err
	}
	l.Schedules = schedules[l.ID]

	return l, nil
}

// GetAll returns every lecture, schedules included.
func (r *LectureRepository) GetAll(ctx context.Context) ([]*lecture.Lecture, error) {
	query := `
		SELECT id, title, lecture_type, subject, teacher_id, created_at, updated_at
		FROM lectures
		ORDER BY created_at ASC
	`

	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query lectures: %w", err)
	}
	defer rows.Close()

	return r.collectWithSchedules(ctx, rows)
}

// GetByTeacher returns the lectures owned by one teacher, schedules included.
func (r *LectureRepository) GetByTeacher(ctx context.Context, teacherID string) ([]*lecture.Lecture, error) {
	query := `
		SELECT id, title, lecture_type, subject, teacher_id, created_at, updated_at
		FROM lectures
		WHERE teacher_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.conn.Query(ctx, query, teacherID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lectures by teacher: %w", err)
	}
	defer rows.Close()

	return r.collectWithSchedules(ctx, rows)
}

// Delete removes a lecture. Schedules and enrollments cascade at the
// database level.
func (r *LectureRepository) Delete(ctx context.Context, id string) error {
	result, err := r.conn.Exec(ctx, "DELETE FROM lectures WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete lecture: %w", err)
	}

	if result.RowsAffected() == 0 {
		return shared.ErrLectureNotFound
	}

	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Scanning Helpers
// ─────────────────────────────────────────────────────────────────────────────

// scanLecture scans a single lecture (without schedules) from a row.
func (r *LectureRepository) scanLecture(row pgx.Row) (*lecture.Lecture, error) {
	var l lecture.Lecture
	var lectureType, subject string

	err := row.Scan(
		&l.ID,
		&l.Title,
		&lectureType,
		&subject,
		&l.TeacherID,
		&l.CreatedAt,
		&l.UpdatedAt,
	)

	if IsNoRows(err) {
		return nil, shared.ErrLectureNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan lecture: %w", err)
	}

	l.Type = lecture.Type(lectureType)
	l.Subject = lecture.Subject(subject)

	return &l, nil
}

// collectWithSchedules scans all lecture rows, then loads the schedules of
// every collected lecture in one extra query.
func (r *LectureRepository) collectWithSchedules(ctx context.Context, rows pgx.Rows) ([]*lecture.Lecture, error) {
	var lectures []*lecture.Lecture
	var ids []string

	for rows.Next() {
		var l lecture.Lecture
		var lectureType, subject string

		err := rows.Scan(
			&l.ID,
			&l.Title,
			&lectureType,
			&subject,
			&l.TeacherID,
			&l.CreatedAt,
			&l.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lecture: %w", err)
		}

		l.Type = lecture.Type(lectureType)
		l.Subject = lecture.Subject(subject)

		lectures = append(lectures, &l)
		ids = append(ids, l.ID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	if len(lectures) == 0 {
		return []*lecture.Lecture{}, nil
	}

	schedules, err := r.loadSchedules(ctx, ids)
	if err != nil {
		return nil, err
	}

	for _, l := range lectures {
		l.Schedules = schedules[l.ID]
	}

	return lectures, nil
}

// loadSchedules returns the schedules of the given lectures keyed by
// lecture ID.
func (r *LectureRepository) loadSchedules(ctx context.Context, lectureIDs []string) (map[string][]lecture.Schedule, error) {
	query := `
		SELECT id, lecture_id, day_of_week, start_minutes, end_minutes
		FROM lecture_schedules
		WHERE lecture_id = ANY($1)
		ORDER BY day_of_week ASC, start_minutes ASC
	`

	rows, err := r.conn.Query(ctx, query, lectureIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query lecture schedules: %w", err)
	}
	defer rows.Close()

	schedules := make(map[string][]lecture.Schedule)
	for rows.Next() {
		var sch lecture.Schedule
		var dayOfWeek, startMinutes, endMinutes int

		err := rows.Scan(&sch.ID, &sch.LectureID, &dayOfWeek, &startMinutes, &endMinutes)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lecture schedule: %w", err)
		}

		sch.DayOfWeek = time.Weekday(dayOfWeek)
		sch.StartTime = lecture.ClockTime(startMinutes)
		sch.EndTime = lecture.ClockTime(endMinutes)

		schedules[sch.LectureID] = append(schedules[sch.LectureID], sch)
	}

	return schedules, rows.Err()
}
