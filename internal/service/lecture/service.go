// Package lecture implements the lecture, schedule and enrollment
// service: aggregate creation, teacher-scoped listings, the weekly
// calendar projection and enrollment management behind a single
// teacher-ownership check.
package lecture

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/aslan-academy/academy-management/internal/domain/lecture"
	"github.com/aslan-academy/academy-management/internal/domain/member"
	"github.com/aslan-academy/academy-management/internal/domain/shared"
	"github.com/aslan-academy/academy-management/internal/domain/student"
	"github.com/aslan-academy/academy-management/pkg/logger"
	"github.com/aslan-academy/academy-management/pkg/timeutil"
)

// ScheduleRequest is one weekly slot of a create request.
type ScheduleRequest struct {
	DayOfWeek time.Weekday
	StartTime lecture.ClockTime
	EndTime   lecture.ClockTime
}

// CreateRequest carries the plain input values for creating a lecture.
type CreateRequest struct {
	Title     string
	Type      lecture.Type
	Subject   lecture.Subject
	Schedules []ScheduleRequest
}

// Management is the lecture service contract. Decorators in
// internal/middleware wrap it.
type Management interface {
	// CreateLecture stores a lecture with its schedules as one atomic
	// aggregate write and returns it with schedules materialized.
	CreateLecture(ctx context.Context, teacher *member.Member, req CreateRequest) (*lecture.Lecture, error)

	// ListAll returns every lecture.
	ListAll(ctx context.Context) ([]*lecture.Lecture, error)

	// ListByTeacher returns the caller's own lectures.
	ListByTeacher(ctx context.Context, teacher *member.Member) ([]*lecture.Lecture, error)

	// Get returns a lecture by ID, or nil (no error) when it does not
	// exist. The caller decides on not-found semantics.
	Get(ctx context.Context, id string) (*lecture.Lecture, error)

	// CalendarEvents projects every schedule onto the current week.
	CalendarEvents(ctx context.Context) ([]lecture.Event, error)

	// Enroll registers a student into the caller's lecture.
	Enroll(ctx context.Context, teacher *member.Member, lectureID, studentID string) error

	// Withdraw removes a student from the caller's lecture.
	Withdraw(ctx context.Context, teacher *member.Member, lectureID, studentID string) error

	// EnrolledStudents returns the students enrolled in the caller's
	// lecture, in no guaranteed order.
	EnrolledStudents(ctx context.Context, teacher *member.Member, lectureID string) ([]*student.Student, error)
}

// EventsCache is the read-side cache the calendar projection uses.
// *redis.Cache satisfies it; a nil cache disables caching.
type EventsCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// eventsCacheTTL bounds how stale a cached weekly projection may get.
const eventsCacheTTL = 5 * time.Minute

// Service implements Management on the repositories.
type Service struct {
	lectures    lecture.Repository
	enrollments lecture.EnrollmentRepository
	students    student.Repository
	cache       EventsCache
	log         *logger.Logger
	now         func() time.Time
}

// NewService creates the lecture service. cache may be nil.
func NewService(
	lectures lecture.Repository,
	enrollments lecture.EnrollmentRepository,
	students student.Repository,
	cache EventsCache,
	log *logger.Logger,
) *Service {
	return &Service{
		lectures:    lectures,
		enrollments: enrollments,
		students:    students,
		cache:       cache,
		log:         log.With(logger.Component("lecture_service")),
		now:         timeutil.Now,
	}
}

// WithClock replaces the time source. For tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// ─────────────────────────────────────────────────────────────────────────────
// Lectures
// ─────────────────────────────────────────────────────────────────────────────

// CreateLecture builds the aggregate from the request, attaches the
// owning teacher and persists lecture plus schedules atomically.
func (s *Service) CreateLecture(ctx context.Context, teacher *member.Member, req CreateRequest) (*lecture.Lecture, error) {
	if teacher == nil {
		return nil, shared.ErrLoginRequired
	}

	schedules := make([]lecture.Schedule, 0, len(req.Schedules))
	for _, sch := range req.Schedules {
		schedules = append(schedules, lecture.Schedule{
			ID:        uuid.NewString(),
			DayOfWeek: sch.DayOfWeek,
			StartTime: sch.StartTime,
			EndTime:   sch.EndTime,
		})
	}

	l, err := lecture.NewLecture(lecture.NewLectureParams{
		ID:        uuid.NewString(),
		Title:     req.Title,
		Type:      req.Type,
		Subject:   req.Subject,
		TeacherID: teacher.ID,
		Schedules: schedules,
	})
	if err != nil {
		return nil, err
	}

	if err := s.lectures.Create(ctx, l); err != nil {
		return nil, err
	}

	s.log.Info("lecture created",
		logger.LectureID(l.ID),
		logger.Subject(string(l.Subject)),
		logger.Int("schedules", len(l.Schedules)),
	)

	// Reload the aggregate so the response carries exactly what was
	// persisted, schedules included.
	return s.lectures.GetByID(ctx, l.ID)
}

// ListAll returns every lecture.
func (s *Service) ListAll(ctx context.Context) ([]*lecture.Lecture, error) {
	return s.lectures.GetAll(ctx)
}

// ListByTeacher returns the caller's own lectures.
func (s *Service) ListByTeacher(ctx context.Context, teacher *member.Member) ([]*lecture.Lecture, error) {
	if teacher == nil {
		return nil, shared.ErrLoginRequired
	}
	return s.lectures.GetByTeacher(ctx, teacher.ID)
}

// Get returns a lecture by ID, or nil when it does not exist.
func (s *Service) Get(ctx context.Context, id string) (*lecture.Lecture, error) {
	l, err := s.lectures.GetByID(ctx, id)
	if shared.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}

// CalendarEvents projects every lecture's schedules onto the current
// week (Monday-anchored, academy local time). The projection is derived
// on every read and shifts as the weeks go by; a short-TTL cache keeps
// repeated reads off the database.
func (s *Service) CalendarEvents(ctx context.Context) ([]lecture.Event, error) {
	monday := timeutil.StartOfWeek(s.now())
	key := timeutil.WeekKey(s.now())

	if s.cache != nil {
		var cached []lecture.Event
		if err := s.cache.Get(ctx, "events:"+key, &cached); err == nil {
			return cached, nil
		}
	}

	lectures, err := s.lectures.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	events := make([]lecture.Event, 0)
	for _, l := range lectures {
		events = append(events, l.EventsForWeek(monday)...)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, "events:"+key, events, eventsCacheTTL); err != nil {
			s.log.Warn("failed to cache calendar events", logger.Err(err))
		}
	}

	return events, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Enrollments
// ─────────────────────────────────────────────────────────────────────────────

// Enroll registers a student into the caller's lecture.
func (s *Service) Enroll(ctx context.Context, teacher *member.Member, lectureID, studentID string) error {
	l, err := s.authorizeTeacher(ctx, teacher, lectureID)
	if err != nil {
		return err
	}

	st, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		return err
	}

	enrolled, err := s.enrollments.Exists(ctx, l.ID, st.ID)
	if err != nil {
		return err
	}
	if enrolled {
		return shared.ErrAlreadyEnrolled
	}

	e := &lecture.Enrollment{
		ID:           uuid.NewString(),
		LectureID:    l.ID,
		StudentID:    st.ID,
		RegisteredAt: time.Now().UTC(),
	}

	if err := s.enrollments.Create(ctx, e); err != nil {
		return err
	}

	s.log.Info("student enrolled",
		logger.LectureID(l.ID),
		logger.StudentNo(st.StudentID.String()),
	)

	return nil
}

// Withdraw removes a student from the caller's lecture.
func (s *Service) Withdraw(ctx context.Context, teacher *member.Member, lectureID, studentID string) error {
	l, err := s.authorizeTeacher(ctx, teacher, lectureID)
	if err != nil {
		return err
	}

	st, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		return err
	}

	if err := s.enrollments.Delete(ctx, l.ID, st.ID); err != nil {
		return err
	}

	s.log.Info("student withdrawn",
		logger.LectureID(l.ID),
		logger.StudentNo(st.StudentID.String()),
	)

	return nil
}

// EnrolledStudents returns the students enrolled in the caller's lecture.
func (s *Service) EnrolledStudents(ctx context.Context, teacher *member.Member, lectureID string) ([]*student.Student, error) {
	l, err := s.authorizeTeacher(ctx, teacher, lectureID)
	if err != nil {
		return nil, err
	}

	ids, err := s.enrollments.StudentIDs(ctx, l.ID)
	if err != nil {
		return nil, err
	}

	students := make([]*student.Student, 0, len(ids))
	for _, id := range ids {
		st, err := s.students.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		students = append(students, st)
	}

	return students, nil
}

// authorizeTeacher loads the lecture and verifies the caller owns it.
// Every enrollment operation shares this one check.
func (s *Service) authorizeTeacher(ctx context.Context, teacher *member.Member, lectureID string) (*lecture.Lecture, error) {
	if teacher == nil {
		return nil, shared.ErrLoginRequired
	}

	l, err := s.lectures.GetByID(ctx, lectureID)
	if err != nil {
		return nil, err
	}

	if !l.OwnedBy(teacher.ID) {
		return nil, shared.ErrNotLectureOwner
	}

	return l, nil
}
