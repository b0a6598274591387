package lecture

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aslan-academy/academy-management/internal/domain/lecture"
	"github.com/aslan-academy/academy-management/internal/domain/member"
	"github.com/aslan-academy/academy-management/internal/domain/shared"
	"github.com/aslan-academy/academy-management/internal/domain/student"
	"github.com/aslan-academy/academy-management/pkg/logger"
	"github.com/aslan-academy/academy-management/pkg/timeutil"
)

// ─────────────────────────────────────────────────────────────────────────────
// Test doubles
// ─────────────────────────────────────────────────────────────────────────────

type fakeLectureRepo struct {
	mu       sync.Mutex
	lectures map[string]*lecture.Lecture
}

func newFakeLectureRepo() *fakeLectureRepo {
	return &fakeLectureRepo{lectures: make(map[string]*lecture.Lecture)}
}

func (r *fakeLectureRepo) Create(_ context.Context, l *lecture.Lecture) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *l
	r.lectures[l.ID] = &cp
	return nil
}

func (r *fakeLectureRepo) GetByID(_ context.Context, id string) (*lecture.Lecture, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.lectures[id]
	if !ok {
		return nil, shared.ErrLectureNotFound
	}
	cp := *l
	return &cp, nil
}

func (r *fakeLectureRepo) GetAll(_ context.Context) ([]*lecture.Lecture, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*lecture.Lecture, 0, len(r.lectures))
	for _, l := range r.lectures {
		cp := *l
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeLectureRepo) GetByTeacher(_ context.Context, teacherID string) ([]*lecture.Lecture, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*lecture.Lecture
	for _, l := range r.lectures {
		if l.TeacherID == teacherID {
			cp := *l
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeLectureRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.lectures[id]; !ok {
		return shared.ErrLectureNotFound
	}
	delete(r.lectures, id)
	return nil
}

type fakeEnrollmentRepo struct {
	mu   sync.Mutex
	rows map[string]string // "lectureID/studentID" -> enrollment ID
}

func newFakeEnrollmentRepo() *fakeEnrollmentRepo {
	return &fakeEnrollmentRepo{rows: make(map[string]string)}
}

func (r *fakeEnrollmentRepo) key(lectureID, studentID string) string {
	return lectureID + "/" + studentID
}

func (r *fakeEnrollmentRepo) Create(_ context.Context, e *lecture.Enrollment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := r.key(e.LectureID, e.StudentID)
	if _, ok := r.rows[k]; ok {
		return shared.ErrAlreadyEnrolled
	}
	r.rows[k] = e.ID
	return nil
}

func (r *fakeEnrollmentRepo) Delete(_ context.Context, lectureID, studentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := r.key(lectureID, studentID)
	if _, ok := r.rows[k]; !ok {
		return shared.ErrEnrollmentNotFound
	}
	delete(r.rows, k)
	return nil
}

func (r *fakeEnrollmentRepo) Exists(_ context.Context, lectureID, studentID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.rows[r.key(lectureID, studentID)]
	return ok, nil
}

func (r *fakeEnrollmentRepo) StudentIDs(_ context.Context, lectureID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	prefix := lectureID + "/"
	for k := range r.rows {
		if len(k) > len(prefix) && k[:len(prefix)] == prefix {
			out = append(out, k[len(prefix):])
		}
	}
	return out, nil
}

type fakeStudentLookup struct {
	mu       sync.Mutex
	students map[string]*student.Student // by internal ID
}

func newFakeStudentLookup() *fakeStudentLookup {
	return &fakeStudentLookup{students: make(map[string]*student.Student)}
}

func (r *fakeStudentLookup) add(st *student.Student) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.students[st.ID] = st
}

func (r *fakeStudentLookup) Create(context.Context, *student.Student) error { return nil }

func (r *fakeStudentLookup) GetByID(_ context.Context, id string) (*student.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.students[id]
	if !ok {
		return nil, shared.ErrStudentNotFound
	}
	return st.Clone(), nil
}

func (r *fakeStudentLookup) GetByStudentID(context.Context, student.StudentID) (*student.Student, error) {
	return nil, shared.ErrStudentNotFound
}

func (r *fakeStudentLookup) Update(context.Context, *student.Student) error { return nil }

func (r *fakeStudentLookup) GetByDivision(context.Context, student.Division) ([]*student.Student, error) {
	return nil, nil
}

func (r *fakeStudentLookup) FindTopByAttendance(context.Context, student.Division, int) ([]*student.Student, error) {
	return nil, nil
}

func (r *fakeStudentLookup) FindHighAchievers(context.Context, student.Division, float64) ([]*student.Student, error) {
	return nil, nil
}

func (r *fakeStudentLookup) ExistsByStudentID(context.Context, student.StudentID) (bool, error) {
	return false, nil
}

// fakeCache is an in-memory EventsCache backed by JSON, mirroring the
// serialization behavior of the Redis implementation.
type fakeCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	hits    int
	sets    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]byte)}
}

func (c *fakeCache) Get(_ context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.entries[key]
	if !ok {
		return shared.ErrNotFound
	}
	c.hits++
	return json.Unmarshal(raw, dest)
}

func (c *fakeCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.entries[key] = raw
	c.sets++
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Fixtures
// ─────────────────────────────────────────────────────────────────────────────

func testLogger() *logger.Logger {
	opts := logger.DefaultOptions()
	opts.Level = logger.LevelError
	return logger.New(opts)
}

func testTeacher() *member.Member {
	return &member.Member{
		ID:    "teacher-1",
		Name:  "Teacher Kang",
		Email: "kang@academy.kr",
		Role:  member.RoleTeacher,
	}
}

func otherTeacher() *member.Member {
	return &member.Member{
		ID:    "teacher-2",
		Name:  "Teacher Seo",
		Email: "seo@academy.kr",
		Role:  member.RoleTeacher,
	}
}

func testStudent(t *testing.T) *student.Student {
	t.Helper()
	st, err := student.NewStudent(student.NewStudentParams{
		ID:          "student-internal-1",
		StudentID:   "ES001",
		Name:        "Kim Minjun",
		BirthDate:   time.Date(2017, 3, 14, 0, 0, 0, 0, time.UTC),
		ParentPhone: "010-1234-5678",
		Grade:       student.GradeThird,
		Division:    student.DivisionElementary,
	})
	require.NoError(t, err)
	return st
}

func mathRequest() CreateRequest {
	return CreateRequest{
		Title:   "Math Basics",
		Type:    lecture.TypeAcademy,
		Subject: lecture.SubjectMath,
		Schedules: []ScheduleRequest{
			{
				DayOfWeek: time.Monday,
				StartTime: lecture.NewClockTime(14, 30),
				EndTime:   lecture.NewClockTime(16, 0),
			},
		},
	}
}

type fixture struct {
	svc         *Service
	lectures    *fakeLectureRepo
	enrollments *fakeEnrollmentRepo
	students    *fakeStudentLookup
	cache       *fakeCache
}

func newFixture() *fixture {
	lectures := newFakeLectureRepo()
	enrollments := newFakeEnrollmentRepo()
	students := newFakeStudentLookup()
	cache := newFakeCache()

	svc := NewService(lectures, enrollments, students, cache, testLogger())

	return &fixture{
		svc:         svc,
		lectures:    lectures,
		enrollments: enrollments,
		students:    students,
		cache:       cache,
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Lectures
// ─────────────────────────────────────────────────────────────────────────────

func TestCreateLecture(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	l, err := f.svc.CreateLecture(ctx, testTeacher(), mathRequest())
	require.NoError(t, err)

	assert.Equal(t, "Math Basics", l.Title)
	assert.Equal(t, "teacher-1", l.TeacherID)
	require.Len(t, l.Schedules, 1)
	assert.Equal(t, time.Monday, l.Schedules[0].DayOfWeek)
	assert.NotEmpty(t, l.Schedules[0].ID)
	assert.Equal(t, l.ID, l.Schedules[0].LectureID)
}

func TestCreateLecture_RequiresTeacher(t *testing.T) {
	f := newFixture()

	_, err := f.svc.CreateLecture(context.Background(), nil, mathRequest())
	assert.ErrorIs(t, err, shared.ErrLoginRequired)
}

func TestCreateLecture_RejectsInvertedSchedule(t *testing.T) {
	f := newFixture()

	req := mathRequest()
	req.Schedules[0].StartTime = lecture.NewClockTime(16, 0)
	req.Schedules[0].EndTime = lecture.NewClockTime(14, 30)

	_, err := f.svc.CreateLecture(context.Background(), testTeacher(), req)
	assert.ErrorIs(t, err, shared.ErrInvalidSchedule)
}

func TestGet_NilOnMissing(t *testing.T) {
	f := newFixture()

	l, err := f.svc.Get(context.Background(), "no-such-lecture")
	assert.NoError(t, err)
	assert.Nil(t, l)
}

func TestListByTeacher(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.CreateLecture(ctx, testTeacher(), mathRequest())
	require.NoError(t, err)

	req := mathRequest()
	req.Title = "English Conversation"
	req.Subject = lecture.SubjectEnglish
	_, err = f.svc.CreateLecture(ctx, otherTeacher(), req)
	require.NoError(t, err)

	mine, err := f.svc.ListByTeacher(ctx, testTeacher())
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Math Basics", mine[0].Title)

	all, err := f.svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = f.svc.ListByTeacher(ctx, nil)
	assert.ErrorIs(t, err, shared.ErrLoginRequired)
}

// ─────────────────────────────────────────────────────────────────────────────
// Calendar projection
// ─────────────────────────────────────────────────────────────────────────────

func TestCalendarEvents(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	// 2026-08-26 is a Wednesday; the week's Monday is 2026-08-24.
	f.svc.WithClock(func() time.Time { return timeutil.DateTime(2026, 8, 26, 12, 0, 0) })

	_, err := f.svc.CreateLecture(ctx, testTeacher(), mathRequest())
	require.NoError(t, err)

	events, err := f.svc.CalendarEvents(ctx)
	require.NoError(t, err)
	require.Len(t, events, 1)

	ev := events[0]
	assert.Equal(t, "Math Basics", ev.Title)
	assert.Equal(t, "#007bff", ev.Color)
	assert.True(t, ev.Start.Equal(timeutil.DateTime(2026, 8, 24, 14, 30, 0)))
	assert.True(t, ev.End.Equal(timeutil.DateTime(2026, 8, 24, 16, 0, 0)))
}

func TestCalendarEvents_UsesCache(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.svc.WithClock(func() time.Time { return timeutil.DateTime(2026, 8, 26, 12, 0, 0) })

	_, err := f.svc.CreateLecture(ctx, testTeacher(), mathRequest())
	require.NoError(t, err)

	first, err := f.svc.CalendarEvents(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, f.cache.sets)
	assert.Equal(t, 0, f.cache.hits)

	second, err := f.svc.CalendarEvents(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, f.cache.sets)
	assert.Equal(t, 1, f.cache.hits)

	require.Len(t, second, len(first))
	assert.True(t, first[0].Start.Equal(second[0].Start))
}

func TestCalendarEvents_NilCacheDisablesCaching(t *testing.T) {
	lectures := newFakeLectureRepo()
	svc := NewService(lectures, newFakeEnrollmentRepo(), newFakeStudentLookup(), nil, testLogger()).
		WithClock(func() time.Time { return timeutil.DateTime(2026, 8, 26, 12, 0, 0) })

	_, err := svc.CreateLecture(context.Background(), testTeacher(), mathRequest())
	require.NoError(t, err)

	events, err := svc.CalendarEvents(context.Background())
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

// ─────────────────────────────────────────────────────────────────────────────
// Enrollment
// ─────────────────────────────────────────────────────────────────────────────

func TestEnroll(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	st := testStudent(t)
	f.students.add(st)

	l, err := f.svc.CreateLecture(ctx, testTeacher(), mathRequest())
	require.NoError(t, err)

	require.NoError(t, f.svc.Enroll(ctx, testTeacher(), l.ID, st.ID))

	enrolled, err := f.enrollments.Exists(ctx, l.ID, st.ID)
	require.NoError(t, err)
	assert.True(t, enrolled)
}

func TestEnroll_Authorization(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	st := testStudent(t)
	f.students.add(st)

	l, err := f.svc.CreateLecture(ctx, testTeacher(), mathRequest())
	require.NoError(t, err)

	err = f.svc.Enroll(ctx, nil, l.ID, st.ID)
	assert.ErrorIs(t, err, shared.ErrLoginRequired)

	err = f.svc.Enroll(ctx, otherTeacher(), l.ID, st.ID)
	assert.ErrorIs(t, err, shared.ErrNotLectureOwner)
	assert.True(t, shared.IsAuthorization(err))
}

func TestEnroll_DuplicateRejected(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	st := testStudent(t)
	f.students.add(st)

	l, err := f.svc.CreateLecture(ctx, testTeacher(), mathRequest())
	require.NoError(t, err)

	require.NoError(t, f.svc.Enroll(ctx, testTeacher(), l.ID, st.ID))

	err = f.svc.Enroll(ctx, testTeacher(), l.ID, st.ID)
	assert.ErrorIs(t, err, shared.ErrAlreadyEnrolled)
	assert.True(t, shared.IsConflict(err))
}

func TestEnroll_UnknownStudent(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	l, err := f.svc.CreateLecture(ctx, testTeacher(), mathRequest())
	require.NoError(t, err)

	err = f.svc.Enroll(ctx, testTeacher(), l.ID, "no-such-student")
	assert.True(t, shared.IsNotFound(err))
}

func TestEnroll_UnknownLecture(t *testing.T) {
	f := newFixture()

	st := testStudent(t)
	f.students.add(st)

	err := f.svc.Enroll(context.Background(), testTeacher(), "no-such-lecture", st.ID)
	assert.True(t, shared.IsNotFound(err))
}

func TestWithdraw(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	st := testStudent(t)
	f.students.add(st)

	l, err := f.svc.CreateLecture(ctx, testTeacher(), mathRequest())
	require.NoError(t, err)

	require.NoError(t, f.svc.Enroll(ctx, testTeacher(), l.ID, st.ID))
	require.NoError(t, f.svc.Withdraw(ctx, testTeacher(), l.ID, st.ID))

	enrolled, err := f.enrollments.Exists(ctx, l.ID, st.ID)
	require.NoError(t, err)
	assert.False(t, enrolled)

	// Withdrawing again finds no enrollment row.
	err = f.svc.Withdraw(ctx, testTeacher(), l.ID, st.ID)
	assert.ErrorIs(t, err, shared.ErrEnrollmentNotFound)
}

func TestEnrolledStudents(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	st := testStudent(t)
	f.students.add(st)

	l, err := f.svc.CreateLecture(ctx, testTeacher(), mathRequest())
	require.NoError(t, err)

	list, err := f.svc.EnrolledStudents(ctx, testTeacher(), l.ID)
	require.NoError(t, err)
	assert.Empty(t, list)

	require.NoError(t, f.svc.Enroll(ctx, testTeacher(), l.ID, st.ID))

	list, err = f.svc.EnrolledStudents(ctx, testTeacher(), l.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, student.StudentID("ES001"), list[0].StudentID)

	_, err = f.svc.EnrolledStudents(ctx, otherTeacher(), l.ID)
	assert.ErrorIs(t, err, shared.ErrNotLectureOwner)
}
