package student

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aslan-academy/academy-management/internal/domain/shared"
	"github.com/aslan-academy/academy-management/internal/domain/student"
	"github.com/aslan-academy/academy-management/pkg/logger"
)

// ─────────────────────────────────────────────────────────────────────────────
// Test doubles
// ─────────────────────────────────────────────────────────────────────────────

// fakeStudentRepo is an in-memory student.Repository keyed by student number.
type fakeStudentRepo struct {
	mu       sync.Mutex
	students map[student.StudentID]*student.Student
}

func newFakeStudentRepo() *fakeStudentRepo {
	return &fakeStudentRepo{students: make(map[student.StudentID]*student.Student)}
}

func (r *fakeStudentRepo) Create(_ context.Context, st *student.Student) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.students[st.StudentID]; ok {
		return shared.ErrStudentAlreadyExists
	}
	r.students[st.StudentID] = st.Clone()
	return nil
}

func (r *fakeStudentRepo) GetByID(_ context.Context, id string) (*student.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, st := range r.students {
		if st.ID == id {
			return st.Clone(), nil
		}
	}
	return nil, shared.ErrStudentNotFound
}

func (r *fakeStudentRepo) GetByStudentID(_ context.Context, studentID student.StudentID) (*student.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.students[studentID]
	if !ok {
		return nil, shared.ErrStudentNotFound
	}
	return st.Clone(), nil
}

func (r *fakeStudentRepo) Update(_ context.Context, st *student.Student) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.students[st.StudentID]; !ok {
		return shared.ErrStudentNotFound
	}
	r.students[st.StudentID] = st.Clone()
	return nil
}

func (r *fakeStudentRepo) GetByDivision(_ context.Context, division student.Division) ([]*student.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*student.Student
	for _, st := range r.students {
		if st.Division == division {
			out = append(out, st.Clone())
		}
	}
	return out, nil
}

func (r *fakeStudentRepo) FindTopByAttendance(_ context.Context, division student.Division, minAttendance int) ([]*student.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*student.Student
	for _, st := range r.students {
		if st.Division == division && st.AttendanceCount >= minAttendance {
			out = append(out, st.Clone())
		}
	}
	return out, nil
}

func (r *fakeStudentRepo) FindHighAchievers(_ context.Context, division student.Division, minScore float64) ([]*student.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*student.Student
	for _, st := range r.students {
		if st.Division == division && st.AverageScore >= minScore {
			out = append(out, st.Clone())
		}
	}
	return out, nil
}

func (r *fakeStudentRepo) ExistsByStudentID(_ context.Context, studentID student.StudentID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.students[studentID]
	return ok, nil
}

// recordingNotifier captures every outbound message.
type recordingNotifier struct {
	mu      sync.Mutex
	parent  []string
	student []string
	teacher []string
}

func (n *recordingNotifier) NotifyParent(_ context.Context, phone, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.parent = append(n.parent, fmt.Sprintf("%s: %s", phone, message))
}

func (n *recordingNotifier) NotifyStudent(_ context.Context, phone, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.student = append(n.student, fmt.Sprintf("%s: %s", phone, message))
}

func (n *recordingNotifier) NotifyTeacher(_ context.Context, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.teacher = append(n.teacher, message)
}

func (n *recordingNotifier) parentContains(substr string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, m := range n.parent {
		if strings.Contains(m, substr) {
			return true
		}
	}
	return false
}

func (n *recordingNotifier) studentContains(substr string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, m := range n.student {
		if strings.Contains(m, substr) {
			return true
		}
	}
	return false
}

func testLogger() *logger.Logger {
	opts := logger.DefaultOptions()
	opts.Level = logger.LevelError
	return logger.New(opts)
}

func elementaryRequest() Request {
	return Request{
		StudentID:   "ES001",
		Name:        "Kim Minjun",
		BirthDate:   time.Date(2017, 3, 14, 0, 0, 0, 0, time.UTC),
		ParentPhone: "010-1234-5678",
		Grade:       student.GradeThird,
	}
}

func middleRequest() Request {
	return Request{
		StudentID: "MS001",
		Name:      "Lee Seoyeon",
		BirthDate: time.Date(2012, 7, 2, 0, 0, 0, 0, time.UTC),
		Phone:     "010-9876-5432",
		Grade:     student.GradeSecond,
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Variant selection
// ─────────────────────────────────────────────────────────────────────────────

func TestForDivision(t *testing.T) {
	repo := newFakeStudentRepo()
	notifier := &recordingNotifier{}

	svc, err := ForDivision(student.DivisionElementary, repo, notifier, nil, testLogger())
	require.NoError(t, err)
	assert.Equal(t, "ELEMENTARY (elementary school division)", svc.DivisionType())

	svc, err = ForDivision(student.DivisionMiddle, repo, notifier, nil, testLogger())
	require.NoError(t, err)
	assert.Equal(t, "MIDDLE (middle school division)", svc.DivisionType())

	_, err = ForDivision("HIGH", repo, notifier, nil, testLogger())
	assert.Error(t, err)
}

// ─────────────────────────────────────────────────────────────────────────────
// Elementary division
// ─────────────────────────────────────────────────────────────────────────────

func newElementary(t *testing.T) (*ElementaryService, *fakeStudentRepo, *recordingNotifier) {
	t.Helper()
	repo := newFakeStudentRepo()
	notifier := &recordingNotifier{}
	return NewElementaryService(repo, notifier, nil, testLogger()), repo, notifier
}

func TestElementaryRegister(t *testing.T) {
	svc, repo, notifier := newElementary(t)
	ctx := context.Background()

	st, err := svc.Register(ctx, elementaryRequest())
	require.NoError(t, err)

	assert.Equal(t, student.DivisionElementary, st.Division)
	assert.NotEmpty(t, st.ID)
	assert.Equal(t, "new registration - pickup consent form required", st.SpecialNotes)

	stored, err := repo.GetByStudentID(ctx, "ES001")
	require.NoError(t, err)
	assert.Equal(t, st.ID, stored.ID)

	// The welcome goes to the parent.
	assert.True(t, notifier.parentContains("has been registered"))
	assert.Empty(t, notifier.student)
}

func TestElementaryRegister_KeepsProvidedNotes(t *testing.T) {
	svc, _, _ := newElementary(t)

	req := elementaryRequest()
	req.SpecialNotes = "allergic to peanuts"

	st, err := svc.Register(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "allergic to peanuts", st.SpecialNotes)
}

func TestElementaryRegister_DuplicateStudentNumber(t *testing.T) {
	svc, _, _ := newElementary(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, elementaryRequest())
	require.NoError(t, err)

	_, err = svc.Register(ctx, elementaryRequest())
	assert.ErrorIs(t, err, shared.ErrStudentAlreadyExists)
	assert.True(t, shared.IsConflict(err))
}

func TestElementaryRegister_RequiresParentPhone(t *testing.T) {
	svc, _, notifier := newElementary(t)

	req := elementaryRequest()
	req.ParentPhone = ""

	_, err := svc.Register(context.Background(), req)
	assert.ErrorIs(t, err, shared.ErrParentPhoneRequired)
	assert.Empty(t, notifier.parent)
}

func TestElementaryCheckAttendance(t *testing.T) {
	svc, repo, notifier := newElementary(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, elementaryRequest())
	require.NoError(t, err)

	require.NoError(t, svc.CheckAttendance(ctx, "ES001"))

	stored, err := repo.GetByStudentID(ctx, "ES001")
	require.NoError(t, err)
	assert.Equal(t, 1, stored.AttendanceCount)
	assert.True(t, notifier.parentContains("checked in today! (1 days total)"))
}

func TestElementaryCheckAttendance_MilestoneFiresExactlyOnce(t *testing.T) {
	svc, repo, notifier := newElementary(t)
	ctx := context.Background()

	st, err := svc.Register(ctx, elementaryRequest())
	require.NoError(t, err)

	// Bring the count to 98 directly, then check in over the milestone.
	st.AttendanceCount = 98
	require.NoError(t, repo.Update(ctx, st))

	milestone := "reached 100 days"
	countMilestones := func() int {
		n := 0
		notifier.mu.Lock()
		defer notifier.mu.Unlock()
		for _, m := range notifier.parent {
			if strings.Contains(m, milestone) {
				n++
			}
		}
		return n
	}

	require.NoError(t, svc.CheckAttendance(ctx, "ES001")) // 99
	assert.Equal(t, 0, countMilestones())

	require.NoError(t, svc.CheckAttendance(ctx, "ES001")) // 100
	assert.Equal(t, 1, countMilestones())

	require.NoError(t, svc.CheckAttendance(ctx, "ES001")) // 101
	assert.Equal(t, 1, countMilestones())
}

func TestElementaryCheckAttendance_UnknownStudent(t *testing.T) {
	svc, _, _ := newElementary(t)

	err := svc.CheckAttendance(context.Background(), "ES999")
	assert.True(t, shared.IsNotFound(err))
}

func TestElementaryUpdateScore_PraiseThreshold(t *testing.T) {
	svc, repo, notifier := newElementary(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, elementaryRequest())
	require.NoError(t, err)

	require.NoError(t, svc.UpdateScore(ctx, "ES001", 89.9))
	assert.False(t, notifier.parentContains("praise sticker"))

	// Praise keys off the single score, not the running average.
	require.NoError(t, svc.UpdateScore(ctx, "ES001", 90))
	assert.True(t, notifier.parentContains("praise sticker"))

	stored, err := repo.GetByStudentID(ctx, "ES001")
	require.NoError(t, err)
	// ((89.9 * 0) + 89.9) / 1 = 89.9, then ((89.9 * 0) + 90) / 1 = 90
	// with no check-ins both scores fully replace the average.
	assert.Equal(t, 90.0, stored.AverageScore)
}

func TestElementaryUpdateScore_InvalidScore(t *testing.T) {
	svc, _, _ := newElementary(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, elementaryRequest())
	require.NoError(t, err)

	err = svc.UpdateScore(ctx, "ES001", 101)
	assert.ErrorIs(t, err, shared.ErrInvalidScore)
}

func TestElementaryTopStudents(t *testing.T) {
	svc, repo, _ := newElementary(t)
	ctx := context.Background()

	regular, err := svc.Register(ctx, elementaryRequest())
	require.NoError(t, err)

	req := elementaryRequest()
	req.StudentID = "ES002"
	req.Name = "Park Jiwoo"
	diligent, err := svc.Register(ctx, req)
	require.NoError(t, err)

	regular.AttendanceCount = 79
	require.NoError(t, repo.Update(ctx, regular))
	diligent.AttendanceCount = 80
	require.NoError(t, repo.Update(ctx, diligent))

	top, err := svc.TopStudents(ctx)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, student.StudentID("ES002"), top[0].StudentID)
}

// ─────────────────────────────────────────────────────────────────────────────
// Middle school division
// ─────────────────────────────────────────────────────────────────────────────

func newMiddle(t *testing.T) (*MiddleService, *fakeStudentRepo, *recordingNotifier) {
	t.Helper()
	repo := newFakeStudentRepo()
	notifier := &recordingNotifier{}
	return NewMiddleService(repo, notifier, nil, testLogger()), repo, notifier
}

func TestMiddleRegister(t *testing.T) {
	svc, _, notifier := newMiddle(t)

	st, err := svc.Register(context.Background(), middleRequest())
	require.NoError(t, err)

	assert.Equal(t, student.DivisionMiddle, st.Division)
	assert.Equal(t, "new registration - placement test scheduled", st.SpecialNotes)

	// The student is the primary audience; no parent number, no copy.
	assert.True(t, notifier.studentContains("you are registered"))
	assert.Empty(t, notifier.parent)
}

func TestMiddleRegister_ParentCopyWhenNumberKnown(t *testing.T) {
	svc, _, notifier := newMiddle(t)

	req := middleRequest()
	req.ParentPhone = "010-1111-2222"

	_, err := svc.Register(context.Background(), req)
	require.NoError(t, err)

	assert.True(t, notifier.studentContains("you are registered"))
	assert.True(t, notifier.parentContains("has been registered"))
}

func TestMiddleRegister_RequiresOwnPhone(t *testing.T) {
	svc, _, _ := newMiddle(t)

	req := middleRequest()
	req.Phone = ""
	req.ParentPhone = "010-1111-2222"

	_, err := svc.Register(context.Background(), req)
	assert.ErrorIs(t, err, shared.ErrStudentPhoneRequired)
}

func TestMiddleCheckAttendance_BeforeRateCycle(t *testing.T) {
	svc, _, notifier := newMiddle(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, middleRequest())
	require.NoError(t, err)

	require.NoError(t, svc.CheckAttendance(ctx, "MS001"))

	assert.True(t, notifier.studentContains("Attendance checked! (1 days total)"))
	assert.False(t, notifier.studentContains("attendance rate"))
}

func TestMiddleCheckAttendance_RateWarningAtCycle(t *testing.T) {
	svc, repo, notifier := newMiddle(t)
	ctx := context.Background()

	st, err := svc.Register(ctx, middleRequest())
	require.NoError(t, err)

	st.AttendanceCount = 49
	require.NoError(t, repo.Update(ctx, st))

	// 50 check-ins against a 50-day cycle is a 100% rate: no warning.
	require.NoError(t, svc.CheckAttendance(ctx, "MS001"))
	assert.False(t, notifier.studentContains("attendance rate"))
}

func TestMiddleUpdateScore_StudentSummary(t *testing.T) {
	svc, _, notifier := newMiddle(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, middleRequest())
	require.NoError(t, err)

	require.NoError(t, svc.UpdateScore(ctx, "MS001", 75))

	assert.True(t, notifier.studentContains("Score: 75, average: 75.0, grade: C"))
	assert.Empty(t, notifier.parent)
}

func TestMiddleUpdateScore_ParentCopyOnHighAverage(t *testing.T) {
	svc, _, notifier := newMiddle(t)
	ctx := context.Background()

	req := middleRequest()
	req.ParentPhone = "010-1111-2222"
	_, err := svc.Register(ctx, req)
	require.NoError(t, err)
	notifier.parent = nil // drop the registration copy

	require.NoError(t, svc.UpdateScore(ctx, "MS001", 89))
	assert.Empty(t, notifier.parent)

	// A second score lifts the average to 90: ((89 * 0) + 92) / 1 = 92.
	require.NoError(t, svc.UpdateScore(ctx, "MS001", 92))
	assert.True(t, notifier.parentContains("average is now 92.0"))
}

func TestMiddleUpdateScore_NoParentCopyWithoutNumber(t *testing.T) {
	svc, _, notifier := newMiddle(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, middleRequest())
	require.NoError(t, err)

	require.NoError(t, svc.UpdateScore(ctx, "MS001", 95))

	assert.True(t, notifier.studentContains("grade: A"))
	assert.Empty(t, notifier.parent)
}

func TestMiddleTopStudents(t *testing.T) {
	svc, repo, _ := newMiddle(t)
	ctx := context.Background()

	solid, err := svc.Register(ctx, middleRequest())
	require.NoError(t, err)

	req := middleRequest()
	req.StudentID = "MS002"
	req.Name = "Choi Hana"
	ace, err := svc.Register(ctx, req)
	require.NoError(t, err)

	solid.AverageScore = 89.99
	require.NoError(t, repo.Update(ctx, solid))
	ace.AverageScore = 90
	require.NoError(t, repo.Update(ctx, ace))

	top, err := svc.TopStudents(ctx)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, student.StudentID("MS002"), top[0].StudentID)
}

// ─────────────────────────────────────────────────────────────────────────────
// Shared operations
// ─────────────────────────────────────────────────────────────────────────────

func TestUpdate_PreservesIdentity(t *testing.T) {
	svc, _, _ := newElementary(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, elementaryRequest())
	require.NoError(t, err)

	upd := elementaryRequest()
	upd.Name = "Kim Minjun Jr"
	upd.Grade = student.GradeFourth
	upd.SpecialNotes = "moved up a grade"

	st, err := svc.Update(ctx, "ES001", upd)
	require.NoError(t, err)

	assert.Equal(t, "Kim Minjun Jr", st.Name)
	assert.Equal(t, student.GradeFourth, st.Grade)
	assert.Equal(t, student.StudentID("ES001"), st.StudentID)
	assert.Equal(t, student.DivisionElementary, st.Division)
}

func TestGet_UnknownStudent(t *testing.T) {
	svc, _, _ := newElementary(t)

	_, err := svc.Get(context.Background(), "ES404")
	assert.True(t, shared.IsNotFound(err))
}

// fakeTopCache is an in-memory TopStudentsCache backed by JSON, mirroring
// the serialization behavior of the Redis implementation.
type fakeTopCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	hits    int
	sets    int
}

func newFakeTopCache() *fakeTopCache {
	return &fakeTopCache{entries: make(map[string][]byte)}
}

func (c *fakeTopCache) Get(_ context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.entries[key]
	if !ok {
		return shared.ErrNotFound
	}
	c.hits++
	return json.Unmarshal(raw, dest)
}

func (c *fakeTopCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
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

func TestElementaryTopStudents_UsesCache(t *testing.T) {
	repo := newFakeStudentRepo()
	cache := newFakeTopCache()
	svc := NewElementaryService(repo, &recordingNotifier{}, cache, testLogger())
	ctx := context.Background()

	st, err := svc.Register(ctx, elementaryRequest())
	require.NoError(t, err)
	st.AttendanceCount = 120
	require.NoError(t, repo.Update(ctx, st))

	first, err := svc.TopStudents(ctx)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, 1, cache.sets)
	assert.Equal(t, 0, cache.hits)

	second, err := svc.TopStudents(ctx)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, 1, cache.sets)
	assert.Equal(t, 1, cache.hits)
	assert.Equal(t, student.StudentID("ES001"), second[0].StudentID)
}
