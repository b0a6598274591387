package student

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/aslan-academy/academy-management/internal/domain/notification"
	"github.com/aslan-academy/academy-management/internal/domain/shared"
	"github.com/aslan-academy/academy-management/internal/domain/student"
	"github.com/aslan-academy/academy-management/pkg/logger"
)

// Middle school division policy constants.
const (
	// middleDefaultNotes is stamped on new registrations without notes.
	middleDefaultNotes = "new registration - placement test scheduled"

	// middleRateCycle is the check-in count the attendance rate is
	// computed against once reached. Counts above the cycle produce
	// rates over 100%; that behavior is intentional pending product
	// clarification.
	middleRateCycle = 50

	// middleRateWarnBelow is the attendance-rate percentage under which
	// the student is warned.
	middleRateWarnBelow = 90.0

	// middleParentAverage is the running-average threshold that earns a
	// parent notification.
	middleParentAverage = 90.0

	// middleTopAverage is the minimum running average for the division's
	// top-student list.
	middleTopAverage = 90.0
)

// MiddleService is the middle school division variant. Students are the
// primary notification audience; parents receive copies only on
// registration and high averages.
type MiddleService struct {
	repo     student.Repository
	notifier notification.Notifier
	cache    TopStudentsCache
	log      *logger.Logger
}

// NewMiddleService creates the middle school policy engine. cache may be nil.
func NewMiddleService(repo student.Repository, notifier notification.Notifier, cache TopStudentsCache, log *logger.Logger) *MiddleService {
	return &MiddleService{
		repo:     repo,
		notifier: notifier,
		cache:    cache,
		log:      log.With(logger.Component("student_service"), logger.Division(student.DivisionMiddle.String())),
	}
}

// Register validates and stores a new middle school student. The
// student's own contact number is mandatory; a parent number is optional
// and only used for the registration copy.
func (s *MiddleService) Register(ctx context.Context, req Request) (*student.Student, error) {
	s.log.Info("registering middle school student", logger.StudentNo(req.StudentID.String()))

	exists, err := s.repo.ExistsByStudentID(ctx, req.StudentID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.ErrStudentAlreadyExists
	}

	notes := req.SpecialNotes
	if notes == "" {
		notes = middleDefaultNotes
	}

	st, err := student.NewStudent(student.NewStudentParams{
		ID:           uuid.NewString(),
		StudentID:    req.StudentID,
		Name:         req.Name,
		BirthDate:    req.BirthDate,
		Phone:        req.Phone,
		ParentPhone:  req.ParentPhone,
		Grade:        req.Grade,
		Division:     student.DivisionMiddle,
		SpecialNotes: notes,
	})
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, st); err != nil {
		return nil, err
	}

	s.notifier.NotifyStudent(ctx, st.Phone.String(),
		fmt.Sprintf("%s, you are registered to the middle school division. Study hard!", st.Name))

	if st.ParentPhone.IsSet() {
		s.notifier.NotifyParent(ctx, st.ParentPhone.String(),
			fmt.Sprintf("%s has been registered to the middle school division.", st.Name))
	}

	return st, nil
}

// Get returns a student by academy student number.
func (s *MiddleService) Get(ctx context.Context, studentID student.StudentID) (*student.Student, error) {
	return s.repo.GetByStudentID(ctx, studentID)
}

// Update applies a partial update of the mutable fields.
func (s *MiddleService) Update(ctx context.Context, studentID student.StudentID, req Request) (*student.Student, error) {
	st, err := s.repo.GetByStudentID(ctx, studentID)
	if err != nil {
		return nil, err
	}

	err = st.ApplyUpdate(student.UpdateDetails{
		Name:         req.Name,
		Phone:        req.Phone,
		ParentPhone:  req.ParentPhone,
		Grade:        req.Grade,
		SpecialNotes: req.SpecialNotes,
	})
	if err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, st); err != nil {
		return nil, err
	}

	return st, nil
}

// CheckAttendance records one check-in. The student is notified on every
// check-in; once the count reaches the 50-day cycle, a low attendance
// rate triggers an additional warning.
func (s *MiddleService) CheckAttendance(ctx context.Context, studentID student.StudentID) error {
	st, err := s.repo.GetByStudentID(ctx, studentID)
	if err != nil {
		return err
	}

	total := st.CheckIn()

	if err := s.repo.Update(ctx, st); err != nil {
		return err
	}

	s.log.Info("attendance checked",
		logger.StudentNo(studentID.String()),
		logger.Attendance(total),
	)

	s.notifier.NotifyStudent(ctx, st.Phone.String(),
		fmt.Sprintf("Attendance checked! (%d days total)", total))

	if total >= middleRateCycle {
		rate := float64(total) / float64(middleRateCycle) * 100
		if rate < middleRateWarnBelow {
			s.notifier.NotifyStudent(ctx, st.Phone.String(),
				fmt.Sprintf("Your attendance rate is %.1f%%. Please watch your attendance!", rate))
		}
	}

	return nil
}

// UpdateScore folds a score into the running average. The student always
// gets a score summary with the letter grade; the parent is copied when
// the running average reaches 90.
func (s *MiddleService) UpdateScore(ctx context.Context, studentID student.StudentID, score float64) error {
	st, err := s.repo.GetByStudentID(ctx, studentID)
	if err != nil {
		return err
	}

	avg, err := st.RecordScore(score)
	if err != nil {
		return err
	}

	if err := s.repo.Update(ctx, st); err != nil {
		return err
	}

	grade := student.LetterGrade(avg)

	s.log.Info("score recorded",
		logger.StudentNo(studentID.String()),
		logger.Score(score),
		logger.Float64("average", avg),
		logger.String("letter_grade", grade),
	)

	s.notifier.NotifyStudent(ctx, st.Phone.String(),
		fmt.Sprintf("Score recorded! Score: %.0f, average: %.1f, grade: %s", score, avg, grade))

	if avg >= middleParentAverage && st.ParentPhone.IsSet() {
		s.notifier.NotifyParent(ctx, st.ParentPhone.String(),
			fmt.Sprintf("%s's average is now %.1f points! (grade: %s)", st.Name, avg, grade))
	}

	return nil
}

// TopStudents returns middle school students with a running average of
// at least 90, filtered in the storage query.
func (s *MiddleService) TopStudents(ctx context.Context) ([]*student.Student, error) {
	s.log.Info("listing top middle school students",
		logger.Float64("min_average", middleTopAverage))

	key := "top:" + student.DivisionMiddle.String()

	if s.cache != nil {
		var cached []*student.Student
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return cached, nil
		}
	}

	top, err := s.repo.FindHighAchievers(ctx, student.DivisionMiddle, middleTopAverage)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, top, topStudentsCacheTTL); err != nil {
			s.log.Warn("failed to cache top students", logger.Err(err))
		}
	}

	return top, nil
}

// DivisionType returns the fixed label of this variant.
func (s *MiddleService) DivisionType() string {
	return "MIDDLE (middle school division)"
}
