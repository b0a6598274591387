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

// Elementary division policy constants.
const (
	// elementaryDefaultNotes is stamped on new registrations without notes.
	elementaryDefaultNotes = "new registration - pickup consent form required"

	// elementaryMilestone is the attendance count that triggers the
	// perfect-attendance notification, fired on that check-in only.
	elementaryMilestone = 100

	// elementaryTopAttendance is the minimum check-in count for the
	// division's top-student list.
	elementaryTopAttendance = 80

	// elementaryPraiseScore is the single-score threshold for a parent
	// praise notification.
	elementaryPraiseScore = 90.0
)

// ElementaryService is the elementary division variant. Parents are the
// primary notification audience: they receive the welcome, every
// check-in, the 100-day milestone, and score praise.
type ElementaryService struct {
	repo     student.Repository
	notifier notification.Notifier
	cache    TopStudentsCache
	log      *logger.Logger
}

// NewElementaryService creates the elementary policy engine. cache may be nil.
func NewElementaryService(repo student.Repository, notifier notification.Notifier, cache TopStudentsCache, log *logger.Logger) *ElementaryService {
	return &ElementaryService{
		repo:     repo,
		notifier: notifier,
		cache:    cache,
		log:      log.With(logger.Component("student_service"), logger.Division(student.DivisionElementary.String())),
	}
}

// Register validates and stores a new elementary student. A parent
// contact number is mandatory.
func (s *ElementaryService) Register(ctx context.Context, req Request) (*student.Student, error) {
	s.log.Info("registering elementary student", logger.StudentNo(req.StudentID.String()))

	exists, err := s.repo.ExistsByStudentID(ctx, req.StudentID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.ErrStudentAlreadyExists
	}

	notes := req.SpecialNotes
	if notes == "" {
		notes = elementaryDefaultNotes
	}

	st, err := student.NewStudent(student.NewStudentParams{
		ID:           uuid.NewString(),
		StudentID:    req.StudentID,
		Name:         req.Name,
		BirthDate:    req.BirthDate,
		Phone:        req.Phone,
		ParentPhone:  req.ParentPhone,
		Grade:        req.Grade,
		Division:     student.DivisionElementary,
		SpecialNotes: notes,
	})
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, st); err != nil {
		return nil, err
	}

	s.notifier.NotifyParent(ctx, st.ParentPhone.String(),
		fmt.Sprintf("%s has been registered to the elementary division!", st.Name))

	return st, nil
}

// Get returns a student by academy student number.
func (s *ElementaryService) Get(ctx context.Context, studentID student.StudentID) (*student.Student, error) {
	return s.repo.GetByStudentID(ctx, studentID)
}

// Update applies a partial update of the mutable fields.
func (s *ElementaryService) Update(ctx context.Context, studentID student.StudentID, req Request) (*student.Student, error) {
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

// CheckAttendance records one check-in. The parent is notified on every
// check-in, and once more when the count reaches exactly 100.
func (s *ElementaryService) CheckAttendance(ctx context.Context, studentID student.StudentID) error {
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

	s.notifier.NotifyParent(ctx, st.ParentPhone.String(),
		fmt.Sprintf("%s checked in today! (%d days total)", st.Name, total))

	if total == elementaryMilestone {
		s.notifier.NotifyParent(ctx, st.ParentPhone.String(),
			fmt.Sprintf("Congratulations! %s reached 100 days of attendance!", st.Name))
	}

	return nil
}

// UpdateScore folds a score into the running average. A single score of
// 90 or above earns a parent praise notification.
func (s *ElementaryService) UpdateScore(ctx context.Context, studentID student.StudentID, score float64) error {
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

	s.log.Info("score recorded",
		logger.StudentNo(studentID.String()),
		logger.Score(score),
		logger.Float64("average", avg),
	)

	if score >= elementaryPraiseScore {
		s.notifier.NotifyParent(ctx, st.ParentPhone.String(),
			fmt.Sprintf("%s scored %.0f points! One praise sticker earned!", st.Name, score))
	}

	return nil
}

// TopStudents returns elementary students with at least 80 check-ins.
func (s *ElementaryService) TopStudents(ctx context.Context) ([]*student.Student, error) {
	s.log.Info("listing top elementary students",
		logger.Int("min_attendance", elementaryTopAttendance))

	key := "top:" + student.DivisionElementary.String()

	if s.cache != nil {
		var cached []*student.Student
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return cached, nil
		}
	}

	top, err := s.repo.FindTopByAttendance(ctx, student.DivisionElementary, elementaryTopAttendance)
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
func (s *ElementaryService) DivisionType() string {
	return "ELEMENTARY (elementary school division)"
}
