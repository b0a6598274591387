package middleware

import (
	"context"

	lecturesvc "github.com/aslan-academy/academy-management/internal/service/lecture"

	"github.com/aslan-academy/academy-management/internal/domain/lecture"
	"github.com/aslan-academy/academy-management/internal/domain/member"
	"github.com/aslan-academy/academy-management/internal/domain/student"
)

// InstrumentedLectureService wraps the lecture service with execution
// logging on the write path and the listings. The calendar projection,
// single lookup and enrollment operations pass through.
type InstrumentedLectureService struct {
	inner   lecturesvc.Management
	execLog *ExecutionLogger
}

// NewInstrumentedLectureService wires the advice around a lecture service.
func NewInstrumentedLectureService(inner lecturesvc.Management, execLog *ExecutionLogger) *InstrumentedLectureService {
	return &InstrumentedLectureService{
		inner:   inner,
		execLog: execLog,
	}
}

// CreateLecture is logged.
func (s *InstrumentedLectureService) CreateLecture(ctx context.Context, teacher *member.Member, req lecturesvc.CreateRequest) (*lecture.Lecture, error) {
	var created *lecture.Lecture

	err := s.execLog.Around("LectureService.CreateLecture", func() error {
		var err error
		created, err = s.inner.CreateLecture(ctx, teacher, req)
		return err
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// ListAll is logged.
func (s *InstrumentedLectureService) ListAll(ctx context.Context) ([]*lecture.Lecture, error) {
	var lectures []*lecture.Lecture

	err := s.execLog.Around("LectureService.ListAll", func() error {
		var err error
		lectures, err = s.inner.ListAll(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	return lectures, nil
}

// ListByTeacher is logged.
func (s *InstrumentedLectureService) ListByTeacher(ctx context.Context, teacher *member.Member) ([]*lecture.Lecture, error) {
	var lectures []*lecture.Lecture

	err := s.execLog.Around("LectureService.ListByTeacher", func() error {
		var err error
		lectures, err = s.inner.ListByTeacher(ctx, teacher)
		return err
	})
	if err != nil {
		return nil, err
	}

	return lectures, nil
}

// Get passes through unwrapped.
func (s *InstrumentedLectureService) Get(ctx context.Context, id string) (*lecture.Lecture, error) {
	return s.inner.Get(ctx, id)
}

// CalendarEvents passes through unwrapped.
func (s *InstrumentedLectureService) CalendarEvents(ctx context.Context) ([]lecture.Event, error) {
	return s.inner.CalendarEvents(ctx)
}

// Enroll passes through unwrapped.
func (s *InstrumentedLectureService) Enroll(ctx context.Context, teacher *member.Member, lectureID, studentID string) error {
	return s.inner.Enroll(ctx, teacher, lectureID, studentID)
}

// Withdraw passes through unwrapped.
func (s *InstrumentedLectureService) Withdraw(ctx context.Context, teacher *member.Member, lectureID, studentID string) error {
	return s.inner.Withdraw(ctx, teacher, lectureID, studentID)
}

// EnrolledStudents passes through unwrapped.
func (s *InstrumentedLectureService) EnrolledStudents(ctx context.Context, teacher *member.Member, lectureID string) ([]*student.Student, error) {
	return s.inner.EnrolledStudents(ctx, teacher, lectureID)
}
