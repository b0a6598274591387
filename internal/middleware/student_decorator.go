package middleware

import (
	"context"

	studentsvc "github.com/aslan-academy/academy-management/internal/service/student"

	"github.com/aslan-academy/academy-management/internal/domain/student"
)

// InstrumentedStudentService wraps the student policy engine with the
// cross-cutting advice. The wrapped operations mirror the markers of the
// original design: Register is logged and monitored, Update and
// UpdateScore are logged, CheckAttendance carries the attendance watch,
// TopStudents is monitored. Get and DivisionType pass through.
type InstrumentedStudentService struct {
	inner      studentsvc.Management
	execLog    *ExecutionLogger
	monitor    *PerformanceMonitor
	attendance *AttendanceWatch
}

// NewInstrumentedStudentService wires the advice around a policy engine.
func NewInstrumentedStudentService(
	inner studentsvc.Management,
	execLog *ExecutionLogger,
	monitor *PerformanceMonitor,
	attendance *AttendanceWatch,
) *InstrumentedStudentService {
	return &InstrumentedStudentService{
		inner:      inner,
		execLog:    execLog,
		monitor:    monitor,
		attendance: attendance,
	}
}

// Register is logged (outermost) and monitored.
func (s *InstrumentedStudentService) Register(ctx context.Context, req studentsvc.Request) (*student.Student, error) {
	var created *student.Student

	err := s.execLog.Around("StudentService.Register", func() error {
		return s.monitor.Around(ctx, "StudentService.Register", func() error {
			var err error
			created, err = s.inner.Register(ctx, req)
			return err
		})
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// Get passes through unwrapped.
func (s *InstrumentedStudentService) Get(ctx context.Context, studentID student.StudentID) (*student.Student, error) {
	return s.inner.Get(ctx, studentID)
}

// Update is logged.
func (s *InstrumentedStudentService) Update(ctx context.Context, studentID student.StudentID, req studentsvc.Request) (*student.Student, error) {
	var updated *student.Student

	err := s.execLog.Around("StudentService.Update", func() error {
		var err error
		updated, err = s.inner.Update(ctx, studentID, req)
		return err
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// CheckAttendance carries the lateness watch: the before advice always
// runs, the after advice only on success.
func (s *InstrumentedStudentService) CheckAttendance(ctx context.Context, studentID student.StudentID) error {
	s.attendance.Before(ctx, studentID)

	if err := s.inner.CheckAttendance(ctx, studentID); err != nil {
		return err
	}

	s.attendance.AfterSuccess(studentID)
	return nil
}

// UpdateScore is logged.
func (s *InstrumentedStudentService) UpdateScore(ctx context.Context, studentID student.StudentID, score float64) error {
	return s.execLog.Around("StudentService.UpdateScore", func() error {
		return s.inner.UpdateScore(ctx, studentID, score)
	})
}

// TopStudents is monitored.
func (s *InstrumentedStudentService) TopStudents(ctx context.Context) ([]*student.Student, error) {
	var top []*student.Student

	err := s.monitor.Around(ctx, "StudentService.TopStudents", func() error {
		var err error
		top, err = s.inner.TopStudents(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	return top, nil
}

// DivisionType passes through unwrapped.
func (s *InstrumentedStudentService) DivisionType() string {
	return s.inner.DivisionType()
}
