// Package middleware implements the cross-cutting policy layer as
// explicit decorators. The original design marks methods declaratively;
// here the wiring in cmd/server composes the wrappers by hand, logger
// outermost, performance monitor next, domain logic innermost. None of
// the wrappers ever alters a result or swallows a domain error.
package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/aslan-academy/academy-management/internal/domain/notification"
	"github.com/aslan-academy/academy-management/internal/domain/student"
	"github.com/aslan-academy/academy-management/pkg/logger"
	"github.com/aslan-academy/academy-management/pkg/timeutil"
)

// ─────────────────────────────────────────────────────────────────────────────
// Execution logger (around advice)
// ─────────────────────────────────────────────────────────────────────────────

// ExecutionLogger wraps an operation with start / elapsed / failure logs.
type ExecutionLogger struct {
	log *logger.Logger
}

// NewExecutionLogger creates an execution logger.
func NewExecutionLogger(log *logger.Logger) *ExecutionLogger {
	return &ExecutionLogger{log: log.With(logger.Component("execution_logger"))}
}

// Around runs fn, logging its start, elapsed time on success, or the
// failure on error. The error is re-raised unchanged.
func (l *ExecutionLogger) Around(op string, fn func() error) error {
	l.log.Info("execution started", logger.Operation(op))
	start := time.Now()

	if err := fn(); err != nil {
		l.log.Error("execution failed",
			logger.Operation(op),
			logger.Err(err),
		)
		return err
	}

	l.log.Info("execution completed",
		logger.Operation(op),
		logger.Latency(time.Since(start)),
	)
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Performance monitor (around advice)
// ─────────────────────────────────────────────────────────────────────────────

// slowThresholdDefault is the elapsed time past which an operation counts
// as degraded.
const slowThresholdDefault = 3 * time.Second

// PerformanceMonitor measures an operation and alerts the teacher when it
// runs slow. It never alters the result.
type PerformanceMonitor struct {
	notifier  notification.Notifier
	log       *logger.Logger
	threshold time.Duration
}

// NewPerformanceMonitor creates a performance monitor with the default
// 3 second threshold.
func NewPerformanceMonitor(notifier notification.Notifier, log *logger.Logger) *PerformanceMonitor {
	return &PerformanceMonitor{
		notifier:  notifier,
		log:       log.With(logger.Component("performance_monitor")),
		threshold: slowThresholdDefault,
	}
}

// WithThreshold overrides the slow threshold. For tests.
func (m *PerformanceMonitor) WithThreshold(d time.Duration) *PerformanceMonitor {
	if d > 0 {
		m.threshold = d
	}
	return m
}

// Around runs fn and measures it. Past the threshold it warns and sends a
// teacher notification; otherwise it emits a debug measurement. A failed
// operation propagates without measurement.
func (m *PerformanceMonitor) Around(ctx context.Context, op string, fn func() error) error {
	start := time.Now()

	if err := fn(); err != nil {
		return err
	}

	elapsed := time.Since(start)

	if elapsed > m.threshold {
		m.log.Warn("slow operation detected",
			logger.Operation(op),
			logger.Latency(elapsed),
		)
		m.notifier.NotifyTeacher(ctx,
			fmt.Sprintf("Performance alert: %s took %dms", op, elapsed.Milliseconds()))
	} else {
		m.log.Debug("operation measured",
			logger.Operation(op),
			logger.Latency(elapsed),
		)
	}

	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Attendance lateness watch (before + after-returning advice)
// ─────────────────────────────────────────────────────────────────────────────

// lateCutoff: check-ins after this local time count as late.
const (
	lateCutoffHour   = 9
	lateCutoffMinute = 0
)

// AttendanceWatch inspects attendance check-ins. Before the check-in it
// flags lateness to the teacher; after a successful check-in it logs
// completion. A failed check-in gets no after action.
type AttendanceWatch struct {
	notifier     notification.Notifier
	log          *logger.Logger
	now          func() time.Time
	cutoffHour   int
	cutoffMinute int
}

// NewAttendanceWatch creates an attendance watch using academy local time.
func NewAttendanceWatch(notifier notification.Notifier, log *logger.Logger) *AttendanceWatch {
	return &AttendanceWatch{
		notifier:     notifier,
		log:          log.With(logger.Component("attendance_watch")),
		now:          timeutil.Now,
		cutoffHour:   lateCutoffHour,
		cutoffMinute: lateCutoffMinute,
	}
}

// WithClock replaces the time source. For tests.
func (w *AttendanceWatch) WithClock(now func() time.Time) *AttendanceWatch {
	w.now = now
	return w
}

// WithCutoff overrides the lateness cutoff.
func (w *AttendanceWatch) WithCutoff(hour, minute int) *AttendanceWatch {
	w.cutoffHour = hour
	w.cutoffMinute = minute
	return w
}

// Before runs ahead of a check-in. After the 09:00 cutoff it warns and
// notifies the teacher of the late arrival.
func (w *AttendanceWatch) Before(ctx context.Context, studentID student.StudentID) {
	now := w.now()

	w.log.Info("attendance check starting",
		logger.StudentNo(studentID.String()),
		logger.Time("at", now),
	)

	if timeutil.AfterClock(now, w.cutoffHour, w.cutoffMinute) {
		w.log.Warn("late check-in detected",
			logger.StudentNo(studentID.String()),
			logger.Time("at", now),
		)
		w.notifier.NotifyTeacher(ctx,
			fmt.Sprintf("Student %s checked in at %s (late)",
				studentID, timeutil.ToSeoul(now).Format("15:04:05")))
	}
}

// AfterSuccess runs after a check-in that completed without error.
func (w *AttendanceWatch) AfterSuccess(studentID student.StudentID) {
	w.log.Info("attendance check completed", logger.StudentNo(studentID.String()))
}
