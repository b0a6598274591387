// Package notification defines the outbound messaging collaborator the
// academy services use to reach students, parents and teachers.
package notification

import (
	"context"
)

// Notifier sends short messages to the people around a student. Sends are
// synchronous, best-effort and fire-and-forget: implementations log and
// swallow delivery failures rather than surfacing them to callers, and
// nothing is retried. A notification emitted before a later failure in the
// same operation is not compensated.
type Notifier interface {
	// NotifyParent sends a message to a parent's contact number.
	NotifyParent(ctx context.Context, phone, message string)

	// NotifyStudent sends a message to a student's own contact number.
	NotifyStudent(ctx context.Context, phone, message string)

	// NotifyTeacher sends a message to the academy staff channel.
	NotifyTeacher(ctx context.Context, message string)
}
