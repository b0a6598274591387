// Package notify implements the notification.Notifier port. The academy
// has no real SMS contract yet, so LogNotifier writes the messages that
// would be sent to the structured log. Sends are guarded by a circuit
// breaker so a misbehaving gateway cannot stall the calling operation.
package notify

import (
	"context"
	"time"

	"github.com/aslan-academy/academy-management/pkg/circuitbreaker"
	"github.com/aslan-academy/academy-management/pkg/logger"
)

// channel names used in log output and breaker wiring.
const (
	channelParent  = "parent"
	channelStudent = "student"
	channelTeacher = "teacher"
)

// Sender delivers one message to one recipient. Implementations talk to
// the actual gateway (SMS provider, chat webhook).
type Sender interface {
	Send(ctx context.Context, channel, recipient, message string) error
}

// SenderFunc adapts a function to the Sender interface.
type SenderFunc func(ctx context.Context, channel, recipient, message string) error

// Send calls the wrapped function.
func (f SenderFunc) Send(ctx context.Context, channel, recipient, message string) error {
	return f(ctx, channel, recipient, message)
}

// LogNotifier implements notification.Notifier. Every send goes through
// the circuit breaker; failures and open-circuit rejections are logged
// and swallowed, never returned to the caller.
type LogNotifier struct {
	log     *logger.Logger
	breaker *circuitbreaker.CircuitBreaker
	sender  Sender
	timeout time.Duration
}

// Option configures a LogNotifier.
type Option func(*LogNotifier)

// WithSender replaces the default log-only delivery with a real gateway.
func WithSender(s Sender) Option {
	return func(n *LogNotifier) { n.sender = s }
}

// WithTimeout bounds how long one delivery may take.
func WithTimeout(d time.Duration) Option {
	return func(n *LogNotifier) {
		if d > 0 {
			n.timeout = d
		}
	}
}

// NewLogNotifier creates a notifier that logs deliveries.
func NewLogNotifier(log *logger.Logger, opts ...Option) *LogNotifier {
	n := &LogNotifier{
		log:     log.With(logger.Component("notifier")),
		breaker: circuitbreaker.NotifierBreaker(),
		timeout: 3 * time.Second,
	}

	for _, opt := range opts {
		opt(n)
	}

	if n.sender == nil {
		n.sender = SenderFunc(func(ctx context.Context, channel, recipient, message string) error {
			n.log.Info("notification delivered",
				logger.String("channel", channel),
				logger.String("recipient", recipient),
				logger.String("message", message),
			)
			return nil
		})
	}

	return n
}

// NotifyParent sends a message to a parent's contact number.
func (n *LogNotifier) NotifyParent(ctx context.Context, phone, message string) {
	n.deliver(ctx, channelParent, phone, message)
}

// NotifyStudent sends a message to a student's own contact number.
func (n *LogNotifier) NotifyStudent(ctx context.Context, phone, message string) {
	n.deliver(ctx, channelStudent, phone, message)
}

// NotifyTeacher sends a message to the academy staff channel.
func (n *LogNotifier) NotifyTeacher(ctx context.Context, message string) {
	n.deliver(ctx, channelTeacher, "", message)
}

// deliver pushes one message through the breaker. Errors end here.
func (n *LogNotifier) deliver(ctx context.Context, channel, recipient, message string) {
	sendCtx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	err := n.breaker.Execute(func() error {
		return n.sender.Send(sendCtx, channel, recipient, message)
	})
	if err != nil {
		n.log.Warn("notification dropped",
			logger.String("channel", channel),
			logger.Err(err),
		)
	}
}
