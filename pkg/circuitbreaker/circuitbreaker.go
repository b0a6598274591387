// Package circuitbreaker implements the circuit breaker pattern to guard
// calls to unreliable downstreams such as the parent notification gateway.
// No external dependencies - uses only standard library.
package circuitbreaker

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// State represents the circuit breaker state.
type State int

const (
	// StateClosed - normal operation, requests pass through.
	StateClosed State = iota
	// StateOpen - failures exceeded threshold, requests fail fast.
	StateOpen
	// StateHalfOpen - testing if service recovered.
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrCircuitOpen is returned when the circuit is open and requests fail fast.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// ErrTooManyRequests is returned in half-open state when request limit exceeded.
var ErrTooManyRequests = errors.New("too many requests in half-open state")

// Counts holds the statistics for the circuit breaker.
type Counts struct {
	Requests             uint32
	TotalSuccesses       uint32
	TotalFailures        uint32
	ConsecutiveSuccesses uint32
	ConsecutiveFailures  uint32
}

func (c *Counts) onRequest() {
	c.Requests++
}

func (c *Counts) onSuccess() {
	c.TotalSuccesses++
	c.ConsecutiveSuccesses++
	c.ConsecutiveFailures = 0
}

func (c *Counts) onFailure() {
	c.TotalFailures++
	c.ConsecutiveFailures++
	c.ConsecutiveSuccesses = 0
}

func (c *Counts) clear() {
	c.Requests = 0
	c.TotalSuccesses = 0
	c.TotalFailures = 0
	c.ConsecutiveSuccesses = 0
	c.ConsecutiveFailures = 0
}

// Config holds circuit breaker configuration.
type Config struct {
	// Name identifies the circuit breaker (for logging/metrics).
	Name string

	// MaxFailures is the number of consecutive failures before opening.
	// Default: 5
	MaxFailures uint32

	// Timeout is how long the circuit stays open before transitioning to half-open.
	// Default: 30s
	Timeout time.Duration

	// MaxHalfOpenRequests is the max concurrent requests allowed in half-open state.
	// Default: 1
	MaxHalfOpenRequests uint32

	// OnStateChange is called when the state changes.
	OnStateChange func(name string, from, to State)

	// IsSuccessful determines if an error counts as success.
	// If nil, any non-nil error is a failure.
	IsSuccessful func(err error) bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig(name string) Config {
	return Config{
		Name:                name,
		MaxFailures:         5,
		Timeout:             30 * time.Second,
		MaxHalfOpenRequests: 1,
	}
}

// Option configures a circuit breaker.
type Option func(*Config)

// WithMaxFailures sets the failure threshold.
func WithMaxFailures(n uint32) Option {
	return func(c *Config) {
		if n > 0 {
			c.MaxFailures = n
		}
	}
}

// WithTimeout sets the open state timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) {
		if d > 0 {
			c.Timeout = d
		}
	}
}

// WithMaxHalfOpenRequests sets max requests in half-open state.
func WithMaxHalfOpenRequests(n uint32) Option {
	return func(c *Config) {
		if n > 0 {
			c.MaxHalfOpenRequests = n
		}
	}
}

// WithOnStateChange sets the state change callback.
func WithOnStateChange(fn func(name string, from, to State)) Option {
	return func(c *Config) {
		c.OnStateChange = fn
	}
}

// WithIsSuccessful sets a custom success determination function.
func WithIsSuccessful(fn func(err error) bool) Option {
	return func(c *Config) {
		c.IsSuccessful = fn
	}
}

// CircuitBreaker implements the circuit breaker pattern.
type CircuitBreaker struct {
	config Config

	mu        sync.Mutex
	state     State
	counts    Counts
	expiry    time.Time // when open state expires
	nowFn     func() time.Time
}

// New creates a new CircuitBreaker.
func New(name string, opts ...Option) *CircuitBreaker {
	config := DefaultConfig(name)
	for _, opt := range opts {
		opt(&config)
	}
	return &CircuitBreaker{
		config: config,
		state:  StateClosed,
		nowFn:  time.Now,
	}
}

// Execute runs the operation if the circuit allows it.
func (cb *CircuitBreaker) Execute(operation func() error) error {
	if err := cb.beforeRequest(); err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			cb.afterRequest(fmt.Errorf("panic in operation: %v", r))
			panic(r)
		}
	}()

	err := operation()
	cb.afterRequest(err)
	return err
}

// beforeRequest checks if the request is allowed.
func (cb *CircuitBreaker) beforeRequest() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	now := cb.nowFn()

	switch cb.state {
	case StateOpen:
		if now.After(cb.expiry) {
			cb.setState(StateHalfOpen, now)
		} else {
			return ErrCircuitOpen
		}
	case StateHalfOpen:
		if cb.counts.Requests >= cb.config.MaxHalfOpenRequests {
			return ErrTooManyRequests
		}
	}

	cb.counts.onRequest()
	return nil
}

// afterRequest records the result of the request.
func (cb *CircuitBreaker) afterRequest(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	success := err == nil
	if cb.config.IsSuccessful != nil {
		success = cb.config.IsSuccessful(err)
	}

	if success {
		cb.onSuccess(cb.nowFn())
	} else {
		cb.onFailure(cb.nowFn())
	}
}

func (cb *CircuitBreaker) onSuccess(now time.Time) {
	cb.counts.onSuccess()

	if cb.state == StateHalfOpen {
		if cb.counts.ConsecutiveSuccesses >= cb.config.MaxHalfOpenRequests {
			cb.setState(StateClosed, now)
		}
	}
}

func (cb *CircuitBreaker) onFailure(now time.Time) {
	cb.counts.onFailure()

	switch cb.state {
	case StateClosed:
		if cb.counts.ConsecutiveFailures >= cb.config.MaxFailures {
			cb.setState(StateOpen, now)
		}
	case StateHalfOpen:
		cb.setState(StateOpen, now)
	}
}

// setState transitions to a new state. Must be called with lock held.
func (cb *CircuitBreaker) setState(newState State, now time.Time) {
	if cb.state == newState {
		return
	}

	oldState := cb.state
	cb.state = newState
	cb.counts.clear()

	if newState == StateOpen {
		cb.expiry = now.Add(cb.config.Timeout)
	}

	if cb.config.OnStateChange != nil {
		cb.config.OnStateChange(cb.config.Name, oldState, newState)
	}
}

// State returns the current state.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	now := cb.nowFn()
	if cb.state == StateOpen && now.After(cb.expiry) {
		cb.setState(StateHalfOpen, now)
	}

	return cb.state
}

// Counts returns a copy of the current counts.
func (cb *CircuitBreaker) Counts() Counts {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.counts
}

// Reset resets the circuit breaker to closed state.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.setState(StateClosed, cb.nowFn())
}

// IsOpen returns true if the circuit is open.
func (cb *CircuitBreaker) IsOpen() bool {
	return cb.State() == StateOpen
}

// IsClosed returns true if the circuit is closed.
func (cb *CircuitBreaker) IsClosed() bool {
	return cb.State() == StateClosed
}

// NotifierBreaker returns a circuit breaker tuned for the SMS/notification
// gateway: trips fast so slow notification calls never stall attendance flow.
func NotifierBreaker() *CircuitBreaker {
	return New("notifier",
		WithMaxFailures(3),
		WithTimeout(20*time.Second),
		WithMaxHalfOpenRequests(2),
	)
}
