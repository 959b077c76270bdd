package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/Veraticus/stretchia/pkg/notification"
	"github.com/Veraticus/stretchia/pkg/types"
)

// MockNotifier is a thread-safe mock implementation of notification.Notifier for testing
type MockNotifier struct {
	mu            sync.Mutex
	notifications []notification.Notification
	attempts      []notification.Notification // Track all send attempts
	sendErr       error
	sendDelay     time.Duration
}

// NewMockNotifier creates a new mock notifier
func NewMockNotifier() *MockNotifier {
	return &MockNotifier{
		notifications: []notification.Notification{},
		attempts:      []notification.Notification{},
	}
}

// Send implements the Notifier interface
func (m *MockNotifier) Send(n notification.Notification) error {
	m.mu.Lock()
	delay := m.sendDelay
	m.mu.Unlock()
	if delay > 0 {
		time.Sleep(delay)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.attempts = append(m.attempts, n)
	if m.sendErr != nil {
		return m.sendErr
	}
	m.notifications = append(m.notifications, n)
	return nil
}

// GetNotifications returns a copy of successfully sent notifications
func (m *MockNotifier) GetNotifications() []notification.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]notification.Notification, len(m.notifications))
	copy(result, m.notifications)
	return result
}

// GetAttempts returns a copy of all attempted sends (including failures)
func (m *MockNotifier) GetAttempts() []notification.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]notification.Notification, len(m.attempts))
	copy(result, m.attempts)
	return result
}

// SetError sets the error to return on Send calls
func (m *MockNotifier) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sendErr = err
}

// SetDelay sets a delay before each Send call
func (m *MockNotifier) SetDelay(delay time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sendDelay = delay
}

// Clear resets the mock state
func (m *MockNotifier) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifications = []notification.Notification{}
	m.attempts = []notification.Notification{}
	m.sendErr = nil
	m.sendDelay = 0
}

// MockProbe is a scripted IdleProbe. Queued values are returned in order;
// once exhausted the fallback value is returned.
type MockProbe struct {
	mu        sync.Mutex
	queue     []uint64
	fallback  uint64
	callCount int
}

// NewMockProbe creates a probe that reports fallback idle seconds.
func NewMockProbe(fallback uint64) *MockProbe {
	return &MockProbe{fallback: fallback}
}

// IdleSeconds implements interfaces.IdleProbe
func (m *MockProbe) IdleSeconds() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount++
	if len(m.queue) > 0 {
		v := m.queue[0]
		m.queue = m.queue[1:]
		return v
	}
	return m.fallback
}

// Queue appends values returned by subsequent calls.
func (m *MockProbe) Queue(values ...uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, values...)
}

// SetIdle changes the fallback value.
func (m *MockProbe) SetIdle(idleS uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallback = idleS
}

// GetCallCount returns how many times IdleSeconds was called
func (m *MockProbe) GetCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// RenderCall records one SetIndicator call.
type RenderCall struct {
	Stage types.Stage
	AFK   bool
}

// MockRenderer records indicator updates.
type MockRenderer struct {
	mu    sync.Mutex
	calls []RenderCall
	err   error
	panic bool
}

// NewMockRenderer creates a new mock renderer
func NewMockRenderer() *MockRenderer {
	return &MockRenderer{}
}

// SetIndicator implements interfaces.Renderer
func (m *MockRenderer) SetIndicator(stage types.Stage, afk bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, RenderCall{Stage: stage, AFK: afk})
	if m.panic {
		panic("renderer exploded")
	}
	return m.err
}

// SetError sets the error returned by SetIndicator
func (m *MockRenderer) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// SetPanic makes SetIndicator panic after recording the call.
func (m *MockRenderer) SetPanic(p bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.panic = p
}

// GetCalls returns a copy of recorded calls
func (m *MockRenderer) GetCalls() []RenderCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]RenderCall, len(m.calls))
	copy(result, m.calls)
	return result
}

// MockSink records published payloads.
type MockSink struct {
	mu       sync.Mutex
	payloads []types.TickPayload
}

// NewMockSink creates a new mock event sink
func NewMockSink() *MockSink {
	return &MockSink{}
}

// Publish implements interfaces.EventSink
func (m *MockSink) Publish(p types.TickPayload) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payloads = append(m.payloads, p)
}

// GetPayloads returns a copy of published payloads
func (m *MockSink) GetPayloads() []types.TickPayload {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]types.TickPayload, len(m.payloads))
	copy(result, m.payloads)
	return result
}

// MockExporter records exported workouts.
type MockExporter struct {
	mu       sync.Mutex
	exported []types.Workout
	err      error
}

// NewMockExporter creates a new mock exporter
func NewMockExporter() *MockExporter {
	return &MockExporter{}
}

// Export implements interfaces.SessionExporter
func (m *MockExporter) Export(_ context.Context, w types.Workout) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.exported = append(m.exported, w)
	return nil
}

// SetError sets the error returned by Export
func (m *MockExporter) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// GetExported returns a copy of exported workouts
func (m *MockExporter) GetExported() []types.Workout {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]types.Workout, len(m.exported))
	copy(result, m.exported)
	return result
}

// MockRateLimiter is a mock implementation of interfaces.RateLimiter for testing
type MockRateLimiter struct {
	mu          sync.Mutex
	allowResult bool
	allowCount  int
	resetCount  int
}

// NewMockRateLimiter creates a new mock rate limiter
func NewMockRateLimiter(allowResult bool) *MockRateLimiter {
	return &MockRateLimiter{
		allowResult: allowResult,
	}
}

// Allow implements the RateLimiter interface
func (m *MockRateLimiter) Allow() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.allowCount++
	return m.allowResult
}

// Reset implements the RateLimiter interface
func (m *MockRateLimiter) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetCount++
}

// SetAllowResult sets the result that Allow() will return
func (m *MockRateLimiter) SetAllowResult(allow bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.allowResult = allow
}

// GetAllowCount returns how many times Allow was called
func (m *MockRateLimiter) GetAllowCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.allowCount
}

// GetResetCount returns how many times Reset was called
func (m *MockRateLimiter) GetResetCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resetCount
}
