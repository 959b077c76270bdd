package notification

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/Veraticus/stretchia/pkg/interfaces"
)

// Manager applies rate limiting and status reporting around a Notifier and
// sends in the background so callers never wait on the network.
type Manager struct {
	notifier    Notifier
	rateLimiter interfaces.RateLimiter
	reporter    interfaces.StatusReporter
	logger      logrus.FieldLogger

	wg sync.WaitGroup
}

// NewManager creates a new notification manager. rateLimiter and reporter may be nil.
func NewManager(notifier Notifier, rateLimiter interfaces.RateLimiter, reporter interfaces.StatusReporter, logger logrus.FieldLogger) *Manager {
	return &Manager{
		notifier:    notifier,
		rateLimiter: rateLimiter,
		reporter:    reporter,
		logger:      logger,
	}
}

// Send queues n for delivery. It reports false when the rate limit dropped it.
func (m *Manager) Send(n Notification) bool {
	if m.rateLimiter != nil && !m.rateLimiter.Allow() {
		m.logger.WithField("title", n.Title).Debug("notification rate limited")
		return false
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.deliver(n)
	}()
	return true
}

func (m *Manager) deliver(n Notification) {
	if m.reporter != nil {
		m.reporter.ReportSending()
	}
	if err := m.notifier.Send(n); err != nil {
		if m.reporter != nil {
			m.reporter.ReportFailure()
		}
		m.logger.WithError(err).WithField("title", n.Title).Warn("notification failed")
		return
	}
	if m.reporter != nil {
		m.reporter.ReportSuccess()
	}
}

// Close waits for in-flight notifications.
func (m *Manager) Close() error {
	m.wg.Wait()
	return nil
}
