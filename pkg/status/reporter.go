package status

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Veraticus/stretchia/pkg/interfaces"
	"github.com/Veraticus/stretchia/pkg/metrics"
)

// Reporter tracks reminder deliveries: it drives the status line marker,
// counts outcomes and logs how long each send took.
type Reporter struct {
	indicator *Indicator
	logger    logrus.FieldLogger
	now       func() time.Time

	mu      sync.Mutex
	started time.Time
}

var _ interfaces.StatusReporter = (*Reporter)(nil)

// NewReporter creates a reporter. indicator and logger may be nil.
func NewReporter(indicator *Indicator, logger logrus.FieldLogger) *Reporter {
	return &Reporter{
		indicator: indicator,
		logger:    logger,
		now:       time.Now,
	}
}

// ReportSending marks the start of a delivery.
func (r *Reporter) ReportSending() {
	r.mu.Lock()
	r.started = r.now()
	r.mu.Unlock()
	r.setStatus(StatusSending)
}

// ReportSuccess records a delivered reminder.
func (r *Reporter) ReportSuccess() {
	metrics.RecordReminder(metrics.ReminderSent)
	r.setStatus(StatusSuccess)
	if r.logger != nil {
		r.logger.WithField("took", r.elapsed()).Debug("reminder delivered")
	}
}

// ReportFailure records a failed reminder.
func (r *Reporter) ReportFailure() {
	metrics.RecordReminder(metrics.ReminderFailed)
	r.setStatus(StatusFailed)
	if r.logger != nil {
		r.logger.WithField("took", r.elapsed()).Warn("reminder not delivered")
	}
}

func (r *Reporter) setStatus(s Status) {
	if r.indicator != nil {
		r.indicator.SetStatus(s)
	}
}

func (r *Reporter) elapsed() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started.IsZero() {
		return 0
	}
	return r.now().Sub(r.started)
}
