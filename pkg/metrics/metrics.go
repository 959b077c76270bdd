// Package metrics exposes Prometheus collectors for the tick loop and its collaborators.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Veraticus/stretchia/pkg/types"
)

const namespace = "stretchia"

var (
	ticksTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "timer",
		Name:      "ticks_total",
		Help:      "Number of coordinator intervals processed.",
	})
	tickPanicsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "timer",
		Name:      "tick_panics_total",
		Help:      "Number of intervals skipped after a recovered panic.",
	})
	rendersTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "render",
		Name:      "updates_total",
		Help:      "Number of indicator updates issued on stage or AFK change.",
	})
	renderFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "render",
		Name:      "failures_total",
		Help:      "Number of indicator updates that returned an error.",
	})
	persistenceFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "persistence",
		Name:      "failures_total",
		Help:      "Persistence calls that failed and were dropped, by operation.",
	}, []string{"op"})
	sessionsRecordedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "persistence",
		Name:      "sessions_recorded_total",
		Help:      "Completed sessions written to the store, by kind.",
	}, []string{"kind"})
	stageGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "timer",
		Name:      "stage",
		Help:      "Current urgency stage (0=green .. 4=critical).",
	})
	afkGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "timer",
		Name:      "afk",
		Help:      "1 while the user is away from keyboard.",
	})
	elapsedGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "timer",
		Name:      "elapsed_seconds",
		Help:      "Seconds accumulated in the current mode.",
	})
	remindersTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "notification",
		Name:      "reminders_total",
		Help:      "Push reminder delivery attempts, by outcome.",
	}, []string{"outcome"})
)

func init() {
	prometheus.MustRegister(
		ticksTotal,
		tickPanicsTotal,
		rendersTotal,
		renderFailuresTotal,
		persistenceFailuresTotal,
		sessionsRecordedTotal,
		stageGauge,
		afkGauge,
		elapsedGauge,
		remindersTotal,
	)
}

// RecordTick updates the per-interval gauges.
func RecordTick(stage types.Stage, afk bool, elapsedS uint64) {
	ticksTotal.Inc()
	stageGauge.Set(float64(stage))
	if afk {
		afkGauge.Set(1)
	} else {
		afkGauge.Set(0)
	}
	elapsedGauge.Set(float64(elapsedS))
}

// RecordTickPanic counts an interval lost to a recovered panic.
func RecordTickPanic() {
	tickPanicsTotal.Inc()
}

// RecordRender counts an indicator update and whether it failed.
func RecordRender(err error) {
	rendersTotal.Inc()
	if err != nil {
		renderFailuresTotal.Inc()
	}
}

// RecordPersistenceFailure counts a dropped persistence call.
func RecordPersistenceFailure(op string) {
	persistenceFailuresTotal.WithLabelValues(op).Inc()
}

// RecordSession counts a completed session written to the store.
func RecordSession(kind types.SessionKind) {
	sessionsRecordedTotal.WithLabelValues(string(kind)).Inc()
}

// Reminder delivery outcomes.
const (
	ReminderSent   = "sent"
	ReminderFailed = "failed"
)

// RecordReminder counts a finished push reminder delivery.
func RecordReminder(outcome string) {
	remindersTotal.WithLabelValues(outcome).Inc()
}
