package timer

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Veraticus/stretchia/pkg/interfaces"
	"github.com/Veraticus/stretchia/pkg/metrics"
	"github.com/Veraticus/stretchia/pkg/types"
)

// DefaultInterval is the nominal tick length. Drift is not corrected.
const DefaultInterval = time.Second

// TickResult describes one processed interval.
type TickResult struct {
	Payload  types.TickPayload
	Stage    types.Stage
	Rendered bool
}

// Coordinator drives the Tracker once per interval and fans the result out
// to the renderer, the event sink and the usage recorder.
type Coordinator struct {
	tracker  *Tracker
	probe    interfaces.IdleProbe
	renderer interfaces.Renderer
	sink     interfaces.EventSink
	usage    interfaces.UsageRecorder
	interval time.Duration
	logger   logrus.FieldLogger
}

// NewCoordinator creates a coordinator. renderer, sink and usage may be nil.
func NewCoordinator(tracker *Tracker, probe interfaces.IdleProbe, renderer interfaces.Renderer,
	sink interfaces.EventSink, usage interfaces.UsageRecorder, interval time.Duration, logger logrus.FieldLogger) *Coordinator {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Coordinator{
		tracker:  tracker,
		probe:    probe,
		renderer: renderer,
		sink:     sink,
		usage:    usage,
		interval: interval,
		logger:   logger,
	}
}

// Run ticks until ctx is cancelled. A failing interval never stops the loop.
func (c *Coordinator) Run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Step(ctx)
		}
	}
}

// Step processes exactly one interval. Collaborator calls happen after the
// tracker lock is released; their errors are logged and dropped.
func (c *Coordinator) Step(ctx context.Context) (result TickResult) {
	defer func() {
		if r := recover(); r != nil {
			metrics.RecordTickPanic()
			c.logger.WithField("panic", r).Error("tick skipped")
		}
	}()

	var idleS uint64
	if c.probe != nil {
		idleS = c.probe.IdleSeconds()
	}

	payload, stage, changed := c.tracker.advance(idleS)
	result = TickResult{Payload: payload, Stage: stage}
	metrics.RecordTick(stage, payload.IsAFK, payload.ElapsedS)

	if changed && c.renderer != nil {
		err := c.renderer.SetIndicator(stage, payload.IsAFK)
		metrics.RecordRender(err)
		if err != nil {
			c.logger.WithError(err).WithField("stage", stage).Warn("indicator update failed")
		}
		result.Rendered = true
		c.logger.WithFields(logrus.Fields{"stage": stage, "afk": payload.IsAFK}).Debug("indicator updated")
	}

	if c.sink != nil {
		c.sink.Publish(payload)
	}

	if c.usage != nil {
		var active, afk int64 = 1, 0
		if payload.IsAFK {
			active, afk = 0, 1
		}
		if err := c.usage.AccumulateDailyUsage(ctx, active, afk); err != nil {
			metrics.RecordPersistenceFailure("usage")
			c.logger.WithError(err).Warn("daily usage not recorded")
		}
	}

	return result
}
