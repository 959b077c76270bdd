package notification

import (
	"fmt"
	"sync"
	"time"

	"github.com/Veraticus/stretchia/pkg/interfaces"
	"github.com/Veraticus/stretchia/pkg/types"
)

// StageNotifier pushes a reminder the first time each tick stream escalates
// into Red or Critical, and again every renudge interval of sitting time
// spent at Critical. Dropping back below Red re-arms it. AFK and treadmill
// ticks never notify.
type StageNotifier struct {
	manager *Manager
	now     func() time.Time
	renudge uint64

	mu        sync.Mutex
	notified  types.Stage
	lastNudge uint64 // ElapsedS of the last Critical reminder
}

// DefaultRenudgeInterval is how much further sitting time at Critical
// triggers another reminder.
const DefaultRenudgeInterval = 5 * time.Minute

var _ interfaces.EventSink = (*StageNotifier)(nil)

// NewStageNotifier creates a notifier sending through manager.
func NewStageNotifier(manager *Manager) *StageNotifier {
	return &StageNotifier{
		manager:  manager,
		now:      time.Now,
		renudge:  uint64(DefaultRenudgeInterval / time.Second),
		notified: types.StageGreen,
	}
}

// SetRenudgeInterval changes the Critical repeat interval. Zero disables
// repeats.
func (s *StageNotifier) SetRenudgeInterval(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d < 0 {
		d = 0
	}
	s.renudge = uint64(d / time.Second)
}

// Publish implements interfaces.EventSink.
func (s *StageNotifier) Publish(p types.TickPayload) {
	stage, ok := types.ParseStage(p.Stage)
	if !ok || p.IsTreadmill {
		return
	}

	s.mu.Lock()
	if stage < types.StageRed {
		s.notified = types.StageGreen
		s.mu.Unlock()
		return
	}
	if p.IsAFK || !s.due(stage, p.ElapsedS) {
		s.mu.Unlock()
		return
	}
	s.notified = stage
	if stage == types.StageCritical {
		s.lastNudge = p.ElapsedS
	}
	s.mu.Unlock()

	s.manager.Send(reminder(stage, p.ElapsedS, s.now()))
}

// due reports whether stage at elapsedS warrants a reminder. Callers hold s.mu.
func (s *StageNotifier) due(stage types.Stage, elapsedS uint64) bool {
	if stage > s.notified {
		return true
	}
	if stage != types.StageCritical || s.renudge == 0 {
		return false
	}
	return elapsedS >= s.lastNudge && elapsedS-s.lastNudge >= s.renudge
}

func reminder(stage types.Stage, elapsedS uint64, now time.Time) Notification {
	minutes := elapsedS / 60
	if stage == types.StageCritical {
		return Notification{
			Title:    "Stretch now",
			Message:  fmt.Sprintf("You have been sitting for %d minutes. Take a break.", minutes),
			Time:     now,
			Priority: PriorityUrgent,
			Tags:     []string{"rotating_light"},
		}
	}
	return Notification{
		Title:    "Time to stand up",
		Message:  fmt.Sprintf("Sitting for %d minutes.", minutes),
		Time:     now,
		Priority: PriorityHigh,
		Tags:     []string{"warning"},
	}
}
