// Package idle reports how long the user has gone without keyboard or mouse
// input. Every failure folds to zero idle seconds so callers never block on
// a broken probe.
package idle

import (
	"os/exec"
	"time"

	"github.com/Veraticus/stretchia/pkg/interfaces"
)

// CommandExecutor runs an external command and returns its stdout.
type CommandExecutor func(name string, args ...string) ([]byte, error)

// defaultCmdExecutor executes a command and returns its output.
func defaultCmdExecutor(name string, args ...string) ([]byte, error) {
	cmd := exec.Command(name, args...)
	return cmd.Output()
}

// Source is a probe that can say why it failed.
type Source interface {
	Idle() (time.Duration, error)
}

// NewProbe creates the platform-appropriate idle probe:
//   - Windows: GetLastInputInfo
//   - macOS: ioreg HIDIdleTime
//   - Linux: xprintidle, then tmux client activity
//   - anything else: always 0
func NewProbe() interfaces.IdleProbe {
	return newPlatformProbe()
}

// Chain returns a probe that asks each source in order and reports the
// first success. When every source fails it reports 0.
func Chain(sources ...Source) interfaces.IdleProbe {
	return chain(sources)
}

type chain []Source

func (c chain) IdleSeconds() uint64 {
	for _, s := range c {
		if d, err := s.Idle(); err == nil {
			return seconds(d)
		}
	}
	return 0
}

// seconds truncates a duration to whole seconds, clamping negatives to 0.
func seconds(d time.Duration) uint64 {
	if d <= 0 {
		return 0
	}
	return uint64(d / time.Second)
}

// NoopProbe is used where no idle source exists. It never reports AFK.
type NoopProbe struct{}

// IdleSeconds always returns 0.
func (NoopProbe) IdleSeconds() uint64 { return 0 }
