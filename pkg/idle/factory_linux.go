//go:build linux

package idle

import (
	"github.com/Veraticus/stretchia/pkg/interfaces"
)

// newPlatformProbe creates a Linux idle probe.
func newPlatformProbe() interfaces.IdleProbe {
	return Chain(NewXprintidleDetector(), NewTmuxDetector(""))
}
