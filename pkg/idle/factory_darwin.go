//go:build darwin

package idle

import (
	"github.com/Veraticus/stretchia/pkg/interfaces"
)

// newPlatformProbe creates a Darwin-specific idle probe.
func newPlatformProbe() interfaces.IdleProbe {
	return Chain(NewIORegDetector())
}
