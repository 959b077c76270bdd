//go:build windows

package idle

import (
	"github.com/Veraticus/stretchia/pkg/interfaces"
)

// newPlatformProbe creates a Windows idle probe.
func newPlatformProbe() interfaces.IdleProbe {
	return Chain(NewWindowsIdleDetector())
}
