//go:build !linux && !darwin && !windows

package idle

import (
	"github.com/Veraticus/stretchia/pkg/interfaces"
)

// newPlatformProbe creates a fallback probe for unsupported platforms.
func newPlatformProbe() interfaces.IdleProbe {
	return NoopProbe{}
}
