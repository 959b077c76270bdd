// Package timer owns continuous sitting time: the activity state machine,
// stage classification and the tick coordinator that drives both.
package timer

import (
	"math"

	"github.com/Veraticus/stretchia/pkg/types"
)

// criticalAfterShakeMin is how long past the shake threshold Red turns Critical.
const criticalAfterShakeMin = 15

// Classify maps elapsed active seconds onto an urgency stage.
//
// Yellow starts at warnAtMin, Orange at the midpoint between warn and shake,
// Red at shakeAtMin and Critical 15 minutes later. When shakeAtMin does not
// exceed warnAtMin the midpoint collapses onto warnAtMin so stages never invert.
func Classify(elapsedS, warnAtMin, shakeAtMin uint64) types.Stage {
	minutes := elapsedS / 60

	mid := warnAtMin
	if shakeAtMin > warnAtMin {
		mid = warnAtMin + (shakeAtMin-warnAtMin)/2
	}

	critical := uint64(math.MaxUint64)
	if shakeAtMin <= math.MaxUint64-criticalAfterShakeMin {
		critical = shakeAtMin + criticalAfterShakeMin
	}

	switch {
	case minutes < warnAtMin:
		return types.StageGreen
	case minutes < mid:
		return types.StageYellow
	case minutes < shakeAtMin:
		return types.StageOrange
	case minutes < critical:
		return types.StageRed
	default:
		return types.StageCritical
	}
}
