package timer

import (
	"math"
	"testing"

	"github.com/Veraticus/stretchia/pkg/types"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		elapsedS uint64
		warn     uint64
		shake    uint64
		want     types.Stage
	}{
		{"zero", 0, 45, 75, types.StageGreen},
		{"just before warn", 45*60 - 1, 45, 75, types.StageGreen},
		{"at warn", 45 * 60, 45, 75, types.StageYellow},
		{"just before mid", 60*60 - 1, 45, 75, types.StageYellow},
		{"at mid", 60 * 60, 45, 75, types.StageOrange},
		{"at shake", 75 * 60, 45, 75, types.StageRed},
		{"just before critical", 90*60 - 1, 45, 75, types.StageRed},
		{"at critical", 90 * 60, 45, 75, types.StageCritical},
		{"far past critical", 10 * 3600, 45, 75, types.StageCritical},
		{"odd gap rounds mid down", 12 * 60, 10, 15, types.StageOrange},
		{"shake equals warn skips orange", 30 * 60, 30, 30, types.StageRed},
		{"shake below warn", 25 * 60, 30, 20, types.StageRed},
		{"shake below warn before warn", 19 * 60, 30, 20, types.StageGreen},
		{"zero thresholds", 0, 0, 0, types.StageRed},
		{"saturating critical", math.MaxUint64, 45, math.MaxUint64, types.StageRed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.elapsedS, tt.warn, tt.shake); got != tt.want {
				t.Errorf("Classify(%d, %d, %d) = %v, want %v", tt.elapsedS, tt.warn, tt.shake, got, tt.want)
			}
		})
	}
}

func TestClassifyMonotonic(t *testing.T) {
	thresholds := [][2]uint64{{45, 75}, {10, 11}, {30, 30}, {60, 20}, {0, 5}}

	for _, th := range thresholds {
		prev := types.StageGreen
		for s := uint64(0); s <= 4*3600; s += 30 {
			got := Classify(s, th[0], th[1])
			if got < prev {
				t.Fatalf("warn=%d shake=%d: stage dropped from %v to %v at %ds", th[0], th[1], prev, got, s)
			}
			prev = got
		}
	}
}

func TestClassifyStageOrderAcrossThresholds(t *testing.T) {
	// Every stage boundary sits where its rule says.
	for warn := uint64(1); warn < 60; warn += 7 {
		for shake := warn + 1; shake < 120; shake += 11 {
			mid := warn + (shake-warn)/2
			checks := map[uint64]types.Stage{
				warn*60 - 1:       types.StageGreen,
				mid * 60:          types.StageOrange,
				shake * 60:        types.StageRed,
				(shake + 15) * 60: types.StageCritical,
			}
			if mid > warn {
				checks[warn*60] = types.StageYellow
			}
			for s, want := range checks {
				if got := Classify(s, warn, shake); got != want {
					t.Errorf("Classify(%d, %d, %d) = %v, want %v", s, warn, shake, got, want)
				}
			}
		}
	}
}

func TestStageScenario(t *testing.T) {
	s := NewState()

	tickFor := func(n int) {
		for i := 0; i < n; i++ {
			s.Tick(0)
		}
	}

	tickFor(44 * 60)
	if got := s.Stage(); got != types.StageGreen {
		t.Errorf("after 44 min stage = %v, want green", got)
	}

	tickFor(60)
	if got := s.Stage(); got != types.StageYellow {
		t.Errorf("after 45 min stage = %v, want yellow", got)
	}

	tickFor(30 * 60)
	if got := s.Stage(); got != types.StageRed {
		t.Errorf("after 75 min stage = %v, want red", got)
	}

	tickFor(15 * 60)
	if got := s.Stage(); got != types.StageCritical {
		t.Errorf("after 90 min stage = %v, want critical", got)
	}
	if got := s.Stage().Color(); got != "red" {
		t.Errorf("critical color = %q, want red", got)
	}
}
