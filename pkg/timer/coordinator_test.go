package timer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Veraticus/stretchia/pkg/interfaces"
	"github.com/Veraticus/stretchia/pkg/logging"
	"github.com/Veraticus/stretchia/pkg/testutil"
	"github.com/Veraticus/stretchia/pkg/types"
)

func newTestCoordinator(probe *testutil.MockProbe, r *testutil.MockRenderer, sink *testutil.MockSink, st *testutil.MockStore) (*Coordinator, *Tracker) {
	tr := NewTracker(nil)
	// One-minute stages so a scripted run crosses every boundary quickly.
	tr.state.ApplyConfig(Thresholds{AFKThresholdS: 30, WarnAtMin: 1, ShakeAtMin: 3})

	var (
		renderer interfaces.Renderer
		events   interfaces.EventSink
		usage    interfaces.UsageRecorder
	)
	if r != nil {
		renderer = r
	}
	if sink != nil {
		events = sink
	}
	if st != nil {
		usage = st
	}
	return NewCoordinator(tr, probe, renderer, events, usage, time.Millisecond, logging.Discard()), tr
}

func TestCoordinatorRendersOnlyOnChange(t *testing.T) {
	probe := testutil.NewMockProbe(0)
	renderer := testutil.NewMockRenderer()
	sink := testutil.NewMockSink()
	c, _ := newTestCoordinator(probe, renderer, sink, nil)

	// 59 active, 1 active (yellow), 5 afk, 60 active (orange at 120s),
	// 60 active (red at 180s), 900 active (critical at 1080s).
	var script []uint64
	add := func(n int, idle uint64) {
		for i := 0; i < n; i++ {
			script = append(script, idle)
		}
	}
	add(59, 0)
	add(1, 0)
	add(5, 100)
	add(60, 0)
	add(60, 0)
	add(900, 0)
	probe.Queue(script...)

	ctx := context.Background()
	for range script {
		c.Step(ctx)
	}

	want := []testutil.RenderCall{
		{Stage: types.StageGreen, AFK: false},
		{Stage: types.StageYellow, AFK: false},
		{Stage: types.StageYellow, AFK: true},
		{Stage: types.StageYellow, AFK: false},
		{Stage: types.StageOrange, AFK: false},
		{Stage: types.StageRed, AFK: false},
		{Stage: types.StageCritical, AFK: false},
	}
	got := renderer.GetCalls()
	if len(got) != len(want) {
		t.Fatalf("render calls = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("render call %d = %+v, want %+v", i, got[i], want[i])
		}
	}

	if n := len(sink.GetPayloads()); n != len(script) {
		t.Errorf("published %d payloads, want %d", n, len(script))
	}
}

func TestCoordinatorStepResult(t *testing.T) {
	probe := testutil.NewMockProbe(0)
	c, _ := newTestCoordinator(probe, testutil.NewMockRenderer(), nil, nil)

	first := c.Step(context.Background())
	if !first.Rendered || first.Payload.ElapsedS != 1 || first.Stage != types.StageGreen {
		t.Errorf("first Step() = %+v", first)
	}
	second := c.Step(context.Background())
	if second.Rendered {
		t.Error("second Step() rendered without a change")
	}
}

func TestCoordinatorUsageDeltas(t *testing.T) {
	probe := testutil.NewMockProbe(0)
	probe.Queue(0, 0, 100, 0)
	st := testutil.NewMockStore()
	c, _ := newTestCoordinator(probe, nil, nil, st)

	for i := 0; i < 4; i++ {
		c.Step(context.Background())
	}

	want := []testutil.UsageDelta{
		{Active: 1}, {Active: 1}, {AFK: 1}, {Active: 1},
	}
	got := st.GetUsage()
	if len(got) != len(want) {
		t.Fatalf("usage = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("usage[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestCoordinatorSurvivesFailingCollaborators(t *testing.T) {
	probe := testutil.NewMockProbe(0)
	renderer := testutil.NewMockRenderer()
	renderer.SetError(errors.New("tray unavailable"))
	sink := testutil.NewMockSink()
	st := testutil.NewMockStore()
	st.SetUsageError(errors.New("database is locked"))
	c, tr := newTestCoordinator(probe, renderer, sink, st)

	for i := 0; i < 5; i++ {
		c.Step(context.Background())
	}

	if got := tr.Snapshot().ElapsedS; got != 5 {
		t.Errorf("ElapsedS = %d, want 5", got)
	}
	if n := len(sink.GetPayloads()); n != 5 {
		t.Errorf("published %d payloads, want 5", n)
	}
	// A failed render is not retried until the pair changes again.
	if n := len(renderer.GetCalls()); n != 1 {
		t.Errorf("render calls = %d, want 1", n)
	}
}

func TestCoordinatorRecoversRendererPanic(t *testing.T) {
	probe := testutil.NewMockProbe(0)
	renderer := testutil.NewMockRenderer()
	renderer.SetPanic(true)
	c, tr := newTestCoordinator(probe, renderer, nil, nil)

	c.Step(context.Background())
	c.Step(context.Background())

	if got := tr.Snapshot().ElapsedS; got != 2 {
		t.Errorf("ElapsedS = %d, want 2", got)
	}
	// The tracker lock must be free after a panicking interval.
	if err := tr.Update(func(s *State) error { s.Reset(); return nil }); err != nil {
		t.Errorf("Update() after panic error = %v", err)
	}
}

func TestCoordinatorNilCollaborators(t *testing.T) {
	c := NewCoordinator(NewTracker(nil), nil, nil, nil, nil, 0, logging.Discard())
	if c.interval != DefaultInterval {
		t.Errorf("interval = %v, want %v", c.interval, DefaultInterval)
	}
	res := c.Step(context.Background())
	if res.Payload.ElapsedS != 1 {
		t.Errorf("ElapsedS = %d, want 1", res.Payload.ElapsedS)
	}
}

func TestCoordinatorRunStopsOnCancel(t *testing.T) {
	probe := testutil.NewMockProbe(0)
	sink := testutil.NewMockSink()
	c, _ := newTestCoordinator(probe, nil, sink, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Run(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for len(sink.GetPayloads()) < 3 {
		select {
		case <-deadline:
			t.Fatal("coordinator did not tick")
		case <-time.After(time.Millisecond):
		}
	}
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestMultiRenderer(t *testing.T) {
	a := testutil.NewMockRenderer()
	b := testutil.NewMockRenderer()
	errB := errors.New("b failed")
	b.SetError(errB)

	m := MultiRenderer{a, nil, b}
	err := m.SetIndicator(types.StageOrange, false)
	if !errors.Is(err, errB) {
		t.Errorf("SetIndicator() error = %v, want %v", err, errB)
	}
	if len(a.GetCalls()) != 1 || len(b.GetCalls()) != 1 {
		t.Errorf("calls a=%d b=%d, want 1 each", len(a.GetCalls()), len(b.GetCalls()))
	}
}
