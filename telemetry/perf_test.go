package telemetry

import (
	"math"
	"testing"
	"time"
)

type stepClock struct{ t time.Time }

func (c *stepClock) now() time.Time          { return c.t }
func (c *stepClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestProfiler(window int, phases ...string) (*FrameProfiler, *stepClock) {
	clock := &stepClock{t: time.Unix(1000, 0)}
	p := NewFrameProfiler(window, phases...)
	p.now = clock.now
	return p, clock
}

// runFrame times one frame with the given phase lengths in milliseconds.
func runFrame(p *FrameProfiler, c *stepClock, phases []string, ms []int) {
	p.BeginFrame()
	for i, name := range phases {
		p.Phase(name)
		c.advance(time.Duration(ms[i]) * time.Millisecond)
	}
	p.EndFrame()
}

func TestFrameProfilerKeepsPhaseOrder(t *testing.T) {
	p, _ := newTestProfiler(4, PhaseTelemetry, PhaseField)

	prof := p.Profile()
	if prof.Frames != 0 || prof.AvgFrame != 0 {
		t.Errorf("empty profile = %+v", prof)
	}
	if len(prof.Phases) != 2 || prof.Phases[0].Name != PhaseTelemetry || prof.Phases[1].Name != PhaseField {
		t.Errorf("phases = %+v, want telemetry then field", prof.Phases)
	}
}

func TestFrameProfilerShares(t *testing.T) {
	phases := []string{PhaseInput, PhaseField}
	p, c := newTestProfiler(10, phases...)

	for i := 0; i < 3; i++ {
		runFrame(p, c, phases, []int{1, 3})
	}

	prof := p.Profile()
	if prof.Frames != 3 {
		t.Errorf("Frames = %d, want 3", prof.Frames)
	}
	if prof.AvgFrame != 4*time.Millisecond {
		t.Errorf("AvgFrame = %v, want 4ms", prof.AvgFrame)
	}
	in, _ := prof.Phase(PhaseInput)
	field, _ := prof.Phase(PhaseField)
	if math.Abs(in.Pct-25) > 1e-9 || math.Abs(field.Pct-75) > 1e-9 {
		t.Errorf("shares = %.3f/%.3f, want 25/75", in.Pct, field.Pct)
	}
	if field.Avg != 3*time.Millisecond {
		t.Errorf("field avg = %v, want 3ms", field.Avg)
	}
}

func TestFrameProfilerWindowDropsOldFrames(t *testing.T) {
	phases := []string{PhaseField}
	p, c := newTestProfiler(2, phases...)

	runFrame(p, c, phases, []int{10})
	runFrame(p, c, phases, []int{2})
	runFrame(p, c, phases, []int{4})

	prof := p.Profile()
	if prof.Frames != 2 {
		t.Errorf("Frames = %d, want 2", prof.Frames)
	}
	if prof.AvgFrame != 3*time.Millisecond {
		t.Errorf("AvgFrame = %v, want 3ms once the 10ms frame has left", prof.AvgFrame)
	}
	if prof.MaxFrame != 4*time.Millisecond {
		t.Errorf("MaxFrame = %v, want 4ms", prof.MaxFrame)
	}
}

func TestFrameProfilerPairThroughput(t *testing.T) {
	phases := []string{PhaseInput, PhaseField}
	p, c := newTestProfiler(10, phases...)

	// 400 tracers against 2 magnets in 4ms of field time, twice
	for i := 0; i < 2; i++ {
		p.BeginFrame()
		p.Phase(PhaseInput)
		c.advance(time.Millisecond)
		p.Phase(PhaseField)
		p.AddEvaluations(400, 2)
		c.advance(4 * time.Millisecond)
		p.EndFrame()
	}

	prof := p.Profile()
	if want := 1600 / 0.008; math.Abs(prof.PairsPerSec-want) > 1e-6 {
		t.Errorf("PairsPerSec = %v, want %v", prof.PairsPerSec, want)
	}
}

func TestFrameProfilerLineCache(t *testing.T) {
	p, _ := newTestProfiler(10, PhaseLines)

	for _, use := range []string{"rebuild", "hit", "hit", "off"} {
		p.BeginFrame()
		switch use {
		case "rebuild":
			p.LineCache(true)
		case "hit":
			p.LineCache(false)
		}
		p.EndFrame()
	}

	prof := p.Profile()
	if prof.LineRebuilds != 1 || prof.LineHits != 2 {
		t.Errorf("rebuilds/hits = %d/%d, want 1/2", prof.LineRebuilds, prof.LineHits)
	}
}

func TestFrameProfilerUnknownPhase(t *testing.T) {
	p, c := newTestProfiler(10, PhaseInput)

	p.BeginFrame()
	p.Phase(PhaseInput)
	c.advance(time.Millisecond)
	p.Phase("render")
	c.advance(5 * time.Millisecond)
	p.EndFrame()

	prof := p.Profile()
	in, _ := prof.Phase(PhaseInput)
	if in.Avg != time.Millisecond {
		t.Errorf("input avg = %v, want 1ms", in.Avg)
	}
	if prof.AvgFrame != 6*time.Millisecond {
		t.Errorf("AvgFrame = %v, want 6ms", prof.AvgFrame)
	}
	if _, ok := prof.Phase("render"); ok {
		t.Error("untracked phase should not be reported")
	}
}

func TestFrameProfilerDrawGap(t *testing.T) {
	p, c := newTestProfiler(10)

	p.MarkDraw()
	if p.Profile().FPS != 0 {
		t.Error("one draw should not produce an FPS figure")
	}
	c.advance(20 * time.Millisecond)
	p.MarkDraw()

	prof := p.Profile()
	if prof.DrawGap != 20*time.Millisecond || math.Abs(prof.FPS-50) > 1e-9 {
		t.Errorf("gap/fps = %v/%v, want 20ms/50", prof.DrawGap, prof.FPS)
	}
}

func TestFrameProfileByCostAndRow(t *testing.T) {
	prof := FrameProfile{
		Frames:   60,
		AvgFrame: 1500 * time.Microsecond,
		Phases: []PhaseTiming{
			{Name: PhaseInput, Avg: time.Microsecond, Pct: 5},
			{Name: PhaseField, Avg: 900 * time.Microsecond, Pct: 80},
			{Name: PhaseLines, Avg: 100 * time.Microsecond, Pct: 10.3},
		},
		LineRebuilds: 3,
	}

	byCost := prof.ByCost()
	if byCost[0].Name != PhaseField || byCost[2].Name != PhaseInput {
		t.Errorf("ByCost = %+v", byCost)
	}
	if prof.Phases[0].Name != PhaseInput {
		t.Error("ByCost must not reorder the profile")
	}

	row := prof.Row(120)
	if row.WindowEnd != 120 || row.AvgFrameUS != 1500 || row.LineRebuilds != 3 {
		t.Errorf("row = %+v", row)
	}
	if want := "input=5.0;field=80.0;lines=10.3"; row.PhasePct != want {
		t.Errorf("PhasePct = %q, want %q", row.PhasePct, want)
	}
}
