package telemetry

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Frame phases timed by the session.
const (
	PhaseInput     = "input"
	PhaseField     = "field"
	PhaseLines     = "lines"
	PhaseTelemetry = "telemetry"
)

// Line cache outcome for one frame.
type lineUse uint8

const (
	lineUnused lineUse = iota
	lineHit
	lineRebuilt
)

// FrameProfiler times the phases of each frame over a rolling window of
// frames. The phase set is fixed when it is created. Alongside timings it
// counts tracer-magnet field evaluations and line-cache outcomes.
type FrameProfiler struct {
	phases []string
	index  map[string]int

	// Ring of the last len(total) frames. Spans are per phase, in µs.
	spans [][]float64
	total []float64
	pairs []float64
	lines []lineUse
	next  int
	n     int

	// Frame in progress
	open     []float64
	openPair float64
	openLine lineUse
	active   int // phase index, -1 when none
	frameAt  time.Time
	phaseAt  time.Time

	lastDraw time.Time
	drawGap  time.Duration

	now func() time.Time
}

// NewFrameProfiler creates a profiler averaging over window frames and
// reporting phases in the given order.
func NewFrameProfiler(window int, phases ...string) *FrameProfiler {
	if window < 1 {
		window = 60
	}
	p := &FrameProfiler{
		phases: phases,
		index:  make(map[string]int, len(phases)),
		spans:  make([][]float64, len(phases)),
		total:  make([]float64, window),
		pairs:  make([]float64, window),
		lines:  make([]lineUse, window),
		open:   make([]float64, len(phases)),
		active: -1,
		now:    time.Now,
	}
	for i, name := range phases {
		p.index[name] = i
		p.spans[i] = make([]float64, window)
	}
	return p
}

// BeginFrame starts timing a frame.
func (p *FrameProfiler) BeginFrame() {
	p.frameAt = p.now()
	for i := range p.open {
		p.open[i] = 0
	}
	p.openPair = 0
	p.openLine = lineUnused
	p.active = -1
}

// Phase closes the running phase and opens name. Time spent in a phase the
// profiler was not created with counts toward the frame total only.
func (p *FrameProfiler) Phase(name string) {
	t := p.now()
	p.closePhase(t)
	p.phaseAt = t
	if i, ok := p.index[name]; ok {
		p.active = i
	}
}

func (p *FrameProfiler) closePhase(t time.Time) {
	if p.active >= 0 {
		p.open[p.active] += micros(t.Sub(p.phaseAt))
	}
	p.active = -1
}

// AddEvaluations records that the field was sampled at tracers points
// against magnets sources this frame.
func (p *FrameProfiler) AddEvaluations(tracers, magnets int) {
	p.openPair += float64(tracers) * float64(magnets)
}

// LineCache records whether this frame traced field lines again or reused
// the cached ones.
func (p *FrameProfiler) LineCache(rebuilt bool) {
	if rebuilt {
		p.openLine = lineRebuilt
	} else {
		p.openLine = lineHit
	}
}

// EndFrame closes the frame and stores it in the window.
func (p *FrameProfiler) EndFrame() {
	t := p.now()
	p.closePhase(t)

	i := p.next
	for k := range p.spans {
		p.spans[k][i] = p.open[k]
	}
	p.total[i] = micros(t.Sub(p.frameAt))
	p.pairs[i] = p.openPair
	p.lines[i] = p.openLine

	p.next = (i + 1) % len(p.total)
	if p.n < len(p.total) {
		p.n++
	}
}

// MarkDraw records the time between presented frames in graphical mode.
func (p *FrameProfiler) MarkDraw() {
	t := p.now()
	if !p.lastDraw.IsZero() {
		p.drawGap = t.Sub(p.lastDraw)
	}
	p.lastDraw = t
}

// PhaseTiming is one phase's share of the average frame.
type PhaseTiming struct {
	Name string
	Avg  time.Duration
	Pct  float64
}

// FrameProfile summarises the profiler window.
type FrameProfile struct {
	Frames   int
	AvgFrame time.Duration
	MaxFrame time.Duration

	// In the order the profiler was created with
	Phases []PhaseTiming

	// Tracer-magnet evaluations per second of field phase time
	PairsPerSec float64

	LineRebuilds int
	LineHits     int

	DrawGap time.Duration
	FPS     float64
}

// Profile summarises the frames currently in the window.
func (p *FrameProfiler) Profile() FrameProfile {
	prof := FrameProfile{
		Frames:  p.n,
		Phases:  make([]PhaseTiming, len(p.phases)),
		DrawGap: p.drawGap,
	}
	if p.drawGap > 0 {
		prof.FPS = float64(time.Second) / float64(p.drawGap)
	}
	for i, name := range p.phases {
		prof.Phases[i].Name = name
	}
	if p.n == 0 {
		return prof
	}

	total := p.total[:p.n]
	avg := stat.Mean(total, nil)
	prof.AvgFrame = fromMicros(avg)
	prof.MaxFrame = fromMicros(floats.Max(total))

	for i := range p.phases {
		phaseAvg := stat.Mean(p.spans[i][:p.n], nil)
		prof.Phases[i].Avg = fromMicros(phaseAvg)
		if avg > 0 {
			prof.Phases[i].Pct = phaseAvg / avg * 100
		}
	}

	if f, ok := p.index[PhaseField]; ok {
		if spent := floats.Sum(p.spans[f][:p.n]); spent > 0 {
			prof.PairsPerSec = floats.Sum(p.pairs[:p.n]) / spent * 1e6
		}
	}

	for _, l := range p.lines[:p.n] {
		switch l {
		case lineHit:
			prof.LineHits++
		case lineRebuilt:
			prof.LineRebuilds++
		}
	}

	return prof
}

// Phase returns the timing for name.
func (fp FrameProfile) Phase(name string) (PhaseTiming, bool) {
	for _, ph := range fp.Phases {
		if ph.Name == name {
			return ph, true
		}
	}
	return PhaseTiming{}, false
}

// ByCost returns the phases sorted by average duration, largest first.
func (fp FrameProfile) ByCost() []PhaseTiming {
	out := append([]PhaseTiming(nil), fp.Phases...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Avg > out[j].Avg
	})
	return out
}

// LogValue implements slog.LogValuer.
func (fp FrameProfile) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int("frames", fp.Frames),
		slog.Int64("avg_frame_us", fp.AvgFrame.Microseconds()),
		slog.Int64("max_frame_us", fp.MaxFrame.Microseconds()),
		slog.Float64("pairs_per_sec", fp.PairsPerSec),
		slog.Int("line_rebuilds", fp.LineRebuilds),
		slog.Int("line_hits", fp.LineHits),
	}
	if fp.FPS > 0 {
		attrs = append(attrs, slog.Float64("fps", fp.FPS))
	}
	for _, ph := range fp.Phases {
		if ph.Pct > 0.1 {
			attrs = append(attrs, slog.Float64(ph.Name+"_pct", ph.Pct))
		}
	}
	return slog.GroupValue(attrs...)
}

// Log writes the profile at info level.
func (fp FrameProfile) Log() {
	slog.Info("perf", "profile", fp)
}

// ProfileRow is one perf.csv record. Phase shares are packed into one
// column so the file layout does not depend on which phases are timed.
type ProfileRow struct {
	WindowEnd    int64   `csv:"window_end"`
	Frames       int     `csv:"frames"`
	AvgFrameUS   int64   `csv:"avg_frame_us"`
	MaxFrameUS   int64   `csv:"max_frame_us"`
	PairsPerSec  float64 `csv:"pairs_per_sec"`
	LineRebuilds int     `csv:"line_rebuilds"`
	LineHits     int     `csv:"line_hits"`
	FPS          float64 `csv:"fps"`
	PhasePct     string  `csv:"phase_pct"`
}

// Row flattens the profile for CSV export.
func (fp FrameProfile) Row(windowEnd int64) ProfileRow {
	parts := make([]string, len(fp.Phases))
	for i, ph := range fp.Phases {
		parts[i] = fmt.Sprintf("%s=%.1f", ph.Name, ph.Pct)
	}
	return ProfileRow{
		WindowEnd:    windowEnd,
		Frames:       fp.Frames,
		AvgFrameUS:   fp.AvgFrame.Microseconds(),
		MaxFrameUS:   fp.MaxFrame.Microseconds(),
		PairsPerSec:  fp.PairsPerSec,
		LineRebuilds: fp.LineRebuilds,
		LineHits:     fp.LineHits,
		FPS:          fp.FPS,
		PhasePct:     strings.Join(parts, ";"),
	}
}

func micros(d time.Duration) float64 {
	return float64(d) / float64(time.Microsecond)
}

func fromMicros(us float64) time.Duration {
	return time.Duration(us * float64(time.Microsecond))
}
