package telemetry

// FrameSample is what the collector needs from one completed frame.
type FrameSample struct {
	Frame       int64
	Particles   int
	Magnets     int
	Strengths   []float64 // per-tracer magnitudes; only read, never kept
	MinStrength float64
	MaxStrength float64
	ZeroField   int
}

// Collector accumulates events within time windows and produces WindowStats.
type Collector struct {
	windowDurationSec    float64
	windowDurationFrames int64
	dt                   float64

	// Current window tracking
	windowStartFrame int64

	// Per-frame extremes for current window
	peakStrength float64
	zeroFrames   int

	// Event counters for current window
	moves        int
	rotations    int
	flips        int
	countChanges int
	resets       int
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per frame (used for frame-to-time conversion)
func NewCollector(windowDurationSec float64, dt float64) *Collector {
	framesPerWindow := int64(windowDurationSec / dt)
	if framesPerWindow < 1 {
		framesPerWindow = 1
	}

	return &Collector{
		windowDurationSec:    windowDurationSec,
		windowDurationFrames: framesPerWindow,
		dt:                   dt,
	}
}

// Record counts a scene edit.
func (c *Collector) Record(ev Event) {
	switch ev.Type {
	case EventMove:
		c.moves++
	case EventRotate:
		c.rotations++
	case EventFlip:
		c.flips++
	case EventCountChange:
		c.countChanges++
	case EventReset:
		c.resets++
	}
}

// ObserveFrame folds one frame into the window extremes.
func (c *Collector) ObserveFrame(s FrameSample) {
	if s.Particles > 0 && s.MaxStrength > c.peakStrength {
		c.peakStrength = s.MaxStrength
	}
	if s.ZeroField > 0 {
		c.zeroFrames++
	}
}

// ShouldFlush returns true if enough frames have passed to flush the window.
func (c *Collector) ShouldFlush(currentFrame int64) bool {
	return currentFrame-c.windowStartFrame >= c.windowDurationFrames
}

// Flush produces a WindowStats from the last frame of the window and
// resets counters for the next window.
func (c *Collector) Flush(s FrameSample) WindowStats {
	mean, std, p10, p50, p90 := ComputeStrengthStats(s.Strengths)

	stats := WindowStats{
		WindowStartFrame: c.windowStartFrame,
		WindowEndFrame:   s.Frame,
		SimTimeSec:       float64(s.Frame) * c.dt,

		Particles: s.Particles,
		Magnets:   s.Magnets,

		StrengthMean: mean,
		StrengthStd:  std,
		StrengthP10:  p10,
		StrengthP50:  p50,
		StrengthP90:  p90,

		MinStrength: s.MinStrength,
		MaxStrength: s.MaxStrength,

		PeakStrength: c.peakStrength,
		ZeroFrames:   c.zeroFrames,
		ZeroField:    s.ZeroField,

		Moves:        c.moves,
		Rotations:    c.rotations,
		Flips:        c.flips,
		CountChanges: c.countChanges,
		Resets:       c.resets,
	}

	// Reset for next window
	c.windowStartFrame = s.Frame
	c.peakStrength = 0
	c.zeroFrames = 0
	c.moves = 0
	c.rotations = 0
	c.flips = 0
	c.countChanges = 0
	c.resets = 0

	return stats
}

// WindowDurationFrames returns the number of frames per window.
func (c *Collector) WindowDurationFrames() int64 {
	return c.windowDurationFrames
}
