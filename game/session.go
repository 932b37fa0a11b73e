// Package game drives a tracer session: it applies user actions to the
// field engine, advances frames, records telemetry and, in graphical
// mode, renders the scene with raylib.
package game

import (
	"log/slog"
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/magfield/analysis"
	"github.com/pthm-cable/magfield/config"
	"github.com/pthm-cable/magfield/field"
	"github.com/pthm-cable/magfield/input"
	"github.com/pthm-cable/magfield/telemetry"
)

// nullGrid is the side of the start grid used for null-point search.
const nullGrid = 4

// framePhases are the profiled parts of Step, in run order.
var framePhases = []string{
	telemetry.PhaseInput,
	telemetry.PhaseField,
	telemetry.PhaseLines,
	telemetry.PhaseTelemetry,
}

// Options configures a session.
type Options struct {
	Seed           int64
	LogStats       bool
	StatsWindowSec float64
	SnapshotDir    string
	OutputDir      string
	Headless       bool
	Particles      int // initial tracer count, 0 = use config

	// Config overrides the process-wide config when set.
	Config *config.Config
}

// Session owns the engine and everything that reacts to it, without any
// rendering. Both the raylib and terminal frontends drive one.
type Session struct {
	cfg     *config.Config
	engine  *field.Engine
	rotator *input.Rotator
	rngSeed int64

	paused       bool
	linesVisible bool
	quit         bool

	// Field-line cache, rebuilt when the magnets change
	lines      [][]r2.Vec
	nulls      []r2.Vec
	linesDirty bool

	// Telemetry
	collector        *telemetry.Collector
	profiler         *telemetry.FrameProfiler
	outputManager    *telemetry.OutputManager
	bookmarkDetector *telemetry.BookmarkDetector
	logStats         bool
	snapshotDir      string
	statsCallback    func(telemetry.WindowStats)

	// Per-frame scratch
	particles []field.Particle
	strengths []float64
}

// NewSession creates a session from options.
func NewSession(opts Options) *Session {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}

	statsWindow := opts.StatsWindowSec
	if statsWindow <= 0 {
		statsWindow = cfg.Telemetry.StatsWindow
	}

	s := &Session{
		cfg:              cfg,
		engine:           field.New(field.ParamsFromConfig(cfg), field.MagnetsFromConfig(cfg), opts.Seed),
		rotator:          input.NewRotator(cfg.Screen.TargetFPS, cfg.Input.SpringFrequency, cfg.Input.SpringDamping),
		rngSeed:          opts.Seed,
		linesDirty:       true,
		collector:        telemetry.NewCollector(statsWindow, cfg.Derived.DT),
		profiler:         telemetry.NewFrameProfiler(cfg.Telemetry.PerfCollectorWindow, framePhases...),
		bookmarkDetector: telemetry.NewBookmarkDetector(10),
		logStats:         opts.LogStats,
		snapshotDir:      opts.SnapshotDir,
	}

	count := cfg.Particles.Initial
	if opts.Particles > 0 {
		count = opts.Particles
	}
	s.engine.SetParticleTarget(count)

	if opts.OutputDir != "" {
		om, err := telemetry.NewOutputManager(opts.OutputDir)
		if err != nil {
			slog.Error("failed to create output manager", "error", err)
		} else {
			s.outputManager = om
			if err := om.WriteConfig(cfg); err != nil {
				slog.Error("failed to write config", "error", err)
			}
		}
	}

	return s
}

// SetStatsCallback registers a function called with every flushed window.
func (s *Session) SetStatsCallback(fn func(telemetry.WindowStats)) {
	s.statsCallback = fn
}

// Engine returns the field engine.
func (s *Session) Engine() *field.Engine { return s.engine }

// Config returns the session's config.
func (s *Session) Config() *config.Config { return s.cfg }

// Paused reports whether frames are frozen.
func (s *Session) Paused() bool { return s.paused }

// LinesVisible reports whether the field-line overlay is on.
func (s *Session) LinesVisible() bool { return s.linesVisible }

// Quit reports whether a quit action has been applied.
func (s *Session) Quit() bool { return s.quit }

// Tick returns the number of frames advanced.
func (s *Session) Tick() int64 { return s.engine.Frame() }

// Profile returns the rolling frame timings.
func (s *Session) Profile() telemetry.FrameProfile { return s.profiler.Profile() }

// Apply performs one action. Errors from the engine are logged and the
// action is dropped.
func (s *Session) Apply(a input.Action) {
	frame := s.engine.Frame()

	switch a.Kind {
	case input.ActionMove:
		m, ok := s.engine.Magnet(a.Magnet)
		if !ok {
			slog.Warn("move of unknown magnet", "magnet", int(a.Magnet))
			return
		}
		angle := m.Angle()
		if err := s.engine.SetMagnetPose(a.Magnet, a.Pos, angle); err != nil {
			slog.Warn("move rejected", "magnet", int(a.Magnet), "error", err)
			return
		}
		s.collector.Record(telemetry.NewMoveEvent(frame, int(a.Magnet)))
		s.linesDirty = true

	case input.ActionRotate:
		m, ok := s.engine.Magnet(a.Magnet)
		if !ok {
			slog.Warn("rotate of unknown magnet", "magnet", int(a.Magnet))
			return
		}
		s.rotator.Nudge(a.Magnet, m.Angle(), a.Delta)
		target, _ := s.rotator.Target(a.Magnet)
		s.collector.Record(telemetry.NewRotateEvent(frame, int(a.Magnet), target))

	case input.ActionFlip:
		if err := s.engine.FlipPolarity(a.Magnet); err != nil {
			slog.Warn("flip rejected", "magnet", int(a.Magnet), "error", err)
			return
		}
		s.collector.Record(telemetry.NewFlipEvent(frame, int(a.Magnet)))
		s.linesDirty = true

	case input.ActionSetCount:
		s.setCount(a.Count)

	case input.ActionAdjustCount:
		s.setCount(s.engine.ParticleCount() + a.Count)

	case input.ActionToggleLines:
		s.linesVisible = !s.linesVisible

	case input.ActionTogglePause:
		s.paused = !s.paused

	case input.ActionReset:
		s.rotator.Cancel()
		s.engine.Reset()
		s.collector.Record(telemetry.NewResetEvent(frame))
		s.linesDirty = true

	case input.ActionSnapshot:
		s.saveSnapshot(nil)

	case input.ActionQuit:
		s.quit = true
	}
}

// ApplyAll performs actions in order.
func (s *Session) ApplyAll(actions []input.Action) {
	for _, a := range actions {
		s.Apply(a)
	}
}

func (s *Session) setCount(n int) {
	before := s.engine.ParticleCount()
	s.engine.SetParticleTarget(n)
	if after := s.engine.ParticleCount(); after != before {
		s.collector.Record(telemetry.NewCountChangeEvent(s.engine.Frame(), after))
	}
}

// Step advances the session by one frame. Eased rotations keep settling
// while paused so a key press always lands, but tracers only update when
// running.
func (s *Session) Step() {
	s.profiler.BeginFrame()

	s.profiler.Phase(telemetry.PhaseInput)
	s.stepRotations()

	if s.paused {
		s.profiler.EndFrame()
		return
	}

	s.profiler.Phase(telemetry.PhaseField)
	s.engine.AdvanceFrame()
	s.profiler.AddEvaluations(s.engine.ParticleCount(), s.engine.MagnetCount())

	if s.linesVisible {
		s.profiler.Phase(telemetry.PhaseLines)
		s.profiler.LineCache(s.refreshLines())
	}

	s.profiler.Phase(telemetry.PhaseTelemetry)
	s.collector.ObserveFrame(s.sample(false))
	s.flushTelemetry()

	s.profiler.EndFrame()
}

// stepRotations moves every turning magnet one spring step.
func (s *Session) stepRotations() {
	if !s.rotator.Active() {
		return
	}
	s.rotator.Step(func(id field.MagnetID, angle float64) {
		m, ok := s.engine.Magnet(id)
		if !ok {
			return
		}
		if err := s.engine.SetMagnetPose(id, m.Position(), normalizeAngle(angle)); err != nil {
			slog.Warn("rotation rejected", "magnet", int(id), "error", err)
		}
	})
	s.linesDirty = true
}

// FieldLines returns the cached field lines and null points, rebuilding
// them if the magnets changed since the last call.
func (s *Session) FieldLines() (lines [][]r2.Vec, nulls []r2.Vec) {
	s.refreshLines()
	return s.lines, s.nulls
}

// refreshLines rebuilds the cache if needed and reports whether it did.
func (s *Session) refreshLines() bool {
	if !s.linesDirty {
		return false
	}
	lc := s.cfg.Lines
	s.lines = analysis.FieldLines(s.engine, lc.SeedsPerPole, lc.Step, lc.MaxSteps)

	s.nulls = s.nulls[:0]
	found := analysis.FindNulls(s.engine, s.engine.Params().Bounds, nullGrid, analysis.DefaultNullOptions())
	for _, n := range found {
		s.nulls = append(s.nulls, n.Pos)
	}
	s.linesDirty = false
	return true
}

// sample gathers what telemetry needs from the current frame. Per-tracer
// strengths are only copied out when withStrengths is set.
func (s *Session) sample(withStrengths bool) telemetry.FrameSample {
	fs := telemetry.FrameSample{
		Frame:       s.engine.Frame(),
		Particles:   s.engine.ParticleCount(),
		Magnets:     s.engine.MagnetCount(),
		MinStrength: s.engine.MinStrength(),
		MaxStrength: s.engine.MaxStrength(),
		ZeroField:   s.engine.ZeroFieldCount(),
	}
	if !withStrengths {
		return fs
	}
	s.particles = s.engine.AppendParticles(s.particles[:0])
	s.strengths = s.strengths[:0]
	for i := range s.particles {
		s.strengths = append(s.strengths, s.particles[i].Magnitude)
	}
	fs.Strengths = s.strengths
	return fs
}

// Close flushes and closes output files. It is safe to call twice.
func (s *Session) Close() {
	if s.outputManager == nil {
		return
	}
	if err := s.outputManager.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
	s.outputManager = nil
}

// normalizeAngle wraps angle to [-pi, pi].
func normalizeAngle(a float64) float64 {
	return math.Remainder(a, 2*math.Pi)
}
