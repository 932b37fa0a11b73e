package main

import (
	"flag"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gdamore/tcell/v2"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/magfield/config"
	"github.com/pthm-cable/magfield/game"
	"github.com/pthm-cable/magfield/palette"
	"github.com/pthm-cable/magfield/tui"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	terminal := flag.Bool("tui", false, "Run in the terminal instead of a window")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in seconds (0 = use config)")
	snapshotDir := flag.String("snapshot-dir", "", "Directory for snapshot files")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	particles := flag.Int("particles", 0, "Initial particle count (0 = use config)")

	flag.Parse()

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	// JSON to stdout; the terminal frontend owns stdout so it logs to a
	// file in the output directory instead, or nowhere.
	var logOut io.Writer = os.Stdout
	if *terminal {
		logOut = io.Discard
		if *outputDir != "" {
			if err := os.MkdirAll(*outputDir, 0755); err == nil {
				if f, err := os.Create(filepath.Join(*outputDir, "session.log")); err == nil {
					defer f.Close()
					logOut = f
				}
			}
		}
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(logOut, nil)))

	opts := game.Options{
		Seed:           rngSeed,
		LogStats:       *logStats,
		StatsWindowSec: *statsWindow,
		SnapshotDir:    *snapshotDir,
		OutputDir:      *outputDir,
		Headless:       *headless,
		Particles:      *particles,
	}

	switch {
	case *headless:
		runHeadless(opts, *maxTicks)
	case *terminal:
		if err := runTerminal(cfg, opts); err != nil {
			slog.Error("terminal frontend failed", "error", err)
			os.Exit(1)
		}
	default:
		runWindow(cfg, opts, *maxTicks)
	}
}

// runHeadless steps the simulation on the CPU with no graphics.
func runHeadless(opts game.Options, maxTicks int) {
	g := game.NewGameWithOptions(opts)
	defer g.Unload()

	slog.Info("starting headless simulation",
		"seed", opts.Seed,
		"particles", g.Engine().ParticleCount(),
		"magnets", g.Engine().MagnetCount(),
		"max_ticks", maxTicks,
	)

	for {
		g.UpdateHeadless()

		if maxTicks > 0 && g.Tick() >= int64(maxTicks) {
			slog.Info("max ticks reached", "tick", g.Tick())
			return
		}
	}
}

// runTerminal drives a session from a tcell screen.
func runTerminal(cfg *config.Config, opts game.Options) error {
	ramp, err := palette.FromConfig(cfg)
	if err != nil {
		return err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	s := game.NewSession(opts)
	defer s.Close()

	tui.New(screen, s, ramp, cfg.Screen.TargetFPS, cfg.Input.RotateStep, cfg.Input.CountStep).Run()
	return nil
}

// runWindow opens a raylib window and runs the interactive scene.
func runWindow(cfg *config.Config, opts game.Options, maxTicks int) {
	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Magnetic Field Tracers")
	defer rl.CloseWindow()

	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	g := game.NewGameWithOptions(opts)
	defer g.Unload()

	for !rl.WindowShouldClose() && !g.Quit() {
		g.Update()
		g.Draw()

		if maxTicks > 0 && g.Tick() >= int64(maxTicks) {
			break
		}
	}
}
