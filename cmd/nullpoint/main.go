// Package main finds the zero-field points of a magnet scene and writes
// them as CSV.
package main

import (
	"flag"
	"io"
	"log"
	"os"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/magfield/analysis"
	"github.com/pthm-cable/magfield/config"
	"github.com/pthm-cable/magfield/field"
	"github.com/pthm-cable/magfield/telemetry"
)

func main() {
	configPath := flag.String("config", "", "Scene config YAML file (empty = use defaults)")
	snapshotPath := flag.String("snapshot", "", "Read magnets from a snapshot instead of the config")
	grid := flag.Int("grid", 6, "Start points per axis for the search")
	maxEvals := flag.Int("max-evals", 2000, "Maximum field evaluations per start point")
	output := flag.String("output", "", "CSV output path (empty = stdout)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	engine, err := loadScene(cfg, *snapshotPath)
	if err != nil {
		log.Fatalf("failed to load scene: %v", err)
	}

	opts := analysis.DefaultNullOptions()
	opts.MaxEvals = *maxEvals

	nulls := analysis.FindNulls(engine, engine.Params().Bounds, *grid, opts)
	log.Printf("found %d null points among %d magnets", len(nulls), engine.MagnetCount())

	var w io.Writer = os.Stdout
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			log.Fatalf("failed to create output: %v", err)
		}
		defer f.Close()
		w = f
	}

	if err := writeNulls(w, nulls); err != nil {
		log.Fatalf("failed to write nulls: %v", err)
	}
}

// loadScene builds an engine from a snapshot when one is given, otherwise
// from the config's initial magnets.
func loadScene(cfg *config.Config, snapshotPath string) (*field.Engine, error) {
	if snapshotPath == "" {
		return field.New(field.ParamsFromConfig(cfg), field.MagnetsFromConfig(cfg), 1), nil
	}
	s, err := telemetry.LoadSnapshot(snapshotPath)
	if err != nil {
		return nil, err
	}
	return s.Restore(field.ParamsFromConfig(cfg)), nil
}

// writeNulls writes one CSV row per null point, header included even when
// there are none.
func writeNulls(w io.Writer, nulls []analysis.Null) error {
	if nulls == nil {
		nulls = []analysis.Null{}
	}
	return gocsv.Marshal(nulls, w)
}
