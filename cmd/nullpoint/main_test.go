package main

import (
	"bytes"
	"strings"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/magfield/analysis"
	"github.com/pthm-cable/magfield/config"
)

func TestWriteNulls(t *testing.T) {
	var buf bytes.Buffer
	nulls := []analysis.Null{{Pos: r2.Vec{X: 1, Y: 2}, X: 1, Y: 2, Residual: 0.5, Evaluations: 40}}

	if err := writeNulls(&buf, nulls); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want header and one row:\n%s", len(lines), buf.String())
	}
	if lines[0] != "x,y,residual,evaluations" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != "1,2,0.5,40" {
		t.Errorf("row = %q", lines[1])
	}
}

func TestWriteNullsEmpty(t *testing.T) {
	var full bytes.Buffer
	if err := writeNulls(&full, []analysis.Null{{Evaluations: 1}}); err != nil {
		t.Fatal(err)
	}
	header := strings.SplitN(full.String(), "\n", 2)[0]

	for _, nulls := range [][]analysis.Null{nil, {}} {
		var buf bytes.Buffer
		if err := writeNulls(&buf, nulls); err != nil {
			t.Fatal(err)
		}
		if got := strings.TrimSpace(buf.String()); got != header {
			t.Errorf("empty output = %q, want header %q", got, header)
		}
	}
}

func TestLoadSceneFromConfig(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	e, err := loadScene(cfg, "")
	if err != nil {
		t.Fatal(err)
	}
	if e.MagnetCount() != len(cfg.Magnets.Initial) {
		t.Errorf("got %d magnets, want %d", e.MagnetCount(), len(cfg.Magnets.Initial))
	}
	if e.ParticleCount() != 0 {
		t.Errorf("null search scene should have no tracers, got %d", e.ParticleCount())
	}
}
