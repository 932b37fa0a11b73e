package telemetry

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/magfield/field"
)

func testEngine() *field.Engine {
	magnets := []field.Magnet{
		field.NewMagnet(r2.Vec{X: -150}, 0.3, 60, 15, 100000, field.PolarityNormal),
		field.NewMagnet(r2.Vec{X: 150}, 0, 60, 15, 100000, field.PolarityFlipped),
	}
	e := field.New(field.DefaultParams(), magnets, 42)
	e.SetParticleTarget(25)
	e.AdvanceFrame()
	return e
}

func TestSnapshotSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()
	e := testEngine()

	snapshot := NewSnapshot(e, 42, &Bookmark{
		Type:        BookmarkFlipStorm,
		Frame:       e.Frame(),
		Description: "Test bookmark",
	})

	path, err := SaveSnapshot(snapshot, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("Snapshot file not created at %s", path)
	}

	loaded, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}

	if loaded.Version != snapshot.Version {
		t.Errorf("Version mismatch: got %d, want %d", loaded.Version, snapshot.Version)
	}
	if loaded.RNGSeed != 42 {
		t.Errorf("RNGSeed mismatch: got %d, want 42", loaded.RNGSeed)
	}
	if loaded.Frame != 1 {
		t.Errorf("Frame mismatch: got %d, want 1", loaded.Frame)
	}
	if len(loaded.Particles) != 25 {
		t.Errorf("Particles count mismatch: got %d, want 25", len(loaded.Particles))
	}
	if len(loaded.Magnets) != 2 || !loaded.Magnets[1].Flipped {
		t.Errorf("unexpected magnets: %+v", loaded.Magnets)
	}
	if loaded.MaxStrength <= loaded.MinStrength {
		t.Errorf("strength range %v..%v is empty", loaded.MinStrength, loaded.MaxStrength)
	}
	if loaded.Bookmark == nil {
		t.Error("Bookmark not loaded")
	} else if loaded.Bookmark.Type != snapshot.Bookmark.Type {
		t.Errorf("Bookmark type mismatch: got %s, want %s", loaded.Bookmark.Type, snapshot.Bookmark.Type)
	}
}

func TestSnapshotPolesMatchMagnets(t *testing.T) {
	e := testEngine()
	s := NewSnapshot(e, 1, nil)

	for i, ms := range s.Magnets {
		m, _ := e.Magnet(field.MagnetID(i))
		if ms.NorthX != m.North().X || ms.NorthY != m.North().Y {
			t.Errorf("magnet %d north = (%v,%v), want %v", i, ms.NorthX, ms.NorthY, m.North())
		}
		if ms.SouthX != m.South().X || ms.SouthY != m.South().Y {
			t.Errorf("magnet %d south = (%v,%v), want %v", i, ms.SouthX, ms.SouthY, m.South())
		}
	}
}

func TestSnapshotRestore(t *testing.T) {
	e := testEngine()
	s := NewSnapshot(e, 42, nil)

	restored := s.Restore(field.DefaultParams())
	if restored.ParticleCount() != e.ParticleCount() {
		t.Fatalf("restored %d tracers, want %d", restored.ParticleCount(), e.ParticleCount())
	}

	restored.AdvanceFrame()
	for i := 0; i < e.ParticleCount(); i++ {
		want, got := e.Particle(i), restored.Particle(i)
		if want.Position != got.Position {
			t.Errorf("tracer %d at %v, want %v", i, got.Position, want.Position)
		}
		if math.Abs(want.Magnitude-got.Magnitude) > 1e-9 {
			t.Errorf("tracer %d magnitude %v, want %v", i, got.Magnitude, want.Magnitude)
		}
	}
}

func TestSnapshotFilename(t *testing.T) {
	tmpDir := t.TempDir()

	snapshot := &Snapshot{
		Version: SnapshotVersion,
		Frame:   5000,
		Bookmark: &Bookmark{
			Type:  BookmarkFieldCollapse,
			Frame: 5000,
		},
	}

	path, err := SaveSnapshot(snapshot, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	expected := filepath.Join(tmpDir, "snapshot_5000_field_collapse.json")
	if path != expected {
		t.Errorf("Path mismatch: got %s, want %s", path, expected)
	}

	snapshotNoBookmark := &Snapshot{
		Version: SnapshotVersion,
		Frame:   3000,
	}

	path, err = SaveSnapshot(snapshotNoBookmark, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	expected = filepath.Join(tmpDir, "snapshot_3000.json")
	if path != expected {
		t.Errorf("Path mismatch: got %s, want %s", path, expected)
	}
}

func TestLoadSnapshotRejectsVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.json")
	if err := os.WriteFile(path, []byte(`{"version": 99}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSnapshot(path); err == nil {
		t.Error("expected error for unknown snapshot version")
	}
}
