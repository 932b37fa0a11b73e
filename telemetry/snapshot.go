package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/magfield/field"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot holds a complete scene for inspection or restore.
type Snapshot struct {
	Version int   `json:"version"`
	RNGSeed int64 `json:"rng_seed"`

	MinX float64 `json:"min_x"`
	MinY float64 `json:"min_y"`
	MaxX float64 `json:"max_x"`
	MaxY float64 `json:"max_y"`

	Frame int64 `json:"frame"`

	MinStrength float64 `json:"min_strength"`
	MaxStrength float64 `json:"max_strength"`

	Magnets   []MagnetState   `json:"magnets"`
	Particles []ParticleState `json:"particles"`

	Bookmark *Bookmark `json:"bookmark,omitempty"`
}

// MagnetState holds one magnet's pose and derived poles.
type MagnetState struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Angle      float64 `json:"angle"`
	HalfWidth  float64 `json:"half_width"`
	HalfHeight float64 `json:"half_height"`
	Strength   float64 `json:"strength"`
	Flipped    bool    `json:"flipped"`

	NorthX float64 `json:"north_x"`
	NorthY float64 `json:"north_y"`
	SouthX float64 `json:"south_x"`
	SouthY float64 `json:"south_y"`
}

// ParticleState holds one tracer's position and last reading.
type ParticleState struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Angle     float64 `json:"angle"`
	Magnitude float64 `json:"magnitude"`
}

// NewSnapshot captures the engine's current scene.
func NewSnapshot(e *field.Engine, seed int64, bookmark *Bookmark) *Snapshot {
	params := e.Params()
	lo, hi := e.StrengthRange()
	s := &Snapshot{
		Version:     SnapshotVersion,
		RNGSeed:     seed,
		MinX:        params.Bounds.Min.X,
		MinY:        params.Bounds.Min.Y,
		MaxX:        params.Bounds.Max.X,
		MaxY:        params.Bounds.Max.Y,
		Frame:       e.Frame(),
		MinStrength: lo,
		MaxStrength: hi,
		Bookmark:    bookmark,
	}

	for _, m := range e.Magnets() {
		pos, n, so := m.Position(), m.North(), m.South()
		s.Magnets = append(s.Magnets, MagnetState{
			X:          pos.X,
			Y:          pos.Y,
			Angle:      m.Angle(),
			HalfWidth:  m.HalfWidth(),
			HalfHeight: m.HalfHeight(),
			Strength:   m.Strength(),
			Flipped:    m.Polarity() == field.PolarityFlipped,
			NorthX:     n.X,
			NorthY:     n.Y,
			SouthX:     so.X,
			SouthY:     so.Y,
		})
	}
	for _, p := range e.Particles() {
		s.Particles = append(s.Particles, ParticleState{
			X:         p.Position.X,
			Y:         p.Position.Y,
			Angle:     p.Angle,
			Magnitude: p.Magnitude,
		})
	}
	return s
}

// Restore rebuilds an engine holding the snapshot's magnets and tracers.
// Readings are recomputed on the next AdvanceFrame.
func (s *Snapshot) Restore(params field.Params) *field.Engine {
	params.Bounds = r2.Box{
		Min: r2.Vec{X: s.MinX, Y: s.MinY},
		Max: r2.Vec{X: s.MaxX, Y: s.MaxY},
	}

	magnets := make([]field.Magnet, 0, len(s.Magnets))
	for _, m := range s.Magnets {
		pol := field.PolarityNormal
		if m.Flipped {
			pol = field.PolarityFlipped
		}
		magnets = append(magnets, field.NewMagnet(
			r2.Vec{X: m.X, Y: m.Y}, m.Angle, m.HalfWidth, m.HalfHeight, m.Strength, pol,
		))
	}

	if params.MaxParticles > 0 && len(s.Particles) > params.MaxParticles {
		params.MaxParticles = len(s.Particles)
	}
	e := field.New(params, magnets, s.RNGSeed)
	for _, p := range s.Particles {
		e.AddParticle(r2.Vec{X: p.X, Y: p.Y})
	}
	return e
}

// SaveSnapshot writes a snapshot to disk.
// Returns the filepath where it was saved.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	name := fmt.Sprintf("snapshot_%d", snapshot.Frame)
	if snapshot.Bookmark != nil {
		sanitized := strings.ReplaceAll(string(snapshot.Bookmark.Type), " ", "_")
		name = fmt.Sprintf("snapshot_%d_%s", snapshot.Frame, sanitized)
	}
	name += ".json"

	path := filepath.Join(dir, name)

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	return path, nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if snapshot.Version != SnapshotVersion {
		return nil, fmt.Errorf("snapshot version %d, want %d", snapshot.Version, SnapshotVersion)
	}

	return &snapshot, nil
}
