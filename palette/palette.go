// Package palette maps field strength to colour.
package palette

import (
	"fmt"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/pthm-cable/magfield/config"
)

// rampSteps is the resolution of the precomputed ramp.
const rampSteps = 256

// Normalize maps s into [0, 1] relative to [lo, hi].
// A degenerate range maps everything to 0.
func Normalize(s, lo, hi float64) float64 {
	if hi <= lo {
		return 0
	}
	t := (s - lo) / (hi - lo)
	switch {
	case t < 0:
		return 0
	case t > 1:
		return 1
	}
	return t
}

// Ramp blends between a low and a high colour in HCL space.
// Colours are precomputed so lookups are cheap in the draw loop.
type Ramp struct {
	low, high colorful.Color
	lut       [rampSteps]color.RGBA
}

// NewRamp parses two hex colours ("#rrggbb") and builds the ramp.
func NewRamp(lowHex, highHex string) (*Ramp, error) {
	low, err := colorful.Hex(lowHex)
	if err != nil {
		return nil, fmt.Errorf("palette low %q: %w", lowHex, err)
	}
	high, err := colorful.Hex(highHex)
	if err != nil {
		return nil, fmt.Errorf("palette high %q: %w", highHex, err)
	}

	r := &Ramp{low: low, high: high}
	for i := range r.lut {
		c := low.BlendHcl(high, float64(i)/(rampSteps-1)).Clamped()
		cr, cg, cb := c.RGB255()
		r.lut[i] = color.RGBA{R: cr, G: cg, B: cb, A: 255}
	}
	return r, nil
}

// FromConfig builds the ramp configured under palette.
func FromConfig(cfg *config.Config) (*Ramp, error) {
	return NewRamp(cfg.Palette.Low, cfg.Palette.High)
}

// At returns the colour for t in [0, 1]; values outside are clamped.
func (r *Ramp) At(t float64) color.RGBA {
	switch {
	case t <= 0:
		return r.lut[0]
	case t >= 1:
		return r.lut[rampSteps-1]
	}
	return r.lut[int(t*(rampSteps-1)+0.5)]
}

// Strength returns the colour of s within the observed range [lo, hi].
func (r *Ramp) Strength(s, lo, hi float64) color.RGBA {
	return r.At(Normalize(s, lo, hi))
}

// Endpoints returns the configured low and high colours as hex.
func (r *Ramp) Endpoints() (low, high string) {
	return r.low.Hex(), r.high.Hex()
}
