// Package uplab estimates Munsell specifications from Bruce Lindbloom's
// Uniform Perceptual Lab space using fixed scale factors.
//
// See http://www.brucelindbloom.com/index.html?UPLab.html.
package uplab

import (
	"fmt"
	"math"

	"github.com/jmylchreest/munsellkit/internal/colour"
	"github.com/jmylchreest/munsellkit/internal/munsell"
)

// Heuristic factors from normalised l, a*, b* to Munsell value and chroma.
const (
	ValueFactor  = 9.9167
	ChromaFactor = 50
)

// neutralChroma is the chroma below which a colour is treated as grey.
const neutralChroma = 0.01

// Coords are normalised UP LAB coordinates: L in [0, 1], A and B in
// [-0.5, 0.5].
type Coords struct {
	L float64 `json:"l"`
	A float64 `json:"a"`
	B float64 `json:"b"`
}

// FromRGB converts an sRGB colour to normalised coordinates through the
// 8-bit CIE Lab encoding (D50, Bradford adaptation).
func FromRGB(rgb colour.RGB) Coords {
	lab := colour.RGBToLab(rgb, colour.IlluminantD50)

	l8 := clampRound(lab.L*255/100, 0, 255)
	a8 := clampRound(lab.A, -128, 127)
	b8 := clampRound(lab.B, -128, 127)

	return Coords{L: l8 / 255, A: a8 / 255, B: b8 / 255}
}

// ToSpec converts normalised coordinates to a Munsell specification.
//
// Hue angles map onto the hue circle with 0° at 2.5RP:
//
//	angle   0 -> 2.5RP
//	angle  36 -> 2.5R
//	angle 351 -> 10P
func ToSpec(c Coords) munsell.Spec {
	value := ValueFactor * c.L
	chroma := ChromaFactor * math.Hypot(c.A, c.B)

	if chroma < neutralChroma {
		return munsell.Neutral(value)
	}

	angle := math.Atan2(c.B, c.A) * 180 / math.Pi
	if angle < 0 {
		angle += 360
	}

	hue := angle*100/360 + 2.5
	if hue > 100 {
		hue -= 100
	}

	idx := math.Floor(hue / 10)
	shade := hue - idx*10
	index := (17-int(idx))%10 + 1

	// index is always 1..10 here, so NormalizeHue cannot fail.
	index, shade, _ = munsell.NormalizeHue(index, shade, munsell.RoundNone)
	return munsell.Spec{HueShade: shade, Value: value, Chroma: chroma, HueIndex: index}
}

// FromSpec converts a Munsell specification to normalised coordinates.
// It is the inverse of ToSpec.
func FromSpec(s munsell.Spec) Coords {
	l := s.Value / ValueFactor
	if s.IsNeutral() {
		return Coords{L: l}
	}

	base := (18 - s.HueIndex) % 10
	hue := float64(base)*10 + s.HueShade - 2.5
	if hue < 0 {
		hue += 100
	}
	angle := hue * 360 / 100 * math.Pi / 180
	radius := s.Chroma / ChromaFactor

	return Coords{L: l, A: math.Cos(angle) * radius, B: math.Sin(angle) * radius}
}

// Lab returns the CIE Lab (D50) colour the coordinates encode.
func (c Coords) Lab() colour.Lab {
	return colour.Lab{L: c.L * 100, A: c.A * 255, B: c.B * 255}
}

// SpecToRGB renders a Munsell specification as sRGB by inverting the
// heuristics. The boolean reports whether the colour was inside the sRGB
// gamut before clamping.
func SpecToRGB(s munsell.Spec) (colour.RGB, bool) {
	xyz := colour.LabToXYZ(FromSpec(s).Lab(), colour.IlluminantD50)
	return colour.XYZToRGB(xyz, colour.IlluminantD50)
}

// Renotation snaps spec, as computed by ToSpec from c, to the Munsell
// renotation grid. The four neighbouring grid colours (chroma steps of 2,
// hue steps of 2.5) are compared in the a*b* plane and the closest wins.
func Renotation(spec munsell.Spec, c Coords) (munsell.Spec, error) {
	value := renotationValue(spec.Value)
	if spec.IsNeutral() {
		return munsell.Neutral(value), nil
	}

	c0 := math.Floor(spec.Chroma/2) * 2
	h0 := math.Floor(spec.HueShade/2.5) * 2.5

	var closest munsell.Spec
	best := math.Inf(1)
	for _, ct := range []float64{c0, c0 + 2} {
		for _, ht := range []float64{h0, h0 + 2.5} {
			candidate := munsell.Spec{HueShade: ht, Value: value, Chroma: ct, HueIndex: spec.HueIndex}
			norm, err := munsell.Normalize(candidate, munsell.RoundRenotation, true)
			if err != nil {
				return munsell.Spec{}, fmt.Errorf("failed to normalise renotation candidate: %w", err)
			}

			t := FromSpec(norm.Spec)
			da, db := t.A-c.A, t.B-c.B
			if d := da*da + db*db; d < best {
				best = d
				closest = norm.Spec
			}
		}
	}

	closest.Value = value
	return closest, nil
}

// RGBToMunsell estimates the Munsell specification of an sRGB colour.
// When withRenotation is set, the renotation grid colour is returned as
// well; otherwise renotation is the zero Spec.
func RGBToMunsell(rgb colour.RGB, withRenotation bool) (spec, renotation munsell.Spec, err error) {
	c := FromRGB(rgb)
	spec = ToSpec(c)
	if !withRenotation {
		return spec, munsell.Spec{}, nil
	}
	renotation, err = Renotation(spec, c)
	if err != nil {
		return munsell.Spec{}, munsell.Spec{}, err
	}
	return spec, renotation, nil
}

// renotationValue snaps a value to the integer renotation rows, 1 to 10.
// Values between 9 and 9.9 fall to row 9.
func renotationValue(v float64) float64 {
	switch {
	case v < 1:
		v = 1
	case v > 9 && v < 9.9:
		v = 9
	}
	return math.RoundToEven(v)
}

func clampRound(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, math.Round(v)))
}
