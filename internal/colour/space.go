package colour

import (
	"fmt"
	"math"

	"github.com/jkl1337/go-chromath"
	"github.com/jkl1337/go-chromath/deltae"
)

// Illuminant identifies a CIE 1931 2° reference white.
type Illuminant int

const (
	// IlluminantD65 is the sRGB reference white.
	IlluminantD65 Illuminant = iota
	// IlluminantC is the reference white of the Munsell renotation.
	IlluminantC
	// IlluminantD50 is the ICC profile connection space white.
	IlluminantD50
)

// String returns the illuminant name.
func (i Illuminant) String() string {
	switch i {
	case IlluminantC:
		return "C"
	case IlluminantD50:
		return "D50"
	default:
		return "D65"
	}
}

// ParseIlluminant parses "C", "D50" or "D65".
func ParseIlluminant(s string) (Illuminant, error) {
	switch s {
	case "C", "c":
		return IlluminantC, nil
	case "D50", "d50":
		return IlluminantD50, nil
	case "D65", "d65", "":
		return IlluminantD65, nil
	}
	return 0, fmt.Errorf("unknown illuminant: %s (valid: C, D50, D65)", s)
}

// Chromaticity returns the xy chromaticity of the illuminant.
func (i Illuminant) Chromaticity() (x, y float64) {
	switch i {
	case IlluminantC:
		return 0.31006, 0.31616
	case IlluminantD50:
		return 0.34567, 0.35850
	default:
		return 0.31270, 0.32900
	}
}

func (i Illuminant) ref() *chromath.IlluminantRef {
	switch i {
	case IlluminantC:
		return &chromath.IlluminantRefC
	case IlluminantD50:
		return &chromath.IlluminantRefD50
	default:
		return &chromath.IlluminantRefD65
	}
}

// XYZ holds CIE 1931 tristimulus values with Y on a 0..1 scale.
type XYZ struct {
	X float64 `json:"X"`
	Y float64 `json:"Y"`
	Z float64 `json:"Z"`
}

// XYY holds CIE xyY chromaticity and luminance, Y on a 0..1 scale.
type XYY struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	L float64 `json:"Y"`
}

// String returns the xyY triple as "xyY(x, y, Y)".
func (c XYY) String() string {
	return fmt.Sprintf("xyY(%.5f, %.5f, %.5f)", c.X, c.Y, c.L)
}

// Lab holds CIE L*a*b* coordinates with L* in 0..100.
type Lab struct {
	L float64 `json:"L"`
	A float64 `json:"a"`
	B float64 `json:"b"`
}

// rgbTransformer returns an sRGB transformer adapted to the given white
// with the Bradford transform. Channel values are on a 0..1 scale.
func rgbTransformer(white Illuminant) *chromath.RGBTransformer {
	return chromath.NewRGBTransformer(
		&chromath.SpaceSRGB,
		&chromath.AdaptationBradford,
		white.ref(),
		nil,
		1.0,
		nil,
	)
}

// RGBToXYZ converts an 8-bit sRGB colour to XYZ relative to the given white.
func RGBToXYZ(rgb RGB, white Illuminant) XYZ {
	xyz := rgbTransformer(white).Convert(chromath.RGB{
		float64(rgb.R) / 255.0,
		float64(rgb.G) / 255.0,
		float64(rgb.B) / 255.0,
	})
	return XYZ{X: xyz.X(), Y: xyz.Y(), Z: xyz.Z()}
}

// XYZToRGB converts XYZ relative to the given white to 8-bit sRGB.
// The boolean reports whether the colour was inside the sRGB gamut; out of
// gamut channels are clamped.
func XYZToRGB(xyz XYZ, white Illuminant) (RGB, bool) {
	rgb := rgbTransformer(white).Invert(chromath.XYZ{xyz.X, xyz.Y, xyz.Z})

	const eps = 1e-4
	inGamut := true
	channels := [3]uint8{}
	for i, v := range [3]float64{rgb.R(), rgb.G(), rgb.B()} {
		if math.IsNaN(v) || v < -eps || v > 1+eps {
			inGamut = false
		}
		channels[i] = clampChannel(v * 255)
	}
	return RGB{R: channels[0], G: channels[1], B: channels[2]}, inGamut
}

// XYZToXYY converts tristimulus values to xyY. Black maps to the white
// point chromaticity with zero luminance.
func XYZToXYY(xyz XYZ, white Illuminant) XYY {
	sum := xyz.X + xyz.Y + xyz.Z
	if sum == 0 {
		x, y := white.Chromaticity()
		return XYY{X: x, Y: y, L: 0}
	}
	return XYY{X: xyz.X / sum, Y: xyz.Y / sum, L: xyz.Y}
}

// XYYToXYZ converts xyY to tristimulus values. A zero y yields black.
func XYYToXYZ(c XYY) XYZ {
	if c.Y == 0 {
		return XYZ{}
	}
	return XYZ{
		X: c.X / c.Y * c.L,
		Y: c.L,
		Z: (1 - c.X - c.Y) / c.Y * c.L,
	}
}

// XYZToLab converts tristimulus values to CIE Lab relative to the given white.
func XYZToLab(xyz XYZ, white Illuminant) Lab {
	lab := chromath.NewLabTransformer(white.ref()).Invert(chromath.XYZ{xyz.X, xyz.Y, xyz.Z})
	return Lab{L: lab.L(), A: lab.A(), B: lab.B()}
}

// LabToXYZ converts CIE Lab relative to the given white to tristimulus values.
func LabToXYZ(lab Lab, white Illuminant) XYZ {
	xyz := chromath.NewLabTransformer(white.ref()).Convert(chromath.Lab{lab.L, lab.A, lab.B})
	return XYZ{X: xyz.X(), Y: xyz.Y(), Z: xyz.Z()}
}

// RGBToLab converts an 8-bit sRGB colour to CIE Lab relative to the given white.
func RGBToLab(rgb RGB, white Illuminant) Lab {
	return XYZToLab(RGBToXYZ(rgb, white), white)
}

// DeltaE returns the CIEDE2000 colour difference between two Lab colours.
func DeltaE(a, b Lab) float64 {
	return deltae.CIE2000(
		chromath.Lab{a.L, a.A, a.B},
		chromath.Lab{b.L, b.A, b.B},
		&deltae.KLChDefault,
	)
}

func clampChannel(v float64) uint8 {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(math.Round(v))
}
