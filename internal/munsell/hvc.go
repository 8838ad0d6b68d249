package munsell

import (
	"fmt"
	"math"
)

// munsellinterpol hue codes, 0-based from R.
var interpolHueNames = [10]string{"R", "YR", "Y", "GY", "G", "BG", "B", "PB", "P", "RP"}

// FromHVC converts a munsellinterpol HVC triple into a Colorlab
// specification. Hue is the ASTM hue number in [0, 100].
//
// A value or chroma of zero or less yields a neutral; munsellinterpol
// reports failures with value -1, which is clamped to black.
func FromHVC(hue, value, chroma float64) Spec {
	if value <= 0 || chroma <= 0 {
		return Neutral(math.Max(value, 0))
	}

	if hue == 0 {
		hue = 100
	}
	idx := int(math.Floor(hue / 10))
	shade := hue - float64(idx)*10
	if shade == 0 {
		shade = 10
		idx--
	}

	// | code | munsellinterpol | Colorlab |
	// |    R |               0 |        7 |
	// |   YR |               1 |        6 |
	// |    B |               6 |        1 |
	// |   PB |               7 |       10 |
	// |   RP |               9 |        8 |
	index := (16-idx)%10 + 1
	return Spec{HueShade: shade, Value: value, Chroma: chroma, HueIndex: index}
}

// HVC returns the munsellinterpol form of the specification: ASTM hue in
// (0, 100], value and chroma. Neutrals report hue 0 and chroma 0.
func (s Spec) HVC() (hue, value, chroma float64) {
	if s.IsNeutral() {
		return 0, s.Value, 0
	}
	astm, err := ASTMHue(s.HueIndex, s.HueShade)
	if err != nil {
		return 0, s.Value, 0
	}
	return astm, s.Value, s.Chroma
}

// InterpolNotation formats the specification the way munsellinterpol
// prints it, e.g. "2.5PB 8/6" or "N 5/".
func (s Spec) InterpolNotation() string {
	if s.IsNeutral() {
		return fmt.Sprintf("N %s/", formatNumber(s.Value, -1, true))
	}
	hue, _, _ := s.HVC()
	idx := int(math.Ceil(hue/10)) - 1
	if idx < 0 {
		idx = 0
	}
	return fmt.Sprintf("%s%s %s/%s",
		formatNumber(hue-float64(idx)*10, -1, true), interpolHueNames[idx],
		formatNumber(s.Value, -1, true), formatNumber(s.Chroma, -1, true))
}
