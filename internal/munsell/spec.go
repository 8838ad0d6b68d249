// Package munsell provides Munsell notation parsing, formatting and
// normalisation on top of Colorlab-compatible specifications.
package munsell

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	// ErrInvalidNotation is returned when a Munsell colour string cannot be parsed.
	ErrInvalidNotation = errors.New("invalid Munsell notation")

	// ErrInvalidHueIndex is returned for a Colorlab hue index outside 0..10.
	ErrInvalidHueIndex = errors.New("invalid hue index")

	// ErrInvalidRounding is returned for an unknown rounding mode.
	ErrInvalidRounding = errors.New("invalid rounding")
)

// NeutralIndex is the hue index used for neutral (N) colours.
const NeutralIndex = 0

// Colorlab hue names indexed by hue index - 1.
var hueNames = [10]string{
	"B",  // 1, ASTM 60
	"BG", // 2, ASTM 50
	"G",  // 3, ASTM 40
	"GY", // 4, ASTM 30
	"Y",  // 5, ASTM 20
	"YR", // 6, ASTM 10
	"R",  // 7, ASTM  0
	"RP", // 8, ASTM 90
	"P",  // 9, ASTM 80
	"PB", // 10, ASTM 70
}

// Spec is a Colorlab-compatible Munsell specification.
//
// HueIndex runs from 1 (B) to 10 (PB) in Colorlab order. A HueIndex of
// NeutralIndex marks a neutral colour; HueShade and Chroma are ignored then.
type Spec struct {
	HueShade float64
	Value    float64
	Chroma   float64
	HueIndex int
}

// Neutral returns a neutral specification with the given value.
func Neutral(value float64) Spec {
	return Spec{Value: value, HueIndex: NeutralIndex}
}

// IsNeutral reports whether the specification is a neutral (grey) colour.
func (s Spec) IsNeutral() bool {
	return s.HueIndex == NeutralIndex
}

// HueName returns the one or two letter hue code, "N" for neutrals.
func (s Spec) HueName() string {
	name, err := HueName(s.HueIndex)
	if err != nil {
		return "?"
	}
	return name
}

// String returns the canonical Munsell notation, e.g. "2.5PB 8/6" or "N 5.5".
func (s Spec) String() string {
	if s.IsNeutral() {
		return "N " + formatNumber(s.Value, -1, true)
	}
	return fmt.Sprintf("%s%s %s/%s",
		formatNumber(s.HueShade, -1, true), s.HueName(),
		formatNumber(s.Value, -1, true), formatNumber(s.Chroma, -1, true))
}

// Array returns the Colorlab array form [hue_shade, value, chroma, hue_index].
// Fields that do not apply to neutrals are NaN.
func (s Spec) Array() [4]float64 {
	if s.IsNeutral() {
		return [4]float64{math.NaN(), s.Value, math.NaN(), math.NaN()}
	}
	return [4]float64{s.HueShade, s.Value, s.Chroma, float64(s.HueIndex)}
}

// MarshalJSON encodes the Colorlab array, with null for neutral-only fields.
func (s Spec) MarshalJSON() ([]byte, error) {
	if s.IsNeutral() {
		return json.Marshal([4]*float64{nil, &s.Value, nil, nil})
	}
	idx := float64(s.HueIndex)
	return json.Marshal([4]*float64{&s.HueShade, &s.Value, &s.Chroma, &idx})
}

// UnmarshalJSON decodes the Colorlab array form written by MarshalJSON.
func (s *Spec) UnmarshalJSON(data []byte) error {
	var arr [4]*float64
	if err := json.Unmarshal(data, &arr); err != nil {
		return fmt.Errorf("failed to decode Colorlab specification: %w", err)
	}
	if arr[1] == nil {
		return fmt.Errorf("%w: missing value", ErrInvalidNotation)
	}
	if arr[3] == nil || *arr[3] == 0 || arr[0] == nil || arr[2] == nil {
		*s = Neutral(*arr[1])
		return nil
	}
	idx := int(*arr[3])
	if float64(idx) != *arr[3] || idx < 1 || idx > 10 {
		return fmt.Errorf("%w: %v", ErrInvalidHueIndex, *arr[3])
	}
	*s = Spec{HueShade: *arr[0], Value: *arr[1], Chroma: *arr[2], HueIndex: idx}
	return nil
}

// HueName returns the hue code for a Colorlab hue index, "N" for 0.
func HueName(index int) (string, error) {
	if index < 0 || index > 10 {
		return "", fmt.Errorf("%w: %d", ErrInvalidHueIndex, index)
	}
	if index == NeutralIndex {
		return "N", nil
	}
	return hueNames[index-1], nil
}

// HueIndexFromName returns the Colorlab hue index for a hue code.
// "N" yields NeutralIndex.
func HueIndexFromName(name string) (int, error) {
	name = strings.ToUpper(strings.TrimSpace(name))
	if name == "N" {
		return NeutralIndex, nil
	}
	for i, n := range hueNames {
		if n == name {
			return i + 1, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown hue %q", ErrInvalidNotation, name)
}

// ASTMHue returns the ASTM hue number (R=0, YR=10, ... RP=90) plus the
// hue shade. Neutrals return 0.
func ASTMHue(index int, shade float64) (float64, error) {
	if index < 0 || index > 10 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidHueIndex, index)
	}
	if index == NeutralIndex {
		return 0, nil
	}
	return float64(10*((17-index)%10)) + shade, nil
}

// HueData describes a hue in several formats.
type HueData struct {
	Name    string  `json:"hue_name"`
	Total   string  `json:"total_hue"`
	ASTM    float64 `json:"astm_hue"`
	Neutral bool    `json:"neutral"`
}

// HueInfo returns the name, total hue string (e.g. "2.5PB") and ASTM hue
// for a hue. decimals controls the precision of the total hue string.
func HueInfo(index int, shade float64, decimals int, truncate bool) (HueData, error) {
	if index == NeutralIndex {
		return HueData{Name: "N", Total: "N", Neutral: true}, nil
	}
	name, err := HueName(index)
	if err != nil {
		return HueData{}, err
	}
	astm, err := ASTMHue(index, shade)
	if err != nil {
		return HueData{}, err
	}
	return HueData{
		Name:  name,
		Total: formatNumber(shade, decimals, truncate) + name,
		ASTM:  astm,
	}, nil
}
