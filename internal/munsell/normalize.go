package munsell

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

type roundingMode int

const (
	roundNone roundingMode = iota
	roundDecimals
	roundRenotation
)

// Rounding selects how Normalize and NormalizeHue round a specification.
type Rounding struct {
	mode     roundingMode
	decimals int
}

var (
	// RoundNone leaves all components unrounded.
	RoundNone = Rounding{mode: roundNone}

	// RoundRenotation snaps to the Munsell renotation grid: hue shades of
	// 2.5, 5, 7.5 and 10, integer values and even chromas.
	RoundRenotation = Rounding{mode: roundRenotation}
)

// RoundDecimals rounds hue shade, value and chroma to n decimal places.
func RoundDecimals(n int) Rounding {
	return Rounding{mode: roundDecimals, decimals: n}
}

// ParseRounding parses "none", "renotation" or a number of decimals.
func ParseRounding(s string) (Rounding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return RoundNone, nil
	case "renotation":
		return RoundRenotation, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return Rounding{}, fmt.Errorf("%w: %q (valid: none, renotation, or a number of decimals)", ErrInvalidRounding, s)
	}
	return RoundDecimals(n), nil
}

// String returns the textual form accepted by ParseRounding.
func (r Rounding) String() string {
	switch r.mode {
	case roundRenotation:
		return "renotation"
	case roundDecimals:
		return strconv.Itoa(r.decimals)
	default:
		return "none"
	}
}

// NormalizeHue rounds a hue and brings it into canonical form. A shade of
// 0 becomes shade 10 of the adjacent hue, so 0R is reported as 10RP.
// Neutral hues are returned unchanged.
func NormalizeHue(index int, shade float64, rounding Rounding) (int, float64, error) {
	if index == NeutralIndex {
		return NeutralIndex, 0, nil
	}
	if index < 1 || index > 10 {
		return 0, 0, fmt.Errorf("%w: %d", ErrInvalidHueIndex, index)
	}

	switch rounding.mode {
	case roundRenotation:
		shade = math.RoundToEven(shade/2.5) * 2.5
	case roundDecimals:
		shade = roundTo(shade, rounding.decimals)
	}

	shade = clamp(shade, 0, 10)
	if shade == 0 {
		shade = 10
		index = index%10 + 1
	}
	return index, shade, nil
}

// Normalized is a normalised specification together with its notation.
type Normalized struct {
	Color string  `json:"color"`
	Spec  Spec    `json:"spec"`
	Hue   HueData `json:"hue"`
}

// Normalize rounds and clamps a specification and formats its notation.
//
// Values are clamped to [0, 10] and chromas to [0, 50]. Renotation rounding
// raises the minimum value to 1 and the minimum chroma to 2; a chroma that
// rounds below 2 turns the colour neutral at its rounded value. A value that
// clamps to 0 is always neutral.
// With truncate set, all-zero fractional parts are dropped from the notation.
func Normalize(spec Spec, rounding Rounding, truncate bool) (Normalized, error) {
	index, shade, err := NormalizeHue(spec.HueIndex, spec.HueShade, rounding)
	if err != nil {
		return Normalized{}, err
	}
	value, chroma := spec.Value, spec.Chroma

	var minValue, minChroma float64
	var hueDecimals, valueDec, chromaDec int
	neutral := index == NeutralIndex

	switch rounding.mode {
	case roundRenotation:
		minValue, minChroma = 1, 2
		hueDecimals, valueDec, chromaDec = 1, 0, 0
		value = math.RoundToEven(value)
		chroma = math.RoundToEven(chroma/2) * 2
		if chroma < 2 {
			neutral = true
		}
	case roundDecimals:
		hueDecimals, valueDec, chromaDec = rounding.decimals, rounding.decimals, rounding.decimals
		value = roundTo(value, rounding.decimals)
		chroma = roundTo(chroma, rounding.decimals)
	default:
		hueDecimals, valueDec, chromaDec = 2, 2, 2
	}

	value = clamp(value, minValue, 10)
	if value == 0 {
		neutral = true
	}

	var norm Spec
	if neutral {
		norm = Neutral(value)
	} else {
		norm = Spec{
			HueShade: shade,
			Value:    value,
			Chroma:   clamp(chroma, minChroma, 50),
			HueIndex: index,
		}
	}

	hue, err := HueInfo(norm.HueIndex, norm.HueShade, hueDecimals, truncate)
	if err != nil {
		return Normalized{}, err
	}

	var cv string
	if norm.IsNeutral() {
		cv = formatNumber(norm.Value, valueDec, truncate)
	} else {
		cv = formatNumber(norm.Value, valueDec, truncate) + "/" + formatNumber(norm.Chroma, chromaDec, truncate)
	}

	return Normalized{
		Color: hue.Total + " " + cv,
		Spec:  norm,
		Hue:   hue,
	}, nil
}

// roundTo rounds half to even at n decimal places.
func roundTo(v float64, n int) float64 {
	p := math.Pow(10, float64(n))
	return math.RoundToEven(v*p) / p
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}
