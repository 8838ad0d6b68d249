package munsell

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	chromaticPattern = regexp.MustCompile(
		`^(\d+(?:\.\d*)?)\s*(YR|GY|BG|PB|RP|R|Y|G|B|P)\s*(\d+(?:\.\d*)?)\s*/\s*(\d+(?:\.\d*)?)$`)
	neutralPattern = regexp.MustCompile(
		`^N\s*(\d+(?:\.\d*)?)\s*(?:/\s*(?:0*(?:\.0*)?)?)?$`)
)

// ParseNotation parses a Munsell colour string such as "5R 4/14",
// "7.5GY3.2/2.1", "N5.5" or "N 5/".
//
// A chromatic colour with zero chroma is returned as a neutral.
func ParseNotation(s string) (Spec, error) {
	text := strings.ToUpper(strings.TrimSpace(s))
	if text == "" {
		return Spec{}, fmt.Errorf("%w: empty string", ErrInvalidNotation)
	}

	if m := neutralPattern.FindStringSubmatch(text); m != nil {
		value, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return Spec{}, fmt.Errorf("%w: %q: %v", ErrInvalidNotation, s, err)
		}
		if value > 10 {
			return Spec{}, fmt.Errorf("%w: %q: value %g out of range [0, 10]", ErrInvalidNotation, s, value)
		}
		return Neutral(value), nil
	}

	m := chromaticPattern.FindStringSubmatch(text)
	if m == nil {
		return Spec{}, fmt.Errorf("%w: %q", ErrInvalidNotation, s)
	}

	// The pattern only admits digits and dots, so ParseFloat cannot fail.
	shade, _ := strconv.ParseFloat(m[1], 64)
	value, _ := strconv.ParseFloat(m[3], 64)
	chroma, _ := strconv.ParseFloat(m[4], 64)

	if shade > 10 {
		return Spec{}, fmt.Errorf("%w: %q: hue shade %g out of range [0, 10]", ErrInvalidNotation, s, shade)
	}
	if value > 10 {
		return Spec{}, fmt.Errorf("%w: %q: value %g out of range [0, 10]", ErrInvalidNotation, s, value)
	}
	if chroma == 0 {
		return Neutral(value), nil
	}

	index, err := HueIndexFromName(m[2])
	if err != nil {
		return Spec{}, err
	}
	index, shade, err = NormalizeHue(index, shade, RoundNone)
	if err != nil {
		return Spec{}, err
	}

	return Spec{HueShade: shade, Value: value, Chroma: chroma, HueIndex: index}, nil
}

// formatNumber formats v with the given number of decimals (-1 for the
// shortest representation). With truncate set, an all-zero fractional part
// is dropped: 5.00 becomes 5, 10.05 stays 10.05.
func formatNumber(v float64, decimals int, truncate bool) string {
	s := strconv.FormatFloat(v, 'f', decimals, 64)
	if !truncate {
		return s
	}
	if dot := strings.IndexByte(s, '.'); dot >= 0 {
		if strings.Trim(s[dot+1:], "0") == "" {
			s = s[:dot]
		}
	}
	if s == "-0" {
		s = "0"
	}
	return s
}
