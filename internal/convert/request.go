// Package convert runs single colour conversions between sRGB, xyY and
// Munsell notation using either the R backend or the UP LAB heuristics.
package convert

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/jmylchreest/munsellkit/internal/colour"
	"github.com/jmylchreest/munsellkit/internal/munsell"
)

// Source is the kind of colour a request starts from.
type Source string

// Target is the kind of colour a request produces.
type Target string

// Method selects the conversion backend for Munsell conversions.
type Method string

const (
	SourceRGB     Source = "rgb"
	SourceHex     Source = "hex"
	SourceXYY     Source = "xyy"
	SourceMunsell Source = "munsell"

	TargetMunsell Target = "munsell"
	TargetRGB     Target = "rgb"
	TargetXYY     Target = "xyy"

	// MethodRscript runs munsellinterpol through Rscript.
	MethodRscript Method = "rscript"
	// MethodUPLab uses the UP LAB heuristics, no external process.
	MethodUPLab Method = "uplab"
)

// ErrInvalidRequest is wrapped by Validate errors.
var ErrInvalidRequest = errors.New("convert: invalid request")

// Request describes one conversion.
type Request struct {
	// Name labels the request in batch output.
	Name   string
	From   Source
	Input  string
	To     Target
	Method Method

	// Renotation also reports the nearest renotation grid colour when
	// converting to Munsell.
	Renotation bool

	// XYC names the illuminant C variant for Munsell to xyY with the R
	// backend. Empty selects the backend default.
	XYC string

	// White is the reference white of xyY values converted to or from
	// sRGB. The zero value is D65.
	White colour.Illuminant
}

// ParseSource parses a source kind.
func ParseSource(s string) (Source, error) {
	switch src := Source(strings.ToLower(strings.TrimSpace(s))); src {
	case SourceRGB, SourceHex, SourceXYY, SourceMunsell:
		return src, nil
	}
	return "", fmt.Errorf("%w: unknown source %q (valid: rgb, hex, xyy, munsell)", ErrInvalidRequest, s)
}

// ParseTarget parses a target kind.
func ParseTarget(s string) (Target, error) {
	switch t := Target(strings.ToLower(strings.TrimSpace(s))); t {
	case TargetMunsell, TargetRGB, TargetXYY:
		return t, nil
	}
	return "", fmt.Errorf("%w: unknown target %q (valid: munsell, rgb, xyy)", ErrInvalidRequest, s)
}

// ParseMethod parses a method name. Empty selects MethodRscript.
func ParseMethod(s string) (Method, error) {
	switch m := Method(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return MethodRscript, nil
	case MethodRscript, MethodUPLab:
		return m, nil
	}
	return "", fmt.Errorf("%w: unknown method %q (valid: rscript, uplab)", ErrInvalidRequest, s)
}

// Validate checks the request kinds and fills defaults: target munsell,
// method rscript.
func (r *Request) Validate() error {
	var err error
	if r.From, err = ParseSource(string(r.From)); err != nil {
		return err
	}
	if r.To == "" {
		r.To = TargetMunsell
	}
	if r.To, err = ParseTarget(string(r.To)); err != nil {
		return err
	}
	if r.Method, err = ParseMethod(string(r.Method)); err != nil {
		return err
	}
	if strings.TrimSpace(r.Input) == "" {
		return fmt.Errorf("%w: input cannot be empty", ErrInvalidRequest)
	}
	return nil
}

// ParseRGBChannels parses "r, g, b" or "r g b" with channels in 0..255,
// fractions allowed, or any form accepted by colour.ParseColour.
func ParseRGBChannels(s string) ([3]float64, error) {
	var ch [3]float64
	fields := splitFields(s)
	numeric := len(fields) == 3
	for i := 0; numeric && i < 3; i++ {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			numeric = false
			break
		}
		if math.IsNaN(v) || v < 0 || v > 255 {
			return ch, fmt.Errorf("invalid RGB channel %q (expected 0-255)", fields[i])
		}
		ch[i] = v
	}
	if numeric {
		return ch, nil
	}

	rgb, err := colour.ParseColour(s)
	if err != nil {
		return [3]float64{}, err
	}
	return channels(rgb), nil
}

// ParseRGB is ParseRGBChannels rounded to 8-bit channels.
func ParseRGB(s string) (colour.RGB, error) {
	ch, err := ParseRGBChannels(s)
	if err != nil {
		return colour.RGB{}, err
	}
	return colour.FromUnit(ch[0]/255, ch[1]/255, ch[2]/255), nil
}

func channels(rgb colour.RGB) [3]float64 {
	return [3]float64{float64(rgb.R), float64(rgb.G), float64(rgb.B)}
}

// ParseXYY parses "x, y, Y" or "x y Y" with all three in 0..1.
func ParseXYY(s string) (colour.XYY, error) {
	fields := splitFields(s)
	if len(fields) != 3 {
		return colour.XYY{}, fmt.Errorf("xyY needs 3 components, got %d", len(fields))
	}

	var v [3]float64
	for i, f := range fields {
		n, err := strconv.ParseFloat(f, 64)
		if err != nil || n < 0 || n > 1 {
			return colour.XYY{}, fmt.Errorf("invalid xyY component %q (expected 0-1)", f)
		}
		v[i] = n
	}
	if v[1] == 0 && v[2] != 0 {
		return colour.XYY{}, fmt.Errorf("xyY with y = 0 must have Y = 0")
	}
	return colour.XYY{X: v[0], Y: v[1], L: v[2]}, nil
}

// input is a parsed request input. Only the fields of its source are set;
// rgb sources fill both rgb and channels.
type input struct {
	rgb      colour.RGB
	channels [3]float64
	xyy      colour.XYY
	spec     munsell.Spec
}

func parseInput(from Source, s string) (input, error) {
	var in input
	var err error
	switch from {
	case SourceRGB:
		if in.channels, err = ParseRGBChannels(s); err == nil {
			in.rgb, err = ParseRGB(s)
		}
	case SourceHex:
		if in.rgb, err = colour.ParseColour(s); err == nil {
			in.channels = channels(in.rgb)
		}
	case SourceXYY:
		in.xyy, err = ParseXYY(s)
	case SourceMunsell:
		in.spec, err = munsell.ParseNotation(s)
	default:
		err = fmt.Errorf("%w: unknown source %q", ErrInvalidRequest, from)
	}
	return in, err
}

func splitFields(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
}
