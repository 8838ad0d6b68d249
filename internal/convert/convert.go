package convert

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/munsellkit/internal/colour"
	"github.com/jmylchreest/munsellkit/internal/munsell"
	"github.com/jmylchreest/munsellkit/internal/uplab"
)

// ErrOutOfGamut is returned when a Munsell colour has no sRGB equivalent.
var ErrOutOfGamut = errors.New("colour is outside the sRGB gamut")

// Backend performs conversions through munsellinterpol.
// *rscript.Client satisfies it.
type Backend interface {
	RGBToMunsell(ctx context.Context, rgb [3]float64) (munsell.Spec, error)
	XYYToMunsell(ctx context.Context, xyy colour.XYY) (munsell.Spec, error)
	MunsellToXYY(ctx context.Context, notation, xyC string) (colour.XYY, error)
	MunsellToRGB(ctx context.Context, notation string) ([3]float64, bool, error)
}

// Result is the outcome of one conversion. Err is set on failure and the
// colour fields are then empty.
type Result struct {
	Name   string `json:"name,omitempty"`
	Input  string `json:"input"`
	From   Source `json:"from"`
	To     Target `json:"to"`
	Method Method `json:"method,omitempty"`

	Notation   string        `json:"notation,omitempty"`
	Spec       *munsell.Spec `json:"spec,omitempty"`
	Renotation *munsell.Spec `json:"renotation,omitempty"`

	// RenotationDeltaE is the CIEDE2000 difference between the input and
	// its renotation colour, set for uplab conversions.
	RenotationDeltaE *float64 `json:"renotation_delta_e,omitempty"`

	RGB     *colour.RGB `json:"rgb,omitempty"`
	Hex     string      `json:"hex,omitempty"`
	XYY     *colour.XYY `json:"xyy,omitempty"`
	InGamut bool        `json:"in_gamut"`

	Err   error  `json:"-"`
	Error string `json:"error,omitempty"`
}

// Converter dispatches requests to the selected method.
type Converter struct {
	backend  func() (Backend, error)
	rounding munsell.Rounding
	truncate bool
	logger   hclog.Logger
}

// Option configures a Converter.
type Option func(*Converter)

// WithBackend sets a fixed R backend.
func WithBackend(b Backend) Option {
	return func(c *Converter) {
		c.backend = func() (Backend, error) { return b, nil }
	}
}

// WithBackendFactory sets a function that creates the R backend on first
// use. Requests using MethodUPLab never call it.
func WithBackendFactory(f func() (Backend, error)) Option {
	return func(c *Converter) {
		c.backend = sync.OnceValues(f)
	}
}

// WithRounding sets how Munsell notations are formatted.
func WithRounding(r munsell.Rounding, truncate bool) Option {
	return func(c *Converter) {
		c.rounding = r
		c.truncate = truncate
	}
}

// WithLogger sets the logger.
func WithLogger(l hclog.Logger) Option {
	return func(c *Converter) {
		c.logger = l
	}
}

// New creates a Converter. Without a backend option MethodRscript requests
// fail.
func New(opts ...Option) *Converter {
	c := &Converter{
		backend: func() (Backend, error) {
			return nil, errors.New("no Rscript backend configured")
		},
		rounding: munsell.RoundDecimals(1),
		truncate: true,
		logger:   hclog.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Convert runs one request. Failures are reported in Result.Err.
func (c *Converter) Convert(ctx context.Context, req Request) Result {
	res := Result{Name: req.Name, Input: req.Input, From: req.From, To: req.To, Method: req.Method}
	if err := req.Validate(); err != nil {
		return res.fail(err)
	}
	res.From, res.To, res.Method = req.From, req.To, req.Method

	in, err := parseInput(req.From, req.Input)
	if err != nil {
		return res.fail(err)
	}

	c.logger.Debug("converting colour", "name", req.Name, "from", req.From, "to", req.To, "method", req.Method, "input", req.Input)

	switch req.To {
	case TargetMunsell:
		err = c.toMunsell(ctx, req, in, &res)
	case TargetRGB:
		err = c.toRGB(ctx, req, in, &res)
	case TargetXYY:
		err = c.toXYY(ctx, req, in, &res)
	}
	if err != nil {
		c.logger.Debug("conversion failed", "name", req.Name, "input", req.Input, "error", err)
		return res.fail(err)
	}
	return res
}

func (c *Converter) toMunsell(ctx context.Context, req Request, in input, res *Result) error {
	if req.From == SourceMunsell {
		res.InGamut = true
		return c.setSpec(res, in.spec)
	}

	if req.Method == MethodUPLab {
		rgb := in.rgb
		if req.From == SourceXYY {
			var inGamut bool
			rgb, inGamut = colour.XYZToRGB(colour.XYYToXYZ(in.xyy), req.White)
			if !inGamut {
				c.logger.Warn("xyY input clamped to sRGB gamut", "input", req.Input)
			}
		}
		s, reno, err := uplab.RGBToMunsell(rgb, req.Renotation)
		if err != nil {
			return err
		}
		if req.Renotation {
			res.Renotation = &reno
			de := colour.DeltaE(colour.RGBToLab(rgb, colour.IlluminantD50), uplab.FromSpec(reno).Lab())
			res.RenotationDeltaE = &de
		}
		res.InGamut = true
		return c.setSpec(res, s)
	}

	backend, err := c.backend()
	if err != nil {
		return err
	}
	var s munsell.Spec
	if req.From == SourceXYY {
		s, err = backend.XYYToMunsell(ctx, in.xyy)
	} else {
		s, err = backend.RGBToMunsell(ctx, in.channels)
	}
	if err != nil {
		return err
	}
	if req.Renotation {
		n, err := munsell.Normalize(s, munsell.RoundRenotation, true)
		if err != nil {
			return err
		}
		res.Renotation = &n.Spec
	}
	res.InGamut = true
	return c.setSpec(res, s)
}

func (c *Converter) toRGB(ctx context.Context, req Request, in input, res *Result) error {
	switch req.From {
	case SourceRGB, SourceHex:
		res.setRGB(in.rgb, true)
		return nil
	case SourceXYY:
		out, inGamut := colour.XYZToRGB(colour.XYYToXYZ(in.xyy), req.White)
		res.setRGB(out, inGamut)
		return nil
	}

	spec := in.spec

	res.Notation = spec.String()
	if req.Method == MethodUPLab {
		out, inGamut := uplab.SpecToRGB(spec)
		res.setRGB(out, inGamut)
		return nil
	}

	backend, err := c.backend()
	if err != nil {
		return err
	}
	unit, ok, err := backend.MunsellToRGB(ctx, spec.InterpolNotation())
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s: %w", spec, ErrOutOfGamut)
	}
	res.setRGB(colour.FromUnit(unit[0], unit[1], unit[2]), true)
	return nil
}

func (c *Converter) toXYY(ctx context.Context, req Request, in input, res *Result) error {
	switch req.From {
	case SourceXYY:
		xyy := in.xyy
		res.XYY = &xyy
		res.InGamut = true
		return nil
	case SourceRGB, SourceHex:
		out := colour.XYZToXYY(colour.RGBToXYZ(in.rgb, req.White), req.White)
		res.XYY = &out
		res.InGamut = true
		return nil
	}

	spec := in.spec

	res.Notation = spec.String()
	if req.Method == MethodUPLab {
		out, inGamut := uplab.SpecToRGB(spec)
		v := colour.XYZToXYY(colour.RGBToXYZ(out, req.White), req.White)
		res.XYY = &v
		res.InGamut = inGamut
		return nil
	}

	backend, err := c.backend()
	if err != nil {
		return err
	}
	out, err := backend.MunsellToXYY(ctx, spec.InterpolNotation(), req.XYC)
	if err != nil {
		return err
	}
	res.XYY = &out
	res.InGamut = true
	return nil
}

func (c *Converter) setSpec(res *Result, s munsell.Spec) error {
	n, err := munsell.Normalize(s, c.rounding, c.truncate)
	if err != nil {
		return err
	}
	res.Spec = &s
	res.Notation = n.Color
	return nil
}

func (r *Result) setRGB(rgb colour.RGB, inGamut bool) {
	r.RGB = &rgb
	r.Hex = rgb.Hex()
	r.InGamut = inGamut
}

func (r Result) fail(err error) Result {
	r.Err = err
	r.Error = err.Error()
	return r
}
