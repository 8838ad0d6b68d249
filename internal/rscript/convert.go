package rscript

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/jmylchreest/munsellkit/internal/colour"
	"github.com/jmylchreest/munsellkit/internal/munsell"
)

// DefaultXYC is the illuminant C variant used by MunsellToXYY.
const DefaultXYC = "NBS"

// RGBToMunsell converts sRGB channels (0..255, fractions allowed) to a
// Munsell specification.
func (c *Client) RGBToMunsell(ctx context.Context, rgb [3]float64) (munsell.Spec, error) {
	out, err := c.run(ctx, ScriptToMunsell, "sRGB",
		formatFloat(rgb[0]), formatFloat(rgb[1]), formatFloat(rgb[2]))
	if err != nil {
		return munsell.Spec{}, err
	}
	return decodeHVC(ScriptToMunsell, out)
}

// XYYToMunsell converts an xyY colour (Y in 0..1) to a Munsell specification.
func (c *Client) XYYToMunsell(ctx context.Context, xyy colour.XYY) (munsell.Spec, error) {
	out, err := c.run(ctx, ScriptToMunsell, "xyY",
		formatFloat(xyy.X), formatFloat(xyy.Y), formatFloat(xyy.L*100))
	if err != nil {
		return munsell.Spec{}, err
	}
	return decodeHVC(ScriptToMunsell, out)
}

// MunsellToXYY returns the xyY coordinates (Y in 0..1) of a Munsell
// notation such as "N5.5" or "7.5GY3.2/2.1". An empty xyC selects DefaultXYC.
func (c *Client) MunsellToXYY(ctx context.Context, notation, xyC string) (colour.XYY, error) {
	if xyC == "" {
		xyC = DefaultXYC
	}
	out, err := c.run(ctx, ScriptMunsellToXYY, notation, xyC)
	if err != nil {
		return colour.XYY{}, err
	}

	row, err := firstRow(ScriptMunsellToXYY, out)
	if err != nil {
		return colour.XYY{}, err
	}
	var v []float64
	if err := json.Unmarshal(row, &v); err != nil || len(v) != 3 {
		return colour.XYY{}, &OutputError{Script: ScriptMunsellToXYY, Output: string(out)}
	}
	return colour.XYY{X: v[0], Y: v[1], L: v[2] / 100}, nil
}

// MunsellToRGB returns the sRGB channels (0..1) of a Munsell notation.
// ok is false when the colour has no sRGB equivalent.
func (c *Client) MunsellToRGB(ctx context.Context, notation string) (rgb [3]float64, ok bool, err error) {
	out, err := c.run(ctx, ScriptMunsellToRGB, notation)
	if err != nil {
		return rgb, false, err
	}

	row, err := firstRow(ScriptMunsellToRGB, out)
	if err != nil {
		return rgb, false, err
	}

	var cells []json.RawMessage
	if err := json.Unmarshal(row, &cells); err != nil || len(cells) != 3 {
		return rgb, false, &OutputError{Script: ScriptMunsellToRGB, Output: string(out)}
	}
	var na string
	if json.Unmarshal(cells[0], &na) == nil && na == "NA" {
		return rgb, false, nil
	}

	for i, cell := range cells {
		var v float64
		if err := json.Unmarshal(cell, &v); err != nil {
			return rgb, false, &OutputError{Script: ScriptMunsellToRGB, Output: string(out)}
		}
		rgb[i] = v / 255
	}
	return rgb, true, nil
}

// firstRow returns the first element of a non-empty JSON array.
func firstRow(script string, out []byte) (json.RawMessage, error) {
	var rows []json.RawMessage
	if err := json.Unmarshal(out, &rows); err != nil || len(rows) == 0 {
		return nil, &OutputError{Script: script, Output: string(out)}
	}
	return rows[0], nil
}

func decodeHVC(script string, out []byte) (munsell.Spec, error) {
	row, err := firstRow(script, out)
	if err != nil {
		return munsell.Spec{}, err
	}
	var hvc []float64
	if err := json.Unmarshal(row, &hvc); err != nil || len(hvc) != 3 {
		return munsell.Spec{}, &OutputError{Script: script, Output: string(out)}
	}
	return munsell.FromHVC(hvc[0], hvc[1], hvc[2]), nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
