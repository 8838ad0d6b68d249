package data

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"sync"

	"github.com/jmylchreest/munsellkit/internal/colour"
)

// NeutralsTable is the name of the Munsell neutral scale table.
const NeutralsTable = "munsell_neutrals"

// Neutral is one row of the Munsell neutral scale: a grey with its ASTM
// D1535 luminance and sRGB rendering.
type Neutral struct {
	Notation string     `json:"notation"`
	Value    float64    `json:"value"`
	Y        float64    `json:"Y"`
	RGB      colour.RGB `json:"rgb"`
	Hex      string     `json:"hex"`
}

var neutralColumns = []string{"notation", "value", "Y", "r", "g", "b", "hex"}

var loadNeutrals = sync.OnceValues(func() ([]Neutral, error) {
	rc, err := Open(NeutralsTable)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return parseNeutrals(rc)
})

// Neutrals returns the neutral scale from N0 to N10, darkest first.
// The returned slice is a copy.
func Neutrals() ([]Neutral, error) {
	rows, err := loadNeutrals()
	if err != nil {
		return nil, err
	}
	return append([]Neutral(nil), rows...), nil
}

// NearestNeutral returns the neutral whose luminance Y (0..100) is
// closest to y.
func NearestNeutral(y float64) (Neutral, error) {
	rows, err := loadNeutrals()
	if err != nil {
		return Neutral{}, err
	}
	if len(rows) == 0 {
		return Neutral{}, fmt.Errorf("neutral table is empty")
	}

	best := rows[0]
	for _, row := range rows[1:] {
		if math.Abs(row.Y-y) < math.Abs(best.Y-y) {
			best = row
		}
	}
	return best, nil
}

func parseNeutrals(r io.Reader) ([]Neutral, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(neutralColumns)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s header: %w", NeutralsTable, err)
	}
	for i, col := range neutralColumns {
		if header[i] != col {
			return nil, fmt.Errorf("unexpected %s column %d: %q (want %q)", NeutralsTable, i, header[i], col)
		}
	}

	var rows []Neutral
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", NeutralsTable, err)
		}

		row, err := parseNeutral(rec)
		if err != nil {
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("%s line %d: %w", NeutralsTable, line, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseNeutral(rec []string) (Neutral, error) {
	value, err := strconv.ParseFloat(rec[1], 64)
	if err != nil {
		return Neutral{}, fmt.Errorf("invalid value %q: %w", rec[1], err)
	}
	y, err := strconv.ParseFloat(rec[2], 64)
	if err != nil {
		return Neutral{}, fmt.Errorf("invalid Y %q: %w", rec[2], err)
	}

	var ch [3]uint8
	for i := range ch {
		v, err := strconv.ParseUint(rec[3+i], 10, 8)
		if err != nil {
			return Neutral{}, fmt.Errorf("invalid %s %q: %w", neutralColumns[3+i], rec[3+i], err)
		}
		ch[i] = uint8(v)
	}

	return Neutral{
		Notation: rec[0],
		Value:    value,
		Y:        y,
		RGB:      colour.RGB{R: ch[0], G: ch[1], B: ch[2]},
		Hex:      rec[6],
	}, nil
}
