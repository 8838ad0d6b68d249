package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/flosch/pongo2"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/munsellkit/internal/colour"
	"github.com/jmylchreest/munsellkit/internal/data"
	"github.com/jmylchreest/munsellkit/internal/munsell"
	"github.com/jmylchreest/munsellkit/internal/render"
)

// output writes v as JSON or through the template, or table as text.
func (a *app) output(cmd *cobra.Command, v any, table *render.Table) error {
	w := cmd.OutOrStdout()
	switch a.cfg.Format {
	case render.FormatJSON:
		return render.JSON(w, v)
	case render.FormatTemplate:
		return render.Template(w, a.cfg.Template, pongo2.Context{"data": v})
	}
	_, err := io.WriteString(w, table.Render())
	return err
}

func keyValueTable() *render.Table {
	return render.NewTable("key", "value").HideHeader()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func newNormalizeCmd(a *app) *cobra.Command {
	var noTruncate bool

	cmd := &cobra.Command{
		Use:   "normalize NOTATION",
		Short: "Round and normalise a Munsell notation",
		Long: `Round a Munsell notation and bring its hue into canonical form.

Rounding is a number of decimals, "renotation" for the renotation grid
(hue steps of 2.5, integer values, even chromas) or "none".

Examples:
  munsellkit normalize '2.54PB 5.46/6.03'
  munsellkit normalize 0R 5/4 --rounding renotation`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := munsell.ParseNotation(strings.Join(args, " "))
			if err != nil {
				return err
			}
			norm, err := munsell.Normalize(spec, a.cfg.Rounding, !noTruncate)
			if err != nil {
				return err
			}

			t := keyValueTable()
			t.AddRow("notation", norm.Color)
			t.AddRow("spec", specArray(norm.Spec))
			t.AddRow("hue", norm.Hue.Total)
			if !norm.Hue.Neutral {
				t.AddRow("astm hue", formatFloat(norm.Hue.ASTM))
			}
			return a.output(cmd, norm, t)
		},
	}
	cmd.Flags().BoolVar(&noTruncate, "no-truncate", false, "keep trailing zero decimals")
	return cmd
}

func specArray(s munsell.Spec) string {
	arr := s.Array()
	parts := make([]string, len(arr))
	for i, v := range arr {
		parts[i] = formatFloat(v)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

type hueOutput struct {
	Notation string  `json:"notation"`
	Index    int     `json:"hue_index"`
	Shade    float64 `json:"hue_shade"`
	munsell.HueData
}

func newHueCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "hue NOTATION",
		Short: "Show the hue of a Munsell notation in several forms",
		Long: `Show the Colorlab hue index, hue name and ASTM D1535 hue number
(R=0, YR=10, ... RP=90) of a Munsell notation.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := munsell.ParseNotation(strings.Join(args, " "))
			if err != nil {
				return err
			}
			info, err := munsell.HueInfo(spec.HueIndex, spec.HueShade, -1, true)
			if err != nil {
				return err
			}

			out := hueOutput{Notation: spec.String(), Index: spec.HueIndex, Shade: spec.HueShade, HueData: info}
			t := keyValueTable()
			t.AddRow("hue", info.Total)
			t.AddRow("name", info.Name)
			t.AddRow("index", strconv.Itoa(spec.HueIndex))
			if !info.Neutral {
				t.AddRow("astm hue", formatFloat(info.ASTM))
			}
			return a.output(cmd, out, t)
		},
	}
}

type valueOutput struct {
	Value   float64      `json:"value"`
	Y       float64      `json:"Y"`
	Nearest data.Neutral `json:"nearest_neutral"`
}

func newValueCmd(a *app) *cobra.Command {
	var inverse bool

	cmd := &cobra.Command{
		Use:   "value Y",
		Short: "Convert luminance Y (0-100) to Munsell value",
		Long: `Convert CIE luminance Y (0-100, relative to a perfect diffuser) to a
Munsell value with the ASTM D1535 polynomial, or the reverse with --inverse.

Examples:
  munsellkit value 19.27
  munsellkit value --inverse 5`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("invalid number %q: %w", args[0], err)
			}

			var out valueOutput
			if inverse {
				if n < 0 || n > 10 {
					return fmt.Errorf("value %g out of range [0, 10]", n)
				}
				out.Value, out.Y = n, munsell.YFromValue(n)
			} else {
				if n < 0 || n > 100 {
					return fmt.Errorf("luminance %g out of range [0, 100]", n)
				}
				out.Y, out.Value = n, munsell.ValueFromY(n)
			}

			if out.Nearest, err = data.NearestNeutral(out.Y); err != nil {
				return err
			}

			t := keyValueTable()
			t.AddRow("value", strconv.FormatFloat(out.Value, 'f', 4, 64))
			t.AddRow("Y", strconv.FormatFloat(out.Y, 'f', 4, 64))
			t.AddRow("nearest", out.Nearest.Notation+" "+out.Nearest.Hex)
			return a.output(cmd, out, t)
		},
	}
	cmd.Flags().BoolVarP(&inverse, "inverse", "i", false, "convert a Munsell value to Y")
	return cmd
}

func newNeutralsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "neutrals",
		Short: "List the Munsell neutral scale",
		Long:  `List the bundled Munsell neutral scale N0 to N10 with luminance and sRGB renderings.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rows, err := data.Neutrals()
			if err != nil {
				return err
			}

			preview := a.renderOptions().Preview
			t := render.NewTable("Notation", "Value", "Y", "Hex").AlignRight(1).AlignRight(2)
			for _, n := range rows {
				hex := n.Hex
				if preview {
					hex = colour.FormatColourWithPreview(n.RGB, 2)
				}
				t.AddRow(n.Notation, formatFloat(n.Value), strconv.FormatFloat(n.Y, 'f', 4, 64), hex)
			}
			return a.output(cmd, rows, t)
		},
	}
}
