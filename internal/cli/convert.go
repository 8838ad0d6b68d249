package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/munsellkit/internal/colour"
	"github.com/jmylchreest/munsellkit/internal/convert"
)

func newToMunsellCmd(a *app) *cobra.Command {
	var (
		renotation bool
		white      string
	)

	cmd := &cobra.Command{
		Use:   "to-munsell",
		Short: "Convert a device colour to Munsell notation",
		Long: `Convert an sRGB, hex or xyY colour to Munsell notation.

Examples:
  # sRGB channels through munsellinterpol
  munsellkit to-munsell rgb 18 52 86

  # Hex or CSS colour names with the UP LAB estimate
  munsellkit to-munsell hex '#a0522d' --method uplab --renotation

  # xyY with Y on a 0-1 scale
  munsellkit to-munsell xyy 0.31006 0.31616 0.1977`,
	}

	sources := []struct {
		source convert.Source
		use    string
		short  string
		args   cobra.PositionalArgs
	}{
		{convert.SourceRGB, "rgb R G B", "Convert sRGB channels (0-255, fractions allowed)", cobra.RangeArgs(1, 3)},
		{convert.SourceHex, "hex COLOUR", "Convert a hex colour or CSS colour name", cobra.ExactArgs(1)},
		{convert.SourceXYY, "xyy x y Y", "Convert CIE xyY (Y in 0-1)", cobra.RangeArgs(1, 3)},
	}
	for _, s := range sources {
		source := s.source
		sub := &cobra.Command{
			Use:   s.use,
			Short: s.short,
			Args:  s.args,
			RunE: func(cmd *cobra.Command, args []string) error {
				w, err := a.white(white)
				if err != nil {
					return err
				}
				return a.convertOne(cmd, convert.Request{
					From:       source,
					Input:      strings.Join(args, " "),
					To:         convert.TargetMunsell,
					Method:     convert.Method(a.method(cmd)),
					Renotation: renotation,
					White:      w,
				})
			},
		}
		addMethodFlag(sub)
		sub.Flags().BoolVar(&renotation, "renotation", false, "also report the nearest renotation grid colour")
		if source == convert.SourceXYY {
			addWhiteFlag(sub, &white)
		}
		cmd.AddCommand(sub)
	}
	return cmd
}

func newFromMunsellCmd(a *app) *cobra.Command {
	var (
		target string
		xyc    string
		white  string
	)

	cmd := &cobra.Command{
		Use:   "from-munsell NOTATION",
		Short: "Convert Munsell notation to sRGB or xyY",
		Long: `Convert a Munsell notation such as "5R 4/14" or "N5.5" to sRGB or xyY.

Examples:
  munsellkit from-munsell 5YR 7/12
  munsellkit from-munsell 'N 5.5' --to xyy --xyc JOSA
  munsellkit from-munsell 2.5PB 5/6 --method uplab`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if xyc == "" {
				xyc = a.cfg.XYC
			}
			w, err := a.white(white)
			if err != nil {
				return err
			}
			return a.convertOne(cmd, convert.Request{
				From:   convert.SourceMunsell,
				Input:  strings.Join(args, " "),
				To:     convert.Target(target),
				Method: convert.Method(a.method(cmd)),
				XYC:    xyc,
				White:  w,
			})
		},
	}
	addMethodFlag(cmd)
	cmd.Flags().StringVarP(&target, "to", "t", string(convert.TargetRGB), "target colour space (rgb, xyy)")
	cmd.Flags().StringVar(&xyc, "xyc", "", "illuminant C variant for xyY (NBS, JOSA, ...)")
	addWhiteFlag(cmd, &white)
	return cmd
}

func addWhiteFlag(cmd *cobra.Command, white *string) {
	cmd.Flags().StringVar(white, "white", "", "reference white of sRGB/xyY conversions (C, D50, D65)")
}

// white resolves the --white flag, falling back to the configured white.
func (a *app) white(flag string) (colour.Illuminant, error) {
	if flag == "" {
		return a.cfg.White, nil
	}
	return colour.ParseIlluminant(flag)
}
