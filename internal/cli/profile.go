package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/munsellkit/internal/iccprofile"
)

func newProfileCmd(a *app) *cobra.Command {
	var requireLab bool

	cmd := &cobra.Command{
		Use:   "profile FILE.icc",
		Short: "Inspect an ICC colour profile",
		Long: `Print the header of an ICC colour profile: data colour space, device
class, connection space and version. Profiles are only inspected, never applied.

Use --require-lab to fail unless the profile describes CIE Lab data, as
needed for Lab to Munsell lookups.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := iccprofile.InspectFile(args[0])
			if err != nil {
				return err
			}

			t := keyValueTable()
			t.AddRow("colour space", info.ColorSpace)
			t.AddRow("components", strconv.Itoa(info.Components))
			t.AddRow("class", info.Class)
			t.AddRow("pcs", info.PCS)
			t.AddRow("version", info.Version)
			t.AddRow("size", strconv.Itoa(info.Size))
			if err := a.output(cmd, info, t); err != nil {
				return err
			}

			if requireLab {
				return iccprofile.RequireLab(info)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&requireLab, "require-lab", false, "fail unless the profile colour space is Lab")
	return cmd
}
