package cli

import (
	"github.com/spf13/cobra"

	"github.com/jmylchreest/munsellkit/internal/rscript"
)

type rscriptStatus struct {
	Path    string `json:"path"`
	Version string `json:"version"`
	Script  string `json:"script"`
}

func newRscriptCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rscript",
		Short: "Inspect the Rscript backend",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Check that Rscript can be found and run",
		Long: `Locate Rscript (rscript.path, --rscript or PATH), run it once and print
its version. The munsellinterpol package is loaded on the first conversion.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := a.rscriptClient()
			if err != nil {
				return err
			}
			banner, err := client.Available(cmdContext(cmd))
			if err != nil {
				return err
			}

			status := rscriptStatus{
				Path:    client.Path(),
				Version: banner,
				Script:  client.ScriptPath(rscript.ScriptToMunsell),
			}
			t := keyValueTable()
			t.AddRow("path", status.Path)
			t.AddRow("version", status.Version)
			t.AddRow("script", status.Script)
			return a.output(cmd, status, t)
		},
	})
	return cmd
}
