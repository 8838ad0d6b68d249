// Package cli provides the command-line interface for munsellkit.
package cli

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/jmylchreest/munsellkit/internal/colour"
	"github.com/jmylchreest/munsellkit/internal/config"
	"github.com/jmylchreest/munsellkit/internal/convert"
	"github.com/jmylchreest/munsellkit/internal/render"
	"github.com/jmylchreest/munsellkit/internal/rscript"
	"github.com/jmylchreest/munsellkit/internal/version"
)

// app holds state shared by all commands of one root command.
type app struct {
	v      *viper.Viper
	cfg    *config.Config
	logger hclog.Logger

	configPath string
	verbose    bool
	quiet      bool
	noColour   bool

	runner rscript.ProcessRunner
}

// Option configures the root command.
type Option func(*app)

// WithProcessRunner runs Rscript through r instead of a real process.
func WithProcessRunner(r rscript.ProcessRunner) Option {
	return func(a *app) { a.runner = r }
}

// NewRootCmd builds the command tree.
func NewRootCmd(opts ...Option) *cobra.Command {
	a := &app{
		v:      config.New(),
		logger: hclog.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(a)
	}

	root := &cobra.Command{
		Use:   "munsellkit",
		Short: "Munsell colour conversion utilities",
		Long: `munsellkit converts between Munsell notation and device colour spaces
(sRGB, xyY, CIE Lab).

Accurate conversions run the munsellinterpol R package through Rscript.
The uplab method estimates Munsell colours from Lindbloom's Uniform
Perceptual Lab without any external runtime.`,
		Version:           version.Short(),
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	flags := root.PersistentFlags()
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "enable verbose output")
	flags.BoolVarP(&a.quiet, "quiet", "q", false, "suppress non-error output")
	flags.StringVar(&a.configPath, "config", "", "config file (default $HOME/.config/munsellkit/config.yaml)")
	flags.BoolVar(&a.noColour, "no-colour", false, "never write ANSI colour swatches")
	flags.StringP("format", "f", "", "output format (text, json, template)")
	flags.String("template", "", "pongo2 template file for --format template")
	flags.Bool("preview", false, "show colour swatches in text output")
	flags.String("rscript", "", "path to the Rscript executable")
	flags.String("rounding", "", "notation rounding: decimals, renotation or none")

	bindFlag(a.v, flags, config.KeyOutputFormat, "format")
	bindFlag(a.v, flags, config.KeyOutputTemplate, "template")
	bindFlag(a.v, flags, config.KeyOutputPreview, "preview")
	bindFlag(a.v, flags, config.KeyRscriptPath, "rscript")
	bindFlag(a.v, flags, config.KeyOutputRounding, "rounding")

	root.SetVersionTemplate(version.String() + "\n")

	root.AddCommand(
		newToMunsellCmd(a),
		newFromMunsellCmd(a),
		newNormalizeCmd(a),
		newHueCmd(a),
		newValueCmd(a),
		newNeutralsCmd(a),
		newExtractCmd(a),
		newBatchCmd(a),
		newProfileCmd(a),
		newRscriptCmd(a),
		newVersionCmd(),
	)
	return root
}

func bindFlag(v *viper.Viper, flags *pflag.FlagSet, key, name string) {
	// BindPFlag only fails for a nil flag.
	_ = v.BindPFlag(key, flags.Lookup(name))
}

// setup loads configuration and builds the logger before any command runs.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.v, a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg
	if a.noColour {
		colour.DisableColourOutput = true
	}

	level := hclog.LevelFromString(cfg.LogLevel)
	switch {
	case a.verbose:
		level = hclog.Debug
	case a.quiet:
		level = hclog.Error
	}
	a.logger = hclog.New(&hclog.LoggerOptions{
		Name:   "munsellkit",
		Level:  level,
		Output: cmd.ErrOrStderr(),
	})
	if cfg.File != "" {
		a.logger.Debug("loaded config", "path", cfg.File)
	}
	return nil
}

// rscriptClient creates an Rscript client from the configuration.
func (a *app) rscriptClient() (*rscript.Client, error) {
	opts := []rscript.Option{
		rscript.WithTimeout(a.cfg.RscriptTimeout),
		rscript.WithLogger(a.logger.Named("rscript")),
	}
	if a.cfg.RscriptPath != "" {
		opts = append(opts, rscript.WithPath(a.cfg.RscriptPath))
	}
	if a.cfg.ScriptsDir != "" {
		opts = append(opts, rscript.WithScriptsDir(a.cfg.ScriptsDir))
	}
	if a.runner != nil {
		opts = append(opts, rscript.WithRunner(a.runner))
	}
	return rscript.New(opts...)
}

// converter creates a Converter that starts Rscript only when needed.
func (a *app) converter() *convert.Converter {
	return convert.New(
		convert.WithBackendFactory(func() (convert.Backend, error) {
			c, err := a.rscriptClient()
			if err != nil {
				return nil, err
			}
			return c, nil
		}),
		convert.WithRounding(a.cfg.Rounding, a.cfg.Truncate),
		convert.WithLogger(a.logger.Named("convert")),
	)
}

// renderOptions returns the output options, with swatches only on terminals.
func (a *app) renderOptions() render.Options {
	return render.Options{
		Format:   a.cfg.Format,
		Template: a.cfg.Template,
		Preview:  a.cfg.Preview && colour.SupportsANSIColours(),
	}
}

// method returns the --method flag if set, the configured method otherwise.
func (a *app) method(cmd *cobra.Command) string {
	if f := cmd.Flags().Lookup("method"); f != nil && f.Changed {
		return f.Value.String()
	}
	return a.cfg.Method
}

// convertOne runs a single request and renders it.
func (a *app) convertOne(cmd *cobra.Command, req convert.Request) error {
	res := a.converter().Convert(cmdContext(cmd), req)
	if res.Err != nil {
		return res.Err
	}
	return render.Results(cmd.OutOrStdout(), []convert.Result{res}, a.renderOptions())
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print detailed version information including build date, commit hash, and Go version.`,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}

func addMethodFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("method", "m", "", "conversion method (rscript, uplab); default from config")
}
