// Package rscript converts colours by running R scripts that use the
// munsellinterpol package. Each conversion is one Rscript process which
// takes positional arguments and prints a JSON array.
package rscript

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
)

// Executable is the default name of the R script front end.
const Executable = "Rscript"

// DefaultTimeout bounds a single script run.
const DefaultTimeout = 30 * time.Second

// Script names.
const (
	ScriptToMunsell    = "to_munsell.R"
	ScriptMunsellToXYY = "munsell_to_xyy.R"
	ScriptMunsellToRGB = "munsell_to_rgb.R"
)

//go:embed scripts/*.R
var scripts embed.FS

var (
	// ErrRscriptNotFound is returned when no Rscript executable can be found.
	ErrRscriptNotFound = errors.New("rscript: Rscript executable not found")

	// ErrUnexpectedOutput is returned when a script prints something other
	// than a non-empty JSON array.
	ErrUnexpectedOutput = errors.New("rscript: unexpected output")
)

// OutputError reports unparseable script output.
type OutputError struct {
	Script string
	Output string
}

func (e *OutputError) Error() string {
	return fmt.Sprintf("%s returned unexpected output '%s'", e.Script, strings.TrimSpace(e.Output))
}

// Unwrap makes errors.Is(err, ErrUnexpectedOutput) hold.
func (e *OutputError) Unwrap() error {
	return ErrUnexpectedOutput
}

// Client runs the embedded conversion scripts.
type Client struct {
	path       string
	runner     ProcessRunner
	timeout    time.Duration
	scriptsDir string
	logger     hclog.Logger

	installOnce sync.Once
	installErr  error
}

// Option configures a Client.
type Option func(*Client)

// WithPath sets the Rscript executable. The path is used as given.
func WithPath(path string) Option {
	return func(c *Client) { c.path = path }
}

// WithRunner replaces the process runner.
func WithRunner(r ProcessRunner) Option {
	return func(c *Client) { c.runner = r }
}

// WithTimeout sets the per-run timeout. Zero or negative disables it.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithScriptsDir sets where the embedded scripts are written.
func WithScriptsDir(dir string) Option {
	return func(c *Client) { c.scriptsDir = dir }
}

// WithLogger sets the logger.
func WithLogger(l hclog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a Client. Without WithPath, Rscript is looked up on PATH and
// ErrRscriptNotFound is returned if it is missing.
func New(opts ...Option) (*Client, error) {
	c := &Client{
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = hclog.NewNullLogger()
	}
	if c.runner == nil {
		c.runner = NewRealProcessRunner()
	}

	if c.path == "" {
		path, err := exec.LookPath(Executable)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrRscriptNotFound, err)
		}
		c.path = path
	}

	if c.scriptsDir == "" {
		dir, err := DefaultScriptsDir()
		if err != nil {
			return nil, err
		}
		c.scriptsDir = dir
	}

	return c, nil
}

// DefaultScriptsDir returns the directory used for the embedded scripts
// when none is configured.
func DefaultScriptsDir() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		home, herr := os.UserHomeDir()
		if herr != nil {
			return "", fmt.Errorf("failed to determine scripts directory: %w", err)
		}
		cacheDir = filepath.Join(home, ".cache")
	}
	return filepath.Join(cacheDir, "munsellkit", "rscripts"), nil
}

// Path returns the Rscript executable in use.
func (c *Client) Path() string {
	return c.path
}

// ScriptPath returns where the named script is installed.
func (c *Client) ScriptPath(name string) string {
	return filepath.Join(c.scriptsDir, name)
}

// installScripts writes the embedded scripts to the scripts directory,
// rewriting only files whose content differs.
func (c *Client) installScripts() error {
	c.installOnce.Do(func() {
		c.installErr = c.writeScripts()
	})
	return c.installErr
}

func (c *Client) writeScripts() error {
	if err := os.MkdirAll(c.scriptsDir, 0o755); err != nil {
		return fmt.Errorf("failed to create scripts directory: %w", err)
	}

	entries, err := fs.ReadDir(scripts, "scripts")
	if err != nil {
		return fmt.Errorf("failed to list embedded scripts: %w", err)
	}

	for _, entry := range entries {
		data, err := scripts.ReadFile("scripts/" + entry.Name())
		if err != nil {
			return fmt.Errorf("failed to read embedded script %s: %w", entry.Name(), err)
		}

		dst := c.ScriptPath(entry.Name())
		if existing, err := os.ReadFile(dst); err == nil && bytes.Equal(existing, data) { // #nosec G304 - path under the scripts directory
			continue
		}
		if err := os.WriteFile(dst, data, 0o644); err != nil { // #nosec G306 - scripts are not secret
			return fmt.Errorf("failed to write script %s: %w", dst, err)
		}
		c.logger.Debug("installed script", "path", dst)
	}
	return nil
}

// run executes a script and returns its stdout.
func (c *Client) run(ctx context.Context, script string, args ...string) ([]byte, error) {
	if err := c.installScripts(); err != nil {
		return nil, err
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	argv := append([]string{c.ScriptPath(script)}, args...)
	c.logger.Debug("running script", "script", script, "args", args)

	start := time.Now()
	stdout, stderr, err := c.runner.Run(ctx, c.path, argv, nil)
	if msg := strings.TrimSpace(string(stderr)); msg != "" {
		c.logger.Debug("script stderr", "script", script, "stderr", msg)
	}
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%s timed out after %s: %w", script, c.timeout, ctx.Err())
		}
		if msg := strings.TrimSpace(string(stderr)); msg != "" {
			return nil, fmt.Errorf("%s failed: %w\nStderr: %s", script, err, msg)
		}
		return nil, fmt.Errorf("%s failed: %w", script, err)
	}

	c.logger.Trace("script finished", "script", script, "duration", time.Since(start))
	return stdout, nil
}

// Available checks that Rscript runs and returns its version banner.
func (c *Client) Available(ctx context.Context) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	stdout, stderr, err := c.runner.Run(ctx, c.path, []string{"--version"}, nil)
	if err != nil {
		return "", fmt.Errorf("failed to run %s --version: %w", c.path, err)
	}

	// Older R releases print the banner on stderr.
	banner := strings.TrimSpace(string(stdout))
	if banner == "" {
		banner = strings.TrimSpace(string(stderr))
	}
	return banner, nil
}
