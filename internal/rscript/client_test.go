package rscript

import (
	"context"
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/jmylchreest/munsellkit/internal/colour"
	"github.com/jmylchreest/munsellkit/internal/munsell"
)

func newTestClient(t *testing.T, runner ProcessRunner, opts ...Option) *Client {
	t.Helper()
	base := []Option{
		WithPath("/opt/R/bin/Rscript"),
		WithRunner(runner),
		WithScriptsDir(t.TempDir()),
	}
	c, err := New(append(base, opts...)...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c
}

func TestRGBToMunsell(t *testing.T) {
	runner := NewSuccessMockProcessRunner([]byte("[[72.5,8,6]]\n"))
	c := newTestClient(t, runner)

	spec, err := c.RGBToMunsell(context.Background(), [3]float64{18, 52, 86})
	if err != nil {
		t.Fatalf("RGBToMunsell() error = %v", err)
	}
	want := munsell.Spec{HueShade: 2.5, Value: 8, Chroma: 6, HueIndex: 10}
	if spec != want {
		t.Errorf("RGBToMunsell() = %+v, want %+v", spec, want)
	}

	if runner.LastPath() != "/opt/R/bin/Rscript" {
		t.Errorf("ran %q, want the configured Rscript", runner.LastPath())
	}
	args := runner.LastArgs()
	wantArgs := []string{c.ScriptPath(ScriptToMunsell), "sRGB", "18", "52", "86"}
	if strings.Join(args, " ") != strings.Join(wantArgs, " ") {
		t.Errorf("args = %v, want %v", args, wantArgs)
	}
}

func TestRGBToMunsellFractionalChannels(t *testing.T) {
	runner := NewSuccessMockProcessRunner([]byte("[[5.1,4.5,6.2]]"))
	c := newTestClient(t, runner)

	if _, err := c.RGBToMunsell(context.Background(), [3]float64{148.7, 109.1, 81.6}); err != nil {
		t.Fatalf("RGBToMunsell() error = %v", err)
	}
	if diff := cmp.Diff([]string{"sRGB", "148.7", "109.1", "81.6"}, runner.LastArgs()[1:]); diff != "" {
		t.Errorf("args mismatch (-want +got):\n%s", diff)
	}
}

func TestRGBToMunsellNeutral(t *testing.T) {
	c := newTestClient(t, NewSuccessMockProcessRunner([]byte("[[0,5.2,0]]")))
	spec, err := c.RGBToMunsell(context.Background(), [3]float64{128, 128, 128})
	if err != nil {
		t.Fatalf("RGBToMunsell() error = %v", err)
	}
	if spec != munsell.Neutral(5.2) {
		t.Errorf("RGBToMunsell() = %+v, want N 5.2", spec)
	}
}

func TestXYYToMunsell(t *testing.T) {
	runner := NewSuccessMockProcessRunner([]byte("[[5,4,14]]"))
	c := newTestClient(t, runner)

	spec, err := c.XYYToMunsell(context.Background(), colour.XYY{X: 0.5, Y: 0.3, L: 0.12})
	if err != nil {
		t.Fatalf("XYYToMunsell() error = %v", err)
	}
	if want := (munsell.Spec{HueShade: 5, Value: 4, Chroma: 14, HueIndex: 7}); spec != want {
		t.Errorf("XYYToMunsell() = %+v, want %+v", spec, want)
	}
	if got := strings.Join(runner.LastArgs()[1:], " "); got != "xyY 0.5 0.3 12" {
		t.Errorf("args = %q, want Y scaled to 0..100", got)
	}
}

func TestMunsellToXYY(t *testing.T) {
	runner := NewSuccessMockProcessRunner([]byte("[[0.3101,0.3162,19.27]]"))
	c := newTestClient(t, runner)

	xyy, err := c.MunsellToXYY(context.Background(), "N5", "")
	if err != nil {
		t.Fatalf("MunsellToXYY() error = %v", err)
	}
	if xyy.X != 0.3101 || xyy.Y != 0.3162 || math.Abs(xyy.L-0.1927) > 1e-12 {
		t.Errorf("MunsellToXYY() = %+v", xyy)
	}
	if got := strings.Join(runner.LastArgs()[1:], " "); got != "N5 NBS" {
		t.Errorf("args = %q, want default xyC", got)
	}
}

func TestMunsellToRGB(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   [3]float64
		wantOK bool
	}{
		{name: "in gamut", output: "[[255,127.5,0]]", want: [3]float64{1, 0.5, 0}, wantOK: true},
		{name: "not available", output: `[["NA","NA","NA"]]`, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, NewSuccessMockProcessRunner([]byte(tt.output)))
			got, ok, err := c.MunsellToRGB(context.Background(), "5R 4/14")
			if err != nil {
				t.Fatalf("MunsellToRGB() error = %v", err)
			}
			if ok != tt.wantOK {
				t.Fatalf("MunsellToRGB() ok = %v, want %v", ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("MunsellToRGB() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUnexpectedOutput(t *testing.T) {
	outputs := []string{"", "Error in library", "[]", "{}", `[[1,2]]`, `[["a","b","c"]]`}

	for _, out := range outputs {
		t.Run(out, func(t *testing.T) {
			c := newTestClient(t, NewSuccessMockProcessRunner([]byte(out)))

			_, err := c.RGBToMunsell(context.Background(), [3]float64{})
			if !errors.Is(err, ErrUnexpectedOutput) {
				t.Fatalf("RGBToMunsell() error = %v, want ErrUnexpectedOutput", err)
			}
			var outErr *OutputError
			if !errors.As(err, &outErr) || outErr.Script != ScriptToMunsell {
				t.Errorf("error = %#v, want *OutputError for %s", err, ScriptToMunsell)
			}
		})
	}
}

func TestScriptFailure(t *testing.T) {
	c := newTestClient(t, NewErrorMockProcessRunner("there is no package called 'munsellinterpol'"))

	_, err := c.RGBToMunsell(context.Background(), [3]float64{})
	if err == nil {
		t.Fatal("RGBToMunsell() expected error")
	}
	if !strings.Contains(err.Error(), "munsellinterpol") {
		t.Errorf("error %q does not carry stderr", err)
	}
	if errors.Is(err, ErrUnexpectedOutput) {
		t.Error("process failure reported as unexpected output")
	}
}

func TestTimeout(t *testing.T) {
	c := newTestClient(t, NewTimeoutMockProcessRunner(), WithTimeout(20*time.Millisecond))

	_, err := c.MunsellToXYY(context.Background(), "5R 4/14", "")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("MunsellToXYY() error = %v, want deadline exceeded", err)
	}
}

func TestSlowProcessExceedsTimeout(t *testing.T) {
	runner := &MockProcessRunner{Delay: time.Second}
	c := newTestClient(t, runner, WithTimeout(20*time.Millisecond))

	_, err := c.RGBToMunsell(context.Background(), [3]float64{18, 52, 86})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("RGBToMunsell() error = %v, want deadline exceeded", err)
	}
}

func TestScriptsInstalledOnce(t *testing.T) {
	runner := NewMockProcessRunner()
	runner.RunFunc = func(ctx context.Context, path string, args []string, stdin io.Reader) ([]byte, []byte, error) {
		if _, err := os.Stat(args[0]); err != nil {
			t.Errorf("script %s not installed: %v", args[0], err)
		}
		return []byte("[[5,4,14]]"), []byte("Warning: something"), nil
	}
	c := newTestClient(t, runner)

	for range 3 {
		if _, err := c.RGBToMunsell(context.Background(), [3]float64{200, 0, 0}); err != nil {
			t.Fatalf("RGBToMunsell() error = %v", err)
		}
	}
	if runner.CallCount() != 3 {
		t.Errorf("CallCount() = %d, want 3", runner.CallCount())
	}

	for _, name := range []string{ScriptToMunsell, ScriptMunsellToXYY, ScriptMunsellToRGB} {
		data, err := os.ReadFile(c.ScriptPath(name))
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		if !strings.Contains(string(data), "munsellinterpol") {
			t.Errorf("%s does not load munsellinterpol", name)
		}
	}
}

func TestNewWithoutRscript(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	_, err := New(WithScriptsDir(t.TempDir()))
	if !errors.Is(err, ErrRscriptNotFound) {
		t.Errorf("New() error = %v, want ErrRscriptNotFound", err)
	}
}

func TestAvailable(t *testing.T) {
	runner := NewMockProcessRunner()
	runner.RunFunc = func(ctx context.Context, path string, args []string, stdin io.Reader) ([]byte, []byte, error) {
		return nil, []byte("Rscript (R) version 4.3.1 (2023-06-16)\n"), nil
	}
	c := newTestClient(t, runner)

	banner, err := c.Available(context.Background())
	if err != nil {
		t.Fatalf("Available() error = %v", err)
	}
	if banner != "Rscript (R) version 4.3.1 (2023-06-16)" {
		t.Errorf("Available() = %q", banner)
	}
	if got := runner.LastArgs(); len(got) != 1 || got[0] != "--version" {
		t.Errorf("Available() args = %v", got)
	}
}

func TestDefaultScriptsDir(t *testing.T) {
	dir, err := DefaultScriptsDir()
	if err != nil {
		t.Fatalf("DefaultScriptsDir() error = %v", err)
	}
	if filepath.Base(dir) != "rscripts" {
		t.Errorf("DefaultScriptsDir() = %q", dir)
	}
}
