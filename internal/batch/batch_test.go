package batch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/jmylchreest/munsellkit/internal/colour"
	"github.com/jmylchreest/munsellkit/internal/convert"
)

const sampleJob = `
defaults {
  method = "uplab"
}

conversion "navy" {
  from  = "rgb"
  input = [18, 52, 86]
}

conversion "grey" {
  from   = "munsell"
  input  = "N5"
  to     = "xyy"
  method = "rscript"
  xyc    = "JOSA"
  white  = "C"
}

conversion "brick" {
  from       = "hex"
  input      = "#a0522d"
  renotation = true
}
`

func TestParse(t *testing.T) {
	job, err := Parse([]byte(sampleJob), "sample.hcl")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	want := []convert.Request{
		{Name: "navy", From: convert.SourceRGB, Input: "18 52 86", To: convert.TargetMunsell, Method: convert.MethodUPLab},
		{Name: "grey", From: convert.SourceMunsell, Input: "N5", To: convert.TargetXYY, Method: convert.MethodRscript, XYC: "JOSA", White: colour.IlluminantC},
		{Name: "brick", From: convert.SourceHex, Input: "#a0522d", To: convert.TargetMunsell, Method: convert.MethodUPLab, Renotation: true},
	}
	if diff := cmp.Diff(want, job.Requests); diff != "" {
		t.Errorf("Parse() requests mismatch (-want +got):\n%s", diff)
	}
	if job.Path != "sample.hcl" {
		t.Errorf("Parse() path = %q", job.Path)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantErr string
	}{
		{name: "syntax", src: `conversion "a" {`, wantErr: "failed to parse HCL file"},
		{name: "no conversions", src: `defaults { method = "uplab" }`, wantErr: "no conversion blocks"},
		{name: "missing input", src: `conversion "a" { from = "rgb" }`, wantErr: "failed to decode HCL file"},
		{name: "missing from", src: `conversion "a" { input = "1 2 3" }`, wantErr: "missing \"from\""},
		{name: "duplicate", src: "conversion \"a\" {\n from = \"rgb\"\n input = \"1 2 3\"\n}\nconversion \"a\" {\n from = \"rgb\"\n input = \"1 2 3\"\n}", wantErr: "duplicate conversion"},
		{name: "bad method", src: `conversion "a" {
  from   = "rgb"
  input  = "1 2 3"
  method = "magic"
}`, wantErr: "unknown method"},
		{name: "bad white", src: `conversion "a" {
  from  = "xyy"
  input = "0.3 0.3 0.2"
  white = "F2"
}`, wantErr: "unknown illuminant"},
		{name: "bad input type", src: `conversion "a" {
  from  = "rgb"
  input = true
}`, wantErr: "string or a list of numbers"},
		{name: "mixed list", src: `conversion "a" {
  from  = "rgb"
  input = [1, "x", 3]
}`, wantErr: "only numbers"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src), "bad.hcl")
			if err == nil {
				t.Fatal("Parse() expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Parse() error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.hcl")
	if err := os.WriteFile(path, []byte(sampleJob), 0o600); err != nil {
		t.Fatal(err)
	}

	job, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(job.Requests) != 3 || job.Path != path {
		t.Errorf("Load() = %d requests from %q", len(job.Requests), job.Path)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.hcl")); err == nil {
		t.Error("Load(missing) expected error")
	}
}

type recordingConverter struct {
	mu      sync.Mutex
	seen    []string
	active  atomic.Int32
	maxSeen atomic.Int32
}

func (c *recordingConverter) Convert(_ context.Context, req convert.Request) convert.Result {
	n := c.active.Add(1)
	defer c.active.Add(-1)
	for {
		m := c.maxSeen.Load()
		if n <= m || c.maxSeen.CompareAndSwap(m, n) {
			break
		}
	}

	c.mu.Lock()
	c.seen = append(c.seen, req.Name)
	c.mu.Unlock()

	res := convert.Result{Name: req.Name, Input: req.Input, Notation: "N " + req.Input}
	if req.Input == "fail" {
		res.Err = errors.New("boom")
		res.Error = "boom"
		res.Notation = ""
	}
	return res
}

func makeJob(inputs ...string) *Job {
	job := &Job{Path: "test.hcl"}
	for i, in := range inputs {
		job.Requests = append(job.Requests, convert.Request{Name: string(rune('a' + i)), From: convert.SourceMunsell, Input: in})
	}
	return job
}

func TestRunPreservesOrder(t *testing.T) {
	conv := &recordingConverter{}
	job := makeJob("1", "2", "fail", "4", "5", "6", "7", "8", "9")

	results := NewRunner(conv, WithWorkers(3)).Run(context.Background(), job)
	if len(results) != len(job.Requests) {
		t.Fatalf("Run() returned %d results, want %d", len(results), len(job.Requests))
	}
	for i, res := range results {
		req := job.Requests[i]
		if res.Name != req.Name {
			t.Errorf("results[%d].Name = %q, want %q", i, res.Name, req.Name)
		}
		if req.Input == "fail" {
			if res.Err == nil {
				t.Errorf("results[%d] expected error", i)
			}
			continue
		}
		if res.Err != nil || res.Notation != "N "+req.Input {
			t.Errorf("results[%d] = %+v", i, res)
		}
	}
	if got := conv.maxSeen.Load(); got > 3 {
		t.Errorf("max concurrent conversions = %d, want <= 3", got)
	}
	if len(conv.seen) != len(job.Requests) {
		t.Errorf("converter saw %d requests, want %d", len(conv.seen), len(job.Requests))
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := NewRunner(&recordingConverter{}, WithWorkers(2)).Run(ctx, makeJob("1", "2", "3"))
	for i, res := range results {
		if !errors.Is(res.Err, context.Canceled) {
			t.Errorf("results[%d].Err = %v, want context.Canceled", i, res.Err)
		}
		if res.Name == "" {
			t.Errorf("results[%d] lost its name", i)
		}
	}
}

func TestDefaultWorkers(t *testing.T) {
	if n := DefaultWorkers(); n < 1 || n > 8 {
		t.Errorf("DefaultWorkers() = %d, want 1..8", n)
	}
	if r := NewRunner(&recordingConverter{}, WithWorkers(0)); r.workers != DefaultWorkers() {
		t.Errorf("NewRunner(WithWorkers(0)).workers = %d", r.workers)
	}
}
