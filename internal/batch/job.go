// Package batch loads HCL job files describing many colour conversions and
// runs them on a bounded worker pool.
//
// A job file looks like:
//
//	defaults {
//	  method = "uplab"
//	}
//
//	conversion "navy" {
//	  from  = "rgb"
//	  input = [18, 52, 86]
//	}
//
//	conversion "grey" {
//	  from  = "munsell"
//	  input = "N5"
//	  to    = "xyy"
//	  white = "C"
//	}
package batch

import (
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/jmylchreest/munsellkit/internal/colour"
	"github.com/jmylchreest/munsellkit/internal/convert"
)

// Job is a decoded job file.
type Job struct {
	Path     string
	Requests []convert.Request
}

type fileRoot struct {
	Defaults    *defaultsBlock     `hcl:"defaults,block"`
	Conversions []*conversionBlock `hcl:"conversion,block"`
}

type defaultsBlock struct {
	From       string `hcl:"from,optional"`
	To         string `hcl:"to,optional"`
	Method     string `hcl:"method,optional"`
	Renotation bool   `hcl:"renotation,optional"`
	XYC        string `hcl:"xyc,optional"`
	White      string `hcl:"white,optional"`
}

type conversionBlock struct {
	Name       string         `hcl:"name,label"`
	From       string         `hcl:"from,optional"`
	Input      hcl.Expression `hcl:"input"`
	To         string         `hcl:"to,optional"`
	Method     string         `hcl:"method,optional"`
	Renotation *bool          `hcl:"renotation,optional"`
	XYC        string         `hcl:"xyc,optional"`
	White      string         `hcl:"white,optional"`
}

// Load reads and decodes a job file.
func Load(path string) (*Job, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
	}
	return decode(path, file)
}

// Parse decodes a job from source bytes. filename is used in diagnostics.
func Parse(src []byte, filename string) (*Job, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}
	return decode(filename, file)
}

func decode(path string, file *hcl.File) (*Job, error) {
	var root fileRoot
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", path, diags)
	}
	if len(root.Conversions) == 0 {
		return nil, fmt.Errorf("job file %s has no conversion blocks", path)
	}

	defaults := defaultsBlock{}
	if root.Defaults != nil {
		defaults = *root.Defaults
	}

	job := &Job{Path: path}
	seen := make(map[string]bool, len(root.Conversions))
	for _, block := range root.Conversions {
		if seen[block.Name] {
			return nil, fmt.Errorf("job file %s: duplicate conversion %q", path, block.Name)
		}
		seen[block.Name] = true

		req, err := block.request(defaults)
		if err != nil {
			return nil, fmt.Errorf("job file %s: conversion %q: %w", path, block.Name, err)
		}
		job.Requests = append(job.Requests, req)
	}
	return job, nil
}

func (b *conversionBlock) request(d defaultsBlock) (convert.Request, error) {
	input, err := inputString(b.Input)
	if err != nil {
		return convert.Request{}, err
	}

	req := convert.Request{
		Name:       b.Name,
		From:       convert.Source(firstNonEmpty(b.From, d.From)),
		Input:      input,
		To:         convert.Target(firstNonEmpty(b.To, d.To)),
		Method:     convert.Method(firstNonEmpty(b.Method, d.Method)),
		Renotation: d.Renotation,
		XYC:        firstNonEmpty(b.XYC, d.XYC),
	}
	if b.Renotation != nil {
		req.Renotation = *b.Renotation
	}
	if req.White, err = colour.ParseIlluminant(firstNonEmpty(b.White, d.White)); err != nil {
		return convert.Request{}, err
	}
	if req.From == "" {
		return convert.Request{}, fmt.Errorf("missing \"from\" and no default set")
	}
	if err := req.Validate(); err != nil {
		return convert.Request{}, err
	}
	return req, nil
}

// inputString evaluates an input expression. Strings are used as is;
// tuples and lists of numbers are joined with spaces.
func inputString(expr hcl.Expression) (string, error) {
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return "", diags
	}
	if val.IsNull() || !val.IsKnown() {
		return "", fmt.Errorf("input must be set")
	}

	ty := val.Type()
	switch {
	case ty == cty.String:
		return val.AsString(), nil
	case ty.IsTupleType() || ty.IsListType():
		parts := make([]string, 0, val.LengthInt())
		for it := val.ElementIterator(); it.Next(); {
			_, v := it.Element()
			if v.IsNull() || v.Type() != cty.Number {
				return "", fmt.Errorf("input list must contain only numbers")
			}
			parts = append(parts, v.AsBigFloat().Text('g', -1))
		}
		return strings.Join(parts, " "), nil
	}
	return "", fmt.Errorf("input must be a string or a list of numbers, got %s", ty.FriendlyName())
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
