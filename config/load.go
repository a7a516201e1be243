// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/viant/afs"
	"github.com/zclconf/go-cty/cty"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/clkernel/internal/ctxlog"
)

// Load reads the document at URL, picks the format from its extension
// (.yaml, .yml or .hcl), applies it over Default and validates the result.
func Load(ctx context.Context, URL string) (*Config, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading configuration.", "url", URL)

	data, err := afs.New().DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", URL, err)
	}

	var cfg *Config
	switch ext := strings.ToLower(path.Ext(URL)); ext {
	case ".yaml", ".yml":
		cfg, err = ParseYAML(data)
	case ".hcl":
		cfg, err = ParseHCL(data, path.Base(URL))
	default:
		return nil, fmt.Errorf("config %s: unsupported extension %q", URL, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", URL, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", URL, err)
	}

	logger.Debug("Successfully loaded configuration.", "url", URL, "transfer_workers", cfg.TransferWorkers)
	return cfg, nil
}

// ParseYAML decodes a YAML document over Default. Unknown keys are errors.
func ParseYAML(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode YAML: %w", err)
	}
	return cfg, nil
}

// ParseHCL decodes an HCL document over Default. filename is used in
// diagnostics only.
func ParseHCL(data []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL: %s", diags.Error())
	}

	cfg := Default()
	diags = gohcl.DecodeBody(file.Body, evalContext(), cfg)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}
	return cfg, nil
}

// evalContext exposes the process environment as env.
func evalContext() *hcl.EvalContext {
	vars := make(map[string]cty.Value)
	for _, kv := range os.Environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			continue
		}
		vars[name] = cty.StringVal(value)
	}
	env := cty.MapValEmpty(cty.String)
	if len(vars) > 0 {
		env = cty.MapVal(vars)
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{"env": env},
	}
}
