// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package config

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yamlDoc = `
kernel_prefix: k
resource_prefix: arg
indent: "    "
validate: false
transfer_workers: 4
finish: false
log_level: debug
`

const hclDoc = `
kernel_prefix    = "k"
resource_prefix  = "arg"
indent           = "    "
validate         = false
transfer_workers = 4
finish           = false
log_level        = "debug"
`

func TestParse_YAMLAndHCLAgree(t *testing.T) {
	fromYAML, err := ParseYAML([]byte(yamlDoc))
	require.NoError(t, err)
	fromHCL, err := ParseHCL([]byte(hclDoc), "test.hcl")
	require.NoError(t, err)

	if diff := cmp.Diff(fromYAML, fromHCL); diff != "" {
		t.Errorf("YAML and HCL disagree (-yaml +hcl):\n%s", diff)
	}
	assert.Equal(t, 4, fromHCL.TransferWorkers)
	assert.Equal(t, "    ", fromHCL.Indent)
	assert.False(t, fromHCL.ValidateIR)
	assert.False(t, fromHCL.WriterOptions().Validate)
	require.NoError(t, fromHCL.Validate())
}

func TestParse_MissingFieldsKeepDefaults(t *testing.T) {
	fromYAML, err := ParseYAML([]byte("transfer_workers: 2\n"))
	require.NoError(t, err)
	fromHCL, err := ParseHCL([]byte("transfer_workers = 2\n"), "partial.hcl")
	require.NoError(t, err)

	want := Default()
	want.TransferWorkers = 2
	assert.Equal(t, want, fromYAML)
	assert.Equal(t, want, fromHCL)

	empty, err := ParseYAML(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), empty)
}

func TestParse_Errors(t *testing.T) {
	_, err := ParseYAML([]byte("unknown_key: 1\n"))
	assert.Error(t, err)

	_, err = ParseHCL([]byte("transfer_workers = \n"), "broken.hcl")
	assert.Error(t, err)

	_, err = ParseHCL([]byte("unknown_key = 1\n"), "unknown.hcl")
	assert.Error(t, err)
}

func TestParseHCL_Environment(t *testing.T) {
	t.Setenv("CLKERNEL_TEST_WORKERS", "3")
	cfg, err := ParseHCL([]byte("transfer_workers = env.CLKERNEL_TEST_WORKERS\n"), "env.hcl")
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.TransferWorkers)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"kernel prefix", func(c *Config) { c.KernelPrefix = "1k" }},
		{"resource prefix", func(c *Config) { c.ResourcePrefix = "" }},
		{"indent", func(c *Config) { c.Indent = "x" }},
		{"empty indent", func(c *Config) { c.Indent = "" }},
		{"workers", func(c *Config) { c.TransferWorkers = 0 }},
		{"log level", func(c *Config) { c.LogLevel = "loud" }},
	}

	require.NoError(t, Default().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLevel(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = "warn"
	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	files := map[string]string{
		"clkernel.yaml": yamlDoc,
		"clkernel.hcl":  hclDoc,
	}
	var loaded []*Config
	for name, doc := range files {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(doc), 0o644))
		cfg, err := Load(ctx, p)
		require.NoError(t, err, name)
		loaded = append(loaded, cfg)
	}
	assert.Equal(t, loaded[0], loaded[1])

	bad := filepath.Join(dir, "clkernel.toml")
	require.NoError(t, os.WriteFile(bad, []byte("x = 1"), 0o644))
	_, err := Load(ctx, bad)
	assert.ErrorContains(t, err, "unsupported extension")

	invalid := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("transfer_workers: 0\n"), 0o644))
	_, err = Load(ctx, invalid)
	assert.ErrorContains(t, err, "transfer_workers")

	_, err = Load(ctx, filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestOptions(t *testing.T) {
	cfg := Default()
	cfg.TransferWorkers = 5
	assert.Equal(t, 5, cfg.SchedulerOptions().TransferWorkers)
	assert.Equal(t, "_clk_buf", cfg.TraceOptions().ResourcePrefix)
	assert.Equal(t, "\t", cfg.WriterOptions().Indent)
	assert.True(t, cfg.WriterOptions().Validate)
}
