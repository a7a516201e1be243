// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package config defines the runtime configuration and loads it from YAML
// or HCL documents at any location afs can read.
//
// Fields absent from a document keep their Default values. HCL documents
// can reference the process environment through the env variable:
//
//	transfer_workers = env.CLKERNEL_WORKERS
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/gogpu/clkernel/clc"
	"github.com/gogpu/clkernel/sched"
	"github.com/gogpu/clkernel/trace"
)

// Config is the runtime configuration.
type Config struct {
	// KernelPrefix names kernels traced without an explicit name.
	KernelPrefix string `yaml:"kernel_prefix" hcl:"kernel_prefix,optional"`

	// ResourcePrefix prefixes generated parameter names.
	ResourcePrefix string `yaml:"resource_prefix" hcl:"resource_prefix,optional"`

	// Indent is one level of indentation in generated source.
	Indent string `yaml:"indent" hcl:"indent,optional"`

	// ValidateIR checks kernels before rendering them.
	ValidateIR bool `yaml:"validate" hcl:"validate,optional"`

	// TransferWorkers bounds concurrent transfer submissions.
	TransferWorkers int `yaml:"transfer_workers" hcl:"transfer_workers,optional"`

	// Finish waits for the queue after every submitted kernel.
	Finish bool `yaml:"finish" hcl:"finish,optional"`

	// LogLevel is one of debug, info, warn or error.
	LogLevel string `yaml:"log_level" hcl:"log_level,optional"`
}

// Default returns the built-in configuration.
func Default() *Config {
	to := trace.DefaultOptions()
	so := sched.DefaultOptions()
	co := clc.DefaultOptions()
	return &Config{
		KernelPrefix:    to.KernelPrefix,
		ResourcePrefix:  to.ResourcePrefix,
		Indent:          co.Indent,
		ValidateIR:      co.Validate,
		TransferWorkers: so.TransferWorkers,
		Finish:          so.Finish,
		LogLevel:        "info",
	}
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	if !isIdentifier(c.KernelPrefix) {
		return fmt.Errorf("kernel_prefix %q is not an identifier", c.KernelPrefix)
	}
	if !isIdentifier(c.ResourcePrefix) {
		return fmt.Errorf("resource_prefix %q is not an identifier", c.ResourcePrefix)
	}
	if c.Indent == "" || strings.Trim(c.Indent, " \t") != "" {
		return fmt.Errorf("indent %q must be spaces or tabs", c.Indent)
	}
	if c.TransferWorkers < 1 {
		return fmt.Errorf("transfer_workers must be at least 1, got %d", c.TransferWorkers)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log_level: %w", err)
	}
	return level, nil
}

// TraceOptions returns the tracer options described by c.
func (c *Config) TraceOptions() trace.Options {
	return trace.Options{KernelPrefix: c.KernelPrefix, ResourcePrefix: c.ResourcePrefix}
}

// WriterOptions returns the source writer options described by c.
func (c *Config) WriterOptions() clc.Options {
	return clc.Options{Indent: c.Indent, Validate: c.ValidateIR}
}

// SchedulerOptions returns the scheduler options described by c.
func (c *Config) SchedulerOptions() sched.Options {
	return sched.Options{TransferWorkers: c.TransferWorkers, Finish: c.Finish}
}

// isIdentifier reports whether s is a valid C identifier.
func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
