// Command clkgen traces the built-in sample kernels and prints their
// OpenCL C source.
//
// Usage:
//
//	clkgen [options] <sample>
//
// Examples:
//
//	clkgen vecadd                          # Print kernel source
//	clkgen -plan vecadd                    # Also print the execution plan
//	clkgen -run -n 8 groupsum              # Execute on the dry-run device
//	clkgen -o out/vecadd.cl vecadd         # Write source to a file or URL
//	clkgen -config clkernel.hcl fill       # Use a configuration file
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/viant/afs"

	"github.com/gogpu/clkernel"
	"github.com/gogpu/clkernel/backend/dryrun"
	"github.com/gogpu/clkernel/config"
	"github.com/gogpu/clkernel/internal/ctxlog"
)

var (
	output    = flag.String("o", "", "output file or URL (default: stdout)")
	configURL = flag.String("config", "", "configuration file or URL (.yaml, .yml, .hcl)")
	showPlan  = flag.Bool("plan", false, "print the argument binding and transfer plan")
	run       = flag.Bool("run", false, "execute the kernel on the dry-run device and print the result")
	size      = flag.Int("n", 16, "number of work-items")
	logLevel  = flag.String("log", "", "log level: debug, info, warn, error (overrides config)")
	list      = flag.Bool("list", false, "list the built-in samples")
	version   = flag.Bool("version", false, "print version")
)

const clkgenVersion = "0.1.0-dev"

func main() {
	flag.Usage = usage
	flag.Parse()

	if *version {
		fmt.Printf("clkgen version %s\n", clkgenVersion)
		return
	}
	if *list {
		for _, name := range sampleNames() {
			fmt.Printf("%-10s %s\n", name, samples[name].description)
		}
		return
	}

	args := flag.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Error: no sample specified")
		usage()
		os.Exit(1)
	}

	if err := generate(context.Background(), args[0]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func generate(ctx context.Context, name string) error {
	smp, ok := samples[name]
	if !ok {
		return fmt.Errorf("unknown sample %q (available: %s)", name, strings.Join(sampleNames(), ", "))
	}
	if *size < 1 {
		return fmt.Errorf("-n must be positive, got %d", *size)
	}

	cfg := config.Default()
	if *configURL != "" {
		loaded, err := config.Load(ctx, *configURL)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	level, err := cfg.Level()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	ctx = ctxlog.WithLogger(ctx, logger)

	shape, emulate, result := smp.build(*size)
	dev := dryrun.NewDevice()
	dev.Emulate(name, emulate)
	rt := clkernel.New(dev, dev, clkernel.OptionsFromConfig(cfg, logger))

	var res *clkernel.Result
	if *run {
		res, err = rt.Submit(ctx, name, shape)
	} else {
		res, err = rt.Generate(ctx, name, shape)
	}
	if err != nil {
		return err
	}

	var out strings.Builder
	out.WriteString(res.Source)
	if *showPlan {
		out.WriteString("\n/*\n")
		out.WriteString(res.Plan.String())
		out.WriteString("*/\n")
	}
	if *run {
		fmt.Fprintf(&out, "\n// result: %v\n", result())
		for _, cmd := range dev.Log().Commands() {
			fmt.Fprintf(&out, "// %s\n", cmd)
		}
	}

	if *output == "" {
		_, err = os.Stdout.WriteString(out.String())
		return err
	}
	if err := afs.New().Upload(ctx, *output, 0o644, strings.NewReader(out.String())); err != nil {
		return fmt.Errorf("writing %s: %w", *output, err)
	}
	fmt.Printf("Successfully generated %s to %s (%d lines)\n", name, *output, res.Info.Lines)
	return nil
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: clkgen [options] <sample>\n\n")
	fmt.Fprintf(os.Stderr, "Options:\n")
	flag.PrintDefaults()
	fmt.Fprintf(os.Stderr, "\nSamples: %s\n", strings.Join(sampleNames(), ", "))
	fmt.Fprintf(os.Stderr, "\nExamples:\n")
	fmt.Fprintf(os.Stderr, "  clkgen vecadd                   Print kernel source\n")
	fmt.Fprintf(os.Stderr, "  clkgen -plan -run vecadd        Run on the dry-run device\n")
	fmt.Fprintf(os.Stderr, "  clkgen -o vecadd.cl vecadd      Write to file\n")
}
