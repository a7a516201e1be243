// Package clkernel turns Go functions into OpenCL C kernels and runs them.
//
// A kernel body is ordinary Go code that drives a trace.Scope. Tracing it
// once yields the kernel source and the list of resources it accesses;
// the runtime compiles the source through a backend, binds the resources
// as arguments, uploads what the kernel reads, enqueues it and downloads
// what it writes.
//
// Example usage:
//
//	a := dryrun.NewBuffer(hostA)
//	b := dryrun.NewBuffer(hostB)
//	c := dryrun.NewBuffer(hostC)
//	dev := dryrun.NewDevice()
//	rt := clkernel.New(dev, dev, clkernel.DefaultOptions())
//
//	_, err := rt.Submit(ctx, "vecadd", dispatch.ParallelFor(dispatch.Range1(n), func(s *trace.Scope, id dispatch.ID) {
//	    ra := s.Access(a, ir.ModeRead)
//	    rb := s.Access(b, ir.ModeRead)
//	    wc := s.Access(c, ir.ModeDiscardWrite)
//	    wc.Set(id.X(), ir.Add(ra.At(id.X()), rb.At(id.X())))
//	}))
//
// The lower-level packages can be used on their own: trace and dispatch
// record kernels, clc renders them, sched executes them on a backend.
package clkernel

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gogpu/clkernel/backend"
	"github.com/gogpu/clkernel/cache"
	"github.com/gogpu/clkernel/clc"
	"github.com/gogpu/clkernel/config"
	"github.com/gogpu/clkernel/dispatch"
	"github.com/gogpu/clkernel/internal/ctxlog"
	"github.com/gogpu/clkernel/sched"
	"github.com/gogpu/clkernel/trace"
)

// Options configures a Runtime.
type Options struct {
	// Trace configures kernel and resource naming.
	Trace trace.Options

	// Writer configures source generation.
	Writer clc.Options

	// Scheduler configures argument binding and transfers.
	Scheduler sched.Options

	// Logger receives debug output. Defaults to a discarding logger.
	Logger *slog.Logger

	// Reporter receives every failure once. Defaults to logging through Logger.
	Reporter backend.Reporter
}

// DefaultOptions returns sensible default options.
func DefaultOptions() Options {
	return Options{
		Trace:     trace.DefaultOptions(),
		Writer:    clc.DefaultOptions(),
		Scheduler: sched.DefaultOptions(),
	}
}

// OptionsFromConfig returns the options described by cfg.
func OptionsFromConfig(cfg *config.Config, logger *slog.Logger) Options {
	return Options{
		Trace:     cfg.TraceOptions(),
		Writer:    cfg.WriterOptions(),
		Scheduler: cfg.SchedulerOptions(),
		Logger:    logger,
	}
}

// Result describes one traced kernel.
type Result struct {
	Recording *trace.Recording
	Source    string
	Info      clc.TranslationInfo
	Plan      *sched.Plan

	// Kernel is nil for Generate results.
	Kernel backend.Kernel
}

// CompileError is a kernel build failure. Err is the backend error verbatim.
type CompileError struct {
	Kernel string
	Source string
	Err    error
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	return fmt.Sprintf("build kernel %s: %v", e.Kernel, e.Err)
}

// Unwrap returns the backend error.
func (e *CompileError) Unwrap() error { return e.Err }

// Runtime traces, compiles and runs kernels on one backend queue.
// It is safe for concurrent use. Traces are serialized, and so are runs
// of the same compiled kernel, whose argument table is shared.
type Runtime struct {
	opts      Options
	compiler  backend.Compiler
	queue     backend.Queue
	cache     *cache.Cache
	scheduler *sched.Scheduler

	mu     sync.Mutex
	tracer *trace.Tracer

	launches sync.Map // cache.Key -> *sync.Mutex
}

// New creates a runtime that builds with compiler and submits to queue.
func New(compiler backend.Compiler, queue backend.Queue, opts Options) *Runtime {
	if opts.Logger == nil {
		opts.Logger = ctxlog.Discard()
	}
	if opts.Reporter == nil {
		opts.Reporter = backend.NewLogReporter(opts.Logger)
	}
	opts.Trace.Logger = opts.Logger
	opts.Trace.Reporter = opts.Reporter

	return &Runtime{
		opts:      opts,
		compiler:  compiler,
		queue:     queue,
		cache:     cache.New(),
		scheduler: sched.New(opts.Scheduler),
		tracer:    trace.NewTracer(opts.Trace),
	}
}

// Cache returns the compiled-kernel cache.
func (r *Runtime) Cache() *cache.Cache { return r.cache }

func (r *Runtime) context(ctx context.Context) context.Context {
	ctx = ctxlog.WithLogger(ctx, r.opts.Logger)
	return backend.WithReporter(ctx, r.opts.Reporter)
}

// Generate traces shape and renders the kernel source without touching
// the backend.
func (r *Runtime) Generate(ctx context.Context, name string, shape dispatch.Shape) (*Result, error) {
	ctx = r.context(ctx)
	return r.generate(ctx, name, shape)
}

func (r *Runtime) generate(ctx context.Context, name string, shape dispatch.Shape) (*Result, error) {
	r.mu.Lock()
	rec, err := dispatch.Trace(ctx, r.tracer, name, shape)
	r.mu.Unlock()
	if err != nil {
		return nil, err
	}

	source, info, err := clc.Compile(rec.Kernel(), r.opts.Writer)
	if err != nil {
		r.opts.Reporter.Report(err)
		return nil, err
	}
	return &Result{Recording: rec, Source: source, Info: info, Plan: sched.NewPlan(rec)}, nil
}

// Submit traces shape, builds the kernel (once per distinct source) and
// runs it. Every failure is reported once to the configured reporter and
// returned.
func (r *Runtime) Submit(ctx context.Context, name string, shape dispatch.Shape) (*Result, error) {
	ctx = r.context(ctx)
	logger := ctxlog.FromContext(ctx)

	res, err := r.generate(ctx, name, shape)
	if err != nil {
		return nil, err
	}
	kernelName := res.Recording.Name()

	kernel, err := r.cache.GetOrBuild(ctx, kernelName, res.Source, r.compiler)
	if err != nil {
		cerr := &CompileError{Kernel: kernelName, Source: res.Source, Err: err}
		r.opts.Reporter.Report(cerr)
		return nil, cerr
	}
	res.Kernel = kernel

	unlock := r.lockLaunch(cache.KeyOf(kernelName, res.Source))
	err = r.scheduler.Run(ctx, kernel, r.queue, res.Recording)
	unlock()
	if err != nil {
		return nil, err
	}

	logger.Debug("kernel submitted", "kernel", kernelName, "lines", res.Info.Lines)
	return res, nil
}

// lockLaunch holds the launch lock of one compiled kernel from argument
// binding until its downloads complete.
func (r *Runtime) lockLaunch(key cache.Key) (unlock func()) {
	v, _ := r.launches.LoadOrStore(key, new(sync.Mutex))
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
