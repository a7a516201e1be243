// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package sched

import (
	"fmt"
	"strings"

	"github.com/gogpu/clkernel/ir"
	"github.com/gogpu/clkernel/trace"
)

// NeedsUpload reports whether a resource is copied to the device before
// the kernel runs. Local resources and write-only or discard modes are not.
func NeedsUpload(d ir.ResourceDescriptor) bool {
	return d.Target != ir.TargetLocal && d.Mode.ReadsHostData()
}

// NeedsDownload reports whether a resource is copied back to the host
// after the kernel runs. Local and read-only resources are not.
func NeedsDownload(d ir.ResourceDescriptor) bool {
	return d.Target != ir.TargetLocal && d.Mode != ir.ModeRead
}

// Step is one resource entry of a plan.
type Step struct {
	Index    int
	Name     string
	Handle   ir.ResourceHandle
	ByteSize uint64
	Local    bool
}

// Plan is the argument binding and transfer schedule of a recording.
type Plan struct {
	Kernel    string
	Binds     []Step
	Uploads   []Step
	Downloads []Step
	Launch    ir.Launch
}

// NewPlan derives the plan of rec. Bind order is resource order, which
// is the order of the kernel's parameters.
func NewPlan(rec *trace.Recording) *Plan {
	p := &Plan{Kernel: rec.Name(), Launch: rec.Launch()}
	for i, res := range rec.Resources() {
		step := Step{
			Index:    i,
			Name:     res.Name,
			Handle:   res.Handle,
			ByteSize: res.Descriptor.ByteSize,
			Local:    res.Descriptor.Target == ir.TargetLocal,
		}
		p.Binds = append(p.Binds, step)
		if NeedsUpload(res.Descriptor) {
			p.Uploads = append(p.Uploads, step)
		}
		if NeedsDownload(res.Descriptor) {
			p.Downloads = append(p.Downloads, step)
		}
	}
	return p
}

// String renders the plan one command per line.
func (p *Plan) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "kernel %s\n", p.Kernel)
	for _, s := range p.Binds {
		if s.Local {
			fmt.Fprintf(&b, "  bind %d %s local %dB\n", s.Index, s.Name, s.ByteSize)
			continue
		}
		fmt.Fprintf(&b, "  bind %d %s %dB\n", s.Index, s.Name, s.ByteSize)
	}
	for _, s := range p.Uploads {
		fmt.Fprintf(&b, "  upload %s\n", s.Name)
	}
	if p.Launch.IsTask() {
		b.WriteString("  enqueue task\n")
	} else {
		fmt.Fprintf(&b, "  enqueue %v\n", p.Launch.Global[:p.Launch.Dims])
	}
	for _, s := range p.Downloads {
		fmt.Fprintf(&b, "  download %s\n", s.Name)
	}
	return b.String()
}
