package main

import (
	"sort"

	"github.com/gogpu/clkernel/backend"
	"github.com/gogpu/clkernel/backend/dryrun"
	"github.com/gogpu/clkernel/dispatch"
	"github.com/gogpu/clkernel/ir"
	"github.com/gogpu/clkernel/trace"
)

// sample is a built-in kernel with host data and an emulator for -run.
type sample struct {
	description string
	build       func(n int) (dispatch.Shape, dryrun.Emulator, func() any)
}

var samples = map[string]sample{
	"vecadd": {
		description: "c[i] = a[i] + b[i]",
		build:       vecadd,
	},
	"fill": {
		description: "out[i] = 7 as a single task loop",
		build:       fill,
	},
	"groupsum": {
		description: "per-work-group sums through local memory",
		build:       groupsum,
	},
}

func sampleNames() []string {
	names := make([]string, 0, len(samples))
	for name := range samples {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func iota32(n int) []int32 {
	v := make([]int32, n)
	for i := range v {
		v[i] = int32(i)
	}
	return v
}

func vecadd(n int) (dispatch.Shape, dryrun.Emulator, func() any) {
	a := dryrun.NewBuffer(iota32(n))
	b := dryrun.NewBuffer(iota32(n))
	c := dryrun.NewBuffer(make([]int32, n))

	shape := dispatch.ParallelFor(dispatch.Range1(uint64(n)), func(s *trace.Scope, id dispatch.ID) {
		ra := s.Access(a, ir.ModeRead)
		rb := s.Access(b, ir.ModeRead)
		wc := s.Access(c, ir.ModeWrite)
		wc.Set(id.X(), ir.Add(ra.At(id.X()), rb.At(id.X())))
	})
	emulate := func(args []backend.Memory, launch ir.Launch) error {
		av := args[0].(*dryrun.Buffer[int32]).Device()
		bv := args[1].(*dryrun.Buffer[int32]).Device()
		cv := args[2].(*dryrun.Buffer[int32]).Device()
		for i := range cv {
			cv[i] = av[i] + bv[i]
		}
		return nil
	}
	return shape, emulate, func() any { return c.Host() }
}

func fill(n int) (dispatch.Shape, dryrun.Emulator, func() any) {
	out := dryrun.NewBuffer(make([]int32, n))

	shape := dispatch.Task(func(s *trace.Scope) {
		w := s.Access(out, ir.ModeDiscardWrite)
		i := ir.Ident("i")
		s.For(ir.StmtDecl{TypeName: "int", Name: "i", Init: ir.MustLit(0)},
			ir.Less(i, ir.MustLit(n)),
			ir.ExprAssign{Op: ir.BinaryAdd, Target: i, Value: ir.MustLit(1)},
			func() { w.Set(i, 7) })
	})
	emulate := func(args []backend.Memory, _ ir.Launch) error {
		v := args[0].(*dryrun.Buffer[int32]).Device()
		for i := range v {
			v[i] = 7
		}
		return nil
	}
	return shape, emulate, func() any { return out.Host() }
}

const groupSize = 4

func groupsum(n int) (dispatch.Shape, dryrun.Emulator, func() any) {
	n = max(n/groupSize, 1) * groupSize
	in := dryrun.NewBuffer(iota32(n))
	out := dryrun.NewBuffer(make([]int32, n/groupSize))

	shape := dispatch.ParallelForND(dispatch.ND(dispatch.Range1(uint64(n)), dispatch.Range1(groupSize)), func(s *trace.Scope, it dispatch.NDItem) {
		src := s.Access(in, ir.ModeRead)
		scratch := s.Local("int", groupSize)
		dst := s.Access(out, ir.ModeWrite)

		lid := it.Local.X()
		scratch.Set(lid, src.At(it.Global.ID.X()))
		it.Barrier(s)
		s.If(ir.Eq(lid, ir.MustLit(0)), func() {
			sum := s.Declare("int", "sum", 0)
			for k := 0; k < groupSize; k++ {
				s.AssignOp(ir.BinaryAdd, sum, scratch.At(k))
			}
			dst.Set(it.GroupID(0), sum)
		})
	})
	emulate := func(args []backend.Memory, _ ir.Launch) error {
		src := args[0].(*dryrun.Buffer[int32]).Device()
		dst := args[2].(*dryrun.Buffer[int32]).Device()
		for g := range dst {
			var sum int32
			for k := 0; k < groupSize; k++ {
				sum += src[g*groupSize+k]
			}
			dst[g] = sum
		}
		return nil
	}
	return shape, emulate, func() any { return out.Host() }
}
