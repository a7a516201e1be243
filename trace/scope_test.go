// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package trace

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/clkernel/backend"
	"github.com/gogpu/clkernel/clc"
	"github.com/gogpu/clkernel/ir"
)

type testBuffer struct {
	handle   ir.ResourceHandle
	typeName string
	size     uint64
}

func newTestBuffer(typeName string, size uint64) *testBuffer {
	return &testBuffer{handle: ir.NewResourceHandle(), typeName: typeName, size: size}
}

func (b *testBuffer) ResourceHandle() ir.ResourceHandle { return b.handle }
func (b *testBuffer) TypeName() string                  { return b.typeName }
func (b *testBuffer) ByteSize() uint64                  { return b.size }

func TestScope_RawStatementKernel(t *testing.T) {
	tr := NewTracer(DefaultOptions())
	s, err := tr.Begin("K")
	require.NoError(t, err)

	s.Statement("r[i]=1")

	rec, err := s.End()
	require.NoError(t, err)

	source, err := clc.Finalize(rec.Kernel())
	require.NoError(t, err)
	assert.Equal(t, "__kernel void K() {\n\tr[i]=1;\n}\n", source)
}

func TestScope_StatementTerminatorNotDoubled(t *testing.T) {
	tr := NewTracer(DefaultOptions())
	s, err := tr.Begin("K")
	require.NoError(t, err)
	s.Statement("  x=2;  ")
	rec, err := s.End()
	require.NoError(t, err)

	source, err := clc.Finalize(rec.Kernel())
	require.NoError(t, err)
	assert.Equal(t, "__kernel void K() {\n\tx=2;\n}\n", source)
}

func TestScope_RegisterIdempotent(t *testing.T) {
	tr := NewTracer(DefaultOptions())
	s, err := tr.Begin("dup")
	require.NoError(t, err)

	buf := newTestBuffer("int", 16)
	first, err := s.Register(buf, ir.ModeRead, ir.TargetGlobalBuffer)
	require.NoError(t, err)
	second, err := s.Register(buf, ir.ModeRead, ir.TargetGlobalBuffer)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	rec, err := s.End()
	require.NoError(t, err)
	assert.Len(t, rec.Resources(), 1)
}

func TestScope_RegisterConflictRejected(t *testing.T) {
	tr := NewTracer(DefaultOptions())
	s, err := tr.Begin("conflict")
	require.NoError(t, err)

	buf := newTestBuffer("int", 16)
	name, err := s.Register(buf, ir.ModeRead, ir.TargetGlobalBuffer)
	require.NoError(t, err)

	again, err := s.Register(buf, ir.ModeWrite, ir.TargetGlobalBuffer)
	require.Error(t, err)
	assert.True(t, IsKind(err, ErrConflictingResource))
	assert.Equal(t, name, again, "first registration must stay in place")

	_, err = s.End()
	assert.True(t, IsKind(err, ErrConflictingResource))
	assert.False(t, tr.Active(), "a failed End still releases the tracer")
}

func TestScope_GeneratedNamesFollowRegistrationOrder(t *testing.T) {
	tr := NewTracer(Options{ResourcePrefix: "buf"})
	s, err := tr.Begin("order")
	require.NoError(t, err)

	var names []string
	for i := 0; i < 5; i++ {
		// Identical user-visible data must not influence names.
		a := s.Access(newTestBuffer("float", 8), ir.ModeReadWrite)
		names = append(names, a.Name())
	}
	assert.Equal(t, []string{"buf0", "buf1", "buf2", "buf3", "buf4"}, names)

	rec, err := s.End()
	require.NoError(t, err)
	for i, res := range rec.Resources() {
		assert.Equal(t, names[i], res.Name)
	}
}

func TestTracer_Reentrant(t *testing.T) {
	tr := NewTracer(DefaultOptions())
	s, err := tr.Begin("outer")
	require.NoError(t, err)

	_, err = tr.Begin("inner")
	require.Error(t, err)
	assert.True(t, IsKind(err, ErrReentrant))

	_, err = s.End()
	require.NoError(t, err)

	// The slot is free again.
	s2, err := tr.Begin("")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(s2.Name(), "_clk_kernel"))
	_, err = s2.End()
	require.NoError(t, err)
}

func TestTracer_ForeignScope(t *testing.T) {
	a := NewTracer(DefaultOptions())
	b := NewTracer(DefaultOptions())
	s, err := a.Begin("k")
	require.NoError(t, err)

	_, err = b.End(s)
	assert.True(t, IsKind(err, ErrForeignScope))

	_, err = a.End(s)
	require.NoError(t, err)
}

func TestTracer_SeparateTracersConcurrently(t *testing.T) {
	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tr := NewTracer(DefaultOptions())
			s, err := tr.Begin("")
			if err != nil {
				errs[i] = err
				return
			}
			s.Access(newTestBuffer("int", 4), ir.ModeWrite).Set(0, i)
			_, errs[i] = s.End()
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		assert.NoError(t, err)
	}
}

func TestScope_BlockDepth(t *testing.T) {
	tr := NewTracer(DefaultOptions())
	s, err := tr.Begin("depth")
	require.NoError(t, err)

	assert.Equal(t, 0, s.Depth())
	s.Block(func() {
		assert.Equal(t, 1, s.Depth())
		s.Block(func() {
			assert.Equal(t, 2, s.Depth())
		})
		assert.Equal(t, 1, s.Depth())
	})
	assert.Equal(t, 0, s.Depth())

	_, err = s.End()
	require.NoError(t, err)
}

func TestScope_EndInsideBlockIsUnbalanced(t *testing.T) {
	tr := NewTracer(DefaultOptions())
	s, err := tr.Begin("unbalanced")
	require.NoError(t, err)

	var endErr error
	s.Block(func() {
		_, endErr = s.End()
	})
	assert.True(t, IsKind(endErr, ErrUnbalancedBlock))
	assert.False(t, tr.Active())
}

func TestScope_BlockBalancedAfterPanic(t *testing.T) {
	tr := NewTracer(DefaultOptions())
	s, err := tr.Begin("panicky")
	require.NoError(t, err)

	assert.Panics(t, func() {
		s.Block(func() { panic("boom") })
	})
	assert.Equal(t, 0, s.Depth())
	_, err = s.End()
	require.NoError(t, err)
}

func TestScope_UseAfterEndIsReported(t *testing.T) {
	reporter := backend.NewLogReporter(nil)
	tr := NewTracer(Options{Reporter: reporter})
	s, err := tr.Begin("late")
	require.NoError(t, err)
	_, err = s.End()
	require.NoError(t, err)

	s.Statement("x=1")
	_, err = s.Register(newTestBuffer("int", 4), ir.ModeRead, ir.TargetGlobalBuffer)
	assert.True(t, IsKind(err, ErrNoActiveRecording))

	_, err = s.End()
	assert.True(t, IsKind(err, ErrNoActiveRecording))

	reported := reporter.Errors()
	require.Len(t, reported, 2)
	for _, e := range reported {
		assert.True(t, IsKind(e, ErrNoActiveRecording))
	}
}

func TestScope_NilScopeDoesNotPanic(t *testing.T) {
	var s *Scope
	assert.NotPanics(t, func() {
		s.Statement("x=1")
		s.Block(func() {})
		s.If(true, func() {}).Else(func() {})
		_, err := s.End()
		assert.True(t, IsKind(err, ErrNoActiveRecording))
	})
}

func TestScope_ReadOnlyWrite(t *testing.T) {
	tr := NewTracer(DefaultOptions())
	s, err := tr.Begin("ro")
	require.NoError(t, err)

	a := s.Access(newTestBuffer("int", 4), ir.ModeRead)
	a.Set(0, 1)

	_, err = s.End()
	assert.True(t, IsKind(err, ErrReadOnlyWrite))
}

func TestScope_UnsupportedValue(t *testing.T) {
	tr := NewTracer(DefaultOptions())
	s, err := tr.Begin("bad")
	require.NoError(t, err)

	a := s.Access(newTestBuffer("int", 4), ir.ModeWrite)
	a.Set(0, "not a number")

	_, err = s.End()
	assert.True(t, IsKind(err, ErrUnsupportedValue))
}

func TestAccessor_UpdateOperators(t *testing.T) {
	tests := []struct {
		op   ir.BinaryOperator
		want string
	}{
		{ir.BinaryAdd, "_clk_buf0[0]+=1;"},
		{ir.BinaryModulo, "_clk_buf0[0]%=1;"},
		{ir.BinaryExclusiveOr, "_clk_buf0[0]^=1;"},
		{ir.BinaryShiftRight, "_clk_buf0[0]>>=1;"},
		{ir.BinaryLess, ""},
		{ir.BinaryEqual, ""},
		{ir.BinaryLogicalAnd, ""},
		{ir.BinaryLogicalOr, ""},
	}
	for _, tt := range tests {
		t.Run(tt.op.Token(), func(t *testing.T) {
			tr := NewTracer(DefaultOptions())
			s, err := tr.Begin("K")
			require.NoError(t, err)
			s.Access(newTestBuffer("int", 4), ir.ModeReadWrite).Update(tt.op, 0, 1)

			rec, err := s.End()
			if tt.want == "" {
				assert.True(t, IsKind(err, ErrUnsupportedValue), "err = %v", err)
				return
			}
			require.NoError(t, err)
			source, err := clc.Finalize(rec.Kernel())
			require.NoError(t, err)
			assert.Contains(t, source, "\t"+tt.want+"\n")
		})
	}
}

func TestScope_NameOf(t *testing.T) {
	tr := NewTracer(DefaultOptions())
	s, err := tr.Begin("names")
	require.NoError(t, err)

	bufA := newTestBuffer("int", 4)
	a := s.Access(bufA, ir.ModeRead)
	b := s.Access(newTestBuffer("int", 4), ir.ModeRead)
	i := ir.Ident("i")

	tests := []struct {
		in   any
		want string
	}{
		{a, "_clk_buf0"},
		{bufA, "_clk_buf0"},
		{b.At(i), "_clk_buf1[i]"},
		{ir.Add(a.At(i), b.At(i)), "_clk_buf0[i]+_clk_buf1[i]"},
		{42, "42"},
		{float32(1.5), "1.5f"},
		{true, "true"},
	}
	for _, tt := range tests {
		got, err := s.NameOf(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err = s.NameOf(struct{}{})
	assert.True(t, IsKind(err, ErrUnsupportedValue))

	_, err = s.NameOf(newTestBuffer("int", 4))
	assert.True(t, IsKind(err, ErrUnsupportedValue))

	_, err = s.End()
	require.NoError(t, err)
}

func TestScope_Local(t *testing.T) {
	tr := NewTracer(DefaultOptions())
	s, err := tr.Begin("scratch")
	require.NoError(t, err)

	tmp := s.Local("float", 64)
	assert.Equal(t, ir.TargetLocal, tmp.Target())
	tmp.Set(0, float32(0))

	rec, err := s.End()
	require.NoError(t, err)
	res := rec.Resources()
	require.Len(t, res, 1)
	assert.Equal(t, uint64(256), res[0].Descriptor.ByteSize)
	assert.Equal(t, ir.TargetLocal, res[0].Descriptor.Target)
}

func TestScope_LocalUnknownType(t *testing.T) {
	tr := NewTracer(DefaultOptions())
	s, err := tr.Begin("scratch")
	require.NoError(t, err)
	s.Local("float3x3", 4)
	_, err = s.End()
	assert.True(t, IsKind(err, ErrUnsupportedValue))
}

func TestRecording_Immutable(t *testing.T) {
	tr := NewTracer(DefaultOptions())
	s, err := tr.Begin("immutable")
	require.NoError(t, err)
	buf := newTestBuffer("int", 4)
	s.Access(buf, ir.ModeWrite).Set(0, 1)
	rec, err := s.End()
	require.NoError(t, err)

	res := rec.Resources()
	res[0].Name = "changed"
	assert.Equal(t, "_clk_buf0", rec.Resources()[0].Name)

	obj, ok := rec.Object(buf.ResourceHandle())
	require.True(t, ok)
	assert.Same(t, buf, obj)
	assert.Equal(t, 1, rec.Statements())
}
