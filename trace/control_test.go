// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package trace

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/clkernel/clc"
	"github.com/gogpu/clkernel/ir"
)

func TestScope_IfElseIfElse(t *testing.T) {
	tr := NewTracer(DefaultOptions())
	s, err := tr.Begin("branch")
	require.NoError(t, err)

	out := s.Access(newTestBuffer("int", 4), ir.ModeWrite)
	x := s.Declare("int", "x", 5)

	s.If(ir.Less(x, ir.MustLit(1)), func() {
		out.Set(0, 1)
	}).ElseIf(ir.Eq(x, ir.MustLit(5)), func() {
		out.Set(0, 2)
	}).Else(func() {
		out.Set(0, 3)
	})

	rec, err := s.End()
	require.NoError(t, err)
	source, err := clc.Finalize(rec.Kernel())
	require.NoError(t, err)

	want := strings.Join([]string{
		"__kernel void branch(__global int* _clk_buf0) {",
		"\tint x = 5;",
		"\tif(x<1)",
		"\t{",
		"\t\t_clk_buf0[0]=1;",
		"\t}",
		"\telse if(x==5)",
		"\t{",
		"\t\t_clk_buf0[0]=2;",
		"\t}",
		"\telse",
		"\t{",
		"\t\t_clk_buf0[0]=3;",
		"\t}",
		"}",
		"",
	}, "\n")
	assert.Equal(t, want, source)
}

func TestScope_DanglingElse(t *testing.T) {
	tests := []struct {
		name   string
		record func(s *Scope)
	}{
		{
			name: "statement between if and else",
			record: func(s *Scope) {
				chain := s.If(true, func() {})
				s.Statement("x=1")
				chain.Else(func() {})
			},
		},
		{
			name: "second else",
			record: func(s *Scope) {
				chain := s.If(true, func() {})
				chain.Else(func() {})
				chain.Else(func() {})
			},
		},
		{
			name: "else from inside the if body",
			record: func(s *Scope) {
				var chain *IfChain
				chain = s.If(true, func() {})
				s.Block(func() {
					chain.ElseIf(false, func() {})
				})
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := NewTracer(DefaultOptions())
			s, err := tr.Begin("dangling")
			require.NoError(t, err)
			tt.record(s)
			_, err = s.End()
			assert.True(t, IsKind(err, ErrDanglingElse), "got %v", err)
		})
	}
}

func TestScope_Loops(t *testing.T) {
	tr := NewTracer(DefaultOptions())
	s, err := tr.Begin("loops")
	require.NoError(t, err)

	acc := s.Access(newTestBuffer("float", 64), ir.ModeReadWrite)
	i := ir.Ident("i")
	n := s.Declare("int", "n", 0)

	s.For(ir.StmtDecl{TypeName: "int", Name: "i", Init: ir.MustLit(0)},
		ir.Less(i, ir.MustLit(16)),
		ir.ExprAssign{Op: ir.BinaryAdd, Target: i, Value: ir.MustLit(1)},
		func() {
			acc.Update(ir.BinaryMultiply, i, float32(2))
		})
	s.While(ir.Less(n, ir.MustLit(4)), func() {
		s.AssignOp(ir.BinaryAdd, n, 1)
		s.If(ir.Eq(n, ir.MustLit(3)), func() {
			s.Break()
		})
	})

	rec, err := s.End()
	require.NoError(t, err)
	source, err := clc.Finalize(rec.Kernel())
	require.NoError(t, err)

	want := strings.Join([]string{
		"__kernel void loops(__global float* _clk_buf0) {",
		"\tint n = 0;",
		"\tfor(int i = 0; i<16; i+=1)",
		"\t{",
		"\t\t_clk_buf0[i]*=2.0f;",
		"\t}",
		"\twhile(n<4)",
		"\t{",
		"\t\tn+=1;",
		"\t\tif(n==3)",
		"\t\t{",
		"\t\t\tbreak;",
		"\t\t}",
		"\t}",
		"}",
		"",
	}, "\n")
	assert.Equal(t, want, source)
}

func TestScope_BreakOutsideLoopFailsValidation(t *testing.T) {
	tr := NewTracer(DefaultOptions())
	s, err := tr.Begin("stray")
	require.NoError(t, err)
	s.Break()
	_, err = s.End()
	assert.True(t, IsKind(err, ErrInvalidKernel))
}
