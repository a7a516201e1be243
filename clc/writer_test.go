// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package clc

import (
	"strings"
	"testing"

	"github.com/gogpu/clkernel/ir"
)

func TestCompile_RawStatementNoResources(t *testing.T) {
	kernel := &ir.Kernel{
		Name: "K",
		Body: ir.Block{{Kind: ir.StmtRaw{Text: "r[i]=1"}}},
	}

	got, err := Finalize(kernel)
	if err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}
	want := "__kernel void K() {\n\tr[i]=1;\n}\n"
	if got != want {
		t.Errorf("Finalize() =\n%q\nwant\n%q", got, want)
	}
}

func TestCompile_EmptyKernel(t *testing.T) {
	got, err := Finalize(&ir.Kernel{Name: "empty"})
	if err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}
	if got != "__kernel void empty() {\n}\n" {
		t.Errorf("got %q", got)
	}
}

func TestCompile_Signature(t *testing.T) {
	kernel := &ir.Kernel{
		Name: "modes",
		Resources: []ir.Resource{
			{Handle: 1, Name: "_clk_buf0", Descriptor: ir.ResourceDescriptor{TypeName: "int", Mode: ir.ModeRead, ByteSize: 4}},
			{Handle: 2, Name: "_clk_buf1", Descriptor: ir.ResourceDescriptor{TypeName: "int", Mode: ir.ModeWrite, ByteSize: 4}},
			{Handle: 3, Name: "_clk_buf2", Descriptor: ir.ResourceDescriptor{TypeName: "int", Mode: ir.ModeReadWrite, ByteSize: 4}},
			{Handle: 4, Name: "_clk_buf3", Descriptor: ir.ResourceDescriptor{TypeName: "float", Mode: ir.ModeRead, Target: ir.TargetConstantBuffer, ByteSize: 4}},
			{Handle: 5, Name: "_clk_buf4", Descriptor: ir.ResourceDescriptor{TypeName: "float", Mode: ir.ModeReadWrite, Target: ir.TargetLocal, ByteSize: 64}},
		},
	}

	source, info, err := Compile(kernel, DefaultOptions())
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	firstLine := strings.SplitN(source, "\n", 2)[0]
	want := "__kernel void modes(" +
		"__global const int* _clk_buf0, " +
		"__global int* _clk_buf1, " +
		"__global int* _clk_buf2, " +
		"__constant const float* _clk_buf3, " +
		"__local float* _clk_buf4) {"
	if firstLine != want {
		t.Errorf("signature =\n%s\nwant\n%s", firstLine, want)
	}

	if len(info.Parameters) != 5 {
		t.Fatalf("expected 5 parameters, got %d", len(info.Parameters))
	}
	for i, res := range kernel.Resources {
		if info.Parameters[i] != res.Name {
			t.Errorf("parameter %d = %s, want %s", i, info.Parameters[i], res.Name)
		}
	}
	if info.KernelName != "modes" {
		t.Errorf("KernelName = %s", info.KernelName)
	}
}

func TestCompile_ControlFlow(t *testing.T) {
	x := ir.Ident("x")
	kernel := &ir.Kernel{
		Name: "flow",
		Body: ir.Block{
			{Kind: ir.StmtDecl{TypeName: "int", Name: "x", Init: ir.MustLit(0)}},
			{Kind: ir.StmtIf{
				Condition: ir.Less(x, ir.MustLit(1)),
				Accept:    ir.Block{{Kind: ir.StmtExpr{Expr: ir.ExprAssign{Target: x, Value: ir.MustLit(1)}}}},
				ElseIfs: []ir.ElseIf{{
					Condition: ir.Eq(x, ir.MustLit(2)),
					Body:      ir.Block{{Kind: ir.StmtExpr{Expr: ir.ExprAssign{Target: x, Value: ir.MustLit(3)}}}},
				}},
				HasElse: true,
				Reject: ir.Block{{Kind: ir.StmtWhile{
					Condition: ir.Less(x, ir.MustLit(10)),
					Body:      ir.Block{{Kind: ir.StmtExpr{Expr: ir.ExprAssign{Op: ir.BinaryAdd, Target: x, Value: ir.MustLit(1)}}}},
				}}},
			}},
			{Kind: ir.StmtBarrier{Flags: ir.BarrierLocal | ir.BarrierGlobal}},
		},
	}

	got, err := Finalize(kernel)
	if err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}

	want := strings.Join([]string{
		"__kernel void flow() {",
		"\tint x = 0;",
		"\tif(x<1)",
		"\t{",
		"\t\tx=1;",
		"\t}",
		"\telse if(x==2)",
		"\t{",
		"\t\tx=3;",
		"\t}",
		"\telse",
		"\t{",
		"\t\twhile(x<10)",
		"\t\t{",
		"\t\t\tx+=1;",
		"\t\t}",
		"\t}",
		"\tbarrier(CLK_LOCAL_MEM_FENCE|CLK_GLOBAL_MEM_FENCE);",
		"}",
		"",
	}, "\n")
	if got != want {
		t.Errorf("Finalize() =\n%s\nwant\n%s", got, want)
	}
}

func TestCompile_ForLoop(t *testing.T) {
	j := ir.Ident("j")
	kernel := &ir.Kernel{
		Name: "loop",
		Body: ir.Block{{Kind: ir.StmtFor{
			Init:      ir.Statement{Kind: ir.StmtDecl{TypeName: "int", Name: "j", Init: ir.MustLit(0)}},
			Condition: ir.Less(j, ir.MustLit(4)),
			Step:      ir.ExprAssign{Op: ir.BinaryAdd, Target: j, Value: ir.MustLit(1)},
			Body:      ir.Block{{Kind: ir.StmtContinue{}}},
		}}},
	}

	got, err := Finalize(kernel)
	if err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}
	if !strings.Contains(got, "\tfor(int j = 0; j<4; j+=1)\n\t{\n\t\tcontinue;\n\t}\n") {
		t.Errorf("unexpected for loop output:\n%s", got)
	}
}

func TestCompile_ReservedKernelName(t *testing.T) {
	_, err := Finalize(&ir.Kernel{Name: "float4"})
	if err == nil {
		t.Fatal("expected error for reserved kernel name")
	}
	if !strings.Contains(err.Error(), "ReservedName") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestCompile_InvalidKernel(t *testing.T) {
	kernel := &ir.Kernel{
		Name: "bad",
		Body: ir.Block{{Kind: ir.StmtExpr{Expr: ir.ExprAssign{
			Target: ir.Index(ir.ExprResource{Handle: 42}, ir.MustLit(0)),
			Value:  ir.MustLit(1),
		}}}},
	}

	if _, err := Finalize(kernel); err == nil {
		t.Fatal("expected validation error")
	}

	// Without validation the writer still refuses the unknown resource.
	opts := DefaultOptions()
	opts.Validate = false
	_, _, err := Compile(kernel, opts)
	if err == nil || !strings.Contains(err.Error(), "UnknownResource") {
		t.Errorf("expected UnknownResource error, got %v", err)
	}
}

func TestCompile_NilKernel(t *testing.T) {
	if _, _, err := Compile(nil, DefaultOptions()); err == nil {
		t.Error("expected error for nil kernel")
	}
}

func TestCompile_CustomIndent(t *testing.T) {
	kernel := &ir.Kernel{Name: "K", Body: ir.Block{{Kind: ir.StmtReturn{}}}}
	source, info, err := Compile(kernel, Options{Indent: "    "})
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if source != "__kernel void K() {\n    return;\n}\n" {
		t.Errorf("got %q", source)
	}
	if info.Lines != 3 {
		t.Errorf("Lines = %d, want 3", info.Lines)
	}
}

func TestIsReserved(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"int", true},
		{"float4", true},
		{"uchar16", true},
		{"__global", true},
		{"__anything", true},
		{"get_global_id", true},
		{"K", false},
		{"_clk_buf0", false},
		{"float5", false},
		{"vecadd", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsReserved(tt.name); got != tt.want {
				t.Errorf("IsReserved(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}
