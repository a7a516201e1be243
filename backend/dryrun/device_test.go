// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package dryrun

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/clkernel/backend"
	"github.com/gogpu/clkernel/ir"
)

const vecadd = "__kernel void add(__global const int* a, __global int* b) {\n\tb[0]=a[0];\n}\n"

func TestBuffer(t *testing.T) {
	b := NewBuffer([]float32{1, 2, 3})
	assert.Equal(t, "float", b.TypeName())
	assert.Equal(t, uint64(12), b.ByteSize())
	assert.Equal(t, 3, b.Len())
	assert.Equal(t, uintptr(b.ResourceHandle()), b.DeviceHandle())
	assert.Equal(t, []float32{0, 0, 0}, b.Device())
}

func TestDevice_Build(t *testing.T) {
	ctx := context.Background()
	d := NewDevice()

	k, err := d.Build(ctx, vecadd, "add")
	require.NoError(t, err)
	assert.Equal(t, "add", k.Name())
	assert.Equal(t, 2, k.(*Kernel).Params())

	_, err = d.Build(ctx, vecadd, "sub")
	var se *backend.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, backend.StatusInvalidKernelName, se.Status)

	k, err = d.Build(ctx, "__kernel void empty() {\n}\n", "empty")
	require.NoError(t, err)
	assert.Equal(t, 0, k.(*Kernel).Params())
	assert.Equal(t, 3, d.Builds())
}

func TestDevice_RoundTrip(t *testing.T) {
	ctx := context.Background()
	d := NewDevice()
	a := NewBuffer([]int32{5, 6})
	b := NewBuffer([]int32{0, 0})

	d.Emulate("add", func(args []backend.Memory, launch ir.Launch) error {
		src := args[0].(*Buffer[int32]).Device()
		dst := args[1].(*Buffer[int32]).Device()
		for i := range dst {
			dst[i] = src[i] * 2
		}
		return nil
	})

	k, err := d.Build(ctx, vecadd, "add")
	require.NoError(t, err)
	require.NoError(t, k.SetArg(0, a.ByteSize(), a))
	require.NoError(t, k.SetArg(1, b.ByteSize(), b))
	require.NoError(t, d.EnqueueWrite(ctx, a))
	require.NoError(t, d.EnqueueKernel(ctx, k, ir.Launch{Dims: 1, Global: [3]uint64{2}}))
	require.NoError(t, d.EnqueueRead(ctx, b))
	require.NoError(t, d.Finish(ctx))

	assert.Equal(t, []int32{10, 12}, b.Host())
	assert.Equal(t, []string{OpBuild, OpSetArg, OpSetArg, OpWrite, OpKernel, OpRead, OpFinish}, d.Log().Ops())

	d.Log().Reset()
	assert.Empty(t, d.Log().Commands())
}

func TestDevice_UnboundArguments(t *testing.T) {
	ctx := context.Background()
	d := NewDevice()
	k, err := d.Build(ctx, vecadd, "add")
	require.NoError(t, err)
	require.NoError(t, k.SetArg(1, 4, nil))

	err = d.EnqueueKernel(ctx, k, ir.Launch{})
	var se *backend.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, backend.StatusInvalidKernelArgs, se.Status)
	assert.Contains(t, se.Log, "0")
}

func TestKernel_SetArgErrors(t *testing.T) {
	ctx := context.Background()
	d := NewDevice()
	k, err := d.Build(ctx, vecadd, "add")
	require.NoError(t, err)

	tests := []struct {
		name   string
		index  uint32
		size   uint64
		status backend.Status
	}{
		{"index out of range", 2, 4, backend.StatusInvalidArgIndex},
		{"zero size", 0, 0, backend.StatusInvalidArgSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := k.SetArg(tt.index, tt.size, nil)
			var se *backend.StatusError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.status, se.Status)
		})
	}
}

func TestDevice_Fail(t *testing.T) {
	ctx := context.Background()
	d := NewDevice()
	buf := NewBuffer([]int32{1})

	d.Fail(OpWrite, backend.StatusOutOfResources)
	err := d.EnqueueWrite(ctx, buf)
	var se *backend.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, OpWrite, se.Op)
	assert.Equal(t, backend.StatusOutOfResources, se.Status)
	assert.Empty(t, d.Log().Commands(), "failed calls are not logged")

	d.Fail(OpWrite, backend.StatusSuccess)
	require.NoError(t, d.EnqueueWrite(ctx, buf))
}

func TestDevice_ForeignKernel(t *testing.T) {
	ctx := context.Background()
	other := NewDevice()
	k, err := other.Build(ctx, "__kernel void k() {\n}\n", "k")
	require.NoError(t, err)

	err = NewDevice().EnqueueKernel(ctx, k, ir.Launch{})
	var se *backend.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, backend.StatusInvalidKernel, se.Status)
}
