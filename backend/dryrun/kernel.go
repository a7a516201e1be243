// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package dryrun

import (
	"fmt"
	"strings"
	"sync"

	"github.com/gogpu/clkernel/backend"
	"github.com/gogpu/clkernel/ir"
)

type argument struct {
	size uint64
	mem  backend.Memory
}

// Kernel is a kernel built by a Device.
type Kernel struct {
	device *Device
	name   string
	params int

	mu   sync.Mutex
	args map[uint32]argument
}

// Name returns the kernel function name.
func (k *Kernel) Name() string { return k.name }

// Params returns the number of parameters in the kernel signature.
func (k *Kernel) Params() int { return k.params }

// SetArg binds argument index. A nil mem binds local scratch of size bytes.
func (k *Kernel) SetArg(index uint32, size uint64, mem backend.Memory) error {
	if err := k.device.check(OpSetArg); err != nil {
		return err
	}
	if int(index) >= k.params {
		return &backend.StatusError{Op: OpSetArg, Status: backend.StatusInvalidArgIndex}
	}
	if size == 0 {
		return &backend.StatusError{Op: OpSetArg, Status: backend.StatusInvalidArgSize}
	}

	k.mu.Lock()
	k.args[index] = argument{size: size, mem: mem}
	k.mu.Unlock()

	cmd := Command{Op: OpSetArg, Kernel: k.name, Index: index, Size: size, Local: mem == nil}
	if mem != nil {
		cmd.Handle = mem.ResourceHandle()
	}
	k.device.log.append(cmd)
	return nil
}

// bound returns the bound memory objects by position.
func (k *Kernel) bound() ([]backend.Memory, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	args := make([]backend.Memory, k.params)
	var missing []string
	for i := 0; i < k.params; i++ {
		a, ok := k.args[uint32(i)]
		if !ok {
			missing = append(missing, fmt.Sprint(i))
			continue
		}
		args[i] = a.mem
	}
	if len(missing) > 0 {
		return nil, &backend.StatusError{
			Op:     OpKernel,
			Status: backend.StatusInvalidKernelArgs,
			Log:    "unbound arguments: " + strings.Join(missing, ", "),
		}
	}
	return args, nil
}

// Command is one recorded driver call.
type Command struct {
	Op     string
	Kernel string
	Index  uint32
	Size   uint64
	Local  bool
	Handle ir.ResourceHandle
	Launch ir.Launch
}

// String formats the command for logs and plan dumps.
func (c Command) String() string {
	switch c.Op {
	case OpBuild:
		return fmt.Sprintf("%s %s", c.Op, c.Kernel)
	case OpSetArg:
		if c.Local {
			return fmt.Sprintf("%s %s[%d] local %dB", c.Op, c.Kernel, c.Index, c.Size)
		}
		return fmt.Sprintf("%s %s[%d] mem#%d %dB", c.Op, c.Kernel, c.Index, c.Handle, c.Size)
	case OpWrite, OpRead:
		return fmt.Sprintf("%s mem#%d %dB", c.Op, c.Handle, c.Size)
	case OpKernel:
		return fmt.Sprintf("%s %s dims=%d global=%v", c.Op, c.Kernel, c.Launch.Dims, c.Launch.Global[:max(c.Launch.Dims, 1)])
	default:
		return c.Op
	}
}

// Log is the ordered list of commands a Device received.
type Log struct {
	mu       sync.Mutex
	commands []Command
}

func (l *Log) append(c Command) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.commands = append(l.commands, c)
}

// Commands returns a copy of the log.
func (l *Log) Commands() []Command {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Command(nil), l.commands...)
}

// Ops returns the driver call names in order.
func (l *Log) Ops() []string {
	cmds := l.Commands()
	ops := make([]string, len(cmds))
	for i, c := range cmds {
		ops[i] = c.Op
	}
	return ops
}

// Reset clears the log.
func (l *Log) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.commands = nil
}
