// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package backend

import "fmt"

// Status is a native driver status code. Values follow the OpenCL numbering.
type Status int32

const (
	StatusSuccess                 Status = 0
	StatusDeviceNotFound          Status = -1
	StatusOutOfResources          Status = -5
	StatusOutOfHostMemory         Status = -6
	StatusMemObjectAllocFailure   Status = -4
	StatusBuildProgramFailure     Status = -11
	StatusInvalidValue            Status = -30
	StatusInvalidCommandQueue     Status = -36
	StatusInvalidMemObject        Status = -38
	StatusInvalidProgram          Status = -44
	StatusInvalidKernelName       Status = -46
	StatusInvalidKernel           Status = -48
	StatusInvalidArgIndex         Status = -49
	StatusInvalidArgValue         Status = -50
	StatusInvalidArgSize          Status = -51
	StatusInvalidKernelArgs       Status = -52
	StatusInvalidWorkDimension    Status = -53
	StatusInvalidWorkGroupSize    Status = -54
	StatusInvalidGlobalWorkSize   Status = -63
	StatusInvalidOperation        Status = -59
	StatusInvalidBufferSize       Status = -61
	StatusMisalignedSubBufferOffs Status = -13
)

var statusNames = map[Status]string{
	StatusSuccess:                 "CL_SUCCESS",
	StatusDeviceNotFound:          "CL_DEVICE_NOT_FOUND",
	StatusOutOfResources:          "CL_OUT_OF_RESOURCES",
	StatusOutOfHostMemory:         "CL_OUT_OF_HOST_MEMORY",
	StatusMemObjectAllocFailure:   "CL_MEM_OBJECT_ALLOCATION_FAILURE",
	StatusBuildProgramFailure:     "CL_BUILD_PROGRAM_FAILURE",
	StatusInvalidValue:            "CL_INVALID_VALUE",
	StatusInvalidCommandQueue:     "CL_INVALID_COMMAND_QUEUE",
	StatusInvalidMemObject:        "CL_INVALID_MEM_OBJECT",
	StatusInvalidProgram:          "CL_INVALID_PROGRAM",
	StatusInvalidKernelName:       "CL_INVALID_KERNEL_NAME",
	StatusInvalidKernel:           "CL_INVALID_KERNEL",
	StatusInvalidArgIndex:         "CL_INVALID_ARG_INDEX",
	StatusInvalidArgValue:         "CL_INVALID_ARG_VALUE",
	StatusInvalidArgSize:          "CL_INVALID_ARG_SIZE",
	StatusInvalidKernelArgs:       "CL_INVALID_KERNEL_ARGS",
	StatusInvalidWorkDimension:    "CL_INVALID_WORK_DIMENSION",
	StatusInvalidWorkGroupSize:    "CL_INVALID_WORK_GROUP_SIZE",
	StatusInvalidGlobalWorkSize:   "CL_INVALID_GLOBAL_WORK_SIZE",
	StatusInvalidOperation:        "CL_INVALID_OPERATION",
	StatusInvalidBufferSize:       "CL_INVALID_BUFFER_SIZE",
	StatusMisalignedSubBufferOffs: "CL_MISALIGNED_SUB_BUFFER_OFFSET",
}

// String returns the symbolic name of the status.
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("CL_STATUS(%d)", int32(s))
}

// StatusError is a failed driver call.
type StatusError struct {
	// Op names the driver call, e.g. "clSetKernelArg".
	Op string

	// Status is the code the driver returned.
	Status Status

	// Log optionally carries a build log.
	Log string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	if e.Log != "" {
		return fmt.Sprintf("%s: %s\n%s", e.Op, e.Status, e.Log)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Status)
}

// Check converts a status code into an error. It returns nil for StatusSuccess.
func Check(op string, status Status) error {
	if status == StatusSuccess {
		return nil
	}
	return &StatusError{Op: op, Status: status}
}
