package ir

import "reflect"

// scalarSizes maps OpenCL C scalar type names to their size in bytes.
var scalarSizes = map[string]uint64{
	"char":   1,
	"uchar":  1,
	"short":  2,
	"ushort": 2,
	"int":    4,
	"uint":   4,
	"long":   8,
	"ulong":  8,
	"half":   2,
	"float":  4,
	"double": 8,
}

// ScalarSize returns the byte size of an OpenCL C scalar type.
func ScalarSize(typeName string) (uint64, bool) {
	size, ok := scalarSizes[typeName]
	return size, ok
}

// Scalar is the set of Go types with a direct OpenCL C counterpart.
type Scalar interface {
	~int8 | ~uint8 | ~int16 | ~uint16 | ~int32 | ~uint32 | ~int64 | ~uint64 | ~float32 | ~float64
}

var kindNames = map[reflect.Kind]string{
	reflect.Int8:    "char",
	reflect.Uint8:   "uchar",
	reflect.Int16:   "short",
	reflect.Uint16:  "ushort",
	reflect.Int32:   "int",
	reflect.Uint32:  "uint",
	reflect.Int64:   "long",
	reflect.Uint64:  "ulong",
	reflect.Float32: "float",
	reflect.Float64: "double",
}

// TypeNameOf returns the OpenCL C type name for the Go scalar type T.
// Named types map through their underlying kind.
func TypeNameOf[T Scalar]() string {
	return kindNames[reflect.TypeFor[T]().Kind()]
}
