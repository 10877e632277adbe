package scalar

import (
	"math"

	"github.com/wippyai/ndlayout"
	"github.com/wippyai/ndlayout/errors"
)

// Fixed-width scalar element types. Each reads back its natural Go type
// and accepts any losslessly convertible numeric value on write.
var (
	Int8    ndlayout.ElementType = int8Type{}
	Int16   ndlayout.ElementType = int16Type{}
	Int32   ndlayout.ElementType = int32Type{}
	Int64   ndlayout.ElementType = int64Type{}
	UInt8   ndlayout.ElementType = uint8Type{}
	UInt16  ndlayout.ElementType = uint16Type{}
	UInt32  ndlayout.ElementType = uint32Type{}
	UInt64  ndlayout.ElementType = uint64Type{}
	Float32 ndlayout.ElementType = float32Type{}
	Float64 ndlayout.ElementType = float64Type{}
)

type int8Type struct{}

func (int8Type) Name() string             { return "int8" }
func (int8Type) FixedSize() (int64, bool) { return 1, true }
func (int8Type) Default() any             { return int8(0) }

func (int8Type) Read(mem ndlayout.Memory, offset uint64) (any, error) {
	v, err := mem.ReadU8(offset)
	return int8(v), err
}

func (t int8Type) Write(mem ndlayout.Memory, offset uint64, value any, _ *ndlayout.Plan) error {
	v, ok := coerceToInt64Range(value, math.MinInt8, math.MaxInt8)
	if !ok {
		return errors.TypeMismatch(errors.PhaseEncode, t.Name(), value)
	}
	return mem.WriteU8(offset, uint8(int8(v)))
}

type int16Type struct{}

func (int16Type) Name() string             { return "int16" }
func (int16Type) FixedSize() (int64, bool) { return 2, true }
func (int16Type) Default() any             { return int16(0) }

func (int16Type) Read(mem ndlayout.Memory, offset uint64) (any, error) {
	v, err := mem.ReadU16(offset)
	return int16(v), err
}

func (t int16Type) Write(mem ndlayout.Memory, offset uint64, value any, _ *ndlayout.Plan) error {
	v, ok := coerceToInt64Range(value, math.MinInt16, math.MaxInt16)
	if !ok {
		return errors.TypeMismatch(errors.PhaseEncode, t.Name(), value)
	}
	return mem.WriteU16(offset, uint16(int16(v)))
}

type int32Type struct{}

func (int32Type) Name() string             { return "int32" }
func (int32Type) FixedSize() (int64, bool) { return 4, true }
func (int32Type) Default() any             { return int32(0) }

func (int32Type) Read(mem ndlayout.Memory, offset uint64) (any, error) {
	v, err := mem.ReadU32(offset)
	return int32(v), err
}

func (t int32Type) Write(mem ndlayout.Memory, offset uint64, value any, _ *ndlayout.Plan) error {
	v, ok := coerceToInt64Range(value, math.MinInt32, math.MaxInt32)
	if !ok {
		return errors.TypeMismatch(errors.PhaseEncode, t.Name(), value)
	}
	return mem.WriteU32(offset, uint32(int32(v)))
}

type int64Type struct{}

func (int64Type) Name() string             { return "int64" }
func (int64Type) FixedSize() (int64, bool) { return 8, true }
func (int64Type) Default() any             { return int64(0) }

func (int64Type) Read(mem ndlayout.Memory, offset uint64) (any, error) {
	v, err := mem.ReadU64(offset)
	return int64(v), err
}

func (t int64Type) Write(mem ndlayout.Memory, offset uint64, value any, _ *ndlayout.Plan) error {
	v, ok := coerceToInt64(value)
	if !ok {
		return errors.TypeMismatch(errors.PhaseEncode, t.Name(), value)
	}
	return mem.WriteU64(offset, uint64(v))
}

type uint8Type struct{}

func (uint8Type) Name() string             { return "uint8" }
func (uint8Type) FixedSize() (int64, bool) { return 1, true }
func (uint8Type) Default() any             { return uint8(0) }

func (uint8Type) Read(mem ndlayout.Memory, offset uint64) (any, error) {
	return mem.ReadU8(offset)
}

func (t uint8Type) Write(mem ndlayout.Memory, offset uint64, value any, _ *ndlayout.Plan) error {
	v, ok := coerceToUint64Range(value, math.MaxUint8)
	if !ok {
		return errors.TypeMismatch(errors.PhaseEncode, t.Name(), value)
	}
	return mem.WriteU8(offset, uint8(v))
}

type uint16Type struct{}

func (uint16Type) Name() string             { return "uint16" }
func (uint16Type) FixedSize() (int64, bool) { return 2, true }
func (uint16Type) Default() any             { return uint16(0) }

func (uint16Type) Read(mem ndlayout.Memory, offset uint64) (any, error) {
	return mem.ReadU16(offset)
}

func (t uint16Type) Write(mem ndlayout.Memory, offset uint64, value any, _ *ndlayout.Plan) error {
	v, ok := coerceToUint64Range(value, math.MaxUint16)
	if !ok {
		return errors.TypeMismatch(errors.PhaseEncode, t.Name(), value)
	}
	return mem.WriteU16(offset, uint16(v))
}

type uint32Type struct{}

func (uint32Type) Name() string             { return "uint32" }
func (uint32Type) FixedSize() (int64, bool) { return 4, true }
func (uint32Type) Default() any             { return uint32(0) }

func (uint32Type) Read(mem ndlayout.Memory, offset uint64) (any, error) {
	return mem.ReadU32(offset)
}

func (t uint32Type) Write(mem ndlayout.Memory, offset uint64, value any, _ *ndlayout.Plan) error {
	v, ok := coerceToUint64Range(value, math.MaxUint32)
	if !ok {
		return errors.TypeMismatch(errors.PhaseEncode, t.Name(), value)
	}
	return mem.WriteU32(offset, uint32(v))
}

type uint64Type struct{}

func (uint64Type) Name() string             { return "uint64" }
func (uint64Type) FixedSize() (int64, bool) { return 8, true }
func (uint64Type) Default() any             { return uint64(0) }

func (uint64Type) Read(mem ndlayout.Memory, offset uint64) (any, error) {
	return mem.ReadU64(offset)
}

func (t uint64Type) Write(mem ndlayout.Memory, offset uint64, value any, _ *ndlayout.Plan) error {
	v, ok := coerceToUint64(value)
	if !ok {
		return errors.TypeMismatch(errors.PhaseEncode, t.Name(), value)
	}
	return mem.WriteU64(offset, v)
}

type float32Type struct{}

func (float32Type) Name() string             { return "float32" }
func (float32Type) FixedSize() (int64, bool) { return 4, true }
func (float32Type) Default() any             { return float32(0) }

func (float32Type) Read(mem ndlayout.Memory, offset uint64) (any, error) {
	v, err := mem.ReadU32(offset)
	return math.Float32frombits(v), err
}

func (t float32Type) Write(mem ndlayout.Memory, offset uint64, value any, _ *ndlayout.Plan) error {
	v, ok := coerceToFloat64(value)
	if !ok {
		return errors.TypeMismatch(errors.PhaseEncode, t.Name(), value)
	}
	return mem.WriteU32(offset, math.Float32bits(float32(v)))
}

type float64Type struct{}

func (float64Type) Name() string             { return "float64" }
func (float64Type) FixedSize() (int64, bool) { return 8, true }
func (float64Type) Default() any             { return float64(0) }

func (float64Type) Read(mem ndlayout.Memory, offset uint64) (any, error) {
	v, err := mem.ReadU64(offset)
	return math.Float64frombits(v), err
}

func (t float64Type) Write(mem ndlayout.Memory, offset uint64, value any, _ *ndlayout.Plan) error {
	v, ok := coerceToFloat64(value)
	if !ok {
		return errors.TypeMismatch(errors.PhaseEncode, t.Name(), value)
	}
	return mem.WriteU64(offset, math.Float64bits(v))
}

// ByName resolves a scalar type from its name, for configuration surfaces.
func ByName(name string) (ndlayout.ElementType, bool) {
	switch name {
	case "int8":
		return Int8, true
	case "int16":
		return Int16, true
	case "int32":
		return Int32, true
	case "int64":
		return Int64, true
	case "uint8":
		return UInt8, true
	case "uint16":
		return UInt16, true
	case "uint32":
		return UInt32, true
	case "uint64":
		return UInt64, true
	case "float32":
		return Float32, true
	case "float64":
		return Float64, true
	}
	return nil, false
}
