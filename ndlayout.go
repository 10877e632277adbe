package ndlayout

// Memory is a flat byte region addressed by absolute offsets.
// All multi-byte integers are little-endian.
type Memory interface {
	Read(offset uint64, length uint64) ([]byte, error)
	Write(offset uint64, data []byte) error
	ReadU8(offset uint64) (uint8, error)
	ReadU16(offset uint64) (uint16, error)
	ReadU32(offset uint64) (uint32, error)
	ReadU64(offset uint64) (uint64, error)
	WriteU8(offset uint64, value uint8) error
	WriteU16(offset uint64, value uint16) error
	WriteU32(offset uint64, value uint32) error
	WriteU64(offset uint64, value uint64) error
}

// MemorySizer provides the current size of a memory region in bytes.
type MemorySizer interface {
	Size() uint64
}

// Allocator hands out regions inside a Memory.
type Allocator interface {
	Alloc(size, align uint64) (uint64, error)
	Free(offset, size, align uint64)
}

// Plan is the resolved byte layout of one value. For array instances it
// carries the concrete shape, traversal order, strides, the per-element
// offsets table and, when elements are variable-sized, one nested Plan per
// element. Offsets are relative to the instance's data region; the table
// itself occupies the first len(Offsets)*8 bytes of that region when the
// element type is variable-sized.
type Plan struct {
	Value   any
	Shape   []int
	Order   []int
	Strides []int64
	Offsets []int64
	Nested  []*Plan
	Size    int64
}

// ElementType is the capability an array cell type must expose. A type
// either reports a fixed byte size at specialization time or is
// variable-sized, in which case it must also implement Inspector.
// Comparable implementations are cached by identity when specialized;
// non-comparable ones are re-specialized on every request.
type ElementType interface {
	// Name identifies the type in logs, generated type names and emitted code.
	Name() string
	// FixedSize reports the byte size of every value of this type, if known
	// before any value exists.
	FixedSize() (int64, bool)
	// Default returns the value written for cells when an instance is
	// constructed without one.
	Default() any
	Read(mem Memory, offset uint64) (any, error)
	Write(mem Memory, offset uint64, value any, plan *Plan) error
}

// Inspector computes the concrete layout of one value of a variable-sized
// element type. Plan.Size must be the full encoded size of the value.
type Inspector interface {
	Inspect(value any) (*Plan, error)
}

// Updater is implemented by element types that support overwriting an
// already-placed value in place (same encoded size).
type Updater interface {
	Update(mem Memory, offset uint64, value any) error
}

// Shaped is implemented by values that know their own array shape, short-
// circuiting recursive shape inference.
type Shaped interface {
	Shape() []int
}

// Indexed is implemented by values that provide cell access by index tuple.
type Indexed interface {
	At(idx ...int) any
}
