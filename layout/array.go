package layout

import (
	"github.com/wippyai/ndlayout/errors"
)

// Array is a live view over one encoded instance: a (Memory, base offset)
// pair plus the specialized type and the resolved header fields. Element
// payloads are never copied out; every access computes an address into the
// shared buffer.
type Array struct {
	typ     *ArrayType
	mem     Memory
	offset  uint64
	size    int64
	shape   []int
	strides []int64
	offsets []int64 // present iff the element type is variable-sized
	ranks   []int64 // unit strides for offsets-table lookup
}

// Type returns the specialized array type.
func (a *Array) Type() *ArrayType { return a.typ }

// Offset returns the instance's base offset in its buffer.
func (a *Array) Offset() uint64 { return a.offset }

// Size returns the total instance size in bytes, including header fields.
func (a *Array) Size() int64 { return a.size }

// Shape returns the resolved extents.
func (a *Array) Shape() []int {
	out := make([]int, len(a.shape))
	copy(out, a.shape)
	return out
}

// NDim returns the number of dimensions.
func (a *Array) NDim() int { return len(a.shape) }

// Strides returns the resolved byte strides.
func (a *Array) Strides() []int64 {
	out := make([]int64, len(a.strides))
	copy(out, a.strides)
	return out
}

// Iter walks every index tuple in the stored traversal order.
func (a *Array) Iter() *IndexIter {
	return NewIndexIter(a.shape, a.typ.order)
}

// elemOffset computes the absolute byte offset of an element and, for
// variable-sized elements, its traversal rank in the offsets table.
func (a *Array) elemOffset(idx []int) (uint64, int64, error) {
	if err := CheckBounds(idx, a.shape); err != nil {
		return 0, 0, err
	}
	base := a.offset + uint64(a.typ.dataOffset)
	if a.offsets != nil {
		rank := FlattenOffset(idx, a.ranks)
		return base + uint64(a.offsets[rank]), rank, nil
	}
	return base + uint64(FlattenOffset(idx, a.strides)), 0, nil
}

// Get reads the element at idx through the element type's reader.
func (a *Array) Get(idx ...int) (any, error) {
	off, _, err := a.elemOffset(idx)
	if err != nil {
		return nil, err
	}
	return a.typ.elem.Read(a.mem, off)
}

// Set overwrites the element at idx in place. Element types implementing
// Updater handle the overwrite themselves; otherwise the value is written
// through the element writer. For variable-sized elements the new encoding
// must occupy the element's existing slot, or the write is rejected:
// resizing in place would corrupt the offsets table and every payload
// after it. Re-encode the containing instance to change an element's size.
func (a *Array) Set(value any, idx ...int) error {
	off, rank, err := a.elemOffset(idx)
	if err != nil {
		return err
	}
	if upd, ok := a.typ.elem.(Updater); ok {
		return upd.Update(a.mem, off, value)
	}
	if a.offsets != nil {
		ep, err := a.typ.elem.(Inspector).Inspect(value)
		if err != nil {
			return err
		}
		slot := a.slotSize(rank)
		if ep.Size != slot && !a.fitsLastSlot(rank, ep.Size) {
			return errors.SizeMismatch(idx, ep.Size, slot)
		}
		return a.typ.elem.Write(a.mem, off, value, ep)
	}
	return a.typ.elem.Write(a.mem, off, value, nil)
}

// slotSize derives an element's slot from the offsets table: entries are
// ascending in traversal rank, so the slot ends where the next one begins.
// The last slot absorbs the terminal alignment padding.
func (a *Array) slotSize(rank int64) int64 {
	if rank+1 < int64(len(a.offsets)) {
		return a.offsets[rank+1] - a.offsets[rank]
	}
	return a.size - a.typ.dataOffset - a.offsets[rank]
}

// fitsLastSlot reports whether an encoding of the given size still fills the
// final slot. The instance total was rounded to the allocation granularity,
// so the original encoded size of the last element can be shorter than its
// slot; any size whose aligned end lands on the total occupies the same slot
// with only the terminal padding as slack.
func (a *Array) fitsLastSlot(rank, size int64) bool {
	if rank+1 != int64(len(a.offsets)) || size > a.slotSize(rank) {
		return false
	}
	return alignSlot(a.typ.dataOffset+a.offsets[rank]+size) == a.size
}

// At implements the Indexed value protocol, letting a bound instance serve
// as the construction value for another instance. Errors surface as nil.
func (a *Array) At(idx ...int) any {
	v, err := a.Get(idx...)
	if err != nil {
		return nil
	}
	return v
}
