package buffer

import (
	"encoding/binary"

	"github.com/wippyai/ndlayout/errors"
)

// Buffer is a growable little-endian byte region implementing both
// ndlayout.Memory and ndlayout.Allocator. Allocation is bump-pointer and
// append-only; Free is a no-op (freed regions are not reused).
type Buffer struct {
	data []byte
	end  uint64 // next allocation point
}

// New creates a buffer with the given initial capacity.
func New(capacity int) *Buffer {
	if capacity < 0 {
		capacity = 0
	}
	return &Buffer{data: make([]byte, capacity)}
}

// Size returns the current buffer size in bytes.
func (b *Buffer) Size() uint64 {
	return uint64(len(b.data))
}

// Bytes exposes the backing storage. The slice is invalidated by growth.
func (b *Buffer) Bytes() []byte {
	return b.data
}

// Alloc reserves size bytes at the next aligned offset, growing the buffer
// as needed.
func (b *Buffer) Alloc(size, align uint64) (uint64, error) {
	if align == 0 {
		align = 1
	}
	off := (b.end + align - 1) &^ (align - 1)
	b.grow(off + size)
	b.end = off + size
	return off, nil
}

// Free is a no-op; the buffer is append-only.
func (b *Buffer) Free(offset, size, align uint64) {}

func (b *Buffer) grow(size uint64) {
	if size <= uint64(len(b.data)) {
		return
	}
	grown := make([]byte, size)
	copy(grown, b.data)
	b.data = grown
}

func (b *Buffer) check(offset, length uint64) error {
	if offset+length > uint64(len(b.data)) {
		return errors.OutOfBounds(offset, length, uint64(len(b.data)))
	}
	return nil
}

func (b *Buffer) Read(offset uint64, length uint64) ([]byte, error) {
	if err := b.check(offset, length); err != nil {
		return nil, err
	}
	return b.data[offset : offset+length], nil
}

func (b *Buffer) Write(offset uint64, data []byte) error {
	b.grow(offset + uint64(len(data)))
	copy(b.data[offset:], data)
	return nil
}

func (b *Buffer) ReadU8(offset uint64) (uint8, error) {
	if err := b.check(offset, 1); err != nil {
		return 0, err
	}
	return b.data[offset], nil
}

func (b *Buffer) ReadU16(offset uint64) (uint16, error) {
	if err := b.check(offset, 2); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b.data[offset:]), nil
}

func (b *Buffer) ReadU32(offset uint64) (uint32, error) {
	if err := b.check(offset, 4); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b.data[offset:]), nil
}

func (b *Buffer) ReadU64(offset uint64) (uint64, error) {
	if err := b.check(offset, 8); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b.data[offset:]), nil
}

func (b *Buffer) WriteU8(offset uint64, value uint8) error {
	b.grow(offset + 1)
	b.data[offset] = value
	return nil
}

func (b *Buffer) WriteU16(offset uint64, value uint16) error {
	b.grow(offset + 2)
	binary.LittleEndian.PutUint16(b.data[offset:], value)
	return nil
}

func (b *Buffer) WriteU32(offset uint64, value uint32) error {
	b.grow(offset + 4)
	binary.LittleEndian.PutUint32(b.data[offset:], value)
	return nil
}

func (b *Buffer) WriteU64(offset uint64, value uint64) error {
	b.grow(offset + 8)
	binary.LittleEndian.PutUint64(b.data[offset:], value)
	return nil
}
