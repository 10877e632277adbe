package buffer

import (
	"math"

	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/ndlayout/errors"
)

// WasmMemory adapts a wazero linear memory to ndlayout.Memory, so array
// instances can be planned and encoded directly inside a running guest.
// wasm32 memories are addressed with 32-bit offsets; accesses beyond that
// range fail.
type WasmMemory struct {
	mem api.Memory
}

// WrapWasm wraps a wazero api.Memory.
func WrapWasm(mem api.Memory) *WasmMemory {
	return &WasmMemory{mem: mem}
}

// Size returns the current linear memory size in bytes.
func (w *WasmMemory) Size() uint64 {
	return uint64(w.mem.Size())
}

func (w *WasmMemory) narrow(offset, length uint64) (uint32, error) {
	if offset+length > math.MaxUint32 {
		return 0, errors.OutOfBounds(offset, length, math.MaxUint32)
	}
	return uint32(offset), nil
}

func (w *WasmMemory) Read(offset uint64, length uint64) ([]byte, error) {
	off, err := w.narrow(offset, length)
	if err != nil {
		return nil, err
	}
	data, ok := w.mem.Read(off, uint32(length))
	if !ok {
		return nil, errors.OutOfBounds(offset, length, w.Size())
	}
	return data, nil
}

func (w *WasmMemory) Write(offset uint64, data []byte) error {
	off, err := w.narrow(offset, uint64(len(data)))
	if err != nil {
		return err
	}
	if !w.mem.Write(off, data) {
		return errors.OutOfBounds(offset, uint64(len(data)), w.Size())
	}
	return nil
}

func (w *WasmMemory) ReadU8(offset uint64) (uint8, error) {
	off, err := w.narrow(offset, 1)
	if err != nil {
		return 0, err
	}
	v, ok := w.mem.ReadByte(off)
	if !ok {
		return 0, errors.OutOfBounds(offset, 1, w.Size())
	}
	return v, nil
}

func (w *WasmMemory) ReadU16(offset uint64) (uint16, error) {
	off, err := w.narrow(offset, 2)
	if err != nil {
		return 0, err
	}
	v, ok := w.mem.ReadUint16Le(off)
	if !ok {
		return 0, errors.OutOfBounds(offset, 2, w.Size())
	}
	return v, nil
}

func (w *WasmMemory) ReadU32(offset uint64) (uint32, error) {
	off, err := w.narrow(offset, 4)
	if err != nil {
		return 0, err
	}
	v, ok := w.mem.ReadUint32Le(off)
	if !ok {
		return 0, errors.OutOfBounds(offset, 4, w.Size())
	}
	return v, nil
}

func (w *WasmMemory) ReadU64(offset uint64) (uint64, error) {
	off, err := w.narrow(offset, 8)
	if err != nil {
		return 0, err
	}
	v, ok := w.mem.ReadUint64Le(off)
	if !ok {
		return 0, errors.OutOfBounds(offset, 8, w.Size())
	}
	return v, nil
}

func (w *WasmMemory) WriteU8(offset uint64, value uint8) error {
	off, err := w.narrow(offset, 1)
	if err != nil {
		return err
	}
	if !w.mem.WriteByte(off, value) {
		return errors.OutOfBounds(offset, 1, w.Size())
	}
	return nil
}

func (w *WasmMemory) WriteU16(offset uint64, value uint16) error {
	off, err := w.narrow(offset, 2)
	if err != nil {
		return err
	}
	if !w.mem.WriteUint16Le(off, value) {
		return errors.OutOfBounds(offset, 2, w.Size())
	}
	return nil
}

func (w *WasmMemory) WriteU32(offset uint64, value uint32) error {
	off, err := w.narrow(offset, 4)
	if err != nil {
		return err
	}
	if !w.mem.WriteUint32Le(off, value) {
		return errors.OutOfBounds(offset, 4, w.Size())
	}
	return nil
}

func (w *WasmMemory) WriteU64(offset uint64, value uint64) error {
	off, err := w.narrow(offset, 8)
	if err != nil {
		return err
	}
	if !w.mem.WriteUint64Le(off, value) {
		return errors.OutOfBounds(offset, 8, w.Size())
	}
	return nil
}
