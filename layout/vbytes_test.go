package layout

import (
	"github.com/wippyai/ndlayout/errors"
)

// vbytesType is a variable-sized test element: a length-prefixed byte
// string. The encoded size is 8+len, deliberately not slot-aligned so
// uneven slot sizes show up in offsets tables.
type vbytesType struct{}

var vbytes ElementType = vbytesType{}

func (vbytesType) Name() string             { return "vbytes" }
func (vbytesType) FixedSize() (int64, bool) { return 0, false }
func (vbytesType) Default() any             { return []byte{} }

func (t vbytesType) Inspect(value any) (*Plan, error) {
	b, ok := value.([]byte)
	if !ok {
		return nil, errors.TypeMismatch(errors.PhasePlan, t.Name(), value)
	}
	return &Plan{Value: b, Size: SlotSize + int64(len(b))}, nil
}

func (t vbytesType) Write(mem Memory, offset uint64, value any, _ *Plan) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.TypeMismatch(errors.PhaseEncode, t.Name(), value)
	}
	if err := mem.WriteU64(offset, uint64(len(b))); err != nil {
		return err
	}
	return mem.Write(offset+SlotSize, b)
}

func (vbytesType) Read(mem Memory, offset uint64) (any, error) {
	n, err := mem.ReadU64(offset)
	if err != nil {
		return nil, err
	}
	raw, err := mem.Read(offset+SlotSize, n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(raw))
	copy(out, raw)
	return out, nil
}
