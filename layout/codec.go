package layout

import (
	"math"

	"github.com/wippyai/ndlayout/buffer"
	"github.com/wippyai/ndlayout/errors"
)

// New constructs an instance: plans the layout, obtains backing storage,
// encodes the value (or defaults) and returns a bound accessor.
//
// Storage resolution: WithMemory binds to the given region as-is;
// WithAllocator allocates from the given memory; with neither, a fresh
// growable buffer is created.
func (at *ArrayType) New(opts ...BuildOption) (*Array, error) {
	var cfg buildConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	plan, err := at.Plan(opts...)
	if err != nil {
		return nil, err
	}

	mem := cfg.mem
	offset := cfg.offset
	if !cfg.bound {
		alloc := cfg.alloc
		if mem == nil {
			b := buffer.New(int(plan.Size))
			mem = b
			alloc = b
		}
		if alloc == nil {
			return nil, errors.New(errors.PhaseAlloc, errors.KindAllocation).
				Elem(at.name).
				Detail("memory supplied without an allocator or explicit offset").
				Build()
		}
		offset, err = alloc.Alloc(uint64(plan.Size), SlotSize)
		if err != nil {
			return nil, errors.Wrap(errors.PhaseAlloc, errors.KindAllocation, err, "allocating instance region")
		}
	}

	if err := at.Encode(mem, offset, plan); err != nil {
		return nil, err
	}
	return at.bind(mem, offset, plan), nil
}

// Encode serializes a planned instance at offset: header fields in fixed
// order (total size, dynamic extents, strides), then the offsets table for
// variable-sized elements, then element payloads in traversal order. All
// header integers are 8-byte little-endian values.
func (at *ArrayType) Encode(mem Memory, offset uint64, plan *Plan) error {
	if plan == nil {
		return errors.New(errors.PhaseEncode, errors.KindNilValue).
			Elem(at.name).
			Detail("nil plan").
			Build()
	}

	coff := offset
	if !(at.staticShape && at.staticElem) {
		if err := mem.WriteU64(coff, uint64(plan.Size)); err != nil {
			return err
		}
		coff += SlotSize
	}
	if !at.staticShape {
		for i, d := range at.shape {
			if !d.IsDynamic() {
				continue
			}
			if err := mem.WriteU64(coff, uint64(plan.Shape[i])); err != nil {
				return err
			}
			coff += SlotSize
		}
		if len(at.shape) > 1 {
			for _, s := range plan.Strides {
				if err := mem.WriteU64(coff, uint64(s)); err != nil {
					return err
				}
				coff += SlotSize
			}
		}
	}
	if !at.staticElem {
		for _, o := range plan.Offsets {
			if err := mem.WriteU64(coff, uint64(o)); err != nil {
				return err
			}
			coff += SlotSize
		}
	}

	base := offset + uint64(at.dataOffset)
	ranks := Strides(plan.Shape, at.order, 1)
	it := NewIndexIter(plan.Shape, at.order)
	for idx, ok := it.Next(); ok; idx, ok = it.Next() {
		rank := FlattenOffset(idx, ranks)
		ev, err := elementValue(plan.Value, idx)
		if err != nil {
			return err
		}
		if ev == nil {
			ev = at.elem.Default()
		}
		var nested *Plan
		if plan.Nested != nil {
			nested = plan.Nested[rank]
		}
		if err := at.elem.Write(mem, base+uint64(plan.Offsets[rank]), ev, nested); err != nil {
			return err
		}
	}
	return nil
}

// Attach binds to an existing instance region, reading back only the
// header fields that exist for this type plus the offsets table when the
// element type is variable-sized. Element payloads are never touched.
func (at *ArrayType) Attach(mem Memory, offset uint64) (*Array, error) {
	arr := &Array{
		typ:    at,
		mem:    mem,
		offset: offset,
	}
	coff := offset

	if at.staticShape && at.staticElem {
		arr.size = at.fixedSize
	} else {
		u, err := mem.ReadU64(coff)
		if err != nil {
			return nil, errors.Wrap(errors.PhaseAttach, errors.KindInvalidData, err, "reading size field")
		}
		if u > math.MaxInt64 {
			return nil, errors.New(errors.PhaseAttach, errors.KindInvalidData).
				Elem(at.name).
				Detail("size field %d is not a valid size", u).
				Build()
		}
		arr.size = int64(u)
		coff += SlotSize
	}

	if at.staticShape {
		arr.shape = at.shape.extents()
		arr.strides = at.strides
	} else {
		shape := make([]int, len(at.shape))
		for i, d := range at.shape {
			if d.IsDynamic() {
				u, err := mem.ReadU64(coff)
				if err != nil {
					return nil, errors.Wrap(errors.PhaseAttach, errors.KindInvalidData, err, "reading dynamic extent")
				}
				if u > math.MaxInt64 {
					return nil, errors.New(errors.PhaseAttach, errors.KindInvalidData).
						Elem(at.name).
						Detail("extent %d of dimension %d is not a valid extent", u, i).
						Build()
				}
				shape[i] = int(u)
				coff += SlotSize
			} else {
				shape[i] = d.Extent()
			}
		}
		arr.shape = shape
		if len(at.shape) > 1 {
			strides := make([]int64, len(at.shape))
			for i := range strides {
				u, err := mem.ReadU64(coff)
				if err != nil {
					return nil, errors.Wrap(errors.PhaseAttach, errors.KindInvalidData, err, "reading stride")
				}
				strides[i] = int64(u)
				coff += SlotSize
			}
			arr.strides = strides
		} else {
			arr.strides = at.strides
		}
	}

	if !at.staticElem {
		items := product(arr.shape)
		offsets := make([]int64, items)
		for k := range offsets {
			u, err := mem.ReadU64(coff)
			if err != nil {
				return nil, errors.Wrap(errors.PhaseAttach, errors.KindInvalidData, err, "reading offsets table")
			}
			offsets[k] = int64(u)
			coff += SlotSize
		}
		arr.offsets = offsets
		arr.ranks = Strides(arr.shape, at.order, 1)
	}
	return arr, nil
}

// bind builds an accessor directly from a freshly encoded plan, avoiding a
// header re-read.
func (at *ArrayType) bind(mem Memory, offset uint64, plan *Plan) *Array {
	arr := &Array{
		typ:     at,
		mem:     mem,
		offset:  offset,
		size:    plan.Size,
		shape:   plan.Shape,
		strides: plan.Strides,
	}
	if !at.staticElem {
		arr.offsets = plan.Offsets
		arr.ranks = Strides(plan.Shape, at.order, 1)
	}
	return arr
}
