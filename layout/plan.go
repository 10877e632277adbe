package layout

import (
	"reflect"

	"github.com/wippyai/ndlayout/errors"
)

// BuildOption configures instance construction. WithValue and WithExtents
// are mutually exclusive; WithMemory binds to an existing buffer region
// instead of allocating.
type BuildOption func(*buildConfig)

type buildConfig struct {
	value    any
	extents  []int
	mem      Memory
	alloc    Allocator
	offset   uint64
	hasValue bool
	bound    bool
}

// WithValue supplies the instance's initial value. Its inferred shape must
// agree with the declared one.
func WithValue(v any) BuildOption {
	return func(c *buildConfig) {
		c.value = v
		c.hasValue = true
	}
}

// WithExtents resolves dynamic dimensions explicitly, in declaration order:
// the first extent binds to the first dynamic dimension, and so on.
func WithExtents(extents ...int) BuildOption {
	return func(c *buildConfig) { c.extents = extents }
}

// WithMemory binds the instance to an existing buffer region rather than
// allocating one.
func WithMemory(mem Memory, offset uint64) BuildOption {
	return func(c *buildConfig) {
		c.mem = mem
		c.offset = offset
		c.bound = true
	}
}

// WithAllocator selects where New obtains backing storage.
func WithAllocator(mem Memory, alloc Allocator) BuildOption {
	return func(c *buildConfig) {
		c.mem = mem
		c.alloc = alloc
	}
}

// Plan resolves the full per-instance layout: concrete shape, strides,
// total size, the per-element offsets table, and nested plans for every
// element when the element type is variable-sized. Offsets are relative to
// the data region at DataOffset; when an offsets table is serialized it
// occupies the first product(shape)*8 bytes of that region.
func (at *ArrayType) Plan(opts ...BuildOption) (*Plan, error) {
	var cfg buildConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.hasValue && cfg.extents != nil {
		return nil, errors.New(errors.PhasePlan, errors.KindTooManyArguments).
			Elem(at.name).
			Detail("both a value and explicit extents were supplied").
			Build()
	}

	shape, err := at.resolveShape(&cfg)
	if err != nil {
		return nil, err
	}

	strides := at.strides
	if strides == nil {
		strides = Strides(shape, at.order, at.elemSize)
	}

	plan := &Plan{
		Value:   cfg.value,
		Shape:   shape,
		Order:   at.Order(),
		Strides: strides,
		Offsets: make([]int64, product(shape)),
	}

	it := NewIndexIter(shape, at.order)
	ranks := Strides(shape, at.order, 1)
	if at.staticElem {
		var off int64
		for idx, ok := it.Next(); ok; idx, ok = it.Next() {
			plan.Offsets[FlattenOffset(idx, ranks)] = off
			off += at.elemSize
		}
		if at.staticShape {
			plan.Size = at.fixedSize
		} else {
			plan.Size = alignSlot(at.dataOffset + off)
		}
		return plan, nil
	}

	// Variable-sized elements: the offsets table occupies the start of the
	// data region, and each element's concrete layout comes from Inspect.
	inspector := at.elem.(Inspector)
	plan.Nested = make([]*Plan, len(plan.Offsets))
	off := product(shape) * SlotSize
	for idx, ok := it.Next(); ok; idx, ok = it.Next() {
		ev, err := elementValue(cfg.value, idx)
		if err != nil {
			return nil, err
		}
		if ev == nil {
			ev = at.elem.Default()
		}
		ep, err := inspector.Inspect(ev)
		if err != nil {
			return nil, err
		}
		rank := FlattenOffset(idx, ranks)
		plan.Offsets[rank] = off
		plan.Nested[rank] = ep
		off += ep.Size
	}
	plan.Size = alignSlot(at.dataOffset + off)
	return plan, nil
}

// resolveShape produces concrete extents from the declared shape plus
// construction arguments.
func (at *ArrayType) resolveShape(cfg *buildConfig) ([]int, error) {
	if at.staticShape {
		if cfg.extents != nil {
			return nil, errors.New(errors.PhasePlan, errors.KindInvalidDimension).
				Elem(at.name).
				Detail("type has no dynamic dimensions").
				Build()
		}
		shape := at.shape.extents()
		if cfg.hasValue {
			got, err := ValueShape(cfg.value, len(at.shape))
			if err != nil {
				return nil, err
			}
			if !intsEqual(got, shape) {
				return nil, errors.ShapeMismatch(errors.PhasePlan, got, shape)
			}
		}
		return shape, nil
	}

	if cfg.hasValue {
		got, err := ValueShape(cfg.value, len(at.shape))
		if err != nil {
			return nil, err
		}
		if len(got) != len(at.shape) {
			return nil, errors.ShapeMismatch(errors.PhasePlan, got, at.shape.extents())
		}
		for i, d := range at.shape {
			if !d.IsDynamic() && got[i] != d.Extent() {
				return nil, errors.ShapeMismatch(errors.PhasePlan, got, at.shape.extents())
			}
		}
		return got, nil
	}

	if cfg.extents == nil {
		return nil, errors.New(errors.PhasePlan, errors.KindInvalidDimension).
			Elem(at.name).
			Detail("%d dynamic dimensions left unresolved", len(at.dynDims)).
			Build()
	}
	if len(cfg.extents) != len(at.dynDims) {
		return nil, errors.New(errors.PhasePlan, errors.KindInvalidDimension).
			Elem(at.name).
			Detail("got %d extents for %d dynamic dimensions", len(cfg.extents), len(at.dynDims)).
			Build()
	}
	shape := make([]int, len(at.shape))
	next := 0
	for i, d := range at.shape {
		if d.IsDynamic() {
			e := cfg.extents[next]
			next++
			if e < 0 {
				return nil, errors.New(errors.PhasePlan, errors.KindInvalidDimension).
					Elem(at.name).
					Detail("dimension %d has negative extent %d", i, e).
					Build()
			}
			shape[i] = e
		} else {
			shape[i] = d.Extent()
		}
	}
	return shape, nil
}

// ValueShape infers the first ndim extents of a value: an explicit Shape
// method wins, otherwise nested sequence-likes are probed recursively.
// Recursion stops at ndim so element payloads (which may themselves be
// slices) are never mistaken for extra dimensions. A scalar has the empty
// shape.
func ValueShape(value any, ndim int) ([]int, error) {
	if ndim <= 0 {
		return nil, nil
	}
	if value == nil {
		return nil, errors.New(errors.PhasePlan, errors.KindNilValue).
			Detail("cannot infer shape from nil").
			Build()
	}
	if s, ok := value.(Shaped); ok {
		shape := s.Shape()
		if len(shape) > ndim {
			shape = shape[:ndim]
		}
		out := make([]int, len(shape))
		copy(out, shape)
		return out, nil
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, nil
	}
	shape := []int{rv.Len()}
	if rv.Len() == 0 || ndim == 1 {
		return shape, nil
	}
	first, err := ValueShape(rv.Index(0).Interface(), ndim-1)
	if err != nil {
		return nil, err
	}
	for i := 1; i < rv.Len(); i++ {
		si, err := ValueShape(rv.Index(i).Interface(), ndim-1)
		if err != nil {
			return nil, err
		}
		if !intsEqual(si, first) {
			return nil, errors.New(errors.PhasePlan, errors.KindShapeMismatch).
				Detail("element %d has shape %v, element 0 has shape %v", i, si, first).
				Build()
		}
	}
	return append(shape, first...), nil
}

// elementValue extracts the cell value at idx from a nested value. A nil
// value yields nil (the caller substitutes the element default).
func elementValue(value any, idx []int) (any, error) {
	if value == nil {
		return nil, nil
	}
	if ix, ok := value.(Indexed); ok {
		return ix.At(idx...), nil
	}
	rv := reflect.ValueOf(value)
	for _, i := range idx {
		if rv.Kind() == reflect.Interface {
			rv = rv.Elem()
		}
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return nil, errors.InvalidData(errors.PhasePlan, "value is not indexable to declared depth")
		}
		if i >= rv.Len() {
			return nil, errors.OutOfRange(errors.PhasePlan, idx, nil)
		}
		rv = rv.Index(i)
	}
	if rv.Kind() == reflect.Interface {
		rv = rv.Elem()
	}
	return rv.Interface(), nil
}

func intsEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
