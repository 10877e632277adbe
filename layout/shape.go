package layout

import (
	"strconv"
	"strings"

	"github.com/wippyai/ndlayout/errors"
)

// SlotSize is the allocation granularity. Instance sizes are rounded up to
// a multiple of it, and every header field occupies exactly one slot.
const SlotSize = 8

// Dim is one dimension of a shape: a fixed extent or a dynamic one resolved
// per instance.
type Dim struct {
	extent  int
	dynamic bool
}

// Fixed declares a dimension with a known extent.
func Fixed(extent int) Dim {
	return Dim{extent: extent}
}

// Dyn declares a dimension whose extent is resolved at construction time.
func Dyn() Dim {
	return Dim{dynamic: true}
}

// IsDynamic reports whether the extent is unresolved until construction.
func (d Dim) IsDynamic() bool { return d.dynamic }

// Extent returns the fixed extent; zero for dynamic dimensions.
func (d Dim) Extent() int { return d.extent }

func (d Dim) String() string {
	if d.dynamic {
		return "?"
	}
	return strconv.Itoa(d.extent)
}

// Shape is an ordered tuple of per-dimension descriptors.
type Shape []Dim

// Of builds a fully static shape from extents.
func Of(extents ...int) Shape {
	s := make(Shape, len(extents))
	for i, e := range extents {
		s[i] = Fixed(e)
	}
	return s
}

// Dims builds a shape from explicit dimension descriptors.
func Dims(dims ...Dim) Shape {
	return Shape(dims)
}

func (s Shape) String() string {
	parts := make([]string, len(s))
	for i, d := range s {
		parts[i] = d.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// IsStatic reports whether every dimension has a fixed extent.
func (s Shape) IsStatic() bool {
	for _, d := range s {
		if d.dynamic {
			return false
		}
	}
	return true
}

func (s Shape) validate() error {
	if len(s) == 0 {
		return errors.New(errors.PhaseSpecialize, errors.KindMissingShape).
			Detail("no shape defined").
			Build()
	}
	for i, d := range s {
		if !d.dynamic && d.extent < 0 {
			return errors.New(errors.PhaseSpecialize, errors.KindInvalidShape).
				Detail("dimension %d has negative extent %d", i, d.extent).
				Build()
		}
	}
	return nil
}

// extents returns the concrete extents of a static shape.
func (s Shape) extents() []int {
	out := make([]int, len(s))
	for i, d := range s {
		out[i] = d.extent
	}
	return out
}

type orderKind int

const (
	orderRowMajor orderKind = iota
	orderColMajor
	orderCustom
)

// Order declares the traversal order of dimensions, slowest- to
// fastest-varying. RowMajor keeps the last dimension fastest, ColMajor the
// first; Perm accepts any explicit permutation of dimension indices.
type Order struct {
	perm []int
	kind orderKind
}

var (
	RowMajor = Order{kind: orderRowMajor}
	ColMajor = Order{kind: orderColMajor}
)

// Perm declares an explicit permutation of dimension indices, slowest first.
func Perm(dims ...int) Order {
	return Order{kind: orderCustom, perm: dims}
}

func (o Order) String() string {
	switch o.kind {
	case orderRowMajor:
		return "C"
	case orderColMajor:
		return "F"
	default:
		parts := make([]string, len(o.perm))
		for i, d := range o.perm {
			parts[i] = strconv.Itoa(d)
		}
		return strings.Join(parts, ",")
	}
}

// resolve expands a named order into a concrete permutation for ndim
// dimensions and validates explicit permutations.
func (o Order) resolve(ndim int) ([]int, error) {
	switch o.kind {
	case orderRowMajor:
		perm := make([]int, ndim)
		for i := range perm {
			perm[i] = i
		}
		return perm, nil
	case orderColMajor:
		perm := make([]int, ndim)
		for i := range perm {
			perm[i] = ndim - 1 - i
		}
		return perm, nil
	default:
		if len(o.perm) != ndim {
			return nil, errors.New(errors.PhaseSpecialize, errors.KindInvalidShape).
				Detail("order has %d entries for %d dimensions", len(o.perm), ndim).
				Build()
		}
		seen := make([]bool, ndim)
		for _, d := range o.perm {
			if d < 0 || d >= ndim || seen[d] {
				return nil, errors.New(errors.PhaseSpecialize, errors.KindInvalidShape).
					Detail("order %v is not a permutation of 0..%d", o.perm, ndim-1).
					Build()
			}
			seen[d] = true
		}
		perm := make([]int, ndim)
		copy(perm, o.perm)
		return perm, nil
	}
}

// Strides returns the byte stride per dimension for the given traversal
// order: iterating the fastest dimension advances by elemSize, each slower
// dimension by the product of all faster extents times elemSize.
//
//	off = strides[0]*idx[0] + strides[1]*idx[1] + ... + strides[n-1]*idx[n-1]
func Strides(shape []int, order []int, elemSize int64) []int64 {
	n := len(shape)
	permuted := make([]int, n)
	for pos, d := range order {
		permuted[pos] = shape[d]
	}
	cstrides := rowMajorStrides(permuted, elemSize)
	strides := make([]int64, n)
	for pos, d := range order {
		strides[d] = cstrides[pos]
	}
	return strides
}

// rowMajorStrides computes strides with the last dimension fastest.
func rowMajorStrides(shape []int, elemSize int64) []int64 {
	strides := make([]int64, len(shape))
	ss := elemSize
	for i := len(shape) - 1; i >= 0; i-- {
		strides[i] = ss
		ss *= int64(shape[i])
	}
	return strides
}

// FlattenOffset computes the byte offset of an index tuple.
func FlattenOffset(idx []int, strides []int64) int64 {
	var off int64
	for i, v := range idx {
		off += int64(v) * strides[i]
	}
	return off
}

// CheckBounds fails when any index component is negative or not below the
// corresponding extent.
func CheckBounds(idx, shape []int) error {
	if len(idx) != len(shape) {
		return errors.OutOfRange(errors.PhaseIndex, idx, shape)
	}
	for i, v := range idx {
		if v < 0 || v >= shape[i] {
			return errors.OutOfRange(errors.PhaseIndex, idx, shape)
		}
	}
	return nil
}

// IndexIter walks every index tuple of a shape exactly once in the declared
// traversal order. It is finite and restartable.
type IndexIter struct {
	shape   []int
	order   []int
	counter []int
	done    bool
	started bool
}

// NewIndexIter returns an iterator over shape in the given order.
func NewIndexIter(shape, order []int) *IndexIter {
	it := &IndexIter{
		shape:   shape,
		order:   order,
		counter: make([]int, len(shape)),
	}
	it.Reset()
	return it
}

// Reset rewinds the iterator to the first index.
func (it *IndexIter) Reset() {
	for i := range it.counter {
		it.counter[i] = 0
	}
	it.started = false
	it.done = false
	for _, d := range it.shape {
		if d == 0 {
			it.done = true
		}
	}
}

// Next returns the next index tuple, or false when exhausted. The returned
// slice is owned by the caller.
func (it *IndexIter) Next() ([]int, bool) {
	if it.done {
		return nil, false
	}
	if it.started {
		// Advance the fastest-varying position first.
		carried := true
		for pos := len(it.order) - 1; pos >= 0; pos-- {
			dim := it.order[pos]
			it.counter[dim]++
			if it.counter[dim] < it.shape[dim] {
				carried = false
				break
			}
			it.counter[dim] = 0
		}
		if carried {
			it.done = true
			return nil, false
		}
	}
	it.started = true
	idx := make([]int, len(it.counter))
	copy(idx, it.counter)
	return idx, true
}

// product returns the number of cells in a shape.
func product(shape []int) int64 {
	n := int64(1)
	for _, d := range shape {
		n *= int64(d)
	}
	return n
}

// alignSlot rounds a size up to the allocation granularity.
func alignSlot(size int64) int64 {
	return (size + SlotSize - 1) &^ (SlotSize - 1)
}
