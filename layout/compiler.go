package layout

import (
	"reflect"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/ndlayout"
	"github.com/wippyai/ndlayout/errors"
)

// Compiler specializes (element type, shape, order) combinations into
// immutable ArrayType layout records. Specialization runs once per
// combination; results are cached. Safe for concurrent use.
type Compiler struct {
	cache sync.Map // cacheKey -> *ArrayType
}

type cacheKey struct {
	elem  ElementType
	shape string
	order string
}

func NewCompiler() *Compiler {
	return &Compiler{}
}

// TypeOption configures a specialization request.
type TypeOption func(*typeConfig)

type typeConfig struct {
	order Order
}

// WithOrder selects the traversal order for the specialized type. The
// default is RowMajor.
func WithOrder(o Order) TypeOption {
	return func(c *typeConfig) { c.order = o }
}

// Array specializes an array type over elem with the given shape. The
// returned metadata is write-once: all per-instance variability lives in
// the Plan produced at construction time.
func (c *Compiler) Array(elem ElementType, shape Shape, opts ...TypeOption) (*ArrayType, error) {
	if elem == nil {
		return nil, errors.New(errors.PhaseSpecialize, errors.KindNilValue).
			Detail("element type cannot be nil").
			Build()
	}
	cfg := typeConfig{order: RowMajor}
	for _, opt := range opts {
		opt(&cfg)
	}

	// Non-comparable element types cannot key a map; specialize them
	// uncached instead of panicking inside sync.Map.
	key := cacheKey{elem: elem, shape: shape.String(), order: cfg.order.String()}
	cacheable := reflect.TypeOf(elem).Comparable()
	if cacheable {
		if cached, ok := c.cache.Load(key); ok {
			return cached.(*ArrayType), nil
		}
	}

	at, err := specialize(elem, shape, cfg.order)
	if err != nil {
		return nil, err
	}

	if cacheable {
		if existing, loaded := c.cache.LoadOrStore(key, at); loaded {
			return existing.(*ArrayType), nil
		}
	}
	return at, nil
}

// ArrayType is the immutable layout metadata of one (element type, shape,
// order) combination. It implements ElementType, so array types nest.
type ArrayType struct {
	elem        ElementType
	name        string
	shape       Shape
	order       []int   // permutation, slowest to fastest
	dynDims     []int   // indices of dynamic dimensions
	strides     []int64 // present iff shape is static, or 1-D
	elemSize    int64   // fixed element size, or SlotSize for variable elements
	fixedSize   int64   // present iff shape and element are both static
	dataOffset  int64
	staticShape bool
	staticElem  bool
}

func specialize(elem ElementType, shape Shape, order Order) (*ArrayType, error) {
	if err := shape.validate(); err != nil {
		return nil, err
	}
	perm, err := order.resolve(len(shape))
	if err != nil {
		return nil, err
	}

	at := &ArrayType{
		elem:  elem,
		shape: shape,
		order: perm,
	}

	// Variable-sized elements use an 8-byte offsets-table slot for all
	// layout arithmetic; payload sizes always come from Inspect.
	if size, ok := elem.FixedSize(); ok {
		at.staticElem = true
		at.elemSize = size
	} else {
		if _, ok := elem.(Inspector); !ok {
			return nil, errors.New(errors.PhaseSpecialize, errors.KindUnsupported).
				Elem(elem.Name()).
				Detail("variable-sized element type does not implement Inspector").
				Build()
		}
		at.elemSize = SlotSize
	}

	for i, d := range shape {
		if d.IsDynamic() {
			at.dynDims = append(at.dynDims, i)
		}
	}
	at.staticShape = len(at.dynDims) == 0

	if !(at.staticShape && at.staticElem) {
		at.dataOffset += SlotSize // total size field
	}
	at.dataOffset += int64(len(at.dynDims)) * SlotSize
	if !at.staticShape {
		if len(shape) > 1 {
			// Strides must be persisted: they cannot be recomputed
			// without the resolved shape.
			at.dataOffset += int64(len(shape)) * SlotSize
		} else {
			at.strides = []int64{at.elemSize}
		}
	} else {
		at.strides = Strides(shape.extents(), perm, at.elemSize)
		if at.staticElem {
			at.fixedSize = alignSlot(product(shape.extents()) * at.elemSize)
		}
	}

	at.name = typeName(elem, shape)

	Logger().Debug("specialized array type",
		zap.String("type", at.name),
		zap.String("shape", shape.String()),
		zap.Bool("static_shape", at.staticShape),
		zap.Bool("static_elem", at.staticElem),
		zap.Int64("data_offset", at.dataOffset),
	)
	return at, nil
}

// typeName derives a readable name: elem_2by3, elem_Nby3, elem_4D.
func typeName(elem ElementType, shape Shape) string {
	if len(shape) > 3 {
		return elem.Name() + "_" + strconv.Itoa(len(shape)) + "D"
	}
	const letters = "NMOPQRSTU"
	parts := make([]string, len(shape))
	nth := 0
	for i, d := range shape {
		if d.IsDynamic() {
			parts[i] = string(letters[nth%len(letters)])
			nth++
		} else {
			parts[i] = strconv.Itoa(d.Extent())
		}
	}
	return elem.Name() + "_" + strings.Join(parts, "by")
}

// Name returns the generated type name.
func (at *ArrayType) Name() string { return at.name }

// Elem returns the element type.
func (at *ArrayType) Elem() ElementType { return at.elem }

// Shape returns the declared shape specification.
func (at *ArrayType) Shape() Shape { return at.shape }

// NDim returns the number of dimensions.
func (at *ArrayType) NDim() int { return len(at.shape) }

// Order returns the resolved traversal permutation, slowest dimension first.
func (at *ArrayType) Order() []int {
	out := make([]int, len(at.order))
	copy(out, at.order)
	return out
}

// IsStaticShape reports whether every extent is fixed at specialization time.
func (at *ArrayType) IsStaticShape() bool { return at.staticShape }

// IsStaticElem reports whether the element type has a fixed size.
func (at *ArrayType) IsStaticElem() bool { return at.staticElem }

// DataOffset returns the byte offset from an instance's base at which the
// data region (element payloads, or the offsets table) begins.
func (at *ArrayType) DataOffset() int64 { return at.dataOffset }

// FixedStrides returns the specialization-time strides, present iff the
// shape is static or one-dimensional.
func (at *ArrayType) FixedStrides() []int64 {
	if at.strides == nil {
		return nil
	}
	out := make([]int64, len(at.strides))
	copy(out, at.strides)
	return out
}

// FixedSize implements ElementType: the total instance size is fixed iff
// both shape and element size are static.
func (at *ArrayType) FixedSize() (int64, bool) {
	if at.staticShape && at.staticElem {
		return at.fixedSize, true
	}
	return 0, false
}

// Default implements ElementType. A nil value makes construction fill
// every cell with the element type's own default.
func (at *ArrayType) Default() any { return nil }

// Read implements ElementType by attaching to the buffer at offset.
func (at *ArrayType) Read(mem Memory, offset uint64) (any, error) {
	return at.Attach(mem, offset)
}

// Write implements ElementType. A nil plan is computed from the value.
func (at *ArrayType) Write(mem Memory, offset uint64, value any, plan *Plan) error {
	if plan == nil {
		var err error
		plan, err = at.planFor(value)
		if err != nil {
			return err
		}
	}
	return at.Encode(mem, offset, plan)
}

// Inspect implements Inspector so arrays can be elements of outer arrays.
func (at *ArrayType) Inspect(value any) (*ndlayout.Plan, error) {
	return at.planFor(value)
}

func (at *ArrayType) planFor(value any) (*Plan, error) {
	if value == nil {
		return at.Plan()
	}
	return at.Plan(WithValue(value))
}
