package layout

import (
	"bytes"
	stderrors "errors"
	"testing"

	"github.com/wippyai/ndlayout/buffer"
	"github.com/wippyai/ndlayout/errors"
	"github.com/wippyai/ndlayout/scalar"
)

func TestNew_StaticStaticRoundTrip(t *testing.T) {
	c := NewCompiler()
	at, err := c.Array(scalar.Int64, Of(2, 3))
	if err != nil {
		t.Fatalf("Array: %v", err)
	}

	value := [][]int64{{1, 2, 3}, {4, 5, 6}}
	b := buffer.New(0)
	arr, err := at.New(WithValue(value), WithAllocator(b, b))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if arr.Size() != 48 {
		t.Errorf("Size = %d, want 48", arr.Size())
	}
	for i := 0; i < 2; i++ {
		for j := 0; j < 3; j++ {
			got, err := arr.Get(i, j)
			if err != nil {
				t.Fatalf("Get(%d,%d): %v", i, j, err)
			}
			if got != value[i][j] {
				t.Errorf("Get(%d,%d) = %v, want %d", i, j, got, value[i][j])
			}
		}
	}

	// Fully static layouts have no header: element (0,0) sits at base.
	if v, _ := b.ReadU64(0); int64(v) != 1 {
		t.Errorf("byte 0 = %d, want element (0,0)", v)
	}

	// Attach sees the same instance without re-encoding.
	att, err := at.Attach(b, 0)
	if err != nil {
		t.Fatalf("Attach: %v", err)
	}
	if got, _ := att.Get(1, 2); got != int64(6) {
		t.Errorf("attached Get(1,2) = %v, want 6", got)
	}
}

func TestNew_ColMajorPlacement(t *testing.T) {
	c := NewCompiler()
	at, err := c.Array(scalar.Int64, Of(2, 3), WithOrder(ColMajor))
	if err != nil {
		t.Fatalf("Array: %v", err)
	}

	value := [][]int64{{1, 2, 3}, {4, 5, 6}}
	b := buffer.New(0)
	arr, err := at.New(WithValue(value), WithAllocator(b, b))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// Column-major strides are (8, 16): element (0,1) lives at byte 16.
	if v, _ := b.ReadU64(16); int64(v) != 2 {
		t.Errorf("byte 16 = %d, want element (0,1)", v)
	}
	for i := 0; i < 2; i++ {
		for j := 0; j < 3; j++ {
			if got, _ := arr.Get(i, j); got != value[i][j] {
				t.Errorf("Get(%d,%d) = %v, want %d", i, j, got, value[i][j])
			}
		}
	}
}

func TestNew_DynamicShapeHeader(t *testing.T) {
	c := NewCompiler()
	at, err := c.Array(scalar.Int32, Dims(Dyn(), Fixed(3)))
	if err != nil {
		t.Fatalf("Array: %v", err)
	}

	b := buffer.New(0)
	arr, err := at.New(WithExtents(5), WithAllocator(b, b))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// Header: [total size][dynamic extent][stride 0][stride 1].
	words := []struct {
		off  uint64
		want uint64
	}{
		{0, 96}, {8, 5}, {16, 12}, {24, 4},
	}
	for _, w := range words {
		if v, _ := b.ReadU64(w.off); v != w.want {
			t.Errorf("header word at %d = %d, want %d", w.off, v, w.want)
		}
	}

	// Cells default to zero and are writable in place.
	if got, _ := arr.Get(4, 2); got != int32(0) {
		t.Errorf("Get(4,2) = %v, want 0", got)
	}
	if err := arr.Set(int32(7), 4, 2); err != nil {
		t.Fatalf("Set: %v", err)
	}

	att, err := at.Attach(b, 0)
	if err != nil {
		t.Fatalf("Attach: %v", err)
	}
	if !intsEqual(att.Shape(), []int{5, 3}) {
		t.Errorf("attached Shape = %v, want [5 3]", att.Shape())
	}
	if got, _ := att.Get(4, 2); got != int32(7) {
		t.Errorf("attached Get(4,2) = %v, want 7", got)
	}
}

func TestNew_VariableElemLayout(t *testing.T) {
	c := NewCompiler()
	at, err := c.Array(vbytes, Of(2))
	if err != nil {
		t.Fatalf("Array: %v", err)
	}

	value := [][]byte{{0xA, 0xB}, {1, 2, 3, 4, 5, 6}}
	b := buffer.New(0)
	arr, err := at.New(WithValue(value), WithAllocator(b, b))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if arr.Size() != 48 {
		t.Errorf("Size = %d, want 48", arr.Size())
	}

	// [size][table: 16, 26][len 2][2 bytes][len 6][6 bytes]
	if v, _ := b.ReadU64(0); v != 48 {
		t.Errorf("size field = %d, want 48", v)
	}
	if v, _ := b.ReadU64(8); v != 16 {
		t.Errorf("offsets[0] = %d, want 16", v)
	}
	if v, _ := b.ReadU64(16); v != 26 {
		t.Errorf("offsets[1] = %d, want 26", v)
	}
	if v, _ := b.ReadU64(24); v != 2 {
		t.Errorf("first payload length = %d, want 2", v)
	}
	if raw, _ := b.Read(32, 2); !bytes.Equal(raw, []byte{0xA, 0xB}) {
		t.Errorf("first payload = %v", raw)
	}
	if v, _ := b.ReadU64(34); v != 6 {
		t.Errorf("second payload length = %d, want 6", v)
	}

	for i, want := range value {
		got, err := arr.Get(i)
		if err != nil {
			t.Fatalf("Get(%d): %v", i, err)
		}
		if !bytes.Equal(got.([]byte), want) {
			t.Errorf("Get(%d) = %v, want %v", i, got, want)
		}
	}

	att, err := at.Attach(b, 0)
	if err != nil {
		t.Fatalf("Attach: %v", err)
	}
	if got, _ := att.Get(1); !bytes.Equal(got.([]byte), value[1]) {
		t.Errorf("attached Get(1) = %v, want %v", got, value[1])
	}
}

func TestNew_DynamicShapeVariableElem(t *testing.T) {
	c := NewCompiler()
	at, err := c.Array(vbytes, Dims(Dyn()))
	if err != nil {
		t.Fatalf("Array: %v", err)
	}

	value := [][]byte{{1}, {2, 3}}
	arr, err := at.New(WithValue(value))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	// 8 size + 8 extent + 16 table + 9 + 10 payload, rounded up.
	if arr.Size() != 56 {
		t.Errorf("Size = %d, want 56", arr.Size())
	}
	for i, want := range value {
		got, err := arr.Get(i)
		if err != nil {
			t.Fatalf("Get(%d): %v", i, err)
		}
		if !bytes.Equal(got.([]byte), want) {
			t.Errorf("Get(%d) = %v, want %v", i, got, want)
		}
	}
}

func TestNew_Dynamic1DStaticElem(t *testing.T) {
	c := NewCompiler()
	at, err := c.Array(scalar.Int64, Dims(Dyn()))
	if err != nil {
		t.Fatalf("Array: %v", err)
	}

	b := buffer.New(0)
	arr, err := at.New(WithValue([]int64{10, 20, 30}), WithAllocator(b, b))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	// 8 size + 8 extent + 24 payload; no stride field for 1-D shapes.
	if arr.Size() != 40 {
		t.Errorf("Size = %d, want 40", arr.Size())
	}
	if v, _ := b.ReadU64(0); v != 40 {
		t.Errorf("size field = %d, want 40", v)
	}
	if v, _ := b.ReadU64(8); v != 3 {
		t.Errorf("extent field = %d, want 3", v)
	}
	if v, _ := b.ReadU64(16); int64(v) != 10 {
		t.Errorf("first element at byte 16 = %d, want 10", v)
	}

	att, err := at.Attach(b, 0)
	if err != nil {
		t.Fatalf("Attach: %v", err)
	}
	for i, want := range []int64{10, 20, 30} {
		if got, _ := att.Get(i); got != want {
			t.Errorf("attached Get(%d) = %v, want %d", i, got, want)
		}
	}
}

func TestNew_DynamicShapeVariableElemMultiDim(t *testing.T) {
	c := NewCompiler()
	at, err := c.Array(vbytes, Dims(Dyn(), Fixed(2)))
	if err != nil {
		t.Fatalf("Array: %v", err)
	}

	value := [][][]byte{
		{{1}, {2, 3}},
		{{4, 5, 6}, {}},
	}
	b := buffer.New(0)
	arr, err := at.New(WithValue(value), WithAllocator(b, b))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !intsEqual(arr.Shape(), []int{2, 2}) {
		t.Fatalf("Shape = %v, want [2 2]", arr.Shape())
	}

	att, err := at.Attach(b, 0)
	if err != nil {
		t.Fatalf("Attach: %v", err)
	}
	for i := range value {
		for j := range value[i] {
			got, err := att.Get(i, j)
			if err != nil {
				t.Fatalf("Get(%d,%d): %v", i, j, err)
			}
			if !bytes.Equal(got.([]byte), value[i][j]) {
				t.Errorf("Get(%d,%d) = %v, want %v", i, j, got, value[i][j])
			}
		}
	}
}

func TestNew_NestedStaticArrays(t *testing.T) {
	c := NewCompiler()
	inner, err := c.Array(scalar.Int64, Of(2))
	if err != nil {
		t.Fatalf("inner Array: %v", err)
	}
	outer, err := c.Array(inner, Of(3))
	if err != nil {
		t.Fatalf("outer Array: %v", err)
	}

	if size, ok := outer.FixedSize(); !ok || size != 48 {
		t.Fatalf("outer FixedSize = %d, %v, want 48, true", size, ok)
	}

	value := [][]int64{{1, 2}, {3, 4}, {5, 6}}
	arr, err := outer.New(WithValue(value))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	for i := range value {
		got, err := arr.Get(i)
		if err != nil {
			t.Fatalf("Get(%d): %v", i, err)
		}
		row, ok := got.(*Array)
		if !ok {
			t.Fatalf("Get(%d) = %T, want *Array", i, got)
		}
		for j := range value[i] {
			if v, _ := row.Get(j); v != value[i][j] {
				t.Errorf("row %d Get(%d) = %v, want %d", i, j, v, value[i][j])
			}
		}
	}
}

func TestNew_NestedDynamicArrays(t *testing.T) {
	c := NewCompiler()
	inner, err := c.Array(scalar.Int64, Dims(Dyn()))
	if err != nil {
		t.Fatalf("inner Array: %v", err)
	}
	outer, err := c.Array(inner, Of(2))
	if err != nil {
		t.Fatalf("outer Array: %v", err)
	}
	if outer.IsStaticElem() {
		t.Fatal("dynamic inner arrays must make the outer element variable-sized")
	}

	value := [][]int64{{7}, {8, 9, 10}}
	arr, err := outer.New(WithValue(value))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	// Inner instances of sizes 24 and 40 behind a 16-byte table.
	if arr.Size() != 88 {
		t.Errorf("Size = %d, want 88", arr.Size())
	}

	for i := range value {
		got, err := arr.Get(i)
		if err != nil {
			t.Fatalf("Get(%d): %v", i, err)
		}
		row := got.(*Array)
		if !intsEqual(row.Shape(), []int{len(value[i])}) {
			t.Errorf("row %d shape = %v, want [%d]", i, row.Shape(), len(value[i]))
		}
		for j := range value[i] {
			if v, _ := row.Get(j); v != value[i][j] {
				t.Errorf("row %d Get(%d) = %v, want %d", i, j, v, value[i][j])
			}
		}
	}
}

func TestNew_WithMemoryBindsInPlace(t *testing.T) {
	c := NewCompiler()
	at, err := c.Array(scalar.Int64, Of(2, 3))
	if err != nil {
		t.Fatalf("Array: %v", err)
	}

	b := buffer.New(128)
	arr, err := at.New(WithValue([][]int64{{1, 2, 3}, {4, 5, 6}}), WithMemory(b, 16))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if arr.Offset() != 16 {
		t.Errorf("Offset = %d, want 16", arr.Offset())
	}
	if v, _ := b.ReadU64(16); int64(v) != 1 {
		t.Errorf("element (0,0) not at bound offset: %d", v)
	}
	att, err := at.Attach(b, 16)
	if err != nil {
		t.Fatalf("Attach: %v", err)
	}
	if got, _ := att.Get(1, 0); got != int64(4) {
		t.Errorf("attached Get(1,0) = %v, want 4", got)
	}
}

func TestNew_AllocatorAdvances(t *testing.T) {
	c := NewCompiler()
	at, err := c.Array(scalar.Int64, Of(2))
	if err != nil {
		t.Fatalf("Array: %v", err)
	}

	b := buffer.New(0)
	a1, err := at.New(WithValue([]int64{1, 2}), WithAllocator(b, b))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	a2, err := at.New(WithValue([]int64{3, 4}), WithAllocator(b, b))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if a2.Offset() < a1.Offset()+uint64(a1.Size()) {
		t.Errorf("instances overlap: %d and %d", a1.Offset(), a2.Offset())
	}
	if got, _ := a1.Get(0); got != int64(1) {
		t.Errorf("first instance Get(0) = %v, want 1", got)
	}
	if got, _ := a2.Get(0); got != int64(3) {
		t.Errorf("second instance Get(0) = %v, want 3", got)
	}
}

func TestAttach_CorruptHeaderRejected(t *testing.T) {
	c := NewCompiler()
	at, err := c.Array(vbytes, Dims(Dyn()))
	if err != nil {
		t.Fatalf("Array: %v", err)
	}
	want := &errors.Error{Phase: errors.PhaseAttach, Kind: errors.KindInvalidData}

	// A size field with the top bit set is not a valid size.
	b := buffer.New(64)
	if err := b.WriteU64(0, 1<<63); err != nil {
		t.Fatalf("WriteU64: %v", err)
	}
	if _, err := at.Attach(b, 0); !stderrors.Is(err, want) {
		t.Errorf("Attach with corrupt size = %v, want invalid_data", err)
	}

	// Same for an extent, which would otherwise become a negative shape.
	b = buffer.New(64)
	if err := b.WriteU64(0, 56); err != nil {
		t.Fatalf("WriteU64: %v", err)
	}
	if err := b.WriteU64(8, 1<<63); err != nil {
		t.Fatalf("WriteU64: %v", err)
	}
	if _, err := at.Attach(b, 0); !stderrors.Is(err, want) {
		t.Errorf("Attach with corrupt extent = %v, want invalid_data", err)
	}
}

func TestEncode_NilPlan(t *testing.T) {
	c := NewCompiler()
	at, err := c.Array(scalar.Int64, Of(2))
	if err != nil {
		t.Fatalf("Array: %v", err)
	}
	if err := at.Encode(buffer.New(16), 0, nil); err == nil {
		t.Error("Encode with nil plan should fail")
	}
}
