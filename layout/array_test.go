package layout

import (
	"bytes"
	stderrors "errors"
	"testing"

	"github.com/wippyai/ndlayout/errors"
	"github.com/wippyai/ndlayout/scalar"
)

func TestArray_SetGet(t *testing.T) {
	c := NewCompiler()
	at, err := c.Array(scalar.Float64, Of(2, 2))
	if err != nil {
		t.Fatalf("Array: %v", err)
	}
	arr, err := at.New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := arr.Set(3.5, 0, 1); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got, _ := arr.Get(0, 1); got != 3.5 {
		t.Errorf("Get(0,1) = %v, want 3.5", got)
	}
	// Untouched cells keep the element default.
	if got, _ := arr.Get(1, 1); got != 0.0 {
		t.Errorf("Get(1,1) = %v, want 0", got)
	}
}

func TestArray_BoundsChecked(t *testing.T) {
	c := NewCompiler()
	at, err := c.Array(scalar.Int64, Of(2, 3))
	if err != nil {
		t.Fatalf("Array: %v", err)
	}
	arr, err := at.New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	want := &errors.Error{Phase: errors.PhaseIndex, Kind: errors.KindOutOfRange}
	cases := [][]int{{2, 0}, {0, 3}, {-1, 0}, {0}, {0, 0, 0}}
	for _, idx := range cases {
		if _, err := arr.Get(idx...); !stderrors.Is(err, want) {
			t.Errorf("Get(%v) error = %v, want out_of_range", idx, err)
		}
		if err := arr.Set(int64(1), idx...); !stderrors.Is(err, want) {
			t.Errorf("Set(%v) error = %v, want out_of_range", idx, err)
		}
	}
}

func TestArray_SetVariableElemSameSize(t *testing.T) {
	c := NewCompiler()
	at, err := c.Array(vbytes, Of(2))
	if err != nil {
		t.Fatalf("Array: %v", err)
	}
	arr, err := at.New(WithValue([][]byte{{1, 2}, {3, 4, 5}}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := arr.Set([]byte{9, 8}, 0); err != nil {
		t.Fatalf("Set same size: %v", err)
	}
	if got, _ := arr.Get(0); !bytes.Equal(got.([]byte), []byte{9, 8}) {
		t.Errorf("Get(0) = %v, want [9 8]", got)
	}
	// Neighbor untouched.
	if got, _ := arr.Get(1); !bytes.Equal(got.([]byte), []byte{3, 4, 5}) {
		t.Errorf("Get(1) = %v, want [3 4 5]", got)
	}
}

func TestArray_SetLastVariableElemWithPadding(t *testing.T) {
	c := NewCompiler()
	at, err := c.Array(vbytes, Of(2))
	if err != nil {
		t.Fatalf("Array: %v", err)
	}
	// Encoded sizes 10 and 11: the 45-byte total rounds up to 48, so the
	// last slot carries 3 bytes of terminal padding.
	arr, err := at.New(WithValue([][]byte{{1, 2}, {3, 4, 5}}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if arr.Size() != 48 {
		t.Fatalf("Size = %d, want 48", arr.Size())
	}

	// Overwriting the last element at its exact encoded size must succeed
	// even though the slot is wider than the encoding.
	if err := arr.Set([]byte{9, 9, 9}, 1); err != nil {
		t.Fatalf("same-size Set of last element: %v", err)
	}
	if got, _ := arr.Get(1); !bytes.Equal(got.([]byte), []byte{9, 9, 9}) {
		t.Errorf("Get(1) = %v, want [9 9 9]", got)
	}
	if got, _ := arr.Get(0); !bytes.Equal(got.([]byte), []byte{1, 2}) {
		t.Errorf("Get(0) = %v, want [1 2]", got)
	}

	// Filling the slot including the padding is in place too.
	if err := arr.Set([]byte{7, 7, 7, 7, 7, 7}, 1); err != nil {
		t.Fatalf("slot-filling Set of last element: %v", err)
	}

	// Spilling past the slot is still rejected.
	want := &errors.Error{Phase: errors.PhaseIndex, Kind: errors.KindSizeMismatch}
	if err := arr.Set([]byte{8, 8, 8, 8, 8, 8, 8}, 1); !stderrors.Is(err, want) {
		t.Errorf("oversized Set error = %v, want size_mismatch", err)
	}
}

func TestArray_SetVariableElemSizeMismatch(t *testing.T) {
	c := NewCompiler()
	at, err := c.Array(vbytes, Of(2))
	if err != nil {
		t.Fatalf("Array: %v", err)
	}
	arr, err := at.New(WithValue([][]byte{{1, 2}, {3, 4, 5}}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// Interior slots are exact: the next element starts right behind them.
	want := &errors.Error{Phase: errors.PhaseIndex, Kind: errors.KindSizeMismatch}
	if err := arr.Set([]byte{1, 2, 3}, 0); !stderrors.Is(err, want) {
		t.Errorf("growing Set error = %v, want size_mismatch", err)
	}
	if err := arr.Set([]byte{1}, 0); !stderrors.Is(err, want) {
		t.Errorf("shrinking Set error = %v, want size_mismatch", err)
	}
	// The rejected writes must leave the instance intact.
	if got, _ := arr.Get(0); !bytes.Equal(got.([]byte), []byte{1, 2}) {
		t.Errorf("Get(0) = %v, want [1 2]", got)
	}
	if got, _ := arr.Get(1); !bytes.Equal(got.([]byte), []byte{3, 4, 5}) {
		t.Errorf("Get(1) = %v, want [3 4 5]", got)
	}
}

func TestArray_Iter(t *testing.T) {
	c := NewCompiler()
	at, err := c.Array(scalar.Int64, Of(2, 3), WithOrder(ColMajor))
	if err != nil {
		t.Fatalf("Array: %v", err)
	}
	arr, err := at.New(WithValue([][]int64{{1, 2, 3}, {4, 5, 6}}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var sum int64
	count := 0
	it := arr.Iter()
	for idx, ok := it.Next(); ok; idx, ok = it.Next() {
		v, err := arr.Get(idx...)
		if err != nil {
			t.Fatalf("Get(%v): %v", idx, err)
		}
		sum += v.(int64)
		count++
	}
	if count != 6 || sum != 21 {
		t.Errorf("iterated %d cells with sum %d, want 6 and 21", count, sum)
	}
}

func TestArray_AtProtocol(t *testing.T) {
	c := NewCompiler()
	at, err := c.Array(scalar.Int64, Of(2))
	if err != nil {
		t.Fatalf("Array: %v", err)
	}
	arr, err := at.New(WithValue([]int64{10, 20}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if got := arr.At(1); got != int64(20) {
		t.Errorf("At(1) = %v, want 20", got)
	}
	if got := arr.At(5); got != nil {
		t.Errorf("At(5) = %v, want nil", got)
	}

	// A bound instance can seed a fresh one through the value protocols.
	copied, err := at.New(WithValue(arr))
	if err != nil {
		t.Fatalf("New from instance: %v", err)
	}
	if got, _ := copied.Get(0); got != int64(10) {
		t.Errorf("copied Get(0) = %v, want 10", got)
	}
}

func TestArray_TypeMismatchOnSet(t *testing.T) {
	c := NewCompiler()
	at, err := c.Array(scalar.Int32, Of(2))
	if err != nil {
		t.Fatalf("Array: %v", err)
	}
	arr, err := at.New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	want := &errors.Error{Phase: errors.PhaseEncode, Kind: errors.KindTypeMismatch}
	if err := arr.Set("not a number", 0); !stderrors.Is(err, want) {
		t.Errorf("Set error = %v, want type_mismatch", err)
	}
	if err := arr.Set(int64(1) << 40, 0); !stderrors.Is(err, want) {
		t.Errorf("overflowing Set error = %v, want type_mismatch", err)
	}
}
