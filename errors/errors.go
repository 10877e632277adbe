package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseSpecialize Phase = "specialize" // type specialization
	PhasePlan       Phase = "plan"       // instance layout planning
	PhaseEncode     Phase = "encode"     // writing an instance into a buffer
	PhaseAttach     Phase = "attach"     // binding to an existing buffer
	PhaseIndex      Phase = "index"      // element get/set
	PhaseEmit       Phase = "emit"       // C fragment emission
	PhaseMemory     Phase = "memory"     // raw buffer access
	PhaseAlloc      Phase = "alloc"      // buffer allocation
)

// Kind categorizes the error
type Kind string

const (
	KindMissingShape     Kind = "missing_shape"
	KindInvalidShape     Kind = "invalid_shape"
	KindInvalidDimension Kind = "invalid_dimension"
	KindTooManyArguments Kind = "too_many_arguments"
	KindShapeMismatch    Kind = "shape_mismatch"
	KindOutOfRange       Kind = "out_of_range"
	KindSizeMismatch     Kind = "size_mismatch"
	KindTypeMismatch     Kind = "type_mismatch"
	KindUnsupported      Kind = "unsupported"
	KindAllocation       Kind = "allocation"
	KindInvalidData      Kind = "invalid_data"
	KindNilValue         Kind = "nil_value"
)

// Error is the structured error type used throughout the library
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Elem   string
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Elem != "" {
		b.WriteString(": element type ")
		b.WriteString(e.Elem)
	}

	if e.Detail != "" {
		if e.Elem != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Elem sets the element type name
func (b *Builder) Elem(name string) *Builder {
	b.err.Elem = name
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// OutOfRange creates an error for an index tuple outside the resolved shape
func OutOfRange(phase Phase, index, shape []int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfRange,
		Detail: fmt.Sprintf("index %v outside shape %v", index, shape),
		Value:  index,
	}
}

// ShapeMismatch creates an error for a value whose inferred shape conflicts
// with the declared one
func ShapeMismatch(phase Phase, got, want []int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindShapeMismatch,
		Detail: fmt.Sprintf("value shape %v incompatible with declared shape %v", got, want),
	}
}

// TypeMismatch creates an error for a value of the wrong Go type
func TypeMismatch(phase Phase, elem string, value any) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTypeMismatch,
		Elem:   elem,
		Detail: fmt.Sprintf("cannot encode value of type %T", value),
		Value:  value,
	}
}

// SizeMismatch creates an error for an in-place overwrite whose encoded
// size differs from the existing slot
func SizeMismatch(index []int, got, want int64) *Error {
	return &Error{
		Phase:  PhaseIndex,
		Kind:   KindSizeMismatch,
		Detail: fmt.Sprintf("encoded size %d does not match slot size %d at index %v", got, want, index),
		Value:  index,
	}
}

// OutOfBounds creates an error for a raw memory access past the end of a buffer
func OutOfBounds(offset, length, size uint64) *Error {
	return &Error{
		Phase:  PhaseMemory,
		Kind:   KindOutOfRange,
		Detail: fmt.Sprintf("access of %d bytes at offset %d exceeds buffer size %d", length, offset, size),
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
