// Package errors provides structured error types for the ndlayout library.
//
// Errors are categorized by Phase (where the error occurred) and Kind
// (error category). The Error type includes rich context: field path,
// element type name, offending value, and cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhasePlan, errors.KindShapeMismatch).
//		Path("[1]", "[0]").
//		Elem("int64").
//		Detail("ragged nested value").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.OutOfRange(errors.PhaseIndex, []int{3, 0}, []int{2, 3})
//	err := errors.ShapeMismatch(errors.PhasePlan, []int{4}, []int{5})
//
// All errors implement the standard error interface and support
// errors.Is/As; two Errors match when phase and kind agree.
package errors
