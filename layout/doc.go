// Package layout compiles declarative array descriptions into concrete
// byte layouts and provides zero-copy indexed access over them.
//
// # Layout Cases
//
// A specialized type falls into one of six cases from the combination of
// shape (static or dynamic) and element size (static or dynamic), with 1-D
// arrays as a special case that never persists strides:
//
//	Case                     Header fields
//	───────────────────────────────────────────────────────────
//	static shape, static elem   (none)
//	static shape, dynamic elem  [size][offsets table]
//	dynamic shape, static elem  [size][extents][strides*]
//	dynamic shape, dynamic elem [size][extents][strides*][offsets table]
//
//	* strides only when ndim > 1
//
// # Flow
//
//  1. Compiler.Array(elem, shape, opts) → *ArrayType  (once per type)
//  2. ArrayType.Plan(args) → *Plan                    (once per instance)
//  3. ArrayType.Encode(mem, offset, plan)             (write)
//     ArrayType.Attach(mem, offset) → *Array          (read, zero-copy)
//  4. Array.Get / Array.Set / Array.Iter              (access)
//  5. EmitOffset(at, cfg) → []string                  (C fragments)
//
// ArrayType itself implements the element contract, so arrays nest:
// an ArrayType can be the element type of an outer array.
package layout
