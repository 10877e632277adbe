// Package ndlayout defines the contracts shared by the layout compiler and
// its collaborators: flat little-endian memory, allocation, and the element
// type protocol arrays are built from.
//
// # Architecture Overview
//
// The library is organized into packages with distinct responsibilities:
//
//	ndlayout/        Root package with Memory, Allocator and element contracts
//	├── layout/      Shape/stride math, type specialization, instance
//	│                planning, buffer codec, indexed accessors, C emitter
//	├── scalar/      Fixed-width scalar element types
//	├── buffer/      Concrete Memory/Allocator backends, including a wazero
//	│                linear-memory adapter
//	├── errors/      Structured error types for debugging
//	└── cmd/inspect/ Layout inspector CLI and interactive TUI
//
// # Quick Start
//
// Declare an array type once, then construct and access instances:
//
//	c := layout.NewCompiler()
//	at, err := c.Array(scalar.Int64, layout.Of(2, 3))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	arr, err := at.New(layout.WithValue([][]int64{{1, 2, 3}, {4, 5, 6}}))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	v, _ := arr.Get(1, 2) // int64(6)
//
// # Layout Model
//
// There are six layout cases from the combination of shape (static or
// dynamic) and element size (static or dynamic), plus a 1-D special case
// that needs no persisted strides. Every instance region is:
//
//	[total size?] [dynamic extents...] [strides...] [offsets table...] [data]
//
//	Field            Present when
//	─────────────────────────────────────────────────────
//	total size       shape or element size is dynamic
//	dynamic extents  one per dynamic dimension
//	strides          shape dynamic and more than one dimension
//	offsets table    element size is dynamic
//
// All header integers are 8-byte little-endian values.
//
// # Memory Model
//
// The backing buffer is owned externally. Accessors hold a non-owning
// (Memory, offset) pair; attaching to a buffer never copies or scans
// element payloads.
//
// # Thread Safety
//
// Specialized types and the compiler cache are safe for concurrent use.
// Accessors assume exclusive access to their byte range for the duration
// of a single call and provide no synchronization of their own.
package ndlayout
