// Package buffer provides concrete backends for the ndlayout Memory and
// Allocator contracts: a growable in-process byte buffer with bump
// allocation, and an adapter exposing a wazero linear memory so instances
// can live inside a WASM guest.
package buffer
