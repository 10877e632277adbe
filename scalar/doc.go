// Package scalar provides the fixed-width scalar element types arrays are
// most commonly built from. All values are stored little-endian.
package scalar
