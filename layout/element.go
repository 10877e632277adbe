package layout

import (
	"github.com/wippyai/ndlayout"
)

// Contracts consumed by the layout engine, defined in the root package so
// element-type implementations need not import this one.
type (
	Memory      = ndlayout.Memory
	Allocator   = ndlayout.Allocator
	ElementType = ndlayout.ElementType
	Inspector   = ndlayout.Inspector
	Updater     = ndlayout.Updater
	Shaped      = ndlayout.Shaped
	Indexed     = ndlayout.Indexed
	Plan        = ndlayout.Plan
)
