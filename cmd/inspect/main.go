package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/ndlayout/layout"
	"github.com/wippyai/ndlayout/scalar"
)

func main() {
	var (
		elemName    = flag.String("elem", "float64", "Element type (int8..int64, uint8..uint64, float32, float64)")
		shapeStr    = flag.String("shape", "", "Shape, e.g. 2x3 or Nx3 (letters mark dynamic dimensions)")
		orderStr    = flag.String("order", "C", "Traversal order: C, F, or an explicit permutation like 2,0,1")
		extentsStr  = flag.String("extents", "", "Extents for dynamic dimensions (comma-separated)")
		emit        = flag.Bool("emit", false, "Print the C offset fragment for the layout")
		verbose     = flag.Bool("v", false, "Verbose logging")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if *verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		layout.SetLogger(logger)
	}

	if *interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: interactive mode requires a terminal")
			os.Exit(1)
		}
		if err := runInteractive(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if *shapeStr == "" {
		fmt.Fprintln(os.Stderr, "Usage: inspect -shape 2x3 [-elem float64] [-order C|F|perm] [-extents n,...] [-emit]")
		fmt.Fprintln(os.Stderr, "       inspect -i  (interactive mode)")
		os.Exit(1)
	}

	report, err := buildReport(*elemName, *shapeStr, *orderStr, *extentsStr, *emit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Print(report)
}

// parseShape accepts extents separated by 'x', with letters standing in for
// dynamic dimensions: "2x3", "Nx3", "NxMx4".
func parseShape(s string) (layout.Shape, error) {
	parts := strings.Split(s, "x")
	dims := make([]layout.Dim, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			return nil, fmt.Errorf("empty dimension in shape %q", s)
		}
		if n, err := strconv.Atoi(p); err == nil {
			dims = append(dims, layout.Fixed(n))
			continue
		}
		dims = append(dims, layout.Dyn())
	}
	return layout.Dims(dims...), nil
}

func parseOrder(s string) (layout.Order, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "C":
		return layout.RowMajor, nil
	case "F":
		return layout.ColMajor, nil
	}
	parts := strings.Split(s, ",")
	perm := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return layout.Order{}, fmt.Errorf("order %q: %w", s, err)
		}
		perm[i] = n
	}
	return layout.Perm(perm...), nil
}

func parseExtents(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("extents %q: %w", s, err)
		}
		out[i] = n
	}
	return out, nil
}

// buildReport specializes the requested type and renders its layout: header
// fields, strides, sizes, and optionally the C offset fragment.
func buildReport(elemName, shapeStr, orderStr, extentsStr string, emit bool) (string, error) {
	elem, ok := scalar.ByName(elemName)
	if !ok {
		return "", fmt.Errorf("unknown element type %q", elemName)
	}
	shape, err := parseShape(shapeStr)
	if err != nil {
		return "", err
	}
	order, err := parseOrder(orderStr)
	if err != nil {
		return "", err
	}
	extents, err := parseExtents(extentsStr)
	if err != nil {
		return "", err
	}

	at, err := layout.NewCompiler().Array(elem, shape, layout.WithOrder(order))
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Type: %s\n", at.Name())
	fmt.Fprintf(&b, "Shape: %s  order %v\n", at.Shape(), at.Order())
	fmt.Fprintf(&b, "Static shape: %v  static element: %v\n", at.IsStaticShape(), at.IsStaticElem())
	fmt.Fprintf(&b, "Data offset: %d bytes\n", at.DataOffset())
	if strides := at.FixedStrides(); strides != nil {
		fmt.Fprintf(&b, "Strides: %v\n", strides)
	}
	if size, ok := at.FixedSize(); ok {
		fmt.Fprintf(&b, "Instance size: %d bytes (fixed)\n", size)
	}

	// Header map, in serialization order.
	fmt.Fprintf(&b, "\nHeader:\n")
	if at.IsStaticShape() && at.IsStaticElem() {
		fmt.Fprintf(&b, "  (none: element data starts at the base offset)\n")
	} else {
		off := int64(0)
		fmt.Fprintf(&b, "  %4d  total size\n", off)
		off += layout.SlotSize
		for i, d := range at.Shape() {
			if d.IsDynamic() {
				fmt.Fprintf(&b, "  %4d  extent of dimension %d\n", off, i)
				off += layout.SlotSize
			}
		}
		if !at.IsStaticShape() && at.NDim() > 1 {
			for i := 0; i < at.NDim(); i++ {
				fmt.Fprintf(&b, "  %4d  stride of dimension %d\n", off, i)
				off += layout.SlotSize
			}
		}
		if !at.IsStaticElem() {
			fmt.Fprintf(&b, "  %4d  offsets table (one slot per element)\n", off)
		}
	}

	// A concrete instance when the shape is resolvable.
	if at.IsStaticShape() || extents != nil {
		var opts []layout.BuildOption
		if extents != nil {
			opts = append(opts, layout.WithExtents(extents...))
		}
		plan, err := at.Plan(opts...)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "\nInstance %v:\n", plan.Shape)
		fmt.Fprintf(&b, "  strides %v\n", plan.Strides)
		fmt.Fprintf(&b, "  total size %d bytes\n", plan.Size)
	}

	if emit {
		fmt.Fprintf(&b, "\nC offset fragment:\n")
		for _, line := range layout.EmitOffset(at, layout.EmitConfig{}) {
			fmt.Fprintf(&b, "  %s\n", line)
		}
	}
	return b.String(), nil
}
