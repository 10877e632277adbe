package layout

import (
	"fmt"
	"strings"
)

// EmitConfig parameterizes emitted C fragments by target type names.
type EmitConfig struct {
	IntType  string // header integer type, default int64_t
	ByteType string // byte addressing type, default char
}

func (c EmitConfig) withDefaults() EmitConfig {
	if c.IntType == "" {
		c.IntType = "int64_t"
	}
	if c.ByteType == "" {
		c.ByteType = "char"
	}
	return c
}

// EmitOffset produces C statements that advance a running `offset` variable
// from an instance's base to the element addressed by index variables
// i0..iN-1, mirroring exactly the arithmetic the accessor performs: fixed
// stride constants when the shape is static, loads of the persisted stride
// fields when it is dynamic, and a final dereference of the offsets-table
// entry when the element type is variable-sized. `obj` points at the
// buffer. Any change to the accessor's offset formula must be mirrored
// here.
func EmitOffset(at *ArrayType, cfg EmitConfig) []string {
	cfg = cfg.withDefaults()
	var out []string

	// Strides are known at specialization time for static shapes and for
	// 1-D dynamic shapes; otherwise they are loaded from their persisted
	// header fields after the size field and the dynamic extents.
	terms := make([]string, len(at.shape))
	if at.strides != nil {
		for i, s := range at.strides {
			terms[i] = fmt.Sprintf("i%d*%d", i, s)
		}
	} else {
		strideFieldOff := SlotSize + int64(len(at.dynDims))*SlotSize
		for i := range at.shape {
			name := fmt.Sprintf("%s_s%d", at.name, i)
			out = append(out, fmt.Sprintf("%s %s = *(%s*)((%s*) obj + offset + %d);",
				cfg.IntType, name, cfg.IntType, cfg.ByteType, strideFieldOff+int64(i)*SlotSize))
			terms[i] = fmt.Sprintf("i%d*%s", i, name)
		}
	}
	soffset := strings.Join(terms, " + ")

	if at.staticElem {
		if at.dataOffset > 0 {
			out = append(out, fmt.Sprintf("offset += %d + %s;", at.dataOffset, soffset))
		} else {
			out = append(out, fmt.Sprintf("offset += %s;", soffset))
		}
		return out
	}

	// Variable-sized elements: the stride arithmetic addresses an
	// offsets-table entry, and the element offset is read from it.
	out = append(out, fmt.Sprintf("offset += %d + *(%s*)((%s*) obj + offset + %d + %s);",
		at.dataOffset, cfg.IntType, cfg.ByteType, at.dataOffset, soffset))
	return out
}
