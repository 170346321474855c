// Package symbols maps numeric code addresses to function, file, and line
// information. Two interchangeable strategies exist: shelling out to the
// toolchain's addr2line, or parsing the binary's ELF and DWARF sections in
// process. Resolution is best-effort and never fails the caller; misses come
// back as a frame with unknown fields.
package symbols

import (
	"fmt"
	"strconv"
)

// Placeholders rendered for fields no strategy could fill in.
const (
	unknownName = "??"
	unknownLine = "?"
)

// Frame is the resolution result for one address. Func and File are empty
// when unknown; Line is zero when unknown.
type Frame struct {
	Addr uint64
	Func string
	File string
	Line int
}

// Resolver resolves a single code address. Implementations must not return
// errors: a failed lookup is an unknown Frame.
type Resolver interface {
	Resolve(addr uint64) Frame
}

// Unknown returns a frame with no symbol information for addr.
func Unknown(addr uint64) Frame {
	return Frame{Addr: addr}
}

// Known reports whether any field of the frame was resolved.
func (f Frame) Known() bool {
	return f.Func != "" || f.File != "" || f.Line != 0
}

// Annotation renders the frame in the fixed [func:file:line] form used when
// splicing into monitor output. Unknown fields show placeholders.
func (f Frame) Annotation() string {
	name, file, line := f.Func, f.File, unknownLine
	if name == "" {
		name = unknownName
	}
	if file == "" {
		file = unknownName
	}
	if f.Line > 0 {
		line = strconv.Itoa(f.Line)
	}
	return fmt.Sprintf("[%s:%s:%s]", name, file, line)
}

// Strategy selects a Resolver implementation at configuration time.
type Strategy string

const (
	// StrategyAddr2Line invokes the external toolchain addr2line binary.
	StrategyAddr2Line Strategy = "addr2line"
	// StrategyEmbedded parses the ELF and DWARF sections in process.
	StrategyEmbedded Strategy = "embedded"
)

// ParseStrategy converts a user-supplied strategy name.
func ParseStrategy(s string) (Strategy, error) {
	switch s {
	case "addr2line":
		return StrategyAddr2Line, nil
	case "embedded":
		return StrategyEmbedded, nil
	default:
		return "", fmt.Errorf("%q is not a valid resolver (want addr2line or embedded)", s)
	}
}
