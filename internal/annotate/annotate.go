// Package annotate scans monitor output lines for code addresses and splices
// in symbol information from a bound resolver.
package annotate

import (
	"regexp"
	"strconv"

	"github.com/esptools/espmon/internal/symbols"
)

// addrPattern matches addresses in the instruction-memory range of the ESP
// architecture: 0x4 followed by exactly seven hex digits.
var addrPattern = regexp.MustCompile(`0x4[0-9a-f]{7}`)

// Annotator rewrites lines by appending a [func:file:line] tag after every
// code-address token. A nil Annotator passes lines through untouched.
type Annotator struct {
	res symbols.Resolver
}

// New binds res to an Annotator.
func New(res symbols.Resolver) *Annotator {
	return &Annotator{res: res}
}

// Process annotates every code address in line, left to right. Each address
// is resolved independently; failures show as placeholder tags, never
// errors.
func (a *Annotator) Process(line string) string {
	if a == nil || a.res == nil {
		return line
	}
	return addrPattern.ReplaceAllStringFunc(line, func(tok string) string {
		addr, err := strconv.ParseUint(tok, 0, 64)
		if err != nil {
			return tok
		}
		return tok + " " + a.res.Resolve(addr).Annotation()
	})
}
