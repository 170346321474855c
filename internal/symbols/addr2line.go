package symbols

import (
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
)

// outputPattern matches the first line of `addr2line -pfiaCe` output:
//
//	0x40082abc: setup at /home/dev/src/main.cpp:10
//
// File may be "??" and line may be "?" when addr2line has no answer.
var outputPattern = regexp.MustCompile(`^0x[0-9a-f]+:\s+(\S+)(?:\s+at\s+(\S+?):(\?|[0-9]+))?`)

// Addr2Line resolves addresses by invoking the architecture-specific
// addr2line executable with the session's binary.
type Addr2Line struct {
	tool string
	bin  string
}

// NewAddr2Line builds the subprocess strategy. toolPrefix is the chip's
// binutils prefix (target.Chip.ToolPrefix); bin is the path to the
// executable flashed on the device.
func NewAddr2Line(toolPrefix, bin string) *Addr2Line {
	return &Addr2Line{tool: toolPrefix + "addr2line", bin: bin}
}

// Resolve runs the tool for one address. A missing tool, non-zero exit, or
// unparsable output all degrade to an unknown frame.
func (r *Addr2Line) Resolve(addr uint64) Frame {
	out, err := exec.Command(r.tool, "-pfiaCe", r.bin, fmt.Sprintf("0x%08x", addr)).Output()
	if err != nil {
		return Unknown(addr)
	}
	return parseAddr2Line(addr, string(out))
}

func parseAddr2Line(addr uint64, out string) Frame {
	m := outputPattern.FindStringSubmatch(out)
	if m == nil {
		return Unknown(addr)
	}
	f := Frame{Addr: addr}
	if m[1] != unknownName {
		f.Func = m[1]
	}
	if m[2] != "" && m[2] != unknownName {
		f.File = m[2]
	}
	if m[3] != "" && m[3] != unknownLine {
		if n, err := strconv.Atoi(m[3]); err == nil {
			f.Line = n
		}
	}
	return f
}
