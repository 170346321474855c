// Package linebuf reassembles a raw serial byte stream into complete text
// lines. Chunks arrive at arbitrary boundaries; a trailing fragment without a
// line separator is held until the separator shows up or the fragment stalls
// past a timeout.
package linebuf

import (
	"strings"
	"time"
)

// FlushTimeout is how long a non-empty partial line may sit without new
// bytes before it is emitted as-is.
const FlushTimeout = 5 * time.Second

// Assembler accumulates serial bytes and yields complete lines.
// The held partial never contains a line separator.
type Assembler struct {
	partial    string
	lastAppend time.Time

	now func() time.Time // swapped out in tests
}

// New returns an empty Assembler using the wall clock.
func New() *Assembler {
	return &Assembler{now: time.Now}
}

// Ingest decodes chunk and returns the complete lines it finishes, oldest
// first. Any trailing fragment is retained for the next call. Invalid UTF-8
// is replaced rather than rejected, and empty lines are dropped.
func (a *Assembler) Ingest(chunk []byte) []string {
	if len(chunk) == 0 {
		return nil
	}

	text := a.partial + strings.ToValidUTF8(string(chunk), "�")
	a.partial = ""

	segs := strings.Split(text, "\n")
	tail := segs[len(segs)-1]
	segs = segs[:len(segs)-1]

	var lines []string
	for _, s := range segs {
		s = strings.TrimSuffix(s, "\r")
		if s != "" {
			lines = append(lines, s)
		}
	}

	if tail != "" {
		a.partial = tail
		a.lastAppend = a.now()
	}
	return lines
}

// FlushStalled emits the held partial line if it has not grown for longer
// than FlushTimeout. Callers should invoke this every loop iteration so a
// stream that stops mid-line is never stuck.
func (a *Assembler) FlushStalled() (string, bool) {
	if a.partial == "" || a.now().Sub(a.lastAppend) <= FlushTimeout {
		return "", false
	}
	line := strings.TrimSuffix(a.partial, "\r")
	a.partial = ""
	if line == "" {
		return "", false
	}
	return line, true
}

// Pending returns the currently held partial line.
func (a *Assembler) Pending() string {
	return a.partial
}
