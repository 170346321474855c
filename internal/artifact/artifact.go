// Package artifact maps a build selector onto the filesystem path of a
// compiled binary inside a Cargo-style target directory. The monitor core
// only consumes the resulting path; building and flashing happen elsewhere.
package artifact

import "path/filepath"

// Selector names the binary to monitor: either the project's main binary or
// a named example.
type Selector struct {
	Name    string
	Example bool
}

// Bin selects the project's main binary.
func Bin(name string) Selector {
	return Selector{Name: name}
}

// Example selects a named example binary.
func Example(name string) Selector {
	return Selector{Name: name, Example: true}
}

// Resolve returns the path of the built binary for sel under root:
//
//	<root>/target/<triple>/<debug|release>[/examples]/<name>
//
// Purely path construction — existence is checked by whoever loads the
// binary, and a missing file there is a warning, not a failure.
func Resolve(root string, sel Selector, release bool, triple string) string {
	profile := "debug"
	if release {
		profile = "release"
	}
	parts := []string{root, "target", triple, profile}
	if sel.Example {
		parts = append(parts, "examples")
	}
	parts = append(parts, sel.Name)
	return filepath.Join(parts...)
}
