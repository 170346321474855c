package artifact

import (
	"path/filepath"
	"testing"
)

func TestResolve(t *testing.T) {
	cases := []struct {
		name    string
		sel     Selector
		release bool
		want    string
	}{
		{"debug bin", Bin("blinky"), false, "proj/target/xtensa-esp32-espidf/debug/blinky"},
		{"release bin", Bin("blinky"), true, "proj/target/xtensa-esp32-espidf/release/blinky"},
		{"debug example", Example("wifi"), false, "proj/target/xtensa-esp32-espidf/debug/examples/wifi"},
		{"release example", Example("wifi"), true, "proj/target/xtensa-esp32-espidf/release/examples/wifi"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Resolve("proj", tc.sel, tc.release, "xtensa-esp32-espidf")
			if got != filepath.FromSlash(tc.want) {
				t.Errorf("Resolve = %q, want %q", got, tc.want)
			}
		})
	}
}
