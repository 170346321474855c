package symbols

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestParseAddr2Line(t *testing.T) {
	cases := []struct {
		name string
		out  string
		want Frame
	}{
		{
			"fully resolved",
			"0x40082abc: setup at /home/dev/project/src/main.cpp:10\n",
			Frame{Addr: 0x40082abc, Func: "setup", File: "/home/dev/project/src/main.cpp", Line: 10},
		},
		{
			"unknown location",
			"0x40082abc: app_main at ??:?\n",
			Frame{Addr: 0x40082abc, Func: "app_main"},
		},
		{
			"nothing resolved",
			"0x40082abc: ?? at ??:?\n",
			Frame{Addr: 0x40082abc},
		},
		{
			"garbage output",
			"addr2line: cannot open binary\n",
			Frame{Addr: 0x40082abc},
		},
		{
			"empty output",
			"",
			Frame{Addr: 0x40082abc},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := parseAddr2Line(0x40082abc, tc.out); got != tc.want {
				t.Errorf("parseAddr2Line = %+v, want %+v", got, tc.want)
			}
		})
	}
}

// TestResolveViaFakeTool runs the subprocess strategy against a shell script
// standing in for addr2line, verifying the full command round trip.
func TestResolveViaFakeTool(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("fake tool is a shell script")
	}
	dir := t.TempDir()
	tool := filepath.Join(dir, "xtensa-esp32-elf-addr2line")
	script := "#!/bin/sh\necho \"$3: setup at main.cpp:10\"\n"
	if err := os.WriteFile(tool, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}

	r := NewAddr2Line(filepath.Join(dir, "xtensa-esp32-elf-"), "firmware.elf")
	got := r.Resolve(0x40082abc)
	want := Frame{Addr: 0x40082abc, Func: "setup", File: "main.cpp", Line: 10}
	if got != want {
		t.Errorf("Resolve = %+v, want %+v", got, want)
	}
}

func TestResolveToolMissing(t *testing.T) {
	r := NewAddr2Line(filepath.Join(t.TempDir(), "no-such-prefix-"), "firmware.elf")
	if got := r.Resolve(0x40082abc); got != Unknown(0x40082abc) {
		t.Errorf("missing tool should yield unknown frame, got %+v", got)
	}
}
