package cmd

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/esptools/espmon/internal/config"
	"github.com/esptools/espmon/internal/target"
	"github.com/esptools/espmon/internal/transport"
)

// executeCommand runs a cobra command with the given args and captures
// combined output.
func executeCommand(root *cobra.Command, args ...string) (output string, err error) {
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	_, err = root.ExecuteC()
	return buf.String(), err
}

// resetState clears flag variables and merged config between runs.
func resetState(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir()) // no real global config
	flagChip, flagFramework, flagTarget = "", "", ""
	flagSpeed = 0
	flagBin, flagExample = "", ""
	flagRelease, flagNoReset, flagVerbose = false, false, false
	flagResolver = ""
	cfg = config.Config{}
}

// Opening a device that does not exist must fail with a connection error
// before any terminal state is touched, and the status line must already
// name the device and speed.
func TestMonitorNonexistentDevice(t *testing.T) {
	resetState(t)
	device := filepath.Join(t.TempDir(), "ttyUSB99")

	out, err := executeCommand(rootCmd, device, "--chip", "esp32")
	if err == nil {
		t.Fatal("expected error for nonexistent device")
	}
	var ce *transport.ConnectError
	if !errors.As(err, &ce) {
		t.Fatalf("error is %T (%v), want *transport.ConnectError", err, err)
	}
	if !strings.Contains(out, "Opening "+device+" with speed 115200") {
		t.Errorf("missing status line; output = %q", out)
	}
}

func TestMonitorInvalidChip(t *testing.T) {
	resetState(t)
	_, err := executeCommand(rootCmd, "/dev/null", "--chip", "esp9000")
	if err == nil || !strings.Contains(err.Error(), "not a valid chip") {
		t.Fatalf("err = %v", err)
	}
}

func TestMonitorNoDevice(t *testing.T) {
	resetState(t)
	_, err := executeCommand(rootCmd)
	if err == nil || !strings.Contains(err.Error(), "no serial device") {
		t.Fatalf("err = %v", err)
	}
}

func TestMissingBinaryWarnsAndContinuesToOpen(t *testing.T) {
	resetState(t)
	device := filepath.Join(t.TempDir(), "ttyUSB99")
	bin := filepath.Join(t.TempDir(), "firmware.elf")

	out, err := executeCommand(rootCmd, device, "--chip", "esp32", "--bin", bin)
	// The missing binary is only a warning; the connect error is what stops
	// the run.
	var ce *transport.ConnectError
	if !errors.As(err, &ce) {
		t.Fatalf("error is %T (%v), want *transport.ConnectError", err, err)
	}
	if !strings.Contains(out, "WARNING") || !strings.Contains(out, "does not exist") {
		t.Errorf("expected flash image warning, output = %q", out)
	}
}

func TestSessionTargetFromTriple(t *testing.T) {
	resetState(t)
	cfg = config.Defaults()
	flagTarget = "xtensa-esp32s2-espidf"

	chip, fw, err := sessionTarget()
	if err != nil {
		t.Fatal(err)
	}
	if chip != target.ESP32S2 || fw != target.EspIdf {
		t.Errorf("got %q/%q", chip, fw)
	}
}

func TestSessionTargetFlagBeatsTriple(t *testing.T) {
	resetState(t)
	cfg = config.Defaults()
	flagTarget = "xtensa-esp32s2-espidf"
	flagChip = "esp8266"

	chip, fw, err := sessionTarget()
	if err != nil {
		t.Fatal(err)
	}
	if chip != target.ESP8266 || fw != target.EspIdf {
		t.Errorf("got %q/%q", chip, fw)
	}
}

func TestSessionTargetDefaults(t *testing.T) {
	resetState(t)
	cfg = config.Defaults()

	chip, fw, err := sessionTarget()
	if err != nil {
		t.Fatal(err)
	}
	if chip != target.ESP32 || fw != target.Baremetal {
		t.Errorf("got %q/%q", chip, fw)
	}
}

func TestBinaryPathFromExample(t *testing.T) {
	resetState(t)
	flagExample = "blinky"

	got := binaryPath(target.ESP32, target.EspIdf)
	want := filepath.Join("target", "xtensa-esp32-espidf", "debug", "examples", "blinky")
	if !strings.HasSuffix(got, want) {
		t.Errorf("binaryPath = %q, want suffix %q", got, want)
	}
}

func TestBinaryPathExplicitBinWins(t *testing.T) {
	resetState(t)
	flagBin = "/tmp/firmware.elf"
	flagExample = "blinky"

	if got := binaryPath(target.ESP32, target.Baremetal); got != "/tmp/firmware.elf" {
		t.Errorf("binaryPath = %q", got)
	}
}
