// Package target identifies the ESP chip and framework a session monitors,
// and maps them to Rust target triples and toolchain binary prefixes.
package target

import (
	"fmt"
	"strings"
)

// Chip is an ESP chip family.
type Chip string

const (
	ESP32   Chip = "esp32"
	ESP32S2 Chip = "esp32s2"
	ESP32C3 Chip = "esp32c3"
	ESP8266 Chip = "esp8266"
)

// Framework is the runtime environment flashed to the chip.
type Framework string

const (
	Baremetal Framework = "baremetal"
	EspIdf    Framework = "esp-idf"
)

// ParseChip converts a user-supplied chip name into a Chip.
func ParseChip(s string) (Chip, error) {
	switch strings.ToLower(s) {
	case "esp32":
		return ESP32, nil
	case "esp32s2":
		return ESP32S2, nil
	case "esp32c3":
		return ESP32C3, nil
	case "esp8266":
		return ESP8266, nil
	default:
		return "", fmt.Errorf("%q is not a valid chip", s)
	}
}

// ParseFramework converts a user-supplied framework name into a Framework.
func ParseFramework(s string) (Framework, error) {
	switch strings.ToLower(s) {
	case "baremetal":
		return Baremetal, nil
	case "esp-idf", "espidf":
		return EspIdf, nil
	default:
		return "", fmt.Errorf("%q is not a valid framework", s)
	}
}

// ChipFromTarget infers the chip from a target triple such as
// "xtensa-esp32-espidf".
func ChipFromTarget(triple string) (Chip, error) {
	switch {
	case strings.Contains(triple, "-esp32-"):
		return ESP32, nil
	case strings.Contains(triple, "-esp32s2-"):
		return ESP32S2, nil
	case strings.Contains(triple, "-esp8266-"):
		return ESP8266, nil
	case strings.HasPrefix(triple, "riscv32imc-"):
		return ESP32C3, nil
	default:
		return "", fmt.Errorf("can't figure out chip from target %q; try the --chip option", triple)
	}
}

// FrameworkFromTarget infers the framework from a target triple.
func FrameworkFromTarget(triple string) (Framework, error) {
	switch {
	case strings.HasSuffix(triple, "-espidf"):
		return EspIdf, nil
	case strings.HasSuffix(triple, "-none-elf"):
		return Baremetal, nil
	default:
		return "", fmt.Errorf("can't figure out framework from target %q", triple)
	}
}

// Target renders the Rust target triple for this chip under the given
// framework.
func (c Chip) Target(fw Framework) string {
	var b strings.Builder
	if c == ESP32C3 {
		b.WriteString("riscv32imc-")
	} else {
		b.WriteString("xtensa-")
	}
	switch c {
	case ESP32C3:
		if fw == EspIdf {
			b.WriteString("esp-")
		} else {
			b.WriteString("unknown-")
		}
	default:
		b.WriteString(string(c) + "-")
	}
	if fw == EspIdf {
		b.WriteString("espidf")
	} else {
		b.WriteString("none-elf")
	}
	return b.String()
}

// ToolPrefix returns the binutils prefix for this chip, e.g.
// "xtensa-esp32-elf-". Appending "addr2line" yields the symbolication tool.
func (c Chip) ToolPrefix() string {
	if c == ESP32C3 {
		return "riscv32-esp-elf-"
	}
	return "xtensa-" + string(c) + "-elf-"
}
