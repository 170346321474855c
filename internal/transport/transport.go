// Package transport owns the serial connection to the development board:
// opening it at the requested baud rate, bounded-timeout reads, the DTR/RTS
// reset pulse, and an advisory disconnect probe.
package transport

import (
	"errors"
	"fmt"
	"time"

	"go.bug.st/serial"
)

// ReadTimeout bounds every serial read. Hitting it is the normal idle state,
// not an error.
const ReadTimeout = 200 * time.Millisecond

// ConnectReason classifies why a connection could not be opened.
type ConnectReason int

const (
	// ReasonDevice covers a missing device, permission denial, or a port
	// already held by another process.
	ReasonDevice ConnectReason = iota
	// ReasonBaud means the hardware rejected the requested baud rate.
	ReasonBaud
)

// ConnectError is the fatal error returned when the serial device cannot be
// opened as requested.
type ConnectError struct {
	Device string
	Baud   int
	Reason ConnectReason
	Err    error
}

func (e *ConnectError) Error() string {
	if e.Reason == ReasonBaud {
		return fmt.Sprintf("device %s does not support baud rate %d: %v", e.Device, e.Baud, e.Err)
	}
	return fmt.Sprintf("cannot open device %s: %v", e.Device, e.Err)
}

func (e *ConnectError) Unwrap() error {
	return e.Err
}

// Port is the slice of go.bug.st/serial.Port the monitor uses. Tests swap in
// a recording mock.
type Port interface {
	Read(p []byte) (int, error)
	SetReadTimeout(t time.Duration) error
	SetDTR(dtr bool) error
	SetRTS(rts bool) error
	GetModemStatusBits() (*serial.ModemStatusBits, error)
	Close() error
}

// Conn is an open serial connection.
type Conn struct {
	port   Port
	device string
	baud   int
}

// Open opens device at the given baud rate in 8N1 mode with the bounded read
// timeout. The returned error distinguishes an unusable device from a
// rejected baud rate where the platform reports the difference.
func Open(device string, baud int) (*Conn, error) {
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(device, mode)
	if err != nil {
		return nil, &ConnectError{Device: device, Baud: baud, Reason: connectReason(err), Err: err}
	}
	if err := port.SetReadTimeout(ReadTimeout); err != nil {
		port.Close()
		return nil, &ConnectError{Device: device, Baud: baud, Reason: ReasonDevice, Err: err}
	}
	return &Conn{port: port, device: device, baud: baud}, nil
}

// connectReason maps the library's error codes onto the two user-facing
// connection failure kinds.
func connectReason(err error) ConnectReason {
	var pe *serial.PortError
	if errors.As(err, &pe) && pe.Code() == serial.InvalidSpeed {
		return ReasonBaud
	}
	return ReasonDevice
}

// NewConn wraps an already-open port. Used by tests.
func NewConn(port Port, device string, baud int) *Conn {
	return &Conn{port: port, device: device, baud: baud}
}

// Device returns the device path the connection was opened on.
func (c *Conn) Device() string { return c.device }

// Baud returns the configured baud rate.
func (c *Conn) Baud() int { return c.baud }

// Read fills p with whatever bytes are available within the read timeout.
// n == 0 with a nil error means no data arrived in time.
func (c *Conn) Read(p []byte) (int, error) {
	return c.port.Read(p)
}

// Reset pulses the control lines wired to the board's reset circuit:
// DTR low, RTS high, RTS low, in that order. No delay is needed between the
// transitions; the reboot output shows up on subsequent reads.
func (c *Conn) Reset() error {
	if err := c.port.SetDTR(false); err != nil {
		return fmt.Errorf("resetting device: %w", err)
	}
	if err := c.port.SetRTS(true); err != nil {
		return fmt.Errorf("resetting device: %w", err)
	}
	if err := c.port.SetRTS(false); err != nil {
		return fmt.Errorf("resetting device: %w", err)
	}
	return nil
}

// Probe asks the driver for the modem status lines. It is an advisory
// disconnect check: some backends answer happily for an unplugged adapter,
// so only a probe *error* is meaningful. Called after reads come back empty.
func (c *Conn) Probe() error {
	if _, err := c.port.GetModemStatusBits(); err != nil {
		return fmt.Errorf("status probe on %s: %w", c.device, err)
	}
	return nil
}

// Close releases the port.
func (c *Conn) Close() error {
	return c.port.Close()
}
