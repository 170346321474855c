package transport

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"
)

func TestOpenMissingDevice(t *testing.T) {
	device := filepath.Join(t.TempDir(), "ttyUSB99")
	_, err := Open(device, 115200)
	if err == nil {
		t.Fatal("expected error opening nonexistent device")
	}
	var ce *ConnectError
	if !errors.As(err, &ce) {
		t.Fatalf("error is %T, want *ConnectError", err)
	}
	if ce.Reason != ReasonDevice {
		t.Errorf("reason = %v, want ReasonDevice", ce.Reason)
	}
	if ce.Device != device {
		t.Errorf("device = %q, want %q", ce.Device, device)
	}
}

func TestConnectErrorMessages(t *testing.T) {
	base := errors.New("boom")
	dev := &ConnectError{Device: "/dev/ttyUSB0", Baud: 115200, Reason: ReasonDevice, Err: base}
	if got := dev.Error(); got != "cannot open device /dev/ttyUSB0: boom" {
		t.Errorf("device error = %q", got)
	}
	baud := &ConnectError{Device: "/dev/ttyUSB0", Baud: 921600, Reason: ReasonBaud, Err: base}
	if got := baud.Error(); got != "device /dev/ttyUSB0 does not support baud rate 921600: boom" {
		t.Errorf("baud error = %q", got)
	}
	if !errors.Is(dev, base) {
		t.Error("ConnectError does not unwrap to the underlying error")
	}
}

func TestResetPulseOrder(t *testing.T) {
	mock := &MockPort{Signals: []string{"DTR=true", "RTS=true"}} // prior state is irrelevant
	mock.Signals = nil
	c := NewConn(mock, "/dev/ttyUSB0", 115200)

	if err := c.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	want := []string{"DTR=false", "RTS=true", "RTS=false"}
	if !reflect.DeepEqual(mock.Signals, want) {
		t.Errorf("signal sequence = %v, want %v", mock.Signals, want)
	}
}

func TestReadDrainsMock(t *testing.T) {
	mock := &MockPort{ReadData: []byte("boot\n")}
	c := NewConn(mock, "/dev/ttyUSB0", 115200)

	buf := make([]byte, 1024)
	n, err := c.Read(buf)
	if err != nil || string(buf[:n]) != "boot\n" {
		t.Fatalf("Read = %q, %v", buf[:n], err)
	}

	// Drained: subsequent read is the timeout outcome (0, nil).
	n, err = c.Read(buf)
	if n != 0 || err != nil {
		t.Errorf("idle read = %d, %v; want 0, nil", n, err)
	}
}

func TestProbe(t *testing.T) {
	healthy := NewConn(&MockPort{}, "/dev/ttyUSB0", 115200)
	if err := healthy.Probe(); err != nil {
		t.Errorf("healthy probe: %v", err)
	}

	gone := NewConn(&MockPort{StatusErr: errors.New("device gone")}, "/dev/ttyUSB0", 115200)
	if err := gone.Probe(); err == nil {
		t.Error("probe on failed port returned nil")
	}
}

func TestClose(t *testing.T) {
	mock := &MockPort{}
	c := NewConn(mock, "/dev/ttyUSB0", 115200)
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !mock.Closed {
		t.Error("underlying port not closed")
	}
}
