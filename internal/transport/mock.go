package transport

import (
	"time"

	"go.bug.st/serial"
)

// MockPort implements Port for tests. Reads drain ReadData; control-line
// calls are recorded in Signals in invocation order.
type MockPort struct {
	ReadData    []byte
	ReadErr     error
	Closed      bool
	ReadTimeout time.Duration
	Signals     []string // e.g. "DTR=false", "RTS=true"
	StatusErr   error

	// ReadFunc overrides Read for tests needing custom behavior.
	ReadFunc func(p []byte) (int, error)
}

func (m *MockPort) Read(p []byte) (int, error) {
	if m.ReadFunc != nil {
		return m.ReadFunc(p)
	}
	if m.ReadErr != nil {
		return 0, m.ReadErr
	}
	n := copy(p, m.ReadData)
	m.ReadData = m.ReadData[n:]
	// Timeout semantics: no data yet is (0, nil).
	return n, nil
}

func (m *MockPort) SetReadTimeout(t time.Duration) error {
	m.ReadTimeout = t
	return nil
}

func (m *MockPort) SetDTR(dtr bool) error {
	m.Signals = append(m.Signals, signalName("DTR", dtr))
	return nil
}

func (m *MockPort) SetRTS(rts bool) error {
	m.Signals = append(m.Signals, signalName("RTS", rts))
	return nil
}

func (m *MockPort) GetModemStatusBits() (*serial.ModemStatusBits, error) {
	if m.StatusErr != nil {
		return nil, m.StatusErr
	}
	return &serial.ModemStatusBits{}, nil
}

func (m *MockPort) Close() error {
	m.Closed = true
	return nil
}

func signalName(line string, level bool) string {
	if level {
		return line + "=true"
	}
	return line + "=false"
}
