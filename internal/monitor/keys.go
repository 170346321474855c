package monitor

import (
	"golang.org/x/sys/unix"
)

// KeySource yields any keystrokes already pending, without blocking. The
// session loop polls it once per iteration.
type KeySource interface {
	Poll() ([]byte, error)
}

// nopKeys is used when stdin is not a terminal: no hotkeys available.
type nopKeys struct{}

func (nopKeys) Poll() ([]byte, error) { return nil, nil }

// stdinKeys reads raw bytes from a terminal file descriptor. Readiness is
// checked with a zero-timeout poll so an idle keyboard costs nothing.
type stdinKeys struct {
	fd int
}

// StdinKeys returns a KeySource over the given descriptor, normally 0.
func StdinKeys(fd int) KeySource {
	return &stdinKeys{fd: fd}
}

func (s *stdinKeys) Poll() ([]byte, error) {
	pfd := []unix.PollFd{{Fd: int32(s.fd), Events: unix.POLLIN}}
	n, err := unix.Poll(pfd, 0)
	if err != nil {
		if err == unix.EINTR {
			return nil, nil
		}
		return nil, err
	}
	if n == 0 || pfd[0].Revents&unix.POLLIN == 0 {
		return nil, nil
	}

	buf := make([]byte, 64)
	rn, err := unix.Read(s.fd, buf)
	if err != nil {
		if err == unix.EAGAIN || err == unix.EINTR {
			return nil, nil
		}
		return nil, err
	}
	if rn <= 0 {
		return nil, nil
	}
	return buf[:rn], nil
}
