package monitor

import (
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/charmbracelet/x/term"
)

// TermGuard owns the raw-mode transition of the controlling terminal and
// guarantees the prior mode comes back on every exit path. A signal hook
// registered before entering raw mode covers termination signals delivered
// from outside; the quit hotkey itself arrives as a plain byte because raw
// mode disables signal generation on the keyboard.
type TermGuard struct {
	fd    uintptr
	state *term.State
	once  sync.Once
	sigs  chan os.Signal
	raise func(syscall.Signal)
}

// EnterRaw switches the descriptor into raw mode. When fd is not a terminal
// (pipes, tests) it returns a guard that does nothing, and hotkeys are
// simply unavailable.
func EnterRaw(fd uintptr) (*TermGuard, error) {
	g := &TermGuard{fd: fd}
	if !term.IsTerminal(fd) {
		return g, nil
	}

	// Hook first: a signal between MakeRaw and Notify would otherwise leave
	// the terminal raw. The channel is buffered, so a signal arriving while
	// MakeRaw runs waits here until the forwarding goroutine starts.
	g.sigs = make(chan os.Signal, 1)
	signal.Notify(g.sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	state, err := term.MakeRaw(fd)
	if err != nil {
		g.stopHook()
		return nil, err
	}
	g.state = state
	g.raise = func(s syscall.Signal) {
		// Re-deliver with the default disposition so the exit status
		// reflects the signal.
		signal.Reset(s)
		syscall.Kill(os.Getpid(), s)
	}

	// The forwarding goroutine starts only after state is recorded, so a
	// signal-driven Restore can never observe a guard that is raw but has
	// nothing to restore.
	go func() {
		sig, ok := <-g.sigs
		if !ok {
			return
		}
		g.Restore()
		if s, ok := sig.(syscall.Signal); ok {
			g.raise(s)
		}
	}()

	return g, nil
}

// Raw reports whether the guard actually switched the terminal.
func (g *TermGuard) Raw() bool {
	return g.state != nil
}

// Restore puts the terminal back. Safe to call multiple times and from the
// signal hook; only the first call does work.
func (g *TermGuard) Restore() {
	g.once.Do(func() {
		if g.state != nil {
			term.Restore(g.fd, g.state)
		}
		g.stopHook()
	})
}

func (g *TermGuard) stopHook() {
	if g.sigs != nil {
		signal.Stop(g.sigs)
		close(g.sigs)
	}
}
