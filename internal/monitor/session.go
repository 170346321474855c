// Package monitor runs the interactive monitoring session: a single-threaded
// loop multiplexing serial input and keyboard hotkeys, feeding completed
// lines through the annotator to stdout.
package monitor

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/esptools/espmon/internal/annotate"
	"github.com/esptools/espmon/internal/linebuf"
	"github.com/esptools/espmon/internal/transport"
)

// Hotkeys arrive as raw control bytes: the Ctrl modifier clears bits 6 and 5
// of the character.
const (
	keyReset = 0x12 // Ctrl+R
	keyQuit  = 0x03 // Ctrl+C
)

var statusStyle = lipgloss.NewStyle().Bold(true)

// Outcome says how a session ended when it ended without error.
type Outcome int

const (
	// OutcomeQuit: the operator pressed the quit key.
	OutcomeQuit Outcome = iota
	// OutcomeDisconnected: the device stopped answering and the status
	// probe failed.
	OutcomeDisconnected
)

// Options configure a Session.
type Options struct {
	Conn         *transport.Conn
	Annotator    *annotate.Annotator // nil: lines pass through unannotated
	Keys         KeySource           // nil: no keyboard handling
	Out          io.Writer
	Logger       *slog.Logger
	ResetOnStart bool
	CRLF         bool // terminate output lines with \r\n (raw-mode terminal)
}

// Session is one monitoring run over an open connection. Created once per
// invocation; Close releases the connection.
type Session struct {
	id   uuid.UUID
	conn *transport.Conn
	asm  *linebuf.Assembler
	ann  *annotate.Annotator
	keys KeySource
	out  io.Writer
	log  *slog.Logger

	resetOnStart bool
	eol          string
}

// New assembles a Session from opts.
func New(opts Options) *Session {
	eol := "\n"
	if opts.CRLF {
		eol = "\r\n"
	}
	keys := opts.Keys
	if keys == nil {
		keys = nopKeys{}
	}
	return &Session{
		id:           uuid.New(),
		conn:         opts.Conn,
		asm:          linebuf.New(),
		ann:          opts.Annotator,
		keys:         keys,
		out:          opts.Out,
		log:          opts.Logger,
		resetOnStart: opts.ResetOnStart,
		eol:          eol,
	}
}

// Run drives the session loop until a quit keystroke, a disconnect, or a
// fatal transport error. Each iteration performs one bounded serial read, so
// the stalled-line flush and the keyboard poll run regularly even when the
// device is silent.
func (s *Session) Run() (Outcome, error) {
	s.log.Debug("session starting", "session", s.id, "device", s.conn.Device(), "baud", s.conn.Baud())

	if s.resetOnStart {
		if err := s.resetDevice(); err != nil {
			return 0, err
		}
	}

	buf := make([]byte, 1024)
	for {
		n, err := s.conn.Read(buf)
		switch {
		case err != nil:
			return 0, fmt.Errorf("reading from %s: %w", s.conn.Device(), err)
		case n > 0:
			for _, line := range s.asm.Ingest(buf[:n]) {
				s.writeLine(line)
			}
		default:
			// Bounded-timeout read came back empty. The status probe is
			// advisory: only its own failure means the device is gone.
			if err := s.conn.Probe(); err != nil {
				s.log.Debug("device disconnected", "session", s.id, "err", err)
				s.status("Device disconnected")
				return OutcomeDisconnected, nil
			}
		}

		if line, ok := s.asm.FlushStalled(); ok {
			s.writeLine(line)
		}

		keys, err := s.keys.Poll()
		if err != nil {
			return 0, fmt.Errorf("reading keyboard: %w", err)
		}
		for _, k := range keys {
			switch k {
			case keyReset:
				if err := s.resetDevice(); err != nil {
					return 0, err
				}
			case keyQuit:
				s.log.Debug("session quit", "session", s.id)
				return OutcomeQuit, nil
			}
		}
	}
}

// Close releases the serial connection.
func (s *Session) Close() error {
	return s.conn.Close()
}

func (s *Session) resetDevice() error {
	fmt.Fprint(s.out, statusStyle.Render("Resetting device... "))
	if err := s.conn.Reset(); err != nil {
		fmt.Fprint(s.out, s.eol)
		return err
	}
	fmt.Fprint(s.out, statusStyle.Render("done")+s.eol)
	return nil
}

func (s *Session) writeLine(line string) {
	fmt.Fprint(s.out, s.ann.Process(line)+s.eol)
}

func (s *Session) status(msg string) {
	fmt.Fprint(s.out, statusStyle.Render(msg)+s.eol)
}
