package game

import (
	"io"
	"os"
	"time"

	"github.com/samdwyer/wumpushunt/internal/turn"
)

// Config holds front-end options.
type Config struct {
	// ErrorStyle picks the error presenter: turn.StylePanel or turn.StyleBadge.
	ErrorStyle string
	// ConfirmTimeout bounds how long the last-arrow question waits.
	// Zero waits until the operator answers or quits.
	ConfirmTimeout time.Duration

	// In and Out are the line-mode terminal. They default to stdin/stdout.
	In  io.Reader
	Out io.Writer
}

func (c Config) presenter() (turn.ErrorPresenter, error) {
	return turn.NewErrorPresenter(c.ErrorStyle)
}

func (c Config) streams() (io.Reader, io.Writer) {
	in, out := c.In, c.Out
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	return in, out
}
