package game

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/tcnksm/go-input"

	"github.com/samdwyer/wumpushunt/internal/board"
	"github.com/samdwyer/wumpushunt/internal/confirm"
	"github.com/samdwyer/wumpushunt/internal/entity"
	"github.com/samdwyer/wumpushunt/internal/protocol"
	"github.com/samdwyer/wumpushunt/internal/turn"
	"github.com/samdwyer/wumpushunt/internal/ui"
)

// Plain is the line-mode front end, used when stdout is not a terminal.
// The last-arrow question is asked inline and waits for an answer.
type Plain struct {
	session  *turn.Session
	errs     turn.ErrorPresenter
	prompter *confirm.Prompter
	ui       *input.UI
	out      io.Writer

	seen  int // messages already printed
	notes protocol.Notes
}

// NewPlain creates a line-mode front end talking to server.
func NewPlain(cfg Config, server turn.Server) (*Plain, error) {
	errs, err := cfg.presenter()
	if err != nil {
		return nil, err
	}
	in, out := cfg.streams()
	prompter := confirm.NewPrompter(in, out)

	return &Plain{
		session:  turn.NewSession(server, prompter, entity.NewHunter(), errs),
		errs:     errs,
		prompter: prompter,
		ui:       prompter.UI(),
		out:      out,
	}, nil
}

// Run plays until the operator quits or declines another game.
func (p *Plain) Run(ctx context.Context) error {
	p.newGame(ctx)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		p.show()

		if p.session.Phase() == turn.PhaseFinished {
			again, err := p.prompter.Confirm(ctx, "The hunt is over. Play again?")
			if err != nil || !again {
				return err
			}
			p.newGame(ctx)
			continue
		}

		move, ok, err := p.askMove()
		if err != nil || !ok {
			return err
		}
		cave, err := p.askCave()
		if err != nil {
			return err
		}

		res, err := p.session.TakeTurn(ctx, move, cave)
		if err != nil {
			p.printf("Turn not taken: %v\n", err)
			continue
		}
		if msg := (finished{result: res}).notice(); msg != "" {
			p.printf("%s\n", msg)
		}
	}
}

func (p *Plain) newGame(ctx context.Context) {
	p.seen = 0
	p.notes = ""
	if err := p.session.NewGame(ctx); err != nil {
		log.Warn().Err(err).Msg("plain: new game failed")
		p.printf("Could not start a new game: %v\n", err)
	}
}

// show prints what changed since the last prompt.
func (p *Plain) show() {
	snap := p.session.Hunter().Snapshot()

	if p.seen > len(snap.Messages) {
		p.seen = 0
	}
	for _, m := range snap.Messages[p.seen:] {
		p.printf("%s\n", formatMessage(m))
	}
	p.seen = len(snap.Messages)

	for _, line := range p.errs.Lines() {
		p.printf("%s\n", line)
	}

	if snap.Notebook != p.notes {
		p.notes = snap.Notebook
		if sum, err := board.Summarize(snap.Notebook); err == nil {
			for _, line := range ui.NotebookLines(sum) {
				p.printf("  %s\n", line)
			}
		}
	}

	if snap.Over {
		return
	}
	arrows := "?"
	if snap.Arrows != entity.UnknownArrows {
		arrows = fmt.Sprint(snap.Arrows)
	}
	p.printf("Arrows: %s   Caves: %s\n", arrows, caveList(snap))
}

// askMove reads a move. ok is false when the operator quits.
func (p *Plain) askMove() (protocol.MoveKind, bool, error) {
	moves := p.session.Moves()
	if len(moves) == 0 {
		return "", false, nil
	}
	names := make([]string, len(moves))
	for i, m := range moves {
		names[i] = m.String()
	}

	answer, err := p.ui.Ask(fmt.Sprintf("Move (%s, q to quit)", strings.Join(names, "/")), &input.Options{
		Default:  moves[0].String(),
		Required: true,
		Loop:     true,
		ValidateFunc: func(s string) error {
			if isQuit(s) {
				return nil
			}
			m, err := protocol.ParseMove(s)
			if err != nil {
				return err
			}
			if !slices.Contains(moves, m) {
				return errors.Errorf("you cannot %s right now", m)
			}
			return nil
		},
	})
	if err != nil {
		return "", false, errors.Wrap(err, "read move")
	}
	if isQuit(answer) {
		return "", false, nil
	}
	m, err := protocol.ParseMove(answer)
	return m, err == nil, err
}

// askCave reads a cave id. With no caves on offer it sends none and lets the
// server answer.
func (p *Plain) askCave() (protocol.CaveID, error) {
	snap := p.session.Hunter().Snapshot()
	if snap.CavesKnown && len(snap.Caves) == 0 {
		return "", nil
	}

	opts := &input.Options{Required: true, Loop: true}
	if snap.CavesKnown {
		opts.Default = string(snap.Caves[0])
		opts.ValidateFunc = func(s string) error {
			if !slices.Contains(snap.Caves, protocol.CaveID(strings.TrimSpace(s))) {
				return errors.Errorf("choose one of %s", caveList(snap))
			}
			return nil
		}
	}
	answer, err := p.ui.Ask("Cave", opts)
	if err != nil {
		return "", errors.Wrap(err, "read cave")
	}
	return protocol.CaveID(strings.TrimSpace(answer)), nil
}

func (p *Plain) printf(format string, args ...any) {
	fmt.Fprintf(p.out, format, args...)
}

func formatMessage(m protocol.Message) string {
	line := m.Content
	if m.Source != "" {
		line += " (" + m.Source + ")"
	}
	if m.Severity != protocol.SeverityInfo {
		line = "[" + string(m.Severity) + "] " + line
	}
	return line
}

func caveList(snap entity.Snapshot) string {
	if !snap.CavesKnown {
		return "unknown"
	}
	if len(snap.Caves) == 0 {
		return "none"
	}
	ids := make([]string, len(snap.Caves))
	for i, id := range snap.Caves {
		ids[i] = string(id)
	}
	return strings.Join(ids, ", ")
}

func isQuit(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "q", "quit":
		return true
	default:
		return false
	}
}
