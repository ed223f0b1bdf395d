package ui

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/samdwyer/wumpushunt/internal/board"
	"github.com/samdwyer/wumpushunt/internal/entity"
	"github.com/samdwyer/wumpushunt/internal/gamedata"
	"github.com/samdwyer/wumpushunt/internal/protocol"
)

// MessageRows is how many of the latest messages are drawn.
const MessageRows = 6

// Help is the key legend drawn on the last row.
const Help = "tab: move  left/right: cave  enter: go  q: quit"

// View is everything drawn in one frame.
type View struct {
	State  entity.Snapshot
	Moves  []protocol.MoveKind // moves on offer; shoot is absent at 0 arrows
	Move   protocol.MoveKind   // selected move
	Cave   int                 // index of the selected cave in State.Caves
	Phase  string
	Errors []string // error region lines, empty when hidden
	Prompt string   // pending confirmation, empty when none
	Notice string   // last local refusal or status note
}

// SelectedCave returns the cave the selection points at, or "" when none.
func (v View) SelectedCave() protocol.CaveID {
	if v.Cave < 0 || v.Cave >= len(v.State.Caves) {
		return ""
	}
	return v.State.Caves[v.Cave]
}

// Renderer handles drawing the game to the screen.
type Renderer struct {
	canvas Canvas
	theme  *gamedata.Theme
}

// NewRenderer creates a new renderer for the given canvas.
func NewRenderer(canvas Canvas, theme *gamedata.Theme) *Renderer {
	return &Renderer{canvas: canvas, theme: theme}
}

// Render draws one frame.
func (r *Renderer) Render(v View) {
	r.canvas.Clear()
	p := &painter{canvas: r.canvas}
	p.width, p.height = r.canvas.Size()
	t := r.theme

	x := p.text(0, t.Title, t.Heading)
	if v.Phase != "" {
		p.text(x, "  ["+v.Phase+"]", t.Muted)
	}
	p.newline()
	p.newline()

	p.text(0, "Arrows: "+arrowLabel(v.State.Arrows), t.Text)
	p.newline()

	r.renderMoves(p, v)
	r.renderCaves(p, v)
	p.newline()

	r.renderMessages(p, v.State.Messages)

	if len(v.Errors) > 0 {
		p.newline()
		for _, line := range v.Errors {
			p.text(0, line, t.Error)
			p.newline()
		}
	}

	r.renderNotebook(p, v.State.Notebook)

	p.newline()
	switch {
	case v.Prompt != "":
		p.text(0, v.Prompt+" [y/n]", t.Prompt)
		p.newline()
	case v.State.Over:
		p.text(0, "Game over. Press n for a new game or q to quit.", t.Prompt)
		p.newline()
	}
	if v.Notice != "" {
		p.text(0, v.Notice, t.Muted)
		p.newline()
	}

	if p.height > 0 {
		p.y = p.height - 1
		p.text(0, Help, t.Muted)
	}

	r.canvas.Show()
}

func (r *Renderer) renderMoves(p *painter, v View) {
	t := r.theme
	x := p.text(0, "Move:  ", t.Text)
	if len(v.Moves) == 0 {
		p.text(x, "(none)", t.Muted)
	}
	for _, m := range v.Moves {
		style := t.Text
		if m == v.Move {
			style = t.Selected
		}
		x = p.text(x, " "+m.String()+" ", style)
		x = p.text(x, " ", t.Text)
	}
	p.newline()
}

func (r *Renderer) renderCaves(p *painter, v View) {
	t := r.theme
	x := p.text(0, "Caves: ", t.Text)
	switch {
	case !v.State.CavesKnown:
		p.text(x, "(unknown)", t.Muted)
	case len(v.State.Caves) == 0:
		p.text(x, "(none offered)", t.Muted)
	}
	for i, id := range v.State.Caves {
		style := t.Text
		if i == v.Cave {
			style = t.Selected
		}
		x = p.text(x, " "+string(id)+" ", style)
		x = p.text(x, " ", t.Text)
	}
	p.newline()
}

func (r *Renderer) renderMessages(p *painter, msgs []protocol.Message) {
	t := r.theme
	p.text(0, "Messages:", t.Heading)
	p.newline()
	if len(msgs) > MessageRows {
		msgs = msgs[len(msgs)-MessageRows:]
	}
	for _, m := range msgs {
		line := "  " + m.Content
		if m.Source != "" {
			line += " (" + m.Source + ")"
		}
		p.text(0, line, t.ForSeverity(m.Severity))
		p.newline()
	}
}

func (r *Renderer) renderNotebook(p *painter, notes protocol.Notes) {
	if !notes.Present() {
		return
	}
	t := r.theme
	p.newline()
	p.text(0, "Notebook:", t.Heading)
	p.newline()

	sum, err := board.Summarize(notes)
	if err != nil {
		p.text(0, "  (unreadable)", t.Muted)
		p.newline()
		return
	}
	for _, line := range NotebookLines(sum) {
		style := t.Text
		if strings.HasSuffix(line, "*") {
			style = t.Current
		}
		p.text(0, "  "+line, style)
		p.newline()
	}
}

// NotebookLines renders a notebook summary as text, one explored cave per
// line (the current cave marked with "*") followed by the known tunnels.
func NotebookLines(sum board.Summary) []string {
	lines := make([]string, 0, len(sum.Caves)+1)
	for _, c := range sum.Caves {
		line := "cave " + c.ID
		if len(c.Warnings) > 0 {
			line += ": " + strings.Join(c.Warnings, ", ")
		}
		if c.Current {
			line += " *"
		}
		lines = append(lines, line)
	}
	if len(sum.Tunnels) > 0 {
		parts := make([]string, len(sum.Tunnels))
		for i, tn := range sum.Tunnels {
			parts[i] = tn.From + "-" + tn.To
		}
		lines = append(lines, "tunnels: "+strings.Join(parts, " "))
	}
	return lines
}

func arrowLabel(n int) string {
	if n == entity.UnknownArrows {
		return "?"
	}
	return fmt.Sprint(n)
}

// painter writes clipped text row by row.
type painter struct {
	canvas        Canvas
	width, height int
	y             int
}

// text draws s at (x, p.y) and returns the column after it.
func (p *painter) text(x int, s string, style tcell.Style) int {
	for _, ch := range s {
		if x >= p.width || p.y >= p.height {
			return x
		}
		p.canvas.SetContent(x, p.y, ch, style)
		x++
	}
	return x
}

func (p *painter) newline() {
	p.y++
}
