package game

import (
	"context"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/samdwyer/wumpushunt/internal/confirm"
	"github.com/samdwyer/wumpushunt/internal/entity"
	"github.com/samdwyer/wumpushunt/internal/events"
	"github.com/samdwyer/wumpushunt/internal/gamedata"
	"github.com/samdwyer/wumpushunt/internal/protocol"
	"github.com/samdwyer/wumpushunt/internal/telemetry"
	"github.com/samdwyer/wumpushunt/internal/turn"
	"github.com/samdwyer/wumpushunt/internal/ui"
)

// display is the terminal the game draws on and reads keys from.
type display interface {
	ui.Canvas
	PollEvent() tcell.Event
	PostEvent(ev tcell.Event) error
	Sync()
	Close()
}

// finished is posted to the loop when a turn or new game completes.
type finished struct {
	result  turn.Result
	err     error
	newGame bool
}

// notice is the status line shown after the work completes.
func (f finished) notice() string {
	switch {
	case f.newGame && f.err != nil:
		return "Could not start a new game: " + f.err.Error()
	case f.newGame:
		return "A new hunt begins."
	case f.err != nil:
		return "Turn not taken: " + f.err.Error()
	}
	if f.result.Phase == turn.PhaseGateAborted {
		switch f.result.Decision.Reason {
		case turn.ReasonPreserveLastArrow:
			return "You keep your last arrow."
		case turn.ReasonUnanswered:
			return "No answer, so you keep your last arrow."
		}
	}
	return ""
}

// Game is the full-screen front end.
type Game struct {
	screen    display
	renderer  *ui.Renderer
	session   *turn.Session
	confirmer *confirm.Controller
	errs      turn.ErrorPresenter
	bus       *events.Bus
	workers   *errgroup.Group

	sel     selection
	notice  string
	running bool
}

// New creates a new game instance talking to server.
func New(cfg Config, server turn.Server) (*Game, error) {
	screen, err := ui.NewScreen()
	if err != nil {
		return nil, err
	}
	g, err := newGame(cfg, server, screen)
	if err != nil {
		screen.Close()
		return nil, err
	}
	return g, nil
}

func newGame(cfg Config, server turn.Server, screen display) (*Game, error) {
	theme, err := gamedata.LoadTheme()
	if err != nil {
		return nil, err
	}
	errs, err := cfg.presenter()
	if err != nil {
		return nil, err
	}

	g := &Game{
		screen:   screen,
		renderer: ui.NewRenderer(screen, theme),
		errs:     errs,
		bus:      events.NewBus(),
		workers:  &errgroup.Group{},
		running:  true,
	}
	g.confirmer = confirm.NewController(cfg.ConfirmTimeout, g.announce)
	g.session = turn.NewSession(server, g.confirmer, entity.NewHunter(), errs, turn.WithPublisher(g.bus))
	return g, nil
}

// Run executes the main game loop until the operator quits.
func (g *Game) Run(ctx context.Context) error {
	ctx, span := telemetry.Tracer("game").Start(ctx, "game.run")
	defer span.End()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	workers, ctx := errgroup.WithContext(ctx)
	g.workers = workers

	sub, err := g.bus.Subscribe(ctx)
	if err != nil {
		return err
	}
	workers.Go(func() error {
		g.forward(sub)
		return nil
	})

	g.startNewGame(ctx)

	turns := 0
	for g.running {
		g.render()
		if g.handleInput(ctx) {
			turns++
		}
	}

	// Unblock a turn waiting on the last-arrow question, then stop the workers.
	g.confirmer.DeclineAll()
	cancel()
	err = workers.Wait()
	if cerr := g.bus.Close(); cerr != nil {
		log.Warn().Err(cerr).Msg("game: closing event bus")
	}
	g.screen.Close()

	span.SetAttributes(attribute.Int("turns", turns))
	return err
}

// forward turns bus events into screen interrupts so the loop redraws.
func (g *Game) forward(sub <-chan events.Event) {
	for ev := range sub {
		g.post(ev)
	}
}

func (g *Game) post(data any) {
	if err := g.screen.PostEvent(tcell.NewEventInterrupt(data)); err != nil {
		log.Debug().Err(err).Msg("game: dropped screen event")
	}
}

// announce tells the loop a question is open. It runs on the turn's goroutine.
func (g *Game) announce(req confirm.Request) {
	ev := events.Event{Type: events.TypeConfirm, ConfirmID: req.ID, Prompt: req.Prompt}
	if err := g.bus.Publish(context.Background(), ev); err != nil {
		log.Warn().Err(err).Msg("game: announcing confirmation")
	}
}

func (g *Game) view() ui.View {
	snap := g.session.Hunter().Snapshot()
	moves := g.session.Moves()
	g.sel.sync(moves, snap.Caves)

	v := ui.View{
		State:  snap,
		Moves:  moves,
		Move:   g.sel.move,
		Cave:   g.sel.cave,
		Phase:  g.session.Phase().String(),
		Errors: g.errs.Lines(),
		Notice: g.notice,
	}
	if req, ok := g.confirmer.Pending(); ok {
		v.Prompt = req.Prompt
	}
	return v
}

func (g *Game) render() {
	g.renderer.Render(g.view())
}

// handleInput processes a single input event and reports whether it started
// a turn.
func (g *Game) handleInput(ctx context.Context) bool {
	ev := g.screen.PollEvent()

	switch ev := ev.(type) {
	case *tcell.EventKey:
		return g.handleKeyEvent(ctx, ev)
	case *tcell.EventResize:
		g.screen.Sync()
	case *tcell.EventInterrupt:
		g.handleInterrupt(ev.Data())
	case nil:
		// The screen was finalized underneath us.
		g.running = false
	}
	return false
}

func (g *Game) handleInterrupt(data any) {
	switch d := data.(type) {
	case events.Event:
		log.Trace().Str("event_type", string(d.Type)).Str("phase", d.Phase).Msg("game: redraw")
	case finished:
		g.notice = d.notice()
	}
}

// handleKeyEvent processes keyboard input and reports whether a turn started.
func (g *Game) handleKeyEvent(ctx context.Context, ev *tcell.EventKey) bool {
	return g.handleKey(ctx, ev.Key(), ev.Rune())
}

func (g *Game) handleKey(ctx context.Context, key tcell.Key, r rune) bool {
	if req, ok := g.confirmer.Pending(); ok {
		g.answer(req, key, r)
		return false
	}

	snap := g.session.Hunter().Snapshot()
	moves := g.session.Moves()
	g.sel.sync(moves, snap.Caves)

	switch key {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		g.running = false
	case tcell.KeyTab:
		g.sel.cycleMove(moves)
	case tcell.KeyLeft, tcell.KeyUp:
		g.sel.stepCave(-1, snap.Caves)
	case tcell.KeyRight, tcell.KeyDown:
		g.sel.stepCave(1, snap.Caves)
	case tcell.KeyEnter:
		return g.submit(ctx, g.sel.move, g.sel.caveID(snap.Caves))
	case tcell.KeyRune:
		switch r {
		case 'q', 'Q':
			g.running = false
		case 'm', 'M':
			g.sel.cycleMove(moves)
		case 'e', 'E':
			g.sel.pickMove(protocol.MoveEnter, moves)
		case 's', 'S':
			g.sel.pickMove(protocol.MoveShoot, moves)
		case 'n', 'N':
			if snap.Over {
				g.startNewGame(ctx)
			}
		}
	}
	return false
}

// answer resolves the open question from a key press.
func (g *Game) answer(req confirm.Request, key tcell.Key, r rune) {
	switch {
	case key == tcell.KeyCtrlC:
		g.running = false
	case key == tcell.KeyEscape:
		g.confirmer.Resolve(req.ID, false)
	case key == tcell.KeyRune && (r == 'y' || r == 'Y'):
		g.confirmer.Resolve(req.ID, true)
	case key == tcell.KeyRune && (r == 'n' || r == 'N'):
		g.confirmer.Resolve(req.ID, false)
	}
}

// submit starts a turn off the UI goroutine.
func (g *Game) submit(ctx context.Context, move protocol.MoveKind, cave protocol.CaveID) bool {
	if g.session.Phase().Busy() {
		g.notice = "A turn is already in progress."
		return false
	}
	if move == "" {
		return false
	}
	g.notice = ""
	g.workers.Go(func() error {
		res, err := g.session.TakeTurn(ctx, move, cave)
		g.post(finished{result: res, err: err})
		return nil
	})
	return true
}

func (g *Game) startNewGame(ctx context.Context) {
	g.notice = "Opening a new game..."
	g.workers.Go(func() error {
		err := g.session.NewGame(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("game: new game failed")
		}
		g.post(finished{newGame: true, err: err})
		return nil
	})
}
