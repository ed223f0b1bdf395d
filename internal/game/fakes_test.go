package game

import (
	"context"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/samdwyer/wumpushunt/internal/board"
	"github.com/samdwyer/wumpushunt/internal/protocol"
)

// fakeServer plays a scripted game.
type fakeServer struct {
	mu       sync.Mutex
	arrows   int
	outcome  protocol.TurnOutcome
	board    board.Board
	requests []protocol.TurnRequest
}

func (f *fakeServer) QueryQuiver(ctx context.Context) (protocol.QuiverStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return protocol.QuiverStatus{Arrows: f.arrows}, nil
}

func (f *fakeServer) TakeTurn(ctx context.Context, req protocol.TurnRequest) (protocol.TurnOutcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	f.arrows = f.outcome.Arrows
	return f.outcome, nil
}

func (f *fakeServer) NewGame(ctx context.Context) (board.Board, error) {
	return f.board, nil
}

func (f *fakeServer) sent() []protocol.TurnRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]protocol.TurnRequest(nil), f.requests...)
}

// fakeDisplay is an in-memory screen with an event queue.
type fakeDisplay struct {
	width, height int
	events        chan tcell.Event
	closed        bool
}

func newFakeDisplay() *fakeDisplay {
	return &fakeDisplay{width: 80, height: 30, events: make(chan tcell.Event, 64)}
}

func (d *fakeDisplay) Clear()                                         {}
func (d *fakeDisplay) Show()                                          {}
func (d *fakeDisplay) SetContent(x, y int, r rune, style tcell.Style) {}
func (d *fakeDisplay) Size() (int, int)                               { return d.width, d.height }
func (d *fakeDisplay) Sync()                                          {}
func (d *fakeDisplay) Close()                                         { d.closed = true }

func (d *fakeDisplay) PollEvent() tcell.Event {
	return <-d.events
}

func (d *fakeDisplay) PostEvent(ev tcell.Event) error {
	d.events <- ev
	return nil
}

// drain returns every queued interrupt payload.
func (d *fakeDisplay) drain() []any {
	var out []any
	for {
		select {
		case ev := <-d.events:
			if intr, ok := ev.(*tcell.EventInterrupt); ok {
				out = append(out, intr.Data())
			}
		default:
			return out
		}
	}
}
