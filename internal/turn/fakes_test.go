package turn

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/samdwyer/wumpushunt/internal/board"
	"github.com/samdwyer/wumpushunt/internal/events"
	"github.com/samdwyer/wumpushunt/internal/protocol"
)

// fakeServer scripts the quiver, turn and start endpoints and records calls.
type fakeServer struct {
	mu sync.Mutex

	arrows    int
	quiverErr error

	outcome protocol.TurnOutcome
	turnErr error

	board   board.Board
	gameErr error

	quiverCalls int
	turnCalls   int
	gameCalls   int
	requests    []protocol.TurnRequest
}

func (f *fakeServer) QueryQuiver(ctx context.Context) (protocol.QuiverStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.quiverCalls++
	if f.quiverErr != nil {
		return protocol.QuiverStatus{}, f.quiverErr
	}
	return protocol.QuiverStatus{Arrows: f.arrows}, nil
}

func (f *fakeServer) TakeTurn(ctx context.Context, req protocol.TurnRequest) (protocol.TurnOutcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.turnCalls++
	f.requests = append(f.requests, req)
	if f.turnErr != nil {
		return protocol.TurnOutcome{}, f.turnErr
	}
	return f.outcome, nil
}

func (f *fakeServer) NewGame(ctx context.Context) (board.Board, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gameCalls++
	if f.gameErr != nil {
		return board.Board{}, f.gameErr
	}
	return f.board, nil
}

func (f *fakeServer) turns() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.turnCalls
}

// fakeConfirmer answers every prompt the same way.
type fakeConfirmer struct {
	accept bool
	err    error

	calls   int
	prompts []string
}

func (c *fakeConfirmer) Confirm(ctx context.Context, prompt string) (bool, error) {
	c.calls++
	c.prompts = append(c.prompts, prompt)
	return c.accept, c.err
}

// recorder collects published events.
type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) Publish(ctx context.Context, ev events.Event) error {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
	return nil
}

func (r *recorder) phases() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, ev := range r.events {
		if ev.Type == events.TypePhase {
			out = append(out, ev.Phase)
		}
	}
	return out
}

var errOffline = errors.New("connection refused")

func caves(ids ...string) []protocol.CaveID {
	out := make([]protocol.CaveID, len(ids))
	for i, id := range ids {
		out[i] = protocol.CaveID(id)
	}
	return out
}
