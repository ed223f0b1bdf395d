package turn

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"

	"github.com/samdwyer/wumpushunt/internal/board"
	"github.com/samdwyer/wumpushunt/internal/entity"
	"github.com/samdwyer/wumpushunt/internal/events"
	"github.com/samdwyer/wumpushunt/internal/protocol"
	"github.com/samdwyer/wumpushunt/internal/telemetry"
)

// Refusals returned by TakeTurn before anything is sent.
var (
	ErrTurnInProgress   = errors.New("a turn is already in progress")
	ErrGameOver         = errors.New("the game is over")
	ErrShootUnavailable = errors.New("there are no arrows left to shoot")
	ErrStaleCave        = errors.New("that cave is not one of the caves on offer")
	ErrUnknownMove      = errors.New("unknown move")
)

// Server is everything a session needs from the game server.
type Server interface {
	QuiverQuerier
	TurnSubmitter
	NewGame(ctx context.Context) (board.Board, error)
}

// Publisher receives the session's progress.
type Publisher interface {
	Publish(ctx context.Context, ev events.Event) error
}

// Result describes how a turn attempt ended.
type Result struct {
	Phase    Phase    // GateAborted, Applied or Failed
	Decision Decision // the gate's verdict
	Err      error    // the *protocol.TurnError behind a failure
}

// Session runs turns for one game, one at a time: gate, then executor.
type Session struct {
	server   Server
	hunter   *entity.Hunter
	gate     *Gate
	executor *Executor
	bus      Publisher

	mu    sync.Mutex
	phase Phase
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithPublisher publishes every phase change to p.
func WithPublisher(p Publisher) SessionOption {
	return func(s *Session) {
		s.bus = p
	}
}

// NewSession wires a gate and an executor around hunter.
func NewSession(server Server, confirmer Confirmer, hunter *entity.Hunter, errs ErrorPresenter, opts ...SessionOption) *Session {
	s := &Session{
		server: server,
		hunter: hunter,
		phase:  PhaseIdle,
	}
	for _, o := range opts {
		o(s)
	}
	s.gate = NewGate(server, confirmer, errs, WithConfirmHook(func() {
		s.enter(context.Background(), PhaseGateConfirming, "")
	}))
	s.executor = NewExecutor(server, hunter, errs)
	if hunter.Over() {
		s.phase = PhaseFinished
	}
	return s
}

// Phase returns the current phase.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Hunter returns the state the session reconciles.
func (s *Session) Hunter() *entity.Hunter {
	return s.hunter
}

// Moves lists the moves that may be offered right now.
func (s *Session) Moves() []protocol.MoveKind {
	if s.hunter.Over() {
		return nil
	}
	if !s.hunter.CanShoot() {
		return []protocol.MoveKind{protocol.MoveEnter}
	}
	return []protocol.MoveKind{protocol.MoveEnter, protocol.MoveShoot}
}

// TakeTurn runs one complete turn. Refusals (ErrTurnInProgress, ErrGameOver,
// ErrShootUnavailable, ErrStaleCave, ErrUnknownMove) are returned as errors
// without contacting the server. Otherwise the returned Result says whether the
// gate aborted, the outcome was applied, or the server rejected the turn. An
// empty cave id is sent as is; the server decides whether it is acceptable.
func (s *Session) TakeTurn(ctx context.Context, move protocol.MoveKind, cave protocol.CaveID) (Result, error) {
	if err := s.begin(move, cave); err != nil {
		return Result{}, err
	}

	ctx, span := telemetry.Tracer("turn").Start(ctx, "turn.take")
	defer span.End()
	span.SetAttributes(
		attribute.String("move", move.String()),
		attribute.String("cave_id", string(cave)),
	)

	s.enter(ctx, PhaseGateChecking, "")
	decision := s.gate.Check(ctx, move)
	if !decision.Proceed {
		s.enter(ctx, PhaseGateAborted, decision.Reason)
		s.enter(ctx, PhaseIdle, "")
		span.SetAttributes(attribute.String("result", PhaseGateAborted.String()))
		return Result{Phase: PhaseGateAborted, Decision: decision}, nil
	}
	s.enter(ctx, PhaseGateProceeding, "")

	s.enter(ctx, PhaseExecuting, "")
	if err := s.executor.Execute(ctx, protocol.TurnRequest{Move: move, CaveID: cave}); err != nil {
		s.enter(ctx, PhaseFailed, "")
		s.enter(ctx, PhaseIdle, "")
		span.SetAttributes(attribute.String("result", PhaseFailed.String()))
		return Result{Phase: PhaseFailed, Decision: decision, Err: err}, nil
	}

	s.enter(ctx, PhaseApplied, "")
	if s.hunter.Over() {
		s.enter(ctx, PhaseFinished, "")
	} else {
		s.enter(ctx, PhaseIdle, "")
	}
	span.SetAttributes(attribute.String("result", PhaseApplied.String()))
	return Result{Phase: PhaseApplied, Decision: decision}, nil
}

// NewGame opens a fresh game on the server, resets the hunter from its board
// and returns the session to Idle. The arrow count comes from the quiver.
func (s *Session) NewGame(ctx context.Context) error {
	s.mu.Lock()
	if s.phase.Busy() {
		s.mu.Unlock()
		return ErrTurnInProgress
	}
	// Hold the session busy while the new game loads.
	s.phase = PhaseGateChecking
	s.mu.Unlock()

	err := s.newGame(ctx)

	s.mu.Lock()
	if err == nil || !s.hunter.Over() {
		s.phase = PhaseIdle
	} else {
		s.phase = PhaseFinished
	}
	phase := s.phase
	s.mu.Unlock()

	s.publish(ctx, events.Event{Type: events.TypeState, Phase: phase.String()})
	return err
}

func (s *Session) newGame(ctx context.Context) error {
	b, err := s.server.NewGame(ctx)
	if err != nil {
		return errors.Wrap(err, "new game")
	}
	status, err := s.server.QueryQuiver(ctx)
	if err != nil {
		return errors.Wrap(err, "new game")
	}
	s.hunter.Reset(b, status.Arrows)
	log.Info().Int("caves", len(b.Caves)).Int("arrows", status.Arrows).Msg("session: new game started")
	return nil
}

// begin validates a turn request and claims the session for it.
func (s *Session) begin(move protocol.MoveKind, cave protocol.CaveID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.phase == PhaseFinished || s.hunter.Over():
		return ErrGameOver
	case s.phase.Busy():
		return ErrTurnInProgress
	case !move.Valid():
		return errors.Wrapf(ErrUnknownMove, "%q", move)
	case move == protocol.MoveShoot && !s.hunter.CanShoot():
		return ErrShootUnavailable
	case cave != "" && !s.hunter.Offers(cave):
		return errors.Wrapf(ErrStaleCave, "cave %s", cave)
	}

	s.phase = PhaseGateChecking
	return nil
}

// enter records a phase change and announces it.
func (s *Session) enter(ctx context.Context, p Phase, reason string) {
	s.mu.Lock()
	s.phase = p
	s.mu.Unlock()

	log.Debug().Str("phase", p.String()).Str("reason", reason).Msg("session: phase")
	s.publish(ctx, events.Event{Type: events.TypePhase, Phase: p.String(), Reason: reason})
}

func (s *Session) publish(ctx context.Context, ev events.Event) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(ctx, ev); err != nil {
		log.Warn().Err(err).Str("event_type", string(ev.Type)).Msg("session: failed to publish")
	}
}
