package turn

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/samdwyer/wumpushunt/internal/entity"
	"github.com/samdwyer/wumpushunt/internal/protocol"
	"github.com/samdwyer/wumpushunt/internal/telemetry"
)

// UnreachableMessage prefixes the error shown when the turn never got an answer.
const UnreachableMessage = "Could not reach the game server"

// TurnSubmitter sends a turn to the server.
type TurnSubmitter interface {
	TakeTurn(ctx context.Context, req protocol.TurnRequest) (protocol.TurnOutcome, error)
}

// Executor submits turns and reconciles the hunter with the server's answer.
// It is the only writer of the hunter's state during play.
type Executor struct {
	server    TurnSubmitter
	hunter    *entity.Hunter
	presenter ErrorPresenter
}

// NewExecutor creates an executor that updates hunter.
func NewExecutor(server TurnSubmitter, hunter *entity.Hunter, errs ErrorPresenter) *Executor {
	return &Executor{
		server:    server,
		hunter:    hunter,
		presenter: errs,
	}
}

// Execute submits req. On success the outcome is applied and nil returned.
// On failure every error entry is presented, the hunter is left exactly as it
// was, and the *protocol.TurnError is returned. Nothing is retried.
func (e *Executor) Execute(ctx context.Context, req protocol.TurnRequest) error {
	ctx, span := telemetry.Tracer("turn").Start(ctx, "turn.execute")
	defer span.End()
	span.SetAttributes(
		attribute.String("move", req.Move.String()),
		attribute.String("cave_id", string(req.CaveID)),
	)

	e.presenter.Clear()

	outcome, err := e.server.TakeTurn(ctx, req)
	if err != nil {
		turnErr := asTurnError(err)
		e.presenter.Present(turnErr.Errors)
		span.SetStatus(codes.Error, turnErr.Error())
		log.Info().
			Int("status", turnErr.Status).
			Strs("errors", turnErr.Errors).
			Str("move", req.Move.String()).
			Str("cave_id", string(req.CaveID)).
			Msg("executor: turn rejected")
		return turnErr
	}

	if prev := e.hunter.Arrows(); prev >= 0 && outcome.Arrows > prev {
		log.Warn().Int("before", prev).Int("after", outcome.Arrows).Msg("executor: server raised the arrow count mid-game")
	}
	e.hunter.Apply(outcome)

	span.SetAttributes(
		attribute.Int("arrows", outcome.Arrows),
		attribute.Bool("game_over", outcome.GameOver),
		attribute.Int("caves", len(outcome.CaveIDs)),
	)
	log.Debug().
		Int("arrows", outcome.Arrows).
		Bool("game_over", outcome.GameOver).
		Int("messages", len(outcome.Messages)).
		Msg("executor: turn applied")
	return nil
}

// asTurnError turns any submission failure into the list the operator sees.
func asTurnError(err error) *protocol.TurnError {
	var turnErr *protocol.TurnError
	if errors.As(err, &turnErr) {
		return turnErr
	}
	return &protocol.TurnError{Errors: []string{UnreachableMessage + ": " + errors.Cause(err).Error()}}
}
