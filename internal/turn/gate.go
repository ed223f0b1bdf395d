package turn

import (
	"context"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"

	"github.com/samdwyer/wumpushunt/internal/protocol"
	"github.com/samdwyer/wumpushunt/internal/telemetry"
)

// LastArrowPrompt is asked before the hunter's last arrow leaves the quiver.
const LastArrowPrompt = "This is your last arrow.  Are you sure you want to shoot it?"

// QueryFailedMessage is shown when the quiver could not be checked.
const QueryFailedMessage = "Could not check your quiver, so the turn was not taken. Please try again."

// Abort reasons.
const (
	ReasonQueryFailed       = "query-failed"
	ReasonPreserveLastArrow = "preserve-last-arrow"
	ReasonUnanswered        = "confirm-unanswered"
)

// QuiverQuerier reads the quiver without changing the game.
type QuiverQuerier interface {
	QueryQuiver(ctx context.Context) (protocol.QuiverStatus, error)
}

// Confirmer asks the operator a yes/no question and waits for the answer.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// Decision is the gate's verdict on a turn.
type Decision struct {
	Proceed bool
	Reason  string // why the turn was aborted; empty when proceeding
	Arrows  int    // quiver reading, -1 when the query failed
	Err     error  // query or confirmation failure behind an abort
}

// proceed lets the turn through.
func proceed(arrows int) Decision {
	return Decision{Proceed: true, Arrows: arrows}
}

func abort(reason string, arrows int, err error) Decision {
	return Decision{Reason: reason, Arrows: arrows, Err: err}
}

// Gate checks the quiver before a turn and guards the last arrow. It never
// changes server state.
type Gate struct {
	quiver    QuiverQuerier
	confirmer Confirmer
	presenter ErrorPresenter
	onConfirm func()
}

// GateOption configures a Gate.
type GateOption func(*Gate)

// WithConfirmHook runs hook just before the operator is asked to confirm.
func WithConfirmHook(hook func()) GateOption {
	return func(g *Gate) {
		g.onConfirm = hook
	}
}

// NewGate creates a gate.
func NewGate(quiver QuiverQuerier, confirmer Confirmer, errs ErrorPresenter, opts ...GateOption) *Gate {
	g := &Gate{
		quiver:    quiver,
		confirmer: confirmer,
		presenter: errs,
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Check decides whether a turn with the given move may go ahead.
//
// Only shooting the very last arrow needs the operator's consent. An empty
// quiver is let through: refusing an impossible shot is the server's job.
func (g *Gate) Check(ctx context.Context, move protocol.MoveKind) Decision {
	ctx, span := telemetry.Tracer("turn").Start(ctx, "gate.check")
	defer span.End()
	span.SetAttributes(attribute.String("move", move.String()))

	g.presenter.Clear()

	status, err := g.quiver.QueryQuiver(ctx)
	if err != nil {
		log.Warn().Err(err).Str("move", move.String()).Msg("gate: quiver query failed, turn aborted")
		g.presenter.Present([]string{QueryFailedMessage})
		span.SetAttributes(attribute.String("decision", ReasonQueryFailed))
		return abort(ReasonQueryFailed, -1, err)
	}
	span.SetAttributes(attribute.Int("arrows", status.Arrows))

	if status.Arrows != 1 || move != protocol.MoveShoot {
		span.SetAttributes(attribute.String("decision", "proceed"))
		return proceed(status.Arrows)
	}

	if g.onConfirm != nil {
		g.onConfirm()
	}
	accepted, err := g.confirmer.Confirm(ctx, LastArrowPrompt)
	switch {
	case err != nil:
		log.Info().Err(err).Msg("gate: last-arrow confirmation went unanswered, arrow kept")
		span.SetAttributes(attribute.String("decision", ReasonUnanswered))
		return abort(ReasonUnanswered, status.Arrows, err)
	case !accepted:
		log.Info().Msg("gate: operator kept the last arrow")
		span.SetAttributes(attribute.String("decision", ReasonPreserveLastArrow))
		return abort(ReasonPreserveLastArrow, status.Arrows, nil)
	default:
		log.Debug().Msg("gate: operator confirmed shooting the last arrow")
		span.SetAttributes(attribute.String("decision", "proceed"))
		return proceed(status.Arrows)
	}
}
