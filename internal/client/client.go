// Package client talks to the game server: the read-only quiver query, the
// state-changing turn command and the start page that opens a new game.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/samdwyer/wumpushunt/internal/board"
	"github.com/samdwyer/wumpushunt/internal/protocol"
	"github.com/samdwyer/wumpushunt/internal/telemetry"
)

// DefaultTimeout caps a single request to the game server.
const DefaultTimeout = 10 * time.Second

// maxErrorBody bounds how much of a rejected response is read.
const maxErrorBody = 64 << 10

// Endpoints are the URLs the page layer hands to the client.
type Endpoints struct {
	StartURL       string // GET, opens a new game and renders the board
	CheckQuiverURL string // GET, {"arrows": n}
	TakeTurnURL    string // POST, {"move": ..., "cave_id": ...}
}

// Client is an HTTP client bound to one game session. The server keeps the
// game in a session cookie, so every Client carries its own cookie jar.
type Client struct {
	http      *http.Client
	endpoints Endpoints
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. A cookie jar is added if
// the client has none.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// New creates a client for the given endpoints.
func New(endpoints Endpoints, opts ...Option) (*Client, error) {
	if endpoints.CheckQuiverURL == "" || endpoints.TakeTurnURL == "" {
		return nil, errors.New("quiver and turn URLs are required")
	}

	c := &Client{
		http:      &http.Client{Timeout: DefaultTimeout},
		endpoints: endpoints,
	}
	for _, o := range opts {
		o(c)
	}
	if c.http.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, errors.Wrap(err, "create cookie jar")
		}
		c.http.Jar = jar
	}
	return c, nil
}

// QueryQuiver asks how many arrows the hunter has left. Any non-2xx answer is a
// failure; its body is ignored.
func (c *Client) QueryQuiver(ctx context.Context) (protocol.QuiverStatus, error) {
	ctx, span := telemetry.Tracer("client").Start(ctx, "client.quiver")
	defer span.End()

	var status protocol.QuiverStatus
	resp, err := c.do(ctx, http.MethodGet, c.endpoints.CheckQuiverURL, nil)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return status, errors.Wrap(err, "query quiver")
	}
	defer closeBody(resp)

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if !success(resp.StatusCode) {
		err := errors.Errorf("query quiver: unexpected status %d", resp.StatusCode)
		span.SetStatus(codes.Error, err.Error())
		return status, err
	}
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return status, errors.Wrap(err, "decode quiver status")
	}
	if status.Arrows < 0 {
		return status, errors.Errorf("query quiver: negative arrow count %d", status.Arrows)
	}

	span.SetAttributes(attribute.Int("arrows", status.Arrows))
	return status, nil
}

// TakeTurn submits a turn. A rejected turn comes back as a *protocol.TurnError
// carrying the server's messages; failing to reach the server is returned as a
// plain wrapped error.
func (c *Client) TakeTurn(ctx context.Context, req protocol.TurnRequest) (protocol.TurnOutcome, error) {
	ctx, span := telemetry.Tracer("client").Start(ctx, "client.turn")
	defer span.End()
	span.SetAttributes(
		attribute.String("move", req.Move.String()),
		attribute.String("cave_id", string(req.CaveID)),
	)

	var outcome protocol.TurnOutcome
	body, err := json.Marshal(req)
	if err != nil {
		return outcome, errors.Wrap(err, "encode turn request")
	}

	resp, err := c.do(ctx, http.MethodPost, c.endpoints.TakeTurnURL, body)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return outcome, errors.Wrap(err, "submit turn")
	}
	defer closeBody(resp)

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if !success(resp.StatusCode) {
		turnErr := decodeTurnError(resp)
		span.SetStatus(codes.Error, turnErr.Error())
		return outcome, turnErr
	}

	if err := json.NewDecoder(resp.Body).Decode(&outcome); err != nil {
		return outcome, errors.Wrap(err, "decode turn outcome")
	}
	if err := outcome.Validate(); err != nil {
		return outcome, errors.Wrap(err, "turn outcome")
	}

	span.SetAttributes(
		attribute.Int("arrows", outcome.Arrows),
		attribute.Bool("game_over", outcome.GameOver),
		attribute.Int("messages", len(outcome.Messages)),
	)
	return outcome, nil
}

// NewGame opens a new game on the server and reads its starting board. The
// server answers with a fresh session cookie, which the jar keeps.
func (c *Client) NewGame(ctx context.Context) (board.Board, error) {
	ctx, span := telemetry.Tracer("client").Start(ctx, "client.start")
	defer span.End()

	if c.endpoints.StartURL == "" {
		return board.Board{}, errors.New("no start URL configured")
	}

	resp, err := c.do(ctx, http.MethodGet, c.endpoints.StartURL, nil)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return board.Board{}, errors.Wrap(err, "open new game")
	}
	defer closeBody(resp)

	if !success(resp.StatusCode) {
		return board.Board{}, errors.Errorf("open new game: unexpected status %d", resp.StatusCode)
	}

	b, err := board.Parse(resp.Body)
	if err != nil {
		return board.Board{}, err
	}
	span.SetAttributes(attribute.Int("caves", len(b.Caves)))
	return b, nil
}

// do sends a request with JSON headers and trace context.
func (c *Client) do(ctx context.Context, method, url string, body []byte) (*http.Response, error) {
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, r)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	telemetry.InjectHeaders(ctx, req.Header)

	log.Debug().Str("method", method).Str("url", url).Msg("client: request")
	return c.http.Do(req)
}

// decodeTurnError reads the server's error list. A missing list or an
// unreadable body still yields a TurnError, just an empty one.
func decodeTurnError(resp *http.Response) *protocol.TurnError {
	turnErr := &protocol.TurnError{Status: resp.StatusCode}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxErrorBody)).Decode(turnErr); err != nil {
		log.Warn().Err(err).Int("status", resp.StatusCode).Msg("client: turn rejected without a readable error list")
		turnErr.Errors = nil
	}
	turnErr.Status = resp.StatusCode
	return turnErr
}

func success(status int) bool {
	return status >= 200 && status < 300
}

func closeBody(resp *http.Response) {
	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body)
	if err := resp.Body.Close(); err != nil {
		log.Warn().Err(err).Msg("client: failed to close response body")
	}
}
