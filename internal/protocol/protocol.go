// Package protocol defines the request/response contract between the hunter's
// client and the game server.
package protocol

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// MoveKind is the action the hunter takes on a turn.
type MoveKind string

const (
	// MoveEnter moves the hunter into an adjoining cave.
	MoveEnter MoveKind = "enter"
	// MoveShoot fires an arrow into an adjoining cave.
	MoveShoot MoveKind = "shoot"
)

// String returns the wire name of the move.
func (m MoveKind) String() string {
	return string(m)
}

// Valid reports whether m is one of the known moves.
func (m MoveKind) Valid() bool {
	return m == MoveEnter || m == MoveShoot
}

// ParseMove reads a move the way the game server does: surrounding space is
// ignored and only the first letter counts, so "Shoot", "s" and " enter" all parse.
func ParseMove(s string) (MoveKind, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", errors.New("empty move")
	}
	switch strings.ToLower(s[:1]) {
	case "e":
		return MoveEnter, nil
	case "s":
		return MoveShoot, nil
	default:
		return "", errors.Errorf("unknown move %q", s)
	}
}

// CaveID identifies a cave offered by the server. The value is opaque to the
// client; an empty id means no cave was selected.
type CaveID string

// UnmarshalJSON accepts both string and numeric ids. The server reports
// neighbouring caves as integers while the selector posts them back as strings.
func (c *CaveID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*c = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = CaveID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return errors.Wrap(err, "cave id")
	}
	if _, err := strconv.ParseInt(n.String(), 10, 64); err != nil {
		return errors.Errorf("cave id %s is not an integer", n)
	}
	*c = CaveID(n.String())
	return nil
}

// Severity classifies a status message.
type Severity string

const (
	SeverityInfo     Severity = "INFO"
	SeverityWarning  Severity = "WARNING"
	SeverityTerminal Severity = "TERMINAL" // game-ending event, e.g. death
)

// ParseSeverity maps a wire type to a Severity. Anything the client does not
// recognise is rendered as plain information.
func ParseSeverity(s string) Severity {
	switch Severity(strings.ToUpper(strings.TrimSpace(s))) {
	case SeverityWarning:
		return SeverityWarning
	case SeverityTerminal:
		return SeverityTerminal
	default:
		return SeverityInfo
	}
}

// Message is a status line reported by the server.
type Message struct {
	Severity Severity `json:"type"`
	Source   string   `json:"source,omitempty"` // hazard that produced it: GENERAL, WUMPUS, BAT_COLONY...
	Content  string   `json:"content"`
}

// UnmarshalJSON normalises the severity.
func (m *Message) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type    string `json:"type"`
		Source  string `json:"source"`
		Content string `json:"content"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*m = Message{
		Severity: ParseSeverity(raw.Type),
		Source:   raw.Source,
		Content:  raw.Content,
	}
	return nil
}

// Notes is the hunter's notebook as renderable markup (an SVG map of the
// explored caves). The server decides what it contains.
type Notes string

// Present reports whether the notes carry any content.
func (n Notes) Present() bool {
	return strings.TrimSpace(string(n)) != ""
}

// TurnRequest is the body posted to the turn endpoint.
type TurnRequest struct {
	Move   MoveKind `json:"move"`
	CaveID CaveID   `json:"cave_id"`
}

// QuiverStatus is the answer of the quiver query.
type QuiverStatus struct {
	Arrows int `json:"arrows"`
}

// TurnOutcome is the server's authoritative account of a turn.
type TurnOutcome struct {
	Messages []Message `json:"messages"`
	CaveIDs  []CaveID  `json:"cave_ids"`
	Arrows   int       `json:"arrows"`
	GameOver bool      `json:"game_over"`
	Notes    Notes     `json:"notes,omitempty"`
}

// Validate rejects outcomes that cannot describe a real game.
func (o TurnOutcome) Validate() error {
	if o.Arrows < 0 {
		return errors.Errorf("negative arrow count %d", o.Arrows)
	}
	return nil
}

// TurnError is returned instead of an outcome when a turn is rejected.
type TurnError struct {
	Status int      `json:"-"` // HTTP status, 0 when the server was not reached
	Errors []string `json:"errors"`
}

// Error joins the reported errors.
func (e *TurnError) Error() string {
	if len(e.Errors) == 0 {
		if e.Status != 0 {
			return "turn rejected with status " + strconv.Itoa(e.Status)
		}
		return "turn rejected"
	}
	return strings.Join(e.Errors, "; ")
}
