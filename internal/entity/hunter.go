// Package entity holds the client's view of the hunter and the game around it.
package entity

import (
	"slices"
	"sync"

	"github.com/samdwyer/wumpushunt/internal/board"
	"github.com/samdwyer/wumpushunt/internal/protocol"
)

// UnknownArrows is the arrow count before the quiver has been checked.
const UnknownArrows = -1

// Hunter is the client game state: what the server last told us about the
// hunter. Only the turn executor and a new-game reset change it; the renderer
// reads it through Snapshot.
type Hunter struct {
	mu       sync.RWMutex
	caves    []protocol.CaveID // nil until the server has offered caves
	arrows   int
	over     bool
	notebook protocol.Notes
	log      []protocol.Message
}

// Snapshot is a point-in-time copy of the hunter's state.
type Snapshot struct {
	Caves      []protocol.CaveID
	CavesKnown bool
	Arrows     int
	Over       bool
	Notebook   protocol.Notes
	Messages   []protocol.Message // full log, oldest first
}

// NewHunter creates a hunter whose surroundings are not yet known.
func NewHunter() *Hunter {
	return &Hunter{arrows: UnknownArrows}
}

// Apply reconciles the state with a turn outcome. Caves, arrows and the
// game-over flag are replaced, the notebook is replaced only when notes came
// back, and the outcome's messages are appended to the log.
func (h *Hunter) Apply(o protocol.TurnOutcome) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.caves = append(make([]protocol.CaveID, 0, len(o.CaveIDs)), o.CaveIDs...)
	h.arrows = o.Arrows
	h.over = o.GameOver
	if o.Notes.Present() {
		h.notebook = o.Notes
	}
	h.log = append(h.log, o.Messages...)
}

// Reset starts the state over from a freshly opened board. This is the only
// way the arrow count may go back up.
func (h *Hunter) Reset(b board.Board, arrows int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.caves = append(make([]protocol.CaveID, 0, len(b.Caves)), b.Caves...)
	h.arrows = arrows
	h.over = false
	h.notebook = b.Notes
	h.log = append([]protocol.Message(nil), b.Messages...)
}

// Arrows returns the last known arrow count, or UnknownArrows.
func (h *Hunter) Arrows() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.arrows
}

// Over reports whether the server has ended the game.
func (h *Hunter) Over() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.over
}

// CanShoot reports whether shooting may still be offered. An unknown quiver is
// given the benefit of the doubt; the gate checks it before anything is sent.
func (h *Hunter) CanShoot() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return !h.over && h.arrows != 0
}

// Offers reports whether id is in the currently offered set of caves. Before
// any caves are known every id is accepted and left to the server.
func (h *Hunter) Offers(id protocol.CaveID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.caves == nil {
		return true
	}
	return slices.Contains(h.caves, id)
}

// Snapshot returns a copy of the current state.
func (h *Hunter) Snapshot() Snapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return Snapshot{
		Caves:      slices.Clone(h.caves),
		CavesKnown: h.caves != nil,
		Arrows:     h.arrows,
		Over:       h.over,
		Notebook:   h.notebook,
		Messages:   slices.Clone(h.log),
	}
}

// SameBoard reports whether two snapshots agree on everything but the message
// log: offered caves, arrows, game over and notebook.
func (s Snapshot) SameBoard(other Snapshot) bool {
	return s.CavesKnown == other.CavesKnown &&
		slices.Equal(s.Caves, other.Caves) &&
		s.Arrows == other.Arrows &&
		s.Over == other.Over &&
		s.Notebook == other.Notebook
}
