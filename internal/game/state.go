// Package game provides the front ends that drive a turn session: a full
// screen terminal game and a line-mode prompt loop.
package game

import (
	"slices"

	"github.com/samdwyer/wumpushunt/internal/protocol"
)

// selection is the operator's pending choice of move and cave.
type selection struct {
	move protocol.MoveKind
	cave int
}

// sync keeps the selection valid for what is on offer now. A move that is no
// longer offered falls back to the first one; the cave index is clamped.
func (s *selection) sync(moves []protocol.MoveKind, caves []protocol.CaveID) {
	if len(moves) == 0 {
		s.move = ""
	} else if !slices.Contains(moves, s.move) {
		s.move = moves[0]
	}

	switch {
	case len(caves) == 0:
		s.cave = 0
	case s.cave >= len(caves):
		s.cave = len(caves) - 1
	case s.cave < 0:
		s.cave = 0
	}
}

// cycleMove selects the next offered move.
func (s *selection) cycleMove(moves []protocol.MoveKind) {
	if len(moves) == 0 {
		return
	}
	i := slices.Index(moves, s.move)
	s.move = moves[(i+1)%len(moves)]
}

// pickMove selects m if it is offered.
func (s *selection) pickMove(m protocol.MoveKind, moves []protocol.MoveKind) bool {
	if !slices.Contains(moves, m) {
		return false
	}
	s.move = m
	return true
}

// stepCave moves the cave selection by delta, wrapping around.
func (s *selection) stepCave(delta int, caves []protocol.CaveID) {
	if len(caves) == 0 {
		return
	}
	n := len(caves)
	s.cave = ((s.cave+delta)%n + n) % n
}

// caveID returns the selected cave, or "" when none is offered.
func (s *selection) caveID(caves []protocol.CaveID) protocol.CaveID {
	if s.cave < 0 || s.cave >= len(caves) {
		return ""
	}
	return caves[s.cave]
}
