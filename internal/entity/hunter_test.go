package entity

import (
	"testing"

	"github.com/samdwyer/wumpushunt/internal/board"
	"github.com/samdwyer/wumpushunt/internal/protocol"
)

func TestNewHunter(t *testing.T) {
	h := NewHunter()

	if got := h.Arrows(); got != UnknownArrows {
		t.Errorf("NewHunter().Arrows() = %d, want %d", got, UnknownArrows)
	}
	if h.Over() {
		t.Error("NewHunter().Over() = true, want false")
	}
	if !h.CanShoot() {
		t.Error("NewHunter().CanShoot() = false, want true while the quiver is unknown")
	}
	if !h.Offers("17") {
		t.Error("NewHunter().Offers() should accept any cave before caves are known")
	}
	if h.Snapshot().CavesKnown {
		t.Error("NewHunter().Snapshot().CavesKnown = true, want false")
	}
}

func TestHunterApplyReplacesState(t *testing.T) {
	h := NewHunter()
	h.Reset(board.Board{Caves: []protocol.CaveID{"2", "4"}, Notes: "<svg>start</svg>"}, 3)

	h.Apply(protocol.TurnOutcome{
		Messages: []protocol.Message{{Severity: protocol.SeverityInfo, Content: "You entered cave 4"}},
		CaveIDs:  []protocol.CaveID{"1", "6"},
		Arrows:   3,
	})

	s := h.Snapshot()
	if len(s.Caves) != 2 || s.Caves[0] != "1" || s.Caves[1] != "6" {
		t.Errorf("Caves = %v, want [1 6]", s.Caves)
	}
	if h.Offers("2") {
		t.Error("Offers(2) = true after the outcome replaced the cave set")
	}
	if !h.Offers("6") {
		t.Error("Offers(6) = false, want true")
	}
	if s.Notebook != "<svg>start</svg>" {
		t.Errorf("Notebook = %q, want the previous notebook kept when notes are absent", s.Notebook)
	}
	if len(s.Messages) != 1 {
		t.Errorf("Messages length = %d, want 1", len(s.Messages))
	}
}

func TestHunterApplyEmptyCaveSet(t *testing.T) {
	h := NewHunter()
	h.Reset(board.Board{Caves: []protocol.CaveID{"2", "4"}}, 5)

	h.Apply(protocol.TurnOutcome{Arrows: 5})

	s := h.Snapshot()
	if !s.CavesKnown || len(s.Caves) != 0 {
		t.Errorf("Snapshot caves = %v (known=%v), want known and empty", s.Caves, s.CavesKnown)
	}
	if h.Offers("2") {
		t.Error("Offers(2) = true, want false once the server offers no caves")
	}
}

func TestHunterApplyIsIdempotent(t *testing.T) {
	outcome := protocol.TurnOutcome{
		Messages: []protocol.Message{{Severity: protocol.SeverityWarning, Content: "You missed!"}},
		CaveIDs:  []protocol.CaveID{"3", "9", "12"},
		Arrows:   2,
		Notes:    "<svg>map</svg>",
	}

	once := NewHunter()
	once.Apply(outcome)

	twice := NewHunter()
	twice.Apply(outcome)
	twice.Apply(outcome)

	if !once.Snapshot().SameBoard(twice.Snapshot()) {
		t.Errorf("applying twice = %+v, applying once = %+v", twice.Snapshot(), once.Snapshot())
	}
	if got := len(twice.Snapshot().Messages); got != 2 {
		t.Errorf("messages after two applies = %d, want 2 (appended per turn)", got)
	}
}

func TestHunterCanShoot(t *testing.T) {
	tests := []struct {
		name   string
		arrows int
		over   bool
		want   bool
	}{
		{"several arrows", 3, false, true},
		{"last arrow", 1, false, true},
		{"empty quiver", 0, false, false},
		{"game over", 2, true, false},
	}

	for _, tt := range tests {
		h := NewHunter()
		h.Apply(protocol.TurnOutcome{Arrows: tt.arrows, GameOver: tt.over})
		if got := h.CanShoot(); got != tt.want {
			t.Errorf("%s: CanShoot() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestHunterResetStartsOver(t *testing.T) {
	h := NewHunter()
	h.Apply(protocol.TurnOutcome{Arrows: 0, GameOver: true, Messages: []protocol.Message{{Content: "old"}}})

	h.Reset(board.Board{
		Caves:    []protocol.CaveID{"5", "7", "19"},
		Messages: []protocol.Message{{Content: "You are starting in cave 1"}},
	}, 5)

	s := h.Snapshot()
	if s.Over || s.Arrows != 5 || len(s.Caves) != 3 {
		t.Errorf("after Reset: %+v", s)
	}
	if len(s.Messages) != 1 || s.Messages[0].Content != "You are starting in cave 1" {
		t.Errorf("after Reset messages = %+v, want only the board's", s.Messages)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	h := NewHunter()
	h.Apply(protocol.TurnOutcome{CaveIDs: []protocol.CaveID{"1"}, Arrows: 5})

	s := h.Snapshot()
	s.Caves[0] = "99"

	if !h.Offers("1") {
		t.Error("mutating a snapshot changed the hunter")
	}
}
