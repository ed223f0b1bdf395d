package protocol

import (
	"encoding/json"
	"testing"
)

func TestParseMove(t *testing.T) {
	tests := []struct {
		input   string
		want    MoveKind
		wantErr bool
	}{
		{"enter", MoveEnter, false},
		{"Enter", MoveEnter, false},
		{" e ", MoveEnter, false},
		{"shoot", MoveShoot, false},
		{"S", MoveShoot, false},
		{"", "", true},
		{"   ", "", true},
		{"jump", "", true},
	}

	for _, tt := range tests {
		got, err := ParseMove(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseMove(%q) should fail, got %q", tt.input, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseMove(%q) error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseMove(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestParseSeverity(t *testing.T) {
	tests := []struct {
		input string
		want  Severity
	}{
		{"INFO", SeverityInfo},
		{"WARNING", SeverityWarning},
		{"warning", SeverityWarning},
		{"TERMINAL", SeverityTerminal},
		{"", SeverityInfo},
		{"SOMETHING", SeverityInfo},
	}

	for _, tt := range tests {
		if got := ParseSeverity(tt.input); got != tt.want {
			t.Errorf("ParseSeverity(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestTurnRequestJSON(t *testing.T) {
	body, err := json.Marshal(TurnRequest{Move: MoveEnter, CaveID: "4"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if got, want := string(body), `{"move":"enter","cave_id":"4"}`; got != want {
		t.Errorf("TurnRequest JSON = %s, want %s", got, want)
	}

	body, err = json.Marshal(TurnRequest{Move: MoveShoot})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if got, want := string(body), `{"move":"shoot","cave_id":""}`; got != want {
		t.Errorf("TurnRequest JSON without cave = %s, want %s", got, want)
	}
}

func TestTurnOutcomeDecodesServerResponse(t *testing.T) {
	// Shape produced by the game server: integer cave ids and a source per message.
	raw := `{
		"messages": [
			{"type": "INFO", "source": "GENERAL", "content": "You are moving into cave 4"},
			{"type": "WARNING", "source": "WUMPUS", "content": "You smell a wumpus"},
			{"content": "no type"}
		],
		"cave_ids": [1, "6", 12],
		"arrows": 3,
		"game_over": false,
		"notes": "<svg></svg>"
	}`

	var out TurnOutcome
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	wantCaves := []CaveID{"1", "6", "12"}
	if len(out.CaveIDs) != len(wantCaves) {
		t.Fatalf("CaveIDs = %v, want %v", out.CaveIDs, wantCaves)
	}
	for i := range wantCaves {
		if out.CaveIDs[i] != wantCaves[i] {
			t.Errorf("CaveIDs[%d] = %q, want %q", i, out.CaveIDs[i], wantCaves[i])
		}
	}
	if out.Messages[1].Severity != SeverityWarning || out.Messages[1].Source != "WUMPUS" {
		t.Errorf("Messages[1] = %+v, want WARNING from WUMPUS", out.Messages[1])
	}
	if out.Messages[2].Severity != SeverityInfo {
		t.Errorf("untyped message severity = %q, want INFO", out.Messages[2].Severity)
	}
	if !out.Notes.Present() {
		t.Error("Notes.Present() = false, want true")
	}
}

func TestCaveIDRejectsFractions(t *testing.T) {
	var c CaveID
	if err := json.Unmarshal([]byte("4.5"), &c); err == nil {
		t.Errorf("CaveID from 4.5 should fail, got %q", c)
	}
	if err := json.Unmarshal([]byte("null"), &c); err != nil || c != "" {
		t.Errorf("CaveID from null = %q, %v; want empty, nil", c, err)
	}
}

func TestTurnOutcomeValidate(t *testing.T) {
	if err := (TurnOutcome{Arrows: 0}).Validate(); err != nil {
		t.Errorf("Validate() with 0 arrows: %v", err)
	}
	if err := (TurnOutcome{Arrows: -1}).Validate(); err == nil {
		t.Error("Validate() with -1 arrows should fail")
	}
}

func TestTurnErrorMessage(t *testing.T) {
	tests := []struct {
		err  *TurnError
		want string
	}{
		{&TurnError{Errors: []string{"cave_id is required"}}, "cave_id is required"},
		{&TurnError{Errors: []string{"a", "b"}}, "a; b"},
		{&TurnError{Status: 502}, "turn rejected with status 502"},
		{&TurnError{}, "turn rejected"},
	}

	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("TurnError%+v.Error() = %q, want %q", *tt.err, got, tt.want)
		}
	}
}

func TestTurnErrorMissingErrorsField(t *testing.T) {
	var te TurnError
	if err := json.Unmarshal([]byte(`{"detail":"boom"}`), &te); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(te.Errors) != 0 {
		t.Errorf("Errors = %v, want empty", te.Errors)
	}
}
