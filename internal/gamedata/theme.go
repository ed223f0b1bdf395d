package gamedata

import (
	"github.com/gdamore/tcell/v2"
	"github.com/pkg/errors"

	"github.com/samdwyer/wumpushunt/internal/protocol"
)

// ThemeFile is the embedded theme definition.
const ThemeFile = "theme.json"

// ThemeDef is the JSON shape of a theme: a title and hex colours by role.
type ThemeDef struct {
	Title  string            `json:"title"`
	Colors map[string]string `json:"colors"`
}

// Theme holds the styles the renderer draws with.
type Theme struct {
	Title    string
	Text     tcell.Style
	Muted    tcell.Style
	Heading  tcell.Style
	Selected tcell.Style
	Info     tcell.Style
	Warning  tcell.Style
	Terminal tcell.Style
	Error    tcell.Style
	Prompt   tcell.Style
	Current  tcell.Style
}

// LoadTheme loads the embedded theme.
func LoadTheme() (*Theme, error) {
	def, err := Load[ThemeDef](ThemeFile)
	if err != nil {
		return nil, err
	}
	return NewTheme(def)
}

// MustLoadTheme loads the embedded theme, panicking on error.
func MustLoadTheme() *Theme {
	theme, err := LoadTheme()
	if err != nil {
		panic(err)
	}
	return theme
}

// NewTheme builds styles from a definition. Every role must have a colour.
func NewTheme(def ThemeDef) (*Theme, error) {
	color := func(role string) (tcell.Color, error) {
		hex, ok := def.Colors[role]
		if !ok {
			return tcell.ColorDefault, errors.Errorf("theme has no %q colour", role)
		}
		c, err := ParseHexColor(hex)
		return c, errors.Wrapf(err, "theme colour %q", role)
	}
	fg := func(role string) (tcell.Style, error) {
		c, err := color(role)
		if err != nil {
			return tcell.StyleDefault, err
		}
		return tcell.StyleDefault.Foreground(c), nil
	}

	t := &Theme{Title: def.Title}
	targets := []struct {
		role  string
		style *tcell.Style
	}{
		{"text", &t.Text},
		{"muted", &t.Muted},
		{"heading", &t.Heading},
		{"selected", &t.Selected},
		{"info", &t.Info},
		{"warning", &t.Warning},
		{"terminal", &t.Terminal},
		{"error", &t.Error},
		{"prompt", &t.Prompt},
		{"current", &t.Current},
	}
	for _, tt := range targets {
		s, err := fg(tt.role)
		if err != nil {
			return nil, err
		}
		*tt.style = s
	}

	bg, err := color("selectedBackground")
	if err != nil {
		return nil, err
	}
	t.Selected = t.Selected.Background(bg).Bold(true)
	t.Heading = t.Heading.Bold(true)
	t.Terminal = t.Terminal.Bold(true)
	t.Prompt = t.Prompt.Bold(true)
	return t, nil
}

// ForSeverity returns the style a message of the given severity is drawn in.
func (t *Theme) ForSeverity(s protocol.Severity) tcell.Style {
	switch s {
	case protocol.SeverityWarning:
		return t.Warning
	case protocol.SeverityTerminal:
		return t.Terminal
	default:
		return t.Info
	}
}
