package turn

import (
	"fmt"
	"slices"
	"sync"

	"github.com/pkg/errors"
)

// Error presentation styles.
const (
	StylePanel = "panel"
	StyleBadge = "badge"
)

// ErrorPresenter shows the operator why a turn attempt failed. Gate and
// Executor clear it at the start of each attempt so errors never pile up
// across turns.
type ErrorPresenter interface {
	// Clear hides errors from a previous attempt.
	Clear()
	// Present replaces the displayed errors with errs.
	Present(errs []string)
	// Errors returns the entries currently displayed.
	Errors() []string
	// Lines renders the error region, empty when nothing is shown.
	Lines() []string
}

// NewErrorPresenter returns the presenter for a configured style.
func NewErrorPresenter(style string) (ErrorPresenter, error) {
	switch style {
	case "", StylePanel:
		return &ErrorPanel{}, nil
	case StyleBadge:
		return &ErrorBadge{}, nil
	default:
		return nil, errors.Errorf("unknown error style %q (want %s or %s)", style, StylePanel, StyleBadge)
	}
}

// errorList is the state both presenters share.
type errorList struct {
	mu      sync.RWMutex
	errs    []string
	visible bool
}

func (l *errorList) Clear() {
	l.mu.Lock()
	l.errs = nil
	l.visible = false
	l.mu.Unlock()
}

func (l *errorList) Present(errs []string) {
	l.mu.Lock()
	l.errs = slices.Clone(errs)
	// A rejection without any entries leaves the region empty but shown.
	l.visible = true
	l.mu.Unlock()
}

func (l *errorList) Errors() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.errs)
}

// ErrorPanel lists every error inline under a heading.
type ErrorPanel struct {
	errorList
}

// Lines returns the heading followed by one line per error.
func (p *ErrorPanel) Lines() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if !p.visible {
		return nil
	}
	lines := make([]string, 0, len(p.errs)+1)
	lines = append(lines, "Errors:")
	for _, e := range p.errs {
		lines = append(lines, "  - "+e)
	}
	return lines
}

// ErrorBadge shows a count badge with the errors beside it.
type ErrorBadge struct {
	errorList
}

// Lines returns a single badge line.
func (b *ErrorBadge) Lines() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.visible {
		return nil
	}
	line := fmt.Sprintf("[! %d]", len(b.errs))
	for _, e := range b.errs {
		line += " " + e
	}
	return []string{line}
}

var (
	_ ErrorPresenter = (*ErrorPanel)(nil)
	_ ErrorPresenter = (*ErrorBadge)(nil)
)
