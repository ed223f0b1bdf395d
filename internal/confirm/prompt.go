package confirm

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/tcnksm/go-input"
)

// Prompter asks yes/no questions on a line-oriented terminal.
type Prompter struct {
	ui *input.UI
}

// NewPrompter creates a prompter reading answers from r and writing questions to w.
func NewPrompter(r io.Reader, w io.Writer) *Prompter {
	return &Prompter{ui: &input.UI{Writer: w, Reader: r}}
}

// UI exposes the underlying go-input UI so other questions share the terminal.
func (p *Prompter) UI() *input.UI {
	return p.ui
}

// Confirm asks prompt until the operator answers y or n. The default is no,
// so pressing enter keeps the arrow.
func (p *Prompter) Confirm(ctx context.Context, prompt string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	type result struct {
		answer string
		err    error
	}
	done := make(chan result, 1)
	go func() {
		answer, err := p.ui.Ask(fmt.Sprintf("%s [y/n]", prompt), &input.Options{
			Default:      "n",
			Required:     true,
			Loop:         true,
			ValidateFunc: validateYesNo,
		})
		done <- result{answer, err}
	}()

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case r := <-done:
		if r.err != nil {
			return false, errors.Wrap(r.err, "read confirmation")
		}
		return isYes(r.answer), nil
	}
}

func validateYesNo(answer string) error {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes", "n", "no":
		return nil
	default:
		return errors.New("please enter 'y' or 'n'")
	}
}

func isYes(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
