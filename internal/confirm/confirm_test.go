package confirm

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestControllerResolveAccepts(t *testing.T) {
	t.Parallel()

	asked := make(chan Request, 1)
	c := NewController(0, func(r Request) { asked <- r })

	type result struct {
		ok  bool
		err error
	}
	done := make(chan result, 1)
	go func() {
		ok, err := c.Confirm(context.Background(), "Shoot?")
		done <- result{ok, err}
	}()

	var req Request
	select {
	case req = <-asked:
	case <-time.After(2 * time.Second):
		t.Fatal("notify was not called")
	}
	if req.Prompt != "Shoot?" || req.ID == "" {
		t.Errorf("request = %+v", req)
	}
	if !req.Deadline.IsZero() {
		t.Errorf("Deadline = %v, want zero without a timeout", req.Deadline)
	}
	if pending, ok := c.Pending(); !ok || pending.ID != req.ID {
		t.Errorf("Pending() = %+v, %v; want %s", pending, ok, req.ID)
	}

	if !c.Resolve(req.ID, true) {
		t.Fatal("Resolve() = false for a pending request")
	}

	select {
	case r := <-done:
		if r.err != nil || !r.ok {
			t.Errorf("Confirm() = %v, %v; want true, nil", r.ok, r.err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Confirm() did not return after Resolve")
	}

	if _, ok := c.Pending(); ok {
		t.Error("Pending() still reports the resolved request")
	}
	if c.Resolve(req.ID, false) {
		t.Error("Resolve() of an answered request = true, want false")
	}
}

func TestControllerResolveDeclines(t *testing.T) {
	t.Parallel()

	var c *Controller
	c = NewController(0, func(r Request) {
		// The UI may answer from inside the callback.
		go c.Resolve(r.ID, false)
	})

	ok, err := c.Confirm(context.Background(), "Shoot?")
	if err != nil || ok {
		t.Errorf("Confirm() = %v, %v; want false, nil", ok, err)
	}
}

func TestControllerTimeout(t *testing.T) {
	t.Parallel()

	c := NewController(20*time.Millisecond, nil)

	ok, err := c.Confirm(context.Background(), "Shoot?")
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("Confirm() error = %v, want ErrTimeout", err)
	}
	if ok {
		t.Error("Confirm() = true after a timeout")
	}
	if _, pending := c.Pending(); pending {
		t.Error("timed out request is still pending")
	}
}

func TestControllerCancel(t *testing.T) {
	t.Parallel()

	c := NewController(0, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ok, err := c.Confirm(ctx, "Shoot?")
	if !errors.Is(err, context.Canceled) || ok {
		t.Errorf("Confirm() = %v, %v; want false, context.Canceled", ok, err)
	}
}

func TestControllerDeclineAll(t *testing.T) {
	t.Parallel()

	asked := make(chan struct{}, 1)
	c := NewController(0, func(Request) { asked <- struct{}{} })

	done := make(chan bool, 1)
	go func() {
		ok, _ := c.Confirm(context.Background(), "Shoot?")
		done <- ok
	}()

	<-asked
	c.DeclineAll()

	select {
	case ok := <-done:
		if ok {
			t.Error("Confirm() = true after DeclineAll")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Confirm() did not return after DeclineAll")
	}
}

func TestPrompterConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"yes\n", true},
		{"n\n", false},
	}

	for _, tt := range tests {
		var out bytes.Buffer
		p := NewPrompter(strings.NewReader(tt.input), &out)

		got, err := p.Confirm(context.Background(), "This is your last arrow.")
		if err != nil {
			t.Errorf("Confirm(%q) error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Confirm(%q) = %v, want %v", tt.input, got, tt.want)
		}
		if !strings.Contains(out.String(), "This is your last arrow.") {
			t.Errorf("prompt output = %q, want the question", out.String())
		}
	}
}

func TestPrompterCancelled(t *testing.T) {
	p := NewPrompter(strings.NewReader("y\n"), &bytes.Buffer{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if ok, err := p.Confirm(ctx, "Shoot?"); err == nil || ok {
		t.Errorf("Confirm() with cancelled ctx = %v, %v; want false, error", ok, err)
	}
}
