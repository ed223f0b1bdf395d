// Package confirm suspends a turn until the operator answers a yes/no question.
package confirm

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrTimeout is returned when nobody answers within the controller's timeout.
var ErrTimeout = errors.New("confirmation timed out")

// Request is an open question waiting for the operator.
type Request struct {
	ID       string
	Prompt   string
	Deadline time.Time // zero when the question waits indefinitely
}

type waiter struct {
	req Request
	seq uint64
	ch  chan bool
}

// Controller hands questions to a UI and waits for the UI to resolve them.
//
// It is owned by the front end: Confirm blocks the turn's goroutine, the UI is
// told through the notify callback, and a key press calls Resolve.
type Controller struct {
	mu      sync.Mutex
	timeout time.Duration
	notify  func(Request)
	seq     uint64
	waiters map[string]*waiter
}

// NewController creates a controller. A zero timeout waits for an answer
// indefinitely; notify may be nil.
func NewController(timeout time.Duration, notify func(Request)) *Controller {
	return &Controller{
		timeout: timeout,
		notify:  notify,
		waiters: make(map[string]*waiter),
	}
}

// Confirm registers the question and blocks until it is resolved, the timeout
// elapses (ErrTimeout), or ctx is cancelled (ctx.Err()).
func (c *Controller) Confirm(ctx context.Context, prompt string) (bool, error) {
	req := Request{ID: uuid.NewString(), Prompt: prompt}
	if c.timeout > 0 {
		req.Deadline = time.Now().Add(c.timeout)
	}
	w := &waiter{req: req, ch: make(chan bool, 1)}

	c.mu.Lock()
	c.seq++
	w.seq = c.seq
	c.waiters[req.ID] = w
	c.mu.Unlock()
	defer c.forget(req.ID)

	if c.notify != nil {
		c.notify(req)
	}

	var expired <-chan time.Time
	if c.timeout > 0 {
		timer := time.NewTimer(c.timeout)
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case answer := <-w.ch:
		return answer, nil
	case <-expired:
		return false, ErrTimeout
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// Resolve answers an open question. It reports false if the question is no
// longer pending.
func (c *Controller) Resolve(id string, accepted bool) bool {
	c.mu.Lock()
	w := c.waiters[id]
	delete(c.waiters, id)
	c.mu.Unlock()
	if w == nil {
		return false
	}
	w.ch <- accepted
	return true
}

// Pending returns the oldest open question, if any.
func (c *Controller) Pending() (Request, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var oldest *waiter
	for _, w := range c.waiters {
		if oldest == nil || w.seq < oldest.seq {
			oldest = w
		}
	}
	if oldest == nil {
		return Request{}, false
	}
	return oldest.req, true
}

// DeclineAll answers every open question with no. Used when the UI goes away.
func (c *Controller) DeclineAll() {
	c.mu.Lock()
	pending := c.waiters
	c.waiters = make(map[string]*waiter)
	c.mu.Unlock()

	for _, w := range pending {
		w.ch <- false
	}
}

func (c *Controller) forget(id string) {
	c.mu.Lock()
	delete(c.waiters, id)
	c.mu.Unlock()
}
