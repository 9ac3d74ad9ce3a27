// Package fetch owns the lifecycle of one outstanding remote request per
// logical query key: idle/loading/success/error state, and cancellation of
// superseded requests so a stale response can never overwrite a newer one.
package fetch

import (
	"context"
	"errors"
	"sync"
)

// Phase tags the variant a State currently holds.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseLoading Phase = "loading"
	PhaseSuccess Phase = "success"
	PhaseError   Phase = "error"
)

// State is a tagged variant over the fetch lifecycle. Data is meaningful only
// in PhaseSuccess, Message only in PhaseError.
type State[T any] struct {
	Phase   Phase
	Data    T
	Message string
}

// Controller serializes fetches for a sequence of query keys. Each Load
// supersedes the previous one: the prior request context is cancelled and its
// outcome, even if it completes later, is discarded unconditionally. That
// discard is a correctness invariant, not an optimization - rapid key changes
// must never produce out-of-order state updates.
type Controller[T any] struct {
	mu     sync.Mutex
	gen    uint64
	key    string
	cancel context.CancelFunc
	state  State[T]
}

// NewController returns a controller in the idle state.
func NewController[T any]() *Controller[T] {
	return &Controller[T]{state: State[T]{Phase: PhaseIdle}}
}

// Load starts a request for key, cancelling any request still in flight. The
// returned channel closes when this request settles, whether its result was
// applied or discarded.
func (c *Controller[T]) Load(ctx context.Context, key string, fn func(context.Context) (T, error)) <-chan struct{} {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	c.gen++
	gen := c.gen
	c.key = key
	reqCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.state = State[T]{Phase: PhaseLoading}
	c.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer cancel()
		data, err := fn(reqCtx)

		c.mu.Lock()
		defer c.mu.Unlock()
		if gen != c.gen {
			return // superseded: result discarded no matter what it was
		}
		if reqCtx.Err() != nil || errors.Is(err, context.Canceled) {
			return // cancelled requests never transition state
		}
		if err != nil {
			c.state = State[T]{Phase: PhaseError, Message: err.Error()}
			return
		}
		c.state = State[T]{Phase: PhaseSuccess, Data: data}
	}()
	return done
}

// State returns the current lifecycle state.
func (c *Controller[T]) State() State[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Key returns the query key of the most recent Load.
func (c *Controller[T]) Key() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.key
}

// Close cancels any outstanding request. The state stops changing after
// Close returns; it is safe to call more than once.
func (c *Controller[T]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.gen++
}
