package listview

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"time"
)

// PageResult is one page returned by a server-side fetch.
type PageResult[T any] struct {
	Items []T
	Total int
}

// Fetcher loads one page for the given upstream query.
type Fetcher[T any] func(ctx context.Context, query url.Values) (PageResult[T], error)

// Snapshot is what a server-side view renders after a fetch.
type Snapshot[T any] struct {
	State  State
	Items  []T
	Window PageWindow
	Err    error
}

// Controller drives a server-side table. Search changes are debounced;
// every other change fetches immediately. A newer fetch cancels the one in
// flight, and results of cancelled fetches are dropped.
type Controller[T any] struct {
	cfg     Config[T]
	fetch   Fetcher[T]
	deliver func(Snapshot[T])

	mu       sync.Mutex
	parent   context.Context
	state    State
	timer    *time.Timer
	timerGen uint64
	cancel   context.CancelFunc
	seq      uint64
	closed   bool
	inflight sync.WaitGroup
}

// NewController creates a controller bound to ctx; cancelling ctx has the
// same effect as Close. deliver is called with the controller's lock held
// and must not call back into the controller.
func NewController[T any](ctx context.Context, cfg Config[T], fetch Fetcher[T], deliver func(Snapshot[T])) *Controller[T] {
	c := &Controller[T]{
		cfg:     cfg,
		fetch:   fetch,
		deliver: deliver,
		parent:  ctx,
		state:   cfg.NewState(),
	}
	context.AfterFunc(ctx, c.Close)
	return c
}

// State returns a copy of the current state.
func (c *Controller[T]) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// Refresh fetches the current state now.
func (c *Controller[T]) Refresh() {
	c.mutate(false, func(*State) {})
}

// SetSearch schedules a fetch once the debounce window passes without
// further search edits.
func (c *Controller[T]) SetSearch(q string) {
	c.mutate(true, func(s *State) { s.SetSearch(q) })
}

func (c *Controller[T]) SetFilter(key, value string) {
	c.mutate(false, func(s *State) { s.SetFilter(key, value) })
}

func (c *Controller[T]) SetTokensRange(minTokens, maxTokens *int) {
	c.mutate(false, func(s *State) { s.SetTokensRange(minTokens, maxTokens) })
}

func (c *Controller[T]) SetSort(by string, order SortOrder) {
	c.mutate(false, func(s *State) { s.SetSort(by, order) })
}

func (c *Controller[T]) SetPage(n int) {
	c.mutate(false, func(s *State) { s.SetPage(n) })
}

func (c *Controller[T]) SetLimit(n int) {
	c.mutate(false, func(s *State) { s.SetLimit(min(n, MaxLimit)) })
}

func (c *Controller[T]) mutate(debounced bool, change func(*State)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	change(&c.state)

	// A timer that already fired may be waiting on the lock; the
	// generation check in fire makes it a no-op.
	c.timerGen++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if debounced {
		gen := c.timerGen
		c.timer = time.AfterFunc(c.cfg.debounce(), func() { c.fire(gen) })
		return
	}
	c.startLocked()
}

func (c *Controller[T]) fire(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || gen != c.timerGen {
		return
	}
	c.timer = nil
	c.startLocked()
}

// startLocked cancels any fetch in flight and starts a new one.
func (c *Controller[T]) startLocked() {
	if c.cancel != nil {
		c.cancel()
	}
	c.seq++
	seq := c.seq
	ctx, cancel := context.WithCancel(c.parent)
	c.cancel = cancel
	state := c.state.Clone()
	query := c.cfg.Query(state)

	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()
		defer cancel()

		res, err := c.fetch(ctx, query)

		c.mu.Lock()
		defer c.mu.Unlock()
		if c.closed || seq != c.seq || ctx.Err() != nil {
			return
		}
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			c.deliver(Snapshot[T]{State: state, Window: WindowFor(state.Page), Err: err})
			return
		}

		c.state.Page.Total = res.Total
		state.Page.Total = res.Total
		clamped := state.Page.Clamp()
		if clamped.Page != state.Page.Page && res.Total > 0 {
			// The requested page no longer exists; fetch the last one.
			c.state.Page.Page = clamped.Page
			c.startLocked()
			return
		}
		state.Page = clamped
		c.deliver(Snapshot[T]{
			State:  state,
			Items:  res.Items,
			Window: WindowFor(state.Page),
		})
	}()
}

// Close cancels any pending debounce and fetch. Later changes are ignored.
func (c *Controller[T]) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if c.cancel != nil {
		c.cancel()
	}
	c.mu.Unlock()
}

// Wait blocks until every started fetch has returned. Used on shutdown and
// in tests.
func (c *Controller[T]) Wait() {
	c.inflight.Wait()
}
