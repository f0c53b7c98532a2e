package state

import "sync"

// Subscriber observes every state change.
type Subscriber func(AppState)

// Handle identifies a registered subscriber for removal.
type Handle int

// Container owns the session snapshot. Merge and Reset are the only
// mutation entry points; subscribers are notified in registration order.
// A merge issued from inside a subscriber is queued and delivered after
// the current notification pass, so notification never re-enters.
type Container struct {
	mu          sync.Mutex
	state       AppState
	subscribers []subscription
	nextHandle  Handle

	notifying bool
	queued    []Partial
}

type subscription struct {
	handle Handle
	fn     Subscriber
}

// NewContainer builds a Container holding the initial empty shape.
func NewContainer() *Container {
	return &Container{state: Initial(), nextHandle: 1}
}

// Read returns the current snapshot.
func (c *Container) Read() AppState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Subscribe registers a listener and returns its removal handle.
func (c *Container) Subscribe(fn Subscriber) Handle {
	c.mu.Lock()
	defer c.mu.Unlock()
	h := c.nextHandle
	c.nextHandle++
	c.subscribers = append(c.subscribers, subscription{handle: h, fn: fn})
	return h
}

// Unsubscribe removes a listener by handle.
func (c *Container) Unsubscribe(h Handle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, sub := range c.subscribers {
		if sub.handle == h {
			c.subscribers = append(c.subscribers[:i], c.subscribers[i+1:]...)
			return
		}
	}
}

// Merge shallow-merges the partial into the snapshot and notifies
// subscribers with the merged result.
func (c *Container) Merge(p Partial) {
	c.mu.Lock()
	if c.notifying {
		// Re-entrant merge from a subscriber: batch it onto this pass.
		c.queued = append(c.queued, p)
		c.mu.Unlock()
		return
	}
	p.applyTo(&c.state)
	c.notifying = true
	snap := c.state
	subs := c.snapshotSubscribers()
	c.mu.Unlock()

	for {
		for _, sub := range subs {
			sub.fn(snap)
		}
		c.mu.Lock()
		if len(c.queued) == 0 {
			c.notifying = false
			c.mu.Unlock()
			return
		}
		pending := c.queued
		c.queued = nil
		for _, q := range pending {
			q.applyTo(&c.state)
		}
		snap = c.state
		subs = c.snapshotSubscribers()
		c.mu.Unlock()
	}
}

// Reset restores the initial empty shape. Invoked once per logout.
func (c *Container) Reset() {
	c.mu.Lock()
	if c.notifying {
		c.mu.Unlock()
		c.Merge(resetPartial())
		return
	}
	c.state = Initial()
	c.notifying = true
	snap := c.state
	subs := c.snapshotSubscribers()
	c.mu.Unlock()

	for _, sub := range subs {
		sub.fn(snap)
	}
	c.mu.Lock()
	queued := c.queued
	c.queued = nil
	c.notifying = false
	c.mu.Unlock()
	for _, q := range queued {
		c.Merge(q)
	}
}

func (c *Container) snapshotSubscribers() []subscription {
	out := make([]subscription, len(c.subscribers))
	copy(out, c.subscribers)
	return out
}

func resetPartial() Partial {
	init := Initial()
	return Partial{
		Profile:        &init.Profile,
		Capital:        &init.Capital,
		Stock:          &init.Stock,
		Sales:          &init.Sales,
		Clients:        &init.Clients,
		Categories:     &init.Categories,
		Debts:          &init.Debts,
		CapitalHistory: &init.CapitalHistory,
		IsDataLoading:  &init.IsDataLoading,
	}
}
