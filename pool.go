package wiredis

import (
	"context"
	"sync"
	"time"

	"wiredis/internal/logger"
)

// drainPollInterval bounds how long Drain(wait=true) waits between
// checking for a newly idled connection while held connections are still
// outstanding.
const drainPollInterval = 10 * time.Millisecond

// Pool is a bounded FIFO of Connections sharing identical connection
// parameters (spec.md §4.5). At all times held+available<=size; size is
// fixed at construction.
type Pool struct {
	opts Options
	size int

	mu      sync.Mutex
	held    int
	idle    chan *Connection
	nextGen uint64
}

// NewPool constructs a Pool with the given fixed capacity. Connections are
// created lazily on first Get (or eagerly via Init).
func NewPool(opts Options, size int) *Pool {
	if size <= 0 {
		panic("wiredis: pool size must be positive")
	}
	return &Pool{
		opts: opts,
		size: size,
		idle: make(chan *Connection, size),
	}
}

// newConnection dials a fresh Connection using the pool's parameters.
func (p *Pool) newConnection(ctx context.Context) (*Connection, error) {
	c := New(p.opts)
	if err := c.Connect(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// ensureLive replaces conn with a freshly connected Connection if conn is
// closed, logging the replacement (spec.md's "liveness-replacement").
func (p *Pool) ensureLive(ctx context.Context, conn *Connection) (*Connection, error) {
	if !conn.IsClosed() {
		return conn, nil
	}
	logger.Warnf("wiredis: pool %p replacing closed connection", p)
	return p.newConnection(ctx)
}

// Get checks out a Connection: if the idle FIFO is empty and held<size, a
// new Connection is created; otherwise one is dequeued from idle and
// replaced if it was found closed. The held<size check and its
// reservation (held++) happen atomically under the same lock acquisition,
// so two concurrent callers racing the capacity check cannot both reserve
// the last slot; the dial itself still happens unlocked, and a failed
// dial releases the reservation.
func (p *Pool) Get(ctx context.Context) (*Connection, error) {
	p.mu.Lock()
	var idle *Connection
	createNew := false
	select {
	case idle = <-p.idle:
	default:
		if p.held < p.size {
			createNew = true
			p.held++
		}
	}
	p.mu.Unlock()

	var conn *Connection
	var err error
	switch {
	case createNew:
		conn, err = p.newConnection(ctx)
		if err != nil {
			p.mu.Lock()
			p.held--
			p.mu.Unlock()
			return nil, err
		}
	case idle != nil:
		conn, err = p.ensureLive(ctx, idle)
		if err != nil {
			return nil, err
		}
		p.mu.Lock()
		p.held++
		p.mu.Unlock()
	default:
		// Pool is at capacity with nothing idle: block for a release.
		select {
		case idle = <-p.idle:
			conn, err = p.ensureLive(ctx, idle)
			if err != nil {
				return nil, err
			}
			p.mu.Lock()
			p.held++
			p.mu.Unlock()
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	p.mu.Lock()
	p.nextGen++
	conn.checkoutGen = p.nextGen
	p.mu.Unlock()
	return conn, nil
}

// Put returns conn to the pool: it is revived if found closed, then
// enqueued, and held is decremented. Returning a Connection whose checkout
// mark is unset (a double return, or a Connection never handed out by Get)
// is rejected with a ClientError and leaves held untouched, resolving
// spec.md's Open Question about held underflowing on a bogus return. The
// mark does not record which Pool set it, so a Connection currently
// checked out from a different Pool is accepted.
func (p *Pool) Put(ctx context.Context, conn *Connection) error {
	p.mu.Lock()
	if conn.checkoutGen == 0 {
		p.mu.Unlock()
		return clientErr("pool: returned connection was not checked out from this pool")
	}
	conn.checkoutGen = 0
	p.mu.Unlock()

	live, err := p.ensureLive(ctx, conn)
	if err != nil {
		p.mu.Lock()
		p.held--
		p.mu.Unlock()
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.idle) >= p.size {
		return clientErr("pool: idle FIFO is full")
	}
	p.idle <- live
	p.held--
	return nil
}

// Acquire checks out a Connection, runs fn with it, and always returns it
// to the pool on exit (including on a failing fn), the Go analogue of
// spec.md's acquire() scoped context manager.
func (p *Pool) Acquire(ctx context.Context, fn func(*Connection) error) error {
	conn, err := p.Get(ctx)
	if err != nil {
		return err
	}
	fnErr := fn(conn)
	if putErr := p.Put(ctx, conn); putErr != nil && fnErr == nil {
		return putErr
	}
	return fnErr
}

// Init fills the idle FIFO up to size-held-available with freshly
// connected Connections.
func (p *Pool) Init(ctx context.Context) error {
	p.mu.Lock()
	n := p.size - p.held - len(p.idle)
	p.mu.Unlock()

	for i := 0; i < n; i++ {
		conn, err := p.newConnection(ctx)
		if err != nil {
			return err
		}
		p.mu.Lock()
		p.idle <- conn
		p.mu.Unlock()
	}
	return nil
}

// Drain closes every idle Connection until the FIFO is empty. If wait is
// true, it also keeps draining Connections as they are released by
// outstanding Acquire/Get callers, until held reaches zero. Drain never
// fails on an individual Close error (best effort); after Drain the Pool
// is reusable, since a subsequent Get will simply dial again.
func (p *Pool) Drain(wait bool) {
	closeIdle := func(conn *Connection) {
		if err := conn.Close(); err != nil {
			logger.Debugf("wiredis: drain: close failed: %v", err)
		}
	}
	for {
		select {
		case conn := <-p.idle:
			closeIdle(conn)
			continue
		default:
		}
		if !wait || p.Held() == 0 {
			return
		}
		select {
		case conn := <-p.idle:
			closeIdle(conn)
		case <-time.After(drainPollInterval):
		}
	}
}

// Held returns the number of Connections currently checked out.
func (p *Pool) Held() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.held
}

// Available returns the number of idle Connections currently queued.
func (p *Pool) Available() int { return len(p.idle) }

// Locked reports whether the checkout decision lock is currently held.
// This is inherently racy (the answer can change the instant it is
// observed) and exists only for the same diagnostic purpose spec.md's
// `locked` property serves.
func (p *Pool) Locked() bool {
	locked := !p.mu.TryLock()
	if !locked {
		p.mu.Unlock()
	}
	return locked
}
