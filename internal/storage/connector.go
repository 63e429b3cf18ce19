package storage

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/goliatone/go-portal/internal/logging"
	"github.com/goliatone/go-portal/pkg/interfaces"
)

// ErrClosed is returned by Get after Close.
var ErrClosed = errors.New("storage: connector closed")

// Opener establishes a store handle. It is called at most once per
// successful connection.
type Opener func(ctx context.Context) (*Handle, error)

// Connector owns the single shared store handle. The first Get starts the
// connection; concurrent callers wait on the same in-flight attempt instead
// of opening their own. A failed attempt is forgotten so the next Get retries.
type Connector struct {
	open    Opener
	timeout time.Duration
	logger  interfaces.Logger

	mu       sync.Mutex
	handle   *Handle
	inflight *connectCall
	closed   bool
}

type connectCall struct {
	done   chan struct{}
	handle *Handle
	err    error
}

// ConnectorOption customises a Connector.
type ConnectorOption func(*Connector)

// WithConnectTimeout bounds a single connection attempt.
func WithConnectTimeout(timeout time.Duration) ConnectorOption {
	return func(c *Connector) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithLogger sets the connector logger.
func WithLogger(logger interfaces.Logger) ConnectorOption {
	return func(c *Connector) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewConnector wraps open with lazy connect-once semantics.
func NewConnector(open Opener, opts ...ConnectorOption) *Connector {
	c := &Connector{
		open:    open,
		timeout: 10 * time.Second,
		logger:  logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Get returns the shared handle, connecting on first use. ctx only bounds
// how long this caller waits; the attempt itself runs under the connect
// timeout so a cancelled caller does not fail the others.
func (c *Connector) Get(ctx context.Context) (*Handle, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	if c.handle != nil {
		handle := c.handle
		c.mu.Unlock()
		return handle, nil
	}
	call := c.inflight
	if call == nil {
		call = &connectCall{done: make(chan struct{})}
		c.inflight = call
		go c.connect(call)
	}
	c.mu.Unlock()

	select {
	case <-call.done:
		return call.handle, call.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Connector) connect(call *connectCall) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	started := time.Now()
	handle, err := c.open(ctx)

	c.mu.Lock()
	switch {
	case err != nil:
		c.logger.Error("storage.connect_failed", "error", err)
	case c.closed:
		_ = handle.Close(context.Background())
		handle, err = nil, ErrClosed
	default:
		c.handle = handle
		c.logger.Info("storage.connected", "provider", handle.Provider, "duration", time.Since(started).String())
	}
	c.inflight = nil
	call.handle, call.err = handle, err
	c.mu.Unlock()
	close(call.done)
}

// Connected reports whether a handle has been established.
func (c *Connector) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.handle != nil
}

// Close releases the handle. Later Get calls fail with ErrClosed.
func (c *Connector) Close(ctx context.Context) error {
	c.mu.Lock()
	handle := c.handle
	c.handle = nil
	c.closed = true
	c.mu.Unlock()

	if handle == nil {
		return nil
	}
	return handle.Close(ctx)
}
