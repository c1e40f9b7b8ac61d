package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/gamescribe/pkg/logging"
)

// Browser is the slice of playwright.Browser the connector depends on,
// narrowed so tests can substitute a fake.
type Browser interface {
	IsConnected() bool
	NewContext(options ...playwright.BrowserNewContextOptions) (playwright.BrowserContext, error)
	Close(options ...playwright.BrowserCloseOptions) error
	On(name string, handler interface{})
}

// Connection is the shared handle to a live remote browser session. It is
// owned exclusively by the Connector; workspaces read it but never mutate
// its state.
type Connection struct {
	Browser   Browser
	CreatedAt time.Time
}

// DialFunc establishes one connection attempt to the remote endpoint.
type DialFunc func(ctx context.Context) (Browser, error)

// RetryPolicy controls connection retries: up to MaxAttempts dials with a
// linearly increasing delay between them (Backoff x attempt number).
type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration
}

// Delay returns the pause before the attempt following the given one.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return p.Backoff * time.Duration(attempt)
}

type connectResult struct {
	conn *Connection
	err  error
}

// Connector maintains the single shared connection to the remote
// browser-control endpoint. Invariant: at most one live connection exists;
// a new one is dialed only once the prior one is confirmed dead.
type Connector struct {
	log   *logging.Logger
	dial  DialFunc
	retry RetryPolicy

	mu         sync.Mutex
	conn       *Connection
	connecting bool
	waiters    []chan connectResult
}

// NewConnector creates a connector around the given dial function.
func NewConnector(dial DialFunc, retry RetryPolicy, log *logging.Logger) *Connector {
	if retry.MaxAttempts < 1 {
		retry.MaxAttempts = 1
	}
	return &Connector{log: log, dial: dial, retry: retry}
}

// Ensure returns the live shared connection, dialing if necessary. Callers
// that observe a dial already in progress wait for its outcome rather than
// starting a second attempt. When every attempt in the retry budget fails,
// all current waiters receive the same ErrConnect.
func (c *Connector) Ensure(ctx context.Context) (*Connection, error) {
	c.mu.Lock()
	if c.conn != nil && c.conn.Browser.IsConnected() {
		conn := c.conn
		c.mu.Unlock()
		return conn, nil
	}
	c.conn = nil

	if c.connecting {
		ch := make(chan connectResult, 1)
		c.waiters = append(c.waiters, ch)
		c.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case res := <-ch:
			return res.conn, res.err
		}
	}

	c.connecting = true
	c.mu.Unlock()

	conn, err := c.connect(ctx)

	c.mu.Lock()
	c.connecting = false
	if err == nil {
		c.conn = conn
	}
	waiters := c.waiters
	c.waiters = nil
	c.mu.Unlock()

	for _, ch := range waiters {
		ch <- connectResult{conn: conn, err: err}
	}
	return conn, err
}

func (c *Connector) connect(ctx context.Context) (*Connection, error) {
	var lastErr error
	for attempt := 1; attempt <= c.retry.MaxAttempts; attempt++ {
		if attempt > 1 {
			delay := c.retry.Delay(attempt - 1)
			c.log.Infof("retrying browser connection in %v (attempt %d/%d)", delay, attempt, c.retry.MaxAttempts)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		browser, err := c.dial(ctx)
		if err != nil {
			lastErr = err
			c.log.Warnf("browser connection attempt %d failed: %v", attempt, err)
			continue
		}

		conn := &Connection{Browser: browser, CreatedAt: time.Now()}
		browser.On("disconnected", func() {
			c.dropConnection(conn)
		})
		c.log.Infof("browser connected (attempt %d)", attempt)
		return conn, nil
	}
	return nil, fmt.Errorf("%w after %d attempts: %v", ErrConnect, c.retry.MaxAttempts, lastErr)
}

// dropConnection clears the shared handle when the remote side goes away,
// so the next Ensure dials fresh. Only the connection that disconnected is
// cleared; a newer one stays untouched.
func (c *Connector) dropConnection(conn *Connection) {
	c.mu.Lock()
	if c.conn == conn {
		c.conn = nil
	}
	c.mu.Unlock()
	c.log.Warnf("browser disconnected, connection handle cleared")
}

// Connected reports whether a live connection is currently held.
func (c *Connector) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil && c.conn.Browser.IsConnected()
}

// Close tears down the shared connection if one exists.
func (c *Connector) Close() {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	if conn != nil {
		if err := conn.Browser.Close(); err != nil {
			c.log.Debugf("browser close: %v", err)
		}
	}
}
