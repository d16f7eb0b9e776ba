// Package client is the consumer-side counterpart of the presence
// service: it keeps one live connection to the hub, reconnecting with
// bounded exponential backoff when the connection drops.
package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/harborlink/marina/internal/model"
)

// Conn is one established channel to the hub.
type Conn interface {
	ReadEvent() (model.NotificationEvent, error)
	Close() error
}

// DialFunc establishes a connection. Tests substitute in-memory fakes.
type DialFunc func(ctx context.Context, url string) (Conn, error)

// Permission is the platform notification permission latch.
type Permission string

const (
	PermissionUnset   Permission = "unset"
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

// Prompter asks the platform for notification permission. It is invoked
// at most once per client lifetime.
type Prompter interface {
	Request() (granted bool, err error)
}

type Client struct {
	url         string
	dial        DialFunc
	handler     func(model.NotificationEvent)
	maxAttempts uint64
	initialWait time.Duration
	log         zerolog.Logger

	mu         sync.Mutex
	permission Permission
}

type Option func(*Client)

// WithDialFunc replaces the websocket dialer.
func WithDialFunc(d DialFunc) Option {
	return func(c *Client) { c.dial = d }
}

// WithMaxAttempts bounds how many consecutive failed dials are retried
// before Run gives up.
func WithMaxAttempts(n uint64) Option {
	return func(c *Client) { c.maxAttempts = n }
}

// WithInitialWait sets the first backoff delay.
func WithInitialWait(d time.Duration) Option {
	return func(c *Client) { c.initialWait = d }
}

func New(url string, handler func(model.NotificationEvent), log zerolog.Logger, opts ...Option) *Client {
	c := &Client{
		url:         url,
		dial:        dialWebsocket,
		handler:     handler,
		maxAttempts: 5,
		initialWait: 500 * time.Millisecond,
		log:         log,
		permission:  PermissionUnset,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// EnsurePermission requests platform notification permission exactly
// once. Previously granted or denied outcomes are never re-prompted.
func (c *Client) EnsurePermission(p Prompter) Permission {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.permission != PermissionUnset {
		return c.permission
	}
	granted, err := p.Request()
	if err != nil {
		// Leave the latch unset so a later call may retry the prompt.
		c.log.Warn().Err(err).Msg("permission prompt failed")
		return PermissionUnset
	}
	if granted {
		c.permission = PermissionGranted
	} else {
		c.permission = PermissionDenied
	}
	return c.permission
}

// Permission returns the current latch state.
func (c *Client) Permission() Permission {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.permission
}

// Run connects and consumes events until ctx is cancelled. A dropped
// connection is re-dialed with exponential backoff; the attempt counter
// resets after every successful connect. Run returns a non-nil error
// when the attempt budget is exhausted.
func (c *Client) Run(ctx context.Context) error {
	for {
		conn, err := c.connect(ctx)
		if err != nil {
			return err
		}

		c.consume(ctx, conn)
		_ = conn.Close()

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		c.log.Info().Msg("connection lost, reconnecting")
	}
}

func (c *Client) connect(ctx context.Context) (Conn, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.initialWait
	policy := backoff.WithContext(backoff.WithMaxRetries(bo, c.maxAttempts), ctx)

	var conn Conn
	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		var dialErr error
		conn, dialErr = c.dial(ctx, c.url)
		if dialErr != nil {
			c.log.Warn().Err(dialErr).Int("attempt", attempt).Msg("dial failed")
		}
		return dialErr
	}, policy)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", c.url, err)
	}
	return conn, nil
}

func (c *Client) consume(ctx context.Context, conn Conn) {
	// ReadEvent blocks with no deadline, so cancellation closes the
	// connection out from under it to unblock the read.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	for {
		event, err := conn.ReadEvent()
		if err != nil {
			return
		}
		if c.handler != nil {
			c.handler(event)
		}
	}
}

// dialWebsocket is the production dialer.
func dialWebsocket(ctx context.Context, url string) (Conn, error) {
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	return &wsConn{ws: ws}, nil
}

type wsConn struct {
	ws *websocket.Conn
}

func (c *wsConn) ReadEvent() (model.NotificationEvent, error) {
	var event model.NotificationEvent
	err := c.ws.ReadJSON(&event)
	return event, err
}

func (c *wsConn) Close() error { return c.ws.Close() }
