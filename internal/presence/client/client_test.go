package client

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborlink/marina/internal/model"
)

type fakeConn struct {
	events    chan model.NotificationEvent
	closeOnce sync.Once
	done      chan struct{}
}

func newFakeConn(buffer int) *fakeConn {
	return &fakeConn{
		events: make(chan model.NotificationEvent, buffer),
		done:   make(chan struct{}),
	}
}

func (c *fakeConn) ReadEvent() (model.NotificationEvent, error) {
	select {
	case e, ok := <-c.events:
		if !ok {
			return model.NotificationEvent{}, errors.New("connection closed")
		}
		return e, nil
	case <-c.done:
		return model.NotificationEvent{}, errors.New("connection closed")
	}
}

func (c *fakeConn) Close() error {
	c.closeOnce.Do(func() { close(c.done) })
	return nil
}

type countingPrompter struct {
	calls   int
	granted bool
	err     error
}

func (p *countingPrompter) Request() (bool, error) {
	p.calls++
	return p.granted, p.err
}

func TestRunGivesUpAfterMaxAttempts(t *testing.T) {
	dials := 0
	c := New("ws://test", nil, zerolog.Nop(),
		WithMaxAttempts(3),
		WithInitialWait(time.Millisecond),
		WithDialFunc(func(ctx context.Context, url string) (Conn, error) {
			dials++
			return nil, errors.New("refused")
		}),
	)

	err := c.Run(context.Background())
	require.Error(t, err)
	// Initial attempt plus three retries.
	assert.Equal(t, 4, dials)
}

func TestRunDeliversEventsAndReconnects(t *testing.T) {
	var mu sync.Mutex
	var received []model.EventKind

	first := newFakeConn(1)
	second := newFakeConn(1)
	first.events <- model.NotificationEvent{Kind: model.EventWelcome}
	close(first.events)
	second.events <- model.NotificationEvent{Kind: model.EventReservationCreated}

	conns := make(chan Conn, 2)
	conns <- first
	conns <- second

	ctx, cancel := context.WithCancel(context.Background())
	c := New("ws://test", func(e model.NotificationEvent) {
		mu.Lock()
		received = append(received, e.Kind)
		if e.Kind == model.EventReservationCreated {
			cancel()
		}
		mu.Unlock()
	}, zerolog.Nop(),
		WithInitialWait(time.Millisecond),
		WithDialFunc(func(ctx context.Context, url string) (Conn, error) {
			select {
			case conn := <-conns:
				return conn, nil
			default:
				return nil, errors.New("no more connections")
			}
		}),
	)

	err := c.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []model.EventKind{model.EventWelcome, model.EventReservationCreated}, received)
}

func TestRunUnblocksBlockedReadOnCancel(t *testing.T) {
	conn := newFakeConn(0)
	c := New("ws://test", nil, zerolog.Nop(),
		WithDialFunc(func(ctx context.Context, url string) (Conn, error) {
			return conn, nil
		}),
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	// The connection never produces a frame, so the consumer sits in a
	// read with no deadline when the cancel arrives.
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}

func TestEnsurePermissionPromptsExactlyOnce(t *testing.T) {
	c := New("ws://test", nil, zerolog.Nop())
	p := &countingPrompter{granted: true}

	assert.Equal(t, PermissionGranted, c.EnsurePermission(p))
	assert.Equal(t, PermissionGranted, c.EnsurePermission(p))
	assert.Equal(t, PermissionGranted, c.EnsurePermission(p))
	assert.Equal(t, 1, p.calls)
}

func TestEnsurePermissionNeverRepromptsDenied(t *testing.T) {
	c := New("ws://test", nil, zerolog.Nop())
	p := &countingPrompter{granted: false}

	assert.Equal(t, PermissionDenied, c.EnsurePermission(p))
	p.granted = true
	assert.Equal(t, PermissionDenied, c.EnsurePermission(p))
	assert.Equal(t, 1, p.calls)
}

func TestEnsurePermissionRetriesAfterPromptError(t *testing.T) {
	c := New("ws://test", nil, zerolog.Nop())
	p := &countingPrompter{err: errors.New("platform busy")}

	assert.Equal(t, PermissionUnset, c.EnsurePermission(p))
	p.err = nil
	p.granted = true
	assert.Equal(t, PermissionGranted, c.EnsurePermission(p))
	assert.Equal(t, 2, p.calls)
}
