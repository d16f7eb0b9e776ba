package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchURL(t *testing.T) {
	got, err := watchURL("http://localhost:8080", "m-1", "member")
	require.NoError(t, err)
	assert.Equal(t, "ws://localhost:8080/ws?actorId=m-1&role=member", got)

	got, err = watchURL("https://marina.example.com/api-gw/", "o-1", "owner")
	require.NoError(t, err)
	assert.Equal(t, "wss://marina.example.com/api-gw/ws?actorId=o-1&role=owner", got)

	_, err = watchURL("://bad", "m-1", "member")
	assert.Error(t, err)
}

func TestRunWatchStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	done := make(chan error, 1)
	go func() { done <- runWatch(ctx, "http://127.0.0.1:0", "m-1", "member", &out) }()

	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("runWatch kept retrying after cancellation")
	}
}
