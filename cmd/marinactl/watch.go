package main

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/harborlink/marina/internal/model"
	"github.com/harborlink/marina/internal/platform/logger"
	"github.com/harborlink/marina/internal/presence/client"
)

// runWatch keeps a live presence connection open and prints each
// notification as it arrives. The client reconnects on its own when the
// connection drops.
func runWatch(ctx context.Context, apiURL, actorID, role string, out io.Writer) error {
	wsURL, err := watchURL(apiURL, actorID, role)
	if err != nil {
		return err
	}

	log := logger.New("marinactl")
	c := client.New(wsURL, func(event model.NotificationEvent) {
		fmt.Fprintf(out, "[%s] %s: %s\n", event.Priority, event.Kind, event.Message)
	}, log)

	fmt.Fprintf(out, "watching notifications for %s (ctrl-c to stop)\n", actorID)
	return c.Run(ctx)
}

func watchURL(apiURL, actorID, role string) (string, error) {
	u, err := url.Parse(apiURL)
	if err != nil {
		return "", fmt.Errorf("invalid api url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/ws"
	q := u.Query()
	q.Set("actorId", actorID)
	q.Set("role", role)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
