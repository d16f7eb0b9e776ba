package http

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	platformHttp "github.com/harborlink/marina/internal/platform/http"
	"github.com/harborlink/marina/internal/store"
)

// HealthHandler handles health check endpoints
type HealthHandler struct{}

// NewHealthHandler creates a new health handler
func NewHealthHandler() *HealthHandler { return &HealthHandler{} }

// global health flag (1 = healthy, 0 = unhealthy)
var healthyFlag atomic.Int32

// lastProbeErr keeps the most recent dependency failure details.
var lastProbeErr atomic.Value // string

func init() {
	healthyFlag.Store(1)
	lastProbeErr.Store("")
}

// StartHealthMonitor launches a background goroutine that probes the
// store every interval.
func StartHealthMonitor(ctx context.Context, st store.Store, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		probe := func() {
			probeCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
			defer cancel()
			if err := st.HealthPing(probeCtx); err != nil {
				healthyFlag.Store(0)
				lastProbeErr.Store("store: " + err.Error())
				return
			}
			healthyFlag.Store(1)
			lastProbeErr.Store("")
		}

		// initial probe immediately
		probe()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				probe()
			}
		}
	}()
}

// CheckHealth handles GET /api/health
func (h *HealthHandler) CheckHealth(w http.ResponseWriter, r *http.Request) {
	if healthyFlag.Load() == 1 {
		response := map[string]interface{}{
			"status":    "UP",
			"message":   "Service is healthy",
			"timestamp": time.Now().Format(time.RFC3339),
		}
		platformHttp.WriteJSON(w, http.StatusOK, response)
		return
	}

	errMsg, _ := lastProbeErr.Load().(string)
	if errMsg == "" {
		errMsg = "One or more dependencies unavailable"
	}
	response := map[string]interface{}{
		"status":    "DOWN",
		"message":   errMsg,
		"timestamp": time.Now().Format(time.RFC3339),
	}
	platformHttp.WriteJSON(w, http.StatusInternalServerError, response)
}
