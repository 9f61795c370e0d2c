package notify

import (
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"
)

const probeTimeout = 5 * time.Second

// Probe is a fire-and-forget liveness check of the delegated backend. It is
// purely advisory: the result is logged and discarded, no caller waits on
// it, and at most one probe is in flight at a time.
type Probe struct {
	client   *http.Client
	log      *slog.Logger
	inflight atomic.Bool
}

func NewProbe(log *slog.Logger) *Probe {
	return &Probe{
		client: &http.Client{Timeout: probeTimeout},
		log:    log,
	}
}

// Kick starts a background health check unless one is already running.
// It returns immediately.
func (p *Probe) Kick(baseURL string) {
	if !p.inflight.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer p.inflight.Store(false)

		url := strings.TrimRight(baseURL, "/") + "/health"
		start := time.Now()
		resp, err := p.client.Get(url)
		if err != nil {
			p.log.Warn("delegated backend health check failed", "url", url, "error", err)
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			p.log.Info("delegated backend healthy",
				"url", url, "status", resp.StatusCode, "dur_ms", time.Since(start).Milliseconds())
			return
		}
		p.log.Warn("delegated backend unhealthy", "url", url, "status", resp.StatusCode)
	}()
}
