package monitoring

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/spacesedan/sentidash/internal/metrics"
)

const HEALTHCHECK_TIMER = 15 * time.Second

type Pinger interface {
	Ping(ctx context.Context) error
}

// CheckHealth pings once and records the outcome in healthy.
func CheckHealth(ctx context.Context, name string, p Pinger, healthy *atomic.Bool) bool {
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	err := p.Ping(pingCtx)
	isHealthy := err == nil
	wasHealthy := healthy.Swap(isHealthy)
	metrics.SetHealthy(name, isHealthy)

	switch {
	case !isHealthy:
		slog.Warn("[HealthCheck] Dependency is unhealthy",
			slog.String("dependency", name),
			slog.String("error", err.Error()))
	case !wasHealthy:
		slog.Info("[HealthCheck] Dependency recovered",
			slog.String("dependency", name))
	}
	return isHealthy
}

// MonitorHealth checks p every interval until ctx is done.
func MonitorHealth(ctx context.Context, name string, p Pinger, healthy *atomic.Bool, interval time.Duration) {
	if interval <= 0 {
		interval = HEALTHCHECK_TIMER
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			CheckHealth(ctx, name, p, healthy)
		}
	}
}
