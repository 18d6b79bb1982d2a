package repositories

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
)

// HealthProbe performs a trivial round-trip against the durable store.
// The cached result is a routing hint only: the fallback facade still
// attempts the primary on every call.
type HealthProbe struct {
	client  *mongo.Client
	logger  *logrus.Logger
	timeout time.Duration

	mu        sync.RWMutex
	available bool
	checkedAt time.Time
}

func NewHealthProbe(client *mongo.Client, logger *logrus.Logger, timeout time.Duration) *HealthProbe {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &HealthProbe{
		client:  client,
		logger:  logger,
		timeout: timeout,
	}
}

// Check pings the durable store once, logs the outcome and caches it.
// No retries are performed here.
func (p *HealthProbe) Check(ctx context.Context) bool {
	pingCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	err := p.client.Ping(pingCtx, nil)

	p.mu.Lock()
	p.available = err == nil
	p.checkedAt = time.Now()
	p.mu.Unlock()

	if err != nil {
		p.logger.Warnf("Event ID: DB_PROBE_FAILED, Description: Durable store unreachable: %v", err)
		return false
	}
	p.logger.Info("Event ID: DB_PROBE_OK, Description: Durable store reachable.")
	return true
}

// Available returns the last cached probe result.
func (p *HealthProbe) Available() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.available
}

// Run re-checks on a fixed interval until ctx is cancelled.
func (p *HealthProbe) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Check(ctx)
		}
	}
}
