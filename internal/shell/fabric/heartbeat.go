package fabric

import (
	"context"
	"log/slog"
	"sync"
	"time"

	corefabric "github.com/artpar/smoothstack/internal/core/fabric"
)

// HeartbeatConfig configures the fabric's background liveness loop.
type HeartbeatConfig struct {
	// Interval is the time between heartbeat cycles. Default: 5 seconds.
	Interval time.Duration

	// ProbeTimeout bounds a single channel's Ping call. Default: 5 seconds.
	ProbeTimeout time.Duration
}

// DefaultHeartbeatConfig returns the default configuration.
func DefaultHeartbeatConfig() HeartbeatConfig {
	return HeartbeatConfig{Interval: 5 * time.Second, ProbeTimeout: 5 * time.Second}
}

// Heartbeat periodically pings every registered channel's transport and
// publishes a synthetic heartbeat message, recording liveness on the
// registry's channel records.
type Heartbeat struct {
	registry *Registry
	config   HeartbeatConfig
	logger   *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewHeartbeat builds a Heartbeat loop over registry.
func NewHeartbeat(registry *Registry, config HeartbeatConfig, logger *slog.Logger) *Heartbeat {
	if config.Interval == 0 {
		config.Interval = 5 * time.Second
	}
	if config.ProbeTimeout == 0 {
		config.ProbeTimeout = 5 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Heartbeat{registry: registry, config: config, logger: logger.With("component", "fabric_heartbeat")}
}

// Start begins the background goroutine.
func (h *Heartbeat) Start() {
	h.ctx, h.cancel = context.WithCancel(context.Background())
	h.wg.Add(1)
	go h.run()
	h.logger.Info("fabric heartbeat started", "interval", h.config.Interval)
}

// Stop cancels the loop and waits for the in-flight cycle to finish.
func (h *Heartbeat) Stop() {
	if h.cancel != nil {
		h.cancel()
	}
	h.wg.Wait()
	h.logger.Info("fabric heartbeat stopped")
}

func (h *Heartbeat) run() {
	defer h.wg.Done()

	h.runCycle()

	ticker := time.NewTicker(h.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-h.ctx.Done():
			return
		case <-ticker.C:
			h.runCycle()
		}
	}
}

func (h *Heartbeat) runCycle() {
	transports := h.registry.snapshot()
	if len(transports) == 0 {
		return
	}

	var wg sync.WaitGroup
	for name, transport := range transports {
		wg.Add(1)
		go func(name string, transport Transport) {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(h.ctx, h.config.ProbeTimeout)
			defer cancel()

			err := transport.Ping(ctx)
			h.registry.setActive(name, err == nil)
			if err != nil {
				h.logger.Debug("channel unreachable", "channel", name, "error", err)
				return
			}
			if pubErr := transport.Publish(ctx, corefabric.NewHeartbeat()); pubErr != nil {
				h.logger.Debug("heartbeat publish failed", "channel", name, "error", pubErr)
			}
		}(name, transport)
	}
	wg.Wait()
}
