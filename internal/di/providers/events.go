package providers

import (
	"context"
	"time"

	"github.com/samber/do/v2"

	"github.com/barkeepapp/barkeep-server/internal/config"
	"github.com/barkeepapp/barkeep-server/internal/logger"
	"github.com/barkeepapp/barkeep-server/internal/ratelimit"
	"github.com/barkeepapp/barkeep-server/internal/sse"
)

// EventManagerHandle wraps the SSE manager with its broadcast loop
// lifecycle.
type EventManagerHandle struct {
	*sse.Manager
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *EventManagerHandle) Shutdown() error {
	ctx, cancelDrain := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelDrain()
	err := h.Manager.Shutdown(ctx)
	h.cancel()
	return err
}

// ProvideEventManager provides the import progress event stream.
func ProvideEventManager(i do.Injector) (*EventManagerHandle, error) {
	log := do.MustInvoke[*logger.Logger](i)

	manager := sse.NewManager(log.Logger)
	ctx, cancel := context.WithCancel(context.Background())
	go manager.Start(ctx)

	return &EventManagerHandle{Manager: manager, cancel: cancel}, nil
}

// ProvideRateLimiter provides the per-bar import submission throttle.
func ProvideRateLimiter(i do.Injector) (*ratelimit.Limiter, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return ratelimit.New(cfg.Import.RateRPS, cfg.Import.RateBurst), nil
}
