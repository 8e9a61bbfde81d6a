package refresh

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/alimurrofid/petualangan-cuan/internal/events"
	"github.com/alimurrofid/petualangan-cuan/internal/log"
)

// Refresher re-fetches one store and reports whether the fetch failed.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// RefresherFunc adapts a function to Refresher.
type RefresherFunc func(ctx context.Context) error

func (f RefresherFunc) Refresh(ctx context.Context) error { return f(ctx) }

// Coordinator runs the refresh plan for each event it receives.
// Refreshes run one after another; a failure is reported and the
// remaining targets still run. Nothing is rolled back.
type Coordinator struct {
	mu         sync.RWMutex
	refreshers map[Target]Refresher
	logger     *log.Logger
}

func NewCoordinator(logger *log.Logger) *Coordinator {
	if logger == nil {
		logger = log.Discard()
	}
	return &Coordinator{
		refreshers: make(map[Target]Refresher),
		logger:     logger.WithComponent(log.ComponentRefresh),
	}
}

// Register binds a store to a target, replacing any previous binding.
func (c *Coordinator) Register(t Target, r Refresher) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.refreshers[t] = r
}

// Attach subscribes the coordinator to bus and returns the unsubscribe func.
func (c *Coordinator) Attach(bus *events.Bus) func() {
	return bus.Subscribe("refresh", c.Handle)
}

// Handle implements events.Handler.
func (c *Coordinator) Handle(ctx context.Context, e events.Event) error {
	return c.Run(ctx, e.Kind)
}

// Run refreshes every target planned for kind, in order, and returns the
// joined refresh errors.
func (c *Coordinator) Run(ctx context.Context, kind events.Kind) error {
	var errs []error
	for _, target := range TargetsFor(kind) {
		c.mu.RLock()
		r, ok := c.refreshers[target]
		c.mu.RUnlock()
		if !ok {
			c.logger.DebugContext(ctx, "No store registered for target",
				log.FieldEvent, kind,
				log.FieldTarget, target)
			continue
		}

		start := time.Now()
		err := r.Refresh(ctx)
		c.logger.DebugContext(ctx, "Refreshed store",
			log.FieldEvent, kind,
			log.FieldTarget, target,
			log.FieldDuration, time.Since(start).Milliseconds(),
			log.FieldError, err)
		if err != nil {
			errs = append(errs, fmt.Errorf("refresh %s: %w", target, err))
		}
	}
	return errors.Join(errs...)
}
