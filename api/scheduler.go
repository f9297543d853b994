/*
scheduler.go - Background result warm-up

PURPOSE:
  Periodically calculates the current and the next billing month so the
  result cache is warm and unconfigured swimmers are reported in the logs
  before anyone opens the billing page.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Goes through Handler.calculate, so results land in the result cache
  - Does not record runs; only explicit calculations are recorded

USAGE:
  scheduler := NewWarmupScheduler(handler)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - calculations.go: calculate
*/
package api

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/primeswim/tuition/generic"
)

// WarmupScheduler recalculates upcoming months in the background.
type WarmupScheduler struct {
	Handler       *Handler
	CheckInterval time.Duration
	Enabled       bool

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
	passes atomic.Int64
}

// NewWarmupScheduler creates a new scheduler.
func NewWarmupScheduler(handler *Handler) *WarmupScheduler {
	return &WarmupScheduler{
		Handler:       handler,
		CheckInterval: 1 * time.Hour,
		Enabled:       true,
		stop:          make(chan struct{}),
	}
}

// Start begins the scheduler.
func (ws *WarmupScheduler) Start() {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	log := ws.Handler.Logger
	if !ws.Enabled {
		log.Info("warm-up scheduler disabled")
		return
	}

	if ws.ticker != nil {
		return
	}

	ws.ticker = time.NewTicker(ws.CheckInterval)
	ws.stop = make(chan struct{})
	ws.wg.Add(1)

	go ws.run(ws.ticker, ws.stop)

	log.Info("warm-up scheduler started", zap.Duration("interval", ws.CheckInterval))
}

// Stop stops the scheduler and waits for an in-flight pass.
func (ws *WarmupScheduler) Stop() {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	if ws.ticker != nil {
		ws.ticker.Stop()
		close(ws.stop)
		ws.wg.Wait()
		ws.ticker = nil
		ws.Handler.Logger.Info("warm-up scheduler stopped")
	}
}

func (ws *WarmupScheduler) run(ticker *time.Ticker, stop <-chan struct{}) {
	defer ws.wg.Done()

	// Run immediately on start
	ws.pass()

	for {
		select {
		case <-ticker.C:
			ws.pass()
		case <-stop:
			return
		}
	}
}

func (ws *WarmupScheduler) pass() {
	ws.Warm(context.Background())
	ws.passes.Add(1)
}

// Passes reports how many background passes have completed.
func (ws *WarmupScheduler) Passes() int64 { return ws.passes.Load() }

// Months returns the months a pass covers: the current one and the next.
func (ws *WarmupScheduler) Months() []generic.Month {
	now := ws.Handler.now()
	current := generic.Month{Year: now.Year(), Month: now.Month()}
	return []generic.Month{current, current.Next()}
}

// Warm runs one pass and returns the number of months calculated.
func (ws *WarmupScheduler) Warm(ctx context.Context) int {
	log := ws.Handler.Logger
	done := 0
	for _, m := range ws.Months() {
		calc, err := ws.Handler.calculate(ctx, m.String(), false)
		if err != nil {
			log.Error("warm-up failed", zap.String("month", m.String()), zap.Error(err))
			continue
		}
		done++
		if n := calc.Result.NeedsConfigCount(); n > 0 {
			log.Warn("swimmers need configuration", zap.String("month", m.String()), zap.Int("count", n))
		}
	}
	return done
}
