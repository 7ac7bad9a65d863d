package simulation

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/mr1hm/go-rescue-command/internal/logging"
	"github.com/mr1hm/go-rescue-command/internal/models"
)

const DefaultInterval = 8 * time.Second

var ErrAlreadyRunning = errors.New("ticker already running")

// Target applies one tick of the alert injection policy.
type Target interface {
	Tick() (models.Alert, bool)
}

// TickSource yields a tick channel for the interval and a func releasing it.
type TickSource func(interval time.Duration) (<-chan time.Time, func())

func realTicks(interval time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(interval)
	return t.C, t.Stop
}

// Ticker drives a Target on a fixed period. At most one loop runs per Ticker.
type Ticker struct {
	interval time.Duration
	target   Target
	source   TickSource
	log      *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	runID  uint64
	wg     sync.WaitGroup
}

func NewTicker(interval time.Duration, target Target, source TickSource) *Ticker {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if source == nil {
		source = realTicks
	}
	return &Ticker{
		interval: interval,
		target:   target,
		source:   source,
		log:      logging.For("ticker"),
	}
}

func (t *Ticker) Start(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cancel != nil {
		return ErrAlreadyRunning
	}

	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	t.runID++

	ticks, release := t.source(t.interval)
	t.wg.Add(1)
	go t.run(ctx, t.runID, ticks, release)
	return nil
}

func (t *Ticker) run(ctx context.Context, id uint64, ticks <-chan time.Time, release func()) {
	defer t.wg.Done()
	defer release()
	defer t.finish(id)
	t.log.Info("starting ticker", "interval", t.interval)

	for {
		select {
		case <-ctx.Done():
			t.log.Info("ticker shutting down")
			return
		case <-ticks:
			// select picks randomly among ready cases; never fire once cancelled
			if ctx.Err() != nil {
				return
			}
			if a, ok := t.target.Tick(); ok {
				t.log.Debug("tick generated alert", "alert_id", a.ID)
			}
		}
	}
}

// finish clears the running state when a loop ends because its parent
// context was cancelled, so Start works again without a Stop.
func (t *Ticker) finish(id uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.runID == id && t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
}

// Stop cancels the loop and waits for it to exit. No tick fires after Stop
// returns. Stop is safe to call more than once; a stopped Ticker can be
// started again.
func (t *Ticker) Stop() {
	t.mu.Lock()
	cancel := t.cancel
	t.cancel = nil
	t.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	t.wg.Wait()
}

func (t *Ticker) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancel != nil
}
