package simulation

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/mr1hm/go-rescue-command/internal/dashboard"
	"github.com/mr1hm/go-rescue-command/internal/generator"
	"github.com/mr1hm/go-rescue-command/internal/generator/randtest"
	"github.com/mr1hm/go-rescue-command/internal/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// manualSource hands out a channel the test drives directly.
type manualSource struct {
	ch       chan time.Time
	released atomic.Int64
	interval time.Duration
}

func newManualSource() *manualSource {
	return &manualSource{ch: make(chan time.Time)}
}

func (m *manualSource) source(interval time.Duration) (<-chan time.Time, func()) {
	m.interval = interval
	return m.ch, func() { m.released.Add(1) }
}

type countingTarget struct {
	mu    sync.Mutex
	ticks int
	done  chan struct{}
}

func (c *countingTarget) Tick() (models.Alert, bool) {
	c.mu.Lock()
	c.ticks++
	c.mu.Unlock()
	if c.done != nil {
		c.done <- struct{}{}
	}
	return models.Alert{}, false
}

func (c *countingTarget) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ticks
}

func TestTicker_FiresOnEachTick(t *testing.T) {
	src := newManualSource()
	target := &countingTarget{done: make(chan struct{})}
	tk := NewTicker(0, target, src.source)

	if err := tk.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if src.interval != DefaultInterval {
		t.Errorf("expected default interval %s, got %s", DefaultInterval, src.interval)
	}

	for i := 0; i < 3; i++ {
		src.ch <- time.Now()
		<-target.done
	}

	tk.Stop()

	if target.count() != 3 {
		t.Errorf("expected 3 ticks, got %d", target.count())
	}
	if src.released.Load() != 1 {
		t.Errorf("expected tick source released once, got %d", src.released.Load())
	}
}

func TestTicker_NoTicksAfterStop(t *testing.T) {
	src := newManualSource()
	target := &countingTarget{}
	tk := NewTicker(time.Second, target, src.source)

	if err := tk.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	tk.Stop()

	// Nobody is reading the channel any more.
	select {
	case src.ch <- time.Now():
		t.Fatal("tick delivered after Stop")
	case <-time.After(20 * time.Millisecond):
	}

	if target.count() != 0 {
		t.Errorf("expected 0 ticks, got %d", target.count())
	}
	if tk.Running() {
		t.Error("expected ticker to report stopped")
	}
}

func TestTicker_SingleLoop(t *testing.T) {
	src := newManualSource()
	tk := NewTicker(time.Second, &countingTarget{}, src.source)

	if err := tk.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer tk.Stop()

	if err := tk.Start(context.Background()); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("expected ErrAlreadyRunning, got %v", err)
	}
}

func TestTicker_StopIsIdempotentAndRestartable(t *testing.T) {
	src := newManualSource()
	target := &countingTarget{done: make(chan struct{})}
	tk := NewTicker(time.Second, target, src.source)

	tk.Stop()

	if err := tk.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	tk.Stop()
	tk.Stop()

	if err := tk.Start(context.Background()); err != nil {
		t.Fatalf("restart failed: %v", err)
	}
	src.ch <- time.Now()
	<-target.done
	tk.Stop()

	if target.count() != 1 {
		t.Errorf("expected 1 tick, got %d", target.count())
	}
}

func TestTicker_ParentContextCancel(t *testing.T) {
	src := newManualSource()
	tk := NewTicker(time.Second, &countingTarget{}, src.source)

	ctx, cancel := context.WithCancel(context.Background())
	if err := tk.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	cancel()

	done := make(chan struct{})
	go func() {
		tk.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("ticker.Stop() timed out")
	}
}

func TestTicker_ParentCancelAllowsRestart(t *testing.T) {
	src := newManualSource()
	target := &countingTarget{done: make(chan struct{})}
	tk := NewTicker(time.Second, target, src.source)

	ctx, cancel := context.WithCancel(context.Background())
	if err := tk.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	cancel()

	deadline := time.Now().Add(5 * time.Second)
	for tk.Running() {
		if time.Now().After(deadline) {
			t.Fatal("ticker still reports running after parent cancel")
		}
		time.Sleep(time.Millisecond)
	}

	if err := tk.Start(context.Background()); err != nil {
		t.Fatalf("restart after parent cancel failed: %v", err)
	}
	src.ch <- time.Now()
	<-target.done
	tk.Stop()

	if target.count() != 1 {
		t.Errorf("expected 1 tick after restart, got %d", target.count())
	}
}

func TestTicker_DrivesDashboardCapacity(t *testing.T) {
	src := newManualSource()
	rnd := randtest.New()
	d := dashboard.New(dashboard.Options{
		AlertProbability: 1,
		Random:           rnd,
		SeedAlerts:       generator.DefaultSeedCount,
	})
	tk := NewTicker(time.Millisecond, d, src.source)

	if err := tk.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	for i := 0; i < 50; i++ {
		src.ch <- time.Now()
	}
	tk.Stop()

	alerts := d.Alerts()
	if len(alerts) != dashboard.DefaultCapacity {
		t.Fatalf("expected %d alerts, got %d", dashboard.DefaultCapacity, len(alerts))
	}
	// The send of the last tick returns before Tick runs, so the newest id
	// is either the 50th or 49th generated alert.
	newest := alerts[0].ID
	if newest < generator.StartID+generator.DefaultSeedCount+49 {
		t.Errorf("unexpected newest id %d", newest)
	}
}

func TestTicker_RealClock(t *testing.T) {
	target := &countingTarget{}
	tk := NewTicker(5*time.Millisecond, target, nil)

	if err := tk.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	time.Sleep(40 * time.Millisecond)
	tk.Stop()

	n := target.count()
	if n == 0 {
		t.Error("expected at least one tick from the real clock")
	}
	time.Sleep(20 * time.Millisecond)
	if target.count() != n {
		t.Errorf("tick fired after Stop: %d -> %d", n, target.count())
	}
}
