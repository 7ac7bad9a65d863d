package journal

import (
	"context"
	"log/slog"

	"github.com/mr1hm/go-rescue-command/internal/logging"
	"github.com/mr1hm/go-rescue-command/internal/models"
	"github.com/mr1hm/go-rescue-command/internal/repository"
	"github.com/mr1hm/go-rescue-command/internal/stream"
	"github.com/mr1hm/go-rescue-command/internal/worker"
)

// Relay forwards events to an external bus.
type Relay interface {
	Publish(ctx context.Context, e *models.Event) error
}

// Recorder is the dashboard's event sink. Events are queued on a worker
// pool that appends them to the journal, then fans them out to stream
// subscribers and the optional relay.
type Recorder struct {
	repo        repository.EventRepository
	broadcaster *stream.Broadcaster
	relay       Relay
	pool        *worker.Pool[*models.Event]
	log         *slog.Logger
}

// NewRecorder wires the sinks. broadcaster and relay may be nil.
func NewRecorder(repo repository.EventRepository, broadcaster *stream.Broadcaster, relay Relay, workers, buffer int) *Recorder {
	r := &Recorder{
		repo:        repo,
		broadcaster: broadcaster,
		relay:       relay,
		log:         logging.For("journal"),
	}
	r.pool = worker.NewPool[*models.Event]("journal", workers, buffer, r.process)
	return r
}

func (r *Recorder) Start(ctx context.Context) {
	r.pool.Start(ctx)
}

// Publish implements dashboard.EventSink.
func (r *Recorder) Publish(events ...*models.Event) {
	for _, e := range events {
		if !r.pool.Submit(e) {
			r.log.Warn("event dropped, journal stopped", "event_id", e.ID, "type", e.Type)
		}
	}
}

// Stop drains queued events and waits for the workers.
func (r *Recorder) Stop() {
	r.pool.Stop()
	r.log.Info("journal stopped")
}

func (r *Recorder) process(ctx context.Context, e *models.Event) error {
	if err := r.repo.Record(ctx, e); err != nil {
		return err
	}

	if r.broadcaster != nil {
		r.broadcaster.Broadcast(e)
	}

	if r.relay != nil {
		if err := r.relay.Publish(ctx, e); err != nil {
			// Journal already holds the event; relay loss is logged only.
			r.log.Warn("relay publish failed", "event_id", e.ID, "error", err)
		}
	}

	r.log.Debug("event recorded", "event_id", e.ID, "type", e.Type, "alert_id", e.AlertID)
	return nil
}
