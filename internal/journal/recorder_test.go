package journal

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/mr1hm/go-rescue-command/internal/models"
	"github.com/mr1hm/go-rescue-command/internal/repository"
	"github.com/mr1hm/go-rescue-command/internal/stream"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// mockEventRepo implements repository.EventRepository for testing
type mockEventRepo struct {
	mu     sync.Mutex
	events []models.Event
	err    error
}

func (m *mockEventRepo) Record(ctx context.Context, e *models.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, *e)
	return nil
}

func (m *mockEventRepo) List(ctx context.Context, opts repository.Filter) ([]models.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Event(nil), m.events...), nil
}

func (m *mockEventRepo) CountByType(ctx context.Context) (map[models.EventType]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := make(map[models.EventType]int64)
	for _, e := range m.events {
		counts[e.Type]++
	}
	return counts, nil
}

func (m *mockEventRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events)
}

type mockRelay struct {
	mu        sync.Mutex
	published []string
	err       error
}

func (m *mockRelay) Publish(ctx context.Context, e *models.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, e.ID)
	return m.err
}

func (m *mockRelay) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.published)
}

func TestRecorder_RecordsBroadcastsAndRelays(t *testing.T) {
	repo := &mockEventRepo{}
	b := stream.NewBroadcaster()
	relay := &mockRelay{}
	rec := NewRecorder(repo, b, relay, 2, 16)

	id, ch := b.Subscribe()
	defer b.Unsubscribe(id)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rec.Start(ctx)

	rec.Publish(
		models.NewEvent(models.EventAlertCreated, 101, "", nil),
		models.NewEvent(models.EventAlertDispatched, 101, "r1", nil),
	)
	rec.Stop()

	if repo.count() != 2 {
		t.Errorf("expected 2 recorded events, got %d", repo.count())
	}
	if relay.count() != 2 {
		t.Errorf("expected 2 relayed events, got %d", relay.count())
	}

	received := 0
	for received < 2 {
		select {
		case <-ch:
			received++
		case <-time.After(time.Second):
			t.Fatalf("expected 2 streamed events, got %d", received)
		}
	}
}

func TestRecorder_RepoErrorSkipsFanOut(t *testing.T) {
	repo := &mockEventRepo{err: errors.New("disk full")}
	relay := &mockRelay{}
	rec := NewRecorder(repo, nil, relay, 1, 4)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rec.Start(ctx)

	rec.Publish(models.NewEvent(models.EventAlertCreated, 101, "", nil))
	rec.Stop()

	if relay.count() != 0 {
		t.Errorf("expected no relay on failed record, got %d", relay.count())
	}
}

func TestRecorder_RelayErrorIsNotFatal(t *testing.T) {
	repo := &mockEventRepo{}
	relay := &mockRelay{err: errors.New("nats down")}
	rec := NewRecorder(repo, nil, relay, 1, 4)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rec.Start(ctx)

	for i := 0; i < 3; i++ {
		rec.Publish(models.NewEvent(models.EventAlertCreated, 101+i, "", nil))
	}
	rec.Stop()

	if repo.count() != 3 {
		t.Errorf("expected 3 recorded events, got %d", repo.count())
	}
}

func TestRecorder_PublishAfterStopDrops(t *testing.T) {
	repo := &mockEventRepo{}
	rec := NewRecorder(repo, nil, nil, 1, 4)
	rec.Start(context.Background())
	rec.Stop()

	rec.Publish(models.NewEvent(models.EventAlertCreated, 101, "", nil))

	if repo.count() != 0 {
		t.Errorf("expected nothing recorded after stop, got %d", repo.count())
	}
}

func TestRecorder_WithSQLite(t *testing.T) {
	db, err := repository.NewSQLiteDB(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	defer db.Close()

	rec := NewRecorder(db, nil, nil, 2, 8)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rec.Start(ctx)

	rec.Publish(
		models.NewEvent(models.EventAlertResolved, 101, "", nil),
		models.NewEvent(models.EventResourceReturned, 101, "r3", nil),
	)
	rec.Stop()

	counts, err := db.CountByType(context.Background())
	if err != nil {
		t.Fatalf("CountByType failed: %v", err)
	}
	if counts[models.EventAlertResolved] != 1 || counts[models.EventResourceReturned] != 1 {
		t.Errorf("unexpected counts: %v", counts)
	}
}
