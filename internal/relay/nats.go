package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/mr1hm/go-rescue-command/internal/logging"
	"github.com/mr1hm/go-rescue-command/internal/models"
)

const DefaultSubject = "rescue.events"

// conn is the slice of *nats.Conn the publisher needs.
type conn interface {
	PublishMsg(m *nats.Msg) error
	Drain() error
}

// Publisher mirrors dashboard events to NATS under <prefix>.<event type>.
type Publisher struct {
	nc     conn
	prefix string
}

func NewPublisher(nc *nats.Conn, prefix string) *Publisher {
	return newPublisher(nc, prefix)
}

func newPublisher(nc conn, prefix string) *Publisher {
	prefix = strings.TrimSuffix(prefix, ".")
	if prefix == "" {
		prefix = DefaultSubject
	}
	return &Publisher{
		nc:     nc,
		prefix: prefix,
	}
}

// Connect dials url with reconnects enabled and returns a Publisher.
func Connect(url, prefix string) (*Publisher, error) {
	log := logging.For("relay")
	nc, err := nats.Connect(
		url,
		nats.Name("rescue-command"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn("nats disconnected", "error", err)
				return
			}
			log.Warn("nats disconnected")
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			log.Info("nats reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("error connecting to nats: %w", err)
	}
	slog.Info("nats relay connected", "url", url, "prefix", prefix)
	return NewPublisher(nc, prefix), nil
}

func (p *Publisher) Subject(t models.EventType) string {
	return fmt.Sprintf("%s.%s", p.prefix, t)
}

func (p *Publisher) Publish(ctx context.Context, e *models.Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("error encoding event %s: %w", e.ID, err)
	}
	return p.nc.PublishMsg(&nats.Msg{
		Subject: p.Subject(e.Type),
		Data:    payload,
		Header:  headers(ctx, e),
	})
}

// Close flushes pending messages and closes the connection.
func (p *Publisher) Close() error {
	return p.nc.Drain()
}

func headers(ctx context.Context, e *models.Event) nats.Header {
	h := nats.Header{}
	// JetStream dedupes on this header.
	h.Set(nats.MsgIdHdr, e.ID)
	if ctx == nil {
		return h
	}
	if deadline, ok := ctx.Deadline(); ok {
		h.Set("Deadline", deadline.UTC().Format(time.RFC3339Nano))
	}
	return h
}
