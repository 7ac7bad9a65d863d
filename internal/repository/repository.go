package repository

import (
	"context"
	"time"

	"github.com/mr1hm/go-rescue-command/internal/models"
)

const (
	DefaultLimit = 50
	MaxLimit     = 500
)

type Filter struct {
	Limit   int
	Offset  int
	Since   *time.Time
	Type    *models.EventType
	AlertID *int
}

// EventRepository is the write-mostly journal of dashboard transitions.
type EventRepository interface {
	Record(ctx context.Context, e *models.Event) error
	List(ctx context.Context, opts Filter) ([]models.Event, error)
	CountByType(ctx context.Context) (map[models.EventType]int64, error)
}
