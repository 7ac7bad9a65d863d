package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/mr1hm/go-rescue-command/internal/models"
	_ "modernc.org/sqlite"
)

type SQLiteDB struct {
	db *sql.DB
}

func NewSQLiteDB(path string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}
	// Every connection to :memory: is its own database.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("error while pinging database: %w", err)
	}

	s := &SQLiteDB{
		db: db,
	}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("error while migrating to database: %w", err)
	}

	return s, nil
}

func (s *SQLiteDB) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS events (
			id TEXT PRIMARY KEY,
			seq INTEGER NOT NULL DEFAULT 0,
			type TEXT NOT NULL,
			alert_id INTEGER,
			resource_id TEXT,
			payload BLOB,
			created_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_events_created_at ON events(created_at);
		CREATE INDEX IF NOT EXISTS idx_events_type ON events(type);
		CREATE INDEX IF NOT EXISTS idx_events_alert_id ON events(alert_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteDB) Record(ctx context.Context, e *models.Event) error {
	createdAt := e.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	var alertID sql.NullInt64
	if e.AlertID != 0 {
		alertID = sql.NullInt64{Int64: int64(e.AlertID), Valid: true}
	}
	var resourceID sql.NullString
	if e.ResourceID != "" {
		resourceID = sql.NullString{String: e.ResourceID, Valid: true}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO events (id, seq, type, alert_id, resource_id, payload, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, int64(e.Seq), string(e.Type), alertID, resourceID, []byte(e.Payload), createdAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("error recording event %s: %w", e.ID, err)
	}
	return nil
}

func (s *SQLiteDB) List(ctx context.Context, opts Filter) ([]models.Event, error) {
	var (
		where []string
		args  []any
	)
	if opts.Type != nil {
		where = append(where, "type = ?")
		args = append(args, string(*opts.Type))
	}
	if opts.AlertID != nil {
		where = append(where, "alert_id = ?")
		args = append(args, *opts.AlertID)
	}
	if opts.Since != nil {
		where = append(where, "created_at >= ?")
		args = append(args, opts.Since.UnixNano())
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	query := "SELECT id, seq, type, alert_id, resource_id, payload, created_at FROM events"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, seq DESC, rowid DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing events: %w", err)
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		var (
			e          models.Event
			seq        int64
			typ        string
			alertID    sql.NullInt64
			resourceID sql.NullString
			payload    []byte
			createdAt  int64
		)
		if err := rows.Scan(&e.ID, &seq, &typ, &alertID, &resourceID, &payload, &createdAt); err != nil {
			return nil, fmt.Errorf("error scanning event: %w", err)
		}
		e.Seq = uint64(seq)
		e.Type = models.EventType(typ)
		e.AlertID = int(alertID.Int64)
		e.ResourceID = resourceID.String
		if len(payload) > 0 {
			e.Payload = payload
		}
		e.CreatedAt = time.Unix(0, createdAt).UTC()
		events = append(events, e)
	}
	return events, rows.Err()
}

func (s *SQLiteDB) CountByType(ctx context.Context) (map[models.EventType]int64, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT type, COUNT(*) FROM events GROUP BY type")
	if err != nil {
		return nil, fmt.Errorf("error counting events: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.EventType]int64)
	for rows.Next() {
		var (
			typ   string
			count int64
		)
		if err := rows.Scan(&typ, &count); err != nil {
			return nil, fmt.Errorf("error scanning count: %w", err)
		}
		counts[models.EventType(typ)] = count
	}
	return counts, rows.Err()
}

func (s *SQLiteDB) Close() error {
	return s.db.Close()
}
