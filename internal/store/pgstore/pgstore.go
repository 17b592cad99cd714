// Package pgstore implements store.Store on PostgreSQL.
package pgstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/roboco-io/pubrender/internal/merge"
	"github.com/roboco-io/pubrender/internal/model"
	"github.com/roboco-io/pubrender/internal/store"
)

const (
	selectPublication = `SELECT id, COALESCE(event_id, '') AS event_id, COALESCE(location_id, '') AS location_id,
	title, COALESCE(content::text, 'null') AS content, COALESCE(status, 'draft') AS status
FROM publications`

	queryPublication = selectPublication + ` WHERE id = $1`

	queryHostPublication = `SELECT p.id, COALESCE(p.event_id, '') AS event_id, COALESCE(p.location_id, '') AS location_id,
	p.title, COALESCE(p.content::text, 'null') AS content, COALESCE(p.status, 'draft') AS status
FROM publications p
JOIN events e ON e.id = p.event_id
WHERE p.event_id = $1 AND p.location_id = e.host_location_id AND COALESCE(p.status, 'draft') <> 'archived'
ORDER BY (p.status = 'published') DESC, p.id
LIMIT 1`

	queryDepartments = `SELECT id, COALESCE(name, '') AS name, COALESCE(logo_url, '') AS logo_url,
	COALESCE(order_preference, 0) AS order_preference
FROM umoor`

	queryEvent = `SELECT id, COALESCE(name, '') AS name, COALESCE(host_location_id, '') AS host_location_id
FROM events WHERE id = $1`

	queryLocation = `SELECT id, COALESCE(name, '') AS name, COALESCE(logo_url, '') AS logo_url
FROM locations WHERE id = $1`

	upsertPublication = `INSERT INTO publications (id, event_id, location_id, title, content, status)
VALUES (:id, NULLIF(:event_id, ''), NULLIF(:location_id, ''), :title, CAST(:content AS jsonb), :status)
ON CONFLICT (id) DO UPDATE SET
	event_id = EXCLUDED.event_id,
	location_id = EXCLUDED.location_id,
	title = EXCLUDED.title,
	content = EXCLUDED.content,
	status = EXCLUDED.status`
)

// row mirrors model.Record with the content column as text.
type row struct {
	ID         string `db:"id"`
	EventID    string `db:"event_id"`
	LocationID string `db:"location_id"`
	Title      string `db:"title"`
	Content    string `db:"content"`
	Status     string `db:"status"`
}

func (r row) record() model.Record {
	return model.Record{
		ID:         r.ID,
		EventID:    r.EventID,
		LocationID: r.LocationID,
		Title:      r.Title,
		Content:    []byte(r.Content),
		Status:     model.Status(r.Status),
	}
}

func newRow(rec model.Record) row {
	content := string(rec.Content)
	if content == "" {
		content = "[]"
	}
	return row{
		ID:         rec.ID,
		EventID:    rec.EventID,
		LocationID: rec.LocationID,
		Title:      rec.Title,
		Content:    content,
		Status:     string(rec.Status),
	}
}

// Store is a store.Store backed by PostgreSQL.
type Store struct {
	db  *sqlx.DB
	log zerolog.Logger
}

var _ store.Store = (*Store)(nil)

// Open connects to the database at dsn and verifies the connection.
func Open(ctx context.Context, dsn string, log zerolog.Logger) (*Store, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return New(db, log), nil
}

// New wraps an existing connection pool.
func New(db *sqlx.DB, log zerolog.Logger) *Store {
	return &Store{db: db, log: log}
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// Publication implements store.Store.
func (s *Store) Publication(ctx context.Context, id string) (model.Publication, error) {
	var r row
	if err := s.db.GetContext(ctx, &r, queryPublication, id); err != nil {
		return model.Publication{}, notFound(err)
	}
	return r.record().Publication(s.log), nil
}

// HostPublication implements store.Store.
func (s *Store) HostPublication(ctx context.Context, eventID string) (*model.Publication, error) {
	var r row
	err := s.db.GetContext(ctx, &r, queryHostPublication, eventID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query host publication: %w", err)
	}
	p := r.record().Publication(s.log)
	return &p, nil
}

// Departments implements store.Store.
func (s *Store) Departments(ctx context.Context) (merge.Departments, error) {
	var list []merge.Department
	if err := s.db.SelectContext(ctx, &list, queryDepartments); err != nil {
		return nil, fmt.Errorf("query departments: %w", err)
	}
	return merge.NewDepartments(list), nil
}

// Event implements store.Store.
func (s *Store) Event(ctx context.Context, id string) (store.Event, error) {
	var ev store.Event
	if err := s.db.GetContext(ctx, &ev, queryEvent, id); err != nil {
		return store.Event{}, notFound(err)
	}
	return ev, nil
}

// Location implements store.Store.
func (s *Store) Location(ctx context.Context, id string) (store.Location, error) {
	var loc store.Location
	if err := s.db.GetContext(ctx, &loc, queryLocation, id); err != nil {
		return store.Location{}, notFound(err)
	}
	return loc, nil
}

// SavePublication implements store.Store.
func (s *Store) SavePublication(ctx context.Context, p model.Publication) error {
	rec, err := store.PrepareSave(p)
	if err != nil {
		return err
	}
	if _, err := s.db.NamedExecContext(ctx, upsertPublication, newRow(rec)); err != nil {
		return fmt.Errorf("save publication %s: %w", rec.ID, err)
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}
