// Package store defines data access for publications and the metadata the
// renderers need.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/roboco-io/pubrender/internal/merge"
	"github.com/roboco-io/pubrender/internal/model"
	"github.com/roboco-io/pubrender/internal/render"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Event groups the publications of several locations under one host.
type Event struct {
	ID             string `json:"id" yaml:"id" db:"id"`
	Name           string `json:"name" yaml:"name" db:"name"`
	HostLocationID string `json:"host_location_id" yaml:"host_location_id" db:"host_location_id"`
}

// Location is a venue that publishes for an event.
type Location struct {
	ID      string `json:"id" yaml:"id" db:"id"`
	Name    string `json:"name" yaml:"name" db:"name"`
	LogoURL string `json:"logo_url,omitempty" yaml:"logo_url,omitempty" db:"logo_url"`
}

// Store is the persistence boundary.
type Store interface {
	// Publication returns the publication with id or ErrNotFound.
	Publication(ctx context.Context, id string) (model.Publication, error)
	// HostPublication returns the host location's publication for an event,
	// or nil when the event has none.
	HostPublication(ctx context.Context, eventID string) (*model.Publication, error)
	Departments(ctx context.Context) (merge.Departments, error)
	Event(ctx context.Context, id string) (Event, error)
	Location(ctx context.Context, id string) (Location, error)
	// SavePublication validates and stores p. Invalid publications are
	// rejected with *model.ValidationError before anything is written.
	SavePublication(ctx context.Context, p model.Publication) error
}

// PrepareSave validates p and converts it to its stored form.
func PrepareSave(p model.Publication) (model.Record, error) {
	if err := model.Validate(p); err != nil {
		return model.Record{}, err
	}
	return model.NewRecord(p)
}

// LoadInput gathers everything needed to render publication id. Missing
// event or location metadata is tolerated; the host publication is skipped
// when id already belongs to the host location.
func LoadInput(ctx context.Context, s Store, id string) (render.Input, error) {
	p, err := s.Publication(ctx, id)
	if err != nil {
		return render.Input{}, fmt.Errorf("publication %s: %w", id, err)
	}
	in := render.Input{Publication: p}

	if p.EventID != "" {
		ev, err := s.Event(ctx, p.EventID)
		switch {
		case errors.Is(err, ErrNotFound):
		case err != nil:
			return render.Input{}, fmt.Errorf("event %s: %w", p.EventID, err)
		default:
			in.EventName = ev.Name
			if ev.HostLocationID != p.LocationID {
				host, err := s.HostPublication(ctx, p.EventID)
				if err != nil {
					return render.Input{}, fmt.Errorf("host publication for %s: %w", p.EventID, err)
				}
				if host != nil && host.ID != p.ID {
					in.Host = host
				}
			}
		}
	}

	if p.LocationID != "" {
		loc, err := s.Location(ctx, p.LocationID)
		switch {
		case errors.Is(err, ErrNotFound):
		case err != nil:
			return render.Input{}, fmt.Errorf("location %s: %w", p.LocationID, err)
		default:
			in.LocationName = loc.Name
			in.LocationLogo = loc.LogoURL
		}
	}

	deps, err := s.Departments(ctx)
	if err != nil {
		return render.Input{}, fmt.Errorf("departments: %w", err)
	}
	in.Departments = deps
	return in, nil
}
