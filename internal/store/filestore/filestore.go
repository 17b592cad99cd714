// Package filestore keeps publications in a directory tree:
//
//	<root>/publications/<id>.json
//	<root>/events.yaml
//	<root>/locations.yaml
//	<root>/departments.yaml
//
// Missing metadata files read as empty lists.
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/roboco-io/pubrender/internal/merge"
	"github.com/roboco-io/pubrender/internal/model"
	"github.com/roboco-io/pubrender/internal/store"
)

const publicationsDir = "publications"

// Store is a store.Store over a directory.
type Store struct {
	root string
	log  zerolog.Logger
	mu   sync.RWMutex
}

var _ store.Store = (*Store)(nil)

// New opens a directory store rooted at root.
func New(root string, log zerolog.Logger) (*Store, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("open store %s: not a directory", root)
	}
	return &Store{root: root, log: log}, nil
}

// Root returns the store directory.
func (s *Store) Root() string {
	return s.root
}

func (s *Store) publicationPath(id string) (string, error) {
	if id == "" || id != filepath.Base(id) || strings.HasPrefix(id, ".") {
		return "", fmt.Errorf("invalid publication id %q", id)
	}
	return filepath.Join(s.root, publicationsDir, id+".json"), nil
}

func (s *Store) readRecord(path string) (model.Record, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return model.Record{}, store.ErrNotFound
	}
	if err != nil {
		return model.Record{}, err
	}
	var rec model.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return model.Record{}, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return rec, nil
}

// Publication implements store.Store.
func (s *Store) Publication(_ context.Context, id string) (model.Publication, error) {
	path, err := s.publicationPath(id)
	if err != nil {
		return model.Publication{}, fmt.Errorf("%w: %v", store.ErrNotFound, err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, err := s.readRecord(path)
	if err != nil {
		return model.Publication{}, err
	}
	if rec.ID == "" {
		rec.ID = id
	}
	return rec.Publication(s.log), nil
}

// HostPublication implements store.Store. Among several candidates a
// published one wins, then the lowest id.
func (s *Store) HostPublication(ctx context.Context, eventID string) (*model.Publication, error) {
	ev, err := s.Event(ctx, eventID)
	if errors.Is(err, store.ErrNotFound) || (err == nil && ev.HostLocationID == "") {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	paths, err := filepath.Glob(filepath.Join(s.root, publicationsDir, "*.json"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	var best *model.Record
	for _, path := range paths {
		rec, err := s.readRecord(path)
		if err != nil {
			s.log.Warn().Err(err).Str("path", path).Msg("skipping unreadable publication")
			continue
		}
		if rec.EventID != eventID || rec.LocationID != ev.HostLocationID || rec.Status == model.StatusArchived {
			continue
		}
		if best == nil || (rec.Status == model.StatusPublished && best.Status != model.StatusPublished) {
			r := rec
			best = &r
		}
	}
	if best == nil {
		return nil, nil
	}
	p := best.Publication(s.log)
	return &p, nil
}

// Departments implements store.Store.
func (s *Store) Departments(_ context.Context) (merge.Departments, error) {
	var list []merge.Department
	if err := s.readYAML("departments.yaml", &list); err != nil {
		return nil, err
	}
	return merge.NewDepartments(list), nil
}

// Event implements store.Store.
func (s *Store) Event(_ context.Context, id string) (store.Event, error) {
	var list []store.Event
	if err := s.readYAML("events.yaml", &list); err != nil {
		return store.Event{}, err
	}
	for _, ev := range list {
		if ev.ID == id {
			return ev, nil
		}
	}
	return store.Event{}, store.ErrNotFound
}

// Location implements store.Store.
func (s *Store) Location(_ context.Context, id string) (store.Location, error) {
	var list []store.Location
	if err := s.readYAML("locations.yaml", &list); err != nil {
		return store.Location{}, err
	}
	for _, loc := range list {
		if loc.ID == id {
			return loc, nil
		}
	}
	return store.Location{}, store.ErrNotFound
}

// SavePublication implements store.Store.
func (s *Store) SavePublication(_ context.Context, p model.Publication) error {
	rec, err := store.PrepareSave(p)
	if err != nil {
		return err
	}
	path, err := s.publicationPath(rec.ID)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encode publication %s: %w", rec.ID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create publications directory: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write publication %s: %w", rec.ID, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("write publication %s: %w", rec.ID, err)
	}
	return nil
}

func (s *Store) readYAML(name string, out any) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(filepath.Join(s.root, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}
