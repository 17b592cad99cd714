package filestore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roboco-io/pubrender/internal/model"
	"github.com/roboco-io/pubrender/internal/store"
)

const events = `
- id: ev1
  name: Ashara 1447
  host_location_id: host
- id: ev2
  name: Orphan
`

const locations = `
- id: host
  name: Mumbai
- id: pune
  name: Pune
  logo_url: https://x/pune.png
`

const departments = `
- id: A
  name: Umoor Deeniyah
  order_preference: 2
- id: B
  name: Umoor Talimiyah
  order_preference: 1
`

func newStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	for name, body := range map[string]string{
		"events.yaml":      events,
		"locations.yaml":   locations,
		"departments.yaml": departments,
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0644))
	}
	s, err := New(dir, zerolog.Nop())
	require.NoError(t, err)
	return s
}

func publication(id, location string, status model.Status, sections ...model.Section) model.Publication {
	p := model.NewPublication("Weekly " + id)
	p.ID = id
	p.EventID = "ev1"
	p.LocationID = location
	p.Status = status
	p.Sections = sections
	return p
}

func TestNew_Errors(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing"), zerolog.Nop())
	assert.Error(t, err)

	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0644))
	_, err = New(file, zerolog.Nop())
	assert.Error(t, err)
}

func TestSaveAndLoad(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	sec := model.NewSection("A", "Umoor Deeniyah", "pune")
	sec.Children = []model.Block{model.NewTextBlock("• one", model.LanguagePrimary)}
	p := publication("p1", "pune", model.StatusDraft, sec)

	require.NoError(t, s.SavePublication(ctx, p))
	got, err := s.Publication(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, p.Title, got.Title)
	require.Len(t, got.Sections, 1)
	assert.Equal(t, sec.ID, got.Sections[0].ID)
	assert.Equal(t, "• one", got.Sections[0].Children[0].Text.Content)

	_, err = s.Publication(ctx, "nope")
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.Publication(ctx, "../events")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSave_ValidationFailsBeforeWrite(t *testing.T) {
	s := newStore(t)
	p := publication("bad", "pune", model.StatusDraft)
	p.Title = "  "

	err := s.SavePublication(context.Background(), p)
	var verr *model.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Map(), "title")
	assert.Contains(t, verr.Map(), "sections")

	_, statErr := os.Stat(filepath.Join(s.Root(), publicationsDir, "bad.json"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestPublication_MalformedContent(t *testing.T) {
	s := newStore(t)
	dir := filepath.Join(s.Root(), publicationsDir)
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "p2.json"),
		[]byte(`{"id":"p2","title":"Broken","content":"not json","status":"weird"}`), 0644))

	p, err := s.Publication(context.Background(), "p2")
	require.NoError(t, err)
	assert.Empty(t, p.Sections)
	assert.Equal(t, model.StatusDraft, p.Status)
}

func TestHostPublication(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	sec := model.NewSection("A", "Umoor Deeniyah", "host")

	require.NoError(t, s.SavePublication(ctx, publication("h1", "host", model.StatusDraft, sec)))
	require.NoError(t, s.SavePublication(ctx, publication("h2", "host", model.StatusPublished, sec)))
	require.NoError(t, s.SavePublication(ctx, publication("h0", "host", model.StatusArchived, sec)))

	host, err := s.HostPublication(ctx, "ev1")
	require.NoError(t, err)
	require.NotNil(t, host)
	assert.Equal(t, "h2", host.ID, "published host wins")

	host, err = s.HostPublication(ctx, "ev2")
	require.NoError(t, err)
	assert.Nil(t, host, "event without host location")

	host, err = s.HostPublication(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, host)
}

func TestLoadInput(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	global := model.NewSection("A", "Umoor Deeniyah", "host")
	global.IsGlobal = true
	require.NoError(t, s.SavePublication(ctx, publication("h1", "host", model.StatusPublished, global)))
	require.NoError(t, s.SavePublication(ctx, publication("p1", "pune", model.StatusDraft, model.NewSection("B", "Umoor Talimiyah", "pune"))))

	in, err := store.LoadInput(ctx, s, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Ashara 1447", in.EventName)
	assert.Equal(t, "Pune", in.LocationName)
	assert.Equal(t, "https://x/pune.png", in.LocationLogo)
	require.NotNil(t, in.Host)
	assert.Equal(t, "h1", in.Host.ID)
	dep, ok := in.Departments.Department("B")
	assert.True(t, ok)
	assert.Equal(t, 1, dep.OrderPreference)

	hostIn, err := store.LoadInput(ctx, s, "h1")
	require.NoError(t, err)
	assert.Nil(t, hostIn.Host, "the host publication is not merged with itself")

	_, err = store.LoadInput(ctx, s, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
