package pgstore

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roboco-io/pubrender/internal/model"
	"github.com/roboco-io/pubrender/internal/store"
)

func TestRowRoundTrip(t *testing.T) {
	p := model.NewPublication("Weekly")
	p.ID = "p1"
	p.Sections = []model.Section{model.NewSection("A", "Umoor Deeniyah", "loc")}
	rec, err := model.NewRecord(p)
	require.NoError(t, err)

	r := newRow(rec)
	assert.Equal(t, "draft", r.Status)
	assert.JSONEq(t, string(rec.Content), r.Content)

	back := r.record().Publication(zerolog.Nop())
	assert.Equal(t, p.Title, back.Title)
	require.Len(t, back.Sections, 1)
	assert.Equal(t, p.Sections[0].ID, back.Sections[0].ID)

	assert.Equal(t, "[]", newRow(model.Record{}).Content)
}

func TestNotFound(t *testing.T) {
	assert.ErrorIs(t, notFound(sql.ErrNoRows), store.ErrNotFound)
	other := errors.New("boom")
	assert.Equal(t, other, notFound(other))
}

func TestMigrations(t *testing.T) {
	files, err := Migrations()
	require.NoError(t, err)
	require.NotEmpty(t, files)
	assert.Equal(t, "migrations/00001_schema.sql", files[0])

	data, err := migrations.ReadFile(files[0])
	require.NoError(t, err)
	for _, table := range []string{"publications", "events", "locations", "umoor"} {
		assert.Contains(t, string(data), "CREATE TABLE IF NOT EXISTS "+table)
	}
	assert.Contains(t, string(data), "-- +goose Down")
}

// TestIntegration runs against a live database when PUBRENDER_TEST_DSN is set.
func TestIntegration(t *testing.T) {
	dsn := os.Getenv("PUBRENDER_TEST_DSN")
	if dsn == "" {
		t.Skip("PUBRENDER_TEST_DSN not set")
	}
	ctx := context.Background()
	s, err := Open(ctx, dsn, zerolog.Nop())
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.Migrate(ctx))

	p := model.NewPublication("Integration")
	p.ID = "pubrender-integration"
	p.Sections = []model.Section{model.NewSection("A", "Umoor Deeniyah", "")}
	require.NoError(t, s.SavePublication(ctx, p))

	got, err := s.Publication(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Integration", got.Title)

	_, err = s.Publication(ctx, "does-not-exist")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
