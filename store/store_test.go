package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/use-agent/tubemeta/models"
)

func rec(url string) models.VideoRecord {
	return models.VideoRecord{
		URL:             url,
		Title:           "title " + url,
		ChannelName:     "chan",
		SubscriberCount: "1",
		ViewCount:       "2",
		LikeCount:       models.Absent,
		CommentCount:    models.Absent,
		PublishDate:     "2025-09-16",
	}
}

func backends(t *testing.T) map[string]Store {
	t.Helper()
	sq, err := OpenSQLite(filepath.Join(t.TempDir(), "db", "results.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sq.Close() })

	return map[string]Store{
		"memory": NewMemory(),
		"sqlite": sq,
	}
}

func TestStore_AppendListClear(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			got, err := s.List(ctx)
			require.NoError(t, err)
			assert.Empty(t, got)

			failed := models.FailedRecord("u3", errors.New("navigation timeout"))
			require.NoError(t, s.Append(ctx, rec("u1"), rec("u2")))
			require.NoError(t, s.Append(ctx, failed))
			require.NoError(t, s.Append(ctx))

			got, err = s.List(ctx)
			require.NoError(t, err)
			assert.Equal(t, []models.VideoRecord{rec("u1"), rec("u2"), failed}, got)

			n, err := s.Count(ctx)
			require.NoError(t, err)
			assert.Equal(t, 3, n)

			require.NoError(t, s.Clear(ctx))
			n, err = s.Count(ctx)
			require.NoError(t, err)
			assert.Zero(t, n)
		})
	}
}

func TestMemory_ListIsACopy(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Append(ctx, rec("u1")))

	got, err := m.List(ctx)
	require.NoError(t, err)
	got[0].Title = "mutated"

	again, err := m.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "title u1", again[0].Title)
}

func TestSQLite_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "results.db")

	s, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s.Append(ctx, rec("u1"), rec("u2")))
	require.NoError(t, s.Close())

	s, err = OpenSQLite(path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.VideoRecord{rec("u1"), rec("u2")}, got)
}
