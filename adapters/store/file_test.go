package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golens/domain/core"
	"golens/internal/errors"
)

func TestFileStoreRoundTrip(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	id := core.ExplainerID(core.NewID())
	blob := []byte(`{"format":"golens/tabular-lime/v1"}`)
	require.NoError(t, s.Put(ctx, id, "iris", blob))

	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, blob, got)

	listed, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, id, listed[0].ID)
	assert.Equal(t, "iris", listed[0].Name)
	assert.Equal(t, len(blob), listed[0].SizeBytes)
	assert.False(t, listed[0].CreatedAt.IsZero())
}

func TestFileStoreGetMissing(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	_, err = s.Get(context.Background(), core.ExplainerID(core.NewID()))
	require.Error(t, err)
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
}

func TestFileStoreDelete(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	id := core.ExplainerID(core.NewID())
	require.NoError(t, s.Put(ctx, id, "temp", []byte("blob")))
	require.NoError(t, s.Delete(ctx, id))

	_, err = s.Get(ctx, id)
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))

	listed, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, listed)

	// Deleting again is a no-op.
	assert.NoError(t, s.Delete(ctx, id))
}

func TestFileStoreListOrdersByCreation(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	first := core.ExplainerID("explainer-a")
	second := core.ExplainerID("explainer-b")
	require.NoError(t, s.Put(ctx, first, "first", []byte("1")))
	require.NoError(t, s.Put(ctx, second, "second", []byte("2")))

	listed, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.False(t, listed[1].CreatedAt.Time().Before(listed[0].CreatedAt.Time()))
}
