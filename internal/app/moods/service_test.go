package moods

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ourforever/internal/docstore"
	"ourforever/internal/store"
)

func TestSet_ReplacesTodaysMoodPerAuthor(t *testing.T) {
	day := time.Date(2024, 2, 14, 8, 0, 0, 0, time.UTC)
	svc := &service{store: store.New(docstore.NewMemoryStore()), now: func() time.Time { return day }}
	ctx := context.Background()

	_, err := svc.Set(ctx, "u1", "prem", "happy", "")
	require.NoError(t, err)
	latest, err := svc.Set(ctx, "u1", "prem", "in love", "thinking of you")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-14", latest.Date)

	_, err = svc.Set(ctx, "u1", "", "happy", "")
	assert.ErrorIs(t, err, store.ErrInvalidInput)

	moods, err := svc.List(ctx, "u1", "")
	require.NoError(t, err)
	require.Len(t, moods, 1)
	assert.Equal(t, "in love", moods[0].Mood)

	day = day.Add(24 * time.Hour)
	moods, err = svc.List(ctx, "u1", "")
	require.NoError(t, err)
	assert.Empty(t, moods)

	moods, err = svc.List(ctx, "u1", "2024-02-14")
	require.NoError(t, err)
	assert.Len(t, moods, 1)

	_, err = svc.List(ctx, "u1", "yesterday")
	assert.ErrorIs(t, err, store.ErrInvalidInput)
}
