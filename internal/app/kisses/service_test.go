package kisses

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ourforever/internal/docstore"
	"ourforever/internal/store"
)

type recordingPublisher struct {
	got []store.Kiss
}

func (p *recordingPublisher) Publish(userID string, kiss store.Kiss) {
	p.got = append(p.got, kiss)
}

func TestSend_PersistsAndPublishes(t *testing.T) {
	pub := &recordingPublisher{}
	svc := New(store.New(docstore.NewMemoryStore()), pub)
	ctx := context.Background()

	kiss, err := svc.Send(ctx, "u1", "prem", "love")
	require.NoError(t, err)
	assert.Equal(t, "prem", kiss.From)
	require.Len(t, pub.got, 1)
	assert.Equal(t, kiss.ID, pub.got[0].ID)

	_, err = svc.Send(ctx, "u1", "prem", "")
	assert.ErrorIs(t, err, store.ErrInvalidInput)
	assert.Len(t, pub.got, 1)

	list, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestSend_NilPublisher(t *testing.T) {
	svc := New(store.New(docstore.NewMemoryStore()), nil)
	_, err := svc.Send(context.Background(), "u1", "prem", "love")
	assert.NoError(t, err)
}
