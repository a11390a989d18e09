package blob

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocal_PutOpenDelete(t *testing.T) {
	root := t.TempDir()
	l, err := NewLocal(root, "/uploads/")
	require.NoError(t, err)

	ctx := context.Background()
	key := Key("images", "abc.png")

	n, err := l.Put(ctx, key, strings.NewReader("pixels"))
	require.NoError(t, err)
	assert.Equal(t, int64(6), n)

	_, err = os.Stat(filepath.Join(root, "images", "abc.png"))
	require.NoError(t, err)

	rc, err := l.Open(ctx, key)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, "pixels", string(data))

	assert.Equal(t, "/uploads/images/abc.png", l.URL(key))

	require.NoError(t, l.Delete(ctx, key))
	_, err = l.Open(ctx, key)
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting twice is fine.
	require.NoError(t, l.Delete(ctx, key))
}

func TestLocal_RejectsEscapingKeys(t *testing.T) {
	l, err := NewLocal(t.TempDir(), "/uploads")
	require.NoError(t, err)

	for _, key := range []string{"", "/etc/passwd", "../secret", "images/../../x", `images\x`} {
		_, err := l.Put(context.Background(), key, strings.NewReader("x"))
		assert.ErrorIs(t, err, ErrInvalidKey, "key %q", key)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, io.ErrUnexpectedEOF }

func TestLocal_PutFailureLeavesNoFile(t *testing.T) {
	root := t.TempDir()
	l, err := NewLocal(root, "/uploads")
	require.NoError(t, err)

	_, err = l.Put(context.Background(), "videos/v.mp4", failingReader{})
	require.Error(t, err)

	_, statErr := os.Stat(filepath.Join(root, "videos", "v.mp4"))
	assert.True(t, os.IsNotExist(statErr), "partial file should be removed")
}
