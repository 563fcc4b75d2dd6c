package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalResolverOpen(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(p, []byte("hello"), 0o644))

	r := NewLocalResolver()

	for _, ref := range []string{p, "file://" + filepath.ToSlash(p)} {
		res, err := r.Open(context.Background(), ref)
		require.NoError(t, err, ref)
		assert.Equal(t, "notes.txt", res.Name)
		assert.Contains(t, res.MIMEType, "text/plain")
		assert.Equal(t, []byte("hello"), res.Content)
	}
}

func TestLocalResolverSniffsUnknownExtension(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "image")
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")
	require.NoError(t, os.WriteFile(p, png, 0o644))

	res, err := NewLocalResolver().Open(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, "image/png", res.MIMEType)
}

func TestLocalResolverErrors(t *testing.T) {
	dir := t.TempDir()
	r := NewLocalResolver()

	refs := []string{
		"",
		filepath.Join(dir, "missing.txt"),
		dir,
		"file://remote-host/share/x.txt",
	}
	for _, ref := range refs {
		_, err := r.Open(context.Background(), ref)
		assert.Error(t, err, ref)
	}
}

func TestLocalResolverHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewLocalResolver().Open(ctx, "/tmp/whatever")
	assert.ErrorIs(t, err, context.Canceled)
}
