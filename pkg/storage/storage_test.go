package storage

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	url, err := s.Put(ctx, "a/b.txt", strings.NewReader("hello"), 5, "text/plain")
	require.NoError(t, err)
	assert.Equal(t, "memory://a/b.txt", url)
	assert.True(t, s.Has("a/b.txt"))
	assert.Equal(t, []byte("hello"), s.Objects["a/b.txt"])

	require.NoError(t, s.Remove(ctx, "a/b.txt"))
	assert.False(t, s.Has("a/b.txt"))
}

func TestIsImage(t *testing.T) {
	assert.True(t, IsImage("image/png"))
	assert.True(t, IsImage("IMAGE/JPEG"))
	assert.False(t, IsImage("application/pdf"))
}

func TestThumbnailFitsBox(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 900, 600))
	for x := 0; x < 900; x++ {
		src.Set(x, x%600, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, src))

	out, err := Thumbnail(&buf)
	require.NoError(t, err)

	thumb, format, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 300, thumb.Bounds().Dx())
	assert.Equal(t, 200, thumb.Bounds().Dy())
}

func TestThumbnailRejectsNonImage(t *testing.T) {
	_, err := Thumbnail(strings.NewReader("not an image"))
	assert.Error(t, err)
}
