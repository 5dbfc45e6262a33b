package storage

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chai2010/webp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tinyPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDiskStore_SaveAndRemove(t *testing.T) {
	root := t.TempDir()
	store := NewDiskStore(root)

	ref, err := store.Save(context.Background(), BucketCVs, "My CV.PDF", []byte("%PDF-1.4"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref, "cv/"))
	assert.True(t, strings.HasSuffix(ref, ".pdf"))
	assert.NotContains(t, ref, "My CV")

	abs, err := store.Path(ref)
	require.NoError(t, err)
	data, err := os.ReadFile(abs)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))

	other, err := store.Save(context.Background(), BucketCVs, "My CV.PDF", []byte("x"))
	require.NoError(t, err)
	assert.NotEqual(t, ref, other)

	require.NoError(t, store.Remove(ref))
	_, err = os.Stat(abs)
	assert.True(t, os.IsNotExist(err))
	assert.NoError(t, store.Remove(ref), "removing twice is fine")
}

func TestDiskStore_RejectsUnknownBucketsAndTraversal(t *testing.T) {
	store := NewDiskStore(t.TempDir())

	_, err := store.Save(context.Background(), "../etc", "x.pdf", []byte("x"))
	assert.Error(t, err)

	for _, ref := range []string{"", "cv", "cv/", "../cv/x.pdf", "cv/../../x", "cv/sub/x.pdf", "other/x.pdf", "cv/.hidden"} {
		_, err := store.Path(ref)
		assert.ErrorIs(t, err, ErrInvalidRef, ref)
	}
}

func TestDiskStore_CancelledContext(t *testing.T) {
	root := t.TempDir()
	store := NewDiskStore(root)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Save(ctx, BucketCVs, "a.pdf", []byte("x"))
	assert.ErrorIs(t, err, context.Canceled)

	_, statErr := os.Stat(filepath.Join(root, BucketCVs))
	assert.True(t, os.IsNotExist(statErr))
}

func TestNormalizeImage_BoundsAndEncodesWebP(t *testing.T) {
	content := tinyPNG(t, 1024, 256)
	require.True(t, IsImage(content))

	out, err := NormalizeImage(content)
	require.NoError(t, err)

	cfg, err := webp.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, MaxImageSide, cfg.Width)
	assert.Equal(t, 128, cfg.Height)
}

func TestNormalizeImage_SmallImageKeepsSize(t *testing.T) {
	out, err := NormalizeImage(tinyPNG(t, 40, 30))
	require.NoError(t, err)

	cfg, err := webp.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 40, cfg.Width)
	assert.Equal(t, 30, cfg.Height)
}

func TestNormalizeImage_RejectsNonImages(t *testing.T) {
	assert.False(t, IsImage([]byte("%PDF-1.4 not an image")))
	_, err := NormalizeImage([]byte("%PDF-1.4 not an image"))
	assert.ErrorIs(t, err, ErrNotImage)
}
