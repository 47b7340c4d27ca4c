package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Luzifer/lgtm/pkg/rating"
	"github.com/Luzifer/lgtm/pkg/storage/local"
)

const testImageURL = "http://example.com/images/cat.gif"

func newTestCache(t *testing.T) (*Cache, string) {
	t.Helper()

	dir := t.TempDir()
	store, err := local.New(dir)
	require.NoError(t, err)

	return New(store, "com.example.test"), dir
}

func testRecord(id rating.ID) *rating.Record {
	return &rating.Record{
		ID:             id,
		ImageURL:       testImageURL,
		ActualImageURL: testImageURL,
		Likes:          10,
		Dislikes:       2,
		Impressions:    100,
		Credits:        5,
	}
}

func TestReadInfoMiss(t *testing.T) {
	c, _ := newTestCache(t)

	_, err := c.ReadInfo(context.Background())
	assert.ErrorIs(t, err, ErrMiss)
}

func TestWriteInfoIsIdempotent(t *testing.T) {
	c, dir := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.WriteInfo(ctx, testRecord("1")))
	require.NoError(t, c.WriteInfo(ctx, testRecord("2")))

	rec, err := c.ReadInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, testRecord("2"), rec)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, infoBlobName, entries[0].Name())
}

func TestReadInfoCorrupt(t *testing.T) {
	c, dir := newTestCache(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, infoBlobName), []byte("{nope"), 0o600))

	_, err := c.ReadInfo(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMiss)
}

func TestImageRoundTrip(t *testing.T) {
	c, dir := newTestCache(t)
	ctx := context.Background()

	_, err := c.ImagePath(ctx, testImageURL)
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, c.WriteImage(ctx, []byte("GIF89a"), testImageURL))

	p, err := c.ImagePath(ctx, testImageURL)
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(p))
	assert.Equal(t, ".gif", filepath.Ext(p))

	data, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "GIF89a", string(data))
}

func TestImageNameIsFixed(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.WriteImage(ctx, []byte("one"), "http://a.example.com/first.png"))
	require.NoError(t, c.WriteImage(ctx, []byte("two"), "http://b.example.com/second.png"))

	first, err := c.ImagePath(ctx, "http://a.example.com/first.png")
	require.NoError(t, err)
	second, err := c.ImagePath(ctx, "http://b.example.com/second.png")
	require.NoError(t, err)

	assert.Equal(t, first, second, "same extension maps to the same slot")

	data, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))
}

func TestWriteImageWithoutExtension(t *testing.T) {
	c, dir := newTestCache(t)
	ctx := context.Background()

	err := c.WriteImage(ctx, []byte("data"), "http://example.com/images/cat")
	assert.ErrorIs(t, err, ErrUnrecognizedExtension)

	_, err = c.ImagePath(ctx, "http://example.com/images/cat")
	assert.ErrorIs(t, err, ErrMiss)

	entries, err := os.ReadDir(dir)
	if !os.IsNotExist(err) {
		require.NoError(t, err)
		assert.Empty(t, entries)
	}
}

func TestClear(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.WriteInfo(ctx, testRecord("1")))
	require.NoError(t, c.WriteImage(ctx, []byte("GIF89a"), testImageURL))

	require.NoError(t, c.Clear(ctx))

	_, err := c.ReadInfo(ctx)
	assert.ErrorIs(t, err, ErrMiss)
	_, err = c.ImagePath(ctx, testImageURL)
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, c.Clear(ctx), "clearing an empty cache is fine")
}

func TestClearWithoutReadableInfo(t *testing.T) {
	c, dir := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.WriteImage(ctx, []byte("png"), "http://example.com/a.png"))
	require.NoError(t, c.WriteImage(ctx, []byte("gif"), "http://example.com/b.gif"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, infoBlobName), []byte("{nope"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "unrelated.txt"), []byte("keep"), 0o600))

	require.NoError(t, c.Clear(ctx))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "unrelated.txt", entries[0].Name())
}

func TestJoinLocation(t *testing.T) {
	assert.Equal(t, "gs://bucket/prefix/x.png", joinLocation("gs://bucket/prefix", "x.png"))
	assert.Equal(t, filepath.Join("/tmp/data", "x.png"), joinLocation("/tmp/data", "x.png"))
}
