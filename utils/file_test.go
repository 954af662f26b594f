package utils

import (
	"image/color"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsAllowedPhoto(t *testing.T) {
	assert.True(t, IsAllowedPhoto("shot.jpg"))
	assert.True(t, IsAllowedPhoto("SHOT.JPEG"))
	assert.True(t, IsAllowedPhoto("diagram.png"))
	assert.True(t, IsAllowedPhoto("anim.gif"))
	assert.True(t, IsAllowedPhoto("modern.webp"))
	assert.False(t, IsAllowedPhoto("notes.txt"))
	assert.False(t, IsAllowedPhoto("archive.jpg.zip"))
	assert.False(t, IsAllowedPhoto("noextension"))
}

func TestContentTypeForPhoto(t *testing.T) {
	assert.Equal(t, "image/jpeg", ContentTypeForPhoto("a.jpg"))
	assert.Equal(t, "image/jpeg", ContentTypeForPhoto("a.jpeg"))
	assert.Equal(t, "image/png", ContentTypeForPhoto("a.PNG"))
	assert.Equal(t, "image/webp", ContentTypeForPhoto("a.webp"))
	assert.Equal(t, "image/gif", ContentTypeForPhoto("a.gif"))
	assert.Equal(t, "image/jpeg", ContentTypeForPhoto("unknown.bin"))
}

func TestGenerateThumbnail(t *testing.T) {
	srcDir := t.TempDir()
	srcPath := filepath.Join(srcDir, "original.jpg")
	require.NoError(t, imaging.Save(imaging.New(800, 600, color.White), srcPath))

	thumbDir := filepath.Join(t.TempDir(), "thumbs")
	thumbPath, err := GenerateThumbnail(srcPath, thumbDir, 300, 300)
	require.NoError(t, err)
	assert.Equal(t, thumbDir, filepath.Dir(thumbPath))
	assert.Equal(t, ".jpg", filepath.Ext(thumbPath))

	thumb, err := imaging.Open(thumbPath)
	require.NoError(t, err)
	bounds := thumb.Bounds()
	assert.LessOrEqual(t, bounds.Dx(), 300)
	assert.LessOrEqual(t, bounds.Dy(), 300)
	// aspect ratio preserved: 800x600 fit into 300x300 is 300x225
	assert.Equal(t, 300, bounds.Dx())
	assert.Equal(t, 225, bounds.Dy())

	t.Run("unreadable source fails", func(t *testing.T) {
		_, err := GenerateThumbnail(filepath.Join(srcDir, "missing.jpg"), thumbDir, 300, 300)
		assert.Error(t, err)
	})
}
