package media

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategorySlug(t *testing.T) {
	assert.Equal(t, "robotic_arms", CategorySlug("Robotic Arms"))
	assert.Equal(t, "drones", CategorySlug("Drones"))
	assert.Equal(t, "amrs", CategorySlug("AMRs"))
}

func TestNewLocalStoragePreCreatesCategoryDirs(t *testing.T) {
	base := filepath.Join(t.TempDir(), "photo_storage")
	ls, err := NewLocalStorage(base, []string{"Drones", "Robotic Arms"})
	require.NoError(t, err)

	assert.DirExists(t, ls.CategoryDir("Drones"))
	assert.DirExists(t, ls.CategoryDir("Robotic Arms"))
	assert.True(t, strings.HasSuffix(ls.CategoryDir("Robotic Arms"), "robotic_arms"))
}

func TestSavePhoto(t *testing.T) {
	ls, err := NewLocalStorage(t.TempDir(), []string{"Drones"})
	require.NoError(t, err)

	path, name, sizeKB, err := ls.SavePhoto("Drones", "/some/source/shot.jpg", strings.NewReader(strings.Repeat("x", 2048)))
	require.NoError(t, err)

	assert.FileExists(t, path)
	assert.Equal(t, ls.CategoryDir("Drones"), filepath.Dir(path))
	assert.True(t, strings.HasSuffix(name, "_shot.jpg"))
	assert.Equal(t, int64(2), sizeKB)

	t.Run("same name twice does not collide", func(t *testing.T) {
		path2, name2, _, err := ls.SavePhoto("Drones", "shot.jpg", strings.NewReader("data"))
		require.NoError(t, err)
		assert.NotEqual(t, path, path2)
		assert.NotEqual(t, name, name2)
	})
}

func TestRemove(t *testing.T) {
	ls, err := NewLocalStorage(t.TempDir(), []string{"Drones"})
	require.NoError(t, err)

	path, _, _, err := ls.SavePhoto("Drones", "shot.jpg", strings.NewReader("data"))
	require.NoError(t, err)

	require.NoError(t, ls.Remove(path))
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))

	t.Run("missing file is not an error", func(t *testing.T) {
		assert.NoError(t, ls.Remove(path))
	})

	t.Run("refuses paths outside the base", func(t *testing.T) {
		outside := filepath.Join(t.TempDir(), "other.jpg")
		require.NoError(t, os.WriteFile(outside, []byte("x"), 0644))
		assert.Error(t, ls.Remove(outside))
		assert.FileExists(t, outside)
	})
}
