package publish

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwhited/robocatalog/models"
	"github.com/mwhited/robocatalog/repository"
)

type fakePhotoRepo struct {
	publishable []repository.PublishablePhoto
}

func (f *fakePhotoRepo) ListPublishable() ([]repository.PublishablePhoto, error) {
	return f.publishable, nil
}

func (f *fakePhotoRepo) CreateWithTags(photo *models.Photo, tags []string) error { return nil }
func (f *fakePhotoRepo) GetByID(id uint) (*models.Photo, error)                  { return nil, nil }
func (f *fakePhotoRepo) ListByRobot(robotID uint) ([]models.Photo, error)        { return nil, nil }
func (f *fakePhotoRepo) PhotoIDsByRobot(robotID uint) ([]uint, error)            { return nil, nil }
func (f *fakePhotoRepo) AddTag(photoID uint, tagName string) error               { return nil }
func (f *fakePhotoRepo) TagsForPhoto(photoID uint) ([]models.Tag, error)         { return nil, nil }
func (f *fakePhotoRepo) UpdateThumbnailResult(photoID uint, thumbPath *string, taskErr error) error {
	return nil
}
func (f *fakePhotoRepo) UpdateMetadata(photoID uint, width, height *int, cameraMake, cameraModel *string, takenAt *int64) error {
	return nil
}

// fakeTarget records uploads and can fail selected keys.
type fakeTarget struct {
	stored   map[string]string // key -> content type
	failKeys map[string]bool
}

func (t *fakeTarget) Name() string { return "fake" }

func (t *fakeTarget) Store(ctx context.Context, key, contentType string, reader io.Reader, size int64) (string, error) {
	if t.failKeys[key] {
		return "", errors.New("simulated upload failure")
	}
	if _, err := io.Copy(io.Discard, reader); err != nil {
		return "", err
	}
	if t.stored == nil {
		t.stored = make(map[string]string)
	}
	t.stored[key] = contentType
	return "https://cdn.example.com/" + key, nil
}

func (t *fakeTarget) Close() error { return nil }

func writePhotoFile(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("image-bytes"), 0644))
	return path
}

func TestPublisherRun(t *testing.T) {
	dir := t.TempDir()
	dronePath := writePhotoFile(t, dir, "drone.jpg")
	armPath := writePhotoFile(t, dir, "arm.png")

	repo := &fakePhotoRepo{
		publishable: []repository.PublishablePhoto{
			{PhotoID: 1, FilePath: dronePath, FileName: "drone.jpg", RobotID: 3, CategoryName: "Drones"},
			{PhotoID: 2, FilePath: armPath, FileName: "arm.png", RobotID: 5, CategoryName: "Robotic Arms"},
			{PhotoID: 3, FilePath: filepath.Join(dir, "missing.jpg"), FileName: "missing.jpg", RobotID: 3, CategoryName: "Drones"},
		},
	}
	target := &fakeTarget{}
	mappingPath := filepath.Join(dir, "photo_urls.json")

	p := &Publisher{Photos: repo, Target: target, MappingPath: mappingPath}
	summary, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Uploaded)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 0, summary.Failed)

	// keys carry the slugged category and the robot directory
	assert.Equal(t, "image/jpeg", target.stored["photos/drones/robot_3/drone.jpg"])
	assert.Equal(t, "image/png", target.stored["photos/robotic-arms/robot_5/arm.png"])

	mapping, err := ReadURLMapping(mappingPath)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/photos/drones/robot_3/drone.jpg", mapping["1"])
	assert.Equal(t, "https://cdn.example.com/photos/robotic-arms/robot_5/arm.png", mapping["2"])
	assert.NotContains(t, mapping, "3")
}

func TestPublisherRunContinuesPastFailures(t *testing.T) {
	dir := t.TempDir()
	okPath := writePhotoFile(t, dir, "ok.jpg")
	badPath := writePhotoFile(t, dir, "bad.jpg")

	repo := &fakePhotoRepo{
		publishable: []repository.PublishablePhoto{
			{PhotoID: 1, FilePath: badPath, FileName: "bad.jpg", RobotID: 1, CategoryName: "Drones"},
			{PhotoID: 2, FilePath: okPath, FileName: "ok.jpg", RobotID: 1, CategoryName: "Drones"},
		},
	}
	target := &fakeTarget{failKeys: map[string]bool{"photos/drones/robot_1/bad.jpg": true}}
	mappingPath := filepath.Join(dir, "photo_urls.json")

	p := &Publisher{Photos: repo, Target: target, MappingPath: mappingPath}
	summary, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Uploaded)
	assert.Equal(t, 1, summary.Failed)

	mapping, err := ReadURLMapping(mappingPath)
	require.NoError(t, err)
	assert.NotContains(t, mapping, "1")
	assert.Contains(t, mapping, "2")
}

func TestKeySlug(t *testing.T) {
	assert.Equal(t, "robotic-arms", KeySlug("Robotic Arms"))
	assert.Equal(t, "drones", KeySlug("Drones"))
}

func TestURLMappingRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mapping.json")
	in := map[string]string{"1": "https://example.com/a.jpg"}
	require.NoError(t, WriteURLMapping(path, in))

	out, err := ReadURLMapping(path)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	_, err = ReadURLMapping(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}
