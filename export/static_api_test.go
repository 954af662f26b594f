package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwhited/robocatalog/models"
)

type fakeSource struct {
	robots   []models.RobotSummary
	photoIDs map[uint][]uint
}

func (f *fakeSource) ListAllRobots() ([]models.RobotSummary, error) {
	return f.robots, nil
}

func (f *fakeSource) PhotoIDsByRobot(robotID uint) ([]uint, error) {
	return f.photoIDs[robotID], nil
}

func TestBuildProducts(t *testing.T) {
	year := 2023
	source := &fakeSource{
		robots: []models.RobotSummary{
			{RobotID: 1, Manufacturer: "Acme", ModelName: "X1", RobotType: "quadcopter", YearReleased: &year, CategoryName: "Drones", PhotoCount: 2},
			{RobotID: 2, Manufacturer: "Movex", ModelName: "M10", RobotType: "amr", CategoryName: "AMRs", PhotoCount: 0},
		},
		photoIDs: map[uint][]uint{
			1: {10, 11},
			2: nil,
		},
	}
	photoURLs := map[string]string{
		"10": "https://cdn.example.com/a.jpg",
		"11": "https://cdn.example.com/b.jpg",
	}

	products, err := BuildProducts(source, photoURLs)
	require.NoError(t, err)
	require.Len(t, products, 2)

	t.Run("mapped photos fill the gallery", func(t *testing.T) {
		drone := products[0]
		assert.Equal(t, uint(1), drone.ID)
		assert.Equal(t, "X1", drone.Name)
		assert.Equal(t, "Acme", drone.Vendor)
		assert.Equal(t, "https://cdn.example.com/a.jpg", drone.Image)
		// padded to four entries by repeating from the front
		require.Len(t, drone.Images, 4)
		assert.Equal(t, "https://cdn.example.com/a.jpg", drone.Images[2])
		assert.Equal(t, "🚁", drone.Emoji)
		assert.Contains(t, drone.Description, "Released in 2023")
		assert.Contains(t, drone.Description, "2 photo(s) available")
		assert.Equal(t, "20 m/s", drone.Specs.Speed)
	})

	t.Run("robot without photos gets a placeholder", func(t *testing.T) {
		amr := products[1]
		assert.Equal(t, "https://via.placeholder.com/400x300?text=Movex+M10", amr.Image)
		require.Len(t, amr.Images, 4)
		for _, img := range amr.Images {
			assert.Equal(t, amr.Image, img)
		}
		assert.Equal(t, "🤖", amr.Emoji)
		assert.NotContains(t, amr.Description, "Released in")
		assert.Equal(t, "5-600 kg", amr.Specs.Payload)
		assert.Equal(t, "2 m/s", amr.Specs.Speed)
	})
}

func TestPlaceholderURLEncodesSpaces(t *testing.T) {
	url := placeholderURL("Boston Dynamics", "Spot Arm")
	assert.Equal(t, "https://via.placeholder.com/400x300?text=Boston+Dynamics+Spot+Arm", url)
}

func TestGenerateStaticAPI(t *testing.T) {
	source := &fakeSource{
		robots: []models.RobotSummary{
			{RobotID: 1, Manufacturer: "Gripco", ModelName: "A200", RobotType: "articulated arm", CategoryName: "Robotic Arms"},
		},
		photoIDs: map[uint][]uint{},
	}

	outPath := filepath.Join(t.TempDir(), "api", "database-robots.json")
	require.NoError(t, GenerateStaticAPI(source, map[string]string{}, outPath))

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)

	var products []Product
	require.NoError(t, json.Unmarshal(data, &products))
	require.Len(t, products, 1)
	assert.Equal(t, "A200", products[0].Name)
	assert.Equal(t, "🦾", products[0].Emoji)
	assert.True(t, products[0].InStock)

	// camelCase keys expected by the front-end
	assert.Contains(t, string(data), `"priceNote"`)
	assert.Contains(t, string(data), `"inStock"`)
}
