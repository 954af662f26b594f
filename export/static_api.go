// Package export produces the deployable artifacts derived from the
// catalog: the static marketplace JSON consumed by the front-end.
package export

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mwhited/robocatalog/models"
)

const (
	placeholderURLFormat = "https://via.placeholder.com/400x300?text=%s+%s"
	minGalleryImages     = 4
)

var categoryEmojis = map[string]string{
	"Drones":       "🚁",
	"AMRs":         "🤖",
	"Robotic Arms": "🦾",
}

// CatalogSource is what the exporter needs from the catalog service.
type CatalogSource interface {
	ListAllRobots() ([]models.RobotSummary, error)
	PhotoIDsByRobot(robotID uint) ([]uint, error)
}

// ProductSpec holds the display spec block of a marketplace product.
type ProductSpec struct {
	Payload  string `json:"payload"`
	Battery  string `json:"battery"`
	Autonomy string `json:"autonomy"`
	Speed    string `json:"speed"`
}

// ProductFeature is one highlighted capability card.
type ProductFeature struct {
	Icon  string `json:"icon"`
	Title string `json:"title"`
	Desc  string `json:"desc"`
}

// Product is one display-ready marketplace record.
type Product struct {
	ID           uint             `json:"id"`
	Name         string           `json:"name"`
	Vendor       string           `json:"vendor"`
	Price        string           `json:"price"`
	PriceNote    string           `json:"priceNote"`
	Image        string           `json:"image"`
	Images       []string         `json:"images"`
	Category     string           `json:"category"`
	Type         string           `json:"type"`
	Rating       float64          `json:"rating"`
	Reviews      int              `json:"reviews"`
	Emoji        string           `json:"emoji"`
	Badge        string           `json:"badge"`
	InStock      bool             `json:"inStock"`
	Verified     bool             `json:"verified"`
	Description  string           `json:"description"`
	Specs        ProductSpec      `json:"specs"`
	Features     []ProductFeature `json:"features"`
	Applications []string         `json:"applications"`
}

// BuildProducts converts every robot into a marketplace product,
// resolving photo IDs against the published URL mapping. Robots without
// mapped photos get a placeholder image, and every gallery is padded to
// at least four entries by repetition.
func BuildProducts(source CatalogSource, photoURLs map[string]string) ([]Product, error) {
	robots, err := source.ListAllRobots()
	if err != nil {
		return nil, err
	}

	products := make([]Product, 0, len(robots))
	for _, robot := range robots {
		photoIDs, err := source.PhotoIDsByRobot(robot.RobotID)
		if err != nil {
			return nil, err
		}

		urls := make([]string, 0, len(photoIDs))
		for _, pid := range photoIDs {
			if url, ok := photoURLs[strconv.FormatUint(uint64(pid), 10)]; ok {
				urls = append(urls, url)
			}
		}

		if len(urls) == 0 {
			urls = []string{placeholderURL(robot.Manufacturer, robot.ModelName)}
		}
		for len(urls) < minGalleryImages {
			urls = append(urls, urls[0])
		}

		products = append(products, Product{
			ID:          robot.RobotID,
			Name:        robot.ModelName,
			Vendor:      robot.Manufacturer,
			Price:       "Contact for Quote",
			PriceNote:   "Custom pricing based on requirements",
			Image:       urls[0],
			Images:      urls[:minGalleryImages],
			Category:    robot.CategoryName,
			Type:        robot.RobotType,
			Rating:      4.8,
			Reviews:     124,
			Emoji:       emojiFor(robot.CategoryName),
			InStock:     true,
			Verified:    true,
			Description: describe(robot, len(photoIDs)),
			Specs:       specsFor(robot.CategoryName),
			Features: []ProductFeature{
				{Icon: "🎯", Title: "Precision", Desc: "High accuracy operations"},
				{Icon: "🔒", Title: "Safety", Desc: "Advanced safety systems"},
				{Icon: "📊", Title: "Analytics", Desc: "Real-time monitoring"},
				{Icon: "🔧", Title: "Maintenance", Desc: "Easy to service"},
			},
			Applications: []string{"Manufacturing", "Warehousing", "Logistics", "Inspection"},
		})
	}
	return products, nil
}

// GenerateStaticAPI writes the marketplace product array as JSON.
func GenerateStaticAPI(source CatalogSource, photoURLs map[string]string, outputPath string) error {
	products, err := BuildProducts(source, photoURLs)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
	}

	data, err := json.MarshalIndent(products, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal products: %w", err)
	}
	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write static API %s: %w", outputPath, err)
	}

	log.Printf("export: generated %s with %d products", outputPath, len(products))
	return nil
}

func placeholderURL(manufacturer, model string) string {
	enc := func(s string) string { return strings.ReplaceAll(s, " ", "+") }
	return fmt.Sprintf(placeholderURLFormat, enc(manufacturer), enc(model))
}

func emojiFor(category string) string {
	if e, ok := categoryEmojis[category]; ok {
		return e
	}
	return "🤖"
}

func describe(robot models.RobotSummary, photoCount int) string {
	desc := fmt.Sprintf("Professional %s from %s. ", robot.RobotType, robot.Manufacturer)
	if robot.YearReleased != nil {
		desc += fmt.Sprintf("Released in %d. ", *robot.YearReleased)
	}
	desc += fmt.Sprintf("%d photo(s) available.", photoCount)
	return desc
}

func specsFor(category string) ProductSpec {
	spec := ProductSpec{
		Payload:  "5-15 kg",
		Battery:  "30 min - 12 hrs",
		Autonomy: "Advanced Navigation",
		Speed:    "20 m/s",
	}
	if category == "AMRs" {
		spec.Payload = "5-600 kg"
		spec.Speed = "2 m/s"
	}
	return spec
}
