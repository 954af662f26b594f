package catalog

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/facette/natsort"
	"gorm.io/gorm"

	"github.com/mwhited/robocatalog/database"
	"github.com/mwhited/robocatalog/media"
	"github.com/mwhited/robocatalog/models"
	"github.com/mwhited/robocatalog/repository"
	"github.com/mwhited/robocatalog/utils"
)

// PhotoQueue receives newly stored photos for asynchronous processing
// (thumbnail generation and EXIF extraction). May be nil, in which case
// uploads skip post-processing.
type PhotoQueue interface {
	Enqueue(photoID uint, filePath string)
}

// Service is the sole mediator between the application and persistent
// storage. It owns the referential lookups the schema does not enforce
// declaratively and the copy-then-commit upload sequence.
type Service struct {
	sqlDB      *sql.DB
	categories repository.CategoryRepositoryInterface
	robots     repository.RobotRepositoryInterface
	photos     repository.PhotoRepositoryInterface
	store      media.Store
	queue      PhotoQueue
}

// NewService wires the catalog service. queue may be nil.
func NewService(db *gorm.DB, store media.Store, queue PhotoQueue) (*Service, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return &Service{
		sqlDB:      sqlDB,
		categories: repository.NewCategoryRepository(db),
		robots:     repository.NewRobotRepository(db),
		photos:     repository.NewPhotoRepository(db),
		store:      store,
		queue:      queue,
	}, nil
}

// AddRobotInput carries the fields of a robot creation request.
type AddRobotInput struct {
	CategoryName   string
	Manufacturer   string
	ModelName      string
	RobotType      string
	YearReleased   *int
	Specifications *string
}

// AddRobot resolves the category by exact name and inserts the robot,
// returning the generated ID.
func (s *Service) AddRobot(input AddRobotInput) (uint, error) {
	if input.CategoryName == "" || input.Manufacturer == "" || input.ModelName == "" || input.RobotType == "" {
		return 0, &ValidationError{Msg: "category_name, manufacturer, model_name and robot_type are required"}
	}

	category, err := s.categories.GetByName(input.CategoryName)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, &NotFoundError{Resource: "category", Key: input.CategoryName}
		}
		return 0, err
	}

	robot := &models.Robot{
		CategoryID:     category.ID,
		Manufacturer:   input.Manufacturer,
		ModelName:      input.ModelName,
		RobotType:      input.RobotType,
		YearReleased:   input.YearReleased,
		Specifications: input.Specifications,
	}
	if err := s.robots.Create(robot); err != nil {
		return 0, err
	}
	return robot.ID, nil
}

// AddPhotoInput carries the fields of a photo upload request.
// SourcePath must point to a readable file on local disk.
type AddPhotoInput struct {
	RobotID      uint
	SourcePath   string
	PhotoType    string
	Description  *string
	Tags         []string
	Photographer *string
}

// AddPhoto validates the source file and robot, copies the file into
// the category-partitioned storage tree, and commits the photo row plus
// tag links as one transaction. If the commit fails the stored copy is
// removed again.
func (s *Service) AddPhoto(input AddPhotoInput) (uint, error) {
	if !utils.IsAllowedPhoto(input.SourcePath) {
		return 0, &ValidationError{Msg: fmt.Sprintf("file type not allowed: %s", filepath.Ext(input.SourcePath))}
	}

	if _, err := os.Stat(input.SourcePath); err != nil {
		if os.IsNotExist(err) {
			return 0, &NotFoundError{Resource: "source file", Key: input.SourcePath}
		}
		return 0, fmt.Errorf("failed to stat source file %s: %w", input.SourcePath, err)
	}

	categoryName, err := s.robots.GetCategoryName(input.RobotID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, &NotFoundError{Resource: "robot", Key: strconv.FormatUint(uint64(input.RobotID), 10)}
		}
		return 0, err
	}

	src, err := os.Open(input.SourcePath)
	if err != nil {
		return 0, fmt.Errorf("failed to open source file %s: %w", input.SourcePath, err)
	}
	destPath, fileName, sizeKB, err := s.store.SavePhoto(categoryName, input.SourcePath, src)
	src.Close()
	if err != nil {
		return 0, err
	}

	photoType := input.PhotoType
	if photoType == "" {
		photoType = "general"
	}

	photo := &models.Photo{
		RobotID:         input.RobotID,
		FileName:        fileName,
		FilePath:        destPath,
		UploadDate:      time.Now().Unix(),
		PhotoType:       photoType,
		FileSizeKB:      sizeKB,
		Description:     input.Description,
		Photographer:    input.Photographer,
		ThumbnailStatus: database.StatusPending,
	}
	if err := s.photos.CreateWithTags(photo, input.Tags); err != nil {
		// the row never committed; drop the copy so no orphan is left behind
		if rmErr := s.store.Remove(destPath); rmErr != nil {
			log.Printf("catalog: failed to clean up stored copy %s: %v", destPath, rmErr)
		}
		return 0, err
	}

	if s.queue != nil {
		s.queue.Enqueue(photo.ID, destPath)
	}
	return photo.ID, nil
}

// AddTagToPhoto links a tag to a photo, creating the tag on first use.
// The operation is idempotent.
func (s *Service) AddTagToPhoto(photoID uint, tagName string) error {
	if strings.TrimSpace(tagName) == "" {
		return &ValidationError{Msg: "tag name must not be empty"}
	}
	err := s.photos.AddTag(photoID, tagName)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &NotFoundError{Resource: "photo", Key: strconv.FormatUint(uint64(photoID), 10)}
	}
	return err
}

// SearchPhotos applies the optional conjunctive filters and returns
// denormalized photo+robot rows.
func (s *Service) SearchPhotos(filter database.PhotoFilter) ([]models.PhotoSearchResult, error) {
	return database.SearchPhotos(s.sqlDB, filter)
}

// GetStatistics returns catalog-wide aggregates.
func (s *Service) GetStatistics() (database.Statistics, error) {
	return database.CollectStatistics(s.sqlDB)
}

// ListAllRobots returns one summary row per robot, ordered by category
// name, manufacturer, then model name.
func (s *Service) ListAllRobots() ([]models.RobotSummary, error) {
	return database.ListRobotSummaries(s.sqlDB)
}

// GetRobot returns a robot with its category preloaded.
func (s *Service) GetRobot(robotID uint) (*models.Robot, error) {
	robot, err := s.robots.GetByID(robotID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Resource: "robot", Key: strconv.FormatUint(uint64(robotID), 10)}
	}
	return robot, err
}

// PhotosOfRobot lists the photos of one robot, naturally sorted by file
// name so numbered shots display in shooting order.
func (s *Service) PhotosOfRobot(robotID uint) ([]models.Photo, error) {
	if _, err := s.robots.GetCategoryName(robotID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "robot", Key: strconv.FormatUint(uint64(robotID), 10)}
		}
		return nil, err
	}
	photos, err := s.photos.ListByRobot(robotID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(photos, func(i, j int) bool {
		return natsort.Compare(photos[i].FileName, photos[j].FileName)
	})
	return photos, nil
}

// GetPhoto returns a single photo row.
func (s *Service) GetPhoto(photoID uint) (*models.Photo, error) {
	photo, err := s.photos.GetByID(photoID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Resource: "photo", Key: strconv.FormatUint(uint64(photoID), 10)}
	}
	return photo, err
}

// TagsForPhoto lists the tags linked to a photo.
func (s *Service) TagsForPhoto(photoID uint) ([]models.Tag, error) {
	if _, err := s.photos.GetByID(photoID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "photo", Key: strconv.FormatUint(uint64(photoID), 10)}
		}
		return nil, err
	}
	return s.photos.TagsForPhoto(photoID)
}

// PhotoIDsByRobot lists a robot's photo IDs, newest upload first.
func (s *Service) PhotoIDsByRobot(robotID uint) ([]uint, error) {
	return s.photos.PhotoIDsByRobot(robotID)
}

// ExportCatalog writes the human-readable text report of all robots
// grouped by category with photo counts.
func (s *Service) ExportCatalog(outputPath string) error {
	robots, err := s.ListAllRobots()
	if err != nil {
		return err
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create catalog export %s: %w", outputPath, err)
	}
	defer f.Close()

	rule := strings.Repeat("=", 80)
	divider := strings.Repeat("-", 80)
	fmt.Fprintln(f, rule)
	fmt.Fprintln(f, "ROBOTICS PHOTO DATABASE CATALOG")
	fmt.Fprintln(f, rule)
	fmt.Fprintln(f)

	for _, robot := range robots {
		fmt.Fprintf(f, "\n%s: %s %s\n", robot.CategoryName, robot.Manufacturer, robot.ModelName)
		fmt.Fprintf(f, "  Type: %s\n", robot.RobotType)
		if robot.YearReleased != nil {
			fmt.Fprintf(f, "  Year: %d\n", *robot.YearReleased)
		}
		fmt.Fprintf(f, "  Photos: %d\n", robot.PhotoCount)
		fmt.Fprintln(f, divider)
	}

	log.Printf("catalog: exported %d robots to %s", len(robots), outputPath)
	return nil
}
