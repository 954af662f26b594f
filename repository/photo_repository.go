package repository

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/mwhited/robocatalog/database"
	"github.com/mwhited/robocatalog/models"
)

// PublishablePhoto is the row shape the batch publisher consumes: a
// photo joined with its robot and category so the remote object key can
// be derived.
type PublishablePhoto struct {
	PhotoID      uint
	FilePath     string
	FileName     string
	RobotID      uint
	CategoryName string
}

// PhotoRepository handles database operations for Photo entities and
// their tag links
type PhotoRepository struct {
	DB *gorm.DB
}

// NewPhotoRepository creates a new instance of PhotoRepository
func NewPhotoRepository(db *gorm.DB) *PhotoRepository {
	return &PhotoRepository{DB: db}
}

// CreateWithTags inserts a photo row and links the given tags in a
// single transaction. Tags are created lazily; linking an already
// linked tag is a no-op.
func (r *PhotoRepository) CreateWithTags(photo *models.Photo, tags []string) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Tags").Create(photo).Error; err != nil {
			return fmt.Errorf("failed to create photo %s: %w", photo.FileName, err)
		}
		for _, tagName := range tags {
			if err := linkTag(tx, photo.ID, tagName); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetByID retrieves a photo by its ID
func (r *PhotoRepository) GetByID(id uint) (*models.Photo, error) {
	var photo models.Photo
	err := r.DB.First(&photo, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get photo by ID %d: %w", id, err)
	}
	return &photo, nil
}

// ListByRobot retrieves all photos of one robot
func (r *PhotoRepository) ListByRobot(robotID uint) ([]models.Photo, error) {
	var photos []models.Photo
	err := r.DB.Where("robot_id = ?", robotID).Find(&photos).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list photos for robot %d: %w", robotID, err)
	}
	return photos, nil
}

// PhotoIDsByRobot returns the photo IDs of one robot, newest upload
// first
func (r *PhotoRepository) PhotoIDsByRobot(robotID uint) ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&models.Photo{}).
		Where("robot_id = ?", robotID).
		Order("upload_date DESC").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list photo IDs for robot %d: %w", robotID, err)
	}
	return ids, nil
}

// AddTag links a tag to a photo, creating the tag if it does not exist
// yet. Calling it twice with the same pair leaves exactly one tag row
// and one link row.
func (r *PhotoRepository) AddTag(photoID uint, tagName string) error {
	var count int64
	if err := r.DB.Model(&models.Photo{}).Where("id = ?", photoID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check photo %d: %w", photoID, err)
	}
	if count == 0 {
		return gorm.ErrRecordNotFound
	}
	return r.DB.Transaction(func(tx *gorm.DB) error {
		return linkTag(tx, photoID, tagName)
	})
}

// linkTag performs the explicit lookup-or-create for the tag and then
// for the photo/tag link, avoiding engine-specific conflict handling
func linkTag(tx *gorm.DB, photoID uint, tagName string) error {
	tag := models.Tag{Name: tagName}
	if err := tx.Where(models.Tag{Name: tagName}).FirstOrCreate(&tag).Error; err != nil {
		return fmt.Errorf("failed to ensure tag %s: %w", tagName, err)
	}
	link := models.PhotoTag{PhotoID: photoID, TagID: tag.ID}
	if err := tx.Where(link).FirstOrCreate(&link).Error; err != nil {
		return fmt.Errorf("failed to link tag %s to photo %d: %w", tagName, photoID, err)
	}
	return nil
}

// TagsForPhoto lists the tags linked to a photo, ordered by name
func (r *PhotoRepository) TagsForPhoto(photoID uint) ([]models.Tag, error) {
	var tags []models.Tag
	err := r.DB.Table("tags").
		Joins("JOIN photo_tags ON photo_tags.tag_id = tags.id").
		Where("photo_tags.photo_id = ?", photoID).
		Order("tags.name ASC").
		Find(&tags).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list tags for photo %d: %w", photoID, err)
	}
	return tags, nil
}

// ListPublishable returns every photo joined with robot and category
// for the batch publisher
func (r *PhotoRepository) ListPublishable() ([]PublishablePhoto, error) {
	var rows []PublishablePhoto
	err := r.DB.Table("photos").
		Select("photos.id AS photo_id, photos.file_path, photos.file_name, robots.id AS robot_id, robot_categories.name AS category_name").
		Joins("JOIN robots ON photos.robot_id = robots.id").
		Joins("JOIN robot_categories ON robots.category_id = robot_categories.id").
		Order("photos.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list publishable photos: %w", err)
	}
	return rows, nil
}

// UpdateThumbnailResult records the outcome of a thumbnail generation
// task for a photo
func (r *PhotoRepository) UpdateThumbnailResult(photoID uint, thumbPath *string, taskErr error) error {
	status := database.StatusDone
	var errStr *string
	if taskErr != nil {
		status = database.StatusError
		s := taskErr.Error()
		errStr = &s
	}

	updates := map[string]interface{}{
		"thumbnail_path":   thumbPath,
		"thumbnail_status": status,
		"thumbnail_error":  errStr,
	}
	result := r.DB.Model(&models.Photo{}).Where("id = ?", photoID).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update thumbnail result for photo %d: %w", photoID, result.Error)
	}
	return nil
}

// UpdateMetadata stores EXIF metadata extracted after upload
func (r *PhotoRepository) UpdateMetadata(photoID uint, width, height *int, cameraMake, cameraModel *string, takenAt *int64) error {
	updates := map[string]interface{}{
		"width":        width,
		"height":       height,
		"camera_make":  cameraMake,
		"camera_model": cameraModel,
		"taken_at":     takenAt,
	}
	result := r.DB.Model(&models.Photo{}).Where("id = ?", photoID).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update metadata for photo %d: %w", photoID, result.Error)
	}
	return nil
}
