package repository

import (
	"github.com/mwhited/robocatalog/models"
)

// CategoryRepositoryInterface defines operations over the fixed
// category reference set.
type CategoryRepositoryInterface interface {
	GetByName(name string) (*models.Category, error)
	ListAll() ([]models.Category, error)
}

// RobotRepositoryInterface defines operations over robot records.
type RobotRepositoryInterface interface {
	Create(robot *models.Robot) error
	GetByID(id uint) (*models.Robot, error)
	GetCategoryName(robotID uint) (string, error)
}

// PhotoRepositoryInterface defines operations over photo records and
// their tag links.
type PhotoRepositoryInterface interface {
	CreateWithTags(photo *models.Photo, tags []string) error
	GetByID(id uint) (*models.Photo, error)
	ListByRobot(robotID uint) ([]models.Photo, error)
	PhotoIDsByRobot(robotID uint) ([]uint, error)
	AddTag(photoID uint, tagName string) error
	TagsForPhoto(photoID uint) ([]models.Tag, error)
	ListPublishable() ([]PublishablePhoto, error)
	UpdateThumbnailResult(photoID uint, thumbPath *string, taskErr error) error
	UpdateMetadata(photoID uint, width, height *int, cameraMake, cameraModel *string, takenAt *int64) error
}
