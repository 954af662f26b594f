package repository

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/mwhited/robocatalog/models"
)

// RobotRepository handles database operations for Robot entities
type RobotRepository struct {
	DB *gorm.DB
}

// NewRobotRepository creates a new instance of RobotRepository
func NewRobotRepository(db *gorm.DB) *RobotRepository {
	return &RobotRepository{DB: db}
}

// Create creates a new robot record in the database
func (r *RobotRepository) Create(robot *models.Robot) error {
	err := r.DB.Create(robot).Error
	if err != nil {
		return fmt.Errorf("failed to create robot %s %s: %w", robot.Manufacturer, robot.ModelName, err)
	}
	return nil
}

// GetByID retrieves a robot by its ID with its category preloaded
func (r *RobotRepository) GetByID(id uint) (*models.Robot, error) {
	var robot models.Robot
	err := r.DB.Preload("Category").First(&robot, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get robot by ID %d: %w", id, err)
	}
	return &robot, nil
}

// GetCategoryName resolves the category name for a robot, joined
// through the robot's category reference
func (r *RobotRepository) GetCategoryName(robotID uint) (string, error) {
	var name string
	err := r.DB.Table("robots").
		Select("robot_categories.name").
		Joins("JOIN robot_categories ON robots.category_id = robot_categories.id").
		Where("robots.id = ?", robotID).
		Scan(&name).Error
	if err != nil {
		return "", fmt.Errorf("failed to resolve category for robot %d: %w", robotID, err)
	}
	if name == "" {
		return "", gorm.ErrRecordNotFound
	}
	return name, nil
}
