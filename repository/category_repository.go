package repository

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/mwhited/robocatalog/models"
)

// CategoryRepository handles database operations for Category entities
type CategoryRepository struct {
	DB *gorm.DB
}

// NewCategoryRepository creates a new instance of CategoryRepository
func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{DB: db}
}

// GetByName retrieves a category by its exact name
func (r *CategoryRepository) GetByName(name string) (*models.Category, error) {
	var category models.Category
	err := r.DB.Where("name = ?", name).First(&category).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get category by name %s: %w", name, err)
	}
	return &category, nil
}

// ListAll retrieves all categories, ordered by name
func (r *CategoryRepository) ListAll() ([]models.Category, error) {
	var categories []models.Category
	err := r.DB.Order("name ASC").Find(&categories).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}
