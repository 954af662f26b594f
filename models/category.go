package models

// Category represents a top-level robot classification in the database
// using GORM. It corresponds to the 'robot_categories' table.
//
// The category set is fixed reference data seeded at migration time and
// is never modified by the application.
type Category struct {
	ID   uint   `gorm:"primaryKey;autoIncrement" json:"category_id"`
	Name string `gorm:"not null;unique" json:"category_name"`
}

// TableName explicitly sets the table name for GORM.
func (Category) TableName() string {
	return "robot_categories"
}
