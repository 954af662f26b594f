package models

// Robot represents a catalogued robot model in the database using GORM.
// It corresponds to the 'robots' table.
//
// A robot belongs to exactly one category. Robots are created via the
// catalog service and are never updated or deleted.
type Robot struct {
	ID             uint    `gorm:"primaryKey;autoIncrement" json:"robot_id"`
	CategoryID     uint    `gorm:"not null;index" json:"category_id"`
	Manufacturer   string  `gorm:"not null" json:"manufacturer"`
	ModelName      string  `gorm:"not null" json:"model_name"`
	RobotType      string  `gorm:"not null" json:"robot_type"`
	YearReleased   *int    `gorm:"" json:"year_released,omitempty"`   // Nullable
	Specifications *string `gorm:"" json:"specifications,omitempty"` // Nullable

	CreatedAt int64 `gorm:"not null;autoCreateTime" json:"created_at"` // Unix timestamp

	// Relationships
	Category Category `gorm:"foreignKey:CategoryID" json:"-"`
	Photos   []Photo  `gorm:"foreignKey:RobotID" json:"photos,omitempty"`
}

// TableName explicitly sets the table name for GORM.
func (Robot) TableName() string {
	return "robots"
}

// RobotSummary is the denormalized row shape returned by robot listings:
// the robot joined with its category name plus a computed photo count.
type RobotSummary struct {
	RobotID      uint   `json:"robot_id"`
	Manufacturer string `json:"manufacturer"`
	ModelName    string `json:"model_name"`
	RobotType    string `json:"robot_type"`
	YearReleased *int   `json:"year_released,omitempty"`
	CategoryName string `json:"category_name"`
	PhotoCount   int    `json:"photo_count"`
}
