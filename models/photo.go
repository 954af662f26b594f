package models

// Photo represents an uploaded robot photo in the database using GORM.
// It corresponds to the 'photos' table.
//
// FilePath is the authoritative on-disk location of the stored copy;
// the source file handed to the upload operation is copied into the
// category-partitioned storage tree before the row is committed.
type Photo struct {
	ID           uint    `gorm:"primaryKey;autoIncrement" json:"photo_id"`
	RobotID      uint    `gorm:"not null;index" json:"robot_id"`
	FileName     string  `gorm:"not null" json:"file_name"`
	FilePath     string  `gorm:"not null" json:"file_path"`
	UploadDate   int64   `gorm:"not null;index" json:"upload_date"` // Unix timestamp
	PhotoType    string  `gorm:"not null;default:general" json:"photo_type"`
	FileSizeKB   int64   `gorm:"not null" json:"file_size_kb"`
	Description  *string `gorm:"" json:"description,omitempty"`  // Nullable
	Photographer *string `gorm:"" json:"photographer,omitempty"` // Nullable

	// EXIF metadata extracted asynchronously after upload
	Width       *int    `gorm:"" json:"width,omitempty"`        // Nullable
	Height      *int    `gorm:"" json:"height,omitempty"`       // Nullable
	CameraMake  *string `gorm:"" json:"camera_make,omitempty"`  // Nullable
	CameraModel *string `gorm:"" json:"camera_model,omitempty"` // Nullable
	TakenAt     *int64  `gorm:"" json:"taken_at,omitempty"`     // Nullable, Unix timestamp

	// thumbnail generation state
	ThumbnailPath   *string `gorm:"" json:"thumbnail_path,omitempty"` // Nullable
	ThumbnailStatus string  `gorm:"not null;default:pending" json:"thumbnail_status"`
	ThumbnailError  *string `gorm:"" json:"thumbnail_error,omitempty"` // Nullable

	// Relationships
	Tags []Tag `gorm:"many2many:photo_tags;joinForeignKey:PhotoID;joinReferences:TagID" json:"tags,omitempty"`
}

// TableName explicitly sets the table name for GORM.
func (Photo) TableName() string {
	return "photos"
}

// Tag is a free-form label attachable to many photos. Tag names are
// case-sensitive and unique; tags are created lazily on first use.
type Tag struct {
	ID   uint   `gorm:"primaryKey;autoIncrement" json:"tag_id"`
	Name string `gorm:"not null;unique" json:"tag_name"`
}

// TableName explicitly sets the table name for GORM.
func (Tag) TableName() string {
	return "tags"
}

// PhotoTag is the many-to-many join between photos and tags. Linking is
// idempotent: inserting an existing pair is a no-op.
type PhotoTag struct {
	PhotoID uint `gorm:"primaryKey" json:"photo_id"`
	TagID   uint `gorm:"primaryKey" json:"tag_id"`
}

// TableName explicitly sets the table name for GORM.
func (PhotoTag) TableName() string {
	return "photo_tags"
}

// PhotoSearchResult is the denormalized row shape returned by photo
// search: photo fields joined with robot manufacturer/model and the
// category name.
type PhotoSearchResult struct {
	PhotoID      uint    `json:"photo_id"`
	FileName     string  `json:"file_name"`
	FilePath     string  `json:"file_path"`
	UploadDate   int64   `json:"upload_date"`
	PhotoType    string  `json:"photo_type"`
	Description  *string `json:"description,omitempty"`
	Manufacturer string  `json:"manufacturer"`
	ModelName    string  `json:"model_name"`
	CategoryName string  `json:"category_name"`
}
