package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
)

const (
	DefaultThumbnailsSubDir = "thumbnails"
)

const (
	defaultThumbnailQueueSize  = 100
	defaultNumThumbnailWorkers = 2
	defaultThumbnailMaxSize    = 300
	defaultMaxUploadMB         = 50
)

type Config struct {
	// database path
	DatabasePath string

	// photo storage configuration
	PhotoStoragePath string // root for stored originals, one subdirectory per category
	ThumbnailsPath   string // full-calculated path for generated thumbnails

	// upload settings
	MaxUploadBytes int64

	// thumbnail generation settings
	ThumbnailMaxSize int

	// worker settings
	ThumbnailQueueSize  int
	NumThumbnailWorkers int

	// export artifacts
	CatalogExportPath string // text catalog report
	PhotoURLMapPath   string // {photo_id: public_url} mapping written by the publisher
	StaticAPIPath     string // marketplace product JSON

	// publisher settings
	Publish PublishConfig
}

// PublishConfig holds the object-storage target settings for the batch
// photo publisher. Target selects the implementation ("s3" or "sftp").
type PublishConfig struct {
	Target string

	// s3
	S3Endpoint  string
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
	S3UseSSL    bool

	// sftp
	SFTPHost     string
	SFTPPort     int
	SFTPUser     string
	SFTPPassword string
	SFTPKeyFile  string
	SFTPBasePath string
	SFTPBaseURL  string // public URL prefix for files stored via SFTP
}

func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvIntOrDefault(envVar string, defaultVal int) int {
	valStr := os.Getenv(envVar)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil || val <= 0 {
		log.Printf("Warning: Invalid %s '%s'. Using default %d. Error: %v", envVar, valStr, defaultVal, err)
		return defaultVal
	}
	return val
}

func getEnvBool(envVar string) bool {
	v, err := strconv.ParseBool(os.Getenv(envVar))
	return err == nil && v
}

func LoadConfig() (Config, error) {
	dbPath := getEnvOrDefault("DATABASE_PATH", "robotics_photos.db")

	photoStorage := getEnvOrDefault("PHOTO_STORAGE_PATH", filepath.Join(".", "photo_storage"))
	absPhotoStorage, err := filepath.Abs(photoStorage)
	if err != nil {
		return Config{}, fmt.Errorf("failed to get absolute path for photo storage '%s': %w", photoStorage, err)
	}

	thumbSubDir := getEnvOrDefault("THUMBNAILS_SUBDIR", DefaultThumbnailsSubDir)
	absThumbnailsPath := filepath.Join(absPhotoStorage, thumbSubDir)

	thumbMaxSize := getEnvIntOrDefault("THUMBNAIL_MAX_SIZE", defaultThumbnailMaxSize)
	queueSize := getEnvIntOrDefault("THUMBNAIL_QUEUE_SIZE", defaultThumbnailQueueSize)
	numWorkers := getEnvIntOrDefault("NUM_THUMBNAIL_WORKERS", defaultNumThumbnailWorkers)

	maxUploadMB := getEnvIntOrDefault("MAX_UPLOAD_MB", defaultMaxUploadMB)

	cfg := Config{
		DatabasePath:        dbPath,
		PhotoStoragePath:    absPhotoStorage,
		ThumbnailsPath:      absThumbnailsPath,
		MaxUploadBytes:      int64(maxUploadMB) * 1024 * 1024,
		ThumbnailMaxSize:    thumbMaxSize,
		ThumbnailQueueSize:  queueSize,
		NumThumbnailWorkers: numWorkers,
		CatalogExportPath:   getEnvOrDefault("CATALOG_EXPORT_PATH", "catalog.txt"),
		PhotoURLMapPath:     getEnvOrDefault("PHOTO_URL_MAP_PATH", "photo_urls.json"),
		StaticAPIPath:       getEnvOrDefault("STATIC_API_PATH", filepath.Join("api", "database-robots.json")),
		Publish: PublishConfig{
			Target:       getEnvOrDefault("PUBLISH_TARGET", "s3"),
			S3Endpoint:   getEnvOrDefault("S3_ENDPOINT", "s3.amazonaws.com"),
			S3Region:     getEnvOrDefault("S3_REGION", "us-east-1"),
			S3Bucket:     getEnvOrDefault("S3_BUCKET", "robotics-marketplace-photos"),
			S3AccessKey:  os.Getenv("S3_ACCESS_KEY"),
			S3SecretKey:  os.Getenv("S3_SECRET_KEY"),
			S3UseSSL:     !getEnvBool("S3_DISABLE_SSL"),
			SFTPHost:     os.Getenv("SFTP_HOST"),
			SFTPPort:     getEnvIntOrDefault("SFTP_PORT", 22),
			SFTPUser:     os.Getenv("SFTP_USER"),
			SFTPPassword: os.Getenv("SFTP_PASSWORD"),
			SFTPKeyFile:  os.Getenv("SFTP_KEY_FILE"),
			SFTPBasePath: getEnvOrDefault("SFTP_BASE_PATH", "photos"),
			SFTPBaseURL:  os.Getenv("SFTP_BASE_URL"),
		},
	}

	return cfg, nil
}
