package media

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Store defines the interface for saving, retrieving, and deleting
// stored photo originals
type Store interface {
	// SavePhoto copies data into the category's directory under a
	// collision-free generated file name and returns the final absolute
	// path, the generated file name, and the stored size in KB
	SavePhoto(categoryName, sourceFileName string, data io.Reader) (string, string, int64, error)
	// Remove deletes a stored file; missing files are not an error
	Remove(absPath string) error
	// CategoryDir returns the absolute directory used for a category
	CategoryDir(categoryName string) string
}

// LocalStorage implements the Store interface using the local
// filesystem, one subdirectory per category
type LocalStorage struct {
	basePath string // absolute path to the PHOTO_STORAGE_PATH
}

// NewLocalStorage creates a new local filesystem photo store and
// pre-creates directories for the given category names
func NewLocalStorage(basePath string, categories []string) (*LocalStorage, error) {
	absBasePath, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("invalid base storage path '%s': %w", basePath, err)
	}

	if err := os.MkdirAll(absBasePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base storage directory '%s': %w", absBasePath, err)
	}

	ls := &LocalStorage{basePath: absBasePath}
	for _, category := range categories {
		dir := ls.CategoryDir(category)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create category directory '%s': %w", dir, err)
		}
	}

	log.Printf("media.store: Initialized LocalStorage at %s", absBasePath)
	return ls, nil
}

// CategorySlug converts a category display name to its directory name,
// e.g. "Robotic Arms" -> "robotic_arms"
func CategorySlug(categoryName string) string {
	return strings.ReplaceAll(strings.ToLower(categoryName), " ", "_")
}

// CategoryDir returns the absolute directory for a category
func (ls *LocalStorage) CategoryDir(categoryName string) string {
	return filepath.Join(ls.basePath, CategorySlug(categoryName))
}

// SavePhoto copies data into the category directory. The destination
// name carries a timestamp plus a short UUID fragment so two uploads of
// the same source name within the same second cannot collide.
func (ls *LocalStorage) SavePhoto(categoryName, sourceFileName string, data io.Reader) (string, string, int64, error) {
	targetDir := ls.CategoryDir(categoryName)
	if !strings.HasPrefix(filepath.Clean(targetDir), ls.basePath) {
		return "", "", 0, fmt.Errorf("invalid category '%s': resolves outside base path", categoryName)
	}
	if err := os.MkdirAll(targetDir, 0755); err != nil {
		return "", "", 0, fmt.Errorf("failed to create category directory '%s': %w", targetDir, err)
	}

	baseName := filepath.Base(sourceFileName)
	if baseName == "." || baseName == string(filepath.Separator) {
		return "", "", 0, fmt.Errorf("invalid source file name '%s'", sourceFileName)
	}
	stamp := time.Now().Format("20060102_150405")
	fileName := fmt.Sprintf("%s_%s_%s", stamp, uuid.NewString()[:8], baseName)
	fullSavePath := filepath.Join(targetDir, fileName)

	outFile, err := os.Create(fullSavePath)
	if err != nil {
		return "", "", 0, fmt.Errorf("failed to create destination file '%s': %w", fullSavePath, err)
	}

	written, err := io.Copy(outFile, data)
	if err != nil {
		outFile.Close()
		os.Remove(fullSavePath)
		return "", "", 0, fmt.Errorf("failed to write data to '%s': %w", fullSavePath, err)
	}
	if err := outFile.Close(); err != nil {
		os.Remove(fullSavePath)
		return "", "", 0, fmt.Errorf("failed to close destination file '%s': %w", fullSavePath, err)
	}

	log.Printf("media.store: Saved photo to %s (%d bytes)", fullSavePath, written)
	return fullSavePath, fileName, written / 1024, nil
}

// Remove deletes a stored photo file
func (ls *LocalStorage) Remove(absPath string) error {
	cleaned := filepath.Clean(absPath)
	if !strings.HasPrefix(cleaned, ls.basePath) {
		return fmt.Errorf("invalid path: access denied for '%s'", absPath)
	}
	err := os.Remove(cleaned)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete stored photo '%s': %w", absPath, err)
	}
	if err == nil {
		log.Printf("media.store: Deleted stored photo %s", cleaned)
	}
	return nil
}
