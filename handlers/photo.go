package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mwhited/robocatalog/catalog"
	"github.com/mwhited/robocatalog/database"
	"github.com/mwhited/robocatalog/utils"
)

// PhotoHandler serves photo search, upload, tagging, and raw file
// endpoints.
type PhotoHandler struct {
	Catalog        CatalogService
	MaxUploadBytes int64
	UploadTmpDir   string
}

// SearchPhotos handles GET /api/photos with optional query filters
// category, manufacturer, model, and tags (comma-separated).
func (ph *PhotoHandler) SearchPhotos(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := database.PhotoFilter{
		Category:     q.Get("category"),
		Manufacturer: q.Get("manufacturer"),
		Model:        q.Get("model"),
		Tags:         splitTags(q.Get("tags")),
	}

	results, err := ph.Catalog.SearchPhotos(filter)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

// UploadPhoto handles POST /api/photos as a multipart form: field
// "file" plus form values robot_id, photo_type, description, tags,
// photographer. The upload is spooled to a temp file so the catalog's
// copy-then-commit sequence sees a real source path.
func (ph *PhotoHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, ph.MaxUploadBytes)
	if err := r.ParseMultipartForm(ph.MaxUploadBytes); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_upload", "could not parse multipart form: "+err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "missing_file", "no file part in request")
		return
	}
	defer file.Close()

	if !utils.IsAllowedPhoto(header.Filename) {
		WriteAPIError(w, http.StatusBadRequest, "validation_failed",
			fmt.Sprintf("file type not allowed: %s", filepath.Ext(header.Filename)))
		return
	}

	robotID, err := strconv.ParseUint(r.FormValue("robot_id"), 10, 32)
	if err != nil || robotID == 0 {
		WriteAPIError(w, http.StatusBadRequest, "invalid_id", "robot_id must be a positive integer")
		return
	}

	tmpPath, err := ph.spoolUpload(file, header.Filename)
	if err != nil {
		log.Printf("Error spooling upload %s: %v", header.Filename, err)
		WriteAPIError(w, http.StatusInternalServerError, "upload_failed", "could not store uploaded file")
		return
	}
	defer os.Remove(tmpPath)

	input := catalog.AddPhotoInput{
		RobotID:    uint(robotID),
		SourcePath: tmpPath,
		PhotoType:  r.FormValue("photo_type"),
		Tags:       splitTags(r.FormValue("tags")),
	}
	if desc := r.FormValue("description"); desc != "" {
		input.Description = &desc
	}
	if photographer := r.FormValue("photographer"); photographer != "" {
		input.Photographer = &photographer
	}

	photoID, err := ph.Catalog.AddPhoto(input)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{"photo_id": photoID})
}

// spoolUpload writes the multipart part to the temp directory under its
// original base name, so the stored copy keeps a recognizable name.
func (ph *PhotoHandler) spoolUpload(file io.Reader, originalName string) (string, error) {
	if err := os.MkdirAll(ph.UploadTmpDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create upload temp dir %s: %w", ph.UploadTmpDir, err)
	}
	dir, err := os.MkdirTemp(ph.UploadTmpDir, "upload-")
	if err != nil {
		return "", fmt.Errorf("failed to create upload temp dir: %w", err)
	}
	tmpPath := filepath.Join(dir, filepath.Base(originalName))
	out, err := os.Create(tmpPath)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file %s: %w", tmpPath, err)
	}
	defer out.Close()
	if _, err := io.Copy(out, file); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to write temp file %s: %w", tmpPath, err)
	}
	return tmpPath, nil
}

// AddTag handles POST /api/photos/{photo_id}/tags
func (ph *PhotoHandler) AddTag(w http.ResponseWriter, r *http.Request) {
	photoID, ok := parseIDParam(r, "photo_id")
	if !ok {
		WriteAPIError(w, http.StatusBadRequest, "invalid_id", "photo_id must be a positive integer")
		return
	}

	var req struct {
		TagName string `json:"tag_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_body", "Invalid request body: "+err.Error())
		return
	}

	if err := ph.Catalog.AddTagToPhoto(photoID, req.TagName); err != nil {
		writeServiceError(w, err)
		return
	}

	tags, err := ph.Catalog.TagsForPhoto(photoID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tags)
}

// ServePhotoFile handles GET /api/photos/{photo_id}/file by streaming
// the stored original from its file_path.
func (ph *PhotoHandler) ServePhotoFile(w http.ResponseWriter, r *http.Request) {
	photoID, ok := parseIDParam(r, "photo_id")
	if !ok {
		WriteAPIError(w, http.StatusBadRequest, "invalid_id", "photo_id must be a positive integer")
		return
	}

	photo, err := ph.Catalog.GetPhoto(photoID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if _, err := os.Stat(photo.FilePath); os.IsNotExist(err) {
		WriteAPIError(w, http.StatusNotFound, "not_found", "photo file missing on disk")
		return
	}

	w.Header().Set("Content-Type", utils.ContentTypeForPhoto(photo.FileName))
	http.ServeFile(w, r, photo.FilePath)
}

func splitTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
