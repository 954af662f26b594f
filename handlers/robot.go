package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mwhited/robocatalog/catalog"
	"github.com/mwhited/robocatalog/database"
	"github.com/mwhited/robocatalog/models"
)

// CatalogService is the surface the HTTP layer needs from the catalog.
type CatalogService interface {
	AddRobot(input catalog.AddRobotInput) (uint, error)
	AddPhoto(input catalog.AddPhotoInput) (uint, error)
	AddTagToPhoto(photoID uint, tagName string) error
	SearchPhotos(filter database.PhotoFilter) ([]models.PhotoSearchResult, error)
	GetStatistics() (database.Statistics, error)
	ListAllRobots() ([]models.RobotSummary, error)
	GetRobot(robotID uint) (*models.Robot, error)
	PhotosOfRobot(robotID uint) ([]models.Photo, error)
	GetPhoto(photoID uint) (*models.Photo, error)
	TagsForPhoto(photoID uint) ([]models.Tag, error)
}

// RobotHandler serves robot listing and creation endpoints.
type RobotHandler struct {
	Catalog CatalogService
}

func parseIDParam(r *http.Request, name string) (uint, bool) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// ListRobots handles GET /api/robots
func (rh *RobotHandler) ListRobots(w http.ResponseWriter, r *http.Request) {
	robots, err := rh.Catalog.ListAllRobots()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, robots)
}

// CreateRobot handles POST /api/robots
func (rh *RobotHandler) CreateRobot(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CategoryName   string  `json:"category_name"`
		Manufacturer   string  `json:"manufacturer"`
		ModelName      string  `json:"model_name"`
		RobotType      string  `json:"robot_type"`
		YearReleased   *int    `json:"year_released"`
		Specifications *string `json:"specifications"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_body", "Invalid request body: "+err.Error())
		return
	}

	robotID, err := rh.Catalog.AddRobot(catalog.AddRobotInput{
		CategoryName:   req.CategoryName,
		Manufacturer:   req.Manufacturer,
		ModelName:      req.ModelName,
		RobotType:      req.RobotType,
		YearReleased:   req.YearReleased,
		Specifications: req.Specifications,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{"robot_id": robotID})
}

// GetRobot handles GET /api/robots/{robot_id}
func (rh *RobotHandler) GetRobot(w http.ResponseWriter, r *http.Request) {
	robotID, ok := parseIDParam(r, "robot_id")
	if !ok {
		WriteAPIError(w, http.StatusBadRequest, "invalid_id", "robot_id must be a positive integer")
		return
	}
	robot, err := rh.Catalog.GetRobot(robotID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, robot)
}

// ListRobotPhotos handles GET /api/robots/{robot_id}/photos
func (rh *RobotHandler) ListRobotPhotos(w http.ResponseWriter, r *http.Request) {
	robotID, ok := parseIDParam(r, "robot_id")
	if !ok {
		WriteAPIError(w, http.StatusBadRequest, "invalid_id", "robot_id must be a positive integer")
		return
	}
	photos, err := rh.Catalog.PhotosOfRobot(robotID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, photos)
}
