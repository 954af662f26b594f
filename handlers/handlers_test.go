package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwhited/robocatalog/catalog"
	"github.com/mwhited/robocatalog/database"
	"github.com/mwhited/robocatalog/models"
)

// mockCatalog lets each test stub exactly the calls it expects.
type mockCatalog struct {
	addRobotFn      func(input catalog.AddRobotInput) (uint, error)
	addPhotoFn      func(input catalog.AddPhotoInput) (uint, error)
	addTagFn        func(photoID uint, tagName string) error
	searchFn        func(filter database.PhotoFilter) ([]models.PhotoSearchResult, error)
	statisticsFn    func() (database.Statistics, error)
	listRobotsFn    func() ([]models.RobotSummary, error)
	getRobotFn      func(robotID uint) (*models.Robot, error)
	photosOfRobotFn func(robotID uint) ([]models.Photo, error)
	getPhotoFn      func(photoID uint) (*models.Photo, error)
	tagsForPhotoFn  func(photoID uint) ([]models.Tag, error)
}

func (m *mockCatalog) AddRobot(input catalog.AddRobotInput) (uint, error) {
	return m.addRobotFn(input)
}
func (m *mockCatalog) AddPhoto(input catalog.AddPhotoInput) (uint, error) {
	return m.addPhotoFn(input)
}
func (m *mockCatalog) AddTagToPhoto(photoID uint, tagName string) error {
	return m.addTagFn(photoID, tagName)
}
func (m *mockCatalog) SearchPhotos(filter database.PhotoFilter) ([]models.PhotoSearchResult, error) {
	return m.searchFn(filter)
}
func (m *mockCatalog) GetStatistics() (database.Statistics, error) {
	return m.statisticsFn()
}
func (m *mockCatalog) ListAllRobots() ([]models.RobotSummary, error) {
	return m.listRobotsFn()
}
func (m *mockCatalog) GetRobot(robotID uint) (*models.Robot, error) {
	return m.getRobotFn(robotID)
}
func (m *mockCatalog) PhotosOfRobot(robotID uint) ([]models.Photo, error) {
	return m.photosOfRobotFn(robotID)
}
func (m *mockCatalog) GetPhoto(photoID uint) (*models.Photo, error) {
	return m.getPhotoFn(photoID)
}
func (m *mockCatalog) TagsForPhoto(photoID uint) ([]models.Tag, error) {
	return m.tagsForPhotoFn(photoID)
}

func newTestRouter(mock *mockCatalog, tmpDir string) http.Handler {
	robotHandler := &RobotHandler{Catalog: mock}
	photoHandler := &PhotoHandler{Catalog: mock, MaxUploadBytes: 10 << 20, UploadTmpDir: tmpDir}
	statsHandler := &StatsHandler{Catalog: mock}

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Post("/robots", robotHandler.CreateRobot)
		r.Get("/robots", robotHandler.ListRobots)
		r.Get("/robots/{robot_id}", robotHandler.GetRobot)
		r.Get("/robots/{robot_id}/photos", robotHandler.ListRobotPhotos)
		r.Get("/photos", photoHandler.SearchPhotos)
		r.Post("/photos", photoHandler.UploadPhoto)
		r.Post("/photos/{photo_id}/tags", photoHandler.AddTag)
		r.Get("/photos/{photo_id}/file", photoHandler.ServePhotoFile)
		r.Get("/statistics", statsHandler.GetStatistics)
	})
	return r
}

func decodeAPIError(t *testing.T, body *bytes.Buffer) APIErrorResponse {
	t.Helper()
	var resp APIErrorResponse
	require.NoError(t, json.Unmarshal(body.Bytes(), &resp))
	require.NotEmpty(t, resp.Errors)
	return resp
}

func TestCreateRobot(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		addRobotFn func(input catalog.AddRobotInput) (uint, error)
		wantStatus int
		wantCode   string
	}{
		{
			name: "created",
			body: `{"category_name":"Drones","manufacturer":"Acme","model_name":"X1","robot_type":"quadcopter"}`,
			addRobotFn: func(input catalog.AddRobotInput) (uint, error) {
				return 7, nil
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "invalid body",
			body:       `{not json`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid_body",
		},
		{
			name: "unknown category",
			body: `{"category_name":"Submarines","manufacturer":"Acme","model_name":"S1","robot_type":"uuv"}`,
			addRobotFn: func(input catalog.AddRobotInput) (uint, error) {
				return 0, &catalog.NotFoundError{Resource: "category", Key: input.CategoryName}
			},
			wantStatus: http.StatusNotFound,
			wantCode:   "not_found",
		},
		{
			name: "missing fields",
			body: `{"category_name":"Drones"}`,
			addRobotFn: func(input catalog.AddRobotInput) (uint, error) {
				return 0, &catalog.ValidationError{Msg: "manufacturer is required"}
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   "validation_failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockCatalog{addRobotFn: tt.addRobotFn}
			router := newTestRouter(mock, t.TempDir())

			req := httptest.NewRequest(http.MethodPost, "/api/robots", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantCode != "" {
				resp := decodeAPIError(t, rec.Body)
				assert.Equal(t, tt.wantCode, resp.Errors[0].Code)
				return
			}

			var out map[string]uint
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
			assert.Equal(t, uint(7), out["robot_id"])
		})
	}
}

func TestListRobots(t *testing.T) {
	mock := &mockCatalog{
		listRobotsFn: func() ([]models.RobotSummary, error) {
			return []models.RobotSummary{
				{RobotID: 1, Manufacturer: "Acme", ModelName: "X1", CategoryName: "Drones", PhotoCount: 2},
			}, nil
		},
	}
	router := newTestRouter(mock, t.TempDir())

	req := httptest.NewRequest(http.MethodGet, "/api/robots", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var robots []models.RobotSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &robots))
	require.Len(t, robots, 1)
	assert.Equal(t, "Acme", robots[0].Manufacturer)
	assert.Equal(t, 2, robots[0].PhotoCount)
}

func TestListRobotPhotos(t *testing.T) {
	t.Run("bad id", func(t *testing.T) {
		router := newTestRouter(&mockCatalog{}, t.TempDir())
		req := httptest.NewRequest(http.MethodGet, "/api/robots/abc/photos", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown robot", func(t *testing.T) {
		mock := &mockCatalog{
			photosOfRobotFn: func(robotID uint) ([]models.Photo, error) {
				return nil, &catalog.NotFoundError{Resource: "robot", Key: "42"}
			},
		}
		router := newTestRouter(mock, t.TempDir())
		req := httptest.NewRequest(http.MethodGet, "/api/robots/42/photos", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestSearchPhotosQueryParsing(t *testing.T) {
	var captured database.PhotoFilter
	mock := &mockCatalog{
		searchFn: func(filter database.PhotoFilter) ([]models.PhotoSearchResult, error) {
			captured = filter
			return []models.PhotoSearchResult{}, nil
		},
	}
	router := newTestRouter(mock, t.TempDir())

	req := httptest.NewRequest(http.MethodGet,
		"/api/photos?category=Drones&manufacturer=Acme&tags=aerial,%204k,", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Drones", captured.Category)
	assert.Equal(t, "Acme", captured.Manufacturer)
	assert.Empty(t, captured.Model)
	assert.Equal(t, []string{"aerial", "4k"}, captured.Tags)
}

func TestUploadPhoto(t *testing.T) {
	buildForm := func(t *testing.T, fileName string, fields map[string]string) (*bytes.Buffer, string) {
		t.Helper()
		body := &bytes.Buffer{}
		mw := multipart.NewWriter(body)
		if fileName != "" {
			part, err := mw.CreateFormFile("file", fileName)
			require.NoError(t, err)
			_, err = part.Write([]byte("fake image bytes"))
			require.NoError(t, err)
		}
		for k, v := range fields {
			require.NoError(t, mw.WriteField(k, v))
		}
		require.NoError(t, mw.Close())
		return body, mw.FormDataContentType()
	}

	t.Run("created", func(t *testing.T) {
		var captured catalog.AddPhotoInput
		mock := &mockCatalog{
			addPhotoFn: func(input catalog.AddPhotoInput) (uint, error) {
				captured = input
				return 11, nil
			},
		}
		router := newTestRouter(mock, t.TempDir())

		body, contentType := buildForm(t, "shot.jpg", map[string]string{
			"robot_id":    "3",
			"photo_type":  "action",
			"description": "test flight",
			"tags":        "aerial,4k",
		})
		req := httptest.NewRequest(http.MethodPost, "/api/photos", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, uint(3), captured.RobotID)
		assert.Equal(t, "action", captured.PhotoType)
		require.NotNil(t, captured.Description)
		assert.Equal(t, "test flight", *captured.Description)
		assert.Equal(t, []string{"aerial", "4k"}, captured.Tags)
		assert.Equal(t, "shot.jpg", filepath.Base(captured.SourcePath))

		var out map[string]uint
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
		assert.Equal(t, uint(11), out["photo_id"])
	})

	t.Run("missing file part", func(t *testing.T) {
		router := newTestRouter(&mockCatalog{}, t.TempDir())
		body, contentType := buildForm(t, "", map[string]string{"robot_id": "3"})
		req := httptest.NewRequest(http.MethodPost, "/api/photos", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		resp := decodeAPIError(t, rec.Body)
		assert.Equal(t, "missing_file", resp.Errors[0].Code)
	})

	t.Run("disallowed extension", func(t *testing.T) {
		router := newTestRouter(&mockCatalog{}, t.TempDir())
		body, contentType := buildForm(t, "notes.txt", map[string]string{"robot_id": "3"})
		req := httptest.NewRequest(http.MethodPost, "/api/photos", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		resp := decodeAPIError(t, rec.Body)
		assert.Equal(t, "validation_failed", resp.Errors[0].Code)
	})

	t.Run("bad robot id", func(t *testing.T) {
		router := newTestRouter(&mockCatalog{}, t.TempDir())
		body, contentType := buildForm(t, "shot.jpg", map[string]string{"robot_id": "zero"})
		req := httptest.NewRequest(http.MethodPost, "/api/photos", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		resp := decodeAPIError(t, rec.Body)
		assert.Equal(t, "invalid_id", resp.Errors[0].Code)
	})
}

func TestAddTag(t *testing.T) {
	t.Run("returns tag list", func(t *testing.T) {
		mock := &mockCatalog{
			addTagFn: func(photoID uint, tagName string) error {
				assert.Equal(t, uint(5), photoID)
				assert.Equal(t, "aerial", tagName)
				return nil
			},
			tagsForPhotoFn: func(photoID uint) ([]models.Tag, error) {
				return []models.Tag{{ID: 1, Name: "aerial"}}, nil
			},
		}
		router := newTestRouter(mock, t.TempDir())

		req := httptest.NewRequest(http.MethodPost, "/api/photos/5/tags",
			strings.NewReader(`{"tag_name":"aerial"}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var tags []models.Tag
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tags))
		require.Len(t, tags, 1)
		assert.Equal(t, "aerial", tags[0].Name)
	})

	t.Run("unknown photo", func(t *testing.T) {
		mock := &mockCatalog{
			addTagFn: func(photoID uint, tagName string) error {
				return &catalog.NotFoundError{Resource: "photo", Key: "99"}
			},
		}
		router := newTestRouter(mock, t.TempDir())

		req := httptest.NewRequest(http.MethodPost, "/api/photos/99/tags",
			strings.NewReader(`{"tag_name":"aerial"}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestServePhotoFile(t *testing.T) {
	t.Run("streams stored file", func(t *testing.T) {
		filePath := filepath.Join(t.TempDir(), "shot.jpg")
		require.NoError(t, os.WriteFile(filePath, []byte("image-bytes"), 0644))

		mock := &mockCatalog{
			getPhotoFn: func(photoID uint) (*models.Photo, error) {
				return &models.Photo{ID: photoID, FileName: "shot.jpg", FilePath: filePath}, nil
			},
		}
		router := newTestRouter(mock, t.TempDir())

		req := httptest.NewRequest(http.MethodGet, "/api/photos/1/file", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "image/jpeg", rec.Header().Get("Content-Type"))
		data, err := io.ReadAll(rec.Body)
		require.NoError(t, err)
		assert.Equal(t, "image-bytes", string(data))
	})

	t.Run("file missing on disk", func(t *testing.T) {
		mock := &mockCatalog{
			getPhotoFn: func(photoID uint) (*models.Photo, error) {
				return &models.Photo{ID: photoID, FileName: "gone.jpg", FilePath: "/nonexistent/gone.jpg"}, nil
			},
		}
		router := newTestRouter(mock, t.TempDir())

		req := httptest.NewRequest(http.MethodGet, "/api/photos/1/file", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestGetStatistics(t *testing.T) {
	mock := &mockCatalog{
		statisticsFn: func() (database.Statistics, error) {
			return database.Statistics{
				TotalPhotos:    3,
				TotalRobots:    2,
				ByCategory:     map[string]int64{"Drones": 3, "AMRs": 0, "Robotic Arms": 0},
				TotalStorageMB: 1.25,
			}, nil
		},
	}
	router := newTestRouter(mock, t.TempDir())

	req := httptest.NewRequest(http.MethodGet, "/api/statistics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var stats database.Statistics
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, int64(3), stats.TotalPhotos)
	assert.Equal(t, int64(0), stats.ByCategory["AMRs"])
	assert.Equal(t, 1.25, stats.TotalStorageMB)
}

func TestInternalErrorsAreOpaque(t *testing.T) {
	mock := &mockCatalog{
		listRobotsFn: func() ([]models.RobotSummary, error) {
			return nil, errors.New("disk on fire")
		},
	}
	router := newTestRouter(mock, t.TempDir())

	req := httptest.NewRequest(http.MethodGet, "/api/robots", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decodeAPIError(t, rec.Body)
	assert.Equal(t, "internal_error", resp.Errors[0].Code)
	assert.NotContains(t, resp.Errors[0].Detail, "disk on fire")
}
