package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/mwhited/robocatalog/catalog"
)

// APIErrorDetail represents a single error in the standardized error response.
type APIErrorDetail struct {
	Code   string `json:"code"`
	Status string `json:"status"`
	Detail string `json:"detail"`
}

// APIErrorResponse represents the standardized error response body.
type APIErrorResponse struct {
	Errors []APIErrorDetail `json:"errors"`
}

// WriteAPIError writes a standardized error response with the given HTTP status, code, and detail.
func WriteAPIError(w http.ResponseWriter, httpStatus int, code string, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)

	resp := APIErrorResponse{
		Errors: []APIErrorDetail{
			{
				Code:   code,
				Status: strconv.Itoa(httpStatus),
				Detail: detail,
			},
		},
	}

	_ = json.NewEncoder(w).Encode(resp)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Printf("Error encoding JSON response: %v", err)
		}
	}
}

// writeServiceError maps catalog error types onto HTTP statuses:
// NotFoundError -> 404, ValidationError -> 400, anything else -> 500.
func writeServiceError(w http.ResponseWriter, err error) {
	var notFound *catalog.NotFoundError
	if errors.As(err, &notFound) {
		WriteAPIError(w, http.StatusNotFound, "not_found", notFound.Error())
		return
	}
	var invalid *catalog.ValidationError
	if errors.As(err, &invalid) {
		WriteAPIError(w, http.StatusBadRequest, "validation_failed", invalid.Error())
		return
	}
	log.Printf("Internal error: %v", err)
	WriteAPIError(w, http.StatusInternalServerError, "internal_error", "an internal error occurred")
}
