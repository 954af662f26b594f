package handlers

import (
	"net/http"
)

// StatsHandler serves the catalog-wide statistics endpoint.
type StatsHandler struct {
	Catalog CatalogService
}

// GetStatistics handles GET /api/statistics
func (sh *StatsHandler) GetStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := sh.Catalog.GetStatistics()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
