package database

import (
	"database/sql"
	"fmt"
	"math"

	sq "github.com/Masterminds/squirrel"

	"github.com/mwhited/robocatalog/models"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// Querier abstracts *sql.DB and *sql.Tx for the raw query helpers
type Querier interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

// PhotoFilter holds the optional, conjunctive search criteria. A zero
// filter matches every photo. Manufacturer and Model are case-sensitive
// substring matches; Tags matches photos linked to any of the names.
type PhotoFilter struct {
	Category     string
	Manufacturer string
	Model        string
	Tags         []string
}

// Statistics is the aggregate record returned by CollectStatistics.
type Statistics struct {
	TotalPhotos    int64            `json:"total_photos"`
	ByCategory     map[string]int64 `json:"by_category"`
	TotalRobots    int64            `json:"total_robots"`
	TotalStorageMB float64          `json:"total_storage_mb"`
}

// SearchPhotos runs the denormalized photo search join with the given
// filter. Results are ordered by photo ID for deterministic display.
func SearchPhotos(db Querier, filter PhotoFilter) ([]models.PhotoSearchResult, error) {
	queryBuilder := psql.Select(
		"p.id", "p.file_name", "p.file_path", "p.upload_date", "p.photo_type",
		"p.description", "r.manufacturer", "r.model_name", "rc.name",
	).From("photos p").
		Join("robots r ON p.robot_id = r.id").
		Join("robot_categories rc ON r.category_id = rc.id").
		OrderBy("p.id ASC")

	if filter.Category != "" {
		queryBuilder = queryBuilder.Where(sq.Eq{"rc.name": filter.Category})
	}
	if filter.Manufacturer != "" {
		// instr() keeps the substring match case-sensitive; SQLite's LIKE is not
		queryBuilder = queryBuilder.Where("instr(r.manufacturer, ?) > 0", filter.Manufacturer)
	}
	if filter.Model != "" {
		queryBuilder = queryBuilder.Where("instr(r.model_name, ?) > 0", filter.Model)
	}
	if len(filter.Tags) > 0 {
		tagArgs := make([]interface{}, len(filter.Tags))
		for i, t := range filter.Tags {
			tagArgs[i] = t
		}
		subQuery := fmt.Sprintf(`p.id IN (
			SELECT pt.photo_id FROM photo_tags pt
			JOIN tags t ON pt.tag_id = t.id
			WHERE t.name IN (%s))`, sq.Placeholders(len(filter.Tags)))
		queryBuilder = queryBuilder.Where(subQuery, tagArgs...)
	}

	sqlStr, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL query for SearchPhotos: %w", err)
	}

	rows, err := db.Query(sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute photo search: %w", err)
	}
	defer rows.Close()

	results := []models.PhotoSearchResult{}
	for rows.Next() {
		var res models.PhotoSearchResult
		err := rows.Scan(
			&res.PhotoID, &res.FileName, &res.FilePath, &res.UploadDate, &res.PhotoType,
			&res.Description, &res.Manufacturer, &res.ModelName, &res.CategoryName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan photo search row: %w", err)
		}
		results = append(results, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating photo search rows: %w", err)
	}
	return results, nil
}

// ListRobotSummaries returns one row per robot with its category name
// and photo count (robots without photos included with count 0),
// ordered by category name, manufacturer, then model name.
func ListRobotSummaries(db Querier) ([]models.RobotSummary, error) {
	queryBuilder := psql.Select(
		"r.id", "r.manufacturer", "r.model_name", "r.robot_type",
		"r.year_released", "rc.name", "COUNT(p.id) AS photo_count",
	).From("robots r").
		Join("robot_categories rc ON r.category_id = rc.id").
		LeftJoin("photos p ON r.id = p.robot_id").
		GroupBy("r.id").
		OrderBy("rc.name", "r.manufacturer", "r.model_name")

	sqlStr, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL query for ListRobotSummaries: %w", err)
	}

	rows, err := db.Query(sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list robots: %w", err)
	}
	defer rows.Close()

	summaries := []models.RobotSummary{}
	for rows.Next() {
		var s models.RobotSummary
		err := rows.Scan(
			&s.RobotID, &s.Manufacturer, &s.ModelName, &s.RobotType,
			&s.YearReleased, &s.CategoryName, &s.PhotoCount,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan robot summary row: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating robot summary rows: %w", err)
	}
	return summaries, nil
}

// CollectStatistics gathers catalog-wide aggregates. Per-category photo
// counts go through LEFT JOINs so categories with no robots or no
// photos still appear with a zero count.
func CollectStatistics(db Querier) (Statistics, error) {
	stats := Statistics{ByCategory: make(map[string]int64)}

	if err := db.QueryRow("SELECT COUNT(*) FROM photos").Scan(&stats.TotalPhotos); err != nil {
		return Statistics{}, fmt.Errorf("failed to count photos: %w", err)
	}

	if err := db.QueryRow("SELECT COUNT(*) FROM robots").Scan(&stats.TotalRobots); err != nil {
		return Statistics{}, fmt.Errorf("failed to count robots: %w", err)
	}

	queryBuilder := psql.Select("rc.name", "COUNT(p.id)").
		From("robot_categories rc").
		LeftJoin("robots r ON rc.id = r.category_id").
		LeftJoin("photos p ON r.id = p.robot_id").
		GroupBy("rc.name")

	sqlStr, args, err := queryBuilder.ToSql()
	if err != nil {
		return Statistics{}, fmt.Errorf("failed to build SQL query for category counts: %w", err)
	}

	rows, err := db.Query(sqlStr, args...)
	if err != nil {
		return Statistics{}, fmt.Errorf("failed to query category counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		var count int64
		if err := rows.Scan(&name, &count); err != nil {
			return Statistics{}, fmt.Errorf("failed to scan category count row: %w", err)
		}
		stats.ByCategory[name] = count
	}
	if err := rows.Err(); err != nil {
		return Statistics{}, fmt.Errorf("error iterating category count rows: %w", err)
	}

	var totalKB int64
	err = db.QueryRow("SELECT COALESCE(SUM(file_size_kb), 0) FROM photos").Scan(&totalKB)
	if err != nil {
		return Statistics{}, fmt.Errorf("failed to sum photo storage: %w", err)
	}
	stats.TotalStorageMB = math.Round(float64(totalKB)/1024*100) / 100

	return stats, nil
}
