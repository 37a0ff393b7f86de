package api

import (
	"context"
	"database/sql"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-oq/internal/db"
)

// DBHandler handles the click log endpoints.
type DBHandler struct {
	db     *sql.DB
	clicks *db.ClickLog
}

// NewDBHandler creates a new database handler. Both arguments may be nil.
func NewDBHandler(conn *sql.DB, clicks *db.ClickLog) *DBHandler {
	return &DBHandler{db: conn, clicks: clicks}
}

// RegisterRoutes registers database routes with Huma.
func (h *DBHandler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/api/v1/tables", h.ListTables, huma.OperationTags("analytics"))
	huma.Post(api, "/api/v1/query", h.Query, huma.OperationTags("analytics"))
	huma.Get(api, "/api/v1/clicks", h.TopLocations, huma.OperationTags("analytics"))
}

type TablesBody struct {
	Tables []string `json:"tables" doc:"List of table names"`
}

// ListTables returns all DuckDB tables.
func (h *DBHandler) ListTables(ctx context.Context, input *struct{}) (*struct{ Body TablesBody }, error) {
	if h.db == nil {
		return nil, huma.Error503ServiceUnavailable("Database not available")
	}

	rows, err := h.db.QueryContext(ctx, "SHOW TABLES")
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to list tables", err)
	}
	defer rows.Close()

	tables := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err == nil {
			tables = append(tables, name)
		}
	}
	return &struct{ Body TablesBody }{Body: TablesBody{Tables: tables}}, nil
}

// QueryInput is the input for SQL queries.
type QueryInput struct {
	Body struct {
		Query string `json:"query" required:"true" doc:"SQL query to execute" example:"SELECT * FROM feature_clicks LIMIT 10"`
	}
}

type QueryBody struct {
	Columns []string         `json:"columns" doc:"Column names"`
	Rows    []map[string]any `json:"rows" doc:"Query results"`
	Count   int              `json:"count" doc:"Number of rows returned"`
}

// Query executes a SQL query against DuckDB.
func (h *DBHandler) Query(ctx context.Context, input *QueryInput) (*struct{ Body QueryBody }, error) {
	if h.db == nil {
		return nil, huma.Error503ServiceUnavailable("Database not available")
	}

	rows, err := h.db.QueryContext(ctx, input.Body.Query)
	if err != nil {
		return nil, huma.Error400BadRequest("Query failed: " + err.Error())
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to get columns", err)
	}

	results := []map[string]any{}
	for rows.Next() {
		values := make([]any, len(columns))
		valuePtrs := make([]any, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}
		if err := rows.Scan(valuePtrs...); err != nil {
			continue
		}

		row := make(map[string]any, len(columns))
		for i, col := range columns {
			row[col] = values[i]
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, huma.Error400BadRequest("Query failed: " + err.Error())
	}

	return &struct{ Body QueryBody }{Body: QueryBody{
		Columns: columns,
		Rows:    results,
		Count:   len(results),
	}}, nil
}

type TopLocationsInput struct {
	Limit int `query:"limit" minimum:"1" maximum:"100" default:"10" doc:"Maximum number of locations"`
}

type TopLocationsBody struct {
	Locations []db.LocationCount `json:"locations" doc:"Most clicked locations, busiest first"`
}

// TopLocations reports which locations viewers click most.
func (h *DBHandler) TopLocations(ctx context.Context, input *TopLocationsInput) (*struct{ Body TopLocationsBody }, error) {
	if h.clicks == nil {
		return nil, huma.Error503ServiceUnavailable("Click log not available")
	}
	locs, err := h.clicks.TopLocations(ctx, input.Limit)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to read click log", err)
	}
	return &struct{ Body TopLocationsBody }{Body: TopLocationsBody{Locations: locs}}, nil
}
