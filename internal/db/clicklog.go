// Package db stores viewer analytics in DuckDB.
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"

	"github.com/joeblew999/plat-oq/internal/viewer"
)

const createClicks = `CREATE TABLE IF NOT EXISTS feature_clicks (
	session    VARCHAR NOT NULL,
	location   VARCHAR,
	attribute  VARCHAR NOT NULL,
	value      VARCHAR,
	clicked_at TIMESTAMP NOT NULL
)`

const insertClick = `INSERT INTO feature_clicks (session, location, attribute, value, clicked_at) VALUES (?, ?, ?, ?, ?)`

// ClickLog appends feature clicks to the feature_clicks table.
type ClickLog struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewClickLog ensures the table exists.
func NewClickLog(ctx context.Context, conn *sql.DB, logger *slog.Logger) (*ClickLog, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if _, err := conn.ExecContext(ctx, createClicks); err != nil {
		return nil, fmt.Errorf("create feature_clicks: %w", err)
	}
	return &ClickLog{db: conn, logger: logger}, nil
}

// RecordClick writes one row per chosen attribute. Values are stored as JSON.
func (l *ClickLog) RecordClick(ctx context.Context, rec viewer.ClickRecord) error {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin click insert: %w", err)
	}
	defer tx.Rollback()

	attrs := make([]string, 0, len(rec.Values))
	for k := range rec.Values {
		attrs = append(attrs, k)
	}
	slices.Sort(attrs)

	for _, attr := range attrs {
		value, err := json.Marshal(rec.Values[attr])
		if err != nil {
			return fmt.Errorf("encode %s: %w", attr, err)
		}
		if _, err := tx.ExecContext(ctx, insertClick, rec.Session, rec.Location, attr, string(value), rec.At); err != nil {
			return fmt.Errorf("insert click: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit click insert: %w", err)
	}
	l.logger.Debug("click recorded", "session", rec.Session, "location", rec.Location, "attributes", len(attrs))
	return nil
}

// LocationCount is how often a location was clicked.
type LocationCount struct {
	Location string `json:"location" doc:"Clicked location"`
	Clicks   int    `json:"clicks" doc:"Number of distinct clicks"`
}

// TopLocations returns the most clicked locations, busiest first.
func (l *ClickLog) TopLocations(ctx context.Context, limit int) ([]LocationCount, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT location, COUNT(DISTINCT session || '|' || CAST(clicked_at AS VARCHAR)) AS clicks
		FROM feature_clicks
		GROUP BY location
		ORDER BY clicks DESC, location
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query top locations: %w", err)
	}
	defer rows.Close()

	out := []LocationCount{}
	for rows.Next() {
		var lc LocationCount
		var loc sql.NullString
		if err := rows.Scan(&loc, &lc.Clicks); err != nil {
			return nil, err
		}
		lc.Location = loc.String
		out = append(out, lc)
	}
	return out, rows.Err()
}
