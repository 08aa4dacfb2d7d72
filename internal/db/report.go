package db

import (
	"database/sql"
	"fmt"
	"time"
)

// Report represents a generated indicator report for a city
type Report struct {
	ID          int       `json:"id"`
	RunID       string    `json:"run_id"` // UUID for the generation run
	City        string    `json:"city"`
	BaseYear    int       `json:"base_year"`
	CurrentYear int       `json:"current_year"`
	TargetYear  *int      `json:"target_year"` // nil when no projection was requested
	Units       string    `json:"units"`       // km2, m2 or ha
	Filepath    string    `json:"filepath"`    // directory holding the generated plots
	Filename    string    `json:"filename"`    // primary plot filename
	CreatedAt   time.Time `json:"created_at"`
}

// CreateReport creates a new report record in the database
func (db *DB) CreateReport(report *Report) error {
	query := `
		INSERT INTO reports (
			run_id, city, base_year, current_year, target_year,
			units, filepath, filename
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := db.Exec(
		query,
		report.RunID,
		report.City,
		report.BaseYear,
		report.CurrentYear,
		report.TargetYear,
		report.Units,
		report.Filepath,
		report.Filename,
	)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %w", err)
	}

	report.ID = int(id)
	return nil
}

// GetReport retrieves a report by ID
func (db *DB) GetReport(id int) (*Report, error) {
	query := `
		SELECT report_id, run_id, city, base_year, current_year, target_year,
		       units, filepath, filename, timestamp
		FROM reports
		WHERE report_id = ?
	`

	var report Report
	err := db.QueryRow(query, id).Scan(
		&report.ID,
		&report.RunID,
		&report.City,
		&report.BaseYear,
		&report.CurrentYear,
		&report.TargetYear,
		&report.Units,
		&report.Filepath,
		&report.Filename,
		&report.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("report not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	return &report, nil
}

// RecentReports retrieves the most recent N reports, optionally filtered
// by city. An empty city returns reports across all cities.
func (db *DB) RecentReports(city string, limit int) ([]Report, error) {
	query := `
		SELECT report_id, run_id, city, base_year, current_year, target_year,
		       units, filepath, filename, timestamp
		FROM reports
	`
	args := []interface{}{}
	if city != "" {
		query += ` WHERE city = ?`
		args = append(args, city)
	}
	query += ` ORDER BY timestamp DESC LIMIT ?`
	args = append(args, limit)

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer rows.Close()

	var reports []Report
	for rows.Next() {
		var report Report
		err := rows.Scan(
			&report.ID,
			&report.RunID,
			&report.City,
			&report.BaseYear,
			&report.CurrentYear,
			&report.TargetYear,
			&report.Units,
			&report.Filepath,
			&report.Filename,
			&report.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		reports = append(reports, report)
	}

	return reports, rows.Err()
}
