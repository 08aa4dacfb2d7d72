package db

import (
	"database/sql"
	"fmt"
	"sort"

	_ "modernc.org/sqlite"

	"github.com/MohammedBaz/MVPUrbanSprawl/internal/citydata"
	"github.com/MohammedBaz/MVPUrbanSprawl/internal/indicator"
)

type DB struct {
	*sql.DB
}

// OpenDB opens a database connection without initialising the schema.
// Use this for the migrate CLI, where migrations manage the schema.
func OpenDB(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	return &DB{sqlDB}, nil
}

// NewDB opens a database connection and ensures the schema exists.
func NewDB(path string) (*DB, error) {
	db, err := OpenDB(path)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS cities (
			city_id           INTEGER PRIMARY KEY AUTOINCREMENT,
			name              TEXT NOT NULL UNIQUE
		);
		CREATE TABLE IF NOT EXISTS observations (
			city_id           INTEGER NOT NULL REFERENCES cities(city_id),
			year              INTEGER NOT NULL,
			built_up_km2      DOUBLE NOT NULL,
			population        DOUBLE NOT NULL,
			PRIMARY KEY (city_id, year)
		);
		CREATE TABLE IF NOT EXISTS reports (
			report_id         INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id            TEXT NOT NULL,
			city              TEXT NOT NULL,
			base_year         INTEGER NOT NULL,
			current_year      INTEGER NOT NULL,
			target_year       INTEGER,
			units             TEXT NOT NULL,
			filepath          TEXT NOT NULL,
			filename          TEXT NOT NULL,
			timestamp         TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return nil, err
	}

	return db, nil
}

// LoadSnapshot replaces the stored observations for every city present in
// records. Cities absent from the snapshot keep their existing rows, so a
// truncated remote file cannot wipe the reference table.
func (db *DB) LoadSnapshot(records []citydata.CityRecord) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin snapshot load: %w", err)
	}
	defer tx.Rollback()

	for _, record := range records {
		if _, err := tx.Exec(`INSERT INTO cities (name) VALUES (?) ON CONFLICT(name) DO NOTHING`, record.Name); err != nil {
			return fmt.Errorf("failed to upsert city %s: %w", record.Name, err)
		}

		var cityID int64
		if err := tx.QueryRow(`SELECT city_id FROM cities WHERE name = ?`, record.Name).Scan(&cityID); err != nil {
			return fmt.Errorf("failed to resolve city %s: %w", record.Name, err)
		}

		if _, err := tx.Exec(`DELETE FROM observations WHERE city_id = ?`, cityID); err != nil {
			return fmt.Errorf("failed to clear observations for %s: %w", record.Name, err)
		}

		for _, obs := range record.Observations {
			if _, err := tx.Exec(
				`INSERT INTO observations (city_id, year, built_up_km2, population) VALUES (?, ?, ?, ?)`,
				cityID, obs.Year, obs.BuiltUpArea, obs.Population,
			); err != nil {
				return fmt.Errorf("failed to insert observation %s/%d: %w", record.Name, obs.Year, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot load: %w", err)
	}
	return nil
}

// Cities returns all city records with their full observation series,
// ordered by city name.
func (db *DB) Cities() ([]citydata.CityRecord, error) {
	rows, err := db.Query(`
		SELECT c.name, o.year, o.built_up_km2, o.population
		FROM cities c
		JOIN observations o ON o.city_id = c.city_id
		ORDER BY c.name, o.year
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query cities: %w", err)
	}
	defer rows.Close()

	byName := make(map[string]*citydata.CityRecord)
	var order []string
	for rows.Next() {
		var name string
		var obs indicator.TimeSeriesPoint
		if err := rows.Scan(&name, &obs.Year, &obs.BuiltUpArea, &obs.Population); err != nil {
			return nil, fmt.Errorf("failed to scan observation: %w", err)
		}
		record, ok := byName[name]
		if !ok {
			record = &citydata.CityRecord{Name: name}
			byName[name] = record
			order = append(order, name)
		}
		record.Observations = append(record.Observations, obs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read cities: %w", err)
	}

	sort.Strings(order)
	records := make([]citydata.CityRecord, 0, len(order))
	for _, name := range order {
		records = append(records, *byName[name])
	}
	return records, nil
}

// Observations returns the observation series for one city.
func (db *DB) Observations(city string) ([]indicator.TimeSeriesPoint, error) {
	rows, err := db.Query(`
		SELECT o.year, o.built_up_km2, o.population
		FROM observations o
		JOIN cities c ON c.city_id = o.city_id
		WHERE c.name = ?
		ORDER BY o.year
	`, city)
	if err != nil {
		return nil, fmt.Errorf("failed to query observations: %w", err)
	}
	defer rows.Close()

	var series []indicator.TimeSeriesPoint
	for rows.Next() {
		var obs indicator.TimeSeriesPoint
		if err := rows.Scan(&obs.Year, &obs.BuiltUpArea, &obs.Population); err != nil {
			return nil, fmt.Errorf("failed to scan observation: %w", err)
		}
		series = append(series, obs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read observations: %w", err)
	}

	if len(series) == 0 {
		return nil, fmt.Errorf("no observations for city %q", city)
	}
	return series, nil
}

// Observation returns the single observation for a city and year.
func (db *DB) Observation(city string, year int) (indicator.TimeSeriesPoint, error) {
	var obs indicator.TimeSeriesPoint
	err := db.QueryRow(`
		SELECT o.year, o.built_up_km2, o.population
		FROM observations o
		JOIN cities c ON c.city_id = o.city_id
		WHERE c.name = ? AND o.year = ?
	`, city, year).Scan(&obs.Year, &obs.BuiltUpArea, &obs.Population)
	if err == sql.ErrNoRows {
		return indicator.TimeSeriesPoint{}, fmt.Errorf("no observation for %q in %d", city, year)
	}
	if err != nil {
		return indicator.TimeSeriesPoint{}, fmt.Errorf("failed to get observation: %w", err)
	}
	return obs, nil
}

// ObservationPair returns the base and current observations for an
// indicator computation.
func (db *DB) ObservationPair(city string, baseYear, currentYear int) (base, current indicator.TimeSeriesPoint, err error) {
	base, err = db.Observation(city, baseYear)
	if err != nil {
		return indicator.TimeSeriesPoint{}, indicator.TimeSeriesPoint{}, err
	}
	current, err = db.Observation(city, currentYear)
	if err != nil {
		return indicator.TimeSeriesPoint{}, indicator.TimeSeriesPoint{}, err
	}
	return base, current, nil
}
