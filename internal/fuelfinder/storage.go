package fuelfinder

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"sync"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

const (
	decimalBase                        = 10
	defaultReducePrecisionDecimalPlace = 2
	clusterDistanceKm                  = 1.0
	defaultCacheSize                   = -16 * 1024 // negative value is KiB
)

// SlotStore holds named opaque string values.
type SlotStore interface {
	Get(ctx context.Context, name string) (value string, found bool, err error)
	Put(ctx context.Context, name, value string) error
}

// Storage is the SQLite backed SlotStore. It also keeps a log of searched
// locations.
type Storage struct {
	db  *sql.DB
	log *slog.Logger
	now func() time.Time
}

func NewStorage(ctx context.Context, dbPath string, logger *slog.Logger) (*Storage, error) {
	db, err := sql.Open("sqlite3", "file:"+dbPath)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if err := configureSQLitePragmas(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	if err := createTables(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("error creating tables: %w", err)
	}

	logger.Debug("Storage opened", "path", dbPath)
	return &Storage{db: db, log: logger, now: time.Now}, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	createTableSQL := `
	CREATE TABLE IF NOT EXISTS slots (
		name TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS location_logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		latitude REAL NOT NULL,
		longitude REAL NOT NULL,
		distance REAL NOT NULL,
		search_count INTEGER NOT NULL DEFAULT 1,
		search_time INTEGER NOT NULL,
		last_search INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_location_logs_coordinates ON location_logs (latitude, longitude);
	`

	_, err := db.ExecContext(ctx, createTableSQL)
	if err != nil {
		return fmt.Errorf("error creating table: %w", err)
	}
	return nil
}

func configureSQLitePragmas(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 10000;"); err != nil {
		return fmt.Errorf("error setting busy timeout: %w", err)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode = WAL;"); err != nil {
		return fmt.Errorf("error setting journal mode: %w", err)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA synchronous = NORMAL;"); err != nil {
		return fmt.Errorf("error setting synchronous: %w", err)
	}

	if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA cache_size = %d;", defaultCacheSize)); err != nil {
		return fmt.Errorf("error setting cache size: %w", err)
	}
	return nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) Get(ctx context.Context, name string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM slots WHERE name = ?", name).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("error reading slot %s: %w", name, err)
	}
	return value, true, nil
}

func (s *Storage) Put(ctx context.Context, name, value string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO slots (name, value, updated_at) VALUES (?, ?, ?)",
		name, value, s.now().Unix())
	if err != nil {
		return fmt.Errorf("error writing slot %s: %w", name, err)
	}
	return nil
}

// LogSearchLocation records a search center rounded to two decimal places,
// bumping the counter when the rounded location was searched before.
func (s *Storage) LogSearchLocation(ctx context.Context, latitude, longitude, distance float64) error {
	var id int64
	now := s.now().Unix()

	newLat, newLong := reduceLocationPrecision(latitude, longitude, defaultReducePrecisionDecimalPlace)
	err := s.db.QueryRowContext(ctx, `
		SELECT id FROM location_logs
		WHERE latitude = ?
		AND longitude = ?
		LIMIT 1
	`, newLat, newLong).Scan(&id)

	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("error checking for existing location: %w", err)
	}

	if errors.Is(err, sql.ErrNoRows) {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO location_logs (latitude, longitude, distance, search_time, last_search)
			VALUES (?, ?, ?, ?, ?)
		`, newLat, newLong, distance, now, now)
		if err != nil {
			return fmt.Errorf("error logging search location: %w", err)
		}
		return nil
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE location_logs
		SET search_count = search_count + 1, last_search = ?, distance = ?
		WHERE id = ?
	`, now, distance, id)
	if err != nil {
		return fmt.Errorf("error updating search location: %w", err)
	}

	return nil
}

// LocationLog represents a row in the location_logs table
type LocationLog struct {
	ID          int64
	Latitude    float64
	Longitude   float64
	Distance    float64
	SearchCount int64
	SearchTime  time.Time
	LastSearch  time.Time
}

// GetLocationLogs returns logged search locations, most searched first.
// A limit of 0 returns every row.
func (s *Storage) GetLocationLogs(ctx context.Context, limit int) ([]LocationLog, error) {
	query := `SELECT id, latitude, longitude, distance, search_count, search_time, last_search
			  FROM location_logs
			  ORDER BY search_count DESC, id ASC `

	if limit > 0 {
		query += fmt.Sprintf("LIMIT %d", limit)
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error retrieving location logs: %w", err)
	}
	defer rows.Close()

	var logs []LocationLog
	for rows.Next() {
		var logEntry LocationLog
		var searchTime, lastSearch int64
		if err := rows.Scan(
			&logEntry.ID,
			&logEntry.Latitude,
			&logEntry.Longitude,
			&logEntry.Distance,
			&logEntry.SearchCount,
			&searchTime,
			&lastSearch,
		); err != nil {
			return nil, fmt.Errorf("error scanning location log: %w", err)
		}
		logEntry.SearchTime = time.Unix(searchTime, 0)
		logEntry.LastSearch = time.Unix(lastSearch, 0)
		logs = append(logs, logEntry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration: %w", err)
	}

	return logs, nil
}

// PopularLocation is a cluster of nearby searches.
type PopularLocation struct {
	Location    Coordinate `json:"location"`
	SearchCount int64      `json:"weight"`
	Radius      float64    `json:"radius"` // largest search radius in the cluster, meters
}

// PopularLocations merges logged searches less than a kilometer apart and
// returns at most limit clusters, most searched first.
func (s *Storage) PopularLocations(ctx context.Context, limit int) ([]PopularLocation, error) {
	logs, err := s.GetLocationLogs(ctx, 0)
	if err != nil {
		return nil, err
	}

	processed := make(map[int64]bool)
	var popular []PopularLocation

	for i, log := range logs {
		if processed[log.ID] {
			continue
		}
		processed[log.ID] = true

		cluster := PopularLocation{
			Location:    Coordinate{Latitude: log.Latitude, Longitude: log.Longitude},
			SearchCount: log.SearchCount,
			Radius:      log.Distance,
		}

		for j, other := range logs {
			if i == j || processed[other.ID] {
				continue
			}

			otherLoc := Coordinate{Latitude: other.Latitude, Longitude: other.Longitude}
			if Distance(cluster.Location, otherLoc, Kilometers) > clusterDistanceKm {
				continue
			}
			processed[other.ID] = true

			// weighted average keeps the cluster centered on its busiest spot
			total := float64(cluster.SearchCount + other.SearchCount)
			cluster.Location.Latitude = (cluster.Location.Latitude*float64(cluster.SearchCount) +
				other.Latitude*float64(other.SearchCount)) / total
			cluster.Location.Longitude = (cluster.Location.Longitude*float64(cluster.SearchCount) +
				other.Longitude*float64(other.SearchCount)) / total

			cluster.SearchCount += other.SearchCount
			if other.Distance > cluster.Radius {
				cluster.Radius = other.Distance
			}
		}

		popular = append(popular, cluster)
	}

	sort.SliceStable(popular, func(i, j int) bool {
		return popular[i].SearchCount > popular[j].SearchCount
	})

	if limit > 0 && len(popular) > limit {
		popular = popular[:limit]
	}
	return popular, nil
}

func reduceLocationPrecision(lat, lng float64, decimalPlaces int) (roundedLat, roundedLng float64) {
	factor := math.Pow(decimalBase, float64(decimalPlaces))
	roundedLat = math.Round(lat*factor) / factor
	roundedLng = math.Round(lng*factor) / factor
	return
}

// MemorySlots is an in-process SlotStore.
type MemorySlots struct {
	mu    sync.Mutex
	slots map[string]string
}

func NewMemorySlots() *MemorySlots {
	return &MemorySlots{slots: make(map[string]string)}
}

func (m *MemorySlots) Get(_ context.Context, name string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.slots[name]
	return v, ok, nil
}

func (m *MemorySlots) Put(_ context.Context, name, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slots[name] = value
	return nil
}
