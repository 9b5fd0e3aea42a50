// Package store persists snapshot history, fetch alerts and named
// watchlists in sqlite.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/poly-watch/pkg/polymarket"
)

const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    requested_at TIMESTAMP NOT NULL,
    wallet_count INTEGER NOT NULL,
    error_count INTEGER NOT NULL DEFAULT 0,
    payload TEXT NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS fetch_alerts (
    id TEXT PRIMARY KEY,
    address TEXT NOT NULL,
    message TEXT NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS watchlists (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL UNIQUE,
    addresses TEXT NOT NULL DEFAULT '[]',
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_snapshots_requested ON snapshots(requested_at);
CREATE INDEX IF NOT EXISTS idx_alerts_created ON fetch_alerts(created_at);
`

type Store struct {
	db *sql.DB
}

func NewStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SaveSnapshot persists a snapshot and records a fetch alert for every
// errored wallet in it.
func (s *Store) SaveSnapshot(snap *polymarket.Snapshot) (int64, error) {
	payload, err := json.Marshal(snap)
	if err != nil {
		return 0, fmt.Errorf("marshal snapshot: %w", err)
	}

	errorCount := 0
	for _, r := range snap.Results {
		if r.Error != "" {
			errorCount++
		}
	}

	res, err := s.db.Exec(
		`INSERT INTO snapshots (requested_at, wallet_count, error_count, payload) VALUES (?, ?, ?, ?)`,
		snap.RequestedAt, len(snap.Results), errorCount, string(payload))
	if err != nil {
		return 0, err
	}

	for _, r := range snap.Results {
		if r.Error != "" {
			s.InsertAlert(r.Address, r.Error)
		}
	}

	return res.LastInsertId()
}

func (s *Store) RecentSnapshots(limit int) ([]SnapshotRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, requested_at, wallet_count, error_count, created_at
		 FROM snapshots ORDER BY requested_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SnapshotRecord
	for rows.Next() {
		var r SnapshotRecord
		if err := rows.Scan(&r.ID, &r.RequestedAt, &r.WalletCount, &r.ErrorCount, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// LoadSnapshots returns up to limit most recent full snapshots, newest first.
func (s *Store) LoadSnapshots(limit int) ([]polymarket.Snapshot, error) {
	rows, err := s.db.Query(
		`SELECT payload FROM snapshots ORDER BY requested_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []polymarket.Snapshot
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var snap polymarket.Snapshot
		if err := json.Unmarshal([]byte(payload), &snap); err != nil {
			continue // tolerate old rows with drifted shapes
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}

func (s *Store) InsertAlert(address, message string) error {
	_, err := s.db.Exec(
		`INSERT INTO fetch_alerts (id, address, message) VALUES (?, ?, ?)`,
		uuid.NewString(), address, message)
	return err
}

func (s *Store) RecentAlerts(limit int) ([]FetchAlert, error) {
	rows, err := s.db.Query(
		`SELECT id, address, message, created_at FROM fetch_alerts
		 ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []FetchAlert
	for rows.Next() {
		var a FetchAlert
		if err := rows.Scan(&a.ID, &a.Address, &a.Message, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) UpsertWatchlist(name string, addresses []string) (int64, error) {
	addrs, _ := json.Marshal(addresses)
	_, err := s.db.Exec(
		`INSERT INTO watchlists (name, addresses, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(name) DO UPDATE SET addresses=excluded.addresses, updated_at=CURRENT_TIMESTAMP`,
		name, string(addrs))
	if err != nil {
		return 0, err
	}
	var id int64
	err = s.db.QueryRow(`SELECT id FROM watchlists WHERE name = ?`, name).Scan(&id)
	return id, err
}

func (s *Store) GetWatchlists() ([]Watchlist, error) {
	rows, err := s.db.Query(`SELECT id, name, addresses, updated_at FROM watchlists ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Watchlist
	for rows.Next() {
		var w Watchlist
		var addrs string
		if err := rows.Scan(&w.ID, &w.Name, &addrs, &w.UpdatedAt); err != nil {
			return nil, err
		}
		json.Unmarshal([]byte(addrs), &w.Addresses)
		out = append(out, w)
	}
	return out, rows.Err()
}

func (s *Store) Stats() (map[string]int64, error) {
	stats := map[string]int64{}
	for _, table := range []string{"snapshots", "fetch_alerts", "watchlists"} {
		var n int64
		if err := s.db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
			return nil, err
		}
		stats[table] = n
	}
	var last time.Time
	err := s.db.QueryRow(
		`SELECT requested_at FROM snapshots ORDER BY requested_at DESC LIMIT 1`).Scan(&last)
	if err == nil {
		stats["last_snapshot_unix"] = last.Unix()
	}
	return stats, nil
}
