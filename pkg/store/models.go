package store

import "time"

// SnapshotRecord is one persisted fetch result (header row; the full payload
// is stored as JSON alongside).
type SnapshotRecord struct {
	ID          int64     `json:"id"`
	RequestedAt time.Time `json:"requested_at"`
	WalletCount int       `json:"wallet_count"`
	ErrorCount  int       `json:"error_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// FetchAlert records a per-wallet lookup failure surfaced to the dashboard.
type FetchAlert struct {
	ID        string    `json:"id"`
	Address   string    `json:"address"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Watchlist is a named, persisted address set.
type Watchlist struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Addresses []string  `json:"addresses"`
	UpdatedAt time.Time `json:"updated_at"`
}
