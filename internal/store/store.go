package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Sentinel errors
var (
	ErrNotFound = errors.New("not found")
)

// isBusyLock reports whether err indicates SQLite database lock (SQLITE_BUSY).
// Handles wrapped errors from database/sql.
func isBusyLock(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "database is locked") || strings.Contains(s, "SQLITE_BUSY")
}

// retryOnBusy runs fn and retries on SQLITE_BUSY with exponential backoff.
func retryOnBusy(fn func() error) error {
	const maxAttempts = 4
	backoff := 25 * time.Millisecond
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		lastErr = fn()
		if lastErr == nil || !isBusyLock(lastErr) {
			return lastErr
		}
		if attempt < maxAttempts-1 {
			time.Sleep(backoff)
			backoff *= 2
		}
	}
	return lastErr
}

// Lease is one row of the lease ledger. Slot identifies the pooled container
// the lease was backed by; ReturnedAt is zero while the lease is active.
type Lease struct {
	ID           string    `json:"id"`
	Slot         string    `json:"slot"`
	Image        string    `json:"image"`
	Status       string    `json:"status"`
	AcquiredAt   time.Time `json:"acquired_at"`
	ExpiresAt    time.Time `json:"expires_at"`
	ReturnedAt   time.Time `json:"returned_at,omitempty"`
	LastActivity time.Time `json:"last_activity,omitempty"`
}

type Store struct {
	db *sql.DB
}

const createTableSQL = `
CREATE TABLE IF NOT EXISTS leases (
	id            TEXT PRIMARY KEY,
	slot          TEXT NOT NULL,
	image         TEXT NOT NULL,
	status        TEXT NOT NULL DEFAULT 'active',
	acquired_at   DATETIME NOT NULL,
	expires_at    DATETIME NOT NULL,
	returned_at   DATETIME,
	last_activity DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_leases_status ON leases(status);
CREATE INDEX IF NOT EXISTS idx_leases_expires_at ON leases(expires_at);
`

// DefaultMaxOpenConns is the connection pool size for concurrent reads.
// WAL mode allows multiple readers + 1 writer.
const DefaultMaxOpenConns = 4

// dsnWithPragmas returns a connection string with WAL, busy_timeout, and perf
// pragmas applied to every new connection (the driver applies DSN pragmas
// per-connection).
func dsnWithPragmas(dbPath string) string {
	return dbPath + "?_pragma=busy_timeout(15000)" +
		"&_pragma=journal_mode(WAL)" +
		"&_pragma=synchronous(NORMAL)" +
		"&_pragma=temp_store(MEMORY)"
}

// New opens the lease ledger, creating the schema if needed.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dsnWithPragmas(dbPath))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetMaxIdleConns(DefaultMaxOpenConns)

	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) CreateLease(l *Lease) error {
	err := retryOnBusy(func() error {
		_, e := s.db.Exec(
			`INSERT INTO leases (id, slot, image, status, acquired_at, expires_at, last_activity)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			l.ID, l.Slot, l.Image, l.Status,
			l.AcquiredAt.UTC(), l.ExpiresAt.UTC(), l.LastActivity.UTC(),
		)
		return e
	})
	if err != nil {
		return fmt.Errorf("inserting lease: %w", err)
	}
	return nil
}

func (s *Store) GetLease(id string) (*Lease, error) {
	row := s.db.QueryRow(
		`SELECT id, slot, image, status, acquired_at, expires_at, returned_at, last_activity
		 FROM leases WHERE id = ?`, id,
	)
	return scanLease(row)
}

func (s *Store) ListLeases() ([]*Lease, error) {
	rows, err := s.db.Query(
		`SELECT id, slot, image, status, acquired_at, expires_at, returned_at, last_activity
		 FROM leases ORDER BY acquired_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing leases: %w", err)
	}
	defer rows.Close()
	return scanLeases(rows)
}

func (s *Store) ListActiveLeases() ([]*Lease, error) {
	rows, err := s.db.Query(
		`SELECT id, slot, image, status, acquired_at, expires_at, returned_at, last_activity
		 FROM leases WHERE status = 'active'`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing active leases: %w", err)
	}
	defer rows.Close()
	return scanLeases(rows)
}

func (s *Store) ListExpiredLeases() ([]*Lease, error) {
	rows, err := s.db.Query(
		`SELECT id, slot, image, status, acquired_at, expires_at, returned_at, last_activity
		 FROM leases WHERE status = 'active' AND expires_at <= ?`,
		time.Now().UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("listing expired leases: %w", err)
	}
	defer rows.Close()
	return scanLeases(rows)
}

// MarkLeaseReturned closes the ledger entry with the given terminal status.
func (s *Store) MarkLeaseReturned(id string, status string) error {
	var result sql.Result
	err := retryOnBusy(func() error {
		var e error
		result, e = s.db.Exec(
			`UPDATE leases SET status = ?, returned_at = ?, last_activity = ? WHERE id = ?`,
			status, time.Now().UTC(), time.Now().UTC(), id,
		)
		return e
	})
	if err != nil {
		return fmt.Errorf("marking lease returned: %w", err)
	}
	return checkRowAffected(result, id)
}

func (s *Store) ExtendLease(id string, expiresAt time.Time) error {
	var result sql.Result
	err := retryOnBusy(func() error {
		var e error
		result, e = s.db.Exec(
			`UPDATE leases SET expires_at = ?, last_activity = ? WHERE id = ?`,
			expiresAt.UTC(), time.Now().UTC(), id,
		)
		return e
	})
	if err != nil {
		return fmt.Errorf("extending lease: %w", err)
	}
	return checkRowAffected(result, id)
}

func (s *Store) DeleteLease(id string) error {
	var result sql.Result
	err := retryOnBusy(func() error {
		var e error
		result, e = s.db.Exec(`DELETE FROM leases WHERE id = ?`, id)
		return e
	})
	if err != nil {
		return fmt.Errorf("deleting lease: %w", err)
	}
	return checkRowAffected(result, id)
}

type scannable interface {
	Scan(dest ...any) error
}

func scanLease(row scannable) (*Lease, error) {
	var l Lease
	var returnedAt sql.NullTime
	err := row.Scan(
		&l.ID, &l.Slot, &l.Image, &l.Status,
		&l.AcquiredAt, &l.ExpiresAt, &returnedAt, &l.LastActivity,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning lease: %w", err)
	}
	if returnedAt.Valid {
		l.ReturnedAt = returnedAt.Time
	}
	return &l, nil
}

func scanLeases(rows *sql.Rows) ([]*Lease, error) {
	var leases []*Lease
	for rows.Next() {
		l, err := scanLease(rows)
		if err != nil {
			return nil, err
		}
		leases = append(leases, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating leases: %w", err)
	}
	return leases, nil
}

func checkRowAffected(result sql.Result, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("lease %s: %w", id, ErrNotFound)
	}
	return nil
}
