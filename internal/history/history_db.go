// Package history keeps a local SQLite log of finished transfers.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/mozhi-it/LAN-Transfer/internal/config"
	"github.com/mozhi-it/LAN-Transfer/internal/migrations"
	"github.com/mozhi-it/LAN-Transfer/internal/types"
)

const columns = `id, at_ms, direction, server, category, name, local_path, bytes, duration_ms, error`

// Manager reads and writes the transfers table
type Manager struct {
	db *sql.DB
}

// NewManager opens (creating if needed) the database at path and brings
// its schema up to date
func NewManager(path string) (*Manager, error) {
	if err := os.MkdirAll(filepath.Dir(path), config.DirPermissions); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=2000")
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	if err := migrations.Run(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare history database: %w", err)
	}
	return &Manager{db: db}, nil
}

// Save appends t and returns its row id. A zero timestamp means now.
func (m *Manager) Save(t types.Transfer) (int64, error) {
	if t.Timestamp.IsZero() {
		t.Timestamp = time.Now()
	}
	res, err := m.db.Exec(
		`INSERT INTO transfers (at_ms, direction, server, category, name, local_path, bytes, duration_ms, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.Timestamp.UnixMilli(), string(t.Direction), t.Server, string(t.Category), t.Name,
		t.LocalPath, t.Bytes, t.DurationMs, t.Error,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save transfer: %w", err)
	}
	return res.LastInsertId()
}

// Query selects history entries. Zero values select everything.
type Query struct {
	Server string
	Limit  int
}

// List returns the matching entries, newest first
func (m *Manager) List(q Query) ([]types.Transfer, error) {
	var (
		sb   strings.Builder
		args []any
	)
	sb.WriteString("SELECT " + columns + " FROM transfers")
	if q.Server != "" {
		sb.WriteString(" WHERE server = ?")
		args = append(args, q.Server)
	}
	sb.WriteString(" ORDER BY at_ms DESC, id DESC")
	if q.Limit > 0 {
		sb.WriteString(" LIMIT ?")
		args = append(args, q.Limit)
	}

	rows, err := m.db.Query(sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	defer rows.Close()

	var out []types.Transfer
	for rows.Next() {
		var (
			t    types.Transfer
			atMs int64
		)
		if err := rows.Scan(&t.ID, &atMs, &t.Direction, &t.Server, &t.Category, &t.Name,
			&t.LocalPath, &t.Bytes, &t.DurationMs, &t.Error); err != nil {
			return nil, fmt.Errorf("failed to read history row: %w", err)
		}
		t.Timestamp = time.UnixMilli(atMs)
		out = append(out, t)
	}
	return out, rows.Err()
}

// Count returns the number of stored entries
func (m *Manager) Count() (int, error) {
	var n int
	if err := m.db.QueryRow("SELECT COUNT(*) FROM transfers").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count history: %w", err)
	}
	return n, nil
}

// Prune drops all but the newest keep entries and reports how many went
func (m *Manager) Prune(keep int) (int64, error) {
	res, err := m.db.Exec(
		`DELETE FROM transfers WHERE id NOT IN (
			SELECT id FROM transfers ORDER BY at_ms DESC, id DESC LIMIT ?
		)`, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to prune history: %w", err)
	}
	return res.RowsAffected()
}

// Clear empties the history
func (m *Manager) Clear() (int64, error) {
	return m.Prune(0)
}

func (m *Manager) Close() error {
	return m.db.Close()
}
