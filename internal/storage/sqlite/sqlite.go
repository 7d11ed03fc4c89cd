// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/lifeareas/internal/models"
	"github.com/mmynk/lifeareas/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// busyTimeoutMs bounds how long a transaction waits for the write lock.
const busyTimeoutMs = 10000

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Pragmas go in the DSN so every pooled connection gets them.
	// _txlock=immediate takes the write lock at BEGIN, which is what
	// serializes seed and reorder transactions.
	dsn := fmt.Sprintf(
		"file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(%d)&_txlock=immediate",
		dbPath, busyTimeoutMs,
	)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Run migrations
	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// WithOrderTx runs fn inside one immediate transaction.
func (s *SQLiteStore) WithOrderTx(ctx context.Context, fn func(tx storage.OrderTx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&orderTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// CreateLifeArea persists a new private life area.
func (s *SQLiteStore) CreateLifeArea(ctx context.Context, area *models.LifeArea) error {
	now := time.Now().Unix()
	if area.CreatedAt == 0 {
		area.CreatedAt = now
	}
	area.UpdatedAt = now

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO life_areas (user_id, designation, icon_path, is_default, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		nullableOwner(area.OwnerID), area.Designation, area.IconPath, area.IsDefault,
		area.CreatedAt, area.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert life area: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read life area id: %w", err)
	}
	area.ID = id
	return nil
}

// GetLifeArea retrieves a life area by ID.
func (s *SQLiteStore) GetLifeArea(ctx context.Context, id int64) (*models.LifeArea, error) {
	return getLifeArea(ctx, s.db, id)
}

// UpdateLifeArea updates the designation and icon of a life area.
func (s *SQLiteStore) UpdateLifeArea(ctx context.Context, area *models.LifeArea) error {
	area.UpdatedAt = time.Now().Unix()

	res, err := s.db.ExecContext(ctx,
		"UPDATE life_areas SET designation = ?, icon_path = ?, updated_at = ? WHERE id = ?",
		area.Designation, area.IconPath, area.UpdatedAt, area.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update life area: %w", err)
	}
	return requireAffected(res, "life area", area.ID)
}

// UpsertDefaultLifeArea inserts a default life area or refreshes the icon of
// the existing default with the same designation.
func (s *SQLiteStore) UpsertDefaultLifeArea(ctx context.Context, area *models.LifeArea) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	area.IsDefault = true
	area.OwnerID = ""
	area.UpdatedAt = now

	var id int64
	err = tx.QueryRowContext(ctx,
		"SELECT id FROM life_areas WHERE is_default = 1 AND designation = ? ORDER BY id LIMIT 1",
		area.Designation,
	).Scan(&id)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		area.CreatedAt = now
		res, err := tx.ExecContext(ctx,
			`INSERT INTO life_areas (user_id, designation, icon_path, is_default, created_at, updated_at)
			 VALUES (NULL, ?, ?, 1, ?, ?)`,
			area.Designation, area.IconPath, area.CreatedAt, area.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert default life area: %w", err)
		}
		if id, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("failed to read life area id: %w", err)
		}
	case err != nil:
		return fmt.Errorf("failed to look up default life area: %w", err)
	default:
		if _, err := tx.ExecContext(ctx,
			"UPDATE life_areas SET icon_path = ?, updated_at = ? WHERE id = ?",
			area.IconPath, area.UpdatedAt, id,
		); err != nil {
			return fmt.Errorf("failed to update default life area: %w", err)
		}
	}
	area.ID = id

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

const lifeAreaColumns = "id, COALESCE(user_id, ''), designation, icon_path, is_default, created_at, updated_at"

type scanner interface {
	Scan(dest ...any) error
}

func scanLifeArea(row scanner, area *models.LifeArea) error {
	return row.Scan(
		&area.ID,
		&area.OwnerID,
		&area.Designation,
		&area.IconPath,
		&area.IsDefault,
		&area.CreatedAt,
		&area.UpdatedAt,
	)
}

func getLifeArea(ctx context.Context, q queryer, id int64) (*models.LifeArea, error) {
	area := &models.LifeArea{}
	err := scanLifeArea(q.QueryRowContext(ctx,
		"SELECT "+lifeAreaColumns+" FROM life_areas WHERE id = ?", id,
	), area)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("life area %d: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get life area: %w", err)
	}
	return area, nil
}

// nullableOwner stores system-owned areas with a NULL owner.
func nullableOwner(ownerID string) any {
	if ownerID == "" {
		return nil
	}
	return ownerID
}

func requireAffected(res sql.Result, what string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", what, id, storage.ErrNotFound)
	}
	return nil
}
