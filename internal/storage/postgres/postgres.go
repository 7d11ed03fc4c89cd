// Package postgres provides a PostgreSQL-backed implementation of the storage.Store interface.
//
// Unlike the SQLite store, Postgres locks per user: LockUserOrders takes a
// transaction-scoped advisory lock keyed on a 64-bit hash of the user ID
// (hashtextextended, Postgres 11+) and then locks the user's existing order
// rows FOR UPDATE.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	pgmigrate "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/mmynk/lifeareas/internal/models"
	"github.com/mmynk/lifeareas/internal/storage"
)

// Ensure Store implements storage.Store
var _ storage.Store = (*Store)(nil)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Store implements storage.Store using PostgreSQL.
type Store struct {
	db *sqlx.DB
}

// New creates a Store using the provided database handle.
// The schema is expected to be migrated already (see Migrate).
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Open connects to dsn, applies pending migrations and returns a Store.
func Open(dsn string) (*Store, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	if err := Migrate(db.DB); err != nil {
		db.Close()
		return nil, err
	}

	return New(db), nil
}

// Migrate applies the embedded schema migrations.
func Migrate(db *sql.DB) error {
	src, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}

	driver, err := pgmigrate.WithInstance(db, &pgmigrate.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// WithOrderTx runs fn inside one read-committed transaction.
func (s *Store) WithOrderTx(ctx context.Context, fn func(tx storage.OrderTx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
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

// lifeAreaRow mirrors the life_areas table.
type lifeAreaRow struct {
	ID          int64          `db:"id"`
	OwnerID     sql.NullString `db:"user_id"`
	Designation string         `db:"designation"`
	IconPath    string         `db:"icon_path"`
	IsDefault   bool           `db:"is_default"`
	CreatedAt   int64          `db:"created_at"`
	UpdatedAt   int64          `db:"updated_at"`
}

func (r *lifeAreaRow) model() models.LifeArea {
	return models.LifeArea{
		ID:          r.ID,
		OwnerID:     r.OwnerID.String,
		Designation: r.Designation,
		IconPath:    r.IconPath,
		IsDefault:   r.IsDefault,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

const lifeAreaColumns = "id, user_id, designation, icon_path, is_default, created_at, updated_at"

// CreateLifeArea persists a new private life area.
func (s *Store) CreateLifeArea(ctx context.Context, area *models.LifeArea) error {
	now := time.Now().Unix()
	if area.CreatedAt == 0 {
		area.CreatedAt = now
	}
	area.UpdatedAt = now

	err := s.db.QueryRowxContext(ctx, `
		INSERT INTO life_areas (user_id, designation, icon_path, is_default, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		nullableOwner(area.OwnerID), area.Designation, area.IconPath, area.IsDefault,
		area.CreatedAt, area.UpdatedAt,
	).Scan(&area.ID)
	if err != nil {
		return fmt.Errorf("failed to insert life area: %w", err)
	}
	return nil
}

// GetLifeArea retrieves a life area by ID.
func (s *Store) GetLifeArea(ctx context.Context, id int64) (*models.LifeArea, error) {
	return getLifeArea(ctx, s.db, id)
}

// UpdateLifeArea updates the designation and icon of a life area.
func (s *Store) UpdateLifeArea(ctx context.Context, area *models.LifeArea) error {
	area.UpdatedAt = time.Now().Unix()

	res, err := s.db.ExecContext(ctx,
		"UPDATE life_areas SET designation = $1, icon_path = $2, updated_at = $3 WHERE id = $4",
		area.Designation, area.IconPath, area.UpdatedAt, area.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update life area: %w", err)
	}
	return requireAffected(res, "life area", area.ID)
}

// UpsertDefaultLifeArea inserts a default life area or refreshes the icon of
// the existing default with the same designation.
func (s *Store) UpsertDefaultLifeArea(ctx context.Context, area *models.LifeArea) error {
	now := time.Now().Unix()
	area.IsDefault = true
	area.OwnerID = ""
	area.CreatedAt = now
	area.UpdatedAt = now

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	err = tx.GetContext(ctx, &area.ID, `
		UPDATE life_areas SET icon_path = $1, updated_at = $2
		WHERE id = (
			SELECT id FROM life_areas
			WHERE is_default AND designation = $3
			ORDER BY id LIMIT 1
		)
		RETURNING id`,
		area.IconPath, area.UpdatedAt, area.Designation,
	)
	if errors.Is(err, sql.ErrNoRows) {
		err = tx.GetContext(ctx, &area.ID, `
			INSERT INTO life_areas (user_id, designation, icon_path, is_default, created_at, updated_at)
			VALUES (NULL, $1, $2, TRUE, $3, $4)
			RETURNING id`,
			area.Designation, area.IconPath, area.CreatedAt, area.UpdatedAt,
		)
	}
	if err != nil {
		return fmt.Errorf("failed to upsert default life area: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func getLifeArea(ctx context.Context, q sqlx.QueryerContext, id int64) (*models.LifeArea, error) {
	var row lifeAreaRow
	err := sqlx.GetContext(ctx, q, &row, "SELECT "+lifeAreaColumns+" FROM life_areas WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("life area %d: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get life area: %w", err)
	}
	area := row.model()
	return &area, nil
}

func nullableOwner(ownerID string) sql.NullString {
	return sql.NullString{String: ownerID, Valid: ownerID != ""}
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
