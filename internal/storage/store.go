// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/lifeareas/internal/models"
)

// ErrNotFound is returned (wrapped) when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the interface for life area and user storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL)
// without changing the service layer.
type Store interface {
	// CreateLifeArea persists a new private life area.
	// The area.ID and timestamp fields are populated by the store.
	CreateLifeArea(ctx context.Context, area *models.LifeArea) error

	// GetLifeArea retrieves a life area by its ID.
	// Returns an error wrapping ErrNotFound if it does not exist.
	GetLifeArea(ctx context.Context, id int64) (*models.LifeArea, error)

	// UpdateLifeArea updates designation and icon of an existing life area.
	UpdateLifeArea(ctx context.Context, area *models.LifeArea) error

	// UpsertDefaultLifeArea creates a default life area, or refreshes its icon
	// if a default with the same designation already exists.
	UpsertDefaultLifeArea(ctx context.Context, area *models.LifeArea) error

	// CreateUser, GetUserByEmail and GetUserByID back the password authenticator.
	// The lookups return (nil, nil) when the user does not exist.
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// WithOrderTx runs fn inside a single transaction. The transaction commits
	// only if fn returns nil; any error rolls back every write made through tx.
	WithOrderTx(ctx context.Context, fn func(tx OrderTx) error) error

	// Close releases any resources held by the store.
	Close() error
}

// OrderTx is the transactional view used by the ordering engine.
// Every method runs inside the transaction opened by Store.WithOrderTx.
type OrderTx interface {
	// VisibleLifeAreas returns the defaults plus the areas owned by userID,
	// in catalog order (ascending ID).
	VisibleLifeAreas(ctx context.Context, userID string) ([]models.LifeArea, error)

	// GetLifeArea retrieves a life area by ID, wrapping ErrNotFound when absent.
	GetLifeArea(ctx context.Context, id int64) (*models.LifeArea, error)

	// LockUserOrders locks userID's order rows until the transaction ends.
	// Operations for different users never block each other.
	LockUserOrders(ctx context.Context, userID string) error

	// ExistingOrderIDs returns the subset of areaIDs that already have an
	// order entry for userID.
	ExistingOrderIDs(ctx context.Context, userID string, areaIDs []int64) (map[int64]bool, error)

	// MaxPosition returns the highest position among userID's entries,
	// ignoring excludeAreaID (0 excludes nothing). Returns -1 when there are none.
	MaxPosition(ctx context.Context, userID string, excludeAreaID int64) (int, error)

	// InsertOrders inserts new order entries.
	InsertOrders(ctx context.Context, entries []models.OrderEntry) error

	// GetOrder returns userID's entry for areaID, wrapping ErrNotFound when absent.
	GetOrder(ctx context.Context, userID string, areaID int64) (*models.OrderEntry, error)

	// SetPosition writes a single entry's position.
	SetPosition(ctx context.Context, userID string, areaID int64, position int) error

	// ShiftPositions adds delta to every entry of userID whose position is in
	// [lo, hi], in one bulk statement. Returns the number of rows moved.
	ShiftPositions(ctx context.Context, userID string, lo, hi, delta int) (int64, error)

	// ListOrdered joins the visible catalog with userID's entries and returns
	// the result sorted by ascending position. Areas without an entry, and
	// entries whose area is no longer visible, are left out.
	ListOrdered(ctx context.Context, userID string) ([]models.OrderedLifeArea, error)

	// DeleteLifeArea removes a life area together with every order entry for it.
	DeleteLifeArea(ctx context.Context, id int64) error
}
