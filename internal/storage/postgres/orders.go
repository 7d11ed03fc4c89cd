package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/mmynk/lifeareas/internal/models"
	"github.com/mmynk/lifeareas/internal/storage"
)

var _ storage.OrderTx = (*orderTx)(nil)

// orderTx implements storage.OrderTx on a Postgres transaction.
type orderTx struct {
	tx *sqlx.Tx
}

// orderRow mirrors the user_life_area_orders table.
type orderRow struct {
	UserID     string `db:"user_id"`
	LifeAreaID int64  `db:"life_area_id"`
	Position   int    `db:"position"`
	CreatedAt  int64  `db:"created_at"`
	UpdatedAt  int64  `db:"updated_at"`
}

type orderedRow struct {
	lifeAreaRow
	Position int `db:"position"`
}

// VisibleLifeAreas returns the defaults plus userID's own areas in catalog order.
func (o *orderTx) VisibleLifeAreas(ctx context.Context, userID string) ([]models.LifeArea, error) {
	var rows []lifeAreaRow
	err := o.tx.SelectContext(ctx, &rows,
		"SELECT "+lifeAreaColumns+" FROM life_areas WHERE is_default OR user_id = $1 ORDER BY id",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list visible life areas: %w", err)
	}

	areas := make([]models.LifeArea, len(rows))
	for i := range rows {
		areas[i] = rows[i].model()
	}
	return areas, nil
}

// GetLifeArea retrieves a life area inside the transaction.
func (o *orderTx) GetLifeArea(ctx context.Context, id int64) (*models.LifeArea, error) {
	return getLifeArea(ctx, o.tx, id)
}

// orderLockSeed keeps the user order lock keys apart from other advisory locks.
const orderLockSeed = 0x6c696665

// LockUserOrders serializes order mutations for userID until the transaction ends.
// The advisory lock also covers a user with no rows yet, which FOR UPDATE alone cannot.
// Keys are 64-bit hashes; a collision only makes two users wait on each other.
func (o *orderTx) LockUserOrders(ctx context.Context, userID string) error {
	if _, err := o.tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock(hashtextextended($1, $2))", userID, orderLockSeed); err != nil {
		return fmt.Errorf("failed to acquire user order lock: %w", err)
	}

	var locked []int64
	if err := o.tx.SelectContext(ctx, &locked,
		"SELECT life_area_id FROM user_life_area_orders WHERE user_id = $1 FOR UPDATE",
		userID,
	); err != nil {
		return fmt.Errorf("failed to lock user orders: %w", err)
	}
	return nil
}

// ExistingOrderIDs returns which of areaIDs already have an entry for userID.
func (o *orderTx) ExistingOrderIDs(ctx context.Context, userID string, areaIDs []int64) (map[int64]bool, error) {
	existing := make(map[int64]bool, len(areaIDs))
	if len(areaIDs) == 0 {
		return existing, nil
	}

	query, args, err := sqlx.In(
		"SELECT life_area_id FROM user_life_area_orders WHERE user_id = ? AND life_area_id IN (?)",
		userID, areaIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build existing orders query: %w", err)
	}

	var ids []int64
	if err := o.tx.SelectContext(ctx, &ids, o.tx.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to get existing orders: %w", err)
	}
	for _, id := range ids {
		existing[id] = true
	}
	return existing, nil
}

// MaxPosition returns the highest position for userID, or -1.
func (o *orderTx) MaxPosition(ctx context.Context, userID string, excludeAreaID int64) (int, error) {
	var maxPos int
	err := o.tx.GetContext(ctx, &maxPos, `
		SELECT COALESCE(MAX(position), -1)
		FROM user_life_area_orders
		WHERE user_id = $1 AND life_area_id <> $2`,
		userID, excludeAreaID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to get max position: %w", err)
	}
	return maxPos, nil
}

// InsertOrders inserts the given entries in one statement.
func (o *orderTx) InsertOrders(ctx context.Context, entries []models.OrderEntry) error {
	if len(entries) == 0 {
		return nil
	}

	now := time.Now().Unix()
	rows := make([]orderRow, len(entries))
	for i := range entries {
		e := &entries[i]
		if e.CreatedAt == 0 {
			e.CreatedAt = now
		}
		e.UpdatedAt = now
		rows[i] = orderRow{
			UserID:     e.UserID,
			LifeAreaID: e.LifeAreaID,
			Position:   e.Position,
			CreatedAt:  e.CreatedAt,
			UpdatedAt:  e.UpdatedAt,
		}
	}

	_, err := o.tx.NamedExecContext(ctx, `
		INSERT INTO user_life_area_orders (user_id, life_area_id, position, created_at, updated_at)
		VALUES (:user_id, :life_area_id, :position, :created_at, :updated_at)`,
		rows,
	)
	if err != nil {
		return fmt.Errorf("failed to insert orders: %w", err)
	}
	return nil
}

// GetOrder returns userID's entry for areaID.
func (o *orderTx) GetOrder(ctx context.Context, userID string, areaID int64) (*models.OrderEntry, error) {
	var row orderRow
	err := o.tx.GetContext(ctx, &row, `
		SELECT user_id, life_area_id, position, created_at, updated_at
		FROM user_life_area_orders
		WHERE user_id = $1 AND life_area_id = $2`,
		userID, areaID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("order for life area %d: %w", areaID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return &models.OrderEntry{
		UserID:     row.UserID,
		LifeAreaID: row.LifeAreaID,
		Position:   row.Position,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}, nil
}

// SetPosition writes one entry's position.
func (o *orderTx) SetPosition(ctx context.Context, userID string, areaID int64, position int) error {
	res, err := o.tx.ExecContext(ctx, `
		UPDATE user_life_area_orders
		SET position = $1, updated_at = $2
		WHERE user_id = $3 AND life_area_id = $4`,
		position, time.Now().Unix(), userID, areaID,
	)
	if err != nil {
		return fmt.Errorf("failed to set position: %w", err)
	}
	return requireAffected(res, "order for life area", areaID)
}

// ShiftPositions adds delta to every position of userID in [lo, hi].
func (o *orderTx) ShiftPositions(ctx context.Context, userID string, lo, hi, delta int) (int64, error) {
	res, err := o.tx.ExecContext(ctx, `
		UPDATE user_life_area_orders
		SET position = position + $1, updated_at = $2
		WHERE user_id = $3 AND position BETWEEN $4 AND $5`,
		delta, time.Now().Unix(), userID, lo, hi,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to shift positions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n, nil
}

// ListOrdered returns the visible areas with userID's positions, ascending.
func (o *orderTx) ListOrdered(ctx context.Context, userID string) ([]models.OrderedLifeArea, error) {
	var rows []orderedRow
	err := o.tx.SelectContext(ctx, &rows, `
		SELECT la.id, la.user_id, la.designation, la.icon_path, la.is_default,
		       la.created_at, la.updated_at, uo.position
		FROM life_areas la
		JOIN user_life_area_orders uo ON uo.life_area_id = la.id AND uo.user_id = $1
		WHERE la.is_default OR la.user_id = $1
		ORDER BY uo.position`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list ordered life areas: %w", err)
	}

	ordered := make([]models.OrderedLifeArea, len(rows))
	for i := range rows {
		ordered[i] = models.OrderedLifeArea{LifeArea: rows[i].model(), Position: rows[i].Position}
	}
	return ordered, nil
}

// DeleteLifeArea removes a life area; its order entries cascade.
func (o *orderTx) DeleteLifeArea(ctx context.Context, id int64) error {
	res, err := o.tx.ExecContext(ctx, "DELETE FROM life_areas WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete life area: %w", err)
	}
	return requireAffected(res, "life area", id)
}
