package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mmynk/lifeareas/internal/models"
	"github.com/mmynk/lifeareas/internal/storage"
)

var _ storage.OrderTx = (*orderTx)(nil)

// orderTx implements storage.OrderTx on top of an immediate SQLite transaction.
type orderTx struct {
	tx *sql.Tx
}

// VisibleLifeAreas returns the defaults plus userID's own areas in catalog order.
func (o *orderTx) VisibleLifeAreas(ctx context.Context, userID string) ([]models.LifeArea, error) {
	rows, err := o.tx.QueryContext(ctx,
		"SELECT "+lifeAreaColumns+" FROM life_areas WHERE is_default = 1 OR user_id = ? ORDER BY id",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list visible life areas: %w", err)
	}
	defer rows.Close()

	var areas []models.LifeArea
	for rows.Next() {
		var area models.LifeArea
		if err := scanLifeArea(rows, &area); err != nil {
			return nil, fmt.Errorf("failed to scan life area: %w", err)
		}
		areas = append(areas, area)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate life areas: %w", err)
	}
	return areas, nil
}

// GetLifeArea retrieves a life area inside the transaction.
func (o *orderTx) GetLifeArea(ctx context.Context, id int64) (*models.LifeArea, error) {
	return getLifeArea(ctx, o.tx, id)
}

// LockUserOrders reads the user's rows inside the transaction.
// SQLite has no row locks: the database write lock taken at BEGIN IMMEDIATE
// already excludes every other writer, so this only pins the snapshot.
func (o *orderTx) LockUserOrders(ctx context.Context, userID string) error {
	var n int
	if err := o.tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM user_life_area_orders WHERE user_id = ?", userID,
	).Scan(&n); err != nil {
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

	query := `
		SELECT life_area_id
		FROM user_life_area_orders
		WHERE user_id = ? AND life_area_id IN (?` + repeatPlaceholder(len(areaIDs)-1) + `)`

	args := make([]any, 0, len(areaIDs)+1)
	args = append(args, userID)
	for _, id := range areaIDs {
		args = append(args, id)
	}

	rows, err := o.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get existing orders: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		existing[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate orders: %w", err)
	}
	return existing, nil
}

// MaxPosition returns the highest position for userID, or -1.
func (o *orderTx) MaxPosition(ctx context.Context, userID string, excludeAreaID int64) (int, error) {
	var maxPos int
	err := o.tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(position), -1)
		 FROM user_life_area_orders
		 WHERE user_id = ? AND life_area_id != ?`,
		userID, excludeAreaID,
	).Scan(&maxPos)
	if err != nil {
		return 0, fmt.Errorf("failed to get max position: %w", err)
	}
	return maxPos, nil
}

// InsertOrders inserts the given entries.
func (o *orderTx) InsertOrders(ctx context.Context, entries []models.OrderEntry) error {
	if len(entries) == 0 {
		return nil
	}

	stmt, err := o.tx.PrepareContext(ctx,
		`INSERT INTO user_life_area_orders (user_id, life_area_id, position, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("failed to prepare order insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().Unix()
	for i := range entries {
		e := &entries[i]
		if e.CreatedAt == 0 {
			e.CreatedAt = now
		}
		e.UpdatedAt = now
		if _, err := stmt.ExecContext(ctx, e.UserID, e.LifeAreaID, e.Position, e.CreatedAt, e.UpdatedAt); err != nil {
			return fmt.Errorf("failed to insert order: %w", err)
		}
	}
	return nil
}

// GetOrder returns userID's entry for areaID.
func (o *orderTx) GetOrder(ctx context.Context, userID string, areaID int64) (*models.OrderEntry, error) {
	entry := &models.OrderEntry{}
	err := o.tx.QueryRowContext(ctx,
		`SELECT user_id, life_area_id, position, created_at, updated_at
		 FROM user_life_area_orders
		 WHERE user_id = ? AND life_area_id = ?`,
		userID, areaID,
	).Scan(&entry.UserID, &entry.LifeAreaID, &entry.Position, &entry.CreatedAt, &entry.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("order for life area %d: %w", areaID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return entry, nil
}

// SetPosition writes one entry's position.
func (o *orderTx) SetPosition(ctx context.Context, userID string, areaID int64, position int) error {
	res, err := o.tx.ExecContext(ctx,
		`UPDATE user_life_area_orders
		 SET position = ?, updated_at = ?
		 WHERE user_id = ? AND life_area_id = ?`,
		position, time.Now().Unix(), userID, areaID,
	)
	if err != nil {
		return fmt.Errorf("failed to set position: %w", err)
	}
	return requireAffected(res, "order for life area", areaID)
}

// ShiftPositions adds delta to every position of userID in [lo, hi].
func (o *orderTx) ShiftPositions(ctx context.Context, userID string, lo, hi, delta int) (int64, error) {
	res, err := o.tx.ExecContext(ctx,
		`UPDATE user_life_area_orders
		 SET position = position + ?, updated_at = ?
		 WHERE user_id = ? AND position >= ? AND position <= ?`,
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
	rows, err := o.tx.QueryContext(ctx, `
		SELECT la.id, COALESCE(la.user_id, ''), la.designation, la.icon_path, la.is_default,
		       la.created_at, la.updated_at, uo.position
		FROM life_areas la
		JOIN user_life_area_orders uo ON uo.life_area_id = la.id AND uo.user_id = ?
		WHERE la.is_default = 1 OR la.user_id = ?
		ORDER BY uo.position`,
		userID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list ordered life areas: %w", err)
	}
	defer rows.Close()

	var ordered []models.OrderedLifeArea
	for rows.Next() {
		var oa models.OrderedLifeArea
		if err := rows.Scan(
			&oa.ID,
			&oa.OwnerID,
			&oa.Designation,
			&oa.IconPath,
			&oa.IsDefault,
			&oa.CreatedAt,
			&oa.UpdatedAt,
			&oa.Position,
		); err != nil {
			return nil, fmt.Errorf("failed to scan ordered life area: %w", err)
		}
		ordered = append(ordered, oa)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ordered life areas: %w", err)
	}
	return ordered, nil
}

// DeleteLifeArea removes a life area; its order entries cascade.
func (o *orderTx) DeleteLifeArea(ctx context.Context, id int64) error {
	res, err := o.tx.ExecContext(ctx, "DELETE FROM life_areas WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete life area: %w", err)
	}
	return requireAffected(res, "life area", id)
}
