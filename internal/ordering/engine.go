// Package ordering maintains each user's custom order over the life areas
// visible to them.
//
// Positions for a user's visible areas always form the dense sequence
// 0..n-1 after a committed operation. Entries are created lazily (seeded)
// the first time an area is listed or reordered, appended after the current
// maximum in catalog order. Every mutating operation runs in one store
// transaction that first locks the user's order rows, so concurrent calls for
// the same user serialize while calls for different users do not interact.
//
// A reorder never lets two entries share a position, even mid-transaction:
// the moved entry is parked at SentinelPosition, the interval in between is
// lifted by ShiftOffset and lowered back one slot over, and only then is the
// moved entry written to its target. This keeps storage engines that check
// UNIQUE(user, position) per row from rejecting the bulk update.
package ordering

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mmynk/lifeareas/internal/metrics"
	"github.com/mmynk/lifeareas/internal/models"
	"github.com/mmynk/lifeareas/internal/storage"
)

var (
	// ErrNotFound covers both a missing life area and one the user cannot see.
	ErrNotFound = errors.New("life area not found")

	// ErrForbidden is returned when a visible life area cannot be changed by the user.
	ErrForbidden = errors.New("life area cannot be modified by this user")

	// ErrInvalidIndex is returned for a negative target index.
	ErrInvalidIndex = errors.New("to_index must be a non-negative integer")
)

// Engine runs seed, list, reorder and remove against a storage.Store.
type Engine struct {
	store storage.Store
}

// NewEngine creates an Engine backed by store.
func NewEngine(store storage.Store) *Engine {
	return &Engine{store: store}
}

// ReorderResult describes a completed reorder.
type ReorderResult struct {
	LifeAreaID int64
	// Position is the final (clamped) position of the moved area.
	Position int
	// Changed is false when the area was already at Position.
	Changed bool
	// Ordered is the user's full ordered list after the move.
	Ordered []models.OrderedLifeArea
}

// withUserOrderLock runs fn in one transaction holding userID's order lock.
func (e *Engine) withUserOrderLock(ctx context.Context, userID string, fn func(tx storage.OrderTx) error) error {
	return e.store.WithOrderTx(ctx, func(tx storage.OrderTx) error {
		if err := tx.LockUserOrders(ctx, userID); err != nil {
			return err
		}
		return fn(tx)
	})
}

// List returns the life areas visible to userID sorted by the user's
// position, seeding entries for any area the user has not seen yet.
func (e *Engine) List(ctx context.Context, userID string) ([]models.OrderedLifeArea, error) {
	var ordered []models.OrderedLifeArea

	err := e.withUserOrderLock(ctx, userID, func(tx storage.OrderTx) error {
		areas, err := tx.VisibleLifeAreas(ctx, userID)
		if err != nil {
			return err
		}
		if len(areas) == 0 {
			return nil
		}

		if _, err := seed(ctx, tx, userID, catalogIDs(areas)); err != nil {
			return err
		}

		ordered, err = tx.ListOrdered(ctx, userID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list life areas: %w", err)
	}
	return ordered, nil
}

// Reorder moves areaID to toIndex in userID's list. toIndex past the end
// is clamped to the last position.
func (e *Engine) Reorder(ctx context.Context, userID string, areaID int64, toIndex int) (*ReorderResult, error) {
	if toIndex < 0 {
		return nil, ErrInvalidIndex
	}

	result := &ReorderResult{LifeAreaID: areaID}

	err := e.withUserOrderLock(ctx, userID, func(tx storage.OrderTx) error {
		if _, err := visibleArea(ctx, tx, userID, areaID); err != nil {
			return err
		}

		areas, err := tx.VisibleLifeAreas(ctx, userID)
		if err != nil {
			return err
		}
		if _, err := seed(ctx, tx, userID, catalogIDs(areas)); err != nil {
			return err
		}

		entry, err := ensureEntry(ctx, tx, userID, areaID)
		if err != nil {
			return err
		}
		oldIndex := entry.Position

		lastIndex, err := tx.MaxPosition(ctx, userID, 0)
		if err != nil {
			return err
		}
		target := Clamp(toIndex, lastIndex)
		result.Position = target

		if shift, ok := PlanShift(oldIndex, target); ok {
			if err := tx.SetPosition(ctx, userID, areaID, SentinelPosition); err != nil {
				return err
			}
			if err := applyShift(ctx, tx, userID, shift); err != nil {
				return err
			}
			if err := tx.SetPosition(ctx, userID, areaID, target); err != nil {
				return err
			}
			result.Changed = true
		}

		result.Ordered, err = tx.ListOrdered(ctx, userID)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			metrics.RecordReorder(metrics.OutcomeNotFound)
			return nil, err
		}
		metrics.RecordReorder(metrics.OutcomeError)
		return nil, fmt.Errorf("failed to reorder life area: %w", err)
	}

	if result.Changed {
		metrics.RecordReorder(metrics.OutcomeMoved)
		slog.Debug("Life area reordered", "user_id", userID, "life_area_id", areaID, "position", result.Position)
	} else {
		metrics.RecordReorder(metrics.OutcomeUnchanged)
	}
	return result, nil
}

// Remove deletes a life area owned by userID and compacts the positions
// behind it so the user's list stays gap-free.
func (e *Engine) Remove(ctx context.Context, userID string, areaID int64) error {
	err := e.withUserOrderLock(ctx, userID, func(tx storage.OrderTx) error {
		area, err := visibleArea(ctx, tx, userID, areaID)
		if err != nil {
			return err
		}
		if !area.OwnedBy(userID) {
			return ErrForbidden
		}

		entry, err := tx.GetOrder(ctx, userID, areaID)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return err
		}

		if err := tx.DeleteLifeArea(ctx, areaID); err != nil {
			return err
		}
		if entry == nil {
			return nil
		}

		maxPos, err := tx.MaxPosition(ctx, userID, 0)
		if err != nil {
			return err
		}
		gap := CloseGap(entry.Position, maxPos)
		if gap.Empty() {
			return nil
		}
		if err := applyShift(ctx, tx, userID, gap); err != nil {
			return err
		}
		metrics.RecordGapClosed()
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrForbidden) {
			return err
		}
		return fmt.Errorf("failed to remove life area: %w", err)
	}
	return nil
}

// visibleArea loads areaID and hides it unless userID can see it.
func visibleArea(ctx context.Context, tx storage.OrderTx, userID string, areaID int64) (*models.LifeArea, error) {
	area, err := tx.GetLifeArea(ctx, areaID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if !area.VisibleTo(userID) {
		return nil, ErrNotFound
	}
	return area, nil
}

// seed appends entries for every catalog ID the user has no entry for.
// Must run under the user's order lock.
func seed(ctx context.Context, tx storage.OrderTx, userID string, catalog []int64) (int, error) {
	existing, err := tx.ExistingOrderIDs(ctx, userID, catalog)
	if err != nil {
		return 0, err
	}

	missing := MissingIDs(catalog, existing)
	if len(missing) == 0 {
		return 0, nil
	}

	currentMax, err := tx.MaxPosition(ctx, userID, 0)
	if err != nil {
		return 0, err
	}
	if err := tx.InsertOrders(ctx, AppendEntries(userID, missing, currentMax)); err != nil {
		return 0, err
	}

	metrics.RecordSeeded(len(missing))
	slog.Debug("Seeded life area order", "user_id", userID, "count", len(missing), "from", currentMax+1)
	return len(missing), nil
}

// ensureEntry returns userID's entry for areaID, appending one at the end if missing.
func ensureEntry(ctx context.Context, tx storage.OrderTx, userID string, areaID int64) (*models.OrderEntry, error) {
	entry, err := tx.GetOrder(ctx, userID, areaID)
	if err == nil {
		return entry, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	if _, err := seed(ctx, tx, userID, []int64{areaID}); err != nil {
		return nil, err
	}
	return tx.GetOrder(ctx, userID, areaID)
}

// applyShift performs shift as two bulk updates: lift the interval by
// ShiftOffset, then bring it back down by ShiftOffset-Delta. The net effect
// on each row is Delta, and no intermediate state reuses a live position.
func applyShift(ctx context.Context, tx storage.OrderTx, userID string, shift Shift) error {
	if shift.Empty() {
		return nil
	}
	if _, err := tx.ShiftPositions(ctx, userID, shift.Lo, shift.Hi, ShiftOffset); err != nil {
		return err
	}
	_, err := tx.ShiftPositions(ctx, userID,
		shift.Lo+ShiftOffset, shift.Hi+ShiftOffset, shift.Delta-ShiftOffset)
	return err
}

func catalogIDs(areas []models.LifeArea) []int64 {
	ids := make([]int64, len(areas))
	for i := range areas {
		ids[i] = areas[i].ID
	}
	return ids
}
