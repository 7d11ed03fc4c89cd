package ordering

import "github.com/mmynk/lifeareas/internal/models"

const (
	// SentinelPosition parks the entry being moved while the rest of the
	// interval shifts. It is below any valid position and never committed.
	SentinelPosition = -999999

	// ShiftOffset lifts a shifted interval clear of every live position so a
	// bulk update never lands two rows on the same position mid-statement.
	ShiftOffset = 1000000
)

// Shift moves every entry whose position is in [Lo, Hi] by Delta (+1 or -1).
type Shift struct {
	Lo    int
	Hi    int
	Delta int
}

// Empty reports whether the shift touches no positions.
func (s Shift) Empty() bool {
	return s.Lo > s.Hi
}

// MissingIDs returns the catalog IDs without an existing entry, in catalog order.
func MissingIDs(catalog []int64, existing map[int64]bool) []int64 {
	var missing []int64
	for _, id := range catalog {
		if !existing[id] {
			missing = append(missing, id)
		}
	}
	return missing
}

// AppendEntries builds entries for missing, numbered consecutively after currentMax.
// currentMax is -1 when the user has no entries yet.
func AppendEntries(userID string, missing []int64, currentMax int) []models.OrderEntry {
	entries := make([]models.OrderEntry, len(missing))
	for i, id := range missing {
		entries[i] = models.OrderEntry{
			UserID:     userID,
			LifeAreaID: id,
			Position:   currentMax + 1 + i,
		}
	}
	return entries
}

// Clamp caps toIndex at lastIndex, the highest position over all of the
// user's entries including the one being moved.
func Clamp(toIndex, lastIndex int) int {
	if toIndex < 0 || lastIndex < 0 {
		return 0
	}
	if toIndex > lastIndex {
		return lastIndex
	}
	return toIndex
}

// PlanShift returns the interval that has to make room when an entry moves
// from oldIndex to toIndex. ok is false when the entry stays put.
//
// Moving toward the front, [toIndex, oldIndex) moves back by one.
// Moving toward the back, (oldIndex, toIndex] moves forward by one.
func PlanShift(oldIndex, toIndex int) (shift Shift, ok bool) {
	switch {
	case toIndex < oldIndex:
		return Shift{Lo: toIndex, Hi: oldIndex - 1, Delta: 1}, true
	case toIndex > oldIndex:
		return Shift{Lo: oldIndex + 1, Hi: toIndex, Delta: -1}, true
	default:
		return Shift{}, false
	}
}

// CloseGap returns the shift that pulls (removed, maxPos] forward by one after
// the entry at removed is deleted.
func CloseGap(removed, maxPos int) Shift {
	return Shift{Lo: removed + 1, Hi: maxPos, Delta: -1}
}
