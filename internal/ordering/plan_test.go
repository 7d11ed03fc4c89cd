package ordering

import (
	"reflect"
	"testing"
)

func TestMissingIDs(t *testing.T) {
	tests := []struct {
		name     string
		catalog  []int64
		existing map[int64]bool
		want     []int64
	}{
		{"nothing seeded", []int64{3, 1, 2}, map[int64]bool{}, []int64{3, 1, 2}},
		{"all seeded", []int64{1, 2}, map[int64]bool{1: true, 2: true}, nil},
		{"keeps catalog order", []int64{5, 6, 7, 8}, map[int64]bool{6: true}, []int64{5, 7, 8}},
		{"empty catalog", nil, map[int64]bool{1: true}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MissingIDs(tt.catalog, tt.existing)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("MissingIDs() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAppendEntries(t *testing.T) {
	t.Run("first seed starts at zero", func(t *testing.T) {
		entries := AppendEntries("u1", []int64{10, 20, 30}, -1)
		for i, e := range entries {
			if e.Position != i {
				t.Errorf("entry %d position = %d, want %d", i, e.Position, i)
			}
			if e.UserID != "u1" {
				t.Errorf("entry %d user = %q, want u1", i, e.UserID)
			}
		}
		if entries[2].LifeAreaID != 30 {
			t.Errorf("entry 2 life area = %d, want 30", entries[2].LifeAreaID)
		}
	})

	t.Run("appends after current max", func(t *testing.T) {
		entries := AppendEntries("u1", []int64{7, 8}, 4)
		if entries[0].Position != 5 || entries[1].Position != 6 {
			t.Errorf("positions = %d,%d, want 5,6", entries[0].Position, entries[1].Position)
		}
	})
}

func TestClamp(t *testing.T) {
	tests := []struct {
		toIndex, lastIndex, want int
	}{
		{0, 3, 0},
		{2, 3, 2},
		{3, 3, 3},
		{4, 3, 3},
		{100, 3, 3},
		{3, 0, 0}, // only entry in the list
		{-2, 3, 0},
	}

	for _, tt := range tests {
		if got := Clamp(tt.toIndex, tt.lastIndex); got != tt.want {
			t.Errorf("Clamp(%d, %d) = %d, want %d", tt.toIndex, tt.lastIndex, got, tt.want)
		}
	}
}

func TestPlanShift(t *testing.T) {
	tests := []struct {
		name      string
		old, to   int
		wantShift Shift
		wantOK    bool
	}{
		{"to front", 3, 0, Shift{Lo: 0, Hi: 2, Delta: 1}, true},
		{"to back", 1, 2, Shift{Lo: 2, Hi: 2, Delta: -1}, true},
		{"adjacent up", 2, 1, Shift{Lo: 1, Hi: 1, Delta: 1}, true},
		{"whole list down", 0, 9, Shift{Lo: 1, Hi: 9, Delta: -1}, true},
		{"no move", 4, 4, Shift{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := PlanShift(tt.old, tt.to)
			if ok != tt.wantOK {
				t.Fatalf("PlanShift ok = %v, want %v", ok, tt.wantOK)
			}
			if got != tt.wantShift {
				t.Errorf("PlanShift(%d, %d) = %+v, want %+v", tt.old, tt.to, got, tt.wantShift)
			}
		})
	}
}

func TestCloseGap(t *testing.T) {
	if got := CloseGap(1, 3); got != (Shift{Lo: 2, Hi: 3, Delta: -1}) {
		t.Errorf("CloseGap(1, 3) = %+v", got)
	}
	if !CloseGap(3, 2).Empty() {
		t.Error("removing the last entry should need no shift")
	}
}

// TestShiftArithmetic checks that both phases together move each row by
// exactly Delta and that phase one lands outside the live range.
func TestShiftArithmetic(t *testing.T) {
	for _, delta := range []int{1, -1} {
		for pos := 0; pos < 50; pos++ {
			lifted := pos + ShiftOffset
			if lifted < 1000 {
				t.Fatalf("lifted position %d still inside live range", lifted)
			}
			final := lifted + (delta - ShiftOffset)
			if final != pos+delta {
				t.Errorf("pos %d delta %d: got %d, want %d", pos, delta, final, pos+delta)
			}
		}
	}
	if SentinelPosition >= 0 {
		t.Error("sentinel must stay below every valid position")
	}
}
