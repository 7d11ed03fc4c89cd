package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mmynk/lifeareas/internal/models"
	"github.com/mmynk/lifeareas/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	// Create temp directory for test database
	tempDir, err := os.MkdirTemp("", "lifeareas-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("CreateLifeArea assigns increasing IDs", func(t *testing.T) {
		first := &models.LifeArea{OwnerID: "u1", Designation: "Health", IconPath: "/health.svg"}
		second := &models.LifeArea{OwnerID: "u1", Designation: "Career", IconPath: "/career.svg"}

		if err := store.CreateLifeArea(ctx, first); err != nil {
			t.Fatalf("CreateLifeArea failed: %v", err)
		}
		if err := store.CreateLifeArea(ctx, second); err != nil {
			t.Fatalf("CreateLifeArea failed: %v", err)
		}

		if first.ID == 0 || second.ID <= first.ID {
			t.Errorf("Expected increasing IDs, got %d then %d", first.ID, second.ID)
		}
		if first.CreatedAt == 0 {
			t.Error("Expected CreatedAt to be set")
		}
	})

	t.Run("GetLifeArea round trips owner and default flag", func(t *testing.T) {
		area := &models.LifeArea{OwnerID: "u2", Designation: "Family", IconPath: "/family.svg"}
		if err := store.CreateLifeArea(ctx, area); err != nil {
			t.Fatalf("CreateLifeArea failed: %v", err)
		}

		got, err := store.GetLifeArea(ctx, area.ID)
		if err != nil {
			t.Fatalf("GetLifeArea failed: %v", err)
		}
		if got.OwnerID != "u2" || got.IsDefault || got.Designation != "Family" {
			t.Errorf("Unexpected life area: %+v", got)
		}
	})

	t.Run("GetLifeArea returns ErrNotFound", func(t *testing.T) {
		_, err := store.GetLifeArea(ctx, 99999)
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("UpdateLifeArea", func(t *testing.T) {
		area := &models.LifeArea{OwnerID: "u1", Designation: "Fun", IconPath: "/fun.svg"}
		if err := store.CreateLifeArea(ctx, area); err != nil {
			t.Fatalf("CreateLifeArea failed: %v", err)
		}

		area.Designation = "Leisure"
		if err := store.UpdateLifeArea(ctx, area); err != nil {
			t.Fatalf("UpdateLifeArea failed: %v", err)
		}

		got, _ := store.GetLifeArea(ctx, area.ID)
		if got.Designation != "Leisure" {
			t.Errorf("Designation = %q, want Leisure", got.Designation)
		}

		missing := &models.LifeArea{ID: 99999, Designation: "x", IconPath: "x"}
		if err := store.UpdateLifeArea(ctx, missing); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("UpsertDefaultLifeArea is idempotent by designation", func(t *testing.T) {
		first := &models.LifeArea{Designation: "Spirituality", IconPath: "/v1.svg"}
		if err := store.UpsertDefaultLifeArea(ctx, first); err != nil {
			t.Fatalf("UpsertDefaultLifeArea failed: %v", err)
		}

		again := &models.LifeArea{Designation: "Spirituality", IconPath: "/v2.svg"}
		if err := store.UpsertDefaultLifeArea(ctx, again); err != nil {
			t.Fatalf("UpsertDefaultLifeArea failed: %v", err)
		}

		if again.ID != first.ID {
			t.Errorf("Expected same ID, got %d and %d", first.ID, again.ID)
		}
		got, _ := store.GetLifeArea(ctx, first.ID)
		if !got.IsDefault || got.OwnerID != "" || got.IconPath != "/v2.svg" {
			t.Errorf("Unexpected default: %+v", got)
		}
	})
}

func TestOrderTx(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	var ids []int64
	for _, name := range []string{"A", "B", "C"} {
		area := &models.LifeArea{OwnerID: "u1", Designation: name, IconPath: "/" + name}
		if err := store.CreateLifeArea(ctx, area); err != nil {
			t.Fatalf("CreateLifeArea failed: %v", err)
		}
		ids = append(ids, area.ID)
	}
	shared := &models.LifeArea{Designation: "Shared", IconPath: "/shared"}
	if err := store.UpsertDefaultLifeArea(ctx, shared); err != nil {
		t.Fatalf("UpsertDefaultLifeArea failed: %v", err)
	}

	t.Run("VisibleLifeAreas", func(t *testing.T) {
		err := store.WithOrderTx(ctx, func(tx storage.OrderTx) error {
			u1, err := tx.VisibleLifeAreas(ctx, "u1")
			if err != nil {
				return err
			}
			if len(u1) != 4 {
				t.Errorf("u1 sees %d areas, want 4", len(u1))
			}
			u2, err := tx.VisibleLifeAreas(ctx, "u2")
			if err != nil {
				return err
			}
			if len(u2) != 1 || u2[0].Designation != "Shared" {
				t.Errorf("u2 sees %+v, want only Shared", u2)
			}
			return nil
		})
		if err != nil {
			t.Fatalf("WithOrderTx failed: %v", err)
		}
	})

	t.Run("MaxPosition without entries", func(t *testing.T) {
		err := store.WithOrderTx(ctx, func(tx storage.OrderTx) error {
			got, err := tx.MaxPosition(ctx, "u1", 0)
			if got != -1 {
				t.Errorf("MaxPosition = %d, want -1", got)
			}
			return err
		})
		if err != nil {
			t.Fatalf("WithOrderTx failed: %v", err)
		}
	})

	t.Run("insert, shift and list", func(t *testing.T) {
		err := store.WithOrderTx(ctx, func(tx storage.OrderTx) error {
			if err := tx.LockUserOrders(ctx, "u1"); err != nil {
				return err
			}
			entries := []models.OrderEntry{
				{UserID: "u1", LifeAreaID: ids[0], Position: 0},
				{UserID: "u1", LifeAreaID: ids[1], Position: 1},
				{UserID: "u1", LifeAreaID: ids[2], Position: 2},
			}
			if err := tx.InsertOrders(ctx, entries); err != nil {
				return err
			}

			existing, err := tx.ExistingOrderIDs(ctx, "u1", []int64{ids[0], shared.ID})
			if err != nil {
				return err
			}
			if !existing[ids[0]] || existing[shared.ID] {
				t.Errorf("ExistingOrderIDs = %v", existing)
			}

			maxOther, err := tx.MaxPosition(ctx, "u1", ids[2])
			if err != nil {
				return err
			}
			if maxOther != 1 {
				t.Errorf("MaxPosition excluding C = %d, want 1", maxOther)
			}

			n, err := tx.ShiftPositions(ctx, "u1", 1, 2, 1000000)
			if err != nil {
				return err
			}
			if n != 2 {
				t.Errorf("ShiftPositions moved %d rows, want 2", n)
			}
			if _, err := tx.ShiftPositions(ctx, "u1", 1000001, 1000002, -1000000); err != nil {
				return err
			}

			ordered, err := tx.ListOrdered(ctx, "u1")
			if err != nil {
				return err
			}
			if len(ordered) != 3 || ordered[2].Designation != "C" || ordered[2].Position != 2 {
				t.Errorf("Unexpected ordered list: %+v", ordered)
			}
			return nil
		})
		if err != nil {
			t.Fatalf("WithOrderTx failed: %v", err)
		}
	})

	t.Run("single-step shift violates the position constraint", func(t *testing.T) {
		err := store.WithOrderTx(ctx, func(tx storage.OrderTx) error {
			_, err := tx.ShiftPositions(ctx, "u1", 0, 1, 1)
			return err
		})
		if err == nil || !strings.Contains(strings.ToLower(err.Error()), "unique") {
			t.Fatalf("Expected unique constraint failure, got %v", err)
		}

		// The failed transaction left nothing behind.
		_ = store.WithOrderTx(ctx, func(tx storage.OrderTx) error {
			entry, err := tx.GetOrder(ctx, "u1", ids[0])
			if err != nil {
				t.Fatalf("GetOrder failed: %v", err)
			}
			if entry.Position != 0 {
				t.Errorf("A position = %d, want 0", entry.Position)
			}
			return nil
		})
	})

	t.Run("DeleteLifeArea cascades to orders", func(t *testing.T) {
		err := store.WithOrderTx(ctx, func(tx storage.OrderTx) error {
			if err := tx.DeleteLifeArea(ctx, ids[1]); err != nil {
				return err
			}
			_, err := tx.GetOrder(ctx, "u1", ids[1])
			if !errors.Is(err, storage.ErrNotFound) {
				t.Errorf("Expected order to be deleted, got %v", err)
			}
			return nil
		})
		if err != nil {
			t.Fatalf("WithOrderTx failed: %v", err)
		}
	})

	t.Run("rollback on error", func(t *testing.T) {
		sentinel := errors.New("abort")
		err := store.WithOrderTx(ctx, func(tx storage.OrderTx) error {
			if err := tx.SetPosition(ctx, "u1", ids[0], 50); err != nil {
				return err
			}
			return sentinel
		})
		if !errors.Is(err, sentinel) {
			t.Fatalf("Expected sentinel error, got %v", err)
		}

		_ = store.WithOrderTx(ctx, func(tx storage.OrderTx) error {
			entry, _ := tx.GetOrder(ctx, "u1", ids[0])
			if entry == nil || entry.Position != 0 {
				t.Errorf("Expected position 0 after rollback, got %+v", entry)
			}
			return nil
		})
	})
}

func TestUsers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user := models.NewUser("Alice@Example.com", "Alice", "hash")
	if err := store.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	byEmail, err := store.GetUserByEmail(ctx, "alice@example.com")
	if err != nil || byEmail == nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if byEmail.ID != user.ID {
		t.Errorf("ID mismatch: got %s, want %s", byEmail.ID, user.ID)
	}

	byID, err := store.GetUserByID(ctx, user.ID)
	if err != nil || byID == nil {
		t.Fatalf("GetUserByID failed: %v", err)
	}

	missing, err := store.GetUserByID(ctx, "nope")
	if err != nil || missing != nil {
		t.Errorf("Expected (nil, nil) for missing user, got (%v, %v)", missing, err)
	}

	if err := store.CreateUser(ctx, models.NewUser("alice@example.com", "Dup", "hash")); err == nil {
		t.Error("Expected duplicate email to fail")
	}
}
