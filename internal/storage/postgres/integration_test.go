package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/lifeareas/internal/models"
	"github.com/mmynk/lifeareas/internal/ordering"
)

func TestStoreIntegration(t *testing.T) {
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set; skipping postgres integration test")
	}

	store, err := Open(dsn)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	userID := uuid.New().String()

	ids := make(map[string]int64)
	for _, name := range []string{"A", "B", "C", "D"} {
		area := &models.LifeArea{OwnerID: userID, Designation: name, IconPath: "/" + name}
		require.NoError(t, store.CreateLifeArea(ctx, area))
		ids[name] = area.ID
	}

	engine := ordering.NewEngine(store)
	_, err = engine.List(ctx, userID)
	require.NoError(t, err)

	result, err := engine.Reorder(ctx, userID, ids["D"], 0)
	require.NoError(t, err)
	require.True(t, result.Changed)

	got := make(map[int64]int)
	for _, oa := range result.Ordered {
		if oa.OwnerID == userID {
			got[oa.ID] = oa.Position
		}
	}
	// Defaults seeded from other tests may precede the private areas; compare relative order.
	require.Less(t, got[ids["D"]], got[ids["A"]])
	require.Less(t, got[ids["A"]], got[ids["B"]])
	require.Less(t, got[ids["B"]], got[ids["C"]])

	for i, oa := range result.Ordered {
		require.Equal(t, i, oa.Position)
	}

	require.NoError(t, engine.Remove(ctx, userID, ids["B"]))
	ordered, err := engine.List(ctx, userID)
	require.NoError(t, err)
	for i, oa := range ordered {
		require.Equal(t, i, oa.Position)
	}
}
