package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/lifeareas/internal/models"
	"github.com/mmynk/lifeareas/internal/storage"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return New(sqlx.NewDb(db, "postgres")), mock
}

func TestLockUserOrders(t *testing.T) {
	store, mock := newMockStore(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("SELECT pg_advisory_xact_lock(hashtextextended($1, $2))")).
		WithArgs("u1", orderLockSeed).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("FROM user_life_area_orders WHERE user_id = $1 FOR UPDATE")).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"life_area_id"}).AddRow(1).AddRow(2))
	mock.ExpectCommit()

	err := store.WithOrderTx(ctx, func(tx storage.OrderTx) error {
		return tx.LockUserOrders(ctx, "u1")
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithOrderTx_RollsBackOnError(t *testing.T) {
	store, mock := newMockStore(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE user_life_area_orders")).
		WillReturnError(errors.New("duplicate key value violates unique constraint"))
	mock.ExpectRollback()

	err := store.WithOrderTx(ctx, func(tx storage.OrderTx) error {
		_, err := tx.ShiftPositions(ctx, "u1", 0, 2, 1)
		return err
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to shift positions")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestShiftPositions(t *testing.T) {
	store, mock := newMockStore(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("SET position = position + $1")).
		WithArgs(1000000, sqlmock.AnyArg(), "u1", 0, 2).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta("WHERE user_id = $3 AND position BETWEEN $4 AND $5")).
		WithArgs(-999999, sqlmock.AnyArg(), "u1", 1000000, 1000002).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	err := store.WithOrderTx(ctx, func(tx storage.OrderTx) error {
		n, err := tx.ShiftPositions(ctx, "u1", 0, 2, 1000000)
		if err != nil {
			return err
		}
		require.Equal(t, int64(3), n)
		_, err = tx.ShiftPositions(ctx, "u1", 1000000, 1000002, -999999)
		return err
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExistingOrderIDs(t *testing.T) {
	store, mock := newMockStore(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("WHERE user_id = $1 AND life_area_id IN ($2, $3, $4)")).
		WithArgs("u1", 5, 6, 7).
		WillReturnRows(sqlmock.NewRows([]string{"life_area_id"}).AddRow(6))
	mock.ExpectCommit()

	var existing map[int64]bool
	err := store.WithOrderTx(ctx, func(tx storage.OrderTx) error {
		var err error
		existing, err = tx.ExistingOrderIDs(ctx, "u1", []int64{5, 6, 7})
		return err
	})
	require.NoError(t, err)
	require.Equal(t, map[int64]bool{6: true}, existing)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMaxPosition_Empty(t *testing.T) {
	store, mock := newMockStore(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(MAX(position), -1)")).
		WithArgs("u1", 0).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(-1))
	mock.ExpectCommit()

	var maxPos int
	err := store.WithOrderTx(ctx, func(tx storage.OrderTx) error {
		var err error
		maxPos, err = tx.MaxPosition(ctx, "u1", 0)
		return err
	})
	require.NoError(t, err)
	require.Equal(t, -1, maxPos)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertOrders(t *testing.T) {
	store, mock := newMockStore(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO user_life_area_orders")).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	entries := []models.OrderEntry{
		{UserID: "u1", LifeAreaID: 1, Position: 0},
		{UserID: "u1", LifeAreaID: 2, Position: 1},
	}
	err := store.WithOrderTx(ctx, func(tx storage.OrderTx) error {
		return tx.InsertOrders(ctx, entries)
	})
	require.NoError(t, err)
	require.NotZero(t, entries[0].CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListOrdered(t *testing.T) {
	store, mock := newMockStore(t)
	ctx := context.Background()

	columns := []string{"id", "user_id", "designation", "icon_path", "is_default", "created_at", "updated_at", "position"}
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY uo.position")).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(2, "u1", "Career", "/career.svg", false, 10, 10, 0).
			AddRow(1, nil, "Health", "/health.svg", true, 5, 5, 1))
	mock.ExpectCommit()

	var ordered []models.OrderedLifeArea
	err := store.WithOrderTx(ctx, func(tx storage.OrderTx) error {
		var err error
		ordered, err = tx.ListOrdered(ctx, "u1")
		return err
	})
	require.NoError(t, err)
	require.Len(t, ordered, 2)
	require.Equal(t, "Career", ordered[0].Designation)
	require.Equal(t, "u1", ordered[0].OwnerID)
	require.Equal(t, 1, ordered[1].Position)
	require.Empty(t, ordered[1].OwnerID)
	require.True(t, ordered[1].IsDefault)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetLifeArea_NotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM life_areas WHERE id = $1")).
		WithArgs(42).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := store.GetLifeArea(context.Background(), 42)
	require.ErrorIs(t, err, storage.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateLifeArea(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO life_areas")).
		WithArgs("u1", "Career", "/career.svg", false, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	area := &models.LifeArea{OwnerID: "u1", Designation: "Career", IconPath: "/career.svg"}
	require.NoError(t, store.CreateLifeArea(context.Background(), area))
	require.Equal(t, int64(7), area.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}
