package repository_test

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	repository "github.com/freshmart/storefront/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockTx(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *sql.Tx) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)

	mock.ExpectBegin()

	tx, err := db.BeginTx(context.Background(), &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	require.NoError(t, err)

	return db, mock, tx
}

func TestReserveAndDecrement(t *testing.T) {
	ctx := context.Background()

	lockQuery := regexp.QuoteMeta("SELECT price, stock") + `[\s\S]*` + regexp.QuoteMeta("FOR UPDATE")
	updateQuery := regexp.QuoteMeta("UPDATE products") + `[\s\S]*` + regexp.QuoteMeta("SET stock = stock - $1, sales = sales + $1")

	t.Run("reserves stock and returns the locked price", func(t *testing.T) {
		db, mock, tx := newMockTx(t)
		defer db.Close()

		repo := repository.NewInventoryRepo(db)

		mock.ExpectQuery(lockQuery).
			WithArgs(int64(3)).
			WillReturnRows(sqlmock.NewRows([]string{"price", "stock"}).AddRow(10.0, 100))

		mock.ExpectExec(updateQuery).
			WithArgs(int64(5), int64(3)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		price, err := repo.ReserveAndDecrement(ctx, tx, 3, 5)
		require.NoError(t, err)
		assert.Equal(t, 10.0, price)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects when quantity exceeds stock", func(t *testing.T) {
		db, mock, tx := newMockTx(t)
		defer db.Close()

		repo := repository.NewInventoryRepo(db)

		mock.ExpectQuery(lockQuery).
			WithArgs(int64(3)).
			WillReturnRows(sqlmock.NewRows([]string{"price", "stock"}).AddRow(10.0, 4))

		_, err := repo.ReserveAndDecrement(ctx, tx, 3, 5)
		assert.ErrorIs(t, err, repository.ErrInsufficientStock)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reports a missing product", func(t *testing.T) {
		db, mock, tx := newMockTx(t)
		defer db.Close()

		repo := repository.NewInventoryRepo(db)

		mock.ExpectQuery(lockQuery).
			WithArgs(int64(99)).
			WillReturnRows(sqlmock.NewRows([]string{"price", "stock"}))

		_, err := repo.ReserveAndDecrement(ctx, tx, 99, 1)
		assert.ErrorIs(t, err, repository.ErrProductGone)
	})

	t.Run("exact stock is allowed", func(t *testing.T) {
		db, mock, tx := newMockTx(t)
		defer db.Close()

		repo := repository.NewInventoryRepo(db)

		mock.ExpectQuery(lockQuery).
			WithArgs(int64(3)).
			WillReturnRows(sqlmock.NewRows([]string{"price", "stock"}).AddRow(10.0, 5))

		mock.ExpectExec(updateQuery).
			WithArgs(int64(5), int64(3)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		price, err := repo.ReserveAndDecrement(ctx, tx, 3, 5)
		require.NoError(t, err)
		assert.Equal(t, 10.0, price)
	})
}
