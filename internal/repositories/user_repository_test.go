package repository_test

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/freshmart/storefront/internal/models"
	repository "github.com/freshmart/storefront/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userColumns = []string{"id", "name", "email", "password", "active", "created_at", "updated_at"}

func newUserRepo(t *testing.T) (*sql.DB, sqlmock.Sqlmock, repository.UserRepository) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)

	return db, mock, repository.NewUserRepo(db)
}

func TestCreateUser(t *testing.T) {
	ctx := context.Background()

	db, mock, repo := newUserRepo(t)
	defer db.Close()

	user := &models.User{
		Name:     "Jordan Lee",
		Email:    "jordan@example.com",
		Password: "$2a$10$hashedpassword",
	}

	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs(user.Name, user.Email, user.Password, user.Active).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(42, now, now))

	require.NoError(t, repo.CreateUser(ctx, user))
	assert.Equal(t, int64(42), user.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUserByEmail(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the user", func(t *testing.T) {
		db, mock, repo := newUserRepo(t)
		defer db.Close()

		now := time.Now()

		mock.ExpectQuery(regexp.QuoteMeta("FROM users")).
			WithArgs("jordan@example.com").
			WillReturnRows(sqlmock.NewRows(userColumns).
				AddRow(42, "Jordan Lee", "jordan@example.com", "$2a$10$hashedpassword", true, now, now))

		user, err := repo.GetUserByEmail(ctx, "jordan@example.com")
		require.NoError(t, err)
		assert.Equal(t, int64(42), user.ID)
		assert.True(t, user.Active)
	})

	t.Run("unknown email yields sql.ErrNoRows", func(t *testing.T) {
		db, mock, repo := newUserRepo(t)
		defer db.Close()

		mock.ExpectQuery(regexp.QuoteMeta("FROM users")).
			WithArgs("nobody@example.com").
			WillReturnRows(sqlmock.NewRows(userColumns))

		_, err := repo.GetUserByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})
}

func TestGetUserByID(t *testing.T) {
	ctx := context.Background()

	db, mock, repo := newUserRepo(t)
	defer db.Close()

	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("FROM users")).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow(42, "Jordan Lee", "jordan@example.com", "$2a$10$hashedpassword", true, now, now))

	user, err := repo.GetUserByID(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, "jordan@example.com", user.Email)
}
