package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coursescheduler/internal/domain"
)

func TestUserRepository_Create(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`INSERT INTO users`).
			WithArgs("registrar@school.edu", "hash", "salt", "Registrar", now, now).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("u-1"))

		repo := NewUserRepository(db)
		u := &domain.User{Email: "registrar@school.edu", PasswordHash: "hash", Salt: "salt", Name: "Registrar", CreatedAt: now, UpdatedAt: now}
		require.NoError(t, repo.Create(ctx, u))
		assert.Equal(t, "u-1", u.ID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate email", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`INSERT INTO users`).
			WillReturnError(&pq.Error{Code: uniqueViolation})

		repo := NewUserRepository(db)
		err = repo.Create(ctx, &domain.User{Email: "registrar@school.edu"})
		require.ErrorIs(t, err, domain.ErrDuplicateEmail)
	})
}

func TestUserRepository_GetByEmail(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT id, email, password_hash, salt, name`).
			WithArgs("registrar@school.edu").
			WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password_hash", "salt", "name", "created_at", "updated_at"}).
				AddRow("u-1", "registrar@school.edu", "hash", "salt", "Registrar", now, now))

		repo := NewUserRepository(db)
		u, err := repo.GetByEmail(ctx, "registrar@school.edu")
		require.NoError(t, err)
		assert.Equal(t, "u-1", u.ID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT id, email, password_hash, salt, name`).
			WithArgs("missing@school.edu").
			WillReturnError(sql.ErrNoRows)

		repo := NewUserRepository(db)
		_, err = repo.GetByEmail(ctx, "missing@school.edu")
		require.ErrorIs(t, err, domain.ErrUserNotFound)
	})
}
