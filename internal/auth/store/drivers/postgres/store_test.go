package postgres_test

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/aussiebroadwan/gatekeeper/internal/auth/domain"
	"github.com/aussiebroadwan/gatekeeper/internal/auth/store"
	"github.com/aussiebroadwan/gatekeeper/internal/auth/store/drivers/postgres"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*postgres.Store, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})

	return postgres.NewStoreFromDB(db), mock
}

func TestCreateUser_MapsUniqueViolation(t *testing.T) {
	tests := []struct {
		name    string
		dbErr   error
		wantErr error
	}{
		{name: "unique violation", dbErr: &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}, wantErr: store.ErrAlreadyExists},
		{name: "other pg error passes through", dbErr: &pgconn.PgError{Code: "23514"}},
		{name: "driver error passes through", dbErr: errors.New("conn reset")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, mock := newMockStore(t)

			mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
				WithArgs("01J", "a@x.com", "Ann", "hash", "user", sqlmock.AnyArg(), sqlmock.AnyArg()).
				WillReturnError(tt.dbErr)

			err := st.Users().CreateUser(context.Background(), domain.User{
				ID: "01J", Email: "a@x.com", Name: "Ann", PasswordHash: "hash", Role: domain.RoleUser,
			})
			require.Error(t, err)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NotErrorIs(t, err, store.ErrAlreadyExists)
			}
		})
	}
}

func TestGetUserByID(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	cols := []string{"id", "email", "name", "role", "created_at", "updated_at"}

	t.Run("maps row", func(t *testing.T) {
		st, mock := newMockStore(t)
		mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1")).
			WithArgs("01J").
			WillReturnRows(sqlmock.NewRows(cols).AddRow("01J", "a@x.com", "Ann", "admin", now, now))

		got, err := st.Users().GetUserByID(context.Background(), "01J")
		require.NoError(t, err)
		require.Equal(t, domain.PublicUser{
			ID: "01J", Email: "a@x.com", Name: "Ann", Role: domain.RoleAdmin, CreatedAt: now, UpdatedAt: now,
		}, got)
	})

	t.Run("no rows is not found", func(t *testing.T) {
		st, mock := newMockStore(t)
		mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1")).
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		_, err := st.Users().GetUserByID(context.Background(), "missing")
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestGetCredentialsByEmail(t *testing.T) {
	st, mock := newMockStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, email, name, password_hash")).
		WithArgs("a@x.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "name", "password_hash", "role", "created_at", "updated_at"}).
			AddRow("01J", "a@x.com", "Ann", "$2a$12$hash", "user", now, now))

	got, err := st.Users().GetCredentialsByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	require.Equal(t, "$2a$12$hash", got.PasswordHash)
	require.Equal(t, domain.RoleUser, got.Role)
}

func TestUpdatePasswordHash(t *testing.T) {
	t.Run("updates one row", func(t *testing.T) {
		st, mock := newMockStore(t)
		mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET password_hash = $1")).
			WithArgs("new", sqlmock.AnyArg(), "01J").
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, st.Users().UpdatePasswordHash(context.Background(), "01J", "new"))
	})

	t.Run("zero rows is not found", func(t *testing.T) {
		st, mock := newMockStore(t)
		mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET password_hash = $1")).
			WithArgs("new", sqlmock.AnyArg(), "gone").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := st.Users().UpdatePasswordHash(context.Background(), "gone", "new")
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	st, mock := newMockStore(t)
	boom := errors.New("boom")

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM users")).
		WithArgs("01J").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	err := st.WithTx(context.Background(), func(tx store.Tx) error {
		require.NoError(t, tx.Users().DeleteUser(context.Background(), "01J"))
		return boom
	})
	require.ErrorIs(t, err, boom)
}

func TestWithTx_Commits(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM users")).
		WithArgs("01J").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := st.WithTx(context.Background(), func(tx store.Tx) error {
		return tx.Users().DeleteUser(context.Background(), "01J")
	})
	require.NoError(t, err)
}
