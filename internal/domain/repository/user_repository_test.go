package repository

import (
	"context"
	"errors"
	"testing"
	"time"
	"vaccitrack/internal/common"
	"vaccitrack/internal/domain/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newMockRepo(t *testing.T) (*pgUserRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := NewPgUserRepository(db).(*pgUserRepository)
	repo.now = func() time.Time { return fixedNow }
	return repo, mock
}

func userRows() *sqlmock.Rows {
	return sqlmock.NewRows(userColumns)
}

func TestPgUserRepository_FindOneByEmail(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT id, email, password, type, active, first_name, last_name, date_of_birth, created_at, updated_at FROM users WHERE .*email = \$1.* LIMIT 1`).
		WithArgs("a@x.com").
		WillReturnRows(userRows().AddRow(
			"u-1", "a@x.com", "$2a$10$hash", "STANDARD", true,
			"Ada", "Lovelace", "1815-12-10", fixedNow, fixedNow,
		))

	user, err := repo.FindOne(context.Background(), model.UserFilter{Email: "a@x.com"})
	require.NoError(t, err)
	assert.Equal(t, "u-1", user.ID)
	assert.Equal(t, model.UserTypeStandard, user.Type)
	assert.True(t, user.Active)
	assert.Equal(t, "Ada", user.UserDetails.FirstName)
	assert.Equal(t, "1815-12-10", user.UserDetails.DateOfBirth)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgUserRepository_FindOneEmailAndPassword(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT .* FROM users WHERE .*email = \$1 AND password = \$2.* LIMIT 1`).
		WithArgs("a@x.com", "$2a$10$hash").
		WillReturnRows(userRows().AddRow(
			"u-1", "a@x.com", "$2a$10$hash", "STANDARD", true,
			"", "", "", fixedNow, fixedNow,
		))

	_, err := repo.FindOne(context.Background(), model.UserFilter{Email: "a@x.com", Password: "$2a$10$hash"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgUserRepository_FindOneMiss(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT .* FROM users WHERE .*id = \$1.* LIMIT 1`).
		WithArgs("nope").
		WillReturnRows(userRows())

	_, err := repo.FindOne(context.Background(), model.UserFilter{ID: "nope"})
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgUserRepository_FindOneEmptyFilter(t *testing.T) {
	repo, mock := newMockRepo(t)

	_, err := repo.FindOne(context.Background(), model.UserFilter{})
	assert.ErrorIs(t, err, common.ErrBadRequest)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgUserRepository_Create(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`INSERT INTO users \(id,email,password,type,active,first_name,last_name,date_of_birth,created_at,updated_at\) VALUES`).
		WithArgs(sqlmock.AnyArg(), "a@x.com", "$2a$10$hash", model.UserTypeStandard, true,
			"Ada", "Lovelace", "1815-12-10", fixedNow, fixedNow).
		WillReturnResult(sqlmock.NewResult(0, 1))

	user := &model.User{
		Email:    "a@x.com",
		Password: "$2a$10$hash",
		Type:     model.UserTypeStandard,
		Active:   true,
		UserDetails: model.UserDetails{
			FirstName: "Ada", LastName: "Lovelace", DateOfBirth: "1815-12-10",
		},
	}
	created, err := repo.Create(context.Background(), user)
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, fixedNow, created.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgUserRepository_CreateDuplicate(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`INSERT INTO users`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	_, err := repo.Create(context.Background(), &model.User{Email: "a@x.com"})
	assert.ErrorIs(t, err, common.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgUserRepository_CreateOtherError(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`INSERT INTO users`).WillReturnError(errors.New("connection reset"))

	_, err := repo.Create(context.Background(), &model.User{Email: "a@x.com"})
	require.Error(t, err)
	assert.False(t, errors.Is(err, common.ErrConflict))
}

func TestPgUserRepository_Stats(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT type, active, COUNT\(\*\) FROM users GROUP BY type, active`).
		WillReturnRows(sqlmock.NewRows([]string{"type", "active", "count"}).
			AddRow("STANDARD", true, int64(4)).
			AddRow("STANDARD", false, int64(1)).
			AddRow("SUPER_ADMIN", true, int64(1)))

	buckets, err := repo.Stats(context.Background())
	require.NoError(t, err)
	require.Len(t, buckets, 3)

	stats := model.NewStats(buckets, fixedNow)
	assert.Equal(t, 6, stats.TotalUsers)
	assert.Equal(t, 5, stats.ActiveUsers)
	assert.Equal(t, 5, stats.ByType[model.UserTypeStandard])
	assert.NoError(t, mock.ExpectationsWereMet())
}
