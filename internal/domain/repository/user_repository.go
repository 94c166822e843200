package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
	"vaccitrack/internal/common"
	"vaccitrack/internal/domain/model"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// UserRepository is the credential store. FindOne returns common.ErrNotFound
// on a miss; Create returns an error wrapping common.ErrConflict when the
// email is already taken.
type UserRepository interface {
	FindOne(ctx context.Context, filter model.UserFilter) (*model.User, error)
	Create(ctx context.Context, user *model.User) (*model.User, error)
	Stats(ctx context.Context) ([]model.UserTypeCount, error)
}

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var userColumns = []string{
	"id", "email", "password", "type", "active",
	"first_name", "last_name", "date_of_birth", "created_at", "updated_at",
}

type pgUserRepository struct {
	db      DBTX
	builder sq.StatementBuilderType
	now     func() time.Time
}

func NewPgUserRepository(db DBTX) UserRepository {
	return &pgUserRepository{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		now:     time.Now,
	}
}

func filterToEq(f model.UserFilter) sq.Eq {
	eq := sq.Eq{}
	if f.ID != "" {
		eq["id"] = f.ID
	}
	if f.Email != "" {
		eq["email"] = f.Email
	}
	if f.Password != "" {
		eq["password"] = f.Password
	}
	return eq
}

func (r *pgUserRepository) FindOne(ctx context.Context, filter model.UserFilter) (*model.User, error) {
	if filter.IsEmpty() {
		return nil, fmt.Errorf("pgUserRepository.FindOne: empty filter: %w", common.ErrBadRequest)
	}
	query, args, err := r.builder.
		Select(userColumns...).
		From("users").
		Where(filterToEq(filter)).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("pgUserRepository.FindOne: %w", err)
	}

	user := &model.User{}
	err = r.db.QueryRowContext(ctx, query, args...).Scan(
		&user.ID, &user.Email, &user.Password, &user.Type, &user.Active,
		&user.UserDetails.FirstName, &user.UserDetails.LastName, &user.UserDetails.DateOfBirth,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgUserRepository.FindOne: %w", err)
	}
	return user, nil
}

func (r *pgUserRepository) Create(ctx context.Context, user *model.User) (*model.User, error) {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := r.now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	query, args, err := r.builder.
		Insert("users").
		Columns(userColumns...).
		Values(
			user.ID, user.Email, user.Password, user.Type, user.Active,
			user.UserDetails.FirstName, user.UserDetails.LastName, user.UserDetails.DateOfBirth,
			user.CreatedAt, user.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("pgUserRepository.Create: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique constraint violation
			return nil, fmt.Errorf("user with given email already exists: %w", common.ErrConflict)
		}
		return nil, fmt.Errorf("pgUserRepository.Create: %w", err)
	}
	return user, nil
}

func (r *pgUserRepository) Stats(ctx context.Context) ([]model.UserTypeCount, error) {
	query, args, err := r.builder.
		Select("type", "active", "COUNT(*)").
		From("users").
		GroupBy("type", "active").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("pgUserRepository.Stats: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("pgUserRepository.Stats: %w", err)
	}
	defer rows.Close()

	var out []model.UserTypeCount
	for rows.Next() {
		var c model.UserTypeCount
		if err := rows.Scan(&c.Type, &c.Active, &c.Count); err != nil {
			return nil, fmt.Errorf("pgUserRepository.Stats: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgUserRepository.Stats: %w", err)
	}
	return out, nil
}
