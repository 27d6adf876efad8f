package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/allahbobax/boolean-api/internal/core/domain"
	"github.com/allahbobax/boolean-api/internal/core/port"
	"github.com/allahbobax/boolean-api/internal/repository"
)

var userColumns = []string{
	"id",
	"username",
	"email",
	"password",
	"subscription",
	"subscription_end_date",
	"avatar",
	"registered_at",
	"is_admin",
	"is_banned",
	"email_verified",
	"hwid",
	"oauth_provider",
	"oauth_id",
	"failed_login_attempts",
	"account_locked_until",
	"last_failed_login",
}

type pgExecutor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// UserRepository implements port.UserRepository using PostgreSQL.
type UserRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewUserRepository wires a PostgreSQL-backed user repository.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{
		pool:    pool,
		exec:    pool,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// NewUserRepositoryWithExecutor builds a repository over an arbitrary
// executor (transactions, mocks).
func NewUserRepositoryWithExecutor(exec pgExecutor) *UserRepository {
	return &UserRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new user row.
func (r *UserRepository) Create(ctx context.Context, user domain.User) error {
	query := r.builder.Insert("users").
		Columns(
			"id",
			"username",
			"email",
			"password",
			"subscription",
			"avatar",
			"registered_at",
			"is_admin",
			"is_banned",
			"email_verified",
			"hwid",
			"oauth_provider",
			"oauth_id",
		).
		Values(
			user.ID,
			user.Username,
			user.Email,
			user.PasswordHash,
			user.Subscription,
			user.Avatar,
			user.RegisteredAt,
			user.IsAdmin,
			user.IsBanned,
			user.EmailVerified,
			user.HWID,
			user.OAuthProvider,
			user.OAuthID,
		)

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build insert user sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, sql, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return repository.ErrConflict
		}
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by identifier.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getWhere(ctx, squirrel.Eq{"id": id})
}

// GetByIdentifier retrieves a user by username or email.
func (r *UserRepository) GetByIdentifier(ctx context.Context, identifier string) (*domain.User, error) {
	identifier = strings.TrimSpace(identifier)
	return r.getWhere(ctx, squirrel.Or{
		squirrel.Eq{"username": identifier},
		squirrel.Eq{"email": strings.ToLower(identifier)},
	})
}

// GetByEmail retrieves a user by email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getWhere(ctx, squirrel.Eq{"email": strings.ToLower(strings.TrimSpace(email))})
}

// GetByHWID retrieves the user currently bound to a hardware id.
func (r *UserRepository) GetByHWID(ctx context.Context, hwid string) (*domain.User, error) {
	return r.getWhere(ctx, squirrel.Eq{"hwid": hwid})
}

// RecordLoginFailure writes the failure counter and, when the threshold was
// crossed, the lock expiry in a single targeted update.
func (r *UserRepository) RecordLoginFailure(ctx context.Context, id string, attempts int, lockedUntil *time.Time, at time.Time) error {
	query := r.builder.Update("users").
		Set("failed_login_attempts", attempts).
		Set("last_failed_login", at).
		Where(squirrel.Eq{"id": id})

	if lockedUntil != nil {
		query = query.Set("account_locked_until", *lockedUntil)
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build login failure sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("record login failure: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// ClearLoginFailures resets the lockout state after a successful login.
func (r *UserRepository) ClearLoginFailures(ctx context.Context, id string) error {
	sql, args, err := r.builder.Update("users").
		Set("failed_login_attempts", 0).
		Set("account_locked_until", nil).
		Set("last_failed_login", nil).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build clear failures sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("clear login failures: %w", err)
	}

	return nil
}

// SetHWID binds a hardware id to the account.
func (r *UserRepository) SetHWID(ctx context.Context, id, hwid string) error {
	sql, args, err := r.builder.Update("users").
		Set("hwid", hwid).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build set hwid sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("set hwid: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// ClearHWID removes the hardware binding unconditionally.
func (r *UserRepository) ClearHWID(ctx context.Context, id string) error {
	sql, args, err := r.builder.Update("users").
		Set("hwid", nil).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build clear hwid sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("clear hwid: %w", err)
	}

	return nil
}

// LinkOAuth attaches provider identity to an existing account. Avatar and
// hwid only fill in when currently empty.
func (r *UserRepository) LinkOAuth(ctx context.Context, id string, provider, oauthID string, avatar, hwid *string) error {
	query := r.builder.Update("users").
		Set("oauth_provider", provider).
		Set("oauth_id", oauthID).
		Set("email_verified", true).
		Set("avatar", squirrel.Expr("COALESCE(?, avatar)", avatar)).
		Set("hwid", squirrel.Expr("COALESCE(?, hwid)", hwid)).
		Where(squirrel.Eq{"id": id})

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build link oauth sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("link oauth: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *UserRepository) getWhere(ctx context.Context, pred any) (*domain.User, error) {
	stmt, args, err := r.builder.
		Select(userColumns...).
		From("users").
		Where(pred).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select user sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)

	var user domain.User
	err = row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.Subscription,
		&user.SubscriptionEndDate,
		&user.Avatar,
		&user.RegisteredAt,
		&user.IsAdmin,
		&user.IsBanned,
		&user.EmailVerified,
		&user.HWID,
		&user.OAuthProvider,
		&user.OAuthID,
		&user.FailedLoginAttempts,
		&user.LockedUntil,
		&user.LastFailedLoginAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("select user: %w", err)
	}

	return &user, nil
}

var _ port.UserRepository = (*UserRepository)(nil)
