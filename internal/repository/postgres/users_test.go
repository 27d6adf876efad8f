package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/allahbobax/boolean-api/internal/core/domain"
	"github.com/allahbobax/boolean-api/internal/repository"
)

func userRows(user domain.User) *pgxmock.Rows {
	return pgxmock.NewRows(userColumns).AddRow(
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.Subscription,
		user.SubscriptionEndDate,
		user.Avatar,
		user.RegisteredAt,
		user.IsAdmin,
		user.IsBanned,
		user.EmailVerified,
		user.HWID,
		user.OAuthProvider,
		user.OAuthID,
		user.FailedLoginAttempts,
		user.LockedUntil,
		user.LastFailedLoginAt,
	)
}

func TestUserRepository_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepositoryWithExecutor(mock)

	user := domain.User{
		ID:           "user-1",
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "$2a$10$hash",
		Subscription: domain.SubscriptionFree,
		RegisteredAt: time.Now().UTC(),
	}

	mock.ExpectExec(`INSERT INTO users`).
		WithArgs(
			user.ID,
			user.Username,
			user.Email,
			user.PasswordHash,
			user.Subscription,
			(*string)(nil),
			user.RegisteredAt,
			false,
			false,
			false,
			(*string)(nil),
			(*string)(nil),
			(*string)(nil),
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_CreateConflict(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepositoryWithExecutor(mock)

	mock.ExpectExec(`INSERT INTO users`).
		WithArgs(
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(),
		).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"})

	err = repo.Create(context.Background(), domain.User{ID: "user-1", Username: "alice"})
	if !errors.Is(err, repository.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_GetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepositoryWithExecutor(mock)

	hwid := "HW-1"
	lockedUntil := time.Now().UTC().Add(30 * time.Minute)
	stored := domain.User{
		ID:                  "user-1",
		Username:            "alice",
		Email:               "alice@example.com",
		PasswordHash:        "$2a$10$hash",
		Subscription:        domain.SubscriptionPremium,
		RegisteredAt:        time.Now().UTC(),
		EmailVerified:       true,
		HWID:                &hwid,
		FailedLoginAttempts: 5,
		LockedUntil:         &lockedUntil,
	}

	mock.ExpectQuery(`SELECT .*FROM users`).
		WithArgs("user-1").
		WillReturnRows(userRows(stored))

	user, err := repo.GetByID(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	if user.Username != "alice" || user.Subscription != domain.SubscriptionPremium {
		t.Fatalf("unexpected user: %+v", user)
	}
	if user.HWID == nil || *user.HWID != hwid {
		t.Fatal("expected hwid pointer populated")
	}
	if user.LockedUntil == nil || !user.LockedUntil.Equal(lockedUntil) {
		t.Fatal("expected lock expiry populated")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_GetByIDNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepositoryWithExecutor(mock)

	mock.ExpectQuery(`SELECT .*FROM users`).
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows(userColumns))

	if _, err := repo.GetByID(context.Background(), "missing"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_GetByIdentifier(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepositoryWithExecutor(mock)

	stored := domain.User{ID: "user-1", Username: "alice", Email: "alice@example.com", Subscription: domain.SubscriptionFree, RegisteredAt: time.Now().UTC()}

	// The identifier is matched against username verbatim and email lowercased.
	mock.ExpectQuery(`SELECT .*FROM users WHERE \(username = \$1 OR email = \$2\)`).
		WithArgs("Alice", "alice").
		WillReturnRows(userRows(stored))

	user, err := repo.GetByIdentifier(context.Background(), "  Alice ")
	if err != nil {
		t.Fatalf("GetByIdentifier returned error: %v", err)
	}
	if user.ID != "user-1" {
		t.Fatalf("unexpected user id %s", user.ID)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_RecordLoginFailure(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepositoryWithExecutor(mock)

	at := time.Now().UTC()

	mock.ExpectExec(`UPDATE users SET failed_login_attempts`).
		WithArgs(3, at, "user-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	if err := repo.RecordLoginFailure(context.Background(), "user-1", 3, nil, at); err != nil {
		t.Fatalf("RecordLoginFailure returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_RecordLoginFailureWithLock(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepositoryWithExecutor(mock)

	at := time.Now().UTC()
	lockedUntil := at.Add(30 * time.Minute)

	mock.ExpectExec(`UPDATE users SET failed_login_attempts`).
		WithArgs(5, at, lockedUntil, "user-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	if err := repo.RecordLoginFailure(context.Background(), "user-1", 5, &lockedUntil, at); err != nil {
		t.Fatalf("RecordLoginFailure returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_RecordLoginFailureMissingUser(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepositoryWithExecutor(mock)

	mock.ExpectExec(`UPDATE users SET failed_login_attempts`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err = repo.RecordLoginFailure(context.Background(), "missing", 1, nil, time.Now().UTC())
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_ClearLoginFailures(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepositoryWithExecutor(mock)

	mock.ExpectExec(`UPDATE users SET failed_login_attempts`).
		WithArgs(0, nil, nil, "user-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	if err := repo.ClearLoginFailures(context.Background(), "user-1"); err != nil {
		t.Fatalf("ClearLoginFailures returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_SetHWID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepositoryWithExecutor(mock)

	mock.ExpectExec(`UPDATE users SET hwid`).
		WithArgs("HW-1", "user-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	if err := repo.SetHWID(context.Background(), "user-1", "HW-1"); err != nil {
		t.Fatalf("SetHWID returned error: %v", err)
	}

	mock.ExpectExec(`UPDATE users SET hwid`).
		WithArgs("HW-1", "missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	if err := repo.SetHWID(context.Background(), "missing", "HW-1"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_ClearHWID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepositoryWithExecutor(mock)

	mock.ExpectExec(`UPDATE users SET hwid`).
		WithArgs(nil, "user-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	if err := repo.ClearHWID(context.Background(), "user-1"); err != nil {
		t.Fatalf("ClearHWID returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_LinkOAuth(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepositoryWithExecutor(mock)

	avatar := "https://avatars.example.com/alice.png"

	mock.ExpectExec(`UPDATE users SET oauth_provider`).
		WithArgs("github", "gh-42", true, &avatar, (*string)(nil), "user-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	if err := repo.LinkOAuth(context.Background(), "user-1", "github", "gh-42", &avatar, nil); err != nil {
		t.Fatalf("LinkOAuth returned error: %v", err)
	}

	mock.ExpectExec(`UPDATE users SET oauth_provider`).
		WithArgs("github", "gh-42", true, (*string)(nil), (*string)(nil), "missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	if err := repo.LinkOAuth(context.Background(), "missing", "github", "gh-42", nil, nil); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
