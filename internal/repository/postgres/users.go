package postgres

import (
	"context"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shriya-199/Prolance/internal/core/domain"
	"github.com/shriya-199/Prolance/internal/core/port"
	"github.com/shriya-199/Prolance/internal/repository"
)

type pgExecutor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var userColumns = []string{
	"id",
	"name",
	"username",
	"email",
	"password_hash",
	"role",
	"reset_otp",
	"reset_otp_expires",
	"reset_otp_request_count",
	"last_otp_request",
	"created_at",
	"updated_at",
}

// UserRepository implements port.UserRepository using PostgreSQL.
type UserRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewUserRepository wires a PostgreSQL-backed user repository.
func NewUserRepository(exec pgExecutor) *UserRepository {
	repo := &UserRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
	if pool, ok := exec.(*pgxpool.Pool); ok {
		repo.pool = pool
	}
	return repo
}

// GetByID retrieves a user by primary key.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	stmt, args, err := r.builder.
		Select(userColumns...).
		From("users").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select user sql: %w", err)
	}

	return r.scanUser(r.exec.QueryRow(ctx, stmt, args...))
}

// GetByIdentifier retrieves a user by email or username. Callers pass the
// identifier lower-cased; the comparison folds the stored columns to match.
func (r *UserRepository) GetByIdentifier(ctx context.Context, identifier string) (*domain.User, error) {
	stmt, args, err := r.builder.
		Select(userColumns...).
		From("users").
		Where(squirrel.Or{
			squirrel.Expr("lower(email) = ?", identifier),
			squirrel.Expr("lower(username) = ?", identifier),
		}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select user sql: %w", err)
	}

	return r.scanUser(r.exec.QueryRow(ctx, stmt, args...))
}

// SaveVerification persists the inline password-reset fields of the record.
func (r *UserRepository) SaveVerification(ctx context.Context, id string, rec domain.VerificationRecord) error {
	var code any
	if rec.Code != "" {
		code = rec.Code
	}

	stmt, args, err := r.builder.
		Update("users").
		Set("reset_otp", code).
		Set("reset_otp_expires", rec.CodeExpiresAt).
		Set("reset_otp_request_count", rec.RequestCount).
		Set("last_otp_request", rec.LastRequestAt).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update verification sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update verification: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// ResetPassword stores the new hash and clears every reset field in the
// same statement, so the record cannot end up half-reset.
func (r *UserRepository) ResetPassword(ctx context.Context, id string, passwordHash string, changedAt time.Time) error {
	stmt, args, err := r.builder.
		Update("users").
		Set("password_hash", passwordHash).
		Set("reset_otp", nil).
		Set("reset_otp_expires", nil).
		Set("reset_otp_request_count", 0).
		Set("last_otp_request", nil).
		Set("updated_at", changedAt).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build reset password sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("reset password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *UserRepository) scanUser(row pgx.Row) (*domain.User, error) {
	var (
		user          domain.User
		code          *string
		codeExpires   *time.Time
		lastRequested *time.Time
	)

	if err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&code,
		&codeExpires,
		&user.Verification.RequestCount,
		&lastRequested,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}

	if code != nil {
		user.Verification.Code = *code
	}
	user.Verification.CodeExpiresAt = codeExpires
	user.Verification.LastRequestAt = lastRequested

	return &user, nil
}

var _ port.UserRepository = (*UserRepository)(nil)
