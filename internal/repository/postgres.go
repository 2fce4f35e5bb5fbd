package repository

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/classora/classora-auth/internal/domain"
)

//go:embed schema.sql
var schemaSQL string

// Compile-time interface assertion.
var _ UserRepository = (*PostgresUserRepo)(nil)

// DB is the subset of pgxpool.Pool the repository needs. Tests substitute a
// mock pool through the same interface.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresUserRepo implements UserRepository on PostgreSQL.
type PostgresUserRepo struct {
	db DB
}

func NewPostgresUserRepo(db DB) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

// Migrate applies the users schema.
func (r *PostgresUserRepo) Migrate(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("migrate users schema: %w", err)
	}
	return nil
}

const insertUserSQL = `INSERT INTO users (id, tenant_id, name, email, role, password_hash)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, tenant_id, name, email, role, password_hash, created_at, updated_at`

func (r *PostgresUserRepo) Create(ctx context.Context, user domain.User) (domain.User, error) {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}

	row := r.db.QueryRow(ctx, insertUserSQL,
		user.ID,
		user.TenantID,
		user.Name,
		user.Email,
		string(user.Role),
		user.PasswordHash,
	)

	created, err := scanUser(row)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.User{}, ErrDuplicateEmail
		}
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}
	return created, nil
}

const selectUserByEmailSQL = `SELECT id, tenant_id, name, email, role, password_hash, created_at, updated_at
FROM users WHERE email = $1`

func (r *PostgresUserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	user, err := scanUser(r.db.QueryRow(ctx, selectUserByEmailSQL, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("get user by email: %w", err)
	}
	return user, nil
}

const selectUserByIDSQL = `SELECT id, tenant_id, name, email, role, password_hash, created_at, updated_at
FROM users WHERE id = $1`

func (r *PostgresUserRepo) GetByID(ctx context.Context, id string) (domain.User, error) {
	user, err := scanUser(r.db.QueryRow(ctx, selectUserByIDSQL, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("get user by id: %w", err)
	}
	return user, nil
}

const updateUserDetailsSQL = `UPDATE users SET name = $2, email = $3, updated_at = now()
WHERE id = $1
RETURNING id, tenant_id, name, email, role, password_hash, created_at, updated_at`

func (r *PostgresUserRepo) UpdateDetails(ctx context.Context, id, name, email string) (domain.User, error) {
	user, err := scanUser(r.db.QueryRow(ctx, updateUserDetailsSQL, id, name, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrUserNotFound
		}
		if isUniqueViolation(err) {
			return domain.User{}, ErrDuplicateEmail
		}
		return domain.User{}, fmt.Errorf("update user details: %w", err)
	}
	return user, nil
}

const updateUserPasswordSQL = `UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1`

func (r *PostgresUserRepo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	tag, err := r.db.Exec(ctx, updateUserPasswordSQL, id, passwordHash)
	if err != nil {
		return fmt.Errorf("update user password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (domain.User, error) {
	var (
		u    domain.User
		role string
	)
	if err := row.Scan(&u.ID, &u.TenantID, &u.Name, &u.Email, &role, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return domain.User{}, err
	}
	u.Role = domain.Role(role)
	return u, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
