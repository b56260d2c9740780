package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"

	"github.com/ovaphlow/pitchfork/service-admin-go/internal/user/entity"
)

// ErrDuplicateEmail is returned by Insert when the email is already taken.
var ErrDuplicateEmail = errors.New("duplicate email")

const userColumns = `id, email, hashed_password, is_active`

// UserRepo provides data access for users table using sqlx.
// Queries are written with ? placeholders and rebound for the driver in use.
type UserRepo struct {
	db *sqlx.DB
}

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{db: db} }

// FindByEmail returns the user with the given email, or nil without error when there is none.
func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	q := r.db.Rebind(`SELECT ` + userColumns + ` FROM users WHERE email=?`)
	return r.getOne(ctx, q, email)
}

// FindByID returns the user with the given id, or nil without error when there is none.
func (r *UserRepo) FindByID(ctx context.Context, id int64) (*entity.User, error) {
	q := r.db.Rebind(`SELECT ` + userColumns + ` FROM users WHERE id=?`)
	return r.getOne(ctx, q, id)
}

func (r *UserRepo) getOne(ctx context.Context, q string, arg any) (*entity.User, error) {
	var u entity.User
	if err := r.db.GetContext(ctx, &u, q, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select user: %w", err)
	}
	return &u, nil
}

// List returns every user ordered by id.
func (r *UserRepo) List(ctx context.Context) ([]entity.User, error) {
	users := []entity.User{}
	if err := r.db.SelectContext(ctx, &users, `SELECT `+userColumns+` FROM users ORDER BY id`); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// Count returns the number of rows in the users table.
func (r *UserRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM users`); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

// Insert creates an active user and returns the stored row.
func (r *UserRepo) Insert(ctx context.Context, email, hashedPassword string) (*entity.User, error) {
	q := r.db.Rebind(`INSERT INTO users (email, hashed_password, is_active) VALUES (?, ?, ?) RETURNING ` + userColumns)
	var u entity.User
	if err := r.db.GetContext(ctx, &u, q, email, hashedPassword, true); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return &u, nil
}

// UpdatePassword replaces the stored digest. A missing id is not an error.
func (r *UserRepo) UpdatePassword(ctx context.Context, id int64, hashedPassword string) error {
	q := r.db.Rebind(`UPDATE users SET hashed_password=? WHERE id=?`)
	if _, err := r.db.ExecContext(ctx, q, hashedPassword, id); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// SetActive sets the is_active flag. A missing id is not an error.
func (r *UserRepo) SetActive(ctx context.Context, id int64, active bool) error {
	q := r.db.Rebind(`UPDATE users SET is_active=? WHERE id=?`)
	if _, err := r.db.ExecContext(ctx, q, active, id); err != nil {
		return fmt.Errorf("set active: %w", err)
	}
	return nil
}

// Delete physically removes the row. Deleting a missing id is a no-op.
func (r *UserRepo) Delete(ctx context.Context, id int64) error {
	q := r.db.Rebind(`DELETE FROM users WHERE id=?`)
	if _, err := r.db.ExecContext(ctx, q, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}
