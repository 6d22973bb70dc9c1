package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/gatekeeper/internal/auth/domain"
	"github.com/aussiebroadwan/gatekeeper/internal/auth/store"
)

const (
	createUser = `INSERT INTO users (id, email, name, password_hash, role, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`

	getPublicUserByID = `SELECT id, email, name, role, created_at, updated_at
FROM users WHERE id = ?`

	getPublicUserByEmail = `SELECT id, email, name, role, created_at, updated_at
FROM users WHERE email = ?`

	getUserByEmail = `SELECT id, email, name, password_hash, role, created_at, updated_at
FROM users WHERE email = ?`

	updateUserPasswordHash = `UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`

	deleteUser = `DELETE FROM users WHERE id = ?`
)

type usersRepo struct {
	db dbtx
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	if u.UpdatedAt.IsZero() {
		u.UpdatedAt = u.CreatedAt
	}

	_, err := r.db.ExecContext(ctx, createUser,
		u.ID, u.Email, u.Name, u.PasswordHash, string(u.Role), u.CreatedAt, u.UpdatedAt,
	)
	return mapConstraint(err)
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.PublicUser, error) {
	return scanPublicUser(r.db.QueryRowContext(ctx, getPublicUserByID, id))
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.PublicUser, error) {
	return scanPublicUser(r.db.QueryRowContext(ctx, getPublicUserByEmail, email))
}

func (r *usersRepo) GetCredentialsByEmail(ctx context.Context, email string) (domain.User, error) {
	var (
		u    domain.User
		role string
	)
	err := r.db.QueryRowContext(ctx, getUserByEmail, email).Scan(
		&u.ID, &u.Email, &u.Name, &u.PasswordHash, &role, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	u.Role = domain.Role(role)
	return u, nil
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, userID string, newHash string) error {
	res, err := r.db.ExecContext(ctx, updateUserPasswordHash, newHash, time.Now().UTC(), userID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *usersRepo) DeleteUser(ctx context.Context, userID string) error {
	res, err := r.db.ExecContext(ctx, deleteUser, userID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func scanPublicUser(row *sql.Row) (domain.PublicUser, error) {
	var (
		u    domain.PublicUser
		role string
	)
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &role, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return domain.PublicUser{}, mapNotFound(err)
	}
	u.Role = domain.Role(role)
	return u, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
