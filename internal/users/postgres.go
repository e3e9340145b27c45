package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"goal-tracker-backend/internal/db"
)

const (
	constraintEmail    = "users_email_key"
	constraintUsername = "users_username_key"
)

type PostgresRepository struct {
	db db.DBTX
}

func NewPostgresRepository(dbx db.DBTX) *PostgresRepository {
	return &PostgresRepository{db: dbx}
}

func (r *PostgresRepository) Create(ctx context.Context, u *Identity) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, username, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, u.ID, u.Username, u.Email, u.PasswordHash, u.CreatedAt)
	if err != nil {
		switch {
		case db.IsUniqueViolation(err, constraintEmail):
			return ErrDuplicateEmail
		case db.IsUniqueViolation(err, constraintUsername):
			return ErrDuplicateUsername
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*Identity, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, username, email, password_hash, created_at
		FROM users
		WHERE email = $1
	`, email)
	return scanIdentity(row)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Identity, error) {
	// ids are UUIDs; anything else cannot exist and would only make
	// postgres reject the cast.
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT id, username, email, password_hash, created_at
		FROM users
		WHERE id = $1
	`, id)
	return scanIdentity(row)
}

func scanIdentity(row *sql.Row) (*Identity, error) {
	u := &Identity{}
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}

var _ Repository = (*PostgresRepository)(nil)
