package users

import (
	"context"
	"errors"
)

var (
	ErrNotFound          = errors.New("user not found")
	ErrDuplicateEmail    = errors.New("email already exists")
	ErrDuplicateUsername = errors.New("username already exists")
)

// Repository persists identities. Implementations return ErrNotFound for
// missing rows and ErrDuplicateEmail / ErrDuplicateUsername on unique
// constraint failures.
type Repository interface {
	Create(ctx context.Context, u *Identity) error
	GetByEmail(ctx context.Context, email string) (*Identity, error)
	GetByID(ctx context.Context, id string) (*Identity, error)
}
