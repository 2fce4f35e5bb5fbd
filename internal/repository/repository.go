package repository

import (
	"context"
	"errors"

	"github.com/classora/classora-auth/internal/domain"
)

// Store-level failures callers are expected to branch on.
var (
	ErrUserNotFound   = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already registered")
)

// UserRepository persists user accounts.
//
// Reads include the password digest; callers strip it before anything leaves
// the process. UpdateDetails never touches the digest and UpdatePassword only
// accepts an already-hashed value, so a record's digest changes exactly when
// the plaintext does.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	GetByID(ctx context.Context, id string) (domain.User, error)
	UpdateDetails(ctx context.Context, id, name, email string) (domain.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}
