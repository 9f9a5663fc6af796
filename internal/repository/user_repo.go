// internal/repository/user_repo.go
package repository

import (
	"context"

	"github.com/jpwyse/bitsofstock-sandbox/internal/domain"
)

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	// Create adds a new user using the provided DBExecutor.
	Create(ctx context.Context, q DBExecutor, user *domain.User) error
	// GetByID retrieves a user by their ID.
	GetByID(ctx context.Context, q DBExecutor, id string) (*domain.User, error)
	// GetByUsername retrieves a user by their unique username.
	GetByUsername(ctx context.Context, q DBExecutor, username string) (*domain.User, error)
	// GetFirst retrieves the earliest-created user. The sandbox serves a
	// single demo account, so API handlers resolve the user this way.
	GetFirst(ctx context.Context, q DBExecutor) (*domain.User, error)
}
