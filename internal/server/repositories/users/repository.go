// Package users declares the server-side repository for accounts.
package users

import (
	"context"

	"github.com/dmitrijs2005/daybook/internal/server/models"
)

type Repository interface {
	// Create inserts user and fills in its generated ID and CreatedAt.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// LinkCredential attaches email and passwordHash to an anonymous user
	// and makes it durable. It returns common.ErrCredentialAlreadyInUse when
	// email belongs to another user and common.ErrorNotFound when no
	// anonymous user with id exists.
	LinkCredential(ctx context.Context, id, email string, passwordHash []byte) error
}
