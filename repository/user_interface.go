package repository

import (
	"context"

	"github.com/google/uuid"

	models "github.com/pr-poehali-dev/jjrkdoemyt-social-network/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	// GetByUsernameOrEmail resolves a login identifier that may be
	// either the username or the email address.
	GetByUsernameOrEmail(ctx context.Context, login string) (*models.User, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)

	// Subscription counts; the subscriptions table is written by the
	// profile services, read-only here.
	CountFollowers(ctx context.Context, userID uuid.UUID) (int32, error)
	CountFollowing(ctx context.Context, userID uuid.UUID) (int32, error)
}
