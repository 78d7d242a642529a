package repositories

import (
	"context"
	"strings"

	"petpos_backend/internal/docstore"
	"petpos_backend/internal/models"
)

// UserFilter narrows a staff listing.
type UserFilter struct {
	Role     *string
	BranchID *int64
}

// UserRepository defines staff user persistence.
type UserRepository interface {
	Create(ctx context.Context, ex Executor, user *models.User) error
	GetByID(ctx context.Context, ex Executor, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, ex Executor, username string) (*models.User, error)
	List(ctx context.Context, ex Executor, filter UserFilter) ([]models.User, error)
	Update(ctx context.Context, ex Executor, user *models.User) error
	Delete(ctx context.Context, ex Executor, id int64) error
}

type userRepository struct {
	users collection[models.User]
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository() UserRepository {
	return &userRepository{users: collection[models.User]{name: models.CollectionUsers}}
}

func (r *userRepository) Create(ctx context.Context, ex Executor, user *models.User) error {
	return r.users.set(ctx, ex, user.ID, user)
}

func (r *userRepository) GetByID(ctx context.Context, ex Executor, id int64) (*models.User, error) {
	return r.users.get(ctx, ex, id)
}

// GetByUsername matches usernames case-insensitively; usernames are stored lowercased.
func (r *userRepository) GetByUsername(ctx context.Context, ex Executor, username string) (*models.User, error) {
	return r.users.first(ctx, ex, docstore.Where("username", strings.ToLower(username)))
}

func (r *userRepository) List(ctx context.Context, ex Executor, filter UserFilter) ([]models.User, error) {
	var filters []docstore.Filter
	if filter.Role != nil {
		filters = append(filters, docstore.Where("role", *filter.Role))
	}
	if filter.BranchID != nil {
		filters = append(filters, docstore.Where("branch_id", *filter.BranchID))
	}
	return r.users.find(ctx, ex, filters...)
}

func (r *userRepository) Update(ctx context.Context, ex Executor, user *models.User) error {
	if _, err := r.users.get(ctx, ex, user.ID); err != nil {
		return err
	}
	return r.users.set(ctx, ex, user.ID, user)
}

func (r *userRepository) Delete(ctx context.Context, ex Executor, id int64) error {
	return r.users.delete(ctx, ex, id)
}
