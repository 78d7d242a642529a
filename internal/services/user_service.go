package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"petpos_backend/internal/docstore"
	"petpos_backend/internal/models"
	"petpos_backend/internal/repositories"
	"petpos_backend/pkg/utils"

	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

// CreateUserRequest DTO
type CreateUserRequest struct {
	Username string  `json:"username" binding:"required"`
	Password string  `json:"password" binding:"required"`
	Email    *string `json:"email"`
	FullName *string `json:"full_name"`
	Role     string  `json:"role" binding:"required"`
	BranchID *int64  `json:"branch_id"`
}

// UpdateUserRequest DTO; nil fields are left unchanged.
type UpdateUserRequest struct {
	Password *string `json:"password"`
	Email    *string `json:"email"`
	FullName *string `json:"full_name"`
	Role     *string `json:"role"`
	BranchID *int64  `json:"branch_id"`
	IsActive *bool   `json:"is_active"`
}

// UserService manages staff accounts.
type UserService interface {
	CreateUser(ctx context.Context, req CreateUserRequest) (*models.User, error)
	GetUser(ctx context.Context, id int64) (*models.User, error)
	ListUsers(ctx context.Context, filter repositories.UserFilter) ([]models.User, error)
	UpdateUser(ctx context.Context, actor Actor, id int64, req UpdateUserRequest) (*models.User, error)
	DeleteUser(ctx context.Context, actor Actor, id int64) error
}

type userService struct {
	store    docstore.Store
	counters repositories.CounterRepository
	users    repositories.UserRepository
	branches repositories.BranchRepository
}

// NewUserService creates a new instance of UserService.
func NewUserService(store docstore.Store, counters repositories.CounterRepository,
	users repositories.UserRepository, branches repositories.BranchRepository) UserService {
	return &userService{store: store, counters: counters, users: users, branches: branches}
}

func (s *userService) checkBranch(ctx context.Context, ex repositories.Executor, branchID *int64) error {
	if branchID == nil {
		return nil
	}
	if _, err := s.branches.GetByID(ctx, ex, *branchID); err != nil {
		return notFound(err, ErrBranchNotFound)
	}
	return nil
}

func hashPassword(password string) (string, error) {
	if !utils.IsValidPasswordLength(password, minPasswordLength) {
		return "", validationError("password must be at least %d characters", minPasswordLength)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func (s *userService) CreateUser(ctx context.Context, req CreateUserRequest) (*models.User, error) {
	username := strings.ToLower(strings.TrimSpace(req.Username))
	if utils.IsEmpty(username) {
		return nil, validationError("username is required")
	}
	role := strings.ToLower(req.Role)
	if !models.ValidRole(role) {
		return nil, validationError("role must be admin, manager or cashier")
	}
	if req.Email != nil && !utils.IsValidEmail(*req.Email) {
		return nil, validationError("invalid email format")
	}
	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	now := nowUTC()
	user := &models.User{
		Username:     username,
		PasswordHash: hash,
		Email:        req.Email,
		FullName:     req.FullName,
		Role:         role,
		BranchID:     req.BranchID,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	err = createWithID(ctx, s.store, s.counters, models.CollectionUsers, func(ctx context.Context, tx docstore.Tx, id int64) error {
		if _, err := s.users.GetByUsername(ctx, tx, username); err == nil {
			return ErrUsernameExists
		} else if !errors.Is(err, repositories.ErrNotFound) {
			return err
		}
		if err := s.checkBranch(ctx, tx, req.BranchID); err != nil {
			return err
		}
		user.ID = id
		return s.users.Create(ctx, tx, user)
	})
	if err != nil {
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *userService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.users.GetByID(ctx, s.store, id)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *userService) ListUsers(ctx context.Context, filter repositories.UserFilter) ([]models.User, error) {
	users, err := s.users.List(ctx, s.store, filter)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, nil
}

func (s *userService) UpdateUser(ctx context.Context, actor Actor, id int64, req UpdateUserRequest) (*models.User, error) {
	if req.Role != nil && !models.ValidRole(strings.ToLower(*req.Role)) {
		return nil, validationError("role must be admin, manager or cashier")
	}
	if req.Email != nil && !utils.IsValidEmail(*req.Email) {
		return nil, validationError("invalid email format")
	}
	if actor.UserID == id && req.IsActive != nil && !*req.IsActive {
		return nil, validationError("you cannot deactivate your own account")
	}
	var hash string
	if req.Password != nil {
		var err error
		if hash, err = hashPassword(*req.Password); err != nil {
			return nil, err
		}
	}

	var updated *models.User
	err := s.store.RunTransaction(ctx, func(ctx context.Context, tx docstore.Tx) error {
		user, err := s.users.GetByID(ctx, tx, id)
		if err != nil {
			return notFound(err, ErrUserNotFound)
		}
		if hash != "" {
			user.PasswordHash = hash
		}
		if req.Email != nil {
			user.Email = req.Email
		}
		if req.FullName != nil {
			user.FullName = req.FullName
		}
		if req.Role != nil {
			user.Role = strings.ToLower(*req.Role)
		}
		if req.BranchID != nil {
			if err := s.checkBranch(ctx, tx, req.BranchID); err != nil {
				return err
			}
			user.BranchID = req.BranchID
		}
		if req.IsActive != nil {
			user.IsActive = *req.IsActive
		}
		user.UpdatedAt = nowUTC()
		updated = user
		return s.users.Update(ctx, tx, user)
	})
	if err != nil {
		return nil, err
	}
	updated.PasswordHash = ""
	return updated, nil
}

func (s *userService) DeleteUser(ctx context.Context, actor Actor, id int64) error {
	if actor.UserID == id {
		return validationError("you cannot delete your own account")
	}
	if err := s.users.Delete(ctx, s.store, id); err != nil {
		return notFound(err, ErrUserNotFound)
	}
	return nil
}
