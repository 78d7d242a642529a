package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"petpos_backend/internal/docstore"
	"petpos_backend/internal/models"
	"petpos_backend/internal/repositories"
	"petpos_backend/internal/revocation"
	"petpos_backend/pkg/utils"

	"golang.org/x/crypto/bcrypt"
)

// LoginRequest DTO
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthService authenticates staff users.
type AuthService interface {
	Login(ctx context.Context, req LoginRequest) (*models.LoginResponse, error)
	// Authenticate verifies a staff token and reloads the user. Missing or
	// inactive users are rejected even when the token itself is valid.
	Authenticate(ctx context.Context, token string) (*models.User, *utils.Claims, error)
	Logout(ctx context.Context, claims *utils.Claims) error
	GetCurrentUser(ctx context.Context, userID int64) (*models.User, error)
	// SeedAdmin creates an admin user when none with that username exists.
	SeedAdmin(ctx context.Context, username, password string) error
}

type authService struct {
	store     docstore.Store
	counters  repositories.CounterRepository
	users     repositories.UserRepository
	revoked   revocation.List
	jwtSecret []byte
	tokenTTL  time.Duration
}

// NewAuthService creates a new instance of AuthService.
func NewAuthService(store docstore.Store, counters repositories.CounterRepository, users repositories.UserRepository,
	revoked revocation.List, jwtSecret []byte, tokenTTL time.Duration) AuthService {
	return &authService{
		store:     store,
		counters:  counters,
		users:     users,
		revoked:   revoked,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
	}
}

func staffSubject(userID int64) string {
	return "staff:" + utils.Int64ToStr(userID)
}

// Login handles user login and token generation.
func (s *authService) Login(ctx context.Context, req LoginRequest) (*models.LoginResponse, error) {
	user, err := s.users.GetByUsername(ctx, s.store, req.Username)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login attempt failed: %w", err)
	}

	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	claims := utils.NewStaffClaims(user.ID, user.Username, user.Role)
	token, err := utils.GenerateToken(s.jwtSecret, utils.StaffIssuer, claims, s.tokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	user.PasswordHash = ""
	return &models.LoginResponse{Token: token, ExpiresAt: claims.ExpiresAt.Time, User: user}, nil
}

func (s *authService) Authenticate(ctx context.Context, token string) (*models.User, *utils.Claims, error) {
	claims, err := utils.ValidateToken(token, s.jwtSecret, utils.StaffIssuer)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	if claims.UserID <= 0 {
		return nil, nil, fmt.Errorf("%w: token carries no user", ErrUnauthenticated)
	}

	if s.revoked != nil {
		revoked, err := s.revoked.IsRevoked(ctx, claims.ID, staffSubject(claims.UserID), claims.IssuedAt.Time)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: revocation check failed: %v", ErrUnauthenticated, err)
		}
		if revoked {
			return nil, nil, fmt.Errorf("%w: token revoked", ErrUnauthenticated)
		}
	}

	user, err := s.users.GetByID(ctx, s.store, claims.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: user no longer exists", ErrUnauthenticated)
		}
		return nil, nil, fmt.Errorf("%w: user lookup failed: %v", ErrUnauthenticated, err)
	}
	if !user.IsActive {
		return nil, nil, fmt.Errorf("%w: user is inactive", ErrUnauthenticated)
	}
	user.PasswordHash = ""
	return user, claims, nil
}

func (s *authService) Logout(ctx context.Context, claims *utils.Claims) error {
	if s.revoked == nil || claims == nil || claims.ExpiresAt == nil {
		return nil
	}
	return s.revoked.RevokeToken(ctx, claims.ID, claims.ExpiresAt.Time)
}

func (s *authService) GetCurrentUser(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.users.GetByID(ctx, s.store, userID)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *authService) SeedAdmin(ctx context.Context, username, password string) error {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || password == "" {
		return nil
	}
	if _, err := s.users.GetByUsername(ctx, s.store, username); err == nil {
		return nil
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	now := nowUTC()
	err = createWithID(ctx, s.store, s.counters, models.CollectionUsers, func(ctx context.Context, tx docstore.Tx, id int64) error {
		return s.users.Create(ctx, tx, &models.User{
			ID:           id,
			Username:     username,
			PasswordHash: string(hash),
			Role:         models.RoleAdmin,
			IsActive:     true,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	})
	if err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}
	utils.LogInfo("Seeded admin user", map[string]interface{}{"username": username})
	return nil
}
