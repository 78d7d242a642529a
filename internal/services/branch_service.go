package services

import (
	"context"
	"errors"
	"strings"

	"petpos_backend/internal/docstore"
	"petpos_backend/internal/models"
	"petpos_backend/internal/repositories"
	"petpos_backend/pkg/utils"
)

// BranchRequest DTO for create and update.
type BranchRequest struct {
	Name     string  `json:"name" binding:"required"`
	Code     string  `json:"code" binding:"required"`
	Address  *string `json:"address"`
	Phone    *string `json:"phone"`
	IsActive *bool   `json:"is_active"`
}

// BranchService manages store locations.
type BranchService interface {
	CreateBranch(ctx context.Context, req BranchRequest) (*models.Branch, error)
	GetBranch(ctx context.Context, id int64) (*models.Branch, error)
	ListBranches(ctx context.Context) ([]models.Branch, error)
	UpdateBranch(ctx context.Context, id int64, req BranchRequest) (*models.Branch, error)
	DeleteBranch(ctx context.Context, id int64) error
}

type branchService struct {
	store    docstore.Store
	counters repositories.CounterRepository
	branches repositories.BranchRepository
}

// NewBranchService creates a new instance of BranchService.
func NewBranchService(store docstore.Store, counters repositories.CounterRepository, branches repositories.BranchRepository) BranchService {
	return &branchService{store: store, counters: counters, branches: branches}
}

// ensureUniqueCode fails when another branch already uses code.
func (s *branchService) ensureUniqueCode(ctx context.Context, ex repositories.Executor, code string, selfID int64) error {
	existing, err := s.branches.GetByCode(ctx, ex, code)
	if err == nil && existing.ID != selfID {
		return ErrBranchCodeExists
	}
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return err
	}
	return nil
}

func (s *branchService) CreateBranch(ctx context.Context, req BranchRequest) (*models.Branch, error) {
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if utils.IsEmpty(req.Name) || code == "" {
		return nil, validationError("name and code are required")
	}
	now := nowUTC()
	branch := &models.Branch{
		Name:      strings.TrimSpace(req.Name),
		Code:      code,
		Address:   req.Address,
		Phone:     req.Phone,
		IsActive:  req.IsActive == nil || *req.IsActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := createWithID(ctx, s.store, s.counters, models.CollectionBranches, func(ctx context.Context, tx docstore.Tx, id int64) error {
		if err := s.ensureUniqueCode(ctx, tx, code, 0); err != nil {
			return err
		}
		branch.ID = id
		return s.branches.Create(ctx, tx, branch)
	})
	if err != nil {
		return nil, err
	}
	return branch, nil
}

func (s *branchService) GetBranch(ctx context.Context, id int64) (*models.Branch, error) {
	branch, err := s.branches.GetByID(ctx, s.store, id)
	if err != nil {
		return nil, notFound(err, ErrBranchNotFound)
	}
	return branch, nil
}

func (s *branchService) ListBranches(ctx context.Context) ([]models.Branch, error) {
	return s.branches.List(ctx, s.store)
}

func (s *branchService) UpdateBranch(ctx context.Context, id int64, req BranchRequest) (*models.Branch, error) {
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if utils.IsEmpty(req.Name) || code == "" {
		return nil, validationError("name and code are required")
	}
	var updated *models.Branch
	err := s.store.RunTransaction(ctx, func(ctx context.Context, tx docstore.Tx) error {
		branch, err := s.branches.GetByID(ctx, tx, id)
		if err != nil {
			return notFound(err, ErrBranchNotFound)
		}
		if err := s.ensureUniqueCode(ctx, tx, code, id); err != nil {
			return err
		}
		branch.Name = strings.TrimSpace(req.Name)
		branch.Code = code
		branch.Address = req.Address
		branch.Phone = req.Phone
		if req.IsActive != nil {
			branch.IsActive = *req.IsActive
		}
		branch.UpdatedAt = nowUTC()
		updated = branch
		return s.branches.Update(ctx, tx, branch)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *branchService) DeleteBranch(ctx context.Context, id int64) error {
	if err := s.branches.Delete(ctx, s.store, id); err != nil {
		return notFound(err, ErrBranchNotFound)
	}
	return nil
}
