package repositories

import (
	"context"

	"petpos_backend/internal/docstore"
	"petpos_backend/internal/models"
)

// BranchRepository defines branch persistence.
type BranchRepository interface {
	Create(ctx context.Context, ex Executor, branch *models.Branch) error
	GetByID(ctx context.Context, ex Executor, id int64) (*models.Branch, error)
	GetByCode(ctx context.Context, ex Executor, code string) (*models.Branch, error)
	List(ctx context.Context, ex Executor) ([]models.Branch, error)
	Update(ctx context.Context, ex Executor, branch *models.Branch) error
	Delete(ctx context.Context, ex Executor, id int64) error
}

type branchRepository struct {
	branches collection[models.Branch]
}

// NewBranchRepository creates a new instance of BranchRepository.
func NewBranchRepository() BranchRepository {
	return &branchRepository{branches: collection[models.Branch]{name: models.CollectionBranches}}
}

func (r *branchRepository) Create(ctx context.Context, ex Executor, branch *models.Branch) error {
	return r.branches.set(ctx, ex, branch.ID, branch)
}

func (r *branchRepository) GetByID(ctx context.Context, ex Executor, id int64) (*models.Branch, error) {
	return r.branches.get(ctx, ex, id)
}

func (r *branchRepository) GetByCode(ctx context.Context, ex Executor, code string) (*models.Branch, error) {
	return r.branches.first(ctx, ex, docstore.Where("code", code))
}

func (r *branchRepository) List(ctx context.Context, ex Executor) ([]models.Branch, error) {
	return r.branches.find(ctx, ex)
}

func (r *branchRepository) Update(ctx context.Context, ex Executor, branch *models.Branch) error {
	if _, err := r.branches.get(ctx, ex, branch.ID); err != nil {
		return err
	}
	return r.branches.set(ctx, ex, branch.ID, branch)
}

func (r *branchRepository) Delete(ctx context.Context, ex Executor, id int64) error {
	return r.branches.delete(ctx, ex, id)
}
