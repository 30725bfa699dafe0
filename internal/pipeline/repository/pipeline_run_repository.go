package repository

import (
	"context"

	"inversebias/internal/entity"

	"gorm.io/gorm"
)

// NewPipelineRunRepository creates a new instance of PipelineRunRepository.
func NewPipelineRunRepository(db *gorm.DB) PipelineRunRepository {
	return &pipelineRunRepository{db: db}
}

type pipelineRunRepository struct {
	db *gorm.DB
}

func (r *pipelineRunRepository) Create(ctx context.Context, run *entity.PipelineRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}

func (r *pipelineRunRepository) Update(ctx context.Context, run *entity.PipelineRun) error {
	return r.db.WithContext(ctx).Save(run).Error
}
