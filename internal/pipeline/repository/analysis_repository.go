package repository

import (
	"context"

	"inversebias/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NewAnalysisRepository creates a new instance of AnalysisRepository.
func NewAnalysisRepository(db *gorm.DB) AnalysisRepository {
	return &analysisRepository{db: db}
}

type analysisRepository struct {
	db *gorm.DB
}

func (r *analysisRepository) UpsertResult(ctx context.Context, result *entity.AnalysisResult) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}).Create(result).Error
}

func (r *analysisRepository) UpsertVerdict(ctx context.Context, verdict *entity.BiasVerdict) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}).Create(verdict).Error
}

func (r *analysisRepository) FindAllResults(ctx context.Context) ([]entity.AnalysisResult, error) {
	var results []entity.AnalysisResult
	err := r.db.WithContext(ctx).Order("analyzed_at").Find(&results).Error
	return results, err
}

func (r *analysisRepository) FindAllVerdicts(ctx context.Context) ([]entity.BiasVerdict, error) {
	var verdicts []entity.BiasVerdict
	err := r.db.WithContext(ctx).Find(&verdicts).Error
	return verdicts, err
}
