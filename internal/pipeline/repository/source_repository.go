package repository

import (
	"context"

	"inversebias/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NewSourceRepository creates a new instance of SourceRepository.
func NewSourceRepository(db *gorm.DB) SourceRepository {
	return &sourceRepository{db: db}
}

type sourceRepository struct {
	db *gorm.DB
}

// Upsert inserts the source, ignoring conflicts on the primary key.
// Sources are immutable after configuration load.
func (r *sourceRepository) Upsert(ctx context.Context, source *entity.Source) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}).Create(source).Error
}

func (r *sourceRepository) FindAll(ctx context.Context) ([]entity.Source, error) {
	var sources []entity.Source
	err := r.db.WithContext(ctx).Order("id").Find(&sources).Error
	return sources, err
}
