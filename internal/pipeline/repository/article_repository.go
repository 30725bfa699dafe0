package repository

import (
	"context"
	"errors"
	"time"

	"inversebias/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NewArticleRepository creates a new instance of ArticleRepository.
func NewArticleRepository(db *gorm.DB) ArticleRepository {
	return &articleRepository{db: db}
}

type articleRepository struct {
	db *gorm.DB
}

// Upsert inserts the article, ignoring conflicts on the primary key so
// re-runs over the same sitemap never duplicate rows.
func (r *articleRepository) Upsert(ctx context.Context, article *entity.Article) (bool, error) {
	tx := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}).Create(article)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

func (r *articleRepository) ExistsByID(ctx context.Context, id string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Article{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// FindByContentHash returns the newest article from the same source with
// identical content discovered after since, or nil when there is none.
func (r *articleRepository) FindByContentHash(ctx context.Context, sourceID, contentHash string, since time.Time) (*entity.Article, error) {
	var article entity.Article
	err := r.db.WithContext(ctx).
		Where("source_id = ? AND content_hash = ? AND discovered_at >= ?", sourceID, contentHash, since).
		Order("discovered_at DESC").
		First(&article).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &article, nil
}

func (r *articleRepository) CreateVariant(ctx context.Context, variant *entity.ArticleVariant) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "variant_url"}},
		DoNothing: true,
	}).Create(variant).Error
}

func (r *articleRepository) FindAll(ctx context.Context) ([]entity.Article, error) {
	var articles []entity.Article
	err := r.db.WithContext(ctx).Order("discovered_at").Find(&articles).Error
	return articles, err
}

func (r *articleRepository) FindAllVariants(ctx context.Context) ([]entity.ArticleVariant, error) {
	var variants []entity.ArticleVariant
	err := r.db.WithContext(ctx).Find(&variants).Error
	return variants, err
}
