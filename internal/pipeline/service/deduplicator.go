package service

import (
	"context"
	"time"

	"inversebias/internal/entity"
	"inversebias/internal/pipeline/repository"
	"inversebias/pkg/logger"
)

// Deduplicator decides whether a candidate has already been fully
// processed. It always consults the repository, which at this point
// reflects the downloaded remote state, never just this run's memory,
// since the process restarts every cycle.
type Deduplicator struct {
	articles repository.ArticleRepository
	window   time.Duration
	logger   *logger.Logger
}

// NewDeduplicator creates a new instance of Deduplicator. window bounds
// how far back URL-rewrite detection looks for matching content.
func NewDeduplicator(articles repository.ArticleRepository, window time.Duration, log *logger.Logger) *Deduplicator {
	return &Deduplicator{
		articles: articles,
		window:   window,
		logger:   log,
	}
}

// SeenURL reports whether an article with this ID was persisted by a prior
// run.
func (d *Deduplicator) SeenURL(ctx context.Context, articleID string) (bool, error) {
	return d.articles.ExistsByID(ctx, articleID)
}

// SeenContent checks whether another article from the same source already
// carries identical content within the rewrite window. When it does, the
// rewritten URL is recorded as a linked variant of the original and the
// candidate is skipped without re-analysis.
func (d *Deduplicator) SeenContent(ctx context.Context, sourceID, candidateURL, contentHash string, now time.Time) (*entity.Article, error) {
	existing, err := d.articles.FindByContentHash(ctx, sourceID, contentHash, now.Add(-d.window))
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}
	if existing.URL == candidateURL {
		return existing, nil
	}

	d.logger.Info("URL rewrite detected, linking variant",
		logger.StringField("source", sourceID),
		logger.StringField("variant_url", candidateURL),
		logger.StringField("article_id", existing.ID),
	)
	if err := d.articles.CreateVariant(ctx, &entity.ArticleVariant{
		ArticleID:   existing.ID,
		VariantURL:  candidateURL,
		ContentHash: contentHash,
		SeenAt:      now,
	}); err != nil {
		return nil, err
	}
	return existing, nil
}
