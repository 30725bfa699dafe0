package repository

import (
	"context"
	"time"

	"inversebias/internal/api/dto"
	"inversebias/pkg/postgres"
)

// ArticleQueryRepository serves the read-only article listing. Writes go
// through the pipeline; this repository never mutates.
type ArticleQueryRepository interface {
	List(ctx context.Context, req *dto.ListArticlesRequest) ([]dto.ArticleResponse, error)
}

// NewArticleQueryRepository creates a new instance of ArticleQueryRepository.
func NewArticleQueryRepository(db *postgres.DB) ArticleQueryRepository {
	return &articleQueryRepository{db: db}
}

type articleQueryRepository struct {
	db *postgres.DB
}

type articleRow struct {
	ID              string     `gorm:"column:id"`
	SourceID        string     `gorm:"column:source_id"`
	URL             string     `gorm:"column:url"`
	Title           string     `gorm:"column:title"`
	PublicationDate *time.Time `gorm:"column:publication_date"`
	Subject         *string    `gorm:"column:subject"`
	Sentiment       *string    `gorm:"column:sentiment"`
	Confidence      *float64   `gorm:"column:confidence"`
	Explanation     *string    `gorm:"column:explanation"`
	IsInverseBiased bool       `gorm:"column:is_inverse_biased"`
	BiasScore       float64    `gorm:"column:bias_score"`
}

const listArticlesQuery = `
SELECT a.id, a.source_id, a.url, a.title, a.publication_date,
       r.subject, r.sentiment, r.confidence, r.explanation,
       COALESCE(v.is_inverse_biased, FALSE) AS is_inverse_biased,
       COALESCE(v.bias_score, 0) AS bias_score
FROM articles a
LEFT JOIN analysis_results r ON r.article_id = a.id
LEFT JOIN bias_verdicts v ON v.analysis_result_id = r.id`

// List returns one row per (article, analyzed subject), newest first.
// Unanalyzed articles appear once with NULL analysis columns unless a
// subject or inverse-only filter excludes them.
func (r *articleQueryRepository) List(ctx context.Context, req *dto.ListArticlesRequest) ([]dto.ArticleResponse, error) {
	query := listArticlesQuery
	var (
		conds []string
		args  []interface{}
	)
	if req.Source != "" {
		conds = append(conds, "a.source_id = ?")
		args = append(args, req.Source)
	}
	if req.Subject != "" {
		conds = append(conds, "r.subject = ?")
		args = append(args, req.Subject)
	}
	if req.Sentiment != "" {
		conds = append(conds, "r.sentiment = ?")
		args = append(args, req.Sentiment)
	}
	if req.InverseOnly {
		conds = append(conds, "v.is_inverse_biased = TRUE")
	}
	for i, cond := range conds {
		if i == 0 {
			query += "\nWHERE " + cond
		} else {
			query += " AND " + cond
		}
	}
	query += "\nORDER BY a.publication_date DESC NULLS LAST, a.id, r.subject\nLIMIT ? OFFSET ?"
	args = append(args, req.Limit, req.Offset)

	var rows []articleRow
	if err := r.db.DB.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]dto.ArticleResponse, 0, len(rows))
	for _, row := range rows {
		resp := dto.ArticleResponse{
			ArticleID:       row.ID,
			Source:          row.SourceID,
			URL:             row.URL,
			Title:           row.Title,
			PublicationDate: row.PublicationDate,
			IsInverseBiased: row.IsInverseBiased,
			BiasScore:       row.BiasScore,
		}
		if row.Subject != nil {
			resp.Subject = *row.Subject
		}
		if row.Sentiment != nil {
			resp.Sentiment = *row.Sentiment
		}
		if row.Confidence != nil {
			resp.Confidence = *row.Confidence
		}
		if row.Explanation != nil {
			resp.Explanation = *row.Explanation
		}
		out = append(out, resp)
	}
	return out, nil
}
