package repository

import (
	"context"
	"time"

	"inversebias/internal/entity"
	"inversebias/internal/pipeline/dto"
)

// SourceRepository persists configured sources.
type SourceRepository interface {
	Upsert(ctx context.Context, source *entity.Source) error
	FindAll(ctx context.Context) ([]entity.Source, error)
}

// ArticleRepository persists articles and their URL-rewrite variants.
type ArticleRepository interface {
	// Upsert inserts the article, ignoring conflicts on the natural key.
	// Returns true when a new row was created.
	Upsert(ctx context.Context, article *entity.Article) (bool, error)
	ExistsByID(ctx context.Context, id string) (bool, error)
	FindByContentHash(ctx context.Context, sourceID, contentHash string, since time.Time) (*entity.Article, error)
	CreateVariant(ctx context.Context, variant *entity.ArticleVariant) error
	FindAll(ctx context.Context) ([]entity.Article, error)
	FindAllVariants(ctx context.Context) ([]entity.ArticleVariant, error)
}

// AnalysisRepository persists sentiment results and bias verdicts.
type AnalysisRepository interface {
	UpsertResult(ctx context.Context, result *entity.AnalysisResult) error
	UpsertVerdict(ctx context.Context, verdict *entity.BiasVerdict) error
	FindAllResults(ctx context.Context) ([]entity.AnalysisResult, error)
	FindAllVerdicts(ctx context.Context) ([]entity.BiasVerdict, error)
}

// PipelineRunRepository records cycle audit rows.
type PipelineRunRepository interface {
	Create(ctx context.Context, run *entity.PipelineRun) error
	Update(ctx context.Context, run *entity.PipelineRun) error
}

// SentimentRepository is the external sentiment-scoring capability. Any
// backend that can label text for a subject can implement it.
type SentimentRepository interface {
	Classify(ctx context.Context, text, subject string) (*dto.SentimentResult, error)
	ModelID() string
}

// SnapshotRepository moves the whole dataset in and out of the local store
// for storage synchronization.
type SnapshotRepository interface {
	Export(ctx context.Context) (*Snapshot, error)
	Import(ctx context.Context, snapshot *Snapshot) error
}
