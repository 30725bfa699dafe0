package service

import (
	"context"
	"sync"
	"time"

	"inversebias/internal/entity"
	"inversebias/internal/pipeline/dto"
	"inversebias/internal/pipeline/repository"
)

// In-memory repositories backing the service tests.

type memSourceRepo struct {
	mu      sync.Mutex
	sources map[string]entity.Source
}

func newMemSourceRepo() *memSourceRepo {
	return &memSourceRepo{sources: make(map[string]entity.Source)}
}

func (r *memSourceRepo) Upsert(_ context.Context, source *entity.Source) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources[source.ID] = *source
	return nil
}

func (r *memSourceRepo) FindAll(_ context.Context) ([]entity.Source, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]entity.Source, 0, len(r.sources))
	for _, s := range r.sources {
		out = append(out, s)
	}
	return out, nil
}

type memArticleRepo struct {
	mu       sync.Mutex
	articles map[string]entity.Article
	variants map[string]entity.ArticleVariant
	err      error
}

func newMemArticleRepo() *memArticleRepo {
	return &memArticleRepo{
		articles: make(map[string]entity.Article),
		variants: make(map[string]entity.ArticleVariant),
	}
}

func (r *memArticleRepo) Upsert(_ context.Context, article *entity.Article) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return false, r.err
	}
	if _, ok := r.articles[article.ID]; ok {
		return false, nil
	}
	r.articles[article.ID] = *article
	return true, nil
}

func (r *memArticleRepo) ExistsByID(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return false, r.err
	}
	_, ok := r.articles[id]
	return ok, nil
}

func (r *memArticleRepo) FindByContentHash(_ context.Context, sourceID, contentHash string, since time.Time) (*entity.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for _, a := range r.articles {
		if a.SourceID == sourceID && a.ContentHash == contentHash && !a.DiscoveredAt.Before(since) {
			found := a
			return &found, nil
		}
	}
	return nil, nil
}

func (r *memArticleRepo) CreateVariant(_ context.Context, variant *entity.ArticleVariant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.variants[variant.VariantURL]; ok {
		return nil
	}
	r.variants[variant.VariantURL] = *variant
	return nil
}

func (r *memArticleRepo) FindAll(_ context.Context) ([]entity.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]entity.Article, 0, len(r.articles))
	for _, a := range r.articles {
		out = append(out, a)
	}
	return out, nil
}

func (r *memArticleRepo) FindAllVariants(_ context.Context) ([]entity.ArticleVariant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]entity.ArticleVariant, 0, len(r.variants))
	for _, v := range r.variants {
		out = append(out, v)
	}
	return out, nil
}

type memAnalysisRepo struct {
	mu       sync.Mutex
	results  map[string]entity.AnalysisResult
	verdicts map[string]entity.BiasVerdict
}

func newMemAnalysisRepo() *memAnalysisRepo {
	return &memAnalysisRepo{
		results:  make(map[string]entity.AnalysisResult),
		verdicts: make(map[string]entity.BiasVerdict),
	}
}

func (r *memAnalysisRepo) UpsertResult(_ context.Context, result *entity.AnalysisResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.results[result.ID]; !ok {
		r.results[result.ID] = *result
	}
	return nil
}

func (r *memAnalysisRepo) UpsertVerdict(_ context.Context, verdict *entity.BiasVerdict) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.verdicts[verdict.ID]; !ok {
		r.verdicts[verdict.ID] = *verdict
	}
	return nil
}

func (r *memAnalysisRepo) FindAllResults(_ context.Context) ([]entity.AnalysisResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]entity.AnalysisResult, 0, len(r.results))
	for _, v := range r.results {
		out = append(out, v)
	}
	return out, nil
}

func (r *memAnalysisRepo) FindAllVerdicts(_ context.Context) ([]entity.BiasVerdict, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]entity.BiasVerdict, 0, len(r.verdicts))
	for _, v := range r.verdicts {
		out = append(out, v)
	}
	return out, nil
}

type memRunRepo struct {
	mu   sync.Mutex
	runs []entity.PipelineRun
}

func (r *memRunRepo) Create(_ context.Context, run *entity.PipelineRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	run.ID = uint(len(r.runs) + 1)
	r.runs = append(r.runs, *run)
	return nil
}

func (r *memRunRepo) Update(_ context.Context, run *entity.PipelineRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.runs {
		if r.runs[i].ID == run.ID {
			r.runs[i] = *run
		}
	}
	return nil
}

// fakeSentiment returns scripted results or errors per subject.
type fakeSentiment struct {
	mu      sync.Mutex
	results map[string]*dto.SentimentResult
	errs    map[string]error
	calls   int
}

func (f *fakeSentiment) Classify(_ context.Context, _, subject string) (*dto.SentimentResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if err, ok := f.errs[subject]; ok {
		return nil, err
	}
	if result, ok := f.results[subject]; ok {
		return result, nil
	}
	return &dto.SentimentResult{Label: entity.SentimentNeutral, Confidence: 0.5, ModelID: "fake"}, nil
}

func (f *fakeSentiment) ModelID() string { return "fake" }

func (f *fakeSentiment) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

var _ repository.SentimentRepository = (*fakeSentiment)(nil)

// noopNotifier for tests.
type testNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *testNotifier) SendMessage(text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, text)
	return nil
}
