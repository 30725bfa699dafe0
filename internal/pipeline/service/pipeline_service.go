package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"inversebias/internal/entity"
	"inversebias/internal/pipeline/config"
	"inversebias/internal/pipeline/dto"
	"inversebias/internal/pipeline/repository"
	"inversebias/pkg/logger"
	"inversebias/pkg/metrics"
	"inversebias/pkg/telegram"
	"inversebias/pkg/utils"

	"github.com/lib/pq"
)

// PipelineService runs one full discover-fetch-analyze cycle across all
// configured sources. Failures are isolated at the item and source level:
// a broken article or an unreachable sitemap costs only itself, never the
// run.
type PipelineService interface {
	Run(ctx context.Context) (*dto.RunSummary, error)
}

type pipelineService struct {
	cfg      *config.Config
	crawler  *SitemapCrawler
	fetcher  *ArticleFetcher
	dedup    *Deduplicator
	subjects *SubjectClassifier
	analyzer *SentimentAnalyzer
	engine   *BiasEngine

	sources  repository.SourceRepository
	articles repository.ArticleRepository
	analyses repository.AnalysisRepository
	runs     repository.PipelineRunRepository

	notifier telegram.Notifier
	logger   *logger.Logger
}

// NewPipelineService creates a new instance of PipelineService.
func NewPipelineService(
	cfg *config.Config,
	crawler *SitemapCrawler,
	fetcher *ArticleFetcher,
	dedup *Deduplicator,
	subjects *SubjectClassifier,
	analyzer *SentimentAnalyzer,
	engine *BiasEngine,
	sourceRepo repository.SourceRepository,
	articleRepo repository.ArticleRepository,
	analysisRepo repository.AnalysisRepository,
	runRepo repository.PipelineRunRepository,
	notifier telegram.Notifier,
	log *logger.Logger,
) PipelineService {
	return &pipelineService{
		cfg:      cfg,
		crawler:  crawler,
		fetcher:  fetcher,
		dedup:    dedup,
		subjects: subjects,
		analyzer: analyzer,
		engine:   engine,
		sources:  sourceRepo,
		articles: articleRepo,
		analyses: analysisRepo,
		runs:     runRepo,
		notifier: notifier,
		logger:   log,
	}
}

// runState accumulates the summary across source and fetch goroutines.
type runState struct {
	mu       sync.Mutex
	summary  dto.RunSummary
	inflight map[string]struct{}
}

func (s *runState) apply(fn func(*dto.RunSummary)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.summary)
}

// claimContent marks a source content hash as being persisted by this run.
// It returns false when another candidate of the same run claimed it first.
func (s *runState) claimContent(sourceID, contentHash string) bool {
	key := sourceID + "|" + contentHash
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.inflight[key]; ok {
		return false
	}
	s.inflight[key] = struct{}{}
	return true
}

// Run executes one cycle and records it as a pipeline_runs row. It returns
// the summary together with any error that made the cycle incomplete;
// per-item and per-source failures are counted in the summary instead.
func (p *pipelineService) Run(ctx context.Context) (*dto.RunSummary, error) {
	startedAt := time.Now().UTC()
	p.logger.Info("Starting pipeline run")

	sources := p.cfg.SourceList()
	for i := range sources {
		if err := p.sources.Upsert(ctx, &sources[i]); err != nil {
			return nil, err
		}
	}

	run := &entity.PipelineRun{
		StartedAt: startedAt,
		Status:    entity.RunStatusRunning,
	}
	if err := p.runs.Create(ctx, run); err != nil {
		return nil, err
	}

	state := &runState{
		summary:  dto.RunSummary{SourceErrors: make(map[string]string)},
		inflight: make(map[string]struct{}),
	}

	fetchSem := make(chan struct{}, p.cfg.Crawler.MaxConcurrentFetches)
	sourceSem := make(chan struct{}, p.cfg.Crawler.MaxConcurrentSources)
	var wg sync.WaitGroup

	for _, source := range sources {
		if !utils.ShouldContinue(ctx, p.logger) {
			break
		}
		source := source
		wg.Add(1)
		sourceSem <- struct{}{}
		utils.GoSafe(func() {
			defer wg.Done()
			defer func() { <-sourceSem }()
			p.processSource(ctx, source, state, fetchSem)
		})
	}
	wg.Wait()

	summary := state.summary
	status := entity.RunStatusCompleted
	if err := ctx.Err(); err != nil {
		status = entity.RunStatusFailed
	}

	run.Status = status
	run.CompletedAt = sql.NullTime{Time: time.Now().UTC(), Valid: true}
	if payload, err := json.Marshal(summary); err == nil {
		run.Summary = payload
	}
	if err := p.runs.Update(ctx, run); err != nil {
		p.logger.Error("Failed to update pipeline run record", logger.ErrorField(err))
	}

	metrics.RunsTotal.WithLabelValues(string(status)).Inc()
	p.logger.Info("Pipeline run finished",
		logger.StringField("status", string(status)),
		logger.StringField("summary", summary.Format()),
		logger.StringField("duration", time.Since(startedAt).String()),
	)
	p.notify(&summary, status)

	return &summary, ctx.Err()
}

func (p *pipelineService) processSource(ctx context.Context, source entity.Source, state *runState, fetchSem chan struct{}) {
	candidates, err := p.crawler.Crawl(ctx, source)
	if err != nil {
		p.logger.Error("Source crawl failed",
			logger.StringField("source", source.ID),
			logger.ErrorField(err),
		)
		metrics.SourceErrors.Inc()
		state.apply(func(s *dto.RunSummary) {
			s.SourceErrors[source.ID] = err.Error()
		})
		return
	}

	p.logger.Info("Crawled source",
		logger.StringField("source", source.ID),
		logger.IntField("candidates", len(candidates)),
	)
	metrics.ArticlesDiscovered.Add(float64(len(candidates)))
	state.apply(func(s *dto.RunSummary) {
		s.Discovered += len(candidates)
	})

	var wg sync.WaitGroup
	for _, candidate := range candidates {
		if !utils.ShouldContinue(ctx, p.logger) {
			break
		}
		candidate := candidate
		wg.Add(1)
		fetchSem <- struct{}{}
		utils.GoSafe(func() {
			defer wg.Done()
			defer func() { <-fetchSem }()
			if err := p.processCandidate(ctx, source, candidate, state); err != nil {
				p.logger.Warn("Candidate failed",
					logger.StringField("source", source.ID),
					logger.StringField("url", candidate.URL),
					logger.ErrorField(err),
				)
				metrics.ItemErrors.Inc()
				state.apply(func(s *dto.RunSummary) {
					s.Errored++
				})
			}
		})
	}
	wg.Wait()
}

// processCandidate carries one URL through the full item flow: canonicalize,
// dedup by URL, fetch, dedup by content, persist, classify, analyze.
func (p *pipelineService) processCandidate(ctx context.Context, source entity.Source, candidate dto.CandidateURL, state *runState) error {
	canonical, err := CanonicalURL(candidate.URL)
	if err != nil {
		return err
	}
	articleID := entity.ArticleID(source.ID, canonical)

	seen, err := p.dedup.SeenURL(ctx, articleID)
	if err != nil {
		return err
	}
	if seen {
		metrics.ArticlesDuplicate.Inc()
		state.apply(func(s *dto.RunSummary) { s.SkippedDuplicate++ })
		return nil
	}

	extracted, err := p.fetcher.Fetch(ctx, candidate)
	if err != nil {
		return err
	}
	metrics.ArticlesFetched.Inc()
	now := time.Now().UTC()

	contentHash := entity.ContentFingerprint(extracted.Title, extracted.Body)
	existing, err := p.dedup.SeenContent(ctx, source.ID, canonical, contentHash, now)
	if err != nil {
		return err
	}
	if existing != nil {
		metrics.ArticlesDuplicate.Inc()
		state.apply(func(s *dto.RunSummary) { s.SkippedDuplicate++ })
		return nil
	}

	// The repository check is not atomic with the insert, so identical
	// content fetched concurrently within this run is arbitrated here.
	if !state.claimContent(source.ID, contentHash) {
		metrics.ArticlesDuplicate.Inc()
		state.apply(func(s *dto.RunSummary) { s.SkippedDuplicate++ })
		return nil
	}

	matches := p.subjects.Classify(extracted.Title, extracted.Body)
	subjects := make([]string, 0, len(matches))
	for _, m := range matches {
		subjects = append(subjects, m.Subject)
	}

	article := &entity.Article{
		ID:              articleID,
		SourceID:        source.ID,
		URL:             canonical,
		Title:           extracted.Title,
		Body:            extracted.Body,
		Language:        candidate.Language,
		PublicationDate: candidate.PublicationDate,
		DiscoveredAt:    candidate.DiscoveredAt,
		FetchedAt:       now,
		ContentHash:     contentHash,
		Partial:         extracted.Partial,
		MatchedSubjects: pq.StringArray(subjects),
	}
	created, err := p.articles.Upsert(ctx, article)
	if err != nil {
		return err
	}
	if !created {
		metrics.ArticlesDuplicate.Inc()
		state.apply(func(s *dto.RunSummary) { s.SkippedDuplicate++ })
		return nil
	}
	state.apply(func(s *dto.RunSummary) { s.Fetched++ })

	if len(matches) == 0 {
		state.apply(func(s *dto.RunSummary) { s.NoSubject++ })
		return nil
	}

	text := strings.TrimSpace(extracted.Title + "\n\n" + extracted.Body)
	for _, match := range matches {
		if !utils.ShouldContinue(ctx, p.logger) {
			return ctx.Err()
		}
		if err := p.analyzeSubject(ctx, source, articleID, match.Subject, text, state); err != nil {
			// Fail-open: the article is already persisted, a missing
			// sentiment result just leaves it unanalyzed.
			p.logger.Warn("Sentiment analysis failed",
				logger.StringField("article_id", articleID),
				logger.StringField("subject", match.Subject),
				logger.ErrorField(err),
			)
			metrics.ItemErrors.Inc()
			state.apply(func(s *dto.RunSummary) { s.Errored++ })
		}
	}
	return nil
}

func (p *pipelineService) analyzeSubject(ctx context.Context, source entity.Source, articleID, subject, text string, state *runState) error {
	result, err := p.analyzer.Analyze(ctx, text, subject)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	analysis := &entity.AnalysisResult{
		ID:          entity.ResultID(articleID, subject),
		ArticleID:   articleID,
		Subject:     subject,
		Sentiment:   result.Label,
		Confidence:  result.Confidence,
		ModelID:     result.ModelID,
		Explanation: result.Explanation,
		AnalyzedAt:  now,
	}
	if err := p.analyses.UpsertResult(ctx, analysis); err != nil {
		return err
	}
	state.apply(func(s *dto.RunSummary) { s.Analyzed++ })

	verdict := p.engine.Verdict(result.Label, result.Confidence, source.Leaning, subject)
	verdict.ID = analysis.ID
	verdict.AnalysisResultID = analysis.ID
	verdict.ArticleID = articleID
	verdict.ComputedAt = now
	if err := p.analyses.UpsertVerdict(ctx, &verdict); err != nil {
		return err
	}

	if verdict.IsInverseBiased {
		metrics.InverseVerdicts.Inc()
		p.logger.Info("Inverse bias verdict",
			logger.StringField("article_id", articleID),
			logger.StringField("subject", subject),
			logger.StringField("sentiment", string(result.Label)),
			logger.Float64Field("confidence", result.Confidence),
		)
	}
	state.apply(func(s *dto.RunSummary) {
		s.Verdicts++
		if verdict.IsInverseBiased {
			s.InverseBias++
		}
	})
	return nil
}

func (p *pipelineService) notify(summary *dto.RunSummary, status entity.RunStatus) {
	msg := "*Pipeline run " + string(status) + "*\n" + summary.Format()
	if err := p.notifier.SendMessage(msg); err != nil {
		p.logger.Warn("Failed to send run summary notification", logger.ErrorField(err))
	}
}
