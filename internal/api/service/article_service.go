package service

import (
	"context"

	"inversebias/internal/api/dto"
	"inversebias/internal/api/repository"
	"inversebias/pkg/config"
	"inversebias/pkg/logger"
)

// ArticleService defines the read-only article listing operations.
type ArticleService interface {
	ListArticles(ctx context.Context, req *dto.ListArticlesRequest) (*dto.ListArticlesResponse, error)
}

// NewArticleService creates a new article service.
func NewArticleService(repo repository.ArticleQueryRepository, apiCfg config.API, log *logger.Logger) ArticleService {
	return &articleService{
		repo:   repo,
		apiCfg: apiCfg,
		logger: log,
	}
}

type articleService struct {
	repo   repository.ArticleQueryRepository
	apiCfg config.API
	logger *logger.Logger
}

// ListArticles applies paging defaults and bounds before querying. A
// missing or out-of-range limit falls back to the configured default; a
// negative offset becomes zero.
func (s *articleService) ListArticles(ctx context.Context, req *dto.ListArticlesRequest) (*dto.ListArticlesResponse, error) {
	if req.Limit <= 0 {
		req.Limit = s.apiCfg.DefaultLimit
	}
	if req.Limit > s.apiCfg.MaxLimit {
		req.Limit = s.apiCfg.MaxLimit
	}
	if req.Offset < 0 {
		req.Offset = 0
	}

	articles, err := s.repo.List(ctx, req)
	if err != nil {
		s.logger.Error("Failed to list articles", logger.ErrorField(err))
		return nil, err
	}

	return &dto.ListArticlesResponse{
		Articles: articles,
		Limit:    req.Limit,
		Offset:   req.Offset,
		Count:    len(articles),
	}, nil
}
