package service

import (
	"context"
	"testing"

	"inversebias/internal/api/dto"
	"inversebias/pkg/config"
	"inversebias/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubQueryRepo struct {
	lastReq *dto.ListArticlesRequest
	rows    []dto.ArticleResponse
	err     error
}

func (s *stubQueryRepo) List(_ context.Context, req *dto.ListArticlesRequest) ([]dto.ArticleResponse, error) {
	s.lastReq = req
	return s.rows, s.err
}

func newTestService(repo *stubQueryRepo) ArticleService {
	return NewArticleService(repo, config.API{DefaultLimit: 50, MaxLimit: 500}, logger.NewNop())
}

func TestArticleService_ListArticles(t *testing.T) {
	repo := &stubQueryRepo{rows: []dto.ArticleResponse{{ArticleID: "a1"}, {ArticleID: "a2"}}}
	svc := newTestService(repo)

	resp, err := svc.ListArticles(context.Background(), &dto.ListArticlesRequest{Limit: 10, Offset: 5})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, 10, resp.Limit)
	assert.Equal(t, 5, resp.Offset)
}

func TestArticleService_LimitDefaults(t *testing.T) {
	tests := []struct {
		name       string
		limit      int
		offset     int
		wantLimit  int
		wantOffset int
	}{
		{name: "zero limit uses default", limit: 0, wantLimit: 50},
		{name: "negative limit uses default", limit: -1, wantLimit: 50},
		{name: "oversized limit clamped", limit: 10000, wantLimit: 500},
		{name: "negative offset zeroed", limit: 10, offset: -3, wantLimit: 10, wantOffset: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &stubQueryRepo{}
			svc := newTestService(repo)

			resp, err := svc.ListArticles(context.Background(), &dto.ListArticlesRequest{Limit: tt.limit, Offset: tt.offset})
			require.NoError(t, err)
			assert.Equal(t, tt.wantLimit, resp.Limit)
			assert.Equal(t, tt.wantOffset, resp.Offset)
			assert.Equal(t, tt.wantLimit, repo.lastReq.Limit)
		})
	}
}

func TestArticleService_RepositoryError(t *testing.T) {
	repo := &stubQueryRepo{err: assert.AnError}
	svc := newTestService(repo)

	_, err := svc.ListArticles(context.Background(), &dto.ListArticlesRequest{})
	assert.Error(t, err)
}
