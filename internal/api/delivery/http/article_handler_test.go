package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"inversebias/internal/api/dto"
	"inversebias/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubArticleService struct {
	lastReq *dto.ListArticlesRequest
	resp    *dto.ListArticlesResponse
	err     error
}

func (s *stubArticleService) ListArticles(_ context.Context, req *dto.ListArticlesRequest) (*dto.ListArticlesResponse, error) {
	s.lastReq = req
	return s.resp, s.err
}

func TestArticleHandler_ListArticles(t *testing.T) {
	stub := &stubArticleService{
		resp: &dto.ListArticlesResponse{
			Articles: []dto.ArticleResponse{
				{
					ArticleID:       "a1",
					Source:          "examplenews",
					URL:             "https://example.com/one",
					Title:           "Story One",
					Subject:         "trump",
					Sentiment:       "negative",
					Confidence:      0.9,
					IsInverseBiased: true,
					BiasScore:       0.9,
				},
			},
			Limit:  50,
			Offset: 0,
			Count:  1,
		},
	}
	handler := NewArticleHandler(stub, logger.NewNop())

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/articles?source=examplenews&subject=trump&sentiment=negative&inverse_only=true&limit=50", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, handler.ListArticles(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	// Query parameters reach the service.
	require.NotNil(t, stub.lastReq)
	assert.Equal(t, "examplenews", stub.lastReq.Source)
	assert.Equal(t, "trump", stub.lastReq.Subject)
	assert.Equal(t, "negative", stub.lastReq.Sentiment)
	assert.True(t, stub.lastReq.InverseOnly)
	assert.Equal(t, 50, stub.lastReq.Limit)

	var resp dto.ListArticlesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Articles, 1)
	assert.Equal(t, "a1", resp.Articles[0].ArticleID)
	assert.True(t, resp.Articles[0].IsInverseBiased)
	assert.Equal(t, 1, resp.Count)
}

func TestArticleHandler_ListArticlesServiceError(t *testing.T) {
	stub := &stubArticleService{err: assert.AnError}
	handler := NewArticleHandler(stub, logger.NewNop())

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/articles", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, handler.ListArticles(c))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Error)
}
