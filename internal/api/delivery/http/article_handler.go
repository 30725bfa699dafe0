package http

import (
	"net/http"

	"inversebias/internal/api/dto"
	"inversebias/internal/api/service"
	"inversebias/pkg/logger"

	"github.com/labstack/echo/v4"
)

// ArticleHandler handles HTTP requests for analyzed articles.
type ArticleHandler struct {
	articleService service.ArticleService
	logger         *logger.Logger
}

// NewArticleHandler creates a new ArticleHandler.
func NewArticleHandler(articleService service.ArticleService, logger *logger.Logger) *ArticleHandler {
	return &ArticleHandler{articleService: articleService, logger: logger}
}

// RegisterRoutes registers the article routes to the Echo group.
func (h *ArticleHandler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.ListArticles)
}

// ListArticles godoc
// @Summary List analyzed articles
// @Description List articles with their sentiment results and bias verdicts
// @Tags articles
// @Produce  json
// @Param   limit        query   int     false   "Page size"
// @Param   offset       query   int     false   "Page offset"
// @Param   source       query   string  false   "Filter by source ID"
// @Param   subject      query   string  false   "Filter by subject"
// @Param   sentiment    query   string  false   "Filter by sentiment label"
// @Param   inverse_only query   bool    false   "Only inverse-biased rows"
// @Success 200 {object} dto.ListArticlesResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /articles [get]
func (h *ArticleHandler) ListArticles(c echo.Context) error {
	var req dto.ListArticlesRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid query parameters"})
	}

	resp, err := h.articleService.ListArticles(c.Request().Context(), &req)
	if err != nil {
		h.logger.Error("Failed to list articles", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to list articles"})
	}

	return c.JSON(http.StatusOK, resp)
}
