package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/rscms-dev/rscms/internal/domain"
	"github.com/rscms-dev/rscms/internal/repository"
)

// ArticleHandler mantiene dependencias para los endpoints de articulos.
type ArticleHandler struct {
	logger   *zap.Logger
	articles repository.ArticleRepository
}

// NewArticleHandler crea una instancia de ArticleHandler.
func NewArticleHandler(logger *zap.Logger, articles repository.ArticleRepository) *ArticleHandler {
	return &ArticleHandler{
		logger:   logger,
		articles: articles,
	}
}

// Create maneja POST /articles.
func (h *ArticleHandler) Create(c *gin.Context) {
	userID, ok := GetAuthUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid token"})
		return
	}

	var req struct {
		Title   string `json:"title" binding:"required"`
		Content string `json:"content" binding:"required"`
		Status  *int16 `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid create article request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request"})
		return
	}

	status := domain.ArticleStatusDraft
	if req.Status != nil {
		if !validArticleStatus(*req.Status) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid article status"})
			return
		}
		status = *req.Status
	}

	article, err := h.articles.Create(c.Request.Context(), domain.Article{
		Title:    req.Title,
		Content:  req.Content,
		AuthorID: userID,
		Status:   status,
	})
	if err != nil {
		h.logger.Error("create article failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create article"})
		return
	}

	c.JSON(http.StatusOK, article)
}

// Get maneja GET /articles/:id. Un borrador ajeno responde igual que un
// articulo inexistente.
func (h *ArticleHandler) Get(c *gin.Context) {
	userID, ok := GetAuthUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid token"})
		return
	}

	articleID, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Article not found"})
		return
	}

	article, err := h.articles.GetVisible(c.Request.Context(), articleID, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Article not found"})
			return
		}
		h.logger.Error("get article failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, article)
}

// List maneja GET /articles.
func (h *ArticleHandler) List(c *gin.Context) {
	userID, ok := GetAuthUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid token"})
		return
	}

	articles, err := h.articles.ListVisible(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("list articles failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}
	if articles == nil {
		articles = []domain.Article{}
	}

	c.JSON(http.StatusOK, articles)
}

// Update maneja PUT /articles/:id. Solo el autor puede actualizar; el caso
// "no existe" y el caso "no es tuyo" comparten respuesta.
func (h *ArticleHandler) Update(c *gin.Context) {
	userID, ok := GetAuthUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid token"})
		return
	}

	articleID, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Article not found or you don't have permission to update it"})
		return
	}

	var req struct {
		Title   *string `json:"title"`
		Content *string `json:"content"`
		Status  *int16  `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid update article request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request"})
		return
	}

	upd := domain.ArticleUpdate{
		Title:   req.Title,
		Content: req.Content,
		Status:  req.Status,
	}
	if upd.Empty() {
		c.JSON(http.StatusBadRequest, gin.H{"message": "No fields to update"})
		return
	}
	if upd.Status != nil && !validArticleStatus(*upd.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid article status"})
		return
	}

	article, err := h.articles.Update(c.Request.Context(), articleID, userID, upd)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Article not found or you don't have permission to update it"})
			return
		}
		h.logger.Error("update article failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update article"})
		return
	}

	c.JSON(http.StatusOK, article)
}

// Delete maneja DELETE /articles/:id.
func (h *ArticleHandler) Delete(c *gin.Context) {
	userID, ok := GetAuthUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid token"})
		return
	}

	articleID, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Article not found or you don't have permission to delete it"})
		return
	}

	deleted, err := h.articles.Delete(c.Request.Context(), articleID, userID)
	if err != nil {
		h.logger.Error("delete article failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete article"})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"message": "Article not found or you don't have permission to delete it"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Article deleted successfully"})
}

func validArticleStatus(status int16) bool {
	return status == domain.ArticleStatusDraft || status == domain.ArticleStatusPublished
}

func parseID(raw string) (int64, error) {
	return strconv.ParseInt(raw, 10, 64)
}
