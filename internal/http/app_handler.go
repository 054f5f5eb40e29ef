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

// AppHandler mantiene dependencias para los endpoints de aplicaciones.
// Cualquier usuario autenticado puede operar sobre cualquier app; creador y
// ultimo editor quedan registrados pero no restringen acceso.
type AppHandler struct {
	logger *zap.Logger
	apps   repository.AppRepository
}

// NewAppHandler crea una instancia de AppHandler.
func NewAppHandler(logger *zap.Logger, apps repository.AppRepository) *AppHandler {
	return &AppHandler{
		logger: logger,
		apps:   apps,
	}
}

// Create maneja POST /apps. El identificador duplicado lo reporta la
// restriccion UNIQUE del store.
func (h *AppHandler) Create(c *gin.Context) {
	userID, ok := GetAuthUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid token"})
		return
	}

	var req struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
		Identifier  string `json:"identifier" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid create app request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request"})
		return
	}

	app, err := h.apps.Create(c.Request.Context(), domain.App{
		Name:        req.Name,
		Description: req.Description,
		Identifier:  req.Identifier,
		CreatorID:   userID,
		UpdaterID:   userID,
	})
	if err != nil {
		if repository.IsUniqueViolation(err) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "App identifier already exists"})
			return
		}
		h.logger.Error("create app failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create app"})
		return
	}

	c.JSON(http.StatusCreated, app)
}

// Get maneja GET /apps/:id.
func (h *AppHandler) Get(c *gin.Context) {
	appID, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "App not found"})
		return
	}

	app, err := h.apps.GetByID(c.Request.Context(), appID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"message": "App not found"})
			return
		}
		h.logger.Error("get app failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, app)
}

// List maneja GET /apps con filtros opcionales y paginacion page/page_size.
func (h *AppHandler) List(c *gin.Context) {
	page := parsePositive(c.Query("page"), 1)
	pageSize := parsePositive(c.Query("page_size"), 10)

	filter := domain.AppFilter{
		Keyword:    c.Query("keyword"),
		Identifier: c.Query("identifier"),
		Limit:      pageSize,
		Offset:     (page - 1) * pageSize,
	}
	if raw := c.Query("creator_id"); raw != "" {
		creatorID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request"})
			return
		}
		filter.CreatorID = &creatorID
	}

	apps, total, err := h.apps.List(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("list apps failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}
	if apps == nil {
		apps = []domain.App{}
	}

	c.JSON(http.StatusOK, gin.H{
		"apps":      apps,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// Update maneja PUT /apps/:id. Estampa siempre el ultimo editor.
func (h *AppHandler) Update(c *gin.Context) {
	userID, ok := GetAuthUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid token"})
		return
	}

	appID, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "App not found"})
		return
	}

	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid update app request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request"})
		return
	}

	upd := domain.AppUpdate{
		Name:        req.Name,
		Description: req.Description,
	}
	if upd.Empty() {
		c.JSON(http.StatusBadRequest, gin.H{"message": "No fields to update"})
		return
	}

	app, err := h.apps.Update(c.Request.Context(), appID, userID, upd)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"message": "App not found"})
			return
		}
		h.logger.Error("update app failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update app"})
		return
	}

	c.JSON(http.StatusOK, app)
}

// Delete maneja DELETE /apps/:id.
func (h *AppHandler) Delete(c *gin.Context) {
	appID, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "App not found"})
		return
	}

	deleted, err := h.apps.Delete(c.Request.Context(), appID)
	if err != nil {
		h.logger.Error("delete app failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete app"})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"message": "App not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "App deleted successfully"})
}

func parsePositive(raw string, def int64) int64 {
	if raw == "" {
		return def
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
