package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rscms-dev/rscms/internal/service"
)

const requestIDHeader = "X-Request-ID"

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(
	logger *zap.Logger,
	jwtSvc *service.JWTService,
	authH *AuthHandler,
	articleH *ArticleHandler,
	appH *AppHandler,
) *gin.Engine {
	registerMetrics()

	r := gin.New()

	// Middlewares basicos: request id, logging, recovery y metricas.
	r.Use(requestIDMiddleware(), zapLoggerMiddleware(logger), gin.Recovery(), metricsMiddleware())

	r.GET("/health", HealthCheck)
	r.GET("/metrics", gin.WrapH(metricsHandler()))

	auth := r.Group("/auth")
	auth.POST("/register", authH.Register)
	auth.POST("/verification-code", authH.ResendCode)
	auth.POST("/login", authH.Login)
	auth.GET("/me", JWTAuthMiddleware(jwtSvc), authH.Me)

	articles := r.Group("/articles", JWTAuthMiddleware(jwtSvc))
	articles.POST("", articleH.Create)
	articles.GET("", articleH.List)
	articles.GET("/:id", articleH.Get)
	articles.PUT("/:id", articleH.Update)
	articles.DELETE("/:id", articleH.Delete)

	apps := r.Group("/apps", JWTAuthMiddleware(jwtSvc))
	apps.POST("", appH.Create)
	apps.GET("", appH.List)
	apps.GET("/:id", appH.Get)
	apps.PUT("/:id", appH.Update)
	apps.DELETE("/:id", appH.Delete)

	return r
}

// HealthCheck maneja GET /health.
func HealthCheck(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

// requestIDMiddleware asigna un id por request, respetando el del cliente.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("request_id", requestID)
		c.Writer.Header().Set(requestIDHeader, requestID)
		c.Next()
	}
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("request_id", c.GetString("request_id")),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}
