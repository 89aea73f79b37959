package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mikey/antispam-admin/internal/core"
	"go.uber.org/zap"
)

// Server is the gin-backed admin API surface. It implements
// ports.AdminServer.
type Server struct {
	engine          *gin.Engine
	httpServer      *http.Server
	shutdownTimeout time.Duration
	logger          *zap.Logger
}

// NewServer wires the admin routes over the core services
func NewServer(
	listenAddress string,
	corsAllowOrigins []string,
	shutdownTimeout time.Duration,
	analytics *core.AnalyticsService,
	senders *core.SenderService,
	classification *core.ClassificationService,
	logger *zap.Logger,
) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestLogger(logger))
	engine.Use(corsMiddleware(corsAllowOrigins))

	server := &Server{
		engine: engine,
		httpServer: &http.Server{
			Addr:    listenAddress,
			Handler: engine,
		},
		shutdownTimeout: shutdownTimeout,
		logger:          logger,
	}

	handlers := newHandlers(analytics, senders, classification, logger)

	engine.GET("/health", handlers.Health)
	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})

	api := engine.Group("/api")
	{
		api.GET("/sms", handlers.ListSms)
		api.GET("/calls", handlers.ListCalls)
		api.GET("/summary", handlers.DashboardSummary)
		api.GET("/senders", handlers.ListSenders)
		api.POST("/senders/:id/block", handlers.BlockSender)
		api.POST("/senders/:id/unblock", handlers.UnblockSender)
		api.POST("/classification", handlers.ClassifyText)
	}

	return server
}

// ServeHTTP lets tests drive the engine directly through httptest.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.engine.ServeHTTP(w, r)
}

// Start starts serving requests
func (s *Server) Start() error {
	s.logger.Info("Starting admin API server",
		zap.String("listen_address", s.httpServer.Addr))
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("HTTP server stopped unexpectedly", zap.Error(err))
		}
	}()
	return nil
}

// Stop gracefully stops the server, waiting up to the configured
// shutdown timeout for in-flight requests.
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}

// requestLogger tags each request with an id and logs its outcome.
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := uuid.NewString()
		c.Set("request_id", requestID)
		startedAt := time.Now()

		c.Next()

		logger.Info("Request handled",
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(startedAt)))
	}
}

// corsMiddleware applies the configured allow-list to browser requests.
func corsMiddleware(allowOrigins []string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(allowOrigins))
	allowAll := false
	for _, origin := range allowOrigins {
		if origin == "*" {
			allowAll = true
		}
		allowed[origin] = struct{}{}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" {
			if allowAll {
				c.Header("Access-Control-Allow-Origin", "*")
			} else if _, ok := allowed[origin]; ok {
				c.Header("Access-Control-Allow-Origin", origin)
				c.Header("Vary", "Origin")
			}
			c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Content-Type")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
