package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kaisel-labs/basin-dashboard/internal/insights"
	"github.com/kaisel-labs/basin-dashboard/internal/render"
	"github.com/kaisel-labs/basin-dashboard/internal/source"
	"github.com/kaisel-labs/basin-dashboard/services/api/config"
)

// Provider loads the current dataset. source.Loader and db.Store satisfy it.
type Provider interface {
	Load(ctx context.Context) source.Result
}

// Server bundles router and dependencies for the REST API.
type Server struct {
	cfg     config.Config
	data    Provider
	catalog *insights.Catalog
	board   *render.Board
	engine  *gin.Engine
}

// New constructs a server with routes and middleware.
func New(cfg config.Config, data Provider, catalog *insights.Catalog, surface render.Surface) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(recoveryMiddleware())
	engine.Use(requestIDMiddleware())
	engine.Use(loggerMiddleware())
	engine.Use(corsMiddleware())

	if cfg.BearerToken != "" {
		engine.Use(bearerAuthMiddleware(cfg.BearerToken))
	}

	server := &Server{
		cfg:     cfg,
		data:    data,
		catalog: catalog,
		board:   render.NewBoard(surface, cfg.ChartPanels),
		engine:  engine,
	}
	server.registerRoutes()
	return server
}

// Engine exposes the underlying gin engine (for tests).
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Close releases every chart the server rendered.
func (s *Server) Close() error {
	return s.board.Close()
}

// Run starts the HTTP server and blocks until shutdown.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.cfg.ListenAddr(),
		Handler: s.engine,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		zap.L().Info("shutting down REST API")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) registerRoutes() {
	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Aggregate payload of the original dashboard page.
	s.engine.GET("/api/data", s.handleDashboardData)

	s.registerV1Routes()
}
