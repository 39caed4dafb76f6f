package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Digital-Creators-Team/trick-or-treat-bot/config"
	"github.com/Digital-Creators-Team/trick-or-treat-bot/ledger"
)

// StatusFunc reports the current gateway status for the health probe
type StatusFunc func() string

// Server is the small HTTP surface next to the gateway connection: a
// deploy health probe and a read-only leaderboard. It never mutates the
// ledger.
type Server struct {
	httpServer *http.Server
	logger     zerolog.Logger
}

// New builds the HTTP server and its routes
func New(cfg config.ServerConfig, store *ledger.Store, status StatusFunc, appConfig *config.Config, logger zerolog.Logger) *Server {
	if appConfig.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	log := logger.With().Str("component", "server").Logger()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogging(log))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":     "healthy",
			"service":    "trick-or-treat-bot",
			"bot_status": status(),
		})
	})

	router.GET("/leaderboard", func(c *gin.Context) {
		entries, err := store.AllPoints(c.Request.Context())
		if err != nil {
			log.Error().Err(err).Msg("Failed to read leaderboard")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "storage failure"})
			return
		}
		if entries == nil {
			entries = []ledger.Entry{}
		}
		c.JSON(http.StatusOK, gin.H{"data": entries})
	})

	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      router,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		logger: log,
	}
}

// Start runs the server until it is shut down
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.httpServer.Addr).Msg("Health server listening")
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("health server failed: %w", err)
	}
	return nil
}

// Shutdown stops the server gracefully
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
