package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/gravadigital/rosterly-api/internal/auth"
	"github.com/gravadigital/rosterly-api/internal/config"
	"github.com/gravadigital/rosterly-api/internal/domain/assignment"
	"github.com/gravadigital/rosterly-api/internal/handlers"
	"github.com/gravadigital/rosterly-api/internal/logger"
	"github.com/gravadigital/rosterly-api/internal/middleware"
	"github.com/gravadigital/rosterly-api/internal/storage/postgres"
)

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	config     *config.Config
	container  *postgres.Container
}

// New creates a new server instance
func New(cfg *config.Config, container *postgres.Container) *Server {
	return &Server{
		config:    cfg,
		container: container,
	}
}

// Start starts the HTTP server
func (s *Server) Start() error {
	router := s.setupRouter()

	s.httpServer = &http.Server{
		Addr:    ":" + s.config.Server.Port,
		Handler: router,

		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Get().Info("Starting HTTP server", "port", s.config.Server.Port)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	logger.Get().Info("Shutting down HTTP server...")

	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}

	return nil
}

// setupRouter configures the HTTP router with middleware and routes
func (s *Server) setupRouter() *gin.Engine {
	if s.config.Server.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = strings.Split(s.config.CORS.AllowOrigins, ",")
	if s.config.CORS.AllowOrigins == "*" {
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowOrigins = nil
	} else {
		corsConfig.AllowCredentials = true
	}
	corsConfig.AllowMethods = strings.Split(s.config.CORS.AllowMethods, ",")
	corsConfig.AllowHeaders = strings.Split(s.config.CORS.AllowHeaders, ",")
	router.Use(cors.New(corsConfig))

	authService := auth.NewService(s.config)

	assigner := assignment.NewAssignmentCoordinator(s.container.Store())
	unassigner := assignment.NewUnassignmentCoordinator(s.container.Store())

	authHandler := handlers.NewAuthHandler(s.container.DB(), authService)
	assignmentHandler := handlers.NewAssignmentHandler(assigner, unassigner, s.container.Assignments())
	shiftHandler := handlers.NewShiftHandler(s.container.Shifts())
	workerHandler := handlers.NewWorkerHandler(s.container.Workers())

	// Health check
	router.GET("/ping", func(c *gin.Context) {
		if err := s.container.Health(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"message": "database unreachable",
				"status":  "unhealthy",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message": "Rosterly API is running",
			"status":  "healthy",
		})
	})

	s.setupAPIRoutes(router, authService, authHandler, assignmentHandler, shiftHandler, workerHandler)

	return router
}

// setupAPIRoutes configures all API routes
func (s *Server) setupAPIRoutes(
	router *gin.Engine,
	authService *auth.Service,
	authHandler *handlers.AuthHandler,
	assignmentHandler *handlers.AssignmentHandler,
	shiftHandler *handlers.ShiftHandler,
	workerHandler *handlers.WorkerHandler,
) {
	api := router.Group("/api")
	{
		api.POST("/auth/login", authHandler.Login)

		// Everything below requires an authenticated admin
		protected := api.Group("")
		protected.Use(middleware.RequireAdmin(authService))
		{
			assignments := protected.Group("/assignments")
			{
				assignments.POST("", assignmentHandler.Assign)
				assignments.GET("/check", assignmentHandler.CheckConflicts)
				assignments.DELETE("/:id", assignmentHandler.Unassign)
				assignments.PATCH("/:id/status", assignmentHandler.UpdateStatus)
			}

			shifts := protected.Group("/shifts")
			{
				shifts.GET("", shiftHandler.List)
				shifts.POST("", shiftHandler.Create)
				shifts.GET("/:id", shiftHandler.Get)
				shifts.PATCH("/:id/status", shiftHandler.UpdateStatus)
				shifts.GET("/:id/assignments", assignmentHandler.GetByShift)
			}

			workers := protected.Group("/workers")
			{
				workers.GET("", workerHandler.List)
				workers.POST("", workerHandler.Create)
				workers.GET("/:id", workerHandler.Get)
				workers.POST("/:id/certifications", workerHandler.AddCertification)
			}
		}
	}
}
