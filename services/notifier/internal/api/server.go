// Package api exposes the pull side of the notification pipeline: companies
// that missed a push can always list their notifications here.
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/ISYS3461-2025C-Hercules-DEVision/JobManager-sub000/services/notifier/internal/config"
	"github.com/ISYS3461-2025C-Hercules-DEVision/JobManager-sub000/services/notifier/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// NotificationReader is the slice of the store the API needs.
type NotificationReader interface {
	ListByCompany(ctx context.Context, companyID string) ([]models.Notification, error)
	MarkRead(ctx context.Context, id string) (bool, error)
}

type Server struct {
	store  NotificationReader
	logger *zap.Logger
	srv    *http.Server
}

func NewServer(store NotificationReader, logger *zap.Logger, cfg *config.Config) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		store:  store,
		logger: logger,
		srv: &http.Server{
			Addr:    cfg.HTTPAddr,
			Handler: router,
		},
	}

	api := router.Group("/api/v1")
	{
		api.GET("/companies/:companyID/notifications", s.listNotifications)
		api.POST("/notifications/:id/read", s.markRead)
	}

	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// Register starts the HTTP listener on fx startup and shuts it down on stop.
func (s *Server) Register(lc fx.Lifecycle) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				s.logger.Info("notification read API listening", zap.String("addr", s.srv.Addr))
				if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					s.logger.Error("notification read API failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return s.srv.Shutdown(ctx)
		},
	})
}

// listNotifications returns the company's notifications, newest first.
func (s *Server) listNotifications(c *gin.Context) {
	companyID := c.Param("companyID")
	if companyID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "companyID is required"})
		return
	}

	notifications, err := s.store.ListByCompany(c.Request.Context(), companyID)
	if err != nil {
		s.logger.Error("failed to list notifications",
			zap.String("company_id", companyID),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list notifications"})
		return
	}
	if notifications == nil {
		notifications = []models.Notification{}
	}

	c.JSON(http.StatusOK, notifications)
}

func (s *Server) markRead(c *gin.Context) {
	id := c.Param("id")

	found, err := s.store.MarkRead(c.Request.Context(), id)
	if err != nil {
		s.logger.Error("failed to mark notification read",
			zap.String("notification_id", id),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to mark notification read"})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "notification not found"})
		return
	}

	c.Status(http.StatusNoContent)
}
