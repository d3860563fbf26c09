// Package notificationserver assembles the notification service HTTP server.
package notificationserver

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/go-petr/micro-bank/internal/emailsender"
	"github.com/go-petr/micro-bank/internal/middleware"
	"github.com/go-petr/micro-bank/internal/notificationdelivery"
	"github.com/go-petr/micro-bank/internal/notificationrepo"
	"github.com/go-petr/micro-bank/internal/notificationservice"
	"github.com/go-petr/micro-bank/pkg/configpkg"
)

// Server holds db connection, handlers router and configuration.
type Server struct {
	DB      *sql.DB
	Engine  *gin.Engine
	Config  configpkg.Config
	Service *notificationservice.Service
}

// ServeHTTP implements the http.Handler interface for the Server type.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Engine.ServeHTTP(w, r)
}

// New creates Server type with instantiated domains and routes. The
// notification service is exported so the AMQP worker can share it.
func New(conn *sql.DB, logger zerolog.Logger, config configpkg.Config) (*Server, error) {
	notificationRepo := notificationrepo.NewRepoPGS(conn)
	notificationService := notificationservice.New(notificationRepo, emailsender.NewLogSender())
	notificationHandler := notificationdelivery.NewHandler(notificationService)

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(middleware.RequestLogger(logger))
	engine.Use(gin.Recovery())

	engine.GET("/health", func(gctx *gin.Context) {
		gctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	engine.POST("/api/notifications", notificationHandler.Create)
	engine.GET("/api/notifications/:id", notificationHandler.Get)
	engine.GET("/api/notifications/recipient/:recipient", notificationHandler.ListByRecipient)
	engine.POST("/api/notifications/:id/resend", notificationHandler.Resend)

	server := &Server{
		DB:      conn,
		Engine:  engine,
		Config:  config,
		Service: notificationService,
	}

	return server, nil
}
