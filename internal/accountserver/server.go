// Package accountserver assembles the account service HTTP server.
package accountserver

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/go-petr/micro-bank/internal/accountdelivery"
	"github.com/go-petr/micro-bank/internal/accountrepo"
	"github.com/go-petr/micro-bank/internal/accountservice"
	"github.com/go-petr/micro-bank/internal/middleware"
	"github.com/go-petr/micro-bank/internal/userdelivery"
	"github.com/go-petr/micro-bank/internal/userrepo"
	"github.com/go-petr/micro-bank/internal/userservice"
	"github.com/go-petr/micro-bank/pkg/configpkg"
	"github.com/go-petr/micro-bank/pkg/currencypkg"
	"github.com/go-petr/micro-bank/pkg/tokenpkg"
)

// Server holds db connection, handlers router and configuration.
type Server struct {
	DB     *sql.DB
	Engine *gin.Engine
	Config configpkg.Config
}

// ServeHTTP implements the http.Handler interface for the Server type.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Engine.ServeHTTP(w, r)
}

// New creates Server type with instantiated domains and routes.
func New(conn *sql.DB, logger zerolog.Logger, config configpkg.Config) (*Server, error) {
	userRepo := userrepo.NewRepoPGS(conn)
	accountRepo := accountrepo.NewRepoPGS(conn)

	tokenMaker, err := tokenpkg.NewPasetoMaker(config.TokenSymmetricKey)
	if err != nil {
		return nil, errors.New("cannot create token maker")
	}

	userService := userservice.New(userRepo)
	accountService := accountservice.New(accountRepo)

	userHandler := userdelivery.NewHandler(userService, tokenMaker, config.AccessTokenDuration)
	accountHandler := accountdelivery.NewHandler(accountService)

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(middleware.RequestLogger(logger))
	engine.Use(gin.Recovery())

	engine.GET("/health", func(gctx *gin.Context) {
		gctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	engine.POST("/api/auth/register", userHandler.Create)
	engine.POST("/api/auth/login", userHandler.Login)

	// Balance mutation endpoints stay outside the auth group: the
	// transaction server calls them service-to-service.
	engine.GET("/api/accounts/:id", accountHandler.Get)
	engine.GET("/api/accounts/number/:number", accountHandler.GetByNumber)
	engine.PUT("/api/accounts/:id/deposit", accountHandler.Deposit)
	engine.PUT("/api/accounts/:id/withdraw", accountHandler.Withdraw)

	authRoutes := engine.Group("/").Use(middleware.AuthMiddleware(tokenMaker))

	authRoutes.POST("/api/accounts", accountHandler.Create)
	authRoutes.GET("/api/accounts", accountHandler.List)

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		err := v.RegisterValidation("currency", currencypkg.ValidCurrency)
		if err != nil {
			return nil, errors.New("cannot register currency validator")
		}
	}

	server := &Server{
		DB:     conn,
		Engine: engine,
		Config: config,
	}

	return server, nil
}
