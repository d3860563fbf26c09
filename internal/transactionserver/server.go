// Package transactionserver assembles the transaction service HTTP server.
package transactionserver

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/go-petr/micro-bank/internal/accountclient"
	"github.com/go-petr/micro-bank/internal/auditrepo"
	"github.com/go-petr/micro-bank/internal/eventpublisher"
	"github.com/go-petr/micro-bank/internal/idempotencyrepo"
	"github.com/go-petr/micro-bank/internal/middleware"
	"github.com/go-petr/micro-bank/internal/transactiondelivery"
	"github.com/go-petr/micro-bank/internal/transactionrepo"
	"github.com/go-petr/micro-bank/internal/transactionservice"
	"github.com/go-petr/micro-bank/pkg/configpkg"
	"github.com/go-petr/micro-bank/pkg/currencypkg"
	"github.com/go-petr/micro-bank/pkg/metricspkg"
)

// Resources holds the optional external connections of the transaction
// server. Nil fields disable the corresponding side effect.
type Resources struct {
	Redis *redis.Client
	AMQP  *amqp.Channel
	Mongo *mongo.Client
}

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
func New(conn *sql.DB, logger zerolog.Logger, config configpkg.Config, res Resources) (*Server, error) {
	transactionRepo := transactionrepo.NewRepoPGS(conn)
	accounts := accountclient.New(config.AccountServiceURL, config.AccountClientTimeout)
	metrics := metricspkg.NewSettlement()

	opts := transactionservice.Options{
		Metrics:             metrics,
		CompensateTransfers: config.TransferCompensation,
	}

	if res.Redis != nil {
		opts.Cache = idempotencyrepo.NewRepoRedis(res.Redis, config.IdempotencyTTL)
	}

	if res.AMQP != nil {
		publisher, err := eventpublisher.NewPublisherRMQ(res.AMQP, config.EventsExchange)
		if err != nil {
			return nil, err
		}

		opts.Events = publisher
	}

	if res.Mongo != nil {
		opts.Auditor = auditrepo.NewRepoMongo(res.Mongo, config.MongoDatabase)
	}

	transactionService := transactionservice.New(transactionRepo, accounts, opts)
	transactionHandler := transactiondelivery.NewHandler(transactionService)

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(middleware.RequestLogger(logger))
	engine.Use(gin.Recovery())

	engine.GET("/health", func(gctx *gin.Context) {
		gctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	engine.GET("/metrics", gin.WrapH(metrics.Handler()))

	engine.POST("/api/transactions", transactionHandler.Create)
	engine.GET("/api/transactions", transactionHandler.List)
	engine.GET("/api/transactions/:id", transactionHandler.Get)
	engine.GET("/api/transactions/reference/:reference", transactionHandler.GetByReference)
	engine.GET("/api/transactions/account/:id", transactionHandler.ListByAccount)

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
