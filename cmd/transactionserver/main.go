// The transactionserver binary runs the settlement engine.
package main

import (
	"context"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/go-petr/micro-bank/internal/middleware"
	"github.com/go-petr/micro-bank/internal/transactionserver"
	"github.com/go-petr/micro-bank/pkg/configpkg"
	"github.com/go-petr/micro-bank/pkg/dbpkg"

	_ "github.com/lib/pq"
)

func main() {
	config, err := configpkg.Load("./configs")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}

	logger := middleware.GetLogger(config)

	if err := dbpkg.Migrate(config.MigrationsURL+"/transactionserver", config.TransactionDBSource); err != nil {
		logger.Fatal().Err(err).Msg("cannot apply migrations")
	}

	db, err := dbpkg.Setup(config.DBDriver, config.TransactionDBSource)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot connect to database")
	}

	var res transactionserver.Resources

	if config.RedisAddress != "" {
		res.Redis = redis.NewClient(&redis.Options{Addr: config.RedisAddress})

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := res.Redis.Ping(ctx).Err(); err != nil {
			logger.Fatal().Err(err).Msg("cannot connect to redis")
		}
		cancel()
	}

	if config.AMQPURL != "" {
		conn, err := amqp.Dial(config.AMQPURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("cannot connect to rabbitmq")
		}
		defer conn.Close()

		res.AMQP, err = conn.Channel()
		if err != nil {
			logger.Fatal().Err(err).Msg("cannot open rabbitmq channel")
		}
	}

	if config.MongoURL != "" {
		client, err := mongo.Connect(options.Client().ApplyURI(config.MongoURL))
		if err != nil {
			logger.Fatal().Err(err).Msg("cannot connect to mongodb")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := client.Ping(ctx, nil); err != nil {
			logger.Fatal().Err(err).Msg("cannot ping mongodb")
		}
		cancel()

		defer client.Disconnect(context.Background())

		res.Mongo = client
	}

	server, err := transactionserver.New(db, logger, config, res)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot create server")
	}

	logger.Info().Str("address", config.TransactionServerAddress).Msg("transaction server started")

	if err := server.Engine.Run(config.TransactionServerAddress); err != nil {
		logger.Fatal().Err(err).Msg("cannot start server")
	}
}
