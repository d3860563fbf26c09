// The notificationserver binary serves notification records and runs the
// settlement events consumer.
package main

import (
	"context"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"

	"github.com/go-petr/micro-bank/internal/middleware"
	"github.com/go-petr/micro-bank/internal/notificationserver"
	"github.com/go-petr/micro-bank/internal/notificationworker"
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

	if err := dbpkg.Migrate(config.MigrationsURL+"/notificationserver", config.NotificationDBSource); err != nil {
		logger.Fatal().Err(err).Msg("cannot apply migrations")
	}

	db, err := dbpkg.Setup(config.DBDriver, config.NotificationDBSource)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot connect to database")
	}

	server, err := notificationserver.New(db, logger, config)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot create server")
	}

	if config.AMQPURL != "" {
		conn, err := amqp.Dial(config.AMQPURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("cannot connect to rabbitmq")
		}
		defer conn.Close()

		ch, err := conn.Channel()
		if err != nil {
			logger.Fatal().Err(err).Msg("cannot open rabbitmq channel")
		}

		worker, err := notificationworker.New(ch, server.Service, config.EventsExchange, config.EventsQueue)
		if err != nil {
			logger.Fatal().Err(err).Msg("cannot create notification worker")
		}

		go func() {
			ctx := logger.WithContext(context.Background())
			if err := worker.Run(ctx); err != nil {
				logger.Fatal().Err(err).Msg("notification worker stopped")
			}
		}()
	}

	logger.Info().Str("address", config.NotificationServerAddress).Msg("notification server started")

	if err := server.Engine.Run(config.NotificationServerAddress); err != nil {
		logger.Fatal().Err(err).Msg("cannot start server")
	}
}
