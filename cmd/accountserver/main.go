// The accountserver binary serves accounts, balances and user auth.
package main

import (
	"github.com/rs/zerolog/log"

	"github.com/go-petr/micro-bank/internal/accountserver"
	"github.com/go-petr/micro-bank/internal/middleware"
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

	if err := dbpkg.Migrate(config.MigrationsURL+"/accountserver", config.AccountDBSource); err != nil {
		logger.Fatal().Err(err).Msg("cannot apply migrations")
	}

	db, err := dbpkg.Setup(config.DBDriver, config.AccountDBSource)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot connect to database")
	}

	server, err := accountserver.New(db, logger, config)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot create server")
	}

	logger.Info().Str("address", config.AccountServerAddress).Msg("account server started")

	if err := server.Engine.Run(config.AccountServerAddress); err != nil {
		logger.Fatal().Err(err).Msg("cannot start server")
	}
}
