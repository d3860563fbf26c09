// The gateway binary is the public entrypoint routing to the backing services.
package main

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/go-petr/micro-bank/internal/gatewayserver"
	"github.com/go-petr/micro-bank/internal/middleware"
	"github.com/go-petr/micro-bank/pkg/configpkg"
)

func main() {
	config, err := configpkg.Load("./configs")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}

	logger := middleware.GetLogger(config)

	server, err := gatewayserver.New(logger, config)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot create gateway")
	}

	logger.Info().Str("address", config.GatewayServerAddress).Msg("gateway started")

	if err := http.ListenAndServe(config.GatewayServerAddress, server); err != nil {
		logger.Fatal().Err(err).Msg("cannot start gateway")
	}
}
