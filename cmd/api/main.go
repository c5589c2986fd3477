package main

import (
	"context"
	"os"

	"github.com/placementcell/pipeline/internal/pkg/logger"
	"github.com/placementcell/pipeline/internal/server"
)

// @title Placement Pipeline API
// @version 1.0
// @description Campus recruitment pipeline: job postings, college approvals, interview rounds and offers.

// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT token for authorization

func main() {
	srv, err := server.NewServer(context.Background())
	if err != nil {
		// Details are logged inside the bootstrap steps.
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
