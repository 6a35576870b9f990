package main

import (
	"os"

	"github.com/smartsecretaria/secretaria/internal/config"
	"github.com/smartsecretaria/secretaria/internal/pkg/logger"
	"github.com/smartsecretaria/secretaria/internal/server"
)

func main() {
	// Wires config, logger, in-memory repositories, seed data and routes
	srv, err := server.NewServer(config.GetEnv("CONFIG_PATH", ""))
	if err != nil {
		// The logger package's default logger is all we have at this point
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	// Blocks until a shutdown signal
	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Development API finished gracefully.")
}
