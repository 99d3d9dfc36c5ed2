package main

import (
	"flag"
	"os"

	"github.com/yigit/uniadmin/internal/pkg/logger"
	"github.com/yigit/uniadmin/internal/server"
)

//go:generate swag init -d ../../ -g cmd/api/main.go -o ../../docs --parseInternal

// @title University Administration API
// @version 1.0
// @description Departments, courses, syllabi and user sessions for university staff.

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @BasePath /
// @schemes http https

// @securityDefinitions.apikey CookieAuth
// @in cookie
// @name access_token
// @description Access token cookie set by /auth/login/

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to the YAML configuration file")
	flag.Parse()

	srv, err := server.NewServer(*configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
