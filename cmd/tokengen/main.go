// Command tokengen issues caller tokens for the profile gateway API.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/profilegateway/backend/internal/infrastructure/auth"
	"github.com/profilegateway/backend/internal/infrastructure/config"
	"github.com/profilegateway/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

func main() {
	var (
		clientID string
		ttl      time.Duration
		logLevel string
	)

	flag.StringVar(&clientID, "client", "", "Client id to embed in the token (required)")
	flag.DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	flag.StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	flag.Parse()

	if clientID == "" {
		printUsage()
		os.Exit(1)
	}

	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stderr",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync(log)

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}
	if cfg.Auth.Secret == "" {
		log.Fatal("auth.secret is not configured; set GATEWAY_AUTH_SECRET")
	}

	token, err := auth.NewJWTService(cfg.Auth).IssueCallerToken(clientID, ttl)
	if err != nil {
		log.Fatal("Failed to issue token", zap.Error(err))
	}

	log.Info("Token issued",
		zap.String("client_id", clientID),
		zap.String("issuer", cfg.Auth.Issuer),
		zap.Duration("ttl", ttl),
	)
	fmt.Println(token)
}

func printUsage() {
	fmt.Println(`Profile Gateway token generator

Usage:
  tokengen -client <id> [-ttl 24h] [-log-level warn]

Environment Variables:
  GATEWAY_AUTH_SECRET, GATEWAY_AUTH_ISSUER

Example:
  curl -H "Authorization: Bearer $(tokengen -client billing)" localhost:8080/api/customers/1`)
}
