package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/hexrift/nft-catalog/internal/server"
	"github.com/hexrift/nft-catalog/pkg/config"
	"github.com/hexrift/nft-catalog/pkg/logger"
)

func main() {
	// Load environment variables from .env file
	envErr := godotenv.Load()

	log := logger.NewLogger()
	defer log.Sync()

	if envErr != nil {
		log.Warnw("No .env file found or error loading it", "error", envErr)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Errorw("invalid configuration", "error", err)
		os.Exit(1)
	}

	log.Infow("Initializing catalog gateway",
		"addr", cfg.Addr(),
		"upstream", cfg.UpstreamBaseURL,
		"cache", cfg.RedisAddr != "",
	)

	serv := server.New(cfg, log)
	if err := serv.Run(); err != nil {
		log.Errorw("server failed to run", "error", err)
		os.Exit(1)
	}
}
