package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/vulgatecnn/afa100-sub001/internal/app"
	"github.com/vulgatecnn/afa100-sub001/internal/config"
	"github.com/vulgatecnn/afa100-sub001/internal/logger"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zl, err := logger.New(cfg.LogLevel, cfg.LogFormat, "passsvc")
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zl.Sync()

	if err := app.Run(cfg, zl); err != nil {
		zl.Sugar().Fatalf("app: %v", err)
	}
}
