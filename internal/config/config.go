package config

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/Skotchmaster/storefront/pkg/config"
)

type ServiceConfig struct {
	config.Config
}

func Load() ServiceConfig {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("notice: .env file not found: %v. Using system environment variables", err)
	}

	cfg := config.Load()

	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	config.WarnIfEmptyBytes(cfg.JWTSecret, "JWT_SECRET")

	return ServiceConfig{Config: cfg}
}
