package config

import (
	"errors"
	"log"
	"time"

	"github.com/joho/godotenv"
)

var AppEnv Config

type Config struct {
	MongoURI        string
	DBName          string
	JWTSecret       string
	Port            string
	TokenTTL        time.Duration
	ShutdownTimeout time.Duration
	CORSOrigins     []string
	SeedFile        string
}

// Load reads .env (if present) and the process environment into AppEnv.
func Load() error {
	if err := godotenv.Load(); err != nil {
		log.Println("[CONFIG] [INFO] .env not loaded:", err)
	}

	cfg := FromEnv()
	if err := cfg.Validate(); err != nil {
		return err
	}
	AppEnv = cfg
	return nil
}

func FromEnv() Config {
	return Config{
		MongoURI:        getEnvOrDefault("MONGO_URI", ""),
		DBName:          getEnvOrDefault("DB_NAME", "cyclestore"),
		JWTSecret:       getEnvOrDefault("JWT_SECRET", ""),
		Port:            getEnvOrDefault("PORT", "9000"),
		TokenTTL:        getDurationEnv("TOKEN_TTL_HOURS", 0, time.Hour),
		ShutdownTimeout: getDurationEnv("SHUTDOWN_TIMEOUT_SECONDS", 10, time.Second),
		CORSOrigins:     getListEnv("CORS_ORIGINS", []string{"*"}),
		SeedFile:        getEnvOrDefault("SEED_FILE", "seed/products.yaml"),
	}
}

func (c Config) Validate() error {
	var errs []error
	if c.MongoURI == "" {
		errs = append(errs, errors.New("MONGO_URI is required"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	return errors.Join(errs...)
}
