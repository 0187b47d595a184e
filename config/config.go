package config

import (
	"fmt"
	"os"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

// Config carries everything the API process needs from the environment.
type Config struct {
	DatabaseURL string `env:"DATABASE_URL,required"`
	JWTSecret   string `env:"JWT_SECRET,required"`
	ListenAddr  string `env:"LISTEN_ADDR,default=:8080"`
	UploadDir   string `env:"UPLOAD_DIR,default=./uploads"`
	UploadBase  string `env:"UPLOAD_BASE_URL,default=/files"`
	LogLevel    string `env:"LOG_LEVEL,default=info"`
}

// Load reads an optional .env file and decodes the process environment.
// A missing .env is not an error; missing required variables are.
func Load() (Config, error) {
	if path := os.Getenv("ENV_FILE"); path != "" {
		if err := godotenv.Load(path); err != nil {
			return Config{}, fmt.Errorf("config: load env file %s: %w", path, err)
		}
	} else {
		_ = godotenv.Load()
	}

	var cfg Config
	if err := envdecode.StrictDecode(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode environment: %w", err)
	}
	return cfg, nil
}
