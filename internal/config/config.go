package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port       string        `yaml:"port"`
	DBDriver   string        `yaml:"db_driver"` // sqlite | postgres
	DBDSN      string        `yaml:"db_dsn"`
	JWTSecret  string        `yaml:"jwt_secret"`
	AccessTTL  time.Duration `yaml:"access_ttl"`
	RefreshTTL time.Duration `yaml:"refresh_ttl"`
	LogLevel   string        `yaml:"log_level"`
	LogFile    string        `yaml:"log_file"`
}

func Load() Config {
	// .env is optional; real env always wins over file values.
	_ = godotenv.Load()

	cfg := Config{
		Port:       getEnv("PORT", "8080"),
		DBDriver:   getEnv("DB_DRIVER", "sqlite"),
		DBDSN:      getEnv("DB_DSN", "wholesale.db"),
		JWTSecret:  getEnv("JWT_SECRET", "dev-secret-change-me"),
		AccessTTL:  getEnvDuration("ACCESS_TTL", 24*time.Hour),
		RefreshTTL: getEnvDuration("REFRESH_TTL", 7*24*time.Hour),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		LogFile:    getEnv("LOG_FILE", ""),
	}

	// Optional YAML overrides for containerized deploys.
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := mergeFile(&cfg, path); err != nil {
			log.Printf("[config] could not read %s: %v", path, err)
		}
	}

	log.Printf("[config] PORT=%s DB_DRIVER=%s LOG_LEVEL=%s", cfg.Port, cfg.DBDriver, cfg.LogLevel)
	return cfg
}

func mergeFile(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(raw, cfg)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	// Bare numbers are hours, e.g. ACCESS_TTL=24
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Hour
	}
	return fallback
}
