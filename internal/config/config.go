package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL       string
	RedisURL          string
	MetricsPort       string
	HTTPAddr          string
	WorkerCount       int
	LogLevel          string
	RunCacheTTL       time.Duration
	SaveRatePerSecond float64
	SaveMaxRetries    int
}

func Load() *Config {
	// Carrega .env da raiz do projeto
	_ = godotenv.Load("../../.env")
	// Se não encontrar, tenta no diretório atual
	_ = godotenv.Load()
	return fromEnv()
}

func fromEnv() *Config {
	return &Config{
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		RedisURL:          os.Getenv("REDIS_URL"),
		MetricsPort:       getEnv("METRICS_PORT", "9090"),
		HTTPAddr:          getEnv("HTTP_ADDR", ":8080"),
		WorkerCount:       getEnvInt("WORKER_COUNT", 4),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		RunCacheTTL:       getEnvDuration("RUN_CACHE_TTL", 30*time.Minute),
		SaveRatePerSecond: getEnvFloat("SAVE_RATE_PER_SECOND", 20),
		SaveMaxRetries:    getEnvInt("SAVE_MAX_RETRIES", 5),
	}
}

func getEnv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

// Valores inválidos ou não positivos caem no padrão.
func getEnvInt(k string, d int) int {
	if n, err := strconv.Atoi(os.Getenv(k)); err == nil && n > 0 {
		return n
	}
	return d
}

func getEnvFloat(k string, d float64) float64 {
	if f, err := strconv.ParseFloat(os.Getenv(k), 64); err == nil && f > 0 {
		return f
	}
	return d
}

func getEnvDuration(k string, d time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(k)); err == nil && v > 0 {
		return v
	}
	return d
}
