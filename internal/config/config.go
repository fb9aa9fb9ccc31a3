package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr       string
	StoreDriver    string // "csv" or "sqlite"
	CSVPath        string
	SQLitePath     string
	RabbitURL      string // empty disables event publishing
	RabbitExchange string
	ServiceEnv     string
}

func Load() Config {
	// Optional .env for local runs; real deployments set the environment.
	_ = godotenv.Load()

	return Config{
		HTTPAddr:       env("SHOPCART_HTTP_ADDR", ":8080"),
		StoreDriver:    env("SHOPCART_STORE_DRIVER", "csv"),
		CSVPath:        env("SHOPCART_CSV_PATH", "./data/transactions.csv"),
		SQLitePath:     env("SHOPCART_SQLITE_PATH", "./data/transactions.db"),
		RabbitURL:      env("RABBIT_URL", ""),
		RabbitExchange: env("RABBIT_EXCHANGE", "domain_events"),
		ServiceEnv:     env("SERVICE_ENV", "dev"),
	}
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
